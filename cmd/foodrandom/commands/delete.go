package commands

import (
	"context"
	"fmt"

	"github.com/foodrandom/recipebox/pkg/batch"
	"github.com/foodrandom/recipebox/pkg/errors"
	"github.com/spf13/cobra"
)

var deleteFile string

var deleteCmd = &cobra.Command{
	Use:   "delete [recipe-id]",
	Short: "Delete a saved recipe, or every recipe in a batch file that matches exactly",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().StringVar(&deleteFile, "file", "", "Batch document listing the recipes to delete")
}

func runDelete(cmd *cobra.Command, args []string) error {
	if (deleteFile == "") == (len(args) == 0) {
		return fmt.Errorf("must specify either <recipe-id> or --file")
	}

	_, repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if deleteFile != "" {
		recipes, err := batch.DecodeFile(deleteFile)
		if err != nil {
			return errors.Wrap(err, "invalid batch document")
		}

		removed, err := repo.Delete(ctx, recipes...)
		if err != nil {
			return errors.Wrap(err, "delete failed")
		}
		fmt.Fprintf(out, "✅ Deleted %d of %d recipes\n", removed, len(recipes))
		return nil
	}

	id, err := parseRecipeID(args[0])
	if err != nil {
		return err
	}

	rec, err := repo.FindByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "lookup failed")
	}
	if rec == nil {
		return errors.Wrap(errors.ErrNotFound, fmt.Sprintf("recipe %d", id))
	}

	removed, err := repo.Delete(ctx, rec)
	if err != nil {
		return errors.Wrap(err, "delete failed")
	}
	fmt.Fprintf(out, "✅ Deleted %d recipe\n", removed)
	return nil
}
