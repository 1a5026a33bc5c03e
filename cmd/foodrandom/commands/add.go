package commands

import (
	"context"
	"fmt"
	"slices"

	"github.com/foodrandom/recipebox/pkg/db"
	"github.com/foodrandom/recipebox/pkg/errors"
	"github.com/foodrandom/recipebox/pkg/security"
	"github.com/spf13/cobra"
)

var (
	addName        string
	addIngredients []string
	addImageURLs   []string
	addID          int64
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a single recipe",
	RunE:  runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addName, "name", "", "Recipe name")
	addCmd.Flags().StringArrayVar(&addIngredients, "ingredient", nil, "Ingredient (repeatable, kept in order)")
	addCmd.Flags().StringArrayVar(&addImageURLs, "image-url", nil, "Image URL (repeatable, first is the preview)")
	addCmd.Flags().Int64Var(&addID, "id", 0, "Explicit recipe id (default: assigned)")
	addCmd.MarkFlagRequired("name")
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	rec := &db.Recipe{
		ID:          addID,
		Name:        addName,
		Ingredients: addIngredients,
		ImageURLs:   addImageURLs,
	}

	validator := security.NewValidator(cfg.MaxPayloadSize, cfg.MaxBatchSize)
	if err := validator.ValidateRecipe(rec); err != nil {
		return err
	}

	ctx := context.Background()
	ids, err := repo.Insert(ctx, rec)
	if err != nil {
		return errors.Wrap(err, "insert failed")
	}

	if addID != 0 {
		// An explicit id that is already taken keeps the stored record
		stored, err := repo.FindByID(ctx, ids[0])
		if err != nil {
			return errors.Wrap(err, "read back failed")
		}
		if stored != nil && !sameRecipe(stored, rec) {
			fmt.Fprintf(cmd.OutOrStdout(), "⚠️  Recipe %d already exists as %q, kept it\n", ids[0], stored.Name)
			return nil
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Saved recipe %d\n", ids[0])
	return nil
}

// sameRecipe reports whether a and b hold the same name and lists
func sameRecipe(a, b *db.Recipe) bool {
	return a.Name == b.Name &&
		slices.Equal(a.Ingredients, b.Ingredients) &&
		slices.Equal(a.ImageURLs, b.ImageURLs)
}
