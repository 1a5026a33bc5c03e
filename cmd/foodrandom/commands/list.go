package commands

import (
	"context"
	"fmt"

	"github.com/foodrandom/recipebox/pkg/errors"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved recipes, by name descending",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	_, repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	recipes, err := repo.FindAll(context.Background())
	if err != nil {
		return errors.Wrap(err, "list failed")
	}

	out := cmd.OutOrStdout()
	if len(recipes) == 0 {
		fmt.Fprintln(out, "No recipes found")
		return nil
	}

	fmt.Fprintf(out, "%-8s %-40s %-12s %-40s\n", "ID", "NAME", "INGREDIENTS", "PREVIEW")
	fmt.Fprintln(out, "----------------------------------------------------------------------------------------------------")

	for _, rec := range recipes {
		preview := rec.PreviewURL()
		if preview == "" {
			preview = "-"
		}
		fmt.Fprintf(out, "%-8d %-40s %-12d %-40s\n", rec.ID, rec.Name, len(rec.Ingredients), preview)
	}

	return nil
}
