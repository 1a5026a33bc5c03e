package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/foodrandom/recipebox/pkg/batch"
	"github.com/foodrandom/recipebox/pkg/errors"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all saved recipes as a batch document",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	_, repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	recipes, err := repo.FindAll(context.Background())
	if err != nil {
		return errors.Wrap(err, "list failed")
	}

	data, err := batch.Encode(recipes)
	if err != nil {
		return errors.Wrap(err, "encode failed")
	}

	if exportOut == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(exportOut, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write export file")
	}
	slog.Info("export_complete", "path", exportOut, "recipe_count", len(recipes))
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Exported %d recipes to %s\n", len(recipes), exportOut)
	return nil
}
