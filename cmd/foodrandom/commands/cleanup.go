package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/foodrandom/recipebox/internal/config"
	"github.com/foodrandom/recipebox/pkg/db"
	"github.com/foodrandom/recipebox/pkg/errors"
	"github.com/foodrandom/recipebox/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	cleanupImages   bool
	cleanupImports  bool
	cleanupOrphaned bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Clean up local working files (cached images, import downloads)",
	Long: `Clean up files kept under the work directory:
  --images     Remove all cached preview images
  --imports    Remove batch documents left behind by interrupted imports
  --orphaned   Remove cached images no stored recipe refers to`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().BoolVar(&cleanupImages, "images", false, "Remove all cached images")
	cleanupCmd.Flags().BoolVar(&cleanupImports, "imports", false, "Remove leftover import downloads")
	cleanupCmd.Flags().BoolVar(&cleanupOrphaned, "orphaned", false, "Remove unreferenced cached images")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if cleanupOrphaned {
		cfg, repo, err := openRepository()
		if err != nil {
			return err
		}
		defer repo.Close()
		return cleanupOrphanedImages(context.Background(), out, repo, cfg)
	}

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}

	switch {
	case cleanupImages:
		return cleanupDir(out, cfg.ImageCacheDir(), "cached image")
	case cleanupImports:
		return cleanupDir(out, cfg.ImportDir(), "import download")
	default:
		return fmt.Errorf("must specify --images, --imports, or --orphaned")
	}
}

// cleanupDir removes every regular file in dir
func cleanupDir(out io.Writer, dir, label string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		fmt.Fprintf(out, "✅ Nothing to clean in %s\n", dir)
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to read directory")
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			fmt.Fprintf(out, "⚠️  Failed to remove %s %s: %v\n", label, entry.Name(), err)
			continue
		}
		removed++
	}

	fmt.Fprintf(out, "✅ Removed %d %s files\n", removed, label)
	return nil
}

// cleanupOrphanedImages removes cached images whose s3:// URL no stored recipe lists
func cleanupOrphanedImages(ctx context.Context, out io.Writer, repo *db.Repository, cfg *config.Config) error {
	fmt.Fprintln(out, "🔍 Scanning for orphaned images...")

	recipes, err := repo.FindAll(ctx)
	if err != nil {
		return errors.Wrap(err, "list failed")
	}

	referenced := make(map[string]bool)
	for _, rec := range recipes {
		for _, url := range rec.ImageURLs {
			if bucket, key, ok := storage.ParseS3URL(url); ok {
				referenced[storage.CacheName(bucket, key)] = true
			}
		}
	}

	cacheDir := cfg.ImageCacheDir()
	entries, err := os.ReadDir(cacheDir)
	if os.IsNotExist(err) {
		fmt.Fprintln(out, "✅ Removed 0 orphaned images")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to read image cache")
	}

	orphanCount := 0
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(cacheDir, entry.Name())); err != nil {
			fmt.Fprintf(out, "⚠️  Failed to remove orphaned image %s: %v\n", entry.Name(), err)
			continue
		}
		fmt.Fprintf(out, "🗑️  Removed orphaned image: %s\n", entry.Name())
		orphanCount++
	}

	fmt.Fprintf(out, "✅ Removed %d orphaned images\n", orphanCount)
	return nil
}
