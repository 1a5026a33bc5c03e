package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/foodrandom/recipebox/internal/config"
	"github.com/foodrandom/recipebox/pkg/errors"
	"github.com/foodrandom/recipebox/pkg/loader"
	"github.com/foodrandom/recipebox/pkg/render"
	"github.com/foodrandom/recipebox/pkg/storage"
	"github.com/spf13/cobra"
)

var showFetchImages bool

var showCmd = &cobra.Command{
	Use:   "show <recipe-id>",
	Short: "Load a saved recipe in the background and display it",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showFetchImages, "fetch-images", false, "Download s3:// preview images into the local cache")
}

type previewResult struct {
	text string
	err  error
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseRecipeID(args[0])
	if err != nil {
		return err
	}

	cfg, repo, err := openRepository()
	if err != nil {
		return err
	}
	defer repo.Close()

	// Interrupting discards the view; a late result is then dropped, not rendered
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	looper := loader.NewLooper()
	scope := loader.NewScope(ctx)
	defer scope.Close()

	out := cmd.OutOrStdout()
	var images render.ImageRenderer = render.LinkRenderer{}
	if showFetchImages {
		images = render.PendingRenderer{}
	}
	view := render.NewView(out, images)

	// pending counts deliveries the looper still waits for.
	// It is only touched on the looper goroutine.
	pending := 1
	finish := func() {
		pending--
		if pending == 0 {
			looper.Quit()
		}
	}

	var result loader.Result
	loader.New(repo, looper).Load(scope, id, func(r loader.Result) {
		result = r
		if err := view.Bind(scope.Context(), r); err != nil {
			slog.Warn("render_failed", "recipe_id", id, "error", err)
		}

		if showFetchImages && r.Outcome() == loader.OutcomeFound && r.Recipe.PreviewURL() != "" {
			pending++
			fetchPreview(looper, scope, cfg, r.Recipe.PreviewURL(), out, finish)
		}
		finish()
	})

	if err := looper.Run(ctx); err != nil {
		return errors.Wrap(err, "show interrupted")
	}

	switch result.Outcome() {
	case loader.OutcomeNotFound:
		return errors.Wrap(errors.ErrNotFound, fmt.Sprintf("recipe %d", id))
	case loader.OutcomeFailed:
		return errors.Wrap(result.Err, "load failed")
	}
	return nil
}

// fetchPreview caches the preview image on a background goroutine and writes the
// outcome from the looper
func fetchPreview(looper *loader.Looper, scope *loader.Scope, cfg *config.Config, url string, out io.Writer, done func()) {
	loader.Go(looper, scope, func(ctx context.Context) previewResult {
		client, err := storage.NewClient(ctx, cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			return previewResult{err: err}
		}

		var buf bytes.Buffer
		renderer := render.NewCacheRenderer(client, cfg.ImageCacheDir())
		if err := renderer.Render(ctx, url, &buf); err != nil {
			return previewResult{err: err}
		}
		return previewResult{text: buf.String()}
	}, func(p previewResult) {
		if p.err != nil {
			fmt.Fprintf(out, "Preview unavailable: %v\n", p.err)
		} else {
			io.WriteString(out, p.text)
		}
		done()
	})
}
