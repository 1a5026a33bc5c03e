package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/foodrandom/recipebox/pkg/errors"
	"github.com/foodrandom/recipebox/pkg/storage"
)

// ImageRenderer displays the image at url on w
type ImageRenderer interface {
	Render(ctx context.Context, url string, w io.Writer) error
}

// LinkRenderer shows the image URL itself
type LinkRenderer struct{}

func (LinkRenderer) Render(_ context.Context, url string, w io.Writer) error {
	_, err := fmt.Fprintf(w, "Preview: %s\n", url)
	return err
}

// PendingRenderer announces a preview that is fetched and shown separately
type PendingRenderer struct{}

func (PendingRenderer) Render(_ context.Context, url string, w io.Writer) error {
	_, err := fmt.Fprintf(w, "Preview: fetching %s\n", url)
	return err
}

// Downloader fetches a single object to a local file
type Downloader interface {
	DownloadObject(ctx context.Context, bucket, key, localPath string) (*storage.DownloadResult, error)
}

// CacheRenderer downloads s3:// images into a local cache directory and shows the
// cached path. Other URLs are shown as links.
type CacheRenderer struct {
	downloader Downloader
	dir        string
}

// NewCacheRenderer creates a renderer that caches images under dir
func NewCacheRenderer(downloader Downloader, dir string) *CacheRenderer {
	return &CacheRenderer{downloader: downloader, dir: dir}
}

func (r *CacheRenderer) Render(ctx context.Context, url string, w io.Writer) error {
	bucket, key, ok := storage.ParseS3URL(url)
	if !ok {
		return LinkRenderer{}.Render(ctx, url, w)
	}

	path := filepath.Join(r.dir, storage.CacheName(bucket, key))
	if _, err := os.Stat(path); err == nil {
		slog.Info("image_cache_hit", "url", url, "path", path)
	} else {
		if err := os.MkdirAll(r.dir, 0755); err != nil {
			slog.Error("image_cache_dir_failed", "path", r.dir, "error", err)
			return errors.Wrap(err, "failed to create image cache dir")
		}
		if _, err := r.downloader.DownloadObject(ctx, bucket, key, path); err != nil {
			os.Remove(path)
			slog.Error("image_fetch_failed", "url", url, "error", err)
			return errors.Wrap(err, "failed to fetch preview image")
		}
	}

	_, err := fmt.Fprintf(w, "Preview: %s\n", path)
	return err
}
