package fsm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/foodrandom/recipebox/pkg/batch"
	"github.com/foodrandom/recipebox/pkg/db"
	"github.com/foodrandom/recipebox/pkg/errors"
	"github.com/foodrandom/recipebox/pkg/security"
	"github.com/foodrandom/recipebox/pkg/storage"
	"github.com/superfly/fsm"
)

// Inserter stores recipes and reports their ids
type Inserter interface {
	Insert(ctx context.Context, recipes ...*db.Recipe) ([]int64, error)
}

// Downloader fetches a single object to a local file
type Downloader interface {
	DownloadObject(ctx context.Context, bucket, key, localPath string) (*storage.DownloadResult, error)
}

// Machine holds dependencies for FSM transitions
type Machine struct {
	repo       Inserter
	downloader Downloader
	validator  *security.Validator
	importDir  string
	maxRetries int
}

// NewMachine creates a new FSM machine with dependencies.
// downloader may be nil when only local files are imported.
func NewMachine(
	repo Inserter,
	downloader Downloader,
	validator *security.Validator,
	importDir string,
	maxRetries int,
) *Machine {
	return &Machine{
		repo:       repo,
		downloader: downloader,
		validator:  validator,
		importDir:  importDir,
		maxRetries: maxRetries,
	}
}

// ImportFile validates and stores the batch document at path, without the FSM
func (m *Machine) ImportFile(ctx context.Context, path string) ([]int64, error) {
	slog.Info("import_file_start", "path", path)

	info, err := os.Stat(path)
	if err != nil {
		slog.Error("import_file_stat_failed", "path", path, "error", err)
		return nil, errors.Wrap(err, "failed to stat batch file")
	}

	recipes, err := m.loadBatch(path, info.Size())
	if err != nil {
		return nil, err
	}

	ids, err := m.repo.Insert(ctx, recipes...)
	if err != nil {
		slog.Error("import_file_store_failed", "path", path, "error", err)
		return nil, errors.Wrap(err, "failed to store recipes")
	}

	slog.Info("import_file_complete", "path", path, "recipe_count", len(ids))
	return ids, nil
}

// loadBatch checks the payload size, parses the document, and validates its recipes
func (m *Machine) loadBatch(path string, size int64) ([]*db.Recipe, error) {
	if err := m.validator.ValidatePayloadSize(size); err != nil {
		return nil, err
	}

	recipes, err := batch.DecodeFile(path)
	if err != nil {
		slog.Error("batch_decode_failed", "path", path, "error", err)
		return nil, errors.Wrap(err, "invalid batch document")
	}

	if err := m.validator.ValidateBatch(recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// downloadPath maps an object onto a file in the import directory
func (m *Machine) downloadPath(bucket, key string) (string, error) {
	if err := m.validator.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(m.importDir, storage.CacheName(bucket, key)), nil
}

func (m *Machine) retriesExceeded(ctx context.Context, key string) error {
	if retryCount := fsm.RetryFromContext(ctx); retryCount >= uint64(m.maxRetries) {
		slog.Error("max_retries_exceeded", "s3_key", key, "max_retries", m.maxRetries)
		return fsm.Abort(fmt.Errorf("max retries (%d) exceeded", m.maxRetries))
	}
	return nil
}

// handleFetch downloads the batch document from S3
func (m *Machine) handleFetch(ctx context.Context, req *fsm.Request[ImportRequest, ImportResponse]) (*fsm.Response[ImportResponse], error) {
	slog.Info("fsm_state_fetch", "s3_key", req.Msg.S3Key)

	if err := m.retriesExceeded(ctx, req.Msg.S3Key); err != nil {
		return nil, err
	}

	resp := req.W.Msg
	if resp == nil {
		resp = &ImportResponse{}
	}

	if m.downloader == nil {
		return nil, fsm.Abort(fmt.Errorf("no downloader configured"))
	}

	localPath, err := m.downloadPath(req.Msg.S3Bucket, req.Msg.S3Key)
	if err != nil {
		return nil, fsm.Abort(err)
	}

	if err := os.MkdirAll(m.importDir, 0755); err != nil {
		slog.Error("import_dir_creation_failed", "path", m.importDir, "error", err)
		return nil, errors.Wrap(err, "failed to create import dir")
	}

	result, err := m.downloader.DownloadObject(ctx, req.Msg.S3Bucket, req.Msg.S3Key, localPath)
	if err != nil {
		slog.Error("download_failed", "s3_key", req.Msg.S3Key, "error", err)
		return nil, errors.Wrap(err, "failed to download from S3")
	}

	resp.DownloadPath = result.LocalPath
	resp.DownloadSize = result.Size
	resp.SHA256 = result.SHA256

	slog.Info("download_complete", "s3_key", req.Msg.S3Key, "size_bytes", result.Size)

	return fsm.NewResponse(resp), nil
}

// handleValidate checks the downloaded document before anything is stored
func (m *Machine) handleValidate(ctx context.Context, req *fsm.Request[ImportRequest, ImportResponse]) (*fsm.Response[ImportResponse], error) {
	slog.Info("fsm_state_validate", "s3_key", req.Msg.S3Key)

	if err := m.retriesExceeded(ctx, req.Msg.S3Key); err != nil {
		return nil, err
	}

	resp := req.W.Msg
	if resp == nil {
		return nil, fsm.Abort(fmt.Errorf("response not initialized"))
	}

	recipes, err := m.loadBatch(resp.DownloadPath, resp.DownloadSize)
	if err != nil {
		// Bad content will not get better on retry
		slog.Error("batch_validation_failed", "s3_key", req.Msg.S3Key, "error", err)
		resp.Status = StatusFailed
		resp.ErrorMessage = err.Error()
		return nil, fsm.Abort(err)
	}

	resp.RecipeCount = len(recipes)
	slog.Info("batch_validated", "s3_key", req.Msg.S3Key, "recipe_count", resp.RecipeCount)

	return fsm.NewResponse(resp), nil
}

// handleStore inserts the validated recipes
func (m *Machine) handleStore(ctx context.Context, req *fsm.Request[ImportRequest, ImportResponse]) (*fsm.Response[ImportResponse], error) {
	slog.Info("fsm_state_store", "s3_key", req.Msg.S3Key)

	if err := m.retriesExceeded(ctx, req.Msg.S3Key); err != nil {
		return nil, err
	}

	resp := req.W.Msg
	if resp == nil {
		return nil, fsm.Abort(fmt.Errorf("response not initialized"))
	}

	recipes, err := m.loadBatch(resp.DownloadPath, resp.DownloadSize)
	if err != nil {
		return nil, fsm.Abort(err)
	}

	ids, err := m.repo.Insert(ctx, recipes...)
	if err != nil {
		slog.Error("store_recipes_failed", "s3_key", req.Msg.S3Key, "error", err)
		return nil, errors.Wrap(err, "failed to store recipes")
	}

	resp.RecipeIDs = ids
	slog.Info("recipes_stored", "s3_key", req.Msg.S3Key, "recipe_ids", ids)

	return fsm.NewResponse(resp), nil
}

// handleComplete cleans up the downloaded document and marks the import as done
func (m *Machine) handleComplete(ctx context.Context, req *fsm.Request[ImportRequest, ImportResponse]) (*fsm.Response[ImportResponse], error) {
	slog.Info("fsm_state_complete", "s3_key", req.Msg.S3Key)

	resp := req.W.Msg
	if resp == nil {
		resp = &ImportResponse{}
	}

	if resp.DownloadPath != "" {
		if err := os.Remove(resp.DownloadPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("download_cleanup_failed", "path", resp.DownloadPath, "error", err)
		}
	}

	resp.Status = StatusImported
	slog.Info("fsm_complete", "s3_key", req.Msg.S3Key, "status", resp.Status, "recipe_count", len(resp.RecipeIDs))

	return fsm.NewResponse(resp), nil
}
