package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/foodrandom/recipebox/internal/config"
	"github.com/foodrandom/recipebox/pkg/db"
	"github.com/foodrandom/recipebox/pkg/errors"
	appfsm "github.com/foodrandom/recipebox/pkg/fsm"
	"github.com/foodrandom/recipebox/pkg/security"
	"github.com/foodrandom/recipebox/pkg/storage"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/superfly/fsm"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentImports bounds how many batch documents are fetched at once
const maxConcurrentImports = 4

var (
	importPrefix string
	importFile   string
)

var importCmd = &cobra.Command{
	Use:   "import [s3-key...]",
	Short: "Import recipe batch documents from S3 or a local file",
	Long: `Import recipe batches:
  import <s3-key>...   Fetch, validate, and store each object
  import --prefix p    Import every object under prefix
  import --file f      Validate and store a local batch document`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importPrefix, "prefix", "", "Import every object under this S3 prefix")
	importCmd.Flags().StringVar(&importFile, "file", "", "Import a local batch document")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	if importFile == "" && importPrefix == "" && len(args) == 0 {
		return fmt.Errorf("must specify <s3-key>, --prefix, or --file")
	}

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "config invalid")
	}

	// Ensure all necessary directories exist
	if err := ensureDirectories(cfg.SQLitePath, cfg.FSMDBPath, cfg.WorkDir); err != nil {
		return err
	}

	repo, err := db.NewRepository(cfg.SQLitePath)
	if err != nil {
		return errors.Wrap(err, "db init failed")
	}
	defer repo.Close()

	validator := security.NewValidator(cfg.MaxPayloadSize, cfg.MaxBatchSize)

	if importFile != "" {
		machine := appfsm.NewMachine(repo, nil, validator, cfg.ImportDir(), cfg.FSMMaxRetries)
		ids, err := machine.ImportFile(ctx, importFile)
		if err != nil {
			return errors.Wrap(err, "import failed")
		}
		fmt.Fprintf(out, "✅ Imported %d recipes from %s: %v\n", len(ids), importFile, ids)
		return nil
	}

	s3Client, err := storage.NewClient(ctx, cfg.S3Bucket, cfg.S3Region)
	if err != nil {
		return errors.Wrap(err, "S3 client failed")
	}

	keys := args
	if importPrefix != "" {
		listed, err := s3Client.ListObjects(ctx, importPrefix)
		if err != nil {
			return errors.Wrap(err, "list objects failed")
		}
		keys = append(keys, listed...)
	}
	if len(keys) == 0 {
		fmt.Fprintf(out, "No objects found under %q\n", importPrefix)
		return nil
	}

	return importKeys(ctx, cmd, cfg, repo, s3Client, validator, keys)
}

// importKeys runs one import FSM per key and reports each outcome
func importKeys(
	ctx context.Context,
	cmd *cobra.Command,
	cfg *config.Config,
	repo *db.Repository,
	s3Client *storage.Client,
	validator *security.Validator,
	keys []string,
) error {
	manager, err := fsm.New(fsm.Config{DBPath: cfg.FSMDBPath})
	if err != nil {
		return errors.Wrap(err, "FSM manager failed")
	}
	defer manager.Shutdown(10 * time.Second)

	machine := appfsm.NewMachine(repo, s3Client, validator, cfg.ImportDir(), cfg.FSMMaxRetries)
	start, _, err := machine.Register(ctx, manager)
	if err != nil {
		return errors.Wrap(err, "FSM register failed")
	}

	responses := make([]*appfsm.ImportResponse, len(keys))
	errs := make([]error, len(keys))

	// A failed key does not cancel the others; each outcome is reported below
	var g errgroup.Group
	g.SetLimit(maxConcurrentImports)
	for i, key := range keys {
		g.Go(func() error {
			req := &appfsm.ImportRequest{
				S3Key:    key,
				S3Bucket: s3Client.Bucket(),
			}
			resp := &appfsm.ImportResponse{}
			responses[i] = resp

			runID := fmt.Sprintf("%s#%s", key, uuid.NewString())
			version, err := start(ctx, runID, fsm.NewRequest(req, resp))
			if err != nil {
				errs[i] = errors.Wrap(err, "FSM start failed")
				return nil
			}

			slog.Info("import_fsm_started", "s3_key", key, "run_id", runID, "version", version)

			if err := manager.Wait(ctx, version); err != nil {
				errs[i] = errors.Wrap(err, "FSM execution failed")
			}
			return nil
		})
	}
	g.Wait()

	out := cmd.OutOrStdout()
	failed := 0
	for i, key := range keys {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(out, "⚠️  %s: %v\n", key, errs[i])
			continue
		}
		resp := responses[i]
		fmt.Fprintf(out, "✅ %s: %s %d recipes %v\n", key, resp.Status, len(resp.RecipeIDs), resp.RecipeIDs)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d imports failed", failed, len(keys))
	}
	return nil
}
