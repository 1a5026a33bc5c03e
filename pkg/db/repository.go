package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/foodrandom/recipebox/pkg/errors"
	_ "modernc.org/sqlite"
)

// Repository provides database operations for recipes.
// It is safe for concurrent use.
type Repository struct {
	db    *sql.DB
	stmts map[queryName]*sql.Stmt
}

// NewRepository opens (or creates) the recipe database at dbPath
func NewRepository(dbPath string) (*Repository, error) {
	slog.Info("database_init", "db_path", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		slog.Error("database_open_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to open database")
	}

	// One connection serializes writers and keeps per-connection pragmas in effect
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		slog.Error("database_pragmas_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to apply pragmas")
	}

	slog.Info("database_create_schema", "db_path", dbPath)
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		slog.Error("database_schema_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to create schema")
	}

	stmts, err := prepareQueries(db)
	if err != nil {
		db.Close()
		slog.Error("database_prepare_failed", "db_path", dbPath, "error", err)
		return nil, errors.Wrap(err, "failed to prepare queries")
	}

	slog.Info("database_ready", "db_path", dbPath, "query_count", len(stmts))
	return &Repository{db: db, stmts: stmts}, nil
}

// Close releases prepared statements and closes the database connection
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	closeStatements(r.stmts)
	return r.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// FindAll returns every recipe ordered by name, descending.
// It returns an empty slice when the store is empty.
func (r *Repository) FindAll(ctx context.Context) ([]*Recipe, error) {
	slog.Info("database_list_recipes")

	rows, err := r.stmts[queryFindAll].QueryContext(ctx)
	if err != nil {
		slog.Error("database_list_query_failed", "error", err)
		return nil, errors.StorageIO("find_all", err)
	}
	defer rows.Close()

	recipes := []*Recipe{}
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			slog.Error("database_scan_row_failed", "error", err)
			return nil, errors.StorageIO("find_all", errors.Wrap(err, "failed to scan row"))
		}
		recipes = append(recipes, rec)
	}

	if err := rows.Err(); err != nil {
		slog.Error("database_rows_error", "error", err)
		return nil, errors.StorageIO("find_all", errors.Wrap(err, "rows error"))
	}

	slog.Info("database_list_complete", "recipe_count", len(recipes))
	return recipes, nil
}

// FindByID retrieves a recipe by id. It returns nil, nil when no recipe has that id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Recipe, error) {
	slog.Info("database_query_recipe", "recipe_id", id)

	rec, err := scanRecipe(r.stmts[queryFindByID].QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		slog.Info("database_recipe_not_found", "recipe_id", id)
		return nil, nil // Not found
	}
	if err != nil {
		slog.Error("database_query_failed", "recipe_id", id, "error", err)
		return nil, errors.StorageIO("find_by_id", err)
	}

	slog.Info("database_recipe_found", "recipe_id", id, "recipe_name", rec.Name)
	return rec, nil
}

// Insert stores recipes in a single transaction and returns one id per recipe, in order.
// A recipe with a zero ID gets a new id. A recipe whose ID is already taken leaves the
// existing row untouched and reports that id. Each recipe's ID is set to its stored id.
func (r *Repository) Insert(ctx context.Context, recipes ...*Recipe) ([]int64, error) {
	slog.Info("database_insert_recipes", "count", len(recipes))

	ids := make([]int64, 0, len(recipes))
	if len(recipes) == 0 {
		return ids, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed_to_begin_transaction", "error", err)
		return nil, errors.StorageIO("insert", errors.Wrap(err, "failed to begin transaction"))
	}
	defer tx.Rollback()

	stmt := tx.StmtContext(ctx, r.stmts[queryInsert])
	for _, rec := range recipes {
		ingredients, err := encodeList(rec.Ingredients)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode ingredients")
		}
		imageURLs, err := encodeList(rec.ImageURLs)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode image urls")
		}

		var idArg any
		if rec.ID != 0 {
			idArg = rec.ID
		}

		result, err := stmt.ExecContext(ctx, idArg, rec.Name, ingredients, imageURLs)
		if err != nil {
			slog.Error("database_insert_failed", "recipe_name", rec.Name, "error", err)
			return nil, errors.StorageIO("insert", errors.Wrap(err, "failed to insert recipe"))
		}

		rows, err := result.RowsAffected()
		if err != nil {
			slog.Error("database_rows_affected_failed", "recipe_name", rec.Name, "error", err)
			return nil, errors.StorageIO("insert", errors.Wrap(err, "failed to get rows affected"))
		}
		if rows == 0 {
			slog.Info("database_insert_conflict", "recipe_id", rec.ID, "recipe_name", rec.Name)
			ids = append(ids, rec.ID)
			continue
		}

		id, err := result.LastInsertId()
		if err != nil {
			slog.Error("database_last_insert_id_failed", "recipe_name", rec.Name, "error", err)
			return nil, errors.StorageIO("insert", errors.Wrap(err, "failed to get last insert id"))
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed_to_commit_transaction", "error", err)
		return nil, errors.StorageIO("insert", errors.Wrap(err, "failed to commit transaction"))
	}

	for i, rec := range recipes {
		rec.ID = ids[i]
	}

	slog.Info("database_recipes_inserted", "count", len(ids), "recipe_ids", ids)
	return ids, nil
}

// Delete removes recipes that match on every field and returns how many rows were removed.
// Recipes with no matching row are skipped.
func (r *Repository) Delete(ctx context.Context, recipes ...*Recipe) (int, error) {
	slog.Info("database_delete_recipes", "count", len(recipes))

	if len(recipes) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed_to_begin_transaction", "error", err)
		return 0, errors.StorageIO("delete", errors.Wrap(err, "failed to begin transaction"))
	}
	defer tx.Rollback()

	stmt := tx.StmtContext(ctx, r.stmts[queryDelete])
	deleted := 0
	for _, rec := range recipes {
		ingredients, err := encodeList(rec.Ingredients)
		if err != nil {
			return 0, errors.Wrap(err, "failed to encode ingredients")
		}
		imageURLs, err := encodeList(rec.ImageURLs)
		if err != nil {
			return 0, errors.Wrap(err, "failed to encode image urls")
		}

		result, err := stmt.ExecContext(ctx, rec.ID, rec.Name, ingredients, imageURLs)
		if err != nil {
			slog.Error("database_delete_failed", "recipe_id", rec.ID, "error", err)
			return 0, errors.StorageIO("delete", errors.Wrap(err, "failed to delete recipe"))
		}

		rows, err := result.RowsAffected()
		if err != nil {
			slog.Error("database_rows_affected_failed", "recipe_id", rec.ID, "error", err)
			return 0, errors.StorageIO("delete", errors.Wrap(err, "failed to get rows affected"))
		}
		if rows == 0 {
			slog.Info("database_delete_no_match", "recipe_id", rec.ID)
		}
		deleted += int(rows)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed_to_commit_transaction", "error", err)
		return 0, errors.StorageIO("delete", errors.Wrap(err, "failed to commit transaction"))
	}

	slog.Info("database_recipes_deleted", "requested", len(recipes), "deleted", deleted)
	return deleted, nil
}

// Count returns the number of stored recipes
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.stmts[queryCount].QueryRowContext(ctx).Scan(&n); err != nil {
		slog.Error("database_count_failed", "error", err)
		return 0, errors.StorageIO("count", err)
	}
	return n, nil
}
