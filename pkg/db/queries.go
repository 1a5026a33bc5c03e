package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

type queryName string

const (
	queryFindAll  queryName = "findAll"
	queryFindByID queryName = "findByID"
	queryInsert   queryName = "insert"
	queryDelete   queryName = "delete"
	queryCount    queryName = "count"
)

// queries maps every store operation to its SQL. All of them are prepared when the
// repository is opened, so a broken query fails NewRepository instead of a later call.
// SELECT queries return the columns scanRecipe expects, in order.
var queries = map[queryName]string{
	queryFindAll: `
		SELECT recipe_id, recipe_name, ingredients, image_urls
		FROM recipes ORDER BY recipe_name DESC, recipe_id DESC
	`,
	queryFindByID: `
		SELECT recipe_id, recipe_name, ingredients, image_urls
		FROM recipes WHERE recipe_id = ?
	`,
	queryInsert: `
		INSERT INTO recipes (recipe_id, recipe_name, ingredients, image_urls)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(recipe_id) DO NOTHING
	`,
	queryDelete: `
		DELETE FROM recipes
		WHERE recipe_id = ? AND recipe_name = ? AND ingredients = ? AND image_urls = ?
	`,
	queryCount: `SELECT COUNT(*) FROM recipes`,
}

// prepareQueries prepares every named query against db.
func prepareQueries(db *sql.DB) (map[queryName]*sql.Stmt, error) {
	stmts := make(map[queryName]*sql.Stmt, len(queries))
	for name, query := range queries {
		stmt, err := db.Prepare(query)
		if err != nil {
			closeStatements(stmts)
			return nil, fmt.Errorf("prepare %s: %w", name, err)
		}
		stmts[name] = stmt
	}
	return stmts, nil
}

func closeStatements(stmts map[queryName]*sql.Stmt) {
	for _, stmt := range stmts {
		stmt.Close()
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*Recipe, error) {
	var rec Recipe
	var ingredients, imageURLs string
	if err := row.Scan(&rec.ID, &rec.Name, &ingredients, &imageURLs); err != nil {
		return nil, err
	}

	var err error
	if rec.Ingredients, err = decodeList(ingredients); err != nil {
		return nil, fmt.Errorf("decode ingredients for recipe %d: %w", rec.ID, err)
	}
	if rec.ImageURLs, err = decodeList(imageURLs); err != nil {
		return nil, fmt.Errorf("decode image urls for recipe %d: %w", rec.ID, err)
	}
	return &rec, nil
}

// encodeList stores a list as a JSON array. nil and empty lists encode identically,
// so value-matching deletes treat them as equal.
func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeList(data string) ([]string, error) {
	items := []string{}
	if data == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}
