package db

import "slices"

// Schema defines the SQLite database schema for saved recipes.
// List-valued columns hold JSON arrays of strings.
const Schema = `
CREATE TABLE IF NOT EXISTS recipes (
    recipe_id INTEGER PRIMARY KEY AUTOINCREMENT,
    recipe_name TEXT NOT NULL,
    ingredients TEXT NOT NULL DEFAULT '[]',
    image_urls TEXT NOT NULL DEFAULT '[]',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_recipes_name ON recipes(recipe_name);
`

// Recipe represents a saved recipe record
type Recipe struct {
	ID          int64    `yaml:"id,omitempty"`
	Name        string   `yaml:"name" validate:"required"`
	Ingredients []string `yaml:"ingredients" validate:"dive,required"`
	ImageURLs   []string `yaml:"image_urls" validate:"dive,url"`
}

// PreviewURL returns the small image URL used for previews, or "" if the recipe has none.
func (r *Recipe) PreviewURL() string {
	if len(r.ImageURLs) == 0 {
		return ""
	}
	return r.ImageURLs[0]
}

// Clone returns a deep copy that shares no slices with r.
func (r *Recipe) Clone() *Recipe {
	c := *r
	c.Ingredients = slices.Clone(r.Ingredients)
	c.ImageURLs = slices.Clone(r.ImageURLs)
	if c.Ingredients == nil {
		c.Ingredients = []string{}
	}
	return &c
}
