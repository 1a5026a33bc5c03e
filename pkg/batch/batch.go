// Package batch reads and writes recipe batch documents.
//
// A batch is a YAML (or JSON) document with a top-level "recipes" list:
//
//	recipes:
//	  - name: Chili
//	    ingredients: [beans, beef]
//	    image_urls: [https://img.example.com/chili-90.jpg]
//
// Ids are optional. A recipe without one is assigned a new id when stored.
package batch

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/foodrandom/recipebox/pkg/db"
	"gopkg.in/yaml.v3"
)

type document struct {
	Recipes []*db.Recipe `yaml:"recipes"`
}

// Decode parses a batch document. Recipes with no ingredients get an empty list.
func Decode(data []byte) ([]*db.Recipe, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty batch document")
		}
		return nil, fmt.Errorf("failed to parse batch: %w", err)
	}

	for i, rec := range doc.Recipes {
		if rec == nil {
			return nil, fmt.Errorf("recipe %d is empty", i)
		}
		if rec.Ingredients == nil {
			rec.Ingredients = []string{}
		}
	}
	return doc.Recipes, nil
}

// DecodeFile reads and parses a batch document from disk
func DecodeFile(path string) ([]*db.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return Decode(data)
}

// Encode writes recipes as a batch document that Decode reads back unchanged
func Encode(recipes []*db.Recipe) ([]byte, error) {
	if recipes == nil {
		recipes = []*db.Recipe{}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(document{Recipes: recipes}); err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}
	return buf.Bytes(), nil
}
