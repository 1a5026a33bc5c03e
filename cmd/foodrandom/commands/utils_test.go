package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/foodrandom/recipebox/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecipeID(t *testing.T) {
	id, err := parseRecipeID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := parseRecipeID(bad)
		assert.Error(t, err, bad)
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	sqlitePath := filepath.Join(root, "data", "recipes.db")
	fsmPath := filepath.Join(root, "fsm")
	workDir := filepath.Join(root, "work")

	require.NoError(t, ensureDirectories(sqlitePath, fsmPath, workDir))

	assert.DirExists(t, filepath.Dir(sqlitePath))
	assert.DirExists(t, fsmPath)
	assert.DirExists(t, workDir)
	assert.NoFileExists(t, sqlitePath)
}

func TestCleanupDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.jpg"), []byte("b"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "keep"), 0755))

	var out bytes.Buffer
	require.NoError(t, cleanupDir(&out, dir, "cached image"))

	assert.Contains(t, out.String(), "Removed 2 cached image files")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep", entries[0].Name())
}

func TestCleanupDir_Missing(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, cleanupDir(&out, filepath.Join(t.TempDir(), "absent"), "cached image"))
	assert.Contains(t, out.String(), "Nothing to clean")
}

func TestOpenRepository_RejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	sqlitePath := filepath.Join(dir, "data", "recipes.db")
	t.Setenv("FOODRANDOM_SQLITE_PATH", sqlitePath)
	t.Setenv("FOODRANDOM_MAX_BATCH_SIZE", "0")

	_, repo, err := openRepository()
	require.Error(t, err)
	assert.Nil(t, repo)
	assert.Contains(t, err.Error(), "max-batch-size")
	assert.NoFileExists(t, sqlitePath)
}

func TestOpenRepository(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	sqlitePath := filepath.Join(dir, "data", "recipes.db")
	t.Setenv("FOODRANDOM_SQLITE_PATH", sqlitePath)

	cfg, repo, err := openRepository()
	require.NoError(t, err)
	defer repo.Close()

	assert.Equal(t, sqlitePath, cfg.SQLitePath)
	assert.FileExists(t, sqlitePath)
}

func TestSameRecipe(t *testing.T) {
	stored := &db.Recipe{
		ID:          7,
		Name:        "Chili",
		Ingredients: []string{"beans", "beef"},
		ImageURLs:   []string{},
	}

	tests := []struct {
		name string
		rec  *db.Recipe
		want bool
	}{
		{"identical", &db.Recipe{ID: 7, Name: "Chili", Ingredients: []string{"beans", "beef"}}, true},
		{"different name", &db.Recipe{ID: 7, Name: "Stew", Ingredients: []string{"beans", "beef"}}, false},
		{"same name, different ingredients", &db.Recipe{ID: 7, Name: "Chili", Ingredients: []string{"beans"}}, false},
		{"same name, reordered ingredients", &db.Recipe{ID: 7, Name: "Chili", Ingredients: []string{"beef", "beans"}}, false},
		{"same name, extra image", &db.Recipe{ID: 7, Name: "Chili", Ingredients: []string{"beans", "beef"}, ImageURLs: []string{"https://img.example.com/c.jpg"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sameRecipe(stored, tt.rec))
		})
	}
}
