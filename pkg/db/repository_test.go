package db

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/foodrandom/recipebox/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRepository opens a repository backed by a fresh file in a temp dir.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "recipes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func chili() *Recipe {
	return &Recipe{
		Name:        "Chili",
		Ingredients: []string{"kidney beans", "ground beef", "chili powder, smoked"},
		ImageURLs:   []string{"https://img.example.com/chili-90.jpg", "https://img.example.com/chili-360.jpg"},
	}
}

func TestNewRepository_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.db")

	repo, err := NewRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestNewRepository_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.db")

	first, err := NewRepository(path)
	require.NoError(t, err)
	ids, err := first.Insert(context.Background(), chili())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewRepository(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.FindByID(context.Background(), ids[0])
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Chili", got.Name)
}

func TestNewRepository_InvalidPath(t *testing.T) {
	_, err := NewRepository("/nonexistent/dir/recipes.db")
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	repo := &Repository{}
	assert.NoError(t, repo.Close())
}

func TestRepository_InsertThenFind(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	rec := chili()
	ids, err := repo.Insert(ctx, rec)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.NotZero(t, ids[0])
	assert.Equal(t, ids[0], rec.ID, "insert should record the assigned id")

	got, err := repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	require.NotNil(t, got)

	want := chili()
	want.ID = ids[0]
	assert.Equal(t, want, got)
}

func TestRepository_InsertAssignsDistinctIDs(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	ids, err := repo.Insert(ctx,
		&Recipe{Name: "Apple Pie"},
		&Recipe{Name: "Beef Stew"},
		&Recipe{Name: "Chili"},
	)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Less(t, ids[0], ids[1])
	assert.Less(t, ids[1], ids[2])
}

func TestRepository_InsertExplicitID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	rec := chili()
	rec.ID = 42
	ids, err := repo.Insert(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, ids)

	next, err := repo.Insert(ctx, &Recipe{Name: "Gumbo"})
	require.NoError(t, err)
	assert.Greater(t, next[0], int64(42), "autoincrement must not reuse a supplied id")
}

func TestRepository_InsertConflictRetainsExisting(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	original := chili()
	ids, err := repo.Insert(ctx, original)
	require.NoError(t, err)

	duplicate := &Recipe{ID: ids[0], Name: "Not Chili", Ingredients: []string{"water"}}
	other := &Recipe{Name: "Cornbread"}
	again, err := repo.Insert(ctx, duplicate, other)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, ids[0], again[0], "conflicting slot reports the pre-existing id")
	assert.NotEqual(t, ids[0], again[1])

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stored, err := repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Chili", stored.Name)
	assert.Equal(t, original.Ingredients, stored.Ingredients)
}

func TestRepository_InsertEmpty(t *testing.T) {
	repo := newTestRepository(t)

	ids, err := repo.Insert(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRepository_FindAllOrdersByNameDescending(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.Insert(ctx,
		&Recipe{Name: "Apple Pie"},
		&Recipe{Name: "Beef Stew"},
		&Recipe{Name: "Chili"},
	)
	require.NoError(t, err)

	recipes, err := repo.FindAll(ctx)
	require.NoError(t, err)

	var names []string
	for _, rec := range recipes {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"Chili", "Beef Stew", "Apple Pie"}, names)
}

func TestRepository_FindAllEmpty(t *testing.T) {
	repo := newTestRepository(t)

	recipes, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, recipes)
	assert.Empty(t, recipes)
}

func TestRepository_FindByIDNotFound(t *testing.T) {
	repo := newTestRepository(t)

	got, err := repo.FindByID(context.Background(), 9999)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_EmptyListsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	ids, err := repo.Insert(ctx, &Recipe{Name: "Toast"})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.NotNil(t, got.Ingredients, "ingredients must never be nil")
	assert.Empty(t, got.Ingredients)
	assert.Empty(t, got.ImageURLs)
}

func TestRepository_ListEncodingIsLossless(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	rec := &Recipe{
		Name:        "Crème brûlée",
		Ingredients: []string{"cream; heavy", "sugar, caster", `vanilla "pod"`, "", "line\nbreak", "[]"},
		ImageURLs:   []string{"https://img.example.com/a,b.jpg?size=small&x=[1]"},
	}
	ids, err := repo.Insert(ctx, rec)
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, rec.Ingredients, got.Ingredients)
	assert.Equal(t, rec.ImageURLs, got.ImageURLs)
}

func TestRepository_ReturnedRecipeIsIndependent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	ids, err := repo.Insert(ctx, chili())
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	got.Name = "Changed"
	got.Ingredients[0] = "tofu"

	again, err := repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Chili", again.Name)
	assert.Equal(t, "kidney beans", again.Ingredients[0])
}

func TestRepository_DeleteCountsOnlyMatches(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	a := &Recipe{Name: "Apple Pie", Ingredients: []string{"apples"}}
	b := &Recipe{Name: "Beef Stew", Ingredients: []string{"beef"}}
	c := &Recipe{Name: "Chili"}
	_, err := repo.Insert(ctx, a, b, c)
	require.NoError(t, err)

	missing := &Recipe{ID: 9999, Name: "Ghost"}
	stale := a.Clone()
	stale.Ingredients = []string{"pears"}

	deleted, err := repo.Delete(ctx, a, missing, b, stale)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Chili", remaining[0].Name)
}

func TestRepository_DeleteMatchesOnValueNotID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	rec := chili()
	_, err := repo.Insert(ctx, rec)
	require.NoError(t, err)

	renamed := rec.Clone()
	renamed.Name = "Chili con carne"
	deleted, err := repo.Delete(ctx, renamed)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)

	deleted, err = repo.Delete(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	got, err := repo.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_DeleteTreatsNilAndEmptyListsAlike(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.Insert(ctx, &Recipe{ID: 5, Name: "Toast", Ingredients: []string{}})
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, &Recipe{ID: 5, Name: "Toast"})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestRepository_ConcurrentConflictingInsert(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]int64, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := chili()
			rec.ID = 7
			results[i], errs[i] = repo.Insert(ctx, rec)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, []int64{7}, results[i])
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRepository_ConcurrentReads(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	ids, err := repo.Insert(ctx, chili())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := repo.FindByID(ctx, ids[0])
			assert.NoError(t, err)
			assert.NotNil(t, got)
		}()
	}
	wg.Wait()
}

func TestRepository_ClosedStoreReportsStorageIO(t *testing.T) {
	ctx := context.Background()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "recipes.db"))
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	_, err = repo.FindByID(ctx, 1)
	assert.True(t, errors.IsStorageIO(err), "got %v", err)

	_, err = repo.FindAll(ctx)
	assert.True(t, errors.IsStorageIO(err), "got %v", err)

	_, err = repo.Insert(ctx, chili())
	assert.True(t, errors.IsStorageIO(err), "got %v", err)

	_, err = repo.Delete(ctx, chili())
	assert.True(t, errors.IsStorageIO(err), "got %v", err)
}

func TestRecipe_CloneAndPreview(t *testing.T) {
	rec := chili()
	clone := rec.Clone()
	clone.ImageURLs[0] = "changed"

	assert.Equal(t, "https://img.example.com/chili-90.jpg", rec.PreviewURL())
	assert.Equal(t, "changed", clone.PreviewURL())
	assert.Equal(t, "", (&Recipe{}).PreviewURL())
	assert.NotNil(t, (&Recipe{}).Clone().Ingredients)
}
