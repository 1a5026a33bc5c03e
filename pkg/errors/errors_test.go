package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))

	base := stderrors.New("disk full")
	err := Wrap(base, "insert recipe")
	assert.EqualError(t, err, "insert recipe: disk full")
	assert.True(t, Is(err, base))
}

func TestStorageIO(t *testing.T) {
	assert.NoError(t, StorageIO("find_by_id", nil))

	base := stderrors.New("database is locked")
	err := StorageIO("find_by_id", base)
	assert.EqualError(t, err, "storage find_by_id: database is locked")
	assert.True(t, IsStorageIO(err))
	assert.True(t, Is(err, base))

	wrapped := fmt.Errorf("load recipe 7: %w", err)
	assert.True(t, IsStorageIO(wrapped))
}

func TestIsStorageIO_OtherErrors(t *testing.T) {
	assert.False(t, IsStorageIO(nil))
	assert.False(t, IsStorageIO(ErrNotFound))
	assert.False(t, IsStorageIO(Wrap(ErrNotFound, "show")))
}
