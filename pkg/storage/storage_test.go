package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "/media/")

	rel, err := store.Save("documents/7", "Aadhar Card.PDF", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "documents/7/"))
	assert.True(t, strings.HasSuffix(rel, ".pdf"))
	assert.Equal(t, "/media/"+rel, store.URL(rel))

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(rel))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete(rel))
}

func TestLocalStore_DirCannotEscapeRoot(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "/media")

	rel, err := store.Save("../../etc", "x.txt", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "etc/"))
	_, err = os.Stat(filepath.Join(root, "etc"))
	assert.NoError(t, err)
}

func TestLocalStore_DeleteRejectsRoot(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/media")
	assert.ErrorIs(t, store.Delete(""), ErrInvalidPath)
	assert.ErrorIs(t, store.Delete("/"), ErrInvalidPath)
}

func TestLocalStore_URLEmpty(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/media")
	assert.Equal(t, "", store.URL(""))
}
