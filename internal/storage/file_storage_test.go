// internal/storage/file_storage_test.go
package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *FileStorage {
	t.Helper()
	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return fs
}

func TestSaveAndLoadJSONFile(t *testing.T) {
	fs := newTestStorage(t)

	in := map[string]int{"alpha": 1, "beta": 2}
	require.NoError(t, fs.SaveJSONFile("area", "data.json", in))

	var out map[string]int
	require.NoError(t, fs.LoadJSONFile("area", "data.json", &out))
	assert.Equal(t, in, out)
}

func TestDeleteFile(t *testing.T) {
	fs := newTestStorage(t)

	require.NoError(t, fs.SaveTextFile("area", "note.txt", []byte("hello")))
	assert.True(t, fs.FileExists("area", "note.txt"))

	require.NoError(t, fs.DeleteFile("area", "note.txt"))
	assert.False(t, fs.FileExists("area", "note.txt"))

	assert.Error(t, fs.DeleteFile("area", "note.txt"))
}

func TestBlobRoundTrip(t *testing.T) {
	fs := newTestStorage(t)

	ok, err := fs.LoadBlob("annotations", &struct{}{})
	require.NoError(t, err)
	assert.False(t, ok, "missing blob must not be an error")

	type record struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	in := []record{{ID: "a", Name: "first"}, {ID: "b", Name: "second"}}
	require.NoError(t, fs.SaveBlob("annotations", in))

	var out []record
	ok, err = fs.LoadBlob("annotations", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, out)
}

func TestBlobKeyNormalization(t *testing.T) {
	fs := newTestStorage(t)

	require.NoError(t, fs.SaveBlob("../escape", "value"))
	assert.True(t, fs.FileExists("blobs", ".._escape.json"))
}

func TestCacheInvalidationOnWrite(t *testing.T) {
	fs := newTestStorage(t)

	require.NoError(t, fs.SaveTextFile("area", "v.txt", []byte("one")))
	data, err := fs.LoadTextFile("area", "v.txt")
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))

	require.NoError(t, fs.SaveTextFile("area", "v.txt", []byte("two")))
	data, err = fs.LoadTextFile("area", "v.txt")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data), "write must invalidate the read cache")
}
