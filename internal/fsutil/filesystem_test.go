package fsutil

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem_RoundTrip(t *testing.T) {
	var fsys FileSystem = OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "plots", "run")

	require.NoError(t, fsys.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "cloud.json")
	require.NoError(t, fsys.WriteFile(path, []byte(`{"data": []}`), 0644))

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"data": []}`, string(data))

	_, err = fsys.ReadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMemoryFileSystem_RoundTrip(t *testing.T) {
	mfs := NewMemoryFileSystem()

	require.NoError(t, mfs.WriteFile("/top.csv", []byte("a,b"), 0644))
	require.NoError(t, mfs.WriteFile("local.csv", []byte("c"), 0644))

	data, err := mfs.ReadFile("/top.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b", string(data))

	// Returned slices are copies.
	data[0] = 'z'
	again, err := mfs.ReadFile("/top.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b", string(again))

	_, err = mfs.ReadFile("/nope.csv")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMemoryFileSystem_NeedsParentDir(t *testing.T) {
	mfs := NewMemoryFileSystem()

	err := mfs.WriteFile("/plots/run/a.png", []byte("x"), 0644)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, mfs.MkdirAll("/plots/run", 0755))
	require.NoError(t, mfs.WriteFile("/plots/run/a.png", []byte("x"), 0644))

	_, err = mfs.ReadFile("/plots/run")
	assert.ErrorIs(t, err, fs.ErrInvalid)
	assert.ErrorIs(t, mfs.WriteFile("/plots/run", []byte("x"), 0644), fs.ErrExist)
}

func TestMemoryFileSystem_MkdirOverFile(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/report", []byte("x"), 0644))

	err := mfs.MkdirAll("/report/2024", 0755)
	assert.ErrorIs(t, err, fs.ErrExist)
	assert.Empty(t, mfs.Files("/report"))
}

func TestMemoryFileSystem_Files(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.MkdirAll("/out/a", 0755))
	require.NoError(t, mfs.MkdirAll("/outside", 0755))
	for _, name := range []string{"/out/b.html", "/out/a/c.png", "/outside/d.png"} {
		require.NoError(t, mfs.WriteFile(name, nil, 0644))
	}

	assert.Equal(t, []string{"/out/a/c.png", "/out/b.html"}, mfs.Files("/out"))
	assert.Equal(t, []string{"/out/a/c.png"}, mfs.Files("/out/a/"))
}
