package filetask

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Creates files under root, creating parent directories as needed.
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("int x;\n"), 0o644))
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"a.cpp",
		"b.hpp",
		"c.CPP",
		"README",
		"notes.txt",
		"nested/deep/d.cpp",
		"nested/e.c",
		"nested/.hidden.cpp",
	)

	files, err := Discover(root, []string{"cpp", "hpp"})
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "a.cpp"),
		filepath.Join(root, "b.hpp"),
		filepath.Join(root, "nested/deep/d.cpp"),
		filepath.Join(root, "nested/.hidden.cpp"),
	}
	assert.ElementsMatch(t, want, files)
}

func TestDiscoverNoExtensions(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.cpp")

	files, err := Discover(root, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "absent"), []string{"cpp"})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscoverSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges")
	}

	root := t.TempDir()
	outside := t.TempDir()
	writeTree(t, outside, "linked.cpp", "dir/f.cpp")

	require.NoError(t, os.Symlink(filepath.Join(outside, "linked.cpp"), filepath.Join(root, "a.cpp")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "dir"), filepath.Join(root, "dir.cpp")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "absent.cpp"), filepath.Join(root, "dangling.cpp")))

	files, err := Discover(root, []string{"cpp"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.cpp")}, files)
}
