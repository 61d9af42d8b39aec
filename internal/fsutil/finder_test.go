package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root, rel string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, nil, 0o600))
	return p
}

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	a := touch(t, root, "a/Foo.unit")
	b := touch(t, root, "b/c/Bar.unit")
	touch(t, root, "notes.txt")

	files, err := FindFilesByExtension(root, ".unit")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, files)
}

func TestFindFilesByExtension_MissingRoot(t *testing.T) {
	_, err := FindFilesByExtension(filepath.Join(t.TempDir(), "nope"), ".unit")
	assert.Error(t, err)
}

func TestFindFilesByExtension_EmptyExtensionPanics(t *testing.T) {
	assert.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir(), "") })
}

func TestFindUnitNames(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "b/c/Bar.unit")
	touch(t, root, "a/Foo.unit")
	touch(t, root, "Top.unit")
	bad := touch(t, root, "1bad/Thing.unit")
	touch(t, root, "readme.md")

	names, skipped, err := FindUnitNames(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"Top", "a.Foo", "b.c.Bar"}, names)
	assert.Equal(t, []string{bad}, skipped)
}
