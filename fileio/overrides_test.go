package fileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		f, err := CreateFile(filepath.Join(root, filepath.FromSlash(name)))
		require.NoError(t, err)
		_, err = f.WriteString(content)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	writeFiles(t, src, map[string]string{
		"config/a.toml":              "override",
		"mods/extra.jar":             "jar",
		"resourcepacks/faithful.zip": "zip",
		"essential/config.json":      "{}",
		"options.txt":                "fov:70",
		"config/options.txt":         "kept",
	})
	writeFiles(t, dest, map[string]string{"config/a.toml": "downloaded"})

	copied, skipped, err := CopyTree(src, dest, NewClientOnlyMatcher())
	require.NoError(t, err)

	assert.Equal(t, 3, copied)
	assert.ElementsMatch(t, []string{"resourcepacks/", "essential/", "options.txt"}, skipped)

	data, err := os.ReadFile(filepath.Join(dest, "config", "a.toml"))
	require.NoError(t, err)
	assert.Equal(t, "override", string(data), "overrides replace existing files")

	assert.FileExists(t, filepath.Join(dest, "mods", "extra.jar"))
	assert.FileExists(t, filepath.Join(dest, "config", "options.txt"))
	assert.NoFileExists(t, filepath.Join(dest, "options.txt"))
	assert.NoDirExists(t, filepath.Join(dest, "resourcepacks"))
}

func TestCopyTreeMissingSource(t *testing.T) {
	copied, skipped, err := CopyTree(filepath.Join(t.TempDir(), "nope"), t.TempDir(), nil)
	assert.NoError(t, err)
	assert.Zero(t, copied)
	assert.Empty(t, skipped)
}
