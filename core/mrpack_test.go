package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIndex = `{
    "formatVersion": 1,
    "game": "minecraft",
    "versionId": "1.0.0",
    "name": "Sample Pack",
    "files": [
        {
            "path": "mods/sodium.jar",
            "hashes": {"sha1": "AAAA", "sha512": "bbbb"},
            "downloads": ["https://cdn.modrinth.com/sodium.jar", "https://mirror.example/sodium.jar"],
            "fileSize": 10
        },
        {
            "path": "config/sodium.json",
            "hashes": {"sha512": "cccc"},
            "downloads": []
        }
    ],
    "dependencies": {"minecraft": "1.20.1", "fabric-loader": "0.15.0"}
}`

func TestParsePackIndex(t *testing.T) {
	index, err := ParsePackIndex(strings.NewReader(sampleIndex))
	require.NoError(t, err)

	assert.Equal(t, "Sample Pack", index.Name)
	assert.Len(t, index.Files, 2)

	mc, err := index.GetMCVersion()
	assert.NoError(t, err)
	assert.Equal(t, "1.20.1", mc)

	algo, digest := index.Files[0].PrimaryHash()
	assert.Equal(t, "sha1", algo)
	assert.Equal(t, "aaaa", digest)
	assert.Equal(t, "https://cdn.modrinth.com/sodium.jar", index.Files[0].PrimaryURL())
	assert.True(t, index.Files[0].IsMod())

	algo, digest = index.Files[1].PrimaryHash()
	assert.Equal(t, "sha512", algo)
	assert.Equal(t, "cccc", digest)
	assert.Equal(t, "", index.Files[1].PrimaryURL())
	assert.False(t, index.Files[1].IsMod())
}

func TestParsePackIndexInvalid(t *testing.T) {
	_, err := ParsePackIndex(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestGetMCVersionMissing(t *testing.T) {
	_, err := PackIndex{Dependencies: map[string]string{"forge": "47.2.0"}}.GetMCVersion()
	assert.Error(t, err)
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"mods/a.jar", "mods/a.jar", false},
		{"config\\a\\b.toml", "config/a/b.toml", false},
		{"./config/../mods/a.jar", "mods/a.jar", false},
		{"../escape.jar", "", true},
		{"/etc/passwd", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := PackFile{Path: tt.path}.CleanPath()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
