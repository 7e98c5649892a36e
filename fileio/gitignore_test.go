package fileio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientOnlyMatcher(t *testing.T) {
	m := NewClientOnlyMatcher()

	tests := []struct {
		path string
		want bool
	}{
		{"resourcepacks/foo.zip", true},
		{"mods/resourcepacks/foo.zip", true},
		{"shaderpacks/bsl.zip", true},
		{"essential/config.json", true},
		{"options.txt", true},
		{"servers.dat", true},
		{"config/options.txt", false},
		{"mods/sodium.jar", false},
		{"config/essential.toml", false},
		{"resourcepacks.txt", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Excluded(tt.path))
		})
	}
}

func TestClientOnlyMatcherDotSlashPrefix(t *testing.T) {
	m := NewClientOnlyMatcher()
	assert.True(t, m.Excluded("./resourcepacks/foo.zip"))
}

func TestClientOnlyMatcherExtraPatterns(t *testing.T) {
	m := NewClientOnlyMatcher("screenshots/", "!/options.txt")

	assert.True(t, m.Excluded("screenshots/2024.png"))
	assert.False(t, m.Excluded("options.txt"))
}
