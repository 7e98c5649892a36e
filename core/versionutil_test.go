package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortDescending(t *testing.T) {
	input := []string{"0.11.2", "1.0.1", "0.9.0", "1.0.1", "0.11.10"}

	got := SortDescending(input)

	assert.Equal(t, []string{"1.0.1", "0.11.10", "0.11.2", "0.9.0"}, got)
	assert.Equal(t, "0.11.2", input[0], "input must not be modified")
}

func TestNeoForgeGameVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
		ok      bool
	}{
		{"20.4.237", "1.20.4", true},
		{"21.0.167", "1.21", true},
		{"21.1.0-beta", "1.21.1", true},
		{"47.1.82", "1.20.1", true},
		{"1.20.1-47.1.82", "", false},
		{"not-a-version", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, ok := NeoForgeGameVersion(tt.version)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckLoaderGameVersion(t *testing.T) {
	assert.NoError(t, CheckLoaderGameVersion(NeoForge{version: "20.4.237"}, "1.20.4"))
	assert.Error(t, CheckLoaderGameVersion(NeoForge{version: "20.4.237"}, "1.20.1"))
	assert.NoError(t, CheckLoaderGameVersion(NeoForge{version: "47.1.82"}, "1.20.1"))
	assert.NoError(t, CheckLoaderGameVersion(Fabric{version: "0.15.0"}, "1.20.1"))
}
