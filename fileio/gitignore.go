package fileio

import (
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

var clientOnlyDefaults = []string{
	// Client-only directories, excluded at any depth
	"resourcepacks/",
	"shaderpacks/",
	"essential/",

	// Client settings, only at the pack root
	"/options.txt",
	"/servers.dat",
}

// ClientOnlyMatcher reports whether a pack-relative path only matters to a game client.
type ClientOnlyMatcher struct {
	ignore *gitignore.GitIgnore
}

// NewClientOnlyMatcher compiles the default client-only patterns plus any extra lines,
// which use gitignore syntax (a leading ! re-includes a path).
func NewClientOnlyMatcher(extra ...string) *ClientOnlyMatcher {
	lines := make([]string, 0, len(clientOnlyDefaults)+len(extra))
	lines = append(lines, clientOnlyDefaults...)
	lines = append(lines, extra...)
	return &ClientOnlyMatcher{ignore: gitignore.CompileIgnoreLines(lines...)}
}

func (m *ClientOnlyMatcher) Excluded(relPath string) bool {
	p := filepath.ToSlash(relPath)
	p = strings.TrimPrefix(p, "./")
	if p == "" {
		return false
	}
	return m.ignore.MatchesPath(p)
}
