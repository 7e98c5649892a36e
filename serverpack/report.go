package serverpack

import (
	"errors"

	"github.com/leocov-dev/mrserver/core"
)

var (
	ErrCorruptArchive     = errors.New("corrupt modpack archive")
	ErrMissingManifest    = errors.New("modpack archive has no " + core.PackIndexFile)
	ErrInvalidManifest    = errors.New("invalid " + core.PackIndexFile)
	ErrMissingGameVersion = errors.New("no minecraft version specified in modpack")
	ErrUnknownLoader      = core.ErrUnknownLoader
	ErrNoPacks            = errors.New("no .mrpack files found")
)

// ModDecision records how one mods/ entry was classified.
type ModDecision struct {
	Path      string
	ProjectID string
	Support   core.ServerSupport
}

// Report summarises one assembled server directory.
type Report struct {
	Name          string
	Archive       string
	OutputDir     string
	GameVersion   string
	Loader        string
	LoaderVersion string
	// ServerJar is empty when the installer could not be acquired or the loader has no
	// launchable jar.
	ServerJar string

	Included []ModDecision
	Excluded []ModDecision
	// ClientOnly lists manifest and override paths dropped by the client-only matcher.
	ClientOnly  []string
	MissingHash []string
	InvalidPath []string

	UnresolvedVersions int
	UnresolvedProjects int
	DownloadsFailed    bool
	StartScripts       bool
}

func (r *Report) IncludedPaths() []string {
	paths := make([]string, 0, len(r.Included))
	for _, m := range r.Included {
		paths = append(paths, m.Path)
	}
	return paths
}
