package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// PackIndexFile is the manifest at the root of every .mrpack archive.
const PackIndexFile = "modrinth.index.json"

// PackIndex is the parsed modrinth.index.json document.
type PackIndex struct {
	FormatVersion uint32            `json:"formatVersion"`
	Game          string            `json:"game"`
	VersionID     string            `json:"versionId"`
	Name          string            `json:"name"`
	Summary       string            `json:"summary,omitempty"`
	Files         []PackFile        `json:"files"`
	Dependencies  map[string]string `json:"dependencies"`
}

type PackFile struct {
	Path   string            `json:"path"`
	Hashes map[string]string `json:"hashes"`
	Env    *struct {
		Client string `json:"client"`
		Server string `json:"server"`
	} `json:"env,omitempty"`
	Downloads []string `json:"downloads"`
	FileSize  uint64   `json:"fileSize"`
}

func ParsePackIndex(r io.Reader) (PackIndex, error) {
	var index PackIndex
	if err := json.NewDecoder(r).Decode(&index); err != nil {
		return PackIndex{}, fmt.Errorf("failed to decode %s: %w", PackIndexFile, err)
	}
	return index, nil
}

// GetMCVersion returns the required minecraft dependency.
func (p PackIndex) GetMCVersion() (string, error) {
	mcVersion, ok := p.Dependencies["minecraft"]
	if !ok || mcVersion == "" {
		return "", errors.New("no minecraft version specified in modpack")
	}
	return mcVersion, nil
}

// PrimaryHash returns the first available hash from PreferredHashList.
func (f PackFile) PrimaryHash() (algorithm string, digest string) {
	for _, algo := range PreferredHashList {
		if h := f.Hashes[algo]; h != "" {
			return algo, strings.ToLower(h)
		}
	}
	return "", ""
}

// PrimaryURL returns the first download candidate. Alternates are not tried.
func (f PackFile) PrimaryURL() string {
	if len(f.Downloads) == 0 {
		return ""
	}
	return f.Downloads[0]
}

// CleanPath normalises the manifest path and rejects anything escaping the pack root.
func (f PackFile) CleanPath() (string, error) {
	p := strings.ReplaceAll(f.Path, "\\", "/")
	if p == "" || path.IsAbs(p) {
		return "", fmt.Errorf("invalid file path %q", f.Path)
	}
	p = path.Clean(p)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("file path %q escapes the pack root", f.Path)
	}
	return p, nil
}

// IsMod reports whether the file lives in the top-level mods directory.
func (f PackFile) IsMod() bool {
	p, err := f.CleanPath()
	return err == nil && strings.HasPrefix(p, "mods/")
}
