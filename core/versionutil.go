package core

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/unascribed/FlexVer/go/flexver"
	"golang.org/x/exp/slices"
)

// SortDescending returns a sorted, deduplicated copy of versions, newest first.
func SortDescending(versions []string) []string {
	sorted := slices.Clone(versions)
	flexver.VersionSlice(sorted).Sort()
	sorted = slices.Compact(sorted)
	slices.Reverse(sorted)
	return sorted
}

// NeoForgeGameVersion derives the Minecraft version a NeoForge release targets.
// NeoForge numbers releases <minor>.<patch>.<build> after Minecraft 1.<minor>.<patch>;
// the 47.x line is the legacy 1.20.1 fork that kept Forge numbering.
func NeoForgeGameVersion(neoforgeVersion string) (string, bool) {
	v, err := semver.NewVersion(neoforgeVersion)
	if err != nil || v.Major() < 20 {
		return "", false
	}
	if isLegacyNeoForge(v) {
		return "1.20.1", true
	}
	if v.Minor() == 0 {
		return fmt.Sprintf("1.%d", v.Major()), true
	}
	return fmt.Sprintf("1.%d.%d", v.Major(), v.Minor()), true
}

// CheckLoaderGameVersion returns a non-nil error when the loader version is known to
// target a different Minecraft version than the pack declares.
func CheckLoaderGameVersion(loader Loader, mcVersion string) error {
	if _, ok := loader.(NeoForge); !ok {
		return nil
	}
	target, ok := NeoForgeGameVersion(loader.Version())
	if !ok || target == mcVersion {
		return nil
	}
	return fmt.Errorf("%s %s targets Minecraft %s, pack declares %s", loader.FriendlyName(), loader.Version(), target, mcVersion)
}

func isLegacyNeoForge(v *semver.Version) bool {
	return v.Major() == 47
}

// IsLegacyNeoForgeVersion reports whether a NeoForge version uses the legacy forge coordinates.
func IsLegacyNeoForgeVersion(version string) bool {
	v, err := semver.NewVersion(version)
	return err == nil && isLegacyNeoForge(v)
}
