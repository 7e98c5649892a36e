package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

var ErrUnknownLoader = errors.New("unsupported or unknown mod loader")

// Endpoints are the base URLs loader installers are fetched from.
type Endpoints struct {
	ForgeMaven    string
	NeoForgeMaven string
	QuiltMaven    string
	FabricMeta    string
}

var DefaultEndpoints = Endpoints{
	ForgeMaven:    "https://maven.minecraftforge.net",
	NeoForgeMaven: "https://maven.neoforged.net/releases",
	QuiltMaven:    "https://maven.quiltmc.org/repository/release",
	FabricMeta:    "https://meta.fabricmc.net",
}

// InstallEnv is everything a Loader needs to acquire its installer or server jar.
type InstallEnv struct {
	Dir         string
	GameVersion string
	Endpoints   Endpoints
	HTTP        *http.Client
	// Fetch downloads url to dest, retrying as configured.
	Fetch  func(ctx context.Context, url, dest string) error
	Logger *log.Logger
}

// Loader is the mod loader a server has to be built against. The set of implementations
// is closed: Forge, Fabric, Quilt and NeoForge.
type Loader interface {
	Name() string
	FriendlyName() string
	Version() string
	// Installer fetches the installer or server jar into env.Dir and returns the file name
	// start scripts should launch. An empty name means no launchable jar is available.
	Installer(ctx context.Context, env InstallEnv) (string, error)
	// StartScripts renders start.bat and start.sh for the given jar.
	StartScripts(jar string, javaArgs string) StartScripts

	sealed()
}

// loaderKeys is the detection priority of mrpack dependency keys.
var loaderKeys = []struct {
	key string
	new func(version string) Loader
}{
	{"forge", func(v string) Loader { return Forge{version: GetRawForgeVersion(v)} }},
	{"fabric-loader", func(v string) Loader { return Fabric{version: v} }},
	{"quilt-loader", func(v string) Loader { return Quilt{version: v} }},
	{"neoforge", func(v string) Loader { return NeoForge{version: v} }},
}

// DetectLoader picks the loader from the manifest dependency block. When more than one
// loader key is present the first in forge, fabric, quilt, neoforge order wins.
func DetectLoader(dependencies map[string]string) (Loader, error) {
	for _, l := range loaderKeys {
		if v, ok := dependencies[l.key]; ok && v != "" {
			return l.new(v), nil
		}
	}
	return nil, ErrUnknownLoader
}

// GetRawForgeVersion strips a leading "<mcVersion>-" from forge style versions.
func GetRawForgeVersion(version string) string {
	if strings.Contains(version, "-") {
		return strings.SplitN(version, "-", 2)[1]
	}
	return version
}

type Forge struct{ version string }

func (Forge) Name() string         { return "forge" }
func (Forge) FriendlyName() string { return "Forge" }
func (f Forge) Version() string    { return f.version }
func (Forge) sealed()              {}

func (f Forge) Installer(ctx context.Context, env InstallEnv) (string, error) {
	coord := env.GameVersion + "-" + f.version
	name := fmt.Sprintf("forge-%s-installer.jar", coord)
	url := fmt.Sprintf("%s/net/minecraftforge/forge/%s/%s", strings.TrimRight(env.Endpoints.ForgeMaven, "/"), coord, name)

	env.Logger.Info("Downloading Forge installer", "url", url)
	if err := env.Fetch(ctx, url, filepath.Join(env.Dir, name)); err != nil {
		return "", fmt.Errorf("failed to download Forge installer: %w", err)
	}
	return name, nil
}

func (f Forge) StartScripts(jar string, javaArgs string) StartScripts {
	return installerScripts(jar, javaArgs)
}

type NeoForge struct{ version string }

func (NeoForge) Name() string         { return "neoforge" }
func (NeoForge) FriendlyName() string { return "NeoForge" }
func (n NeoForge) Version() string    { return n.version }
func (NeoForge) sealed()              {}

func (n NeoForge) Installer(ctx context.Context, env InstallEnv) (string, error) {
	maven := strings.TrimRight(env.Endpoints.NeoForgeMaven, "/")
	name := fmt.Sprintf("neoforge-%s-installer.jar", n.version)
	url := fmt.Sprintf("%s/net/neoforged/neoforge/%s/%s", maven, n.version, name)
	if IsLegacyNeoForgeVersion(n.version) {
		// 1.20.1 releases are published under the old forge artifact
		coord := env.GameVersion + "-" + n.version
		name = fmt.Sprintf("forge-%s-installer.jar", coord)
		url = fmt.Sprintf("%s/net/neoforged/forge/%s/%s", maven, coord, name)
	}

	env.Logger.Info("Downloading NeoForge installer", "url", url)
	if err := env.Fetch(ctx, url, filepath.Join(env.Dir, name)); err != nil {
		return "", fmt.Errorf("failed to download NeoForge installer: %w", err)
	}
	return name, nil
}

func (n NeoForge) StartScripts(jar string, javaArgs string) StartScripts {
	return installerScripts(jar, javaArgs)
}

type Quilt struct{ version string }

func (Quilt) Name() string         { return "quilt" }
func (Quilt) FriendlyName() string { return "Quilt loader" }
func (q Quilt) Version() string    { return q.version }
func (Quilt) sealed()              {}

// Installer downloads the Quilt installer. It has to be run by hand, so no jar is returned.
func (q Quilt) Installer(ctx context.Context, env InstallEnv) (string, error) {
	name := fmt.Sprintf("quilt-installer-%s.jar", q.version)
	url := fmt.Sprintf("%s/org/quiltmc/quilt-installer/%s/%s", strings.TrimRight(env.Endpoints.QuiltMaven, "/"), q.version, name)

	env.Logger.Info("Downloading Quilt installer", "url", url)
	if err := env.Fetch(ctx, url, filepath.Join(env.Dir, name)); err != nil {
		return "", fmt.Errorf("failed to download Quilt installer: %w", err)
	}
	env.Logger.Info("Quilt installer saved, it must be run manually", "file", name)
	return "", nil
}

func (q Quilt) StartScripts(jar string, javaArgs string) StartScripts {
	return plainScripts(jar, javaArgs)
}

type Fabric struct{ version string }

func (Fabric) Name() string         { return "fabric" }
func (Fabric) FriendlyName() string { return "Fabric loader" }
func (f Fabric) Version() string    { return f.version }
func (Fabric) sealed()              {}

type fabricInstallerVersion struct {
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
}

// Installer downloads the prebuilt Fabric server launcher for the newest stable installer.
func (f Fabric) Installer(ctx context.Context, env InstallEnv) (string, error) {
	meta := strings.TrimRight(env.Endpoints.FabricMeta, "/")

	installer, err := latestFabricInstaller(ctx, env.HTTP, meta+"/v2/versions/installer")
	if err != nil {
		return "", err
	}
	env.Logger.Info("Using Fabric installer", "version", installer)

	name := fmt.Sprintf("fabric-server-mc.%s-loader.%s-installer.%s.jar", env.GameVersion, f.version, installer)
	url := fmt.Sprintf("%s/v2/versions/loader/%s/%s/%s/server/jar", meta, env.GameVersion, f.version, installer)

	env.Logger.Info("Downloading Fabric server jar", "url", url)
	if err := env.Fetch(ctx, url, filepath.Join(env.Dir, name)); err != nil {
		return "", fmt.Errorf("failed to download Fabric server jar: %w", err)
	}
	return name, nil
}

func (f Fabric) StartScripts(jar string, javaArgs string) StartScripts {
	return plainScripts(jar, javaArgs)
}

func latestFabricInstaller(ctx context.Context, client *http.Client, url string) (string, error) {
	resp, err := GetWithUA(ctx, client, url, "application/json")
	if err != nil {
		return "", fmt.Errorf("failed to get Fabric installer versions: %w", err)
	}
	if err := CheckStatus(resp); err != nil {
		return "", fmt.Errorf("failed to get Fabric installer versions: %w", err)
	}
	defer resp.Body.Close()

	var versions []fabricInstallerVersion
	if err := json.NewDecoder(resp.Body).Decode(&versions); err != nil {
		return "", fmt.Errorf("failed to decode Fabric installer versions: %w", err)
	}

	var stable []string
	for _, v := range versions {
		if v.Stable && v.Version != "" {
			stable = append(stable, v.Version)
		}
	}
	if len(stable) == 0 {
		return "", errors.New("no stable Fabric installer version found")
	}
	return SortDescending(stable)[0], nil
}
