// Package serverpack assembles dedicated server directories from Modrinth modpacks.
package serverpack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/leocov-dev/mrserver/core"
	"github.com/leocov-dev/mrserver/fileio"
	"github.com/leocov-dev/mrserver/sources"
)

const scratchDirName = ".mrpack-extract"

type Options struct {
	Download   fileio.DownloadOptions
	Endpoints  core.Endpoints
	JavaMemory string
	HTTP       *http.Client
	Logger     *log.Logger
	// Matcher defaults to the built-in client-only patterns.
	Matcher *fileio.ClientOnlyMatcher
}

type Assembler struct {
	resolver *sources.Resolver
	opts     Options
}

func NewAssembler(resolver *sources.Resolver, opts Options) *Assembler {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.HTTP == nil {
		opts.HTTP = http.DefaultClient
	}
	if opts.Matcher == nil {
		opts.Matcher = fileio.NewClientOnlyMatcher()
	}
	if opts.Endpoints == (core.Endpoints{}) {
		opts.Endpoints = core.DefaultEndpoints
	}
	if opts.Download.HTTP == nil {
		opts.Download.HTTP = opts.HTTP
	}
	return &Assembler{resolver: resolver, opts: opts}
}

// run carries the state of one Assemble call from step to step.
type run struct {
	a         *Assembler
	logger    *log.Logger
	download  fileio.DownloadOptions
	archive   string
	outputDir string
	scratch   string

	index  core.PackIndex
	loader core.Loader
	tasks  []fileio.Task
	report *Report
}

type step struct {
	name string
	fn   func(r *run, ctx context.Context) error
}

var steps = []step{
	{"extract", (*run).extract},
	{"parse manifest", (*run).parseManifest},
	{"acquire installer", (*run).acquireInstaller},
	{"classify and stage", (*run).stage},
	{"download", (*run).downloadAll},
	{"apply overrides", (*run).applyOverrides},
	{"emit start scripts", (*run).emitStartScripts},
}

// Assemble builds a server directory for the archive at outputDir, which is wiped first.
// Only archive and manifest problems are returned as errors; metadata, installer and
// download failures are logged and reflected in the report.
func (a *Assembler) Assemble(ctx context.Context, archive string, outputDir string) (*Report, error) {
	stem := strings.TrimSuffix(filepath.Base(archive), filepath.Ext(archive))
	logger := a.opts.Logger.With("pack", stem)
	download := a.opts.Download
	download.Logger = logger

	r := &run{
		a:         a,
		logger:    logger,
		download:  download,
		archive:   archive,
		outputDir: outputDir,
		scratch:   filepath.Join(outputDir, scratchDirName),
		report: &Report{
			Name:      core.DisplayName(stem),
			Archive:   archive,
			OutputDir: outputDir,
		},
	}
	defer r.cleanup()

	for _, s := range steps {
		logger.Debug("Running step", "step", s.name)
		if err := s.fn(r, ctx); err != nil {
			logger.Error("Failed to assemble server", "step", s.name, "err", err)
			return r.report, err
		}
	}

	logger.Info("Server ready", "dir", outputDir, "mods", len(r.report.Included))
	return r.report, nil
}

func (r *run) extract(_ context.Context) error {
	if _, err := os.Stat(r.archive); err != nil {
		return err
	}
	if err := os.RemoveAll(r.outputDir); err != nil {
		return fmt.Errorf("failed to clear output directory: %w", err)
	}
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return err
	}

	n, err := fileio.ExtractZip(r.archive, r.scratch)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}
	r.logger.Debug("Extracted archive", "files", n, "dir", r.scratch)

	if _, err := os.Stat(filepath.Join(r.scratch, core.PackIndexFile)); err != nil {
		return ErrMissingManifest
	}
	return nil
}

func (r *run) parseManifest(_ context.Context) error {
	f, err := os.Open(filepath.Join(r.scratch, core.PackIndexFile))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMissingManifest, err)
	}
	defer f.Close()

	r.index, err = core.ParsePackIndex(f)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if r.index.Game != "" && r.index.Game != "minecraft" {
		r.logger.Warn("Modpack targets an unexpected game", "game", r.index.Game)
	}
	if r.index.Name != "" {
		r.report.Name = r.index.Name
	}

	mcVersion, err := r.index.GetMCVersion()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMissingGameVersion, err)
	}
	r.report.GameVersion = mcVersion

	r.loader, err = core.DetectLoader(r.index.Dependencies)
	if err != nil {
		return err
	}
	r.report.Loader = r.loader.Name()
	r.report.LoaderVersion = r.loader.Version()

	if err := core.CheckLoaderGameVersion(r.loader, mcVersion); err != nil {
		r.logger.Warn("Loader version mismatch", "err", err)
	}
	r.logger.Info("Detected modpack", "minecraft", mcVersion, "loader", r.loader.FriendlyName(), "version", r.loader.Version())
	return nil
}

func (r *run) acquireInstaller(ctx context.Context) error {
	env := core.InstallEnv{
		Dir:         r.outputDir,
		GameVersion: r.report.GameVersion,
		Endpoints:   r.a.opts.Endpoints,
		HTTP:        r.a.opts.HTTP,
		Logger:      r.logger,
		Fetch: func(ctx context.Context, url, dest string) error {
			return fileio.DownloadFile(ctx, fileio.Task{URLs: []string{url}, Dest: dest, Name: filepath.Base(dest)}, r.download)
		},
	}

	jar, err := r.loader.Installer(ctx, env)
	if err != nil {
		r.logger.Warn("No server jar acquired, the installer has to be run manually", "err", err)
		return nil
	}
	r.report.ServerJar = jar
	return nil
}

func (r *run) downloadAll(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Join(r.outputDir, "mods"), 0o755); err != nil {
		return err
	}
	if len(r.tasks) == 0 {
		r.logger.Info("Nothing to download")
		return nil
	}

	r.logger.Info("Downloading files", "count", len(r.tasks))
	if !fileio.DownloadMany(ctx, r.tasks, r.download) {
		r.report.DownloadsFailed = true
		r.logger.Warn("Some downloads failed, continuing")
	}
	return nil
}

func (r *run) applyOverrides(_ context.Context) error {
	for _, dir := range []string{"overrides", "server-overrides"} {
		copied, skipped, err := fileio.CopyTree(filepath.Join(r.scratch, dir), r.outputDir, r.a.opts.Matcher)
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", dir, err)
		}
		for _, p := range skipped {
			r.logger.Info("Skipping client-only override", "path", p)
		}
		r.report.ClientOnly = append(r.report.ClientOnly, skipped...)
		if copied > 0 {
			r.logger.Info("Applied overrides", "dir", dir, "files", copied)
		}
	}
	return nil
}

func (r *run) emitStartScripts(_ context.Context) error {
	if r.report.ServerJar == "" {
		r.logger.Warn("Skipping start scripts, no server jar available")
		return nil
	}

	scripts := r.loader.StartScripts(r.report.ServerJar, core.JavaArgs(r.a.opts.JavaMemory))
	if err := os.WriteFile(filepath.Join(r.outputDir, "start.bat"), []byte(scripts.Bat), 0o644); err != nil {
		return err
	}
	sh := filepath.Join(r.outputDir, "start.sh")
	if err := os.WriteFile(sh, []byte(scripts.Sh), 0o755); err != nil {
		return err
	}
	if err := os.Chmod(sh, 0o755); err != nil {
		return err
	}
	r.report.StartScripts = true
	return nil
}

func (r *run) cleanup() {
	if err := os.RemoveAll(r.scratch); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Debug("Failed to remove extraction directory", "dir", r.scratch, "err", err)
	}
}
