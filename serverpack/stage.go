package serverpack

import (
	"context"
	"path"
	"path/filepath"

	modrinthApi "codeberg.org/jmansfield/go-modrinth/modrinth"

	"github.com/leocov-dev/mrserver/core"
	"github.com/leocov-dev/mrserver/fileio"
)

type modEntry struct {
	file      core.PackFile
	path      string
	algorithm string
	hash      string
}

// stage sorts manifest entries into client-only skips, mods awaiting classification and
// plain files, then resolves and classifies the mods.
func (r *run) stage(ctx context.Context) error {
	var mods []modEntry
	hashesByAlgorithm := make(map[string][]string)

	for _, f := range r.index.Files {
		p, err := f.CleanPath()
		if err != nil {
			r.logger.Warn("Skipping file with invalid path", "path", f.Path, "err", err)
			r.report.InvalidPath = append(r.report.InvalidPath, f.Path)
			continue
		}
		if r.a.opts.Matcher.Excluded(p) {
			r.logger.Info("Skipping client-only file", "path", p)
			r.report.ClientOnly = append(r.report.ClientOnly, p)
			continue
		}

		if f.IsMod() {
			algorithm, hash := f.PrimaryHash()
			if hash == "" {
				r.logger.Warn("Skipping mod without sha1 or sha512 hash", "path", p)
				r.report.MissingHash = append(r.report.MissingHash, p)
				continue
			}
			mods = append(mods, modEntry{file: f, path: p, algorithm: algorithm, hash: hash})
			hashesByAlgorithm[algorithm] = append(hashesByAlgorithm[algorithm], hash)
			continue
		}

		dest, err := fileio.SafeJoin(r.outputDir, p)
		if err != nil {
			r.report.InvalidPath = append(r.report.InvalidPath, f.Path)
			continue
		}
		r.tasks = append(r.tasks, taskFor(f, dest, p))
	}

	if len(mods) == 0 {
		return nil
	}

	versions := make(map[string]*modrinthApi.Version)
	for _, algorithm := range core.PreferredHashList {
		hashes := hashesByAlgorithm[algorithm]
		if len(hashes) == 0 {
			continue
		}
		for hash, v := range r.a.resolver.ResolveVersions(ctx, algorithm, hashes) {
			versions[hash] = v
		}
	}

	projectIDs := make(map[string]string, len(mods))
	var ids []string
	for _, m := range mods {
		v := versions[m.hash]
		if v == nil || v.ProjectID == nil || *v.ProjectID == "" {
			r.logger.Warn("Could not resolve project for mod", "path", m.path, "hash", m.hash)
			r.report.UnresolvedVersions++
			continue
		}
		projectIDs[m.hash] = *v.ProjectID
		ids = append(ids, *v.ProjectID)
	}

	var projects map[string]*modrinthApi.Project
	if len(ids) > 0 {
		projects = r.a.resolver.ResolveProjects(ctx, ids)
	}

	for _, m := range mods {
		id := projectIDs[m.hash]
		var project *modrinthApi.Project
		if id != "" {
			project = projects[id]
			if project == nil {
				r.report.UnresolvedProjects++
			}
		}

		support := core.Classify(project)
		decision := ModDecision{Path: m.path, ProjectID: id, Support: support}
		if !support.Included() {
			r.logger.Info("Skipping mod", "path", m.path, "server", support)
			r.report.Excluded = append(r.report.Excluded, decision)
			continue
		}

		name := path.Base(m.path)
		r.logger.Info("Including mod", "path", m.path, "server", support)
		r.report.Included = append(r.report.Included, decision)
		r.tasks = append(r.tasks, taskFor(m.file, filepath.Join(r.outputDir, "mods", name), name))
	}

	if r.report.UnresolvedVersions > 0 || r.report.UnresolvedProjects > 0 {
		r.logger.Warn("Some mods have no metadata and were skipped",
			"unresolved_versions", r.report.UnresolvedVersions,
			"unresolved_projects", r.report.UnresolvedProjects)
	}
	return nil
}

func taskFor(f core.PackFile, dest string, name string) fileio.Task {
	return fileio.Task{
		URLs:   f.Downloads,
		Dest:   dest,
		Name:   name,
		Hashes: f.Hashes,
		Size:   f.FileSize,
	}
}
