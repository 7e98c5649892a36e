package serverpack

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/leocov-dev/mrserver/internal/workers"
)

const MaxBatchParallel = 10

// FindPacks returns path itself when it is a file, or every .mrpack below it when it is a directory.
func FindPacks(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var packs []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".mrpack") {
			packs = append(packs, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(packs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPacks, path)
	}
	return packs, nil
}

// PackOutputDir is where the server for archive is written below outputBase.
func PackOutputDir(outputBase string, archive string) string {
	base := filepath.Base(archive)
	return filepath.Join(outputBase, strings.TrimSuffix(base, filepath.Ext(base)))
}

// PackOutputDirs maps every archive to its own directory below outputBase. Archives that
// share a file stem, such as a/pack.mrpack and b/pack.mrpack, get -2, -3, ... suffixes in
// input order.
func PackOutputDirs(outputBase string, archives []string) []string {
	dirs := make([]string, len(archives))
	taken := make(map[string]struct{}, len(archives))
	for i, archive := range archives {
		base := PackOutputDir(outputBase, archive)
		dir := base
		for n := 2; ; n++ {
			if _, used := taken[strings.ToLower(dir)]; !used {
				break
			}
			dir = fmt.Sprintf("%s-%d", base, n)
		}
		taken[strings.ToLower(dir)] = struct{}{}
		dirs[i] = dir
	}
	return dirs
}

type PackResult struct {
	Archive   string
	OutputDir string
	Report    *Report
	Err       error
}

type BatchResult struct {
	Results   []PackResult
	Succeeded int
}

func (b BatchResult) Total() int {
	return len(b.Results)
}

// AssembleAll assembles every archive into its own directory below outputBase, as laid
// out by PackOutputDirs. With
// parallel set, up to MaxBatchParallel packs are built at once. A failing pack never
// stops the others.
func (a *Assembler) AssembleAll(ctx context.Context, archives []string, outputBase string, parallel bool) BatchResult {
	width := 1
	assembler := a
	if parallel {
		width = MaxBatchParallel
		// one progress bar per pack would interleave on a shared writer
		quiet := *a
		quiet.opts.Download.Progress = nil
		assembler = &quiet
	}

	type job struct{ archive, outputDir string }
	dirs := PackOutputDirs(outputBase, archives)
	jobs := make([]job, len(archives))
	for i, archive := range archives {
		jobs[i] = job{archive: archive, outputDir: dirs[i]}
	}

	results := workers.Map(jobs, width, func(j job) PackResult {
		report, err := assembler.Assemble(ctx, j.archive, j.outputDir)
		return PackResult{Archive: j.archive, OutputDir: j.outputDir, Report: report, Err: err}
	})

	batch := BatchResult{Results: results}
	for _, r := range results {
		if r.Err == nil {
			batch.Succeeded++
		}
	}
	return batch
}
