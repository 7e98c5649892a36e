package fileio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/vbauerster/mpb/v4"
	"github.com/vbauerster/mpb/v4/decor"

	"github.com/leocov-dev/mrserver/core"
	"github.com/leocov-dev/mrserver/internal/workers"
)

const (
	DefaultDownloadParallel = 10
	DefaultMaxRetries       = 3
	DefaultRetryDelay       = 2 * time.Second

	copyBufferSize = 16 * 1024
)

var ErrNoDownloadURL = errors.New("no download URL")

// Task is one file to fetch. Only the first URL is tried.
type Task struct {
	URLs   []string
	Dest   string
	Name   string
	Hashes map[string]string
	Size   uint64
}

type DownloadOptions struct {
	MaxParallel int
	// MaxRetries is the total number of attempts per task.
	MaxRetries int
	RetryDelay time.Duration
	HTTP       *http.Client
	Logger     *log.Logger
	// Progress receives the progress bar. Nil disables it.
	Progress io.Writer
}

func (o DownloadOptions) withDefaults() DownloadOptions {
	if o.MaxParallel < 1 {
		o.MaxParallel = DefaultDownloadParallel
	}
	if o.MaxRetries < 1 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}
	if o.HTTP == nil {
		o.HTTP = http.DefaultClient
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// DownloadMany fetches every task on a bounded pool and reports whether all of them
// succeeded. A failing task never stops its siblings.
func DownloadMany(ctx context.Context, tasks []Task, opts DownloadOptions) bool {
	if len(tasks) == 0 {
		return true
	}
	opts = opts.withDefaults()

	out := opts.Progress
	if out == nil {
		out = io.Discard
	}
	progress := mpb.New(mpb.WithOutput(out), mpb.WithWidth(40))
	bar := progress.AddBar(int64(len(tasks)),
		mpb.PrependDecorators(
			decor.Name("Downloading"),
			decor.CountersNoUnit(" %d / %d"),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)

	ok := workers.Map(tasks, opts.MaxParallel, func(task Task) bool {
		defer bar.Increment()

		if err := DownloadFile(ctx, task, opts); err != nil {
			opts.Logger.Warn("Download failed", "file", task.Name, "err", err)
			return false
		}
		opts.Logger.Info("Downloaded", "file", task.Name)
		return true
	})
	progress.Wait()

	failed := 0
	for _, success := range ok {
		if !success {
			failed++
		}
	}
	if failed > 0 {
		opts.Logger.Warn("Some downloads failed", "failed", failed, "total", len(tasks))
	}
	return failed == 0
}

// DownloadFile fetches a single task, retrying with a constant delay.
func DownloadFile(ctx context.Context, task Task, opts DownloadOptions) error {
	opts = opts.withDefaults()
	if len(task.URLs) == 0 || task.URLs[0] == "" {
		return ErrNoDownloadURL
	}
	url := task.URLs[0]

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.RetryDelay), uint64(opts.MaxRetries-1)),
		ctx,
	)
	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := fetchTo(ctx, opts.HTTP, url, task)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		opts.Logger.Debug("Retrying download", "file", task.Name, "attempt", attempt, "wait", wait, "err", err)
	})
}

func fetchTo(ctx context.Context, client *http.Client, url string, task Task) error {
	dir := filepath.Dir(task.Dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return backoff.Permanent(err)
	}

	resp, err := core.GetWithUA(ctx, client, url, "*/*")
	if err != nil {
		return err
	}
	if err := core.CheckStatus(resp); err != nil {
		return err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(task.Dest)+".part-*")
	if err != nil {
		return backoff.Permanent(err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	verifier := core.NewHashVerifier(task.Hashes, task.Size)
	buf := make([]byte, copyBufferSize)
	_, err = io.CopyBuffer(io.MultiWriter(tmp, verifier.Writer()), resp.Body, buf)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", task.Name, err)
	}
	if err := verifier.Verify(); err != nil {
		return err
	}

	return os.Rename(tmpName, task.Dest)
}
