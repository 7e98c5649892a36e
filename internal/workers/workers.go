// Package workers is the bounded worker pool shared by the batch driver, the metadata
// resolver and the download engine.
package workers

import (
	"github.com/sourcegraph/conc/pool"
)

// Width is the effective pool size for n tasks: min(maxParallel, n), never below 1.
func Width(maxParallel int, n int) int {
	w := maxParallel
	if n < w {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Pool runs submitted tasks on at most Width goroutines. Go blocks while all workers are busy.
type Pool struct {
	p *pool.Pool
}

func New(maxParallel int, tasks int) *Pool {
	return &Pool{p: pool.New().WithMaxGoroutines(Width(maxParallel, tasks))}
}

func (p *Pool) Go(f func()) {
	p.p.Go(f)
}

// Wait blocks until every submitted task has returned. Panics in tasks are re-raised here.
func (p *Pool) Wait() {
	p.p.Wait()
}

// ForEach calls fn for every item with bounded parallelism and waits for all of them.
func ForEach[T any](items []T, maxParallel int, fn func(T)) {
	if len(items) == 0 {
		return
	}
	p := New(maxParallel, len(items))
	for _, item := range items {
		item := item
		p.Go(func() { fn(item) })
	}
	p.Wait()
}

// Map is ForEach with results, returned in input order.
func Map[T any, R any](items []T, maxParallel int, fn func(T) R) []R {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results
	}
	p := New(maxParallel, len(items))
	for i, item := range items {
		i, item := i, item
		p.Go(func() { results[i] = fn(item) })
	}
	p.Wait()
	return results
}
