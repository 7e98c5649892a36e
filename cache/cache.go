// Package cache memoizes Modrinth metadata lookups for the lifetime of a run.
//
// Entries are append-only: once a key has a value it is never evicted or replaced. Keys a
// successful fetch did not return are remembered as misses and not asked for again. The
// lock guarding a store is only held while reading or merging entries, never while a
// fetch is in flight.
package cache

import (
	"context"
	"sync"

	modrinthApi "codeberg.org/jmansfield/go-modrinth/modrinth"

	"github.com/leocov-dev/mrserver/internal/workers"
)

// ArtifactCache holds version-by-hash and project-by-id lookups behind a single lock.
type ArtifactCache struct {
	mu       sync.Mutex
	Versions *Store[*modrinthApi.Version]
	Projects *Store[*modrinthApi.Project]
}

func New() *ArtifactCache {
	c := &ArtifactCache{}
	c.Versions = newStore[*modrinthApi.Version](&c.mu)
	c.Projects = newStore[*modrinthApi.Project](&c.mu)
	return c
}

// Store is one keyed mapping of an ArtifactCache.
type Store[V any] struct {
	mu      *sync.Mutex
	entries map[string]V
	misses  map[string]struct{}
}

// NewStore returns a standalone store with its own lock.
func NewStore[V any]() *Store[V] {
	return newStore[V](&sync.Mutex{})
}

func newStore[V any](mu *sync.Mutex) *Store[V] {
	return &Store[V]{mu: mu, entries: make(map[string]V), misses: make(map[string]struct{})}
}

func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok
}

// Missed reports whether an earlier fetch confirmed that key has no value.
func (s *Store[V]) Missed(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.misses[key]
	return ok
}

func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// split returns the cached values for keys and the deduplicated keys that still need a
// fetch. Known misses are neither returned nor fetched.
func (s *Store[V]) split(keys []string) (map[string]V, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := make(map[string]V)
	var missing []string
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if v, ok := s.entries[k]; ok {
			found[k] = v
		} else if _, miss := s.misses[k]; !miss {
			missing = append(missing, k)
		}
	}
	return found, missing
}

// merge stores the values fetched for chunk and returns what the cache now holds for
// those keys. An existing entry always wins over a new one. Chunk keys absent from values
// are recorded as misses.
func (s *Store[V]) merge(chunk []string, values map[string]V) map[string]V {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]V, len(values))
	for _, k := range chunk {
		v, ok := values[k]
		if !ok {
			if _, cached := s.entries[k]; !cached {
				s.misses[k] = struct{}{}
			}
			continue
		}
		if existing, ok := s.entries[k]; ok {
			out[k] = existing
			continue
		}
		s.entries[k] = v
		out[k] = v
	}
	return out
}

// FetchFunc resolves one chunk of keys. Keys missing from the returned map are treated
// as not found and cached as misses; a non-nil error marks the whole chunk as failed.
type FetchFunc[V any] func(ctx context.Context, chunk []string) (map[string]V, error)

type FetchOptions struct {
	ChunkSize         int
	MaxParallelChunks int
}

// Result is the outcome of GetOrFetchMany. Failed lists keys whose chunk failed on both
// attempts; they are absent from Values. LastErr is the most recent chunk error.
type Result[V any] struct {
	Values  map[string]V
	Failed  []string
	LastErr error
}

type chunkOutcome[V any] struct {
	chunk  []string
	values map[string]V
	err    error
}

// GetOrFetchMany returns the values for keys, fetching whatever the store does not hold
// yet in chunks of opts.ChunkSize on up to opts.MaxParallelChunks workers. A chunk that
// fails is retried once, serially, after the concurrent pass has settled.
func GetOrFetchMany[V any](ctx context.Context, s *Store[V], keys []string, fetch FetchFunc[V], opts FetchOptions) Result[V] {
	found, missing := s.split(keys)
	result := Result[V]{Values: found}
	if len(missing) == 0 {
		return result
	}

	chunks := Chunk(missing, opts.ChunkSize)
	outcomes := workers.Map(chunks, opts.MaxParallelChunks, func(chunk []string) chunkOutcome[V] {
		values, err := fetch(ctx, chunk)
		return chunkOutcome[V]{chunk: chunk, values: values, err: err}
	})

	var failed [][]string
	for _, o := range outcomes {
		if o.err != nil {
			result.LastErr = o.err
			failed = append(failed, o.chunk)
			continue
		}
		for k, v := range s.merge(o.chunk, o.values) {
			result.Values[k] = v
		}
	}

	for _, chunk := range failed {
		values, err := fetch(ctx, chunk)
		if err != nil {
			result.LastErr = err
			result.Failed = append(result.Failed, chunk...)
			continue
		}
		for k, v := range s.merge(chunk, values) {
			result.Values[k] = v
		}
	}

	return result
}

// Chunk splits keys into consecutive slices of at most size elements.
func Chunk(keys []string, size int) [][]string {
	if size < 1 {
		size = len(keys)
	}
	var chunks [][]string
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		chunks = append(chunks, keys[start:end])
	}
	return chunks
}
