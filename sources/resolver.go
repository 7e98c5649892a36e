package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	modrinthApi "codeberg.org/jmansfield/go-modrinth/modrinth"
	"github.com/charmbracelet/log"

	"github.com/leocov-dev/mrserver/cache"
	"github.com/leocov-dev/mrserver/core"
)

const (
	VersionChunkSize   = 200
	ProjectChunkSize   = 100
	DefaultMaxParallel = 10
)

// Resolver turns file hashes into Modrinth versions and project ids into projects, going
// through an ArtifactCache so every key is requested at most once per run.
type Resolver struct {
	Client      *modrinthApi.Client
	HTTP        *http.Client
	BaseURL     string
	Cache       *cache.ArtifactCache
	MaxParallel int
	Logger      *log.Logger
}

type ResolverOptions struct {
	BaseURL     string
	MaxParallel int
	HTTP        *http.Client
	Logger      *log.Logger
}

func NewResolver(c *cache.ArtifactCache, opts ResolverOptions) (*Resolver, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultModrinthURL
	}
	if opts.MaxParallel < 1 {
		opts.MaxParallel = DefaultMaxParallel
	}
	if opts.HTTP == nil {
		opts.HTTP = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	client, err := NewModrinthClient(opts.HTTP, opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Modrinth URL %q: %w", opts.BaseURL, err)
	}

	return &Resolver{
		Client:      client,
		HTTP:        opts.HTTP,
		BaseURL:     strings.TrimRight(opts.BaseURL, "/"),
		Cache:       c,
		MaxParallel: opts.MaxParallel,
		Logger:      opts.Logger,
	}, nil
}

// ResolveVersions looks up the version each hash belongs to. Hashes Modrinth does not know,
// and hashes whose lookups failed twice, are absent from the result.
func (r *Resolver) ResolveVersions(ctx context.Context, algorithm string, hashes []string) map[string]*modrinthApi.Version {
	res := cache.GetOrFetchMany(ctx, r.Cache.Versions, hashes, r.fetchVersionFiles(algorithm), cache.FetchOptions{
		ChunkSize:         VersionChunkSize,
		MaxParallelChunks: r.MaxParallel,
	})
	if len(res.Failed) == 0 {
		return res.Values
	}

	r.Logger.Warn("Batch version lookup failed, retrying hashes one by one", "count", len(res.Failed), "err", res.LastErr)
	single := cache.GetOrFetchMany(ctx, r.Cache.Versions, res.Failed, r.fetchVersionFile(algorithm), cache.FetchOptions{
		ChunkSize:         1,
		MaxParallelChunks: r.MaxParallel,
	})
	for k, v := range single.Values {
		res.Values[k] = v
	}
	if len(single.Failed) > 0 {
		r.Logger.Warn("Could not resolve versions", "count", len(single.Failed), "hashes", single.Failed, "err", single.LastErr)
	}
	return res.Values
}

// ResolveProjects looks up projects by id, keyed by the id Modrinth returns.
func (r *Resolver) ResolveProjects(ctx context.Context, ids []string) map[string]*modrinthApi.Project {
	res := cache.GetOrFetchMany(ctx, r.Cache.Projects, ids, r.fetchProjects, cache.FetchOptions{
		ChunkSize:         ProjectChunkSize,
		MaxParallelChunks: r.MaxParallel,
	})
	if len(res.Failed) > 0 {
		r.Logger.Warn("Could not resolve projects", "count", len(res.Failed), "ids", res.Failed, "err", res.LastErr)
	}
	return res.Values
}

func (r *Resolver) fetchProjects(_ context.Context, chunk []string) (map[string]*modrinthApi.Project, error) {
	projects, err := r.Client.Projects.GetMultiple(chunk)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*modrinthApi.Project, len(projects))
	for _, p := range projects {
		if p == nil || p.ID == nil {
			continue
		}
		out[*p.ID] = p
	}
	return out, nil
}

type versionFilesRequest struct {
	Hashes    []string `json:"hashes"`
	Algorithm string   `json:"algorithm"`
}

func (r *Resolver) fetchVersionFiles(algorithm string) cache.FetchFunc[*modrinthApi.Version] {
	return func(ctx context.Context, chunk []string) (map[string]*modrinthApi.Version, error) {
		body, err := json.Marshal(versionFilesRequest{Hashes: chunk, Algorithm: algorithm})
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/version_files", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", core.UserAgent())

		resp, err := r.HTTP.Do(req)
		if err != nil {
			return nil, err
		}
		if err := core.CheckStatus(resp); err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return r.decodeVersionFiles(raw, chunk)
	}
}

// decodeVersionFiles accepts either a hash-keyed object or an array in request order.
func (r *Resolver) decodeVersionFiles(raw []byte, chunk []string) (map[string]*modrinthApi.Version, error) {
	entries := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &entries); err != nil {
		var list []json.RawMessage
		if listErr := json.Unmarshal(raw, &list); listErr != nil {
			return nil, fmt.Errorf("unexpected version_files response: %w", err)
		}
		for i, entry := range list {
			if i >= len(chunk) {
				break
			}
			entries[chunk[i]] = entry
		}
	}

	out := make(map[string]*modrinthApi.Version, len(entries))
	dropped := 0
	for hash, entry := range entries {
		v, ok := decodeVersion(entry)
		if !ok {
			dropped++
			continue
		}
		out[hash] = v
	}
	if dropped > 0 {
		r.Logger.Warn("Ignoring malformed version entries", "count", dropped)
	}
	return out, nil
}

func decodeVersion(raw json.RawMessage) (*modrinthApi.Version, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	var v modrinthApi.Version
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	if v.ProjectID == nil || *v.ProjectID == "" {
		return nil, false
	}
	return &v, true
}

func (r *Resolver) fetchVersionFile(algorithm string) cache.FetchFunc[*modrinthApi.Version] {
	return func(ctx context.Context, chunk []string) (map[string]*modrinthApi.Version, error) {
		out := make(map[string]*modrinthApi.Version, len(chunk))
		for _, hash := range chunk {
			u := fmt.Sprintf("%s/version_file/%s?algorithm=%s", r.BaseURL, url.PathEscape(hash), url.QueryEscape(algorithm))
			resp, err := core.GetWithUA(ctx, r.HTTP, u, "application/json")
			if err != nil {
				return nil, err
			}
			if resp.StatusCode == http.StatusNotFound {
				_ = resp.Body.Close()
				continue
			}
			if err := core.CheckStatus(resp); err != nil {
				return nil, err
			}

			raw, err := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if err != nil {
				return nil, err
			}
			if v, ok := decodeVersion(raw); ok {
				out[hash] = v
			}
		}
		return out, nil
	}
}
