package serverpack

import (
	"archive/zip"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leocov-dev/mrserver/cache"
	"github.com/leocov-dev/mrserver/core"
	"github.com/leocov-dev/mrserver/fileio"
	"github.com/leocov-dev/mrserver/sources"
)

type side struct{ client, server string }

// upstream fakes Modrinth, the Fabric meta service, a loader maven and a file CDN.
type upstream struct {
	*httptest.Server

	mu       sync.Mutex
	versions map[string]string // hash -> project id
	projects map[string]side

	failInstaller   bool
	versionRequests atomic.Int32
	projectRequests atomic.Int32
}

func newUpstream(t *testing.T) *upstream {
	u := &upstream{versions: map[string]string{}, projects: map[string]side{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/version_files", func(w http.ResponseWriter, r *http.Request) {
		u.versionRequests.Add(1)
		var req struct {
			Hashes []string `json:"hashes"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		u.mu.Lock()
		defer u.mu.Unlock()
		out := map[string]any{}
		for _, h := range req.Hashes {
			if id, ok := u.versions[h]; ok {
				out[h] = map[string]string{"id": "v-" + id, "project_id": id}
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("/v2/version_file/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/v2/projects", func(w http.ResponseWriter, r *http.Request) {
		u.projectRequests.Add(1)
		var ids []string
		raw := r.URL.Query().Get("ids")
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			ids = strings.Split(raw, ",")
		}

		u.mu.Lock()
		defer u.mu.Unlock()
		list := []map[string]string{}
		for _, id := range ids {
			if s, ok := u.projects[id]; ok {
				list = append(list, map[string]string{"id": id, "client_side": s.client, "server_side": s.server})
			}
		}
		_ = json.NewEncoder(w).Encode(list)
	})
	mux.HandleFunc("/meta/v2/versions/installer", func(w http.ResponseWriter, r *http.Request) {
		if u.failInstaller {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[{"version": "1.0.1", "stable": true}]`))
	})
	mux.HandleFunc("/meta/v2/versions/loader/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fabric server jar"))
	})
	mux.HandleFunc("/forge/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("forge installer"))
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fileContent(filepath.Base(r.URL.Path))))
	})

	u.Server = httptest.NewServer(mux)
	t.Cleanup(u.Close)
	return u
}

// mod registers a mods/ entry whose project has the given sides.
func (u *upstream) mod(name string, projectID string, s side) core.PackFile {
	f := u.file("mods/" + name)
	u.mu.Lock()
	u.versions[f.Hashes["sha1"]] = projectID
	u.projects[projectID] = s
	u.mu.Unlock()
	return f
}

func (u *upstream) file(p string) core.PackFile {
	name := filepath.Base(p)
	return core.PackFile{
		Path:      p,
		Hashes:    map[string]string{"sha1": sha1Hex(fileContent(name))},
		Downloads: []string{u.URL + "/files/" + name},
		FileSize:  uint64(len(fileContent(name))),
	}
}

func (u *upstream) assembler(t *testing.T) *Assembler {
	resolver, err := sources.NewResolver(cache.New(), sources.ResolverOptions{
		BaseURL: u.URL + "/v2",
		HTTP:    u.Client(),
	})
	require.NoError(t, err)

	endpoints := core.DefaultEndpoints
	endpoints.FabricMeta = u.URL + "/meta"
	endpoints.ForgeMaven = u.URL + "/forge"

	return NewAssembler(resolver, Options{
		Download:   fileio.DownloadOptions{MaxParallel: 4, MaxRetries: 1},
		Endpoints:  endpoints,
		JavaMemory: "4G",
		HTTP:       u.Client(),
	})
}

func fileContent(name string) string {
	return "content of " + name
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func fabricDeps() map[string]string {
	return map[string]string{"minecraft": "1.20.1", "fabric-loader": "0.15.0"}
}

// writePack zips index as modrinth.index.json alongside extra files.
func writePack(t *testing.T, dir string, name string, index *core.PackIndex, extra map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	if index != nil {
		w, err := zw.Create(core.PackIndexFile)
		require.NoError(t, err)
		require.NoError(t, json.NewEncoder(w).Encode(index))
	}
	for p, content := range extra {
		w, err := zw.Create(p)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
