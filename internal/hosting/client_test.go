package hosting

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory hosting service.
type fakeAPI struct {
	mu       sync.Mutex
	packages map[string]bool
	releases map[string]bool
	dists    map[string][]byte
	channels map[string]map[string]bool
	requests []string
	auth     []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		packages: map[string]bool{},
		releases: map[string]bool{},
		dists:    map[string][]byte{},
		channels: map[string]map[string]bool{},
	}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	record := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			f.requests = append(f.requests, r.Method+" "+r.URL.Path)
			f.auth = append(f.auth, r.Header.Get("Authorization"))
			f.mu.Unlock()
			next(w, r)
		}
	}
	notFound := func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "not found"}`))
	}

	mux.HandleFunc("GET /dist/{owner}/{name}/{version}/{basename...}", record(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.dists[r.PathValue("owner")+"/"+r.PathValue("name")+"/"+r.PathValue("version")+"/"+r.PathValue("basename")]; !ok {
			notFound(w)
		}
	}))
	mux.HandleFunc("DELETE /dist/{owner}/{name}/{version}/{basename...}", record(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.dists, r.PathValue("owner")+"/"+r.PathValue("name")+"/"+r.PathValue("version")+"/"+r.PathValue("basename"))
	}))
	mux.HandleFunc("GET /channels/{owner}/{channel}", record(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		files, ok := f.channels[r.PathValue("owner")+"/"+r.PathValue("channel")]
		if !ok {
			notFound(w)
			return
		}
		var info channelInfo
		for name := range files {
			info.Files = append(info.Files, struct {
				Basename string `json:"basename"`
			}{name})
		}
		_ = json.NewEncoder(w).Encode(info)
	}))
	mux.HandleFunc("POST /channels/{owner}/{channel}", record(func(w http.ResponseWriter, r *http.Request) {}))
	mux.HandleFunc("POST /copy/package/{owner}/{name}/{version}/{basename...}", record(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["to_owner"] == "" {
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	mux.HandleFunc("GET /package/{owner}/{name}", record(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.packages[r.PathValue("owner")+"/"+r.PathValue("name")] {
			notFound(w)
		}
	}))
	mux.HandleFunc("POST /package/{owner}/{name}", record(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.packages[r.PathValue("owner")+"/"+r.PathValue("name")] = true
	}))
	mux.HandleFunc("GET /release/{owner}/{name}/{version}", record(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.releases[r.PathValue("owner")+"/"+r.PathValue("name")+"/"+r.PathValue("version")] {
			notFound(w)
		}
	}))
	mux.HandleFunc("POST /release/{owner}/{name}/{version}", record(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.releases[r.PathValue("owner")+"/"+r.PathValue("name")+"/"+r.PathValue("version")] = true
	}))
	mux.HandleFunc("POST /upload/{owner}/{name}/{version}/{basename...}", record(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.dists[r.PathValue("owner")+"/"+r.PathValue("name")+"/"+r.PathValue("version")+"/"+r.PathValue("basename")] = data
		for _, ch := range r.URL.Query()["channel"] {
			key := r.PathValue("owner") + "/" + ch
			if f.channels[key] == nil {
				f.channels[key] = map[string]bool{}
			}
			f.channels[key][r.PathValue("basename")] = true
		}
	}))
	return mux
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", "s3cret", WithRetryMax(0))
}

func TestClient_DistributionExists(t *testing.T) {
	api := newFakeAPI()
	api.dists["org/numpy/1.9.2/linux-64/numpy-1.9.2-py27_0.tar.bz2"] = nil
	client := newTestClient(t, api)
	ctx := context.Background()

	exists, err := client.DistributionExists(ctx, "org", "numpy", "1.9.2", "linux-64/numpy-1.9.2-py27_0.tar.bz2")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.DistributionExists(ctx, "org", "numpy", "1.9.2", "linux-64/numpy-1.9.2-py35_0.tar.bz2")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Equal(t, "token s3cret", api.auth[0])
}

func TestClient_ChannelFiles(t *testing.T) {
	api := newFakeAPI()
	api.channels["org/dev"] = map[string]bool{"linux-64/a-1.0-0.tar.bz2": true}
	client := newTestClient(t, api)
	ctx := context.Background()

	files, err := client.ChannelFiles(ctx, "org", "dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"linux-64/a-1.0-0.tar.bz2"}, files)

	on, err := client.DistributionOnChannel(ctx, "org", "dev", "linux-64/a-1.0-0.tar.bz2")
	require.NoError(t, err)
	assert.True(t, on)

	on, err = client.DistributionOnChannel(ctx, "org", "missing", "linux-64/a-1.0-0.tar.bz2")
	require.NoError(t, err)
	assert.False(t, on)

	_, err = client.ChannelFiles(ctx, "org", "missing")
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestClient_Upload(t *testing.T) {
	api := newFakeAPI()
	client := newTestClient(t, api)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "a-1.0-0.tar.bz2")
	require.NoError(t, os.WriteFile(path, []byte("artefact"), 0o644))
	req := UploadRequest{
		Owner:    "org",
		Name:     "a",
		Version:  "1.0",
		Basename: "linux-64/a-1.0-0.tar.bz2",
		Path:     path,
		Channels: []string{"dev"},
	}

	require.NoError(t, client.Upload(ctx, req))
	assert.True(t, api.packages["org/a"])
	assert.True(t, api.releases["org/a/1.0"])
	assert.Equal(t, []byte("artefact"), api.dists["org/a/1.0/linux-64/a-1.0-0.tar.bz2"])
	assert.True(t, api.channels["org/dev"]["linux-64/a-1.0-0.tar.bz2"])

	// a second upload replaces the existing file
	api.requests = nil
	require.NoError(t, client.Upload(ctx, req))
	assert.Equal(t, []string{
		"GET /package/org/a",
		"GET /release/org/a/1.0",
		"GET /dist/org/a/1.0/linux-64/a-1.0-0.tar.bz2",
		"DELETE /dist/org/a/1.0/linux-64/a-1.0-0.tar.bz2",
		"POST /upload/org/a/1.0/linux-64/a-1.0-0.tar.bz2",
	}, api.requests)
}

func TestClient_AddToChannelAndCopy(t *testing.T) {
	api := newFakeAPI()
	client := newTestClient(t, api)
	ctx := context.Background()

	require.NoError(t, client.AddToChannel(ctx, "org", "dev", "a", "1.0"))
	require.NoError(t, client.CopyToOwner(ctx, CopyRequest{
		FromOwner: "conda-forge",
		ToOwner:   "org",
		ToChannel: "dev",
		Name:      "a",
		Version:   "1.0",
		Basename:  "linux-64/a-1.0-0.tar.bz2",
	}))
	assert.Equal(t, []string{
		"POST /channels/org/dev",
		"POST /copy/package/conda-forge/a/1.0/linux-64/a-1.0-0.tar.bz2",
	}, api.requests)

	err := client.CopyToOwner(ctx, CopyRequest{FromOwner: "x", Name: "a", Version: "1.0", Basename: "b"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"files": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", WithRetryWait(time.Millisecond, 2*time.Millisecond))
	files, err := client.ChannelFiles(context.Background(), "org", "main")
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Equal(t, 2, calls)
}
