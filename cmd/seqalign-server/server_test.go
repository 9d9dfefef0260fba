package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aria-lang/seqalign/api/handlers"
	"github.com/aria-lang/seqalign/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	p, err := cfg.NewPool(nil)
	require.NoError(t, err)
	srv := httptest.NewServer(newRouter(p, cfg))
	t.Cleanup(func() {
		srv.Close()
		p.Close()
	})
	return srv
}

func TestRoutes(t *testing.T) {
	cfg := config.Default()
	cfg.Threads = 2
	srv := newTestServer(t, cfg)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"home", http.MethodGet, "/", "", http.StatusOK},
		{"pool", http.MethodGet, "/api/pool", "", http.StatusOK},
		{"align", http.MethodPost, "/api/align", `{"ref": {"seq": "ACGTACGTAC"}, "query": {"seq": "ACGTTCGTAC"}}`, http.StatusOK},
		{"profile", http.MethodPost, "/api/profile", `{"ref": {"seq": "ACGTACGTAC"}, "query": {"seq": "ACGTTCGTAC"}}`, http.StatusOK},
		{"similarity", http.MethodPost, "/api/similarity", `{"a": "ACGTACGT", "b": "ACGTACGT", "k": 4}`, http.StatusOK},
		{"align via get", http.MethodGet, "/api/align", "", http.StatusMethodNotAllowed},
		{"unknown", http.MethodGet, "/api/unknown", "", http.StatusNotFound},
		{"bad json", http.MethodPost, "/api/align", `{"ref":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			resp, err := srv.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAlignThroughRouter(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = "local"
	srv := newTestServer(t, cfg)

	resp, err := http.Post(srv.URL+"/api/align", "application/json",
		strings.NewReader(`{"ref": {"seq": "TTTTGATTACATTTT"}, "query": {"seq": "GATTACA"}}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out handlers.AlignmentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "local", out.Mode)
	assert.Equal(t, 14, out.Score)
	assert.Equal(t, 4, out.RefStart)
	assert.Equal(t, "GATTACA", out.AlignedRef)
}

func TestBodyLimitMiddleware(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxBodyBytes = 32
	srv := newTestServer(t, cfg)

	body := `{"ref": {"seq": "` + strings.Repeat("A", 64) + `"}, "query": {"seq": "A"}}`
	resp, err := http.Post(srv.URL+"/api/align", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestPoolStatusThroughRouter(t *testing.T) {
	cfg := config.Default()
	cfg.Threads = 3
	srv := newTestServer(t, cfg)

	resp, err := http.Get(srv.URL + "/api/pool")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out handlers.PoolResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, handlers.PoolResponse{Size: 3, Available: 3, Outstanding: 0}, out)
}
