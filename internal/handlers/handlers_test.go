package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"portfolio/internal/handlers"
	"portfolio/internal/logger"
	"portfolio/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func siteFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":             {Data: []byte("<!DOCTYPE html><title>home</title>")},
		"404.html":               {Data: []byte("<!DOCTYPE html><title>lost</title><p>Nothing at <code data-path-value>/</code></p>")},
		"assets/css/style.css":   {Data: []byte("body{}")},
		"guides/index.html":      {Data: []byte("guides")},
		"data/projects.json":     {Data: []byte(`{"projects":[{"title":"One"}]}`)},
		"data/translations.json": {Data: []byte(`{"en":{"a":"A"}}`)},
	}
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := serve(http.HandlerFunc(handlers.HealthCheck), http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadinessCheck(t *testing.T) {
	rec := serve(handlers.ReadinessCheck(siteFS()), http.MethodGet, "/api/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	broken := siteFS()
	broken["data/projects.json"] = &fstest.MapFile{Data: []byte(`{"projects":[]}`)}
	delete(broken, "index.html")
	rec = serve(handlers.ReadinessCheck(broken), http.MethodGet, "/api/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Ready    bool     `json:"ready"`
		Problems []string `json:"problems"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Ready)
	assert.Len(t, body.Problems, 2)
}

func TestVersion(t *testing.T) {
	rec := serve(http.HandlerFunc(handlers.Version), http.MethodGet, "/api/version")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"version"`)
}

func TestSiteRoutes(t *testing.T) {
	router := chi.NewRouter()
	handlers.RegisterSiteRoutes(router, siteFS())

	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{"index", "/", http.StatusOK, "home"},
		{"asset", "/assets/css/style.css", http.StatusOK, "body{}"},
		{"directory index", "/guides/", http.StatusOK, "guides"},
		{"unknown file", "/nope.html", http.StatusNotFound, "lost"},
		{"unknown nested", "/assets/missing/x.png", http.StatusNotFound, "lost"},
		{"traversal", "/../secret", http.StatusNotFound, "lost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, http.MethodGet, tt.path)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}

	t.Run("echoes requested path", func(t *testing.T) {
		tests := []struct {
			name   string
			target string
			want   string
		}{
			{"plain", "/nope.html", "<code data-path-value=\"\">/nope.html</code>"},
			{"query kept", "/nope.html?x=1", "<code data-path-value=\"\">/nope.html?x=1</code>"},
			{"markup escaped", "/nope.html?x=<b>", "<code data-path-value=\"\">/nope.html?x=&lt;b&gt;</code>"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := serve(router, http.MethodGet, tt.target)
				assert.Equal(t, http.StatusNotFound, rec.Code)
				assert.Contains(t, rec.Body.String(), tt.want)
				assert.NotContains(t, rec.Body.String(), "<b>")
			})
		}
	})

	t.Run("no 404 page", func(t *testing.T) {
		bare := siteFS()
		delete(bare, "404.html")
		r := chi.NewRouter()
		handlers.RegisterSiteRoutes(r, bare)
		rec := serve(r, http.MethodGet, "/nope")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "404 page not found")
	})
}

func TestPixelSink(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.Init("info") })

	reg := prometheus.NewRegistry()
	pixel := metrics.NewPixel(reg)
	h := handlers.PixelSink(handlers.PixelOptions{Metrics: pixel, Salt: "s"})

	rec := serve(h, http.MethodGet, "/pixel.gif?v=1&event=pageview&path=%2F%23about&ts=1&lang=ru")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("GIF89a")))
	assert.Contains(t, buf.String(), `"event":"pageview"`)
	assert.Contains(t, buf.String(), `"path":"/#about"`)
	assert.NotContains(t, buf.String(), "192.0.2.1", "client address is hashed")

	rec = serve(h, http.MethodGet, "/pixel.gif?v=1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
