package handlers

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"portfolio/internal/logger"
	"portfolio/middleware"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
)

const (
	notFoundPage = "404.html"
	maxEchoRunes = 200
)

// RegisterSiteRoutes serves the static site. Unknown paths get 404.html with
// status 404, or a plain 404 when the site has none.
func RegisterSiteRoutes(router chi.Router, site fs.FS) {
	files := http.FileServer(http.FS(site))
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFound(site)(w, r)
	})
	serve := func(w http.ResponseWriter, r *http.Request) {
		if !exists(site, r.URL.Path) {
			NotFound(site)(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}
	router.Get("/", serve)
	router.Get("/*", serve)
}

// NotFound renders the site's 404 page with the requested path filled into
// its [data-path-value] element.
func NotFound(site fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fs.ReadFile(site, notFoundPage)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.HTTPError(r.Method, r.URL.Path, http.StatusInternalServerError, err).
					Str("request_id", middleware.GetRequestID(r.Context())).
					Msg("failed to read 404 page")
			}
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(echoPath(data, r.URL.RequestURI()))
	}
}

// echoPath sets the text of [data-path-value]. The raw page is returned when
// it cannot be parsed or rendered.
func echoPath(page []byte, requestURI string) []byte {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return page
	}
	target := doc.Find("[data-path-value]")
	if target.Length() == 0 {
		return page
	}
	target.SetText(displayPath(requestURI))
	out, err := doc.Html()
	if err != nil {
		return page
	}
	return []byte(out)
}

func displayPath(requestURI string) string {
	shown := strings.Join(strings.Fields(requestURI), " ")
	if runes := []rune(shown); len(runes) > maxEchoRunes {
		shown = string(runes[:maxEchoRunes])
	}
	if shown == "" {
		return "/"
	}
	return shown
}

// exists reports whether urlPath names a file, or a directory holding an
// index.html.
func exists(site fs.FS, urlPath string) bool {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		name = "."
	}
	if !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(site, name)
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return true
	}
	_, err = fs.Stat(site, path.Join(name, "index.html"))
	return err == nil
}
