package handlers

import (
	"encoding/json"
	"io/fs"
	"net/http"

	"portfolio/internal/catalog"
	"portfolio/internal/locale"
	"portfolio/internal/logger"
	"portfolio/internal/version"
	"portfolio/middleware"
)

const (
	ProjectsPath     = "data/projects.json"
	TranslationsPath = "data/translations.json"
)

func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ReadinessCheck reports 503 until the site has an index page and both data
// files decode.
func ReadinessCheck(site fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		problems := siteProblems(site)
		status := http.StatusOK
		if len(problems) > 0 {
			status = http.StatusServiceUnavailable
		}
		logger.HTTPEvent(r.Method, r.URL.Path, status, 0).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Strs("problems", problems).
			Msg("readiness check")
		writeJSON(w, r, status, map[string]any{"ready": status == http.StatusOK, "problems": problems})
	}
}

func siteProblems(site fs.FS) []string {
	problems := []string{}
	if _, err := fs.Stat(site, "index.html"); err != nil {
		problems = append(problems, "index.html: "+err.Error())
	}
	if data, err := fs.ReadFile(site, ProjectsPath); err != nil {
		problems = append(problems, ProjectsPath+": "+err.Error())
	} else if _, err := catalog.Decode(data); err != nil {
		problems = append(problems, ProjectsPath+": "+err.Error())
	}
	if data, err := fs.ReadFile(site, TranslationsPath); err != nil {
		problems = append(problems, TranslationsPath+": "+err.Error())
	} else if _, err := locale.DecodeTable(data); err != nil {
		problems = append(problems, TranslationsPath+": "+err.Error())
	}
	return problems
}

func Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, version.Info())
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.HTTPError(r.Method, r.URL.Path, status, err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("failed to encode response")
	}
}
