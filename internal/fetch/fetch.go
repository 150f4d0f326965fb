// Package fetch loads the site's static JSON resources.
package fetch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	perrors "portfolio/internal/errors"
)

// maxBody bounds a single resource.
const maxBody = 4 << 20

// Fetcher retrieves a resource by site-relative path.
type Fetcher interface {
	Fetch(ctx context.Context, resource string) ([]byte, error)
}

// FS reads resources from a file system such as the embedded site.
type FS struct {
	fsys fs.FS
}

func NewFS(fsys fs.FS) *FS { return &FS{fsys: fsys} }

func (f *FS) Fetch(ctx context.Context, resource string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := cleanResource(resource)
	data, err := fs.ReadFile(f.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", perrors.ErrStatus, name, err)
	}
	return data, nil
}

// HTTP fetches resources relative to a base URL.
type HTTP struct {
	base   *url.URL
	client *http.Client
}

// NewHTTP builds an HTTP fetcher; a nil client gets a 15s timeout.
func NewHTTP(baseURL string, client *http.Client) (*HTTP, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTP{base: base, client: client}, nil
}

func (h *HTTP) Fetch(ctx context.Context, resource string) ([]byte, error) {
	ref, err := url.Parse(strings.TrimSpace(resource))
	if err != nil {
		return nil, fmt.Errorf("parse resource %q: %w", resource, err)
	}
	target := h.base.ResolveReference(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, fmt.Errorf("%w: %s returned %d", perrors.ErrStatus, target, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBody))
}

func cleanResource(resource string) string {
	trimmed := strings.TrimSpace(resource)
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	cleaned := path.Clean("/" + trimmed)
	return strings.TrimPrefix(cleaned, "/")
}
