package browser

import (
	"fmt"
	"net/url"
	"strings"
)

// Location is the document URL. Updates go through ReplaceState, so they
// never add history entries.
type Location struct {
	u        *url.URL
	replaced int
}

// NewLocation parses an absolute URL.
func NewLocation(raw string) (*Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse location %q: %w", raw, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("location %q is not absolute", raw)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return &Location{u: u}, nil
}

// Href is the full URL.
func (l *Location) Href() string { return l.u.String() }

// Origin is scheme://host, normalized by OriginOf.
func (l *Location) Origin() string { return OriginOf(l.u) }

// OriginOf lowercases scheme and host and drops the scheme's default port,
// so equal origins compare equal as strings.
func OriginOf(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" && port != defaultPorts[scheme] {
		host += ":" + port
	}
	return scheme + "://" + host
}

var defaultPorts = map[string]string{"http": "80", "https": "443"}

// Hash includes the leading '#', or is empty.
func (l *Location) Hash() string {
	if l.u.Fragment == "" {
		return ""
	}
	return "#" + l.u.Fragment
}

// Search includes the leading '?', or is empty.
func (l *Location) Search() string {
	if l.u.RawQuery == "" {
		return ""
	}
	return "?" + l.u.RawQuery
}

// Query returns a single query parameter.
func (l *Location) Query(name string) string { return l.u.Query().Get(name) }

// Path is pathname + search + hash, the path analytics reports.
func (l *Location) Path() string {
	return l.u.EscapedPath() + l.Search() + l.Hash()
}

// Resolve resolves ref against the current URL.
func (l *Location) Resolve(ref string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	return l.u.ResolveReference(parsed), nil
}

// ReplaceState swaps the URL in place, like history.replaceState.
func (l *Location) ReplaceState(ref string) error {
	next, err := l.Resolve(ref)
	if err != nil {
		return err
	}
	l.u = next
	l.replaced++
	return nil
}

// SetHash replaces the fragment; key is given without '#'.
func (l *Location) SetHash(key string) {
	next := *l.u
	next.Fragment = key
	l.u = &next
	l.replaced++
}

// SetQueryParam sets name, or deletes it when value is empty. Like
// URLSearchParams.set, the first occurrence is replaced in place, later ones
// are dropped and every other pair is kept as written.
func (l *Location) SetQueryParam(name, value string) {
	next := *l.u
	pair := url.QueryEscape(name) + "=" + url.QueryEscape(value)
	var pairs []string
	replaced := false
	for _, raw := range strings.Split(next.RawQuery, "&") {
		if raw == "" {
			continue
		}
		key, _, _ := strings.Cut(raw, "=")
		if k, err := url.QueryUnescape(key); err != nil || k != name {
			pairs = append(pairs, raw)
			continue
		}
		if value != "" && !replaced {
			pairs = append(pairs, pair)
			replaced = true
		}
	}
	if value != "" && !replaced {
		pairs = append(pairs, pair)
	}
	next.RawQuery = strings.Join(pairs, "&")
	next.ForceQuery = false
	l.u = &next
	l.replaced++
}

// Replacements counts in-place URL updates.
func (l *Location) Replacements() int { return l.replaced }
