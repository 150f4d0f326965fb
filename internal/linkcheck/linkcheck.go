// Package linkcheck verifies that relative href, src, poster and srcset
// targets in a site's HTML files resolve to files.
package linkcheck

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	perrors "portfolio/internal/errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/bmatcuk/doublestar/v4"
)

// SkippedDirs are never scanned.
var SkippedDirs = []string{".git", "node_modules", ".lighthouseci", "test-results", "playwright-report"}

var externalPrefixes = []string{"#", "http://", "https://", "mailto:", "tel:", "data:", "javascript:", "//"}

// Failure is one unresolved target.
type Failure struct {
	File   string
	Target string
}

func (f Failure) String() string { return f.File + " -> " + f.Target }

type Report struct {
	Files    int
	Failures []Failure
}

// Err returns ErrBrokenLinks when anything failed to resolve.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d unresolved", perrors.ErrBrokenLinks, len(r.Failures))
}

// Check scans every HTML file under fsys.
func Check(fsys fs.FS) (Report, error) {
	var report Report
	files, err := doublestar.Glob(fsys, "**/*.html")
	if err != nil {
		return report, fmt.Errorf("glob html: %w", err)
	}
	sort.Strings(files)
	for _, file := range files {
		if skipped(file) {
			continue
		}
		report.Files++
		targets, err := extract(fsys, file)
		if err != nil {
			return report, err
		}
		for _, target := range targets {
			if External(target) || resolves(fsys, file, target) {
				continue
			}
			report.Failures = append(report.Failures, Failure{File: file, Target: target})
		}
	}
	return report, nil
}

func skipped(file string) bool {
	for _, part := range strings.Split(path.Dir(file), "/") {
		for _, dir := range SkippedDirs {
			if part == dir {
				return true
			}
		}
	}
	return false
}

func extract(fsys fs.FS, file string) ([]string, error) {
	f, err := fsys.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	var targets []string
	doc.Find("[href],[src],[poster],[srcset]").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"href", "src", "poster"} {
			if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
				targets = append(targets, v)
			}
		}
		if v, ok := s.Attr("srcset"); ok {
			for _, candidate := range strings.Split(v, ",") {
				if fields := strings.Fields(candidate); len(fields) > 0 {
					targets = append(targets, fields[0])
				}
			}
		}
	})
	return targets, nil
}

// External reports targets the checker does not resolve.
func External(target string) bool {
	t := strings.ToLower(strings.TrimSpace(target))
	if t == "" {
		return true
	}
	for _, prefix := range externalPrefixes {
		if strings.HasPrefix(t, prefix) {
			return true
		}
	}
	return false
}

func resolves(fsys fs.FS, file, target string) bool {
	clean := strip(target)
	if clean == "" {
		return true
	}
	var base string
	if strings.HasPrefix(clean, "/") {
		base = path.Clean(strings.TrimPrefix(clean, "/"))
	} else {
		base = path.Join(path.Dir(file), clean)
	}
	if base == "" {
		base = "."
	}

	var candidates []string
	switch {
	case strings.HasSuffix(clean, "/"):
		candidates = []string{path.Join(base, "index.html")}
	case path.Ext(base) == "":
		candidates = []string{base, base + ".html", path.Join(base, "index.html")}
	default:
		candidates = []string{base}
	}
	for _, c := range candidates {
		if !fs.ValidPath(c) {
			continue
		}
		if info, err := fs.Stat(fsys, c); err == nil && info.Mode().IsRegular() {
			return true
		}
	}
	return false
}

func strip(target string) string {
	t, _, _ := strings.Cut(target, "#")
	t, _, _ = strings.Cut(t, "?")
	return strings.TrimSpace(t)
}
