package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	perrors "portfolio/internal/errors"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// MaxMetrics caps the impact metrics shown on a card.
const MaxMetrics = 3

// Metric is one impact figure.
type Metric struct {
	Value string
	Label string
}

// Image describes the card preview. ResponsiveBase plus each width yields
// base-<w>.avif and base-<w>.webp candidates.
type Image struct {
	Src              string
	Alt              string
	Width            int
	Height           int
	ResponsiveBase   string
	ResponsiveWidths []int
	Sizes            string
}

// Responsive reports whether source sets can be built.
func (i Image) Responsive() bool {
	return i.ResponsiveBase != "" && len(i.ResponsiveWidths) > 0
}

// Localized holds per-locale overrides. Empty fields defer to the base.
type Localized struct {
	Title         string
	Description   string
	PreviewDomain string
	ImageAlt      string
	Metrics       []Metric
}

// Project is one validated catalog entry.
type Project struct {
	ID            string
	Title         string
	Filters       []string
	PreviewURL    string
	PreviewDomain string
	Description   string
	RepoURL       string
	CaseStudyURL  string
	Metrics       []Metric
	Image         Image
	I18n          map[string]Localized
}

var (
	textPolicy   = bluemonday.StrictPolicy()
	invalidToken = regexp.MustCompile(`[^a-z0-9-]+`)
)

// Decode parses {"projects": [...]}. Malformed fields are replaced by their
// defaults; only an unusable document or an empty list is an error.
func Decode(data []byte) ([]Project, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", perrors.ErrMalformedCatalog, err)
	}
	raw, ok := doc["projects"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: projects is not a list", perrors.ErrMalformedCatalog)
	}
	projects := make([]Project, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		projects = append(projects, decodeProject(obj))
	}
	if len(projects) == 0 {
		return nil, perrors.ErrEmptyCatalog
	}
	return projects, nil
}

func decodeProject(obj map[string]any) Project {
	p := Project{
		ID:            slug(str(obj, "id")),
		Title:         str(obj, "title"),
		Filters:       NormalizeFilters(obj["filters"]),
		PreviewURL:    link(str(obj, "previewUrl")),
		PreviewDomain: str(obj, "previewDomain"),
		Description:   str(obj, "description"),
		RepoURL:       link(str(obj, "repoUrl")),
		CaseStudyURL:  link(str(obj, "caseStudyUrl")),
		Metrics:       decodeMetrics(obj["impactMetrics"]),
	}
	if img, ok := obj["image"].(map[string]any); ok {
		p.Image = Image{
			Src:              link(str(img, "src")),
			Alt:              str(img, "alt"),
			Width:            dimension(img["width"]),
			Height:           dimension(img["height"]),
			ResponsiveBase:   link(str(img, "responsiveBase")),
			ResponsiveWidths: Widths(img["responsiveWidths"]),
			Sizes:            str(img, "sizes"),
		}
	}
	if i18n, ok := obj["i18n"].(map[string]any); ok {
		p.I18n = make(map[string]Localized, len(i18n))
		for lang, v := range i18n {
			fields, ok := v.(map[string]any)
			if !ok {
				continue
			}
			p.I18n[strings.ToLower(strings.TrimSpace(lang))] = Localized{
				Title:         str(fields, "title"),
				Description:   str(fields, "description"),
				PreviewDomain: str(fields, "previewDomain"),
				ImageAlt:      str(fields, "imageAlt"),
				Metrics:       decodeMetrics(fields["impactMetrics"]),
			}
		}
	}
	return p
}

// SanitizeText strips markup, decodes entities and collapses whitespace.
func SanitizeText(v string) string {
	clean := html.UnescapeString(textPolicy.Sanitize(v))
	return strings.Join(strings.Fields(clean), " ")
}

func str(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return SanitizeText(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// NormalizeCategory lowercases a token and strips everything outside
// [a-z0-9-].
func NormalizeCategory(v string) string {
	return invalidToken.ReplaceAllString(strings.ToLower(strings.TrimSpace(v)), "")
}

// NormalizeFilters turns a raw filters value into a deduplicated token list,
// defaulting to ["all"].
func NormalizeFilters(raw any) []string {
	var values []string
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
	case []string:
		values = v
	case string:
		values = strings.Split(v, ",")
	}
	seen := make(map[string]bool, len(values))
	var out []string
	for _, s := range values {
		token := NormalizeCategory(s)
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		out = append(out, token)
	}
	if len(out) == 0 {
		return []string{"all"}
	}
	return out
}

// Widths keeps finite positive widths, in order. Numeric strings count.
func Widths(raw any) []int {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []int
	for _, item := range list {
		if w := dimension(item); w > 0 {
			out = append(out, w)
		}
	}
	return out
}

func dimension(raw any) int {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 || f > math.MaxInt32 {
		return 0
	}
	return int(math.Round(f))
}

func decodeMetrics(raw any) []Metric {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []Metric
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		m := Metric{Value: str(obj, "value"), Label: str(obj, "label")}
		if m.Value == "" || m.Label == "" {
			continue
		}
		out = append(out, m)
		if len(out) == MaxMetrics {
			break
		}
	}
	return out
}

// link accepts relative references and http(s) URLs only.
func link(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return raw
	}
	return ""
}

func slug(v string) string {
	return NormalizeCategory(strings.ReplaceAll(v, " ", "-"))
}
