package metrics_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"portfolio/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixel_ObserveBoundsLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	pixel := metrics.NewPixel(reg)

	pixel.Observe("pageview", "en")
	pixel.Observe("pageview", "ru-RU")
	pixel.Observe("pageview", "ru")
	pixel.Observe("made_up_event", "xx")
	pixel.Reject()

	families, err := reg.Gather()
	require.NoError(t, err)

	got := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			got[mf.GetName()+"{"+labels(m)+"}"] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		"portfolio_pixel_events_total{event=pageview,lang=en}":    1,
		"portfolio_pixel_events_total{event=pageview,lang=ru}":    2,
		"portfolio_pixel_events_total{event=custom,lang=unknown}": 1,
		"portfolio_pixel_rejected_total{}":                        1,
	}, got)
}

func labels(m *dto.Metric) string {
	parts := make([]string, 0, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		parts = append(parts, l.GetName()+"="+l.GetValue())
	}
	return strings.Join(parts, ",")
}

func TestSiteCollector(t *testing.T) {
	fsys := fstest.MapFS{
		"data/projects.json": {Data: []byte(`{"projects": [
			{"title": "One", "filters": ["security"]},
			{"title": "Two", "filters": "security, automation"},
			{"title": "Three"}
		]}`)},
		"data/translations.json": {Data: []byte(`{"en": {"a": "A", "b": "B"}, "ru": {"a": "А"}}`)},
	}
	collector := metrics.NewSiteCollector(fsys, "data/projects.json", "data/translations.json")

	expected := `
# HELP portfolio_projects_total Projects in the catalog grouped by filter category
# TYPE portfolio_projects_total gauge
portfolio_projects_total{category="all"} 1
portfolio_projects_total{category="automation"} 1
portfolio_projects_total{category="security"} 2
# HELP portfolio_translation_keys Translation keys defined per language
# TYPE portfolio_translation_keys gauge
portfolio_translation_keys{lang="en"} 2
portfolio_translation_keys{lang="fa"} 0
portfolio_translation_keys{lang="ru"} 1
`
	require.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected),
		"portfolio_projects_total", "portfolio_translation_keys"))
	assert.Equal(t, 8, testutil.CollectAndCount(collector))
}

func TestSiteCollector_InvalidData(t *testing.T) {
	fsys := fstest.MapFS{
		"data/projects.json": {Data: []byte(`{"projects": []}`)},
	}
	collector := metrics.NewSiteCollector(fsys, "data/projects.json", "data/translations.json")

	expected := `
# HELP portfolio_site_data_valid Whether a site data file decodes (1) or not (0)
# TYPE portfolio_site_data_valid gauge
portfolio_site_data_valid{file="data/projects.json"} 0
portfolio_site_data_valid{file="data/translations.json"} 0
`
	require.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected)))
}
