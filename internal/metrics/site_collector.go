package metrics

import (
	"io/fs"
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"portfolio/internal/catalog"
	"portfolio/internal/locale"
)

var (
	projectsDesc     = prometheus.NewDesc("portfolio_projects_total", "Projects in the catalog grouped by filter category", []string{"category"}, nil)
	translationsDesc = prometheus.NewDesc("portfolio_translation_keys", "Translation keys defined per language", []string{"lang"}, nil)
	dataValidDesc    = prometheus.NewDesc("portfolio_site_data_valid", "Whether a site data file decodes (1) or not (0)", []string{"file"}, nil)
)

type siteCollector struct {
	fsys         fs.FS
	projects     string
	translations string
}

// NewSiteCollector exposes the served catalog and translation inventory.
// Files are re-read on every scrape so edits to a site directory show up
// without a restart.
func NewSiteCollector(fsys fs.FS, projectsPath, translationsPath string) prometheus.Collector {
	return &siteCollector{fsys: fsys, projects: projectsPath, translations: translationsPath}
}

func (c *siteCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- projectsDesc
	ch <- translationsDesc
	ch <- dataValidDesc
}

func (c *siteCollector) Collect(ch chan<- prometheus.Metric) {
	c.collectProjects(ch)
	c.collectTranslations(ch)
}

func (c *siteCollector) collectProjects(ch chan<- prometheus.Metric) {
	var projects []catalog.Project
	data, err := fs.ReadFile(c.fsys, c.projects)
	if err == nil {
		projects, err = catalog.Decode(data)
	}
	if err != nil {
		ch <- prometheus.MustNewConstMetric(dataValidDesc, prometheus.GaugeValue, 0, c.projects)
		return
	}
	ch <- prometheus.MustNewConstMetric(dataValidDesc, prometheus.GaugeValue, 1, c.projects)

	counts := map[string]int{}
	for _, p := range projects {
		for _, f := range p.Filters {
			counts[f]++
		}
	}
	categories := make([]string, 0, len(counts))
	for k := range counts {
		categories = append(categories, k)
	}
	sort.Strings(categories)
	for _, k := range categories {
		ch <- prometheus.MustNewConstMetric(projectsDesc, prometheus.GaugeValue, float64(counts[k]), k)
	}
}

func (c *siteCollector) collectTranslations(ch chan<- prometheus.Metric) {
	var table locale.Table
	data, err := fs.ReadFile(c.fsys, c.translations)
	if err == nil {
		table, err = locale.DecodeTable(data)
	}
	if err != nil {
		ch <- prometheus.MustNewConstMetric(dataValidDesc, prometheus.GaugeValue, 0, c.translations)
		return
	}
	ch <- prometheus.MustNewConstMetric(dataValidDesc, prometheus.GaugeValue, 1, c.translations)
	for _, lang := range locale.Supported {
		ch <- prometheus.MustNewConstMetric(translationsDesc, prometheus.GaugeValue, float64(len(table[lang])), string(lang))
	}
}
