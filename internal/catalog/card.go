package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"portfolio/internal/dom"
	"portfolio/internal/locale"

	"golang.org/x/net/html"
)

// View is a project resolved for one language. Every text field is final.
type View struct {
	Project
	Index    int
	Language locale.Language
	ImageAlt string
}

// Localize resolves every localizable field for lang: the locale override,
// then the base field, then a computed default.
func Localize(p Project, index int, lang locale.Language, tr locale.Translator) View {
	over := p.I18n[string(lang)]
	v := View{Project: p, Index: index, Language: lang}

	v.Title = first(over.Title, p.Title)
	if v.Title == "" {
		v.Title = locale.Format(tr.Resolve(lang, "projects.untitled"), map[string]string{"index": strconv.Itoa(index + 1)})
	}
	if v.Title == "" {
		v.Title = "Project " + strconv.Itoa(index+1)
	}

	v.Description = first(over.Description, p.Description, tr.Resolve(lang, "projects.descriptionFallback"))
	v.PreviewDomain = first(over.PreviewDomain, p.PreviewDomain, hostOf(p.PreviewURL))

	v.ImageAlt = first(over.ImageAlt, p.Image.Alt)
	if v.ImageAlt == "" {
		v.ImageAlt = first(locale.Format(tr.Resolve(lang, "projects.imageAlt"), map[string]string{"title": v.Title}), v.Title)
	}

	if len(over.Metrics) > 0 {
		v.Metrics = over.Metrics
	}
	if len(v.Metrics) > MaxMetrics {
		v.Metrics = v.Metrics[:MaxMetrics]
	}
	if v.ID == "" {
		v.ID = slug(p.Title)
	}
	if v.ID == "" {
		v.ID = "project-" + strconv.Itoa(index+1)
	}
	return v
}

// Card builds the list item for v.
func Card(v View, tr locale.Translator) *html.Node {
	item := dom.Element("li",
		"class", "project-item active",
		"data-filter-item", "",
		"data-category", strings.Join(v.Filters, ","),
		"data-project-id", v.ID,
	)
	card := dom.Element("article", "class", "project-card")
	dom.Append(item, card)

	dom.Append(card, figure(v))
	dom.Append(card, dom.Append(dom.Element("h3", "class", "h3 project-title"), dom.Text(v.Title)))
	if v.PreviewDomain != "" {
		dom.Append(card, dom.Append(dom.Element("p", "class", "project-domain"), dom.Text(v.PreviewDomain)))
	}
	if v.Description != "" {
		dom.Append(card, dom.Append(dom.Element("p", "class", "project-text"), dom.Text(v.Description)))
	}
	if len(v.Metrics) > 0 {
		list := dom.Element("ul", "class", "project-metrics", "aria-label", first(tr.Resolve(v.Language, "projects.metricsLabel"), "Impact"))
		for _, m := range v.Metrics {
			dom.Append(list, dom.Append(dom.Element("li", "class", "project-metric"),
				dom.Append(dom.Element("strong", "class", "metric-value"), dom.Text(m.Value)),
				dom.Append(dom.Element("span", "class", "metric-label"), dom.Text(m.Label)),
			))
		}
		dom.Append(card, list)
	}

	actions := dom.Element("div", "class", "project-actions")
	dom.Append(actions,
		action(v.PreviewURL, first(tr.Resolve(v.Language, "projects.actions.preview"), "Live demo"), "project_preview", v.ID),
		action(v.RepoURL, first(tr.Resolve(v.Language, "projects.actions.repo"), "Source code"), "project_repo", v.ID),
		action(v.CaseStudyURL, first(tr.Resolve(v.Language, "projects.actions.caseStudy"), "Case study"), "project_case_study", v.ID),
	)
	if actions.FirstChild != nil {
		dom.Append(card, actions)
	}
	return item
}

func figure(v View) *html.Node {
	img := v.Image
	src := img.Src
	if src == "" && img.Responsive() {
		src = img.ResponsiveBase + "-" + strconv.Itoa(img.ResponsiveWidths[len(img.ResponsiveWidths)-1]) + ".webp"
	}
	if src == "" {
		return nil
	}
	attrs := []string{"src", src, "alt", v.ImageAlt, "loading", "lazy", "decoding", "async"}
	if img.Width > 0 && img.Height > 0 {
		attrs = append(attrs, "width", strconv.Itoa(img.Width), "height", strconv.Itoa(img.Height))
	}

	picture := dom.Element("picture")
	if img.Responsive() {
		for _, format := range []string{"avif", "webp"} {
			source := dom.Element("source", "type", "image/"+format, "srcset", SrcSet(img.ResponsiveBase, format, img.ResponsiveWidths))
			if img.Sizes != "" {
				source.Attr = append(source.Attr, html.Attribute{Key: "sizes", Val: img.Sizes})
			}
			dom.Append(picture, source)
		}
	}
	dom.Append(picture, dom.Element("img", attrs...))
	return dom.Append(dom.Element("figure", "class", "project-img"), picture)
}

// SrcSet builds "base-480.avif 480w, base-800.avif 800w".
func SrcSet(base, format string, widths []int) string {
	parts := make([]string, 0, len(widths))
	for _, w := range widths {
		n := strconv.Itoa(w)
		parts = append(parts, base+"-"+n+"."+format+" "+n+"w")
	}
	return strings.Join(parts, ", ")
}

func action(href, label, event, id string) *html.Node {
	if href == "" {
		return nil
	}
	attrs := []string{"class", "project-link", "href", href, "data-track-event", event, "data-track-label", id}
	if external(href) {
		attrs = append(attrs, "target", "_blank", "rel", "noopener noreferrer")
	}
	return dom.Append(dom.Element("a", attrs...), dom.Text(label))
}

// ErrorCard is the single localized "data unavailable" item.
func ErrorCard(message string) *html.Node {
	if message == "" {
		message = "Project data is unavailable right now."
	}
	return dom.Append(dom.Element("li", "class", "project-item project-error", "role", "status"),
		dom.Append(dom.Element("p", "class", "project-text"), dom.Text(message)),
	)
}

func external(href string) bool {
	u, err := url.Parse(href)
	return err == nil && u.IsAbs()
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
