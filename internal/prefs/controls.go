package prefs

import (
	"strconv"

	"portfolio/internal/dom"

	"github.com/PuerkitoBio/goquery"
)

// Bind syncs the motion toggle and intensity slider with the stored
// preference and follows system preference changes.
func (s *Store) Bind(doc *dom.Document) {
	toggle := doc.Find("[data-motion-toggle]")
	slider := doc.Find("[data-effects-intensity]")

	p := s.Read()
	dom.SetChecked(toggle, p.ForceReducedMotion)
	dom.SetValue(slider, FormatIntensity(p.Intensity))
	renderIntensity(doc, p.Intensity)

	doc.On(toggle, "change", func(ev *dom.Event) {
		s.SetReducedMotion(dom.Checked(doc.Wrap(ev.CurrentTarget())))
	})
	doc.On(slider, "input", func(ev *dom.Event) {
		raw := dom.Value(doc.Wrap(ev.CurrentTarget()))
		settings := s.SetIntensity(ParseIntensity(raw))
		renderIntensity(doc, settings.Intensity)
	})
	if s.win.ReducedMotion != nil {
		s.win.ReducedMotion.OnChange(func(bool) {
			s.Publish(s.Read())
		})
	}
}

func renderIntensity(doc *dom.Document, v float64) {
	doc.Find("[data-effects-intensity-value]").Each(func(_ int, out *goquery.Selection) {
		out.SetText(strconv.Itoa(int(Clamp(v)*100+0.5)) + "%")
	})
}
