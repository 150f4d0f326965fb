// Package effects is the decorative overlay: a terminal shader whose
// parameters scale with the effects intensity, and the avatar easter egg.
// The rest of the site only feeds it settings snapshots.
package effects

import (
	"strconv"

	"portfolio/internal/dom"
	perrors "portfolio/internal/errors"
	"portfolio/internal/events"

	"github.com/PuerkitoBio/goquery"
)

// Params drive the terminal overlay.
type Params struct {
	Animate           bool
	MouseReact        bool
	PageLoadAnimation bool
	TimeScale         float64
	GlitchAmount      float64
	FlickerAmount     float64
	NoiseAmp          float64
	ScanlineIntensity float64
	MouseStrength     float64
	Brightness        float64
	Scale             float64
	DigitSize         float64
	Curvature         float64
	Tint              string
}

// Base is the overlay at full intensity.
var Base = Params{
	Animate:           true,
	MouseReact:        true,
	PageLoadAnimation: true,
	TimeScale:         0.8,
	GlitchAmount:      1,
	FlickerAmount:     1,
	NoiseAmp:          1,
	ScanlineIntensity: 0.5,
	MouseStrength:     0.5,
	Brightness:        0.6,
	Scale:             3,
	DigitSize:         2.1,
	Curvature:         0.1,
	Tint:              "#fffb00",
}

// Scale derives overlay parameters from a settings snapshot. Reduced motion
// freezes the overlay but keeps a dimmed static frame.
func Scale(s events.Settings) Params {
	k := s.Intensity
	if k < 0 {
		k = 0
	}
	if k > 1 {
		k = 1
	}
	p := Base
	p.TimeScale = Base.TimeScale * k
	p.GlitchAmount = Base.GlitchAmount * k
	p.FlickerAmount = Base.FlickerAmount * k
	p.NoiseAmp = Base.NoiseAmp * k
	p.ScanlineIntensity = Base.ScanlineIntensity * k
	p.MouseStrength = Base.MouseStrength * k
	p.Brightness = Base.Brightness * (0.5 + 0.5*k)
	p.Animate = k > 0
	if s.ReducedMotion {
		p.Animate = false
		p.MouseReact = false
		p.PageLoadAnimation = false
		p.TimeScale = 0
		p.GlitchAmount = 0
		p.FlickerAmount = 0
		p.MouseStrength = 0
	}
	return p
}

// Widget renders into #effects-root.
type Widget struct {
	doc     *dom.Document
	root    *goquery.Selection
	params  Params
	applied int
	egg     *easterEgg
}

// Load mounts the widget. It fails when the page has no #effects-root.
func Load(doc *dom.Document) (*Widget, error) {
	root := doc.Find("#effects-root").First()
	if root.Length() == 0 {
		return nil, perrors.ErrWidgetUnavailable
	}
	root.SetAttr("data-effects-mounted", "")
	root.AppendNodes(dom.Element("div", "class", "effects-terminal-wrap", "aria-hidden", "true"))
	w := &Widget{doc: doc, root: root}
	w.egg = mountEasterEgg(doc)
	return w, nil
}

// Apply consumes a settings snapshot.
func (w *Widget) Apply(s events.Settings) {
	w.params = Scale(s)
	w.applied++
	term := w.root.Find(".effects-terminal-wrap")
	term.SetAttr("data-animate", strconv.FormatBool(w.params.Animate))
	term.SetAttr("data-time-scale", formatFloat(w.params.TimeScale))
	term.SetAttr("data-glitch", formatFloat(w.params.GlitchAmount))
	term.SetAttr("data-brightness", formatFloat(w.params.Brightness))
	dom.ToggleClass(w.root, "is-static", !w.params.Animate)
}

func (w *Widget) Params() Params { return w.params }

// Applied counts snapshots received.
func (w *Widget) Applied() int { return w.applied }

// EggOpen reports whether the easter egg modal is showing.
func (w *Widget) EggOpen() bool { return w.egg != nil && w.egg.open }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }
