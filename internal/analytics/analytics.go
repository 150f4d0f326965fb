// Package analytics sends privacy-respecting pixel beacons for page views,
// outbound clicks and client errors.
package analytics

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"portfolio/internal/browser"
	"portfolio/internal/dom"
	"portfolio/internal/events"

	"github.com/rs/zerolog"
)

const (
	// OptOutKey in storage disables tracking when set to "1".
	OptOutKey = "portfolio-analytics-opt-out"
	// PixelMeta names the meta tag holding the pixel endpoint.
	PixelMeta = "privacy-analytics-pixel"
	// MaxClientErrors bounds error beacons per session.
	MaxClientErrors = 8

	maxEvent      = 48
	maxPath       = 220
	maxLabel      = 140
	maxClickLabel = 120
	maxTarget     = 220
	maxRef        = 240
)

// Payload carries the optional beacon fields.
type Payload struct {
	Path   string
	Label  string
	Target string
}

type Config struct {
	Beacon Beacon
	Now    func() time.Time
	Logger *zerolog.Logger
}

// Pipeline is inert when consent is missing or no pixel is configured;
// that is decided once, in New.
type Pipeline struct {
	doc    *dom.Document
	win    *browser.Window
	beacon Beacon
	now    func() time.Time
	log    zerolog.Logger

	enabled    bool
	endpoint   string
	started    bool
	lastPath   string
	viewed     bool
	errorsSent int
	sent       int
}

func New(doc *dom.Document, win *browser.Window, cfg Config) *Pipeline {
	p := &Pipeline{doc: doc, win: win, beacon: cfg.Beacon, now: cfg.Now, log: zerolog.Nop()}
	if cfg.Logger != nil {
		p.log = cfg.Logger.With().Str("component", "analytics").Logger()
	}
	if p.now == nil {
		p.now = time.Now
	}

	switch {
	case win.Navigator.DoNotTrackEnabled():
		p.log.Debug().Msg("do-not-track set, analytics disabled")
		return p
	case optedOut(win):
		p.log.Debug().Msg("analytics opt-out set")
		return p
	}
	pixel := doc.Meta(PixelMeta)
	if pixel == "" || p.beacon == nil {
		return p
	}
	resolved, err := win.Location.Resolve(pixel)
	if err != nil {
		p.log.Warn().Err(err).Str("pixel", pixel).Msg("pixel endpoint unusable")
		return p
	}
	p.endpoint = resolved.String()
	p.enabled = true
	return p
}

func optedOut(win *browser.Window) bool {
	if win.Storage == nil {
		return false
	}
	v, ok := win.Storage.Get(OptOutKey)
	return ok && strings.TrimSpace(v) == "1"
}

func (p *Pipeline) Enabled() bool { return p.enabled }

// Sent counts beacons handed to the transport.
func (p *Pipeline) Sent() int { return p.sent }

// Sanitize collapses whitespace and caps v at limit characters.
func Sanitize(v string, limit int) string {
	v = strings.Join(strings.Fields(v), " ")
	if r := []rune(v); len(r) > limit {
		return string(r[:limit])
	}
	return v
}

// Track sends one beacon. It reports whether anything was sent.
func (p *Pipeline) Track(event string, payload Payload) bool {
	if !p.enabled {
		return false
	}
	event = Sanitize(event, maxEvent)
	if event == "" {
		return false
	}
	path := payload.Path
	if path == "" {
		path = p.win.Location.Path()
	}
	lang := strings.TrimSpace(p.doc.Root().AttrOr("lang", ""))
	if lang == "" {
		lang = "en"
	}

	params := [][2]string{
		{"v", "1"},
		{"event", event},
		{"path", Sanitize(path, maxPath)},
		{"ts", strconv.FormatInt(p.now().UnixMilli(), 10)},
		{"lang", lang},
	}
	if label := Sanitize(payload.Label, maxLabel); label != "" {
		params = append(params, [2]string{"label", label})
	}
	if target := Sanitize(payload.Target, maxTarget); target != "" {
		params = append(params, [2]string{"target", target})
	}
	if ref := Sanitize(p.win.Referrer, maxRef); ref != "" {
		params = append(params, [2]string{"ref", ref})
	}

	sep := "?"
	if strings.Contains(p.endpoint, "?") {
		sep = "&"
	}
	p.beacon.Send(p.endpoint + sep + encode(params))
	p.sent++
	return true
}

// encode keeps parameter order stable, as URLSearchParams does.
func encode(params [][2]string) string {
	var b strings.Builder
	for i, kv := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
	}
	return b.String()
}

// TrackPageView sends a pageview unless path equals the last one sent.
func (p *Pipeline) TrackPageView(path string) bool {
	if p.viewed && path == p.lastPath {
		return false
	}
	if !p.Track("pageview", Payload{Path: path}) {
		return false
	}
	p.viewed = true
	p.lastPath = path
	return true
}

// Start sends the initial pageview and observes navigation, language
// changes and link clicks. Later calls do nothing.
func (p *Pipeline) Start(bus *events.Bus) {
	if !p.enabled || p.started {
		return
	}
	p.started = true
	p.TrackPageView(p.win.Location.Path())

	bus.PageView.Subscribe(func(v events.PageView) { p.TrackPageView(v.Path) })
	bus.Language.Subscribe(func(events.LanguageChange) { p.TrackPageView(p.win.Location.Path()) })
	p.doc.OnCapture("click", p.onClick)
}

func (p *Pipeline) onClick(ev *dom.Event) {
	link := p.doc.Wrap(ev.Target).Closest("a[href]")
	if link.Length() == 0 {
		return
	}
	href := strings.TrimSpace(link.AttrOr("href", ""))
	if href == "" {
		return
	}
	explicit := Sanitize(dom.Data(link, "track-event"), maxEvent)
	label := dom.Data(link, "track-label")
	if strings.TrimSpace(label) == "" {
		label = link.Text()
	}
	if strings.TrimSpace(label) == "" {
		label = link.AttrOr("aria-label", "")
	}
	label = Sanitize(label, maxClickLabel)

	target, outbound := href, false
	if u, err := p.win.Location.Resolve(href); err == nil {
		target = u.String()
		scheme := strings.ToLower(u.Scheme)
		outbound = scheme == "mailto" || scheme == "tel" || browser.OriginOf(u) != p.win.Location.Origin()
	}

	switch {
	case explicit != "":
		p.Track(explicit, Payload{Label: label, Target: target})
	case outbound:
		p.Track("outbound_click", Payload{Label: label, Target: target})
	}
}

// ReportError forwards a runtime error. At most MaxClientErrors error
// beacons are sent per session.
func (p *Pipeline) ReportError(message, file string, line, col int) bool {
	if message == "" {
		message = "runtime error"
	}
	if file == "" {
		file = "inline"
	}
	return p.reportClientError("client_error", message, fmt.Sprintf("%s:%d:%d", file, line, col))
}

// ReportRejection forwards an unhandled failure. Reasons that are neither
// errors nor strings are serialized as JSON when possible.
func (p *Pipeline) ReportRejection(reason any) bool {
	return p.reportClientError("unhandled_rejection", describe(reason), "promise")
}

func (p *Pipeline) reportClientError(event, message, source string) bool {
	if !p.enabled || p.errorsSent >= MaxClientErrors {
		return false
	}
	p.errorsSent++
	return p.Track(event, Payload{Label: Sanitize(message, maxLabel), Target: Sanitize(source, maxTarget)})
}

func describe(reason any) string {
	switch r := reason.(type) {
	case nil:
		return "unhandled rejection"
	case error:
		return r.Error()
	case string:
		return r
	case fmt.Stringer:
		return r.String()
	}
	data, err := json.Marshal(reason)
	if err != nil {
		return fmt.Sprintf("%v", reason)
	}
	return string(data)
}
