// Package browser models the window a page runs in: location, storage,
// media queries, privacy signals, the idle queue and navigation handoffs.
package browser

import (
	"portfolio/internal/storage"
)

// Navigator carries the privacy signals a browser exposes.
type Navigator struct {
	DoNotTrack           string
	MSDoNotTrack         string
	WindowDoNotTrack     string
	GlobalPrivacyControl bool
}

// DoNotTrackEnabled reports whether any do-not-track signal is set.
func (n Navigator) DoNotTrackEnabled() bool {
	return n.DoNotTrack == "1" || n.MSDoNotTrack == "1" || n.WindowDoNotTrack == "1" || n.GlobalPrivacyControl
}

// MediaQuery is a live boolean media query such as prefers-reduced-motion.
type MediaQuery struct {
	matches   bool
	listeners []func(bool)
}

func NewMediaQuery(matches bool) *MediaQuery { return &MediaQuery{matches: matches} }

func (m *MediaQuery) Matches() bool { return m.matches }

// OnChange registers fn for future changes.
func (m *MediaQuery) OnChange(fn func(bool)) { m.listeners = append(m.listeners, fn) }

// Set updates the query and notifies listeners when the value changes.
func (m *MediaQuery) Set(matches bool) {
	if m.matches == matches {
		return
	}
	m.matches = matches
	for _, fn := range m.listeners {
		fn(matches)
	}
}

// Window is the page's global environment.
type Window struct {
	Location      *Location
	Storage       storage.Store
	Navigator     Navigator
	Referrer      string
	ReducedMotion *MediaQuery

	idle        []func()
	scrolls     []bool
	navigations []string
}

// NewWindow builds a window for rawURL with empty in-memory storage.
func NewWindow(rawURL string) (*Window, error) {
	loc, err := NewLocation(rawURL)
	if err != nil {
		return nil, err
	}
	return &Window{
		Location:      loc,
		Storage:       storage.NewMemory(nil),
		ReducedMotion: NewMediaQuery(false),
	}, nil
}

// RequestIdle queues fn until the host reports an idle moment.
func (w *Window) RequestIdle(fn func()) { w.idle = append(w.idle, fn) }

// RunIdle runs queued idle callbacks, including ones queued while running.
func (w *Window) RunIdle() int {
	ran := 0
	for len(w.idle) > 0 {
		fn := w.idle[0]
		w.idle = w.idle[1:]
		fn()
		ran++
	}
	return ran
}

// PendingIdle counts queued idle callbacks.
func (w *Window) PendingIdle() int { return len(w.idle) }

// ScrollToTop records a scroll request.
func (w *Window) ScrollToTop(smooth bool) { w.scrolls = append(w.scrolls, smooth) }

// Scrolls returns the smooth flag of every scroll request.
func (w *Window) Scrolls() []bool { return append([]bool(nil), w.scrolls...) }

// Navigate hands the URL to the platform (mail client, new document).
func (w *Window) Navigate(rawURL string) { w.navigations = append(w.navigations, rawURL) }

func (w *Window) Navigations() []string { return append([]string(nil), w.navigations...) }
