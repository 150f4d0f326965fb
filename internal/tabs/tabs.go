// Package tabs switches between the pages declared in markup and keeps the
// URL fragment in sync.
package tabs

import (
	"strings"

	"portfolio/internal/browser"
	"portfolio/internal/dom"
	"portfolio/internal/events"

	"github.com/PuerkitoBio/goquery"
)

const (
	navSelector   = "[data-nav-link]"
	pageSelector  = "[data-page]"
	quickSelector = "[data-open-page]"
)

// Navigator is the page state machine. Its states are the data-page keys
// found in the document.
type Navigator struct {
	doc *dom.Document
	win *browser.Window
	bus *events.Bus

	pages  map[string]bool
	order  []string
	active string
}

func New(doc *dom.Document, win *browser.Window, bus *events.Bus) *Navigator {
	return &Navigator{doc: doc, win: win, bus: bus, pages: map[string]bool{}}
}

// Init discovers pages, wires controls and activates the initial page: the
// URL hash if it names a page, else the control marked active in markup,
// else nothing. It returns false when the document has no tabs.
func (n *Navigator) Init() bool {
	links := n.doc.Find(navSelector)
	pages := n.doc.Find(pageSelector)
	if links.Length() == 0 || pages.Length() == 0 {
		return false
	}
	pages.Each(func(_ int, p *goquery.Selection) {
		key := normalizeKey(dom.Data(p, "page"))
		if key != "" && !n.pages[key] {
			n.pages[key] = true
			n.order = append(n.order, key)
		}
	})

	n.doc.On(links, "click", func(ev *dom.Event) {
		n.Activate(dom.Data(n.doc.Wrap(ev.CurrentTarget()), "target"), true)
	})
	n.doc.On(links, "keydown", n.onKeyDown)
	n.doc.On(n.doc.Find(quickSelector), "click", func(ev *dom.Event) {
		if n.Activate(dom.Data(n.doc.Wrap(ev.CurrentTarget()), "open-page"), true) {
			ev.PreventDefault()
		}
	})

	if key := normalizeKey(strings.TrimPrefix(n.win.Location.Hash(), "#")); n.pages[key] {
		n.Activate(key, false)
		return true
	}
	initial := links.FilterFunction(func(_ int, s *goquery.Selection) bool { return s.HasClass("active") }).First()
	if key := normalizeKey(dom.Data(initial, "target")); n.pages[key] {
		n.Activate(key, false)
	}
	return true
}

// Activate makes key the only active page. Unknown keys are ignored.
func (n *Navigator) Activate(key string, scroll bool) bool {
	key = normalizeKey(key)
	if !n.pages[key] {
		return false
	}
	n.active = key

	n.doc.Find(navSelector).Each(func(_ int, link *goquery.Selection) {
		on := normalizeKey(dom.Data(link, "target")) == key
		dom.ToggleClass(link, "active", on)
		dom.SetBool(link, "aria-selected", on)
		dom.SetTabIndex(link, on)
	})
	n.doc.Find(pageSelector).Each(func(_ int, page *goquery.Selection) {
		on := normalizeKey(dom.Data(page, "page")) == key
		dom.ToggleClass(page, "active", on)
		dom.SetBool(page, "aria-hidden", !on)
		dom.SetHidden(page, !on)
	})

	if scroll {
		n.win.ScrollToTop(true)
	}
	if n.win.Location.Hash() != "#"+key {
		n.win.Location.SetHash(key)
	}
	n.bus.PageView.Publish(events.PageView{Path: n.win.Location.Path()})
	return true
}

func (n *Navigator) onKeyDown(ev *dom.Event) {
	links := n.doc.Find(navSelector)
	current := ev.CurrentTarget()
	if dom.IsActivationKey(ev.Key) {
		ev.PreventDefault()
		n.Activate(dom.Data(n.doc.Wrap(current), "target"), true)
		return
	}
	next, ok := dom.RovingTarget(ev.Key, links.IndexOfNode(current), links.Length())
	if !ok {
		return
	}
	ev.PreventDefault()
	target := links.Get(next)
	n.doc.Focus(target)
	n.Activate(dom.Data(n.doc.Wrap(target), "target"), true)
}

// Active is the active page key, or "" before any activation.
func (n *Navigator) Active() string { return n.active }

// Pages lists page keys in document order.
func (n *Navigator) Pages() []string { return append([]string(nil), n.order...) }

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
