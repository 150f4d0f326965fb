// Package dom wraps a parsed HTML document with the small slice of browser
// behaviour the portfolio core relies on: event listeners, focus tracking and
// attribute helpers. It is driven from a single goroutine, like a browser tab.
package dom

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Listener handles a dispatched event.
type Listener func(*Event)

// Event is a dispatched DOM event.
type Event struct {
	Type   string
	Key    string
	Target *html.Node

	current          *html.Node
	defaultPrevented bool
	stopped          bool
}

// CurrentTarget is the node whose listener is running.
func (e *Event) CurrentTarget() *html.Node { return e.current }

func (e *Event) PreventDefault() { e.defaultPrevented = true }

func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

func (e *Event) StopPropagation() { e.stopped = true }

// Document is an HTML document with listeners attached to its nodes.
type Document struct {
	doc       *goquery.Document
	listeners map[*html.Node]map[string][]Listener
	capture   map[string][]Listener
	focused   *html.Node
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{
		doc:       doc,
		listeners: make(map[*html.Node]map[string][]Listener),
		capture:   make(map[string][]Listener),
	}, nil
}

// ParseString parses markup held in memory.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Find queries the live document.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Wrap returns a selection holding n, or an empty selection when n is no
// longer attached to the document.
func (d *Document) Wrap(n *html.Node) *goquery.Selection {
	if n == nil {
		return d.doc.FindNodes()
	}
	return d.doc.FindNodes(n)
}

// Root is the <html> element.
func (d *Document) Root() *goquery.Selection { return d.doc.Find("html").First() }

func (d *Document) Body() *goquery.Selection { return d.doc.Find("body").First() }

// Meta returns the trimmed content of <meta name="...">.
func (d *Document) Meta(name string) string {
	var content string
	d.doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if n, _ := s.Attr("name"); n == name {
			content = strings.TrimSpace(s.AttrOr("content", ""))
			return false
		}
		return true
	})
	return content
}

// On attaches fn to every node in sel.
func (d *Document) On(sel *goquery.Selection, eventType string, fn Listener) {
	for _, n := range sel.Nodes {
		byType := d.listeners[n]
		if byType == nil {
			byType = make(map[string][]Listener)
			d.listeners[n] = byType
		}
		byType[eventType] = append(byType[eventType], fn)
	}
}

// OnCapture attaches a document-level listener that runs before any
// node listener for the event type.
func (d *Document) OnCapture(eventType string, fn Listener) {
	d.capture[eventType] = append(d.capture[eventType], fn)
}

// Dispatch runs capture listeners, then bubbles from target to the root.
func (d *Document) Dispatch(target *html.Node, eventType string) *Event {
	return d.dispatch(&Event{Type: eventType, Target: target})
}

// DispatchKey dispatches a keydown event carrying key.
func (d *Document) DispatchKey(target *html.Node, key string) *Event {
	return d.dispatch(&Event{Type: "keydown", Key: key, Target: target})
}

func (d *Document) dispatch(ev *Event) *Event {
	for _, fn := range d.capture[ev.Type] {
		fn(ev)
		if ev.stopped {
			return ev
		}
	}
	for n := ev.Target; n != nil; n = n.Parent {
		handlers := d.listeners[n][ev.Type]
		if len(handlers) == 0 {
			continue
		}
		ev.current = n
		for _, fn := range handlers {
			fn(ev)
		}
		if ev.stopped {
			break
		}
	}
	ev.current = nil
	return ev
}

// Forget drops listeners bound to nodes inside sel. Call before discarding
// rendered subtrees.
func (d *Document) Forget(sel *goquery.Selection) {
	for _, n := range sel.Nodes {
		forgetTree(d.listeners, n)
		if d.focused != nil && (d.focused == n || contains(n, d.focused)) {
			d.focused = nil
		}
	}
}

func forgetTree(listeners map[*html.Node]map[string][]Listener, n *html.Node) {
	delete(listeners, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		forgetTree(listeners, c)
	}
}

// Focus moves keyboard focus to n.
func (d *Document) Focus(n *html.Node) { d.focused = n }

// Focused is the equivalent of document.activeElement.
func (d *Document) Focused() *html.Node { return d.focused }

// Contains reports whether n sits inside ancestor (inclusive).
func Contains(ancestor, n *html.Node) bool {
	return ancestor == n || contains(ancestor, n)
}

func contains(ancestor, n *html.Node) bool {
	if ancestor == nil || n == nil {
		return false
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// HTML serializes the whole document.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.doc.Nodes[0]); err != nil {
		return "", err
	}
	return buf.String(), nil
}
