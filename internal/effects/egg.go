package effects

import (
	"portfolio/internal/dom"

	"golang.org/x/net/html"
)

// easterEgg is the modal opened from the avatar.
type easterEgg struct {
	doc     *dom.Document
	overlay *html.Node
	modal   *html.Node
	open    bool
}

func mountEasterEgg(doc *dom.Document) *easterEgg {
	avatar := doc.Find(".avatar-box").First()
	if avatar.Length() == 0 {
		return nil
	}
	avatar.AddClass("egg-avatar-trigger")
	avatar.SetAttr("role", "button")
	avatar.SetAttr("tabindex", "0")

	closeBtn := dom.Element("button", "type", "button", "class", "egg-close", "aria-label", "Close", "data-i18n-attr", "aria-label:egg.close")
	dom.Append(closeBtn, dom.Text("×"))
	modal := dom.Element("div", "class", "egg-modal", "role", "dialog", "aria-modal", "true")
	dom.Append(modal,
		dom.Element("div", "class", "egg-glitch-wrap", "aria-hidden", "true"),
		dom.Append(dom.Element("div", "class", "egg-shell"), closeBtn),
	)
	overlay := dom.Element("div", "class", "egg-overlay", "aria-hidden", "true")
	dom.Append(overlay, modal)
	doc.Body().AppendNodes(overlay)

	e := &easterEgg{doc: doc, overlay: overlay, modal: modal}
	doc.On(avatar, "click", func(*dom.Event) { e.setOpen(true) })
	doc.On(avatar, "keydown", func(ev *dom.Event) {
		if dom.IsActivationKey(ev.Key) {
			ev.PreventDefault()
			e.setOpen(true)
		}
	})
	doc.On(doc.Wrap(closeBtn), "click", func(*dom.Event) { e.setOpen(false) })
	doc.On(doc.Wrap(overlay), "click", func(ev *dom.Event) {
		if ev.Target == overlay {
			e.setOpen(false)
		}
	})
	doc.OnCapture("keydown", func(ev *dom.Event) {
		if ev.Key == "Escape" && e.open {
			e.setOpen(false)
		}
	})
	return e
}

func (e *easterEgg) setOpen(open bool) {
	e.open = open
	for _, n := range []*html.Node{e.overlay, e.modal} {
		sel := e.doc.Wrap(n)
		dom.ToggleClass(sel, "is-open", open)
	}
	dom.SetBool(e.doc.Wrap(e.overlay), "aria-hidden", !open)
	if open {
		e.doc.Focus(e.doc.Wrap(e.modal).Find(".egg-close").Get(0))
	}
}
