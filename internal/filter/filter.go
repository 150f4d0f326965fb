// Package filter shows the project cards of one category and keeps the
// button row and the dropdown in agreement.
package filter

import (
	"strings"

	"portfolio/internal/dom"
	"portfolio/internal/locale"

	"github.com/PuerkitoBio/goquery"
)

const (
	// All matches every card.
	All = "all"

	itemSelector    = "[data-filter-item]"
	buttonSelector  = "[data-filter-btn]"
	selectBox       = ".filter-select-box"
	selectTrigger   = "[data-select]"
	selectValue     = "[data-select-value]"
	optionSelector  = "[data-select-item]"
	defaultAllLabel = "All"
)

// Controller holds the active filter token. Cards are re-queried on every
// apply so a catalog re-render never leaves stale references.
type Controller struct {
	doc    *dom.Document
	tr     locale.Translator
	active string
}

func New(doc *dom.Document, tr locale.Translator) *Controller {
	return &Controller{doc: doc, tr: tr, active: All}
}

// Normalize lowercases and trims a token; empty becomes All.
func Normalize(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return All
	}
	return token
}

// Active is the current token.
func (c *Controller) Active() string { return c.active }

// Apply makes token the active filter and returns the number of visible
// cards. Unknown tokens hide every card.
func (c *Controller) Apply(token string) int {
	c.active = Normalize(token)
	visible := 0
	c.doc.Find(itemSelector).Each(func(_ int, item *goquery.Selection) {
		show := c.active == All || hasCategory(dom.Data(item, "category"), c.active)
		dom.ToggleClass(item, "active", show)
		dom.SetHidden(item, !show)
		if show {
			visible++
		}
	})

	c.doc.Find(buttonSelector).Each(func(_ int, btn *goquery.Selection) {
		on := Normalize(dom.Data(btn, "filter")) == c.active
		dom.ToggleClass(btn, "active", on)
		dom.SetBool(btn, "aria-selected", on)
		dom.SetTabIndex(btn, on)
	})
	c.doc.Find(optionSelector).Each(func(_ int, opt *goquery.Selection) {
		dom.SetBool(opt, "aria-selected", Normalize(dom.Data(opt, "filter")) == c.active)
	})
	c.RefreshLabel()
	return visible
}

// RefreshLabel rewrites the dropdown value in the current language.
func (c *Controller) RefreshLabel() {
	lang := c.tr.Current()
	label := c.tr.Resolve(lang, "filters."+c.active)
	if label == "" && c.active != All {
		// an untranslated token still names what is on screen
		label = c.active
	}
	if label == "" {
		label = c.tr.Resolve(lang, "filters."+All)
	}
	if label == "" {
		label = defaultAllLabel
	}
	c.doc.Find(selectValue).SetText(label)
}

// Visible counts the cards currently shown.
func (c *Controller) Visible() int {
	return c.doc.Find(itemSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return !dom.IsHidden(s)
	}).Length()
}

func hasCategory(list, token string) bool {
	for _, v := range strings.Split(list, ",") {
		if strings.ToLower(strings.TrimSpace(v)) == token {
			return true
		}
	}
	return false
}
