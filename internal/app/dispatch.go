package app

import (
	"fmt"

	"portfolio/internal/dom"
	perrors "portfolio/internal/errors"

	"golang.org/x/net/html"
)

// Click dispatches a click on the first element matching selector.
func (c *Controller) Click(selector string) error {
	return c.dispatch(selector, func(n *html.Node) { c.Doc.Dispatch(n, "click") })
}

// Key dispatches a keydown after focusing the element.
func (c *Controller) Key(selector, key string) error {
	return c.dispatch(selector, func(n *html.Node) {
		c.Doc.Focus(n)
		c.Doc.DispatchKey(n, key)
	})
}

// Input sets a control value and dispatches input.
func (c *Controller) Input(selector, value string) error {
	return c.dispatch(selector, func(n *html.Node) {
		dom.SetValue(c.Doc.Wrap(n), value)
		c.Doc.Dispatch(n, "input")
	})
}

// Check sets a checkbox and dispatches change.
func (c *Controller) Check(selector string, checked bool) error {
	return c.dispatch(selector, func(n *html.Node) {
		dom.SetChecked(c.Doc.Wrap(n), checked)
		c.Doc.Dispatch(n, "change")
	})
}

// Submit dispatches submit on a form.
func (c *Controller) Submit(selector string) error {
	return c.dispatch(selector, func(n *html.Node) { c.Doc.Dispatch(n, "submit") })
}

// Reject reports an unhandled asynchronous failure.
func (c *Controller) Reject(reason any) {
	c.log.Warn().Interface("reason", reason).Msg("unhandled rejection")
	c.Analytics.ReportRejection(reason)
}

func (c *Controller) dispatch(selector string, fn func(*html.Node)) error {
	sel := c.Doc.Find(selector).First()
	if sel.Length() == 0 {
		return fmt.Errorf("%w: %s", perrors.ErrElementNotFound, selector)
	}
	c.guard(selector, func() { fn(sel.Get(0)) })
	return nil
}

// guard turns a handler panic into a client_error report, as a window error
// handler would.
func (c *Controller) guard(source string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprint(r)
			c.log.Error().Str("source", source).Str("panic", msg).Msg("handler panicked")
			c.Analytics.ReportError(msg, source, 0, 0)
		}
	}()
	fn()
}
