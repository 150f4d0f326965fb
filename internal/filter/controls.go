package filter

import (
	"portfolio/internal/dom"
)

// Bind wires the button row, its roving focus and the dropdown.
func (c *Controller) Bind() {
	buttons := c.doc.Find(buttonSelector)
	c.doc.On(buttons, "click", func(ev *dom.Event) {
		c.Apply(dom.Data(c.doc.Wrap(ev.CurrentTarget()), "filter"))
	})
	c.doc.On(buttons, "keydown", c.onKeyDown)

	box := c.doc.Find(selectBox).First()
	trigger := c.doc.Find(selectTrigger).First()
	if box.Length() == 0 || trigger.Length() == 0 {
		return
	}
	c.doc.On(trigger, "click", func(*dom.Event) {
		c.setOpen(!c.Open())
	})
	c.doc.On(c.doc.Find(optionSelector), "click", func(ev *dom.Event) {
		c.Apply(dom.Data(c.doc.Wrap(ev.CurrentTarget()), "filter"))
		c.setOpen(false)
	})
	c.doc.OnCapture("click", func(ev *dom.Event) {
		if b := c.doc.Find(selectBox).First(); b.Length() > 0 && !dom.Contains(b.Get(0), ev.Target) {
			c.setOpen(false)
		}
	})
	c.doc.OnCapture("keydown", func(ev *dom.Event) {
		if ev.Key == "Escape" {
			c.setOpen(false)
		}
	})
}

// Open reports whether the dropdown is expanded.
func (c *Controller) Open() bool {
	return c.doc.Find(selectBox).First().HasClass("active")
}

func (c *Controller) setOpen(open bool) {
	dom.ToggleClass(c.doc.Find(selectBox).First(), "active", open)
	dom.SetBool(c.doc.Find(selectTrigger).First(), "aria-expanded", open)
}

func (c *Controller) onKeyDown(ev *dom.Event) {
	buttons := c.doc.Find(buttonSelector)
	current := ev.CurrentTarget()
	if dom.IsActivationKey(ev.Key) {
		ev.PreventDefault()
		c.Apply(dom.Data(c.doc.Wrap(current), "filter"))
		return
	}
	next, ok := dom.RovingTarget(ev.Key, buttons.IndexOfNode(current), buttons.Length())
	if !ok {
		return
	}
	ev.PreventDefault()
	target := buttons.Get(next)
	c.doc.Focus(target)
	c.Apply(dom.Data(c.doc.Wrap(target), "filter"))
}
