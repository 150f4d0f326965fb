// Package events is the in-process message bus that replaces the page's
// custom DOM events. Publishing is a synchronous fan-out in subscription
// order.
package events

// Settings is the effects snapshot the decorative widget consumes.
type Settings struct {
	ReducedMotion bool
	Intensity     float64
}

// LanguageChange is broadcast after a language has been applied.
type LanguageChange struct {
	Language string
	Previous string
	ReRender bool
}

// PageView is a virtual page view raised by in-document navigation.
type PageView struct {
	Path string
}

// Topic is a list of subscribers for one message type.
type Topic[T any] struct {
	subs []func(T)
}

func (t *Topic[T]) Subscribe(fn func(T)) {
	t.subs = append(t.subs, fn)
}

func (t *Topic[T]) Publish(msg T) {
	for _, fn := range t.subs {
		fn(msg)
	}
}

// Len reports the number of subscribers.
func (t *Topic[T]) Len() int { return len(t.subs) }

// Bus groups the page's topics.
type Bus struct {
	Settings Topic[Settings]
	Language Topic[LanguageChange]
	PageView Topic[PageView]
}

func NewBus() *Bus { return &Bus{} }
