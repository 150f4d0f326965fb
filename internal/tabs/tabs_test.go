package tabs_test

import (
	"testing"

	"portfolio/internal/browser"
	"portfolio/internal/dom"
	"portfolio/internal/events"
	"portfolio/internal/tabs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<nav>
  <button class="active" data-nav-link data-target="about">About</button>
  <button data-nav-link data-target="resume">Resume</button>
  <button data-nav-link data-target="portfolio">Projects</button>
</nav>
<a href="#portfolio" data-open-page="portfolio">See projects</a>
<article data-page="about">A</article>
<article data-page="resume" hidden>R</article>
<article data-page="portfolio" hidden>P</article>
</body></html>`

type fixture struct {
	doc   *dom.Document
	win   *browser.Window
	nav   *tabs.Navigator
	views []string
}

func setup(t *testing.T, rawURL, markup string) *fixture {
	t.Helper()
	doc, err := dom.ParseString(markup)
	require.NoError(t, err)
	win, err := browser.NewWindow(rawURL)
	require.NoError(t, err)
	bus := events.NewBus()
	f := &fixture{doc: doc, win: win, nav: tabs.New(doc, win, bus)}
	bus.PageView.Subscribe(func(p events.PageView) { f.views = append(f.views, p.Path) })
	return f
}

func (f *fixture) assertOnlyActive(t *testing.T, key string) {
	t.Helper()
	activePages := f.doc.Find("[data-page].active")
	require.Equal(t, 1, activePages.Length())
	assert.Equal(t, key, activePages.AttrOr("data-page", ""))
	assert.Equal(t, 2, f.doc.Find("[data-page][hidden]").Length())

	activeLinks := f.doc.Find(`[data-nav-link][aria-selected="true"]`)
	require.Equal(t, 1, activeLinks.Length())
	assert.Equal(t, key, activeLinks.AttrOr("data-target", ""))
	assert.Equal(t, 1, f.doc.Find(`[data-nav-link][tabindex="0"]`).Length())
	assert.Equal(t, "#"+key, f.win.Location.Hash())
}

func TestInit_FromHash(t *testing.T) {
	f := setup(t, "https://example.com/#resume", page)

	require.True(t, f.nav.Init())

	f.assertOnlyActive(t, "resume")
	assert.Equal(t, "resume", f.nav.Active())
	assert.Empty(t, f.win.Scrolls(), "initial activation does not scroll")
	assert.Equal(t, 0, f.win.Location.Replacements(), "hash already matches")
}

func TestInit_HashIsCaseInsensitive(t *testing.T) {
	f := setup(t, "https://example.com/#Portfolio", page)
	f.nav.Init()
	assert.Equal(t, "portfolio", f.nav.Active())
}

func TestInit_FallsBackToMarkup(t *testing.T) {
	f := setup(t, "https://example.com/#nowhere", page)

	f.nav.Init()

	f.assertOnlyActive(t, "about")
	assert.Equal(t, []string{"/#about"}, f.views)
}

func TestInit_NoActiveMarkup(t *testing.T) {
	markup := `<html><body><button data-nav-link data-target="a">A</button><div data-page="a"></div></body></html>`
	f := setup(t, "https://example.com/", markup)

	assert.True(t, f.nav.Init())
	assert.Equal(t, "", f.nav.Active())
	assert.Empty(t, f.views)
}

func TestInit_NoTabs(t *testing.T) {
	f := setup(t, "https://example.com/", `<html><body></body></html>`)
	assert.False(t, f.nav.Init())
}

func TestClick_ActivatesAndEmitsPageView(t *testing.T) {
	f := setup(t, "https://example.com/?lang=ru", page)
	f.nav.Init()

	f.doc.Dispatch(f.doc.Find(`[data-target="portfolio"]`).Get(0), "click")

	f.assertOnlyActive(t, "portfolio")
	assert.Equal(t, []bool{true}, f.win.Scrolls())
	assert.Equal(t, []string{"/?lang=ru#about", "/?lang=ru#portfolio"}, f.views)
}

func TestQuickLink(t *testing.T) {
	f := setup(t, "https://example.com/", page)
	f.nav.Init()

	ev := f.doc.Dispatch(f.doc.Find("[data-open-page]").Get(0), "click")

	assert.True(t, ev.DefaultPrevented())
	f.assertOnlyActive(t, "portfolio")
}

func TestActivate_UnknownKeyIgnored(t *testing.T) {
	f := setup(t, "https://example.com/", page)
	f.nav.Init()
	before := len(f.views)

	assert.False(t, f.nav.Activate("contact", true))

	f.assertOnlyActive(t, "about")
	assert.Len(t, f.views, before)
}

func TestKeyboard_RovingFocus(t *testing.T) {
	f := setup(t, "https://example.com/", page)
	f.nav.Init()
	links := f.doc.Find("[data-nav-link]")

	tests := []struct {
		from int
		key  string
		want string
	}{
		{0, "ArrowRight", "resume"},
		{2, "ArrowRight", "about"},
		{0, "ArrowLeft", "portfolio"},
		{1, "Home", "about"},
		{0, "End", "portfolio"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			ev := f.doc.DispatchKey(links.Get(tt.from), tt.key)
			assert.True(t, ev.DefaultPrevented())
			f.assertOnlyActive(t, tt.want)
			assert.Equal(t, tt.want, f.doc.Wrap(f.doc.Focused()).AttrOr("data-target", ""))
		})
	}

	f.doc.DispatchKey(links.Get(1), "Enter")
	f.assertOnlyActive(t, "resume")

	ev := f.doc.DispatchKey(links.Get(1), "x")
	assert.False(t, ev.DefaultPrevented())
	f.assertOnlyActive(t, "resume")
}
