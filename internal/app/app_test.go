package app_test

import (
	"context"
	"net/url"
	"testing"

	"portfolio/internal/analytics"
	"portfolio/internal/app"
	"portfolio/internal/browser"
	"portfolio/internal/dom"
	perrors "portfolio/internal/errors"
	"portfolio/internal/events"
	"portfolio/internal/fetch"
	"portfolio/internal/locale"
	"portfolio/internal/prefs"
	"portfolio/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	fetch.Fetcher
	calls map[string]int
}

func (c *countingFetcher) Fetch(ctx context.Context, resource string) ([]byte, error) {
	c.calls[resource]++
	return c.Fetcher.Fetch(ctx, resource)
}

type page struct {
	*app.Controller
	rec     *analytics.Recorder
	fetcher *countingFetcher
}

func start(t *testing.T, rawURL string, prepare func(*browser.Window)) *page {
	t.Helper()
	doc, err := app.Open(web.Site(), "index.html")
	require.NoError(t, err)
	win, err := browser.NewWindow(rawURL)
	require.NoError(t, err)
	if prepare != nil {
		prepare(win)
	}
	rec := &analytics.Recorder{}
	f := &countingFetcher{Fetcher: fetch.NewFS(web.Site()), calls: map[string]int{}}
	c := app.New(doc, win, app.Options{Fetcher: f, Beacon: rec})
	c.Start(context.Background())
	return &page{Controller: c, rec: rec, fetcher: f}
}

func (p *page) events(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, raw := range p.rec.URLs() {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		out = append(out, u.Query().Get("event")+" "+u.Query().Get("path"))
	}
	return out
}

func TestStart_DefaultPage(t *testing.T) {
	p := start(t, "https://portfolio.example.com/", nil)

	st := p.State()
	assert.Equal(t, locale.LanguageEnglish, st.Language)
	assert.Equal(t, "about", st.Page)
	assert.Equal(t, "all", st.Filter)
	assert.Equal(t, 3, st.Projects)
	assert.NoError(t, st.CatalogErr)
	assert.True(t, st.Analytics)
	assert.True(t, st.Loaded)
	assert.Equal(t, prefs.Loading, st.Effects)
	assert.Equal(t, events.Settings{Intensity: 1}, st.Settings)

	assert.Equal(t, 3, p.Doc.Find("[data-project-list] [data-filter-item]").Length())
	assert.Equal(t, []string{"pageview /#about"}, p.events(t))
}

func TestStart_ResumeFromHash(t *testing.T) {
	p := start(t, "https://portfolio.example.com/#resume", nil)

	assert.Equal(t, "resume", p.State().Page)
	active := p.Doc.Find("[data-page].active")
	require.Equal(t, 1, active.Length())
	assert.Equal(t, "resume", active.AttrOr("data-page", ""))
	assert.Equal(t, "#resume", p.Win.Location.Hash())
}

func TestStart_LanguageFromQuery(t *testing.T) {
	p := start(t, "https://portfolio.example.com/?lang=ru#portfolio", nil)

	assert.Equal(t, locale.LanguageRussian, p.State().Language)
	assert.Equal(t, "ru", p.Doc.Root().AttrOr("lang", ""))
	assert.Equal(t, "Все", p.Doc.Find("[data-select-value]").Text())
	assert.Equal(t, []string{"pageview /?lang=ru#portfolio"}, p.events(t))
}

func TestFilterScenario(t *testing.T) {
	p := start(t, "https://portfolio.example.com/#portfolio", nil)

	require.NoError(t, p.Click(`[data-filter-btn][data-filter="security"]`))
	assert.Equal(t, 2, p.Filter.Visible())
	require.NoError(t, p.Click(`[data-filter-btn][data-filter="automation"]`))
	assert.Equal(t, 2, p.Filter.Visible())
	require.NoError(t, p.Click(`[data-filter-btn][data-filter="all"]`))
	assert.Equal(t, 3, p.Filter.Visible())
}

func TestLanguageRoundTrip(t *testing.T) {
	p := start(t, "https://portfolio.example.com/#portfolio", nil)
	require.NoError(t, p.Click(`[data-filter-btn][data-filter="security"]`))
	before, err := p.Doc.HTML()
	require.NoError(t, err)

	require.NoError(t, p.Click(`[data-lang-option][data-lang="ru"]`))
	assert.Equal(t, "Безопасность", p.Doc.Find("[data-select-value]").Text())
	assert.Equal(t, 2, p.Filter.Visible(), "filter survives the re-render")
	assert.Equal(t, "/?lang=ru#portfolio", p.Win.Location.Path())

	require.NoError(t, p.Click(`[data-lang-option][data-lang="en"]`))
	after, err := p.Doc.HTML()
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Equal(t, "/#portfolio", p.Win.Location.Path())
	assert.Equal(t, 1, p.fetcher.calls[app.DefaultProjectsPath], "re-render reuses fetched projects")
	assert.Equal(t, []string{
		"pageview /#portfolio",
		"pageview /?lang=ru#portfolio",
		"pageview /#portfolio",
	}, p.events(t))
}

func TestPageViews_NoOpLanguageSwitch(t *testing.T) {
	p := start(t, "https://portfolio.example.com/#about", nil)

	require.NoError(t, p.Click(`[data-lang-option][data-lang="en"]`))
	require.NoError(t, p.Click(`[data-nav-link][data-target="about"]`))
	assert.Len(t, p.rec.URLs(), 1)

	require.NoError(t, p.Click(`[data-nav-link][data-target="resume"]`))
	assert.Equal(t, []string{"pageview /#about", "pageview /#resume"}, p.events(t))
}

func TestOptOut_NoBeacons(t *testing.T) {
	p := start(t, "https://portfolio.example.com/", func(w *browser.Window) {
		require.NoError(t, w.Storage.Set(analytics.OptOutKey, "1"))
	})

	require.NoError(t, p.Click(`[data-nav-link][data-target="resume"]`))
	require.NoError(t, p.Click(`[data-lang-option][data-lang="fa"]`))
	require.NoError(t, p.Click(`a[data-track-event="resume_download"]`))
	p.Reject("late failure")

	assert.Equal(t, "resume", p.State().Page)
	assert.Empty(t, p.rec.URLs())
}

func TestEffects_LoadOnIdle(t *testing.T) {
	p := start(t, "https://portfolio.example.com/", nil)
	assert.Zero(t, p.Doc.Find(".effects-terminal-wrap").Length())

	assert.Equal(t, 1, p.RunIdle())
	assert.Equal(t, prefs.Loaded, p.State().Effects)
	assert.Equal(t, "true", p.Doc.Find(".effects-terminal-wrap").AttrOr("data-animate", ""))

	require.NoError(t, p.Check("[data-motion-toggle]", true))
	assert.True(t, p.State().Settings.ReducedMotion)
	assert.Equal(t, "false", p.Doc.Find(".effects-terminal-wrap").AttrOr("data-animate", ""))
	stored, _ := p.Win.Storage.Get(prefs.KeyReducedMotion)
	assert.Equal(t, "1", stored)

	require.NoError(t, p.Click(".avatar-box"))
	assert.Equal(t, 1, p.Doc.Find(".egg-overlay.is-open").Length())
	require.NoError(t, p.Key(".avatar-box", "Escape"))
	assert.Zero(t, p.Doc.Find(".egg-overlay.is-open").Length())
}

func TestEffects_SkippedForReducedMotion(t *testing.T) {
	p := start(t, "https://portfolio.example.com/", func(w *browser.Window) {
		w.ReducedMotion.Set(true)
	})

	assert.Zero(t, p.RunIdle())
	assert.Equal(t, prefs.NotLoaded, p.State().Effects)

	p.Win.ReducedMotion.Set(false)
	assert.Equal(t, 1, p.RunIdle())
	assert.Equal(t, prefs.Loaded, p.State().Effects)
}

func TestContactHandoff(t *testing.T) {
	p := start(t, "https://portfolio.example.com/#about", nil)

	require.NoError(t, p.Input(`[name="fullname"]`, "Ada"))
	require.NoError(t, p.Input(`[name="email"]`, "ada@example.com"))
	require.NoError(t, p.Input(`[name="message"]`, "Hello"))
	require.NoError(t, p.Submit("form[data-contact-form]"))

	require.Len(t, p.Win.Navigations(), 1)
	assert.Contains(t, p.Win.Navigations()[0], "mailto:hello@kamranboroomand.ir?subject=Portfolio%20inquiry%20from%20Ada")
}

func TestDispatch_PanicBecomesClientError(t *testing.T) {
	p := start(t, "https://portfolio.example.com/", nil)
	p.Doc.On(p.Doc.Find(".avatar-box"), "click", func(*dom.Event) { panic("boom") })

	assert.NotPanics(t, func() { require.NoError(t, p.Click(".avatar-box")) })

	got := p.events(t)
	require.Len(t, got, 2)
	assert.Equal(t, "client_error /#about", got[1])
	assert.ErrorIs(t, p.Click("#missing"), perrors.ErrElementNotFound)
}

func TestCatalogFailure_ShowsErrorCard(t *testing.T) {
	doc, err := app.Open(web.Site(), "index.html")
	require.NoError(t, err)
	win, err := browser.NewWindow("https://portfolio.example.com/?lang=ru")
	require.NoError(t, err)
	c := app.New(doc, win, app.Options{Fetcher: fetch.NewFS(web.Site()), ProjectsPath: "data/missing.json"})

	c.Start(context.Background())

	assert.Error(t, c.State().CatalogErr)
	card := doc.Find("[data-project-list] .project-error")
	require.Equal(t, 1, card.Length())
	assert.Contains(t, card.Text(), "недоступны")
	assert.False(t, c.State().Analytics, "no beacon transport configured")
}
