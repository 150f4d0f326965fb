// Package app owns the page lifecycle: it builds every component around one
// document and window, runs the startup sequence and dispatches host events.
package app

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"portfolio/internal/analytics"
	"portfolio/internal/browser"
	"portfolio/internal/catalog"
	"portfolio/internal/contact"
	"portfolio/internal/dom"
	"portfolio/internal/effects"
	"portfolio/internal/events"
	"portfolio/internal/fetch"
	"portfolio/internal/filter"
	"portfolio/internal/locale"
	"portfolio/internal/prefs"
	"portfolio/internal/tabs"

	"github.com/rs/zerolog"
)

const (
	DefaultTranslationsPath = "data/translations.json"
	DefaultProjectsPath     = "data/projects.json"
)

type Options struct {
	Fetcher          fetch.Fetcher
	TranslationsPath string
	ProjectsPath     string
	Beacon           analytics.Beacon
	Logger           *zerolog.Logger
	Clock            func() time.Time
}

// State is a snapshot of the values the components share.
type State struct {
	Language   locale.Language
	Page       string
	Filter     string
	Projects   int
	CatalogErr error
	Settings   events.Settings
	Effects    prefs.LoaderState
	Analytics  bool
	Loaded     bool
}

// Controller must be driven from a single goroutine.
type Controller struct {
	Doc *dom.Document
	Win *browser.Window
	Bus *events.Bus

	Locale    *locale.Store
	Prefs     *prefs.Store
	Tabs      *tabs.Navigator
	Catalog   *catalog.Renderer
	Filter    *filter.Controller
	Contact   *contact.Form
	Analytics *analytics.Pipeline

	log     zerolog.Logger
	started bool
}

// Open parses a page of the site.
func Open(fsys fs.FS, page string) (*dom.Document, error) {
	f, err := fsys.Open(page)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", page, err)
	}
	defer f.Close()
	return dom.Parse(f)
}

func New(doc *dom.Document, win *browser.Window, opts Options) *Controller {
	if opts.TranslationsPath == "" {
		opts.TranslationsPath = DefaultTranslationsPath
	}
	if opts.ProjectsPath == "" {
		opts.ProjectsPath = DefaultProjectsPath
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	c := &Controller{Doc: doc, Win: win, Bus: events.NewBus(), log: log.With().Str("component", "app").Logger()}
	c.Locale = locale.NewStore(doc, win, c.Bus, opts.Fetcher, opts.TranslationsPath, &log)
	c.Prefs = prefs.NewStore(win, c.Bus, func() (prefs.Widget, error) {
		w, err := effects.Load(doc)
		if err != nil {
			return nil, err
		}
		return w, nil
	}, &log)
	c.Tabs = tabs.New(doc, win, c.Bus)
	c.Catalog = catalog.NewRenderer(doc, opts.Fetcher, opts.ProjectsPath, c.Locale, &log)
	c.Filter = filter.New(doc, c.Locale)
	c.Contact = contact.New(doc, win, c.Locale, &log)
	c.Analytics = analytics.New(doc, win, analytics.Config{Beacon: opts.Beacon, Now: opts.Clock, Logger: &log})

	c.Bus.Language.Subscribe(c.onLanguage)
	return c
}

// Start runs the page-ready sequence once.
func (c *Controller) Start(ctx context.Context) {
	if c.started {
		return
	}
	c.started = true

	c.Locale.Load(ctx)
	c.Locale.ApplyLanguage(string(c.Locale.InitialLanguage()), locale.ApplyOptions{UpdateURL: true})
	c.Locale.BindSwitcher()

	c.Prefs.Bind(c.Doc)
	c.Prefs.Publish(c.Prefs.Read())

	c.Tabs.Init()

	if err := c.Catalog.Load(ctx); err != nil {
		c.log.Warn().Err(err).Msg("rendering project error card")
	}
	c.Catalog.Render(c.Locale.Current())

	c.Filter.Bind()
	c.Filter.Apply(c.Filter.Active())
	c.Contact.Bind()

	c.Analytics.Start(c.Bus)
	c.Doc.Body().AddClass("is-loaded")
	c.log.Debug().
		Str("lang", string(c.Locale.Current())).
		Str("page", c.Tabs.Active()).
		Bool("analytics", c.Analytics.Enabled()).
		Msg("page ready")
}

func (c *Controller) onLanguage(ev events.LanguageChange) {
	if !ev.ReRender || !c.started {
		return
	}
	c.Catalog.Render(locale.Language(ev.Language))
	c.Filter.Apply(c.Filter.Active())
}

// State snapshots the shared values.
func (c *Controller) State() State {
	return State{
		Language:   c.Locale.Current(),
		Page:       c.Tabs.Active(),
		Filter:     c.Filter.Active(),
		Projects:   len(c.Catalog.Projects()),
		CatalogErr: c.Catalog.Err(),
		Settings:   c.Prefs.Current(),
		Effects:    c.Prefs.State(),
		Analytics:  c.Analytics.Enabled(),
		Loaded:     c.Doc.Body().HasClass("is-loaded"),
	}
}

// RunIdle drains the idle queue, which is where the effects widget loads.
func (c *Controller) RunIdle() int {
	n := 0
	c.guard("idle", func() { n = c.Win.RunIdle() })
	return n
}
