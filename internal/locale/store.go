package locale

import (
	"context"
	"strings"

	"portfolio/internal/browser"
	"portfolio/internal/dom"
	"portfolio/internal/events"
	"portfolio/internal/fetch"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

const (
	// StorageKey persists the selected language.
	StorageKey = "portfolio-lang"
	// QueryParam carries a non-default language in the URL.
	QueryParam = "lang"
)

// Translator is the read side of the Store other components depend on.
type Translator interface {
	Current() Language
	Resolve(lang Language, key string) string
}

// ApplyOptions controls the side effects of ApplyLanguage.
type ApplyOptions struct {
	Persist   bool
	UpdateURL bool
	ReRender  bool
}

// Store owns the translation table and the current language.
type Store struct {
	doc     *dom.Document
	win     *browser.Window
	bus     *events.Bus
	fetcher fetch.Fetcher
	source  string
	log     zerolog.Logger

	table   Table
	loaded  bool
	current Language
	applied bool
}

func NewStore(doc *dom.Document, win *browser.Window, bus *events.Bus, fetcher fetch.Fetcher, source string, log *zerolog.Logger) *Store {
	l := zerolog.Nop()
	if log != nil {
		l = log.With().Str("component", "locale").Logger()
	}
	return &Store{
		doc:     doc,
		win:     win,
		bus:     bus,
		fetcher: fetcher,
		source:  source,
		log:     l,
		table:   EmptyTable(),
		current: Default,
	}
}

// Load fetches the translation resource once. Failures leave an empty
// Default table in place; they are logged, never returned.
func (s *Store) Load(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true
	if s.fetcher == nil || s.source == "" {
		s.log.Warn().Msg("no translations source configured")
		return
	}
	data, err := s.fetcher.Fetch(ctx, s.source)
	if err != nil {
		s.log.Warn().Err(err).Str("source", s.source).Msg("translations unavailable, using defaults")
		return
	}
	table, err := DecodeTable(data)
	if err != nil {
		s.log.Warn().Err(err).Str("source", s.source).Msg("translations malformed, using defaults")
		return
	}
	s.table = table
	s.log.Debug().Int("languages", len(table)).Msg("translations loaded")
}

// SetTable replaces the table wholesale.
func (s *Store) SetTable(t Table) {
	if t == nil {
		t = EmptyTable()
	}
	if _, ok := t[Default]; !ok {
		t[Default] = map[string]string{}
	}
	s.table = t
	s.loaded = true
}

func (s *Store) Current() Language { return s.current }

func (s *Store) Resolve(lang Language, key string) string { return s.table.Resolve(lang, key) }

// T resolves key in the current language.
func (s *Store) T(key string) string { return s.table.Resolve(s.current, key) }

// InitialLanguage picks the query parameter, then storage, then Default.
func (s *Store) InitialLanguage() Language {
	if l, ok := Normalize(s.win.Location.Query(QueryParam)); ok {
		return l
	}
	if s.win.Storage != nil {
		if stored, ok := s.win.Storage.Get(StorageKey); ok {
			if l, ok := Normalize(stored); ok {
				return l
			}
		}
	}
	return Default
}

// ApplyLanguage makes code the active language. Unsupported codes coerce to
// Default. Applying the same language twice leaves the document unchanged
// and does not broadcast again.
func (s *Store) ApplyLanguage(code string, opts ApplyOptions) Language {
	next := NormalizeOrDefault(code)
	previous := s.current
	changed := !s.applied || next != previous
	s.current = next
	s.applied = true

	root := s.doc.Root()
	root.SetAttr("lang", string(next))
	root.SetAttr("dir", Direction(next))

	s.ApplyBindings()
	s.markSwitcher()

	if opts.Persist && s.win.Storage != nil {
		if err := s.win.Storage.Set(StorageKey, string(next)); err != nil {
			s.log.Debug().Err(err).Msg("language not persisted")
		}
	}
	if opts.UpdateURL {
		s.syncURL(next)
	}
	if changed {
		s.bus.Language.Publish(events.LanguageChange{
			Language: string(next),
			Previous: string(previous),
			ReRender: opts.ReRender,
		})
	}
	return next
}

func (s *Store) syncURL(l Language) {
	want := ""
	if l != Default {
		want = string(l)
	}
	if s.win.Location.Query(QueryParam) == want {
		return
	}
	s.win.Location.SetQueryParam(QueryParam, want)
}

// ApplyBindings re-applies every data-i18n and data-i18n-attr binding.
// Keys with no translation keep the markup text.
func (s *Store) ApplyBindings() {
	s.doc.Find("[data-i18n]").Each(func(_ int, el *goquery.Selection) {
		key := strings.TrimSpace(dom.Data(el, "i18n"))
		if key == "" {
			return
		}
		if text := s.T(key); text != "" {
			el.SetText(text)
		}
	})
	s.doc.Find("[data-i18n-attr]").Each(func(_ int, el *goquery.Selection) {
		for _, b := range ParseAttrBindings(dom.Data(el, "i18n-attr")) {
			if text := s.T(b.Key); text != "" {
				el.SetAttr(b.Attr, text)
			}
		}
	})
}

// AttrBinding is one attribute:key pair.
type AttrBinding struct {
	Attr string
	Key  string
}

// ParseAttrBindings parses "attr:key;attr:key". Malformed pairs are skipped.
func ParseAttrBindings(raw string) []AttrBinding {
	var out []AttrBinding
	for _, pair := range strings.Split(raw, ";") {
		name, key, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		key = strings.TrimSpace(key)
		if name == "" || key == "" {
			continue
		}
		out = append(out, AttrBinding{Attr: name, Key: key})
	}
	return out
}

// BindSwitcher wires [data-lang-option] controls.
func (s *Store) BindSwitcher() {
	options := s.doc.Find("[data-lang-option]")
	s.doc.On(options, "click", func(ev *dom.Event) {
		code := dom.Data(s.doc.Wrap(ev.CurrentTarget()), "lang")
		s.ApplyLanguage(code, ApplyOptions{Persist: true, UpdateURL: true, ReRender: true})
	})
}

func (s *Store) markSwitcher() {
	s.doc.Find("[data-lang-option]").Each(func(_ int, el *goquery.Selection) {
		active := Language(dom.Data(el, "lang")) == s.current
		dom.ToggleClass(el, "active", active)
		dom.SetBool(el, "aria-pressed", active)
	})
}
