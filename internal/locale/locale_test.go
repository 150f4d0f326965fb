package locale_test

import (
	"context"
	"errors"
	"testing"

	"portfolio/internal/browser"
	"portfolio/internal/dom"
	"portfolio/internal/events"
	"portfolio/internal/locale"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html><html lang="en"><head><title data-i18n="meta.title">Portfolio</title></head><body>
<h1 data-i18n="about.title">About me</h1>
<p data-i18n="about.missing">Markup text</p>
<input data-test="input" data-i18n-attr="placeholder:contact.name; aria-label:contact.name;broken;:empty;title:">
<button data-lang-option data-lang="en">EN</button>
<button data-lang-option data-lang="ru">RU</button>
<button data-lang-option data-lang="fa">FA</button>
</body></html>`

const translations = `{
  "en": {"meta.title": "Portfolio", "about.title": "About me", "contact.name": "Full name", "count": 3},
  "ru": {"meta.title": "Портфолио", "about.title": "Обо мне"},
  "fa": {"about.title": "درباره من"},
  "de": {"about.title": "Über mich"}
}`

type stubFetcher struct {
	data  []byte
	err   error
	calls int
}

func (s *stubFetcher) Fetch(context.Context, string) ([]byte, error) {
	s.calls++
	return s.data, s.err
}

func newStore(t *testing.T, rawURL string, f *stubFetcher) (*locale.Store, *dom.Document, *browser.Window, *events.Bus) {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	win, err := browser.NewWindow(rawURL)
	require.NoError(t, err)
	bus := events.NewBus()
	return locale.NewStore(doc, win, bus, f, "data/translations.json", nil), doc, win, bus
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  locale.Language
		ok    bool
	}{
		{"en", locale.LanguageEnglish, true},
		{"RU", locale.LanguageRussian, true},
		{"ru-RU", locale.LanguageRussian, true},
		{"fa-IR", locale.LanguagePersian, true},
		{"de", "", false},
		{"", "", false},
		{"not a tag", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := locale.Normalize(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, locale.Default, locale.NormalizeOrDefault("klingon"))
}

func TestDecodeTable(t *testing.T) {
	table, err := locale.DecodeTable([]byte(translations))
	require.NoError(t, err)

	assert.Len(t, table, 3, "unsupported locales are dropped")
	assert.Equal(t, "3", table[locale.LanguageEnglish]["count"])

	_, err = locale.DecodeTable([]byte(`{"en": [`))
	assert.Error(t, err)
}

func TestResolve_FallsBackToDefault(t *testing.T) {
	table, err := locale.DecodeTable([]byte(translations))
	require.NoError(t, err)

	for _, lang := range locale.Supported {
		for key, want := range table[locale.Default] {
			got := table.Resolve(lang, key)
			if _, own := table[lang][key]; own {
				continue
			}
			assert.Equal(t, want, got, "lang=%s key=%s", lang, key)
		}
	}
	assert.Equal(t, "Обо мне", table.Resolve(locale.LanguageRussian, "about.title"))
	assert.Equal(t, "", table.Resolve(locale.LanguageRussian, "nope"))
	assert.Equal(t, "", locale.EmptyTable().Resolve(locale.LanguagePersian, "about.title"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Project 2", locale.Format("Project {index}", map[string]string{"index": "2"}))
	assert.Equal(t, "Preview of {title}", locale.Format("Preview of {title}", nil))
}

func TestParseAttrBindings_SkipsMalformed(t *testing.T) {
	got := locale.ParseAttrBindings("placeholder:contact.name; aria-label:contact.name;broken;:empty;title:")
	assert.Equal(t, []locale.AttrBinding{
		{Attr: "placeholder", Key: "contact.name"},
		{Attr: "aria-label", Key: "contact.name"},
	}, got)
}

func TestLoad_FailureFallsBackToEmptyDefault(t *testing.T) {
	f := &stubFetcher{err: errors.New("offline")}
	store, _, _, _ := newStore(t, "https://example.com/", f)

	store.Load(context.Background())
	store.Load(context.Background())

	assert.Equal(t, 1, f.calls, "translations are fetched once")
	assert.Equal(t, "", store.T("about.title"))
}

func TestLoad_MalformedJSON(t *testing.T) {
	store, _, _, _ := newStore(t, "https://example.com/", &stubFetcher{data: []byte("<html>")})

	assert.NotPanics(t, func() { store.Load(context.Background()) })
	assert.Equal(t, "", store.Resolve(locale.LanguageRussian, "about.title"))
}

func TestInitialLanguage_Priority(t *testing.T) {
	f := &stubFetcher{data: []byte(translations)}

	store, _, win, _ := newStore(t, "https://example.com/?lang=fa", f)
	require.NoError(t, win.Storage.Set(locale.StorageKey, "ru"))
	assert.Equal(t, locale.LanguagePersian, store.InitialLanguage())

	store, _, win, _ = newStore(t, "https://example.com/?lang=xx", f)
	require.NoError(t, win.Storage.Set(locale.StorageKey, "ru"))
	assert.Equal(t, locale.LanguageRussian, store.InitialLanguage())

	store, _, win, _ = newStore(t, "https://example.com/", f)
	require.NoError(t, win.Storage.Set(locale.StorageKey, "garbage"))
	assert.Equal(t, locale.LanguageEnglish, store.InitialLanguage())
}

func TestApplyLanguage_FullSequence(t *testing.T) {
	store, doc, win, bus := newStore(t, "https://example.com/#about", &stubFetcher{data: []byte(translations)})
	store.Load(context.Background())

	var changes []events.LanguageChange
	bus.Language.Subscribe(func(c events.LanguageChange) { changes = append(changes, c) })

	got := store.ApplyLanguage("fa", locale.ApplyOptions{Persist: true, UpdateURL: true, ReRender: true})

	assert.Equal(t, locale.LanguagePersian, got)
	assert.Equal(t, "fa", doc.Root().AttrOr("lang", ""))
	assert.Equal(t, "rtl", doc.Root().AttrOr("dir", ""))
	assert.Equal(t, "درباره من", doc.Find("h1").Text())
	assert.Equal(t, "Markup text", doc.Find("p").Text(), "missing keys keep markup")
	assert.Equal(t, "Full name", doc.Find("[data-test=input]").AttrOr("placeholder", ""))
	assert.Equal(t, "/?lang=fa#about", win.Location.Path())
	stored, _ := win.Storage.Get(locale.StorageKey)
	assert.Equal(t, "fa", stored)
	assert.Equal(t, "true", doc.Find(`[data-lang="fa"]`).AttrOr("aria-pressed", ""))
	require.Len(t, changes, 1)
	assert.True(t, changes[0].ReRender)
}

func TestApplyLanguage_RoundTripRestoresDocument(t *testing.T) {
	store, doc, win, _ := newStore(t, "https://example.com/#resume", &stubFetcher{data: []byte(translations)})
	store.Load(context.Background())
	store.ApplyLanguage("en", locale.ApplyOptions{UpdateURL: true})
	before, err := doc.HTML()
	require.NoError(t, err)

	store.ApplyLanguage("ru", locale.ApplyOptions{UpdateURL: true})
	assert.Equal(t, "/?lang=ru#resume", win.Location.Path())
	store.ApplyLanguage("en", locale.ApplyOptions{UpdateURL: true})

	after, err := doc.HTML()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, "/#resume", win.Location.Path(), "default language removes the query parameter")
}

func TestApplyLanguage_IdempotentAndCoercing(t *testing.T) {
	store, _, win, bus := newStore(t, "https://example.com/", &stubFetcher{data: []byte(translations)})
	store.Load(context.Background())
	count := 0
	bus.Language.Subscribe(func(events.LanguageChange) { count++ })

	store.ApplyLanguage("ru", locale.ApplyOptions{UpdateURL: true})
	replacements := win.Location.Replacements()
	store.ApplyLanguage("ru", locale.ApplyOptions{UpdateURL: true})

	assert.Equal(t, 1, count)
	assert.Equal(t, replacements, win.Location.Replacements())

	assert.Equal(t, locale.LanguageEnglish, store.ApplyLanguage("zz", locale.ApplyOptions{}))
	assert.Equal(t, 2, count)
}

func TestBindSwitcher(t *testing.T) {
	store, doc, win, _ := newStore(t, "https://example.com/", &stubFetcher{data: []byte(translations)})
	store.Load(context.Background())
	store.ApplyLanguage(string(store.InitialLanguage()), locale.ApplyOptions{})
	store.BindSwitcher()

	doc.Dispatch(doc.Find(`[data-lang="ru"]`).Get(0), "click")

	assert.Equal(t, locale.LanguageRussian, store.Current())
	assert.Equal(t, "Портфолио", doc.Find("title").Text())
	stored, _ := win.Storage.Get(locale.StorageKey)
	assert.Equal(t, "ru", stored)
}
