// Package catalog fetches the project list once and renders localized
// project cards into the document.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"portfolio/internal/dom"
	"portfolio/internal/fetch"
	"portfolio/internal/locale"

	"github.com/rs/zerolog"
)

const listSelector = "[data-project-list]"

// Renderer owns the fetched project list.
type Renderer struct {
	doc     *dom.Document
	fetcher fetch.Fetcher
	source  string
	tr      locale.Translator
	log     zerolog.Logger

	loaded   bool
	projects []Project
	err      error
}

func NewRenderer(doc *dom.Document, fetcher fetch.Fetcher, source string, tr locale.Translator, log *zerolog.Logger) *Renderer {
	l := zerolog.Nop()
	if log != nil {
		l = log.With().Str("component", "catalog").Logger()
	}
	return &Renderer{doc: doc, fetcher: fetcher, source: source, tr: tr, log: l}
}

// Load fetches and decodes the catalog once per lifetime. The returned
// error is also kept for Render, which shows the error card for it.
func (r *Renderer) Load(ctx context.Context) error {
	if r.loaded {
		return r.err
	}
	r.loaded = true
	if r.fetcher == nil || r.source == "" {
		r.err = errors.New("no project source configured")
		return r.err
	}
	data, err := r.fetcher.Fetch(ctx, r.source)
	if err != nil {
		r.err = fmt.Errorf("fetch projects: %w", err)
		r.log.Warn().Err(err).Str("source", r.source).Msg("project catalog unavailable")
		return r.err
	}
	projects, err := Decode(data)
	if err != nil {
		r.err = err
		r.log.Warn().Err(err).Str("source", r.source).Msg("project catalog rejected")
		return r.err
	}
	r.projects = projects
	r.log.Debug().Int("projects", len(projects)).Msg("project catalog loaded")
	return nil
}

// Render rebuilds the list for lang from memory and returns the number of
// project cards. A failed load renders the error card instead.
func (r *Renderer) Render(lang locale.Language) int {
	list := r.doc.Find(listSelector).First()
	if list.Length() == 0 {
		return 0
	}
	children := list.Children()
	r.doc.Forget(children)
	children.Remove()

	if r.err != nil || len(r.projects) == 0 {
		list.AppendNodes(ErrorCard(r.tr.Resolve(lang, "projects.unavailable")))
		return 0
	}
	for i, p := range r.projects {
		list.AppendNodes(Card(Localize(p, i, lang, r.tr), r.tr))
	}
	return len(r.projects)
}

// Projects is the in-memory list.
func (r *Renderer) Projects() []Project { return r.projects }

func (r *Renderer) Err() error { return r.err }
