package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"portfolio/internal/analytics"
	"portfolio/internal/app"
	"portfolio/internal/browser"
	"portfolio/internal/dom"
	"portfolio/internal/fetch"
	"portfolio/internal/logger"
	"portfolio/internal/scenario"
	"portfolio/internal/storage"

	"github.com/spf13/cobra"
)

const defaultVisitURL = "http://localhost:8080/"

type simulateOptions struct {
	URL      string
	SiteDir  string
	Scenario string
	StateDB  string
	LogLevel string
	Remote   bool
	Send     bool
	HTML     bool
}

func simulateCmd() *cobra.Command {
	var opts simulateOptions
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the page lifecycle headlessly and print the beacons it sends",
		Long: `Simulate opens the site at a URL, runs the page startup sequence, replays
an optional YAML scenario of user actions and prints every analytics beacon
followed by the final page state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger.Init(opts.LogLevel)
			logger.SetOutput(cmd.ErrOrStderr())
			return simulate(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.URL, "url", "", "Page URL (default from the scenario, else "+defaultVisitURL+")")
	f.StringVar(&opts.SiteDir, "site", "", "Read the site from this directory instead of the embedded copy")
	f.StringVar(&opts.Scenario, "scenario", "", "YAML scenario file")
	f.StringVar(&opts.StateDB, "state-db", "", "SQLite file that keeps storage across runs")
	f.StringVar(&opts.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	f.BoolVar(&opts.Remote, "remote", false, "Fetch the page and data over HTTP from the URL's origin")
	f.BoolVar(&opts.Send, "send", false, "Deliver beacons to the pixel endpoint as well as printing them")
	f.BoolVar(&opts.HTML, "html", false, "Print the final document")
	return cmd
}

func simulate(ctx context.Context, opts simulateOptions, out io.Writer) error {
	sc := &scenario.Scenario{}
	if opts.Scenario != "" {
		loaded, err := scenario.Load(opts.Scenario)
		if err != nil {
			return err
		}
		sc = loaded
	}
	rawURL := firstNonEmpty(opts.URL, sc.URL, defaultVisitURL)

	win, err := browser.NewWindow(rawURL)
	if err != nil {
		return err
	}
	if opts.StateDB != "" {
		db, err := storage.OpenSQLite(ctx, opts.StateDB)
		if err != nil {
			return err
		}
		defer db.Close()
		win.Storage = db
	}
	if err := sc.Configure(win); err != nil {
		return err
	}

	page, err := pagePath(rawURL)
	if err != nil {
		return err
	}
	doc, fetcher, err := openPage(ctx, opts, win, page)
	if err != nil {
		return err
	}

	rec := &analytics.Recorder{}
	beacons := multiBeacon{rec}
	var sender *analytics.HTTPBeacon
	if opts.Send {
		sender = analytics.NewHTTPBeacon(nil, logger.Get())
		beacons = append(beacons, sender)
	}

	c := app.New(doc, win, app.Options{Fetcher: fetcher, Beacon: beacons, Logger: logger.Get()})
	c.Start(ctx)
	runErr := sc.Run(c)
	if sender != nil {
		sender.Wait()
	}

	for _, u := range rec.URLs() {
		fmt.Fprintf(out, "beacon %s\n", u)
	}
	st := c.State()
	fmt.Fprintf(out, "lang=%s page=%s filter=%s projects=%d effects=%s analytics=%t\n",
		st.Language, st.Page, st.Filter, st.Projects, st.Effects, st.Analytics)
	if st.CatalogErr != nil {
		fmt.Fprintf(out, "catalog_error=%q\n", st.CatalogErr.Error())
	}
	if opts.HTML {
		markup, err := c.Doc.HTML()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, markup)
	}
	return runErr
}

func openPage(ctx context.Context, opts simulateOptions, win *browser.Window, page string) (*dom.Document, fetch.Fetcher, error) {
	if !opts.Remote {
		site := siteFS(opts.SiteDir)
		doc, err := app.Open(site, page)
		return doc, fetch.NewFS(site), err
	}
	remote, err := fetch.NewHTTP(win.Location.Origin()+"/", nil)
	if err != nil {
		return nil, nil, err
	}
	data, err := remote.Fetch(ctx, "/"+page)
	if err != nil {
		return nil, nil, err
	}
	doc, err := dom.Parse(bytes.NewReader(data))
	return doc, remote, err
}

// pagePath maps a URL to the site file it serves.
func pagePath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	p := strings.TrimPrefix(path.Clean("/"+u.Path), "/")
	if p == "" || strings.HasSuffix(u.Path, "/") {
		p = path.Join(p, "index.html")
	}
	return p, nil
}

type multiBeacon []analytics.Beacon

func (m multiBeacon) Send(rawURL string) {
	for _, b := range m {
		b.Send(rawURL)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
