package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/tabrelay"
	"github.com/fwojciec/tabrelay/goquery"
	"github.com/fwojciec/tabrelay/lookup"
	"github.com/fwojciec/tabrelay/rod"
	relayslog "github.com/fwojciec/tabrelay/slog"
	"github.com/fwojciec/tabrelay/websocket"
	gorod "github.com/go-rod/rod"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Run starts the browser sessions and serves clients until ctx is done.
func (c *ServeCmd) Run(deps *Dependencies) error {
	logger, err := c.logger(deps)
	if err != nil {
		return err
	}
	if c.LookupTimeout <= 0 {
		return fmt.Errorf("lookup timeout must be positive, got %s", c.LookupTimeout)
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one search category is required")
	}

	ctx := deps.Ctx
	site := tabrelay.NewSite(c.Site)

	bm, err := rod.NewBrowserManager(rod.WithHeadless(c.Headless), rod.WithBrowserBin(c.BrowserBin))
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer bm.Close()

	sessions, err := openSessions(ctx, bm, site)
	if err != nil {
		return err
	}

	typeahead, err := rod.NewTypeahead(ctx, sessions.suggestion, site.InputSelector(), site.SuggestionPrefix(),
		rod.WithKeystrokeDelay(c.KeystrokeDelay))
	if err != nil {
		return fmt.Errorf("failed to attach to search input: %w", err)
	}
	defer typeahead.Close()

	search := relayslog.NewLoggingExtractor(
		rod.NewSearchSession(sessions.search, site, goquery.NewSearchParser(c.Categories...)),
		tabrelay.KindSearch, logger)
	documents := relayslog.NewLoggingExtractor(
		rod.NewDocumentSession(sessions.document, goquery.NewDocumentParser(),
			rod.WithReadySelector(goquery.DocumentSelector, rod.DefaultReadyTimeout)),
		tabrelay.KindDocument, logger)

	cache := lookup.NewCache()
	ledger := lookup.NewLedger(cache, logger)
	correlator := lookup.NewCorrelator(ledger, logger)
	orchestrator := lookup.NewOrchestrator(ledger, cache, search, documents,
		relayslog.NewLoggingTypeahead(typeahead, logger),
		lookup.WithTimeout(c.LookupTimeout),
		lookup.WithLogger(logger),
		lookup.WithValidator(func(kind tabrelay.LookupKind, query string) error {
			if kind == tabrelay.KindDocument {
				return site.ValidateDocumentURL(query)
			}
			return nil
		}),
	)
	defer orchestrator.Close()

	srv := &http.Server{
		Addr:              c.Addr,
		Handler:           NewHandler(websocket.NewServer(orchestrator, websocket.WithLogger(logger)), orchestrator.Stats),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := correlator.Run(gctx, typeahead.Events()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("listening", "addr", c.Addr, "site", site.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving %s: %w", c.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func (c *ServeCmd) logger(deps *Dependencies) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return slog.New(slog.NewTextHandler(deps.Stderr, &slog.HandlerOptions{Level: level})), nil
}

type pages struct {
	suggestion *gorod.Page
	search     *gorod.Page
	document   *gorod.Page
}

// openSessions loads one page per lookup kind in parallel.
func openSessions(ctx context.Context, bm *rod.BrowserManager, site tabrelay.Site) (*pages, error) {
	var p pages
	g, gctx := errgroup.WithContext(ctx)
	for _, slot := range []**gorod.Page{&p.suggestion, &p.search, &p.document} {
		g.Go(func() error {
			page, err := bm.OpenPage(gctx, site.BaseURL)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", site.BaseURL, err)
			}
			*slot = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &p, nil
}
