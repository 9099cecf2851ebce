package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/wumbolauncher/wumbo/internal/config"
	"github.com/wumbolauncher/wumbo/internal/loader"
	"github.com/wumbolauncher/wumbo/internal/logging"
	"github.com/wumbolauncher/wumbo/internal/metrics"
	"github.com/wumbolauncher/wumbo/internal/querycache"
)

type listItem struct {
	Position  int      `json:"position"`
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Developer string   `json:"developer,omitempty"`
	Publisher string   `json:"publisher,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

var errLimitReached = errors.New("limit reached")

func handleList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	cf := addCommonFlags(fs)
	library := fs.String("library", "", "library to list (default: loader.default_library)")
	search := fs.String("search", "", "only titles containing this text")
	sortBy := fs.String("sort", "", "sort by title|developer|publisher once loaded")
	desc := fs.Bool("desc", false, "reverse the --sort order")
	limit := fs.Int("limit", 0, "stop after N entries (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c, log, err := cf.load()
	if err != nil {
		return err
	}
	lib := *library
	if lib == "" {
		lib = c.Loader.DefaultLibrary
	}
	if !config.IsLibrary(lib) {
		return fmt.Errorf("unknown library %q (want one of %v)", lib, config.Libraries)
	}
	sorted := *sortBy != "" || *desc
	col, ok := querycache.ParseColumn(*sortBy)
	if !ok {
		return fmt.Errorf("unknown sort column %q", *sortBy)
	}
	dir := querycache.Ascending
	if *desc {
		dir = querycache.Descending
	}

	db, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	set, _, err := loadFilters(c, log)
	if err != nil {
		return err
	}
	m := metrics.New(c)
	defer func() {
		if err := m.Write(); err != nil {
			log.Warnf("metrics: %v", err)
		}
	}()

	cache := querycache.New()
	l := loader.New(cache, db, loader.Options{PageSize: c.Loader.PageSize, Filter: set, Log: log, Metrics: m})
	q := loader.Query{Library: lib, Search: *search}
	log.Debugf("list: library=%s search=%q", lib, logging.SanitizeText(*search))

	emit := newEmitter(*cf.jsonOut)
	var res loader.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		res, err = l.Reload(gctx, q)
		return err
	})
	g.Go(func() error {
		if sorted {
			if err := waitComplete(gctx, cache); err != nil {
				return err
			}
			if cache.Err() != nil {
				return nil // the loader reports it
			}
			if err := querycache.NewSorter(cache).Sort(col, dir); err != nil {
				return err
			}
		}
		return drain(gctx, querycache.NewProvider(cache), *limit, emit)
	})
	err = g.Wait()
	if errors.Is(err, errLimitReached) {
		return nil
	}
	if err != nil {
		return err
	}
	log.Infof("%s entries (%s filtered) in %s", humanize.Comma(int64(res.Size)), humanize.Comma(int64(res.Excluded)), res.Elapsed.Round(time.Millisecond))
	return nil
}

// drain reads rows in position order, waiting on the loader as needed.
func drain(ctx context.Context, p *querycache.Provider, limit int, emit func(querycache.Row) error) error {
	for pos := 0; ; pos++ {
		if limit > 0 && pos >= limit {
			return errLimitReached
		}
		row, err := p.Get(ctx, pos)
		if errors.Is(err, querycache.ErrEndOfResults) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := emit(row); err != nil {
			return err
		}
	}
}

func waitComplete(ctx context.Context, cache *querycache.Cache) error {
	for {
		ch := cache.Changed()
		if cache.Complete() {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func newEmitter(jsonOut bool) func(querycache.Row) error {
	if jsonOut {
		enc := json.NewEncoder(stdout)
		return func(r querycache.Row) error {
			return enc.Encode(listItem{Position: r.Position, ID: r.ID, Title: r.Title, Developer: r.Developer, Publisher: r.Publisher, Tags: r.Tags})
		}
	}
	return func(r querycache.Row) error {
		_, err := fmt.Fprintf(stdout, "%s\t%s\t%s\t%s\n", r.Title, r.Developer, r.Publisher, r.ID)
		return err
	}
}
