// Package loader streams catalog pages into a query cache on a background
// goroutine. Each Start begins a new cycle and abandons the previous one.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/wumbolauncher/wumbo/internal/config"
	"github.com/wumbolauncher/wumbo/internal/logging"
	"github.com/wumbolauncher/wumbo/internal/metrics"
	"github.com/wumbolauncher/wumbo/internal/querycache"
	"github.com/wumbolauncher/wumbo/internal/state"
)

// ErrSuperseded is returned by a cycle that a newer Start replaced.
var ErrSuperseded = errors.New("reload superseded")

// PageFetcher is the keyset-paginated source; *state.DB implements it.
type PageFetcher interface {
	FetchPage(ctx context.Context, q state.PageQuery) ([]state.RawRow, error)
}

// TagFilter decides which rows never reach the cache.
type TagFilter interface {
	IsExcluded(tags []string) bool
}

type noFilter struct{}

func (noFilter) IsExcluded([]string) bool { return false }

// Query selects what a cycle loads.
type Query struct {
	Library string
	Search  string
}

type State int

const (
	Idle State = iota
	Loading
)

func (s State) String() string {
	if s == Loading {
		return "loading"
	}
	return "idle"
}

// Result summarizes one finished cycle.
type Result struct {
	Generation uint64
	Size       int
	Pages      int
	Admitted   int
	Excluded   int
	Elapsed    time.Duration
}

// Cycle is a handle on one Start.
type Cycle struct {
	Generation uint64
	Query      Query

	done chan struct{}
	res  Result
	err  error
}

// Done is closed once the cycle stopped, successfully or not.
func (c *Cycle) Done() <-chan struct{} { return c.done }

// Wait blocks until the cycle stops or ctx ends.
func (c *Cycle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-c.done:
		return c.res, c.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

type Options struct {
	PageSize int
	Filter   TagFilter
	Log      *logging.Logger
	Metrics  *metrics.Manager
}

type Loader struct {
	cache    *querycache.Cache
	fetch    PageFetcher
	pageSize int
	log      *logging.Logger
	metrics  *metrics.Manager

	run sync.Mutex // held by the running cycle

	mu      sync.Mutex
	filter  TagFilter
	cancel  context.CancelFunc
	current *Cycle
}

func New(cache *querycache.Cache, fetch PageFetcher, opts Options) *Loader {
	l := &Loader{
		cache:    cache,
		fetch:    fetch,
		pageSize: opts.PageSize,
		log:      opts.Log,
		metrics:  opts.Metrics,
		filter:   opts.Filter,
	}
	if l.pageSize <= 0 {
		l.pageSize = config.DefaultPageSize
	}
	if l.filter == nil {
		l.filter = noFilter{}
	}
	if l.log == nil {
		l.log = logging.Discard()
	}
	return l
}

// SetFilter replaces the tag filter. Running cycles keep the one they started with.
func (l *Loader) SetFilter(f TagFilter) {
	if f == nil {
		f = noFilter{}
	}
	l.mu.Lock()
	l.filter = f
	l.mu.Unlock()
}

// State reports Loading while the latest cycle is running.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return Idle
	}
	select {
	case <-l.current.done:
		return Idle
	default:
		return Loading
	}
}

// Start cancels any running cycle, empties the cache and loads q in the background.
func (l *Loader) Start(q Query) *Cycle {
	return l.start(context.Background(), q)
}

// Reload runs a cycle and waits for it. Cancelling ctx aborts the cycle.
func (l *Loader) Reload(ctx context.Context, q Query) (Result, error) {
	c := l.start(ctx, q)
	<-c.done
	return c.res, c.err
}

// Stop cancels the running cycle, if any, and waits for it to exit.
func (l *Loader) Stop() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	c := l.current
	l.mu.Unlock()
	if c != nil {
		<-c.done
	}
}

func (l *Loader) start(parent context.Context, q Query) *Cycle {
	l.mu.Lock()
	// Reset first so the old cycle sees a stale generation by the time it
	// notices the cancellation.
	c := &Cycle{Generation: l.cache.Reset(), Query: q, done: make(chan struct{})}
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	filter := l.filter
	l.cancel = cancel
	l.current = c
	l.mu.Unlock()

	go func() {
		defer close(c.done)
		defer cancel()
		l.run.Lock()
		defer l.run.Unlock()
		c.res, c.err = l.cycle(ctx, c, filter)
	}()
	return c
}

func (l *Loader) cycle(ctx context.Context, c *Cycle, filter TagFilter) (Result, error) {
	start := time.Now()
	res := Result{Generation: c.Generation}
	l.log.Debugf("reload %d: library=%s search=%q", c.Generation, c.Query.Library, logging.SanitizeText(c.Query.Search))

	var cursor state.Cursor
	for {
		if ctx.Err() != nil {
			return l.fail(ctx, c, res, start, ctx.Err())
		}
		t0 := time.Now()
		page, err := l.fetch.FetchPage(ctx, state.PageQuery{
			Library: c.Query.Library,
			Search:  c.Query.Search,
			After:   cursor,
			Limit:   l.pageSize,
		})
		if err != nil {
			return l.fail(ctx, c, res, start, err)
		}
		l.metrics.ObservePage(time.Since(t0))
		res.Pages++

		admitted, excluded := 0, 0
		for _, raw := range page {
			if filter.IsExcluded(raw.Tags) {
				excluded++
				continue
			}
			row := querycache.Row{
				Title:     raw.Title,
				Developer: raw.Developer,
				Publisher: raw.Publisher,
				Tags:      raw.Tags,
				ID:        raw.ID,
			}
			if _, ok := l.cache.Append(c.Generation, row); !ok {
				return l.fail(ctx, c, res, start, ErrSuperseded)
			}
			admitted++
		}
		res.Admitted += admitted
		res.Excluded += excluded
		l.metrics.AddAdmitted(admitted)
		l.metrics.AddExcluded(excluded)

		if len(page) < l.pageSize {
			break
		}
		// The cursor follows the raw page so excluded rows are not refetched.
		cursor = state.After(page[len(page)-1])
	}

	if !l.cache.Finish(c.Generation, nil) {
		return l.fail(ctx, c, res, start, ErrSuperseded)
	}
	res.Size = res.Admitted
	res.Elapsed = time.Since(start)
	l.metrics.ObserveReload("ok", res.Size, res.Elapsed)
	l.log.Infof("reload %d: %s entries (%s excluded) in %d pages, %s",
		c.Generation, humanize.Comma(int64(res.Size)), humanize.Comma(int64(res.Excluded)), res.Pages, res.Elapsed.Round(time.Millisecond))
	return res, nil
}

// fail ends the cycle with err. If a newer cycle already took over, the
// error becomes ErrSuperseded and the cache is left alone. A cycle whose
// context was cancelled by its caller or by Stop ended on purpose and is
// not reported as a failure.
func (l *Loader) fail(ctx context.Context, c *Cycle, res Result, start time.Time, err error) (Result, error) {
	res.Elapsed = time.Since(start)
	if errors.Is(err, ErrSuperseded) || !l.cache.Finish(c.Generation, err) {
		l.metrics.ObserveReload("superseded", 0, 0)
		l.log.Debugf("reload %d superseded", c.Generation)
		return res, ErrSuperseded
	}
	if ctx.Err() != nil {
		l.metrics.ObserveReload("canceled", 0, 0)
		l.log.Debugf("reload %d canceled after %d pages", c.Generation, res.Pages)
		return res, fmt.Errorf("reload %s: %w", c.Query.Library, ctx.Err())
	}
	l.metrics.ObserveReload("error", 0, 0)
	l.log.Errorf("reload %d failed: %v", c.Generation, err)
	return res, fmt.Errorf("reload %s: %w", c.Query.Library, err)
}
