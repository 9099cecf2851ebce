// Package querycache holds the rows of the current load cycle and serves
// them to readers while the cycle is still appending.
//
// Every read that depends on consistency goes through the same mutex as the
// writer. Readers that need a row that has not arrived yet wait on Changed,
// a channel that is closed and replaced on each change.
package querycache

import (
	"fmt"
	"slices"
	"sync"

	friendlyerrors "github.com/wumbolauncher/wumbo/internal/errors"
)

// Row is one admitted catalog entry. Position is dense and zero-based.
type Row struct {
	Title     string
	Developer string
	Publisher string
	Tags      []string
	Position  int
	ID        string
}

// Cache is safe for concurrent use by one writer and any number of readers.
type Cache struct {
	mu       sync.Mutex
	rows     []Row
	gen      uint64
	complete bool
	err      error
	changed  chan struct{}
}

func New() *Cache {
	return &Cache{changed: make(chan struct{})}
}

// broadcast wakes every waiter. Callers hold mu.
func (c *Cache) broadcast() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// Reset empties the cache and starts a new generation. Appends tagged with
// an older generation are dropped from here on.
func (c *Cache) Reset() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = nil
	c.gen++
	c.complete = false
	c.err = nil
	c.broadcast()
	return c.gen
}

// Append admits row at the next position if gen is current.
func (c *Cache) Append(gen uint64, row Row) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.complete {
		return 0, false
	}
	row.Position = len(c.rows)
	c.rows = append(c.rows, row)
	c.broadcast()
	return row.Position, true
}

// Finish marks generation gen complete. A non-nil err empties the cache so
// readers never see a partial result as if it were whole.
func (c *Cache) Finish(gen uint64, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	if err != nil {
		c.rows = nil
	}
	c.complete = true
	c.err = err
	c.broadcast()
	return true
}

// Get returns the row at pos without blocking.
func (c *Cache) Get(pos int) (Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos < 0 || pos >= len(c.rows) {
		return Row{}, false
	}
	return c.rows[pos], true
}

func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rows)
}

func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Complete reports whether the current generation finished loading.
func (c *Cache) Complete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.complete
}

// Err is the terminal error of the current generation, if it failed.
func (c *Cache) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Snapshot copies the rows. Tag slices are shared; rows are never mutated
// after admission.
func (c *Cache) Snapshot() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Row, len(c.rows))
	copy(out, c.rows)
	return out
}

// Changed returns a channel that is closed on the next change.
func (c *Cache) Changed() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

// view is what a waiting reader needs, taken in one critical section.
type view struct {
	row      Row
	found    bool
	complete bool
	err      error
	changed  <-chan struct{}
}

func (c *Cache) view(pos int) view {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := view{complete: c.complete, err: c.err, changed: c.changed}
	if pos < len(c.rows) {
		v.row, v.found = c.rows[pos], true
	}
	return v
}

// Reorder stable-sorts the rows with cmp and renumbers positions. It refuses
// to run until the current generation is complete.
func (c *Cache) Reorder(cmp func(a, b Row) int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.complete {
		return fmt.Errorf("reorder while loading: %w", friendlyerrors.ErrCallerMisuse)
	}
	slices.SortStableFunc(c.rows, cmp)
	for i := range c.rows {
		c.rows[i].Position = i
	}
	c.broadcast()
	return nil
}
