package querycache

import (
	"strings"
	"sync"
)

// Column is a sortable field of Row.
type Column int

const (
	ByTitle Column = iota
	ByDeveloper
	ByPublisher
)

func (c Column) String() string {
	switch c {
	case ByDeveloper:
		return "developer"
	case ByPublisher:
		return "publisher"
	default:
		return "title"
	}
}

// ParseColumn maps a column name to a Column.
func ParseColumn(s string) (Column, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title", "":
		return ByTitle, true
	case "developer", "dev":
		return ByDeveloper, true
	case "publisher", "pub":
		return ByPublisher, true
	}
	return ByTitle, false
}

type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

func (c Column) field(r Row) string {
	switch c {
	case ByDeveloper:
		return r.Developer
	case ByPublisher:
		return r.Publisher
	default:
		return r.Title
	}
}

// Comparator orders rows by col with plain string comparison.
func Comparator(col Column, dir Direction) func(a, b Row) int {
	return func(a, b Row) int {
		n := strings.Compare(col.field(a), col.field(b))
		if dir == Descending {
			return -n
		}
		return n
	}
}

// Sorter remembers the last applied ordering so a repeated column flips it.
type Sorter struct {
	cache *Cache

	mu  sync.Mutex
	col Column
	dir Direction
}

func NewSorter(c *Cache) *Sorter { return &Sorter{cache: c} }

// Sort reorders the cache. It fails with ErrCallerMisuse while loading.
func (s *Sorter) Sort(col Column, dir Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortLocked(col, dir)
}

func (s *Sorter) sortLocked(col Column, dir Direction) error {
	if err := s.cache.Reorder(Comparator(col, dir)); err != nil {
		return err
	}
	s.col, s.dir = col, dir
	return nil
}

// Toggle sorts by col, descending if col was the last ascending sort and
// ascending otherwise. Concurrent toggles apply one after another.
func (s *Sorter) Toggle(col Column) (Direction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dir := Ascending
	if s.col == col && s.dir == Ascending {
		dir = Descending
	}
	return dir, s.sortLocked(col, dir)
}

// Current returns the last ordering applied.
func (s *Sorter) Current() (Column, Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.col, s.dir
}

// Reset forgets the last ordering. Freshly loaded rows arrive by title.
func (s *Sorter) Reset() {
	s.mu.Lock()
	s.col, s.dir = ByTitle, Ascending
	s.mu.Unlock()
}
