// Package tui is the terminal catalog browser. Rows are drawn straight from
// the query cache; anything that may block runs in a tea.Cmd.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/wumbolauncher/wumbo/internal/assets"
	"github.com/wumbolauncher/wumbo/internal/config"
	"github.com/wumbolauncher/wumbo/internal/filters"
	"github.com/wumbolauncher/wumbo/internal/loader"
	"github.com/wumbolauncher/wumbo/internal/logging"
	"github.com/wumbolauncher/wumbo/internal/metrics"
	"github.com/wumbolauncher/wumbo/internal/querycache"
	"github.com/wumbolauncher/wumbo/internal/state"
)

type Options struct {
	Version string
	Log     *logging.Logger
	Metrics *metrics.Manager
	Filters *filters.Set
	// Warning is shown on the status line until the user dismisses it,
	// e.g. that the filter file is missing and nothing is excluded.
	Warning string
}

type Model struct {
	cfg     *config.Config
	db      *state.DB
	log     *logging.Logger
	metrics *metrics.Manager
	version string

	cache    *querycache.Cache
	provider *querycache.Provider
	sorter   *querycache.Sorter
	loader   *loader.Loader
	filter   *filters.Set

	th      Theme
	themeIx int
	w, h    int

	libIdx   int
	search   textinput.Model
	searchOn bool
	prevTerm string
	spin     spinner.Model

	gen      uint64 // generation of the cycle on screen
	loading  bool
	result   loader.Result
	err      error
	size     int
	selected int
	offset   int
	waiting  int // position a Provider.Get is blocked on, -1 if none

	detail   *state.Entry
	images   []assets.Image
	showHelp bool
	status   string
}

type tickMsg time.Time

type loadDoneMsg struct {
	gen uint64
	res loader.Result
	err error
}

type rowMsg struct {
	gen uint64
	pos int
	row querycache.Row
	err error
}

type detailMsg struct {
	id     string
	entry  *state.Entry
	images []assets.Image
	err    error
}

type filtersMsg struct {
	set *filters.Set
	err error
}

type statusMsg string

func New(cfg *config.Config, db *state.DB, opts Options) *Model {
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}
	cache := querycache.New()
	in := textinput.New()
	in.Placeholder = "Search titles…"
	in.Prompt = "/ "
	in.CharLimit = 256
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		cfg:      cfg,
		db:       db,
		log:      opts.Log,
		metrics:  opts.Metrics,
		version:  opts.Version,
		cache:    cache,
		provider: querycache.NewProvider(cache),
		sorter:   querycache.NewSorter(cache),
		filter:   opts.Filters,
		th:       defaultTheme(),
		search:   in,
		spin:     sp,
		waiting:  -1,
		status:   opts.Warning,
	}
	m.loader = loader.New(cache, db, loader.Options{
		PageSize: cfg.Loader.PageSize,
		Filter:   opts.Filters,
		Log:      opts.Log,
		Metrics:  opts.Metrics,
	})
	for i, l := range config.Libraries {
		if l == cfg.Loader.DefaultLibrary {
			m.libIdx = i
		}
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return m.startLoad()
}

// Close stops the running cycle. Call it after the program exits.
func (m *Model) Close() { m.loader.Stop() }

func (m *Model) library() string { return config.Libraries[m.libIdx] }

func (m *Model) refreshInterval() time.Duration {
	hz := m.cfg.UI.RefreshHz
	if hz <= 0 {
		hz = 10
	}
	if hz > 30 {
		hz = 30
	}
	return time.Second / time.Duration(hz)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height
		m.clampOffset()
		return m, nil
	case tea.KeyMsg:
		if m.searchOn {
			return m, m.updateSearch(msg)
		}
		return m, m.updateNormal(msg)
	case tickMsg:
		if !m.loading {
			return m, nil
		}
		m.size = m.cache.Size()
		return m, m.tick()
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case loadDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.size = m.cache.Size()
		m.result, m.err = msg.res, msg.err
		if m.selected >= m.size {
			m.selected = max(m.size-1, 0)
		}
		m.clampOffset()
		return m, nil
	case rowMsg:
		if msg.gen != m.gen || msg.pos != m.waiting {
			return m, nil
		}
		m.waiting = -1
		m.size = m.cache.Size()
		if msg.err != nil {
			// The cycle ended short of pos; settle on the last row.
			m.selected = max(m.size-1, 0)
		} else {
			m.selected = msg.row.Position
		}
		m.clampOffset()
		return m, nil
	case detailMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.detail, m.images = msg.entry, msg.images
		return m, nil
	case filtersMsg:
		if msg.err != nil {
			m.status = firstLine(msg.err.Error())
			m.log.Warnf("filters: %v", msg.err)
		}
		if msg.set != nil {
			m.filter = msg.set
			m.loader.SetFilter(msg.set)
			return m, m.startLoad()
		}
		return m, nil
	case statusMsg:
		m.status = string(msg)
		return m, nil
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.searchOn = false
		m.search.SetValue(m.prevTerm)
		m.search.Blur()
		return nil
	case "enter":
		m.searchOn = false
		m.search.Blur()
		if m.search.Value() == m.prevTerm {
			return nil
		}
		return m.startLoad()
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return cmd
}

func (m *Model) updateNormal(msg tea.KeyMsg) tea.Cmd {
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return nil
	}
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "?":
		m.showHelp = true
	case "/":
		m.searchOn = true
		m.prevTerm = m.search.Value()
		return m.search.Focus()
	case "esc":
		m.detail, m.images, m.status = nil, nil, ""
	case "tab", "right", "l":
		m.libIdx = (m.libIdx + 1) % len(config.Libraries)
		return m.startLoad()
	case "shift+tab", "left", "h":
		m.libIdx = (m.libIdx + len(config.Libraries) - 1) % len(config.Libraries)
		return m.startLoad()
	case "j", "down":
		return m.moveTo(m.selected + 1)
	case "k", "up":
		return m.moveTo(m.selected - 1)
	case "pgdown", "ctrl+d":
		return m.moveTo(m.selected + m.listHeight())
	case "pgup", "ctrl+u":
		return m.moveTo(m.selected - m.listHeight())
	case "home", "g":
		return m.moveTo(0)
	case "end", "G":
		return m.moveTo(m.cache.Size() - 1)
	case "1":
		return m.toggleSort(querycache.ByTitle)
	case "2":
		return m.toggleSort(querycache.ByDeveloper)
	case "3":
		return m.toggleSort(querycache.ByPublisher)
	case "enter":
		if row, ok := m.cache.Get(m.selected); ok {
			return m.detailCmd(row.ID)
		}
	case "p":
		if row, ok := m.cache.Get(m.selected); ok {
			return m.playCmd(row)
		}
	case "o":
		return m.openImageCmd()
	case "r":
		return m.reloadFiltersCmd()
	case "T":
		presets := themePresets()
		m.themeIx = (m.themeIx + 1) % len(presets)
		m.th = presets[m.themeIx]
	}
	return nil
}

// moveTo selects pos. Positions the loader has not reached yet are fetched
// through the provider, which blocks in its own goroutine.
func (m *Model) moveTo(pos int) tea.Cmd {
	if pos < 0 {
		pos = 0
	}
	m.size = m.cache.Size()
	if pos < m.size {
		m.selected = pos
		m.waiting = -1
		m.clampOffset()
		return nil
	}
	if !m.loading {
		m.selected = max(m.size-1, 0)
		m.clampOffset()
		return nil
	}
	m.waiting = pos
	return m.waitRowCmd(m.gen, pos)
}

func (m *Model) toggleSort(col querycache.Column) tea.Cmd {
	if m.loading {
		m.status = "sorting is disabled while loading"
		return nil
	}
	if _, err := m.sorter.Toggle(col); err != nil {
		m.status = err.Error()
		return nil
	}
	m.status = ""
	m.selected, m.offset = 0, 0
	return nil
}

func (m *Model) listHeight() int {
	h := m.h - 12
	if m.detail != nil {
		h -= 10
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) clampOffset() {
	lh := m.listHeight()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+lh {
		m.offset = m.selected - lh + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}
