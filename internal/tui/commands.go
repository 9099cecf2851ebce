package tui

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wumbolauncher/wumbo/internal/assets"
	"github.com/wumbolauncher/wumbo/internal/filters"
	"github.com/wumbolauncher/wumbo/internal/launcher"
	"github.com/wumbolauncher/wumbo/internal/loader"
	"github.com/wumbolauncher/wumbo/internal/logging"
	"github.com/wumbolauncher/wumbo/internal/querycache"
)

// startLoad begins a new cycle for the current library and search term.
func (m *Model) startLoad() tea.Cmd {
	q := loader.Query{Library: m.library(), Search: m.search.Value()}
	m.log.Infof("browse: library=%s search=%q", q.Library, logging.SanitizeText(q.Search))
	cycle := m.loader.Start(q)
	m.sorter.Reset()
	m.gen = cycle.Generation
	m.loading = true
	m.err = nil
	m.size, m.selected, m.offset, m.waiting = 0, 0, 0, -1
	m.detail, m.images = nil, nil
	return tea.Batch(m.waitCycleCmd(cycle), m.tick(), m.spin.Tick)
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.refreshInterval(), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) waitCycleCmd(c *loader.Cycle) tea.Cmd {
	mm := m.metrics
	return func() tea.Msg {
		res, err := c.Wait(context.Background())
		if werr := mm.Write(); werr != nil {
			m.log.Warnf("metrics: %v", werr)
		}
		return loadDoneMsg{gen: c.Generation, res: res, err: err}
	}
}

// waitRowCmd blocks on the provider until pos is loaded or the cycle ends.
// A newer cycle finishes the old generation's wait through the cache's
// change broadcast, and the stale reply is dropped in Update.
func (m *Model) waitRowCmd(gen uint64, pos int) tea.Cmd {
	p := m.provider
	cache := m.cache
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			// Give up once the generation moves on.
			for {
				ch := cache.Changed()
				if cache.Generation() != gen {
					cancel()
					return
				}
				select {
				case <-ch:
				case <-ctx.Done():
					return
				}
			}
		}()
		row, err := p.Get(ctx, pos)
		return rowMsg{gen: gen, pos: pos, row: row, err: err}
	}
}

func (m *Model) detailCmd(id string) tea.Cmd {
	db := m.db
	root, server := m.cfg.General.FlashpointPath, m.cfg.General.ImageServer
	return func() tea.Msg {
		e, err := db.GetEntry(context.Background(), id)
		if errors.Is(err, sql.ErrNoRows) {
			return detailMsg{id: id, err: fmt.Errorf("entry %s no longer exists", id)}
		}
		if err != nil {
			return detailMsg{id: id, err: err}
		}
		imgs, err := assets.Resolve(root, server, id)
		if err != nil {
			// Short ids have no images; show the metadata anyway.
			imgs = nil
		}
		return detailMsg{id: id, entry: e, images: imgs}
	}
}

func (m *Model) playCmd(row querycache.Row) tea.Cmd {
	clifp := m.cfg.General.CLIFpPath
	log := m.log
	return func() tea.Msg {
		if _, err := launcher.Play(clifp, row.ID); err != nil {
			log.Errorf("play %s: %v", row.ID, err)
			return statusMsg(firstLine(err.Error()))
		}
		log.Infof("play %s (%s)", row.ID, logging.SanitizeText(row.Title))
		return statusMsg("launched " + row.Title)
	}
}

func (m *Model) openImageCmd() tea.Cmd {
	if len(m.images) == 0 {
		return nil
	}
	loc := m.images[0].Location()
	return func() tea.Msg {
		if err := launcher.Open(loc); err != nil {
			return statusMsg(err.Error())
		}
		return nil
	}
}

// reloadFiltersCmd rereads the filter file; Update restarts the cycle with it.
func (m *Model) reloadFiltersCmd() tea.Cmd {
	path := m.cfg.Filters.Path
	return func() tea.Msg {
		set, err := filters.Load(path)
		return filtersMsg{set: set, err: err}
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
