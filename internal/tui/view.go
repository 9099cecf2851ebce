package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/wumbolauncher/wumbo/internal/config"
	"github.com/wumbolauncher/wumbo/internal/launcher"
	"github.com/wumbolauncher/wumbo/internal/querycache"
)

func (m *Model) View() string {
	if m.w == 0 {
		m.w = 120
	}
	if m.h == 0 {
		m.h = 30
	}
	if m.showHelp {
		return m.th.border.Render(m.helpView())
	}
	header := m.th.border.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		m.th.title.Render("wumbo")+"  ", m.renderTabs(), "  ", m.th.label.Render(m.renderSearch())))
	parts := []string{header, m.th.border.Render(m.renderTable())}
	if m.detail != nil {
		parts = append(parts, m.th.border.Render(m.renderInspector()))
	}
	parts = append(parts, m.th.border.Render(m.renderFooter()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderTabs() string {
	var out []string
	for i, l := range config.Libraries {
		style := m.th.tabInactive
		if i == m.libIdx {
			style = m.th.tabActive
		}
		out = append(out, style.Render(strings.ToUpper(l[:1])+l[1:]))
	}
	return strings.Join(out, " │ ")
}

func (m *Model) renderSearch() string {
	if m.searchOn {
		return m.search.View()
	}
	if v := m.search.Value(); v != "" {
		return "search: " + v
	}
	return "/ to search"
}

func (m *Model) columnWidths() (int, int, int) {
	inner := m.w - 6
	if inner < 30 {
		inner = 30
	}
	dev := inner / 4
	pub := inner / 4
	return inner - dev - pub - 2, dev, pub
}

func (m *Model) renderTable() string {
	tw, dw, pw := m.columnWidths()
	col, dir := m.sorter.Current()
	headers := []string{"Title", "Developer", "Publisher"}
	arrow := "▲"
	if dir == querycache.Descending {
		arrow = "▼"
	}
	headers[col] += " " + arrow

	var b strings.Builder
	b.WriteString(m.th.head.Render(pad(headers[0], tw) + " " + pad(headers[1], dw) + " " + pad(headers[2], pw)))
	b.WriteString("\n")

	size := m.cache.Size()
	if size == 0 {
		switch {
		case m.err != nil:
			b.WriteString(m.th.bad.Render(firstLine(m.err.Error())))
		case m.loading:
			b.WriteString(m.spin.View() + " loading…")
		default:
			b.WriteString("No entries found.")
		}
		return b.String()
	}

	lh := m.listHeight()
	for pos := m.offset; pos < m.offset+lh && pos < size; pos++ {
		row, ok := m.cache.Get(pos)
		if !ok {
			break
		}
		style := m.th.row
		if pos == m.selected {
			style = m.th.rowSelected
		}
		line := pad(row.Title, tw) + " " + pad(row.Developer, dw) + " " + pad(row.Publisher, pw)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	if m.waiting >= 0 {
		b.WriteString(m.th.label.Render(fmt.Sprintf("%s waiting for entry %s…", m.spin.View(), humanize.Comma(int64(m.waiting+1)))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderInspector() string {
	e := m.detail
	var sb strings.Builder
	sb.WriteString(m.th.title.Render(e.Title))
	sb.WriteString("\n")
	field := func(name, v string) {
		if v == "" {
			return
		}
		sb.WriteString(m.th.label.Render(name+": ") + v + "\n")
	}
	field("Alternate titles", e.AlternateTitles)
	field("Series", e.Series)
	field("Developer", e.Developer)
	field("Publisher", e.Publisher)
	field("Release date", e.ReleaseDate)
	field("Platform", e.Platform)
	field("Version", e.Version)
	field("Play mode", e.PlayMode)
	field("Status", e.Status)
	field("Language", e.Language)
	field("Source", e.Source)
	field("Tags", strings.Join(e.Tags, "; "))
	for _, img := range m.images {
		where := img.Location()
		if img.Exists {
			where = m.th.ok.Render(where)
		}
		field(string(img.Kind), where)
	}
	if e.Notes != "" {
		sb.WriteString("\n" + e.Notes + "\n")
	}
	if e.OriginalDescription != "" {
		sb.WriteString("\n" + e.OriginalDescription + "\n")
	}
	sb.WriteString("\n" + m.th.tabActive.Render("[p] "+launcher.Label(e.ActiveDataOnDisk)))
	return sb.String()
}

func (m *Model) renderFooter() string {
	var left string
	switch {
	case m.loading:
		left = fmt.Sprintf("%s Loading… %s entries", m.spin.View(), humanize.Comma(int64(m.cache.Size())))
	case m.err != nil:
		left = m.th.bad.Render("Load failed")
	default:
		left = fmt.Sprintf("Displaying %s entries", humanize.Comma(int64(m.cache.Size())))
		if m.result.Excluded > 0 {
			left += fmt.Sprintf(" (%s filtered)", humanize.Comma(int64(m.result.Excluded)))
		}
	}
	if m.status != "" {
		left += " • " + m.status
	}
	keys := "tab library • / search • 1/2/3 sort • enter info • p play • r filters • ? help • q quit"
	return m.th.footer.Render(left + "\n" + keys)
}

func (m *Model) helpView() string {
	return `wumbo ` + m.version + `

Navigation:
  ↑/k ↓/j       Move
  pgup/pgdown   Page
  g/G           First/last loaded entry
  tab/shift+tab Switch library
  /             Search titles (enter to apply, esc to cancel)

Entries:
  enter         Show details
  p             Play with CLIFp
  o             Open logo
  esc           Close details

List:
  1 2 3         Sort by title, developer, publisher (again to reverse)
  r             Reload filters file
  T             Cycle theme
  q             Quit
`
}
