// Package configwizard asks for the handful of settings wumbo cannot guess
// and turns them into a config on first run.
package configwizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/wumbolauncher/wumbo/internal/config"
)

type field struct {
	label string
	hint  string
}

var fields = []field{
	{"general.flashpoint_path", "Flashpoint install root"},
	{"general.clifp_path", "path to CLIFp (optional)"},
	{"loader.default_library", strings.Join(config.Libraries, "|")},
	{"loader.page_size", "rows per page"},
	{"filters.path", "filters.json or filters.yml"},
}

type Wizard struct {
	inputs []textinput.Model
	focus  int
	done   bool
	out    *config.Config
}

func New(defaults *config.Config) *Wizard {
	if defaults == nil {
		defaults = config.Default()
	}
	values := []string{
		defaults.General.FlashpointPath,
		defaults.General.CLIFpPath,
		defaults.Loader.DefaultLibrary,
		fmt.Sprint(defaults.Loader.PageSize),
		defaults.Filters.Path,
	}
	w := &Wizard{}
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = f.hint
		ti.SetValue(values[i])
		ti.CharLimit = 256
		w.inputs = append(w.inputs, ti)
	}
	w.inputs[0].Focus()
	return w
}

func (w *Wizard) Init() tea.Cmd { return textinput.Blink }

func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "ctrl+c", "esc":
			w.done = true
			return w, tea.Quit
		case "enter":
			if w.focus == len(w.inputs)-1 {
				w.done = true
				w.out = w.buildConfig()
				return w, tea.Quit
			}
			w.setFocus(w.focus + 1)
			return w, nil
		case "tab", "down":
			w.setFocus(w.focus + 1)
			return w, nil
		case "shift+tab", "up":
			w.setFocus(w.focus - 1)
			return w, nil
		}
	}
	var cmd tea.Cmd
	w.inputs[w.focus], cmd = w.inputs[w.focus].Update(msg)
	return w, cmd
}

func (w *Wizard) setFocus(i int) {
	if i < 0 {
		i = 0
	}
	if i >= len(w.inputs) {
		i = len(w.inputs) - 1
	}
	w.focus = i
	for j := range w.inputs {
		if j == i {
			w.inputs[j].Focus()
		} else {
			w.inputs[j].Blur()
		}
	}
}

func (w *Wizard) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("wumbo setup") + "\n")
	b.WriteString("Tab/Shift-Tab to navigate, Enter on the last field to save, Esc to cancel.\n\n")
	for i, input := range w.inputs {
		marker := " "
		if i == w.focus {
			marker = ">"
		}
		b.WriteString(fmt.Sprintf("%s %-26s %s\n", marker, fields[i].label+":", input.View()))
	}
	if w.done && w.out != nil {
		b.WriteString("\nSaving...\n")
	}
	return b.String()
}

func (w *Wizard) buildConfig() *config.Config {
	get := func(i int) string { return strings.TrimSpace(w.inputs[i].Value()) }
	o := config.Default()
	o.General.FlashpointPath = get(0)
	o.General.CLIFpPath = get(1)
	if lib := strings.ToLower(get(2)); config.IsLibrary(lib) {
		o.Loader.DefaultLibrary = lib
	}
	if n, err := strconv.Atoi(get(3)); err == nil && n > 0 {
		o.Loader.PageSize = n
	}
	if p := get(4); p != "" {
		o.Filters.Path = p
	}
	return o
}

// Config is the result, or nil if the wizard was cancelled.
func (w *Wizard) Config() *config.Config { return w.out }
