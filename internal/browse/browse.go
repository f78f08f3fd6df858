// Package browse is an interactive terminal browser over scanned platforms.
// The list shows every platform; opening one shows its grouped view, kind by
// kind.
package browse

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"periscope/internal/platform"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#007ded"))
	kindStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boxStyle   = lipgloss.NewStyle().Padding(1, 2)
)

// platformItem implements list.Item.
type platformItem struct {
	p *platform.Platform
}

func (i platformItem) Title() string { return i.p.Name }
func (i platformItem) Description() string {
	return fmt.Sprintf("%s · %d includes · %d peripherals", i.p.Category, len(i.p.Includes), len(i.p.Own))
}
func (i platformItem) FilterValue() string { return i.p.Name + " " + i.p.Category }

// Model is the bubbletea model for the browser.
type Model struct {
	list     list.Model
	selected *platform.Platform
	quitting bool
}

// New builds a browser listing reg's platforms in registry order.
func New(reg *platform.Registry) Model {
	platforms := reg.Platforms()
	items := make([]list.Item, len(platforms))
	for i, p := range platforms {
		items[i] = platformItem{p: p}
	}
	l := list.New(items, list.NewDefaultDelegate(), 80, 24)
	l.Title = "Platforms"
	l.SetFilteringEnabled(true)
	l.SetShowStatusBar(true)
	return Model{list: l}
}

// Selected returns the platform whose detail view is open, if any.
func (m Model) Selected() *platform.Platform { return m.selected }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.selected != nil {
			switch msg.String() {
			case "esc", "backspace", "left", "h":
				m.selected = nil
			case "q":
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "enter", "right", "l":
				if it, ok := m.list.SelectedItem().(platformItem); ok {
					m.selected = it.p
				}
				return m, nil
			case "q":
				m.quitting = true
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.selected != nil {
		return boxStyle.Render(Detail(m.selected))
	}
	return m.list.View()
}

// Detail renders p's grouped view: one line per kind, kinds sorted, types in
// view order with repeats collapsed into a multiplier.
func Detail(p *platform.Platform) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Name))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(p.Category + " · " + p.Path))
	b.WriteString("\n\n")

	grouped := p.Grouped()
	kinds := make([]string, 0, len(grouped))
	for k := range grouped {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	if len(kinds) == 0 {
		b.WriteString(mutedStyle.Render("no peripherals"))
		b.WriteString("\n")
	}
	for _, kind := range kinds {
		b.WriteString(kindStyle.Render(kind))
		b.WriteString(": ")
		b.WriteString(strings.Join(Summarize(grouped[kind]), ", "))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("esc back · q quit"))
	return b.String()
}

// Summarize collapses repeated types, keeping first-seen order:
//
//	[Uart I2C Uart] → [Uart (x2) I2C]
func Summarize(types []string) []string {
	counts := make(map[string]int, len(types))
	var order []string
	for _, t := range types {
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}
	out := make([]string, len(order))
	for i, t := range order {
		if n := counts[t]; n > 1 {
			out[i] = fmt.Sprintf("%s (x%d)", t, n)
		} else {
			out[i] = t
		}
	}
	return out
}

// Run starts the browser on the alternate screen and blocks until it exits.
func Run(reg *platform.Registry) error {
	if reg.Len() == 0 {
		return fmt.Errorf("browse: no platforms to show")
	}
	_, err := tea.NewProgram(New(reg), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}
