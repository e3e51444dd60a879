package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/example/labctl/internal/labctl"
)

type serviceRow struct {
	name       string
	isCategory bool
	category   string
}

type serviceSelectModel struct {
	state    *wizardState
	rows     []serviceRow
	cursor   int
	selected map[string]bool
	depMsg   string
}

func newServiceSelectModel(state *wizardState) *serviceSelectModel {
	m := &serviceSelectModel{
		state:    state,
		selected: map[string]bool{},
	}
	m.buildRows()
	return m
}

func (m *serviceSelectModel) buildRows() {
	categories := []string{"Observability", "Network", "Management", "Media"}
	grouped := map[string][]string{}
	for name, info := range labctl.ServiceCatalog {
		grouped[info.Category] = append(grouped[info.Category], name)
	}

	m.rows = nil
	for _, cat := range categories {
		names := grouped[cat]
		if len(names) == 0 {
			continue
		}
		sort.Strings(names)
		m.rows = append(m.rows, serviceRow{isCategory: true, category: cat})
		for _, name := range names {
			m.rows = append(m.rows, serviceRow{name: name})
		}
	}
}

func (m *serviceSelectModel) Init() tea.Cmd {
	if len(m.state.services) > 0 {
		for _, s := range m.state.services {
			m.selected[s] = true
		}
	} else {
		for _, s := range labctl.DefaultServices {
			m.selected[s] = true
		}
	}
	if len(m.rows) > 0 && m.rows[0].isCategory {
		m.cursor = 1
	}
	return nil
}

func (m *serviceSelectModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEsc(msg) {
			return m, func() tea.Msg { return navigateMsg{to: screenMedia} }
		}
		if isUp(msg) {
			m.cursor--
			for m.cursor >= 0 && m.rows[m.cursor].isCategory {
				m.cursor--
			}
			if m.cursor < 0 {
				for i, r := range m.rows {
					if !r.isCategory {
						m.cursor = i
						break
					}
				}
			}
		}
		if isDown(msg) {
			m.cursor++
			for m.cursor < len(m.rows) && m.rows[m.cursor].isCategory {
				m.cursor++
			}
			if m.cursor >= len(m.rows) {
				m.cursor = len(m.rows) - 1
				for m.cursor >= 0 && m.rows[m.cursor].isCategory {
					m.cursor--
				}
			}
		}
		if isSpace(msg) {
			row := m.rows[m.cursor]
			if !row.isCategory {
				m.depMsg = ""
				if m.selected[row.name] {
					delete(m.selected, row.name)
				} else {
					m.selected[row.name] = true
					for _, dep := range labctl.ServiceDependencies[row.name] {
						if !m.selected[dep] {
							m.selected[dep] = true
							m.depMsg = fmt.Sprintf("auto-enabled %s (required by %s)", dep, row.name)
						}
					}
				}
			}
		}
		if isEnter(msg) {
			var services []string
			for s := range m.selected {
				services = append(services, s)
			}
			services = labctl.AddServiceDependencies(services)
			sort.Strings(services)
			m.state.services = services
			return m, func() tea.Msg { return navigateMsg{to: screenConfirm} }
		}
	}
	return m, nil
}

func (m *serviceSelectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Select Services"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Choose which services the stack runs. Dependencies are added automatically."))
	b.WriteString("\n")

	for i, row := range m.rows {
		if row.isCategory {
			b.WriteString(categoryStyle.Render("  " + row.category))
			b.WriteString("\n")
			continue
		}

		check := checkOff
		if m.selected[row.name] {
			check = checkOn
		}
		prefix := "    "
		label := normalStyle.Render(row.name)
		if i == m.cursor {
			prefix = "  " + cursorChar + " "
			label = selectedStyle.Render(row.name)
		}
		info := labctl.ServiceCatalog[row.name]
		b.WriteString(fmt.Sprintf("%s%s %s  %s\n", prefix, check, label,
			mutedStyle.Render(info.Description)))
	}

	if m.depMsg != "" {
		b.WriteString("\n  " + warningStyle.Render(m.depMsg))
	}

	b.WriteString(helpStyle.Render("\n  up/down: navigate  space: toggle  enter: continue  esc: back"))
	return b.String()
}
