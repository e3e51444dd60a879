package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var logo = `
 ██╗      █████╗ ██████╗  ██████╗████████╗██╗
 ██║     ██╔══██╗██╔══██╗██╔════╝╚══██╔══╝██║
 ██║     ███████║██████╔╝██║        ██║   ██║
 ██║     ██╔══██║██╔══██╗██║        ██║   ██║
 ███████╗██║  ██║██████╔╝╚██████╗   ██║   ███████╗
 ╚══════╝╚═╝  ╚═╝╚═════╝  ╚═════╝   ╚═╝   ╚══════╝
`

type menuItem struct {
	label string
	desc  string
}

type welcomeModel struct {
	state  *wizardState
	cursor int
	items  []menuItem
}

func newWelcomeModel(state *wizardState) *welcomeModel {
	return &welcomeModel{
		state: state,
		items: []menuItem{
			{label: "Start Setup", desc: "Detect host facts and configure the stack"},
			{label: "Exit", desc: "Quit without touching anything"},
		},
	}
}

func (m *welcomeModel) Init() tea.Cmd {
	return nil
}

func (m *welcomeModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isUp(msg) && m.cursor > 0 {
			m.cursor--
		}
		if isDown(msg) && m.cursor < len(m.items)-1 {
			m.cursor++
		}
		if isEnter(msg) {
			if m.cursor == 0 {
				return m, func() tea.Msg { return navigateMsg{to: screenNetwork} }
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *welcomeModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(logo))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Homelab Stack Setup Wizard"))
	b.WriteString("\n")

	facts := m.state.facts
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  detected: %s on %s, tz %s",
		orDash(facts.ServerIP), orDash(facts.Interface), facts.Timezone)))
	b.WriteString("\n")
	if facts.RuntimePresent() {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  docker %s, compose %s",
			facts.DockerVersion, facts.ComposeVersion)))
	} else {
		b.WriteString(errorStyle.Render("  no container runtime detected"))
	}
	b.WriteString("\n\n")

	for i, item := range m.items {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("  %s %s\n", cursorChar, selectedStyle.Render(item.label)))
		} else {
			b.WriteString(fmt.Sprintf("    %s\n", normalStyle.Render(item.label)))
		}
		b.WriteString(fmt.Sprintf("    %s\n", mutedStyle.Render(item.desc)))
	}

	b.WriteString(helpStyle.Render("\n  up/down: navigate  enter: select  ?: help  ctrl+c: quit"))
	return b.String()
}

func orDash(v string) string {
	if v == "" {
		return "?"
	}
	return v
}
