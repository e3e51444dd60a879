package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/example/labctl/internal/labctl"
)

type confirmModel struct {
	state  *wizardState
	cursor int
}

func newConfirmModel(state *wizardState) *confirmModel {
	return &confirmModel{state: state}
}

func (m *confirmModel) Init() tea.Cmd {
	m.cursor = 0
	if m.state.envExisted {
		// Overwriting an existing configuration needs explicit opt-in;
		// default lands on Back.
		m.cursor = 1
	}
	return nil
}

func (m *confirmModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEsc(msg) {
			return m, func() tea.Msg { return navigateMsg{to: screenServices} }
		}
		if (isLeft(msg) || isUp(msg)) && m.cursor > 0 {
			m.cursor--
		}
		if (isRight(msg) || isDown(msg)) && m.cursor < 2 {
			m.cursor++
		}
		if isEnter(msg) {
			switch m.cursor {
			case 0:
				return m, func() tea.Msg { return navigateMsg{to: screenPreflight} }
			case 1:
				return m, func() tea.Msg { return navigateMsg{to: screenServices} }
			case 2:
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *confirmModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Confirm Setup"))
	b.WriteString("\n\n")

	section := ""
	for _, f := range labctl.ConfigFields {
		if f.Section != section {
			section = f.Section
			b.WriteString(subtitleStyle.Render("  " + section))
			b.WriteString("\n")
		}
		value := m.state.values[f.Key]
		if f.Kind == labctl.KindSecret {
			value = strings.Repeat("*", 8)
		}
		b.WriteString(fmt.Sprintf("  %-28s %s\n", f.Key, selectedStyle.Render(value)))
	}

	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("  Services"))
	b.WriteString("\n")
	if len(m.state.services) > 0 {
		b.WriteString("  " + normalStyle.Render(strings.Join(m.state.services, ", ")) + "\n")
	} else {
		b.WriteString("  " + mutedStyle.Render("(none)") + "\n")
	}

	if m.state.envExisted {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render(fmt.Sprintf(
			"  %s already exists. Continuing backs it up with a timestamp suffix,", m.state.paths.EnvFile())))
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("  then overwrites it. Cancel leaves it untouched."))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	confirmLabel := "Confirm"
	if m.state.envExisted {
		confirmLabel = "Overwrite & Continue"
	}
	buttons := []string{confirmLabel, "Back", "Cancel"}
	for i, btn := range buttons {
		if i == m.cursor {
			b.WriteString("  " + borderStyle.Render(selectedStyle.Render(btn)))
		} else {
			b.WriteString("  " + normalStyle.Render("["+btn+"]"))
		}
		b.WriteString("  ")
	}
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("\n  left/right: navigate  enter: select  esc: back"))
	return b.String()
}
