package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type helpModel struct{}

func newHelpModel() *helpModel {
	return &helpModel{}
}

func (m *helpModel) Init() tea.Cmd {
	return nil
}

func (m *helpModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEsc(msg) || msg.String() == "?" || isEnter(msg) || msg.String() == "q" {
			return m, func() tea.Msg { return helpReturnMsg{} }
		}
	}
	return m, nil
}

func (m *helpModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title string
		keys  []struct{ key, desc string }
	}{
		{
			title: "Global",
			keys: []struct{ key, desc string }{
				{"ctrl+c", "Quit immediately"},
				{"?", "Toggle this help screen"},
			},
		},
		{
			title: "Navigation",
			keys: []struct{ key, desc string }{
				{"up / down", "Move between fields and options"},
				{"enter", "Confirm / select"},
				{"esc", "Go back"},
				{"space", "Toggle a service on or off"},
			},
		},
		{
			title: "Secret Fields",
			keys: []struct{ key, desc string }{
				{"ctrl+g", "Generate a fresh password"},
				{"ctrl+r", "Reveal / mask the value"},
			},
		},
		{
			title: "Path Fields",
			keys: []struct{ key, desc string }{
				{"enter (twice)", "Create a missing directory"},
				{"ctrl+k", "Keep the path without creating it"},
			},
		},
	}

	for _, s := range sections {
		b.WriteString(categoryStyle.Render("  " + s.title))
		b.WriteString("\n")
		for _, k := range s.keys {
			b.WriteString(fmt.Sprintf("    %-14s %s\n",
				selectedStyle.Render(k.key), normalStyle.Render(k.desc)))
		}
	}

	b.WriteString(helpStyle.Render("\n  enter/esc: back"))
	return b.String()
}
