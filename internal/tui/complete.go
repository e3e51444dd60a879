package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/example/labctl/internal/labctl"
)

type completeModel struct {
	state *wizardState
}

func newCompleteModel(state *wizardState) *completeModel {
	return &completeModel{state: state}
}

func (m *completeModel) Init() tea.Cmd {
	return nil
}

func (m *completeModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEnter(msg) || isEsc(msg) || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *completeModel) View() string {
	var b strings.Builder

	report := m.state.report
	failed := 0
	if report != nil {
		failed = report.Count(labctl.OutcomeFailed)
	}

	if failed == 0 {
		b.WriteString(successStyle.Render("  Setup Complete!"))
	} else {
		b.WriteString(warningStyle.Render("  Setup finished with warnings"))
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  Configuration: %s\n", normalStyle.Render(m.state.paths.EnvFile())))
	if m.state.backupPath != "" {
		b.WriteString(fmt.Sprintf("  Previous file: %s\n", normalStyle.Render(m.state.backupPath)))
	}

	if report != nil {
		b.WriteString(fmt.Sprintf("  Directories:   %s\n", normalStyle.Render(fmt.Sprintf(
			"%d created, %d fixed, %d unchanged, %d failed",
			report.Count(labctl.OutcomeCreated),
			report.Count(labctl.OutcomeFixed),
			report.Count(labctl.OutcomeUnchanged),
			failed))))
		for _, res := range report.Failed() {
			b.WriteString("    " + errorStyle.Render(fmt.Sprintf("%s: %v", res.Path, res.Err)) + "\n")
		}
		if failed > 0 {
			b.WriteString(mutedStyle.Render("    re-run `labctl provision` after fixing the above"))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("  Next Steps"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  $ labctl apply     # start the stack"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  $ labctl status    # check running services"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  $ labctl doctor    # verify the host"))
	b.WriteString("\n\n")

	b.WriteString("  " + borderStyle.Render(selectedStyle.Render("Exit")))
	b.WriteString(helpStyle.Render("\n\n  enter/q: quit"))
	return b.String()
}
