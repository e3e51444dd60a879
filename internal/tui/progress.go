package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/example/labctl/internal/labctl"
)

type stepStatus int

const (
	stepPending stepStatus = iota
	stepRunning
	stepDone
	stepFailed
)

type progressStep struct {
	label  string
	status stepStatus
	err    error
}

type stepDoneMsg struct {
	index int
	err   error
}

type progressModel struct {
	state   *wizardState
	steps   []progressStep
	spinner spinner.Model
	current int
	done    bool
	errMsg  string
}

func newProgressModel(state *wizardState) *progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &progressModel{
		state:   state,
		spinner: sp,
		steps: []progressStep{
			{label: "Writing configuration file"},
			{label: "Provisioning service directories"},
			{label: "Generating compose manifest"},
		},
	}
}

func (m *progressModel) Init() tea.Cmd {
	m.current = 0
	m.done = false
	m.errMsg = ""
	for i := range m.steps {
		m.steps[i].status = stepPending
		m.steps[i].err = nil
	}
	m.steps[0].status = stepRunning

	return tea.Batch(m.spinner.Tick, m.runStep(0))
}

func (m *progressModel) runStep(index int) tea.Cmd {
	return func() tea.Msg {
		var err error
		switch index {
		case 0:
			err = m.doEmit()
		case 1:
			err = m.doProvision()
		case 2:
			err = m.doCompose()
		}
		return stepDoneMsg{index: index, err: err}
	}
}

// doEmit backs up any prior configuration, then writes the new one
// atomically. The overwrite itself was approved on the confirm screen.
func (m *progressModel) doEmit() error {
	envPath := m.state.paths.EnvFile()
	if m.state.envExisted {
		backup, err := labctl.BackupEnvFile(envPath)
		if err != nil {
			return err
		}
		m.state.backupPath = backup
	}
	return labctl.EmitEnvFile(envPath, labctl.StackConfig(m.state.values))
}

// doProvision converges the directory tree. Per-entry failures land in the
// report shown on the completion screen rather than aborting the run.
func (m *progressModel) doProvision() error {
	owner, err := labctl.ResolveOwner(m.state.facts, "")
	if err != nil {
		return err
	}
	report := labctl.Provision(m.state.paths, labctl.DirectorySpecs, owner)
	m.state.report = &report
	return nil
}

func (m *progressModel) doCompose() error {
	if err := labctl.WriteEnabled(m.state.paths, labctl.EnabledConfig{Services: m.state.services}); err != nil {
		return err
	}
	if err := labctl.WriteComposeFile(m.state.paths, m.state.services); err != nil {
		return err
	}
	return labctl.EnsureComposeOverride(m.state.paths)
}

func (m *progressModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stepDoneMsg:
		m.steps[msg.index].status = stepDone
		if msg.err != nil {
			m.steps[msg.index].status = stepFailed
			m.steps[msg.index].err = msg.err
			m.errMsg = msg.err.Error()
			m.state.fatal = msg.err
			m.done = true
			return m, nil
		}

		next := msg.index + 1
		if next >= len(m.steps) {
			m.done = true
			return m, func() tea.Msg { return navigateMsg{to: screenComplete} }
		}
		m.current = next
		m.steps[next].status = stepRunning
		return m, m.runStep(next)

	case tea.KeyMsg:
		if m.done && m.errMsg != "" {
			if isEnter(msg) || isEsc(msg) {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *progressModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Setting Up"))
	b.WriteString("\n\n")

	for _, step := range m.steps {
		var icon string
		switch step.status {
		case stepPending:
			icon = mutedStyle.Render("  ")
		case stepRunning:
			icon = m.spinner.View()
		case stepDone:
			icon = successStyle.Render("OK")
		case stepFailed:
			icon = errorStyle.Render("XX")
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", icon, normalStyle.Render(step.label)))
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("  Error: " + m.errMsg))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("\n  press enter or esc to exit"))
	}

	return b.String()
}
