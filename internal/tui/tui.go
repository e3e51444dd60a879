// Package tui is the interactive setup wizard: detect host facts, walk the
// operator through every configuration section, then emit the env file and
// provision service directories.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/example/labctl/internal/labctl"
)

type screen int

const (
	screenWelcome screen = iota
	screenNetwork
	screenIdentity
	screenCredentials
	screenRetention
	screenEndpoints
	screenMedia
	screenServices
	screenConfirm
	screenPreflight
	screenProgress
	screenComplete
	screenHelp
)

type navigateMsg struct {
	to screen
}

type helpReturnMsg struct{}

type wizardState struct {
	paths      labctl.Paths
	facts      labctl.HostFacts
	values     map[string]string
	services   []string
	envExisted bool
	backupPath string
	report     *labctl.ProvisionReport
	// fatal is the error the wizard quit on, if any. StartWizard returns it
	// so the process exit code reflects the failure class.
	fatal error
}

type screenModel interface {
	Init() tea.Cmd
	Update(tea.Msg) (screenModel, tea.Cmd)
	View() string
}

type rootModel struct {
	current  screen
	previous screen
	state    *wizardState
	screens  map[screen]screenModel
	width    int
	height   int
	quitting bool
}

// StartWizard runs the full bootstrap flow. Nothing is written to disk until
// the progress screen; quitting earlier leaves the host untouched.
func StartWizard() error {
	closeLog := labctl.InitTUILogging()
	defer closeLog()

	state := &wizardState{
		paths:  labctl.LoadPaths(),
		facts:  labctl.DetectHostFacts(),
		values: map[string]string{},
	}
	if _, err := os.Stat(state.paths.EnvFile()); err == nil {
		state.envExisted = true
		seedValues(state)
	}

	screens := map[screen]screenModel{
		screenWelcome: newWelcomeModel(state),
		screenNetwork: newFormModel(state, "Network",
			"How the stack reaches the outside world.",
			[]string{"NETWORK_INTERFACE", "SERVER_IP"},
			screenIdentity, screenWelcome),
		screenIdentity: newFormModel(state, "Identity",
			"Ownership and timezone passed to every container.",
			[]string{"PUID", "PGID", "TZ"},
			screenCredentials, screenNetwork),
		screenCredentials: newFormModel(state, "Grafana Credentials",
			"Initial admin login for Grafana.",
			[]string{"GRAFANA_ADMIN_USER", "GRAFANA_ADMIN_PASSWORD"},
			screenRetention, screenIdentity),
		screenRetention: newFormModel(state, "Retention",
			"How long metrics and logs are kept.",
			[]string{"PROMETHEUS_RETENTION", "LOKI_RETENTION_PERIOD"},
			screenEndpoints, screenCredentials),
		screenEndpoints: newFormModel(state, "Service Endpoints",
			"Published ports and URLs.",
			[]string{"NTOPNG_HTTP_PORT", "JELLYFIN_PUBLISHED_URL", "OTEL_EXPORTER_OTLP_ENDPOINT"},
			screenMedia, screenRetention),
		screenMedia: newFormModel(state, "Media Libraries",
			"Host paths Jellyfin mounts read-only.",
			[]string{"MEDIA_MOVIES", "MEDIA_TV", "MEDIA_MUSIC", "MEDIA_PHOTOS"},
			screenServices, screenEndpoints),
		screenServices:  newServiceSelectModel(state),
		screenConfirm:   newConfirmModel(state),
		screenPreflight: newPreflightModel(state),
		screenProgress:  newProgressModel(state),
		screenComplete:  newCompleteModel(state),
		screenHelp:      newHelpModel(),
	}

	m := rootModel{
		current: screenWelcome,
		state:   state,
		screens: screens,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return state.fatal
}

// seedValues pre-fills answers from an existing env file so a re-run edits
// the current configuration instead of starting over from defaults.
func seedValues(state *wizardState) {
	cfg, err := labctl.ReadEnvFile(state.paths.EnvFile())
	if err != nil {
		return
	}
	for _, f := range labctl.ConfigFields {
		if v := cfg[f.Key]; v != "" {
			state.values[f.Key] = v
		}
	}
}

func (m rootModel) Init() tea.Cmd {
	return m.screens[m.current].Init()
}

func (m rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if isQuit(msg) {
			m.quitting = true
			return m, tea.Quit
		}
		// Help overlay accessible via '?' outside text entry and progress
		if msg.String() == "?" && m.current != screenProgress && m.current != screenHelp &&
			!isFormScreen(m.current) {
			m.previous = m.current
			m.current = screenHelp
			return m, m.screens[m.current].Init()
		}

	case navigateMsg:
		m.current = msg.to
		s := m.screens[m.current]
		return m, s.Init()

	case helpReturnMsg:
		m.current = m.previous
		return m, nil
	}

	s := m.screens[m.current]
	newScreen, cmd := s.Update(msg)
	m.screens[m.current] = newScreen
	return m, cmd
}

func isFormScreen(s screen) bool {
	switch s {
	case screenNetwork, screenIdentity, screenCredentials,
		screenRetention, screenEndpoints, screenMedia:
		return true
	}
	return false
}

func (m rootModel) View() string {
	if m.quitting {
		return ""
	}

	s := m.screens[m.current]
	content := s.View()

	if m.current >= screenNetwork && m.current <= screenConfirm {
		step := int(m.current)
		total := int(screenConfirm)
		progress := mutedStyle.Render(fmt.Sprintf("Step %d of %d", step, total))
		content = content + "\n" + progress
	}

	return content
}
