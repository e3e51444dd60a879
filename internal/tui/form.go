package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/example/labctl/internal/labctl"
)

type formField struct {
	spec        labctl.Field
	input       textinput.Model
	offerCreate bool
}

// formModel is one wizard section: a short sequence of validated text
// inputs. Invalid answers re-prompt the same field with an error message;
// there is no retry limit.
type formModel struct {
	state    *wizardState
	title    string
	subtitle string
	keys     []string
	fields   []formField
	cursor   int
	errMsg   string
	next     screen
	prev     screen
}

func newFormModel(state *wizardState, title, subtitle string, keys []string, next, prev screen) *formModel {
	return &formModel{
		state:    state,
		title:    title,
		subtitle: subtitle,
		keys:     keys,
		next:     next,
		prev:     prev,
	}
}

func (m *formModel) Init() tea.Cmd {
	m.fields = nil
	m.cursor = 0
	m.errMsg = ""

	for _, key := range m.keys {
		spec := labctl.FieldByKey(key)

		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 44

		value := m.state.values[key]
		if value == "" {
			value = labctl.FieldDefault(spec, m.state.facts)
		}
		if spec.Kind == labctl.KindSecret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '*'
			if value == "" {
				if pw, err := labctl.GeneratePassword(); err == nil {
					value = pw
				}
			}
		}
		ti.SetValue(value)

		m.fields = append(m.fields, formField{spec: spec, input: ti})
	}

	m.fields[0].input.Focus()
	return textinput.Blink
}

func (m *formModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cur := &m.fields[m.cursor]

		switch {
		case isEsc(msg):
			return m, func() tea.Msg { return navigateMsg{to: m.prev} }

		case msg.String() == "up":
			if m.cursor > 0 {
				m.focus(m.cursor - 1)
			}
			return m, nil

		case msg.String() == "ctrl+g" && cur.spec.Kind == labctl.KindSecret:
			if pw, err := labctl.GeneratePassword(); err == nil {
				cur.input.SetValue(pw)
			}
			return m, nil

		case msg.String() == "ctrl+r" && cur.spec.Kind == labctl.KindSecret:
			if cur.input.EchoMode == textinput.EchoPassword {
				cur.input.EchoMode = textinput.EchoNormal
			} else {
				cur.input.EchoMode = textinput.EchoPassword
			}
			return m, nil

		case msg.String() == "ctrl+k" && cur.offerCreate:
			// Keep the typed path without creating it. Validation of
			// path existence is advisory, never a gate.
			return m, m.accept(cur.input.Value())

		case isEnter(msg):
			value := strings.TrimSpace(cur.input.Value())
			if value == "" {
				value = labctl.FieldDefault(cur.spec, m.state.facts)
				cur.input.SetValue(value)
			}

			if err := labctl.ValidateField(cur.spec, value); err != nil {
				m.errMsg = err.Error()
				return m, nil
			}

			if cur.spec.Kind == labctl.KindPath && !labctl.DirExists(value) {
				if !cur.offerCreate {
					cur.offerCreate = true
					m.errMsg = ""
					return m, nil
				}
				if err := os.MkdirAll(value, 0o755); err != nil {
					m.errMsg = fmt.Sprintf("create failed: %v", err)
					return m, nil
				}
			}
			return m, m.accept(value)
		}

	}

	var cmd tea.Cmd
	m.fields[m.cursor].input, cmd = m.fields[m.cursor].input.Update(msg)
	return m, cmd
}

func (m *formModel) accept(value string) tea.Cmd {
	m.state.values[m.keys[m.cursor]] = strings.TrimSpace(value)
	m.errMsg = ""
	m.fields[m.cursor].offerCreate = false

	if m.cursor == len(m.fields)-1 {
		return func() tea.Msg { return navigateMsg{to: m.next} }
	}
	m.focus(m.cursor + 1)
	return textinput.Blink
}

func (m *formModel) focus(i int) {
	m.fields[m.cursor].input.Blur()
	m.cursor = i
	m.fields[m.cursor].input.Focus()
	m.errMsg = ""
}

func (m *formModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.subtitle))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		label := f.spec.Label
		switch {
		case i == m.cursor:
			b.WriteString(fmt.Sprintf("  %s %s\n", cursorChar, selectedStyle.Render(label)))
			b.WriteString("    " + f.input.View() + "\n")
			if f.spec.Help != "" {
				b.WriteString("    " + mutedStyle.Render(f.spec.Help) + "\n")
			}
			if f.offerCreate {
				b.WriteString("    " + warningStyle.Render(
					"directory does not exist - enter: create it  ctrl+k: keep anyway") + "\n")
			}
			if m.errMsg != "" {
				b.WriteString("    " + errorStyle.Render(m.errMsg) + "\n")
			}
		case i < m.cursor:
			value := f.input.Value()
			if f.spec.Kind == labctl.KindSecret {
				value = strings.Repeat("*", 8)
			}
			b.WriteString(fmt.Sprintf("  %s %s: %s\n", doneMark,
				normalStyle.Render(label), mutedStyle.Render(value)))
		default:
			b.WriteString(fmt.Sprintf("    %s\n", mutedStyle.Render(label)))
		}
	}

	hints := "enter: confirm  up: previous field  esc: back"
	if m.fields[m.cursor].spec.Kind == labctl.KindSecret {
		hints += "  ctrl+g: generate  ctrl+r: reveal"
	}
	b.WriteString(helpStyle.Render("\n  " + hints))
	return b.String()
}
