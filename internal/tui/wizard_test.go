package tui

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/example/labctl/internal/labctl"
)

func TestProgressFailureRecordsFatal(t *testing.T) {
	state := &wizardState{values: map[string]string{}}
	m := newProgressModel(state)

	wantErr := &labctl.WriteError{Path: "/opt/homelab/.env", Err: errors.New("permission denied")}
	updated, _ := m.Update(stepDoneMsg{index: 0, err: wantErr})
	pm := updated.(*progressModel)

	if state.fatal == nil {
		t.Fatal("failed step did not record its error on the wizard state")
	}
	if got := labctl.ExitCode(state.fatal); got != labctl.ExitWrite {
		t.Errorf("ExitCode = %d, want %d", got, labctl.ExitWrite)
	}

	_, cmd := pm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter after a failed step returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("enter after a failed step did not quit")
	}
	if !errors.Is(state.fatal, wantErr) {
		t.Error("quit path replaced the recorded error")
	}
}

func TestPreflightFatalRecordsError(t *testing.T) {
	state := &wizardState{values: map[string]string{}}
	m := newPreflightModel(state)
	m.running = true

	results := []labctl.CheckResult{
		{Name: "docker binary", OK: false, Fatal: true, Err: labctl.ErrRuntimeMissing},
		{Name: "disk space >= 10GiB", OK: true},
	}
	updated, _ := m.Update(checksDoneMsg{results: results})
	pm := updated.(*preflightModel)

	if !pm.hasFatal {
		t.Fatal("fatal check result not flagged")
	}
	if got := labctl.ExitCode(state.fatal); got != labctl.ExitRuntimeMissing {
		t.Errorf("ExitCode = %d, want %d", got, labctl.ExitRuntimeMissing)
	}

	_, cmd := pm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter on a fatal preflight returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("enter on a fatal preflight did not quit")
	}
}

func TestPreflightWarningsDoNotRecordFatal(t *testing.T) {
	state := &wizardState{values: map[string]string{}}
	m := newPreflightModel(state)
	m.running = true

	results := []labctl.CheckResult{
		{Name: "stack ports free", OK: false, Fatal: false, Err: errors.New("ports already in use: :3000")},
	}
	m.Update(checksDoneMsg{results: results})

	if state.fatal != nil {
		t.Errorf("warning recorded as fatal: %v", state.fatal)
	}
}

func TestConfirmBackAndCancelLeaveEnvUntouched(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	original := []byte("SERVER_IP=10.0.0.1\n")
	if err := os.WriteFile(envPath, original, 0o640); err != nil {
		t.Fatal(err)
	}

	state := &wizardState{
		paths:      labctl.Paths{StackRoot: dir},
		values:     map[string]string{},
		envExisted: true,
	}
	m := newConfirmModel(state)
	m.Init()

	if m.cursor != 1 {
		t.Errorf("default cursor = %d, want 1 (Back) when a config already exists", m.cursor)
	}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	cm := updated.(*confirmModel)
	if cmd == nil {
		t.Fatal("Back returned no command")
	}
	nav, ok := cmd().(navigateMsg)
	if !ok || nav.to != screenServices {
		t.Errorf("Back navigated to %v, want the service screen", nav.to)
	}

	cm.cursor = 2
	_, cmd = cm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Cancel returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Cancel did not quit")
	}

	data, err := os.ReadFile(envPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, original) {
		t.Error("existing config modified before the progress screen")
	}
	if state.fatal != nil {
		t.Errorf("declining recorded an error: %v", state.fatal)
	}
}

func TestSeedValuesFromExistingEnv(t *testing.T) {
	dir := t.TempDir()
	content := "SERVER_IP=10.9.8.7\nPROMETHEUS_RETENTION=30d\nUNKNOWN_KEY=x\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o640); err != nil {
		t.Fatal(err)
	}

	state := &wizardState{
		paths:  labctl.Paths{StackRoot: dir},
		values: map[string]string{},
	}
	seedValues(state)

	if got := state.values["SERVER_IP"]; got != "10.9.8.7" {
		t.Errorf("SERVER_IP = %q, want seeded value", got)
	}
	if got := state.values["PROMETHEUS_RETENTION"]; got != "30d" {
		t.Errorf("PROMETHEUS_RETENTION = %q, want seeded value", got)
	}
	if _, ok := state.values["UNKNOWN_KEY"]; ok {
		t.Error("key outside the field table was seeded")
	}
}
