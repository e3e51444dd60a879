package labctl

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmitEnvFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	cfg := completeConfig()

	if err := EmitEnvFile(path, cfg); err != nil {
		t.Fatalf("EmitEnvFile: %v", err)
	}

	got, err := ReadEnvFile(path)
	if err != nil {
		t.Fatalf("ReadEnvFile: %v", err)
	}
	for k, v := range cfg {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestEmitEnvFileDeterministic(t *testing.T) {
	dir := t.TempDir()
	cfg := completeConfig()

	a := filepath.Join(dir, "a.env")
	b := filepath.Join(dir, "b.env")
	if err := EmitEnvFile(a, cfg); err != nil {
		t.Fatal(err)
	}
	if err := EmitEnvFile(b, cfg); err != nil {
		t.Fatal(err)
	}

	ba, _ := os.ReadFile(a)
	bb, _ := os.ReadFile(b)
	if !bytes.Equal(ba, bb) {
		t.Error("two emits of identical config differ byte-wise")
	}
}

func TestEmitEnvFileSectionsAndOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := EmitEnvFile(path, completeConfig()); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	content := string(data)

	for _, section := range []string{"Network", "Identity", "Grafana", "Retention", "Services", "Media", "Telemetry"} {
		if !strings.Contains(content, "# --- "+section+" ---") {
			t.Errorf("missing section header for %s", section)
		}
	}

	// Key order follows the field table
	prev := -1
	for _, f := range ConfigFields {
		idx := strings.Index(content, "\n"+f.Key+"=")
		if idx < 0 {
			t.Fatalf("key %s not found", f.Key)
		}
		if idx < prev {
			t.Errorf("key %s out of table order", f.Key)
		}
		prev = idx
	}
}

func TestEmitEnvFileRejectsIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	cfg := completeConfig()
	cfg["SERVER_IP"] = ""

	if err := EmitEnvFile(path, cfg); err == nil {
		t.Fatal("EmitEnvFile accepted an incomplete config")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("partial file left behind after refused emit")
	}
}

func TestEmitEnvFileWriteError(t *testing.T) {
	// Parent "directory" is a regular file, so the write must fail with a
	// WriteError and leave no temp file.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o640); err != nil {
		t.Fatal(err)
	}

	err := EmitEnvFile(filepath.Join(blocker, ".env"), completeConfig())
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("err = %v, want *WriteError", err)
	}
	if ExitCode(err) != ExitWrite {
		t.Errorf("ExitCode = %d, want %d", ExitCode(err), ExitWrite)
	}
}

func TestEmitEnvFileLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	if err := EmitEnvFile(filepath.Join(dir, ".env"), completeConfig()); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}

func TestBackupEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	original := []byte("SERVER_IP=10.0.0.1\n")
	if err := os.WriteFile(path, original, 0o640); err != nil {
		t.Fatal(err)
	}

	backup, err := BackupEnvFile(path)
	if err != nil {
		t.Fatalf("BackupEnvFile: %v", err)
	}
	if backup == "" {
		t.Fatal("no backup path returned for an existing file")
	}
	if !strings.HasPrefix(filepath.Base(backup), ".env.bak.") {
		t.Errorf("backup name %q missing timestamp suffix pattern", backup)
	}

	data, err := os.ReadFile(backup)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, original) {
		t.Error("backup contents differ from the original")
	}
}

func TestBackupEnvFileMissingSource(t *testing.T) {
	backup, err := BackupEnvFile(filepath.Join(t.TempDir(), ".env"))
	if err != nil {
		t.Fatalf("BackupEnvFile on missing file: %v", err)
	}
	if backup != "" {
		t.Errorf("backup = %q, want empty for missing source", backup)
	}
}
