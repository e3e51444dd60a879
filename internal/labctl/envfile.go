package labctl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const backupTimeFormat = "20060102T150405Z"

// EmitEnvFile serializes a validated StackConfig into the sectioned key=value
// file the compose stack reads. Output is deterministic (table order), and
// the write is atomic: temp file in the same directory, then rename. An
// unwritable destination yields a WriteError and no partial file.
func EmitEnvFile(path string, cfg StackConfig) error {
	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("refusing to emit incomplete config: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Environment for the homelab compose stack.\n")
	b.WriteString("# Generated by labctl; edit by hand or re-run `labctl setup`.\n")

	section := ""
	for _, f := range ConfigFields {
		if f.Section != section {
			section = f.Section
			b.WriteString("\n# --- " + section + " ---\n")
		}
		b.WriteString(f.Key + "=" + cfg[f.Key] + "\n")
	}

	if err := ensureDir(filepath.Dir(path), 0o750); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmp := fmt.Sprintf("%s.tmp-%d", path, os.Getpid())
	if err := os.WriteFile(tmp, []byte(b.String()), 0o640); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// BackupEnvFile copies an existing configuration file aside with a UTC
// timestamp suffix before it is overwritten. Returns the backup path, or ""
// when there was nothing to back up.
func BackupEnvFile(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	backup := fmt.Sprintf("%s.bak.%s", path, time.Now().UTC().Format(backupTimeFormat))
	if err := copyFile(path, backup); err != nil {
		return "", fmt.Errorf("back up %s: %w", path, err)
	}
	return backup, nil
}
