package labctl

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// runBackup archives the stack's configuration (env file, enabled.yml,
// generated compose files, and the editable config trees under the data
// root) into a timestamped tar.gz. Service data itself is not included;
// Prometheus/Loki storage is reproducible and often large.
func runBackup(paths Paths) error {
	if err := ensureDir(paths.BackupRoot, 0o750); err != nil {
		return err
	}

	ts := time.Now().UTC().Format(backupTimeFormat)
	outPath := filepath.Join(paths.BackupRoot, fmt.Sprintf("config_%s.tar.gz", ts))

	outFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create backup archive: %w", err)
	}
	defer outFile.Close()

	gz := gzip.NewWriter(outFile)
	tw := tar.NewWriter(gz)

	targets := []struct {
		path string
		name string
	}{
		{paths.EnvFile(), ".env"},
		{filepath.Join(paths.StackRoot, "enabled.yml"), "enabled.yml"},
		{filepath.Join(paths.StackRoot, "compose.yml"), "compose.yml"},
		{filepath.Join(paths.StackRoot, "compose.override.yml"), "compose.override.yml"},
		{filepath.Join(paths.DataRoot, "prometheus", "config"), "prometheus/config"},
		{filepath.Join(paths.DataRoot, "loki", "config"), "loki/config"},
		{filepath.Join(paths.DataRoot, "otel-collector", "config"), "otel-collector/config"},
		{filepath.Join(paths.DataRoot, "grafana", "provisioning"), "grafana/provisioning"},
	}

	archived := 0
	for _, t := range targets {
		info, err := os.Stat(t.path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := tarTree(tw, t.path, t.name); err != nil {
				return err
			}
		} else {
			if err := tarFile(tw, t.path, t.name, info); err != nil {
				return err
			}
		}
		archived++
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}

	if archived == 0 {
		_ = os.Remove(outPath)
		return fmt.Errorf("nothing to back up under %s; run setup first", paths.StackRoot)
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func tarTree(tw *tar.Writer, root, prefix string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return tarFile(tw, path, filepath.Join(prefix, rel), info)
	})
}

func tarFile(tw *tar.Writer, path, name string, info os.FileInfo) error {
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(tw, f)
	return err
}
