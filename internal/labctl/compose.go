package labctl

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const composeProject = "homelab"

// WriteComposeFile renders the base compose template and overlays every
// enabled service's fragment into one merged compose.yml. Disabled services
// simply never enter the merge.
func WriteComposeFile(paths Paths, enabledServices []string) error {
	templates := findTemplatesDir()
	data := paths.RenderData()

	basePath := filepath.Join(templates, "base", "compose.base.yml")
	rendered, err := renderFile(basePath, data)
	if err != nil {
		return err
	}

	merged := map[string]any{}
	if err := yaml.Unmarshal([]byte(rendered), &merged); err != nil {
		return err
	}

	for _, service := range enabledServices {
		svcPath := filepath.Join(templates, "services", service, "compose.yml")
		if _, err := os.Stat(svcPath); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		svcRendered, err := renderFile(svcPath, data)
		if err != nil {
			return fmt.Errorf("render service %s compose: %w", service, err)
		}
		var overlay map[string]any
		if err := yaml.Unmarshal([]byte(svcRendered), &overlay); err != nil {
			return fmt.Errorf("parse service %s compose: %w", service, err)
		}
		deepMerge(merged, overlay)
	}

	if _, ok := merged["x-labctl"]; !ok {
		merged["x-labctl"] = map[string]any{}
	}
	x := merged["x-labctl"].(map[string]any)
	x["enabled_services"] = enabledServices
	x["generated_at"] = time.Now().UTC().Format(time.RFC3339)

	out, err := yaml.Marshal(merged)
	if err != nil {
		return err
	}

	target := filepath.Join(paths.StackRoot, "compose.yml")
	if err := ensureDir(paths.StackRoot, 0o750); err != nil {
		return err
	}
	return os.WriteFile(target, out, 0o640)
}

func deepMerge(dst, src map[string]any) {
	for k, v := range src {
		existing, exists := dst[k]
		if !exists {
			dst[k] = v
			continue
		}

		dstMap, dstMapOK := existing.(map[string]any)
		srcMap, srcMapOK := v.(map[string]any)
		if dstMapOK && srcMapOK {
			deepMerge(dstMap, srcMap)
			continue
		}

		dstSlice, dstSliceOK := existing.([]any)
		srcSlice, srcSliceOK := v.([]any)
		if dstSliceOK && srcSliceOK {
			dst[k] = append(dstSlice, srcSlice...)
			continue
		}

		dst[k] = v
	}
}

// EnsureComposeOverride drops the operator-editable override file next to
// compose.yml once; subsequent runs leave local edits alone.
func EnsureComposeOverride(paths Paths) error {
	target := filepath.Join(paths.StackRoot, "compose.override.yml")
	if _, err := os.Stat(target); err == nil {
		return nil
	}

	tplPath := filepath.Join(findTemplatesDir(), "base", "compose.override.yml")
	content, err := os.ReadFile(tplPath)
	if err != nil {
		return err
	}
	return os.WriteFile(target, content, 0o640)
}

func ComposeBaseArgs(paths Paths) []string {
	return []string{
		"compose",
		"-f", filepath.Join(paths.StackRoot, "compose.yml"),
		"-f", filepath.Join(paths.StackRoot, "compose.override.yml"),
		"--env-file", paths.EnvFile(),
		"-p", composeProject,
	}
}

func ComposeServiceExists(paths Paths, service string) bool {
	args := ComposeBaseArgs(paths)
	args = append(args, "config", "--services")
	out, err := runCmdCapture("docker", args...)
	if err != nil {
		return false
	}
	return serviceListed(out, service)
}

// serviceListed reports whether a `config --services` listing names the
// service. Matches whole lines only.
func serviceListed(out, service string) bool {
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == service {
			return true
		}
	}
	return false
}

func ComposeServiceRunning(paths Paths, service string) bool {
	args := ComposeBaseArgs(paths)
	args = append(args, "ps", "-q", service)
	out, err := runCmdCapture("docker", args...)
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) != ""
}
