package labctl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// RenderData is what compose and config templates see. Service-level
// settings stay as ${VAR} references resolved by compose from the env file;
// templates only need the topology.
type RenderData struct {
	NetworkName string
	StackRoot   string
	DataRoot    string
	BackupRoot  string
}

func renderFile(path string, data RenderData) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return renderString(string(content), data)
}

func renderString(content string, data RenderData) (string, error) {
	tmpl, err := template.New("").Option("missingkey=error").Parse(content)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func findTemplatesDir() string {
	if custom := strings.TrimSpace(os.Getenv("LABCTL_TEMPLATES")); custom != "" {
		return custom
	}

	exe, err := os.Executable()
	if err == nil {
		binDir := filepath.Dir(exe)
		candidates := []string{
			filepath.Join(binDir, "..", "templates"),
			filepath.Join(binDir, "templates"),
		}
		for _, c := range candidates {
			if DirExists(c) {
				return c
			}
		}
	}

	cwd, err := os.Getwd()
	if err == nil {
		c := filepath.Join(cwd, "templates")
		if DirExists(c) {
			return c
		}
	}

	home, _ := os.UserHomeDir()
	fallbacks := []string{
		"/usr/local/share/labctl/templates",
		filepath.Join(home, ".labctl", "repo", "templates"),
	}
	for _, c := range fallbacks {
		if DirExists(c) {
			return c
		}
	}
	return "templates"
}
