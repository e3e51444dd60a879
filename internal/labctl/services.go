package labctl

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type ServiceInfo struct {
	Name        string
	Description string
	Ports       []string
	Category    string
}

// ServiceCatalog lists every service the stack can run. The wizard and the
// enable/disable commands toggle against this set.
var ServiceCatalog = map[string]ServiceInfo{
	"grafana": {
		Name:        "grafana",
		Description: "Dashboards over Prometheus and Loki",
		Ports:       []string{"3000"},
		Category:    "Observability",
	},
	"prometheus": {
		Name:        "prometheus",
		Description: "Metrics scraping and storage",
		Ports:       []string{"9090"},
		Category:    "Observability",
	},
	"loki": {
		Name:        "loki",
		Description: "Log aggregation",
		Ports:       []string{"3100"},
		Category:    "Observability",
	},
	"promtail": {
		Name:        "promtail",
		Description: "Ships host and container logs to Loki",
		Ports:       []string{},
		Category:    "Observability",
	},
	"otel-collector": {
		Name:        "otel-collector",
		Description: "OpenTelemetry trace/metric ingest",
		Ports:       []string{"4317", "4318"},
		Category:    "Observability",
	},
	"node-exporter": {
		Name:        "node-exporter",
		Description: "Host metrics exporter",
		Ports:       []string{"9100"},
		Category:    "Observability",
	},
	"cadvisor": {
		Name:        "cadvisor",
		Description: "Per-container resource metrics",
		Ports:       []string{"8080"},
		Category:    "Observability",
	},
	"ntopng": {
		Name:        "ntopng",
		Description: "Network traffic inspection",
		Ports:       []string{"${NTOPNG_HTTP_PORT}"},
		Category:    "Network",
	},
	"nginx-proxy-manager": {
		Name:        "nginx-proxy-manager",
		Description: "Reverse proxy with a web UI",
		Ports:       []string{"80", "443", "81"},
		Category:    "Network",
	},
	"portainer": {
		Name:        "portainer",
		Description: "Container management UI",
		Ports:       []string{"9443"},
		Category:    "Management",
	},
	"jellyfin": {
		Name:        "jellyfin",
		Description: "Media server",
		Ports:       []string{"8096"},
		Category:    "Media",
	},
}

// ServiceDependencies: enabling a service drags in what it cannot work
// without.
var ServiceDependencies = map[string][]string{
	"grafana":       {"prometheus", "loki"},
	"promtail":      {"loki"},
	"node-exporter": {"prometheus"},
	"cadvisor":      {"prometheus"},
}

// DefaultServices is the selection the wizard pre-checks.
var DefaultServices = []string{
	"grafana", "prometheus", "loki", "promtail",
	"node-exporter", "cadvisor", "portainer",
}

type EnabledConfig struct {
	Services []string `yaml:"services"`
}

func enabledPath(paths Paths) string {
	return filepath.Join(paths.StackRoot, "enabled.yml")
}

func LoadEnabled(paths Paths) (EnabledConfig, error) {
	b, err := os.ReadFile(enabledPath(paths))
	if err != nil {
		return EnabledConfig{}, err
	}
	var conf EnabledConfig
	if err := yaml.Unmarshal(b, &conf); err != nil {
		return EnabledConfig{}, err
	}
	return conf, nil
}

func WriteEnabled(paths Paths, conf EnabledConfig) error {
	sort.Strings(conf.Services)
	out, err := yaml.Marshal(conf)
	if err != nil {
		return err
	}
	if err := ensureDir(paths.StackRoot, 0o750); err != nil {
		return err
	}
	return os.WriteFile(enabledPath(paths), out, 0o640)
}

// LoadEnabledServices returns the enabled set with unknown names dropped and
// dependencies resolved, sorted.
func LoadEnabledServices(paths Paths) ([]string, error) {
	enabled, err := LoadEnabled(paths)
	if err != nil {
		return nil, err
	}

	svcs := make([]string, 0, len(enabled.Services))
	for _, s := range enabled.Services {
		if _, ok := ServiceCatalog[s]; ok {
			svcs = append(svcs, s)
		}
	}
	svcs = AddServiceDependencies(svcs)
	sort.Strings(svcs)
	return svcs, nil
}

func AddServiceDependencies(services []string) []string {
	set := map[string]bool{}
	for _, s := range services {
		set[s] = true
	}
	for _, s := range services {
		for _, dep := range ServiceDependencies[s] {
			set[dep] = true
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}

func SortedServiceNames() []string {
	names := make([]string, 0, len(ServiceCatalog))
	for name := range ServiceCatalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func servicePorts(name string) string {
	s, ok := ServiceCatalog[name]
	if !ok || len(s.Ports) == 0 {
		return "-"
	}
	return strings.Join(s.Ports, ",")
}
