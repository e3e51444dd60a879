package labctl

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultStackRoot  = "/opt/homelab"
	defaultDataRoot   = "/opt/homelab/data"
	defaultBackupRoot = "/opt/homelab/backups"
)

// Paths locates the stack on disk. Overridable through LABCTL_* variables,
// mainly for tests and non-standard layouts.
type Paths struct {
	StackRoot  string
	DataRoot   string
	BackupRoot string
}

func LoadPaths() Paths {
	return Paths{
		StackRoot:  envOr("LABCTL_STACK_ROOT", defaultStackRoot),
		DataRoot:   envOr("LABCTL_DATA_ROOT", defaultDataRoot),
		BackupRoot: envOr("LABCTL_BACKUP_ROOT", defaultBackupRoot),
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (p Paths) EnvFile() string { return filepath.Join(p.StackRoot, ".env") }

func (p Paths) RenderData() RenderData {
	return RenderData{
		NetworkName: "homelab_net",
		StackRoot:   p.StackRoot,
		DataRoot:    p.DataRoot,
		BackupRoot:  p.BackupRoot,
	}
}

// StackConfig is the configuration record the wizard builds and the emitter
// serializes. Keys are fixed and enumerable; see ConfigFields.
type StackConfig map[string]string

// FieldKind selects the validation rule for a configuration key.
type FieldKind int

const (
	KindText FieldKind = iota
	KindIPv4
	KindDuration
	KindPort
	KindURL
	KindPath
	KindID
	KindSecret
)

// Field describes one configuration key: where it lives in the emitted file,
// how it is presented, and how answers are validated.
type Field struct {
	Key     string
	Section string
	Label   string
	Help    string
	Kind    FieldKind
	// Default derives the pre-filled value from detected host facts. A nil
	// Default means the static placeholder below is used.
	Default func(HostFacts) string
	Static  string
}

// ConfigFields is the full ordered key set consumed by the compose stack.
// Emission order follows this table exactly, so output is stable for diffing.
var ConfigFields = []Field{
	{
		Key: "NETWORK_INTERFACE", Section: "Network", Label: "Network interface",
		Help: "Host interface ntopng captures packets from.",
		Kind: KindText,
		Default: func(f HostFacts) string { return f.Interface },
	},
	{
		Key: "SERVER_IP", Section: "Network", Label: "Server IP",
		Help: "Primary IPv4 address services are published on.",
		Kind: KindIPv4,
		Default: func(f HostFacts) string { return f.ServerIP },
	},
	{
		Key: "PUID", Section: "Identity", Label: "User ID (PUID)",
		Help: "Owner of service data written to host volumes.",
		Kind: KindID,
		Default: func(f HostFacts) string { return f.PUID },
	},
	{
		Key: "PGID", Section: "Identity", Label: "Group ID (PGID)",
		Help: "Group of service data written to host volumes.",
		Kind: KindID,
		Default: func(f HostFacts) string { return f.PGID },
	},
	{
		Key: "TZ", Section: "Identity", Label: "Timezone",
		Help: "IANA timezone passed to every container.",
		Kind: KindText,
		Default: func(f HostFacts) string { return f.Timezone },
	},
	{
		Key: "GRAFANA_ADMIN_USER", Section: "Grafana", Label: "Grafana admin user",
		Kind: KindText, Static: "admin",
	},
	{
		Key: "GRAFANA_ADMIN_PASSWORD", Section: "Grafana", Label: "Grafana admin password",
		Help: "Leave empty to accept the generated password.",
		Kind: KindSecret,
	},
	{
		Key: "PROMETHEUS_RETENTION", Section: "Retention", Label: "Prometheus retention",
		Help: "How long Prometheus keeps samples (e.g. 15d).",
		Kind: KindDuration, Static: "15d",
	},
	{
		Key: "LOKI_RETENTION_PERIOD", Section: "Retention", Label: "Loki retention",
		Help: "How long Loki keeps log streams (e.g. 720h).",
		Kind: KindDuration, Static: "720h",
	},
	{
		Key: "NTOPNG_HTTP_PORT", Section: "Services", Label: "ntopng HTTP port",
		Kind: KindPort, Static: "3001",
	},
	{
		Key: "JELLYFIN_PUBLISHED_URL", Section: "Services", Label: "Jellyfin published URL",
		Help: "URL Jellyfin advertises to clients.",
		Kind: KindURL,
		Default: func(f HostFacts) string {
			if f.ServerIP == "" {
				return ""
			}
			return "http://" + f.ServerIP + ":8096"
		},
	},
	{
		Key: "MEDIA_MOVIES", Section: "Media", Label: "Movies library",
		Kind: KindPath, Static: "/mnt/media/movies",
	},
	{
		Key: "MEDIA_TV", Section: "Media", Label: "TV library",
		Kind: KindPath, Static: "/mnt/media/tv",
	},
	{
		Key: "MEDIA_MUSIC", Section: "Media", Label: "Music library",
		Kind: KindPath, Static: "/mnt/media/music",
	},
	{
		Key: "MEDIA_PHOTOS", Section: "Media", Label: "Photos library",
		Kind: KindPath, Static: "/mnt/media/photos",
	},
	{
		Key: "OTEL_EXPORTER_OTLP_ENDPOINT", Section: "Telemetry", Label: "OTLP endpoint",
		Help: "Where instrumented services send traces and metrics.",
		Kind: KindURL, Static: "http://otel-collector:4317",
	},
}

// FieldByKey looks a field up in ConfigFields. Panics on unknown keys since
// the table is the single source of truth for the key set.
func FieldByKey(key string) Field {
	for _, f := range ConfigFields {
		if f.Key == key {
			return f
		}
	}
	panic("labctl: unknown config key " + key)
}

// FieldDefault resolves the pre-filled value for a field.
func FieldDefault(f Field, facts HostFacts) string {
	if f.Default != nil {
		if v := f.Default(facts); v != "" {
			return v
		}
	}
	return f.Static
}

var (
	ipv4Re     = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})$`)
	durationRe = regexp.MustCompile(`^[0-9]+(ms|s|m|h|d|w|y)$`)
)

// ValidateField checks a candidate value against the field's kind. Path
// fields validate as advisory only: a missing directory is the caller's
// decision to create or keep.
func ValidateField(f Field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%s must not be empty", f.Key)
	}

	switch f.Kind {
	case KindIPv4:
		m := ipv4Re.FindStringSubmatch(value)
		if m == nil {
			return fmt.Errorf("not a dotted-quad IPv4 address")
		}
		for _, octet := range m[1:] {
			n, err := strconv.Atoi(octet)
			if err != nil || n > 255 {
				return fmt.Errorf("octet %s out of range 0-255", octet)
			}
		}
	case KindDuration:
		if !durationRe.MatchString(value) {
			return fmt.Errorf("not a duration (expected e.g. 15d or 720h)")
		}
	case KindPort:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("not a port number (1-65535)")
		}
	case KindURL:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("not an http(s) URL")
		}
	case KindID:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("not a numeric ID")
		}
	case KindSecret:
		if len(value) < 8 {
			return fmt.Errorf("too short (minimum 8 characters)")
		}
	}
	return nil
}

// ValidateConfig checks that every key in the table is present with a valid
// value. The emitter refuses incomplete records.
func ValidateConfig(cfg StackConfig) error {
	for _, f := range ConfigFields {
		if err := ValidateField(f, cfg[f.Key]); err != nil {
			return fmt.Errorf("%s: %w", f.Key, err)
		}
	}
	return nil
}

// ReadEnvFile parses a key=value file with #-comments and blank lines.
func ReadEnvFile(path string) (StackConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	vars := StackConfig{}
	s := bufio.NewScanner(file)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		k := strings.TrimSpace(parts[0])
		v := strings.Trim(strings.TrimSpace(parts[1]), "\"")
		vars[k] = v
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}
