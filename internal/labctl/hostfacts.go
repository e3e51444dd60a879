package labctl

import (
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// HostFacts is a snapshot of the ambient host state taken once at startup.
// Empty fields mean the fact could not be detected and the wizard must ask.
type HostFacts struct {
	Interface      string
	ServerIP       string
	PUID           string
	PGID           string
	Timezone       string
	DockerVersion  string
	ComposeVersion string
}

// RuntimePresent reports whether a usable docker + compose installation was
// found. Its absence is advisory at detection time and fatal at bootstrap time.
func (f HostFacts) RuntimePresent() bool {
	return f.DockerVersion != "" && f.ComposeVersion != ""
}

// DetectHostFacts inspects the live host. Individual detection failures
// degrade to empty defaults rather than errors; the configurator prompts for
// anything missing.
func DetectHostFacts() HostFacts {
	facts := HostFacts{
		Timezone: detectTimezone(),
	}
	facts.PUID, facts.PGID = invokingIDs()
	facts.Interface = defaultRouteInterface()
	if facts.Interface != "" {
		facts.ServerIP = interfaceIPv4(facts.Interface)
	}
	facts.DockerVersion, facts.ComposeVersion = detectDocker()

	log.Debug().
		Str("interface", facts.Interface).
		Str("server_ip", facts.ServerIP).
		Str("tz", facts.Timezone).
		Str("docker", facts.DockerVersion).
		Str("compose", facts.ComposeVersion).
		Msg("host facts detected")
	return facts
}

func defaultRouteInterface() string {
	data, err := os.ReadFile("/proc/net/route")
	if err != nil {
		return ""
	}
	return routeInterface(string(data))
}

// routeInterface picks the interface of the default route (destination
// 00000000 with the RTF_UP flag) out of /proc/net/route content.
func routeInterface(data string) string {
	for i, line := range strings.Split(data, "\n") {
		if i == 0 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		if fields[1] != "00000000" {
			continue
		}
		flags, err := strconv.ParseUint(fields[3], 16, 64)
		if err != nil || flags&0x1 == 0 {
			continue
		}
		return fields[0]
	}
	return ""
}

func interfaceIPv4(name string) string {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return ""
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return ""
}

// invokingIDs resolves the operator's UID/GID. Under sudo the real identity
// is in SUDO_UID/SUDO_GID; the container volumes should belong to that user,
// not to root.
func invokingIDs() (string, string) {
	uid := strings.TrimSpace(os.Getenv("SUDO_UID"))
	gid := strings.TrimSpace(os.Getenv("SUDO_GID"))
	if uid != "" && gid != "" {
		return uid, gid
	}
	return strconv.Itoa(os.Getuid()), strconv.Itoa(os.Getgid())
}

func detectTimezone() string {
	if tz := strings.TrimSpace(os.Getenv("TZ")); tz != "" {
		return tz
	}
	if data, err := os.ReadFile("/etc/timezone"); err == nil {
		if tz := strings.TrimSpace(string(data)); tz != "" {
			return tz
		}
	}
	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if tz := timezoneFromLink(target); tz != "" {
			return tz
		}
	}
	return "UTC"
}

func timezoneFromLink(target string) string {
	const marker = "zoneinfo/"
	idx := strings.LastIndex(target, marker)
	if idx < 0 {
		return ""
	}
	return target[idx+len(marker):]
}

func detectDocker() (string, string) {
	if _, err := exec.LookPath("docker"); err != nil {
		return "", ""
	}
	dockerVer := ""
	if out, err := runCmdCapture("docker", "--version"); err == nil {
		dockerVer = parseDockerVersion(out)
	}
	composeVer := ""
	if out, err := runCmdCapture("docker", "compose", "version", "--short"); err == nil {
		composeVer = strings.TrimSpace(out)
	}
	return dockerVer, composeVer
}

// parseDockerVersion extracts "27.3.1" from
// "Docker version 27.3.1, build ce12230".
func parseDockerVersion(out string) string {
	fields := strings.Fields(out)
	for i, f := range fields {
		if f == "version" && i+1 < len(fields) {
			return strings.TrimSuffix(fields[i+1], ",")
		}
	}
	return strings.TrimSpace(out)
}
