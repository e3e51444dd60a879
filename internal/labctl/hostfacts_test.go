package labctl

import "testing"

const sampleRouteTable = `Iface	Destination	Gateway 	Flags	RefCnt	Use	Metric	Mask		MTU	Window	IRTT
eth0	00000000	0101A8C0	0003	0	0	100	00000000	0	0	0
eth0	0001A8C0	00000000	0001	0	0	100	00FFFFFF	0	0	0
docker0	000011AC	00000000	0001	0	0	0	0000FFFF	0	0	0
`

func TestRouteInterface(t *testing.T) {
	if got := routeInterface(sampleRouteTable); got != "eth0" {
		t.Errorf("routeInterface = %q, want eth0", got)
	}
}

func TestRouteInterfaceNoDefault(t *testing.T) {
	// Only link-local routes, no 00000000 destination.
	table := `Iface	Destination	Gateway 	Flags	RefCnt	Use	Metric	Mask		MTU	Window	IRTT
eth0	0001A8C0	00000000	0001	0	0	100	00FFFFFF	0	0	0
`
	if got := routeInterface(table); got != "" {
		t.Errorf("routeInterface = %q, want empty without a default route", got)
	}
}

func TestRouteInterfaceSkipsDownRoute(t *testing.T) {
	// Default route present but RTF_UP not set.
	table := `Iface	Destination	Gateway 	Flags	RefCnt	Use	Metric	Mask		MTU	Window	IRTT
wlan0	00000000	0101A8C0	0002	0	0	100	00000000	0	0	0
eth0	00000000	0101A8C0	0003	0	0	200	00000000	0	0	0
`
	if got := routeInterface(table); got != "eth0" {
		t.Errorf("routeInterface = %q, want eth0 (wlan0 route is down)", got)
	}
}

func TestTimezoneFromLink(t *testing.T) {
	cases := []struct {
		target string
		want   string
	}{
		{"/usr/share/zoneinfo/Europe/Berlin", "Europe/Berlin"},
		{"../usr/share/zoneinfo/UTC", "UTC"},
		{"/usr/share/zoneinfo/America/New_York", "America/New_York"},
		{"/etc/something-else", ""},
	}
	for _, tc := range cases {
		if got := timezoneFromLink(tc.target); got != tc.want {
			t.Errorf("timezoneFromLink(%q) = %q, want %q", tc.target, got, tc.want)
		}
	}
}

func TestParseDockerVersion(t *testing.T) {
	cases := []struct {
		out  string
		want string
	}{
		{"Docker version 27.3.1, build ce12230", "27.3.1"},
		{"Docker version 24.0.7, build afdd53b", "24.0.7"},
		{"27.3.1", "27.3.1"},
	}
	for _, tc := range cases {
		if got := parseDockerVersion(tc.out); got != tc.want {
			t.Errorf("parseDockerVersion(%q) = %q, want %q", tc.out, got, tc.want)
		}
	}
}

func TestRuntimePresent(t *testing.T) {
	if (HostFacts{}).RuntimePresent() {
		t.Error("empty facts report a present runtime")
	}
	if (HostFacts{DockerVersion: "27.3.1"}).RuntimePresent() {
		t.Error("docker without compose reports a present runtime")
	}
	if !(HostFacts{DockerVersion: "27.3.1", ComposeVersion: "2.29.0"}).RuntimePresent() {
		t.Error("full runtime reported missing")
	}
}
