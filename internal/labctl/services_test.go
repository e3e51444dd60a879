package labctl

import (
	"reflect"
	"sort"
	"testing"
)

func TestAddServiceDependencies(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"grafana drags storage", []string{"grafana"}, []string{"grafana", "loki", "prometheus"}},
		{"promtail drags loki", []string{"promtail"}, []string{"loki", "promtail"}},
		{"no deps", []string{"portainer"}, []string{"portainer"}},
		{"already satisfied", []string{"grafana", "prometheus", "loki"}, []string{"grafana", "loki", "prometheus"}},
		{"empty", nil, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AddServiceDependencies(tc.in)
			sort.Strings(got)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("AddServiceDependencies(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestEnabledRoundTrip(t *testing.T) {
	paths := Paths{StackRoot: t.TempDir()}
	in := EnabledConfig{Services: []string{"portainer", "grafana", "jellyfin"}}

	if err := WriteEnabled(paths, in); err != nil {
		t.Fatalf("WriteEnabled: %v", err)
	}

	out, err := LoadEnabled(paths)
	if err != nil {
		t.Fatalf("LoadEnabled: %v", err)
	}
	want := []string{"grafana", "jellyfin", "portainer"}
	if !reflect.DeepEqual(out.Services, want) {
		t.Errorf("round trip = %v, want %v (sorted)", out.Services, want)
	}
}

func TestLoadEnabledServicesDropsUnknownAddsDeps(t *testing.T) {
	paths := Paths{StackRoot: t.TempDir()}
	in := EnabledConfig{Services: []string{"grafana", "minecraft", "portainer"}}
	if err := WriteEnabled(paths, in); err != nil {
		t.Fatal(err)
	}

	got, err := LoadEnabledServices(paths)
	if err != nil {
		t.Fatalf("LoadEnabledServices: %v", err)
	}
	want := []string{"grafana", "loki", "portainer", "prometheus"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadEnabledServices = %v, want %v", got, want)
	}
}

func TestDefaultServicesAreKnown(t *testing.T) {
	for _, s := range DefaultServices {
		if _, ok := ServiceCatalog[s]; !ok {
			t.Errorf("default service %q not in catalog", s)
		}
	}
	for svc, deps := range ServiceDependencies {
		if _, ok := ServiceCatalog[svc]; !ok {
			t.Errorf("dependency source %q not in catalog", svc)
		}
		for _, dep := range deps {
			if _, ok := ServiceCatalog[dep]; !ok {
				t.Errorf("dependency %q of %q not in catalog", dep, svc)
			}
		}
	}
}
