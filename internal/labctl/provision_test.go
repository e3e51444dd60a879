package labctl

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func testOwner() Owner {
	return Owner{UID: os.Getuid(), GID: os.Getgid()}
}

// invokingSpecs is a table an unprivileged test can converge: everything
// owned by the invoking user.
func invokingSpecs() []DirectorySpec {
	return []DirectorySpec{
		{Service: "prometheus", Rel: "prometheus/config", UID: OwnerInvoking, GID: OwnerInvoking, Mode: 0o755},
		{Service: "jellyfin", Rel: "jellyfin/config", UID: OwnerInvoking, GID: OwnerInvoking, Mode: 0o755},
	}
}

func TestProvisionCreates(t *testing.T) {
	paths := Paths{DataRoot: t.TempDir()}

	report := Provision(paths, invokingSpecs(), testOwner())
	if got := report.Count(OutcomeCreated); got != 2 {
		t.Fatalf("created = %d, want 2", got)
	}

	for _, spec := range invokingSpecs() {
		path := filepath.Join(paths.DataRoot, spec.Rel)
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Mode().Perm() != 0o755 {
			t.Errorf("%s mode = %o, want 755", path, info.Mode().Perm())
		}
	}
}

func TestProvisionIdempotent(t *testing.T) {
	paths := Paths{DataRoot: t.TempDir()}
	specs := invokingSpecs()

	Provision(paths, specs, testOwner())
	report := Provision(paths, specs, testOwner())

	if got := report.Count(OutcomeCreated); got != 0 {
		t.Errorf("second run created = %d, want 0", got)
	}
	if got := report.Count(OutcomeUnchanged); got != len(specs) {
		t.Errorf("second run unchanged = %d, want %d", got, len(specs))
	}
}

func TestProvisionConvergesMode(t *testing.T) {
	paths := Paths{DataRoot: t.TempDir()}
	specs := invokingSpecs()[:1]

	// Pre-create with the wrong mode; provisioning must fix, not skip.
	path := filepath.Join(paths.DataRoot, specs[0].Rel)
	if err := os.MkdirAll(path, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0o700); err != nil {
		t.Fatal(err)
	}

	report := Provision(paths, specs, testOwner())
	if got := report.Results[0].Outcome; got != OutcomeFixed {
		t.Errorf("outcome = %s, want fixed", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %o, want 755 after convergence", info.Mode().Perm())
	}
}

func TestProvisionContinuesPastFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can write anywhere; unwritable-parent case needs an unprivileged run")
	}
	paths := Paths{DataRoot: t.TempDir()}

	// First entry lands under an unwritable parent, second must still
	// converge.
	blocked := filepath.Join(paths.DataRoot, "blocked")
	if err := os.MkdirAll(blocked, 0o555); err != nil {
		t.Fatal(err)
	}
	specs := []DirectorySpec{
		{Service: "a", Rel: "blocked/child", UID: OwnerInvoking, GID: OwnerInvoking, Mode: 0o755},
		{Service: "b", Rel: "ok/child", UID: OwnerInvoking, GID: OwnerInvoking, Mode: 0o755},
	}

	report := Provision(paths, specs, testOwner())
	if got := report.Count(OutcomeFailed); got != 1 {
		t.Fatalf("failed = %d, want 1", got)
	}
	if got := report.Count(OutcomeCreated); got != 1 {
		t.Errorf("created = %d, want 1 (batch must continue past a failure)", got)
	}
	if report.Failed()[0].Err == nil {
		t.Error("failed result carries no error")
	}
}

func TestProvisionFixedUIDConvergence(t *testing.T) {
	if os.Geteuid() != 0 {
		t.Skip("chown to a fixed image UID requires root")
	}
	paths := Paths{DataRoot: t.TempDir()}
	specs := []DirectorySpec{
		{Service: "grafana", Rel: "grafana/data", UID: grafanaUID, GID: grafanaUID, Mode: 0o755},
	}

	report := Provision(paths, specs, testOwner())
	if got := report.Results[0].Outcome; got != OutcomeCreated {
		t.Fatalf("outcome = %s, want created", got)
	}

	path := filepath.Join(paths.DataRoot, "grafana", "data")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	st := info.Sys().(*syscall.Stat_t)
	if st.Uid != grafanaUID || st.Gid != grafanaUID {
		t.Errorf("ownership = %d:%d, want %d:%d", st.Uid, st.Gid, grafanaUID, grafanaUID)
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %o, want 755", info.Mode().Perm())
	}
}

func TestResolveOwner(t *testing.T) {
	facts := HostFacts{PUID: "1000", PGID: "1000"}
	owner, err := ResolveOwner(facts, "")
	if err != nil {
		t.Fatalf("ResolveOwner: %v", err)
	}
	if owner.UID != 1000 || owner.GID != 1000 {
		t.Errorf("owner = %d:%d, want 1000:1000", owner.UID, owner.GID)
	}

	if _, err := ResolveOwner(HostFacts{PUID: "x", PGID: "1000"}, ""); err == nil {
		t.Error("ResolveOwner accepted a non-numeric PUID")
	}
	if _, err := ResolveOwner(facts, "no-such-user-should-exist-here"); err == nil {
		t.Error("ResolveOwner accepted an unknown username")
	}
}

func TestCheckPrivilege(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("privilege check is a no-op for root")
	}

	fixed := []DirectorySpec{{Service: "grafana", Rel: "grafana/data", UID: grafanaUID, GID: grafanaUID, Mode: 0o755}}
	err := CheckPrivilege(fixed, testOwner())
	if err == nil {
		t.Fatal("CheckPrivilege allowed chown to a fixed UID without root")
	}
	if ExitCode(err) != ExitPrivilege {
		t.Errorf("ExitCode = %d, want %d", ExitCode(err), ExitPrivilege)
	}

	if err := CheckPrivilege(invokingSpecs(), testOwner()); err != nil {
		t.Errorf("CheckPrivilege rejected self-owned specs: %v", err)
	}
}
