package labctl

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/google/uuid"
)

// Well-known UIDs baked into upstream images. These track the referenced
// image versions, not anything this tool decides; if an image changes its
// internal user, the matching constant changes with it.
const (
	grafanaUID = 472   // grafana/grafana
	nobodyUID  = 65534 // prom/prometheus runs as nobody
	lokiUID    = 10001 // grafana/loki
)

// OwnerInvoking marks a DirectorySpec whose ownership falls back to the
// invoking user rather than a fixed image UID.
const OwnerInvoking = -1

// DirectorySpec declares the target state of one host directory a service
// container mounts.
type DirectorySpec struct {
	Service string
	Rel     string
	UID     int
	GID     int
	Mode    os.FileMode
	Purpose string
}

// DirectorySpecs is the full provisioning table, rooted at Paths.DataRoot.
// Mismatched ownership here is the single most common way a container fails
// to write its mapped volume, which is why provisioning always converges
// ownership instead of only creating directories.
var DirectorySpecs = []DirectorySpec{
	{Service: "grafana", Rel: "grafana/data", UID: grafanaUID, GID: grafanaUID, Mode: 0o755, Purpose: "dashboards and sqlite state"},
	{Service: "grafana", Rel: "grafana/provisioning", UID: grafanaUID, GID: grafanaUID, Mode: 0o755, Purpose: "datasource and dashboard provisioning"},
	{Service: "prometheus", Rel: "prometheus/data", UID: nobodyUID, GID: nobodyUID, Mode: 0o755, Purpose: "TSDB blocks"},
	{Service: "prometheus", Rel: "prometheus/config", UID: OwnerInvoking, GID: OwnerInvoking, Mode: 0o755, Purpose: "scrape config"},
	{Service: "loki", Rel: "loki/data", UID: lokiUID, GID: lokiUID, Mode: 0o755, Purpose: "chunks and index"},
	{Service: "loki", Rel: "loki/config", UID: OwnerInvoking, GID: OwnerInvoking, Mode: 0o755, Purpose: "loki config"},
	{Service: "promtail", Rel: "promtail/positions", UID: OwnerInvoking, GID: OwnerInvoking, Mode: 0o755, Purpose: "tail offsets"},
	{Service: "otel-collector", Rel: "otel-collector/config", UID: OwnerInvoking, GID: OwnerInvoking, Mode: 0o755, Purpose: "collector pipeline config"},
	{Service: "ntopng", Rel: "ntopng/data", UID: OwnerInvoking, GID: OwnerInvoking, Mode: 0o755, Purpose: "flow history"},
	{Service: "portainer", Rel: "portainer/data", UID: OwnerInvoking, GID: OwnerInvoking, Mode: 0o755, Purpose: "portainer state"},
	{Service: "nginx-proxy-manager", Rel: "npm/data", UID: OwnerInvoking, GID: OwnerInvoking, Mode: 0o755, Purpose: "proxy hosts"},
	{Service: "nginx-proxy-manager", Rel: "npm/letsencrypt", UID: OwnerInvoking, GID: OwnerInvoking, Mode: 0o755, Purpose: "certificates"},
	{Service: "jellyfin", Rel: "jellyfin/config", UID: OwnerInvoking, GID: OwnerInvoking, Mode: 0o755, Purpose: "server config"},
	{Service: "jellyfin", Rel: "jellyfin/cache", UID: OwnerInvoking, GID: OwnerInvoking, Mode: 0o755, Purpose: "transcode cache"},
}

// Owner is the resolved invoking-user fallback for OwnerInvoking specs.
type Owner struct {
	UID int
	GID int
}

// ResolveOwner turns host facts (or an explicit username, for the case where
// the invoking identity is root on behalf of someone else) into the fallback
// owner.
func ResolveOwner(facts HostFacts, username string) (Owner, error) {
	if username != "" {
		u, err := user.Lookup(username)
		if err != nil {
			return Owner{}, fmt.Errorf("resolve user %s: %w", username, err)
		}
		uid, err := strconv.Atoi(u.Uid)
		if err != nil {
			return Owner{}, fmt.Errorf("resolve user %s: %w", username, err)
		}
		gid, err := strconv.Atoi(u.Gid)
		if err != nil {
			return Owner{}, fmt.Errorf("resolve user %s: %w", username, err)
		}
		return Owner{UID: uid, GID: gid}, nil
	}

	uid, err := strconv.Atoi(facts.PUID)
	if err != nil {
		return Owner{}, fmt.Errorf("invalid PUID %q", facts.PUID)
	}
	gid, err := strconv.Atoi(facts.PGID)
	if err != nil {
		return Owner{}, fmt.Errorf("invalid PGID %q", facts.PGID)
	}
	return Owner{UID: uid, GID: gid}, nil
}

// CheckPrivilege verifies the process can actually change ownership to the
// UIDs the table declares. Only root can chown to arbitrary users.
func CheckPrivilege(specs []DirectorySpec, owner Owner) error {
	if os.Geteuid() == 0 {
		return nil
	}
	for _, spec := range specs {
		uid, gid := specOwner(spec, owner)
		if uid != os.Geteuid() || gid != os.Getegid() {
			return &PrivilegeError{Op: fmt.Sprintf("changing ownership of %s to %d:%d", spec.Rel, uid, gid)}
		}
	}
	return nil
}

// Outcome classifies what provisioning did to one directory.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeFixed
	OutcomeUnchanged
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeFixed:
		return "fixed"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// ProvisionResult is the per-spec outcome of a provisioning run.
type ProvisionResult struct {
	Spec    DirectorySpec
	Path    string
	Outcome Outcome
	Err     error
}

// ProvisionReport aggregates one run. Nothing outlives the process; the
// report exists for console output and logging.
type ProvisionReport struct {
	RunID   string
	Results []ProvisionResult
}

func (r ProvisionReport) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

func (r ProvisionReport) Failed() []ProvisionResult {
	var failed []ProvisionResult
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Provision converges every entry of the spec table under the data root.
// Each entry is handled independently: a failure is recorded and the batch
// continues, since partially provisioned is strictly more useful than not
// provisioned and re-running is always safe.
func Provision(paths Paths, specs []DirectorySpec, owner Owner) ProvisionReport {
	report := ProvisionReport{RunID: uuid.New().String()[:8]}
	for _, spec := range specs {
		res := provisionOne(paths, spec, owner)
		logResult(report.RunID, res)
		report.Results = append(report.Results, res)
	}
	return report
}

func provisionOne(paths Paths, spec DirectorySpec, owner Owner) ProvisionResult {
	path := filepath.Join(paths.DataRoot, spec.Rel)
	res := ProvisionResult{Spec: spec, Path: path}
	uid, gid := specOwner(spec, owner)

	existed, prevUID, prevGID, prevMode, err := statOwnership(path)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = &ProvisionError{Path: path, Err: err}
		return res
	}

	if !existed {
		if err := os.MkdirAll(path, spec.Mode); err != nil {
			res.Outcome = OutcomeFailed
			res.Err = &ProvisionError{Path: path, Err: err}
			return res
		}
	}

	// Ownership and mode are reasserted even on pre-existing directories:
	// the converged state is the contract, not first-time creation.
	if err := os.Chown(path, uid, gid); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = &ProvisionError{Path: path, Err: err}
		return res
	}
	if err := os.Chmod(path, spec.Mode); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = &ProvisionError{Path: path, Err: err}
		return res
	}

	switch {
	case !existed:
		res.Outcome = OutcomeCreated
	case prevUID != uid || prevGID != gid || prevMode != spec.Mode:
		res.Outcome = OutcomeFixed
	default:
		res.Outcome = OutcomeUnchanged
	}
	return res
}

func specOwner(spec DirectorySpec, owner Owner) (int, int) {
	uid, gid := spec.UID, spec.GID
	if uid == OwnerInvoking {
		uid = owner.UID
	}
	if gid == OwnerInvoking {
		gid = owner.GID
	}
	return uid, gid
}

func statOwnership(path string) (existed bool, uid, gid int, mode os.FileMode, err error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return false, 0, 0, 0, nil
		}
		return false, 0, 0, 0, statErr
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return true, 0, 0, info.Mode().Perm(), nil
	}
	return true, int(st.Uid), int(st.Gid), info.Mode().Perm(), nil
}

func logResult(runID string, res ProvisionResult) {
	ev := log.Info()
	if res.Err != nil {
		ev = log.Error().Err(res.Err)
	}
	ev.Str("run_id", runID).
		Str("service", res.Spec.Service).
		Str("path", res.Path).
		Str("outcome", res.Outcome.String()).
		Msg("provision")
}
