package labctl

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
)

// CheckResult is one preflight check outcome. Fatal checks gate the
// bootstrap: without a container runtime or root there is nothing useful to
// do, while the rest are warnings the operator may accept.
type CheckResult struct {
	Name  string
	OK    bool
	Fatal bool
	Err   error
}

// RunChecks runs the host sanity checks shared by `labctl doctor` and the
// wizard's preflight screen.
func RunChecks(paths Paths) []CheckResult {
	checks := []struct {
		name  string
		fatal bool
		fn    func() error
	}{
		{"docker binary", true, func() error {
			if _, err := exec.LookPath("docker"); err != nil {
				return ErrRuntimeMissing
			}
			return nil
		}},
		{"docker compose plugin", true, func() error {
			if _, err := runCmdCapture("docker", "compose", "version"); err != nil {
				return ErrRuntimeMissing
			}
			return nil
		}},
		{"docker daemon reachable", false, func() error {
			_, err := runCmdCapture("docker", "info")
			return err
		}},
		{"running as root", true, func() error {
			if os.Geteuid() != 0 {
				return &PrivilegeError{Op: "changing directory ownership"}
			}
			return nil
		}},
		{paths.StackRoot + " writable", false, func() error {
			return writableCheck(paths.StackRoot)
		}},
		{paths.DataRoot + " writable", false, func() error {
			return writableCheck(paths.DataRoot)
		}},
		{"disk space >= 10GiB", false, func() error {
			return diskCheck(paths.DataRoot, 10)
		}},
		{"stack ports free", false, func() error {
			return portCheck([]string{":80 ", ":443 ", ":3000 ", ":9090 "})
		}},
	}

	results := make([]CheckResult, 0, len(checks))
	for _, c := range checks {
		err := c.fn()
		results = append(results, CheckResult{Name: c.name, OK: err == nil, Fatal: c.fatal, Err: err})
	}
	return results
}

// RunDoctor prints the check table. Doctor itself never fails the process;
// it exists to tell the operator what setup would complain about.
func RunDoctor(paths Paths) error {
	fmt.Println("labctl doctor")
	fmt.Printf("runtime: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	for _, r := range RunChecks(paths) {
		if r.OK {
			fmt.Printf("[ OK ] %s\n", r.Name)
		} else {
			fmt.Printf("[WARN] %s: %v\n", r.Name, r.Err)
		}
	}
	return nil
}

func writableCheck(dir string) error {
	if err := ensureDir(dir, 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "labctl-write-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}

func diskCheck(path string, minGiB uint64) error {
	if err := ensureDir(path, 0o750); err != nil {
		return err
	}
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return err
	}
	free := (stat.Bavail * uint64(stat.Bsize)) / (1024 * 1024 * 1024)
	if free < minGiB {
		return fmt.Errorf("free space %dGiB < %dGiB", free, minGiB)
	}
	return nil
}

func portCheck(needles []string) error {
	out, err := runCmdCapture("ss", "-ltn")
	if err != nil {
		return err
	}
	var busy []string
	for _, needle := range needles {
		if strings.Contains(out, needle) {
			busy = append(busy, strings.TrimSpace(needle))
		}
	}
	if len(busy) > 0 {
		return fmt.Errorf("ports already in use: %s", strings.Join(busy, ", "))
	}
	return nil
}
