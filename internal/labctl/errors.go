package labctl

import (
	"errors"
	"fmt"
)

// Exit codes, one per fatal failure class.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitRuntimeMissing = 2
	ExitPrivilege      = 3
	ExitWrite          = 4
	ExitProvision      = 5
)

// ErrRuntimeMissing means no usable container runtime was found on the host.
// Nothing downstream works without one, so callers abort immediately.
var ErrRuntimeMissing = errors.New("container runtime not found: install docker and the compose plugin (https://docs.docker.com/engine/install/)")

// PrivilegeError means an operation needed elevated rights the process lacks.
type PrivilegeError struct {
	Op string
}

func (e *PrivilegeError) Error() string {
	return fmt.Sprintf("%s requires root privileges: re-run with sudo", e.Op)
}

// WriteError means the configuration file could not be written. No partial
// output is left behind when this is returned.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ProvisionError is a per-directory provisioning failure. The batch continues
// past it; the command exit code reflects that at least one entry failed.
type ProvisionError struct {
	Path string
	Err  error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision %s: %v", e.Path, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// ExitCode maps an error to the process exit code for its failure class.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var privErr *PrivilegeError
	var writeErr *WriteError
	var provErr *ProvisionError

	switch {
	case errors.Is(err, ErrRuntimeMissing):
		return ExitRuntimeMissing
	case errors.As(err, &privErr):
		return ExitPrivilege
	case errors.As(err, &writeErr):
		return ExitWrite
	case errors.As(err, &provErr):
		return ExitProvision
	}
	return ExitFailure
}
