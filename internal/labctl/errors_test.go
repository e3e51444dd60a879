package labctl

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"generic", errors.New("boom"), ExitFailure},
		{"runtime missing", ErrRuntimeMissing, ExitRuntimeMissing},
		{"wrapped runtime missing", fmt.Errorf("preflight: %w", ErrRuntimeMissing), ExitRuntimeMissing},
		{"privilege", &PrivilegeError{Op: "chown"}, ExitPrivilege},
		{"write", &WriteError{Path: "/x", Err: errors.New("denied")}, ExitWrite},
		{"provision", &ProvisionError{Path: "/x", Err: errors.New("denied")}, ExitProvision},
		{"wrapped provision", fmt.Errorf("3 failed: %w", &ProvisionError{Path: "/x", Err: errors.New("denied")}), ExitProvision},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
