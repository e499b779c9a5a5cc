//go:build linux

package power

import (
	"fmt"
	"os/exec"
	"strings"
	"syscall"
)

// linuxBackend holds a systemd-inhibit lock via a child process for
// the lifetime of each handle.
type linuxBackend struct{}

func newBackend() Backend {
	return linuxBackend{}
}

func (linuxBackend) Acquire(opts Options) (Handle, error) {
	path, err := exec.LookPath("systemd-inhibit")
	if err != nil {
		return nil, fmt.Errorf("systemd-inhibit not found: %w", err)
	}

	cmd := exec.Command(path,
		"--what="+inhibitWhat(opts),
		"--who=pulsedeck",
		"--why=Trading session active",
		"sleep", "infinity",
	)
	// Kernel sends SIGTERM to the child when this process dies — prevents orphans.
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGTERM}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start systemd-inhibit: %w", err)
	}

	go cmd.Wait()

	return &processHandle{cmd: cmd}, nil
}

// inhibitWhat maps Options onto systemd-inhibit's --what syntax.
// There is no display lock here; logind only gates idle and sleep.
func inhibitWhat(opts Options) string {
	var parts []string
	if opts.BlockIdle {
		parts = append(parts, "idle")
	}
	if opts.BlockSleep {
		parts = append(parts, "sleep")
	}
	if len(parts) == 0 {
		parts = append(parts, "sleep")
	}
	return strings.Join(parts, ":")
}

// processHandle kills the inhibitor child process on release.
type processHandle struct {
	cmd *exec.Cmd
}

func (h *processHandle) Release() error {
	if h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Kill()
}
