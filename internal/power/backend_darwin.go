//go:build darwin

package power

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// darwinBackend runs caffeinate(8) for the lifetime of each handle.
type darwinBackend struct{}

func newBackend() Backend {
	return darwinBackend{}
}

func (darwinBackend) Acquire(opts Options) (Handle, error) {
	path, err := exec.LookPath("caffeinate")
	if err != nil {
		return nil, fmt.Errorf("caffeinate not found: %w", err)
	}

	// -i: prevent idle sleep
	// -s: prevent system sleep (AC power)
	// -d: keep the display awake (not requested — the display may sleep)
	// -w <pid>: exit automatically when this process dies
	flags := "-"
	if opts.BlockIdle {
		flags += "i"
	}
	if opts.BlockSleep {
		flags += "s"
	}
	if opts.KeepDisplayOn {
		flags += "d"
	}
	if flags == "-" {
		return nil, fmt.Errorf("no power states requested")
	}

	cmd := exec.Command(path, flags, "-w", strconv.Itoa(os.Getpid()))
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start caffeinate: %w", err)
	}

	// Reap the child in background so it doesn't become a zombie.
	go cmd.Wait()

	return &processHandle{cmd: cmd}, nil
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
