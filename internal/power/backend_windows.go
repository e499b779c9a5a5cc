//go:build windows

package power

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/windows"
)

// Execution-state flags for SetThreadExecutionState.
const (
	esContinuous      = 0x80000000
	esSystemRequired  = 0x00000001
	esDisplayRequired = 0x00000002
)

var (
	kernel32                    = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadExecutionState = kernel32.NewProc("SetThreadExecutionState")
)

type windowsBackend struct{}

func newBackend() Backend {
	return windowsBackend{}
}

// Acquire asserts the execution state from a goroutine pinned to an
// OS thread. SetThreadExecutionState is thread-scoped, so the same
// thread must stay alive for the handle's lifetime and clear the
// state on release.
func (windowsBackend) Acquire(opts Options) (Handle, error) {
	flags := uintptr(esContinuous)
	if opts.BlockIdle || opts.BlockSleep {
		flags |= esSystemRequired
	}
	if opts.KeepDisplayOn {
		flags |= esDisplayRequired
	}

	errCh := make(chan error, 1)
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(done)

		ret, _, _ := procSetThreadExecutionState.Call(flags)
		if ret == 0 {
			errCh <- fmt.Errorf("SetThreadExecutionState rejected flags %#x", flags)
			return
		}
		errCh <- nil

		<-release
		procSetThreadExecutionState.Call(uintptr(esContinuous))
	}()

	if err := <-errCh; err != nil {
		return nil, err
	}
	return &threadHandle{release: release, done: done}, nil
}

// threadHandle signals the pinned thread to clear the execution state.
type threadHandle struct {
	release chan struct{}
	done    chan struct{}
}

func (h *threadHandle) Release() error {
	close(h.release)
	<-h.done
	return nil
}
