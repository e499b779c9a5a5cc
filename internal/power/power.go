// Package power owns the process-wide keep-alive handle: an OS-level
// sleep inhibition held while a trading session runs. At most one
// handle exists at a time; Enable and Disable are idempotent so the
// shell can wire them straight to a UI toggle without tracking state.
//
// Holding a handle changes real sleep behavior for the whole machine,
// not just this window.
package power

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Options selects which power states an acquired handle blocks.
type Options struct {
	BlockIdle     bool
	BlockSleep    bool
	KeepDisplayOn bool
}

// Handle is a live OS sleep inhibition. Releasing it restores normal
// sleep behavior.
type Handle interface {
	Release() error
}

// Backend acquires platform inhibition handles.
// See backend_darwin.go, backend_linux.go, backend_windows.go.
type Backend interface {
	Acquire(opts Options) (Handle, error)
}

// NewBackend returns a platform-appropriate Backend.
func NewBackend() Backend {
	return newBackend()
}

// Manager guards the single keep-alive handle slot. The zero state is
// inactive; a freshly started process never inherits an inhibition.
type Manager struct {
	backend Backend
	log     *logrus.Entry

	mu     sync.Mutex
	handle Handle
}

// NewManager creates a Manager over the given backend.
func NewManager(backend Backend, log *logrus.Entry) *Manager {
	return &Manager{backend: backend, log: log}
}

// Enable acquires a keep-alive handle blocking idle and system sleep
// while leaving the display free to sleep. Calling it while already
// active is a successful no-op.
func (m *Manager) Enable() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil {
		return "Keep-Alive already active", nil
	}

	h, err := m.backend.Acquire(Options{BlockIdle: true, BlockSleep: true})
	if err != nil {
		return "", fmt.Errorf("failed to enable Keep-Alive: %w", err)
	}

	m.handle = h
	m.log.Info("OS Keep-Alive enabled")
	return "Keep-Alive enabled", nil
}

// Disable releases the handle, letting the OS resume normal sleep
// behavior. Calling it while inactive is a successful no-op.
func (m *Manager) Disable() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle == nil {
		return "Keep-Alive not active", nil
	}

	if err := m.handle.Release(); err != nil {
		// Clear the slot regardless so the manager cannot wedge Active.
		m.log.WithError(err).Warn("Keep-Alive release reported an error")
	}
	m.handle = nil
	m.log.Info("OS Keep-Alive disabled")
	return "Keep-Alive disabled", nil
}

// Active reports whether a handle is currently held.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle != nil
}
