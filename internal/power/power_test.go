package power

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	mu       sync.Mutex
	released bool
	err      error
}

func (h *fakeHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released = true
	return h.err
}

func (h *fakeHandle) isReleased() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

type fakeBackend struct {
	mu         sync.Mutex
	acquireErr error
	releaseErr error
	acquired   int
	lastOpts   Options
	handles    []*fakeHandle
}

func (b *fakeBackend) Acquire(opts Options) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.acquireErr != nil {
		return nil, b.acquireErr
	}
	b.acquired++
	b.lastOpts = opts
	h := &fakeHandle{err: b.releaseErr}
	b.handles = append(b.handles, h)
	return h, nil
}

func (b *fakeBackend) acquireCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.acquired
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestEnableIsIdempotent(t *testing.T) {
	backend := &fakeBackend{}
	m := NewManager(backend, testLog())

	msg, err := m.Enable()
	require.NoError(t, err)
	assert.Equal(t, "Keep-Alive enabled", msg)
	assert.True(t, m.Active())

	msg, err = m.Enable()
	require.NoError(t, err)
	assert.Equal(t, "Keep-Alive already active", msg)
	assert.Equal(t, 1, backend.acquireCount())
}

func TestDisableWhenInactive(t *testing.T) {
	m := NewManager(&fakeBackend{}, testLog())

	msg, err := m.Disable()
	require.NoError(t, err)
	assert.Equal(t, "Keep-Alive not active", msg)
	assert.False(t, m.Active())
}

func TestEnableDisableRoundTrip(t *testing.T) {
	backend := &fakeBackend{}
	m := NewManager(backend, testLog())

	_, err := m.Enable()
	require.NoError(t, err)

	msg, err := m.Disable()
	require.NoError(t, err)
	assert.Equal(t, "Keep-Alive disabled", msg)
	assert.False(t, m.Active())
	assert.True(t, backend.handles[0].isReleased())

	// A second disable confirms the manager is back to inactive.
	msg, err = m.Disable()
	require.NoError(t, err)
	assert.Equal(t, "Keep-Alive not active", msg)
}

func TestEnableSurfacesBackendFailure(t *testing.T) {
	backend := &fakeBackend{acquireErr: errors.New("assertion denied by OS")}
	m := NewManager(backend, testLog())

	_, err := m.Enable()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to enable Keep-Alive")
	assert.Contains(t, err.Error(), "assertion denied by OS")
	assert.False(t, m.Active())

	// The failure is terminal for that call only; a later enable works.
	backend.acquireErr = nil
	msg, err := m.Enable()
	require.NoError(t, err)
	assert.Equal(t, "Keep-Alive enabled", msg)
}

func TestEnableRequestsIdleAndSleepOnly(t *testing.T) {
	backend := &fakeBackend{}
	m := NewManager(backend, testLog())

	_, err := m.Enable()
	require.NoError(t, err)

	assert.True(t, backend.lastOpts.BlockIdle)
	assert.True(t, backend.lastOpts.BlockSleep)
	assert.False(t, backend.lastOpts.KeepDisplayOn, "display must stay free to sleep")
}

func TestDisableSucceedsWhenReleaseFails(t *testing.T) {
	backend := &fakeBackend{releaseErr: errors.New("process already gone")}
	m := NewManager(backend, testLog())

	_, err := m.Enable()
	require.NoError(t, err)

	msg, err := m.Disable()
	require.NoError(t, err)
	assert.Equal(t, "Keep-Alive disabled", msg)
	assert.False(t, m.Active())
}

func TestConcurrentEnableHoldsSingleHandle(t *testing.T) {
	backend := &fakeBackend{}
	m := NewManager(backend, testLog())

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Enable()
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		assert.NoError(t, errs[i])
	}
	assert.Equal(t, 1, backend.acquireCount())

	_, err := m.Disable()
	require.NoError(t, err)
	assert.False(t, m.Active())
}
