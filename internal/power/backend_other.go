//go:build !darwin && !linux && !windows

package power

import "errors"

var errUnsupported = errors.New("sleep inhibition not supported on this platform")

type unsupportedBackend struct{}

func newBackend() Backend {
	return unsupportedBackend{}
}

func (unsupportedBackend) Acquire(Options) (Handle, error) {
	return nil, errUnsupported
}
