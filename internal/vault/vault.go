// Package vault is a stateless façade over the OS secret store.
// Credentials are grouped under a single service name and keyed by
// caller-supplied key names; every call is a fresh store transaction
// and nothing is cached in-process, so secrets outlive the host and
// concurrent callers race only at the store level.
package vault

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zalando/go-keyring"
)

// DefaultService is the namespace under which all Pulsedeck
// credentials are grouped in the OS store.
const DefaultService = "pulsedeck"

// Error kinds callers can branch on with errors.Is. Anything else
// coming out of this package wraps the raw platform error text.
var (
	// ErrNotFound reports that no secret exists for the requested key.
	ErrNotFound = errors.New("credential not found")
	// ErrUnsupported reports that no secret store exists on this platform.
	ErrUnsupported = errors.New("secret store unavailable on this platform")
)

// Vault reads and writes credentials for one service name.
type Vault struct {
	service string
	log     *logrus.Entry
}

// New creates a Vault for the given service name, falling back to
// DefaultService when empty.
func New(service string, log *logrus.Entry) *Vault {
	if service == "" {
		service = DefaultService
	}
	return &Vault{service: service, log: log}
}

// Service returns the service name this vault writes under.
func (v *Vault) Service() string {
	return v.service
}

// Store writes value as the secret for name, overwriting any prior
// value for the same key. Value contents are not validated; anything
// the OS store accepts is accepted here.
func (v *Vault) Store(name, value string) (string, error) {
	if err := keyring.Set(v.service, name, value); err != nil {
		return "", fmt.Errorf("failed to store key: %w", mapErr(err))
	}
	v.log.WithField("key", name).Info("stored credential")
	return fmt.Sprintf("Key '%s' stored securely", name), nil
}

// Get returns the stored secret for name.
func (v *Vault) Get(name string) (string, error) {
	secret, err := keyring.Get(v.service, name)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve key: %w", mapErr(err))
	}
	return secret, nil
}

// Delete removes the secret for name. Deleting a key that was never
// stored is an error, not a silent no-op.
func (v *Vault) Delete(name string) (string, error) {
	if err := keyring.Delete(v.service, name); err != nil {
		return "", fmt.Errorf("failed to delete key: %w", mapErr(err))
	}
	v.log.WithField("key", name).Info("deleted credential")
	return fmt.Sprintf("Key '%s' deleted", name), nil
}

// mapErr folds known keyring sentinels into this package's error
// kinds and passes everything else through with its platform text.
func mapErr(err error) error {
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, keyring.ErrUnsupportedPlatform):
		return ErrUnsupported
	default:
		return err
	}
}
