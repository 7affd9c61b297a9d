package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when an OAuth callback carries a state
	// token that was never issued, was already consumed, or has expired.
	// The connection attempt is terminal; the user must restart.
	ErrInvalidState = errors.New("invalid or expired oauth state")

	// ErrNotConnected is returned when a sync is requested for a store
	// that has no stored access credential.
	ErrNotConnected = errors.New("store is not connected")

	// ErrSyncInProgress is returned when a sync is requested for a store
	// that is already being synced.
	ErrSyncInProgress = errors.New("sync already in progress for store")

	// ErrStoreNotFound is returned for operations on a store ID the tenant
	// does not own.
	ErrStoreNotFound = errors.New("store not found")

	// ErrInvalidDomain is returned when a connection is requested for a
	// malformed shop domain.
	ErrInvalidDomain = errors.New("invalid shop domain")
)

// ExchangeError indicates the platform token endpoint rejected the
// authorization code. Codes are single-use, so the attempt is terminal.
type ExchangeError struct {
	StatusCode int
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed with status %d", e.StatusCode)
}

// StorageError wraps a failure of the backing store. It is surfaced to the
// caller as a retryable failure; nothing in this subsystem retries it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
