package store

import (
	"context"
	"errors"

	"github.com/qmiks/rolegate/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrCorrupted reports a persisted snapshot that fails to deserialize.
	// This is fatal at load time: the process cannot proceed without a valid
	// store, and the snapshot is never silently re-bootstrapped.
	ErrCorrupted = errors.New("store: corrupted snapshot")
)

// Store is the durable username -> credential record mapping. Concrete
// drivers (jsonfile) implement it. Every mutation rewrites the whole
// persisted snapshot; there is no partial update and no delete path.
type Store interface {
	// Load returns the persisted snapshot. If no snapshot exists it
	// synthesizes one containing the bootstrap admin record and persists it
	// before returning.
	Load(ctx context.Context) (domain.Snapshot, error)

	// Save overwrites the entire persisted snapshot. Atomic from the
	// caller's perspective: other readers never observe a partial write.
	Save(ctx context.Context, snap domain.Snapshot) error

	// GetRole returns the role for a username, or "" if the username is
	// unknown. Unknown usernames are not an error.
	GetRole(ctx context.Context, username string) (domain.Role, error)

	// CreateUser inserts a new record and persists. Returns
	// ErrAlreadyExists (with zero state change) if the username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// SetRole updates the role of an existing record and persists. Silent
	// no-op if the username is unknown.
	SetRole(ctx context.Context, username string, role domain.Role) error

	// UpdatePasswordDigest replaces the stored digest for a user. Returns
	// ErrNotFound if the username is unknown.
	UpdatePasswordDigest(ctx context.Context, username, digest string) error
}
