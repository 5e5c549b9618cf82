package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/qmiks/rolegate/internal/auth/domain"
	"github.com/qmiks/rolegate/internal/auth/store"
	"github.com/qmiks/rolegate/pkg/cryptox"
)

// Bootstrap account seeded when no snapshot exists yet. Credentials are the
// conventional first-run default and should be changed immediately.
const (
	BootstrapUsername = "admin"
	BootstrapPassword = "admin"
)

// record is the wire form of a user entry. The username is the JSON object
// key, not a field.
type record struct {
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Store persists the whole user set as a single pretty-printed JSON file.
// Writes go to a temp file in the same directory followed by a rename, so
// readers never observe a partial snapshot. The mutex serializes access
// within this process; concurrent writers in other processes still race
// (last write wins on the full snapshot).
type Store struct {
	mu   sync.Mutex
	path string
	hash cryptox.Hasher
}

var _ store.Store = (*Store)(nil)

// New returns a Store backed by the JSON file at path. hash is used only to
// digest the bootstrap password when seeding a missing snapshot.
func New(path string, hash cryptox.Hasher) *Store {
	return &Store{path: path, hash: hash}
}

func (s *Store) Load(_ context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) Save(_ context.Context, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(snap)
}

func (s *Store) GetRole(_ context.Context, username string) (domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.loadLocked()
	if err != nil {
		return "", err
	}
	u, ok := snap[username]
	if !ok {
		return "", nil
	}
	return u.Role, nil
}

func (s *Store) CreateUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.loadLocked()
	if err != nil {
		return err
	}
	if _, ok := snap[u.Username]; ok {
		return store.ErrAlreadyExists
	}
	snap[u.Username] = u
	return s.saveLocked(snap)
}

func (s *Store) SetRole(_ context.Context, username string, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.loadLocked()
	if err != nil {
		return err
	}
	u, ok := snap[username]
	if !ok {
		return nil
	}
	u.Role = role
	snap[username] = u
	return s.saveLocked(snap)
}

func (s *Store) UpdatePasswordDigest(_ context.Context, username, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.loadLocked()
	if err != nil {
		return err
	}
	u, ok := snap[username]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordDigest = digest
	snap[username] = u
	return s.saveLocked(snap)
}

func (s *Store) loadLocked() (domain.Snapshot, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.bootstrapLocked()
	}
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}

	var records map[string]record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", store.ErrCorrupted, s.path, err)
	}

	snap := make(domain.Snapshot, len(records))
	for username, rec := range records {
		snap[username] = domain.User{
			Username:       username,
			PasswordDigest: rec.Password,
			Role:           domain.Role(rec.Role),
		}
	}
	return snap, nil
}

// bootstrapLocked seeds a fresh snapshot with the single default admin
// record and persists it before returning.
func (s *Store) bootstrapLocked() (domain.Snapshot, error) {
	digest, err := s.hash(BootstrapPassword)
	if err != nil {
		return nil, fmt.Errorf("hash bootstrap password: %w", err)
	}

	snap := domain.Snapshot{
		BootstrapUsername: {
			Username:       BootstrapUsername,
			PasswordDigest: digest,
			Role:           domain.RoleAdmin,
		},
	}
	if err := s.saveLocked(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) saveLocked(snap domain.Snapshot) error {
	records := make(map[string]record, len(snap))
	for username, u := range snap {
		records[username] = record{Password: u.PasswordDigest, Role: u.Role.String()}
	}

	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users file: %w", err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".users-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, s.path)
}
