package domain

// User is a stored credential record. Username is the unique key and is
// immutable once created. PasswordDigest is the one-way digest of the
// password; the plaintext is never stored or logged.
type User struct {
	Username       string
	PasswordDigest string
	Role           Role
}

// Snapshot is the full persisted user set, keyed by username. Mutations go
// through read-modify-write of the whole snapshot.
type Snapshot map[string]User
