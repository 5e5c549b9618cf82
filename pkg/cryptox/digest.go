package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Hasher turns a plaintext secret into a stored digest.
type Hasher func(secret string) (string, error)

// HashSecret returns the lowercase hex SHA-256 digest of secret. Equal
// secrets always produce equal digests, so stored digests stay comparable
// across restarts. Unsalted: rainbow-table exposure is a known weakness of
// this scheme; Argon2Hasher is the hardened alternative.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// SHA256Hasher is the default Hasher, producing HashSecret digests.
func SHA256Hasher(secret string) (string, error) {
	return HashSecret(secret), nil
}

// Argon2Hasher produces salted Argon2id digests in PHC format.
func Argon2Hasher(secret string) (string, error) {
	return HashPasswordArgon2(secret)
}

// VerifySecret reports whether secret matches the stored digest. The digest
// scheme is detected from the stored value, so a store may hold a mix of
// hex SHA-256 and Argon2id records (e.g. after switching schemes).
func VerifySecret(secret, digest string) bool {
	if strings.HasPrefix(digest, argon2Prefix) {
		return verifyArgon2(secret, digest) == nil
	}
	computed := HashSecret(secret)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
