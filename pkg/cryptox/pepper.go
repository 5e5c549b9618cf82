package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"path/filepath"
	"sync"
)

var (
	pepperMu     sync.Mutex
	pepper       string
	pepperLoaded bool
	pepperFile   string
)

// SetPepperPath configures the file the Argon2id pepper is read from (and
// written to on first use if absent). An empty path disables the pepper.
// Resets any previously loaded value.
func SetPepperPath(file string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepperFile = file
	pepper = ""
	pepperLoaded = false
}

// GetPepper returns the secret pepper mixed into Argon2id hashing, loading
// or generating it on first use.
func GetPepper() (string, error) {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	if pepperLoaded {
		return pepper, nil
	}
	if pepperFile == "" {
		pepperLoaded = true
		return "", nil
	}

	p, err := loadOrGeneratePepper(filepath.Clean(pepperFile))
	if err != nil {
		return "", err
	}
	pepper = p
	pepperLoaded = true
	return pepper, nil
}

func loadOrGeneratePepper(path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		raw := make([]byte, keyLength)
		if _, err := rand.Read(raw); err != nil {
			return "", err
		}
		p := base64.RawURLEncoding.EncodeToString(raw)
		if err := os.WriteFile(path, []byte(p), 0600); err != nil {
			return "", err
		}
		return p, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
