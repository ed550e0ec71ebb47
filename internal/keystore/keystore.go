// Package keystore persists feed authority credentials to durable storage.
// A feed whose credential file is lost can be created but never remotely
// updated again, so saving is collision-safe: an existing file is renamed
// aside before the new one is written, never overwritten.
package keystore

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store writes credential files under a base directory, typically scoped
// per sport: <base>/<sport>/<feed name>.json.
type Store struct {
	baseDir string
}

// New creates a store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Save writes the secret for the named feed under the sport directory.
// If a file with that name already exists it is renamed to the first free
// "<name>_(N).json" before the write. The write itself goes through a temp
// file and rename so a partial write never shadows a good credential.
func (s *Store) Save(sport, name string, secret []byte) (string, error) {
	dir := filepath.Join(s.baseDir, sport)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating keypair dir: %w", err)
	}

	dest := filepath.Join(dir, name+".json")
	if _, err := os.Stat(dest); err == nil {
		aside, err := uniqueFileName(dir, name)
		if err != nil {
			return "", err
		}
		if err := os.Rename(dest, aside); err != nil {
			return "", fmt.Errorf("renaming existing keypair aside: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("checking existing keypair: %w", err)
	}

	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating temp keypair file: %w", err)
	}
	if _, err := tmp.Write(secret); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing keypair: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("closing keypair file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("publishing keypair file: %w", err)
	}
	return dest, nil
}

// uniqueFileName returns the first "<name>_(N).json" that does not exist yet.
func uniqueFileName(dir, name string) (string, error) {
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_(%d).json", name, n))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("probing keypair name: %w", err)
		}
	}
}
