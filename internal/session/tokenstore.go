package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "folioadmin"

	// TokenKey is the single name the bearer token is persisted under.
	TokenKey = "token"
)

// ErrNotFound is returned by TokenStore.Load when no token is persisted.
var ErrNotFound = errors.New("no persisted token")

// TokenStore persists the bearer token between process runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Delete() error
}

// KeyringStore keeps the token in the OS keychain/credential manager.
type KeyringStore struct {
	Service string
}

// NewKeyringStore returns a keyring-backed store for the folioadmin service.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{Service: keyringService}
}

func (k *KeyringStore) Load() (string, error) {
	token, err := keyring.Get(k.Service, TokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

func (k *KeyringStore) Save(token string) error {
	if err := keyring.Set(k.Service, TokenKey, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (k *KeyringStore) Delete() error {
	if err := keyring.Delete(k.Service, TokenKey); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Available reports whether the OS keyring can be reached at all.
func (k *KeyringStore) Available() bool {
	_, err := keyring.Get(k.Service, TokenKey)
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// FileStore keeps the token as a plain string in <dir>/token.
type FileStore struct {
	Dir string
}

func (f *FileStore) path() string {
	return filepath.Join(f.Dir, TokenKey)
}

func (f *FileStore) Load() (string, error) {
	data, err := os.ReadFile(f.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

// Save writes the token atomically: temp file, fsync, rename.
func (f *FileStore) Save(token string) error {
	if err := os.MkdirAll(f.Dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", f.Dir, err)
	}

	tmp, err := os.CreateTemp(f.Dir, ".token-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.WriteString(token); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}

	if err := os.Rename(tmpPath, f.path()); err != nil {
		// Windows refuses to rename over an existing file.
		_ = os.Remove(f.path())
		if err2 := os.Rename(tmpPath, f.path()); err2 != nil {
			return fmt.Errorf("rename: %v (after remove: %v)", err, err2)
		}
	}
	return nil
}

func (f *FileStore) Delete() error {
	if err := os.Remove(f.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// MemoryStore keeps the token in process memory only.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore returns a store seeded with token ("" for none).
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrNotFound
	}
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}

// NewTokenStore builds the backend named by kind. A keyring that cannot be
// reached falls back to the file store in dir.
func NewTokenStore(kind, dir string) (TokenStore, error) {
	switch kind {
	case "", "keyring":
		ks := NewKeyringStore()
		if ks.Available() {
			return ks, nil
		}
		return &FileStore{Dir: dir}, nil
	case "file":
		return &FileStore{Dir: dir}, nil
	case "memory":
		return NewMemoryStore(""), nil
	default:
		return nil, fmt.Errorf("unknown token store %q", kind)
	}
}
