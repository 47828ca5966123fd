package auth

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/goliatone/go-errors"
)

// Storage is durable storage for a single value.
type Storage interface {
	// Load returns the stored bytes, or nil when nothing is stored.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}

// StorageType selects a Storage implementation.
type StorageType string

const (
	StorageMemory StorageType = "memory"
	StorageFile   StorageType = "file"
	StorageBadger StorageType = "badger"
)

// StorageConfig configures the session storage.
type StorageConfig struct {
	Type StorageType `koanf:"type" validate:"oneof=memory file badger"`
	// Path is the session file for "file" and the database directory for "badger".
	Path string `koanf:"path" validate:"required_unless=Type memory"`
}

// DefaultStorageConfig keeps the session in a file under the user config directory.
func DefaultStorageConfig() StorageConfig {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return StorageConfig{
		Type: StorageFile,
		Path: filepath.Join(dir, "hostelctl", StorageKey+".json"),
	}
}

// NewStorage opens the storage described by cfg.
func NewStorage(cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageMemory, "":
		return NewMemoryStorage(), nil
	case StorageFile:
		return NewFileStorage(cfg.Path), nil
	case StorageBadger:
		return OpenBadgerStorage(cfg.Path)
	default:
		return nil, errors.New("unknown session storage type", errors.CategoryBadInput).
			WithTextCode("UNKNOWN_STORAGE").
			WithMetadata(map[string]any{"type": string(cfg.Type)})
	}
}

// MemoryStorage keeps the value for the life of the process.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryStorage) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStorage) Close() error { return nil }

// FileStorage writes the value to one file, replacing it atomically.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) Load(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "read session file")
	}
	return data, nil
}

func (f *FileStorage) Save(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "create session directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "create session file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, errors.CategoryInternal, "write session file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "write session file")
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "replace session file")
	}
	return nil
}

func (f *FileStorage) Close() error { return nil }
