package auth

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/goliatone/go-errors"
)

// BadgerStorage keeps the session in a Badger database under StorageKey.
type BadgerStorage struct {
	db    *badger.DB
	owned bool
}

// OpenBadgerStorage opens (or creates) a database at path. An empty path opens
// an in-memory database.
func OpenBadgerStorage(path string) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "open session database")
	}
	return &BadgerStorage{db: db, owned: true}, nil
}

// NewBadgerStorage uses an already open database; Close leaves it open.
func NewBadgerStorage(db *badger.DB) *BadgerStorage {
	return &BadgerStorage{db: db}
}

func (b *BadgerStorage) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(StorageKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "read session")
	}
	return data, nil
}

func (b *BadgerStorage) Save(ctx context.Context, data []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(StorageKey), data)
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "write session")
	}
	return nil
}

func (b *BadgerStorage) Close() error {
	if !b.owned {
		return nil
	}
	return b.db.Close()
}
