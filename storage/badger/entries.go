package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/semkey/core"
	"github.com/poiesic/semkey/storage"
)

// EntryRepository implements storage.EntryRepository for BadgerDB.
type EntryRepository struct {
	backend *Backend
}

var _ storage.EntryRepository = (*EntryRepository)(nil)

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(backend *Backend) (*EntryRepository, error) {
	if backend == nil {
		return nil, errors.New("backend must not be nil")
	}
	return &EntryRepository{backend: backend}, nil
}

// Close releases repository resources. The backend itself is closed by
// its owner.
func (r *EntryRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *EntryRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutEntries stores one or more entries, replacing any existing entry
// under the same key.
func (r *EntryRepository) PutEntries(ctx context.Context, entries ...*core.IndexEntry) ([]*core.IndexEntry, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, entry := range entries {
			if err := core.ValidateEntry(entry); err != nil {
				return err
			}

			key := makeEntryKey(entry.Key)

			// Preserve the original insertion time across replacements.
			old, err := readEntry(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				entry.InsertedAt = old.InsertedAt
			} else {
				entry.InsertedAt = now
			}
			entry.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalIndexEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetEntry retrieves a single entry by key.
func (r *EntryRepository) GetEntry(ctx context.Context, key core.RecordKey) (*core.IndexEntry, error) {
	var entry *core.IndexEntry

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		entry, err = readEntry(tx, makeEntryKey(key))
		return err
	}, false)

	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}
	return entry, nil
}

// GetEntries retrieves multiple entries, skipping keys that don't exist.
func (r *EntryRepository) GetEntries(ctx context.Context, keys ...core.RecordKey) ([]*core.IndexEntry, error) {
	entries := make([]*core.IndexEntry, 0, len(keys))

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			entry, err := readEntry(tx, makeEntryKey(key))
			if err != nil {
				return err
			}
			if entry != nil {
				entries = append(entries, entry)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteEntries removes entries by their keys.
func (r *EntryRepository) DeleteEntries(ctx context.Context, keys ...core.RecordKey) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			storageKey := makeEntryKey(key)

			if _, err := tx.Get(storageKey); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("%w: %s", storage.ErrNotFound, key)
				}
				return err
			}
			if err := tx.Delete(storageKey); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// ScanEntries calls fn for every stored entry in key order.
func (r *EntryRepository) ScanEntries(ctx context.Context, fn func(*core.IndexEntry) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var entry *core.IndexEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalIndexEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(entry); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// CountEntries returns the number of stored entries.
func (r *EntryRepository) CountEntries(ctx context.Context) (int, error) {
	var count int

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)

	if err != nil {
		return 0, err
	}
	return count, nil
}

// readEntry reads and decodes an entry, returning nil when absent.
func readEntry(tx *badger.Txn, key []byte) (*core.IndexEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.IndexEntry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalIndexEntry(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
