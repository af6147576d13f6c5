package storage

import (
	"context"

	"github.com/poiesic/semkey/core"
)

// EntryRepository provides durable storage for index entries.
// Implementations must be thread-safe and support concurrent access.
type EntryRepository interface {
	// PutEntries stores one or more entries, replacing any existing entry
	// under the same key. Sets InsertedAt on first write, preserves it on
	// replacement, and always refreshes UpdatedAt.
	// Returns the entries with timestamps populated.
	PutEntries(ctx context.Context, entries ...*core.IndexEntry) ([]*core.IndexEntry, error)

	// GetEntry retrieves a single entry by key.
	// Returns ErrNotFound if the entry doesn't exist.
	GetEntry(ctx context.Context, key core.RecordKey) (*core.IndexEntry, error)

	// GetEntries retrieves multiple entries by their keys.
	// Returns only the entries that exist (no error for missing entries).
	GetEntries(ctx context.Context, keys ...core.RecordKey) ([]*core.IndexEntry, error)

	// DeleteEntries removes entries by their keys.
	// Returns ErrNotFound if any entry doesn't exist.
	DeleteEntries(ctx context.Context, keys ...core.RecordKey) error

	// ScanEntries calls fn for every stored entry, in key order. Used to
	// replay the store into a fresh index on startup. Iteration stops on
	// the first error from fn or when ctx is cancelled.
	ScanEntries(ctx context.Context, fn func(*core.IndexEntry) error) error

	// CountEntries returns the number of stored entries.
	CountEntries(ctx context.Context) (int, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}
