// Package storage implements the append-mostly record store described in
// spec.md §4.1: an in-memory record table over a single file, a
// write-ahead log for crash recovery, and nested transaction scoping.
package storage

import "errors"

// Sentinel errors returned by storage operations.
var (
	// ErrClosed is returned when operating on a closed Storage.
	ErrClosed = errors.New("storage: closed")

	// ErrNotFound is returned when an Index has no live record.
	ErrNotFound = errors.New("storage: index not found")

	// ErrOutOfBounds is returned by InsertAt/MoveAt when the requested
	// range does not fit within the record's current size.
	ErrOutOfBounds = errors.New("storage: offset out of bounds")

	// ErrCorruptHeader is returned by Open when the index-0 header record
	// fails validation; Open does not attempt any recovery in that case.
	ErrCorruptHeader = errors.New("storage: corrupt header")

	// ErrCorruptRecord is reported by decodeRecordHeader for a record
	// header shorter than recordHeaderSize bytes. The linear scan stops at
	// such a header instead of returning this error.
	ErrCorruptRecord = errors.New("storage: corrupt record")

	// ErrWalCorruption is returned when the write-ahead log cannot be
	// replayed; the engine refuses to open rather than risk silent data
	// loss.
	ErrWalCorruption = errors.New("storage: write-ahead log corruption")

	// ErrInTransaction is returned by operations that require no open
	// transaction, such as ShrinkToFit.
	ErrInTransaction = errors.New("storage: operation not allowed inside a transaction")

	// ErrLocked is returned by Open when another process already holds
	// the exclusive OS-level lock on the storage file, per spec.md §5
	// ("the storage file is owned exclusively by the engine process").
	ErrLocked = errors.New("storage: file is locked by another process")
)
