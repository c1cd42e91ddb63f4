// Package engine implements spec.md §6's single external surface: open/
// new, exec/execMut, transaction/transactionMut, optimizeStorage, backup
// and restore, around a *db.DB and its underlying *storage.Storage.
// Grounded on the teacher's top-level DB type (root-level db.go), whose
// Config/Open/Close/reader-writer-lock shape generalizes directly to
// spec.md §5's "any number of readers xor one writer" model.
package engine

import (
	"github.com/jpl-au/agdb/collection"
	"github.com/jpl-au/agdb/db"
	"github.com/jpl-au/agdb/query"
	"github.com/jpl-au/agdb/storage"
)

// Config mirrors the teacher's Config shape, carrying the one knob the
// facade and collections need (the stable hash algorithm) plus the
// storage-level options.
type Config struct {
	HashAlgorithm collection.Algorithm
	Storage       storage.Config
}

// Engine is the one surface every collaborator (query builder, HTTP
// server, CLI, cluster layer) uses to open and operate on a database,
// per spec.md §6.
type Engine struct {
	s  *storage.Storage
	db *db.DB
}

// Open creates or restores a database at path, per spec.md §6: WAL
// replay happens inside storage.Open before this returns.
func Open(path string, config Config) (*Engine, error) {
	s, err := storage.Open(path, config.Storage)
	if err != nil {
		return nil, err
	}
	d, err := db.Open(s, config.HashAlgorithm)
	if err != nil {
		s.Close()
		return nil, err
	}
	return &Engine{s: s, db: d}, nil
}

// Close releases the engine's file handles.
func (e *Engine) Close() error {
	return e.s.Close()
}

// Exec runs a read-only query under a shared (reader) lock.
func (e *Engine) Exec(q query.Query) (*query.Result, error) {
	e.db.RLock()
	defer e.db.RUnlock()
	return q.Process(e.db)
}

// ExecMut runs a mutating query under the exclusive (writer) lock,
// wrapped in its own single-operation transaction so a failing query
// rolls back cleanly.
func (e *Engine) ExecMut(q query.MutQuery) (*query.Result, error) {
	e.db.Lock()
	defer e.db.Unlock()

	if err := e.s.Transaction(); err != nil {
		return nil, err
	}
	result, err := q.ProcessMut(e.db)
	if err != nil {
		if rerr := e.s.Rollback(); rerr != nil {
			return nil, rerr
		}
		if rerr := e.db.AfterRollback(); rerr != nil {
			return nil, rerr
		}
		return nil, err
	}
	if err := e.s.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}

// Transaction runs fn with the reader lock held for its duration, passing
// the facade directly so fn can run any number of read queries without
// re-acquiring the lock, per spec.md §5.
func (e *Engine) Transaction(fn func(*db.DB) error) error {
	e.db.RLock()
	defer e.db.RUnlock()
	return fn(e.db)
}

// TransactionMut runs fn under the writer lock inside one storage
// transaction: fn returning an error rolls back every change it made;
// fn returning nil commits, per spec.md §5 and §9. fn receives the
// facade directly (not the Engine) so it can drive db.DB or
// query.MutQuery.ProcessMut calls without re-entering the writer lock.
func (e *Engine) TransactionMut(fn func(*db.DB) error) error {
	e.db.Lock()
	defer e.db.Unlock()

	if err := e.s.Transaction(); err != nil {
		return err
	}
	if err := fn(e.db); err != nil {
		if rerr := e.s.Rollback(); rerr != nil {
			return rerr
		}
		if rerr := e.db.AfterRollback(); rerr != nil {
			return rerr
		}
		return err
	}
	return e.s.Commit()
}

// OptimizeStorage compacts the storage file and fsyncs, per spec.md §6.
func (e *Engine) OptimizeStorage() error {
	e.db.Lock()
	defer e.db.Unlock()
	return e.s.ShrinkToFit()
}

// Backup writes an atomic copy of the database to path, optionally
// zstd-compressed.
func (e *Engine) Backup(path string, compress bool) error {
	e.db.RLock()
	defer e.db.RUnlock()
	return e.s.Backup(path, compress)
}

// Restore replaces the engine's storage content from a prior Backup.
func (e *Engine) Restore(path string, compressed bool) error {
	e.db.Lock()
	defer e.db.Unlock()
	if err := e.s.Restore(path, compressed); err != nil {
		return err
	}
	return e.db.AfterRollback()
}
