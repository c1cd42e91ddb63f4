// Core storage engine tests: record insert/remove/resize, transaction
// commit/rollback, crash recovery via the WAL, and file compaction.
package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func open(t *testing.T, cfg Config) (*Storage, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.agdb")
	s, err := Open(path, cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestInsertAndValue(t *testing.T) {
	s, _ := open(t, Config{})

	idx, err := s.Insert([]byte("hello"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := s.Value(idx)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Errorf("Value = %q, want %q", got, "hello")
	}
}

func TestInsertReusesLowestFreeIndex(t *testing.T) {
	s, _ := open(t, Config{})

	a, _ := s.Insert([]byte("a"))
	b, _ := s.Insert([]byte("b"))
	_ = b
	if err := s.Remove(a); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	c, err := s.Insert([]byte("c"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if c != a {
		t.Errorf("new index = %d, want reused %d", c, a)
	}
}

func TestRemoveThenValueNotFound(t *testing.T) {
	s, _ := open(t, Config{})
	idx, _ := s.Insert([]byte("x"))
	if err := s.Remove(idx); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Value(idx); err != ErrNotFound {
		t.Errorf("Value after Remove = %v, want ErrNotFound", err)
	}
}

func TestResizeValueGrowAndShrink(t *testing.T) {
	s, _ := open(t, Config{})
	idx, _ := s.Insert([]byte("abc"))

	if err := s.ResizeValue(idx, 6); err != nil {
		t.Fatalf("ResizeValue grow: %v", err)
	}
	if err := s.InsertAt(idx, 3, []byte("def")); err != nil {
		t.Fatalf("InsertAt: %v", err)
	}
	got, _ := s.Value(idx)
	if !bytes.Equal(got, []byte("abcdef")) {
		t.Errorf("Value = %q, want %q", got, "abcdef")
	}

	if err := s.ResizeValue(idx, 2); err != nil {
		t.Fatalf("ResizeValue shrink: %v", err)
	}
	got, _ = s.Value(idx)
	if !bytes.Equal(got, []byte("ab")) {
		t.Errorf("Value after shrink = %q, want %q", got, "ab")
	}
}

func TestMoveAt(t *testing.T) {
	s, _ := open(t, Config{})
	idx, _ := s.Insert([]byte("abcdef"))
	if err := s.MoveAt(idx, 0, 3, 3); err != nil {
		t.Fatalf("MoveAt: %v", err)
	}
	got, _ := s.Value(idx)
	if !bytes.Equal(got, []byte("abcabc")) {
		t.Errorf("Value = %q, want %q", got, "abcabc")
	}
}

func TestInsertAtOutOfBounds(t *testing.T) {
	s, _ := open(t, Config{})
	idx, _ := s.Insert([]byte("abc"))
	if err := s.InsertAt(idx, 1, []byte("xyz")); err != ErrOutOfBounds {
		t.Errorf("InsertAt overflow = %v, want ErrOutOfBounds", err)
	}
}

func TestExplicitTransactionRollbackUndoesAppendsAndOverwrites(t *testing.T) {
	s, _ := open(t, Config{})
	idx, _ := s.Insert([]byte("abc"))

	if err := s.Transaction(); err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if err := s.InsertAt(idx, 0, []byte("XYZ")); err != nil {
		t.Fatalf("InsertAt: %v", err)
	}
	if _, err := s.Insert([]byte("new")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	got, err := s.Value(idx)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if !bytes.Equal(got, []byte("abc")) {
		t.Errorf("Value after rollback = %q, want %q", got, "abc")
	}
	if s.Len() != 1 {
		t.Errorf("Len after rollback = %d, want 1 (appended record undone)", s.Len())
	}
}

func TestNestedTransactionOnlyOutermostCommits(t *testing.T) {
	s, _ := open(t, Config{})

	if err := s.Transact(func() error {
		return s.Transact(func() error {
			_, err := s.Insert([]byte("nested"))
			return err
		})
	}); err != nil {
		t.Fatalf("Transact: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestTransactCommitsOnSuccessRollsBackOnError(t *testing.T) {
	s, _ := open(t, Config{})
	wantErr := ErrOutOfBounds

	err := s.Transact(func() error {
		_, _ = s.Insert([]byte("will be undone"))
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("Transact err = %v, want %v", err, wantErr)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0 after rolled-back Transact", s.Len())
	}
}

func TestRecoveryReplaysInterruptedTransaction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.agdb")

	s, err := Open(path, Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	idx, _ := s.Insert([]byte("abc"))

	if err := s.Transaction(); err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if err := s.InsertAt(idx, 0, []byte("XYZ")); err != nil {
		t.Fatalf("InsertAt: %v", err)
	}
	if _, err := s.Insert([]byte("uncommitted")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	// Simulate a crash: close the handles without Commit/Rollback, leaving
	// the header's InTransaction flag set and the WAL populated.
	s.file.Close()
	s.wal.close()

	s2, err := Open(path, Config{})
	if err != nil {
		t.Fatalf("reopen after crash: %v", err)
	}
	defer s2.Close()

	got, err := s2.Value(idx)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if !bytes.Equal(got, []byte("abc")) {
		t.Errorf("Value after recovery = %q, want %q (uncommitted overwrite undone)", got, "abc")
	}
	if s2.Len() != 1 {
		t.Errorf("Len after recovery = %d, want 1 (uncommitted append undone)", s2.Len())
	}
}

func TestShrinkToFitCompactsAndPreservesValues(t *testing.T) {
	s, _ := open(t, Config{})
	a, _ := s.Insert([]byte("aaa"))
	b, _ := s.Insert([]byte("bbbbbb"))
	c, _ := s.Insert([]byte("cc"))
	if err := s.Remove(b); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	sizeBefore, _ := s.Size()
	if err := s.ShrinkToFit(); err != nil {
		t.Fatalf("ShrinkToFit: %v", err)
	}
	sizeAfter, _ := s.Size()
	if sizeAfter >= sizeBefore {
		t.Errorf("size after compaction = %d, want < %d", sizeAfter, sizeBefore)
	}

	gotA, err := s.Value(a)
	if err != nil || !bytes.Equal(gotA, []byte("aaa")) {
		t.Errorf("Value(a) = %q, %v", gotA, err)
	}
	gotC, err := s.Value(c)
	if err != nil || !bytes.Equal(gotC, []byte("cc")) {
		t.Errorf("Value(c) = %q, %v", gotC, err)
	}
	if s.Exists(b) {
		t.Error("removed record survived compaction")
	}
}

func TestBackupAndRestore(t *testing.T) {
	s, path := open(t, Config{})
	idx, _ := s.Insert([]byte("payload"))

	dir := filepath.Dir(path)
	backupPath := filepath.Join(dir, "backup.agdb.zst")
	if err := s.Backup(backupPath, true); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	if _, err := s.Insert([]byte("after backup, should vanish on restore")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := s.Restore(backupPath, true); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	got, err := s.Value(idx)
	if err != nil || !bytes.Equal(got, []byte("payload")) {
		t.Errorf("Value after restore = %q, %v", got, err)
	}
	if s.Len() != 1 {
		t.Errorf("Len after restore = %d, want 1", s.Len())
	}
}

func TestCorruptHeaderRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.agdb")
	if err := os.WriteFile(path, []byte("not a real agdb file at all, just garbage"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Open(path, Config{}); err == nil {
		t.Error("Open on corrupt header = nil error, want one")
	}
}

func TestOpenRejectsSecondProcessHoldingTheFile(t *testing.T) {
	s, path := open(t, Config{})
	if _, err := s.Insert([]byte("hello")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if _, err := Open(path, Config{}); err != ErrLocked {
		t.Fatalf("second Open() error = %v, want ErrLocked", err)
	}
}

func TestOpenSucceedsAfterClose(t *testing.T) {
	s, path := open(t, Config{})
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path, Config{})
	if err != nil {
		t.Fatalf("Open after Close: %v", err)
	}
	reopened.Close()
}
