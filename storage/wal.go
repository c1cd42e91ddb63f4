package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// walEntryPrefix is the size of the [position:u64][len:u64] prefix before
// each WAL entry's old-bytes payload.
const walEntryPrefix = 16

// wal is the sibling write-ahead log file: a sequence of
// [position][len][oldBytes] entries recording the pre-image of every
// mutating write since the last commit, per spec.md §4.1.
type wal struct {
	file *os.File
}

// walFilename derives the sibling WAL path: db.foo -> .db.foo, matching
// spec.md §6.
func walFilename(path string) string {
	dir, name := splitDir(path)
	if dir == "" {
		return "." + name
	}
	return dir + "/." + name
}

func splitDir(path string) (dir, name string) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i], path[i+1:]
		}
	}
	return "", path
}

func openWAL(path string) (*wal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	return &wal{file: f}, nil
}

// append records the pre-image (position, oldBytes) BEFORE the caller
// overwrites that range in the main file.
func (w *wal) append(position int64, oldBytes []byte) error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	entry := make([]byte, walEntryPrefix+len(oldBytes))
	binary.LittleEndian.PutUint64(entry[0:8], uint64(position))
	binary.LittleEndian.PutUint64(entry[8:16], uint64(len(oldBytes)))
	copy(entry[walEntryPrefix:], oldBytes)
	if _, err := w.file.WriteAt(entry, info.Size()); err != nil {
		return err
	}
	return nil
}

// walRecord is one decoded WAL entry.
type walRecord struct {
	Position int64
	Bytes    []byte
}

// readAll decodes every entry currently in the log, in file (append)
// order.
func (w *wal) readAll() ([]walRecord, error) {
	info, err := w.file.Stat()
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.NewSectionReader(w.file, 0, info.Size()))
	if err != nil {
		return nil, err
	}
	var out []walRecord
	pos := 0
	for pos < len(data) {
		if pos+walEntryPrefix > len(data) {
			return nil, fmt.Errorf("%w: truncated entry prefix", ErrWalCorruption)
		}
		position := int64(binary.LittleEndian.Uint64(data[pos : pos+8]))
		length := binary.LittleEndian.Uint64(data[pos+8 : pos+16])
		start := pos + walEntryPrefix
		end := start + int(length)
		if end < start || end > len(data) {
			return nil, fmt.Errorf("%w: truncated entry payload", ErrWalCorruption)
		}
		out = append(out, walRecord{Position: position, Bytes: data[start:end]})
		pos = end
	}
	return out, nil
}

// replayReverse undoes every buffered WAL entry by writing its old bytes
// back to dst, latest entry first, per spec.md §4.1 ("the WAL is replayed
// in reverse to undo partial writes").
func (w *wal) replayReverse(dst io.WriterAt) error {
	records, err := w.readAll()
	if err != nil {
		return err
	}
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if len(r.Bytes) == 0 {
			continue
		}
		if _, err := dst.WriteAt(r.Bytes, r.Position); err != nil {
			return err
		}
	}
	return nil
}

// clear truncates the log to empty, ending the current transaction epoch.
func (w *wal) clear() error {
	if err := w.file.Truncate(0); err != nil {
		return err
	}
	_, err := w.file.Seek(0, io.SeekStart)
	return err
}

// isEmpty reports whether the WAL currently holds no entries.
func (w *wal) isEmpty() (bool, error) {
	info, err := w.file.Stat()
	if err != nil {
		return false, err
	}
	return info.Size() == 0, nil
}

func (w *wal) close() error {
	return w.file.Close()
}
