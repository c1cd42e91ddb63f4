package storage

import (
	"io"
	"os"
	"sort"
	"sync"
)

// Config holds storage-level runtime options, mirroring the teacher's
// folio.Config shape (sensible zero-value defaults, filled in by Open).
type Config struct {
	// ReadBuffer defaults to 64 KiB. No storage operation reads it:
	// recovery scans read each record header directly with ReadAt.
	ReadBuffer int
	// SyncWrites calls fsync after every write to the main file, not only
	// when the outermost transaction commits. Off by default for throughput.
	SyncWrites bool
}

func (c Config) withDefaults() Config {
	if c.ReadBuffer == 0 {
		c.ReadBuffer = 64 * 1024
	}
	return c
}

// fileLock guards the storage file with a single mode: a non-blocking,
// whole-file exclusive OS lock. The teacher's folio.fileLock carries a
// LockShared/LockExclusive distinction because several folio processes
// may read one document store concurrently; spec.md §5 rules that case
// out entirely for this engine ("the storage file is owned exclusively
// by the engine process"), so there is nothing for a shared mode to
// express here — every in-process reader already goes through s.mu's
// RWMutex, and a second process opening the same path is the one case
// this lock exists to reject, not to accommodate.
type fileLock struct {
	mu sync.Mutex
	f  *os.File
}

// acquire takes the OS-level exclusive lock, returning ErrLocked if
// another process already holds it. A nil handle (drained via setFile
// for a file-swap, see ShrinkToFit/Restore) makes this a no-op so the
// swap window itself isn't guarded twice.
func (l *fileLock) acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	return l.lock()
}

// release drops the OS-level lock ahead of closing or swapping the
// underlying file handle.
func (l *fileLock) release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	return l.unlock()
}

// setFile swaps the underlying handle. Passing nil drains any in-flight
// lock call and disables further locking until a new handle is set via
// a follow-up setFile + acquire.
func (l *fileLock) setFile(f *os.File) {
	l.mu.Lock()
	l.f = f
	l.mu.Unlock()
}

// Storage is a single-file append-mostly record store with an in-memory
// record table, protected by a write-ahead log. It implements spec.md
// §4.1 and §5 (nested transactions under one reader/writer lock).
type Storage struct {
	path   string
	file   *os.File
	wal    *wal
	lock   *fileLock
	config Config

	mu sync.RWMutex

	table       map[Index]tableEntry
	freeIndexes []Index
	freeRegions []freeRegion
	nextIndex   Index
	tail        int64

	txDepth int
	closed  bool
}

// Open creates or restores a Storage file at path, applying WAL recovery
// if a prior transaction was interrupted mid-write.
func Open(path string, config Config) (*Storage, error) {
	config = config.withDefaults()

	created := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		created = true
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}

	w, err := openWAL(walFilename(path))
	if err != nil {
		file.Close()
		return nil, err
	}

	s := &Storage{
		path:   path,
		file:   file,
		wal:    w,
		lock:   &fileLock{},
		config: config,
		table:  map[Index]tableEntry{},
	}
	s.lock.setFile(file)
	if err := s.lock.acquire(); err != nil {
		file.Close()
		w.close()
		return nil, err
	}

	if created {
		if err := s.initEmpty(); err != nil {
			file.Close()
			w.close()
			return nil, err
		}
		return s, nil
	}

	if err := s.recover(); err != nil {
		file.Close()
		w.close()
		return nil, err
	}
	return s, nil
}

// initEmpty writes a fresh header record for a brand-new file.
func (s *Storage) initEmpty() error {
	hdr := header{Magic: headerMagic, Version: headerVersion}
	payload := hdr.encode()
	buf := append(encodeRecordHeader(0, uint64(len(payload))), payload...)
	if _, err := s.file.WriteAt(buf, 0); err != nil {
		return err
	}
	if err := s.file.Sync(); err != nil {
		return err
	}
	s.tail = int64(len(buf))
	s.nextIndex = 1
	return nil
}

// recover opens an existing file: replays the WAL if a transaction was
// left in progress, then rebuilds the in-memory record table.
func (s *Storage) recover() error {
	empty, err := s.wal.isEmpty()
	if err != nil {
		return err
	}

	hdr, err := s.readHeader()
	if err != nil {
		return err
	}

	if hdr.InTransaction {
		if !empty {
			if err := s.wal.replayReverse(s.file); err != nil {
				return err
			}
		}
		if err := s.file.Truncate(hdr.TxStartTail); err != nil {
			return err
		}
		hdr.InTransaction = false
		if err := s.writeHeader(hdr); err != nil {
			return err
		}
	}

	if !empty {
		if err := s.wal.clear(); err != nil {
			return err
		}
	}

	return s.scanRecords()
}

// readHeader reads and decodes the index-0 header record.
func (s *Storage) readHeader() (header, error) {
	prefix := make([]byte, recordHeaderSize)
	if _, err := s.file.ReadAt(prefix, 0); err != nil {
		return header{}, err
	}
	idx, size, err := decodeRecordHeader(prefix)
	if err != nil || idx != 0 {
		return header{}, ErrCorruptHeader
	}
	payload := make([]byte, size)
	if _, err := s.file.ReadAt(payload, recordHeaderSize); err != nil {
		return header{}, err
	}
	return decodeHeader(payload)
}

func (s *Storage) writeHeader(hdr header) error {
	payload := hdr.encode()
	buf := append(encodeRecordHeader(0, uint64(len(payload))), payload...)
	_, err := s.file.WriteAt(buf, 0)
	return err
}

// scanRecords performs the linear-scan recovery path described in
// spec.md §4.1: read every record header in file order, rebuilding the
// table, the free-index list and the tail offset. Gaps between
// consecutive record headers (beyond their declared size) become free
// regions available for reuse.
func (s *Storage) scanRecords() error {
	info, err := s.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()

	s.table = map[Index]tableEntry{}
	s.freeIndexes = nil
	s.freeRegions = nil

	hdrPayloadSize, err := s.headerPayloadSizeOnDisk()
	if err != nil {
		return err
	}
	pos := recordHeaderSize + hdrPayloadSize
	maxIndex := Index(0)
	seen := map[Index]bool{0: true}

	for pos < size {
		prefix := make([]byte, recordHeaderSize)
		if _, err := s.file.ReadAt(prefix, pos); err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		idx, recSize, err := decodeRecordHeader(prefix)
		if err != nil {
			break
		}
		span := int64(recordHeaderSize + recSize)
		if idx.IsValid() {
			if seen[idx] {
				break
			}
			seen[idx] = true
			s.table[idx] = tableEntry{Position: pos, Size: recSize}
			if idx > maxIndex {
				maxIndex = idx
			}
		} else {
			// A removed/never-finalized slot: its span is reusable.
			s.freeRegions = append(s.freeRegions, freeRegion{Position: pos, Size: uint64(span)})
		}
		pos += span
	}

	s.tail = pos
	s.nextIndex = maxIndex + 1

	var allIndexes []Index
	for i := Index(1); i <= maxIndex; i++ {
		if _, ok := s.table[i]; !ok {
			allIndexes = append(allIndexes, i)
		}
	}
	sort.Slice(allIndexes, func(i, j int) bool { return allIndexes[i] < allIndexes[j] })
	s.freeIndexes = allIndexes

	return nil
}

func (s *Storage) headerPayloadSizeOnDisk() (int64, error) {
	prefix := make([]byte, recordHeaderSize)
	if _, err := s.file.ReadAt(prefix, 0); err != nil {
		return 0, err
	}
	_, size, err := decodeRecordHeader(prefix)
	if err != nil {
		return headerPayloadSize, nil
	}
	return int64(size), nil
}

// Close fsyncs and releases the underlying file handles.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	lerr := s.lock.release()
	s.lock.setFile(nil)
	werr := s.wal.close()
	if lerr != nil {
		s.file.Close()
		return lerr
	}
	ferr := s.file.Close()
	if ferr != nil {
		return ferr
	}
	return werr
}

// Size returns the current file length.
func (s *Storage) Size() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tail, nil
}

// Path returns the storage file's path.
func (s *Storage) Path() string { return s.path }
