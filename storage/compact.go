package storage

import (
	"os"
	"sort"
)

// offsetWriter tracks the write position for sequential WriteAt calls,
// adapted from the teacher's repair.go.
type offsetWriter struct {
	file *os.File
	off  int64
}

func (ow *offsetWriter) write(p []byte) error {
	if _, err := ow.file.WriteAt(p, ow.off); err != nil {
		return err
	}
	ow.off += int64(len(p))
	return nil
}

// ShrinkToFit compacts the file by rewriting every live record
// contiguously from the start, in ascending index order, discarding
// free regions and tombstoned slots. The engine calls it from
// OptimizeStorage under the DB writer lock, mirroring the teacher's
// Repair.
func (s *Storage) ShrinkToFit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.txDepth > 0 {
		return ErrInTransaction
	}

	dir, name := splitDir(s.path)
	tmp, err := os.CreateTemp(dir, name+".compact-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	hdr := header{Magic: headerMagic, Version: headerVersion}
	payload := hdr.encode()
	buf := append(encodeRecordHeader(0, uint64(len(payload))), payload...)
	ow := &offsetWriter{file: tmp}
	if err := ow.write(buf); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	indexes := make([]Index, 0, len(s.table))
	for idx := range s.table {
		indexes = append(indexes, idx)
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

	newTable := make(map[Index]tableEntry, len(indexes))
	for _, idx := range indexes {
		entry := s.table[idx]
		payload := make([]byte, entry.Size)
		if _, err := s.file.ReadAt(payload, entry.Position+recordHeaderSize); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
		recBuf := append(encodeRecordHeader(idx, entry.Size), payload...)
		newPos := ow.off
		if err := ow.write(recBuf); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
		newTable[idx] = tableEntry{Position: newPos, Size: entry.Size}
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	s.lock.release()
	s.lock.setFile(nil)
	if err := s.file.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return err
	}
	file, err := os.OpenFile(s.path, os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	s.file = file
	s.lock.setFile(file)
	if err := s.lock.acquire(); err != nil {
		return err
	}

	s.table = newTable
	s.freeRegions = nil
	s.freeIndexes = nil
	maxIndex := Index(0)
	for idx := range newTable {
		if idx > maxIndex {
			maxIndex = idx
		}
	}
	var freeIdx []Index
	for i := Index(1); i <= maxIndex; i++ {
		if _, ok := newTable[i]; !ok {
			freeIdx = append(freeIdx, i)
		}
	}
	sort.Slice(freeIdx, func(i, j int) bool { return freeIdx[i] < freeIdx[j] })
	s.freeIndexes = freeIdx
	s.nextIndex = maxIndex + 1
	s.tail = ow.off

	return s.wal.clear()
}
