package storage

// writeRange overwrites data at position, first journaling the pre-image
// of any bytes that already exist on disk in that range to the WAL, per
// spec.md §4.1 ("BEFORE any mutating write..."). Bytes written beyond the
// current tail are a pure append and need no pre-image: a rollback undoes
// them by truncating back to the transaction's starting tail.
func (s *Storage) writeRange(position int64, data []byte) error {
	overlap := int64(0)
	if position < s.tail {
		remain := s.tail - position
		if remain > int64(len(data)) {
			overlap = int64(len(data))
		} else {
			overlap = remain
		}
	}
	if overlap > 0 {
		old := make([]byte, overlap)
		if _, err := s.file.ReadAt(old, position); err != nil {
			return err
		}
		if err := s.wal.append(position, old); err != nil {
			return err
		}
	}
	if _, err := s.file.WriteAt(data, position); err != nil {
		return err
	}
	if end := position + int64(len(data)); end > s.tail {
		s.tail = end
	}
	if s.config.SyncWrites {
		return s.file.Sync()
	}
	return nil
}

// withWriteLocked runs fn under WAL protection. If no transaction is
// already open it wraps fn in its own begin/commit/rollback so every
// mutating call is journaled even when the caller never called
// Transaction() explicitly.
func (s *Storage) withWriteLocked(fn func() error) error {
	if s.closed {
		return ErrClosed
	}
	if s.txDepth == 0 {
		if err := s.beginLocked(); err != nil {
			return err
		}
		if err := fn(); err != nil {
			s.rollbackLocked()
			return err
		}
		return s.commitLocked()
	}
	return fn()
}

func (s *Storage) allocIndex() Index {
	if len(s.freeIndexes) > 0 {
		idx := s.freeIndexes[0]
		s.freeIndexes = s.freeIndexes[1:]
		return idx
	}
	idx := s.nextIndex
	s.nextIndex++
	return idx
}

// allocRegion finds the smallest free region that fits span (best fit,
// to limit fragmentation), or returns the current tail to append a new
// region.
func (s *Storage) allocRegion(span uint64) int64 {
	best := -1
	for i, r := range s.freeRegions {
		if r.Size >= span && (best == -1 || r.Size < s.freeRegions[best].Size) {
			best = i
		}
	}
	if best == -1 {
		return s.tail
	}
	r := s.freeRegions[best]
	leftover := r.Size - span
	if leftover >= recordHeaderSize {
		s.freeRegions[best] = freeRegion{Position: r.Position + int64(span), Size: leftover}
	} else {
		s.freeRegions = append(s.freeRegions[:best], s.freeRegions[best+1:]...)
	}
	return r.Position
}

// consumeAdjacentFree removes a free region starting exactly at pos with
// enough space for need, used by ResizeValue's in-place growth path.
func (s *Storage) consumeAdjacentFree(pos int64, need uint64) bool {
	for i, r := range s.freeRegions {
		if r.Position == pos && r.Size >= need {
			leftover := r.Size - need
			if leftover >= recordHeaderSize {
				s.freeRegions[i] = freeRegion{Position: r.Position + int64(need), Size: leftover}
			} else {
				s.freeRegions = append(s.freeRegions[:i], s.freeRegions[i+1:]...)
			}
			return true
		}
	}
	return false
}

func insertSortedIndex(list []Index, idx Index) []Index {
	pos := 0
	for pos < len(list) && list[pos] < idx {
		pos++
	}
	list = append(list, 0)
	copy(list[pos+1:], list[pos:])
	list[pos] = idx
	return list
}

// Insert allocates a new record, writing data into it and returning its
// index. It reuses the lowest free index and the smallest free region
// that fits before growing the file, per spec.md §4.1.
func (s *Storage) Insert(data []byte) (Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var idx Index
	err := s.withWriteLocked(func() error {
		idx = s.allocIndex()
		span := uint64(recordHeaderSize + len(data))
		position := s.allocRegion(span)
		buf := append(encodeRecordHeader(idx, uint64(len(data))), data...)
		if err := s.writeRange(position, buf); err != nil {
			return err
		}
		s.table[idx] = tableEntry{Position: position, Size: uint64(len(data))}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return idx, nil
}

// InsertAt overlays bytes inside an existing record's payload. It fails
// with ErrOutOfBounds if the write would extend past the record's current
// size; call ResizeValue first to grow the record.
func (s *Storage) InsertAt(index Index, offset int64, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withWriteLocked(func() error {
		entry, ok := s.table[index]
		if !ok {
			return ErrNotFound
		}
		if offset < 0 || uint64(offset)+uint64(len(data)) > entry.Size {
			return ErrOutOfBounds
		}
		return s.writeRange(entry.Position+recordHeaderSize+offset, data)
	})
}

// MoveAt performs an intra-record memmove: bytes at fromOffset are copied
// to toOffset within the same record.
func (s *Storage) MoveAt(index Index, fromOffset, toOffset, length int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withWriteLocked(func() error {
		entry, ok := s.table[index]
		if !ok {
			return ErrNotFound
		}
		if fromOffset < 0 || toOffset < 0 || length < 0 ||
			uint64(fromOffset+length) > entry.Size || uint64(toOffset+length) > entry.Size {
			return ErrOutOfBounds
		}
		base := entry.Position + recordHeaderSize
		buf := make([]byte, length)
		if _, err := s.file.ReadAt(buf, base+fromOffset); err != nil {
			return err
		}
		return s.writeRange(base+toOffset, buf)
	})
}

func (s *Storage) patchRecordSize(position int64, newSize uint64) error {
	return s.writeRange(position+8, encodeUint64(newSize))
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	for i := range 8 {
		buf[i] = byte(v >> (8 * i))
	}
	return buf
}

// ResizeValue grows or shrinks a record in place when possible, otherwise
// relocates it (copying the live payload) per spec.md §4.1.
func (s *Storage) ResizeValue(index Index, newSize uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withWriteLocked(func() error {
		entry, ok := s.table[index]
		if !ok {
			return ErrNotFound
		}
		if newSize == entry.Size {
			return nil
		}
		if newSize < entry.Size {
			if err := s.patchRecordSize(entry.Position, newSize); err != nil {
				return err
			}
			freedSpan := entry.Size - newSize
			if freedSpan >= recordHeaderSize {
				s.freeRegions = append(s.freeRegions, freeRegion{
					Position: entry.Position + recordHeaderSize + int64(newSize),
					Size:     freedSpan,
				})
			}
			s.table[index] = tableEntry{Position: entry.Position, Size: newSize}
			return nil
		}

		need := newSize - entry.Size
		nextPos := entry.Position + recordHeaderSize + int64(entry.Size)
		if s.consumeAdjacentFree(nextPos, need) {
			if err := s.patchRecordSize(entry.Position, newSize); err != nil {
				return err
			}
			s.table[index] = tableEntry{Position: entry.Position, Size: newSize}
			return nil
		}

		payload := make([]byte, entry.Size)
		if _, err := s.file.ReadAt(payload, entry.Position+recordHeaderSize); err != nil {
			return err
		}
		newSpan := uint64(recordHeaderSize) + newSize
		newPos := s.allocRegion(newSpan)
		buf := make([]byte, recordHeaderSize+newSize)
		copy(buf, encodeRecordHeader(index, newSize))
		copy(buf[recordHeaderSize:], payload)
		if err := s.writeRange(newPos, buf); err != nil {
			return err
		}
		s.freeRegions = append(s.freeRegions, freeRegion{
			Position: entry.Position,
			Size:     recordHeaderSize + entry.Size,
		})
		s.table[index] = tableEntry{Position: newPos, Size: newSize}
		return nil
	})
}

// Remove frees a record's index and marks its on-disk span reusable.
// Space reclamation into a smaller file is deferred to ShrinkToFit.
func (s *Storage) Remove(index Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withWriteLocked(func() error {
		entry, ok := s.table[index]
		if !ok {
			return ErrNotFound
		}
		if err := s.writeRange(entry.Position, encodeRecordHeader(0, entry.Size)); err != nil {
			return err
		}
		delete(s.table, index)
		s.freeIndexes = insertSortedIndex(s.freeIndexes, index)
		s.freeRegions = append(s.freeRegions, freeRegion{
			Position: entry.Position,
			Size:     recordHeaderSize + entry.Size,
		})
		return nil
	})
}
