package storage

// Value returns a copy of the full payload stored at index.
func (s *Storage) Value(index Index) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.table[index]
	if !ok {
		return nil, ErrNotFound
	}
	buf := make([]byte, entry.Size)
	if _, err := s.file.ReadAt(buf, entry.Position+recordHeaderSize); err != nil {
		return nil, err
	}
	return buf, nil
}

// ValueAt returns length bytes of a record's payload starting at offset.
func (s *Storage) ValueAt(index Index, offset, length int64) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.table[index]
	if !ok {
		return nil, ErrNotFound
	}
	if offset < 0 || length < 0 || uint64(offset+length) > entry.Size {
		return nil, ErrOutOfBounds
	}
	buf := make([]byte, length)
	if _, err := s.file.ReadAt(buf, entry.Position+recordHeaderSize+offset); err != nil {
		return nil, err
	}
	return buf, nil
}

// ValueSize returns the current payload size of a record.
func (s *Storage) ValueSize(index Index) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.table[index]
	if !ok {
		return 0, ErrNotFound
	}
	return entry.Size, nil
}

// Exists reports whether index names a live record.
func (s *Storage) Exists(index Index) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.table[index]
	return ok
}

// Len returns the number of live records, excluding the header slot.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.table)
}
