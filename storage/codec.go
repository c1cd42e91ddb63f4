package storage

import "github.com/jpl-au/agdb/serialize"

// InsertValue encodes v with its Codec and inserts it as a new record.
func (s *Storage) InsertValue(v serialize.Codec) (Index, error) {
	return s.Insert(v.Encode())
}

// ReadValue reads a record's payload and decodes it into v, returning the
// number of bytes consumed.
func (s *Storage) ReadValue(index Index, v serialize.Codec) (int, error) {
	buf, err := s.Value(index)
	if err != nil {
		return 0, err
	}
	return v.Decode(buf)
}

// ReplaceValue re-encodes v and writes it over an existing record, growing
// or shrinking the record as needed.
func (s *Storage) ReplaceValue(index Index, v serialize.Codec) error {
	buf := v.Encode()
	if err := s.ResizeValue(index, uint64(len(buf))); err != nil {
		return err
	}
	return s.InsertAt(index, 0, buf)
}
