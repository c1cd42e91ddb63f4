package storage

import "encoding/binary"

// recordHeaderSize is the on-disk size of a record's [index:i64][size:u64]
// prefix, per spec.md §4.1.
const recordHeaderSize = 16

// Index identifies a record. Index 0 is reserved as a sentinel and is
// never allocated to a caller.
type Index int64

// IsValid reports whether idx refers to an allocated record.
func (idx Index) IsValid() bool { return idx != 0 }

// tableEntry is the in-memory record-table row: index -> (position, size).
type tableEntry struct {
	Position int64
	Size     uint64
}

// encodeRecordHeader writes the [index][size] prefix for a record.
func encodeRecordHeader(index Index, size uint64) []byte {
	buf := make([]byte, recordHeaderSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(index))
	binary.LittleEndian.PutUint64(buf[8:16], size)
	return buf
}

// decodeRecordHeader reads the [index][size] prefix for a record.
func decodeRecordHeader(b []byte) (Index, uint64, error) {
	if len(b) < recordHeaderSize {
		return 0, 0, ErrCorruptRecord
	}
	index := Index(int64(binary.LittleEndian.Uint64(b[0:8])))
	size := binary.LittleEndian.Uint64(b[8:16])
	return index, size, nil
}

// freeRegion is a reclaimed byte range available for reuse by Insert or
// ResizeValue. Position points at the start of the record header, so the
// usable span (for a new record of the same framing) is Size -
// recordHeaderSize bytes of payload.
type freeRegion struct {
	Position int64
	Size     uint64 // total span including the record header
}
