package storage

import "encoding/binary"

// headerPayloadSize is the fixed payload size of the index-0 header
// record, padded for forward compatibility.
const headerPayloadSize = 48

var headerMagic = [4]byte{'A', 'G', 'D', 'B'}

const headerVersion uint32 = 1

// header is the payload of the index-0 record. InTransaction and the
// TxStart* fields are the crash-recovery marker described in spec.md
// §4.1: if a process dies mid-transaction, the next Open sees
// InTransaction set and knows exactly how far to truncate the file after
// replaying the WAL's in-place overwrites.
type header struct {
	Magic             [4]byte
	Version           uint32
	InTransaction     bool
	TxStartTail       int64
	TxStartNextIndex  int64
}

func (h header) encode() []byte {
	buf := make([]byte, headerPayloadSize)
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	if h.InTransaction {
		buf[8] = 1
	}
	binary.LittleEndian.PutUint64(buf[16:24], uint64(h.TxStartTail))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(h.TxStartNextIndex))
	return buf
}

// transactionFlagOffset is the byte offset of InTransaction within the
// header payload, used to patch just that flag without re-encoding the
// whole header (mirrors the teacher's fixed-offset dirty() patch).
const transactionFlagOffset = 8

func decodeHeader(b []byte) (header, error) {
	var h header
	if len(b) < headerPayloadSize {
		return h, ErrCorruptHeader
	}
	copy(h.Magic[:], b[0:4])
	if h.Magic != headerMagic {
		return h, ErrCorruptHeader
	}
	h.Version = binary.LittleEndian.Uint32(b[4:8])
	h.InTransaction = b[8] != 0
	h.TxStartTail = int64(binary.LittleEndian.Uint64(b[16:24]))
	h.TxStartNextIndex = int64(binary.LittleEndian.Uint64(b[24:32]))
	return h, nil
}
