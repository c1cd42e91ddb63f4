package db

import (
	"github.com/jpl-au/agdb/serialize"
	"github.com/jpl-au/agdb/storage"
)

// rootIndexEntry is one named index's persisted location: the property
// key it indexes (encoded as a Value) and the storage index of its
// hash-collision multimap.
type rootIndexEntry struct {
	Key       Value
	ByHashIdx storage.Index
}

// rootRecord is the payload of the facade's fixed root record, locating
// every substructure: graph vectors, dictionary, alias bi-map,
// property store and named indexes, per spec.md §6.
type rootRecord struct {
	NodeIdx           storage.Index
	EdgeIdx           storage.Index
	DictIdx           storage.Index
	AliasIDToValueIdx storage.Index
	AliasValueToIDIdx storage.Index
	PropsEntriesIdx   storage.Index
	Indexes           []rootIndexEntry
}

func (d *DB) rootSnapshot() rootRecord {
	r := rootRecord{
		NodeIdx:           d.graph.NodeIndex(),
		EdgeIdx:           d.graph.EdgeIndex(),
		DictIdx:           d.dict.Index(),
		AliasIDToValueIdx: d.alias.idToValueIndex(),
		AliasValueToIDIdx: d.alias.valueToIDIndex(),
		PropsEntriesIdx:   d.props.index(),
	}
	for _, idx := range d.indexes {
		r.Indexes = append(r.Indexes, rootIndexEntry{Key: idx.key, ByHashIdx: idx.byHash.Index()})
	}
	return r
}

func (r rootRecord) encode() []byte {
	buf := serialize.EncodeInt64(int64(r.NodeIdx))
	buf = append(buf, serialize.EncodeInt64(int64(r.EdgeIdx))...)
	buf = append(buf, serialize.EncodeInt64(int64(r.DictIdx))...)
	buf = append(buf, serialize.EncodeInt64(int64(r.AliasIDToValueIdx))...)
	buf = append(buf, serialize.EncodeInt64(int64(r.AliasValueToIDIdx))...)
	buf = append(buf, serialize.EncodeInt64(int64(r.PropsEntriesIdx))...)
	buf = append(buf, serialize.EncodeUint64(uint64(len(r.Indexes)))...)
	for _, e := range r.Indexes {
		buf = append(buf, e.Key.Encode()...)
		buf = append(buf, serialize.EncodeInt64(int64(e.ByHashIdx))...)
	}
	return buf
}

func decodeRoot(b []byte) (rootRecord, error) {
	var r rootRecord
	readI64 := func() (int64, error) {
		v, err := serialize.DecodeInt64(b)
		if err != nil {
			return 0, err
		}
		b = b[8:]
		return v, nil
	}
	var err error
	var v int64
	if v, err = readI64(); err != nil {
		return r, err
	}
	r.NodeIdx = storage.Index(v)
	if v, err = readI64(); err != nil {
		return r, err
	}
	r.EdgeIdx = storage.Index(v)
	if v, err = readI64(); err != nil {
		return r, err
	}
	r.DictIdx = storage.Index(v)
	if v, err = readI64(); err != nil {
		return r, err
	}
	r.AliasIDToValueIdx = storage.Index(v)
	if v, err = readI64(); err != nil {
		return r, err
	}
	r.AliasValueToIDIdx = storage.Index(v)
	if v, err = readI64(); err != nil {
		return r, err
	}
	r.PropsEntriesIdx = storage.Index(v)

	count, err := serialize.DecodeUint64(b)
	if err != nil {
		return r, err
	}
	b = b[8:]
	r.Indexes = make([]rootIndexEntry, 0, count)
	for range count {
		var key Value
		used, err := key.Decode(b)
		if err != nil {
			return r, err
		}
		b = b[used:]
		idx, err := readI64()
		if err != nil {
			return r, err
		}
		r.Indexes = append(r.Indexes, rootIndexEntry{Key: key, ByHashIdx: storage.Index(idx)})
	}
	return r, nil
}

// writeRoot persists the facade's current substructure layout, called
// after any operation that might have changed a substructure's backing
// storage index (e.g. a hash map rehash swaps to a new record).
func (d *DB) writeRoot() error {
	payload := d.rootSnapshot().encode()
	if d.s.Exists(rootIndex) {
		size, err := d.s.ValueSize(rootIndex)
		if err != nil {
			return err
		}
		if uint64(len(payload)) != size {
			if err := d.s.ResizeValue(rootIndex, uint64(len(payload))); err != nil {
				return err
			}
		}
		return d.s.InsertAt(rootIndex, 0, payload)
	}
	idx, err := d.s.Insert(payload)
	if err != nil {
		return err
	}
	if idx != rootIndex {
		// Nothing else has been inserted yet in a fresh New(); this
		// would only trip if callers insert into storage before
		// calling db.New.
		return errInvalidQuery("root record did not land at the reserved index")
	}
	return nil
}

func readRoot(s *storage.Storage) (rootRecord, error) {
	payload, err := s.Value(rootIndex)
	if err != nil {
		return rootRecord{}, err
	}
	return decodeRoot(payload)
}
