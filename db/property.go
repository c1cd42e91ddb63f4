package db

import (
	"github.com/jpl-au/agdb/collection"
	"github.com/jpl-au/agdb/dictionary"
	"github.com/jpl-au/agdb/storage"
)

// propEntry is one (key, value) slot in the property store, referring
// into the shared dictionary. Seq preserves insertion order within an
// element: spec.md §3 calls PropertyStore "an ordered sequence", but the
// underlying multimap's probe order is not insertion order, so entries
// carry an explicit sequence number and callers sort by it.
type propEntry struct {
	KeyIdx storage.Index
	ValIdx storage.Index
	Seq    uint64
}

const propEntrySize = 24

var propEntryCodec = collection.FixedCodec[propEntry]{
	Size: propEntrySize,
	Encode: func(e propEntry) []byte {
		buf := make([]byte, propEntrySize)
		putI64(buf[0:8], int64(e.KeyIdx))
		putI64(buf[8:16], int64(e.ValIdx))
		putI64(buf[16:24], int64(e.Seq))
		return buf
	},
	Decode: func(b []byte) propEntry {
		return propEntry{
			KeyIdx: storage.Index(getI64(b[0:8])),
			ValIdx: storage.Index(getI64(b[8:16])),
			Seq:    uint64(getI64(b[16:24])),
		}
	},
}

func putI64(b []byte, v int64) {
	for i := range 8 {
		b[i] = byte(v >> (8 * i))
	}
}

func getI64(b []byte) int64 {
	var v uint64
	for i := range 8 {
		v |= uint64(b[i]) << (8 * i)
	}
	return int64(v)
}

// propertyStore implements spec.md §3's PropertyStore: for each element
// id, an ordered sequence of (keyIndex, valueIndex) pairs referring into
// the Dictionary. Grounded on original_source/agdb/src/db/db_user_value.rs.
type propertyStore struct {
	dict    *dictionary.Dictionary
	entries *collection.MultiMap[int64, propEntry]
	seq     uint64 // next sequence number; monotonic for the store's lifetime
}

func newPropertyStore(s *storage.Storage, dict *dictionary.Dictionary, alg collection.Algorithm) (*propertyStore, error) {
	entries, err := collection.NewMultiMap[int64, propEntry](s, alg, collection.Int64Codec, propEntryCodec)
	if err != nil {
		return nil, err
	}
	return &propertyStore{dict: dict, entries: entries}, nil
}

func openPropertyStore(s *storage.Storage, dict *dictionary.Dictionary, alg collection.Algorithm, entriesIdx storage.Index) (*propertyStore, error) {
	store := &propertyStore{
		dict:    dict,
		entries: collection.OpenMultiMap[int64, propEntry](s, entriesIdx, alg, collection.Int64Codec, propEntryCodec),
	}
	keys, err := store.entries.Keys()
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		all, err := store.entries.Values(k)
		if err != nil {
			return nil, err
		}
		for _, e := range all {
			if e.Seq >= store.seq {
				store.seq = e.Seq + 1
			}
		}
	}
	return store, nil
}

func (p *propertyStore) index() storage.Index { return p.entries.Index() }

// orderedEntries returns id's entries sorted by insertion order.
func (p *propertyStore) orderedEntries(id ElementID) ([]propEntry, error) {
	entries, err := p.entries.Values(int64(id))
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Seq < entries[j-1].Seq; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	return entries, nil
}

// InsertValues appends or replaces kvs on id: a key already present on
// id has its value replaced (ReplaceKeyValue); a new key is appended
// (InsertKeyValue) preserving insertion order.
func (p *propertyStore) InsertValues(id ElementID, kvs []KeyValue) error {
	existing, err := p.orderedEntries(id)
	if err != nil {
		return err
	}
	for _, kv := range kvs {
		replaced := false
		for _, e := range existing {
			existingKey, err := p.dict.Value(e.KeyIdx)
			if err != nil {
				return err
			}
			if existingKey.Equal(kv.Key) {
				valIdx, err := p.dict.Insert(kv.Value)
				if err != nil {
					return err
				}
				if err := p.dict.Remove(e.ValIdx); err != nil {
					return err
				}
				if err := p.entries.RemoveValue(int64(id), e); err != nil {
					return err
				}
				newEntry := propEntry{KeyIdx: e.KeyIdx, ValIdx: valIdx, Seq: e.Seq}
				if err := p.entries.Insert(int64(id), newEntry); err != nil {
					return err
				}
				replaced = true
				break
			}
		}
		if replaced {
			continue
		}

		keyIdx, err := p.dict.Insert(kv.Key)
		if err != nil {
			return err
		}
		valIdx, err := p.dict.Insert(kv.Value)
		if err != nil {
			return err
		}
		entry := propEntry{KeyIdx: keyIdx, ValIdx: valIdx, Seq: p.seq}
		p.seq++
		if err := p.entries.Insert(int64(id), entry); err != nil {
			return err
		}
		existing = append(existing, entry)
	}
	return nil
}

// Values returns id's properties in insertion order.
func (p *propertyStore) Values(id ElementID) ([]KeyValue, error) {
	entries, err := p.orderedEntries(id)
	if err != nil {
		return nil, err
	}
	out := make([]KeyValue, 0, len(entries))
	for _, e := range entries {
		k, err := p.dict.Value(e.KeyIdx)
		if err != nil {
			return nil, err
		}
		v, err := p.dict.Value(e.ValIdx)
		if err != nil {
			return nil, err
		}
		out = append(out, KeyValue{Key: k, Value: v})
	}
	return out, nil
}

// ValuesByKeys returns only the properties of id whose key is in keys,
// preserving id's insertion order.
func (p *propertyStore) ValuesByKeys(id ElementID, keys []Value) ([]KeyValue, error) {
	all, err := p.Values(id)
	if err != nil {
		return nil, err
	}
	var out []KeyValue
	for _, kv := range all {
		for _, k := range keys {
			if kv.Key.Equal(k) {
				out = append(out, kv)
				break
			}
		}
	}
	return out, nil
}

// Keys returns id's property keys in insertion order.
func (p *propertyStore) Keys(id ElementID) ([]Value, error) {
	all, err := p.Values(id)
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(all))
	for i, kv := range all {
		out[i] = kv.Key
	}
	return out, nil
}

// KeyCount returns the number of properties stored on id.
func (p *propertyStore) KeyCount(id ElementID) (uint64, error) {
	count, err := p.entries.Values(int64(id))
	return uint64(len(count)), err
}

// RemoveKeys deletes every property on id whose key is in keys.
func (p *propertyStore) RemoveKeys(id ElementID, keys []Value) (int, error) {
	entries, err := p.entries.Values(int64(id))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		k, err := p.dict.Value(e.KeyIdx)
		if err != nil {
			return removed, err
		}
		match := false
		for _, key := range keys {
			if k.Equal(key) {
				match = true
				break
			}
		}
		if !match {
			continue
		}
		if err := p.entries.RemoveValue(int64(id), e); err != nil {
			return removed, err
		}
		if err := p.dict.Remove(e.KeyIdx); err != nil {
			return removed, err
		}
		if err := p.dict.Remove(e.ValIdx); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// RemoveAll deletes every property id owns, used when id itself is
// removed from the graph.
func (p *propertyStore) RemoveAll(id ElementID) error {
	entries, err := p.entries.Values(int64(id))
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := p.entries.RemoveValue(int64(id), e); err != nil {
			return err
		}
		if err := p.dict.Remove(e.KeyIdx); err != nil {
			return err
		}
		if err := p.dict.Remove(e.ValIdx); err != nil {
			return err
		}
	}
	return nil
}
