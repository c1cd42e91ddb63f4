package db

import (
	"sort"

	"github.com/jpl-au/agdb/collection"
	"github.com/jpl-au/agdb/dictionary"
	"github.com/jpl-au/agdb/serialize"
	"github.com/jpl-au/agdb/storage"
)

// aliasMap is a bidirectional string<->ElementID mapping, per spec.md
// §3: strings unique, ids unique. Alias strings are stored in the
// engine's shared value dictionary (reference-counted like any other
// value) so the engine carries only one string-interning mechanism;
// idToValue/valueToID are the two halves of the bijection.
type aliasMap struct {
	dict      *dictionary.Dictionary
	idToValue *collection.HashMap[int64, storage.Index]
	valueToID *collection.HashMap[int64, int64] // dictionary index -> element id
}

func newAliasMap(s *storage.Storage, dict *dictionary.Dictionary, alg collection.Algorithm) (*aliasMap, error) {
	idToValue, err := collection.NewHashMap[int64, storage.Index](s, alg, collection.Int64Codec, collection.IndexCodec)
	if err != nil {
		return nil, err
	}
	valueToID, err := collection.NewHashMap[int64, int64](s, alg, collection.Int64Codec, collection.Int64Codec)
	if err != nil {
		return nil, err
	}
	return &aliasMap{dict: dict, idToValue: idToValue, valueToID: valueToID}, nil
}

func openAliasMap(s *storage.Storage, dict *dictionary.Dictionary, alg collection.Algorithm, idToValueIdx, valueToIDIdx storage.Index) *aliasMap {
	return &aliasMap{
		dict:      dict,
		idToValue: collection.OpenHashMap[int64, storage.Index](s, idToValueIdx, alg, collection.Int64Codec, collection.IndexCodec),
		valueToID: collection.OpenHashMap[int64, int64](s, valueToIDIdx, alg, collection.Int64Codec, collection.Int64Codec),
	}
}

func (a *aliasMap) idToValueIndex() storage.Index { return a.idToValue.Index() }
func (a *aliasMap) valueToIDIndex() storage.Index { return a.valueToID.Index() }

// Insert binds alias to id. Returns *Error{Kind: KindAliasExists} if
// alias already names a different id.
func (a *aliasMap) Insert(id ElementID, alias string) error {
	dictIdx, err := a.dict.Insert(serialize.NewString(alias))
	if err != nil {
		return err
	}
	if existingID, ok, err := a.valueToID.Value(int64(dictIdx)); err != nil {
		return err
	} else if ok && ElementID(existingID) != id {
		_ = a.dict.Remove(dictIdx) // undo the speculative insert's refcount bump
		return errAliasExists(alias)
	}

	// An id may have at most one alias: replace any prior binding.
	if oldIdx, ok, err := a.idToValue.Value(int64(id)); err != nil {
		return err
	} else if ok {
		if err := a.valueToID.Remove(oldIdx); err != nil {
			return err
		}
		if err := a.dict.Remove(oldIdx); err != nil {
			return err
		}
	}

	if err := a.idToValue.Insert(int64(id), dictIdx); err != nil {
		return err
	}
	return a.valueToID.Insert(int64(dictIdx), int64(id))
}

// Resolve finds the ElementID bound to alias, without touching the
// dictionary's refcount.
func (a *aliasMap) Resolve(alias string) (ElementID, bool, error) {
	dictIdx, ok, err := a.dict.Find(serialize.NewString(alias))
	if err != nil || !ok {
		return 0, false, err
	}
	id, ok, err := a.valueToID.Value(int64(dictIdx))
	return ElementID(id), ok, err
}

// Alias returns the alias bound to id, if any.
func (a *aliasMap) Alias(id ElementID) (string, bool, error) {
	dictIdx, ok, err := a.idToValue.Value(int64(id))
	if err != nil || !ok {
		return "", false, err
	}
	v, err := a.dict.Value(dictIdx)
	if err != nil {
		return "", false, err
	}
	return v.String, true, nil
}

// Remove unbinds id's alias, if any, decrementing the dictionary
// reference it held.
func (a *aliasMap) Remove(id ElementID) error {
	dictIdx, ok, err := a.idToValue.Value(int64(id))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := a.idToValue.Remove(int64(id)); err != nil {
		return err
	}
	if err := a.valueToID.Remove(int64(dictIdx)); err != nil {
		return err
	}
	return a.dict.Remove(dictIdx)
}

// RemoveAlias unbinds whatever id alias names, returning whether a
// binding existed.
func (a *aliasMap) RemoveAlias(alias string) (bool, error) {
	id, ok, err := a.Resolve(alias)
	if err != nil || !ok {
		return false, err
	}
	return true, a.Remove(id)
}

// Aliases returns every bound alias, sorted lexicographically: the one
// code path spec.md's §9 references sorts before returning, so this
// engine documents and matches that ordering rather than leaving it
// implementation-defined.
func (a *aliasMap) Aliases() ([]string, error) {
	ids, err := a.idToValue.Keys()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		alias, ok, err := a.Alias(ElementID(id))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out, nil
}
