package db

import gojson "github.com/goccy/go-json"

// jsonMarshal centralizes the goccy/go-json dependency per SPEC_FULL §2
// ("value/record (de)serialization helpers, machine-readable error
// payloads, query result export").
func jsonMarshal(v any) ([]byte, error) {
	return gojson.Marshal(v)
}
