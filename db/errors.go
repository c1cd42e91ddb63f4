package db

import "fmt"

// Kind is a machine-readable error category, per spec.md §7.
type Kind int

const (
	KindIO Kind = iota
	KindSerialization
	KindIDNotFound
	KindAliasNotFound
	KindIndexNotFound
	KindAliasExists
	KindIndexExists
	KindInvalidQuery
	KindWalCorruption
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IoError"
	case KindSerialization:
		return "SerializationError"
	case KindIDNotFound:
		return "IdNotFound"
	case KindAliasNotFound:
		return "AliasNotFound"
	case KindIndexNotFound:
		return "IndexNotFound"
	case KindAliasExists:
		return "AliasExists"
	case KindIndexExists:
		return "IndexExists"
	case KindInvalidQuery:
		return "InvalidQuery"
	case KindWalCorruption:
		return "WalCorruption"
	default:
		return "Unknown"
	}
}

// Error is the engine's discriminated error type: a machine-readable
// Kind plus a human-readable Message, per spec.md §7 and §6 ("error
// values carry a machine-readable kind and a human-readable
// description"). It implements json.Marshaler (via goccy/go-json at the
// call site, since Error itself only needs to produce a plain map) so
// out-of-scope collaborators like the HTTP server can serialize it
// without engine-specific tooling.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// MarshalJSON implements json.Marshaler.
func (e *Error) MarshalJSON() ([]byte, error) {
	return jsonMarshal(map[string]any{
		"kind":    e.Kind.String(),
		"message": e.Message,
	})
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func errIDNotFound(id ElementID) *Error {
	return newError(KindIDNotFound, "'%d' not found", int64(id))
}

func errAliasNotFound(alias string) *Error {
	return newError(KindAliasNotFound, "alias '%s' not found", alias)
}

func errAliasExists(alias string) *Error {
	return newError(KindAliasExists, "alias '%s' already exists", alias)
}

func errIndexNotFound(key string) *Error {
	return newError(KindIndexNotFound, "index '%s' not found", key)
}

func errIndexExists(key string) *Error {
	return newError(KindIndexExists, "index '%s' already exists", key)
}

func errInvalidQuery(format string, args ...any) *Error {
	return newError(KindInvalidQuery, format, args...)
}
