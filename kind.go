package tabrelay

import "strings"

// LookupKind selects the browser session, cache and correlation strategy
// used to answer a request.
type LookupKind int

// LookupKind constants. The zero value is not a valid kind.
const (
	KindSuggestion LookupKind = iota + 1
	KindSearch
	KindDocument
)

// Kinds lists every lookup kind in a stable order.
var Kinds = []LookupKind{KindSuggestion, KindSearch, KindDocument}

// Field returns the wire field name used by requests and responses of this kind.
func (k LookupKind) Field() string {
	switch k {
	case KindSuggestion:
		return "suggest"
	case KindSearch:
		return "search"
	case KindDocument:
		return "music"
	default:
		return ""
	}
}

// String returns a human-readable kind name for logs.
func (k LookupKind) String() string {
	switch k {
	case KindSuggestion:
		return "suggestion"
	case KindSearch:
		return "search"
	case KindDocument:
		return "document"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the defined kinds.
func (k LookupKind) Valid() bool {
	return k >= KindSuggestion && k <= KindDocument
}

// NormalizeQuery trims surrounding whitespace and keeps case as typed.
// Queries are compared by exact string equality after normalization.
func NormalizeQuery(s string) string {
	return strings.TrimSpace(s)
}
