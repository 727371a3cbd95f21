package tabrelay

import "context"

// Extractor drives a browser page to answer a search or document lookup.
// Implementations serve one page and are not safe for concurrent use;
// callers serialize access.
type Extractor interface {
	// Extract navigates to the page derived from query and extracts a result.
	// Returns ENOTFOUND when the page loads with a non-success status and
	// EINVALID when the page structure cannot be interpreted. Any other
	// error is a transport fault.
	Extract(ctx context.Context, query string) (*Result, error)
}

// SuggestionEvent is a network response observed on the typeahead page.
type SuggestionEvent struct {
	URL    string
	Status int
	Body   []byte
}

// Typeahead drives the persistent search input whose suggestions arrive
// out-of-band as SuggestionEvents.
type Typeahead interface {
	// Submit clears the input and types query into it. It returns once
	// typing is done; the suggestions arrive later on Events.
	Submit(ctx context.Context, query string) error

	// Clear empties the input.
	Clear(ctx context.Context) error

	// Events streams suggestion responses. The channel is closed when the
	// session ends.
	Events() <-chan SuggestionEvent
}

// PageParser interprets the rendered HTML of a page.
type PageParser interface {
	// Parse extracts a result from html. Returns EINVALID when the markup
	// does not have the expected structure.
	Parse(html string) (*Result, error)
}
