package tabrelay

// SearchRecord is a single title search hit.
type SearchRecord struct {
	Type   string `json:"type"`
	Song   string `json:"song"`
	Artist string `json:"artist"`
	Href   string `json:"href"`
}

// Result is the outcome of a lookup. Only the field matching the lookup kind
// is populated. A zero Result is a valid "found nothing" answer and is cached
// like any other.
type Result struct {
	Suggestions []string
	Records     []SearchRecord
	Text        string
}

// Empty reports whether the result carries no data.
func (r *Result) Empty() bool {
	return r == nil || (len(r.Suggestions) == 0 && len(r.Records) == 0 && r.Text == "")
}

// Stats summarizes lookup state for one kind.
type Stats struct {
	Kind     string `json:"kind"`
	Cached   int    `json:"cached"`
	Pending  int    `json:"pending"`
	Distinct uint   `json:"distinct"`
}
