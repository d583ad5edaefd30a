// Package search defines the result and page types shared by the local
// query engine and the external engine aggregator, and the paginator that
// slices result sequences into pages.
package search

// Result is a single search hit.
type Result struct {
	// Engine names the subsystem that produced the hit: the store name for
	// local searches or the engine name for external ones.
	Engine string `json:"engine"`

	Title string `json:"title"`
	Link  string `json:"link"`
	Host  string `json:"host"`

	// Score is the relevance score for local hits and the 1-based arrival
	// rank for external ones.
	Score float64 `json:"score"`

	// Summary is an excerpt of the matched content. Only local hits carry
	// one.
	Summary string `json:"summary,omitempty"`
}

// Page is a window of an ordered result sequence.
type Page struct {
	Query       string   `json:"query,omitempty"`
	Number      int      `json:"number"`
	Size        int      `json:"size"`
	Total       uint64   `json:"total"`
	HasPrevious bool     `json:"has_previous"`
	HasNext     bool     `json:"has_next"`
	Items       []Result `json:"items"`
}
