package parallel

// SearchResult is a single search hit as returned by the Search API.
// Pointer fields distinguish absent from empty, mirroring the remote schema.
type SearchResult struct {
	Title   *string `json:"title,omitempty"`
	URL     *string `json:"url,omitempty"`
	Excerpt *string `json:"excerpt,omitempty"`
	Source  *string `json:"source,omitempty"`
}

// SearchResponse groups the results for one query.
// TotalResults always equals len(Results).
type SearchResponse struct {
	Query        string         `json:"query"`
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
}

// ExtractResult is the per-URL output of the Extract API. Excerpts and
// FullContent are independently optional; which one is populated depends on
// the request flags, and neither is ever synthesized from the other.
type ExtractResult struct {
	URL         string   `json:"url"`
	Title       *string  `json:"title,omitempty"`
	PublishDate *string  `json:"publish_date,omitempty"`
	Excerpts    []string `json:"excerpts,omitempty"`
	FullContent *string  `json:"full_content,omitempty"`
}

// ExtractResponse is the full Extract API response. Errors carries one
// free-form record per URL that failed, passed through verbatim.
type ExtractResponse struct {
	ExtractID *string          `json:"extract_id,omitempty"`
	Results   []ExtractResult  `json:"results"`
	Errors    []map[string]any `json:"errors"`
}
