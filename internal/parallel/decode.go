package parallel

import "encoding/json"

// The Search API returns its results collection in one of three shapes.
// decodeSearchPayload tags which one, so normalization can be tested apart
// from the HTTP layer.
type searchShape int

const (
	shapeEmpty   searchShape = iota // missing, null, empty, or unrecognized
	shapeGrouped                    // list of per-query groups
	shapeFlat                       // one undifferentiated result list
)

type rawSearchItem struct {
	Title    *string  `json:"title"`
	URL      *string  `json:"url"`
	Excerpt  *string  `json:"excerpt"`
	Content  *string  `json:"content"`
	Excerpts []string `json:"excerpts"`
	Source   *string  `json:"source"`
}

type rawSearchGroup struct {
	Query   string          `json:"query"`
	Results []rawSearchItem `json:"results"`
}

type searchPayload struct {
	shape  searchShape
	groups []rawSearchGroup // set when shape == shapeGrouped
	items  []rawSearchItem  // set when shape == shapeFlat
}

// decodeSearchPayload classifies and decodes the raw "results" value.
// Grouped is detected by a "query" key on the first element; anything that
// is not a non-empty JSON array decodes as empty rather than failing.
func decodeSearchPayload(raw json.RawMessage) searchPayload {
	if len(raw) == 0 {
		return searchPayload{shape: shapeEmpty}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil || len(elems) == 0 {
		return searchPayload{shape: shapeEmpty}
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(elems[0], &probe); err != nil {
		return searchPayload{shape: shapeEmpty}
	}

	if _, ok := probe["query"]; ok {
		var groups []rawSearchGroup
		if err := json.Unmarshal(raw, &groups); err != nil {
			return searchPayload{shape: shapeEmpty}
		}
		return searchPayload{shape: shapeGrouped, groups: groups}
	}

	var items []rawSearchItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return searchPayload{shape: shapeEmpty}
	}
	return searchPayload{shape: shapeFlat, items: items}
}
