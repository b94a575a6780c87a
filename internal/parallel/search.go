package parallel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	DefaultMaxResults        = 10
	DefaultMaxCharsPerResult = 10000
)

// SearchOptions tunes a search call. Zero values take the documented
// defaults; an empty Objective is synthesized from the queries.
type SearchOptions struct {
	Objective         string
	MaxResults        int
	MaxCharsPerResult int
}

type searchRequest struct {
	SearchQueries []string       `json:"search_queries"`
	MaxResults    int            `json:"max_results"`
	Excerpts      excerptsConfig `json:"excerpts"`
	Objective     string         `json:"objective,omitempty"`
}

type excerptsConfig struct {
	MaxCharsPerResult int `json:"max_chars_per_result"`
}

type searchEnvelope struct {
	Results json.RawMessage `json:"results"`
}

// Search runs the query batch in one request and normalizes the response
// into one SearchResponse per query for grouped or empty payloads, or a
// single batch-wide SearchResponse for flat payloads.
func (c *Client) Search(ctx context.Context, queries []string, opts SearchOptions) ([]SearchResponse, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.MaxCharsPerResult <= 0 {
		opts.MaxCharsPerResult = DefaultMaxCharsPerResult
	}

	objective := opts.Objective
	if objective == "" {
		// The remote service uses the objective for ranking, so a default
		// is always sent.
		objective = "Find relevant information for: " + strings.Join(queries, ", ")
	}

	body := searchRequest{
		SearchQueries: queries,
		MaxResults:    opts.MaxResults,
		Excerpts:      excerptsConfig{MaxCharsPerResult: opts.MaxCharsPerResult},
		Objective:     objective,
	}

	respBody, err := c.postJSON(ctx, "/search", body)
	if err != nil {
		return nil, err
	}

	var envelope searchEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("parallel: failed to parse search response: %w", err)
	}

	return normalizeSearch(decodeSearchPayload(envelope.Results), queries), nil
}

// normalizeSearch maps a tagged payload onto the public response shape.
func normalizeSearch(payload searchPayload, queries []string) []SearchResponse {
	switch payload.shape {
	case shapeGrouped:
		responses := make([]SearchResponse, 0, len(payload.groups))
		for _, group := range payload.groups {
			results := make([]SearchResult, 0, len(group.Results))
			for _, item := range group.Results {
				results = append(results, SearchResult{
					Title:   item.Title,
					URL:     item.URL,
					Excerpt: groupedExcerpt(item),
					Source:  item.Source,
				})
			}
			responses = append(responses, SearchResponse{
				Query:        group.Query,
				Results:      results,
				TotalResults: len(results),
			})
		}
		return responses

	case shapeFlat:
		results := make([]SearchResult, 0, len(payload.items))
		for _, item := range payload.items {
			results = append(results, SearchResult{
				Title:   item.Title,
				URL:     item.URL,
				Excerpt: flatExcerpt(item),
				Source:  item.Source,
			})
		}
		// Flat results belong to the whole batch, so the queries collapse
		// into one response.
		return []SearchResponse{{
			Query:        strings.Join(queries, ", "),
			Results:      results,
			TotalResults: len(results),
		}}

	default:
		// Preserve cardinality with the request instead of failing.
		responses := make([]SearchResponse, 0, len(queries))
		for _, query := range queries {
			responses = append(responses, SearchResponse{
				Query:   query,
				Results: []SearchResult{},
			})
		}
		return responses
	}
}

// groupedExcerpt picks the scalar excerpt field, falling back to content.
func groupedExcerpt(item rawSearchItem) *string {
	if item.Excerpt != nil {
		return item.Excerpt
	}
	return item.Content
}

// flatExcerpt joins a list-valued excerpts field with blank lines, falling
// back to the scalar content field when no excerpts are present.
func flatExcerpt(item rawSearchItem) *string {
	if len(item.Excerpts) > 0 {
		joined := strings.Join(item.Excerpts, "\n\n")
		return &joined
	}
	return item.Content
}
