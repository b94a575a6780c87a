package parallel

import (
	"context"
	"encoding/json"
	"fmt"
)

// ExtractOptions tunes an extract call. Excerpts defaults to true when nil;
// FullContent defaults to false.
type ExtractOptions struct {
	Objective   string
	Excerpts    *bool
	FullContent bool
}

type extractRequest struct {
	URLs        []string `json:"urls"`
	Excerpts    bool     `json:"excerpts"`
	FullContent bool     `json:"full_content"`
	Objective   string   `json:"objective,omitempty"`
}

type extractEnvelope struct {
	ExtractID *string          `json:"extract_id"`
	Results   []ExtractResult  `json:"results"`
	Errors    []map[string]any `json:"errors"`
}

// Extract fetches content for the URL batch in one request. Results and
// per-URL error records are passed through from the API with field renaming
// only; their cardinality is whatever the API returned.
func (c *Client) Extract(ctx context.Context, urls []string, opts ExtractOptions) (*ExtractResponse, error) {
	excerpts := true
	if opts.Excerpts != nil {
		excerpts = *opts.Excerpts
	}

	body := extractRequest{
		URLs:        urls,
		Excerpts:    excerpts,
		FullContent: opts.FullContent,
		Objective:   opts.Objective,
	}

	respBody, err := c.postJSON(ctx, "/extract", body)
	if err != nil {
		return nil, err
	}

	var envelope extractEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("parallel: failed to parse extract response: %w", err)
	}

	resp := &ExtractResponse{
		ExtractID: envelope.ExtractID,
		Results:   envelope.Results,
		Errors:    envelope.Errors,
	}
	if resp.Results == nil {
		resp.Results = []ExtractResult{}
	}
	if resp.Errors == nil {
		resp.Errors = []map[string]any{}
	}
	return resp, nil
}
