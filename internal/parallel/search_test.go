package parallel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(serverURL, apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: serverURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func searchServer(t *testing.T, results string, capture *searchRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/search" {
			t.Errorf("expected /search, got %s", r.URL.Path)
		}
		if capture != nil {
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, capture); err != nil {
				t.Errorf("failed to decode request body: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"results": `+results+`}`)
	}))
}

func TestSearch_GroupedShape(t *testing.T) {
	server := searchServer(t, `[
		{"query": "q1", "results": [
			{"title": "t1", "url": "u1", "excerpt": "e1", "source": "s1"},
			{"title": "t2", "url": "u2", "content": "c2"}
		]},
		{"query": "q2", "results": []}
	]`, nil)
	defer server.Close()

	c := newTestClient(server.URL, "test-key")
	responses, err := c.Search(context.Background(), []string{"q1", "q2"}, SearchOptions{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	for _, resp := range responses {
		if resp.TotalResults != len(resp.Results) {
			t.Errorf("total_results %d != len(results) %d for %q", resp.TotalResults, len(resp.Results), resp.Query)
		}
	}
	if responses[0].Query != "q1" || responses[0].TotalResults != 2 {
		t.Errorf("unexpected first response: %+v", responses[0])
	}
	if got := *responses[0].Results[0].Excerpt; got != "e1" {
		t.Errorf("expected excerpt 'e1', got %q", got)
	}
	// Scalar content is the fallback when excerpt is absent.
	if got := *responses[0].Results[1].Excerpt; got != "c2" {
		t.Errorf("expected content fallback 'c2', got %q", got)
	}
	if responses[1].TotalResults != 0 {
		t.Errorf("expected empty second response, got %+v", responses[1])
	}
}

func TestSearch_FlatShape_JoinsExcerpts(t *testing.T) {
	server := searchServer(t, `[{"title": "t1", "url": "u1", "excerpts": ["a", "b"]}]`, nil)
	defer server.Close()

	c := newTestClient(server.URL, "test-key")
	responses, err := c.Search(context.Background(), []string{"q1", "q2"}, SearchOptions{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	// Flat payloads collapse the whole batch into one response.
	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	if responses[0].Query != "q1, q2" {
		t.Errorf("expected comma-joined query, got %q", responses[0].Query)
	}
	if got := *responses[0].Results[0].Excerpt; got != "a\n\nb" {
		t.Errorf("expected excerpts joined with blank line, got %q", got)
	}
	if responses[0].TotalResults != 1 {
		t.Errorf("expected total_results 1, got %d", responses[0].TotalResults)
	}
}

func TestSearch_FlatShape_ContentFallback(t *testing.T) {
	server := searchServer(t, `[{"title": "t1", "content": "x"}]`, nil)
	defer server.Close()

	c := newTestClient(server.URL, "test-key")
	responses, err := c.Search(context.Background(), []string{"q"}, SearchOptions{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if got := *responses[0].Results[0].Excerpt; got != "x" {
		t.Errorf("expected content fallback 'x', got %q", got)
	}
}

func TestSearch_EmptyResults_PreservesQueryCardinality(t *testing.T) {
	server := searchServer(t, `[]`, nil)
	defer server.Close()

	c := newTestClient(server.URL, "test-key")
	responses, err := c.Search(context.Background(), []string{"a", "b", "c"}, SearchOptions{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(responses) != 3 {
		t.Fatalf("expected 3 empty responses, got %d", len(responses))
	}
	for i, resp := range responses {
		if resp.TotalResults != 0 || len(resp.Results) != 0 {
			t.Errorf("response %d not empty: %+v", i, resp)
		}
	}
	if responses[0].Query != "a" || responses[2].Query != "c" {
		t.Errorf("queries not preserved: %+v", responses)
	}
}

func TestSearch_DefaultObjective(t *testing.T) {
	var captured searchRequest
	server := searchServer(t, `[]`, &captured)
	defer server.Close()

	c := newTestClient(server.URL, "test-key")
	if _, err := c.Search(context.Background(), []string{"a", "b"}, SearchOptions{}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if captured.Objective != "Find relevant information for: a, b" {
		t.Errorf("unexpected synthesized objective: %q", captured.Objective)
	}
	if captured.MaxResults != 10 {
		t.Errorf("expected default max_results 10, got %d", captured.MaxResults)
	}
	if captured.Excerpts.MaxCharsPerResult != 10000 {
		t.Errorf("expected default max_chars_per_result 10000, got %d", captured.Excerpts.MaxCharsPerResult)
	}
	if len(captured.SearchQueries) != 2 || captured.SearchQueries[0] != "a" {
		t.Errorf("unexpected search_queries: %v", captured.SearchQueries)
	}
}

func TestSearch_ExplicitOptions(t *testing.T) {
	var captured searchRequest
	server := searchServer(t, `[]`, &captured)
	defer server.Close()

	c := newTestClient(server.URL, "test-key")
	opts := SearchOptions{
		Objective:         "compare release notes",
		MaxResults:        3,
		MaxCharsPerResult: 500,
	}
	if _, err := c.Search(context.Background(), []string{"a"}, opts); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if captured.Objective != "compare release notes" {
		t.Errorf("objective not passed through: %q", captured.Objective)
	}
	if captured.MaxResults != 3 || captured.Excerpts.MaxCharsPerResult != 500 {
		t.Errorf("options not passed through: %+v", captured)
	}
}

func TestSearch_MissingAPIKey_NoRequest(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	t.Setenv(EnvAPIKey, "")

	c := newTestClient(server.URL, "")
	_, err := c.Search(context.Background(), []string{"q"}, SearchOptions{})
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
	if requests != 0 {
		t.Errorf("expected no outbound request, got %d", requests)
	}
}

func TestSearch_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "server error")
	}))
	defer server.Close()

	c := newTestClient(server.URL, "test-key")
	_, err := c.Search(context.Background(), []string{"q"}, SearchOptions{})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != 500 {
		t.Errorf("expected status 500, got %d", apiErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "server error") {
		t.Errorf("error message missing status or body: %v", err)
	}
}

func TestSearch_MalformedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not valid json")
	}))
	defer server.Close()

	c := newTestClient(server.URL, "test-key")
	if _, err := c.Search(context.Background(), []string{"q"}, SearchOptions{}); err == nil {
		t.Fatal("expected error for invalid JSON body")
	}
}

func TestNormalizeSearch_Pure(t *testing.T) {
	payload := decodeSearchPayload(json.RawMessage(`[{"excerpts": ["a", "b"]}]`))
	responses := normalizeSearch(payload, []string{"x", "y"})
	if len(responses) != 1 || *responses[0].Results[0].Excerpt != "a\n\nb" {
		t.Errorf("unexpected normalization: %+v", responses)
	}
}
