// Package readable is a local, credential-free fallback to the remote
// Extract API: one static fetch followed by readability main-content
// extraction. Pages that require JavaScript rendering are out of reach.
package readable

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

type Options struct {
	Format           string // "text" (default) or "markdown"
	UserAgent        string
	MinContentLength int
}

type Result struct {
	URL     string
	Title   string
	Byline  string
	Excerpt string
	Content string
	Length  int
}

type Extractor struct {
	client *http.Client
}

func New(timeout time.Duration) *Extractor {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Extractor{
		client: &http.Client{Timeout: timeout},
	}
}

// Extract fetches the page and distills its main content.
func (e *Extractor) Extract(ctx context.Context, pageURL string, opts Options) (*Result, error) {
	html, err := e.fetch(ctx, pageURL, opts.UserAgent)
	if err != nil {
		return nil, err
	}

	if len(html) < opts.MinContentLength {
		return nil, fmt.Errorf("readable: content too short: %d characters (minimum: %d)", len(html), opts.MinContentLength)
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("readable: invalid URL: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return nil, fmt.Errorf("readable: failed to process with readability: %w", err)
	}

	content := cleanText(article.Content, article.TextContent)
	if opts.Format == "markdown" && article.Title != "" {
		content = fmt.Sprintf("# %s\n\n%s", article.Title, content)
	}

	return &Result{
		URL:     pageURL,
		Title:   article.Title,
		Byline:  article.Byline,
		Excerpt: article.Excerpt,
		Content: content,
		Length:  len(content),
	}, nil
}

// cleanText strips media and boilerplate nodes from the readability output
// and normalizes whitespace, falling back to the plain text content when the
// HTML cannot be parsed.
func cleanText(contentHTML, textFallback string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML))
	if err != nil {
		return normalizeNewlines(textFallback)
	}

	doc.Find("script, style, img, figure, picture, iframe, noscript").Remove()

	var parts []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, blockquote, pre").Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		return normalizeNewlines(textFallback)
	}
	return strings.Join(parts, "\n\n")
}

func normalizeNewlines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n\n")
}
