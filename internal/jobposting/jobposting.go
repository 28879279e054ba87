// Package jobposting fetches a job posting URL and reduces its HTML to
// the visible text the analysis prompt needs.
package jobposting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ErrFetchFailed is returned when the posting cannot be retrieved.
var ErrFetchFailed = errors.New("could not fetch job posting")

// ErrNoText is returned when the page yields no readable text.
var ErrNoText = errors.New("job posting contains no readable text")

const (
	maxBodyBytes = 4 << 20
	// MaxTextChars caps the text handed to the prompt so a single
	// posting cannot blow the model's input window.
	MaxTextChars = 12000
)

// Fetcher retrieves job postings over HTTP.
type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{httpClient: &http.Client{Timeout: timeout}}
}

// FetchText downloads the URL and returns the page's visible text.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", "cv-optimizer/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return ExtractText(string(body))
}

// ExtractText strips HTML down to its visible text content.
func ExtractText(rawHTML string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoText, err)
	}

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "svg", "nav", "footer":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				lines = append(lines, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	out := strings.Join(lines, "\n")
	if strings.TrimSpace(out) == "" {
		return "", ErrNoText
	}
	if len(out) > MaxTextChars {
		out = out[:MaxTextChars]
	}
	return out, nil
}
