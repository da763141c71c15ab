package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const searchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// searchResult is one hit from the web search backend.
type searchResult struct {
	Title   string
	URL     string
	Snippet string
}

// InfoSearchWeb queries the DuckDuckGo HTML endpoint, which needs no API
// key, and renders results as markdown for the observation.
type InfoSearchWeb struct {
	client     *http.Client
	maxResults int
	log        *zap.Logger
}

// NewInfoSearchWeb creates the info_search_web capability.
func NewInfoSearchWeb(client *http.Client, maxResults int, log *zap.Logger) *InfoSearchWeb {
	if client == nil {
		client = http.DefaultClient
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &InfoSearchWeb{client: client, maxResults: maxResults, log: log}
}

func (s *InfoSearchWeb) Invoke(ctx context.Context, arguments map[string]any) (string, error) {
	query, _ := arguments["query"].(string)
	if query == "" {
		return "", fmt.Errorf("info_search_web: missing query argument")
	}

	results, err := s.search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("info_search_web: %w", err)
	}
	if len(results) == 0 {
		return "No results found for: " + query, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Search results for %q:\n\n", query)
	for i, result := range results {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, result.Title, result.URL)
		if result.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", result.Snippet)
		}
	}
	return sb.String(), nil
}

func (s *InfoSearchWeb) search(ctx context.Context, query string) ([]searchResult, error) {
	endpoint := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", searchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search backend returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	return parseSearchResults(string(body), s.maxResults), nil
}

// parseSearchResults walks the result page looking for result__a links and
// result__snippet spans.
func parseSearchResults(page string, maxResults int) []searchResult {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var results []searchResult
	var current *searchResult

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= maxResults {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			class := attrValue(n, "class")
			switch {
			case strings.Contains(class, "result__a"):
				if current != nil && current.URL != "" {
					results = append(results, *current)
				}
				current = &searchResult{
					Title: textContent(n),
					URL:   cleanResultURL(attrValue(n, "href")),
				}
			case strings.Contains(class, "result__snippet") && current != nil:
				current.Snippet = textContent(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if current != nil && current.URL != "" && len(results) < maxResults {
		results = append(results, *current)
	}
	return results
}

// cleanResultURL unwraps DuckDuckGo redirect links.
func cleanResultURL(raw string) string {
	if !strings.Contains(raw, "duckduckgo.com/l/") {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return raw
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
