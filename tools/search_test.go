package tools

import "testing"

const searchPage = `<html><body>
<div class="result results_links">
  <a class="result__a" href="https://example.com/go">The Go Programming Language</a>
  <a class="result__snippet" href="https://example.com/go">Go is an open source language.</a>
</div>
<div class="result results_links">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.org%2Fdocs">Go Docs</a>
</div>
<div class="result results_links">
  <a class="result__a" href="https://example.net/blog">A Blog</a>
</div>
</body></html>`

func TestParseSearchResults(t *testing.T) {
	results := parseSearchResults(searchPage, 10)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[0].Title != "The Go Programming Language" {
		t.Errorf("unexpected title %q", results[0].Title)
	}
	if results[0].URL != "https://example.com/go" {
		t.Errorf("unexpected url %q", results[0].URL)
	}
	if results[0].Snippet != "Go is an open source language." {
		t.Errorf("unexpected snippet %q", results[0].Snippet)
	}

	// Redirect links are unwrapped.
	if results[1].URL != "https://example.org/docs" {
		t.Errorf("redirect not unwrapped: %q", results[1].URL)
	}
}

func TestParseSearchResultsLimit(t *testing.T) {
	results := parseSearchResults(searchPage, 1)
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestParseSearchResultsEmptyPage(t *testing.T) {
	if results := parseSearchResults("<html><body>no hits</body></html>", 5); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
