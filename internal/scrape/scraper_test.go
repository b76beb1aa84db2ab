package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkessel/daynote/internal/config"
	"github.com/mkessel/daynote/internal/logging"
)

func testScraper(t *testing.T, cfg config.ScrapeConfig) *Scraper {
	t.Helper()
	if cfg.MaxContentChars == 0 {
		cfg.MaxContentChars = 8000
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "test-agent"
	}
	return New(cfg, logging.New(nil, "silent"))
}

func servePage(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, html)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScrape_PrimaryService(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"markdown": "# Heading\n\nbody text",
				"metadata": map[string]any{
					"title":   "Example Page",
					"favicon": "https://example.com/favicon.ico",
				},
			},
		})
	}))
	t.Cleanup(api.Close)

	s := testScraper(t, config.ScrapeConfig{FirecrawlAPIKey: "fc-key", Endpoint: api.URL})
	result := s.Scrape(context.Background(), "https://example.com/post")

	assert.True(t, result.Success)
	assert.Equal(t, "Example Page", result.Title)
	assert.Equal(t, "# Heading\n\nbody text", result.Content)
	assert.Equal(t, "https://example.com/favicon.ico", result.Favicon)

	assert.Equal(t, "Bearer fc-key", gotAuth)
	assert.Equal(t, "https://example.com/post", gotBody["url"])
	pageOpts := gotBody["pageOptions"].(map[string]any)
	assert.Equal(t, true, pageOpts["onlyMainContent"])
}

func TestScrape_PrimaryFallbackChains(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"content": "plain content",
				"metadata": map[string]any{
					"ogTitle": "OG Title",
					"ogImage": "https://example.com/og.png",
				},
			},
		})
	}))
	t.Cleanup(api.Close)

	s := testScraper(t, config.ScrapeConfig{FirecrawlAPIKey: "fc-key", Endpoint: api.URL})
	result := s.Scrape(context.Background(), "https://example.com")

	assert.Equal(t, "OG Title", result.Title)
	assert.Equal(t, "plain content", result.Content)
	assert.Equal(t, "https://example.com/og.png", result.Favicon)
}

func TestScrape_PrimaryFailureDegrades(t *testing.T) {
	page := servePage(t, `<html><head><title>Fallback Title</title>
		<meta name="description" content="a description"></head></html>`)

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	t.Cleanup(api.Close)

	s := testScraper(t, config.ScrapeConfig{FirecrawlAPIKey: "fc-key", Endpoint: api.URL})
	result := s.Scrape(context.Background(), page.URL)

	assert.True(t, result.Success)
	assert.Equal(t, "Fallback Title", result.Title)
	assert.Equal(t, "a description", result.Content)
}

func TestScrape_NoCredentialUsesDegradedPath(t *testing.T) {
	page := servePage(t, `<html><head><title>Page Title</title>
		<meta property="og:description" content="og description">
		<link rel="icon" href="/static/icon.png"></head></html>`)

	s := testScraper(t, config.ScrapeConfig{})
	result := s.Scrape(context.Background(), page.URL)

	assert.True(t, result.Success)
	assert.Equal(t, "Page Title", result.Title)
	assert.Equal(t, "og description", result.Content)
	assert.Equal(t, page.URL+"/static/icon.png", result.Favicon)
}

func TestScrape_DegradedDefaults(t *testing.T) {
	page := servePage(t, `<html><head></head><body>nothing useful</body></html>`)

	s := testScraper(t, config.ScrapeConfig{})
	result := s.Scrape(context.Background(), page.URL)

	assert.True(t, result.Success)
	assert.Equal(t, page.URL, result.Title)
	assert.Equal(t, noPreviewContent, result.Content)
	assert.Empty(t, result.Favicon)
}

func TestScrape_FetchFailureNeverErrors(t *testing.T) {
	s := testScraper(t, config.ScrapeConfig{})
	result := s.Scrape(context.Background(), "http://127.0.0.1:1/unreachable")

	assert.False(t, result.Success)
	assert.Equal(t, "http://127.0.0.1:1/unreachable", result.Title)
	assert.Equal(t, fetchFailContent, result.Content)
}

func TestScrape_TruncatesContent(t *testing.T) {
	long := strings.Repeat("x", 500)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"markdown": long,
				"metadata": map[string]any{"title": "Long"},
			},
		})
	}))
	t.Cleanup(api.Close)

	s := testScraper(t, config.ScrapeConfig{FirecrawlAPIKey: "fc-key", Endpoint: api.URL, MaxContentChars: 100})
	result := s.Scrape(context.Background(), "https://example.com")

	assert.Len(t, result.Content, 100)
}

func TestResolveFavicon(t *testing.T) {
	tests := []struct {
		favicon string
		pageURL string
		want    string
	}{
		{"/icon.png", "https://example.com/post/1", "https://example.com/icon.png"},
		{"icon.png", "https://example.com/post/1", "https://example.com/post/icon.png"},
		{"https://cdn.example.com/icon.png", "https://example.com", "https://cdn.example.com/icon.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveFavicon(tt.favicon, tt.pageURL))
	}
}
