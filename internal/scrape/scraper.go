// Package scrape fetches and summarizes URL content for prompt context.
//
// The primary path uses the Firecrawl scraping service; on any failure, or
// when no credential is configured, it degrades to best-effort metadata
// extraction from the raw page. Scraping never fails a chat turn: at worst
// it yields a low-quality Result with Success=false, which is still folded
// into prompt context (matching upstream behavior; arguably a quality bug,
// since low-confidence content reaches the model unfiltered).
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkessel/daynote/internal/config"
	"github.com/mkessel/daynote/internal/logging"
)

// Result is the best-effort outcome of scraping one URL. It is transient:
// computed per request, folded into prompt text or an attachment's cached
// fields, never persisted on its own.
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Favicon string `json:"favicon,omitempty"`
	Success bool   `json:"success"`
}

// Scraper resolves URLs to page content.
type Scraper struct {
	endpoint   string
	apiKey     string
	maxContent int
	userAgent  string
	client     *http.Client
	log        *logging.Logger
}

// New creates a scraper from config.
func New(cfg config.ScrapeConfig, log *logging.Logger) *Scraper {
	return &Scraper{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.FirecrawlAPIKey,
		maxContent: cfg.MaxContentChars,
		userAgent:  cfg.UserAgent,
		client:     &http.Client{Timeout: 30 * time.Second},
		log:        log.Sub("scrape"),
	}
}

// Scrape returns best-effort content for a URL. It never returns an error:
// every failure path lands in degraded extraction, and a failed fetch there
// still yields a Result with Success=false.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) Result {
	if s.apiKey == "" {
		s.log.Debug().Str("url", pageURL).Msg("no scraping credential, using degraded extraction")
		return s.extractBasic(ctx, pageURL)
	}

	result, err := s.scrapePrimary(ctx, pageURL)
	if err != nil {
		s.log.Warn().Str("url", pageURL).Err(err).Msg("primary scrape failed, falling back")
		return s.extractBasic(ctx, pageURL)
	}
	return result
}

// firecrawlResponse is the scraping service's JSON response shape.
type firecrawlResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Markdown string `json:"markdown,omitempty"`
		Content  string `json:"content,omitempty"`
		Metadata struct {
			Title   string `json:"title,omitempty"`
			OGTitle string `json:"ogTitle,omitempty"`
			Favicon string `json:"favicon,omitempty"`
			OGImage string `json:"ogImage,omitempty"`
		} `json:"metadata"`
	} `json:"data"`
}

func (s *Scraper) scrapePrimary(ctx context.Context, pageURL string) (Result, error) {
	body := map[string]any{
		"url": pageURL,
		"pageOptions": map[string]any{
			"onlyMainContent": true,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("scraping service error (%d)", resp.StatusCode)
	}

	var fc firecrawlResponse
	if err := json.Unmarshal(respBody, &fc); err != nil {
		return Result{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if !fc.Success {
		if fc.Error != "" {
			return Result{}, fmt.Errorf("scraping service: %s", fc.Error)
		}
		return Result{}, fmt.Errorf("scraping service reported failure")
	}

	title := fc.Data.Metadata.Title
	if title == "" {
		title = fc.Data.Metadata.OGTitle
	}
	if title == "" {
		title = "Untitled"
	}

	content := fc.Data.Markdown
	if content == "" {
		content = fc.Data.Content
	}

	favicon := fc.Data.Metadata.Favicon
	if favicon == "" {
		favicon = fc.Data.Metadata.OGImage
	}

	return Result{
		URL:     pageURL,
		Title:   title,
		Content: s.truncate(content),
		Favicon: favicon,
		Success: true,
	}, nil
}

// truncate caps content before it reaches any prompt.
func (s *Scraper) truncate(content string) string {
	if s.maxContent > 0 && len(content) > s.maxContent {
		return content[:s.maxContent]
	}
	return content
}
