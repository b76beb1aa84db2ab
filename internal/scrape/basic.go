package scrape

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
)

// Fixed strings for the degraded path.
const (
	noPreviewContent = "No content preview available."
	fetchFailContent = "Could not scrape link content."
)

// maxPageBytes bounds how much of a page the degraded path will read.
const maxPageBytes = 1 << 20

var (
	titleTagRe      = regexp.MustCompile(`(?i)<title>(.*?)</title>`)
	ogTitleRe       = regexp.MustCompile(`(?i)<meta property="og:title" content="(.*?)"`)
	descriptionRe   = regexp.MustCompile(`(?i)<meta name="description" content="(.*?)"`)
	ogDescriptionRe = regexp.MustCompile(`(?i)<meta property="og:description" content="(.*?)"`)
	iconLinkRe      = regexp.MustCompile(`(?i)<link rel="icon" href="(.*?)"`)
	shortcutIconRe  = regexp.MustCompile(`(?i)<link rel="shortcut icon" href="(.*?)"`)
)

// extractBasic is the degraded scrape path: fetch the raw page and pull
// title, description, and favicon out of the HTML by pattern matching.
// It never fails; a fetch error yields a Result with Success=false.
func (s *Scraper) extractBasic(ctx context.Context, pageURL string) Result {
	html, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		s.log.Debug().Str("url", pageURL).Err(err).Msg("degraded extraction fetch failed")
		return Result{
			URL:     pageURL,
			Title:   pageURL,
			Content: fetchFailContent,
			Success: false,
		}
	}

	title := firstMatch(html, titleTagRe, ogTitleRe)
	if title == "" {
		title = pageURL
	}

	content := firstMatch(html, descriptionRe, ogDescriptionRe)
	if content == "" {
		content = noPreviewContent
	}

	favicon := firstMatch(html, iconLinkRe, shortcutIconRe)
	if favicon != "" {
		favicon = resolveFavicon(favicon, pageURL)
	}

	return Result{
		URL:     pageURL,
		Title:   title,
		Content: s.truncate(content),
		Favicon: favicon,
		Success: true,
	}
}

func (s *Scraper) fetchPage(ctx context.Context, pageURL string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// firstMatch returns the first capture group of the first regexp that
// matches, in the given order.
func firstMatch(html string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(html); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// resolveFavicon makes a favicon reference absolute against the page URL.
func resolveFavicon(favicon, pageURL string) string {
	ref, err := url.Parse(favicon)
	if err != nil {
		return favicon
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return favicon
	}
	return base.ResolveReference(ref).String()
}
