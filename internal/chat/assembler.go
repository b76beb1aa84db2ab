package chat

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/mkessel/daynote/internal/config"
	"github.com/mkessel/daynote/internal/domain"
	"github.com/mkessel/daynote/internal/llm"
	"github.com/mkessel/daynote/internal/logging"
	"github.com/mkessel/daynote/internal/scrape"
)

// NoteSource loads an owner's notes by ID, skipping IDs that do not
// resolve within the owner's scope.
type NoteSource interface {
	ByIDs(ownerID string, ids []string) ([]domain.Note, error)
}

// BlobResolver turns a stored blob reference into a fetchable URL.
type BlobResolver interface {
	Resolve(ref string) (string, bool)
}

// PageScraper resolves one URL to best-effort page content.
type PageScraper interface {
	Scrape(ctx context.Context, pageURL string) scrape.Result
}

// Assembled is the per-turn context handed to a chat backend, plus the
// attachments enriched with scrape results for persistence.
type Assembled struct {
	UserText    string
	NoteContext string
	ImageURLs   []string
	Pages       []llm.WebPage
	Attachments []domain.Attachment
}

// Assembler builds the model-facing context for one chat turn: referenced
// notes, resolved image attachments, and scraped content for explicit and
// auto-detected URLs.
type Assembler struct {
	notes   NoteSource
	blobs   BlobResolver
	scraper PageScraper
	cfg     config.ChatConfig
	urlRe   *regexp.Regexp
	log     *logging.Logger
}

// NewAssembler creates a context assembler. The URL auto-detection pattern
// comes from the chat config; an empty one falls back to the default.
func NewAssembler(notes NoteSource, blobs BlobResolver, scraper PageScraper, cfg config.ChatConfig, log *logging.Logger) (*Assembler, error) {
	pattern := cfg.URLPattern
	if pattern == "" {
		pattern = config.DefaultURLPattern
	}
	urlRe, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid url pattern %q: %w", pattern, err)
	}
	return &Assembler{
		notes:   notes,
		blobs:   blobs,
		scraper: scraper,
		cfg:     cfg,
		urlRe:   urlRe,
		log:     log.Sub("assembler"),
	}, nil
}

// Assemble resolves everything the final user turn references. Notes that
// do not resolve are skipped silently; images whose blobs cannot be
// resolved are dropped; URL scraping never fails the turn.
func (a *Assembler) Assemble(ctx context.Context, ownerID, text string, attachments []domain.Attachment, noteIDs []string) (Assembled, error) {
	out := Assembled{UserText: text, Attachments: attachments}

	if len(noteIDs) > 0 {
		notes, err := a.notes.ByIDs(ownerID, noteIDs)
		if err != nil {
			return Assembled{}, err
		}
		out.NoteContext = RenderNoteContext(notes)
	}

	for _, att := range attachments {
		if att.Type != domain.AttachmentImage || att.BlobRef == "" {
			continue
		}
		url, ok := a.blobs.Resolve(att.BlobRef)
		if !ok {
			a.log.Debug().Str("ref", att.BlobRef).Msg("image blob did not resolve, dropping")
			continue
		}
		out.ImageURLs = append(out.ImageURLs, url)
	}

	candidates := a.collectURLs(text, attachments)
	out.Pages = a.scrapeAll(ctx, candidates)
	out.Attachments = enrichAttachments(attachments, out.Pages)

	return out, nil
}

// urlCandidate is one URL queued for scraping. Cached content from an
// explicit link attachment short-circuits the fetch.
type urlCandidate struct {
	url    string
	cached *llm.WebPage
}

// collectURLs gathers explicit link attachments first, then URLs
// auto-detected in the message text, deduplicated by exact string match
// and capped at the configured maximum.
func (a *Assembler) collectURLs(text string, attachments []domain.Attachment) []urlCandidate {
	max := a.cfg.MaxScrapedURLs
	seen := make(map[string]bool)
	var candidates []urlCandidate

	add := func(c urlCandidate) {
		if c.url == "" || seen[c.url] || len(candidates) >= max {
			return
		}
		seen[c.url] = true
		candidates = append(candidates, c)
	}

	for _, att := range attachments {
		if att.Type != domain.AttachmentLink {
			continue
		}
		c := urlCandidate{url: att.URL}
		if att.ScrapedContent != "" {
			c.cached = &llm.WebPage{URL: att.URL, Title: att.Title, Content: att.ScrapedContent}
		}
		add(c)
	}

	for _, url := range a.urlRe.FindAllString(text, -1) {
		add(urlCandidate{url: url})
	}

	return candidates
}

// scrapeAll fetches every candidate concurrently, one goroutine per URL,
// writing into a fixed slot so result order matches candidate order. A
// failed scrape still produces a page; only the candidate count bounds the
// fan-out, which collectURLs has already capped.
func (a *Assembler) scrapeAll(ctx context.Context, candidates []urlCandidate) []llm.WebPage {
	if len(candidates) == 0 {
		return nil
	}

	pages := make([]llm.WebPage, len(candidates))
	var wg sync.WaitGroup
	for i, c := range candidates {
		if c.cached != nil {
			pages[i] = *c.cached
			continue
		}
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			res := a.scraper.Scrape(ctx, url)
			pages[i] = llm.WebPage{URL: res.URL, Title: res.Title, Content: res.Content}
		}(i, c.url)
	}
	wg.Wait()
	return pages
}

// enrichAttachments copies scrape results back onto link attachments that
// arrived without cached content, so the persisted message carries what the
// model saw.
func enrichAttachments(attachments []domain.Attachment, pages []llm.WebPage) []domain.Attachment {
	if len(attachments) == 0 {
		return attachments
	}
	byURL := make(map[string]llm.WebPage, len(pages))
	for _, p := range pages {
		byURL[p.URL] = p
	}

	out := make([]domain.Attachment, len(attachments))
	copy(out, attachments)
	for i := range out {
		if out[i].Type != domain.AttachmentLink || out[i].ScrapedContent != "" {
			continue
		}
		if p, ok := byURL[out[i].URL]; ok {
			out[i].Title = p.Title
			out[i].ScrapedContent = p.Content
		}
	}
	return out
}
