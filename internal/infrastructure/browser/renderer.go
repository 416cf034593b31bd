package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"HamptonCollector/internal/config"
	"HamptonCollector/internal/sources"
)

// Search-results selectors target Bing's markup. They belong to a page this
// project does not control and can break without notice.
const (
	searchBaseURL       = "https://www.bing.com/search"
	searchFilter        = "filetype:pdf site:.gov"
	resultBlockSelector = "li.b_algo"
	resultTitleSelector = "h2 a"
	resultTextSelector  = ".b_caption p"
)

// Renderer drives a headless browser. Each call launches and tears down its
// own browser instance; there is no pooling or session reuse between calls.
type Renderer struct {
	timeout     time.Duration
	resultLimit int
}

var _ sources.PageFetcher = (*Renderer)(nil)
var _ sources.Searcher = (*Renderer)(nil)

// NewRenderer builds a renderer from browser configuration.
func NewRenderer(cfg config.BrowserConfig) *Renderer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	limit := cfg.SearchResultLimit
	if limit <= 0 {
		limit = 10
	}
	return &Renderer{timeout: timeout, resultLimit: limit}
}

// Fetch navigates to the URL, waits for the DOM to settle, and parses the
// rendered markup so extractors see the same document shape as static pages.
func (r *Renderer) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	html, err := r.renderedHTML(ctx, rawURL, "body")
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", rawURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse rendered page: %w", err)
	}
	return doc, nil
}

// SearchDocuments loads a results page for the query restricted to PDF
// documents on .gov domains and extracts up to the configured number of
// result blocks.
func (r *Renderer) SearchDocuments(ctx context.Context, query string) ([]sources.SearchResult, error) {
	searchURL := searchBaseURL + "?q=" + url.QueryEscape(query+" "+searchFilter)

	html, err := r.renderedHTML(ctx, searchURL, resultBlockSelector)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}
	return parseSearchResults(doc, r.resultLimit), nil
}

// renderedHTML runs one browser lifecycle: launch, navigate, wait for the
// selector, capture outer HTML, tear down.
func (r *Renderer) renderedHTML(ctx context.Context, rawURL, waitFor string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, r.timeout)
	defer cancelRun()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady(waitFor, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}
	return html, nil
}

func parseSearchResults(doc *goquery.Document, limit int) []sources.SearchResult {
	results := []sources.SearchResult{}

	doc.Find(resultBlockSelector).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		if len(results) >= limit {
			return false
		}

		link := block.Find(resultTitleSelector).First()
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}

		results = append(results, sources.SearchResult{
			Title:   strings.TrimSpace(link.Text()),
			URL:     strings.TrimSpace(href),
			Snippet: strings.TrimSpace(block.Find(resultTextSelector).First().Text()),
		})
		return true
	})

	return results
}
