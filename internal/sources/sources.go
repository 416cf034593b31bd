package sources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"HamptonCollector/internal/domain"
)

// JSONFetcher performs a single GET against an open-data endpoint and returns
// the raw response body for the source's transform to decode.
type JSONFetcher interface {
	JSON(ctx context.Context, rawURL string, params url.Values) ([]byte, error)
}

// PageFetcher returns a parsed document for a URL. Implemented both by the
// static HTML client and by the headless-browser renderer, so a page source
// does not care whether its target needs JavaScript.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// SearchResult is one block extracted from a search engine results page.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// Searcher runs a filetype/domain-filtered document search.
type Searcher interface {
	SearchDocuments(ctx context.Context, query string) ([]SearchResult, error)
}

// Transform decodes an API response body into normalized records.
type Transform func(body []byte) ([]domain.Record, error)

// Extractor pulls records out of a parsed page.
type Extractor func(doc *goquery.Document) []domain.Record

// Source is a single registry entry. Collect returns the normalized records
// for one fetch, or an error the orchestrator degrades to an empty
// contribution.
type Source interface {
	Name() string
	Category() domain.Category
	Collect(ctx context.Context) ([]domain.Record, error)
}

// APISource fetches a government open-data JSON endpoint with fixed query
// parameters. No pagination, no rate-limit handling.
type APISource struct {
	name      string
	category  domain.Category
	url       string
	params    url.Values
	fetcher   JSONFetcher
	transform Transform
}

// NewAPISource builds an immutable API descriptor.
func NewAPISource(name string, category domain.Category, rawURL string, params url.Values, fetcher JSONFetcher, transform Transform) *APISource {
	return &APISource{
		name:      name,
		category:  category,
		url:       rawURL,
		params:    params,
		fetcher:   fetcher,
		transform: transform,
	}
}

func (s *APISource) Name() string              { return s.name }
func (s *APISource) Category() domain.Category { return s.category }

// Collect fetches and transforms the endpoint body.
func (s *APISource) Collect(ctx context.Context) ([]domain.Record, error) {
	body, err := s.fetcher.JSON(ctx, s.url, s.params)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.name, err)
	}

	records, err := s.transform(body)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", s.name, err)
	}
	return records, nil
}

// PageSource scrapes records off a document listing page. The injected
// fetcher decides whether the page is fetched statically or rendered in a
// headless browser.
type PageSource struct {
	name     string
	category domain.Category
	url      string
	fetcher  PageFetcher
	extract  Extractor
}

// NewPageSource builds an immutable page descriptor.
func NewPageSource(name string, category domain.Category, rawURL string, fetcher PageFetcher, extract Extractor) *PageSource {
	return &PageSource{
		name:     name,
		category: category,
		url:      rawURL,
		fetcher:  fetcher,
		extract:  extract,
	}
}

func (s *PageSource) Name() string              { return s.name }
func (s *PageSource) Category() domain.Category { return s.category }

// Collect fetches the page and applies the extractor. Selectors matching
// nothing yield an empty slice, which is not an error.
func (s *PageSource) Collect(ctx context.Context) ([]domain.Record, error) {
	doc, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.name, err)
	}
	return s.extract(doc), nil
}

// SearchSource queries a public search engine for primary-source documents.
type SearchSource struct {
	name         string
	query        string
	jurisdiction string
	searcher     Searcher
}

// NewSearchSource builds an immutable search descriptor. Search sources
// always feed the government-documents bucket.
func NewSearchSource(name, query, jurisdiction string, searcher Searcher) *SearchSource {
	return &SearchSource{
		name:         name,
		query:        query,
		jurisdiction: jurisdiction,
		searcher:     searcher,
	}
}

func (s *SearchSource) Name() string              { return s.name }
func (s *SearchSource) Category() domain.Category { return domain.CategoryGovernment }

// Collect turns search result blocks into government-document records.
func (s *SearchSource) Collect(ctx context.Context) ([]domain.Record, error) {
	results, err := s.searcher.SearchDocuments(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.name, err)
	}

	records := make([]domain.Record, 0, len(results))
	for _, res := range results {
		if res.URL == "" {
			continue
		}
		rec := domain.NewRecord(res.URL, domain.TypeGovernmentDocument)
		rec.Title = res.Title
		rec.Description = res.Snippet
		rec.URL = res.URL
		rec.Source = s.name
		rec.Jurisdiction = s.jurisdiction
		records = append(records, rec)
	}
	return records, nil
}

// Registry keeps the ordered list of sources for a run.
type Registry struct {
	sources []Source
	byName  map[string]Source
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]Source{}}
}

// Register appends a source; a duplicate name replaces the earlier entry.
func (r *Registry) Register(src Source) {
	if r.byName == nil {
		r.byName = map[string]Source{}
	}
	if _, exists := r.byName[src.Name()]; exists {
		for i, existing := range r.sources {
			if existing.Name() == src.Name() {
				r.sources[i] = src
				break
			}
		}
	} else {
		r.sources = append(r.sources, src)
	}
	r.byName[src.Name()] = src
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Source, error) {
	if src, ok := r.byName[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("source %s is not registered", name)
}

// All returns sources in registration order.
func (r *Registry) All() []Source {
	return r.sources
}

// ByCategory returns the sources feeding one bucket, in registration order.
func (r *Registry) ByCategory(cat domain.Category) []Source {
	var matched []Source
	for _, src := range r.sources {
		if src.Category() == cat {
			matched = append(matched, src)
		}
	}
	return matched
}
