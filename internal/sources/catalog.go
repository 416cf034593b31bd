package sources

import (
	"fmt"
	"net/url"

	"HamptonCollector/internal/config"
	"HamptonCollector/internal/domain"
)

// Deps carries the fetch adapters a registry's sources are built around.
type Deps struct {
	API     JSONFetcher
	Pages   PageFetcher
	Browser PageFetcher
	Search  Searcher
}

// BuildRegistry materializes configured sources against the catalog. Every
// api/page/rendered source must have a catalog entry under its name; config
// can move a source's URL or params but not invent extraction logic.
func BuildRegistry(cfgs []config.SourceConfig, deps Deps) (*Registry, error) {
	registry := NewRegistry()
	for _, sc := range cfgs {
		src, err := buildSource(sc, deps)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", sc.Name, err)
		}
		registry.Register(src)
	}
	return registry, nil
}

func buildSource(sc config.SourceConfig, deps Deps) (Source, error) {
	switch sc.Kind {
	case "api":
		category, err := parseCategory(sc.Category)
		if err != nil {
			return nil, err
		}
		build, ok := apiTransforms[sc.Name]
		if !ok {
			return nil, fmt.Errorf("no catalog transform for api source")
		}
		return NewAPISource(sc.Name, category, sc.URL, toValues(sc.Params), deps.API, build(sc)), nil

	case "page", "rendered":
		category, err := parseCategory(sc.Category)
		if err != nil {
			return nil, err
		}
		build, ok := pageExtractors[sc.Name]
		if !ok {
			return nil, fmt.Errorf("no catalog extractor for page source")
		}
		fetcher := deps.Pages
		if sc.Kind == "rendered" {
			fetcher = deps.Browser
		}
		return NewPageSource(sc.Name, category, sc.URL, fetcher, build(sc)), nil

	case "search":
		if sc.Query == "" {
			return nil, fmt.Errorf("search source needs a query")
		}
		return NewSearchSource(sc.Name, sc.Query, sc.Jurisdiction, deps.Search), nil

	default:
		return nil, fmt.Errorf("unknown source kind %q", sc.Kind)
	}
}

func parseCategory(value string) (domain.Category, error) {
	switch domain.Category(value) {
	case domain.CategoryPermits, domain.CategoryPlanning, domain.CategoryEconomic, domain.CategoryGovernment:
		return domain.Category(value), nil
	}
	return "", fmt.Errorf("unknown category %q", value)
}

func toValues(params map[string]string) url.Values {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values
}
