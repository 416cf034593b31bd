package sources

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"HamptonCollector/internal/config"
	"HamptonCollector/internal/domain"
)

func TestVirginiaBeachPermitsTransform(t *testing.T) {
	t.Parallel()

	cfg := config.SourceConfig{Name: "virginia-beach-permits", Jurisdiction: "Virginia Beach"}
	transform := virginiaBeachPermits(cfg)

	body := []byte(`[
	  {"permit_number":"2026-01234","permit_type":"Residential Addition","description":"Add sunroom","address":"101 Atlantic Ave","issue_date":"2026-08-12T00:00:00.000"},
	  {"permit_number":"2026-01235","permit_type":"Commercial","description":"Tenant build-out","address":"500 Town Center Dr","issue_date":"2026-08-13"}
	]`)

	records, err := transform(body)
	if err != nil {
		t.Fatalf("transform returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	for _, rec := range records {
		if rec.Type != domain.TypeBuildingPermit {
			t.Fatalf("unexpected type: %s", rec.Type)
		}
		if rec.DocumentType != domain.DocumentTypePrimarySource {
			t.Fatalf("unexpected document type: %s", rec.DocumentType)
		}
		if rec.Jurisdiction != "Virginia Beach" {
			t.Fatalf("unexpected jurisdiction: %s", rec.Jurisdiction)
		}
		if rec.ID == "" {
			t.Fatal("expected non-empty id")
		}
	}

	if records[0].Date.IsZero() {
		t.Fatal("expected issue date to be parsed")
	}
}

func TestVirginiaBeachPermitsSkipsRowsWithoutNumber(t *testing.T) {
	t.Parallel()

	transform := virginiaBeachPermits(config.SourceConfig{Jurisdiction: "Virginia Beach"})

	records, err := transform([]byte(`[{"description":"no permit number"}]`))
	if err != nil {
		t.Fatalf("transform returned error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected 0 records, got %d", len(records))
	}
}

func TestVirginiaBeachPermitsInvalidBody(t *testing.T) {
	t.Parallel()

	transform := virginiaBeachPermits(config.SourceConfig{})
	if _, err := transform([]byte(`<html>not json</html>`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDocumentLinksExtractor(t *testing.T) {
	t.Parallel()

	html := `
	<div class="main-content">
	  <a href="/docs/regional-plan.pdf">Hampton Roads Regional Plan</a>
	  <a href="https://other.gov/study.pdf">Water Study</a>
	  <a href="/docs/regional-plan.pdf">Duplicate link</a>
	  <a href="#top">Back to top</a>
	</div>
	<div class="sidebar"><a href="/docs/ignored.pdf">Sidebar doc</a></div>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	cfg := config.SourceConfig{
		Name:         "hrpdc-planning",
		URL:          "https://www.hrpdcva.gov/departments/planning/reports/",
		Jurisdiction: "Hampton Roads",
	}
	records := hrpdcPlanning(cfg)(doc)

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Type != domain.TypePlanningDocument {
		t.Fatalf("unexpected type: %s", first.Type)
	}
	if first.URL != "https://www.hrpdcva.gov/docs/regional-plan.pdf" {
		t.Fatalf("unexpected url: %s", first.URL)
	}
	if first.Title != "Hampton Roads Regional Plan" {
		t.Fatalf("unexpected title: %s", first.Title)
	}
	if first.Jurisdiction != "Hampton Roads" {
		t.Fatalf("unexpected jurisdiction: %s", first.Jurisdiction)
	}

	if records[1].URL != "https://other.gov/study.pdf" {
		t.Fatalf("absolute links must pass through unchanged, got %s", records[1].URL)
	}
}

func TestBuildRegistryFromDefaults(t *testing.T) {
	t.Parallel()

	deps := Deps{
		API:     &stubJSONFetcher{},
		Pages:   &stubPageFetcher{},
		Browser: &stubPageFetcher{},
		Search:  &stubSearcher{},
	}

	cfgs := []config.SourceConfig{
		{Name: "virginia-beach-permits", Kind: "api", Category: "permits", URL: "https://data.virginiabeach.gov/x.json", Jurisdiction: "Virginia Beach"},
		{Name: "hrpdc-planning", Kind: "page", Category: "planning", URL: "https://www.hrpdcva.gov/", Jurisdiction: "Hampton Roads"},
		{Name: "norfolk-econdev", Kind: "rendered", Category: "economic", URL: "https://www.norfolkdevelopment.com/reports", Jurisdiction: "Norfolk"},
		{Name: "search-zoning-updates", Kind: "search", Category: "government", Query: "Norfolk zoning", Jurisdiction: "Norfolk"},
	}

	registry, err := BuildRegistry(cfgs, deps)
	if err != nil {
		t.Fatalf("BuildRegistry returned error: %v", err)
	}
	if len(registry.All()) != 4 {
		t.Fatalf("expected 4 sources, got %d", len(registry.All()))
	}
}

func TestBuildRegistryRejectsUnknownEntries(t *testing.T) {
	t.Parallel()

	deps := Deps{API: &stubJSONFetcher{}, Pages: &stubPageFetcher{}, Browser: &stubPageFetcher{}, Search: &stubSearcher{}}

	cases := []config.SourceConfig{
		{Name: "mystery-api", Kind: "api", Category: "permits"},
		{Name: "mystery-page", Kind: "page", Category: "planning"},
		{Name: "hrpdc-planning", Kind: "page", Category: "not-a-category"},
		{Name: "hrpdc-planning", Kind: "carrier-pigeon", Category: "planning"},
		{Name: "search-empty", Kind: "search", Category: "government"},
	}

	for _, sc := range cases {
		if _, err := BuildRegistry([]config.SourceConfig{sc}, deps); err == nil {
			t.Fatalf("expected error for %+v", sc)
		}
	}
}
