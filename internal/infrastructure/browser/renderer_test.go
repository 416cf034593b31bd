package browser

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const resultsFixture = `
<ol id="b_results">
  <li class="b_algo">
    <h2><a href="https://www.vbgov.com/plans/comprehensive-plan.pdf">Virginia Beach Comprehensive Plan</a></h2>
    <div class="b_caption"><p>The adopted comprehensive plan for the city.</p></div>
  </li>
  <li class="b_algo">
    <h2><a href="https://www.norfolk.gov/zoning-update.pdf">Norfolk Zoning Ordinance Update</a></h2>
    <div class="b_caption"><p>Proposed amendments to the zoning ordinance.</p></div>
  </li>
  <li class="b_algo">
    <h2><a href="">Broken result</a></h2>
  </li>
  <li class="b_algo">
    <h2><a href="https://www.hampton.gov/cip.pdf">Hampton CIP</a></h2>
    <div class="b_caption"><p>Capital improvement program.</p></div>
  </li>
</ol>`

func TestParseSearchResults(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resultsFixture))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	results := parseSearchResults(doc, 10)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	first := results[0]
	if first.Title != "Virginia Beach Comprehensive Plan" {
		t.Fatalf("unexpected title: %s", first.Title)
	}
	if first.URL != "https://www.vbgov.com/plans/comprehensive-plan.pdf" {
		t.Fatalf("unexpected url: %s", first.URL)
	}
	if first.Snippet != "The adopted comprehensive plan for the city." {
		t.Fatalf("unexpected snippet: %s", first.Snippet)
	}
}

func TestParseSearchResultsHonorsLimit(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resultsFixture))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	results := parseSearchResults(doc, 1)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestParseSearchResultsEmptyPage(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	results := parseSearchResults(doc, 10)
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
