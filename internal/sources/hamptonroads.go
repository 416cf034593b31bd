package sources

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"HamptonCollector/internal/config"
	"HamptonCollector/internal/domain"
)

// Catalog of Hampton Roads extraction logic, keyed by source name. The
// descriptor table is process-lifetime constant; config supplies URLs and
// jurisdictions, these maps supply the response shapes and selectors.

var apiTransforms = map[string]func(cfg config.SourceConfig) Transform{
	"virginia-beach-permits": virginiaBeachPermits,
	"norfolk-permits":        norfolkPermits,
}

var pageExtractors = map[string]func(cfg config.SourceConfig) Extractor{
	"hrpdc-planning":          hrpdcPlanning,
	"virginia-beach-planning": virginiaBeachPlanning,
	"hreda-reports":           hredaReports,
	"norfolk-econdev":         norfolkEconDev,
}

// Socrata floating timestamps come back without a zone; plain dates appear on
// some datasets.
var apiDateLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseAPIDate(value string) time.Time {
	for _, layout := range apiDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func virginiaBeachPermits(cfg config.SourceConfig) Transform {
	return func(body []byte) ([]domain.Record, error) {
		var rows []struct {
			PermitNumber string `json:"permit_number"`
			PermitType   string `json:"permit_type"`
			Description  string `json:"description"`
			Address      string `json:"address"`
			IssueDate    string `json:"issue_date"`
		}
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode permit rows: %w", err)
		}

		records := make([]domain.Record, 0, len(rows))
		for _, row := range rows {
			if row.PermitNumber == "" {
				continue
			}
			rec := domain.NewRecord(row.PermitNumber, domain.TypeBuildingPermit)
			rec.Title = strings.TrimSpace(row.PermitType)
			rec.Description = strings.TrimSpace(row.Description)
			rec.Address = strings.TrimSpace(row.Address)
			rec.Jurisdiction = cfg.Jurisdiction
			rec.Source = cfg.Name
			rec.Date = parseAPIDate(row.IssueDate)
			records = append(records, rec)
		}
		return records, nil
	}
}

func norfolkPermits(cfg config.SourceConfig) Transform {
	return func(body []byte) ([]domain.Record, error) {
		var rows []struct {
			Permit      string `json:"permit"`
			WorkType    string `json:"work_type"`
			Description string `json:"work_description"`
			Address     string `json:"full_address"`
			IssuedDate  string `json:"issued_date"`
		}
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode permit rows: %w", err)
		}

		records := make([]domain.Record, 0, len(rows))
		for _, row := range rows {
			if row.Permit == "" {
				continue
			}
			rec := domain.NewRecord(row.Permit, domain.TypeBuildingPermit)
			rec.Title = strings.TrimSpace(row.WorkType)
			rec.Description = strings.TrimSpace(row.Description)
			rec.Address = strings.TrimSpace(row.Address)
			rec.Jurisdiction = cfg.Jurisdiction
			rec.Source = cfg.Name
			rec.Date = parseAPIDate(row.IssuedDate)
			records = append(records, rec)
		}
		return records, nil
	}
}

func hrpdcPlanning(cfg config.SourceConfig) Extractor {
	return documentLinks(cfg, domain.TypePlanningDocument, ".main-content a[href$=\".pdf\"]")
}

func virginiaBeachPlanning(cfg config.SourceConfig) Extractor {
	return documentLinks(cfg, domain.TypePlanningDocument, ".plans-listing a, .document-card a[href$=\".pdf\"]")
}

func hredaReports(cfg config.SourceConfig) Extractor {
	return documentLinks(cfg, domain.TypeEconomicReport, ".research-reports a[href$=\".pdf\"], .report-list a")
}

func norfolkEconDev(cfg config.SourceConfig) Extractor {
	return documentLinks(cfg, domain.TypeEconomicReport, ".reports a[href$=\".pdf\"], article.report a")
}

// documentLinks collects anchors matching the selector into records. A page
// with no matches yields an empty slice, indistinguishable from no content.
func documentLinks(cfg config.SourceConfig, typ domain.RecordType, selector string) Extractor {
	return func(doc *goquery.Document) []domain.Record {
		records := []domain.Record{}
		seen := map[string]struct{}{}

		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok {
				return
			}
			link := absoluteURL(cfg.URL, href)
			if link == "" {
				return
			}
			if _, dup := seen[link]; dup {
				return
			}
			seen[link] = struct{}{}

			title := strings.TrimSpace(sel.Text())
			if title == "" {
				title = link
			}

			rec := domain.NewRecord(link, typ)
			rec.Title = title
			rec.URL = link
			rec.Jurisdiction = cfg.Jurisdiction
			rec.Source = cfg.Name
			records = append(records, rec)
		})

		return records
	}
}

func absoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	parsedBase, err := url.Parse(base)
	if err != nil {
		return ""
	}
	parsedRef, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return parsedBase.ResolveReference(parsedRef).String()
}
