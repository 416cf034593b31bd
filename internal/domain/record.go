package domain

import "time"

// RecordType tags the kind of content a record was normalized from.
type RecordType string

const (
	TypeBuildingPermit     RecordType = "building_permit"
	TypePlanningDocument   RecordType = "planning_document"
	TypeEconomicReport     RecordType = "economic_report"
	TypeGovernmentDocument RecordType = "government_document"
	TypePrimaryDocument    RecordType = "primary_document"
)

// DocumentTypePrimarySource marks provenance: every collected record comes
// from an official source, by convention rather than verification.
const DocumentTypePrimarySource = "primary_source"

// Category identifies one of the four output buckets a source feeds.
type Category string

const (
	CategoryPermits    Category = "permits"
	CategoryPlanning   Category = "planning"
	CategoryEconomic   Category = "economic"
	CategoryGovernment Category = "government"
)

// Categories lists the buckets in collection order.
func Categories() []Category {
	return []Category{CategoryPermits, CategoryPlanning, CategoryEconomic, CategoryGovernment}
}

// Record is the normalized unit of collector output. Records from different
// sources are independent; nothing reconciles duplicates across sources.
type Record struct {
	ID           string
	Type         RecordType
	DocumentType string
	Title        string
	Description  string
	Address      string
	Jurisdiction string
	URL          string
	Source       string
	Date         time.Time

	// Document-reference fields, populated only by HEAD verification.
	ContentType   string
	ContentLength int64
	LastModified  string

	Analysis *Analysis
}

// NewRecord builds a record with the primary-source provenance marker set.
func NewRecord(id string, typ RecordType) Record {
	return Record{
		ID:           id,
		Type:         typ,
		DocumentType: DocumentTypePrimarySource,
	}
}

// Relationship links two entities the model claims to have found in the text.
type Relationship struct {
	Subject  string `json:"subject"`
	Relation string `json:"relation"`
	Object   string `json:"object"`
}

// Analysis is the structured result of an LLM pass over record text. When the
// provider call or JSON decode fails, Error carries the reason and
// RawResponse preserves whatever the model emitted; the structured fields are
// left empty.
type Analysis struct {
	ExtractedData map[string]any `json:"extractedData"`
	Relationships []Relationship `json:"relationships"`
	KeyInsights   []string       `json:"keyInsights"`
	Confidence    float64        `json:"confidence"`

	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	AnalyzedAt time.Time `json:"analyzedAt"`

	Error       string `json:"error,omitempty"`
	RawResponse string `json:"rawResponse,omitempty"`
}

// Failed reports whether the analysis degraded to an error result.
func (a Analysis) Failed() bool {
	return a.Error != ""
}

// Collection groups one run's records into the four output buckets. All four
// slices are always non-nil, even when a run collects nothing.
type Collection struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	Permits             []Record
	PlanningDocuments   []Record
	EconomicReports     []Record
	GovernmentDocuments []Record

	// FailedSources names registry entries whose fetch contributed nothing
	// because of an error.
	FailedSources []string
}

// NewCollection allocates empty buckets for a run.
func NewCollection(runID string) *Collection {
	return &Collection{
		RunID:               runID,
		StartedAt:           time.Now().UTC(),
		Permits:             []Record{},
		PlanningDocuments:   []Record{},
		EconomicReports:     []Record{},
		GovernmentDocuments: []Record{},
	}
}

// Add appends records to the bucket for the given category.
func (c *Collection) Add(cat Category, records []Record) {
	switch cat {
	case CategoryPermits:
		c.Permits = append(c.Permits, records...)
	case CategoryPlanning:
		c.PlanningDocuments = append(c.PlanningDocuments, records...)
	case CategoryEconomic:
		c.EconomicReports = append(c.EconomicReports, records...)
	case CategoryGovernment:
		c.GovernmentDocuments = append(c.GovernmentDocuments, records...)
	}
}

// Bucket returns the records collected for a category.
func (c *Collection) Bucket(cat Category) []Record {
	switch cat {
	case CategoryPermits:
		return c.Permits
	case CategoryPlanning:
		return c.PlanningDocuments
	case CategoryEconomic:
		return c.EconomicReports
	case CategoryGovernment:
		return c.GovernmentDocuments
	}
	return nil
}

// Total counts records across all buckets.
func (c *Collection) Total() int {
	return len(c.Permits) + len(c.PlanningDocuments) + len(c.EconomicReports) + len(c.GovernmentDocuments)
}
