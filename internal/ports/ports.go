package ports

import (
	"context"
	"time"

	"HamptonCollector/internal/domain"
)

// Analyzer classifies record text through an LLM provider. Failures are
// reported inside the result (Error field), never as a returned error, so the
// pipeline can attach a degraded analysis and keep going.
type Analyzer interface {
	Analyze(ctx context.Context, text string) domain.Analysis
}

// RecordRepository persists collected records for deduplication and audit.
type RecordRepository interface {
	AlreadySeen(ctx context.Context, source string, ids []string) (map[string]bool, error)
	SaveRecords(ctx context.Context, runID string, records []domain.Record) error
}

// Notifier publishes a human-readable run report to an outbound channel.
type Notifier interface {
	PublishRunReport(ctx context.Context, report string) error
}

// Scheduler controls when collection runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
