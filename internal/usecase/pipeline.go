package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"HamptonCollector/internal/domain"
	"HamptonCollector/internal/ports"
	"HamptonCollector/internal/sources"
)

const defaultConcurrency = 4

// PipelineDeps wires all driven adapters into the orchestration pipeline.
// Only the registry is required; nil collaborators are skipped.
type PipelineDeps struct {
	Registry    *sources.Registry
	Analyzer    ports.Analyzer
	Repository  ports.RecordRepository
	Notifier    ports.Notifier
	Logger      *slog.Logger
	Concurrency int
}

// Pipeline implements the collection workflow: drain the registry category by
// category, attach one sample analysis, then hand records to optional sinks.
type Pipeline struct {
	registry    *sources.Registry
	analyzer    ports.Analyzer
	repository  ports.RecordRepository
	notifier    ports.Notifier
	logger      *slog.Logger
	concurrency int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Pipeline{
		registry:    deps.Registry,
		analyzer:    deps.Analyzer,
		repository:  deps.Repository,
		notifier:    deps.Notifier,
		logger:      deps.Logger,
		concurrency: concurrency,
	}
}

// Collect runs one collection pass. Category phases execute in a fixed order
// (permits, planning, economic, government); sources inside a phase fan out
// concurrently up to the configured cap. A failed source contributes nothing
// and is recorded in FailedSources; only context cancellation aborts the run.
func (p *Pipeline) Collect(ctx context.Context) (*domain.Collection, error) {
	collection := domain.NewCollection(uuid.NewString())

	if p.registry == nil {
		collection.FinishedAt = time.Now().UTC()
		return collection, nil
	}

	p.info("collection run started", "run_id", collection.RunID)

	for _, category := range domain.Categories() {
		if err := ctx.Err(); err != nil {
			return collection, err
		}
		p.collectCategory(ctx, category, collection)
	}

	p.analyzeSample(ctx, collection)
	collection.FinishedAt = time.Now().UTC()

	p.persist(ctx, collection)
	p.notify(ctx, collection)

	p.info("collection run finished",
		"run_id", collection.RunID,
		"total", collection.Total(),
		"failed_sources", len(collection.FailedSources),
	)
	return collection, nil
}

func (p *Pipeline) collectCategory(ctx context.Context, category domain.Category, collection *domain.Collection) {
	srcs := p.registry.ByCategory(category)
	if len(srcs) == 0 {
		return
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.concurrency)

	for _, src := range srcs {
		src := src
		group.Go(func() error {
			records, err := src.Collect(groupCtx)
			if err != nil {
				p.warn("source contributed nothing", "source", src.Name(), "error", err)
				mu.Lock()
				collection.FailedSources = append(collection.FailedSources, src.Name())
				mu.Unlock()
				return nil
			}

			p.debug("source collected", "source", src.Name(), "count", len(records))
			mu.Lock()
			collection.Add(category, records)
			mu.Unlock()
			return nil
		})
	}

	// Workers swallow their own failures, so Wait only observes cancellation.
	_ = group.Wait()
}

// analyzeSample classifies the first economic report's description as a
// demonstration, not a systematic pass over the whole collection.
func (p *Pipeline) analyzeSample(ctx context.Context, collection *domain.Collection) {
	if p.analyzer == nil || len(collection.EconomicReports) == 0 {
		return
	}

	sample := &collection.EconomicReports[0]
	text := sample.Description
	if text == "" {
		text = sample.Title
	}

	analysis := p.analyzer.Analyze(ctx, text)
	sample.Analysis = &analysis

	if analysis.Failed() {
		p.warn("sample analysis degraded", "record", sample.ID, "error", analysis.Error)
		return
	}
	p.info("sample analysis attached",
		"record", sample.ID,
		"provider", analysis.Provider,
		"confidence", analysis.Confidence,
	)
}

// persist upserts the run's records, skipping ones a previous run already
// stored. Storage failures are logged, never propagated: the in-memory
// collection is still the run's result.
func (p *Pipeline) persist(ctx context.Context, collection *domain.Collection) {
	if p.repository == nil {
		return
	}

	for _, category := range domain.Categories() {
		records := collection.Bucket(category)
		for source, group := range groupBySource(records) {
			ids := make([]string, len(group))
			for i, rec := range group {
				ids[i] = rec.ID
			}

			seen, err := p.repository.AlreadySeen(ctx, source, ids)
			if err != nil {
				p.warn("dedup lookup failed", "source", source, "error", err)
				seen = map[string]bool{}
			}

			fresh := make([]domain.Record, 0, len(group))
			for _, rec := range group {
				if !seen[rec.ID] {
					fresh = append(fresh, rec)
				}
			}
			if len(fresh) == 0 {
				continue
			}

			if err := p.repository.SaveRecords(ctx, collection.RunID, fresh); err != nil {
				p.warn("persist failed", "source", source, "error", err)
			}
		}
	}
}

func (p *Pipeline) notify(ctx context.Context, collection *domain.Collection) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.PublishRunReport(ctx, buildRunReport(collection)); err != nil {
		p.warn("run report not delivered", "error", err)
	}
}

func buildRunReport(collection *domain.Collection) string {
	report := fmt.Sprintf(
		"*Collection run %s*\nPermits: %d\nPlanning documents: %d\nEconomic reports: %d\nGovernment documents: %d\n",
		collection.RunID,
		len(collection.Permits),
		len(collection.PlanningDocuments),
		len(collection.EconomicReports),
		len(collection.GovernmentDocuments),
	)

	if len(collection.FailedSources) > 0 {
		report += "Failed sources:\n"
		for _, name := range collection.FailedSources {
			report += fmt.Sprintf("- %s\n", name)
		}
	}

	if !collection.FinishedAt.IsZero() {
		report += fmt.Sprintf("Duration: %s", collection.FinishedAt.Sub(collection.StartedAt).Round(time.Second))
	}
	return report
}

func groupBySource(records []domain.Record) map[string][]domain.Record {
	grouped := map[string][]domain.Record{}
	for _, rec := range records {
		grouped[rec.Source] = append(grouped[rec.Source], rec)
	}
	return grouped
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
