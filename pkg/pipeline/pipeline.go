// Package pipeline orchestrates the analysis stages as sequential passes over
// intermediate CSV artifacts. Each stage reads the complete output of the
// previous one before starting; there is no pipelining or overlap.
package pipeline

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fieldline/queryscope/pkg/infrastructure/metrics"
	"github.com/fieldline/queryscope/pkg/repositories"
	"github.com/fieldline/queryscope/pkg/services"
)

// Intermediate and output artifact names under the curated output directory.
const (
	CapturedFileName    = "query_table_captured.csv"
	CategorizedFileName = "categorized_queries.csv"
	AnalysisBaseName    = "usage_analysis"
	MetricsFileName     = "run_metrics.prom"
)

// DefaultTopTables bounds the per-table complexity cut.
const DefaultTopTables = 20

// Deps carries the collaborators a pipeline run needs. Warehouse may be nil;
// publication is skipped when it is.
type Deps struct {
	Capture services.CaptureService
	Scoring services.ScoringService

	Queries     repositories.QueryLogRepository
	Captured    repositories.CapturedRepository
	Categorized repositories.CategorizedRepository
	Summaries   repositories.SummaryRepository
	Quicklook   repositories.QuicklookRepository
	Warehouse   repositories.WarehouseRepository

	Logger  zerolog.Logger
	Metrics metrics.Collector
}

// Pipeline runs the analysis stages over one input batch.
type Pipeline struct {
	deps      Deps
	outputDir string
	topTables int
	runID     string
	logger    zerolog.Logger
}

// New creates a pipeline writing its artifacts into outputDir. Every run gets
// a fresh run ID stamped on its log lines.
func New(deps Deps, outputDir string, topTables int) *Pipeline {
	if topTables <= 0 {
		topTables = DefaultTopTables
	}
	runID := uuid.New().String()
	return &Pipeline{
		deps:      deps,
		outputDir: outputDir,
		topTables: topTables,
		runID:     runID,
		logger:    deps.Logger.With().Str("run_id", runID).Logger(),
	}
}

// RunID returns the identifier stamped on this run's logs and metrics.
func (p *Pipeline) RunID() string {
	return p.runID
}

// CapturePath returns the captured-tables artifact path for this run.
func (p *Pipeline) CapturePath() string {
	return filepath.Join(p.outputDir, CapturedFileName)
}

// CategorizedPath returns the categorized artifact path for this run.
func (p *Pipeline) CategorizedPath() string {
	return filepath.Join(p.outputDir, CategorizedFileName)
}

func (p *Pipeline) analysisPath(suffix string) string {
	return filepath.Join(p.outputDir, AnalysisBaseName+"_"+suffix+".csv")
}

// Capture runs stage 1: read the raw query log, extract and normalize table
// references, classify environments, and write the captured intermediate.
func (p *Pipeline) Capture(ctx context.Context, inputPath string) (string, error) {
	timer := p.deps.Metrics.StartTimer("capture_stage_duration_seconds")
	defer timer.Stop()

	records, err := p.deps.Queries.ReadQueries(ctx, inputPath)
	if err != nil {
		return "", err
	}
	p.deps.Metrics.RecordGauge("rows_read", float64(len(records)), "stage", "capture")

	captured := p.deps.Capture.CaptureBatch(records)

	outPath := p.CapturePath()
	if err := p.deps.Captured.WriteCaptured(ctx, outPath, captured); err != nil {
		return "", err
	}

	p.logger.Info().
		Str("stage", "capture").
		Str("input", inputPath).
		Str("output", outPath).
		Int("rows", len(captured)).
		Msg("Capture stage finished")
	return outPath, nil
}

// Score runs stage 2: reload the captured intermediate, score every query,
// and write the categorized intermediate.
func (p *Pipeline) Score(ctx context.Context, capturedPath string) (string, error) {
	timer := p.deps.Metrics.StartTimer("score_stage_duration_seconds")
	defer timer.Stop()

	captured, err := p.deps.Captured.ReadCaptured(ctx, capturedPath)
	if err != nil {
		return "", err
	}
	p.deps.Metrics.RecordGauge("rows_read", float64(len(captured)), "stage", "score")

	scored := p.deps.Scoring.ScoreBatch(captured)

	outPath := p.CategorizedPath()
	if err := p.deps.Categorized.WriteCategorized(ctx, outPath, scored); err != nil {
		return "", err
	}

	p.logger.Info().
		Str("stage", "score").
		Str("input", capturedPath).
		Str("output", outPath).
		Int("rows", len(scored)).
		Msg("Scoring stage finished")
	return outPath, nil
}

// Aggregate runs stage 3: reload the categorized intermediate, accumulate
// club and table summaries, write both, and publish to the warehouse when
// one is configured.
func (p *Pipeline) Aggregate(ctx context.Context, categorizedPath string) error {
	timer := p.deps.Metrics.StartTimer("aggregate_stage_duration_seconds")
	defer timer.Stop()

	rows, err := p.deps.Categorized.ReadCategorized(ctx, categorizedPath)
	if err != nil {
		return err
	}
	p.deps.Metrics.RecordGauge("rows_read", float64(len(rows)), "stage", "aggregate")

	aggregator := services.NewUsageAggregator(
		NewServiceLogger(p.logger), NewServiceMetrics(p.deps.Metrics))
	aggregator.AddAll(rows)

	clubs := aggregator.ClubSummaries()
	tables := aggregator.TableSummaries()

	clubPath := p.analysisPath("club_summary")
	if err := p.deps.Summaries.WriteClubSummaries(ctx, clubPath, clubs); err != nil {
		return err
	}
	tablePath := p.analysisPath("table_summary")
	if err := p.deps.Summaries.WriteTableSummaries(ctx, tablePath, tables); err != nil {
		return err
	}

	if p.deps.Warehouse != nil {
		if err := p.deps.Warehouse.Publish(ctx, rows, clubs, tables); err != nil {
			return err
		}
	}

	p.logger.Info().
		Str("stage", "aggregate").
		Str("club_summary", clubPath).
		Str("table_summary", tablePath).
		Int("clubs", len(clubs)).
		Int("tables", len(tables)).
		Msg("Aggregation stage finished")
	return nil
}

// Quicklook runs the supplementary analysis cuts over the categorized
// intermediate: table ranking, environment distribution, club engagement,
// and per-table complexity mix.
func (p *Pipeline) Quicklook(ctx context.Context, categorizedPath string) error {
	timer := p.deps.Metrics.StartTimer("quicklook_stage_duration_seconds")
	defer timer.Stop()

	rows, err := p.deps.Categorized.ReadCategorized(ctx, categorizedPath)
	if err != nil {
		return err
	}
	p.deps.Metrics.RecordGauge("rows_read", float64(len(rows)), "stage", "quicklook")

	quicklook := services.NewUsageQuicklook(NewServiceLogger(p.logger))
	quicklook.AddAll(rows)

	ranking := quicklook.TableRanking()
	if err := p.deps.Quicklook.WriteTableRanking(ctx, p.analysisPath("table_ranking"), ranking); err != nil {
		return err
	}
	if err := p.deps.Quicklook.WriteEnvironmentAnalysis(ctx, p.analysisPath("environment_analysis"), quicklook.EnvironmentDistribution()); err != nil {
		return err
	}
	if err := p.deps.Quicklook.WriteClubEngagement(ctx, p.analysisPath("club_engagement"), quicklook.ClubEngagement()); err != nil {
		return err
	}
	if err := p.deps.Quicklook.WriteTableComplexity(ctx, p.analysisPath("table_complexity"), quicklook.TableComplexity(p.topTables)); err != nil {
		return err
	}

	for i, rank := range ranking {
		if i >= 5 {
			break
		}
		p.logger.Info().
			Int("rank", i+1).
			Str("table", rank.TableName).
			Int("uses", rank.UsageCount).
			Msg("Top table")
	}

	p.logger.Info().
		Str("stage", "quicklook").
		Int("rows", len(rows)).
		Msg("Quicklook stage finished")
	return nil
}

// Run executes the full pipeline: capture, score, aggregate, quicklook. A
// stage either completes fully or the whole run fails; nothing downstream of
// a failed stage executes.
func (p *Pipeline) Run(ctx context.Context, inputPath string) error {
	p.logger.Info().Str("input", inputPath).Msg("Pipeline run starting")

	capturedPath, err := p.Capture(ctx, inputPath)
	if err != nil {
		return err
	}
	categorizedPath, err := p.Score(ctx, capturedPath)
	if err != nil {
		return err
	}
	if err := p.Aggregate(ctx, categorizedPath); err != nil {
		return err
	}
	if err := p.Quicklook(ctx, categorizedPath); err != nil {
		return err
	}

	p.logger.Info().Msg("Pipeline run finished")
	return nil
}
