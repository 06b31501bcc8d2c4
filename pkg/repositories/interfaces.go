// Package repositories defines data access interfaces for the pipeline's
// tabular artifacts.
package repositories

import (
	"context"

	"github.com/fieldline/queryscope/pkg/models"
)

// QueryLogRepository reads the raw submitted-query log.
type QueryLogRepository interface {
	// ReadQueries reads the complete raw input batch. A missing or
	// unreadable file is fatal; no output may be produced after it.
	ReadQueries(ctx context.Context, path string) ([]models.QueryRecord, error)
}

// CapturedRepository persists and reloads the captured-tables intermediate.
type CapturedRepository interface {
	WriteCaptured(ctx context.Context, path string, rows []models.CapturedQuery) error
	ReadCaptured(ctx context.Context, path string) ([]models.CapturedQuery, error)
}

// CategorizedRepository persists and reloads the categorized intermediate.
type CategorizedRepository interface {
	WriteCategorized(ctx context.Context, path string, rows []models.ScoredQuery) error
	ReadCategorized(ctx context.Context, path string) ([]models.ScoredQuery, error)
}

// SummaryRepository persists the final club and table summaries.
type SummaryRepository interface {
	WriteClubSummaries(ctx context.Context, path string, rows []models.ClubSummary) error
	WriteTableSummaries(ctx context.Context, path string, rows []models.TableSummary) error
}

// QuicklookRepository persists the secondary analysis cuts.
type QuicklookRepository interface {
	WriteTableRanking(ctx context.Context, path string, rows []models.TableRank) error
	WriteEnvironmentAnalysis(ctx context.Context, path string, rows []models.EnvironmentUsage) error
	WriteClubEngagement(ctx context.Context, path string, rows []models.ClubEngagement) error
	WriteTableComplexity(ctx context.Context, path string, rows []models.TableComplexity) error
}

// WarehouseRepository publishes a run's categorized rows and summaries into
// an analytical database for downstream ad-hoc SQL.
type WarehouseRepository interface {
	Publish(ctx context.Context, rows []models.ScoredQuery, clubs []models.ClubSummary, tables []models.TableSummary) error
	Close() error
}
