// Package services contains the analysis logic of the pipeline: table
// reference extraction, environment classification, complexity scoring,
// and usage aggregation.
package services

import (
	"github.com/fieldline/queryscope/pkg/models"
)

// CaptureService turns raw query records into captured queries with table
// references and an environment classification.
type CaptureService interface {
	Capture(record models.QueryRecord) models.CapturedQuery
	CaptureBatch(records []models.QueryRecord) []models.CapturedQuery
}

// ScoringService assigns complexity scores and categories to captured queries.
type ScoringService interface {
	Score(captured models.CapturedQuery) models.ScoredQuery
	ScoreBatch(captured []models.CapturedQuery) []models.ScoredQuery
}

// Logger defines the logging interface services depend on.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// MetricsCollector defines the metrics collection interface services depend on.
type MetricsCollector interface {
	IncrementCounter(name string, labels ...string)
	RecordHistogram(name string, value float64, labels ...string)
	RecordGauge(name string, value float64, labels ...string)
}
