package services

import (
	"github.com/fieldline/queryscope/pkg/models"
)

// captureService implements CaptureService.
type captureService struct {
	extractor  *TableExtractor
	classifier *EnvironmentClassifier
	logger     Logger
	metrics    MetricsCollector
}

// NewCaptureService creates a capture service.
func NewCaptureService(logger Logger, metrics MetricsCollector) CaptureService {
	return &captureService{
		extractor:  NewTableExtractor(),
		classifier: NewEnvironmentClassifier(),
		logger:     logger,
		metrics:    metrics,
	}
}

// Capture extracts table references from one raw record, normalizes them,
// and classifies the query's primary environment.
func (s *captureService) Capture(record models.QueryRecord) models.CapturedQuery {
	refs := s.extractor.Extract(record.Query)
	complete := s.extractor.IsComplete(refs)
	names := s.extractor.NormalizeAll(refs)

	captured := models.CapturedQuery{
		TimestampET: record.TimestampET,
		User:        record.User,
		Club:        record.Club,
		Query:       record.Query,
		Tables:      names,
		Complete:    complete,
		TableCount:  len(names),
		Environment: s.classifier.Classify(refs, complete),
	}
	for i, name := range names {
		if i >= models.MaxTableSlots {
			break
		}
		captured.Slots[i] = name
	}

	if !complete {
		s.metrics.IncrementCounter("queries_incomplete_total")
		s.logger.Debug("No table references extracted", "club", record.Club, "user", record.User)
	} else {
		s.logger.Debug("Captured query",
			"club", record.Club,
			"tables", len(names),
			"environment", captured.Environment.String())
	}
	s.metrics.IncrementCounter("queries_captured_total", "environment", captured.Environment.String())

	return captured
}

// CaptureBatch captures every record in input order.
func (s *captureService) CaptureBatch(records []models.QueryRecord) []models.CapturedQuery {
	captured := make([]models.CapturedQuery, len(records))
	for i, record := range records {
		captured[i] = s.Capture(record)
	}
	s.logger.Info("Capture stage complete", "rows", len(records))
	return captured
}
