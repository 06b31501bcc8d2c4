package services

import (
	"strconv"

	"github.com/fieldline/queryscope/pkg/models"
)

// scoringService implements ScoringService.
type scoringService struct {
	scorer  *ComplexityScorer
	logger  Logger
	metrics MetricsCollector
}

// NewScoringService creates a scoring service.
func NewScoringService(logger Logger, metrics MetricsCollector) ScoringService {
	return &scoringService{
		scorer:  NewComplexityScorer(),
		logger:  logger,
		metrics: metrics,
	}
}

// Score attaches a complexity score, category, and explanation to a captured
// query. Incomplete queries receive the sentinel values and are never scored.
func (s *scoringService) Score(captured models.CapturedQuery) models.ScoredQuery {
	scored := models.ScoredQuery{CapturedQuery: captured}

	if !captured.Complete {
		scored.Score = models.ScoreNotApplicable
		scored.Category = models.CategoryIncomplete
		scored.Explanation = models.ExplanationIncomplete
		s.metrics.IncrementCounter("queries_scored_total", "category", "incomplete")
		return scored
	}

	score, category, explanation := s.scorer.Evaluate(captured.Query)
	scored.Score = strconv.Itoa(score)
	scored.Category = category
	scored.Explanation = explanation

	s.metrics.IncrementCounter("queries_scored_total", "category", category)
	s.metrics.RecordHistogram("query_complexity_score", float64(score))
	s.logger.Debug("Scored query", "club", captured.Club, "score", score, "category", category)

	return scored
}

// ScoreBatch scores every captured query in input order.
func (s *scoringService) ScoreBatch(captured []models.CapturedQuery) []models.ScoredQuery {
	scored := make([]models.ScoredQuery, len(captured))
	for i, c := range captured {
		scored[i] = s.Score(c)
	}
	s.logger.Info("Scoring stage complete", "rows", len(captured))
	return scored
}
