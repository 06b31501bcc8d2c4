package services

import (
	"github.com/fieldline/queryscope/pkg/models"
)

// EnvironmentClassifier decides a query's primary data-platform environment
// from the multiset of its table reference environments.
type EnvironmentClassifier struct{}

// NewEnvironmentClassifier creates an environment classifier.
func NewEnvironmentClassifier() *EnvironmentClassifier {
	return &EnvironmentClassifier{}
}

// Classify returns the primary environment for a query. Incomplete queries
// classify as not-applicable; an empty reference list on a complete query
// should not occur and classifies as unknown.
func (c *EnvironmentClassifier) Classify(refs []models.TableReference, complete bool) models.Environment {
	if !complete {
		return models.EnvironmentNotApplicable
	}
	if len(refs) == 0 {
		return models.EnvironmentUnknown
	}

	var legacy, gridiron int
	for _, ref := range refs {
		switch ref.Environment {
		case models.EnvironmentLegacy:
			legacy++
		case models.EnvironmentGridiron:
			gridiron++
		}
	}

	switch {
	case legacy > gridiron:
		return models.EnvironmentLegacy
	case gridiron > legacy:
		return models.EnvironmentGridiron
	case legacy > 0:
		return models.EnvironmentMixed
	default:
		// Unreachable for a non-empty reference list; defensive fallback only.
		return models.EnvironmentLegacy
	}
}
