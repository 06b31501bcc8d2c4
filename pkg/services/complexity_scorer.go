package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fieldline/queryscope/pkg/models"
)

// signal is one textual SQL-construct signal. Its contribution function
// returns the total points the signal adds for a query (zero when absent),
// so the score and the explanation are always derived from the same
// definitions.
type signal struct {
	name       string
	contribute func(query string) int
}

// ComplexityScorer computes an integer complexity score from textual SQL
// construct signals and maps it to one of four categories. Like the
// extractor it works on surface patterns, not parsed SQL.
type ComplexityScorer struct {
	signals []signal
}

// NewComplexityScorer creates a scorer with the fixed signal table.
func NewComplexityScorer() *ComplexityScorer {
	selectStar := regexp.MustCompile(`(?i)SELECT \*`)
	limit := regexp.MustCompile(`(?i)LIMIT`)
	where := regexp.MustCompile(`(?i)WHERE`)
	having := regexp.MustCompile(`(?i)HAVING`)
	orderBy := regexp.MustCompile(`(?i)ORDER BY`)
	join := regexp.MustCompile(`(?i)JOIN`)
	groupBy := regexp.MustCompile(`(?i)GROUP BY`)
	aggregate := regexp.MustCompile(`(?i)(COUNT|SUM|AVG|MAX|MIN)\s*\(`)
	subquery := regexp.MustCompile(`(?i)\(SELECT`)
	cte := regexp.MustCompile(`(?i)WITH`)
	setOp := regexp.MustCompile(`(?i)(UNION|INTERSECT|EXCEPT)`)
	window := regexp.MustCompile(`(?i)OVER\s*\(`)
	pivot := regexp.MustCompile(`(?i)(PIVOT|UNPIVOT)`)

	present := func(re *regexp.Regexp, weight int) func(string) int {
		return func(q string) int {
			if re.MatchString(q) {
				return weight
			}
			return 0
		}
	}

	return &ComplexityScorer{
		signals: []signal{
			{"SELECT with specific columns", func(q string) int {
				if selectStar.MatchString(q) {
					return 0
				}
				return 1
			}},
			{"LIMIT clause", present(limit, 1)},
			{"WHERE clause", present(where, 2)},
			{"HAVING clause", present(having, 2)},
			{"ORDER BY", present(orderBy, 1)},
			{"Joins", func(q string) int {
				return len(join.FindAllString(q, -1)) * 3
			}},
			{"GROUP BY", present(groupBy, 2)},
			{"Aggregations", func(q string) int {
				// First aggregate call is worth 2, each additional 1.
				n := len(aggregate.FindAllString(q, -1))
				if n == 0 {
					return 0
				}
				return 2 + (n - 1)
			}},
			{"Subqueries", func(q string) int {
				return len(subquery.FindAllString(q, -1)) * 3
			}},
			{"Common Table Expressions", present(cte, 5)},
			{"Set operations", present(setOp, 5)},
			{"Window functions", present(window, 6)},
			{"PIVOT/UNPIVOT", present(pivot, 6)},
		},
	}
}

// Score returns the total complexity score for a query text.
func (s *ComplexityScorer) Score(query string) int {
	total := 0
	for _, sig := range s.signals {
		total += sig.contribute(query)
	}
	return total
}

// Categorize maps a score onto its complexity band.
func (s *ComplexityScorer) Categorize(score int) string {
	switch {
	case score <= 2:
		return models.CategoryBasic
	case score <= 6:
		return models.CategoryFocused
	case score <= 13:
		return models.CategoryAnalytical
	default:
		return models.CategoryComplex
	}
}

// Explain returns a comma-joined breakdown of the contributing signals, in
// fixed signal order. Summing the parenthesized contributions reproduces
// the score exactly.
func (s *ComplexityScorer) Explain(query string) string {
	var entries []string
	for _, sig := range s.signals {
		if points := sig.contribute(query); points > 0 {
			entries = append(entries, fmt.Sprintf("%s (%d)", sig.name, points))
		}
	}
	return strings.Join(entries, ", ")
}

// Evaluate computes score, category, and explanation in a single pass over
// the signal table.
func (s *ComplexityScorer) Evaluate(query string) (int, string, string) {
	total := 0
	var entries []string
	for _, sig := range s.signals {
		points := sig.contribute(query)
		total += points
		if points > 0 {
			entries = append(entries, fmt.Sprintf("%s (%d)", sig.name, points))
		}
	}
	return total, s.Categorize(total), strings.Join(entries, ", ")
}
