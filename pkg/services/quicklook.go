package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fieldline/queryscope/pkg/models"
)

// complexityLevels orders the four categories for averaging; categories
// outside the band (the incomplete sentinel) weigh zero.
var complexityLevels = map[string]int{
	models.CategoryBasic:      1,
	models.CategoryFocused:    2,
	models.CategoryAnalytical: 3,
	models.CategoryComplex:    4,
}

// UsageQuicklook builds the secondary analysis cuts over the categorized
// rows: overall table ranking, environment distribution, club engagement,
// and per-table complexity mix. Like the aggregator it is single-run,
// single-goroutine state.
type UsageQuicklook struct {
	tableUsage *orderedCounter
	envUsage   *orderedCounter
	clubUsage  map[string]*orderedCounter
	clubOrder  []string
	categories map[string][]string
	logger     Logger
}

// NewUsageQuicklook creates an empty quicklook accumulator.
func NewUsageQuicklook(logger Logger) *UsageQuicklook {
	return &UsageQuicklook{
		tableUsage: newOrderedCounter(),
		envUsage:   newOrderedCounter(),
		clubUsage:  make(map[string]*orderedCounter),
		categories: make(map[string][]string),
		logger:     logger,
	}
}

// Add folds one categorized row into the quicklook accumulators.
func (q *UsageQuicklook) Add(row models.ScoredQuery) {
	if env := row.Environment.String(); env != "" {
		q.envUsage.Increment(env)
	}

	for _, table := range row.Slots {
		if table == "" {
			continue
		}
		q.tableUsage.Increment(table)

		counter, ok := q.clubUsage[row.Club]
		if !ok {
			counter = newOrderedCounter()
			q.clubUsage[row.Club] = counter
			q.clubOrder = append(q.clubOrder, row.Club)
		}
		counter.Increment(table)

		if row.Category != "" {
			q.categories[table] = append(q.categories[table], row.Category)
		}
	}
}

// AddAll folds a batch of rows in order.
func (q *UsageQuicklook) AddAll(rows []models.ScoredQuery) {
	for _, row := range rows {
		q.Add(row)
	}
	q.logger.Info("Quicklook accumulation complete",
		"rows", len(rows),
		"tables", q.tableUsage.Len(),
		"clubs", len(q.clubOrder))
}

// TableRanking returns every table ordered by usage, with each table's share
// of total references.
func (q *UsageQuicklook) TableRanking() []models.TableRank {
	total := q.tableUsage.Total()
	pairs := q.tableUsage.MostCommon()

	ranking := make([]models.TableRank, 0, len(pairs))
	for _, p := range pairs {
		var pct float64
		if total > 0 {
			pct = float64(p.Count) / float64(total) * 100
		}
		ranking = append(ranking, models.TableRank{
			TableName:  p.Key,
			UsageCount: p.Count,
			Percentage: pct,
		})
	}
	return ranking
}

// EnvironmentDistribution returns per-environment query counts and shares.
func (q *UsageQuicklook) EnvironmentDistribution() []models.EnvironmentUsage {
	total := q.envUsage.Total()
	pairs := q.envUsage.MostCommon()

	dist := make([]models.EnvironmentUsage, 0, len(pairs))
	for _, p := range pairs {
		var pct float64
		if total > 0 {
			pct = float64(p.Count) / float64(total) * 100
		}
		dist = append(dist, models.EnvironmentUsage{
			Environment: p.Key,
			QueryCount:  p.Count,
			Percentage:  pct,
		})
	}
	return dist
}

// ClubEngagement returns per-club engagement rows sorted by descending
// engagement score (total references + 2 x unique tables).
func (q *UsageQuicklook) ClubEngagement() []models.ClubEngagement {
	engagement := make([]models.ClubEngagement, 0, len(q.clubOrder))
	for _, club := range q.clubOrder {
		counter := q.clubUsage[club]
		refs := counter.Total()
		unique := counter.Len()
		engagement = append(engagement, models.ClubEngagement{
			Club:            club,
			TotalReferences: refs,
			UniqueTables:    unique,
			EngagementScore: refs + unique*2,
		})
	}
	sort.SliceStable(engagement, func(i, j int) bool {
		return engagement[i].EngagementScore > engagement[j].EngagementScore
	})
	return engagement
}

// TableComplexity returns the complexity mix for the topN most-used tables.
func (q *UsageQuicklook) TableComplexity(topN int) []models.TableComplexity {
	pairs := q.tableUsage.MostCommon()
	if topN > 0 && topN < len(pairs) {
		pairs = pairs[:topN]
	}

	var rows []models.TableComplexity
	for _, p := range pairs {
		cats := q.categories[p.Key]
		if len(cats) == 0 {
			continue
		}

		sum := 0
		counter := newOrderedCounter()
		for _, cat := range cats {
			sum += complexityLevels[cat]
			counter.Increment(cat)
		}

		var parts []string
		for _, kc := range counter.MostCommon() {
			parts = append(parts, fmt.Sprintf("%s:%d", kc.Key, kc.Count))
		}

		rows = append(rows, models.TableComplexity{
			TableName:    p.Key,
			UsageCount:   p.Count,
			AvgLevel:     float64(sum) / float64(len(cats)),
			Distribution: strings.Join(parts, ", "),
		})
	}
	return rows
}
