package services

import (
	"sort"

	"github.com/fieldline/queryscope/pkg/models"
)

// clubAggregate accumulates per-club usage facts. Counters are explicit and
// default-initialized on first encounter; nothing is shared across runs.
type clubAggregate struct {
	legacyTables   map[string]struct{}
	gridironTables map[string]struct{}
	legacyCounts   *orderedCounter
	gridironCounts *orderedCounter
	scores         []float64
}

func newClubAggregate() *clubAggregate {
	return &clubAggregate{
		legacyTables:   make(map[string]struct{}),
		gridironTables: make(map[string]struct{}),
		legacyCounts:   newOrderedCounter(),
		gridironCounts: newOrderedCounter(),
	}
}

// tableAggregate accumulates per-table usage facts.
type tableAggregate struct {
	clubs       map[string]struct{}
	appearances int
	environment models.Environment
}

func newTableAggregate() *tableAggregate {
	return &tableAggregate{
		clubs:       make(map[string]struct{}),
		environment: models.EnvironmentUnknown,
	}
}

// UsageAggregator consumes the ordered stream of scored query rows and
// accumulates club-level and table-level summaries. It owns its aggregates
// for the duration of one pipeline run; it is not safe for concurrent use
// and is discarded after emission.
type UsageAggregator struct {
	clubs     map[string]*clubAggregate
	clubOrder []string

	tables     map[string]*tableAggregate
	tableOrder []string

	logger  Logger
	metrics MetricsCollector
}

// NewUsageAggregator creates an empty aggregator.
func NewUsageAggregator(logger Logger, metrics MetricsCollector) *UsageAggregator {
	return &UsageAggregator{
		clubs:   make(map[string]*clubAggregate),
		tables:  make(map[string]*tableAggregate),
		logger:  logger,
		metrics: metrics,
	}
}

func (a *UsageAggregator) club(name string) *clubAggregate {
	agg, ok := a.clubs[name]
	if !ok {
		agg = newClubAggregate()
		a.clubs[name] = agg
		a.clubOrder = append(a.clubOrder, name)
	}
	return agg
}

func (a *UsageAggregator) table(name string) *tableAggregate {
	agg, ok := a.tables[name]
	if !ok {
		agg = newTableAggregate()
		a.tables[name] = agg
		a.tableOrder = append(a.tableOrder, name)
	}
	return agg
}

// Add folds one scored row into the aggregates.
func (a *UsageAggregator) Add(row models.ScoredQuery) {
	env := row.Environment
	classified := env == models.EnvironmentLegacy || env == models.EnvironmentGridiron

	// A score of "N/A" or a malformed value counts as zero; it still lands
	// in the club's score list so averages reflect every submitted query.
	if row.Club != "" {
		a.club(row.Club).scores = append(a.club(row.Club).scores, row.NumericScore())
	}

	for _, name := range row.Slots {
		if name == "" {
			continue
		}

		table := a.table(name)
		table.clubs[row.Club] = struct{}{}
		table.appearances++
		if classified {
			// Later rows overwrite earlier classifications for the same table.
			table.environment = env
		}

		if row.Club != "" && classified {
			club := a.club(row.Club)
			switch env {
			case models.EnvironmentLegacy:
				club.legacyTables[name] = struct{}{}
				club.legacyCounts.Increment(name)
			case models.EnvironmentGridiron:
				club.gridironTables[name] = struct{}{}
				club.gridironCounts.Increment(name)
			}
		}
	}

	a.metrics.IncrementCounter("rows_aggregated_total")
}

// AddAll folds a batch of rows in order.
func (a *UsageAggregator) AddAll(rows []models.ScoredQuery) {
	for _, row := range rows {
		a.Add(row)
	}
	a.logger.Info("Aggregation complete",
		"rows", len(rows),
		"clubs", len(a.clubOrder),
		"tables", len(a.tableOrder))
}

// ClubSummaries emits one summary per club in first-encounter order.
func (a *UsageAggregator) ClubSummaries() []models.ClubSummary {
	summaries := make([]models.ClubSummary, 0, len(a.clubOrder))
	for _, name := range a.clubOrder {
		agg := a.clubs[name]

		var total float64
		for _, s := range agg.scores {
			total += s
		}
		var avg float64
		if len(agg.scores) > 0 {
			avg = total / float64(len(agg.scores))
		}

		mostLegacy, _, _ := agg.legacyCounts.Top()
		mostGridiron, _, _ := agg.gridironCounts.Top()

		summaries = append(summaries, models.ClubSummary{
			Club:                  name,
			UniqueLegacyTables:    len(agg.legacyTables),
			UniqueGridironTables:  len(agg.gridironTables),
			TotalScore:            total,
			AvgScore:              avg,
			MostUsedLegacyTable:   mostLegacy,
			MostUsedGridironTable: mostGridiron,
		})
	}
	return summaries
}

// TableSummaries emits one summary per table, sorted by descending total
// appearances with ties keeping encounter order.
func (a *UsageAggregator) TableSummaries() []models.TableSummary {
	summaries := make([]models.TableSummary, 0, len(a.tableOrder))
	for _, name := range a.tableOrder {
		agg := a.tables[name]
		summaries = append(summaries, models.TableSummary{
			TableName:        name,
			Environment:      agg.environment,
			UniqueClubs:      len(agg.clubs),
			TotalAppearances: agg.appearances,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalAppearances > summaries[j].TotalAppearances
	})
	return summaries
}
