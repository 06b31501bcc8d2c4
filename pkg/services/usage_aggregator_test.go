package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/queryscope/pkg/models"
)

func scoredRow(club, score string, env models.Environment, tables ...string) models.ScoredQuery {
	row := models.ScoredQuery{Score: score}
	row.Club = club
	row.Environment = env
	for i, name := range tables {
		if i >= models.MaxTableSlots {
			break
		}
		row.Slots[i] = name
	}
	return row
}

func TestUsageAggregator_ClubScores(t *testing.T) {
	agg := NewUsageAggregator(nopLogger{}, nopMetrics{})

	agg.Add(scoredRow("ABC", "0", models.EnvironmentGridiron, "t1"))
	agg.Add(scoredRow("ABC", "6", models.EnvironmentGridiron, "t1"))
	agg.Add(scoredRow("ABC", "14", models.EnvironmentGridiron, "t2"))

	clubs := agg.ClubSummaries()
	require.Len(t, clubs, 1)
	assert.Equal(t, "ABC", clubs[0].Club)
	assert.InDelta(t, 20.0, clubs[0].TotalScore, 0.001)
	assert.InDelta(t, 6.6667, clubs[0].AvgScore, 0.001)
	assert.Equal(t, 2, clubs[0].UniqueGridironTables)
	assert.Equal(t, 0, clubs[0].UniqueLegacyTables)
	assert.Equal(t, "t1", clubs[0].MostUsedGridironTable)
	assert.Equal(t, "", clubs[0].MostUsedLegacyTable)
}

func TestUsageAggregator_EmptyClubNeverAveraged(t *testing.T) {
	agg := NewUsageAggregator(nopLogger{}, nopMetrics{})

	// No club on the row: the table is still counted, but no club summary
	// row appears and nothing divides by zero.
	agg.Add(scoredRow("", "5", models.EnvironmentLegacy, "orders"))

	assert.Empty(t, agg.ClubSummaries())

	tables := agg.TableSummaries()
	require.Len(t, tables, 1)
	assert.Equal(t, "orders", tables[0].TableName)
	assert.Equal(t, 1, tables[0].TotalAppearances)
}

func TestUsageAggregator_NotApplicableScoreCountsAsZero(t *testing.T) {
	agg := NewUsageAggregator(nopLogger{}, nopMetrics{})

	agg.Add(scoredRow("ABC", models.ScoreNotApplicable, models.EnvironmentNotApplicable))
	agg.Add(scoredRow("ABC", "8", models.EnvironmentLegacy, "t"))

	clubs := agg.ClubSummaries()
	require.Len(t, clubs, 1)
	assert.InDelta(t, 8.0, clubs[0].TotalScore, 0.001)
	assert.InDelta(t, 4.0, clubs[0].AvgScore, 0.001)
}

func TestUsageAggregator_MalformedScoreRecoversToZero(t *testing.T) {
	agg := NewUsageAggregator(nopLogger{}, nopMetrics{})

	agg.Add(scoredRow("ABC", "not-a-number", models.EnvironmentLegacy, "t"))

	clubs := agg.ClubSummaries()
	require.Len(t, clubs, 1)
	assert.Equal(t, 0.0, clubs[0].TotalScore)
	assert.Equal(t, 0.0, clubs[0].AvgScore)
}

func TestUsageAggregator_MostUsedTieBreak(t *testing.T) {
	agg := NewUsageAggregator(nopLogger{}, nopMetrics{})

	// alpha and beta both reach two uses; alpha was incremented first.
	agg.Add(scoredRow("ABC", "1", models.EnvironmentLegacy, "alpha"))
	agg.Add(scoredRow("ABC", "1", models.EnvironmentLegacy, "beta"))
	agg.Add(scoredRow("ABC", "1", models.EnvironmentLegacy, "beta"))
	agg.Add(scoredRow("ABC", "1", models.EnvironmentLegacy, "alpha"))

	clubs := agg.ClubSummaries()
	require.Len(t, clubs, 1)
	assert.Equal(t, "alpha", clubs[0].MostUsedLegacyTable)
}

func TestUsageAggregator_TableEnvironmentLastWriteWins(t *testing.T) {
	agg := NewUsageAggregator(nopLogger{}, nopMetrics{})

	agg.Add(scoredRow("A", "1", models.EnvironmentLegacy, "shared"))
	agg.Add(scoredRow("B", "1", models.EnvironmentGridiron, "shared"))
	// Mixed and N/A rows never reclassify a table.
	agg.Add(scoredRow("C", "1", models.EnvironmentMixed, "shared"))

	tables := agg.TableSummaries()
	require.Len(t, tables, 1)
	assert.Equal(t, models.EnvironmentGridiron, tables[0].Environment)
	assert.Equal(t, 3, tables[0].UniqueClubs)
	assert.Equal(t, 3, tables[0].TotalAppearances)
}

func TestUsageAggregator_UnclassifiedTableIsUnknown(t *testing.T) {
	agg := NewUsageAggregator(nopLogger{}, nopMetrics{})

	agg.Add(scoredRow("A", "1", models.EnvironmentMixed, "both"))

	tables := agg.TableSummaries()
	require.Len(t, tables, 1)
	assert.Equal(t, models.EnvironmentUnknown, tables[0].Environment)
}

func TestUsageAggregator_TableSummariesSorted(t *testing.T) {
	agg := NewUsageAggregator(nopLogger{}, nopMetrics{})

	agg.Add(scoredRow("A", "1", models.EnvironmentLegacy, "rare"))
	agg.Add(scoredRow("A", "1", models.EnvironmentLegacy, "popular"))
	agg.Add(scoredRow("B", "1", models.EnvironmentLegacy, "popular"))
	agg.Add(scoredRow("C", "1", models.EnvironmentLegacy, "popular", "middling"))
	agg.Add(scoredRow("C", "1", models.EnvironmentLegacy, "middling"))

	tables := agg.TableSummaries()
	require.Len(t, tables, 3)
	assert.Equal(t, "popular", tables[0].TableName)
	assert.Equal(t, 3, tables[0].TotalAppearances)
	assert.Equal(t, "middling", tables[1].TableName)
	assert.Equal(t, "rare", tables[2].TableName)
}

func TestUsageAggregator_ClubSummariesEncounterOrder(t *testing.T) {
	agg := NewUsageAggregator(nopLogger{}, nopMetrics{})

	agg.AddAll([]models.ScoredQuery{
		scoredRow("Zed", "1", models.EnvironmentLegacy, "t"),
		scoredRow("Alpha", "2", models.EnvironmentLegacy, "t"),
		scoredRow("Zed", "3", models.EnvironmentLegacy, "t"),
	})

	clubs := agg.ClubSummaries()
	require.Len(t, clubs, 2)
	assert.Equal(t, "Zed", clubs[0].Club)
	assert.Equal(t, "Alpha", clubs[1].Club)
}
