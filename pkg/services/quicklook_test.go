package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/queryscope/pkg/models"
)

func quicklookRow(club, category string, env models.Environment, tables ...string) models.ScoredQuery {
	row := scoredRow(club, "1", env, tables...)
	row.Category = category
	return row
}

func TestUsageQuicklook_TableRanking(t *testing.T) {
	q := NewUsageQuicklook(nopLogger{})

	q.AddAll([]models.ScoredQuery{
		quicklookRow("A", models.CategoryBasic, models.EnvironmentLegacy, "orders", "events"),
		quicklookRow("B", models.CategoryBasic, models.EnvironmentLegacy, "orders"),
		quicklookRow("C", models.CategoryBasic, models.EnvironmentLegacy, "orders"),
	})

	ranking := q.TableRanking()
	require.Len(t, ranking, 2)

	assert.Equal(t, "orders", ranking[0].TableName)
	assert.Equal(t, 3, ranking[0].UsageCount)
	assert.InDelta(t, 75.0, ranking[0].Percentage, 0.001)

	assert.Equal(t, "events", ranking[1].TableName)
	assert.InDelta(t, 25.0, ranking[1].Percentage, 0.001)
}

func TestUsageQuicklook_EnvironmentDistribution(t *testing.T) {
	q := NewUsageQuicklook(nopLogger{})

	q.AddAll([]models.ScoredQuery{
		quicklookRow("A", models.CategoryBasic, models.EnvironmentLegacy, "t"),
		quicklookRow("A", models.CategoryBasic, models.EnvironmentLegacy, "t"),
		quicklookRow("A", models.CategoryBasic, models.EnvironmentGridiron, "t"),
		quicklookRow("A", models.CategoryIncomplete, models.EnvironmentNotApplicable),
	})

	dist := q.EnvironmentDistribution()
	require.Len(t, dist, 3)
	assert.Equal(t, "legacy", dist[0].Environment)
	assert.Equal(t, 2, dist[0].QueryCount)
	assert.InDelta(t, 50.0, dist[0].Percentage, 0.001)
	assert.Equal(t, "gridiron", dist[1].Environment)
	assert.Equal(t, "N/A", dist[2].Environment)
}

func TestUsageQuicklook_ClubEngagement(t *testing.T) {
	q := NewUsageQuicklook(nopLogger{})

	// busy: 3 references over 2 unique tables -> 3 + 2*2 = 7
	// quiet: 1 reference over 1 unique table -> 1 + 1*2 = 3
	q.AddAll([]models.ScoredQuery{
		quicklookRow("quiet", models.CategoryBasic, models.EnvironmentLegacy, "a"),
		quicklookRow("busy", models.CategoryBasic, models.EnvironmentLegacy, "a", "b"),
		quicklookRow("busy", models.CategoryBasic, models.EnvironmentLegacy, "a"),
	})

	engagement := q.ClubEngagement()
	require.Len(t, engagement, 2)

	assert.Equal(t, "busy", engagement[0].Club)
	assert.Equal(t, 3, engagement[0].TotalReferences)
	assert.Equal(t, 2, engagement[0].UniqueTables)
	assert.Equal(t, 7, engagement[0].EngagementScore)

	assert.Equal(t, "quiet", engagement[1].Club)
	assert.Equal(t, 3, engagement[1].EngagementScore)
}

func TestUsageQuicklook_TableComplexity(t *testing.T) {
	q := NewUsageQuicklook(nopLogger{})

	q.AddAll([]models.ScoredQuery{
		quicklookRow("A", models.CategoryBasic, models.EnvironmentLegacy, "t"),
		quicklookRow("A", models.CategoryBasic, models.EnvironmentLegacy, "t"),
		quicklookRow("A", models.CategoryComplex, models.EnvironmentLegacy, "t"),
	})

	rows := q.TableComplexity(20)
	require.Len(t, rows, 1)

	assert.Equal(t, "t", rows[0].TableName)
	assert.Equal(t, 3, rows[0].UsageCount)
	// Levels 1, 1, 4 average to 2.
	assert.InDelta(t, 2.0, rows[0].AvgLevel, 0.001)
	assert.Equal(t, "Basic Exploratory:2, Complex Analytical:1", rows[0].Distribution)
}

func TestUsageQuicklook_TableComplexityTopN(t *testing.T) {
	q := NewUsageQuicklook(nopLogger{})

	q.AddAll([]models.ScoredQuery{
		quicklookRow("A", models.CategoryBasic, models.EnvironmentLegacy, "first", "second"),
		quicklookRow("A", models.CategoryBasic, models.EnvironmentLegacy, "first"),
	})

	rows := q.TableComplexity(1)
	require.Len(t, rows, 1)
	assert.Equal(t, "first", rows[0].TableName)
}
