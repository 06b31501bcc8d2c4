package duckdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/queryscope/pkg/models"
)

func TestWarehouseRepository_Publish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.duckdb")

	repo, err := NewWarehouseRepository(path, zerolog.Nop())
	require.NoError(t, err)

	rows := []models.ScoredQuery{
		{
			CapturedQuery: models.CapturedQuery{
				TimestampET: "2025-09-12 10:00:00",
				User:        "a@example.com",
				Club:        "ABC",
				Query:       "SELECT * FROM fulfillment_ptc.ptc_ticketing_sales WHERE club_id = 5",
				Tables:      []string{"ticketing_sales"},
				Complete:    true,
				Slots:       [models.MaxTableSlots]string{"ticketing_sales"},
				TableCount:  1,
				Environment: models.EnvironmentGridiron,
			},
			Score:       "2",
			Category:    models.CategoryBasic,
			Explanation: "WHERE clause (2)",
		},
	}
	clubs := []models.ClubSummary{
		{Club: "ABC", UniqueGridironTables: 1, TotalScore: 2, AvgScore: 2, MostUsedGridironTable: "ticketing_sales"},
	}
	tables := []models.TableSummary{
		{TableName: "ticketing_sales", Environment: models.EnvironmentGridiron, UniqueClubs: 1, TotalAppearances: 1},
	}

	require.NoError(t, repo.Publish(context.Background(), rows, clubs, tables))
	// DuckDB holds an exclusive lock per instance; release it before reopening.
	require.NoError(t, repo.Close())

	db, err := sql.Open("duckdb", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM categorized_queries`).Scan(&count))
	assert.Equal(t, 1, count)

	var club string
	var avg float64
	require.NoError(t, db.QueryRow(`SELECT club, avg_query_score FROM club_summary`).Scan(&club, &avg))
	assert.Equal(t, "ABC", club)
	assert.InDelta(t, 2.0, avg, 0.001)

	var env string
	require.NoError(t, db.QueryRow(`SELECT data_environment FROM table_summary`).Scan(&env))
	assert.Equal(t, "gridiron", env)
}

// Publishing twice replaces, not appends.
func TestWarehouseRepository_PublishReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.duckdb")

	repo, err := NewWarehouseRepository(path, zerolog.Nop())
	require.NoError(t, err)

	summary := []models.TableSummary{
		{TableName: "t", Environment: models.EnvironmentLegacy, UniqueClubs: 1, TotalAppearances: 1},
	}
	require.NoError(t, repo.Publish(context.Background(), nil, nil, summary))
	require.NoError(t, repo.Publish(context.Background(), nil, nil, summary))
	require.NoError(t, repo.Close())

	db, err := sql.Open("duckdb", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM table_summary`).Scan(&count))
	assert.Equal(t, 1, count)
}
