// Package duckdb provides a DuckDB-backed warehouse repository that
// publishes a run's outputs for downstream ad-hoc SQL analysis.
package duckdb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rs/zerolog"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/fieldline/queryscope/pkg/errors"
	"github.com/fieldline/queryscope/pkg/models"
	"github.com/fieldline/queryscope/pkg/repositories"
)

const (
	createCategorized = `CREATE TABLE categorized_queries (
		timestamp_et VARCHAR,
		"user" VARCHAR,
		club VARCHAR,
		query VARCHAR,
		table_used VARCHAR,
		completeness INTEGER,
		first_table_used VARCHAR,
		second_table_used VARCHAR,
		third_table_used VARCHAR,
		fourth_table_used VARCHAR,
		fifth_table_used VARCHAR,
		sixth_table_used VARCHAR,
		table_used_num INTEGER,
		data_environment VARCHAR,
		score VARCHAR,
		category VARCHAR,
		explanation VARCHAR
	)`

	createClubSummary = `CREATE TABLE club_summary (
		club VARCHAR,
		unique_legacy_tables INTEGER,
		unique_gridiron_tables INTEGER,
		total_query_score DOUBLE,
		avg_query_score DOUBLE,
		most_used_legacy_table VARCHAR,
		most_used_gridiron_table VARCHAR
	)`

	createTableSummary = `CREATE TABLE table_summary (
		table_name VARCHAR,
		data_environment VARCHAR,
		unique_clubs_using INTEGER,
		total_query_appearances INTEGER
	)`
)

// warehouseRepository implements repositories.WarehouseRepository for DuckDB.
type warehouseRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewWarehouseRepository opens (or creates) the DuckDB database at path.
func NewWarehouseRepository(path string, logger zerolog.Logger) (repositories.WarehouseRepository, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeWarehouseFailed, "failed to open warehouse at %s", path)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, errors.CodeWarehouseFailed, "failed to connect to warehouse at %s", path)
	}

	return &warehouseRepository{db: db, logger: logger}, nil
}

// Publish replaces the warehouse tables with this run's categorized rows and
// summaries. The warehouse is an export surface, not a store of record:
// aggregates are per-run, so existing tables are dropped and recreated.
func (r *warehouseRepository) Publish(
	ctx context.Context,
	rows []models.ScoredQuery,
	clubs []models.ClubSummary,
	tables []models.TableSummary,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.CodeWarehouseFailed, "failed to begin warehouse transaction")
	}
	defer tx.Rollback()

	ddl := []string{
		`DROP TABLE IF EXISTS categorized_queries`,
		`DROP TABLE IF EXISTS club_summary`,
		`DROP TABLE IF EXISTS table_summary`,
		createCategorized,
		createClubSummary,
		createTableSummary,
	}
	for _, stmt := range ddl {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, errors.CodeWarehouseFailed, "warehouse DDL failed: %s", stmt)
		}
	}

	if err := r.insertCategorized(ctx, tx, rows); err != nil {
		return err
	}
	if err := r.insertClubSummaries(ctx, tx, clubs); err != nil {
		return err
	}
	if err := r.insertTableSummaries(ctx, tx, tables); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.CodeWarehouseFailed, "failed to commit warehouse transaction")
	}

	r.logger.Info().
		Int("categorized_rows", len(rows)).
		Int("clubs", len(clubs)).
		Int("tables", len(tables)).
		Msg("Published run to warehouse")
	return nil
}

func (r *warehouseRepository) insertCategorized(ctx context.Context, tx *sql.Tx, rows []models.ScoredQuery) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO categorized_queries VALUES
		(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, errors.CodeWarehouseFailed, "failed to prepare categorized insert")
	}
	defer stmt.Close()

	for _, row := range rows {
		completeness := 0
		if row.Complete {
			completeness = 1
		}
		_, err := stmt.ExecContext(ctx,
			row.TimestampET, row.User, row.Club, row.Query,
			strings.Join(row.Tables, ","), completeness,
			row.Slots[0], row.Slots[1], row.Slots[2],
			row.Slots[3], row.Slots[4], row.Slots[5],
			row.TableCount, row.Environment.String(),
			row.Score, row.Category, row.Explanation,
		)
		if err != nil {
			return errors.Wrap(err, errors.CodeWarehouseFailed, "failed to insert categorized row")
		}
	}
	return nil
}

func (r *warehouseRepository) insertClubSummaries(ctx context.Context, tx *sql.Tx, clubs []models.ClubSummary) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO club_summary VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, errors.CodeWarehouseFailed, "failed to prepare club summary insert")
	}
	defer stmt.Close()

	for _, club := range clubs {
		_, err := stmt.ExecContext(ctx,
			club.Club, club.UniqueLegacyTables, club.UniqueGridironTables,
			club.TotalScore, club.AvgScore,
			club.MostUsedLegacyTable, club.MostUsedGridironTable,
		)
		if err != nil {
			return errors.Wrap(err, errors.CodeWarehouseFailed, "failed to insert club summary row")
		}
	}
	return nil
}

func (r *warehouseRepository) insertTableSummaries(ctx context.Context, tx *sql.Tx, tables []models.TableSummary) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO table_summary VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, errors.CodeWarehouseFailed, "failed to prepare table summary insert")
	}
	defer stmt.Close()

	for _, table := range tables {
		_, err := stmt.ExecContext(ctx,
			table.TableName, table.Environment.String(),
			table.UniqueClubs, table.TotalAppearances,
		)
		if err != nil {
			return errors.Wrap(err, errors.CodeWarehouseFailed, "failed to insert table summary row")
		}
	}
	return nil
}

// Close closes the warehouse connection.
func (r *warehouseRepository) Close() error {
	return r.db.Close()
}
