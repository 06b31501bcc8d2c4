// Package csvrepo provides CSV-backed repository implementations for the
// pipeline's tabular file contracts.
package csvrepo

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fieldline/queryscope/pkg/errors"
	"github.com/fieldline/queryscope/pkg/models"
)

// Raw input field names.
const (
	rawFieldTimestamp = "Timestamp (ET)"
	rawFieldUser      = "User"
	rawFieldClub      = "Club"
	rawFieldQuery     = "Query"
)

// Intermediate field names shared by the captured and categorized contracts.
var capturedHeader = []string{
	"timestamp_et", "user", "club", "query", "table_used", "completeness",
	"first_table_used", "second_table_used", "third_table_used",
	"fourth_table_used", "fifth_table_used", "sixth_table_used",
	"table_used_num", "data_environment",
}

var categorizedHeader = append(append([]string{}, capturedHeader...),
	"score", "category", "explanation")

// Repository implements the CSV repositories over local files.
type Repository struct {
	logger zerolog.Logger
}

// New creates a CSV repository.
func New(logger zerolog.Logger) *Repository {
	return &Repository{logger: logger}
}

// record gives header-keyed access to one CSV row, mirroring how upstream
// exports the log (column order is not guaranteed, extra columns appear).
type record struct {
	index  map[string]int
	fields []string
}

func (r record) get(name string) string {
	i, ok := r.index[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// readAll streams every data row of a CSV file through fn.
func (r *Repository) readAll(ctx context.Context, path string, fn func(record)) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(err, errors.CodeNotFound, "input file not found: %s", path)
		}
		return errors.Wrapf(err, errors.CodeIOFailed, "failed to open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return errors.Wrapf(err, errors.CodeParseFailed, "failed to read header of %s", path)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	rows := 0
	for {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "read cancelled")
		}
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, errors.CodeParseFailed, "failed to read row %d of %s", rows+2, path)
		}
		fn(record{index: index, fields: fields})
		rows++
	}

	r.logger.Debug().Str("path", path).Int("rows", rows).Msg("Read CSV file")
	return nil
}

// ReadQueries reads the raw submitted-query log.
func (r *Repository) ReadQueries(ctx context.Context, path string) ([]models.QueryRecord, error) {
	var records []models.QueryRecord
	err := r.readAll(ctx, path, func(row record) {
		records = append(records, models.QueryRecord{
			TimestampET: row.get(rawFieldTimestamp),
			User:        row.get(rawFieldUser),
			Club:        row.get(rawFieldClub),
			Query:       row.get(rawFieldQuery),
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func capturedFromRecord(row record) models.CapturedQuery {
	captured := models.CapturedQuery{
		TimestampET: row.get("timestamp_et"),
		User:        row.get("user"),
		Club:        row.get("club"),
		Query:       row.get("query"),
		Complete:    row.get("completeness") == "1",
		Environment: models.Environment(row.get("data_environment")),
	}
	if joined := row.get("table_used"); joined != "" {
		captured.Tables = strings.Split(joined, ",")
	}
	slotFields := []string{
		"first_table_used", "second_table_used", "third_table_used",
		"fourth_table_used", "fifth_table_used", "sixth_table_used",
	}
	for i, field := range slotFields {
		captured.Slots[i] = row.get(field)
	}
	if n, err := strconv.Atoi(row.get("table_used_num")); err == nil {
		captured.TableCount = n
	}
	return captured
}

// ReadCaptured reloads the captured-tables intermediate.
func (r *Repository) ReadCaptured(ctx context.Context, path string) ([]models.CapturedQuery, error) {
	var rows []models.CapturedQuery
	err := r.readAll(ctx, path, func(row record) {
		rows = append(rows, capturedFromRecord(row))
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadCategorized reloads the categorized intermediate.
func (r *Repository) ReadCategorized(ctx context.Context, path string) ([]models.ScoredQuery, error) {
	var rows []models.ScoredQuery
	err := r.readAll(ctx, path, func(row record) {
		rows = append(rows, models.ScoredQuery{
			CapturedQuery: capturedFromRecord(row),
			Score:         row.get("score"),
			Category:      row.get("category"),
			Explanation:   row.get("explanation"),
		})
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
