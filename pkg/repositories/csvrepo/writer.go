package csvrepo

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fieldline/queryscope/pkg/errors"
	"github.com/fieldline/queryscope/pkg/models"
)

// writeAll writes a header plus rows to path, creating or truncating it.
func (r *Repository) writeAll(ctx context.Context, path string, header []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "write cancelled")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, errors.CodeIOFailed, "failed to create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return errors.Wrapf(err, errors.CodeIOFailed, "failed to write header of %s", path)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, errors.CodeIOFailed, "failed to write row to %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, errors.CodeIOFailed, "failed to flush %s", path)
	}

	r.logger.Debug().Str("path", path).Int("rows", len(rows)).Msg("Wrote CSV file")
	return nil
}

func capturedToFields(row models.CapturedQuery) []string {
	completeness := "0"
	if row.Complete {
		completeness = "1"
	}
	fields := []string{
		row.TimestampET,
		row.User,
		row.Club,
		row.Query,
		strings.Join(row.Tables, ","),
		completeness,
	}
	for _, slot := range row.Slots {
		fields = append(fields, slot)
	}
	return append(fields,
		strconv.Itoa(row.TableCount),
		row.Environment.String(),
	)
}

// WriteCaptured writes the captured-tables intermediate.
func (r *Repository) WriteCaptured(ctx context.Context, path string, rows []models.CapturedQuery) error {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = capturedToFields(row)
	}
	return r.writeAll(ctx, path, capturedHeader, out)
}

// WriteCategorized writes the categorized intermediate.
func (r *Repository) WriteCategorized(ctx context.Context, path string, rows []models.ScoredQuery) error {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append(capturedToFields(row.CapturedQuery),
			row.Score, row.Category, row.Explanation)
	}
	return r.writeAll(ctx, path, categorizedHeader, out)
}

// WriteClubSummaries writes the club engagement summary. Score fields are
// fixed to two decimals.
func (r *Repository) WriteClubSummaries(ctx context.Context, path string, rows []models.ClubSummary) error {
	header := []string{
		"club", "unique_legacy_tables", "unique_gridiron_tables",
		"total_query_score", "avg_query_score",
		"most_used_legacy_table", "most_used_gridiron_table",
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = []string{
			row.Club,
			strconv.Itoa(row.UniqueLegacyTables),
			strconv.Itoa(row.UniqueGridironTables),
			fmt.Sprintf("%.2f", row.TotalScore),
			fmt.Sprintf("%.2f", row.AvgScore),
			row.MostUsedLegacyTable,
			row.MostUsedGridironTable,
		}
	}
	return r.writeAll(ctx, path, header, out)
}

// WriteTableSummaries writes the table popularity summary.
func (r *Repository) WriteTableSummaries(ctx context.Context, path string, rows []models.TableSummary) error {
	header := []string{
		"table_name", "data_environment", "unique_clubs_using", "total_query_appearances",
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = []string{
			row.TableName,
			row.Environment.String(),
			strconv.Itoa(row.UniqueClubs),
			strconv.Itoa(row.TotalAppearances),
		}
	}
	return r.writeAll(ctx, path, header, out)
}

// WriteTableRanking writes the quicklook usage ranking.
func (r *Repository) WriteTableRanking(ctx context.Context, path string, rows []models.TableRank) error {
	header := []string{"table_name", "usage_count", "percentage_of_total"}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = []string{
			row.TableName,
			strconv.Itoa(row.UsageCount),
			fmt.Sprintf("%.2f%%", row.Percentage),
		}
	}
	return r.writeAll(ctx, path, header, out)
}

// WriteEnvironmentAnalysis writes the quicklook environment distribution.
func (r *Repository) WriteEnvironmentAnalysis(ctx context.Context, path string, rows []models.EnvironmentUsage) error {
	header := []string{"data_environment", "query_count", "percentage"}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = []string{
			row.Environment,
			strconv.Itoa(row.QueryCount),
			fmt.Sprintf("%.2f%%", row.Percentage),
		}
	}
	return r.writeAll(ctx, path, header, out)
}

// WriteClubEngagement writes the quicklook club engagement ranking.
func (r *Repository) WriteClubEngagement(ctx context.Context, path string, rows []models.ClubEngagement) error {
	header := []string{"club", "total_table_references", "unique_tables_used", "engagement_score"}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = []string{
			row.Club,
			strconv.Itoa(row.TotalReferences),
			strconv.Itoa(row.UniqueTables),
			strconv.Itoa(row.EngagementScore),
		}
	}
	return r.writeAll(ctx, path, header, out)
}

// WriteTableComplexity writes the quicklook table complexity mix.
func (r *Repository) WriteTableComplexity(ctx context.Context, path string, rows []models.TableComplexity) error {
	header := []string{"table_name", "usage_count", "avg_complexity_level", "complexity_distribution"}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = []string{
			row.TableName,
			strconv.Itoa(row.UsageCount),
			fmt.Sprintf("%.2f", row.AvgLevel),
			row.Distribution,
		}
	}
	return r.writeAll(ctx, path, header, out)
}
