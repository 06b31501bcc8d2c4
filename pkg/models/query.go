// Package models provides data structures used throughout the analysis pipeline.
package models

import "strconv"

// Environment identifies which data-platform generation a table or query
// belongs to.
type Environment string

const (
	// EnvironmentLegacy is the older catalog-qualified platform.
	EnvironmentLegacy Environment = "legacy"
	// EnvironmentGridiron is the next-generation schema-qualified platform.
	EnvironmentGridiron Environment = "gridiron"
	// EnvironmentMixed marks queries touching both platforms equally.
	EnvironmentMixed Environment = "mixed"
	// EnvironmentUnknown marks tables never seen under a classified query.
	EnvironmentUnknown Environment = "unknown"
	// EnvironmentNotApplicable marks incomplete queries with no extractable references.
	EnvironmentNotApplicable Environment = "N/A"
)

// String returns the wire representation of the environment.
func (e Environment) String() string {
	return string(e)
}

// Complexity categories and the sentinels used for incomplete queries.
const (
	CategoryBasic      = "Basic Exploratory"
	CategoryFocused    = "Focused Exploratory"
	CategoryAnalytical = "Analytical"
	CategoryComplex    = "Complex Analytical"
	CategoryIncomplete = "Invalid/Incomplete"

	ScoreNotApplicable    = "N/A"
	ExplanationIncomplete = "Query marked as incomplete"
)

// MaxTableSlots is the number of named table columns materialized per query.
// References beyond this count are truncated from the structured slots; the
// total count is still recorded.
const MaxTableSlots = 6

// QueryRecord is one raw submitted query from the input log. Records are read
// once and never mutated.
type QueryRecord struct {
	TimestampET string `json:"timestamp_et"`
	User        string `json:"user"`
	Club        string `json:"club"`
	Query       string `json:"query"`
}

// TableReference is a single extracted table identifier tagged with the
// platform environment its naming convention belongs to.
type TableReference struct {
	Environment Environment `json:"environment"`
	Identifier  string      `json:"identifier"`
}

// CapturedQuery is a raw query enriched with extracted table references and
// an environment classification (the captured-tables intermediate).
type CapturedQuery struct {
	TimestampET string
	User        string
	Club        string
	Query       string

	// Tables holds every normalized table name, in extraction order.
	Tables []string
	// Complete is true iff at least one table reference was extracted.
	Complete bool
	// Slots holds the first MaxTableSlots normalized names; unused slots are empty.
	Slots [MaxTableSlots]string
	// TableCount is the true distinct reference count, including truncated overflow.
	TableCount  int
	Environment Environment
}

// ScoredQuery is a captured query enriched with its complexity score,
// category, and scoring explanation (the categorized intermediate).
type ScoredQuery struct {
	CapturedQuery

	// Score is the integer score in decimal text, or ScoreNotApplicable for
	// incomplete queries.
	Score       string
	Category    string
	Explanation string
}

// NumericScore returns the score as a number. Malformed values and the
// not-applicable sentinel both recover to zero; they are never propagated
// as errors.
func (q ScoredQuery) NumericScore() float64 {
	if q.Score == ScoreNotApplicable {
		return 0
	}
	v, err := strconv.ParseFloat(q.Score, 64)
	if err != nil {
		return 0
	}
	return v
}

// ClubSummary is the per-club engagement summary emitted by the aggregator.
type ClubSummary struct {
	Club                  string
	UniqueLegacyTables    int
	UniqueGridironTables  int
	TotalScore            float64
	AvgScore              float64
	MostUsedLegacyTable   string
	MostUsedGridironTable string
}

// TableSummary is the per-table popularity summary emitted by the aggregator.
type TableSummary struct {
	TableName        string
	Environment      Environment
	UniqueClubs      int
	TotalAppearances int
}

// TableRank is one row of the quicklook table-usage ranking.
type TableRank struct {
	TableName  string
	UsageCount int
	// Percentage is this table's share of all table references, in percent.
	Percentage float64
}

// EnvironmentUsage is one row of the quicklook environment distribution.
type EnvironmentUsage struct {
	Environment string
	QueryCount  int
	Percentage  float64
}

// ClubEngagement is one row of the quicklook club engagement ranking.
// EngagementScore is total references + 2 x unique table count.
type ClubEngagement struct {
	Club            string
	TotalReferences int
	UniqueTables    int
	EngagementScore int
}

// TableComplexity summarizes the complexity mix of queries hitting one table.
type TableComplexity struct {
	TableName    string
	UsageCount   int
	AvgLevel     float64
	Distribution string
}
