package services

import (
	"regexp"
	"strings"

	"github.com/fieldline/queryscope/pkg/models"
)

// TableExtractor scans raw query text for table identifiers under the two
// platform naming conventions. Matching is purely textual; no SQL grammar is
// parsed, so the extractor is heuristic by design and an empty result is a
// valid, common outcome (it marks the query incomplete).
type TableExtractor struct {
	// legacyPattern matches catalog-qualified view identifiers:
	// AwsDataCatalog.<schema>.<table>_vw
	legacyPattern *regexp.Regexp
	// gridironPattern matches schema-qualified identifiers: <schema>_ptc.<table>
	gridironPattern *regexp.Regexp
}

// NewTableExtractor creates a table extractor with compiled patterns.
func NewTableExtractor() *TableExtractor {
	return &TableExtractor{
		legacyPattern:   regexp.MustCompile(`(?i)AwsDataCatalog\.[^.\s]+\.[^.\s]+_vw`),
		gridironPattern: regexp.MustCompile(`(?i)[a-zA-Z_]+_ptc\.[a-zA-Z_0-9]+`),
	}
}

// Extract returns the table references found in query text, legacy matches
// first, deduplicated by raw identifier with first occurrence winning and
// relative order preserved.
func (e *TableExtractor) Extract(query string) []models.TableReference {
	var all []models.TableReference

	for _, match := range e.legacyPattern.FindAllString(query, -1) {
		all = append(all, models.TableReference{Environment: models.EnvironmentLegacy, Identifier: match})
	}
	for _, match := range e.gridironPattern.FindAllString(query, -1) {
		all = append(all, models.TableReference{Environment: models.EnvironmentGridiron, Identifier: match})
	}

	seen := make(map[string]bool, len(all))
	unique := all[:0]
	for _, ref := range all {
		if seen[ref.Identifier] {
			continue
		}
		seen[ref.Identifier] = true
		unique = append(unique, ref)
	}

	return unique
}

// Normalize reduces a raw qualified identifier to its short display name.
// It is total: identifier shapes the extraction patterns would not produce
// degrade to the final dot segment unchanged.
func (e *TableExtractor) Normalize(ref models.TableReference) string {
	segments := strings.Split(ref.Identifier, ".")
	name := segments[len(segments)-1]

	switch ref.Environment {
	case models.EnvironmentLegacy:
		name = strings.TrimSuffix(name, "_vw")
		// The trailing underscore segment is a club/tenant code.
		parts := strings.Split(name, "_")
		if len(parts) > 1 {
			name = strings.Join(parts[:len(parts)-1], "_")
		}
		return name
	case models.EnvironmentGridiron:
		return strings.TrimPrefix(name, "ptc_")
	default:
		return name
	}
}

// NormalizeAll maps Normalize over a reference list, preserving order.
func (e *TableExtractor) NormalizeAll(refs []models.TableReference) []string {
	if len(refs) == 0 {
		return nil
	}
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = e.Normalize(ref)
	}
	return names
}

// IsComplete reports whether a query yielded at least one table reference.
func (e *TableExtractor) IsComplete(refs []models.TableReference) bool {
	return len(refs) > 0
}
