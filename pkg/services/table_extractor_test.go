package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldline/queryscope/pkg/models"
)

// nopLogger and nopMetrics satisfy the service interfaces for tests that do
// not assert on logging or metrics.
type nopLogger struct{}

func (nopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

type nopMetrics struct{}

func (nopMetrics) IncrementCounter(name string, labels ...string) {}
func (nopMetrics) RecordHistogram(name string, value float64, labels ...string) {}
func (nopMetrics) RecordGauge(name string, value float64, labels ...string) {}

func TestTableExtractor_Extract(t *testing.T) {
	extractor := NewTableExtractor()

	tests := []struct {
		name  string
		query string
		want  []models.TableReference
	}{
		{
			name:  "single gridiron reference",
			query: "SELECT * FROM fulfillment_ptc.ptc_ticketing_sales WHERE club_id = 5",
			want: []models.TableReference{
				{Environment: models.EnvironmentGridiron, Identifier: "fulfillment_ptc.ptc_ticketing_sales"},
			},
		},
		{
			name:  "single legacy reference",
			query: "SELECT id FROM AwsDataCatalog.sales.ticket_orders_abc_vw",
			want: []models.TableReference{
				{Environment: models.EnvironmentLegacy, Identifier: "AwsDataCatalog.sales.ticket_orders_abc_vw"},
			},
		},
		{
			name:  "legacy listed before gridiron regardless of text order",
			query: "SELECT a.x FROM marketing_ptc.ptc_campaigns a JOIN AwsDataCatalog.crm.contacts_xyz_vw b ON a.id = b.id",
			want: []models.TableReference{
				{Environment: models.EnvironmentLegacy, Identifier: "AwsDataCatalog.crm.contacts_xyz_vw"},
				{Environment: models.EnvironmentGridiron, Identifier: "marketing_ptc.ptc_campaigns"},
			},
		},
		{
			name:  "case insensitive matching",
			query: "select * from AWSDATACATALOG.Sales.Orders_VW",
			want: []models.TableReference{
				{Environment: models.EnvironmentLegacy, Identifier: "AWSDATACATALOG.Sales.Orders_VW"},
			},
		},
		{
			name:  "no references",
			query: "SELECT 1",
			want:  nil,
		},
		{
			name:  "plain two-part identifier is not a reference",
			query: "SELECT * FROM analytics.events",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractor.Extract(tt.query)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTableExtractor_ExtractDeduplicates(t *testing.T) {
	extractor := NewTableExtractor()

	query := `SELECT * FROM fulfillment_ptc.ptc_ticketing_sales a
		JOIN fulfillment_ptc.ptc_ticketing_sales b ON a.id = b.id`
	refs := extractor.Extract(query)

	assert.Len(t, refs, 1, "repeated identifier must yield exactly one reference")
	assert.Equal(t, "fulfillment_ptc.ptc_ticketing_sales", refs[0].Identifier)
}

func TestTableExtractor_ExtractPreservesFirstOccurrence(t *testing.T) {
	extractor := NewTableExtractor()

	query := "FROM a_ptc.one JOIN a_ptc.two JOIN a_ptc.one JOIN a_ptc.three"
	refs := extractor.Extract(query)

	var ids []string
	for _, ref := range refs {
		ids = append(ids, ref.Identifier)
	}
	assert.Equal(t, []string{"a_ptc.one", "a_ptc.two", "a_ptc.three"}, ids)
}

func TestTableExtractor_Normalize(t *testing.T) {
	extractor := NewTableExtractor()

	tests := []struct {
		name string
		ref  models.TableReference
		want string
	}{
		{
			name: "legacy strips view suffix and club code",
			ref:  models.TableReference{Environment: models.EnvironmentLegacy, Identifier: "AwsDataCatalog.sales.ticket_orders_abc_vw"},
			want: "ticket_orders",
		},
		{
			name: "legacy single segment keeps name",
			ref:  models.TableReference{Environment: models.EnvironmentLegacy, Identifier: "AwsDataCatalog.sales.orders_vw"},
			want: "orders",
		},
		{
			name: "gridiron strips ptc prefix",
			ref:  models.TableReference{Environment: models.EnvironmentGridiron, Identifier: "fulfillment_ptc.ptc_ticketing_sales"},
			want: "ticketing_sales",
		},
		{
			name: "gridiron without prefix unchanged",
			ref:  models.TableReference{Environment: models.EnvironmentGridiron, Identifier: "fulfillment_ptc.sales"},
			want: "sales",
		},
		{
			name: "unknown environment degrades to last segment",
			ref:  models.TableReference{Environment: models.EnvironmentUnknown, Identifier: "a.b.weird_name"},
			want: "weird_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractor.Normalize(tt.ref))
		})
	}
}

func TestTableExtractor_IsComplete(t *testing.T) {
	extractor := NewTableExtractor()

	assert.False(t, extractor.IsComplete(nil))
	assert.True(t, extractor.IsComplete([]models.TableReference{
		{Environment: models.EnvironmentLegacy, Identifier: "x"},
	}))
}
