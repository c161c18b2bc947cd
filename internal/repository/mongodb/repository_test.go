package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/guildsync/guildsync/internal/domain/models"
)

func TestReportFilter(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "month", Value: "March"}, {Key: "year", Value: 2024}}, reportFilter("March", 2024))
}

func TestArchivedReportDocumentIsFlat(t *testing.T) {
	report := models.ArchivedReport{
		ReportTable: models.ReportTable{
			Month:   "March",
			Year:    2024,
			Records: []models.SalesRecord{{SKU: "SKU1", UnitsSold: 3, Net: 9.5}},
		},
		SyncedAt: time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC),
		Range:    "Sheet1!A1",
	}

	raw, err := bson.Marshal(report)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))

	// the filter in SaveReport matches these top-level keys
	assert.Equal(t, "March", doc["month"])
	assert.EqualValues(t, 2024, doc["year"])
	assert.Equal(t, "Sheet1!A1", doc["range"])

	records, ok := doc["records"].(bson.A)
	require.True(t, ok)
	assert.Len(t, records, 1)
}
