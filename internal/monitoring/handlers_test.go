package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PioneData/CAT-Backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func useTestDB(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	prev := db.DB
	db.DB = gdb
	t.Cleanup(func() { db.DB = prev })
}

func categoryRiskRequest(t *testing.T, query string) []CategoryRisk {
	t.Helper()

	h := &Handlers{}
	req := httptest.NewRequest(http.MethodGet, "/alerts/category-risk-with-zipcodes"+query, nil)
	rec := httptest.NewRecorder()
	h.CategoryRiskHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var results []CategoryRisk
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	return results
}

func TestCategoryRiskHandlerSeverityAll(t *testing.T) {
	gdb := newTestDB(t)
	riskFixture(t, gdb)
	useTestDB(t, gdb)

	// "all" is the no-filter sentinel; it must never reach the query as a
	// literal severity value.
	results := categoryRiskRequest(t, "?severity=all")
	weather := findCategory(t, results, "Weather")
	assert.Equal(t, 1, weather.ActiveCount)
	require.Len(t, weather.CatEvents, 1)
	assert.Equal(t, "urn:alert:1", weather.CatEvents[0].EventID)
}

func TestCategoryRiskHandlerSeverityFilter(t *testing.T) {
	gdb := newTestDB(t)
	riskFixture(t, gdb)
	useTestDB(t, gdb)

	// The stored value is uppercase; the query parameter is not.
	results := categoryRiskRequest(t, "?severity=high")
	weather := findCategory(t, results, "Weather")
	assert.Equal(t, 1, weather.ActiveCount)

	results = categoryRiskRequest(t, "?severity=low")
	weather = findCategory(t, results, "Weather")
	assert.Equal(t, 0, weather.ActiveCount)
}

func TestCategoryRiskHandlerNoSeverityParam(t *testing.T) {
	gdb := newTestDB(t)
	riskFixture(t, gdb)
	useTestDB(t, gdb)

	results := categoryRiskRequest(t, "")
	weather := findCategory(t, results, "Weather")
	assert.Equal(t, 1, weather.ActiveCount)
}
