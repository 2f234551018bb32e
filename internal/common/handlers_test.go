package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PioneData/CAT-Backend/internal/db"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gdb.AutoMigrate(
		&State{}, &ZoneCounty{}, &Zipcode{}, &ZipcodeDataset{},
		&Category{}, &Event{}, &CategoryEventMapping{},
		&Policyholder{}, &User{},
	))

	prev := db.DB
	db.DB = gdb
	t.Cleanup(func() { db.DB = prev })

	return SetupRoutes()
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCategoryLifecycle(t *testing.T) {
	router := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/categories", `{"name":"Weather","description":"Severe weather"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.True(t, created.Status)

	rec = doJSON(t, router, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)

	rec = doJSON(t, router, http.MethodPatch, "/categories/1", `{"description":"updated","id":99}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "updated", updated.Description)
	assert.Equal(t, uint(1), updated.ID, "id is not an updatable field")

	rec = doJSON(t, router, http.MethodDelete, "/categories/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Soft-deleted rows disappear from the default listing but stay in the DB.
	rec = doJSON(t, router, http.MethodGet, "/categories", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed)

	rec = doJSON(t, router, http.MethodGet, "/categories?include_inactive=true", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)
}

func TestCreateCategoryRejectsMissingName(t *testing.T) {
	router := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/categories", `{"description":"no name"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteCategoryNotFound(t *testing.T) {
	router := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodDelete, "/categories/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePolicyholderValidatesZipcode(t *testing.T) {
	router := setupTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/policyholders",
		`{"policy_id":"POL-1","name":"Ada","zipcode_id":42}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.NoError(t, db.DB.Create(&State{Code: "FL", Name: "Florida", FIPS: "12"}).Error)
	require.NoError(t, db.DB.Create(&ZoneCounty{
		Code: "FLC086", Name: "FLC086", FIPS: "12086", Type: RegionCounty, StateID: 1, Status: true,
	}).Error)
	require.NoError(t, db.DB.Create(&Zipcode{
		Code: "33101", Name: "ZIP 33101", ZoneCountyID: 1, Status: true,
	}).Error)

	rec = doJSON(t, router, http.MethodPost, "/policyholders",
		`{"policy_id":"POL-1","name":"Ada","zipcode_id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/policyholders?zipcode_id=1", "")
	var holders []Policyholder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &holders))
	require.Len(t, holders, 1)
	assert.Equal(t, "POL-1", holders[0].PolicyID)
}

func TestListZipcodesFiltersByRegion(t *testing.T) {
	router := setupTestRouter(t)

	require.NoError(t, db.DB.Create(&State{Code: "FL", Name: "Florida", FIPS: "12"}).Error)
	require.NoError(t, db.DB.Create(&ZoneCounty{
		Code: "FLC086", Name: "FLC086", FIPS: "12086", Type: RegionCounty, StateID: 1, Status: true,
	}).Error)
	require.NoError(t, db.DB.Create(&ZoneCounty{
		Code: "FLC011", Name: "FLC011", FIPS: "12011", Type: RegionCounty, StateID: 1, Status: true,
	}).Error)
	require.NoError(t, db.DB.Create(&Zipcode{Code: "33101", Name: "ZIP 33101", ZoneCountyID: 1, Status: true}).Error)
	require.NoError(t, db.DB.Create(&Zipcode{Code: "33301", Name: "ZIP 33301", ZoneCountyID: 2, Status: true}).Error)

	rec := doJSON(t, router, http.MethodGet, "/zipcodes?zone_county_id=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var zips []Zipcode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &zips))
	require.Len(t, zips, 1)
	assert.Equal(t, "33301", zips[0].Code)
}
