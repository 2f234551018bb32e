package monitoring

import (
	"testing"
	"time"

	"github.com/PioneData/CAT-Backend/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// riskFixture builds one fully attributed alert: FL hurricane, county region
// 12086, zipcode 33101 with a single active policyholder.
func riskFixture(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	state := seedState(t, gdb, "FL", "Florida", "12")

	region := &common.ZoneCounty{
		Code: "FLC086", Name: "FL COUNTY 086", FIPS: "12086",
		Type: common.RegionCounty, StateID: state.ID, Status: true,
	}
	require.NoError(t, gdb.Create(region).Error)

	zip := &common.Zipcode{Code: "33101", Name: "ZIP 33101", ZoneCountyID: region.ID, Status: true}
	require.NoError(t, gdb.Create(zip).Error)

	stateID := state.ID
	countyID := region.ID
	require.NoError(t, gdb.Create(&common.Policyholder{
		PolicyID: "POL-TEST0001", Name: "Ada Lovelace", ZipcodeID: zip.ID,
		Claims: 1, Premium: 1200, StateID: &stateID, CountyID: &countyID,
		Email: "ada@example.com", Status: true,
	}).Error)

	alert := &Alert{
		ExternalID: "urn:alert:1", Title: "Hurricane Warning issued",
		Status: StatusNew, Severity: SeverityHigh, StateID: &stateID,
		Source: "weather.gov", EventType: "Hurricane Warning",
		EventTimestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, gdb.Create(alert).Error)

	zipID := zip.ID
	require.NoError(t, gdb.Create(&AlertAffectedArea{
		AlertID: alert.ID, ZoneCountyID: &countyID, ZipcodeID: &zipID,
		RegionType: AreaZipcode,
	}).Error)

	for name, events := range map[string][]string{
		"Weather": {"Hurricane", "Tornado"},
		"Fire":    {"Wildfire"},
	} {
		cat := &common.Category{Name: name, Status: true}
		require.NoError(t, gdb.Create(cat).Error)
		for _, eventName := range events {
			event := &common.Event{Name: eventName, Status: true}
			require.NoError(t, gdb.Where("name = ?", eventName).FirstOrCreate(event).Error)
			require.NoError(t, gdb.Create(&common.CategoryEventMapping{
				CategoryID: cat.ID, EventID: event.ID,
			}).Error)
		}
	}
}

func findCategory(t *testing.T, results []CategoryRisk, title string) CategoryRisk {
	t.Helper()
	for _, r := range results {
		if r.CatTitle == title {
			return r
		}
	}
	t.Fatalf("category %q not in results", title)
	return CategoryRisk{}
}

func TestGroupAlertsByCategory(t *testing.T) {
	gdb := newTestDB(t)
	riskFixture(t, gdb)

	results, err := GroupAlertsByCategory(gdb, CategoryRiskFilters{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	weather := findCategory(t, results, "Weather")
	assert.Equal(t, 1, weather.ActiveCount, "Hurricane Warning matches the Hurricane event")
	require.Len(t, weather.CatEvents, 1)

	detail := weather.CatEvents[0]
	assert.Equal(t, "urn:alert:1", detail.EventID)
	assert.Equal(t, "HIGH", detail.Severity)
	require.Len(t, detail.AffectedAreas, 1)
	assert.Equal(t, "FL", detail.AffectedAreas[0].State)

	require.Len(t, detail.AffectedAreas[0].CountyZone, 1)
	zone := detail.AffectedAreas[0].CountyZone[0]
	assert.Equal(t, "FLC086", zone.Code)
	assert.Equal(t, []string{"33101"}, zone.Zipcodes)

	require.Len(t, zone.PolicyholdersInfo, 1)
	info := zone.PolicyholdersInfo[0]
	assert.Equal(t, "33101", info.Zipcode)
	assert.Equal(t, 1, info.PolicyholderCount)
	require.Len(t, info.Policyholders, 1)
	assert.Equal(t, "POL-TEST0001", info.Policyholders[0].PolicyID)
	assert.Equal(t, "Florida", info.Policyholders[0].State)

	// Fire has mapped events but no matching alerts.
	fire := findCategory(t, results, "Fire")
	assert.Equal(t, 0, fire.ActiveCount)
	assert.Empty(t, fire.CatEvents)
}

func TestGroupAlertsByCategorySeverityFilter(t *testing.T) {
	gdb := newTestDB(t)
	riskFixture(t, gdb)

	results, err := GroupAlertsByCategory(gdb, CategoryRiskFilters{Severity: SeverityLow})
	require.NoError(t, err)

	weather := findCategory(t, results, "Weather")
	assert.Equal(t, 0, weather.ActiveCount)
}

func TestGroupAlertsByCategoryCategoryFilter(t *testing.T) {
	gdb := newTestDB(t)
	riskFixture(t, gdb)

	results, err := GroupAlertsByCategory(gdb, CategoryRiskFilters{Category: "Fire"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Fire", results[0].CatTitle)
}

func TestGroupAlertsByCategoryStateFilter(t *testing.T) {
	gdb := newTestDB(t)
	riskFixture(t, gdb)

	results, err := GroupAlertsByCategory(gdb, CategoryRiskFilters{State: "TX"})
	require.NoError(t, err)

	weather := findCategory(t, results, "Weather")
	assert.Equal(t, 0, weather.ActiveCount)
}

func TestGroupAlertsByCategorySkipsZipsWithoutPolicyholders(t *testing.T) {
	gdb := newTestDB(t)
	riskFixture(t, gdb)

	// Retire the only policyholder; the zip, region, and whole affected-areas
	// branch should disappear from the report.
	require.NoError(t, gdb.Model(&common.Policyholder{}).
		Where("policy_id = ?", "POL-TEST0001").
		Update("status", false).Error)

	results, err := GroupAlertsByCategory(gdb, CategoryRiskFilters{})
	require.NoError(t, err)

	weather := findCategory(t, results, "Weather")
	require.Len(t, weather.CatEvents, 1)
	assert.Empty(t, weather.CatEvents[0].AffectedAreas)
}

func TestGroupAlertsByCategoryDedupsAlertAcrossEvents(t *testing.T) {
	gdb := newTestDB(t)
	riskFixture(t, gdb)

	// Map a second event name that also substring-matches the same alert.
	var weather common.Category
	require.NoError(t, gdb.Where("name = ?", "Weather").First(&weather).Error)
	event := &common.Event{Name: "Warning", Status: true}
	require.NoError(t, gdb.Create(event).Error)
	require.NoError(t, gdb.Create(&common.CategoryEventMapping{
		CategoryID: weather.ID, EventID: event.ID,
	}).Error)

	results, err := GroupAlertsByCategory(gdb, CategoryRiskFilters{})
	require.NoError(t, err)

	got := findCategory(t, results, "Weather")
	assert.Equal(t, 1, got.ActiveCount, "one alert matching two event names counts once")
}
