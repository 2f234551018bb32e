package monitoring

import (
	"io"
	"log/slog"
	"testing"

	"github.com/PioneData/CAT-Backend/internal/common"
	"github.com/PioneData/CAT-Backend/internal/monitoring/weathergov"
	"github.com/PioneData/CAT-Backend/internal/observability"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gdb.AutoMigrate(
		&common.State{},
		&common.ZoneCounty{},
		&common.Zipcode{},
		&common.ZipcodeDataset{},
		&common.Category{},
		&common.Event{},
		&common.CategoryEventMapping{},
		&common.Policyholder{},
		&Alert{},
		&AlertAffectedArea{},
		&AlertSyncLog{},
	))

	return gdb
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestIngestor(t *testing.T, gdb *gorm.DB) *Ingestor {
	t.Helper()
	return NewIngestor(gdb, testLogger(), observability.NewMetricsForTesting())
}

func seedState(t *testing.T, gdb *gorm.DB, code, name, fips string) *common.State {
	t.Helper()
	state := &common.State{Code: code, Name: name, FIPS: fips, Status: true}
	require.NoError(t, gdb.Create(state).Error)
	return state
}

func seedDatasetZips(t *testing.T, gdb *gorm.DB, countyFIPS string, zips ...string) {
	t.Helper()
	for _, zip := range zips {
		require.NoError(t, gdb.Create(&common.ZipcodeDataset{
			Zip:        zip,
			CountyFIPS: countyFIPS,
		}).Error)
	}
}

func feature(id, event, severity string, ugc ...string) weathergov.Feature {
	return weathergov.Feature{
		ID: id,
		Properties: weathergov.Properties{
			Event:    event,
			Headline: event + " issued",
			Severity: severity,
			Sent:     "2026-08-01T12:00:00-04:00",
			Geocode:  weathergov.Geocode{UGC: ugc},
		},
	}
}
