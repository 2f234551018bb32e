package monitoring

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/PioneData/CAT-Backend/internal/common"
	"github.com/PioneData/CAT-Backend/internal/monitoring/weathergov"
	"github.com/PioneData/CAT-Backend/internal/observability"
	"gorm.io/gorm"
)

// ZipcodeHook is invoked once per newly attributed zipcode inside the
// alert's sub-transaction. Returning an error rolls back that alert only.
// Production runs with no hook; the sample-policyholder generator installs
// one for demo data.
type ZipcodeHook func(tx *gorm.DB, zipcode *common.Zipcode, region *common.ZoneCounty) error

// Ingestor drives one feed batch through validation, dedup, per-alert
// attribution, and the final sync-log write.
type Ingestor struct {
	db      *gorm.DB
	logger  *slog.Logger
	metrics *observability.Metrics

	// OnZipcodeAttributed is optional; see ZipcodeHook.
	OnZipcodeAttributed ZipcodeHook
}

func NewIngestor(db *gorm.DB, logger *slog.Logger, metrics *observability.Metrics) *Ingestor {
	return &Ingestor{db: db, logger: logger, metrics: metrics}
}

// SyncResult is what one batch returns to the caller: the persisted counters
// plus, when anything was processed, the grouped category report.
type SyncResult struct {
	Processed      bool           `json:"processed"`
	Summary        AlertSyncLog   `json:"summary"`
	ZipcodeSummary ZipcodeSummary `json:"zipcode_summary"`
	Alerts         []CategoryRisk `json:"alerts,omitempty"`
}

// recordStatus classifies the outcome of one feed record. Skips and errors
// are recovered locally and only surface as counters; a batch-level error is
// returned from ProcessAlerts directly.
type recordStatus int

const (
	recordProcessed recordStatus = iota
	recordSkippedExisting
	recordErrored
)

type recordResult struct {
	status recordStatus
	zips   ZipcodeSummary
	err    error
}

// validRecord is a feed record that survived the validation pass.
type validRecord struct {
	feature   weathergov.Feature
	title     string
	ugcCodes  []string
	stateCode string
}

// ProcessAlerts runs one ingestion batch over the fetched feed records.
// Each alert's multi-step attribution runs in its own savepoint so one bad
// record never aborts the batch; all successful alerts and the single
// sync-log row share one outer commit.
func (ing *Ingestor) ProcessAlerts(ctx context.Context, features []weathergov.Feature) (*SyncResult, error) {
	start := time.Now()
	log := AlertSyncLog{TotalAlerts: len(features)}
	var zipTotals ZipcodeSummary

	if len(features) == 0 {
		ing.logger.Info("no alerts to process")
		return &SyncResult{Processed: false}, nil
	}

	ing.metrics.AlertsFetched.Add(float64(len(features)))
	ing.logger.Info("processing alert batch", "total", len(features))

	missingStates := map[string]struct{}{}

	err := ing.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cache, err := LoadReferenceCache(tx, ing.logger)
		if err != nil {
			return err
		}

		valid := ing.validate(features, cache, &log, missingStates)

		existingIDs, err := existingExternalIDs(tx)
		if err != nil {
			return err
		}

		for _, rec := range valid {
			var res recordResult
			if _, ok := existingIDs[rec.feature.ID]; ok {
				res = recordResult{status: recordSkippedExisting}
			} else {
				res = ing.ingestOne(tx, cache, rec)
			}

			switch res.status {
			case recordProcessed:
				log.ProcessedCount++
				ing.metrics.AlertsProcessed.Inc()
				zipTotals.Add(res.zips)
			case recordSkippedExisting:
				ing.logger.Debug("skipping existing alert", "external_id", rec.feature.ID)
				ing.metrics.AlertsSkipped.WithLabelValues("existing").Inc()
				log.IgnoredByMissingData++
			case recordErrored:
				log.ErrorCount++
				ing.metrics.AlertErrors.Inc()
				ing.logger.Warn("alert rolled back",
					"external_id", rec.feature.ID, "error", res.err)
			}
		}

		log.MissingStates = missingStatesList(missingStates)
		log.ProcessedSameCodes = zipTotals.ProcessedFIPSCodes
		log.SkippedSameCodes = zipTotals.SkippedFIPSCodes
		log.FoundZipcodes = zipTotals.FoundZipcodes
		log.CreatedZipcodeMappings = zipTotals.CreatedMappings
		log.UsedZipcodeMappings = zipTotals.ExistingMappings
		log.SyncTimestamp = time.Now().UTC()

		// One audit row per batch, committed together with the alerts.
		return tx.Create(&log).Error
	})
	if err != nil {
		ing.logger.Error("batch failed", "error", err)
		return nil, err
	}

	ing.metrics.BatchDuration.Observe(time.Since(start).Seconds())
	ing.logger.Info("batch complete",
		"total", log.TotalAlerts,
		"processed", log.ProcessedCount,
		"ignored_by_state", log.IgnoredByState,
		"ignored_by_missing_data", log.IgnoredByMissingData,
		"errors", log.ErrorCount,
		"zipcodes_found", log.FoundZipcodes,
		"mappings_created", log.CreatedZipcodeMappings,
		"mappings_reused", log.UsedZipcodeMappings,
	)

	result := &SyncResult{
		Processed:      log.ProcessedCount > 0,
		Summary:        log,
		ZipcodeSummary: zipTotals,
	}

	if result.Processed {
		grouped, err := GroupAlertsByCategory(ing.db.WithContext(ctx), CategoryRiskFilters{})
		if err != nil {
			// The batch is already committed; a failed report is not fatal.
			ing.logger.Warn("grouped report failed", "error", err)
		} else {
			result.Alerts = grouped
		}
	}

	return result, nil
}

// validate performs the quick first pass: structural checks and the
// known-state check against the reference cache. Rejections are counted but
// never abort the batch.
func (ing *Ingestor) validate(features []weathergov.Feature, cache *ReferenceCache, log *AlertSyncLog, missingStates map[string]struct{}) []validRecord {
	var valid []validRecord

	for _, f := range features {
		if f.ID == "" {
			log.IgnoredByMissingData++
			ing.metrics.AlertsSkipped.WithLabelValues("missing_data").Inc()
			continue
		}
		ugcCodes := f.Properties.Geocode.UGC
		if len(ugcCodes) == 0 {
			ing.logger.Debug("missing UGC codes", "external_id", f.ID)
			log.IgnoredByMissingData++
			ing.metrics.AlertsSkipped.WithLabelValues("missing_data").Inc()
			continue
		}

		stateCode := strings.ToUpper(firstStatePrefix(ugcCodes[0]))
		if stateCode == "" {
			log.IgnoredByMissingData++
			ing.metrics.AlertsSkipped.WithLabelValues("missing_data").Inc()
			continue
		}

		if !cache.HasState(stateCode) {
			missingStates[stateCode] = struct{}{}
			log.IgnoredByState++
			ing.metrics.AlertsSkipped.WithLabelValues("state").Inc()
			continue
		}

		title := f.Properties.Headline
		if title == "" {
			title = f.Properties.Event
		}
		if title == "" {
			ing.logger.Debug("missing title", "external_id", f.ID)
			log.IgnoredByMissingData++
			ing.metrics.AlertsSkipped.WithLabelValues("missing_data").Inc()
			continue
		}

		valid = append(valid, validRecord{
			feature:   f,
			title:     title,
			ugcCodes:  ugcCodes,
			stateCode: stateCode,
		})
	}

	return valid
}

// ingestOne wraps exactly one alert's attribution chain in a savepoint and
// reports the outcome. Any error inside rolls back only this alert's work.
func (ing *Ingestor) ingestOne(tx *gorm.DB, cache *ReferenceCache, rec validRecord) recordResult {
	var zips ZipcodeSummary

	err := tx.Transaction(func(sp *gorm.DB) error {
		summary, err := ing.ingestAlert(sp, cache, rec)
		if err != nil {
			return err
		}
		zips = summary
		return nil
	})
	if err != nil {
		return recordResult{status: recordErrored, err: err}
	}
	return recordResult{status: recordProcessed, zips: zips}
}

// ingestAlert creates the alert row, resolves every geocode to a region,
// attributes zipcodes per region, and materializes the affected-area tree.
func (ing *Ingestor) ingestAlert(tx *gorm.DB, cache *ReferenceCache, rec validRecord) (ZipcodeSummary, error) {
	var zipTotals ZipcodeSummary
	props := rec.feature.Properties

	state, _ := cache.State(rec.stateCode)
	stateID := state.ID

	alert := Alert{
		ExternalID:     rec.feature.ID,
		Title:          rec.title,
		Description:    props.Description,
		Status:         StatusNew,
		Severity:       MapSeverity(props.Severity),
		StateID:        &stateID,
		Source:         "weather.gov",
		EventType:      eventType(props.Event),
		EventTimestamp: eventTimestamp(props),
	}
	if err := tx.Create(&alert).Error; err != nil {
		return zipTotals, fmt.Errorf("create alert: %w", err)
	}

	// Resolve every geocode. Codes that are malformed or reference a state
	// without FIPS are skipped individually; the alert survives as long as
	// at least one region resolves.
	var regions []*common.ZoneCounty
	for _, code := range rec.ugcCodes {
		ugc, err := ParseUGC(code)
		if err != nil {
			ing.logger.Debug("invalid UGC code", "code", code, "external_id", alert.ExternalID)
			continue
		}

		region, err := cache.ResolveRegion(tx, ugc)
		if err != nil {
			ing.logger.Debug("region not resolvable", "code", code, "error", err)
			continue
		}
		regions = append(regions, region)
	}

	if len(regions) == 0 {
		// An alert with no geographic attribution has no reporting value.
		return zipTotals, fmt.Errorf("no resolvable regions for alert %s", alert.ExternalID)
	}

	// Zipcode attribution runs one region at a time: each region's composite
	// FIPS is specific to that region, so lookups cannot be batched across
	// the alert's regions.
	var areas []AlertAffectedArea
	totalZipcodes := 0

	for _, region := range regions {
		zipcodes, summary, err := ResolveZipcodes(tx, []*common.ZoneCounty{region}, []string{region.FIPS})
		if err != nil {
			return zipTotals, err
		}
		zipTotals.Add(summary)
		totalZipcodes += len(zipcodes)
		ing.metrics.ZipcodeMappings.WithLabelValues("created").Add(float64(summary.CreatedMappings))
		ing.metrics.ZipcodeMappings.WithLabelValues("reused").Add(float64(summary.ExistingMappings))

		for _, zip := range zipcodes {
			if ing.OnZipcodeAttributed != nil {
				if err := ing.OnZipcodeAttributed(tx, zip, region); err != nil {
					return zipTotals, fmt.Errorf("zipcode hook: %w", err)
				}
			}

			zipID := zip.ID
			regionID := region.ID
			areas = append(areas, AlertAffectedArea{
				AlertID:      alert.ID,
				ZipcodeID:    &zipID,
				ZoneCountyID: &regionID,
				RegionType:   AreaZipcode,
			})
		}
	}

	// Region-level fallback: no zipcode matched anywhere, so attribute at
	// zone/county granularity instead. Every surviving alert therefore has
	// at least one affected-area row.
	if totalZipcodes == 0 {
		for _, region := range regions {
			regionID := region.ID
			areas = append(areas, AlertAffectedArea{
				AlertID:      alert.ID,
				ZoneCountyID: &regionID,
				RegionType:   areaTypeFor(region.Type),
			})
		}
	}

	if err := tx.Create(&areas).Error; err != nil {
		return zipTotals, fmt.Errorf("create affected areas: %w", err)
	}

	return zipTotals, nil
}

func areaTypeFor(kind common.RegionType) AreaRegionType {
	if kind == common.RegionZone {
		return AreaZone
	}
	return AreaCounty
}

func eventType(event string) string {
	if event == "" {
		return "Unknown Event"
	}
	return event
}

// eventTimestamp prefers the sent time, then effective, then now. The feed
// uses RFC 3339 with offsets.
func eventTimestamp(props weathergov.Properties) time.Time {
	for _, raw := range []string{props.Sent, props.Effective} {
		if raw == "" {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return ts
		}
	}
	return time.Now().UTC()
}

func firstStatePrefix(ugc string) string {
	if len(ugc) < 2 {
		return ""
	}
	return ugc[:2]
}

func existingExternalIDs(tx *gorm.DB) (map[string]struct{}, error) {
	var ids []string
	if err := tx.Model(&Alert{}).Pluck("external_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load existing alert ids: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func missingStatesList(set map[string]struct{}) common.StringList {
	list := make(common.StringList, 0, len(set))
	for code := range set {
		list = append(list, code)
	}
	sort.Strings(list)
	return list
}
