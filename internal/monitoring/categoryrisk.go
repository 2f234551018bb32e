package monitoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/PioneData/CAT-Backend/internal/common"
	"gorm.io/gorm"
)

// CategoryRiskFilters narrow the aggregation. Zero values (or "all") mean no
// filtering on that dimension.
type CategoryRiskFilters struct {
	State    string
	Severity AlertSeverity
	Category string
}

// CategoryRisk is one entry of the aggregation report: a category, its
// active-alert count, and the nested alert→state→region→zipcode→policyholder
// tree consumed by the reporting surface.
type CategoryRisk struct {
	CatID          uint          `json:"cat_id"`
	CatTitle       string        `json:"cat_title"`
	CatDescription string        `json:"cat_description"`
	ActiveCount    int           `json:"activeCount"`
	CatEvents      []AlertDetail `json:"cat_events"`
}

type AlertDetail struct {
	ID               uint         `json:"id"`
	EventID          string       `json:"event_id"`
	EventType        string       `json:"event_type"`
	EventTimestamp   string       `json:"event_timestamp"`
	EventTitle       string       `json:"event_title"`
	EventDescription string       `json:"event_description"`
	Severity         string       `json:"severity"`
	Status           string       `json:"status"`
	Source           string       `json:"source"`
	AffectedAreas    []StateAreas `json:"affected_areas"`
}

type StateAreas struct {
	State      string       `json:"state"`
	CountyZone []ZoneDetail `json:"county_zone"`
}

type ZoneDetail struct {
	Type              string            `json:"type"`
	Name              string            `json:"name"`
	Code              string            `json:"code"`
	Zipcodes          []string          `json:"zipcodes"`
	PolicyholdersInfo []ZipPolicyholder `json:"policyholders_info"`
}

type ZipPolicyholder struct {
	Zipcode           string               `json:"zipcode"`
	PolicyholderCount int                  `json:"policyholder_count"`
	Policyholders     []PolicyholderDetail `json:"policyholders"`
}

type PolicyholderDetail struct {
	ID       uint    `json:"id"`
	PolicyID string  `json:"policy_id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	PhoneNo  string  `json:"phoneno"`
	Address  string  `json:"address"`
	State    string  `json:"state"`
	County   string  `json:"county"`
	Claims   int     `json:"claims"`
	Premium  float64 `json:"premium"`
}

// GroupAlertsByCategory builds the category-risk report over already-ingested
// alerts. It is a pure projection: nothing is mutated. A category with zero
// matched alerts still appears, with an empty tree.
func GroupAlertsByCategory(db *gorm.DB, filters CategoryRiskFilters) ([]CategoryRisk, error) {
	catQuery := db.Where("status = ?", true)
	if filters.Category != "" && filters.Category != "all" {
		catQuery = catQuery.Where("name = ?", filters.Category)
	}

	var categories []common.Category
	if err := catQuery.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	results := make([]CategoryRisk, 0, len(categories))
	for _, cat := range categories {
		eventNames, err := eventNamesForCategory(db, cat.ID)
		if err != nil {
			return nil, err
		}

		matched, err := matchAlerts(db, eventNames, filters)
		if err != nil {
			return nil, err
		}

		entry := CategoryRisk{
			CatID:          cat.ID,
			CatTitle:       cat.Name,
			CatDescription: cat.Description,
			ActiveCount:    len(matched),
			CatEvents:      make([]AlertDetail, 0, len(matched)),
		}

		for _, alert := range matched {
			detail, err := alertDetail(db, alert)
			if err != nil {
				return nil, err
			}
			entry.CatEvents = append(entry.CatEvents, detail)
		}

		results = append(results, entry)
	}

	return results, nil
}

func eventNamesForCategory(db *gorm.DB, categoryID uint) ([]string, error) {
	var names []string
	err := db.Model(&common.Event{}).
		Joins("JOIN category_event_mappings ON category_event_mappings.event_id = events.id").
		Where("category_event_mappings.category_id = ?", categoryID).
		Pluck("events.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("load event names: %w", err)
	}
	return names, nil
}

// matchAlerts collects alerts whose event_type contains any of the mapped
// event names, case-insensitively. Substring matching is deliberate: the
// feed emits "Hurricane Warning", the mapping table holds "Hurricane".
func matchAlerts(db *gorm.DB, eventNames []string, filters CategoryRiskFilters) ([]Alert, error) {
	var matched []Alert
	seen := map[uint]struct{}{}

	for _, name := range eventNames {
		if name == "" {
			continue
		}

		q := db.Where("LOWER(event_type) LIKE ?", "%"+strings.ToLower(name)+"%")
		if filters.State != "" && filters.State != "all" {
			q = q.Joins("JOIN states ON states.id = alerts.state_id").
				Where("states.code = ?", filters.State)
		}
		if filters.Severity != "" && filters.Severity != "all" {
			q = q.Where("severity = ?", filters.Severity)
		}

		var alerts []Alert
		if err := q.Find(&alerts).Error; err != nil {
			return nil, fmt.Errorf("match alerts: %w", err)
		}
		for _, a := range alerts {
			if _, ok := seen[a.ID]; ok {
				continue
			}
			seen[a.ID] = struct{}{}
			matched = append(matched, a)
		}
	}

	return matched, nil
}

// alertDetail walks one alert's affected-area rows into the nested
// state→region→zipcode→policyholder structure. Regions are deduplicated so a
// region referenced through several zipcodes is reported once, and only
// zipcodes with at least one active policyholder are listed.
func alertDetail(db *gorm.DB, alert Alert) (AlertDetail, error) {
	detail := AlertDetail{
		ID:               alert.ID,
		EventID:          alert.ExternalID,
		EventType:        alert.EventType,
		EventTitle:       alert.Title,
		EventDescription: alert.Description,
		Severity:         string(alert.Severity),
		Status:           string(alert.Status),
		Source:           alert.Source,
		AffectedAreas:    []StateAreas{},
	}
	if !alert.EventTimestamp.IsZero() {
		detail.EventTimestamp = alert.EventTimestamp.Format(time.RFC3339)
	}

	stateCode := ""
	if alert.StateID != nil {
		var state common.State
		if err := db.First(&state, *alert.StateID).Error; err == nil {
			stateCode = state.Code
		}
	}

	var areas []AlertAffectedArea
	if err := db.Where("alert_id = ?", alert.ID).Find(&areas).Error; err != nil {
		return detail, fmt.Errorf("load affected areas: %w", err)
	}

	processed := map[uint]struct{}{}
	var zones []ZoneDetail

	for _, area := range areas {
		if area.ZoneCountyID == nil {
			continue
		}
		regionID := *area.ZoneCountyID
		if _, ok := processed[regionID]; ok {
			continue
		}
		processed[regionID] = struct{}{}

		var region common.ZoneCounty
		if err := db.First(&region, regionID).Error; err != nil {
			continue
		}

		zone, ok, err := zoneDetail(db, alert.ID, region)
		if err != nil {
			return detail, err
		}
		if ok {
			zones = append(zones, zone)
		}
	}

	if len(zones) > 0 {
		detail.AffectedAreas = append(detail.AffectedAreas, StateAreas{
			State:      stateCode,
			CountyZone: zones,
		})
	}

	return detail, nil
}

func zoneDetail(db *gorm.DB, alertID uint, region common.ZoneCounty) (ZoneDetail, bool, error) {
	var zipAreas []AlertAffectedArea
	err := db.Where("alert_id = ? AND zone_county_id = ? AND region_type = ?",
		alertID, region.ID, AreaZipcode).Find(&zipAreas).Error
	if err != nil {
		return ZoneDetail{}, false, fmt.Errorf("load zipcode areas: %w", err)
	}

	zone := ZoneDetail{
		Type:     string(region.Type),
		Name:     region.Name,
		Code:     region.Code,
		Zipcodes: []string{},
	}

	for _, area := range zipAreas {
		if area.ZipcodeID == nil {
			continue
		}

		var zip common.Zipcode
		if err := db.First(&zip, *area.ZipcodeID).Error; err != nil {
			continue
		}

		holders, err := activePolicyholders(db, zip.ID)
		if err != nil {
			return ZoneDetail{}, false, err
		}
		if len(holders) == 0 {
			continue
		}

		zone.Zipcodes = append(zone.Zipcodes, zip.Code)
		zone.PolicyholdersInfo = append(zone.PolicyholdersInfo, ZipPolicyholder{
			Zipcode:           zip.Code,
			PolicyholderCount: len(holders),
			Policyholders:     holders,
		})
	}

	return zone, len(zone.Zipcodes) > 0, nil
}

func activePolicyholders(db *gorm.DB, zipcodeID uint) ([]PolicyholderDetail, error) {
	var rows []common.Policyholder
	err := db.Where("zipcode_id = ? AND status = ?", zipcodeID, true).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load policyholders: %w", err)
	}

	details := make([]PolicyholderDetail, 0, len(rows))
	for _, p := range rows {
		d := PolicyholderDetail{
			ID:       p.ID,
			PolicyID: p.PolicyID,
			Name:     p.Name,
			Email:    p.Email,
			PhoneNo:  p.PhoneNo,
			Address:  p.Address,
			Claims:   p.Claims,
			Premium:  p.Premium,
		}
		if p.StateID != nil {
			var state common.State
			if err := db.First(&state, *p.StateID).Error; err == nil {
				d.State = state.Name
			}
		}
		if p.CountyID != nil {
			var region common.ZoneCounty
			if err := db.First(&region, *p.CountyID).Error; err == nil {
				d.County = region.Code
			}
		}
		details = append(details, d)
	}

	return details, nil
}
