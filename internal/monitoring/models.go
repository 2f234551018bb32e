package monitoring

import (
	"time"

	"github.com/PioneData/CAT-Backend/internal/common"
)

type AlertStatus string

const (
	StatusNew      AlertStatus = "NEW"
	StatusRead     AlertStatus = "READ"
	StatusArchived AlertStatus = "ARCHIVED"
)

type AlertSeverity string

const (
	SeverityLow    AlertSeverity = "LOW"
	SeverityMedium AlertSeverity = "MEDIUM"
	SeverityHigh   AlertSeverity = "HIGH"
)

// AreaRegionType tags an affected-area row with the granularity it was
// attributed at. ZIPCODE rows also carry the owning region for lineage.
type AreaRegionType string

const (
	AreaZone    AreaRegionType = "ZONE"
	AreaCounty  AreaRegionType = "COUNTY"
	AreaZipcode AreaRegionType = "ZIPCODE"
)

// Alert is one feed record after ingestion. ExternalID is the natural
// idempotency key; the pipeline never updates a row after creation.
type Alert struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	ExternalID     string        `json:"external_id" gorm:"uniqueIndex;not null"`
	Title          string        `json:"title" gorm:"index"`
	Description    string        `json:"description"`
	Status         AlertStatus   `json:"status" gorm:"size:10;default:NEW"`
	Severity       AlertSeverity `json:"severity" gorm:"size:10;not null"`
	StateID        *uint         `json:"state_id"`
	Source         string        `json:"source"`
	EventType      string        `json:"event_type" gorm:"index"`
	EventTimestamp time.Time     `json:"event_timestamp"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	AffectedAreas []AlertAffectedArea `json:"affected_areas,omitempty" gorm:"foreignKey:AlertID;constraint:OnDelete:CASCADE"`
}

type AlertAffectedArea struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	AlertID      uint           `json:"alert_id" gorm:"index;not null"`
	ZoneCountyID *uint          `json:"zone_county_id"`
	ZipcodeID    *uint          `json:"zipcode_id"`
	RegionType   AreaRegionType `json:"region_type" gorm:"size:10;not null"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AlertSyncLog is the append-only audit row written once per ingestion batch.
type AlertSyncLog struct {
	ID                     uint              `json:"id" gorm:"primaryKey"`
	TotalAlerts            int               `json:"total_alerts" gorm:"not null"`
	ProcessedCount         int               `json:"processed_count" gorm:"not null;default:0"`
	IgnoredByState         int               `json:"ignored_by_state" gorm:"not null;default:0"`
	IgnoredByMissingData   int               `json:"ignored_by_missing_data" gorm:"not null;default:0"`
	ErrorCount             int               `json:"error_count" gorm:"not null;default:0"`
	MissingStates          common.StringList `json:"missing_states"`
	ProcessedSameCodes     int               `json:"processed_same_codes" gorm:"not null;default:0"`
	SkippedSameCodes       int               `json:"skipped_same_codes" gorm:"not null;default:0"`
	FoundZipcodes          int               `json:"found_zipcodes" gorm:"not null;default:0"`
	CreatedZipcodeMappings int               `json:"created_zipcode_mappings" gorm:"not null;default:0"`
	UsedZipcodeMappings    int               `json:"used_zipcode_mappings" gorm:"not null;default:0"`
	SyncTimestamp          time.Time         `json:"sync_timestamp"`
	CreatedAt              time.Time         `json:"created_at"`
}
