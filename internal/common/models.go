package common

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// RegionType discriminates the two administrative subdivisions the alert
// feed attributes to: forecast zones and counties.
type RegionType string

const (
	RegionZone   RegionType = "ZONE"
	RegionCounty RegionType = "COUNTY"
)

type State struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"size:10;uniqueIndex;not null"`
	FIPS      string    `json:"fips" gorm:"size:10"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Status    bool      `json:"status" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ZoneCounty is a NWS forecast zone or a county, created on demand when an
// incoming geocode references a region we have not seen before. FIPS is the
// composite key (state FIPS + region number) used against zipcode_dataset.
type ZoneCounty struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Code      string     `json:"code" gorm:"size:10;uniqueIndex;not null"`
	Name      string     `json:"name" gorm:"size:100;not null"`
	FIPS      string     `json:"fips" gorm:"size:10;not null"`
	Type      RegionType `json:"type" gorm:"size:10;not null"`
	StateID   uint       `json:"state_id" gorm:"not null"`
	Status    bool       `json:"status" gorm:"default:true"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (ZoneCounty) TableName() string { return "zones_counties" }

// Zipcode codes are deliberately not unique: a zip that spans two counties is
// stored once per owning region, and the ingestion pipeline reuses whichever
// row it finds first.
type Zipcode struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Code         string    `json:"code" gorm:"size:10;index;not null"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	ZoneCountyID uint      `json:"zone_county_id" gorm:"not null"`
	Status       bool      `json:"status" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ZipcodeDataset is the static zip reference table keyed by composite county
// FIPS. Loaded by cmd/import-zipcodes, read-only afterwards.
type ZipcodeDataset struct {
	Zip        string  `json:"zip" gorm:"primaryKey;size:10"`
	City       string  `json:"city"`
	StateID    string  `json:"state_id" gorm:"size:10;index"`
	StateName  string  `json:"state_name" gorm:"index"`
	CountyFIPS string  `json:"county_fips" gorm:"column:county_fips;size:10;index"`
	CountyName string  `json:"county_name" gorm:"index"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Population float64 `json:"population"`
	Density    float64 `json:"density"`
	Timezone   string  `json:"timezone"`
}

func (ZipcodeDataset) TableName() string { return "zipcode_dataset" }

type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Status      bool      `json:"status" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Event struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	Status      bool      `json:"status" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CategoryEventMapping struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CategoryID uint      `json:"category_id" gorm:"index:uniq_cat_event,unique;not null"`
	EventID    uint      `json:"event_id" gorm:"index:uniq_cat_event,unique;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

type Policyholder struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PolicyID  string    `json:"policy_id" gorm:"size:50;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	ZipcodeID uint      `json:"zipcode_id" gorm:"not null"`
	Claims    int       `json:"claims" gorm:"default:0"`
	Premium   float64   `json:"premium" gorm:"default:0"`
	StateID   *uint     `json:"state_id"`
	CountyID  *uint     `json:"county_id"`
	Address   string    `json:"address" gorm:"size:255"`
	Email     string    `json:"email" gorm:"size:100"`
	PhoneNo   string    `json:"phoneno" gorm:"size:20"`
	Status    bool      `json:"status" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"size:20;default:user"`
	CreatedAt    time.Time `json:"created_at"`
}

// StringList stores a list of strings as a JSON text column, matching the
// sync-log schema and staying portable across Postgres and the sqlite test
// driver.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]string)(l))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(l))
	default:
		return errors.New("unsupported source type for StringList")
	}
}

// GormDataType keeps AutoMigrate happy on both dialects.
func (StringList) GormDataType() string { return "text" }
