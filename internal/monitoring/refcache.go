package monitoring

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/PioneData/CAT-Backend/internal/common"
	"gorm.io/gorm"
)

// ErrNoStates aborts a batch outright: without reference states nothing can
// be attributed and a summary row would be meaningless.
var ErrNoStates = errors.New("no states found in database")

// ReferenceCache is a per-batch snapshot of the geographic reference data.
// States are read-only; regions grow as the batch creates them, so later
// alerts in the same run see regions created by earlier ones.
type ReferenceCache struct {
	mu      sync.Mutex
	states  map[string]*common.State
	regions map[string]*common.ZoneCounty
}

// LoadReferenceCache pulls all states and zone/county rows into memory.
// States missing a FIPS code are kept so their alerts pass the known-state
// check, but ResolveRegion rejects their geocodes; they are logged here.
func LoadReferenceCache(tx *gorm.DB, logger *slog.Logger) (*ReferenceCache, error) {
	var states []common.State
	if err := tx.Find(&states).Error; err != nil {
		return nil, fmt.Errorf("load states: %w", err)
	}
	if len(states) == 0 {
		return nil, ErrNoStates
	}

	cache := &ReferenceCache{
		states:  make(map[string]*common.State, len(states)),
		regions: make(map[string]*common.ZoneCounty),
	}

	var withoutFIPS []string
	for i := range states {
		cache.states[states[i].Code] = &states[i]
		if states[i].FIPS == "" {
			withoutFIPS = append(withoutFIPS, states[i].Code)
		}
	}
	if len(withoutFIPS) > 0 {
		logger.Warn("states missing FIPS codes, zipcode attribution unavailable for them",
			"states", withoutFIPS)
	}

	var regions []common.ZoneCounty
	if err := tx.Find(&regions).Error; err != nil {
		return nil, fmt.Errorf("load zones/counties: %w", err)
	}
	for i := range regions {
		cache.regions[regions[i].Code] = &regions[i]
	}

	return cache, nil
}

// State returns the cached state for a two-letter code.
func (c *ReferenceCache) State(code string) (*common.State, bool) {
	s, ok := c.states[code]
	return s, ok
}

// HasState reports whether the code is known, used by the validation pass.
func (c *ReferenceCache) HasState(code string) bool {
	_, ok := c.states[code]
	return ok
}

// ResolveRegion maps a parsed UGC to its zone/county row, creating the row on
// first sight. The composite FIPS (state FIPS + region number) is computed
// once here and never recomputed. Existing regions are reused as-is; that is
// the dedup contract for re-runs and for repeated codes within one batch.
func (c *ReferenceCache) ResolveRegion(tx *gorm.DB, ugc UGC) (*common.ZoneCounty, error) {
	state, ok := c.states[ugc.State]
	if !ok {
		return nil, fmt.Errorf("unknown state %q", ugc.State)
	}
	if state.FIPS == "" {
		return nil, fmt.Errorf("state %q has no FIPS code", ugc.State)
	}

	code := ugc.State + kindFlag(ugc.Kind) + ugc.Number

	c.mu.Lock()
	defer c.mu.Unlock()

	if region, ok := c.regions[code]; ok {
		return region, nil
	}

	region := &common.ZoneCounty{
		Code:    code,
		Name:    fmt.Sprintf("%s %s %s", ugc.State, ugc.Kind, ugc.Number),
		FIPS:    state.FIPS + ugc.Number,
		Type:    ugc.Kind,
		StateID: state.ID,
		Status:  true,
	}
	if err := tx.Create(region).Error; err != nil {
		return nil, fmt.Errorf("create zone/county %s: %w", code, err)
	}

	c.regions[code] = region
	return region, nil
}

func kindFlag(kind common.RegionType) string {
	if kind == common.RegionCounty {
		return "C"
	}
	return "Z"
}
