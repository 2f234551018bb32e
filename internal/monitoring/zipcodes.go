package monitoring

import (
	"fmt"

	"github.com/PioneData/CAT-Backend/internal/common"
	"gorm.io/gorm"
)

// ZipcodeSummary accumulates attribution counters across one batch. The
// field names mirror the sync-log columns.
type ZipcodeSummary struct {
	ProcessedFIPSCodes int `json:"processed_region_fips_codes"`
	SkippedFIPSCodes   int `json:"skipped_region_fips_codes"`
	FoundZipcodes      int `json:"found_zipcodes"`
	CreatedMappings    int `json:"created_mappings"`
	ExistingMappings   int `json:"existing_mappings"`
}

// Add folds a per-region summary into the batch totals.
func (s *ZipcodeSummary) Add(other ZipcodeSummary) {
	s.ProcessedFIPSCodes += other.ProcessedFIPSCodes
	s.SkippedFIPSCodes += other.SkippedFIPSCodes
	s.FoundZipcodes += other.FoundZipcodes
	s.CreatedMappings += other.CreatedMappings
	s.ExistingMappings += other.ExistingMappings
}

// zipcodesByFIPS runs the single bulk lookup against the static dataset. The
// union of matching zips defines the candidate set for the regions at hand.
func zipcodesByFIPS(tx *gorm.DB, fipsCodes []string) ([]string, error) {
	if len(fipsCodes) == 0 {
		return nil, nil
	}

	var zips []string
	err := tx.Model(&common.ZipcodeDataset{}).
		Where("county_fips IN ?", fipsCodes).
		Distinct().
		Pluck("zip", &zips).Error
	if err != nil {
		return nil, fmt.Errorf("zipcode dataset lookup: %w", err)
	}
	return zips, nil
}

// ResolveZipcodes reconciles the dataset's candidate zips for a set of
// regions against already-persisted zipcode rows. Existing rows are reused
// as-is even when they hang off a different region — a zip spanning two
// counties is stored once and shared. Missing rows are bulk-created under
// the region being processed. Every (code, region) pair is deduplicated
// explicitly before the reuse-or-create decision.
func ResolveZipcodes(tx *gorm.DB, regions []*common.ZoneCounty, fipsCodes []string) ([]*common.Zipcode, ZipcodeSummary, error) {
	var summary ZipcodeSummary
	if len(fipsCodes) == 0 {
		return nil, summary, nil
	}
	summary.ProcessedFIPSCodes = len(fipsCodes)

	candidates, err := zipcodesByFIPS(tx, fipsCodes)
	if err != nil {
		return nil, summary, err
	}
	if len(candidates) == 0 {
		summary.SkippedFIPSCodes = len(fipsCodes)
		return nil, summary, nil
	}
	summary.FoundZipcodes = len(candidates)

	var existingRows []common.Zipcode
	if err := tx.Where("code IN ?", candidates).Find(&existingRows).Error; err != nil {
		return nil, summary, fmt.Errorf("load existing zipcodes: %w", err)
	}
	existing := make(map[string]*common.Zipcode, len(existingRows))
	for i := range existingRows {
		// First row wins when a code appears under several regions.
		if _, ok := existing[existingRows[i].Code]; !ok {
			existing[existingRows[i].Code] = &existingRows[i]
		}
	}

	type pair struct {
		code     string
		regionID uint
	}
	seen := make(map[pair]struct{})

	var result []*common.Zipcode
	var created []*common.Zipcode

	for _, code := range candidates {
		for _, region := range regions {
			p := pair{code: code, regionID: region.ID}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}

			if row, ok := existing[code]; ok {
				result = append(result, row)
				summary.ExistingMappings++
				continue
			}

			row := &common.Zipcode{
				Code:         code,
				Name:         "ZIP " + code,
				ZoneCountyID: region.ID,
				Status:       true,
			}
			created = append(created, row)
			summary.CreatedMappings++
		}
	}

	if len(created) > 0 {
		// Create (not bulk_save) so generated ids come back on the structs.
		if err := tx.Create(&created).Error; err != nil {
			return nil, summary, fmt.Errorf("insert zipcodes: %w", err)
		}
		result = append(result, created...)
	}

	return result, summary, nil
}
