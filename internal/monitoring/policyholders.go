package monitoring

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/PioneData/CAT-Backend/internal/common"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Canned contact pool for demo policyholders. Real books are loaded through
// the policyholder CRUD surface; this hook only exists so fresh environments
// have something for the category-risk report to find.
var sampleContacts = []struct {
	Email   string
	PhoneNo string
}{
	{"mohan@pionedata.com", "8940026533"},
	{"mouli@pionedata.com", "9003274650"},
	{"roshini@pionedata.com", "9363793428"},
	{"sarala@pionedata.com", "9345012271"},
	{"deepak@pionedata.com", "6379453546"},
}

var sampleAddresses = []string{
	"1600 Amphitheatre Parkway, California, 94043, Santa Clara",
	"350 Fifth Avenue, New York, 10118, New York",
}

// SamplePolicyholderHook returns a ZipcodeHook that seeds 1-2 synthetic
// policyholders for every newly attributed zipcode.
func SamplePolicyholderHook(rng *rand.Rand) ZipcodeHook {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	return func(tx *gorm.DB, zipcode *common.Zipcode, region *common.ZoneCounty) error {
		count := 1 + rng.Intn(2)
		for i := 0; i < count; i++ {
			contact := sampleContacts[rng.Intn(len(sampleContacts))]
			stateID := region.StateID
			regionID := region.ID

			holder := common.Policyholder{
				PolicyID:  samplePolicyID(),
				Name:      fmt.Sprintf("Test Policy %c%d", 'A'+rng.Intn(26), 1000+rng.Intn(9000)),
				ZipcodeID: zipcode.ID,
				Claims:    rng.Intn(6),
				Premium:   500 + rng.Float64()*4500,
				StateID:   &stateID,
				CountyID:  &regionID,
				Address:   sampleAddresses[rng.Intn(len(sampleAddresses))],
				Email:     contact.Email,
				PhoneNo:   contact.PhoneNo,
				Status:    true,
			}
			if err := tx.Create(&holder).Error; err != nil {
				return fmt.Errorf("create sample policyholder: %w", err)
			}
		}
		return nil
	}
}

func samplePolicyID() string {
	return "POL-" + strings.ToUpper(uuid.NewString()[:8])
}
