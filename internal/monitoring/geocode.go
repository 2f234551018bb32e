package monitoring

import (
	"errors"
	"strings"

	"github.com/PioneData/CAT-Backend/internal/common"
)

// ErrMalformedUGC reports a geocode that does not follow the SS[CZ]nnn layout.
var ErrMalformedUGC = errors.New("malformed UGC code")

// UGC is a parsed Universal Geographic Code: a two-letter state, a zone or
// county flag, and the numeric region suffix. Number keeps its leading zeros
// because it is concatenated with the state FIPS to form the composite key.
type UGC struct {
	State  string
	Kind   common.RegionType
	Number string
}

// ParseUGC splits a raw UGC code ("FLC086", "TXZ211") into its parts. It
// never panics on bad input; anything that does not match the fixed layout
// comes back as ErrMalformedUGC.
func ParseUGC(code string) (UGC, error) {
	if len(code) < 6 {
		return UGC{}, ErrMalformedUGC
	}

	state := strings.ToUpper(code[:2])
	flag := code[2]
	number := code[3:]

	for _, r := range state {
		if r < 'A' || r > 'Z' {
			return UGC{}, ErrMalformedUGC
		}
	}

	var kind common.RegionType
	switch flag {
	case 'C', 'c':
		kind = common.RegionCounty
	case 'Z', 'z':
		kind = common.RegionZone
	default:
		return UGC{}, ErrMalformedUGC
	}

	for _, r := range number {
		if r < '0' || r > '9' {
			return UGC{}, ErrMalformedUGC
		}
	}

	return UGC{State: state, Kind: kind, Number: number}, nil
}

// MapSeverity folds the feed's free-text severity onto the three-level scale
// used for reporting. Unknown or missing values rank LOW.
func MapSeverity(capSeverity string) AlertSeverity {
	switch strings.ToUpper(capSeverity) {
	case "EXTREME", "SEVERE":
		return SeverityHigh
	case "MODERATE":
		return SeverityMedium
	default:
		return SeverityLow
	}
}
