package monitoring

import (
	"testing"

	"github.com/PioneData/CAT-Backend/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUGC(t *testing.T) {
	tests := []struct {
		code string
		want UGC
	}{
		{"FLC086", UGC{State: "FL", Kind: common.RegionCounty, Number: "086"}},
		{"TXZ211", UGC{State: "TX", Kind: common.RegionZone, Number: "211"}},
		{"flc086", UGC{State: "FL", Kind: common.RegionCounty, Number: "086"}},
		{"CAZ043", UGC{State: "CA", Kind: common.RegionZone, Number: "043"}},
		{"PKZ5001", UGC{State: "PK", Kind: common.RegionZone, Number: "5001"}},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ParseUGC(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUGCMalformed(t *testing.T) {
	codes := []string{
		"",
		"FL",
		"FLC08",
		"FLX086",
		"F1C086",
		"FLC08A",
		"12C086",
	}

	for _, code := range codes {
		t.Run("bad_"+code, func(t *testing.T) {
			_, err := ParseUGC(code)
			assert.ErrorIs(t, err, ErrMalformedUGC)
		})
	}
}

func TestParseUGCKeepsLeadingZeros(t *testing.T) {
	got, err := ParseUGC("FLC006")
	require.NoError(t, err)
	assert.Equal(t, "006", got.Number)
}

func TestMapSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want AlertSeverity
	}{
		{"Extreme", SeverityHigh},
		{"SEVERE", SeverityHigh},
		{"severe", SeverityHigh},
		{"Moderate", SeverityMedium},
		{"Minor", SeverityLow},
		{"Unknown", SeverityLow},
		{"", SeverityLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapSeverity(tt.in), "severity %q", tt.in)
	}
}
