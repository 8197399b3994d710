package spectral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVLineRoundTrip(t *testing.T) {
	rec := &Record{
		TimestampMS: 1700000000000,
		VOCRaw:      512.5,
		VOCVoltage:  1.538,
		LEDMode:     "WHITE",
		Raw:         []float64{1000, 1200, 1400, 1600, 2400, 1800, 1500, 1300, 900, 850, 800, 750},
		Reflect:     []float64{30, 35, 40, 45, 60, 50, 42, 38, 25, 24, 23, 22},
		Abs:         []float64{0.52, 0.46, 0.4, 0.35, 0.22, 0.3, 0.38, 0.42, 0.6, 0.62, 0.64, 0.66},
		CFUEstimate: 8500,
	}

	line := FormatCSVLine(rec)
	parsed, err := ParseCSVLine(line)
	require.NoError(t, err)

	assert.Equal(t, rec.TimestampMS, parsed.TimestampMS)
	assert.InDelta(t, rec.VOCRaw, parsed.VOCRaw, 0.1)
	assert.InDelta(t, rec.VOCVoltage, parsed.VOCVoltage, 0.001)
	assert.Equal(t, rec.LEDMode, parsed.LEDMode)
	assert.Equal(t, rec.Raw, parsed.Raw)
	for i := range rec.Reflect {
		assert.InDelta(t, rec.Reflect[i], parsed.Reflect[i], 0.01)
		assert.InDelta(t, rec.Abs[i], parsed.Abs[i], 0.001)
	}
	assert.Equal(t, rec.CFUEstimate, parsed.CFUEstimate)
}

func TestParseCSVLineRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"comment":        "# LACTEVA Sample Data",
		"missing marker": "1700000000000,512.5,1.538,WHITE",
		"short line":     "CSV,1700000000000,512.5,1.538,WHITE,1,2,3",
		"bad timestamp":  "CSV,not-a-number,512.5,1.538,WHITE" + fieldTail(),
		"bad channel":    "CSV,1700000000000,512.5,1.538,WHITE,x" + fieldTailN(36),
	}
	for name, line := range cases {
		_, err := ParseCSVLine(line)
		assert.Error(t, err, name)
	}
}

// fieldTail appends 37 zero fields (36 channels + CFU).
func fieldTail() string { return fieldTailN(37) }

func fieldTailN(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += ",0"
	}
	return s
}
