package spectral

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one device CSV line. Format:
// CSV,timestamp_ms,VOC_raw,VOC_voltage,LED_Mode,raw_ch0-11,reflect_ch0-11,abs_ch0-11,CFU_est
type Record struct {
	TimestampMS int64
	VOCRaw      float64
	VOCVoltage  float64
	LEDMode     string
	Raw         []float64
	Reflect     []float64
	Abs         []float64
	CFUEstimate float64
}

// fields after the CSV marker: timestamp + 2 VOC + LED mode + 36 channels + CFU
const lineFields = 4 + 3*NumChannels + 1

// ParseCSVLine parses a single device line. Comment lines (starting with '#')
// and lines without the CSV marker are rejected with an error.
func ParseCSVLine(line string) (*Record, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, fmt.Errorf("spectral: not a data line")
	}

	parts := strings.Split(line, ",")
	if parts[0] != "CSV" {
		return nil, fmt.Errorf("spectral: missing CSV marker")
	}
	parts = parts[1:]
	if len(parts) != lineFields {
		return nil, fmt.Errorf("spectral: expected %d fields, got %d", lineFields, len(parts))
	}

	rec := &Record{LEDMode: parts[3]}
	var err error
	if rec.TimestampMS, err = strconv.ParseInt(parts[0], 10, 64); err != nil {
		return nil, fmt.Errorf("spectral: bad timestamp %q: %w", parts[0], err)
	}
	if rec.VOCRaw, err = strconv.ParseFloat(parts[1], 64); err != nil {
		return nil, fmt.Errorf("spectral: bad VOC_raw %q: %w", parts[1], err)
	}
	if rec.VOCVoltage, err = strconv.ParseFloat(parts[2], 64); err != nil {
		return nil, fmt.Errorf("spectral: bad VOC_voltage %q: %w", parts[2], err)
	}

	parseBlock := func(offset int) ([]float64, error) {
		out := make([]float64, NumChannels)
		for i := 0; i < NumChannels; i++ {
			v, err := strconv.ParseFloat(parts[offset+i], 64)
			if err != nil {
				return nil, fmt.Errorf("spectral: bad channel value %q: %w", parts[offset+i], err)
			}
			out[i] = v
		}
		return out, nil
	}

	if rec.Raw, err = parseBlock(4); err != nil {
		return nil, err
	}
	if rec.Reflect, err = parseBlock(4 + NumChannels); err != nil {
		return nil, err
	}
	if rec.Abs, err = parseBlock(4 + 2*NumChannels); err != nil {
		return nil, err
	}
	if rec.CFUEstimate, err = strconv.ParseFloat(parts[4+3*NumChannels], 64); err != nil {
		return nil, fmt.Errorf("spectral: bad CFU estimate %q: %w", parts[4+3*NumChannels], err)
	}

	return rec, nil
}

// FormatCSVLine renders a record back into the device line format.
func FormatCSVLine(rec *Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CSV,%d,%.1f,%.3f,%s", rec.TimestampMS, rec.VOCRaw, rec.VOCVoltage, rec.LEDMode)
	for _, v := range rec.Raw {
		fmt.Fprintf(&b, ",%d", int64(v))
	}
	for _, v := range rec.Reflect {
		fmt.Fprintf(&b, ",%.2f", v)
	}
	for _, v := range rec.Abs {
		fmt.Fprintf(&b, ",%.3f", v)
	}
	fmt.Fprintf(&b, ",%d", int64(rec.CFUEstimate))
	return b.String()
}
