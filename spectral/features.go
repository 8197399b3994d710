// Package spectral derives quality metrics from AS7341 channel readings.
package spectral

import (
	"fmt"
	"math"
)

// NumChannels is the number of spectral bands captured per reading.
const NumChannels = 12

// Wavelengths lists the approximate center wavelength (nm) of each channel.
var Wavelengths = [NumChannels]float64{415, 445, 480, 515, 555, 590, 630, 680, 910, 940, 960, 980}

// Named channel indices. Channels 0-7 are visible, 8-11 near-infrared.
const (
	chUV      = 0 // 415 nm
	chBlue    = 1 // 445 nm
	chGreen   = 4 // 555 nm
	chAmber   = 5 // 590 nm
	chRed     = 6 // 630 nm
	chDeepRed = 7 // 680 nm
	chNIR910  = 8 // 910 nm

	visEnd = 8 // channels [0,visEnd) are visible
)

const epsilon = 1e-6

// Features is the derived metric block attached to a reading.
type Features struct {
	PeakWavelength     float64 `json:"peak_wavelength"`
	PeakIntensity      float64 `json:"peak_intensity"`
	TotalIntensity     float64 `json:"total_intensity"`
	IntensityStd       float64 `json:"intensity_std"`
	VisNIRDelta        float64 `json:"vis_nir_delta"`
	RedRatio           float64 `json:"red_ratio"`
	GreenRatio         float64 `json:"green_ratio"`
	BlueRatio          float64 `json:"blue_ratio"`
	TurbidityIndex     float64 `json:"turbidity_index"`
	AvgReflectance     float64 `json:"avg_reflectance"`
	ReflectanceRange   float64 `json:"reflectance_range"`
	A680A550Ratio      float64 `json:"a680_a550_ratio"`
	A630Slope          float64 `json:"a630_slope"`
	UVBlueRatio        float64 `json:"uv_blue_ratio"`
	NIRAbsorptionIndex float64 `json:"nir_absorption_index"`
	KValueSpoilage     float64 `json:"k_value_spoilage"`
}

// ComputeFeatures derives the metric block from the three channel arrays.
// All three slices must have exactly NumChannels entries.
func ComputeFeatures(raw, refl, absorb []float64) (*Features, error) {
	if len(raw) != NumChannels || len(refl) != NumChannels || len(absorb) != NumChannels {
		return nil, fmt.Errorf("spectral: expected %d channels, got raw=%d reflect=%d abs=%d",
			NumChannels, len(raw), len(refl), len(absorb))
	}

	f := &Features{}

	peakIdx := 0
	var sum float64
	for i, v := range raw {
		sum += v
		if v > raw[peakIdx] {
			peakIdx = i
		}
	}
	f.PeakWavelength = Wavelengths[peakIdx]
	f.PeakIntensity = raw[peakIdx]
	f.TotalIntensity = sum

	mean := sum / NumChannels
	var variance float64
	for _, v := range raw {
		d := v - mean
		variance += d * d
	}
	f.IntensityStd = math.Sqrt(variance / NumChannels)

	var visSum, nirSum float64
	for i := 0; i < visEnd; i++ {
		visSum += raw[i]
	}
	for i := visEnd; i < NumChannels; i++ {
		nirSum += raw[i]
	}
	f.VisNIRDelta = visSum/visEnd - nirSum/(NumChannels-visEnd)

	rgb := raw[chRed] + raw[chGreen] + raw[chBlue]
	if rgb > 0 {
		f.RedRatio = raw[chRed] / rgb
		f.GreenRatio = raw[chGreen] / rgb
		f.BlueRatio = raw[chBlue] / rgb
	}

	var visAbs, nirAbs float64
	for i := 0; i < visEnd; i++ {
		visAbs += absorb[i]
	}
	for i := visEnd; i < NumChannels; i++ {
		nirAbs += absorb[i]
	}
	f.TurbidityIndex = (nirAbs / (NumChannels - visEnd)) / (visAbs/visEnd + epsilon)

	minRefl, maxRefl := refl[0], refl[0]
	var reflSum float64
	for _, v := range refl {
		reflSum += v
		if v < minRefl {
			minRefl = v
		}
		if v > maxRefl {
			maxRefl = v
		}
	}
	f.AvgReflectance = reflSum / NumChannels
	f.ReflectanceRange = maxRefl - minRefl

	f.A680A550Ratio = absorb[chDeepRed] / (absorb[chGreen] + epsilon)
	f.A630Slope = (absorb[chDeepRed] - absorb[chAmber]) / (Wavelengths[chDeepRed] - Wavelengths[chAmber])
	f.UVBlueRatio = raw[chUV] / (raw[chBlue] + epsilon)
	f.NIRAbsorptionIndex = (raw[chNIR910] - raw[chGreen]) / (raw[chNIR910] + raw[chGreen] + epsilon)
	f.KValueSpoilage = f.A680A550Ratio * f.TurbidityIndex

	return f, nil
}

// Vector flattens the features, in fixed order, into the input expected by the
// inference service, appending the VOC readings and log-scaled CFU estimate.
// The service pads or truncates to its own model width.
func (f *Features) Vector(vocVoltage, vocRaw, cfuEstimate float64) []float64 {
	return []float64{
		f.PeakWavelength, f.PeakIntensity, f.TotalIntensity, f.IntensityStd,
		f.VisNIRDelta, f.RedRatio, f.GreenRatio, f.BlueRatio,
		f.TurbidityIndex, f.AvgReflectance, f.ReflectanceRange, f.A680A550Ratio,
		f.A630Slope, f.UVBlueRatio, f.NIRAbsorptionIndex, f.KValueSpoilage,
		vocVoltage, vocRaw, math.Log10(cfuEstimate + 1),
	}
}

const (
	CategoryFresh    = "fresh"
	CategoryModerate = "moderate"
	CategorySpoiled  = "spoiled"
)

// CategoryForScore buckets a freshness score into the dashboard categories.
// The bands match the score ranges the inference service emits.
func CategoryForScore(score float64) string {
	switch {
	case score >= 0.7:
		return CategoryFresh
	case score >= 0.4:
		return CategoryModerate
	default:
		return CategorySpoiled
	}
}
