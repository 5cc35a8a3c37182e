package validation

import (
	"math"

	"github.com/photoqc/photoqc-go/pkg/models"
)

// QualityThresholds defines configurable limits for the QC verdicts.
type QualityThresholds struct {
	// Sharpness: Laplacian variance tiers. Below Soft the image is out
	// of focus; between Soft and Acceptable it is soft but usable.
	SoftLaplacianVariance       float64
	AcceptableLaplacianVariance float64
	SharpLaplacianVariance      float64

	// Exposure
	MinBrightness float64 // gray mean, 0-255
	MaxBrightness float64
	MaxLuminance  float64 // overexposure, 0-1

	// Color
	MaxSaturation       float64 // oversaturation, 0-1
	MaxChannelImbalance float64

	// Dynamic range
	MinIntensityRange  int
	MinLuminanceStdDev float64

	// Noise
	MaxNoiseVariance float64
}

// DefaultQualityThresholds mirrors the tiers the analysis scripts have
// always used (Laplacian 50 / 100 / 250).
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		SoftLaplacianVariance:       50.0,
		AcceptableLaplacianVariance: 100.0,
		SharpLaplacianVariance:      250.0,
		MinBrightness:               80.0,
		MaxBrightness:               220.0,
		MaxLuminance:                0.95,
		MaxSaturation:               0.9,
		MaxChannelImbalance:         0.15,
		MinIntensityRange:           64,
		MinLuminanceStdDev:          20.0,
		MaxNoiseVariance:            2000.0,
	}
}

// QualityIssue represents one failed or borderline check.
type QualityIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error", "warning", "info"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// QualityValidator turns raw metrics into verdicts and issues.
type QualityValidator struct {
	thresholds QualityThresholds
}

// NewQualityValidator creates a validator with the default thresholds.
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{thresholds: DefaultQualityThresholds()}
}

// NewQualityValidatorWithThresholds creates a validator with custom
// thresholds.
func NewQualityValidatorWithThresholds(thresholds QualityThresholds) *QualityValidator {
	return &QualityValidator{thresholds: thresholds}
}

// Verdicts derives the boolean quality flags from the metrics.
func (qv *QualityValidator) Verdicts(m models.ImageMetrics) models.Quality {
	q := models.Quality{
		Blurry:          m.Sharpness.LaplacianVariance < qv.thresholds.AcceptableLaplacianVariance,
		Overexposed:     m.Exposure.AvgLuminance > qv.thresholds.MaxLuminance,
		Oversaturated:   m.Color.AvgSaturation > qv.thresholds.MaxSaturation,
		IncorrectWB:     qv.hasChannelImbalance(m.Color.ChannelBalance),
		IsTooDark:       m.Exposure.Brightness < qv.thresholds.MinBrightness,
		IsTooBright:     m.Exposure.Brightness > qv.thresholds.MaxBrightness,
		LowDynamicRange: m.Exposure.IntensityRange < qv.thresholds.MinIntensityRange && m.Exposure.LuminanceStdDev < qv.thresholds.MinLuminanceStdDev,
	}
	q.IsValid = !q.Blurry && !q.Overexposed && !q.Oversaturated &&
		!q.IsTooDark && !q.IsTooBright && !q.LowDynamicRange
	return q
}

// Validate reports every issue found in the metrics.
func (qv *QualityValidator) Validate(m models.ImageMetrics) []QualityIssue {
	var issues []QualityIssue

	lv := m.Sharpness.LaplacianVariance
	switch {
	case lv < qv.thresholds.SoftLaplacianVariance:
		issues = append(issues, QualityIssue{
			Type:        "blurriness",
			Message:     "Image is very soft and likely out of focus.",
			Severity:    "error",
			ActualValue: lv,
			Threshold:   qv.thresholds.SoftLaplacianVariance,
		})
	case lv < qv.thresholds.AcceptableLaplacianVariance:
		issues = append(issues, QualityIssue{
			Type:        "blurriness",
			Message:     "Image is soft but generally acceptable.",
			Severity:    "warning",
			ActualValue: lv,
			Threshold:   qv.thresholds.AcceptableLaplacianVariance,
		})
	}

	if m.Exposure.AvgLuminance > qv.thresholds.MaxLuminance {
		issues = append(issues, QualityIssue{
			Type:        "overexposure",
			Message:     "Image is overexposed; highlights are clipped.",
			Severity:    "error",
			ActualValue: m.Exposure.AvgLuminance,
			Threshold:   qv.thresholds.MaxLuminance,
		})
	}
	if m.Exposure.Brightness < qv.thresholds.MinBrightness {
		issues = append(issues, QualityIssue{
			Type:        "too_dark",
			Message:     "Image is too dark for reliable analysis.",
			Severity:    "error",
			ActualValue: m.Exposure.Brightness,
			Threshold:   qv.thresholds.MinBrightness,
		})
	} else if m.Exposure.Brightness > qv.thresholds.MaxBrightness {
		issues = append(issues, QualityIssue{
			Type:        "too_bright",
			Message:     "Image is too bright for reliable analysis.",
			Severity:    "error",
			ActualValue: m.Exposure.Brightness,
			Threshold:   qv.thresholds.MaxBrightness,
		})
	}

	if m.Color.AvgSaturation > qv.thresholds.MaxSaturation {
		issues = append(issues, QualityIssue{
			Type:        "oversaturation",
			Message:     "Colors are oversaturated.",
			Severity:    "error",
			ActualValue: m.Color.AvgSaturation,
			Threshold:   qv.thresholds.MaxSaturation,
		})
	}
	if qv.hasChannelImbalance(m.Color.ChannelBalance) {
		issues = append(issues, QualityIssue{
			Type:      "white_balance",
			Message:   "Channel means diverge; white balance looks off.",
			Severity:  "warning",
			Threshold: qv.thresholds.MaxChannelImbalance,
		})
	}

	if m.Exposure.IntensityRange < qv.thresholds.MinIntensityRange &&
		m.Exposure.LuminanceStdDev < qv.thresholds.MinLuminanceStdDev {
		issues = append(issues, QualityIssue{
			Type:        "low_dynamic_range",
			Message:     "Tonal range is compressed; check lighting or exposure.",
			Severity:    "warning",
			ActualValue: float64(m.Exposure.IntensityRange),
			Threshold:   float64(qv.thresholds.MinIntensityRange),
		})
	}

	if m.Noise != nil && m.Noise.Overall > qv.thresholds.MaxNoiseVariance {
		issues = append(issues, QualityIssue{
			Type:        "noise",
			Message:     "Noise level is high; " + noiseHint(m.Noise.Dominant),
			Severity:    "warning",
			ActualValue: m.Noise.Overall,
			Threshold:   qv.thresholds.MaxNoiseVariance,
		})
	}

	return issues
}

// ConvertIssuesToMessages flattens issues into user-facing strings.
func (qv *QualityValidator) ConvertIssuesToMessages(issues []QualityIssue) []string {
	if len(issues) == 0 {
		return nil
	}
	messages := make([]string, 0, len(issues))
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

func (qv *QualityValidator) hasChannelImbalance(channels [3]float64) bool {
	max := math.Max(channels[0], math.Max(channels[1], channels[2]))
	min := math.Min(channels[0], math.Min(channels[1], channels[2]))
	return (max - min) > qv.thresholds.MaxChannelImbalance
}

func noiseHint(dominant string) string {
	switch dominant {
	case "luminance":
		return "the image appears grainy."
	case "chrominance":
		return "the image shows color blotchiness."
	default:
		return "luminance and chrominance contributions are balanced."
	}
}
