package analyzer

import "github.com/photoqc/photoqc-go/pkg/validation"

// AnalysisOptions provides flexible configuration for a QC pass.
type AnalysisOptions struct {
	// Modes
	FastMode bool // sharpness and exposure only

	// Feature toggles
	SkipNoise        bool
	SkipColorfulness bool

	// Full-reference comparison; nil disables it.
	Reference *ReferenceOptions

	// OCR label verification
	OCRMode         bool
	OCRExpectedText string
	OCRLanguage     string

	// Verdict thresholds
	Thresholds validation.QualityThresholds
}

// ReferenceOptions configures full-reference comparison.
type ReferenceOptions struct {
	// Path of the reference image, recorded in the result.
	Path string
}

// DefaultOptions returns the standard QC profile: every no-reference
// metric, no reference comparison, no OCR.
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		OCRLanguage: "eng",
		Thresholds:  validation.DefaultQualityThresholds(),
	}
}

// FastOptions trims the pass to the sharpness and exposure metrics.
func FastOptions() AnalysisOptions {
	opts := DefaultOptions()
	opts.FastMode = true
	opts.SkipNoise = true
	opts.SkipColorfulness = true
	return opts
}

// OCROptions enables label verification with stricter sharpness
// expectations, since soft text defeats the OCR engine anyway.
func OCROptions(expectedText string) AnalysisOptions {
	opts := DefaultOptions()
	opts.OCRMode = true
	opts.OCRExpectedText = expectedText
	opts.Thresholds.AcceptableLaplacianVariance = 250.0
	return opts
}

// WithReference enables comparison against the reference image at path.
func (opts AnalysisOptions) WithReference(path string) AnalysisOptions {
	opts.Reference = &ReferenceOptions{Path: path}
	return opts
}

// WithOCR enables label verification against expectedText.
func (opts AnalysisOptions) WithOCR(expectedText string) AnalysisOptions {
	opts.OCRMode = true
	opts.OCRExpectedText = expectedText
	return opts
}

// WithThresholds overrides the verdict thresholds.
func (opts AnalysisOptions) WithThresholds(t validation.QualityThresholds) AnalysisOptions {
	opts.Thresholds = t
	return opts
}
