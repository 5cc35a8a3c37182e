package analyzer

import (
	"testing"

	"github.com/photoqc/photoqc-go/pkg/validation"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.FastMode || opts.SkipNoise || opts.SkipColorfulness {
		t.Error("default profile should run every metric")
	}
	if opts.OCRMode {
		t.Error("default profile should not enable OCR")
	}
	if opts.OCRLanguage != "eng" {
		t.Errorf("unexpected OCR language %q", opts.OCRLanguage)
	}
	if opts.Thresholds.AcceptableLaplacianVariance != 100.0 {
		t.Errorf("unexpected sharpness threshold %f", opts.Thresholds.AcceptableLaplacianVariance)
	}
}

func TestFastOptions(t *testing.T) {
	opts := FastOptions()

	if !opts.FastMode || !opts.SkipNoise || !opts.SkipColorfulness {
		t.Error("fast profile should skip the extended metrics")
	}
}

func TestOCROptions(t *testing.T) {
	opts := OCROptions("QC Target 04")

	if !opts.OCRMode {
		t.Error("OCR profile should enable OCR")
	}
	if opts.OCRExpectedText != "QC Target 04" {
		t.Errorf("unexpected expected text %q", opts.OCRExpectedText)
	}
	if opts.Thresholds.AcceptableLaplacianVariance != 250.0 {
		t.Errorf("OCR profile should tighten sharpness, got %f",
			opts.Thresholds.AcceptableLaplacianVariance)
	}
}

func TestOptionBuilders(t *testing.T) {
	opts := DefaultOptions().
		WithReference("/refs/target.png").
		WithOCR("QC Target 04").
		WithThresholds(validation.QualityThresholds{AcceptableLaplacianVariance: 42})

	if opts.Reference == nil || opts.Reference.Path != "/refs/target.png" {
		t.Error("WithReference did not set the reference path")
	}
	if !opts.OCRMode || opts.OCRExpectedText != "QC Target 04" {
		t.Error("WithOCR did not enable OCR")
	}
	if opts.Thresholds.AcceptableLaplacianVariance != 42 {
		t.Error("WithThresholds did not replace the thresholds")
	}
}
