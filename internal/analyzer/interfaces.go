package analyzer

import (
	"image"

	"github.com/photoqc/photoqc-go/pkg/models"
)

// ImageAnalyzer runs the full QC metric pass over one decoded image.
type ImageAnalyzer interface {
	// Analyze runs the default profile.
	Analyze(img image.Image) models.AnalysisResult

	// AnalyzeWithOptions runs a configured profile.
	AnalyzeWithOptions(img image.Image, options AnalysisOptions) models.AnalysisResult

	// Close releases the worker pool.
	Close() error
}

// MetricsCalculator computes the individual no-reference metrics.
type MetricsCalculator interface {
	CalculateBasicMetrics(img image.Image) basicMetrics
	CalculateLaplacianVariance(gray *image.Gray) float64
	CalculateBrenner(gray *image.Gray) float64
	CalculateTenengrad(gray *image.Gray) float64
	CalculateBrightness(gray *image.Gray) float64
	CalculateDynamicRange(gray *image.Gray) (stdDev float64, intensityRange int)
	CalculateColorfulness(img image.Image) float64
	CalculateNoise(img image.Image, gray *image.Gray) models.NoiseMetrics
}

// ReferenceComparator computes full-reference metrics against a
// known-good image.
type ReferenceComparator interface {
	Compare(img, reference image.Image) (*models.ReferenceComparison, error)
}

// TextVerifier extracts label text from a QC chart and scores it
// against the expected text.
type TextVerifier interface {
	Verify(img image.Image, expectedText string) *models.OCRResult
}
