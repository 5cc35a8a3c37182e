// Package models holds the shared result types exchanged between the
// analyzer, the service layer, the HTTP transport, and the history
// store.
package models

import "time"

// SharpnessMetrics groups the focus measures computed from the
// grayscale image.
type SharpnessMetrics struct {
	// LaplacianVariance is the variance of the 4-neighbour Laplacian.
	// Higher means sharper; below ~100 the image is soft.
	LaplacianVariance float64 `json:"laplacian_variance"`
	// Brenner is the sum of squared differences between rows two pixels
	// apart.
	Brenner float64 `json:"brenner"`
	// Tenengrad is the sum of squared Sobel gradient magnitudes.
	Tenengrad float64 `json:"tenengrad"`
}

// ExposureMetrics groups brightness and tonal distribution measures.
type ExposureMetrics struct {
	Brightness      float64 `json:"brightness"`        // gray mean, 0-255
	AvgLuminance    float64 `json:"avg_luminance"`     // HSV value mean, 0-1
	LuminanceStdDev float64 `json:"luminance_std_dev"` // dynamic-range proxy, 0-255
	IntensityRange  int     `json:"intensity_range"`   // max - min gray level
}

// ColorMetrics groups color rendition measures.
type ColorMetrics struct {
	AvgSaturation  float64    `json:"avg_saturation"`  // HSV saturation mean, 0-1
	ChannelBalance [3]float64 `json:"channel_balance"` // R, G, B means, 0-1
	Colorfulness   float64    `json:"colorfulness"`    // Hasler-Suesstrunk score
}

// NoiseMetrics separates overall, luminance and chrominance noise.
type NoiseMetrics struct {
	Overall  float64 `json:"overall"`   // Laplacian variance of gray
	Luma     float64 `json:"luma"`      // Y channel std dev
	ChromaCb float64 `json:"chroma_cb"` // Cb channel std dev
	ChromaCr float64 `json:"chroma_cr"` // Cr channel std dev
	// Dominant is "luminance", "chrominance" or "balanced".
	Dominant string `json:"dominant"`
}

// ImageMetrics is the full metric set for one QC image.
type ImageMetrics struct {
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	Sharpness SharpnessMetrics `json:"sharpness"`
	Exposure  ExposureMetrics  `json:"exposure"`
	Color     ColorMetrics     `json:"color"`
	Noise     *NoiseMetrics    `json:"noise,omitempty"`
}

// Quality holds the boolean verdicts derived from the metrics.
type Quality struct {
	Blurry          bool `json:"blurry"`
	Overexposed     bool `json:"overexposed"`
	Oversaturated   bool `json:"oversaturated"`
	IncorrectWB     bool `json:"incorrect_wb"`
	IsTooDark       bool `json:"is_too_dark"`
	IsTooBright     bool `json:"is_too_bright"`
	LowDynamicRange bool `json:"low_dynamic_range"`
	IsValid         bool `json:"is_valid"`
}

// ReferenceComparison holds full-reference metrics against a known-good
// image. PSNR is +Inf for identical images; SSIM is 1.
type ReferenceComparison struct {
	ReferencePath          string  `json:"reference_path"`
	PSNR                   float64 `json:"psnr"`
	SSIM                   float64 `json:"ssim"`
	AvgHashDistance        int     `json:"avg_hash_distance"`
	PerceptionHashDistance int     `json:"perception_hash_distance"`
}

// OCRResult holds label verification output for QC target charts.
type OCRResult struct {
	ExtractedText string  `json:"extracted_text"`
	ExpectedText  string  `json:"expected_text,omitempty"`
	WER           float64 `json:"wer"`
	CER           float64 `json:"cer"`
	OCRError      string  `json:"ocr_error,omitempty"`
}

// AnalysisResult is the analyzer's complete output for one image.
type AnalysisResult struct {
	Timestamp         time.Time            `json:"timestamp"`
	ProcessingTimeSec float64              `json:"processing_time_sec"`
	Metrics           ImageMetrics         `json:"metrics"`
	Quality           Quality              `json:"quality"`
	Reference         *ReferenceComparison `json:"reference,omitempty"`
	OCRResult         *OCRResult           `json:"ocr_result,omitempty"`
	Errors            []string             `json:"errors,omitempty"`
}

// ImageMetadata is file-level information read without decoding pixel
// data.
type ImageMetadata struct {
	Format      string    `json:"format"`
	FileSize    int64     `json:"file_size"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	CameraMake  string    `json:"camera_make,omitempty"`
	CameraModel string    `json:"camera_model,omitempty"`
	DateTaken   time.Time `json:"date_taken,omitempty"`
	Orientation int       `json:"orientation,omitempty"`
}

// QCReport is the persisted and API-facing record of one QC run.
type QCReport struct {
	ID        string         `json:"id"`
	Directory string         `json:"directory"`
	ImagePath string         `json:"image_path"`
	Metadata  *ImageMetadata `json:"metadata,omitempty"`
	AnalysisResult
}
