package analyzer

import (
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/photoqc/photoqc-go/internal/storage"
	"github.com/photoqc/photoqc-go/pkg/models"
	"github.com/photoqc/photoqc-go/pkg/validation"
)

// coreAnalyzer implements ImageAnalyzer and orchestrates the metric
// passes, the verdicts and the optional reference and OCR stages.
type coreAnalyzer struct {
	workerPool        *WorkerPool
	metricsCalculator MetricsCalculator
	comparator        ReferenceComparator
	grayPool          sync.Pool
}

// NewImageAnalyzer creates an analyzer with a started worker pool.
func NewImageAnalyzer() (ImageAnalyzer, error) {
	workerPool := NewWorkerPool(0)
	workerPool.Start()

	return &coreAnalyzer{
		workerPool:        workerPool,
		metricsCalculator: NewMetricsCalculator(),
		comparator:        NewReferenceComparator(),
		grayPool: sync.Pool{
			New: func() interface{} {
				return &image.Gray{}
			},
		},
	}, nil
}

// Analyze runs the default profile.
func (ca *coreAnalyzer) Analyze(img image.Image) models.AnalysisResult {
	return ca.AnalyzeWithOptions(img, DefaultOptions())
}

// AnalyzeWithOptions runs a configured QC pass.
func (ca *coreAnalyzer) AnalyzeWithOptions(img image.Image, options AnalysisOptions) models.AnalysisResult {
	start := time.Now()

	var result models.AnalysisResult
	result.Timestamp = start

	bounds := img.Bounds()
	result.Metrics.Width = bounds.Dx()
	result.Metrics.Height = bounds.Dy()

	gray := ca.grayPool.Get().(*image.Gray)
	defer ca.grayPool.Put(gray)
	*gray = *image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)

	basic := ca.metricsCalculator.CalculateBasicMetrics(img)
	result.Metrics.Exposure.AvgLuminance = basic.avgLuminance
	result.Metrics.Color.AvgSaturation = basic.avgSaturation
	result.Metrics.Color.ChannelBalance = [3]float64{basic.avgR, basic.avgG, basic.avgB}

	// The three focus measures are independent passes over the same
	// grayscale buffer, so they run on the pool. A per-call WaitGroup
	// keeps concurrent analyses from waiting on each other's jobs.
	var focus sync.WaitGroup
	focus.Add(3)
	ca.workerPool.Submit(func() {
		defer focus.Done()
		result.Metrics.Sharpness.LaplacianVariance = ca.metricsCalculator.CalculateLaplacianVariance(gray)
	})
	ca.workerPool.Submit(func() {
		defer focus.Done()
		result.Metrics.Sharpness.Brenner = ca.metricsCalculator.CalculateBrenner(gray)
	})
	ca.workerPool.Submit(func() {
		defer focus.Done()
		result.Metrics.Sharpness.Tenengrad = ca.metricsCalculator.CalculateTenengrad(gray)
	})
	focus.Wait()

	result.Metrics.Exposure.Brightness = ca.metricsCalculator.CalculateBrightness(gray)
	stdDev, intensityRange := ca.metricsCalculator.CalculateDynamicRange(gray)
	result.Metrics.Exposure.LuminanceStdDev = stdDev
	result.Metrics.Exposure.IntensityRange = intensityRange

	if !options.FastMode && !options.SkipColorfulness {
		result.Metrics.Color.Colorfulness = ca.metricsCalculator.CalculateColorfulness(img)
	}
	if !options.FastMode && !options.SkipNoise {
		noise := ca.metricsCalculator.CalculateNoise(img, gray)
		result.Metrics.Noise = &noise
	}

	validator := validation.NewQualityValidatorWithThresholds(options.Thresholds)
	result.Quality = validator.Verdicts(result.Metrics)
	result.Errors = validator.ConvertIssuesToMessages(validator.Validate(result.Metrics))

	if options.Reference != nil {
		ca.compareAgainstReference(img, options.Reference, &result)
	}
	if options.OCRMode {
		verifier := NewTextVerifier(options.OCRLanguage)
		result.OCRResult = verifier.Verify(img, options.OCRExpectedText)
	}

	result.ProcessingTimeSec = time.Since(start).Seconds()
	return result
}

// Close shuts down the worker pool.
func (ca *coreAnalyzer) Close() error {
	ca.workerPool.Close()
	return nil
}

func (ca *coreAnalyzer) compareAgainstReference(img image.Image, refOpts *ReferenceOptions, result *models.AnalysisResult) {
	reference, err := storage.OpenImage(refOpts.Path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("reference image unavailable: %v", err))
		return
	}

	cmp, err := ca.comparator.Compare(img, reference)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("reference comparison failed: %v", err))
		return
	}
	cmp.ReferencePath = refOpts.Path
	result.Reference = cmp
}

// toGray copies img into a fresh grayscale buffer.
func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}
