package analyzer

import (
	"image"
	"image/color"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/photoqc/photoqc-go/pkg/models"
)

// metricsCalculator implements MetricsCalculator with parallel strip
// processing for the whole-image passes.
type metricsCalculator struct {
	slicePool sync.Pool
}

// NewMetricsCalculator creates a metrics calculator.
func NewMetricsCalculator() MetricsCalculator {
	return &metricsCalculator{
		slicePool: sync.Pool{
			New: func() interface{} {
				return make([]float64, 0, 1024)
			},
		},
	}
}

// CalculateBasicMetrics accumulates per-pixel luminance, saturation and
// channel means across horizontal strips.
func (mc *metricsCalculator) CalculateBasicMetrics(img image.Image) basicMetrics {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return basicMetrics{}
	}

	numWorkers := runtime.NumCPU()
	if height < numWorkers {
		numWorkers = height
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	type stripResult struct {
		lum, sat, r, g, b float64
		pixels            int
	}

	results := make(chan stripResult, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		startY := bounds.Min.Y + i*rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > bounds.Max.Y {
			endY = bounds.Max.Y
		}
		go func(startY, endY int) {
			defer wg.Done()
			var res stripResult
			for y := startY; y < endY; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					rVal, gVal, bVal, _ := img.At(x, y).RGBA()
					rf := float64(rVal) / 65535.0
					gf := float64(gVal) / 65535.0
					bf := float64(bVal) / 65535.0

					_, s, v := rgbToHSV(rf, gf, bf)
					res.sat += s
					res.lum += v
					res.r += rf
					res.g += gf
					res.b += bf
					res.pixels++
				}
			}
			results <- res
		}(startY, endY)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var total stripResult
	for res := range results {
		total.lum += res.lum
		total.sat += res.sat
		total.r += res.r
		total.g += res.g
		total.b += res.b
		total.pixels += res.pixels
	}
	if total.pixels == 0 {
		return basicMetrics{}
	}

	n := float64(total.pixels)
	return basicMetrics{
		avgLuminance:  total.lum / n,
		avgSaturation: total.sat / n,
		avgR:          total.r / n,
		avgG:          total.g / n,
		avgB:          total.b / n,
	}
}

// CalculateLaplacianVariance computes the variance of the 4-neighbour
// Laplacian, the primary sharpness measure.
func (mc *metricsCalculator) CalculateLaplacianVariance(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	data := mc.slicePool.Get().([]float64)
	defer mc.slicePool.Put(data[:0])
	if cap(data) < (width-2)*(height-2) {
		data = make([]float64, 0, (width-2)*(height-2))
	}

	// Laplacian kernel: [0, 1, 0; 1, -4, 1; 0, 1, 0]
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			center := float64(gray.GrayAt(x, y).Y)
			top := float64(gray.GrayAt(x, y-1).Y)
			bottom := float64(gray.GrayAt(x, y+1).Y)
			left := float64(gray.GrayAt(x-1, y).Y)
			right := float64(gray.GrayAt(x+1, y).Y)

			data = append(data, -4*center+top+bottom+left+right)
		}
	}
	if len(data) == 0 {
		return 0
	}
	return stat.Variance(data, nil)
}

// CalculateBrenner sums squared differences between rows two pixels
// apart.
func (mc *metricsCalculator) CalculateBrenner(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	if bounds.Dy() < 3 {
		return 0
	}

	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y-2; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			diff := float64(gray.GrayAt(x, y).Y) - float64(gray.GrayAt(x, y+2).Y)
			sum += diff * diff
		}
	}
	return sum
}

// CalculateTenengrad sums squared Sobel gradient magnitudes over the
// interior pixels.
func (mc *metricsCalculator) CalculateTenengrad(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	var sum float64
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			gx := sobelX(gray, x, y)
			gy := sobelY(gray, x, y)
			sum += float64(gx*gx + gy*gy)
		}
	}
	return sum
}

// CalculateBrightness computes the mean gray level (0-255).
func (mc *metricsCalculator) CalculateBrightness(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return 0
	}

	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			total += float64(gray.GrayAt(x, y).Y)
		}
	}
	return total / float64(width*height)
}

// CalculateDynamicRange returns the gray-level standard deviation and
// the min-to-max intensity range.
func (mc *metricsCalculator) CalculateDynamicRange(gray *image.Gray) (float64, int) {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return 0, 0
	}

	data := mc.slicePool.Get().([]float64)
	defer mc.slicePool.Put(data[:0])
	if cap(data) < width*height {
		data = make([]float64, 0, width*height)
	}

	minVal, maxVal := 255, 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := int(gray.GrayAt(x, y).Y)
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
			data = append(data, float64(v))
		}
	}
	return stat.StdDev(data, nil), maxVal - minVal
}

// CalculateColorfulness computes the Hasler-Suesstrunk colorfulness
// score from the rg and yb opponent channels (0-255 scale).
func (mc *metricsCalculator) CalculateColorfulness(img image.Image) float64 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return 0
	}

	rg := make([]float64, 0, width*height)
	yb := make([]float64, 0, width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rVal, gVal, bVal, _ := img.At(x, y).RGBA()
			rf := float64(rVal) / 257.0
			gf := float64(gVal) / 257.0
			bf := float64(bVal) / 257.0
			rg = append(rg, rf-gf)
			yb = append(yb, 0.5*(rf+gf)-bf)
		}
	}

	meanRG, stdRG := stat.MeanStdDev(rg, nil)
	meanYB, stdYB := stat.MeanStdDev(yb, nil)
	if math.IsNaN(stdRG) {
		stdRG = 0
	}
	if math.IsNaN(stdYB) {
		stdYB = 0
	}

	return math.Sqrt(stdRG*stdRG+stdYB*stdYB) + 0.3*math.Sqrt(meanRG*meanRG+meanYB*meanYB)
}

// CalculateNoise splits noise into the overall Laplacian measure and
// per-channel YCbCr standard deviations, then names the dominant
// contribution.
func (mc *metricsCalculator) CalculateNoise(img image.Image, gray *image.Gray) models.NoiseMetrics {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	noise := models.NoiseMetrics{
		Overall:  mc.CalculateLaplacianVariance(gray),
		Dominant: "balanced",
	}
	if width == 0 || height == 0 {
		return noise
	}

	yVals := make([]float64, 0, width*height)
	cbVals := make([]float64, 0, width*height)
	crVals := make([]float64, 0, width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rVal, gVal, bVal, _ := img.At(x, y).RGBA()
			yy, cb, cr := color.RGBToYCbCr(uint8(rVal>>8), uint8(gVal>>8), uint8(bVal>>8))
			yVals = append(yVals, float64(yy))
			cbVals = append(cbVals, float64(cb))
			crVals = append(crVals, float64(cr))
		}
	}

	noise.Luma = stat.StdDev(yVals, nil)
	noise.ChromaCb = stat.StdDev(cbVals, nil)
	noise.ChromaCr = stat.StdDev(crVals, nil)
	for _, v := range []*float64{&noise.Luma, &noise.ChromaCb, &noise.ChromaCr} {
		if math.IsNaN(*v) {
			*v = 0
		}
	}

	chroma := (noise.ChromaCb + noise.ChromaCr) / 2
	switch {
	case noise.Luma > chroma:
		noise.Dominant = "luminance"
	case chroma > noise.Luma:
		noise.Dominant = "chrominance"
	}
	return noise
}

func sobelX(gray *image.Gray, x, y int) int {
	return -1*int(gray.GrayAt(x-1, y-1).Y) + 1*int(gray.GrayAt(x+1, y-1).Y) +
		-2*int(gray.GrayAt(x-1, y).Y) + 2*int(gray.GrayAt(x+1, y).Y) +
		-1*int(gray.GrayAt(x-1, y+1).Y) + 1*int(gray.GrayAt(x+1, y+1).Y)
}

func sobelY(gray *image.Gray, x, y int) int {
	return -1*int(gray.GrayAt(x-1, y-1).Y) - 2*int(gray.GrayAt(x, y-1).Y) - 1*int(gray.GrayAt(x+1, y-1).Y) +
		1*int(gray.GrayAt(x-1, y+1).Y) + 2*int(gray.GrayAt(x, y+1).Y) + 1*int(gray.GrayAt(x+1, y+1).Y)
}

func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	v = max
	if max == 0 {
		s = 0
	} else {
		s = delta / max
	}

	if delta == 0 {
		h = 0
	} else if max == r {
		h = 60 * ((g - b) / delta)
	} else if max == g {
		h = 60 * (((b - r) / delta) + 2)
	} else {
		h = 60 * (((r - g) / delta) + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}
