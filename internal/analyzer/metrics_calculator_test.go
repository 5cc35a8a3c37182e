package analyzer

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func solidGray(level uint8, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: level})
		}
	}
	return img
}

func stripedGray(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		level := uint8(0)
		if y%2 == 0 {
			level = 255
		}
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: level})
		}
	}
	return img
}

func solidRGBA(c color.RGBA, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestCalculateLaplacianVariance(t *testing.T) {
	mc := NewMetricsCalculator()

	tests := []struct {
		name     string
		img      *image.Gray
		wantZero bool
	}{
		{name: "flat image has zero variance", img: solidGray(128, 32, 32), wantZero: true},
		{name: "striped image has high variance", img: stripedGray(32, 32), wantZero: false},
		{name: "too small for the kernel", img: solidGray(128, 2, 2), wantZero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mc.CalculateLaplacianVariance(tt.img)
			if tt.wantZero && got != 0 {
				t.Errorf("expected zero variance, got %f", got)
			}
			if !tt.wantZero && got <= 0 {
				t.Errorf("expected positive variance, got %f", got)
			}
		})
	}
}

func TestCalculateBrenner(t *testing.T) {
	mc := NewMetricsCalculator()

	if got := mc.CalculateBrenner(solidGray(100, 16, 16)); got != 0 {
		t.Errorf("flat image: expected zero, got %f", got)
	}

	// Alternating rows give |diff| = 0 two rows apart, so use a step
	// edge instead.
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			level := uint8(0)
			if y >= 2 {
				level = 200
			}
			img.SetGray(x, y, color.Gray{Y: level})
		}
	}
	// Rows 0 and 1 differ from rows 2 and 3 by 200; 2 row pairs * 4
	// columns * 200^2 = 320000.
	if got := mc.CalculateBrenner(img); got != 320000 {
		t.Errorf("step edge: expected 320000, got %f", got)
	}
}

func TestCalculateTenengrad(t *testing.T) {
	mc := NewMetricsCalculator()

	if got := mc.CalculateTenengrad(solidGray(100, 16, 16)); got != 0 {
		t.Errorf("flat image: expected zero, got %f", got)
	}
	if got := mc.CalculateTenengrad(stripedGray(16, 16)); got <= 0 {
		t.Errorf("striped image: expected positive, got %f", got)
	}
}

func TestCalculateBrightness(t *testing.T) {
	mc := NewMetricsCalculator()

	tests := []struct {
		name  string
		level uint8
	}{
		{name: "dark", level: 10},
		{name: "mid", level: 128},
		{name: "bright", level: 240},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mc.CalculateBrightness(solidGray(tt.level, 8, 8))
			if got != float64(tt.level) {
				t.Errorf("expected %d, got %f", tt.level, got)
			}
		})
	}
}

func TestCalculateDynamicRange(t *testing.T) {
	mc := NewMetricsCalculator()

	stdDev, rng := mc.CalculateDynamicRange(solidGray(77, 8, 8))
	if stdDev != 0 || rng != 0 {
		t.Errorf("flat image: expected 0/0, got %f/%d", stdDev, rng)
	}

	stdDev, rng = mc.CalculateDynamicRange(stripedGray(8, 8))
	if rng != 255 {
		t.Errorf("striped image: expected full range, got %d", rng)
	}
	if stdDev < 100 {
		t.Errorf("striped image: expected large std dev, got %f", stdDev)
	}
}

func TestCalculateColorfulness(t *testing.T) {
	mc := NewMetricsCalculator()

	gray := solidRGBA(color.RGBA{R: 128, G: 128, B: 128, A: 255}, 8, 8)
	if got := mc.CalculateColorfulness(gray); got > 1e-9 {
		t.Errorf("neutral gray: expected ~0, got %f", got)
	}

	// Half red, half green maximizes the rg opponent spread.
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x < 4 {
				img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{G: 255, A: 255})
			}
		}
	}
	if got := mc.CalculateColorfulness(img); got < 100 {
		t.Errorf("red/green split: expected high score, got %f", got)
	}
}

func TestCalculateBasicMetrics(t *testing.T) {
	mc := NewMetricsCalculator()

	red := solidRGBA(color.RGBA{R: 255, A: 255}, 8, 8)
	basic := mc.CalculateBasicMetrics(red)

	if math.Abs(basic.avgSaturation-1.0) > 1e-6 {
		t.Errorf("pure red: expected saturation 1, got %f", basic.avgSaturation)
	}
	if math.Abs(basic.avgLuminance-1.0) > 1e-6 {
		t.Errorf("pure red: expected luminance 1, got %f", basic.avgLuminance)
	}
	if math.Abs(basic.avgR-1.0) > 1e-6 || basic.avgG > 1e-6 || basic.avgB > 1e-6 {
		t.Errorf("pure red: unexpected channel means %f/%f/%f", basic.avgR, basic.avgG, basic.avgB)
	}
}

func TestCalculateNoise(t *testing.T) {
	mc := NewMetricsCalculator()

	flat := solidRGBA(color.RGBA{R: 90, G: 90, B: 90, A: 255}, 8, 8)
	noise := mc.CalculateNoise(flat, toGray(flat))
	if noise.Overall != 0 {
		t.Errorf("flat image: expected zero overall noise, got %f", noise.Overall)
	}
	if noise.Dominant != "balanced" {
		t.Errorf("flat image: expected balanced, got %q", noise.Dominant)
	}

	// Luminance-only variation leaves the chroma channels flat.
	striped := stripedGray(16, 16)
	noise = mc.CalculateNoise(striped, striped)
	if noise.Dominant != "luminance" {
		t.Errorf("striped gray: expected luminance dominance, got %q", noise.Dominant)
	}
	if noise.Luma <= noise.ChromaCb || noise.Luma <= noise.ChromaCr {
		t.Errorf("striped gray: luma std dev should dominate, got %f/%f/%f",
			noise.Luma, noise.ChromaCb, noise.ChromaCr)
	}
}

func TestRGBToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		s, v    float64
	}{
		{name: "black", r: 0, g: 0, b: 0, s: 0, v: 0},
		{name: "white", r: 1, g: 1, b: 1, s: 0, v: 1},
		{name: "pure red", r: 1, g: 0, b: 0, s: 1, v: 1},
		{name: "half gray", r: 0.5, g: 0.5, b: 0.5, s: 0, v: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, s, v := rgbToHSV(tt.r, tt.g, tt.b)
			if math.Abs(s-tt.s) > 1e-9 || math.Abs(v-tt.v) > 1e-9 {
				t.Errorf("got s=%f v=%f, want s=%f v=%f", s, v, tt.s, tt.v)
			}
		})
	}
}
