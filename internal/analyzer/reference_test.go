package analyzer

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func gradientRGBA(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			level := uint8((x * 255) / (w - 1))
			img.SetRGBA(x, y, color.RGBA{R: level, G: level, B: level, A: 255})
		}
	}
	return img
}

func TestCompareIdenticalImages(t *testing.T) {
	rc := NewReferenceComparator()
	img := gradientRGBA(32, 32)

	cmp, err := rc.Compare(img, img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsInf(cmp.PSNR, 1) {
		t.Errorf("identical images: expected +Inf PSNR, got %f", cmp.PSNR)
	}
	if math.Abs(cmp.SSIM-1.0) > 1e-6 {
		t.Errorf("identical images: expected SSIM 1, got %f", cmp.SSIM)
	}
	if cmp.AvgHashDistance != 0 {
		t.Errorf("identical images: expected hash distance 0, got %d", cmp.AvgHashDistance)
	}
	if cmp.PerceptionHashDistance != 0 {
		t.Errorf("identical images: expected phash distance 0, got %d", cmp.PerceptionHashDistance)
	}
}

func TestCompareDegradedImage(t *testing.T) {
	rc := NewReferenceComparator()
	reference := gradientRGBA(32, 32)

	// Add a coarse distortion to half the pixels.
	degraded := gradientRGBA(32, 32)
	for y := 0; y < 32; y++ {
		for x := 0; x < 16; x++ {
			degraded.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	cmp, err := rc.Compare(degraded, reference)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.IsInf(cmp.PSNR, 1) {
		t.Error("degraded image: PSNR should be finite")
	}
	if cmp.PSNR > 40 {
		t.Errorf("degraded image: PSNR suspiciously high: %f", cmp.PSNR)
	}
	if cmp.SSIM >= 1.0 {
		t.Errorf("degraded image: SSIM should drop below 1, got %f", cmp.SSIM)
	}
}

func TestCompareDimensionMismatch(t *testing.T) {
	rc := NewReferenceComparator()

	_, err := rc.Compare(gradientRGBA(32, 32), gradientRGBA(16, 16))
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestPSNRFlatDifference(t *testing.T) {
	a := solidRGBA(color.RGBA{R: 100, G: 100, B: 100, A: 255}, 8, 8)
	b := solidRGBA(color.RGBA{R: 110, G: 110, B: 110, A: 255}, 8, 8)

	// Uniform difference of 10 on every channel: MSE = 100,
	// PSNR = 10*log10(255^2/100).
	want := 10 * math.Log10(255*255/100.0)
	got := psnr(a, b)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %f, got %f", want, got)
	}
}
