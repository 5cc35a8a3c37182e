package analyzer

import (
	"fmt"
	"image"
	"math"

	"github.com/corona10/goimagehash"

	"github.com/photoqc/photoqc-go/pkg/models"
)

// ssim stabilizing constants for an 8-bit dynamic range.
const (
	ssimC1 = (0.01 * 255) * (0.01 * 255)
	ssimC2 = (0.03 * 255) * (0.03 * 255)

	ssimWindow = 8
)

// referenceComparator implements ReferenceComparator with PSNR, SSIM
// and perceptual hash distances.
type referenceComparator struct{}

// NewReferenceComparator creates a full-reference comparator.
func NewReferenceComparator() ReferenceComparator {
	return &referenceComparator{}
}

// Compare scores img against reference. The hash distances tolerate
// differing dimensions; PSNR and SSIM require matching bounds.
func (rc *referenceComparator) Compare(img, reference image.Image) (*models.ReferenceComparison, error) {
	cmp := &models.ReferenceComparison{
		AvgHashDistance:        -1,
		PerceptionHashDistance: -1,
	}

	if avgDist, err := hashDistance(img, reference, goimagehash.AverageHash); err == nil {
		cmp.AvgHashDistance = avgDist
	}
	if pDist, err := hashDistance(img, reference, goimagehash.PerceptionHash); err == nil {
		cmp.PerceptionHashDistance = pDist
	}

	if !img.Bounds().Size().Eq(reference.Bounds().Size()) {
		return nil, fmt.Errorf("dimension mismatch: image %v vs reference %v",
			img.Bounds().Size(), reference.Bounds().Size())
	}

	grayImg := toGray(img)
	grayRef := toGray(reference)

	cmp.PSNR = psnr(img, reference)
	cmp.SSIM = ssim(grayImg, grayRef)
	return cmp, nil
}

func hashDistance(img, reference image.Image, hashFn func(image.Image) (*goimagehash.ImageHash, error)) (int, error) {
	h1, err := hashFn(img)
	if err != nil {
		return 0, err
	}
	h2, err := hashFn(reference)
	if err != nil {
		return 0, err
	}
	return h1.Distance(h2)
}

// psnr computes the peak signal-to-noise ratio over the RGB channels.
// Identical images yield +Inf.
func psnr(img, reference image.Image) float64 {
	bounds := img.Bounds()
	refBounds := reference.Bounds()

	var mse float64
	var samples int
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r1, g1, b1, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			r2, g2, b2, _ := reference.At(refBounds.Min.X+x, refBounds.Min.Y+y).RGBA()

			dr := float64(r1>>8) - float64(r2>>8)
			dg := float64(g1>>8) - float64(g2>>8)
			db := float64(b1>>8) - float64(b2>>8)
			mse += dr*dr + dg*dg + db*db
			samples += 3
		}
	}
	if samples == 0 {
		return 0
	}
	mse /= float64(samples)
	if mse == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(255*255/mse)
}

// ssim computes the mean structural similarity over non-overlapping
// 8x8 windows of the grayscale images.
func ssim(img, reference *image.Gray) float64 {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	if width < ssimWindow || height < ssimWindow {
		// Too small for windowing, fall back to a single window over
		// the whole image.
		return ssimWindowScore(img, reference, 0, 0, width, height)
	}

	var total float64
	var windows int
	for y := 0; y+ssimWindow <= height; y += ssimWindow {
		for x := 0; x+ssimWindow <= width; x += ssimWindow {
			total += ssimWindowScore(img, reference, x, y, ssimWindow, ssimWindow)
			windows++
		}
	}
	if windows == 0 {
		return 0
	}
	return total / float64(windows)
}

func ssimWindowScore(img, reference *image.Gray, x0, y0, w, h int) float64 {
	n := float64(w * h)
	if n == 0 {
		return 0
	}

	var sumX, sumY float64
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			sumX += float64(img.GrayAt(img.Bounds().Min.X+x, img.Bounds().Min.Y+y).Y)
			sumY += float64(reference.GrayAt(reference.Bounds().Min.X+x, reference.Bounds().Min.Y+y).Y)
		}
	}
	muX := sumX / n
	muY := sumY / n

	var varX, varY, cov float64
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			dx := float64(img.GrayAt(img.Bounds().Min.X+x, img.Bounds().Min.Y+y).Y) - muX
			dy := float64(reference.GrayAt(reference.Bounds().Min.X+x, reference.Bounds().Min.Y+y).Y) - muY
			varX += dx * dx
			varY += dy * dy
			cov += dx * dy
		}
	}
	varX /= n
	varY /= n
	cov /= n

	num := (2*muX*muY + ssimC1) * (2*cov + ssimC2)
	den := (muX*muX + muY*muY + ssimC1) * (varX + varY + ssimC2)
	return num / den
}
