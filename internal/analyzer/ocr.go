package analyzer

import (
	"bytes"
	"image"
	"image/png"
	"strings"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"
	"github.com/otiai10/gosseract/v2"

	"github.com/photoqc/photoqc-go/pkg/models"
)

// textVerifier implements TextVerifier with a Tesseract OCR client.
// QC charts carry printed labels whose legibility is itself a quality
// signal, so the error rates feed the report alongside the metrics.
type textVerifier struct {
	language string
}

// NewTextVerifier creates a verifier running OCR in the given language.
// Empty language defaults to English.
func NewTextVerifier(language string) TextVerifier {
	if language == "" {
		language = "eng"
	}
	return &textVerifier{language: language}
}

// Verify runs OCR on img and scores the extracted text against
// expectedText. OCR failures are recorded in the result rather than
// aborting the QC pass.
func (tv *textVerifier) Verify(img image.Image, expectedText string) *models.OCRResult {
	result := &models.OCRResult{
		ExpectedText: expectedText,
		WER:          1,
		CER:          1,
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		result.OCRError = err.Error()
		return result
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(tv.language); err != nil {
		result.OCRError = err.Error()
		return result
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		result.OCRError = err.Error()
		return result
	}

	text, err := client.Text()
	if err != nil {
		result.OCRError = err.Error()
		return result
	}
	result.ExtractedText = strings.TrimSpace(text)

	result.WER = wordErrorRate(expectedText, result.ExtractedText)
	result.CER = characterErrorRate(expectedText, result.ExtractedText)
	return result
}

// wordErrorRate scores extracted against expected at word granularity.
// Both sides are normalized to lowercase tokens first so that case and
// spacing differences do not count as label defects.
func wordErrorRate(expected, extracted string) float64 {
	ref := normalizeTokens(expected)
	hyp := normalizeTokens(extracted)
	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0
		}
		return 1
	}
	rate, _ := wer.WER(ref, hyp)
	return rate
}

// characterErrorRate is the Levenshtein distance over normalized text
// divided by the expected length, clamped to [0, 1].
func characterErrorRate(expected, extracted string) float64 {
	ref := strings.Join(normalizeTokens(expected), " ")
	hyp := strings.Join(normalizeTokens(extracted), " ")
	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0
		}
		return 1
	}

	dist := levenshtein.Distance(ref, hyp)
	cer := float64(dist) / float64(len([]rune(ref)))
	if cer > 1 {
		cer = 1
	}
	return cer
}

func normalizeTokens(s string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(s)))
}
