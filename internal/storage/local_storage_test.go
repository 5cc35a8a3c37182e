package storage

import (
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/photoqc/photoqc-go/internal/locator"
)

func testImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, testImage(8, 8, color.RGBA{R: 120, G: 120, B: 120, A: 255})); err != nil {
		t.Fatal(err)
	}
}

func writeJPEG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, testImage(8, 8, color.RGBA{R: 60, G: 60, B: 60, A: 255}), nil); err != nil {
		t.Fatal(err)
	}
}

func writeTIFF(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := tiff.Encode(f, testImage(8, 8, color.RGBA{R: 200, G: 200, B: 200, A: 255}), nil); err != nil {
		t.Fatal(err)
	}
}

func TestLocalStorageLoadsHighestPriorityFormat(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, filepath.Join(dir, "a.jpg"))
	writePNG(t, filepath.Join(dir, "b.png"))
	writeTIFF(t, filepath.Join(dir, "c.tif"))

	store := NewLocalStorage(dir, nil)
	img, path, err := store.LoadImage()
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if filepath.Base(path) != "c.tif" {
		t.Errorf("expected the TIFF to win, got %s", path)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("decoded bounds = %v", img.Bounds())
	}
}

func TestLocalStorageCustomPriority(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, filepath.Join(dir, "a.jpg"))
	writeTIFF(t, filepath.Join(dir, "b.tif"))

	store := NewLocalStorage(dir, []locator.Format{locator.FormatJPEG, locator.FormatTIFF})
	_, path, err := store.LoadImage()
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if filepath.Base(path) != "a.jpg" {
		t.Errorf("custom priority should pick a.jpg, got %s", path)
	}
}

func TestLocalStorageMissingDirectory(t *testing.T) {
	store := NewLocalStorage(filepath.Join(t.TempDir(), "missing"), nil)

	_, _, err := store.LoadImage()

	var notFound *locator.DirectoryNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected DirectoryNotFoundError, got %v", err)
	}
}

func TestLocalStorageNoImage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("placeholder"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewLocalStorage(dir, nil)
	_, _, err := store.LoadImage()

	var noImage *locator.NoImageFoundError
	if !errors.As(err, &noImage) {
		t.Fatalf("expected NoImageFoundError, got %v", err)
	}
}

func TestLocalStorageUndecodableCandidate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewLocalStorage(dir, nil)
	_, path, err := store.LoadImage()
	if err == nil {
		t.Fatal("expected a decode error")
	}
	if filepath.Base(path) != "broken.png" {
		t.Errorf("error should still report the resolved path, got %q", path)
	}
}
