package storage

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "github.com/gen2brain/heic"
	_ "golang.org/x/image/tiff"
)

func init() {
	// tiff and heic self-register through their blank imports; webp
	// exposes the codec functions without registering them.
	image.RegisterFormat("webp", "RIFF????WEBP", webp.Decode, webp.DecodeConfig)
}

// DecodeImage decodes any registered format from r, honoring EXIF
// orientation for JPEG sources.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// OpenImage decodes the image file at path.
func OpenImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image %q: %w", path, err)
	}
	defer f.Close()
	return DecodeImage(f)
}
