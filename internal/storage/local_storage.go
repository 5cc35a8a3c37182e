package storage

import (
	"image"

	"github.com/photoqc/photoqc-go/internal/locator"
)

// LocalStorage loads the representative QC image from a local folder.
// Resolution goes through the locator so callers never hardcode a
// filename.
type LocalStorage struct {
	directory string
	priority  []locator.Format
}

// NewLocalStorage creates a local QC image source. An empty directory
// falls back to the conventional QCImages folder, an empty priority to
// TIFF > PNG > JPEG.
func NewLocalStorage(directory string, priority []locator.Format) *LocalStorage {
	return &LocalStorage{directory: directory, priority: priority}
}

// Resolve returns the path of the QC image without decoding it.
func (s *LocalStorage) Resolve() (string, error) {
	return locator.Find(locator.Options{
		Directory:      s.directory,
		FormatPriority: s.priority,
	})
}

// LoadImage resolves and decodes the QC image, returning the decoded
// image and the path it came from.
func (s *LocalStorage) LoadImage() (image.Image, string, error) {
	path, err := s.Resolve()
	if err != nil {
		return nil, "", err
	}
	img, err := OpenImage(path)
	if err != nil {
		return nil, path, err
	}
	return img, path, nil
}
