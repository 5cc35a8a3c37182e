package repository

import (
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bep/imagemeta"

	"github.com/photoqc/photoqc-go/internal/locator"
	"github.com/photoqc/photoqc-go/internal/storage"
	"github.com/photoqc/photoqc-go/pkg/models"
)

// LocalImageRepository serves QC images from a local folder via the
// locator.
type LocalImageRepository struct {
	store *storage.LocalStorage
}

// NewLocalImageRepository creates a repository over one QC directory.
func NewLocalImageRepository(directory string, priority []locator.Format) *LocalImageRepository {
	return &LocalImageRepository{
		store: storage.NewLocalStorage(directory, priority),
	}
}

// ResolveImage returns the QC image path chosen by the locator.
func (r *LocalImageRepository) ResolveImage() (string, error) {
	return r.store.Resolve()
}

// LoadImage resolves and decodes the QC image.
func (r *LocalImageRepository) LoadImage() (image.Image, string, error) {
	return r.store.LoadImage()
}

// GetImageMetadata reads format, file size, pixel dimensions and the
// common EXIF fields for the image at path. EXIF extraction degrades
// gracefully: an absent or unreadable metadata block still yields the
// file-level fields.
func (r *LocalImageRepository) GetImageMetadata(path string) (*models.ImageMetadata, error) {
	format, ok := locator.FormatOf(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMetadataUnsupported, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}

	meta := &models.ImageMetadata{
		Format:   format.String(),
		FileSize: info.Size(),
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	if cfg, _, err := image.DecodeConfig(f); err == nil {
		meta.Width = cfg.Width
		meta.Height = cfg.Height
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("rewinding %q: %w", path, err)
	}

	_, err = imagemeta.Decode(imagemeta.Options{
		R:       f,
		Sources: imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			switch ti.Tag {
			case "Make", "Model", "Orientation", "DateTime", "DateTimeOriginal":
				return true
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			applyEXIFTag(meta, ti)
			return nil
		},
	})
	_ = err // no metadata block is fine for QC purposes
	return meta, nil
}

func applyEXIFTag(meta *models.ImageMetadata, ti imagemeta.TagInfo) {
	switch ti.Tag {
	case "Make":
		meta.CameraMake = strings.TrimSpace(fmt.Sprint(ti.Value))
	case "Model":
		meta.CameraModel = strings.TrimSpace(fmt.Sprint(ti.Value))
	case "Orientation":
		if n, err := strconv.Atoi(fmt.Sprint(ti.Value)); err == nil {
			meta.Orientation = n
		}
	case "DateTimeOriginal", "DateTime":
		if !meta.DateTaken.IsZero() && ti.Tag == "DateTime" {
			return // DateTimeOriginal wins
		}
		switch v := ti.Value.(type) {
		case time.Time:
			meta.DateTaken = v
		case string:
			if parsed, err := time.Parse("2006:01:02 15:04:05", v); err == nil {
				meta.DateTaken = parsed
			}
		}
	}
}
