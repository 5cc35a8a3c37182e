package repository

import (
	"image"

	"github.com/photoqc/photoqc-go/pkg/models"
)

// ImageRepository resolves and loads the QC image for analysis.
type ImageRepository interface {
	// ResolveImage returns the path of the representative QC image
	// without decoding it.
	ResolveImage() (string, error)

	// LoadImage resolves and decodes the QC image.
	LoadImage() (image.Image, string, error)

	// GetImageMetadata reads file-level metadata (format, size, EXIF)
	// for the image at path without a full pixel decode.
	GetImageMetadata(path string) (*models.ImageMetadata, error)
}

// HistoryRepository persists QC reports so re-runs can be compared over
// time.
type HistoryRepository interface {
	// SaveReport stores a report, assigning an ID when it has none.
	SaveReport(report *models.QCReport) error

	// GetReport retrieves a stored report by ID.
	GetReport(id string) (*models.QCReport, error)

	// ListReports returns all stored reports, oldest first.
	ListReports() ([]*models.QCReport, error)

	// ListReportsByDirectory returns the reports recorded for one QC
	// directory, oldest first.
	ListReportsByDirectory(directory string) ([]*models.QCReport, error)

	// Close releases the underlying store.
	Close() error
}
