package repository

import "errors"

var (
	// ErrReportNotFound indicates no report exists for the given ID
	ErrReportNotFound = errors.New("QC report not found")

	// ErrMetadataUnsupported indicates the format carries no readable
	// metadata block
	ErrMetadataUnsupported = errors.New("metadata not supported for this format")
)
