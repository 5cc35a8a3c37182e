package locator

import (
	"path/filepath"
	"strings"
)

// Format identifies a recognized QC image format.
type Format string

const (
	FormatTIFF Format = "tiff"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"

	// FormatWebP and FormatHEIC are never part of the default priority;
	// callers opt in by listing them explicitly.
	FormatWebP Format = "webp"
	FormatHEIC Format = "heic"
)

// formatExtensions maps each format to its accepted file extensions,
// lowercase with leading dot.
var formatExtensions = map[Format][]string{
	FormatTIFF: {".tif", ".tiff"},
	FormatPNG:  {".png"},
	FormatJPEG: {".jpg", ".jpeg"},
	FormatWebP: {".webp"},
	FormatHEIC: {".heic"},
}

// DefaultPriority is the documented format preference for QC analysis:
// TIFF carries the most fidelity, then PNG, then JPEG.
func DefaultPriority() []Format {
	return []Format{FormatTIFF, FormatPNG, FormatJPEG}
}

// Extensions returns the accepted file extensions for the format,
// or nil for an unknown format tag.
func (f Format) Extensions() []string {
	exts := formatExtensions[f]
	out := make([]string, len(exts))
	copy(out, exts)
	return out
}

// Valid reports whether the format is a recognized tag.
func (f Format) Valid() bool {
	_, ok := formatExtensions[f]
	return ok
}

func (f Format) String() string {
	return string(f)
}

// FormatOf detects the format of a filename by extension,
// case-insensitive. The second return value is false when the
// extension is not recognized.
func FormatOf(name string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	for format, exts := range formatExtensions {
		for _, e := range exts {
			if ext == e {
				return format, true
			}
		}
	}
	return "", false
}

// ParseFormat converts a user-supplied tag or extension ("tiff", "tif",
// ".jpg", "JPEG") into a Format.
func ParseFormat(s string) (Format, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, ".")
	if f := Format(s); f.Valid() {
		return f, true
	}
	switch s {
	case "tif":
		return FormatTIFF, true
	case "jpg":
		return FormatJPEG, true
	}
	return "", false
}

// acceptedExtensions flattens a priority list into the extension list
// used in error messages, in priority order.
func acceptedExtensions(priority []Format) []string {
	var exts []string
	for _, f := range priority {
		exts = append(exts, f.Extensions()...)
	}
	return exts
}
