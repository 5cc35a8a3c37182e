// Package locator resolves the single representative image inside a QC
// folder so analysis routines never hardcode a filename. A scan is one
// non-recursive directory read; the highest-priority format present
// wins, and ties inside a format go to the lexicographically smallest
// filename so repeated runs stay reproducible.
package locator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultDirectory is the conventional QC folder name.
const DefaultDirectory = "QCImages"

// Options configures a lookup. Zero values fall back to the defaults.
type Options struct {
	// Directory is the folder to scan. Defaults to DefaultDirectory.
	Directory string

	// FormatPriority is the preference order. Defaults to
	// TIFF > PNG > JPEG. The list is fixed for the duration of the
	// lookup and is never mutated.
	FormatPriority []Format
}

// DirectoryNotFoundError reports that the configured QC directory does
// not exist.
type DirectoryNotFoundError struct {
	Directory string
}

func (e *DirectoryNotFoundError) Error() string {
	return fmt.Sprintf("QC directory %q not found: create the directory and place an image in it", e.Directory)
}

// NoImageFoundError reports that the directory exists but holds no file
// of any accepted format.
type NoImageFoundError struct {
	Directory string
	Accepted  []string // accepted extensions, priority order
	Empty     bool     // directory had no entries at all
}

func (e *NoImageFoundError) Error() string {
	formats := strings.Join(e.Accepted, ", ")
	if e.Empty {
		return fmt.Sprintf("QC directory %q is empty: add an image file (accepted formats: %s)", e.Directory, formats)
	}
	return fmt.Sprintf("no usable image in QC directory %q (accepted formats: %s)", e.Directory, formats)
}

// Find resolves exactly one image path according to opts.
//
// The scan reads the directory's immediate contents once, groups
// regular files by recognized format, and walks the priority list: the
// first tier with at least one candidate yields the sorted-first
// filename. Later tiers are never inspected once a tier matches.
// Repeated calls against an unchanged directory return the identical
// path.
func Find(opts Options) (string, error) {
	dir := opts.Directory
	if dir == "" {
		dir = DefaultDirectory
	}
	priority := opts.FormatPriority
	if len(priority) == 0 {
		priority = DefaultPriority()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &DirectoryNotFoundError{Directory: dir}
		}
		return "", fmt.Errorf("reading QC directory %q: %w", dir, err)
	}

	byFormat := make(map[Format][]string)
	total := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		total++
		if format, ok := FormatOf(entry.Name()); ok {
			byFormat[format] = append(byFormat[format], entry.Name())
		}
	}

	for _, format := range priority {
		names := byFormat[format]
		if len(names) == 0 {
			continue
		}
		sort.Strings(names)
		return filepath.Join(dir, names[0]), nil
	}

	return "", &NoImageFoundError{
		Directory: dir,
		Accepted:  acceptedExtensions(priority),
		Empty:     total == 0,
	}
}

// FindIn resolves the QC image in dir using the given priority, or the
// default priority when none is given.
func FindIn(dir string, priority ...Format) (string, error) {
	return Find(Options{Directory: dir, FormatPriority: priority})
}
