package locator

import "testing"

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		format   Format
		ok       bool
	}{
		{"tif", "scan.tif", FormatTIFF, true},
		{"tiff", "scan.tiff", FormatTIFF, true},
		{"png", "chart.png", FormatPNG, true},
		{"jpg", "photo.jpg", FormatJPEG, true},
		{"jpeg", "photo.jpeg", FormatJPEG, true},
		{"uppercase", "PHOTO.JPG", FormatJPEG, true},
		{"webp", "pic.webp", FormatWebP, true},
		{"heic", "pic.heic", FormatHEIC, true},
		{"text file", "notes.txt", "", false},
		{"no extension", "README", "", false},
		{"dotfile", ".gitignore", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, ok := FormatOf(tt.filename)
			if ok != tt.ok {
				t.Fatalf("FormatOf(%q) ok = %v, want %v", tt.filename, ok, tt.ok)
			}
			if format != tt.format {
				t.Errorf("FormatOf(%q) = %v, want %v", tt.filename, format, tt.format)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in     string
		format Format
		ok     bool
	}{
		{"tiff", FormatTIFF, true},
		{"tif", FormatTIFF, true},
		{".tif", FormatTIFF, true},
		{"PNG", FormatPNG, true},
		{"jpg", FormatJPEG, true},
		{"jpeg", FormatJPEG, true},
		{" webp ", FormatWebP, true},
		{"heic", FormatHEIC, true},
		{"bmp", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		format, ok := ParseFormat(tt.in)
		if ok != tt.ok || format != tt.format {
			t.Errorf("ParseFormat(%q) = (%v, %v), want (%v, %v)", tt.in, format, ok, tt.format, tt.ok)
		}
	}
}

func TestDefaultPriority(t *testing.T) {
	priority := DefaultPriority()
	expected := []Format{FormatTIFF, FormatPNG, FormatJPEG}
	if len(priority) != len(expected) {
		t.Fatalf("expected %d formats, got %d", len(expected), len(priority))
	}
	for i, f := range expected {
		if priority[i] != f {
			t.Errorf("priority[%d] = %v, want %v", i, priority[i], f)
		}
	}
}

func TestAcceptedExtensionsOrder(t *testing.T) {
	exts := acceptedExtensions(DefaultPriority())
	expected := []string{".tif", ".tiff", ".png", ".jpg", ".jpeg"}
	if len(exts) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, exts)
	}
	for i := range expected {
		if exts[i] != expected[i] {
			t.Errorf("extension %d = %s, want %s", i, exts[i], expected[i])
		}
	}
}
