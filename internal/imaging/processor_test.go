// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodeTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createTestImage(width, height), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProcessorIsSupportedType(t *testing.T) {
	p := NewProcessor(t.TempDir())

	tests := []struct {
		mimeType string
		want     bool
	}{
		{MimeTypeJPEG, true},
		{MimeTypePNG, true},
		{MimeTypeGIF, true},
		{MimeTypeWebP, true},
		{"application/pdf", false},
		{"application/octet-stream", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			if got := p.IsSupportedType(tt.mimeType); got != tt.want {
				t.Errorf("IsSupportedType(%q) = %v, want %v", tt.mimeType, got, tt.want)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg magic bytes", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png magic bytes", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"gif magic bytes", []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}, "gif"},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.want {
				t.Errorf("detectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFormatFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"travertine.jpg", "jpeg"},
		{"travertine.jpeg", "jpeg"},
		{"travertine.JPG", "jpeg"},
		{"facade.png", "png"},
		{"sample.gif", "gif"},
		{"sample.webp", "webp"},
		{"noextension", "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := detectFormatFromFilename(tt.filename); got != tt.want {
				t.Errorf("detectFormatFromFilename(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestProcessImage(t *testing.T) {
	p := NewProcessor(t.TempDir())
	data := encodeTestJPEG(t, 100, 80)

	result, err := p.ProcessImage(bytes.NewReader(data), "test-uuid", "slab.jpg")
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}

	if result.Width != 100 || result.Height != 80 {
		t.Errorf("dimensions = %dx%d, want 100x80", result.Width, result.Height)
	}
	if result.MimeType != MimeTypeJPEG {
		t.Errorf("MimeType = %q", result.MimeType)
	}
	if result.Size == 0 {
		t.Error("Size = 0")
	}
}

func TestProcessImageRejectsUnknownFormat(t *testing.T) {
	p := NewProcessor(t.TempDir())

	_, err := p.ProcessImage(bytes.NewReader([]byte{0x00, 0x01, 0x02, 0x03}), "test-uuid", "junk.bin")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestCreateVariantCropsThumb(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)
	data := encodeTestJPEG(t, 1200, 900)

	original, err := p.ProcessImage(bytes.NewReader(data), "test-uuid", "slab.jpg")
	if err != nil {
		t.Fatal(err)
	}

	thumb, err := p.CreateVariant(original.FilePath, "test-uuid", "slab.jpg", Variants["thumb"], "thumb")
	if err != nil {
		t.Fatalf("CreateVariant: %v", err)
	}
	if thumb == nil {
		t.Fatal("thumb variant skipped")
	}
	if thumb.Width != 480 || thumb.Height != 360 {
		t.Errorf("thumb = %dx%d, want 480x360", thumb.Width, thumb.Height)
	}
}

func TestCreateVariantSkipsSmallSource(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)
	data := encodeTestJPEG(t, 200, 150)

	original, err := p.ProcessImage(bytes.NewReader(data), "test-uuid", "slab.jpg")
	if err != nil {
		t.Fatal(err)
	}

	large, err := p.CreateVariant(original.FilePath, "test-uuid", "slab.jpg", Variants["large"], "large")
	if err != nil {
		t.Fatal(err)
	}
	if large != nil {
		t.Errorf("expected small source to skip large variant, got %+v", large)
	}
}

func TestSaveImageFileRejectsTraversal(t *testing.T) {
	p := NewProcessor(t.TempDir())

	if _, err := p.saveImageFile("../outside", "slab.jpg", []byte("x")); err == nil {
		t.Error("expected traversal rejection for subdir")
	}
	if _, err := p.saveImageFile("originals/u", "..", []byte("x")); err == nil {
		t.Error("expected rejection for invalid filename")
	}
}
