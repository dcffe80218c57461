// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartUpload(t *testing.T, fieldName, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func testJPEGBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestMediaUpload(t *testing.T) {
	db := testDB(t)
	uploads := t.TempDir()
	h := NewMediaHandler(db, uploads)

	body, contentType := multipartUpload(t, "file", "Travertine Slab.jpg", testJPEGBytes(t, 640, 480))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/media", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	resp := unmarshalData[MediaUploadResponse](t, w)

	assert.NotEmpty(t, resp.UUID)
	assert.Equal(t, "travertine-slab.jpg", resp.Filename)
	assert.Equal(t, "/uploads/originals/"+resp.UUID+"/travertine-slab.jpg", resp.URL)
	assert.Equal(t, "image/jpeg", resp.MimeType)
	assert.Equal(t, 640, resp.Width)
	assert.Equal(t, 480, resp.Height)

	// File landed under the uploads dir
	_, err := os.Stat(uploads + "/originals/" + resp.UUID + "/travertine-slab.jpg")
	assert.NoError(t, err)

	// Source is larger than the thumb target, so a thumb variant exists
	assert.Contains(t, resp.Variants, "thumb")
}

func TestMediaUploadRejectsNonImage(t *testing.T) {
	db := testDB(t)
	h := NewMediaHandler(db, t.TempDir())

	body, contentType := multipartUpload(t, "file", "notes.txt", []byte("just text"))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/media", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "validation_error", unmarshalError(t, w).Code)
}

func TestMediaUploadMissingFile(t *testing.T) {
	db := testDB(t)
	h := NewMediaHandler(db, t.TempDir())

	body, contentType := multipartUpload(t, "wrong_field", "x.jpg", testJPEGBytes(t, 10, 10))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/media", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
