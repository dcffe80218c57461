// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kanistone/stonecms/internal/imaging"
	"github.com/kanistone/stonecms/internal/middleware"
	"github.com/kanistone/stonecms/internal/model"
	"github.com/kanistone/stonecms/internal/service"
	"github.com/kanistone/stonecms/internal/util"
)

// maxUploadSize limits section image uploads to 20 MB.
const maxUploadSize = 20 << 20

// MediaHandler handles image uploads backing the media_url field of content
// sections.
type MediaHandler struct {
	processor    *imaging.Processor
	eventService *service.EventService
}

// NewMediaHandler creates a new MediaHandler storing files under uploadsDir.
func NewMediaHandler(db *sql.DB, uploadsDir string) *MediaHandler {
	return &MediaHandler{
		processor:    imaging.NewProcessor(uploadsDir),
		eventService: service.NewEventService(db),
	}
}

// MediaUploadResponse describes a processed upload.
type MediaUploadResponse struct {
	UUID     string            `json:"uuid"`
	Filename string            `json:"filename"`
	URL      string            `json:"url"`
	MimeType string            `json:"mime_type"`
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	Size     int64             `json:"size"`
	Variants map[string]string `json:"variants,omitempty"`
}

// Upload accepts a multipart image, normalizes it, and creates the standard
// variants. The returned URL is what editors paste into media_url.
// POST /api/admin/media
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteBadRequest(w, "Invalid or oversized multipart body", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "Missing file field", nil)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read upload", "error", err)
		WriteInternalError(w, "Failed to read upload")
		return
	}

	mimeType := h.processor.DetectMimeType(data)
	if !h.processor.IsSupportedType(mimeType) {
		WriteValidationError(w, map[string]string{"file": "Unsupported file type: " + mimeType})
		return
	}

	id := uuid.New().String()
	filename := safeUploadName(header.Filename)

	result, err := h.processor.ProcessImage(bytes.NewReader(data), id, filename)
	if err != nil {
		slog.Error("image processing failed", "error", err, "filename", filename)
		WriteValidationError(w, map[string]string{"file": "Could not process image"})
		return
	}

	variants := map[string]string{}
	variantResults, err := h.processor.CreateAllVariants(result.FilePath, id, filename)
	if err != nil {
		// Original is already saved; log and continue without variants
		slog.Warn("variant creation failed", "error", err, "uuid", id)
	}
	for _, v := range variantResults {
		variants[v.Type] = path.Join("/uploads", v.Type, id, filename)
	}

	_ = h.eventService.Log(r.Context(), model.EventLevelInfo, model.EventCategoryMedia,
		"Media uploaded", middleware.GetUserIDPtr(r), r, map[string]any{
			"uuid":      id,
			"filename":  filename,
			"mime_type": result.MimeType,
			"size":      result.Size,
		})

	WriteCreated(w, MediaUploadResponse{
		UUID:     id,
		Filename: filename,
		URL:      path.Join("/uploads", "originals", id, filename),
		MimeType: result.MimeType,
		Width:    result.Width,
		Height:   result.Height,
		Size:     result.Size,
		Variants: variants,
	})
}

// safeUploadName slugifies the base name and keeps the original extension.
func safeUploadName(original string) string {
	base := filepath.Base(original)
	ext := strings.ToLower(filepath.Ext(base))
	stem := util.Slugify(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "upload"
	}
	return stem + ext
}
