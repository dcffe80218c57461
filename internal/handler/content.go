// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/kanistone/stonecms/internal/cache"
	"github.com/kanistone/stonecms/internal/i18n"
	"github.com/kanistone/stonecms/internal/middleware"
	"github.com/kanistone/stonecms/internal/model"
	"github.com/kanistone/stonecms/internal/render"
	"github.com/kanistone/stonecms/internal/service"
	"github.com/kanistone/stonecms/internal/store"
)

// ContentHandler serves the page-content collection that the storefront
// renders and the in-place editor writes to.
type ContentHandler struct {
	queries      *store.Queries
	contentCache *cache.ContentCache
	eventService *service.EventService
}

// NewContentHandler creates a new ContentHandler. contentCache may be nil,
// in which case every read hits the database.
func NewContentHandler(db *sql.DB, contentCache *cache.ContentCache) *ContentHandler {
	return &ContentHandler{
		queries:      store.New(db),
		contentCache: contentCache,
		eventService: service.NewEventService(db),
	}
}

// ContentSectionResponse is a content row plus its server-rendered HTML for
// markdown and html section types.
type ContentSectionResponse struct {
	model.ContentSection
	RenderedHTML string `json:"rendered_html,omitempty"`
}

func toResponse(s model.ContentSection) ContentSectionResponse {
	resp := ContentSectionResponse{ContentSection: s}
	html, err := render.SectionHTML(s)
	if err != nil {
		slog.Error("section render failed", "id", s.ID, "error", err)
	} else {
		resp.RenderedHTML = html
	}
	return resp
}

// List returns published content sections, optionally filtered by
// ?page= and ?language=. This route is public; the storefront calls it on
// every page load, so results are cached per filter.
// GET /api/admin/page-content
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	language := r.URL.Query().Get("language")
	if language != "" && !i18n.IsSupported(language) {
		WriteBadRequest(w, "Unsupported language", map[string]string{"language": language})
		return
	}

	var sections []model.ContentSection
	if h.contentCache != nil {
		if cached, ok := h.contentCache.Get(r.Context(), page, language); ok {
			writeSectionList(w, cached)
			return
		}
	}

	sections, err := h.queries.ListContentSectionsByPage(r.Context(), store.ListContentSectionsByPageParams{
		PageName: page,
		Language: language,
	})
	if err != nil {
		slog.Error("failed to list content sections", "error", err)
		WriteInternalError(w, "Failed to list content")
		return
	}

	published := sections[:0]
	for _, s := range sections {
		if s.IsPublished {
			published = append(published, s)
		}
	}

	if h.contentCache != nil {
		h.contentCache.Set(r.Context(), page, language, published)
	}

	writeSectionList(w, published)
}

func writeSectionList(w http.ResponseWriter, sections []model.ContentSection) {
	items := make([]ContentSectionResponse, 0, len(sections))
	for _, s := range sections {
		items = append(items, toResponse(s))
	}
	WriteSuccess(w, items, &Meta{Total: int64(len(items))})
}

// createContentRequest is the JSON body for creating a content section.
type createContentRequest struct {
	PageName    string `json:"page_name"`
	SectionKey  string `json:"section_key"`
	Language    string `json:"language"`
	Content     string `json:"content"`
	Title       string `json:"title"`
	MediaURL    string `json:"media_url"`
	SectionType string `json:"section_type"`
	IsPublished *bool  `json:"is_published"`
}

// Create inserts a new content section. Language defaults to "en",
// section_type to "text", is_published to true.
// POST /api/admin/page-content
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	fieldErrors := map[string]string{}
	if req.PageName == "" {
		fieldErrors["page_name"] = "Page name is required"
	}
	if req.SectionKey == "" {
		fieldErrors["section_key"] = "Section key is required"
	}
	if req.Language == "" {
		req.Language = model.DefaultLanguage
	} else if !i18n.IsSupported(req.Language) {
		fieldErrors["language"] = "Unsupported language"
	}
	if req.SectionType == "" {
		req.SectionType = model.SectionTypeText
	} else if !model.IsValidSectionType(req.SectionType) {
		fieldErrors["section_type"] = "Invalid section type"
	}
	if len(fieldErrors) > 0 {
		WriteValidationError(w, fieldErrors)
		return
	}

	key := model.NewContentKey(req.PageName, req.SectionKey, req.Language)
	count, err := h.queries.CountContentSectionsByKey(r.Context(), key)
	if err != nil {
		slog.Error("failed to check content key", "error", err)
		WriteInternalError(w, "Failed to create content")
		return
	}
	if count > 0 {
		WriteValidationError(w, map[string]string{
			"section_key": "A section already exists for this page, key, and language",
		})
		return
	}

	isPublished := true
	if req.IsPublished != nil {
		isPublished = *req.IsPublished
	}

	now := time.Now()
	section, err := h.queries.CreateContentSection(r.Context(), store.CreateContentSectionParams{
		PageName:    req.PageName,
		SectionKey:  req.SectionKey,
		Language:    req.Language,
		Content:     req.Content,
		Title:       req.Title,
		MediaURL:    req.MediaURL,
		SectionType: req.SectionType,
		IsPublished: isPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		slog.Error("failed to create content section", "error", err)
		WriteInternalError(w, "Failed to create content")
		return
	}

	h.invalidate(r)
	_ = h.eventService.Log(r.Context(), model.EventLevelInfo, model.EventCategoryContent,
		"Content section created", middleware.GetUserIDPtr(r), r, map[string]any{
			"page_name":   section.PageName,
			"section_key": section.SectionKey,
			"language":    section.Language,
		})

	WriteCreated(w, toResponse(section))
}

// updateContentRequest is the JSON body for a partial content update.
// Pointer fields distinguish "not sent" from zero values.
type updateContentRequest struct {
	Content     *string `json:"content"`
	Title       *string `json:"title"`
	MediaURL    *string `json:"media_url"`
	SectionType *string `json:"section_type"`
	IsPublished *bool   `json:"is_published"`
}

// Update applies a partial update to one content section by id.
// PATCH /api/admin/page-content/{id}
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid content ID", nil)
		return
	}

	existing, err := h.queries.GetContentSectionByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Content section not found")
		} else {
			slog.Error("failed to load content section", "error", err, "id", id)
			WriteInternalError(w, "Failed to update content")
		}
		return
	}

	var req updateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if req.SectionType != nil && !model.IsValidSectionType(*req.SectionType) {
		WriteValidationError(w, map[string]string{"section_type": "Invalid section type"})
		return
	}

	// Merge the patch over the stored row
	params := store.UpdateContentSectionParams{
		Content:     existing.Content,
		Title:       existing.Title,
		MediaURL:    existing.MediaURL,
		SectionType: existing.SectionType,
		IsPublished: existing.IsPublished,
		UpdatedAt:   time.Now(),
		ID:          existing.ID,
	}
	if req.Content != nil {
		params.Content = *req.Content
	}
	if req.Title != nil {
		params.Title = *req.Title
	}
	if req.MediaURL != nil {
		params.MediaURL = *req.MediaURL
	}
	if req.SectionType != nil {
		params.SectionType = *req.SectionType
	}
	if req.IsPublished != nil {
		params.IsPublished = *req.IsPublished
	}

	section, err := h.queries.UpdateContentSection(r.Context(), params)
	if err != nil {
		slog.Error("failed to update content section", "error", err, "id", id)
		WriteInternalError(w, "Failed to update content")
		return
	}

	h.invalidate(r)
	_ = h.eventService.Log(r.Context(), model.EventLevelInfo, model.EventCategoryContent,
		"Content section updated", middleware.GetUserIDPtr(r), r, map[string]any{
			"page_name":   section.PageName,
			"section_key": section.SectionKey,
			"language":    section.Language,
		})

	WriteSuccess(w, toResponse(section), nil)
}

func (h *ContentHandler) invalidate(r *http.Request) {
	if h.contentCache != nil {
		h.contentCache.Invalidate(r.Context())
	}
}
