// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Section types classify how a section's content is interpreted.
const (
	SectionTypeText     = "text"
	SectionTypeMarkdown = "markdown"
	SectionTypeHTML     = "html"
	SectionTypeImage    = "image"
)

// DefaultLanguage is the language assumed when a caller omits one.
const DefaultLanguage = "en"

// ContentKey identifies one editable region of one page in one language.
// It replaces the string-concatenated "page_section_lang" keys of the old
// storefront with a comparable struct usable as a map key.
type ContentKey struct {
	Page     string
	Section  string
	Language string
}

// NewContentKey builds a key, defaulting the language to DefaultLanguage.
func NewContentKey(page, section, language string) ContentKey {
	if language == "" {
		language = DefaultLanguage
	}
	return ContentKey{Page: page, Section: section, Language: language}
}

// ContentSection is one persisted editable region.
// Uniqueness invariant: at most one row per (page_name, section_key, language).
type ContentSection struct {
	ID          int64     `json:"id"`
	PageName    string    `json:"page_name"`
	SectionKey  string    `json:"section_key"`
	Language    string    `json:"language"`
	Content     string    `json:"content"`
	Title       string    `json:"title,omitempty"`
	MediaURL    string    `json:"media_url,omitempty"`
	SectionType string    `json:"section_type"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Key returns the composite content key for the section.
func (s *ContentSection) Key() ContentKey {
	return NewContentKey(s.PageName, s.SectionKey, s.Language)
}

// IsValidSectionType reports whether t is a known section type.
func IsValidSectionType(t string) bool {
	switch t {
	case SectionTypeText, SectionTypeMarkdown, SectionTypeHTML, SectionTypeImage:
		return true
	}
	return false
}
