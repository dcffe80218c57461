// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render converts stored section content into safe HTML for the
// storefront. Markdown sections go through goldmark; everything that
// claims to be HTML is sanitized with bluemonday before it leaves the API.
package render

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/kanistone/stonecms/internal/model"
)

// htmlSanitizer strips unsafe markup from rendered output.
// UGCPolicy allows the usual user-generated-content tags and attributes.
var htmlSanitizer = bluemonday.UGCPolicy()

// markdown is the shared goldmark instance. Hard wraps keep editor line
// breaks visible, which is what inline editors expect.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// SectionHTML renders one content section to sanitized HTML according to
// its section type. Plain text and image sections return ""; the client
// renders those from the raw fields.
func SectionHTML(s model.ContentSection) (string, error) {
	switch s.SectionType {
	case model.SectionTypeMarkdown:
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(s.Content), &buf); err != nil {
			return "", fmt.Errorf("rendering markdown: %w", err)
		}
		return htmlSanitizer.Sanitize(buf.String()), nil
	case model.SectionTypeHTML:
		return htmlSanitizer.Sanitize(s.Content), nil
	default:
		return "", nil
	}
}

// SanitizeHTML strips unsafe markup from an HTML fragment.
func SanitizeHTML(fragment string) string {
	return htmlSanitizer.Sanitize(fragment)
}
