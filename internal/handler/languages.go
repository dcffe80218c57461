// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/kanistone/stonecms/internal/i18n"
	"github.com/kanistone/stonecms/internal/model"
)

// LanguageResponse describes one storefront language for clients.
type LanguageResponse struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	Direction  string `json:"direction"`
	IsDefault  bool   `json:"is_default"`
}

// LanguagesResponse lists the storefront languages plus the one matched
// against the caller's Accept-Language header.
type LanguagesResponse struct {
	Languages []LanguageResponse `json:"languages"`
	Matched   string             `json:"matched"`
}

// Languages returns the supported storefront languages with their text
// direction, and resolves Accept-Language to the best supported match so the
// client can pick an initial language without its own BCP 47 logic.
// GET /api/admin/languages
func Languages(w http.ResponseWriter, r *http.Request) {
	languages := make([]LanguageResponse, 0, len(model.SiteLanguages))
	for _, site := range model.SiteLanguages {
		lang, ok := i18n.Lookup(site.Code)
		if !ok {
			continue
		}
		languages = append(languages, LanguageResponse{
			Code:       lang.Code,
			Name:       lang.Name,
			NativeName: lang.NativeName,
			Direction:  i18n.Direction(lang.Code),
			IsDefault:  lang.IsDefault,
		})
	}

	WriteSuccess(w, LanguagesResponse{
		Languages: languages,
		Matched:   i18n.Match(r.Header.Get("Accept-Language")),
	}, nil)
}
