// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanistone/stonecms/internal/model"
)

func TestLanguagesListsSiteLanguages(t *testing.T) {
	w := httptest.NewRecorder()
	Languages(w, httptest.NewRequest(http.MethodGet, "/api/admin/languages", nil))

	require.Equal(t, http.StatusOK, w.Code)
	resp := unmarshalData[LanguagesResponse](t, w)
	require.Len(t, resp.Languages, len(model.SiteLanguages))

	byCode := map[string]LanguageResponse{}
	for _, l := range resp.Languages {
		byCode[l.Code] = l
	}

	en, ok := byCode["en"]
	require.True(t, ok)
	assert.Equal(t, model.DirectionLTR, en.Direction)
	assert.True(t, en.IsDefault)

	fa, ok := byCode["fa"]
	require.True(t, ok)
	assert.Equal(t, model.DirectionRTL, fa.Direction)
	assert.Equal(t, "فارسی", fa.NativeName)

	// No Accept-Language header falls back to the default
	assert.Equal(t, model.DefaultLanguage, resp.Matched)
}

func TestLanguagesMatchesAcceptLanguage(t *testing.T) {
	t.Run("farsi preference", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/languages", nil)
		req.Header.Set("Accept-Language", "fa-IR,fa;q=0.9,en;q=0.5")
		w := httptest.NewRecorder()
		Languages(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		resp := unmarshalData[LanguagesResponse](t, w)
		assert.Equal(t, "fa", resp.Matched)
	})

	t.Run("unsupported language falls back to the default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/languages", nil)
		req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
		w := httptest.NewRecorder()
		Languages(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		resp := unmarshalData[LanguagesResponse](t, w)
		assert.Equal(t, model.DefaultLanguage, resp.Matched)
	})
}
