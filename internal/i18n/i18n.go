// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package i18n resolves storefront content languages. The site ships
// English (default) and Farsi; matching against Accept-Language headers
// uses golang.org/x/text's BCP 47 matcher.
package i18n

import (
	"golang.org/x/text/language"

	"github.com/kanistone/stonecms/internal/model"
)

var (
	supported = []language.Tag{
		language.English, // first tag is the matcher fallback
		language.Persian,
	}
	matcher = language.NewMatcher(supported)

	codes = map[string]model.Language{}
)

func init() {
	for _, l := range model.SiteLanguages {
		codes[l.Code] = l
	}
}

// IsSupported reports whether code is a storefront language.
func IsSupported(code string) bool {
	_, ok := codes[code]
	return ok
}

// Lookup returns the language descriptor for code.
func Lookup(code string) (model.Language, bool) {
	l, ok := codes[code]
	return l, ok
}

// Direction returns "rtl" or "ltr" for a language code, defaulting to ltr.
func Direction(code string) string {
	if l, ok := codes[code]; ok {
		return l.Direction
	}
	return model.DirectionLTR
}

// Match resolves an Accept-Language header value to a supported language
// code. Returns the default language when nothing matches.
func Match(acceptLanguage string) string {
	if acceptLanguage == "" {
		return model.DefaultLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return model.DefaultLanguage
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return model.DefaultLanguage
	}
	base, _ := supported[idx].Base()
	if IsSupported(base.String()) {
		return base.String()
	}
	return model.DefaultLanguage
}
