// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Language text directions
const (
	DirectionLTR = "ltr"
	DirectionRTL = "rtl"
)

// Language represents a storefront content language.
type Language struct {
	Code       string `json:"code"`        // ISO 639-1: en, fa
	Name       string `json:"name"`        // English, Persian
	NativeName string `json:"native_name"` // English, فارسی
	IsDefault  bool   `json:"is_default"`
	Direction  string `json:"direction"` // ltr, rtl
}

// IsRTL returns true if the language is right-to-left.
func (l *Language) IsRTL() bool {
	return l.Direction == DirectionRTL
}

// SiteLanguages lists the languages the storefront ships with.
// English is the default; Farsi is the second storefront language.
var SiteLanguages = []Language{
	{Code: "en", Name: "English", NativeName: "English", IsDefault: true, Direction: DirectionLTR},
	{Code: "fa", Name: "Persian", NativeName: "فارسی", IsDefault: false, Direction: DirectionRTL},
}
