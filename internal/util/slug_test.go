// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Travertine Slab", "travertine-slab"},
		{"accents", "Crème Marfil", "creme-marfil"},
		{"special chars", "granite (polished) #2", "granite-polished-2"},
		{"multiple spaces", "onyx   green", "onyx-green"},
		{"already slug", "black-galaxy", "black-galaxy"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugifyTransliteratesFarsi(t *testing.T) {
	got := Slugify("سنگ تراورتن")
	if got == "" {
		t.Fatal("Farsi input produced an empty slug")
	}
	if !IsValidSlug(got) {
		t.Errorf("Slugify produced invalid slug %q", got)
	}
}

func TestIsValidSlug(t *testing.T) {
	valid := []string{"hero-title", "a", "stone-2"}
	invalid := []string{"", "-lead", "trail-", "double--hyphen", "UPPER", "has space"}

	for _, s := range valid {
		if !IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidSlug(s) {
			t.Errorf("IsValidSlug(%q) = true, want false", s)
		}
	}
}
