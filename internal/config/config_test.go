// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
)

const testSecret = "Vt9#mK2pQ8xL5nR7wB4jH6cF3dG1sA0z"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STONECMS_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DBPath != "./data/stonecms.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d", cfg.ServerPort)
	}
	if cfg.DefaultLanguage != "en" {
		t.Errorf("DefaultLanguage = %q", cfg.DefaultLanguage)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development mode by default")
	}
	if cfg.UseRedisCache() {
		t.Error("redis cache should be off without a URL")
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr())
	}
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("STONECMS_SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when session secret is missing")
	}
}

func TestLoadShortSecret(t *testing.T) {
	t.Setenv("STONECMS_SESSION_SECRET", "too-short")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for short session secret")
	}
	if !strings.Contains(err.Error(), "at least 32 bytes") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadWeakSecretRejected(t *testing.T) {
	t.Setenv("STONECMS_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Fatal("expected known default secret to be rejected")
	}
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("STONECMS_SESSION_SECRET", testSecret)
	t.Setenv("STONECMS_CORS_ORIGINS", "https://kanistone.com,https://www.kanistone.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://kanistone.com" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	if hasMinimumEntropy("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa") {
		t.Error("single character class should fail entropy check")
	}
	if !hasMinimumEntropy(testSecret) {
		t.Error("mixed-class secret should pass entropy check")
	}
}
