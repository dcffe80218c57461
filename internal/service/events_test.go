// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kanistone/stonecms/internal/model"
	"github.com/kanistone/stonecms/internal/store"
	"github.com/kanistone/stonecms/internal/testutil"
)

func TestEventServiceLog(t *testing.T) {
	db := testutil.TestDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	req := httptest.NewRequest("POST", "/api/admin/auth/login", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("X-Real-IP", "203.0.113.7")

	userID := int64(1)
	err := svc.Log(ctx, model.EventLevelInfo, model.EventCategoryAuth, "User logged in",
		&userID, req, map[string]any{"username": "admin"})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}

	events, err := store.New(db).ListRecentEvents(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	e := events[0]
	if e.IP != "203.0.113.7" {
		t.Errorf("IP = %q", e.IP)
	}
	if !strings.HasPrefix(e.UserAgent, "Chrome/") {
		t.Errorf("user agent not summarized: %q", e.UserAgent)
	}
	if !strings.Contains(e.Metadata, `"username":"admin"`) {
		t.Errorf("metadata = %q", e.Metadata)
	}
	if !e.UserID.Valid || e.UserID.Int64 != 1 {
		t.Errorf("user id = %+v", e.UserID)
	}
}

func TestClientIPFallback(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if ip := ClientIP(req); ip != "192.0.2.1:1234" {
		t.Errorf("ClientIP = %q", ip)
	}

	req.Header.Set("X-Forwarded-For", "198.51.100.2")
	if ip := ClientIP(req); ip != "198.51.100.2" {
		t.Errorf("ClientIP = %q", ip)
	}
}

func TestClientIPMultiHopForwardedFor(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.2, 203.0.113.9, 10.0.0.1")
	if ip := ClientIP(req); ip != "198.51.100.2" {
		t.Errorf("ClientIP = %q, want first hop", ip)
	}

	req.Header.Set("X-Forwarded-For", "  198.51.100.7  ")
	if ip := ClientIP(req); ip != "198.51.100.7" {
		t.Errorf("ClientIP = %q, want trimmed", ip)
	}
}
