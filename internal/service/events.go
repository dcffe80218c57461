// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds application services shared by handlers.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/kanistone/stonecms/internal/store"
)

// EventService writes audit events for auth and content operations.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{queries: store.New(db)}
}

// Log writes one event row. Metadata is marshalled to JSON; failures are
// logged and swallowed so auditing never breaks the request path.
func (s *EventService) Log(ctx context.Context, level, category, message string, userID *int64, r *http.Request, metadata map[string]any) error {
	meta := "{}"
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			slog.Warn("event metadata marshal failed", "error", err)
		} else {
			meta = string(raw)
		}
	}

	var ip, agent string
	if r != nil {
		ip = ClientIP(r)
		agent = summarizeUserAgent(r.UserAgent())
	}

	return s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    userID,
		IP:        ip,
		UserAgent: agent,
		Metadata:  meta,
		CreatedAt: time.Now(),
	})
}

// ClientIP extracts the client IP from the request, honoring the usual
// reverse-proxy headers.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple IPs; take the first one
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	return r.RemoteAddr
}

// summarizeUserAgent reduces a raw User-Agent header to "Browser/Version (OS)"
// so the event log stays readable.
func summarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.Parse(raw)
	if ua.Name == "" {
		return raw
	}
	if ua.OS == "" {
		return fmt.Sprintf("%s/%s", ua.Name, ua.Version)
	}
	return fmt.Sprintf("%s/%s (%s)", ua.Name, ua.Version, ua.OS)
}
