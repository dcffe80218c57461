// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editor is the client SDK for the in-place content editor. It keeps
// per-tab editing state (edit mode, auth, a typed-key content cache) and
// talks to the admin API over a cookie-backed session.
package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/kanistone/stonecms/internal/model"
)

// contentRecord is the wire shape of one content section as served by the
// page-content route.
type contentRecord struct {
	ID           int64  `json:"id"`
	PageName     string `json:"page_name"`
	SectionKey   string `json:"section_key"`
	Language     string `json:"language"`
	Content      string `json:"content"`
	Title        string `json:"title"`
	MediaURL     string `json:"media_url"`
	SectionType  string `json:"section_type"`
	RenderedHTML string `json:"rendered_html"`
}

// apiEnvelope wraps successful responses from the admin API.
type apiEnvelope[T any] struct {
	Data T `json:"data"`
}

// apiError is the error envelope of the admin API.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Subscriber receives the full content snapshot after every refresh.
type Subscriber func(records []model.ContentSection)

// Client holds the editing state for one browser tab equivalent. All state
// is explicit and injected; there are no package-level globals.
type Client struct {
	baseURL    string
	httpClient *http.Client
	notices    *NoticeFeed

	mu            sync.RWMutex
	editMode      bool
	authenticated bool
	admin         bool
	content       map[model.ContentKey]contentRecord
	subscribers   map[int]Subscriber
	nextSubID     int
}

// NewClient creates a Client for the API at baseURL. The underlying HTTP
// client carries a cookie jar so the session survives across calls.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
		notices:     NewNoticeFeed(),
		content:     make(map[model.ContentKey]contentRecord),
		subscribers: make(map[int]Subscriber),
	}, nil
}

// Notices exposes the client's notice feed for the UI.
func (c *Client) Notices() *NoticeFeed {
	return c.notices
}

// IsEditMode reports whether in-place editing is active.
func (c *Client) IsEditMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.editMode
}

// IsAuthenticated reports whether the client holds an authenticated session.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

// IsAdmin reports whether the session user is an admin.
func (c *Client) IsAdmin() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.admin
}

// ToggleEditMode flips edit mode. Unauthenticated clients get an
// auth-required notice and the flag stays off; edit mode is a pure UI
// affordance and is never trusted by the server.
func (c *Client) ToggleEditMode() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.authenticated {
		c.notices.Push(NoticeAuthRequired, "Sign in to edit page content")
		return
	}
	c.editMode = !c.editMode
}

// Login authenticates against the admin API. On success the auth state is
// set from the returned user projection.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	var user model.PublicUser
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/auth/login", body, &user); err != nil {
		c.notices.Push(NoticeError, "Login failed: "+err.Error())
		return err
	}

	c.mu.Lock()
	c.authenticated = true
	c.admin = user.IsAdmin
	c.mu.Unlock()

	c.notices.Push(NoticeSuccess, "Signed in as "+user.Username)
	return nil
}

// Logout ends the session. Local auth and edit state are always reset, even
// if the HTTP call fails; a dead server must not trap the UI in edit mode.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/api/admin/auth/logout", nil, nil)
	if err != nil {
		slog.Warn("logout request failed", "error", err)
	}

	c.mu.Lock()
	c.authenticated = false
	c.admin = false
	c.editMode = false
	c.mu.Unlock()

	return err
}

// CheckAuth asks the server who the session belongs to and updates local
// auth state accordingly. Used on startup to restore a previous session.
func (c *Client) CheckAuth(ctx context.Context) bool {
	var user model.PublicUser
	err := c.doJSON(ctx, http.MethodGet, "/api/admin/auth/me", nil, &user)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.authenticated = false
		c.admin = false
		c.editMode = false
		return false
	}
	c.authenticated = true
	c.admin = user.IsAdmin
	return true
}

// GetContent returns the cached content for a key. It never performs network
// I/O; an empty language defaults to "en". The second return is false when
// the key is absent or its stored content is empty.
func (c *Client) GetContent(page, section, language string) (string, bool) {
	key := model.NewContentKey(page, section, language)

	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.content[key]
	if !ok || rec.Content == "" {
		return "", false
	}
	return rec.Content, true
}

// Subscribe registers a subscriber that is called with the full snapshot
// after every refresh. The returned function removes the subscription.
func (c *Client) Subscribe(fn Subscriber) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// Refresh fetches the whole content collection, replaces the cache, and
// republishes to subscribers. Invalidation is explicit: writes call Refresh
// rather than patching the cache in place.
func (c *Client) Refresh(ctx context.Context) error {
	var records []contentRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/page-content", nil, &records); err != nil {
		return fmt.Errorf("failed to refresh content: %w", err)
	}

	snapshot := make([]model.ContentSection, 0, len(records))
	next := make(map[model.ContentKey]contentRecord, len(records))
	for _, rec := range records {
		next[model.NewContentKey(rec.PageName, rec.SectionKey, rec.Language)] = rec
		snapshot = append(snapshot, model.ContentSection{
			ID:          rec.ID,
			PageName:    rec.PageName,
			SectionKey:  rec.SectionKey,
			Language:    rec.Language,
			Content:     rec.Content,
			Title:       rec.Title,
			MediaURL:    rec.MediaURL,
			SectionType: rec.SectionType,
		})
	}

	c.mu.Lock()
	c.content = next
	subs := make([]Subscriber, 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return nil
}

// LanguageInfo describes one site language as served by the languages route.
type LanguageInfo struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	Direction  string `json:"direction"`
	IsDefault  bool   `json:"is_default"`
}

// Languages fetches the supported site languages plus the server's best
// match for this client's Accept-Language. The editing UI reads the
// direction field to switch between LTR and RTL rendering.
func (c *Client) Languages(ctx context.Context) ([]LanguageInfo, string, error) {
	var out struct {
		Languages []LanguageInfo `json:"languages"`
		Matched   string         `json:"matched"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/languages", nil, &out); err != nil {
		return nil, "", err
	}
	return out.Languages, out.Matched, nil
}

// UpdateOptions carries the optional fields of a content write.
type UpdateOptions struct {
	Title       string
	MediaURL    string
	SectionType string
	Language    string
}

// UpdateContent saves content for a key: PATCH when a record already exists,
// POST otherwise. Success refreshes the cache and pushes a success notice;
// failure pushes an error notice and returns the error so the editing UI
// can stay dirty.
func (c *Client) UpdateContent(ctx context.Context, page, section, content string, opts UpdateOptions) error {
	key := model.NewContentKey(page, section, opts.Language)

	c.mu.RLock()
	existing, exists := c.content[key]
	c.mu.RUnlock()

	var err error
	if exists {
		patch := map[string]any{"content": content}
		if opts.Title != "" {
			patch["title"] = opts.Title
		}
		if opts.MediaURL != "" {
			patch["media_url"] = opts.MediaURL
		}
		if opts.SectionType != "" {
			patch["section_type"] = opts.SectionType
		}
		body, _ := json.Marshal(patch)
		err = c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/admin/page-content/%d", existing.ID), body, nil)
	} else {
		sectionType := opts.SectionType
		if sectionType == "" {
			sectionType = model.SectionTypeText
		}
		payload := map[string]any{
			"page_name":    key.Page,
			"section_key":  key.Section,
			"language":     key.Language,
			"content":      content,
			"section_type": sectionType,
			"is_published": true,
		}
		if opts.Title != "" {
			payload["title"] = opts.Title
		}
		if opts.MediaURL != "" {
			payload["media_url"] = opts.MediaURL
		}
		body, _ := json.Marshal(payload)
		err = c.doJSON(ctx, http.MethodPost, "/api/admin/page-content", body, nil)
	}

	if err != nil {
		c.notices.Push(NoticeError, "Save failed: "+err.Error())
		return err
	}

	if err := c.Refresh(ctx); err != nil {
		// The write landed; a failed refresh only leaves the cache stale
		slog.Warn("refresh after save failed", "error", err)
	}

	c.notices.Push(NoticeSuccess, "Content saved")
	return nil
}

// doJSON performs one API request, decoding the data envelope into out when
// out is non-nil and surfacing API error envelopes as errors.
func (c *Client) doJSON(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Code != "" {
			return fmt.Errorf("%s: %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		var envelope apiEnvelope[json.RawMessage]
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
