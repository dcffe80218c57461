// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanistone/stonecms/internal/auth"
	"github.com/kanistone/stonecms/internal/handler"
	"github.com/kanistone/stonecms/internal/middleware"
	"github.com/kanistone/stonecms/internal/model"
	"github.com/kanistone/stonecms/internal/session"
	"github.com/kanistone/stonecms/internal/store"
	"github.com/kanistone/stonecms/internal/testutil"
)

// newTestServer starts an API server with the real handlers and an admin
// user, mirroring the route layout of the main binary.
func newTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()

	db := testutil.TestDB(t)
	sm := session.New(db, true)

	hash, err := auth.HashPassword("quarry and chisel")
	require.NoError(t, err)
	_, err = store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Username:     "admin",
		PasswordHash: hash,
		IsAdmin:      true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	})
	require.NoError(t, err)

	authHandler := handler.NewAuthHandler(db, sm, nil)
	contentHandler := handler.NewContentHandler(db, nil)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Use(middleware.LoadUser(sm, db))

	r.Get("/api/admin/auth/me", authHandler.Me)
	r.Post("/api/admin/auth/login", authHandler.Login)
	r.Post("/api/admin/auth/logout", authHandler.Logout)

	r.Get("/api/admin/page-content", contentHandler.List)
	r.Get("/api/admin/languages", handler.Languages)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())
		r.Post("/api/admin/page-content", contentHandler.Create)
		r.Patch("/api/admin/page-content/{id}", contentHandler.Update)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, db
}

func newLoggedInClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background(), "admin", "quarry and chisel"))
	return c
}

func TestToggleEditModeRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	c.ToggleEditMode()

	assert.False(t, c.IsEditMode(), "edit mode must stay off when unauthenticated")
	latest, ok := c.Notices().Latest()
	require.True(t, ok)
	assert.Equal(t, NoticeAuthRequired, latest.Kind)
}

func TestLoginLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	t.Run("bad credentials", func(t *testing.T) {
		err := c.Login(ctx, "admin", "wrong")
		require.Error(t, err)
		assert.False(t, c.IsAuthenticated())
		latest, _ := c.Notices().Latest()
		assert.Equal(t, NoticeError, latest.Kind)
	})

	t.Run("success sets auth state", func(t *testing.T) {
		require.NoError(t, c.Login(ctx, "admin", "quarry and chisel"))
		assert.True(t, c.IsAuthenticated())
		assert.True(t, c.IsAdmin())

		c.ToggleEditMode()
		assert.True(t, c.IsEditMode())
	})

	t.Run("session survives a fresh state check", func(t *testing.T) {
		assert.True(t, c.CheckAuth(ctx))
	})

	t.Run("logout resets everything", func(t *testing.T) {
		require.NoError(t, c.Logout(ctx))
		assert.False(t, c.IsAuthenticated())
		assert.False(t, c.IsEditMode())
		assert.False(t, c.CheckAuth(ctx))
	})
}

func TestLogoutResetsStateOnNetworkFailure(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1")
	require.NoError(t, err)

	// Force the flags on as if a session existed
	c.mu.Lock()
	c.authenticated = true
	c.admin = true
	c.editMode = true
	c.mu.Unlock()

	err = c.Logout(context.Background())
	require.Error(t, err)
	assert.False(t, c.IsAuthenticated())
	assert.False(t, c.IsEditMode())
}

func TestGetContentIsPureCacheLookup(t *testing.T) {
	srv, db := newTestServer(t)
	ctx := context.Background()

	now := time.Now()
	_, err := store.New(db).CreateContentSection(ctx, store.CreateContentSectionParams{
		PageName:    "home",
		SectionKey:  "hero_title",
		Language:    "en",
		Content:     "Premium Natural Stone Cladding",
		SectionType: model.SectionTypeText,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	// No refresh yet: the row exists server-side but GetContent must miss
	_, ok := c.GetContent("home", "hero_title", "en")
	assert.False(t, ok, "GetContent must not fetch")

	require.NoError(t, c.Refresh(ctx))

	content, ok := c.GetContent("home", "hero_title", "en")
	require.True(t, ok)
	assert.Equal(t, "Premium Natural Stone Cladding", content)

	// Empty language defaults to "en"
	content, ok = c.GetContent("home", "hero_title", "")
	require.True(t, ok)
	assert.Equal(t, "Premium Natural Stone Cladding", content)
}

func TestUpdateContentUpserts(t *testing.T) {
	srv, db := newTestServer(t)
	ctx := context.Background()
	c := newLoggedInClient(t, srv)

	require.NoError(t, c.UpdateContent(ctx, "home", "hero_title", "first version", UpdateOptions{}))
	require.NoError(t, c.UpdateContent(ctx, "home", "hero_title", "second version", UpdateOptions{}))

	key := model.NewContentKey("home", "hero_title", "en")
	count, err := store.New(db).CountContentSectionsByKey(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "two saves for one key must produce exactly one row")

	section, err := store.New(db).GetContentSectionByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "second version", section.Content)

	// Cache reflects the write after the automatic refresh
	content, ok := c.GetContent("home", "hero_title", "en")
	require.True(t, ok)
	assert.Equal(t, "second version", content)
}

func TestUpdateContentPatchCarriesOptionalFields(t *testing.T) {
	srv, db := newTestServer(t)
	ctx := context.Background()
	c := newLoggedInClient(t, srv)

	require.NoError(t, c.UpdateContent(ctx, "home", "hero_title", "first version", UpdateOptions{}))

	require.NoError(t, c.UpdateContent(ctx, "home", "hero_title", "new", UpdateOptions{
		Title:    "Hero",
		MediaURL: "/uploads/x.jpg",
	}))

	section, err := store.New(db).GetContentSectionByKey(ctx,
		model.NewContentKey("home", "hero_title", "en"))
	require.NoError(t, err)
	assert.Equal(t, "new", section.Content)
	assert.Equal(t, "Hero", section.Title, "title from an update of an existing record must persist")
	assert.Equal(t, "/uploads/x.jpg", section.MediaURL)

	// Omitted optional fields leave the stored values alone
	require.NoError(t, c.UpdateContent(ctx, "home", "hero_title", "newer", UpdateOptions{}))
	section, err = store.New(db).GetContentSectionByKey(ctx,
		model.NewContentKey("home", "hero_title", "en"))
	require.NoError(t, err)
	assert.Equal(t, "newer", section.Content)
	assert.Equal(t, "Hero", section.Title)
}

func TestUpdateContentUnauthenticatedSurfacesError(t *testing.T) {
	srv, _ := newTestServer(t)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	err = c.UpdateContent(context.Background(), "home", "hero_title", "nope", UpdateOptions{})
	require.Error(t, err)
	latest, _ := c.Notices().Latest()
	assert.Equal(t, NoticeError, latest.Kind)
}

func TestLanguagesExposeDirection(t *testing.T) {
	srv, _ := newTestServer(t)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	languages, matched, err := c.Languages(context.Background())
	require.NoError(t, err)

	// Go's http client sends no Accept-Language, so the server falls back
	assert.Equal(t, model.DefaultLanguage, matched)

	byCode := map[string]LanguageInfo{}
	for _, l := range languages {
		byCode[l.Code] = l
	}
	require.Contains(t, byCode, "en")
	require.Contains(t, byCode, "fa")
	assert.Equal(t, model.DirectionRTL, byCode["fa"].Direction)
	assert.True(t, byCode["en"].IsDefault)
}

func TestSubscribersReceiveRefreshes(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()
	c := newLoggedInClient(t, srv)

	var got [][]model.ContentSection
	unsubscribe := c.Subscribe(func(records []model.ContentSection) {
		got = append(got, records)
	})

	require.NoError(t, c.UpdateContent(ctx, "home", "hero_title", "hello", UpdateOptions{}))
	require.NotEmpty(t, got, "save should trigger a refresh publication")
	last := got[len(got)-1]
	require.Len(t, last, 1)
	assert.Equal(t, "hello", last[0].Content)

	unsubscribe()
	seen := len(got)
	require.NoError(t, c.Refresh(ctx))
	assert.Equal(t, seen, len(got), "unsubscribed callbacks must not fire")
}
