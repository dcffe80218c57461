// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanistone/stonecms/internal/model"
	"github.com/kanistone/stonecms/internal/store"
)

func TestUnitDisplayFallbackChain(t *testing.T) {
	srv, _ := newTestServer(t)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	t.Run("placeholder when nothing is available", func(t *testing.T) {
		u := NewUnit(c, "home", "hero_title", UnitOptions{})
		assert.Equal(t, "[hero_title]", u.Display())
	})

	t.Run("default literal beats placeholder", func(t *testing.T) {
		u := NewUnit(c, "home", "hero_title", UnitOptions{
			DefaultContent: "Premium Natural Stone Cladding",
		})
		assert.Equal(t, "Premium Natural Stone Cladding", u.Display())
	})

	t.Run("child content beats everything and disables editing", func(t *testing.T) {
		u := NewUnit(c, "home", "hero_title", UnitOptions{
			DefaultContent: "default",
			ChildContent:   "static child markup",
		})
		assert.Equal(t, "static child markup", u.Display())

		u.Click()
		assert.Equal(t, StateIdle, u.State())
	})
}

func TestUnitDisplayPrefersServerContent(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()
	c := newLoggedInClient(t, srv)

	require.NoError(t, c.UpdateContent(ctx, "home", "hero_title", "Quarried in Isfahan", UpdateOptions{}))

	u := NewUnit(c, "home", "hero_title", UnitOptions{DefaultContent: "default"})
	assert.Equal(t, "Quarried in Isfahan", u.Display())
}

func TestUnitClickRequiresEditMode(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newLoggedInClient(t, srv)

	u := NewUnit(c, "home", "hero_title", UnitOptions{DefaultContent: "default"})

	u.Click()
	assert.Equal(t, StateIdle, u.State(), "click outside edit mode is a no-op")

	c.ToggleEditMode()
	u.Click()
	assert.Equal(t, StateEditing, u.State())
	assert.Equal(t, "default", u.Draft(), "draft starts from the displayed content")
}

func TestUnitEnterSavesOnceAndReturnsToIdle(t *testing.T) {
	srv, db := newTestServer(t)
	ctx := context.Background()
	c := newLoggedInClient(t, srv)
	c.ToggleEditMode()

	u := NewUnit(c, "home", "hero_title", UnitOptions{})
	u.Click()
	u.SetDraft("Travertine facades")

	require.NoError(t, u.HandleKey(ctx, KeyEnter))

	assert.Equal(t, StateIdle, u.State())
	assert.Equal(t, "Travertine facades", u.Display())

	count, err := store.New(db).CountContentSectionsByKey(ctx,
		model.NewContentKey("home", "hero_title", "en"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Enter while idle does nothing
	require.NoError(t, u.HandleKey(ctx, KeyEnter))
	count, err = store.New(db).CountContentSectionsByKey(ctx,
		model.NewContentKey("home", "hero_title", "en"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestUnitMultilineSaveShortcut(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()
	c := newLoggedInClient(t, srv)
	c.ToggleEditMode()

	u := NewUnit(c, "about", "story", UnitOptions{Multiline: true})
	u.Click()
	u.SetDraft("line one\nline two")

	// Plain Enter does not save a multiline unit
	require.NoError(t, u.HandleKey(ctx, KeyEnter))
	assert.Equal(t, StateEditing, u.State())

	require.NoError(t, u.HandleKey(ctx, KeyCtrlEnter))
	assert.Equal(t, StateIdle, u.State())
	assert.Equal(t, "line one\nline two", u.Display())
}

func TestUnitEscapeDiscards(t *testing.T) {
	srv, db := newTestServer(t)
	ctx := context.Background()
	c := newLoggedInClient(t, srv)
	c.ToggleEditMode()

	u := NewUnit(c, "home", "hero_title", UnitOptions{DefaultContent: "original"})
	u.Click()
	u.SetDraft("abandoned edit")

	require.NoError(t, u.HandleKey(ctx, KeyEscape))

	assert.Equal(t, StateIdle, u.State())
	assert.Equal(t, "original", u.Display(), "escape restores the prior content")

	count, err := store.New(db).CountContentSectionsByKey(ctx,
		model.NewContentKey("home", "hero_title", "en"))
	require.NoError(t, err)
	assert.Zero(t, count, "escape must not write")
}

func TestUnitSaveFailureStaysEditing(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()
	c := newLoggedInClient(t, srv)
	c.ToggleEditMode()

	u := NewUnit(c, "home", "hero_title", UnitOptions{})
	u.Click()
	u.SetDraft("will not land")

	// Kill the server so the save fails
	srv.Close()

	err := u.HandleKey(ctx, KeyEnter)
	require.Error(t, err)
	assert.Equal(t, StateEditing, u.State(), "failed save keeps the unit editing")
	assert.Equal(t, "will not land", u.Draft(), "draft survives a failed save")
}

func TestUnitCloseDropsLateResults(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()
	c := newLoggedInClient(t, srv)
	c.ToggleEditMode()

	u := NewUnit(c, "home", "hero_title", UnitOptions{})
	u.Click()
	u.SetDraft("late save")
	u.Close()

	// A save attempted after close must not resurrect the unit
	require.NoError(t, u.HandleKey(ctx, KeyEnter))
	assert.Equal(t, StateIdle, u.State())
}
