// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/kanistone/stonecms/internal/model"
)

// UnitState is the editing state of one editable unit.
type UnitState int

// Unit states.
const (
	StateIdle UnitState = iota
	StateEditing
)

// Key identifies a keyboard event relevant to the editing state machine.
type Key int

// Keys handled while editing.
const (
	KeyEnter Key = iota
	KeyCtrlEnter
	KeyEscape
)

// UnitOptions configures an editable unit.
type UnitOptions struct {
	// Language of the bound content; empty defaults to "en".
	Language string
	// DefaultContent is shown when the server has no content for the key.
	DefaultContent string
	// ChildContent, when non-empty, replaces the bound content entirely and
	// disables editing for this unit.
	ChildContent string
	// Multiline switches the save shortcut from Enter to Ctrl+Enter so
	// Enter can insert line breaks.
	Multiline bool
}

// Unit binds one (page, section) to an editable region. It implements the
// editing state machine: Idle until clicked in edit mode, Editing until the
// draft is saved or discarded.
type Unit struct {
	client *Client
	key    model.ContentKey
	opts   UnitOptions

	mu     sync.Mutex
	state  UnitState
	draft  string
	saving bool
	closed bool
}

// NewUnit creates an editable unit bound to (page, section).
func NewUnit(client *Client, page, section string, opts UnitOptions) *Unit {
	return &Unit{
		client: client,
		key:    model.NewContentKey(page, section, opts.Language),
		opts:   opts,
	}
}

// State returns the current editing state.
func (u *Unit) State() UnitState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Draft returns the in-progress edit buffer.
func (u *Unit) Draft() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.draft
}

// SetDraft replaces the edit buffer. Ignored outside of editing.
func (u *Unit) SetDraft(s string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state == StateEditing {
		u.draft = s
	}
}

// Display resolves what the unit shows: child-supplied content wins, then
// stored server content, then the default literal, then a placeholder
// naming the section.
func (u *Unit) Display() string {
	if u.opts.ChildContent != "" {
		return u.opts.ChildContent
	}
	if content, ok := u.client.GetContent(u.key.Page, u.key.Section, u.key.Language); ok {
		return content
	}
	if u.opts.DefaultContent != "" {
		return u.opts.DefaultContent
	}
	return fmt.Sprintf("[%s]", u.key.Section)
}

// Click starts editing. It is a no-op when the unit carries child content,
// when edit mode is off, or when already editing. The draft starts from the
// currently displayed content.
func (u *Unit) Click() {
	if u.opts.ChildContent != "" {
		return
	}
	if !u.client.IsEditMode() {
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed || u.state == StateEditing {
		return
	}
	u.state = StateEditing
	u.draft = u.displayLocked()
}

// displayLocked mirrors Display without ChildContent (already excluded by
// Click).
func (u *Unit) displayLocked() string {
	if content, ok := u.client.GetContent(u.key.Page, u.key.Section, u.key.Language); ok {
		return content
	}
	return u.opts.DefaultContent
}

// HandleKey feeds a keyboard event to the state machine. Enter saves a
// single-line unit, Ctrl+Enter saves a multiline one (plain Enter then
// inserts a newline in the UI layer), Escape discards the draft.
func (u *Unit) HandleKey(ctx context.Context, key Key) error {
	u.mu.Lock()
	if u.state != StateEditing {
		u.mu.Unlock()
		return nil
	}

	switch key {
	case KeyEscape:
		u.state = StateIdle
		u.draft = ""
		u.mu.Unlock()
		return nil
	case KeyEnter:
		if u.opts.Multiline {
			u.mu.Unlock()
			return nil
		}
	case KeyCtrlEnter:
		if !u.opts.Multiline {
			u.mu.Unlock()
			return nil
		}
	}

	if u.saving {
		u.mu.Unlock()
		return nil
	}
	u.saving = true
	draft := u.draft
	u.mu.Unlock()

	return u.save(ctx, draft)
}

// save persists the draft. On success the unit returns to Idle and the new
// content is served from the refreshed client cache. On failure it stays in
// Editing with the draft intact so nothing typed is lost.
func (u *Unit) save(ctx context.Context, draft string) error {
	err := u.client.UpdateContent(ctx, u.key.Page, u.key.Section, draft, UpdateOptions{
		Language: u.key.Language,
	})

	u.mu.Lock()
	defer u.mu.Unlock()
	u.saving = false

	if u.closed {
		// The unit was unmounted while the request was in flight
		return err
	}

	if err != nil {
		return err
	}

	u.state = StateIdle
	u.draft = ""
	return nil
}

// Close detaches the unit. A save still in flight completes against the
// server but its result no longer mutates this unit.
func (u *Unit) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closed = true
	u.state = StateIdle
	u.draft = ""
}
