// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package editor

import (
	"sync"
	"time"
)

// NoticeKind classifies a user-visible notice.
type NoticeKind string

// Notice kinds surfaced by the editor client.
const (
	NoticeSuccess      NoticeKind = "success"
	NoticeError        NoticeKind = "error"
	NoticeAuthRequired NoticeKind = "auth_required"
)

// Notice is one user-visible message produced by the editor client.
type Notice struct {
	Kind    NoticeKind
	Message string
	Time    time.Time
}

// noticeFeedLimit bounds the in-memory notice history.
const noticeFeedLimit = 50

// NoticeFeed is a bounded, thread-safe feed of notices for the editing UI.
type NoticeFeed struct {
	mu      sync.Mutex
	notices []Notice
}

// NewNoticeFeed creates an empty feed.
func NewNoticeFeed() *NoticeFeed {
	return &NoticeFeed{}
}

// Push appends a notice, dropping the oldest entry once the feed is full.
func (f *NoticeFeed) Push(kind NoticeKind, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notices = append(f.notices, Notice{Kind: kind, Message: message, Time: time.Now()})
	if len(f.notices) > noticeFeedLimit {
		f.notices = f.notices[len(f.notices)-noticeFeedLimit:]
	}
}

// All returns a copy of the current notices, oldest first.
func (f *NoticeFeed) All() []Notice {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Notice, len(f.notices))
	copy(out, f.notices)
	return out
}

// Latest returns the most recent notice, or false when the feed is empty.
func (f *NoticeFeed) Latest() (Notice, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.notices) == 0 {
		return Notice{}, false
	}
	return f.notices[len(f.notices)-1], true
}
