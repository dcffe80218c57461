// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/kanistone/stonecms/internal/auth"
	"github.com/kanistone/stonecms/internal/middleware"
	"github.com/kanistone/stonecms/internal/model"
	"github.com/kanistone/stonecms/internal/service"
	"github.com/kanistone/stonecms/internal/session"
	"github.com/kanistone/stonecms/internal/store"
)

// AuthHandler handles the session authentication routes.
type AuthHandler struct {
	queries         *store.Queries
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		sessionManager:  sm,
		eventService:    service.NewEventService(db),
		loginProtection: lp,
	}
}

// loginRequest is the JSON body for the login route.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Me returns the authenticated user, or 401 when there is no session or the
// user row no longer exists.
// GET /api/admin/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), session.KeyUserID)
	if userID == 0 {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	user, err := h.queries.GetUserByID(r.Context(), userID)
	if err != nil {
		// Stale session for a deleted user
		_ = h.sessionManager.Destroy(r.Context())
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	WriteSuccess(w, user.Public(), nil)
}

// Login verifies credentials and establishes a session.
// POST /api/admin/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if req.Username == "" || req.Password == "" {
		WriteBadRequest(w, "Username and password are required", nil)
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(req.Username); locked {
			_ = h.eventService.Log(r.Context(), model.EventLevelWarning, model.EventCategoryAuth,
				"Login attempt on locked account", nil, r, map[string]any{"username": req.Username})
			WriteError(w, http.StatusTooManyRequests, "account_locked",
				fmt.Sprintf("Account locked. Try again in %s.", formatDuration(remaining)), nil)
			return
		}
	}

	user, err := h.queries.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Debug("login attempt for non-existent user", "username", req.Username)
			_ = h.eventService.Log(r.Context(), model.EventLevelWarning, model.EventCategoryAuth,
				"Login failed: user not found", nil, r, map[string]any{"username": req.Username})
		} else {
			slog.Error("database error during login", "error", err)
		}
		// Record the failure even for unknown users to prevent enumeration
		h.recordFailure(w, r, req.Username, nil)
		return
	}

	valid, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err)
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials", nil)
		return
	}

	if !valid {
		slog.Debug("invalid password attempt", "username", req.Username)
		_ = h.eventService.Log(r.Context(), model.EventLevelWarning, model.EventCategoryAuth,
			"Login failed: invalid password", &user.ID, r, map[string]any{"username": req.Username})
		h.recordFailure(w, r, req.Username, &user.ID)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(req.Username)
	}

	// Re-hash password if it uses old/expensive parameters
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(req.Password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
				ID:           user.ID,
			}); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			} else {
				slog.Info("password re-hashed with updated parameters", "user_id", user.ID)
			}
		}
	}

	if err := h.queries.UpdateUserLastLogin(r.Context(), user.ID, time.Now()); err != nil {
		// Don't block login on this error
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("session renewal error", "error", err)
		WriteInternalError(w, "Failed to establish session")
		return
	}

	h.sessionManager.Put(r.Context(), session.KeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	_ = h.eventService.Log(r.Context(), model.EventLevelInfo, model.EventCategoryAuth,
		"User logged in", &user.ID, r, map[string]any{"username": user.Username})

	WriteSuccess(w, user.Public(), nil)
}

// recordFailure tracks a failed attempt and writes the 401 (or lockout)
// response. All credential failures share one message to avoid user
// enumeration.
func (h *AuthHandler) recordFailure(w http.ResponseWriter, r *http.Request, username string, userID *int64) {
	if h.loginProtection != nil {
		if locked, lockDuration := h.loginProtection.RecordFailedAttempt(username); locked {
			_ = h.eventService.Log(r.Context(), model.EventLevelWarning, model.EventCategoryAuth,
				"Account locked due to failed attempts", userID, r,
				map[string]any{"username": username, "duration": lockDuration.String()})
			WriteError(w, http.StatusTooManyRequests, "account_locked",
				fmt.Sprintf("Too many failed attempts. Try again in %s.", formatDuration(lockDuration)), nil)
			return
		}
	}
	WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials", nil)
}

// Logout destroys the session. Succeeds regardless of prior auth state.
// POST /api/admin/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), session.KeyUserID)

	if userID > 0 {
		_ = h.eventService.Log(r.Context(), model.EventLevelInfo, model.EventCategoryAuth,
			"User logged out", &userID, r, nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
		WriteInternalError(w, "Failed to destroy session")
		return
	}

	slog.Info("user logged out", "user_id", userID)
	WriteSuccess(w, map[string]string{"message": "Logged out"}, nil)
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
