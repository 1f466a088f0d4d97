// Package api serves the companion's JSON API: the normalized schedule, its
// derived views, and the favorites endpoints consumed by the rendering
// layer.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/confsched/companion/internal/config"
	"github.com/confsched/companion/internal/favorites"
	httperrors "github.com/confsched/companion/internal/http/errors"
	"github.com/confsched/companion/internal/metrics"
	"github.com/confsched/companion/internal/schedule"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ScheduleSource is the slice of schedule.Manager the handlers use; tests
// substitute a fake.
type ScheduleSource interface {
	Snapshot() *schedule.Snapshot
	LoadError() error
	Refresh(ctx context.Context) error
}

// Handler serves the JSON API.
type Handler struct {
	cfg      *config.Config
	schedule ScheduleSource
	favs     *favorites.Service
}

func NewHandler(cfg *config.Config, source ScheduleSource, favs *favorites.Service) *Handler {
	return &Handler{cfg: cfg, schedule: source, favs: favs}
}

// Meta reports what is loaded: counts, timezone, and the load-error flag the
// UI uses to tell "empty schedule" from "failed fetch".
func (h *Handler) Meta(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"event":    h.cfg.Event.Slug,
		"timezone": h.cfg.Event.Timezone,
		"loaded":   false,
	}
	if err := h.schedule.LoadError(); err != nil {
		body["error_loading"] = err.Error()
	}
	if snap := h.schedule.Snapshot(); snap != nil {
		body["loaded"] = true
		body["sessions"] = len(snap.Sessions)
		body["days"] = len(snap.Days())
		body["rooms"] = len(snap.RoomOrder)
	}
	httperrors.JSON(w, r, http.StatusOK, body)
}

// Sessions returns the sorted session list, paginated.
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.currentSnapshot(w, r)
	if !ok {
		return
	}

	page, limit := h.parsePagination(r)
	start := (page - 1) * limit
	if start > len(snap.Sessions) {
		start = len(snap.Sessions)
	}
	end := start + limit
	if end > len(snap.Sessions) {
		end = len(snap.Sessions)
	}

	httperrors.JSON(w, r, http.StatusOK, map[string]any{
		"total":    len(snap.Sessions),
		"page":     page,
		"limit":    limit,
		"sessions": h.sessionViews(snap.Sessions[start:end]),
	})
}

// Session returns one addressable session by code.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.currentSnapshot(w, r)
	if !ok {
		return
	}

	code := chi.URLParam(r, "code")
	session, found := snap.Session(code)
	if !found {
		httperrors.NotFound(w, r, "session not found")
		return
	}
	httperrors.JSON(w, r, http.StatusOK, h.sessionView(session))
}

// Days returns the distinct calendar days spanned by the schedule.
func (h *Handler) Days(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.currentSnapshot(w, r)
	if !ok {
		return
	}
	days := snap.Days()
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Format(time.RFC3339)
	}
	httperrors.JSON(w, r, http.StatusOK, map[string]any{"days": out})
}

// SessionsNow returns the sessions scheduled at the current instant, or at
// the ?at= override (RFC3339) for deterministic clients.
func (h *Handler) SessionsNow(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.currentSnapshot(w, r)
	if !ok {
		return
	}
	now, err := h.parseAt(r)
	if err != nil {
		httperrors.BadRequest(w, r, err, "invalid 'at' timestamp")
		return
	}
	httperrors.JSON(w, r, http.StatusOK, map[string]any{
		"at":       now.Format(time.RFC3339),
		"sessions": h.sessionViews(snap.ScheduledAt(now)),
	})
}

// RoomsNow returns, per room in server-declared order, the session currently
// running there (null for idle rooms).
func (h *Handler) RoomsNow(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.currentSnapshot(w, r)
	if !ok {
		return
	}
	now, err := h.parseAt(r)
	if err != nil {
		httperrors.BadRequest(w, r, err, "invalid 'at' timestamp")
		return
	}

	current := snap.CurrentSessionPerRoom(now)
	rooms := make([]map[string]any, 0, len(snap.RoomOrder))
	for _, room := range snap.RoomOrder {
		entry := map[string]any{"room": room, "session": nil}
		if session := current[room.ID]; session != nil {
			entry["session"] = h.sessionView(session)
		}
		rooms = append(rooms, entry)
	}
	httperrors.JSON(w, r, http.StatusOK, map[string]any{
		"at":    now.Format(time.RFC3339),
		"rooms": rooms,
	})
}

// Refresh triggers a manual refetch of the raw schedule.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	err := h.schedule.Refresh(r.Context())
	metrics.CountScheduleRefresh(err)
	if err != nil {
		httperrors.LogWarn(r, "manual refresh failed", err)
		httperrors.JSON(w, r, http.StatusBadGateway, map[string]any{
			"refreshed":     false,
			"error_loading": err.Error(),
		})
		return
	}
	httperrors.JSON(w, r, http.StatusOK, map[string]any{"refreshed": true})
}

func (h *Handler) currentSnapshot(w http.ResponseWriter, r *http.Request) (*schedule.Snapshot, bool) {
	snap := h.schedule.Snapshot()
	if snap == nil {
		body := map[string]any{"error": "schedule not loaded"}
		if err := h.schedule.LoadError(); err != nil {
			body["error_loading"] = err.Error()
		}
		httperrors.JSON(w, r, http.StatusServiceUnavailable, body)
		return nil, false
	}
	return snap, true
}

// lang resolves the active UI language: per-request override first, then the
// configured language, then the fixed fallback.
func (h *Handler) lang(r *http.Request) string {
	if l := r.URL.Query().Get("lang"); l != "" {
		return l
	}
	if h.cfg.Event.Language != "" {
		return h.cfg.Event.Language
	}
	return schedule.DefaultLanguage
}

func (h *Handler) parseAt(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("at")
	if raw == "" {
		return time.Now(), nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse at=%q: %w", raw, err)
	}
	return at, nil
}

func (h *Handler) parsePagination(r *http.Request) (page, limit int) {
	page = 1
	limit = defaultPageSize

	if v := r.URL.Query().Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= maxPageSize {
			limit = parsed
		}
	}
	return page, limit
}

type sessionView struct {
	*schedule.Session
	Favorited bool `json:"favorited"`
}

func (h *Handler) sessionView(s *schedule.Session) sessionView {
	return sessionView{Session: s, Favorited: s.Addressable() && h.favs.Has(s.ID)}
}

func (h *Handler) sessionViews(sessions []*schedule.Session) []sessionView {
	views := make([]sessionView, len(sessions))
	for i, s := range sessions {
		views[i] = h.sessionView(s)
	}
	return views
}
