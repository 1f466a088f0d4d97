package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/confsched/companion/internal/http/errors"
)

// Favs returns the current favorite set.
func (h *Handler) Favs(w http.ResponseWriter, r *http.Request) {
	httperrors.JSON(w, r, http.StatusOK, map[string]any{
		"favs":          h.favs.List(),
		"authenticated": h.favs.Authenticated(),
	})
}

// Fav marks a session as favorited. The code must resolve to an addressable
// session in the current snapshot.
func (h *Handler) Fav(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.currentSnapshot(w, r)
	if !ok {
		return
	}
	code := chi.URLParam(r, "code")
	if _, found := snap.Session(code); !found {
		httperrors.NotFound(w, r, "session not found")
		return
	}
	if err := h.favs.Fav(r.Context(), code); err != nil {
		httperrors.Internal(w, r, err, "persist favorite")
		return
	}
	httperrors.JSON(w, r, http.StatusOK, map[string]any{"favs": h.favs.List()})
}

// Unfav removes a session from the favorite set. Unknown codes are a no-op,
// not an error.
func (h *Handler) Unfav(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := h.favs.Unfav(r.Context(), code); err != nil {
		httperrors.Internal(w, r, err, "persist favorite removal")
		return
	}
	httperrors.JSON(w, r, http.StatusOK, map[string]any{"favs": h.favs.List()})
}

// MergeFavs reconciles local favorites with the backend's authoritative
// list. A failed merge is not an error for the client: favorites keep
// working locally, so the response carries merged=false and the local set.
func (h *Handler) MergeFavs(w http.ResponseWriter, r *http.Request) {
	if !h.favs.Authenticated() {
		httperrors.JSON(w, r, http.StatusConflict, map[string]any{
			"error": "no upstream favorites endpoint configured",
		})
		return
	}

	if err := h.favs.MergeWithRemote(r.Context()); err != nil {
		httperrors.LogWarn(r, "favorites merge failed, keeping local set", err)
		httperrors.JSON(w, r, http.StatusOK, map[string]any{
			"merged": false,
			"favs":   h.favs.List(),
		})
		return
	}

	httperrors.JSON(w, r, http.StatusOK, map[string]any{
		"merged": true,
		"favs":   h.favs.List(),
	})
}
