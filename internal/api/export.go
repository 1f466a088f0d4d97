package api

import (
	"net/http"

	"github.com/confsched/companion/internal/export"
	httperrors "github.com/confsched/companion/internal/http/errors"
	"github.com/confsched/companion/internal/schedule"
)

// ExportSchedule serves the full session list as an iCalendar feed.
func (h *Handler) ExportSchedule(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.currentSnapshot(w, r)
	if !ok {
		return
	}
	h.serveICS(w, r, "schedule.ics", snap.Sessions)
}

// ExportFaved serves only the favorited sessions, the companion's version of
// the backend's faved.ics exporter.
func (h *Handler) ExportFaved(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.currentSnapshot(w, r)
	if !ok {
		return
	}

	var faved []*schedule.Session
	for _, id := range h.favs.List() {
		if session, found := snap.Session(id); found {
			faved = append(faved, session)
		}
	}
	h.serveICS(w, r, "faved.ics", faved)
}

func (h *Handler) serveICS(w http.ResponseWriter, r *http.Request, filename string, sessions []*schedule.Session) {
	cal := export.Calendar(h.cfg.Event.Slug, sessions, h.lang(r))

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := w.Write([]byte(cal.Serialize())); err != nil {
		httperrors.LogError(r, "write ics export", err)
	}
}
