package schedule

import (
	"encoding/json"
	"time"
)

// RawSchedule is the payload shape published by the conference backend.
// It is decoded once per fetch and never mutated afterwards.
type RawSchedule struct {
	Talks    []RawTalk `json:"talks"`
	Speakers []Speaker `json:"speakers"`
	Rooms    []Room    `json:"rooms"`
	Tracks   []Track   `json:"tracks"`
}

// RawTalk is a single schedule entry as the backend serializes it. Talks
// without a code are placeholders (breaks, social slots) and do not get an
// addressable id after normalization.
type RawTalk struct {
	Code        string          `json:"code"`
	Title       string          `json:"title"`
	Abstract    string          `json:"abstract"`
	Description string          `json:"description"`
	DoNotRecord bool            `json:"do_not_record"`
	URL         string          `json:"url"`
	Start       string          `json:"start"`
	End         string          `json:"end"`
	Speakers    []string        `json:"speakers"`
	Room        *int64          `json:"room"`
	Track       *int64          `json:"track"`
	FavCount    int             `json:"fav_count"`
	Tags        []string        `json:"tags"`
	SessionType LocalizedString `json:"session_type"`
	Resources   []Resource      `json:"resources"`
	Answers     json.RawMessage `json:"answers"`
}

// Speaker is a flat speaker record keyed by its code.
type Speaker struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar,omitempty"`
	Biography string `json:"biography,omitempty"`
}

// Room is a flat room record. The order of rooms in RawSchedule.Rooms is the
// server-declared display order and is significant for session sorting.
type Room struct {
	ID          int64           `json:"id"`
	Name        LocalizedString `json:"name"`
	Description LocalizedString `json:"description,omitempty"`
	Capacity    int             `json:"capacity,omitempty"`
}

// Track is a flat track record keyed by its id.
type Track struct {
	ID    int64           `json:"id"`
	Name  LocalizedString `json:"name"`
	Color string          `json:"color,omitempty"`
}

// Resource is an attachment linked from a talk.
type Resource struct {
	Resource    string          `json:"resource"`
	Description LocalizedString `json:"description"`
}

// Session is a normalized, timezone-resolved schedule entry. Sessions are
// built fresh on every normalization pass and never mutated in place.
//
// ID is empty when the underlying talk had no code; such sessions stay in the
// sorted list but are excluded from SessionsByID and cannot be favorited.
type Session struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Abstract    string          `json:"abstract,omitempty"`
	Description string          `json:"description,omitempty"`
	DoNotRecord bool            `json:"do_not_record"`
	URL         string          `json:"url,omitempty"`
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	Speakers    []*Speaker      `json:"speakers"`
	Room        *Room           `json:"room"`
	Track       *Track          `json:"track"`
	FavCount    int             `json:"fav_count"`
	Tags        []string        `json:"tags,omitempty"`
	SessionType LocalizedString `json:"session_type"`
	Resources   []Resource      `json:"resources,omitempty"`
	Answers     json.RawMessage `json:"answers,omitempty"`
}

// Addressable reports whether the session can be referenced by id, i.e.
// looked up, linked to, or favorited.
func (s *Session) Addressable() bool {
	return s != nil && s.ID != ""
}

// Snapshot is the result of one normalization pass: the sorted session list
// plus the identifier lookups built from the same raw payload.
type Snapshot struct {
	Timezone *time.Location

	// Sessions is sorted by start time, tie-broken by the room's position in
	// the server-declared room order.
	Sessions []*Session

	// SessionsByID omits sessions without an id.
	SessionsByID map[string]*Session

	Speakers map[string]*Speaker
	Rooms    map[int64]*Room
	Tracks   map[int64]*Track

	// RoomOrder preserves the server-declared room order for per-room views.
	RoomOrder []*Room
}
