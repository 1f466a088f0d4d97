package schedule

import (
	"testing"
	"time"
)

func int64Ptr(v int64) *int64 { return &v }

func testRaw() *RawSchedule {
	return &RawSchedule{
		Talks: []RawTalk{
			{
				Code:     "TALK-B",
				Title:    "Concurrency Patterns",
				Start:    "2026-09-12T10:00:00+02:00",
				End:      "2026-09-12T10:45:00+02:00",
				Speakers: []string{"SPK1"},
				Room:     int64Ptr(2),
				Track:    int64Ptr(10),
			},
			{
				Code:     "TALK-A",
				Title:    "Opening Keynote",
				Start:    "2026-09-12T10:00:00+02:00",
				End:      "2026-09-12T10:45:00+02:00",
				Speakers: []string{"SPK2"},
				Room:     int64Ptr(1),
			},
			{
				Title: "Coffee Break",
				Start: "2026-09-12T10:45:00+02:00",
				End:   "2026-09-12T11:15:00+02:00",
			},
			{
				Code:  "TALK-C",
				Title: "Closing",
				Start: "2026-09-12T11:15:00+02:00",
				End:   "2026-09-12T12:00:00+02:00",
				Room:  int64Ptr(1),
			},
		},
		Speakers: []Speaker{
			{Code: "SPK1", Name: "Ada"},
			{Code: "SPK2", Name: "Grace"},
		},
		Rooms: []Room{
			{ID: 2, Name: NewLocalizedString("Stage B")},
			{ID: 1, Name: NewLocalizedString("Stage A")},
		},
		Tracks: []Track{
			{ID: 10, Name: NewLocalizedString("Systems")},
		},
	}
}

func TestNormalizeSortsByStartThenRoomOrder(t *testing.T) {
	snap, err := Normalize(testRaw(), time.UTC)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	// Rooms are declared as [B, A], so the same-start talks keep that order
	// even though TALK-A was listed after TALK-B in the payload.
	want := []string{"Concurrency Patterns", "Opening Keynote", "Coffee Break", "Closing"}
	if len(snap.Sessions) != len(want) {
		t.Fatalf("expected %d sessions, got %d", len(want), len(snap.Sessions))
	}
	for i, title := range want {
		if snap.Sessions[i].Title != title {
			t.Fatalf("position %d: expected %q, got %q", i, title, snap.Sessions[i].Title)
		}
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	first, err := Normalize(testRaw(), time.UTC)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	second, err := Normalize(testRaw(), time.UTC)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(first.Sessions) != len(second.Sessions) {
		t.Fatalf("session count differs between runs")
	}
	for i := range first.Sessions {
		if first.Sessions[i].Title != second.Sessions[i].Title {
			t.Fatalf("position %d differs: %q vs %q", i, first.Sessions[i].Title, second.Sessions[i].Title)
		}
	}
}

func TestNormalizeSessionsWithoutCode(t *testing.T) {
	snap, err := Normalize(testRaw(), time.UTC)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	var brk *Session
	for _, s := range snap.Sessions {
		if s.Title == "Coffee Break" {
			brk = s
		}
	}
	if brk == nil {
		t.Fatal("break slot missing from session list")
	}
	if brk.Addressable() {
		t.Fatal("break slot must not be addressable")
	}
	if _, ok := snap.SessionsByID[""]; ok {
		t.Fatal("empty id must not appear in the lookup")
	}
	if len(snap.SessionsByID) != 3 {
		t.Fatalf("expected 3 addressable sessions, got %d", len(snap.SessionsByID))
	}
}

func TestNormalizeResolvesReferences(t *testing.T) {
	snap, err := Normalize(testRaw(), time.UTC)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	s, ok := snap.Session("TALK-B")
	if !ok {
		t.Fatal("TALK-B not found")
	}
	if s.Room == nil || s.Room.Name.Resolve("en") != "Stage B" {
		t.Fatalf("room not resolved: %+v", s.Room)
	}
	if s.Track == nil || s.Track.Name.Resolve("en") != "Systems" {
		t.Fatalf("track not resolved: %+v", s.Track)
	}
	if len(s.Speakers) != 1 || s.Speakers[0] == nil || s.Speakers[0].Name != "Ada" {
		t.Fatalf("speakers not resolved: %+v", s.Speakers)
	}
}

func TestNormalizeDanglingReferencesDegradeToNil(t *testing.T) {
	raw := &RawSchedule{
		Talks: []RawTalk{{
			Code:     "LOST",
			Title:    "Orphan",
			Start:    "2026-09-12T09:00:00+02:00",
			End:      "2026-09-12T09:30:00+02:00",
			Speakers: []string{"NOBODY"},
			Room:     int64Ptr(99),
			Track:    int64Ptr(99),
		}},
	}
	snap, err := Normalize(raw, time.UTC)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	s := snap.Sessions[0]
	if s.Room != nil || s.Track != nil {
		t.Fatalf("dangling room/track should resolve to nil, got %v / %v", s.Room, s.Track)
	}
	if len(s.Speakers) != 1 || s.Speakers[0] != nil {
		t.Fatalf("dangling speaker should stay as a nil entry, got %+v", s.Speakers)
	}
}

func TestNormalizeUnresolvedRoomSortsLastOnTie(t *testing.T) {
	raw := &RawSchedule{
		Talks: []RawTalk{
			{Code: "NOWHERE", Title: "Hallway", Start: "2026-09-12T10:00:00Z", End: "2026-09-12T10:30:00Z"},
			{Code: "ROOMED", Title: "On Stage", Start: "2026-09-12T10:00:00Z", End: "2026-09-12T10:30:00Z", Room: int64Ptr(1)},
		},
		Rooms: []Room{{ID: 1, Name: NewLocalizedString("Stage A")}},
	}
	snap, err := Normalize(raw, time.UTC)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if snap.Sessions[0].ID != "ROOMED" || snap.Sessions[1].ID != "NOWHERE" {
		t.Fatalf("resolved room should sort first on a tie, got %s then %s", snap.Sessions[0].ID, snap.Sessions[1].ID)
	}
}

func TestNormalizeDuplicateIDsLastWriteWins(t *testing.T) {
	raw := &RawSchedule{
		Speakers: []Speaker{
			{Code: "SPK1", Name: "First"},
			{Code: "SPK1", Name: "Second"},
		},
		Rooms: []Room{
			{ID: 1, Name: NewLocalizedString("Old Name")},
			{ID: 1, Name: NewLocalizedString("New Name")},
		},
	}
	snap, err := Normalize(raw, time.UTC)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if snap.Speakers["SPK1"].Name != "Second" {
		t.Fatalf("expected later speaker record to win, got %q", snap.Speakers["SPK1"].Name)
	}
	if snap.Rooms[1].Name.Resolve("en") != "New Name" {
		t.Fatalf("expected later room record to win, got %q", snap.Rooms[1].Name.Resolve("en"))
	}
}

func TestNormalizeConvertsToTimezone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	raw := &RawSchedule{
		Talks: []RawTalk{{
			Code:  "TZ",
			Title: "Morning Talk",
			Start: "2026-09-12T08:00:00Z",
			End:   "2026-09-12T09:00:00Z",
		}},
	}
	snap, err := Normalize(raw, berlin)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	s := snap.Sessions[0]
	if s.Start.Location() != berlin {
		t.Fatalf("expected session times in Europe/Berlin, got %v", s.Start.Location())
	}
	if s.Start.Hour() != 10 {
		t.Fatalf("expected 10:00 local, got %02d:00", s.Start.Hour())
	}
}

func TestNormalizeOffsetlessTimestampsReadAsLocal(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	raw := &RawSchedule{
		Talks: []RawTalk{{
			Code:  "LOCAL",
			Title: "No Offset",
			Start: "2026-09-12T10:00:00",
			End:   "2026-09-12T11:00:00",
		}},
	}
	snap, err := Normalize(raw, berlin)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got := snap.Sessions[0].Start.Hour(); got != 10 {
		t.Fatalf("offsetless timestamp should parse as event-local, got hour %d", got)
	}
}

func TestNormalizeClampsEndBeforeStart(t *testing.T) {
	raw := &RawSchedule{
		Talks: []RawTalk{{
			Code:  "BACKWARDS",
			Title: "Time Travel",
			Start: "2026-09-12T11:00:00Z",
			End:   "2026-09-12T10:00:00Z",
		}},
	}
	snap, err := Normalize(raw, time.UTC)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	s := snap.Sessions[0]
	if !s.End.Equal(s.Start) {
		t.Fatalf("expected end clamped to start, got start=%v end=%v", s.Start, s.End)
	}
}

func TestNormalizeRejectsBadTimestamps(t *testing.T) {
	raw := &RawSchedule{
		Talks: []RawTalk{{Code: "BAD", Title: "Broken", Start: "not-a-time", End: "2026-09-12T10:00:00Z"}},
	}
	if _, err := Normalize(raw, time.UTC); err == nil {
		t.Fatal("expected error for malformed start timestamp")
	}

	if _, err := Normalize(nil, time.UTC); err == nil {
		t.Fatal("expected error for nil payload")
	}
}
