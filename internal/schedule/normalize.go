package schedule

import (
	"fmt"
	"log"
	"sort"
	"time"
)

// Normalize transforms one complete raw payload into a Snapshot for the
// given display timezone. It is a pure pass over the input: re-running it on
// the same payload yields identical ordering.
//
// Duplicate speaker/room/track identifiers follow the backend's last-write-
// wins behavior; a warning is logged so persistent duplicates get noticed.
func Normalize(raw *RawSchedule, tz *time.Location) (*Snapshot, error) {
	if raw == nil {
		return nil, fmt.Errorf("normalize: raw schedule is nil")
	}
	if tz == nil {
		tz = time.UTC
	}

	snap := &Snapshot{
		Timezone:     tz,
		SessionsByID: make(map[string]*Session),
		Speakers:     make(map[string]*Speaker, len(raw.Speakers)),
		Rooms:        make(map[int64]*Room, len(raw.Rooms)),
		Tracks:       make(map[int64]*Track, len(raw.Tracks)),
	}

	for i := range raw.Speakers {
		sp := &raw.Speakers[i]
		if _, dup := snap.Speakers[sp.Code]; dup {
			log.Printf("[WARN] duplicate speaker code %q, keeping the later record", sp.Code)
		}
		snap.Speakers[sp.Code] = sp
	}

	roomIndex := make(map[int64]int, len(raw.Rooms))
	for i := range raw.Rooms {
		room := &raw.Rooms[i]
		if _, dup := snap.Rooms[room.ID]; dup {
			log.Printf("[WARN] duplicate room id %d, keeping the later record", room.ID)
		} else {
			roomIndex[room.ID] = i
		}
		snap.Rooms[room.ID] = room
		snap.RoomOrder = append(snap.RoomOrder, room)
	}

	for i := range raw.Tracks {
		track := &raw.Tracks[i]
		if _, dup := snap.Tracks[track.ID]; dup {
			log.Printf("[WARN] duplicate track id %d, keeping the later record", track.ID)
		}
		snap.Tracks[track.ID] = track
	}

	for i := range raw.Talks {
		session, err := buildSession(&raw.Talks[i], snap, tz)
		if err != nil {
			return nil, err
		}
		snap.Sessions = append(snap.Sessions, session)
	}

	// Primary key: start ascending. Tie-break: the room's position in the
	// server-declared room order, so same-time sessions keep the backend's
	// left-to-right room layout. Sessions without a resolvable room sort
	// after all resolved ones on a tie.
	unresolved := len(raw.Rooms)
	rank := func(s *Session) int {
		if s.Room == nil {
			return unresolved
		}
		idx, ok := roomIndex[s.Room.ID]
		if !ok {
			return unresolved
		}
		return idx
	}
	sort.SliceStable(snap.Sessions, func(a, b int) bool {
		sa, sb := snap.Sessions[a], snap.Sessions[b]
		if !sa.Start.Equal(sb.Start) {
			return sa.Start.Before(sb.Start)
		}
		return rank(sa) < rank(sb)
	})

	for _, s := range snap.Sessions {
		if s.Addressable() {
			snap.SessionsByID[s.ID] = s
		}
	}

	return snap, nil
}

func buildSession(talk *RawTalk, snap *Snapshot, tz *time.Location) (*Session, error) {
	start, err := parseTalkTime(talk.Start, tz)
	if err != nil {
		return nil, fmt.Errorf("talk %q: start: %w", talk.Code, err)
	}
	end, err := parseTalkTime(talk.End, tz)
	if err != nil {
		return nil, fmt.Errorf("talk %q: end: %w", talk.Code, err)
	}
	// Malformed payloads occasionally carry end before start; clamp rather
	// than propagate a negative duration into the views.
	if end.Before(start) {
		log.Printf("[WARN] talk %q ends before it starts, clamping end to start", talk.Code)
		end = start
	}

	session := &Session{
		ID:          talk.Code,
		Title:       talk.Title,
		Abstract:    talk.Abstract,
		Description: talk.Description,
		DoNotRecord: talk.DoNotRecord,
		URL:         talk.URL,
		Start:       start,
		End:         end,
		FavCount:    talk.FavCount,
		Tags:        talk.Tags,
		SessionType: talk.SessionType,
		Resources:   talk.Resources,
		Answers:     talk.Answers,
	}

	// Resolution misses degrade to nil entries, never an error: the raw
	// payload may reference speakers or rooms withheld from this payload.
	if len(talk.Speakers) > 0 {
		session.Speakers = make([]*Speaker, len(talk.Speakers))
		for i, code := range talk.Speakers {
			session.Speakers[i] = snap.Speakers[code]
		}
	}
	if talk.Room != nil {
		session.Room = snap.Rooms[*talk.Room]
	}
	if talk.Track != nil {
		session.Track = snap.Tracks[*talk.Track]
	}

	return session, nil
}

func parseTalkTime(value string, tz *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// Some exporters omit the offset; read those as local to the event.
		t, err = time.ParseInLocation("2006-01-02T15:04:05", value, tz)
		if err != nil {
			return time.Time{}, err
		}
	}
	return t.In(tz), nil
}
