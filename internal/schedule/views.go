package schedule

import "time"

// Derived views over the sorted session list. These are recomputed on
// demand; a Snapshot is cheap enough that nothing here caches.

// Days returns the start-of-day instant for every distinct calendar day a
// session starts on, ascending, each day exactly once. Relies on Sessions
// being sorted by start time.
func (s *Snapshot) Days() []time.Time {
	var days []time.Time
	for _, session := range s.Sessions {
		day := startOfDay(session.Start)
		if len(days) > 0 && days[len(days)-1].Equal(day) {
			continue
		}
		days = append(days, day)
	}
	return days
}

// ScheduledAt returns the sessions happening at now. Both boundaries are
// inclusive: a session that starts or ends exactly at now counts.
func (s *Snapshot) ScheduledAt(now time.Time) []*Session {
	var current []*Session
	for _, session := range s.Sessions {
		if session.End.Before(now) || session.Start.After(now) {
			continue
		}
		current = append(current, session)
	}
	return current
}

// CurrentSessionPerRoom maps every known room id to the session running in
// it at now, or nil for rooms that are idle. At most one session is reported
// per room; on overlap the earlier-sorted session wins.
func (s *Snapshot) CurrentSessionPerRoom(now time.Time) map[int64]*Session {
	rooms := make(map[int64]*Session, len(s.RoomOrder))
	for _, room := range s.RoomOrder {
		rooms[room.ID] = nil
	}
	for _, session := range s.ScheduledAt(now) {
		if session.Room == nil {
			continue
		}
		if existing, known := rooms[session.Room.ID]; known && existing == nil {
			rooms[session.Room.ID] = session
		}
	}
	return rooms
}

// Session looks up an addressable session by id.
func (s *Snapshot) Session(id string) (*Session, bool) {
	session, ok := s.SessionsByID[id]
	return session, ok
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
