// Package export serializes normalized sessions as iCalendar feeds, the
// companion's equivalent of the backend's schedule.ics and faved.ics
// exporters.
package export

import (
	"fmt"
	"strings"

	ics "github.com/arran4/golang-ical"

	"github.com/confsched/companion/internal/schedule"
)

// Calendar builds a VCALENDAR from the given sessions. Localized fields are
// resolved for lang. Sessions without an id get a synthetic UID derived from
// their slot so breaks still export.
func Calendar(slug string, sessions []*schedule.Session, lang string) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//confsched//companion//EN")
	if slug != "" {
		cal.SetXWRCalName(slug)
	}

	for i, session := range sessions {
		event := cal.AddEvent(eventUID(slug, session, i))
		event.SetDtStampTime(session.Start)
		event.SetStartAt(session.Start)
		event.SetEndAt(session.End)
		event.SetSummary(session.Title)

		if session.Room != nil {
			event.SetLocation(session.Room.Name.Resolve(lang))
		}
		if desc := description(session, lang); desc != "" {
			event.SetDescription(desc)
		}
		if session.URL != "" {
			event.SetProperty(ics.ComponentPropertyUrl, session.URL)
		}
	}

	return cal
}

func eventUID(slug string, session *schedule.Session, index int) string {
	if session.Addressable() {
		return fmt.Sprintf("%s-%s@companion", slug, session.ID)
	}
	return fmt.Sprintf("%s-slot-%d-%d@companion", slug, index, session.Start.Unix())
}

func description(session *schedule.Session, lang string) string {
	var parts []string
	if len(session.Speakers) > 0 {
		var names []string
		for _, sp := range session.Speakers {
			if sp != nil && sp.Name != "" {
				names = append(names, sp.Name)
			}
		}
		if len(names) > 0 {
			parts = append(parts, strings.Join(names, ", "))
		}
	}
	if session.Abstract != "" {
		parts = append(parts, session.Abstract)
	}
	if st := session.SessionType.Resolve(lang); st != "" {
		parts = append(parts, st)
	}
	return strings.Join(parts, "\n\n")
}
