// Package ics serializes the parsed agenda events into an iCalendar file.
package ics

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/espinosaluis/estepona-agenda-calendar/internal/model"
)

const prodID = "-//estepona-agenda-calendar//agendacal//ES"

// Build serializes the events, already sorted by the parser, into one
// VCALENDAR. now is the DTSTAMP for every VEVENT; passing it in keeps the
// output a pure function of its arguments, so two runs over identical
// events produce byte-identical calendars.
func Build(events []model.CalendarEvent, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)

	for _, ev := range events {
		if !ev.End.After(ev.Start) {
			return nil, errors.New("ics: event end is not after start: " + ev.Title)
		}

		ve := cal.AddEvent(eventUID(ev))
		ve.SetDtStampTime(now.UTC())
		ve.SetStartAt(ev.Start.UTC())
		ve.SetEndAt(ev.End.UTC())
		ve.SetSummary(ev.Title)
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
	}

	return []byte(cal.Serialize()), nil
}

// eventUID derives a stable UID from the event's identity tuple, so reruns
// over an unchanged page update rather than duplicate entries in calendar
// clients.
func eventUID(ev model.CalendarEvent) string {
	sum := sha1.Sum([]byte(ev.Key()))
	return hex.EncodeToString(sum[:]) + "@turismo.estepona.es"
}
