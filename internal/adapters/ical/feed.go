// Package ical renders calendar query results as an RFC 5545 feed.
package ical

import (
	"log/slog"
	"time"

	ics "github.com/arran4/golang-ical"

	"eventcalendar/internal/domain"
	"eventcalendar/internal/recurrence"
)

const productID = "-//eventcalendar//events feed//EN"

// Renderer builds VCALENDAR documents from events.
type Renderer struct {
	calendarName string
	logger       *slog.Logger
	now          func() time.Time
}

func NewRenderer(calendarName string, logger *slog.Logger) *Renderer {
	return &Renderer{calendarName: calendarName, logger: logger, now: time.Now}
}

// Render returns one VEVENT per event. Repeating events carry an RRULE and are
// not expanded; a rule that cannot be rendered is skipped with a warning.
func (r *Renderer) Render(events []*domain.EventView) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if r.calendarName != "" {
		cal.SetXWRCalName(r.calendarName)
	}
	stamp := r.now().UTC()
	for _, e := range events {
		ve := cal.AddEvent(e.ID)
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(e.StartDate.UTC())
		ve.SetEndAt(e.EndDate.UTC())
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		ve.SetSequence(int(e.Version))
		if e.Repetition != nil {
			rule, err := recurrence.RuleString(e.Repetition, e.StartDate)
			if err != nil {
				r.logger.Warn("skipping repetition rule", "event_id", e.ID, "error", err)
				continue
			}
			ve.AddRrule(rule)
		}
	}
	return cal.Serialize()
}
