package controllers

import (
	"log/slog"
	"net/http"

	"eventcalendar/internal/delivery/http/helpers"
	"eventcalendar/internal/delivery/http/middleware"
	"eventcalendar/internal/domain"
)

// FeedRenderer turns query results into an iCalendar document.
type FeedRenderer interface {
	Render(events []*domain.EventView) string
}

type CalendarController struct {
	Logger   *slog.Logger
	Queries  domain.QueryService
	Renderer FeedRenderer
}

func NewCalendarController(logger *slog.Logger, queries domain.QueryService, renderer FeedRenderer) *CalendarController {
	return &CalendarController{Logger: logger, Queries: queries, Renderer: renderer}
}

// Feed godoc
// @Summary iCalendar feed
// @Description Returns the events overlapping [start, end) as text/calendar. Repeating events carry an RRULE and are not expanded.
// @Tags events
// @Produce text/calendar
// @Param start query string true "Window start (RFC 3339 or YYYY-MM-DD)"
// @Param end query string true "Window end (RFC 3339 or YYYY-MM-DD)"
// @Success 200 {string} string "VCALENDAR document"
// @Failure 400 {object} helpers.APIResponse "code: validation_error"
// @Failure 500 {object} helpers.APIResponse "code: storage_failure"
// @Router /events.ics [get]
func (c *CalendarController) Feed(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseWindow(w, r)
	if !ok {
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())
	events, err := c.Queries.QueryEvents(r.Context(), claims, start, end)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, claims, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(c.Renderer.Render(events)))
}
