package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"eventcalendar/internal/delivery/http/helpers"
	"eventcalendar/internal/delivery/http/middleware"
	"eventcalendar/internal/domain"
)

// EventRequest is the request body for POST /events and PUT /events/{eventID}.
// The roster is not part of it: participants change only through the participation endpoint.
type EventRequest struct {
	Title            string             `json:"title" validate:"required,max=200"`
	Description      string             `json:"description" validate:"max=5000"`
	StartDate        *time.Time         `json:"startDate" validate:"required"`
	EndDate          *time.Time         `json:"endDate" validate:"required"`
	ParticipantLimit int                `json:"participantLimit" validate:"gte=1"`
	Price            decimal.Decimal    `json:"price" swaggertype:"string" example:"12.50"`
	Repetition       *domain.Repetition `json:"repetition,omitempty"`
}

// Validate implements Validator for the cross-field rules.
func (e EventRequest) Validate() []string {
	var errs []string
	if e.StartDate != nil && e.EndDate != nil && !e.StartDate.Before(*e.EndDate) {
		errs = append(errs, "endDate must be after startDate")
	}
	if e.Price.IsNegative() {
		errs = append(errs, "price must not be negative")
	}
	return errs
}

func (e EventRequest) input() domain.EventInput {
	return domain.EventInput{
		Title:            e.Title,
		Description:      e.Description,
		StartDate:        *e.StartDate,
		EndDate:          *e.EndDate,
		ParticipantLimit: e.ParticipantLimit,
		Price:            e.Price,
		Repetition:       e.Repetition,
	}
}

// EventSuccessResponse is the success envelope carrying one event.
type EventSuccessResponse struct {
	Success bool          `json:"success" example:"true"`
	Data    *domain.Event `json:"data"`
}

// EventViewSuccessResponse is the success envelope carrying one event with its roster.
type EventViewSuccessResponse struct {
	Success bool              `json:"success" example:"true"`
	Data    *domain.EventView `json:"data"`
}

// EventListSuccessResponse is the success envelope for GET /events.
type EventListSuccessResponse struct {
	Success bool                `json:"success" example:"true"`
	Data    []*domain.EventView `json:"data"`
}

// DeleteEventResponse is the data returned by DELETE /events/{eventID}.
type DeleteEventResponse struct {
	Status string `json:"status" example:"deleted"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Queries domain.QueryService
}

func NewEventController(logger *slog.Logger, svc domain.EventService, queries domain.QueryService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Queries: queries,
	}
}

// parseWindow reads the start and end query parameters shared by the list and feed endpoints.
func parseWindow(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok bool) {
	q := r.URL.Query()
	start, err := helpers.ParseTimeParam("start", q.Get("start"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeValidation, err.Error())
		return start, end, false
	}
	end, err = helpers.ParseTimeParam("end", q.Get("end"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeValidation, err.Error())
		return start, end, false
	}
	return start, end, true
}

// ListEvents godoc
// @Summary List events in a time window
// @Description Returns every event overlapping the half-open window [start, end), ordered by startDate then id. Open to guests.
// @Tags events
// @Produce json
// @Param start query string true "Window start (RFC 3339 or YYYY-MM-DD)"
// @Param end query string true "Window end (RFC 3339 or YYYY-MM-DD)"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "code: validation_error"
// @Failure 500 {object} helpers.APIResponse "code: storage_failure"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
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
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event with occupancy figures and the roster resolved to usernames. Open to guests.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventViewSuccessResponse
// @Failure 404 {object} helpers.APIResponse "code: not_found"
// @Failure 500 {object} helpers.APIResponse "code: storage_failure"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	view, err := c.Queries.GetEvent(r.Context(), claims, r.PathValue("eventID"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, claims, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event with an empty roster. Admin only. id, participants and version are server-assigned.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body EventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "code: validation_error"
// @Failure 401 {object} helpers.APIResponse "code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "code: forbidden"
// @Failure 500 {object} helpers.APIResponse "code: storage_failure"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())
	event, err := c.Service.CreateEvent(r.Context(), claims, req.input())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, claims, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Replaces the editable fields of an event. Admin only. A participants field is rejected and the roster is kept. Lowering participantLimit below the current roster size is rejected.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param event body EventRequest true "Event data"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "code: validation_error"
// @Failure 401 {object} helpers.APIResponse "code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "code: forbidden"
// @Failure 404 {object} helpers.APIResponse "code: not_found"
// @Failure 500 {object} helpers.APIResponse "code: storage_failure"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	claims := middleware.ClaimsFromContext(r.Context())
	event, err := c.Service.UpdateEvent(r.Context(), claims, r.PathValue("eventID"), req.input())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, claims, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Removes the event and its roster. Admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 401 {object} helpers.APIResponse "code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "code: forbidden"
// @Failure 404 {object} helpers.APIResponse "code: not_found"
// @Failure 500 {object} helpers.APIResponse "code: storage_failure"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if err := c.Service.DeleteEvent(r.Context(), claims, r.PathValue("eventID")); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, claims, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Status: "deleted"})
}
