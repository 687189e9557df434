package controllers

import (
	"log/slog"
	"net/http"

	"eventcalendar/internal/delivery/http/helpers"
	"eventcalendar/internal/delivery/http/middleware"
	"eventcalendar/internal/domain"
)

// ToggleParticipationRequest is the optional body of POST /events/{eventID}/participation.
// An empty userId toggles the caller.
type ToggleParticipationRequest struct {
	UserID string `json:"userId,omitempty" validate:"max=64"`
}

type ParticipationController struct {
	Logger  *slog.Logger
	Service domain.ParticipationService
}

func NewParticipationController(logger *slog.Logger, svc domain.ParticipationService) *ParticipationController {
	return &ParticipationController{Logger: logger, Service: svc}
}

// ToggleParticipation godoc
// @Summary Join or leave an event
// @Description Adds the user to the roster if absent and removes them if present. Users toggle themselves; admins may pass another userId. Confirm the outcome from the returned participants before retrying.
// @Tags participation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body ToggleParticipationRequest false "Optional target user"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 401 {object} helpers.APIResponse "code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "code: forbidden"
// @Failure 404 {object} helpers.APIResponse "code: not_found"
// @Failure 409 {object} helpers.APIResponse "code: capacity_exceeded"
// @Failure 500 {object} helpers.APIResponse "code: storage_failure"
// @Router /events/{eventID}/participation [post]
func (c *ParticipationController) ToggleParticipation(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims.IsGuest() {
		helpers.WriteDomainError(w, r, c.Logger, claims, domain.ErrUnauthorized)
		return
	}
	var req ToggleParticipationRequest
	if !helpers.DecodeOptionalAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.ToggleParticipation(r.Context(), claims, r.PathValue("eventID"), req.UserID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, claims, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
