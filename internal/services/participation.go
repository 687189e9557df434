package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"eventcalendar/internal/domain"
)

// Toggle outcomes reported to ToggleRecorder.
const (
	OutcomeJoined           = "joined"
	OutcomeLeft             = "left"
	OutcomeCapacityExceeded = "capacity_exceeded"
	OutcomeUnauthorized     = "unauthorized"
	OutcomeNotFound         = "not_found"
	OutcomeError            = "error"
)

// ToggleRecorder receives the outcome of every participation toggle.
type ToggleRecorder interface {
	ToggleOutcome(outcome string)
}

type participationService struct {
	eventRepo      domain.EventRepository
	locks          *eventLocks
	recorder       ToggleRecorder
	logger         *slog.Logger
	maxAttempts    int
	contextTimeout time.Duration
}

// NewParticipationService returns the participation engine. Toggles on the same
// event are serialized in-process; the roster write is a compare-and-swap on the
// event version so writers in other processes are detected and retried, at most
// maxAttempts times in total. recorder may be nil.
func NewParticipationService(eventRepo domain.EventRepository, recorder ToggleRecorder, logger *slog.Logger, maxAttempts int, timeout time.Duration) domain.ParticipationService {
	return &participationService{
		eventRepo:      eventRepo,
		locks:          newEventLocks(),
		recorder:       recorder,
		logger:         logger,
		maxAttempts:    max(maxAttempts, 1),
		contextTimeout: timeout,
	}
}

func (s *participationService) record(outcome string) {
	if s.recorder != nil {
		s.recorder.ToggleOutcome(outcome)
	}
}

// ToggleParticipation adds userID to the event roster if absent and removes it
// if present. An empty userID means the caller. Only admins may toggle someone else.
func (s *participationService) ToggleParticipation(ctx context.Context, claims domain.Claims, eventID, userID string) (*domain.Event, error) {
	if err := Authorize(claims, domain.ActionToggleParticipation); err != nil {
		s.record(OutcomeUnauthorized)
		return nil, err
	}
	if userID == "" {
		userID = claims.ID
	}
	if userID != claims.ID && claims.Role != domain.RoleAdmin {
		s.record(OutcomeUnauthorized)
		return nil, fmt.Errorf("%w: cannot change another user's participation", domain.ErrUnauthorized)
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	unlock, err := s.locks.Lock(ctx, eventID)
	if err != nil {
		s.record(OutcomeError)
		return nil, fmt.Errorf("wait for event %s: %w: %w", eventID, domain.ErrStorage, err)
	}
	defer unlock()

	event, outcome, err := s.toggle(ctx, eventID, userID)
	s.record(outcome)
	if err != nil {
		if outcome == OutcomeError {
			s.logger.ErrorContext(ctx, "participation toggle failed", "event_id", eventID, "user_id", userID, "err", err)
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "participation toggled", "event_id", eventID, "user_id", userID, "outcome", outcome, "participants", len(event.Participants))
	return event, nil
}

func (s *participationService) toggle(ctx context.Context, eventID, userID string) (*domain.Event, string, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, OutcomeNotFound, domain.ErrNotFound
			}
			return nil, OutcomeError, fmt.Errorf("get event: %w: %w", domain.ErrStorage, err)
		}

		var next []string
		outcome := OutcomeLeft
		if event.HasParticipant(userID) {
			next = slices.DeleteFunc(slices.Clone(event.Participants), func(id string) bool { return id == userID })
		} else {
			if event.IsFull() {
				s.logger.DebugContext(ctx, "event full", "event_id", eventID, "user_id", userID, "limit", event.ParticipantLimit)
				return nil, OutcomeCapacityExceeded, domain.ErrCapacityExceeded
			}
			next = append(slices.Clone(event.Participants), userID)
			outcome = OutcomeJoined
		}

		updated, err := s.eventRepo.SetParticipants(ctx, eventID, event.Version, next)
		switch {
		case err == nil:
			return updated, outcome, nil
		case errors.Is(err, domain.ErrVersionConflict):
			s.logger.DebugContext(ctx, "roster write conflict, retrying", "event_id", eventID, "attempt", attempt)
			continue
		case errors.Is(err, domain.ErrNotFound):
			return nil, OutcomeNotFound, domain.ErrNotFound
		case errors.Is(err, domain.ErrCapacityExceeded):
			return nil, OutcomeCapacityExceeded, domain.ErrCapacityExceeded
		default:
			return nil, OutcomeError, fmt.Errorf("set participants: %w: %w", domain.ErrStorage, err)
		}
	}
	return nil, OutcomeError, fmt.Errorf("toggle participation on %s: %w: gave up after %d concurrent modifications", eventID, domain.ErrStorage, s.maxAttempts)
}
