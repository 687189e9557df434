package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"eventcalendar/internal/domain"
	"eventcalendar/internal/recurrence"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
	priceDecimals     = 2
)

type eventService struct {
	eventRepo      domain.EventRepository
	logger         *slog.Logger
	priceMax       decimal.Decimal
	maxAttempts    int
	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService returns the admin event service. Updates are compare-and-swap
// writes retried up to maxAttempts times on concurrent modification.
func NewEventService(eventRepo domain.EventRepository, logger *slog.Logger, priceMax decimal.Decimal, maxAttempts int, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		logger:         logger,
		priceMax:       priceMax,
		maxAttempts:    max(maxAttempts, 1),
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// ValidateEventInput normalizes in and reports every broken rule as a *domain.ValidationError.
func ValidateEventInput(in *domain.EventInput, priceMax decimal.Decimal) error {
	var problems []string
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		problems = append(problems, "title is required")
	} else if utf8.RuneCountInString(in.Title) > maxTitleLen {
		problems = append(problems, fmt.Sprintf("title must be at most %d characters", maxTitleLen))
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		problems = append(problems, fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}
	switch {
	case in.StartDate.IsZero() || in.EndDate.IsZero():
		problems = append(problems, "startDate and endDate are required")
	case !in.StartDate.Before(in.EndDate):
		problems = append(problems, "startDate must be before endDate")
	}
	if in.ParticipantLimit < 1 {
		problems = append(problems, "participantLimit must be at least 1")
	}
	if in.Price.IsNegative() || in.Price.GreaterThan(priceMax) {
		problems = append(problems, fmt.Sprintf("price must be between 0 and %s", priceMax.String()))
	} else if !in.Price.Equal(in.Price.Round(priceDecimals)) {
		problems = append(problems, "price must have at most 2 decimal places")
	}
	problems = append(problems, recurrence.Validate(in.Repetition, in.StartDate)...)
	if len(problems) > 0 {
		return domain.NewValidationError(problems...)
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, claims domain.Claims, in domain.EventInput) (*domain.Event, error) {
	if err := Authorize(claims, domain.ActionCreate); err != nil {
		return nil, err
	}
	if err := ValidateEventInput(&in, s.priceMax); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event := domain.NewEvent(in, s.now())
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w: %w", domain.ErrStorage, err)
	}
	s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "admin_id", claims.ID)
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, claims domain.Claims, eventID string, in domain.EventInput) (*domain.Event, error) {
	if err := Authorize(claims, domain.ActionUpdate); err != nil {
		return nil, err
	}
	if err := ValidateEventInput(&in, s.priceMax); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("get event: %w: %w", domain.ErrStorage, err)
		}
		if in.ParticipantLimit < len(event.Participants) {
			return nil, domain.NewValidationError(fmt.Sprintf(
				"participantLimit %d is below the %d current participants", in.ParticipantLimit, len(event.Participants)))
		}
		event.Apply(in)
		updated, err := s.eventRepo.Update(ctx, event)
		switch {
		case err == nil:
			s.logger.InfoContext(ctx, "event updated", "event_id", eventID, "admin_id", claims.ID, "version", updated.Version)
			return updated, nil
		case errors.Is(err, domain.ErrVersionConflict):
			s.logger.DebugContext(ctx, "event update conflict, retrying", "event_id", eventID, "attempt", attempt)
			continue
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrValidation):
			return nil, err
		default:
			return nil, fmt.Errorf("update event: %w: %w", domain.ErrStorage, err)
		}
	}
	return nil, fmt.Errorf("update event %s: %w: gave up after %d concurrent modifications", eventID, domain.ErrStorage, s.maxAttempts)
}

func (s *eventService) DeleteEvent(ctx context.Context, claims domain.Claims, eventID string) error {
	if err := Authorize(claims, domain.ActionDelete); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w: %w", domain.ErrStorage, err)
	}
	s.logger.InfoContext(ctx, "event deleted", "event_id", eventID, "admin_id", claims.ID)
	return nil
}
