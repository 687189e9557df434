package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventcalendar/internal/domain"
)

type queryService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	logger         *slog.Logger
	maxWindow      time.Duration
	contextTimeout time.Duration
}

// NewQueryService returns the calendar read service. Windows longer than
// maxWindow are rejected; a zero maxWindow disables the limit.
func NewQueryService(eventRepo domain.EventRepository, userRepo domain.UserRepository, logger *slog.Logger, maxWindow, timeout time.Duration) domain.QueryService {
	return &queryService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		logger:         logger,
		maxWindow:      maxWindow,
		contextTimeout: timeout,
	}
}

// QueryEvents returns every event overlapping [start, end), ordered by start then id.
func (s *queryService) QueryEvents(ctx context.Context, claims domain.Claims, start, end time.Time) ([]*domain.EventView, error) {
	if err := Authorize(claims, domain.ActionView); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, domain.NewValidationError("end must not be before start")
	}
	if s.maxWindow > 0 && end.Sub(start) > s.maxWindow {
		return nil, domain.NewValidationError(fmt.Sprintf("window must not exceed %s", s.maxWindow))
	}
	if end.Equal(start) {
		return []*domain.EventView{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListInRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list events: %w: %w", domain.ErrStorage, err)
	}
	usernames := s.usernames(ctx, events...)
	views := make([]*domain.EventView, 0, len(events))
	for _, e := range events {
		views = append(views, domain.NewEventView(e, usernames, claims.ID))
	}
	return views, nil
}

func (s *queryService) GetEvent(ctx context.Context, claims domain.Claims, eventID string) (*domain.EventView, error) {
	if err := Authorize(claims, domain.ActionView); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w: %w", domain.ErrStorage, err)
	}
	return domain.NewEventView(event, s.usernames(ctx, event), claims.ID), nil
}

// usernames resolves roster ids to usernames. A failed lookup only degrades
// the display names, so it is logged rather than returned.
func (s *queryService) usernames(ctx context.Context, events ...*domain.Event) map[string]string {
	seen := make(map[string]struct{})
	var ids []string
	for _, e := range events {
		for _, id := range e.Participants {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	names := make(map[string]string, len(ids))
	if len(ids) == 0 || s.userRepo == nil {
		return names
	}
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.WarnContext(ctx, "resolve participant usernames", "count", len(ids), "err", err)
		return names
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names
}
