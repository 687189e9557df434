package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventcalendar/internal/domain"
)

// eventRepository keeps events in a map keyed by id plus a slice ordered by
// (StartDate, ID) for range scans. maxDuration is the longest event ever stored;
// it bounds how far before a window start an overlapping event can begin.
type eventRepository struct {
	mu          sync.RWMutex
	byID        map[string]*domain.Event
	ordered     []*domain.Event
	maxDuration time.Duration
	now         func() time.Time
}

// NewEventRepository returns an in-process EventRepository.
func NewEventRepository() domain.EventRepository {
	return &eventRepository{
		byID: make(map[string]*domain.Event),
		now:  time.Now,
	}
}

func less(a, b *domain.Event) bool {
	if !a.StartDate.Equal(b.StartDate) {
		return a.StartDate.Before(b.StartDate)
	}
	return a.ID < b.ID
}

func (r *eventRepository) insertOrdered(e *domain.Event) {
	i := sort.Search(len(r.ordered), func(i int) bool { return !less(r.ordered[i], e) })
	r.ordered = slices.Insert(r.ordered, i, e)
	if d := e.EndDate.Sub(e.StartDate); d > r.maxDuration {
		r.maxDuration = d
	}
}

func (r *eventRepository) removeOrdered(e *domain.Event) {
	i := sort.Search(len(r.ordered), func(i int) bool { return !less(r.ordered[i], e) })
	if i < len(r.ordered) && r.ordered[i].ID == e.ID {
		r.ordered = slices.Delete(r.ordered, i, i+1)
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = uuid.NewString()
	e.Version = 1
	e.Participants = []string{}
	stored := e.Clone()
	r.byID[stored.ID] = stored
	r.insertOrdered(stored)
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e.Clone(), nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[e.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if cur.Version != e.Version {
		return nil, domain.ErrVersionConflict
	}
	next := e.Clone()
	next.Participants = slices.Clone(cur.Participants)
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = r.now()
	next.Version = cur.Version + 1

	r.removeOrdered(cur)
	r.byID[next.ID] = next
	r.insertOrdered(next)
	return next.Clone(), nil
}

func (r *eventRepository) SetParticipants(ctx context.Context, id string, expectedVersion int64, participants []string) (*domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return nil, domain.ErrVersionConflict
	}
	if len(participants) > cur.ParticipantLimit {
		return nil, domain.ErrCapacityExceeded
	}
	// Start and id are unchanged, so the ordered slice keeps the same pointer.
	cur.Participants = slices.Clone(participants)
	cur.Version++
	cur.UpdatedAt = r.now()
	return cur.Clone(), nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	r.removeOrdered(cur)
	return nil
}

func (r *eventRepository) ListInRange(ctx context.Context, start, end time.Time) ([]*domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]*domain.Event, 0)
	if !start.Before(end) {
		return events, nil
	}
	// Nothing starting before start-maxDuration can still be running at start.
	lower := start.Add(-r.maxDuration)
	i := sort.Search(len(r.ordered), func(i int) bool { return !r.ordered[i].StartDate.Before(lower) })
	for ; i < len(r.ordered); i++ {
		e := r.ordered[i]
		if !e.StartDate.Before(end) {
			break
		}
		if e.EndDate.After(start) {
			events = append(events, e.Clone())
		}
	}
	return events, nil
}
