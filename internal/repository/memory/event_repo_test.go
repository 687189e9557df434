package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"eventcalendar/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(d, h int) time.Time {
	return time.Date(2024, 1, d, h, 0, 0, 0, time.UTC)
}

func newEvent(title string, start, end time.Time, limit int) *domain.Event {
	return domain.NewEvent(domain.EventInput{
		Title:            title,
		StartDate:        start,
		EndDate:          end,
		ParticipantLimit: limit,
		Price:            decimal.NewFromInt(10),
	}, at(1, 0))
}

func mustCreate(t *testing.T, repo domain.EventRepository, e *domain.Event) *domain.Event {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), e))
	return e
}

func ids(events []*domain.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestEventRepository_Create_and_GetByID(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()

	e := newEvent("Yoga", at(10, 9), at(10, 10), 5)
	e.Participants = []string{"ignored"}
	require.NoError(t, repo.Create(ctx, e))
	require.NotEmpty(t, e.ID)
	assert.Equal(t, int64(1), e.Version)

	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Yoga", got.Title)
	assert.Empty(t, got.Participants, "new events start with an empty roster")
	assert.True(t, got.StartDate.Equal(at(10, 9)))

	got.Title = "mutated"
	again, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Yoga", again.Title, "returned events are copies")

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventRepository_ListInRange_boundaries(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()
	ev := mustCreate(t, repo, newEvent("Day", at(10, 0), at(11, 0), 5))

	tests := []struct {
		name       string
		start, end time.Time
		want       []string
	}{
		{"window ends exactly at event start", at(9, 0), at(10, 0), []string{}},
		{"window starts exactly at event end", at(11, 0), at(12, 0), []string{}},
		{"window covers event", at(9, 0), at(12, 0), []string{ev.ID}},
		{"window inside event", at(10, 6), at(10, 12), []string{ev.ID}},
		{"empty window", at(10, 6), at(10, 6), []string{}},
		{"inverted window", at(12, 0), at(9, 0), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListInRange(ctx, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestEventRepository_ListInRange_order_and_long_events(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()

	long := mustCreate(t, repo, newEvent("Festival", at(1, 0), at(20, 0), 100))
	a := mustCreate(t, repo, newEvent("A", at(10, 9), at(10, 10), 5))
	b := mustCreate(t, repo, newEvent("B", at(10, 9), at(10, 11), 5))
	early := mustCreate(t, repo, newEvent("Early", at(10, 8), at(10, 9), 5))
	mustCreate(t, repo, newEvent("Later", at(15, 0), at(15, 1), 5))

	got, err := repo.ListInRange(ctx, at(10, 0), at(11, 0))
	require.NoError(t, err)

	sameStart := []string{a.ID, b.ID}
	if b.ID < a.ID {
		sameStart = []string{b.ID, a.ID}
	}
	want := append([]string{long.ID, early.ID}, sameStart...)
	assert.Equal(t, want, ids(got), "ordered by start then id, long-running event included")
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()
	e := mustCreate(t, repo, newEvent("Yoga", at(10, 9), at(10, 10), 5))
	_, err := repo.SetParticipants(ctx, e.ID, 1, []string{"u1"})
	require.NoError(t, err)

	stale := e.Clone()
	stale.Title = "stale"
	_, err = repo.Update(ctx, stale)
	assert.ErrorIs(t, err, domain.ErrVersionConflict, "roster write bumped the version")

	cur, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	cur.Title = "Hot Yoga"
	cur.StartDate = at(12, 9)
	cur.EndDate = at(12, 10)
	cur.Participants = nil
	updated, err := repo.Update(ctx, cur)
	require.NoError(t, err)
	assert.Equal(t, "Hot Yoga", updated.Title)
	assert.Equal(t, []string{"u1"}, updated.Participants, "update never touches the roster")
	assert.Equal(t, int64(3), updated.Version)

	moved, err := repo.ListInRange(ctx, at(12, 0), at(13, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{e.ID}, ids(moved))
	old, err := repo.ListInRange(ctx, at(10, 0), at(11, 0))
	require.NoError(t, err)
	assert.Empty(t, old)

	_, err = repo.Update(ctx, &domain.Event{ID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventRepository_SetParticipants(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()
	e := mustCreate(t, repo, newEvent("Yoga", at(10, 9), at(10, 10), 1))

	got, err := repo.SetParticipants(ctx, e.ID, 1, []string{"u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, got.Participants)
	assert.Equal(t, int64(2), got.Version)

	_, err = repo.SetParticipants(ctx, e.ID, 1, []string{})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	_, err = repo.SetParticipants(ctx, e.ID, 2, []string{"u1", "u2"})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	_, err = repo.SetParticipants(ctx, "missing", 1, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventRepository_SetParticipants_concurrent_single_winner(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()
	e := mustCreate(t, repo, newEvent("Yoga", at(10, 9), at(10, 10), 10))

	const writers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.SetParticipants(ctx, e.ID, 1, []string{"u"}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins, "only one writer can win a given version")
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()
	e := mustCreate(t, repo, newEvent("Yoga", at(10, 9), at(10, 10), 5))

	require.NoError(t, repo.Delete(ctx, e.ID))
	_, err := repo.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, err := repo.ListInRange(ctx, at(1, 0), at(31, 0))
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.ErrorIs(t, repo.Delete(ctx, e.ID), domain.ErrNotFound)
}
