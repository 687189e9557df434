package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"eventcalendar/internal/domain"
	"eventcalendar/internal/repository/memory"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var (
	adminClaims = domain.Claims{ID: "admin-1", Username: "root", Role: domain.RoleAdmin}
	aliceClaims = domain.Claims{ID: "u-alice", Username: "alice", Role: domain.RoleUser}
	bobClaims   = domain.Claims{ID: "u-bob", Username: "bob", Role: domain.RoleUser}
	guestClaims = domain.GuestClaims()
)

// flakyEventRepo wraps a real store and injects failures into writes.
type flakyEventRepo struct {
	domain.EventRepository
	mu              sync.Mutex
	conflictsLeft   int   // SetParticipants/Update return ErrVersionConflict this many times
	writeErr        error // if set, SetParticipants/Update return it
	getErr          error // if set, GetByID returns it
	listErr         error
	setParticipants int
}

func newFlakyEventRepo() *flakyEventRepo {
	return &flakyEventRepo{EventRepository: memory.NewEventRepository()}
}

func (f *flakyEventRepo) injected() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return domain.ErrVersionConflict
	}
	return nil
}

func (f *flakyEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.EventRepository.GetByID(ctx, id)
}

func (f *flakyEventRepo) ListInRange(ctx context.Context, start, end time.Time) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.EventRepository.ListInRange(ctx, start, end)
}

func (f *flakyEventRepo) Update(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	if err := f.injected(); err != nil {
		return nil, err
	}
	return f.EventRepository.Update(ctx, e)
}

func (f *flakyEventRepo) SetParticipants(ctx context.Context, id string, v int64, p []string) (*domain.Event, error) {
	f.mu.Lock()
	f.setParticipants++
	f.mu.Unlock()
	if err := f.injected(); err != nil {
		return nil, err
	}
	return f.EventRepository.SetParticipants(ctx, id, v, p)
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID    map[string]*domain.User
	nextID  int
	listErr error
	err     error // if set, Create returns this error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{byID: make(map[string]*domain.User), nextID: 1}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return domain.ErrDuplicateUser
		}
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) ListByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// countingRecorder counts toggle outcomes.
type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{counts: make(map[string]int)}
}

func (r *countingRecorder) ToggleOutcome(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[outcome]++
}

func (r *countingRecorder) get(outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[outcome]
}

var errDB = errors.New("db error")
