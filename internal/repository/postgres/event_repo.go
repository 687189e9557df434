package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"eventcalendar/internal/domain"
)

const eventColumns = `id, title, description, start_date, end_date, participant_limit, price, participants, repetition, version, created_at, updated_at`

const (
	pqUniqueViolation       = "23505"
	pqCheckViolation        = "23514"
	pqInvalidTextRepr       = "22P02"
	capacityCheckConstraint = "events_capacity_check"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var participants pq.StringArray
	var repetition []byte
	err := s.Scan(
		&e.ID, &e.Title, &e.Description, &e.StartDate, &e.EndDate, &e.ParticipantLimit,
		&e.Price, &participants, &repetition, &e.Version, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Participants = []string(participants)
	if e.Participants == nil {
		e.Participants = []string{}
	}
	if len(repetition) > 0 {
		e.Repetition = &domain.Repetition{}
		if err := json.Unmarshal(repetition, e.Repetition); err != nil {
			return nil, fmt.Errorf("decode repetition: %w", err)
		}
	}
	return e, nil
}

// repetitionValue encodes rep for a JSONB column; nil stays SQL NULL.
func repetitionValue(rep *domain.Repetition) (any, error) {
	if rep == nil {
		return nil, nil
	}
	b, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("encode repetition: %w", err)
	}
	return string(b), nil
}

// isInvalidID reports whether err is postgres rejecting a malformed uuid literal.
func isInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidTextRepr
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	rep, err := repetitionValue(e.Repetition)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO events (title, description, start_date, end_date, participant_limit, price, repetition, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, version
	`
	err = r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.StartDate, e.EndDate, e.ParticipantLimit, e.Price, rep, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID, &e.Version)
	if err != nil {
		return err
	}
	e.Participants = []string{}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// casMiss tells a lost compare-and-swap apart from a missing row.
func (r *eventRepository) casMiss(ctx context.Context, id string) error {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrVersionConflict
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	rep, err := repetitionValue(e.Repetition)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE events
		SET title = $1, description = $2, start_date = $3, end_date = $4, participant_limit = $5,
			price = $6, repetition = $7, version = version + 1, updated_at = NOW()
		WHERE id = $8 AND version = $9
		RETURNING ` + eventColumns
	updated, err := scanEvent(r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.StartDate, e.EndDate, e.ParticipantLimit, e.Price, rep, e.ID, e.Version,
	))
	if err != nil {
		var pqErr *pq.Error
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, r.casMiss(ctx, e.ID)
		case isInvalidID(err):
			return nil, domain.ErrNotFound
		case errors.As(err, &pqErr) && pqErr.Code == pqCheckViolation:
			return nil, domain.NewValidationError(fmt.Sprintf("event violates constraint %s", pqErr.Constraint))
		}
		return nil, err
	}
	return updated, nil
}

func (r *eventRepository) SetParticipants(ctx context.Context, id string, expectedVersion int64, participants []string) (*domain.Event, error) {
	if participants == nil {
		participants = []string{}
	}
	query := `
		UPDATE events
		SET participants = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
		RETURNING ` + eventColumns
	updated, err := scanEvent(r.DB.QueryRowContext(ctx, query, pq.Array(participants), id, expectedVersion))
	if err != nil {
		var pqErr *pq.Error
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, r.casMiss(ctx, id)
		case isInvalidID(err):
			return nil, domain.ErrNotFound
		case errors.As(err, &pqErr) && pqErr.Code == pqCheckViolation && pqErr.Constraint == capacityCheckConstraint:
			return nil, domain.ErrCapacityExceeded
		}
		return nil, err
	}
	return updated, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		if isInvalidID(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListInRange matches the indexed period expression so the GiST index on
// tstzrange(start_date, end_date) serves both bounds of the overlap.
func (r *eventRepository) ListInRange(ctx context.Context, start, end time.Time) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	if !start.Before(end) {
		return events, nil
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE tstzrange(start_date, end_date, '[)') && tstzrange($1, $2, '[)')
		ORDER BY start_date, id
	`
	rows, err := r.DB.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
