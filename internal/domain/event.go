package domain

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a repeating event recurs.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Repetition describes how an event repeats. It is stored and exported, never expanded.
// DaysOfWeek uses 0 for Sunday through 6 for Saturday.
// swagger:model Repetition
type Repetition struct {
	Frequency  Frequency  `json:"frequency"`
	Interval   int        `json:"interval,omitempty"`
	Count      int        `json:"count,omitempty"`
	Until      *time.Time `json:"until,omitempty"`
	DaysOfWeek []int      `json:"daysOfWeek,omitempty"`
}

// Event represents a bookable calendar event
// swagger:model Event
type Event struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	StartDate        time.Time       `json:"startDate"`
	EndDate          time.Time       `json:"endDate"`
	ParticipantLimit int             `json:"participantLimit"`
	Price            decimal.Decimal `json:"price" swaggertype:"string"`
	Participants     []string        `json:"participants"`
	Repetition       *Repetition     `json:"repetition,omitempty"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// EventInput carries the admin-editable fields of an event. Participants are
// deliberately absent: only the participation toggle changes the roster.
type EventInput struct {
	Title            string
	Description      string
	StartDate        time.Time
	EndDate          time.Time
	ParticipantLimit int
	Price            decimal.Decimal
	Repetition       *Repetition
}

// NewEvent returns a new Event from admin input. ID and Version are set by the store on create.
func NewEvent(in EventInput, now time.Time) *Event {
	e := &Event{
		Participants: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	e.Apply(in)
	return e
}

// Apply copies the admin-editable fields from in onto e.
func (e *Event) Apply(in EventInput) {
	e.Title = in.Title
	e.Description = in.Description
	e.StartDate = in.StartDate
	e.EndDate = in.EndDate
	e.ParticipantLimit = in.ParticipantLimit
	e.Price = in.Price
	e.Repetition = in.Repetition
}

// HasParticipant reports whether userID is on the roster.
func (e *Event) HasParticipant(userID string) bool {
	return slices.Contains(e.Participants, userID)
}

// SpotsLeft is the number of free places, never negative.
func (e *Event) SpotsLeft() int {
	return max(e.ParticipantLimit-len(e.Participants), 0)
}

// IsFull reports whether no more participants can be admitted.
func (e *Event) IsFull() bool {
	return len(e.Participants) >= e.ParticipantLimit
}

// Overlaps reports whether e intersects the half-open window [start, end).
// An empty window overlaps nothing.
func (e *Event) Overlaps(start, end time.Time) bool {
	return start.Before(end) && e.StartDate.Before(end) && e.EndDate.After(start)
}

// Clone returns a deep copy so callers can mutate it without touching shared state.
func (e *Event) Clone() *Event {
	c := *e
	c.Participants = slices.Clone(e.Participants)
	if c.Participants == nil {
		c.Participants = []string{}
	}
	if e.Repetition != nil {
		r := *e.Repetition
		r.DaysOfWeek = slices.Clone(e.Repetition.DaysOfWeek)
		if e.Repetition.Until != nil {
			u := *e.Repetition.Until
			r.Until = &u
		}
		c.Repetition = &r
	}
	return &c
}

// Participant is a roster entry resolved to a display name.
type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// EventView is the read model returned by queries: the event plus derived
// occupancy figures and the roster with usernames.
// swagger:model EventView
type EventView struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	StartDate        time.Time       `json:"startDate"`
	EndDate          time.Time       `json:"endDate"`
	ParticipantLimit int             `json:"participantLimit"`
	Price            decimal.Decimal `json:"price" swaggertype:"string"`
	Repetition       *Repetition     `json:"repetition,omitempty"`
	Participants     []Participant   `json:"participants"`
	ParticipantCount int             `json:"participantCount"`
	SpotsLeft        int             `json:"spotsLeft"`
	IsFull           bool            `json:"isFull"`
	Joined           bool            `json:"joined"`
	Version          int64           `json:"version"`
}

// NewEventView builds the read model. usernames maps user id to username;
// ids missing from it are shown as the id itself.
func NewEventView(e *Event, usernames map[string]string, viewerID string) *EventView {
	v := &EventView{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		StartDate:        e.StartDate,
		EndDate:          e.EndDate,
		ParticipantLimit: e.ParticipantLimit,
		Price:            e.Price,
		Repetition:       e.Repetition,
		Participants:     make([]Participant, 0, len(e.Participants)),
		ParticipantCount: len(e.Participants),
		SpotsLeft:        e.SpotsLeft(),
		IsFull:           e.IsFull(),
		Joined:           viewerID != "" && e.HasParticipant(viewerID),
		Version:          e.Version,
	}
	for _, id := range e.Participants {
		name, ok := usernames[id]
		if !ok {
			name = id
		}
		v.Participants = append(v.Participants, Participant{ID: id, Username: name})
	}
	return v
}

// EventRepository defines the interface for event storage.
// Implementations must be safe for concurrent use.
type EventRepository interface {
	// Create assigns ID, sets Version to 1 and stores the event with an empty roster.
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// Update replaces the admin-editable fields if event.Version matches the stored
	// version. Participants are left untouched. Returns ErrNotFound or ErrVersionConflict.
	Update(ctx context.Context, event *Event) (*Event, error)
	// SetParticipants replaces the roster if expectedVersion matches the stored version.
	SetParticipants(ctx context.Context, id string, expectedVersion int64, participants []string) (*Event, error)
	Delete(ctx context.Context, id string) error
	// ListInRange returns events with startDate < end and endDate > start,
	// ordered by startDate then id.
	ListInRange(ctx context.Context, start, end time.Time) ([]*Event, error)
}

// EventService defines the admin operations on events.
type EventService interface {
	CreateEvent(ctx context.Context, claims Claims, in EventInput) (*Event, error)
	UpdateEvent(ctx context.Context, claims Claims, eventID string, in EventInput) (*Event, error)
	DeleteEvent(ctx context.Context, claims Claims, eventID string) error
}

// ParticipationService toggles a user's membership in an event's roster.
type ParticipationService interface {
	ToggleParticipation(ctx context.Context, claims Claims, eventID, userID string) (*Event, error)
}

// QueryService answers calendar reads.
type QueryService interface {
	QueryEvents(ctx context.Context, claims Claims, start, end time.Time) ([]*EventView, error)
	GetEvent(ctx context.Context, claims Claims, eventID string) (*EventView, error)
}
