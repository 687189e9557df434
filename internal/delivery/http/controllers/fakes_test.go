package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventcalendar/internal/delivery/http/middleware"
	"eventcalendar/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var (
	adminClaims = domain.Claims{ID: "u-admin", Username: "admin", Role: domain.RoleAdmin}
	aliceClaims = domain.Claims{ID: "u-alice", Username: "alice", Role: domain.RoleUser}
)

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	createResult *domain.Event
	createErr    error
	updateResult *domain.Event
	updateErr    error
	deleteErr    error

	lastClaims  domain.Claims
	lastEventID string
	lastInput   domain.EventInput
	calls       int
}

func (f *fakeEventService) CreateEvent(_ context.Context, claims domain.Claims, in domain.EventInput) (*domain.Event, error) {
	f.calls++
	f.lastClaims, f.lastInput = claims, in
	return f.createResult, f.createErr
}

func (f *fakeEventService) UpdateEvent(_ context.Context, claims domain.Claims, eventID string, in domain.EventInput) (*domain.Event, error) {
	f.calls++
	f.lastClaims, f.lastEventID, f.lastInput = claims, eventID, in
	return f.updateResult, f.updateErr
}

func (f *fakeEventService) DeleteEvent(_ context.Context, claims domain.Claims, eventID string) error {
	f.calls++
	f.lastClaims, f.lastEventID = claims, eventID
	return f.deleteErr
}

// fakeQueryService implements domain.QueryService for handler tests.
type fakeQueryService struct {
	events  []*domain.EventView
	view    *domain.EventView
	err     error
	start   time.Time
	end     time.Time
	claims  domain.Claims
	eventID string
}

func (f *fakeQueryService) QueryEvents(_ context.Context, claims domain.Claims, start, end time.Time) ([]*domain.EventView, error) {
	f.claims, f.start, f.end = claims, start, end
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeQueryService) GetEvent(_ context.Context, claims domain.Claims, eventID string) (*domain.EventView, error) {
	f.claims, f.eventID = claims, eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.view, nil
}

// fakeParticipationService implements domain.ParticipationService for handler tests.
type fakeParticipationService struct {
	result      *domain.Event
	err         error
	lastClaims  domain.Claims
	lastEventID string
	lastUserID  string
	calls       int
}

func (f *fakeParticipationService) ToggleParticipation(_ context.Context, claims domain.Claims, eventID, userID string) (*domain.Event, error) {
	f.calls++
	f.lastClaims, f.lastEventID, f.lastUserID = claims, eventID, userID
	return f.result, f.err
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	registerResult *domain.User
	registerErr    error
	loginToken     string
	loginUser      *domain.User
	loginErr       error
	lastIdentifier string
	lastUsername   string
	lastEmail      string
	lastPassword   string
}

func (f *fakeAuthService) Register(_ context.Context, username, email, password string) (*domain.User, error) {
	f.lastUsername, f.lastEmail, f.lastPassword = username, email, password
	return f.registerResult, f.registerErr
}

func (f *fakeAuthService) Login(_ context.Context, identifier, password string) (string, *domain.User, error) {
	f.lastIdentifier, f.lastPassword = identifier, password
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.loginToken, f.loginUser, nil
}

type fakeRenderer struct {
	rendered []*domain.EventView
}

func (f *fakeRenderer) Render(events []*domain.EventView) string {
	f.rendered = events
	return "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"
}

// newRequest builds a request carrying claims the way the auth middleware would.
// pathValues are name/value pairs for r.PathValue.
func newRequest(method, target, body string, claims domain.Claims, pathValues ...string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(pathValues); i += 2 {
		r.SetPathValue(pathValues[i], pathValues[i+1])
	}
	return r.WithContext(middleware.SetClaims(r.Context(), claims))
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	require.False(t, env.Success)
	require.Equal(t, code, env.Code)
	require.NotEmpty(t, env.Message)
	return env
}
