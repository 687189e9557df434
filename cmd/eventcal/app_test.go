package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcalendar/config"
	"eventcalendar/internal/domain"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Environment:       "test",
		LogLevel:          "error",
		Port:              "0",
		Storage:           config.StorageMemory,
		JWTSecret:         "test-secret",
		JWTExpiry:         time.Hour,
		PasswordCost:      4,
		PriceMax:          decimal.NewFromInt(1000),
		QueryMaxWindow:    24 * time.Hour,
		RequestTimeout:    time.Second,
		ToggleMaxAttempts: 3,
		CalendarName:      "Test",
		Email:             config.EmailConfig{Provider: "noop"},
	}
}

func TestNewApplication_memory(t *testing.T) {
	cfg := memoryConfig()
	app, err := newApplication(context.Background(), cfg, cfg.NewLogger())
	require.NoError(t, err)
	defer app.stores.Close()

	_, err = app.auth.Provision(context.Background(), "admin", "admin@example.com", "admin-password", domain.RoleAdmin)
	require.NoError(t, err)

	for _, path := range []string{"/health", "/events?start=2024-01-01&end=2024-01-02", "/metrics", "/events.ics?start=2024-01-01&end=2024-01-02"} {
		rec := httptest.NewRecorder()
		app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events?start=2024-01-01&end=2024-03-01", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "window longer than QUERY_MAX_WINDOW")

	rec = httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"admin","password":"admin-password"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRootCommand_tree(t *testing.T) {
	root := newRootCommand()
	for _, args := range [][]string{{"serve"}, {"migrate", "up"}, {"migrate", "down"}, {"admin", "create"}} {
		cmd, _, err := root.Find(args)
		require.NoError(t, err, args)
		assert.Equal(t, args[len(args)-1], cmd.Name())
	}
	down, _, err := root.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	assert.Equal(t, "1", down.Flags().Lookup("steps").DefValue)
}
