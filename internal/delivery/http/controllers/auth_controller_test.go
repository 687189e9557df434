package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventcalendar/internal/delivery/http/helpers"
	"eventcalendar/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthController_Register(t *testing.T) {
	user := &domain.User{ID: "u-alice", Username: "alice", Email: "alice@example.com", Role: domain.RoleUser, PasswordHash: "secret-hash"}

	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{"created", `{"username":"alice","email":"alice@example.com","password":"password123"}`, nil, http.StatusCreated, ""},
		{"bad email", `{"username":"alice","email":"alice","password":"password123"}`, nil, http.StatusBadRequest, helpers.ErrCodeValidation},
		{"short password", `{"username":"alice","email":"alice@example.com","password":"short"}`, nil, http.StatusBadRequest, helpers.ErrCodeValidation},
		{"role is not accepted", `{"username":"alice","email":"alice@example.com","password":"password123","role":"ADMIN"}`, nil, http.StatusBadRequest, helpers.ErrCodeValidation},
		{"duplicate", `{"username":"alice","email":"alice@example.com","password":"password123"}`, domain.ErrDuplicateUser, http.StatusConflict, helpers.ErrCodeConflict},
		{"store down", `{"username":"alice","email":"alice@example.com","password":"password123"}`, errors.New("pq: connection refused"), http.StatusInternalServerError, helpers.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{registerResult: user, registerErr: tt.svcErr}
			c := NewAuthController(testLogger, svc)
			rec := httptest.NewRecorder()

			c.Register(rec, newRequest(http.MethodPost, "/auth/register", tt.body, domain.GuestClaims()))

			if tt.wantCode != "" {
				env := requireErrorCode(t, rec, tt.wantStatus, tt.wantCode)
				assert.NotContains(t, env.Message, "pq:")
				return
			}
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.NotContains(t, rec.Body.String(), "secret-hash")
			env := decodeEnvelope(t, rec)
			var got domain.User
			require.NoError(t, json.Unmarshal(env.Data, &got))
			assert.Equal(t, "u-alice", got.ID)
			assert.Equal(t, "alice", svc.lastUsername)
			assert.Equal(t, "alice@example.com", svc.lastEmail)
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	user := &domain.User{ID: "u-alice", Username: "alice", Role: domain.RoleUser}

	tests := []struct {
		name           string
		body           string
		svcErr         error
		wantStatus     int
		wantCode       string
		wantIdentifier string
	}{
		{"by username", `{"username":"alice","password":"password123"}`, nil, http.StatusOK, "", "alice"},
		{"by email", `{"email":"alice@example.com","password":"password123"}`, nil, http.StatusOK, "", "alice@example.com"},
		{"no identifier", `{"password":"password123"}`, nil, http.StatusBadRequest, helpers.ErrCodeValidation, ""},
		{"no password", `{"username":"alice"}`, nil, http.StatusBadRequest, helpers.ErrCodeValidation, ""},
		{"wrong password", `{"username":"alice","password":"nope-nope"}`, domain.ErrInvalidCredential, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{loginToken: "signed.jwt.token", loginUser: user, loginErr: tt.svcErr}
			c := NewAuthController(testLogger, svc)
			rec := httptest.NewRecorder()

			c.Login(rec, newRequest(http.MethodPost, "/auth/login", tt.body, domain.GuestClaims()))

			assert.Equal(t, tt.wantIdentifier, svc.lastIdentifier)
			if tt.wantCode != "" {
				requireErrorCode(t, rec, tt.wantStatus, tt.wantCode)
				return
			}
			require.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope(t, rec)
			var got LoginResponse
			require.NoError(t, json.Unmarshal(env.Data, &got))
			assert.Equal(t, "signed.jwt.token", got.Token)
			assert.Equal(t, "Bearer", got.TokenType)
			require.NotNil(t, got.User)
			assert.Equal(t, domain.RoleUser, got.User.Role)
		})
	}
}
