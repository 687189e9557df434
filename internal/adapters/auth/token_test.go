package auth

import (
	"testing"
	"time"

	"eventcalendar/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_Issue_and_Verify(t *testing.T) {
	j := NewJWT("test-secret")
	in := domain.Claims{ID: "user-123", Username: "alice", Role: domain.RoleAdmin}

	token, err := j.Issue(in, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "ADMIN", claims.Role)

	out, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestJWT_Issue_rejects_guest(t *testing.T) {
	_, err := NewJWT("s").Issue(domain.GuestClaims(), time.Hour)
	require.Error(t, err)
}

func TestJWT_Verify_rejects(t *testing.T) {
	j := NewJWT("test-secret")
	valid, err := j.Issue(domain.Claims{ID: "u1", Username: "alice", Role: domain.RoleUser}, time.Hour)
	require.NoError(t, err)

	expired := NewJWT("test-secret")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue(domain.Claims{ID: "u1", Role: domain.RoleUser}, time.Hour)
	require.NoError(t, err)

	otherSecret, err := NewJWT("other-secret").Issue(domain.Claims{ID: "u1", Role: domain.RoleUser}, time.Hour)
	require.NoError(t, err)

	sign := func(claims jwtClaims, method jwt.SigningMethod) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return s
	}
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	badRole := sign(jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuerName, Subject: "u1", ExpiresAt: future},
		Role:             "GUEST",
	}, jwt.SigningMethodHS256)
	wrongAlg := sign(jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuerName, Subject: "u1", ExpiresAt: future},
		Role:             "USER",
	}, jwt.SigningMethodHS512)
	noExpiry := sign(jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuerName, Subject: "u1"},
		Role:             "USER",
	}, jwt.SigningMethodHS256)
	wrongIssuer := sign(jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", Subject: "u1", ExpiresAt: future},
		Role:             "USER",
	}, jwt.SigningMethodHS256)

	tests := map[string]string{
		"garbage":      "not.a.token",
		"expired":      expiredToken,
		"other secret": otherSecret,
		"guest role":   badRole,
		"HS512":        wrongAlg,
		"no expiry":    noExpiry,
		"wrong issuer": wrongIssuer,
		"tampered":     valid + "x",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := j.Verify(token)
			assert.Error(t, err)
		})
	}
}
