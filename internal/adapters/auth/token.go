package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventcalendar/internal/domain"
)

const issuerName = "eventcalendar"

type jwtClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// JWT signs and verifies HS256 tokens carrying {sub, username, role}.
type JWT struct {
	secret []byte
	now    func() time.Time
}

// NewJWT returns a TokenIssuer and TokenVerifier backed by the shared secret.
func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), now: time.Now}
}

var (
	_ domain.TokenIssuer   = (*JWT)(nil)
	_ domain.TokenVerifier = (*JWT)(nil)
)

func (j *JWT) Issue(c domain.Claims, expiry time.Duration) (string, error) {
	if c.ID == "" || c.Role == domain.RoleGuest {
		return "", fmt.Errorf("cannot issue a token for a guest")
	}
	now := j.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   c.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Username: c.Username,
		Role:     string(c.Role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature, algorithm, issuer and expiry. Tokens whose role is
// not ADMIN or USER are rejected.
func (j *JWT) Verify(tokenString string) (domain.Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || claims.Subject == "" {
		return domain.Claims{}, errors.New("invalid token: missing subject")
	}
	role := domain.ParseRole(claims.Role)
	if role == domain.RoleGuest {
		return domain.Claims{}, fmt.Errorf("invalid token: unknown role %q", claims.Role)
	}
	return domain.Claims{ID: claims.Subject, Username: claims.Username, Role: role}, nil
}
