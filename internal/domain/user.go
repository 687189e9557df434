package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUser     = errors.New("username or email already in use")
	ErrInvalidCredential = errors.New("invalid credentials")
)

// Role is the caller's privilege level.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
	RoleGuest Role = "GUEST"
)

// ParseRole maps a role name (any case) to a Role. Unknown names map to RoleGuest.
func ParseRole(s string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleUser:
		return RoleUser
	default:
		return RoleGuest
	}
}

// Claims identify the caller of an operation. They are passed explicitly to
// every service call; the zero value is not valid, use GuestClaims.
type Claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// GuestClaims are the claims of an unauthenticated caller.
func GuestClaims() Claims {
	return Claims{Role: RoleGuest}
}

// IsGuest reports whether the caller has no session.
func (c Claims) IsGuest() bool {
	return c.Role == RoleGuest || c.Role == "" || c.ID == ""
}

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Claims returns the session claims for u.
func (u *User) Claims() Claims {
	return Claims{ID: u.ID, Username: u.Username, Role: u.Role}
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues signed tokens carrying the given claims.
type TokenIssuer interface {
	Issue(claims Claims, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the claims it carries.
type TokenVerifier interface {
	Verify(token string) (Claims, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// ListByIDs returns the users that exist among ids, in no particular order.
	ListByIDs(ctx context.Context, ids []string) ([]*User, error)
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*User, error)
	Login(ctx context.Context, identifier, password string) (token string, user *User, err error)
}
