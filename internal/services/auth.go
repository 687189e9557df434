package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"eventcalendar/internal/domain"
)

const minPasswordLen = 8

var (
	emailRegexp    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)
)

// AuthService implements domain.AuthService and adds out-of-band provisioning
// of privileged accounts, which is never reachable over HTTP.
type AuthService struct {
	userRepo     domain.UserRepository
	hasher       domain.PasswordHasher
	tokenIssuer  domain.TokenIssuer
	tokenExpiry  time.Duration
	emailService domain.EmailService
	logger       *slog.Logger
	now          func() time.Time
}

// NewAuthService creates an AuthService with the given repository and auth ports.
// emailService may be nil, in which case no welcome email is sent.
func NewAuthService(userRepo domain.UserRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration, emailService domain.EmailService, logger *slog.Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		hasher:       hasher,
		tokenIssuer:  tokenIssuer,
		tokenExpiry:  tokenExpiry,
		emailService: emailService,
		logger:       logger,
		now:          time.Now,
	}
}

var _ domain.AuthService = (*AuthService)(nil)

// Register creates a USER account and sends the welcome email.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	user, err := s.create(ctx, username, email, password, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	if s.emailService != nil {
		data := &domain.WelcomeMessageEmailData{Email: user.Email, Username: user.Username}
		if err := s.emailService.SendWelcomeMessage(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "welcome email not sent", "user_id", user.ID, "err", err)
		}
	}
	return user, nil
}

// Provision creates an account with the given role, or returns the existing
// account when the username is already taken by one with that role.
func (s *AuthService) Provision(ctx context.Context, username, email, password string, role domain.Role) (*domain.User, error) {
	if existing, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username)); err == nil {
		if existing.Role != role {
			return nil, fmt.Errorf("user %q exists with role %s", existing.Username, existing.Role)
		}
		return existing, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	return s.create(ctx, username, email, password, role)
}

func (s *AuthService) create(ctx context.Context, username, email, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	var problems []string
	if !usernameRegexp.MatchString(username) {
		problems = append(problems, "username must be 3-32 letters, digits, '.', '_' or '-'")
	}
	if !emailRegexp.MatchString(email) {
		problems = append(problems, "invalid email format")
	}
	if len(password) < minPasswordLen {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		problems = append(problems, "role must be USER or ADMIN")
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	user := &domain.User{
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.InfoContext(ctx, "user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login accepts a username or an email as identifier.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	var (
		user *domain.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredential
		}
		return "", nil, fmt.Errorf("look up user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredential
	}
	token, err := s.tokenIssuer.Issue(user.Claims(), s.tokenExpiry)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
