package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
	"github.com/rl1809/aura-kitchen/internal/port"
)

// AuthService manages accounts and cookie sessions. Ordering never requires
// a session.
type AuthService struct {
	users      port.UserRepository
	sessions   port.SessionStore
	sessionTTL time.Duration
	hashCost   int
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewAuthService(users port.UserRepository, sessions port.SessionStore, sessionTTL time.Duration, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		hashCost:   bcrypt.DefaultCost,
		log:        log,
		now:        time.Now,
	}
}

func (s *AuthService) SessionTTL() time.Duration { return s.sessionTTL }

// Register creates the account and logs it in.
func (s *AuthService) Register(ctx context.Context, creds domain.Credentials) (*domain.User, string, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if err := domain.Validate(creds); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.hashCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     creds.Username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, &user); err != nil {
		return nil, "", err
	}

	sid, err := s.sessions.CreateSession(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}
	s.log.WithField("user_id", user.ID).Info("user registered")
	return &user, sid, nil
}

func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*domain.User, string, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		verr := &domain.ValidationError{}
		if creds.Username == "" {
			verr.Fields = append(verr.Fields, domain.FieldError{Field: "username", Message: "is required"})
		}
		if creds.Password == "" {
			verr.Fields = append(verr.Fields, domain.FieldError{Field: "password", Message: "is required"})
		}
		return nil, "", verr
	}

	user, err := s.users.GetUserByUsername(ctx, creds.Username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		s.log.WithField("user_id", user.ID).Warn("login failed")
		return nil, "", domain.ErrInvalidCredentials
	}

	sid, err := s.sessions.CreateSession(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}
	return user, sid, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, sessionID)
}

func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (*domain.User, error) {
	if sessionID == "" {
		return nil, domain.ErrUnauthenticated
	}
	userID, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}
