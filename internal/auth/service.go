package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials = "Invalid email or password."
	msgAuthFailed         = "Failed to authenticate."
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=auth
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// missHash is compared against when the email is unknown, so a miss costs
// as much as a wrong password.
var missHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("unknown-user"), bcrypt.DefaultCost)
	return hash
})

type Service struct {
	users    UserRepository
	sessions *Sessions
	compare  func(hash, password []byte) error
}

func NewService(users UserRepository, sessions *Sessions) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		compare:  bcrypt.CompareHashAndPassword,
	}
}

// Authorize returns the user the credentials belong to, or nil when they
// match nobody. Malformed credentials never reach the user lookup, and an
// unknown email is indistinguishable from a wrong password.
func (s *Service) Authorize(ctx context.Context, creds Credentials) (*User, error) {
	if err := validate.Struct(creds); err != nil {
		slog.InfoContext(ctx, "invalid credentials")
		return nil, nil
	}

	user, err := s.users.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = s.compare(missHash(), []byte(creds.Password))

			slog.InfoContext(ctx, "invalid credentials")

			return nil, nil
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	err = s.compare([]byte(user.Password), []byte(creds.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			slog.InfoContext(ctx, "invalid credentials")
			return nil, nil
		}

		return nil, fmt.Errorf("comparing password for user %s: %w", user.ID, err)
	}

	return user, nil
}

// SignIn authorizes the credentials and opens a session. Authorization
// failures are returned as *Error.
func (s *Service) SignIn(ctx context.Context, creds Credentials) (*Session, error) {
	user, err := s.Authorize(ctx, creds)
	if err != nil {
		return nil, &Error{Type: CallbackRouteError, Err: err}
	}

	if user == nil {
		return nil, &Error{Type: CredentialsSignin}
	}

	sess, err := s.sessions.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issuing session: %w", err)
	}

	return sess, nil
}

// Authenticate signs the user in and turns sign-in failures into a message
// for the login form. Exactly one of the session and the message is set when
// err is nil. Errors that are not sign-in failures are returned as is.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (*Session, string, error) {
	sess, err := s.SignIn(ctx, creds)
	if err == nil {
		return sess, "", nil
	}

	var authErr *Error
	if !errors.As(err, &authErr) {
		return nil, "", err
	}

	switch authErr.Type {
	case CredentialsSignin:
		return nil, msgInvalidCredentials, nil
	default:
		slog.ErrorContext(ctx, "sign in failed", "type", authErr.Type, "error", authErr.Err)
		return nil, msgAuthFailed, nil
	}
}
