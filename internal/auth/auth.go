package auth

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

// User is a dashboard account. Password holds the bcrypt hash, never the
// plain secret.
type User struct {
	ID       uuid.UUID
	Name     string
	Email    string
	Password string
}

// Credentials is the login form input.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

func CredentialsFromValues(values url.Values) Credentials {
	return Credentials{
		Email:    values.Get("email"),
		Password: values.Get("password"),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorType classifies sign-in failures.
type ErrorType string

const (
	// CredentialsSignin means the credentials did not match an account.
	CredentialsSignin ErrorType = "CredentialsSignin"
	// CallbackRouteError means the account lookup itself failed.
	CallbackRouteError ErrorType = "CallbackRouteError"
)

// Error is a sign-in failure. Callers branch on Type.
type Error struct {
	Type ErrorType
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Type)
	}

	return fmt.Sprintf("%s: %v", e.Type, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
