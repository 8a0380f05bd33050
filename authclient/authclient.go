// Package authclient talks to the authentication endpoint that turns an email and
// password into the token and user record a console session is built from.
package authclient

import (
	"context"
	"net/mail"
	"strings"

	apperrors "github.com/jrsteele09/crm-console/internal/errors"
	"github.com/jrsteele09/crm-console/session"
)

// Credentials is the login request body
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate applies the login form rules: a well-formed email and a password
func (c Credentials) Validate() error {
	email := strings.TrimSpace(c.Email)
	if email == "" {
		return &LoginError{Message: "Email is required", Err: apperrors.ErrInvalidLoginForm}
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return &LoginError{Message: "Invalid email format", Err: apperrors.ErrInvalidLoginForm}
	}
	if c.Password == "" {
		return &LoginError{Message: "Password is required", Err: apperrors.ErrInvalidLoginForm}
	}
	return nil
}

// LoginError carries a message that is safe to show on the login form
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	return e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// Message returns the user facing text for a failed login
func Message(err error) string {
	var le *LoginError
	if apperrors.As(err, &le) && le.Message != "" {
		return le.Message
	}
	if apperrors.Is(err, apperrors.ErrInvalidCredentials) {
		return "Invalid email or password"
	}
	return "Login failed"
}

// Authenticator exchanges credentials for a login response
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (session.LoginResponse, error)
}

// Fetcher adapts an Authenticator call to session.Store.LoginWith
func Fetcher(a Authenticator, creds Credentials) func(context.Context) (session.LoginResponse, error) {
	return func(ctx context.Context) (session.LoginResponse, error) {
		return a.Login(ctx, creds)
	}
}
