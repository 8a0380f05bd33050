package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/jrsteele09/crm-console/internal/errors"
	"github.com/jrsteele09/crm-console/session"
	"github.com/rs/zerolog/log"
)

const maxResponseBytes = 1 << 20

var _ Authenticator = (*Remote)(nil)

// Remote posts credentials to an HTTP login endpoint
type Remote struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

type RemoteOption func(*Remote)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) {
		r.client = c
	}
}

// WithTimeout bounds each login call
func WithTimeout(d time.Duration) RemoteOption {
	return func(r *Remote) {
		r.timeout = d
	}
}

func NewRemote(url string, opts ...RemoteOption) *Remote {
	r := &Remote{
		url:     url,
		client:  http.DefaultClient,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type errorBody struct {
	Message string `json:"message"`
}

// Login returns ErrInvalidCredentials when the endpoint rejects the credentials and
// ErrAuthUnavailable when it cannot be reached or fails. Other 4xx answers such as
// 404 or 429 say nothing about the credentials and count as unavailable.
func (r *Remote) Login(ctx context.Context, creds Credentials) (session.LoginResponse, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	body, err := json.Marshal(creds)
	if err != nil {
		return session.LoginResponse{}, fmt.Errorf("[Remote Login] encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return session.LoginResponse{}, fmt.Errorf("[Remote Login] request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return session.LoginResponse{}, ctx.Err()
		}
		return session.LoginResponse{}, apperrors.Wrapf(apperrors.ErrAuthUnavailable, "%s", err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return session.LoginResponse{}, apperrors.Wrapf(apperrors.ErrAuthUnavailable, "read body")
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case isCredentialRejection(resp.StatusCode):
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		if eb.Message == "" {
			eb.Message = "Login failed"
		}
		return session.LoginResponse{}, &LoginError{Message: eb.Message, Err: apperrors.ErrInvalidCredentials}
	default:
		log.Warn().Int("status", resp.StatusCode).Str("url", r.url).Msg("login endpoint failed")
		return session.LoginResponse{}, apperrors.Wrapf(apperrors.ErrAuthUnavailable, "status %d", resp.StatusCode)
	}

	loginResp, err := session.ParseLoginResponse(data)
	if err != nil {
		return session.LoginResponse{}, apperrors.Wrapf(apperrors.ErrAuthUnavailable, "%s", err.Error())
	}
	if loginResp.Token == "" {
		return session.LoginResponse{}, apperrors.Wrapf(apperrors.ErrAuthUnavailable, "response has no token")
	}
	return loginResp, nil
}

func isCredentialRejection(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}
