package config

import (
	"strings"
	"time"
)

const (
	AuthRemote = "remote"
	AuthLocal  = "local"
)

type AuthConfig interface {
	GetAuthBackend() string
	GetAuthLoginURL() string
	GetAuthTimeout() time.Duration
	GetLocalJWTSecret() string
	GetLocalTokenExpiry() time.Duration
	GetDemoPassword() string
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetAuthBackend() string {
	return strings.ToLower(GetEnv("AUTH_BACKEND", AuthRemote))
}

// GetAuthLoginURL is the CRM endpoint that accepts {email, password}
func (Auth) GetAuthLoginURL() string {
	return GetEnv("AUTH_LOGIN_URL", "http://localhost:5000/api/auth/login")
}

func (Auth) GetAuthTimeout() time.Duration {
	return GetEnvDuration("AUTH_TIMEOUT", 10*time.Second)
}

func (Auth) GetLocalJWTSecret() string {
	return GetEnv("LOCAL_JWT_SECRET", "")
}

func (Auth) GetLocalTokenExpiry() time.Duration {
	return GetEnvDuration("LOCAL_TOKEN_EXPIRY", 8*time.Hour)
}

// GetDemoPassword is shared by the seeded local accounts
func (Auth) GetDemoPassword() string {
	return GetEnv("DEMO_PASSWORD", "password123")
}
