package config

import "time"

type SecurityConfig interface {
	GetSessionCookieName() string
	GetMaxSessionAge() time.Duration
	GetSecureCookies() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE", "console_sid")
}

// GetMaxSessionAge is the visitor cookie lifetime. Logging out does not depend on it.
func (Security) GetMaxSessionAge() time.Duration {
	return GetEnvDuration("SESSION_MAX_AGE", 30*24*time.Hour)
}

// GetSecureCookies defaults to true everywhere except DEV
func (Security) GetSecureCookies() bool {
	return GetEnvBool("SECURE_COOKIES", EnvVars{}.GetEnv() != "DEV")
}
