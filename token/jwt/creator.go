package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/crm-console/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const issuer = "crm-console"

// Creator issues the HS256 bearer tokens handed out by the local login backend
type Creator struct {
	secret []byte
	expiry time.Duration
}

// NewCreator creates a new JWT creator
func NewCreator(secret []byte, expiry time.Duration) (*Creator, error) {
	if len(secret) < 16 {
		return nil, errors.New("[NewCreator] secret must be at least 16 bytes")
	}
	if expiry <= 0 {
		return nil, errors.New("[NewCreator] expiry must be positive")
	}
	return &Creator{
		secret: secret,
		expiry: expiry,
	}, nil
}

// CreateAccessToken creates a bearer token for user
func (c *Creator) CreateAccessToken(user *users.User) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"iss":   issuer,                   // The issuer of the token
		"sub":   user.ID,                  // The user the token was issued to
		"email": user.Email,               // Login email
		"role":  user.Role,                // Role name at the time of issue
		"iat":   now.Unix(),               // Issued At
		"exp":   now.Add(c.expiry).Unix(), // Expiry
		"jti":   uuid.New().String(),      // Unique token ID
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}
