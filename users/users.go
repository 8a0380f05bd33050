package users

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User is an account in the development user directory the local login backend
// authenticates against.
type User struct {
	ID           string   `json:"id,omitempty"`       // Unique identifier for the user
	FullName     string   `json:"fullName,omitempty"` // Display name
	Email        string   `json:"email,omitempty"`    // Login email, unique
	PasswordHash string   `json:"-"`                  // bcrypt hash - never serialize
	Role         string   `json:"role,omitempty"`     // Role name, e.g. "superadmin", "admin", "manager"
	Permissions  []string `json:"permissions"`        // Permission ids granted through the role
	Blocked      bool     `json:"blocked,omitempty"`  // Blocked users cannot log in
}

// NormaliseEmail lower-cases and trims an email for lookups
func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the user's hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}
