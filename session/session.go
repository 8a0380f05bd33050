package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Storage keys. Absent means "not set"; empty values are never written.
const (
	KeyToken   = "token"
	KeyUser    = "user"
	KeyRole    = "role"
	KeyModules = "modules"
)

// SuperAdminRole bypasses every role, module and submodule requirement
const SuperAdminRole = "superadmin"

// UserRecord is the user the authentication endpoint returns
type UserRecord struct {
	ID       string  `json:"id,omitempty"`
	FullName string  `json:"fullName,omitempty"`
	Email    string  `json:"email,omitempty"`
	Role     RoleRef `json:"role"`
}

var errUserNotObject = errors.New("user is not a JSON object")

// UnmarshalJSON accepts any field shapes inside an object; mistyped fields are dropped.
func (u *UserRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return errUserNotObject
	}
	*u = UserRecord{
		ID:       scalarString(fields["id"]),
		FullName: scalarString(fields["fullName"]),
		Email:    scalarString(fields["email"]),
	}
	if raw, ok := fields["role"]; ok {
		_ = json.Unmarshal(raw, &u.Role)
	}
	return nil
}

func (u *UserRecord) clone() *UserRecord {
	if u == nil {
		return nil
	}
	c := *u
	if u.Role.Permissions != nil {
		c.Role.Permissions = append([]string(nil), u.Role.Permissions...)
	}
	return &c
}

// scalarString reads a JSON string, or the literal text of a number
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

// LoginResponse is the success payload of the authentication endpoint
type LoginResponse struct {
	Token string      `json:"token"`
	User  *UserRecord `json:"user"`
}

// UnmarshalJSON tolerates a missing or malformed user; the session then carries no
// role and no modules.
func (r *LoginResponse) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("login response is null")
	}
	*r = LoginResponse{Token: scalarString(fields["token"])}
	if raw, ok := fields["user"]; ok {
		var user UserRecord
		if json.Unmarshal(raw, &user) == nil {
			r.User = &user
		}
	}
	return nil
}

// ParseLoginResponse decodes an authentication endpoint body. It only fails when the
// body is not a JSON object.
func ParseLoginResponse(body []byte) (LoginResponse, error) {
	var resp LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return LoginResponse{}, fmt.Errorf("[ParseLoginResponse] %w", err)
	}
	return resp, nil
}

// Snapshot is a point-in-time copy of the session
type Snapshot struct {
	Token   string        `json:"token,omitempty"`
	User    *UserRecord   `json:"user"`
	Role    string        `json:"role"`
	Modules []ModuleGrant `json:"modules"`
}

// Authenticated reports whether a bearer token is present
func (s Snapshot) Authenticated() bool {
	return s.Token != ""
}

// IsSuperAdmin compares the role case-insensitively. Surrounding spaces are not
// trimmed, so " superadmin " gets no bypass.
func (s Snapshot) IsSuperAdmin() bool {
	return strings.ToLower(s.Role) == SuperAdminRole
}

// HasRole reports whether the session role matches any of roles, ignoring case
func (s Snapshot) HasRole(roles ...string) bool {
	role := Key(s.Role)
	for _, r := range roles {
		if Key(r) == role {
			return true
		}
	}
	return false
}

// Redacted returns a copy safe to hand to the UI
func (s Snapshot) Redacted() Snapshot {
	if s.Token != "" {
		s.Token = "redacted"
	}
	return s
}
