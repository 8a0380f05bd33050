package session

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/jrsteele09/crm-console/internal/utils"
)

// Key canonicalises a module, submodule or role name for comparison
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RoleRef is the role a login payload attaches to a user. The backend sends either a
// bare role name or an object carrying the name and the role's permission ids.
type RoleRef struct {
	Name        string
	Permissions []string
	object      bool
}

// RoleName returns a bare role name
func RoleName(name string) RoleRef {
	return RoleRef{Name: name}
}

// RoleObject returns an object-form role with its permission ids
func RoleObject(name string, permissions ...string) RoleRef {
	if len(permissions) == 0 {
		permissions = nil
	}
	return RoleRef{Name: name, Permissions: permissions, object: true}
}

// IsObject reports whether the role was given in object form
func (r RoleRef) IsObject() bool {
	return r.object
}

type roleObject struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
}

func (r RoleRef) MarshalJSON() ([]byte, error) {
	if r.object {
		return json.Marshal(roleObject{Name: r.Name, Permissions: r.Permissions})
	}
	if r.Name == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.Name)
}

// UnmarshalJSON never fails on a well-formed JSON value. Shapes other than a string
// or an object decode to the zero RoleRef, which yields an empty role.
func (r *RoleRef) UnmarshalJSON(data []byte) error {
	*r = RoleRef{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err == nil {
			r.Name = name
		}
	case '{':
		var raw struct {
			Name        any   `json:"name"`
			Permissions []any `json:"permissions"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			var fields map[string]json.RawMessage
			if json.Unmarshal(data, &fields) != nil {
				return nil
			}
			_ = json.Unmarshal(fields["name"], &raw.Name)
		}
		r.object = true
		r.Name, _ = raw.Name.(string)
		if perms := utils.ToStringSlice(raw.Permissions); len(perms) > 0 {
			r.Permissions = perms
		}
	}
	return nil
}

// SubmoduleGrant is a named subdivision of a module. It arrives either as a bare
// string or as a {name} object.
type SubmoduleGrant struct {
	Name string
	bare bool
}

// Submodule returns an object-form submodule grant
func Submodule(name string) SubmoduleGrant {
	return SubmoduleGrant{Name: name}
}

// BareSubmodule returns a string-form submodule grant
func BareSubmodule(name string) SubmoduleGrant {
	return SubmoduleGrant{Name: name, bare: true}
}

func (g SubmoduleGrant) Key() string {
	return Key(g.Name)
}

func (g SubmoduleGrant) MarshalJSON() ([]byte, error) {
	if g.bare {
		return json.Marshal(g.Name)
	}
	return json.Marshal(struct {
		Name string `json:"name"`
	}{Name: g.Name})
}

func (g *SubmoduleGrant) UnmarshalJSON(data []byte) error {
	name, bare := decodeNamed(data)
	*g = SubmoduleGrant{Name: name, bare: bare}
	return nil
}

// ModuleGrant is a functional area the user may open, optionally with the
// submodules granted within it.
type ModuleGrant struct {
	ID         string
	Name       string
	Submodules []SubmoduleGrant
	bare       bool
}

// Module returns an object-form module grant
func Module(id, name string, submodules ...SubmoduleGrant) ModuleGrant {
	if len(submodules) == 0 {
		submodules = nil
	}
	return ModuleGrant{ID: id, Name: name, Submodules: submodules}
}

// BareModule returns a string-form module grant
func BareModule(name string) ModuleGrant {
	return ModuleGrant{Name: name, bare: true}
}

func (g ModuleGrant) Key() string {
	return Key(g.Name)
}

type moduleObject struct {
	ID         string           `json:"id,omitempty"`
	Name       string           `json:"name"`
	Submodules []SubmoduleGrant `json:"submodules,omitempty"`
}

func (g ModuleGrant) MarshalJSON() ([]byte, error) {
	if g.bare {
		return json.Marshal(g.Name)
	}
	return json.Marshal(moduleObject{ID: g.ID, Name: g.Name, Submodules: g.Submodules})
}

func (g *ModuleGrant) UnmarshalJSON(data []byte) error {
	*g = ModuleGrant{}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil
		}
		_ = json.Unmarshal(fields["id"], &g.ID)
		_ = json.Unmarshal(fields["name"], &g.Name)
		var subs []SubmoduleGrant
		if json.Unmarshal(fields["submodules"], &subs) == nil && len(subs) > 0 {
			g.Submodules = subs
		}
		return nil
	}
	g.Name, g.bare = decodeNamed(data)
	return nil
}

// decodeNamed reads either "name" or {"name": "..."}. Anything else is an unnamed
// object grant.
func decodeNamed(data []byte) (name string, bare bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", false
	}
	if data[0] == '"' {
		if err := json.Unmarshal(data, &name); err == nil {
			return name, true
		}
		return "", false
	}
	var obj struct {
		Name any `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		name, _ = obj.Name.(string)
	}
	return name, false
}

func cloneModules(modules []ModuleGrant) []ModuleGrant {
	out := make([]ModuleGrant, len(modules))
	for i, m := range modules {
		out[i] = m
		if m.Submodules != nil {
			out[i].Submodules = append([]SubmoduleGrant(nil), m.Submodules...)
		}
	}
	return out
}
