// Package guard decides whether the current session may open a console screen.
//
// The decision is a pure function of a session snapshot and the screen's declared
// Requirement. It performs no I/O and never fails; it always returns a Verdict.
// It is a convenience gate for the UI. The CRM APIs enforce access on their own.
package guard

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/crm-console/session"
)

// Verdict is the outcome of evaluating a screen requirement
type Verdict int

const (
	Allow Verdict = iota
	RedirectLogin
	RedirectUnauthorized
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "ALLOW"
	case RedirectLogin:
		return "REDIRECT_LOGIN"
	case RedirectUnauthorized:
		return "REDIRECT_UNAUTHORIZED"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Requirement is the static access declaration of a screen. An empty list places no
// restriction on that dimension.
type Requirement struct {
	AllowedRoles      []string `yaml:"roles,omitempty" json:"allowedRoles,omitempty"`
	AllowedModules    []string `yaml:"modules,omitempty" json:"allowedModules,omitempty"`
	AllowedSubmodules []string `yaml:"submodules,omitempty" json:"allowedSubmodules,omitempty"`
}

func (r Requirement) String() string {
	var parts []string
	if len(r.AllowedRoles) > 0 {
		parts = append(parts, "roles="+strings.Join(r.AllowedRoles, ","))
	}
	if len(r.AllowedModules) > 0 {
		parts = append(parts, "modules="+strings.Join(r.AllowedModules, ","))
	}
	if len(r.AllowedSubmodules) > 0 {
		parts = append(parts, "submodules="+strings.Join(r.AllowedSubmodules, ","))
	}
	if len(parts) == 0 {
		return "authenticated"
	}
	return strings.Join(parts, " ")
}

// Decision is a verdict plus the reason it was reached
type Decision struct {
	Verdict Verdict
	Reason  string
}

// Evaluate returns the verdict for opening a screen declared with req
func Evaluate(s session.Snapshot, req Requirement) Verdict {
	return Explain(s, req).Verdict
}

// Explain evaluates req against s. Checks run in a fixed order and the first failing
// check decides: token, superadmin bypass, role, module, submodule.
//
// A submodule requirement is checked on its own. It does not require the parent
// module to be granted unless the requirement also lists that module.
func Explain(s session.Snapshot, req Requirement) Decision {
	if !s.Authenticated() {
		return Decision{RedirectLogin, "no session token"}
	}

	if s.IsSuperAdmin() {
		return Decision{Allow, "superadmin"}
	}

	if len(req.AllowedRoles) > 0 && !s.HasRole(req.AllowedRoles...) {
		return Decision{RedirectUnauthorized, fmt.Sprintf("role %q not in %v", s.Role, req.AllowedRoles)}
	}

	if len(req.AllowedModules) > 0 && !anyIn(req.AllowedModules, moduleKeys(s.Modules)) {
		return Decision{RedirectUnauthorized, fmt.Sprintf("no module in %v", req.AllowedModules)}
	}

	if len(req.AllowedSubmodules) > 0 && !anyIn(req.AllowedSubmodules, submoduleKeys(s.Modules)) {
		return Decision{RedirectUnauthorized, fmt.Sprintf("no submodule in %v", req.AllowedSubmodules)}
	}

	return Decision{Allow, "requirements met"}
}

// CanSeeModule reports whether a navigation entry for module should be shown
func CanSeeModule(s session.Snapshot, module string) bool {
	if s.IsSuperAdmin() {
		return true
	}
	_, ok := moduleKeys(s.Modules)[session.Key(module)]
	return ok
}

// CanSeeSubmodule reports whether sub is granted under the named parent module
func CanSeeSubmodule(s session.Snapshot, parent, sub string) bool {
	if s.IsSuperAdmin() {
		return true
	}
	parentKey, subKey := session.Key(parent), session.Key(sub)
	for _, m := range s.Modules {
		if m.Key() != parentKey {
			continue
		}
		for _, sm := range m.Submodules {
			if sm.Key() == subKey {
				return true
			}
		}
	}
	return false
}

type keySet map[string]struct{}

func moduleKeys(modules []session.ModuleGrant) keySet {
	keys := make(keySet, len(modules))
	for _, m := range modules {
		if k := m.Key(); k != "" {
			keys[k] = struct{}{}
		}
	}
	return keys
}

func submoduleKeys(modules []session.ModuleGrant) keySet {
	keys := make(keySet)
	for _, m := range modules {
		for _, sm := range m.Submodules {
			if k := sm.Key(); k != "" {
				keys[k] = struct{}{}
			}
		}
	}
	return keys
}

func anyIn(wanted []string, granted keySet) bool {
	for _, w := range wanted {
		if _, ok := granted[session.Key(w)]; ok {
			return true
		}
	}
	return false
}
