// Package permissions translates the opaque permission ids a role carries into the
// module names the console gates screens on.
package permissions

// Map is a permission id to module name table. Treat it as read-only once loaded.
type Map map[string]string

// Default is the table shipped with the console
func Default() Map {
	return Map{
		"6902f14821ac553ab13fa9a5": "dashboard",
		"6902f14821ac553ab13fa9a6": "users",
		"6902f14821ac553ab13fa9a7": "roles",
		"6902f14821ac553ab13fa9a8": "reports",
		"6902f14821ac553ab13fa9a9": "settings",
		"6902f14821ac553ab13fa9aa": "profile",
		"6902f14821ac553ab13fa9ab": "sales",
		"6902f14821ac553ab13fa9ac": "hr",
		"6902f14821ac553ab13fa9ad": "bde",
		"6902f14821ac553ab13fa9ae": "analytics",
		"6902f14821ac553ab13fa9af": "support",
		"6902f14821ac553ab13fa9b0": "leads",
	}
}

// Resolve returns the module name for id, or id itself when it is not mapped
func (m Map) Resolve(id string) string {
	if name, ok := m[id]; ok {
		return name
	}
	return id
}

// IDFor is the reverse lookup, used to seed demo accounts by module name
func (m Map) IDFor(module string) (string, bool) {
	for id, name := range m {
		if name == module {
			return id, true
		}
	}
	return "", false
}

// Merge returns a new Map with overrides applied on top of m
func (m Map) Merge(overrides Map) Map {
	merged := make(Map, len(m)+len(overrides))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
