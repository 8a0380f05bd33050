package config

import (
	"fmt"
	"os"

	"github.com/jrsteele09/crm-console/guard"
	apperrors "github.com/jrsteele09/crm-console/internal/errors"
	"github.com/jrsteele09/crm-console/permissions"
	"gopkg.in/yaml.v3"
)

// ConsoleFile holds deployment overrides:
//
//	permissions:
//	  6902f14821ac553ab13fa9b1: billing
//	routes:
//	  /admin/reports/hr:
//	    modules: [reports]
//	    submodules: [hr]
type ConsoleFile struct {
	Permissions permissions.Map              `yaml:"permissions"`
	Routes      map[string]guard.Requirement `yaml:"routes"`
}

// LoadConsoleFile reads path. An empty path yields an empty ConsoleFile.
func LoadConsoleFile(path string) (ConsoleFile, error) {
	if path == "" {
		return ConsoleFile{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ConsoleFile{}, fmt.Errorf("[LoadConsoleFile] read %s: %w", path, err)
	}

	var f ConsoleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return ConsoleFile{}, apperrors.Wrapf(apperrors.ErrInvalidConfig, "%s: %s", path, err.Error())
	}
	for route := range f.Routes {
		if route == "" || route[0] != '/' {
			return ConsoleFile{}, apperrors.Wrapf(apperrors.ErrInvalidConfig, "%s: route %q must start with /", path, route)
		}
	}
	return f, nil
}

// PermissionMap returns the default table with the file's overrides applied
func (f ConsoleFile) PermissionMap() permissions.Map {
	return permissions.Default().Merge(f.Permissions)
}
