package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/jrsteele09/crm-console/authclient"
	"github.com/jrsteele09/crm-console/internal/config"
	apperrors "github.com/jrsteele09/crm-console/internal/errors"
	"github.com/jrsteele09/crm-console/kvstore"
	"github.com/jrsteele09/crm-console/permissions"
	"github.com/rs/zerolog/log"
)

// Server is the console's HTTP front end. Visitor sessions live in kv, one
// namespace per visitor cookie.
type Server struct {
	env     string
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	kv      kvstore.Store
	perms   permissions.Map
	auth    authclient.Authenticator
	screens []Screen

	loginPage        *template.Template
	unauthorizedPage *template.Template
	screenPage       *template.Template
	indexPage        *template.Template
}

func New(config config.Config, kv kvstore.Store, perms permissions.Map, auth authclient.Authenticator, screens []Screen) (*Server, error) {
	s := &Server{
		env:     config.GetEnv(),
		mux:     http.NewServeMux(),
		config:  config,
		kv:      kv,
		perms:   perms,
		auth:    auth,
		screens: screens,
	}

	if err := validateScreens(screens); err != nil {
		return nil, err
	}

	pages := map[string]**template.Template{
		"index.html":        &s.indexPage,
		"login.html":        &s.loginPage,
		"unauthorized.html": &s.unauthorizedPage,
		"screen.html":       &s.screenPage,
	}
	for name, dst := range pages {
		tmpl, err := ParsePage(name)
		if err != nil {
			return nil, fmt.Errorf("[Server New] failed to parse %s: %w", name, err)
		}
		*dst = tmpl
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

var reservedPaths = map[string]struct{}{
	RouteIndex:        {},
	RouteLogin:        {},
	RouteUnauthorized: {},
	RouteAuthLogin:    {},
	RouteAuthLogout:   {},
	RouteAPISession:   {},
}

func validateScreens(screens []Screen) error {
	seen := make(map[string]struct{}, len(screens))
	for _, sc := range screens {
		if !strings.HasPrefix(sc.Path, "/") || strings.ContainsAny(sc.Path, " {}") {
			return apperrors.Wrapf(apperrors.ErrInvalidConfig, "screen path %q", sc.Path)
		}
		if _, ok := reservedPaths[sc.Path]; ok {
			return apperrors.Wrapf(apperrors.ErrInvalidConfig, "screen path %q is reserved", sc.Path)
		}
		if _, ok := seen[sc.Path]; ok {
			return apperrors.Wrapf(apperrors.ErrInvalidConfig, "duplicate screen path %q", sc.Path)
		}
		seen[sc.Path] = struct{}{}
	}
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) Screens() []Screen {
	return s.screens
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%s] %s", colourMethod(method), path)
}

func logError(method, path, error string) {
	log.Error().Msgf("[%s] %s %s%s%s", colourMethod(method), path, Red, error, ResetColor)
}
