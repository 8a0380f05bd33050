package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/crm-console/guard"
	"github.com/jrsteele09/crm-console/internal/utils"
	"github.com/jrsteele09/crm-console/session"
	"github.com/rs/zerolog/log"
)

// ScreenPageData is the template model of a guarded console screen
type ScreenPageData struct {
	AppName     string
	Title       string
	Path        string
	DisplayName string
	Role        string
	Requirement string
	Nav         []NavItem
}

// IndexHandler renders the public home page
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]interface{}{
			"AppName": s.config.GetAppName(),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := s.indexPage.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render index template")
		}
	}
}

// UnauthorizedHandler renders the access denied page
func (s *Server) UnauthorizedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.requestSession(r).Current()
		data := map[string]interface{}{
			"AppName":       s.config.GetAppName(),
			"Authenticated": snap.Authenticated(),
			"Home":          HomePath(snap),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		w.WriteHeader(http.StatusForbidden)
		if err := s.unauthorizedPage.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render unauthorized template")
		}
	}
}

// ScreenHandler renders a console screen inside the admin layout. It expects
// RequireRoute to have placed the visitor session in the request context.
func (s *Server) ScreenHandler(screen Screen) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.requestSession(r).Current()
		data := ScreenPageData{
			AppName:     s.config.GetAppName(),
			Title:       screen.Title,
			Path:        screen.Path,
			DisplayName: displayName(snap),
			Role:        snap.Role,
			Requirement: screen.Requirement.String(),
			Nav:         Nav(snap, screen.Path),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := s.screenPage.Execute(w, data); err != nil {
			log.Err(err).Str("path", screen.Path).Msg("Failed to render screen template")
		}
	}
}

// SessionStatus is the body of GET /api/session
type SessionStatus struct {
	Authenticated bool             `json:"authenticated"`
	Session       session.Snapshot `json:"session"`
	Screens       []string         `json:"screens"`
}

// SessionAPIHandler reports the visitor session with the token redacted, and the
// screens it may open.
func (s *Server) SessionAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		snap := s.requestSession(r).Current()
		status := SessionStatus{
			Authenticated: snap.Authenticated(),
			Session:       snap.Redacted(),
			Screens:       []string{},
		}
		for _, screen := range s.screens {
			if guard.Evaluate(snap, screen.Requirement) == guard.Allow {
				status.Screens = append(status.Screens, screen.Path)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Err(err).Msg("Failed to encode session status")
		}
	}
}

func displayName(snap session.Snapshot) string {
	user := utils.Value(snap.User)
	return utils.FirstNonEmpty(user.FullName, user.Email, snap.Role, "Guest")
}
