package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/crm-console/authclient"
	apperrors "github.com/jrsteele09/crm-console/internal/errors"
	"github.com/jrsteele09/crm-console/session"
	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName string
	Error   string
	Email   string // Preserve email on error
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			AppName: s.config.GetAppName(),
			Error:   r.URL.Query().Get("error"),
			Email:   r.URL.Query().Get("email"),
		}
		s.renderLogin(w, http.StatusOK, data)
	}
}

// LoginSubmissionHandler processes the login form submission (POST /auth/login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		creds := authclient.Credentials{
			Email:    strings.TrimSpace(r.PostFormValue("email")),
			Password: r.PostFormValue("password"),
		}
		data := LoginPageData{AppName: s.config.GetAppName(), Email: creds.Email}

		if err := creds.Validate(); err != nil {
			data.Error = authclient.Message(err)
			s.renderLogin(w, http.StatusBadRequest, data)
			return
		}
		if r.PostFormValue("accept_terms") == "" {
			data.Error = "You must accept terms & conditions."
			s.renderLogin(w, http.StatusBadRequest, data)
			return
		}

		// every login gets a fresh namespace, an id known before the login never
		// carries the new session
		visitorID := uuid.NewString()
		store := session.New(VisitorStore(s.kv, visitorID), s.perms)

		if err := store.LoginWith(r.Context(), authclient.Fetcher(s.auth, creds)); err != nil {
			status := http.StatusUnauthorized
			if !apperrors.Is(err, apperrors.ErrInvalidCredentials) {
				status = http.StatusBadGateway
				log.Err(err).Str("email", creds.Email).Msg("login failed")
			}
			data.Error = authclient.Message(err)
			if status == http.StatusBadGateway {
				data.Error = "Something went wrong. Please try again."
			}
			s.renderLogin(w, status, data)
			return
		}

		if previousID, ok := s.visitorID(r); ok {
			session.New(VisitorStore(s.kv, previousID), s.perms).Logout()
		}
		s.setVisitorCookie(w, visitorID)

		snap := store.Current()
		log.Info().Str("role", snap.Role).Int("modules", len(snap.Modules)).Msg("visitor logged in")
		http.Redirect(w, r, postLoginPath(snap), http.StatusSeeOther)
	}
}

// LogoutHandler clears the visitor session and returns to the login page
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, ok := s.visitorID(r); ok {
			s.SessionFor(id).Logout()
		}
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

func (s *Server) renderLogin(w http.ResponseWriter, status int, data LoginPageData) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := s.loginPage.Execute(w, data); err != nil {
		log.Err(err).Msg("Failed to render login template")
	}
}
