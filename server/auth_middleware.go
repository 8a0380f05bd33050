package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/crm-console/guard"
	"github.com/jrsteele09/crm-console/kvstore"
	"github.com/jrsteele09/crm-console/kvstore/memory"
	"github.com/jrsteele09/crm-console/session"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the hydrated *session.Store of the visitor
const ContextKeySession ContextKey = "session"

const visitorNamespace = "visitor:"

// visitorID returns the visitor id from the session cookie, if it holds a valid UUID
func (s *Server) visitorID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(s.config.GetSessionCookieName())
	if err != nil || cookie.Value == "" {
		return "", false
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// setVisitorCookie hands the visitor id to the browser
func (s *Server) setVisitorCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.config.GetMaxSessionAge().Seconds()),
		HttpOnly: true,
		Secure:   s.config.GetSecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

// VisitorStore is the namespace of kv that holds one visitor's session
func VisitorStore(kv kvstore.Store, visitorID string) kvstore.Store {
	return kvstore.Scoped(kv, visitorNamespace+visitorID)
}

// SessionFor hydrates the stored session of a visitor
func (s *Server) SessionFor(visitorID string) *session.Store {
	store := session.New(VisitorStore(s.kv, visitorID), s.perms)
	store.Hydrate()
	return store
}

// requestSession returns the visitor's session, or an empty in-memory one for
// requests without a visitor cookie.
func (s *Server) requestSession(r *http.Request) *session.Store {
	if store, ok := r.Context().Value(ContextKeySession).(*session.Store); ok {
		return store
	}
	if id, ok := s.visitorID(r); ok {
		return s.SessionFor(id)
	}
	return session.New(memory.New(), s.perms)
}

// RequireRoute evaluates req for the visitor and redirects to the login or
// unauthorized page when the guard does not allow the screen.
func (s *Server) RequireRoute(req guard.Requirement) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			store := s.requestSession(r)
			decision := guard.Explain(store.Current(), req)

			switch decision.Verdict {
			case guard.Allow:
				ctx := context.WithValue(r.Context(), ContextKeySession, store)
				next(w, r.WithContext(ctx))
			case guard.RedirectLogin:
				log.Debug().Str("path", r.URL.Path).Str("reason", decision.Reason).Msg("redirecting to login")
				http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			default:
				log.Info().Str("path", r.URL.Path).Str("requirement", req.String()).Str("reason", decision.Reason).Msg("access denied")
				http.Redirect(w, r, RouteUnauthorized, http.StatusSeeOther)
			}
		}
	}
}

// PublicOnly sends visitors that are already logged in to their home screen
func (s *Server) PublicOnly() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			snap := s.requestSession(r).Current()
			if snap.Authenticated() {
				http.Redirect(w, r, HomePath(snap), http.StatusSeeOther)
				return
			}
			next(w, r)
		}
	}
}
