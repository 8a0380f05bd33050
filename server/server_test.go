package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/crm-console/authclient"
	"github.com/jrsteele09/crm-console/internal/config"
	apperrors "github.com/jrsteele09/crm-console/internal/errors"
	"github.com/jrsteele09/crm-console/kvstore/memory"
	"github.com/jrsteele09/crm-console/permissions"
	"github.com/jrsteele09/crm-console/server"
	"github.com/jrsteele09/crm-console/session"
	"github.com/jrsteele09/crm-console/token/jwt"
	"github.com/jrsteele09/crm-console/users"
	fakeuserrepo "github.com/jrsteele09/crm-console/users/repofake"
	"github.com/stretchr/testify/require"
)

const demoPassword = "password123"

type authFunc func(context.Context, authclient.Credentials) (session.LoginResponse, error)

func (f authFunc) Login(ctx context.Context, creds authclient.Credentials) (session.LoginResponse, error) {
	return f(ctx, creds)
}

func localAuth(t *testing.T) authclient.Authenticator {
	t.Helper()
	repo := fakeuserrepo.NewFakeUserRepo()
	require.NoError(t, users.Seed(repo, permissions.Default(), demoPassword))
	creator, err := jwt.NewCreator([]byte("test-secret-0123456789"), time.Hour)
	require.NoError(t, err)
	return authclient.NewLocal(repo, creator)
}

type harness struct {
	t   *testing.T
	srv *server.Server
	kv  *memory.Store
}

func newHarness(t *testing.T, auth authclient.Authenticator) *harness {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://crm.example.com")

	kv := memory.New()
	srv, err := server.New(config.New(), kv, permissions.Default(), auth, server.Screens())
	require.NoError(t, err)
	return &harness{t: t, srv: srv, kv: kv}
}

func (h *harness) do(method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	h.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)
	return rec
}

func loginForm(email string) url.Values {
	return url.Values{"email": {email}, "password": {demoPassword}, "accept_terms": {"yes"}}
}

// login signs in and returns the visitor cookie
func (h *harness) login(email string) (*http.Cookie, string) {
	h.t.Helper()
	rec := h.do(http.MethodPost, server.RouteAuthLogin, loginForm(email))
	require.Equal(h.t, http.StatusSeeOther, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == "console_sid" {
			require.True(h.t, c.HttpOnly)
			return c, rec.Header().Get("Location")
		}
	}
	h.t.Fatal("no visitor cookie set")
	return nil, ""
}

func requireRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, location, rec.Header().Get("Location"))
}

func TestGuardedScreen_WithoutSessionRedirectsToLogin(t *testing.T) {
	h := newHarness(t, localAuth(t))
	for _, sc := range server.Screens() {
		requireRedirect(t, h.do(http.MethodGet, sc.Path, nil), server.RouteLogin)
	}
}

func TestGuardedScreen_UnknownCookieIsLoggedOut(t *testing.T) {
	h := newHarness(t, localAuth(t))
	rec := h.do(http.MethodGet, server.RouteDashboard, nil, &http.Cookie{Name: "console_sid", Value: "not-a-uuid"})
	requireRedirect(t, rec, server.RouteLogin)
}

func TestLogin_LandingPages(t *testing.T) {
	h := newHarness(t, localAuth(t))

	_, loc := h.login("super@example.com")
	require.Equal(t, server.RouteSuperDashboard, loc)

	_, loc = h.login("manager@example.com")
	require.Equal(t, server.RouteDashboard, loc)

	_, loc = h.login("viewer@example.com")
	require.Equal(t, server.RouteUnauthorized, loc)
}

func TestManagerAccess(t *testing.T) {
	h := newHarness(t, localAuth(t))
	cookie, _ := h.login("manager@example.com")

	rec := h.do(http.MethodGet, server.RouteReports, nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	body := rec.Body.String()
	require.Contains(t, body, "<h1>Reports</h1>")
	require.Contains(t, body, "Max Manager")
	require.Contains(t, body, `href="/admin/profile-add"`)
	require.NotContains(t, body, `href="/admin/usermanagement/users"`)

	requireRedirect(t, h.do(http.MethodGet, server.RouteUsers, nil, cookie), server.RouteUnauthorized)
	requireRedirect(t, h.do(http.MethodGet, server.RouteSuperDashboard, nil, cookie), server.RouteUnauthorized)
	// reports is granted but the HR submodule is not
	requireRedirect(t, h.do(http.MethodGet, server.RouteReportsHR, nil, cookie), server.RouteUnauthorized)

	require.Equal(t, http.StatusOK, h.do(http.MethodGet, server.RouteSettings, nil, cookie).Code)
}

func TestSuperAdminOpensEverything(t *testing.T) {
	h := newHarness(t, localAuth(t))
	cookie, _ := h.login("super@example.com")
	for _, sc := range server.Screens() {
		require.Equal(t, http.StatusOK, h.do(http.MethodGet, sc.Path, nil, cookie).Code, sc.Path)
	}
}

func TestSubmoduleScreensFromStoredSession(t *testing.T) {
	h := newHarness(t, localAuth(t))
	sid := "6f1c1f0e-0d7e-4d53-9d0c-4f5d2f1b9a11"
	visitor := server.VisitorStore(h.kv, sid)
	require.NoError(t, visitor.Set(session.KeyToken, "t1"))
	require.NoError(t, visitor.Set(session.KeyRole, "manager"))
	require.NoError(t, visitor.Set(session.KeyModules, `[{"name":"reports","submodules":[{"name":"HR"},"Sales"]}]`))

	cookie := &http.Cookie{Name: "console_sid", Value: sid}
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, server.RouteReportsHR, nil, cookie).Code)
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, server.RouteReportsSales, nil, cookie).Code)
	requireRedirect(t, h.do(http.MethodGet, server.RouteReportsBDE, nil, cookie), server.RouteUnauthorized)

	body := h.do(http.MethodGet, server.RouteReports, nil, cookie).Body.String()
	require.Contains(t, body, `href="/admin/reports/hr"`)
	require.Contains(t, body, `href="/admin/reports/sales"`)
	require.NotContains(t, body, `href="/admin/reports/bde"`)
}

func TestLogin_FormValidation(t *testing.T) {
	h := newHarness(t, localAuth(t))

	tests := map[string]struct {
		form url.Values
		msg  string
	}{
		"bad email":      {url.Values{"email": {"nope"}, "password": {"x"}, "accept_terms": {"yes"}}, "Invalid email format"},
		"no password":    {url.Values{"email": {"a@example.com"}, "accept_terms": {"yes"}}, "Password is required"},
		"terms rejected": {url.Values{"email": {"a@example.com"}, "password": {"x"}}, "You must accept terms &amp; conditions."},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := h.do(http.MethodPost, server.RouteAuthLogin, tt.form)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Contains(t, rec.Body.String(), tt.msg)
			require.Empty(t, rec.Result().Cookies())
		})
	}
	require.Equal(t, 0, h.kv.Len())
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t, localAuth(t))
	form := loginForm("admin@example.com")
	form.Set("password", "wrong")

	rec := h.do(http.MethodPost, server.RouteAuthLogin, form)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid email or password")
	require.Contains(t, rec.Body.String(), `value="admin@example.com"`)
	require.Equal(t, 0, h.kv.Len())
}

func TestLogin_BackendUnavailable(t *testing.T) {
	h := newHarness(t, authFunc(func(context.Context, authclient.Credentials) (session.LoginResponse, error) {
		return session.LoginResponse{}, apperrors.ErrAuthUnavailable
	}))

	rec := h.do(http.MethodPost, server.RouteAuthLogin, loginForm("admin@example.com"))
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "Something went wrong")
}

func TestLogout(t *testing.T) {
	h := newHarness(t, localAuth(t))
	cookie, _ := h.login("admin@example.com")
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, server.RouteUsers, nil, cookie).Code)
	require.NotZero(t, h.kv.Len())

	requireRedirect(t, h.do(http.MethodPost, server.RouteAuthLogout, nil, cookie), server.RouteLogin)
	require.Equal(t, 0, h.kv.Len())
	requireRedirect(t, h.do(http.MethodGet, server.RouteUsers, nil, cookie), server.RouteLogin)

	// logging out twice is harmless
	requireRedirect(t, h.do(http.MethodPost, server.RouteAuthLogout, nil, cookie), server.RouteLogin)
}

func TestLogout_OnlyAcceptsSameOriginPosts(t *testing.T) {
	h := newHarness(t, localAuth(t))
	cookie, _ := h.login("admin@example.com")

	require.Equal(t, http.StatusMethodNotAllowed, h.do(http.MethodGet, server.RouteAuthLogout, nil, cookie).Code)

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthLogout, nil)
	req.Header.Set("Origin", "https://evil.example.net")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, server.RouteAuthLogin, strings.NewReader(loginForm("admin@example.com").Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	rec = httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	require.Equal(t, http.StatusOK, h.do(http.MethodGet, server.RouteUsers, nil, cookie).Code)

	req = httptest.NewRequest(http.MethodPost, server.RouteAuthLogout, nil)
	req.Header.Set("Origin", "http://"+req.Host)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)
	requireRedirect(t, rec, server.RouteLogin)
}

func TestLogin_IssuesFreshVisitorCookie(t *testing.T) {
	h := newHarness(t, localAuth(t))
	planted := &http.Cookie{Name: "console_sid", Value: uuid.NewString()}

	rec := h.do(http.MethodPost, server.RouteAuthLogin, loginForm("admin@example.com"), planted)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var fresh *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "console_sid" {
			fresh = c
		}
	}
	require.NotNil(t, fresh)
	require.NotEqual(t, planted.Value, fresh.Value)

	requireRedirect(t, h.do(http.MethodGet, server.RouteUsers, nil, planted), server.RouteLogin)
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, server.RouteUsers, nil, fresh).Code)
}

func TestLogin_AgainClearsPreviousNamespace(t *testing.T) {
	h := newHarness(t, localAuth(t))
	first, _ := h.login("manager@example.com")

	rec := h.do(http.MethodPost, server.RouteAuthLogin, loginForm("admin@example.com"), first)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	requireRedirect(t, h.do(http.MethodGet, server.RouteDashboard, nil, first), server.RouteLogin)
	require.Equal(t, 4, h.kv.Len(), "only the new namespace holds session keys")
}

func TestLogin_FailureKeepsExistingSession(t *testing.T) {
	h := newHarness(t, localAuth(t))
	cookie, _ := h.login("manager@example.com")

	form := loginForm("admin@example.com")
	form.Set("password", "wrong")
	rec := h.do(http.MethodPost, server.RouteAuthLogin, form, cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, rec.Result().Cookies())

	require.Equal(t, http.StatusOK, h.do(http.MethodGet, server.RouteReports, nil, cookie).Code)
}

func TestPublicPagesRedirectLoggedInVisitors(t *testing.T) {
	h := newHarness(t, localAuth(t))

	require.Equal(t, http.StatusOK, h.do(http.MethodGet, server.RouteLogin, nil).Code)
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, server.RouteIndex, nil).Code)

	admin, _ := h.login("admin@example.com")
	requireRedirect(t, h.do(http.MethodGet, server.RouteLogin, nil, admin), server.RouteSuperDashboard)

	manager, _ := h.login("manager@example.com")
	requireRedirect(t, h.do(http.MethodGet, server.RouteIndex, nil, manager), server.RouteDashboard)
}

func TestUnauthorizedPage(t *testing.T) {
	h := newHarness(t, localAuth(t))
	rec := h.do(http.MethodGet, server.RouteUnauthorized, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "Access Denied")
}

func TestSessionAPI(t *testing.T) {
	h := newHarness(t, localAuth(t))

	var anon server.SessionStatus
	rec := h.do(http.MethodGet, server.RouteAPISession, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &anon))
	require.False(t, anon.Authenticated)
	require.Empty(t, anon.Screens)

	cookie, _ := h.login("admin@example.com")
	var status server.SessionStatus
	rec = h.do(http.MethodGet, server.RouteAPISession, nil, cookie)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.True(t, status.Authenticated)
	require.Equal(t, "redacted", status.Session.Token)
	require.Equal(t, "admin", status.Session.Role)
	require.Contains(t, status.Screens, server.RouteSuperDashboard)
	require.Contains(t, status.Screens, server.RouteUsers)
	require.NotContains(t, status.Screens, server.RouteReports)
}

func TestSessionAPI_CORS(t *testing.T) {
	h := newHarness(t, localAuth(t))

	req := httptest.NewRequest(http.MethodOptions, server.RouteAPISession, nil)
	req.Header.Set("Origin", "https://crm.example.com")
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "https://crm.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, server.RouteAPISession, nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStaticCSS(t *testing.T) {
	h := newHarness(t, localAuth(t))
	rec := h.do(http.MethodGet, "/css/console.css", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/css")

	require.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/css/missing.css", nil).Code)
}

func TestNew_RejectsBadScreens(t *testing.T) {
	t.Setenv("ENV", "TEST")
	for name, screens := range map[string][]server.Screen{
		"reserved":  {{Path: server.RouteLogin}},
		"relative":  {{Path: "admin"}},
		"duplicate": {{Path: "/a"}, {Path: "/a"}},
	} {
		_, err := server.New(config.New(), memory.New(), permissions.Default(), localAuth(t), screens)
		require.ErrorIs(t, err, apperrors.ErrInvalidConfig, name)
	}
}
