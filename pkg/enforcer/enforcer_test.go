package enforcer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andyirvine/journal-app/internal/sessionstore"
	"github.com/andyirvine/journal-app/internal/tokenstore"
	"github.com/andyirvine/journal-app/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	users map[int64]*models.User
}

func (s *stubAuth) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

type stubSessions struct {
	sessions map[string]*models.Session
	next     int
}

func (s *stubSessions) Create(_ context.Context, userID int64, ip, ua *string) (*models.Session, error) {
	s.next++
	session := &models.Session{
		ID:        fmt.Sprintf("sess-%d", s.next),
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
		IpAddress: ip,
		UserAgent: ua,
	}
	s.sessions[session.ID] = session
	return session, nil
}

func (s *stubSessions) Get(_ context.Context, id string) (*models.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, &sessionstore.SessionExpiredError{ID: id}
	}
	return session, nil
}

func (s *stubSessions) ExpireCookie(c *http.Cookie, w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: c.Name, Value: "", MaxAge: -1, Path: "/"})
}

type stubTokens struct{}

func (stubTokens) ParseToken(context.Context, string) (*tokenstore.TokenPayload, error) {
	return nil, errors.New("no tokens in this test")
}

func (stubTokens) IsRevoked(context.Context, *tokenstore.TokenPayload) (bool, error) {
	return false, nil
}

type stubURLVerifier struct {
	uid int64
	err error
}

func (s stubURLVerifier) Verify(string) (int64, error) {
	return s.uid, s.err
}

func newTestEnforcer(t *testing.T, auth *stubAuth, urlVerifier URLTokenVerifier) (*Enforcer, *http.ServeMux, *stubSessions) {
	t.Helper()
	if auth == nil {
		auth = &stubAuth{users: map[int64]*models.User{}}
	}
	if urlVerifier == nil {
		urlVerifier = stubURLVerifier{err: errors.New("no url tokens")}
	}
	sessions := &stubSessions{sessions: map[string]*models.Session{}}
	mux := http.NewServeMux()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	enf := NewEnforcer(logger, mux, auth, sessions, stubTokens{}, urlVerifier, nil)
	return enf, mux, sessions
}

func TestBuildPrefixes(t *testing.T) {
	assert.Equal(t, []string{"/a/b/c", "/a/b", "/a", "/"}, buildPrefixes("/a/b/c"))
	assert.Equal(t, []string{"/a", "/"}, buildPrefixes("/a"))
	assert.Equal(t, []string{"/"}, buildPrefixes("/"))
	assert.Equal(t, []string{"/"}, buildPrefixes(""))
}

func TestParseRoute(t *testing.T) {
	method, path := parseRoute("GET /journal")
	assert.Equal(t, "GET", method)
	assert.Equal(t, "/journal", path)

	method, path = parseRoute("/journal")
	assert.Equal(t, "", method)
	assert.Equal(t, "/journal", path)

	method, path = parseRoute("")
	assert.Equal(t, "", method)
	assert.Equal(t, "/", path)
}

func TestFindMatchingPolicy(t *testing.T) {
	enf, _, _ := newTestEnforcer(t, nil, nil)
	enf.SetPolicy("/api", "*", models.AccessUser)
	enf.SetPolicy("/api/auth/login", "POST", models.AccessGuest)

	// Exact method match wins over the parent wildcard.
	required, ok := enf.FindMatchingPolicy("/api/auth/login", "POST")
	require.True(t, ok)
	assert.Equal(t, models.AccessGuest, required)

	// Other methods on the same path fall back to the /api wildcard.
	required, ok = enf.FindMatchingPolicy("/api/auth/login", "GET")
	require.True(t, ok)
	assert.Equal(t, models.AccessUser, required)

	// Deep paths inherit the prefix policy.
	required, ok = enf.FindMatchingPolicy("/api/journal/today", "PUT")
	require.True(t, ok)
	assert.Equal(t, models.AccessUser, required)

	// Unpoliced paths default to guest access.
	required, ok = enf.FindMatchingPolicy("/public", "GET")
	assert.False(t, ok)
	assert.Equal(t, models.AccessGuest, required)
}

func TestHandleRejectsDuplicateRoute(t *testing.T) {
	enf, _, _ := newTestEnforcer(t, nil, nil)
	handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	require.NoError(t, enf.Handle("GET /thing", handler))
	err := enf.Handle("GET /thing", handler)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicatePathAndMethod)

	// Same path with another method is fine.
	assert.NoError(t, enf.Handle("POST /thing", handler))
}

func TestHandleRejectsNilHandler(t *testing.T) {
	enf, _, _ := newTestEnforcer(t, nil, nil)
	assert.Error(t, enf.Handle("GET /thing", nil))
}

func TestUnauthenticatedRequestGetsGuestSession(t *testing.T) {
	enf, mux, sessions := newTestEnforcer(t, nil, nil)

	var seen *models.User
	require.NoError(t, enf.Handle("GET /open", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
	})))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))

	require.NotNil(t, seen)
	assert.False(t, seen.IsAuthenticated())
	assert.Equal(t, models.AccessGuest, seen.AccessLevel())
	assert.Len(t, sessions.sessions, 1)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "session_token", cookies[0].Name)
}

func TestSessionCookieAuthenticatesUser(t *testing.T) {
	auth := &stubAuth{users: map[int64]*models.User{
		7: {ID: 7, Email: "writer@example.com", IsActive: true},
	}}
	enf, mux, sessions := newTestEnforcer(t, auth, nil)
	session, err := sessions.Create(context.Background(), 7, nil, nil)
	require.NoError(t, err)

	var seen *models.User
	require.NoError(t, enf.Handle("GET /private", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: session.ID})
	mux.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, int64(7), seen.ID)
	assert.True(t, seen.IsAuthenticated())
}

func TestExpiredSessionFallsBackToGuest(t *testing.T) {
	enf, mux, _ := newTestEnforcer(t, nil, nil)

	var seen *models.User
	require.NoError(t, enf.Handle("GET /open", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "long-gone"})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.False(t, seen.IsAuthenticated())
}

func TestURLTokenAuthenticatesUser(t *testing.T) {
	auth := &stubAuth{users: map[int64]*models.User{
		9: {ID: 9, Email: "writer@example.com", IsActive: true},
	}}
	enf, mux, _ := newTestEnforcer(t, auth, stubURLVerifier{uid: 9})

	var seen *models.User
	require.NoError(t, enf.Handle("GET /bookmarked", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/bookmarked?_s=signed-token", nil)
	mux.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, int64(9), seen.ID)
}

func TestURLTokenForInactiveUserIsIgnored(t *testing.T) {
	auth := &stubAuth{users: map[int64]*models.User{
		9: {ID: 9, Email: "writer@example.com", IsActive: false},
	}}
	enf, mux, _ := newTestEnforcer(t, auth, stubURLVerifier{uid: 9})

	var seen *models.User
	require.NoError(t, enf.Handle("GET /bookmarked", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/bookmarked?_s=signed-token", nil)
	mux.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.False(t, seen.IsAuthenticated())
}

func TestRequireAccessResponses(t *testing.T) {
	enf, mux, _ := newTestEnforcer(t, nil, nil)
	enf.SetPolicy("/api/private", "*", models.AccessUser)
	enf.SetPolicy("/private", "*", models.AccessUser)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	require.NoError(t, enf.Handle("GET /api/private", ok))
	require.NoError(t, enf.Handle("GET /private", ok))

	// API requests get a JSON 401.
	req := httptest.NewRequest(http.MethodGet, "/api/private", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	// Browser requests are redirected to the login page.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestMethodNotAllowed(t *testing.T) {
	enf, mux, _ := newTestEnforcer(t, nil, nil)
	require.NoError(t, enf.Handle("GET /api/thing", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})))

	req := httptest.NewRequest(http.MethodDelete, "/api/thing", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
