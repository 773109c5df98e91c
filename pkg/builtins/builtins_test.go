package builtins_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	journalapp "github.com/andyirvine/journal-app"
	"github.com/andyirvine/journal-app/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *http.ServeMux {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	mux := http.NewServeMux()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err = journalapp.New(
		journalapp.WithSqliteDB(db),
		journalapp.WithLogger(logger),
		journalapp.WithRouter(mux),
		journalapp.WithSecret("test-signing-secret"),
		journalapp.WithInMemorySessionStore(),
	)
	require.NoError(t, err)

	return mux
}

// doJSON performs a request with a JSON body and the headers the API
// expects. A nil body sends an empty JSON object so handlers that decode
// unconditionally still succeed.
func doJSON(t *testing.T, mux *http.ServeMux, method, path string, cookie *http.Cookie, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload := []byte("{}")
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// sessionCookie returns the last session cookie set on the response. The
// authentication middleware may set a guest cookie before the handler sets
// the signed-in one, and a client keeps whichever came last.
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_token" && c.Value != "" {
			found = c
		}
	}
	require.NotNil(t, found, "no session cookie in response")
	return found
}

func signup(t *testing.T, mux *http.ServeMux, email string) *http.Cookie {
	t.Helper()
	rec := doJSON(t, mux, http.MethodPost, "/api/auth/signup", nil, "", api.SignupRequest{
		Email:    email,
		Password: "correct-horse",
		Confirm:  "correct-horse",
		Name:     "Test Writer",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return sessionCookie(t, rec)
}

func TestSignupCreatesAccountAndSession(t *testing.T) {
	mux := newTestServer(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/auth/signup", nil, "", api.SignupRequest{
		Email:    "writer@example.com",
		Password: "correct-horse",
		Confirm:  "correct-horse",
		Name:     "Test Writer",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeBody[api.LoginResponse](t, rec)
	assert.Equal(t, "writer@example.com", resp.User.Email)
	assert.Positive(t, resp.User.ID)

	cookie := sessionCookie(t, rec)
	me := doJSON(t, mux, http.MethodGet, "/api/auth/me", cookie, "", nil)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "writer@example.com", decodeBody[api.UserResponse](t, me).User.Email)
}

func TestSignupPasswordMismatch(t *testing.T) {
	mux := newTestServer(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/auth/signup", nil, "", api.SignupRequest{
		Email:    "writer@example.com",
		Password: "correct-horse",
		Confirm:  "different",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupDuplicateEmail(t *testing.T) {
	mux := newTestServer(t)
	signup(t, mux, "writer@example.com")

	rec := doJSON(t, mux, http.MethodPost, "/api/auth/signup", nil, "", api.SignupRequest{
		Email:    "writer@example.com",
		Password: "correct-horse",
		Confirm:  "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginAndWrongPassword(t *testing.T) {
	mux := newTestServer(t)
	signup(t, mux, "writer@example.com")

	good := doJSON(t, mux, http.MethodPost, "/api/auth/login", nil, "", api.LoginRequest{
		Email:    "writer@example.com",
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusOK, good.Code)
	resp := decodeBody[api.LoginResponse](t, good)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "writer@example.com", resp.User.Email)

	bad := doJSON(t, mux, http.MethodPost, "/api/auth/login", nil, "", api.LoginRequest{
		Email:    "writer@example.com",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
}

func TestHealthEndpointOpenToGuests(t *testing.T) {
	mux := newTestServer(t)

	rec := doJSON(t, mux, http.MethodGet, "/api/health", nil, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, rec)["status"])
}

func TestUnauthenticatedAPIRequestRejected(t *testing.T) {
	mux := newTestServer(t)

	rec := doJSON(t, mux, http.MethodGet, "/api/journal/today", nil, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJournalSaveAndRead(t *testing.T) {
	mux := newTestServer(t)
	cookie := signup(t, mux, "writer@example.com")

	saved := doJSON(t, mux, http.MethodPut, "/api/journal/today", cookie, "", api.SaveEntryRequest{
		Content: "Today I wrote five whole words",
	})
	require.Equal(t, http.StatusOK, saved.Code, saved.Body.String())
	resp := decodeBody[api.EntryResponse](t, saved)
	assert.Equal(t, 6, resp.Entry.WordCount)
	assert.Equal(t, 6, resp.Progress.Words)
	assert.False(t, resp.Progress.Reached)

	read := doJSON(t, mux, http.MethodGet, "/api/journal/today", cookie, "", nil)
	require.Equal(t, http.StatusOK, read.Code)
	assert.Equal(t, "Today I wrote five whole words", decodeBody[api.EntryResponse](t, read).Entry.Content)
}

func TestJournalGetBeforeFirstWrite(t *testing.T) {
	mux := newTestServer(t)
	cookie := signup(t, mux, "writer@example.com")

	rec := doJSON(t, mux, http.MethodGet, "/api/journal/today", cookie, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[api.EntryResponse](t, rec)
	assert.Empty(t, resp.Entry.Content)
	assert.Zero(t, resp.Progress.Words)
}

func TestHistoryListGetDelete(t *testing.T) {
	mux := newTestServer(t)
	cookie := signup(t, mux, "writer@example.com")
	today := time.Now().UTC().Format("2006-01-02")

	saved := doJSON(t, mux, http.MethodPut, "/api/journal/today", cookie, "", api.SaveEntryRequest{
		Content: "a day worth keeping",
	})
	require.Equal(t, http.StatusOK, saved.Code)

	list := doJSON(t, mux, http.MethodGet, "/api/history", cookie, "", nil)
	require.Equal(t, http.StatusOK, list.Code)
	entries := decodeBody[api.HistoryResponse](t, list).Entries
	require.Len(t, entries, 1)
	assert.Equal(t, "a day worth keeping", entries[0].Content)

	get := doJSON(t, mux, http.MethodGet, "/api/history/"+today, cookie, "", nil)
	assert.Equal(t, http.StatusOK, get.Code)

	del := doJSON(t, mux, http.MethodDelete, "/api/history/"+today, cookie, "", nil)
	assert.Equal(t, http.StatusNoContent, del.Code)

	gone := doJSON(t, mux, http.MethodGet, "/api/history/"+today, cookie, "", nil)
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestHistoryBadDate(t *testing.T) {
	mux := newTestServer(t)
	cookie := signup(t, mux, "writer@example.com")

	rec := doJSON(t, mux, http.MethodGet, "/api/history/not-a-date", cookie, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisEndpoint(t *testing.T) {
	mux := newTestServer(t)
	cookie := signup(t, mux, "writer@example.com")

	saved := doJSON(t, mux, http.MethodPut, "/api/journal/today", cookie, "", api.SaveEntryRequest{
		Content: strings.Repeat("wonderful wonderful gardening today ", 10),
	})
	require.Equal(t, http.StatusOK, saved.Code)

	rec := doJSON(t, mux, http.MethodGet, "/api/analysis", cookie, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[api.AnalysisResponse](t, rec)
	assert.Equal(t, 40, resp.Stats.TotalWords)
	assert.Equal(t, 1, resp.Stats.DaysJournaled)
	assert.Equal(t, 1, resp.Stats.CurrentStreak)
	require.NotEmpty(t, resp.Keywords)
	assert.Equal(t, "wonderful", resp.Keywords[0].Word)
	assert.Len(t, resp.Sentiment, 1)
	assert.Len(t, resp.Rolling, 1)
}

func importFile(t *testing.T, mux *http.ServeMux, cookie *http.Cookie, query, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import"+query, &buf)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestImportSkipsExistingDatesByDefault(t *testing.T) {
	mux := newTestServer(t)
	cookie := signup(t, mux, "writer@example.com")

	first := importFile(t, mux, cookie, "", "2024-01-05.txt", "the original entry text")
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	resp := decodeBody[api.ImportResponse](t, first)
	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, 0, resp.Skipped)

	second := importFile(t, mux, cookie, "", "2024-01-05.txt", "a different rendition")
	require.Equal(t, http.StatusOK, second.Code)
	resp = decodeBody[api.ImportResponse](t, second)
	assert.Equal(t, 0, resp.Imported)
	assert.Equal(t, 1, resp.Skipped)

	get := doJSON(t, mux, http.MethodGet, "/api/history/2024-01-05", cookie, "", nil)
	require.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "the original entry text", decodeBody[api.EntryResponse](t, get).Entry.Content)
}

func TestImportOverwritePolicyReplaces(t *testing.T) {
	mux := newTestServer(t)
	cookie := signup(t, mux, "writer@example.com")

	first := importFile(t, mux, cookie, "", "2024-01-05.txt", "the original entry text")
	require.Equal(t, http.StatusOK, first.Code)

	over := importFile(t, mux, cookie, "?policy=overwrite", "2024-01-05.txt", "a different rendition")
	require.Equal(t, http.StatusOK, over.Code)
	resp := decodeBody[api.ImportResponse](t, over)
	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, 0, resp.Skipped)

	get := doJSON(t, mux, http.MethodGet, "/api/history/2024-01-05", cookie, "", nil)
	require.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "a different rendition", decodeBody[api.EntryResponse](t, get).Entry.Content)
}

func TestImportDelimitedFileManyEntries(t *testing.T) {
	mux := newTestServer(t)
	cookie := signup(t, mux, "writer@example.com")

	content := "=== 2024-02-01 ===\nfirst day\n\n=== 2024-02-02 ===\nsecond day\n"
	rec := importFile(t, mux, cookie, "", "journal_export.txt", content)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[api.ImportResponse](t, rec)
	assert.Equal(t, 2, resp.Imported)

	list := doJSON(t, mux, http.MethodGet, "/api/history", cookie, "", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Len(t, decodeBody[api.HistoryResponse](t, list).Entries, 2)
}

func TestImportRejectsBadPolicy(t *testing.T) {
	mux := newTestServer(t)
	cookie := signup(t, mux, "writer@example.com")

	rec := importFile(t, mux, cookie, "?policy=merge", "2024-01-05.txt", "text")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestURLTokenGrantsAccessWithoutCookie(t *testing.T) {
	mux := newTestServer(t)
	cookie := signup(t, mux, "writer@example.com")

	saved := doJSON(t, mux, http.MethodPut, "/api/journal/today", cookie, "", api.SaveEntryRequest{
		Content: "bookmark me",
	})
	require.Equal(t, http.StatusOK, saved.Code)

	issued := doJSON(t, mux, http.MethodPost, "/api/auth/url-token", cookie, "", nil)
	require.Equal(t, http.StatusOK, issued.Code, issued.Body.String())
	token := decodeBody[api.TokenResponse](t, issued).Token
	require.NotEmpty(t, token)

	rec := doJSON(t, mux, http.MethodGet, fmt.Sprintf("/api/journal/today?_s=%s", token), nil, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "bookmark me", decodeBody[api.EntryResponse](t, rec).Entry.Content)
}

func TestTamperedURLTokenRejected(t *testing.T) {
	mux := newTestServer(t)

	rec := doJSON(t, mux, http.MethodGet, "/api/journal/today?_s=forged.deadbeef", nil, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthAndLogoutRevocation(t *testing.T) {
	mux := newTestServer(t)
	signup(t, mux, "writer@example.com")

	login := doJSON(t, mux, http.MethodPost, "/api/auth/login", nil, "", api.LoginRequest{
		Email:    "writer@example.com",
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusOK, login.Code)
	token := decodeBody[api.LoginResponse](t, login).Token
	require.NotEmpty(t, token)

	me := doJSON(t, mux, http.MethodGet, "/api/auth/me", nil, token, nil)
	require.Equal(t, http.StatusOK, me.Code)

	logout := doJSON(t, mux, http.MethodPost, "/api/auth/logout", nil, token, nil)
	require.Equal(t, http.StatusNoContent, logout.Code)

	again := doJSON(t, mux, http.MethodGet, "/api/auth/me", nil, token, nil)
	assert.Equal(t, http.StatusUnauthorized, again.Code)
}

func TestTokenRefreshRotates(t *testing.T) {
	mux := newTestServer(t)
	signup(t, mux, "writer@example.com")

	login := doJSON(t, mux, http.MethodPost, "/api/auth/login", nil, "", api.LoginRequest{
		Email:    "writer@example.com",
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusOK, login.Code)
	token := decodeBody[api.LoginResponse](t, login).Token

	refreshed := doJSON(t, mux, http.MethodPost, "/api/auth/token/refresh", nil, "", api.TokenResponse{Token: token})
	require.Equal(t, http.StatusOK, refreshed.Code, refreshed.Body.String())
	newToken := decodeBody[api.TokenResponse](t, refreshed).Token
	require.NotEmpty(t, newToken)
	assert.NotEqual(t, token, newToken)

	// The old token was revoked by the rotation.
	old := doJSON(t, mux, http.MethodGet, "/api/auth/me", nil, token, nil)
	assert.Equal(t, http.StatusUnauthorized, old.Code)

	fresh := doJSON(t, mux, http.MethodGet, "/api/auth/me", nil, newToken, nil)
	assert.Equal(t, http.StatusOK, fresh.Code)
}

func TestPasswordUpdateInvalidatesSessions(t *testing.T) {
	mux := newTestServer(t)
	cookie := signup(t, mux, "writer@example.com")

	rec := doJSON(t, mux, http.MethodPut, "/api/auth/password", cookie, "", api.PasswordUpdateRequest{
		CurrentPassword: "correct-horse",
		NewPassword:     "battery-staple",
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	// The old session is gone, so the next call is unauthorized.
	me := doJSON(t, mux, http.MethodGet, "/api/auth/me", cookie, "", nil)
	assert.Equal(t, http.StatusUnauthorized, me.Code)

	login := doJSON(t, mux, http.MethodPost, "/api/auth/login", nil, "", api.LoginRequest{
		Email:    "writer@example.com",
		Password: "battery-staple",
	})
	assert.Equal(t, http.StatusOK, login.Code)
}

func TestInsightEndpointsWithoutBackend(t *testing.T) {
	mux := newTestServer(t)
	cookie := signup(t, mux, "writer@example.com")

	narrative := doJSON(t, mux, http.MethodPost, "/api/insights/narrative", cookie, "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, narrative.Code)

	chat := doJSON(t, mux, http.MethodPost, "/api/chat", cookie, "", api.ChatRequest{Question: "how was my week"})
	assert.Equal(t, http.StatusServiceUnavailable, chat.Code)

	// Stored insights stay readable regardless.
	today := time.Now().UTC().Format("2006-01-02")
	list := doJSON(t, mux, http.MethodGet, "/api/insights/"+today, cookie, "", nil)
	assert.Equal(t, http.StatusOK, list.Code)
}

func TestUsersCannotSeeEachOthersEntries(t *testing.T) {
	mux := newTestServer(t)
	alice := signup(t, mux, "alice@example.com")
	bob := signup(t, mux, "bob@example.com")

	saved := doJSON(t, mux, http.MethodPut, "/api/journal/today", alice, "", api.SaveEntryRequest{
		Content: "private thoughts",
	})
	require.Equal(t, http.StatusOK, saved.Code)

	list := doJSON(t, mux, http.MethodGet, "/api/history", bob, "", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Empty(t, decodeBody[api.HistoryResponse](t, list).Entries)
}
