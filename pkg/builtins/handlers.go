package builtins

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/andyirvine/journal-app/api"
	"github.com/andyirvine/journal-app/internal/authstore"
	"github.com/andyirvine/journal-app/internal/db"
	"github.com/andyirvine/journal-app/internal/entrystore"
	"github.com/andyirvine/journal-app/internal/sessionstore"
	"github.com/andyirvine/journal-app/internal/tokenstore"
	"github.com/andyirvine/journal-app/pkg/enforcer"
	"github.com/andyirvine/journal-app/pkg/insight"
	"github.com/andyirvine/journal-app/pkg/models"
	"github.com/andyirvine/journal-app/pkg/models/passwd"
	"github.com/andyirvine/journal-app/pkg/sessiontoken"
)

// HandlerDeps carries the stores and services the built-in handlers operate on.
type HandlerDeps struct {
	Auth      authstore.Store
	Session   sessionstore.Store
	Token     tokenstore.TokenStore
	Entries   entrystore.Store
	Insights  *insight.Service
	URLTokens *sessiontoken.Service
}

// Handler owns the built-in HTTP handlers. Cookie behavior follows the
// enforcer's config so logins and guest sessions set identical cookies.
type Handler struct {
	log *slog.Logger
	cfg enforcer.Config
	HandlerDeps
}

func newHandler(logger *slog.Logger, cfg enforcer.Config, deps HandlerDeps) *Handler {
	return &Handler{
		log:         logger,
		cfg:         cfg,
		HandlerDeps: deps,
	}
}

// currentUser returns the user the enforcer authenticated, or nil when the
// middleware never ran. Handlers behind an AccessUser policy can rely on a
// non-guest user being present.
func (h *Handler) currentUser(r *http.Request) *models.User {
	return enforcer.UserFromContext(r.Context())
}

// decodeJSON decodes the request body into v, writing a 400 response and
// returning false if the body is not valid JSON.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		api.ReturnError(w, h.log, api.BadRequestInvalidJSON)
		return false
	}
	return true
}

// startSession creates a server-held session for the user and sets the
// session cookie on the response.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	remoteAddr := r.RemoteAddr
	userAgent := r.UserAgent()
	session, err := h.Session.Create(r.Context(), userID, &remoteAddr, &userAgent)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.SessionCookieName,
		Value:    session.ID,
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cfg.SessionCookieSecure,
		Path:     h.cfg.SessionCookiePath,
	})
	return nil
}

// respondStoreError translates store and service errors into the standard
// JSON error responses.
func (h *Handler) respondStoreError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		api.ReturnError(w, h.log, func() (int, api.ErrorResponse) {
			return api.NotFound("no entry for that date")
		})
	case errors.As(err, &validationErr):
		msg := validationErr.Error()
		api.ReturnError(w, h.log, func() (int, api.ErrorResponse) {
			return api.BadRequestValidation(msg)
		})
	default:
		h.log.Error("request failed", "err", err)
		api.ReturnError(w, h.log, api.InternalServerError)
	}
}

// parseDatePath reads the {date} path segment as a calendar day. On failure
// it writes a 400 response and returns false.
func (h *Handler) parseDatePath(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.PathValue("date")
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		api.ReturnError(w, h.log, func() (int, api.ErrorResponse) {
			return api.BadRequestValidation("date must be formatted YYYY-MM-DD")
		})
		return time.Time{}, false
	}
	return models.DateOnly(date), true
}

// today returns the current calendar day, the key every journal write and
// read without an explicit date resolves to.
func today() time.Time {
	return models.DateOnly(time.Now().UTC())
}

func (h *Handler) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.RespondJSONAndLog(w, h.log, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (h *Handler) handleSignup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.SignupRequest
		if !h.decodeJSON(w, r, &req) {
			return
		}

		if req.Password != req.Confirm {
			api.ReturnError(w, h.log, func() (int, api.ErrorResponse) {
				return api.BadRequestValidation("passwords do not match")
			})
			return
		}

		exists, err := h.Auth.CheckEmailExists(r.Context(), req.Email)
		if err != nil {
			h.respondStoreError(w, err)
			return
		}
		if exists {
			api.ReturnError(w, h.log, func() (int, api.ErrorResponse) {
				return api.ResourceConflict("an account with that email already exists")
			})
			return
		}

		user, err := h.Auth.CreateUser(r.Context(), models.CreateUserParams{
			Email:    req.Email,
			Password: &req.Password,
			Name:     req.Name,
		})
		if err != nil {
			var dupErr *db.DuplicateKeyError
			if errors.As(err, &dupErr) {
				api.ReturnError(w, h.log, func() (int, api.ErrorResponse) {
					return api.ResourceConflict("an account with that email already exists")
				})
				return
			}
			h.respondStoreError(w, err)
			return
		}

		if err := h.startSession(w, r, user.ID); err != nil {
			h.respondStoreError(w, err)
			return
		}

		api.RespondJSONAndLog(w, h.log, http.StatusCreated, api.LoginResponse{User: *user})
	}
}

func (h *Handler) handleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		if !h.decodeJSON(w, r, &req) {
			return
		}

		user, err := h.Auth.GetUserByEmail(r.Context(), req.Email)
		if err != nil || user == nil || !user.IsActive {
			api.ReturnError(w, h.log, api.UnauthorizedInvalidCredentials)
			return
		}

		// Accounts created through an OAuth provider have no password hash
		// and cannot log in with one.
		if user.PasswordHash == nil {
			api.ReturnError(w, h.log, func() (int, api.ErrorResponse) {
				return api.NewError(http.StatusUnauthorized, api.ErrCredentials,
					"this account signs in with an external provider")
			})
			return
		}

		if !passwd.CheckPasswordHash(req.Password, *user.PasswordHash) {
			api.ReturnError(w, h.log, api.UnauthorizedInvalidCredentials)
			return
		}

		if err := h.startSession(w, r, user.ID); err != nil {
			h.respondStoreError(w, err)
			return
		}

		token, err := h.Token.IssueToken(user)
		if err != nil {
			h.respondStoreError(w, err)
			return
		}

		api.RespondJSONAndLog(w, h.log, http.StatusOK, api.LoginResponse{Token: token, User: *user})
	}
}

func (h *Handler) handleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(h.cfg.SessionCookieName); err == nil {
			if err := h.Session.Delete(r.Context(), cookie.Value); err != nil {
				h.log.Debug("failed to delete session on logout", "err", err)
			}
			h.Session.ExpireCookie(cookie, w)
		}

		// A bearer-authenticated logout revokes the presented token.
		if tokenStr, ok := r.Context().Value(enforcer.JWTContextKey).(string); ok && tokenStr != "" {
			payload, err := h.Token.ParseToken(r.Context(), tokenStr)
			if err == nil {
				if err := h.Token.RevokeToken(r.Context(), payload); err != nil {
					h.log.Debug("failed to revoke token on logout", "err", err)
				}
			}
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) handleTokenRefresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.TokenResponse
		if !h.decodeJSON(w, r, &req) {
			return
		}
		if req.Token == "" {
			api.ReturnError(w, h.log, func() (int, api.ErrorResponse) {
				return api.BadRequestValidation("token is required")
			})
			return
		}

		newToken, err := h.Token.RefreshTokenStr(r.Context(), req.Token)
		if err != nil {
			api.ReturnError(w, h.log, api.UnauthorizedInvalidToken)
			return
		}

		api.RespondJSONAndLog(w, h.log, http.StatusOK, api.TokenResponse{Token: newToken})
	}
}

// handleURLTokenIssue hands the signed-in user a signed token they can carry
// in a bookmarked URL instead of a cookie.
func (h *Handler) handleURLTokenIssue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := h.currentUser(r)
		if user == nil || !user.IsAuthenticated() {
			api.ReturnError(w, h.log, api.UnauthorizedAuthRequired)
			return
		}

		token, err := h.URLTokens.Issue(user.ID)
		if err != nil {
			h.respondStoreError(w, err)
			return
		}

		api.RespondJSONAndLog(w, h.log, http.StatusOK, api.TokenResponse{Token: token})
	}
}

func (h *Handler) handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := h.currentUser(r)
		if user == nil || !user.IsAuthenticated() {
			api.ReturnError(w, h.log, api.UnauthorizedAuthRequired)
			return
		}
		api.RespondJSONAndLog(w, h.log, http.StatusOK, api.UserResponse{User: *user})
	}
}

func (h *Handler) handlePasswordUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.PasswordUpdateRequest
		if !h.decodeJSON(w, r, &req) {
			return
		}

		user := h.currentUser(r)
		if user == nil || !user.IsAuthenticated() {
			api.ReturnError(w, h.log, api.UnauthorizedAuthRequired)
			return
		}

		if user.PasswordHash == nil || !passwd.CheckPasswordHash(req.CurrentPassword, *user.PasswordHash) {
			api.ReturnError(w, h.log, api.UnauthorizedInvalidCredentials)
			return
		}

		if err := h.Auth.UpdateUserPassword(r.Context(), user.ID, req.NewPassword); err != nil {
			h.respondStoreError(w, err)
			return
		}

		// Changing the password logs the account out everywhere.
		if err := h.Session.DeleteUser(r.Context(), user.ID); err != nil {
			h.log.Debug("failed to delete sessions after password change", "err", err)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
