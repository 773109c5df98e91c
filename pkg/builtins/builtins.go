// Package builtins registers the application's HTTP routes and their access
// policies on an enforcer.
package builtins

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/andyirvine/journal-app/pkg/enforcer"
	"github.com/andyirvine/journal-app/pkg/models"
)

type Builtin struct {
	enforcer *enforcer.Enforcer
	handler  Handler
}

// New initializes and returns a new Builtin instance wired to the enforcer
// and the handler dependencies.
func New(logger *slog.Logger, enf *enforcer.Enforcer, deps HandlerDeps) *Builtin {
	return &Builtin{
		enforcer: enf,
		handler:  *newHandler(logger, enf.Config, deps),
	}
}

// LoadAllRoutes loads all route groups. If any group fails to register its
// routes, the error(s) will be combined and returned as a single error via
// errors.Join.
func (b *Builtin) LoadAllRoutes() error {
	errs := []error{
		b.LoadAuthRoutes(),
		b.LoadJournalRoutes(),
		b.LoadHistoryRoutes(),
		b.LoadAnalysisRoutes(),
		b.LoadImportRoutes(),
		b.LoadInsightRoutes(),
	}

	return errors.Join(errs...)
}

// LoadAllPolicies guards everything under /api behind a signed-in account,
// with the auth endpoints open to guests so they can sign up and log in.
func (b *Builtin) LoadAllPolicies() {
	b.enforcer.SetPolicy("/api", "*", models.AccessUser)
	b.enforcer.SetPolicy("/api/health", "GET", models.AccessGuest)
	b.enforcer.SetPolicy("/api/auth/signup", "POST", models.AccessGuest)
	b.enforcer.SetPolicy("/api/auth/login", "POST", models.AccessGuest)
	b.enforcer.SetPolicy("/api/auth/logout", "POST", models.AccessGuest)
	b.enforcer.SetPolicy("/api/auth/token/refresh", "POST", models.AccessGuest)
}

func (b *Builtin) LoadAuthRoutes() error {
	return b.registerRoutes(map[string]http.HandlerFunc{
		"GET /api/health":              b.handler.handleHealth(),
		"POST /api/auth/signup":        b.handler.handleSignup(),
		"POST /api/auth/login":         b.handler.handleLogin(),
		"POST /api/auth/logout":        b.handler.handleLogout(),
		"POST /api/auth/token/refresh": b.handler.handleTokenRefresh(),
		"POST /api/auth/url-token":     b.handler.handleURLTokenIssue(),
		"GET /api/auth/me":             b.handler.handleMe(),
		"PUT /api/auth/password":       b.handler.handlePasswordUpdate(),
	})
}

func (b *Builtin) LoadJournalRoutes() error {
	return b.registerRoutes(map[string]http.HandlerFunc{
		"GET /api/journal/today":    b.handler.handleJournalGet(),
		"PUT /api/journal/today":    b.handler.handleJournalSave(),
		"GET /api/journal/progress": b.handler.handleJournalProgress(),
	})
}

func (b *Builtin) LoadHistoryRoutes() error {
	return b.registerRoutes(map[string]http.HandlerFunc{
		"GET /api/history":           b.handler.handleHistoryList(),
		"GET /api/history/{date}":    b.handler.handleHistoryGet(),
		"DELETE /api/history/{date}": b.handler.handleHistoryDelete(),
	})
}

func (b *Builtin) LoadAnalysisRoutes() error {
	return b.registerRoutes(map[string]http.HandlerFunc{
		"GET /api/analysis": b.handler.handleAnalysis(),
	})
}

func (b *Builtin) LoadImportRoutes() error {
	return b.registerRoutes(map[string]http.HandlerFunc{
		"POST /api/import": b.handler.handleImport(),
	})
}

func (b *Builtin) LoadInsightRoutes() error {
	return b.registerRoutes(map[string]http.HandlerFunc{
		"POST /api/insights/narrative":  b.handler.handleInsightNarrative(),
		"POST /api/insights/contextual": b.handler.handleInsightContextual(),
		"GET /api/insights/{date}":      b.handler.handleInsightList(),
		"POST /api/chat":                b.handler.handleChat(),
	})
}

// registerRoutes registers a set of HTTP routes with their corresponding handlers.
// It accepts a map where the keys are route patterns (e.g., "POST /api/auth/login")
// and the values are the associated http.HandlerFunc implementations.
//
// If any calls to enforcer.Handle fail, all resulting errors are collected
// and returned as a single error using errors.Join. If all registrations succeed,
// the returned error will be nil.
func (b *Builtin) registerRoutes(routes map[string]http.HandlerFunc) error {
	var errs []error
	for pattern, handler := range routes {
		if err := b.enforcer.Handle(pattern, handler); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
