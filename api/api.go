// Package api holds the JSON request and response types of the HTTP API and
// helpers for writing them.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/andyirvine/journal-app/pkg/analysis"
	"github.com/andyirvine/journal-app/pkg/insight"
	"github.com/andyirvine/journal-app/pkg/models"
)

// RespondJSONAndLog is a convenience wrapper around RespondJSON that also logs any encoding errors.
// It accepts a logger, writes a standardized JSON response, and logs at debug level if encoding fails.
func RespondJSONAndLog(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	if err := RespondJSON(w, status, payload); err != nil {
		logger.Debug("failed to respond with JSON", "err", err)
	}
}

// RespondJSON writes a JSON response with the given status code.
//
// Returns an error only if JSON encoding fails. In most cases, this happens
// if the response writer is closed or the payload is not serializable.
func RespondJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(payload)
}

// SignupRequest defines model for SignupRequest.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
	Name     string `json:"name"`
}

// LoginRequest defines model for LoginRequest.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse defines model for LoginResponse.
type LoginResponse struct {
	Token string      `json:"token,omitempty"`
	User  models.User `json:"user"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	User models.User `json:"user"`
}

type PasswordUpdateRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// SaveEntryRequest carries the full text of the day's entry. Word count and
// sentiment are computed server side.
type SaveEntryRequest struct {
	Content string `json:"content"`
}

type EntryResponse struct {
	Entry    models.Entry          `json:"entry"`
	Progress analysis.GoalProgress `json:"progress"`
}

// HistoryResponse lists entries newest first.
type HistoryResponse struct {
	Entries []models.Entry `json:"entries"`
}

type AnalysisResponse struct {
	Stats     analysis.Stats            `json:"stats"`
	Keywords  []analysis.Keyword        `json:"keywords"`
	Sentiment []analysis.SentimentPoint `json:"sentiment"`
	Rolling   []float64                 `json:"rollingAverage"`
}

// ImportResponse reports the outcome of an archive or file upload.
type ImportResponse struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Warnings []string   `json:"warnings"`
	Dates    []DateOnly `json:"dates"`
}

// DateOnly marshals a time as "YYYY-MM-DD".
type DateOnly time.Time

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format("2006-01-02"))
}

func (d *DateOnly) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	*d = DateOnly(t)
	return nil
}

// InsightRequest names the entry date an insight should be generated for.
// A missing date means today.
type InsightRequest struct {
	Date *DateOnly `json:"date,omitempty"`
}

type InsightResponse struct {
	Insight models.Insight `json:"insight"`
}

type InsightListResponse struct {
	Insights []models.Insight `json:"insights"`
}

type ChatRequest struct {
	Question string            `json:"question"`
	History  []insight.Message `json:"history"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}
