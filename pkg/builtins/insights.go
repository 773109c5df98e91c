package builtins

import (
	"context"
	"net/http"
	"time"

	"github.com/andyirvine/journal-app/api"
	"github.com/andyirvine/journal-app/pkg/models"
)

// insightDate resolves the optional date in an insight request, defaulting
// to today.
func insightDate(req api.InsightRequest) time.Time {
	if req.Date == nil {
		return today()
	}
	return models.DateOnly(time.Time(*req.Date))
}

// requireInsights writes a 503 and returns false when no completion backend
// is configured.
func (h *Handler) requireInsights(w http.ResponseWriter) bool {
	if h.Insights == nil || !h.Insights.Enabled() {
		api.ReturnError(w, h.log, func() (int, api.ErrorResponse) {
			return api.NotConfigured("no completion backend is configured")
		})
		return false
	}
	return true
}

func (h *Handler) handleInsightNarrative() http.HandlerFunc {
	return h.handleInsightGenerate(func(ctx context.Context, userID int64, date time.Time) (*models.Insight, error) {
		return h.Insights.NarrativeObservation(ctx, userID, date)
	})
}

func (h *Handler) handleInsightContextual() http.HandlerFunc {
	return h.handleInsightGenerate(func(ctx context.Context, userID int64, date time.Time) (*models.Insight, error) {
		return h.Insights.ContextualInsight(ctx, userID, date)
	})
}

// handleInsightGenerate is the shared request plumbing for the two insight
// variants; generate does the actual work.
func (h *Handler) handleInsightGenerate(generate func(ctx context.Context, userID int64, date time.Time) (*models.Insight, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.requireInsights(w) {
			return
		}

		var req api.InsightRequest
		if !h.decodeJSON(w, r, &req) {
			return
		}

		user := h.currentUser(r)
		created, err := generate(r.Context(), user.ID, insightDate(req))
		if err != nil {
			h.respondStoreError(w, err)
			return
		}

		api.RespondJSONAndLog(w, h.log, http.StatusCreated, api.InsightResponse{Insight: *created})
	}
}

func (h *Handler) handleInsightList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := h.parseDatePath(w, r)
		if !ok {
			return
		}

		// Stored insights are readable even when no completion backend is
		// configured right now.
		user := h.currentUser(r)
		insights, err := h.Entries.ListInsights(r.Context(), user.ID, date)
		if err != nil {
			h.respondStoreError(w, err)
			return
		}

		listed := make([]models.Insight, 0, len(insights))
		for _, i := range insights {
			listed = append(listed, *i)
		}

		api.RespondJSONAndLog(w, h.log, http.StatusOK, api.InsightListResponse{Insights: listed})
	}
}

func (h *Handler) handleChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.requireInsights(w) {
			return
		}

		var req api.ChatRequest
		if !h.decodeJSON(w, r, &req) {
			return
		}

		user := h.currentUser(r)
		answer, err := h.Insights.AnswerQuestion(r.Context(), user.ID, req.Question, req.History)
		if err != nil {
			h.respondStoreError(w, err)
			return
		}

		api.RespondJSONAndLog(w, h.log, http.StatusOK, api.ChatResponse{Answer: answer})
	}
}
