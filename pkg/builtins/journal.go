package builtins

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/andyirvine/journal-app/api"
	"github.com/andyirvine/journal-app/pkg/analysis"
	"github.com/andyirvine/journal-app/pkg/models"
)

// handleJournalGet returns today's entry. A day with no entry yet is not an
// error; the response carries an empty entry so the editor starts blank.
func (h *Handler) handleJournalGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := h.currentUser(r)
		date := today()

		entry, err := h.Entries.GetEntry(r.Context(), user.ID, date)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				api.RespondJSONAndLog(w, h.log, http.StatusOK, api.EntryResponse{
					Entry:    models.Entry{UserID: user.ID, Date: date},
					Progress: analysis.Progress(0),
				})
				return
			}
			h.respondStoreError(w, err)
			return
		}

		api.RespondJSONAndLog(w, h.log, http.StatusOK, api.EntryResponse{
			Entry:    *entry,
			Progress: analysis.Progress(entry.WordCount),
		})
	}
}

// handleJournalSave replaces today's entry with the submitted text. Word
// count and sentiment are computed here, never trusted from the client.
func (h *Handler) handleJournalSave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.SaveEntryRequest
		if !h.decodeJSON(w, r, &req) {
			return
		}

		user := h.currentUser(r)
		wordCount := analysis.WordCount(req.Content)
		sentiment := analysis.Sentiment(req.Content)

		entry, err := h.Entries.UpsertEntry(r.Context(), models.UpsertEntryParams{
			UserID:         user.ID,
			Date:           today(),
			Content:        req.Content,
			WordCount:      wordCount,
			SentimentScore: &sentiment,
		})
		if err != nil {
			h.respondStoreError(w, err)
			return
		}

		api.RespondJSONAndLog(w, h.log, http.StatusOK, api.EntryResponse{
			Entry:    *entry,
			Progress: analysis.Progress(entry.WordCount),
		})
	}
}

// handleJournalProgress reports progress toward the daily word goal.
func (h *Handler) handleJournalProgress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := h.currentUser(r)

		words := 0
		entry, err := h.Entries.GetEntry(r.Context(), user.ID, today())
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			h.respondStoreError(w, err)
			return
		}
		if entry != nil {
			words = entry.WordCount
		}

		api.RespondJSONAndLog(w, h.log, http.StatusOK, analysis.Progress(words))
	}
}
