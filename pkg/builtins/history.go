package builtins

import (
	"net/http"

	"github.com/andyirvine/journal-app/api"
	"github.com/andyirvine/journal-app/pkg/analysis"
	"github.com/andyirvine/journal-app/pkg/models"
)

// handleHistoryList returns every entry the user has written, newest first.
func (h *Handler) handleHistoryList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := h.currentUser(r)

		entries, err := h.Entries.ListEntries(r.Context(), user.ID)
		if err != nil {
			h.respondStoreError(w, err)
			return
		}

		// The store orders ascending; history reads newest first.
		listed := make([]models.Entry, 0, len(entries))
		for i := len(entries) - 1; i >= 0; i-- {
			listed = append(listed, *entries[i])
		}

		api.RespondJSONAndLog(w, h.log, http.StatusOK, api.HistoryResponse{Entries: listed})
	}
}

func (h *Handler) handleHistoryGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := h.parseDatePath(w, r)
		if !ok {
			return
		}

		user := h.currentUser(r)
		entry, err := h.Entries.GetEntry(r.Context(), user.ID, date)
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

func (h *Handler) handleHistoryDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := h.parseDatePath(w, r)
		if !ok {
			return
		}

		user := h.currentUser(r)
		if err := h.Entries.DeleteEntry(r.Context(), user.ID, date); err != nil {
			h.respondStoreError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
