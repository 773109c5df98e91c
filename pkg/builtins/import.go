package builtins

import (
	"errors"
	"io"
	"net/http"

	"github.com/andyirvine/journal-app/api"
	"github.com/andyirvine/journal-app/pkg/analysis"
	"github.com/andyirvine/journal-app/pkg/importer"
	"github.com/andyirvine/journal-app/pkg/models"
)

// maxUploadBytes caps the import upload size at 10 MiB.
const maxUploadBytes = 10 << 20

// handleImport accepts a legacy journal export as a multipart file upload and
// writes the extracted entries into the user's journal.
//
// The "policy" query parameter decides how a date that already has an entry
// is handled: "skip" (the default) leaves the stored entry untouched,
// "overwrite" replaces it with the imported one.
func (h *Handler) handleImport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		policy := r.URL.Query().Get("policy")
		if policy == "" {
			policy = "skip"
		}
		if policy != "skip" && policy != "overwrite" {
			api.ReturnError(w, h.log, func() (int, api.ErrorResponse) {
				return api.BadRequestValidation("policy must be \"skip\" or \"overwrite\"")
			})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				api.ReturnError(w, h.log, api.UploadTooLarge)
				return
			}
			api.ReturnError(w, h.log, func() (int, api.ErrorResponse) {
				return api.BadRequestValidation("expected a multipart file upload")
			})
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			api.ReturnError(w, h.log, func() (int, api.ErrorResponse) {
				return api.BadRequestValidation("missing \"file\" form field")
			})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			h.respondStoreError(w, err)
			return
		}

		parsed, warnings := importer.ParseUpload(header.Filename, data)
		if warnings == nil {
			warnings = []string{}
		}

		user := h.currentUser(r)
		resp := api.ImportResponse{Warnings: warnings, Dates: []api.DateOnly{}}
		for _, entry := range parsed {
			sentiment := analysis.Sentiment(entry.Content)
			params := models.UpsertEntryParams{
				UserID:         user.ID,
				Date:           entry.Date,
				Content:        entry.Content,
				WordCount:      analysis.WordCount(entry.Content),
				SentimentScore: &sentiment,
			}

			if policy == "overwrite" {
				if _, err := h.Entries.UpsertEntry(r.Context(), params); err != nil {
					h.respondStoreError(w, err)
					return
				}
				resp.Imported++
				resp.Dates = append(resp.Dates, api.DateOnly(entry.Date))
				continue
			}

			inserted, err := h.Entries.InsertEntryIfAbsent(r.Context(), params)
			if err != nil {
				h.respondStoreError(w, err)
				return
			}
			if inserted {
				resp.Imported++
				resp.Dates = append(resp.Dates, api.DateOnly(entry.Date))
			} else {
				resp.Skipped++
			}
		}

		h.log.Info("journal import finished",
			"user_id", user.ID,
			"filename", header.Filename,
			"imported", resp.Imported,
			"skipped", resp.Skipped,
			"warnings", len(resp.Warnings))

		api.RespondJSONAndLog(w, h.log, http.StatusOK, resp)
	}
}
