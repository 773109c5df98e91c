package builtins

import (
	"net/http"
	"strings"

	"github.com/andyirvine/journal-app/api"
	"github.com/andyirvine/journal-app/pkg/analysis"
)

// topKeywordCount is how many keywords the analysis view surfaces.
const topKeywordCount = 10

// handleAnalysis returns the user's journaling statistics: totals and streak,
// the most frequent meaningful words, and the sentiment trend with its
// seven day rolling average.
func (h *Handler) handleAnalysis() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := h.currentUser(r)

		entries, err := h.Entries.ListEntries(r.Context(), user.ID)
		if err != nil {
			h.respondStoreError(w, err)
			return
		}

		stats := make([]analysis.EntryStat, 0, len(entries))
		points := make([]analysis.SentimentPoint, 0, len(entries))
		var allText strings.Builder
		for _, e := range entries {
			stats = append(stats, analysis.EntryStat{Date: e.Date, WordCount: e.WordCount})
			if e.SentimentScore != nil {
				points = append(points, analysis.SentimentPoint{Date: e.Date, Score: *e.SentimentScore})
			}
			allText.WriteString(e.Content)
			allText.WriteString("\n")
		}

		api.RespondJSONAndLog(w, h.log, http.StatusOK, api.AnalysisResponse{
			Stats:     analysis.ComputeStats(stats, today()),
			Keywords:  analysis.ExtractKeywords(allText.String(), topKeywordCount),
			Sentiment: points,
			Rolling:   analysis.RollingAverage(points),
		})
	}
}
