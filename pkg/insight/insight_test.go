package insight

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/andyirvine/journal-app/database"
	"github.com/andyirvine/journal-app/internal/entrystore"
	"github.com/andyirvine/journal-app/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCompleter records the last request and returns a fixed response.
type stubCompleter struct {
	lastReq  CompletionRequest
	response string
}

func (s *stubCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	s.lastReq = req
	return s.response, nil
}

func newTestService(t *testing.T, completer Completer) (*Service, entrystore.Store) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunSqliteMigrations(db))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	entries := entrystore.NewWithSqliteStore(db, logger)
	return NewService(completer, entries, logger), entries
}

func day(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

func longEntry(word string) string {
	return strings.TrimSpace(strings.Repeat(word+" ", MinObservationWords+10))
}

func TestNarrativeObservationStoresInsight(t *testing.T) {
	stub := &stubCompleter{response: "You sound energized today."}
	svc, entries := newTestService(t, stub)
	ctx := context.Background()

	_, err := entries.UpsertEntry(ctx, models.UpsertEntryParams{
		UserID:    1,
		Date:      day(5),
		Content:   longEntry("word"),
		WordCount: MinObservationWords + 10,
	})
	require.NoError(t, err)

	got, err := svc.NarrativeObservation(ctx, 1, day(5))
	require.NoError(t, err)
	assert.Equal(t, models.InsightNarrative, got.Type)
	assert.Equal(t, "You sound energized today.", got.Content)

	require.Len(t, stub.lastReq.Messages, 1)
	assert.Contains(t, stub.lastReq.Messages[0].Content, "Journal entry:")

	stored, err := svc.ListInsights(ctx, 1, day(5))
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestNarrativeObservationRejectsShortEntry(t *testing.T) {
	svc, entries := newTestService(t, &stubCompleter{})
	ctx := context.Background()

	_, err := entries.UpsertEntry(ctx, models.UpsertEntryParams{
		UserID:    1,
		Date:      day(5),
		Content:   "too short",
		WordCount: 2,
	})
	require.NoError(t, err)

	_, err = svc.NarrativeObservation(ctx, 1, day(5))
	require.Error(t, err)
	var vErr *models.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestContextualInsightIncludesHistory(t *testing.T) {
	stub := &stubCompleter{response: "A thread of gardening runs through your week."}
	svc, entries := newTestService(t, stub)
	ctx := context.Background()

	for d := 1; d <= 10; d++ {
		_, err := entries.UpsertEntry(ctx, models.UpsertEntryParams{
			UserID:    1,
			Date:      day(d),
			Content:   longEntry("garden"),
			WordCount: MinObservationWords + 10,
		})
		require.NoError(t, err)
	}

	got, err := svc.ContextualInsight(ctx, 1, day(10))
	require.NoError(t, err)
	assert.Equal(t, models.InsightContextual, got.Type)

	prompt := stub.lastReq.Messages[0].Content
	assert.Contains(t, prompt, "--- Today ---")
	// only the last seven prior days are included
	assert.Contains(t, prompt, "--- 2024-06-03 ---")
	assert.NotContains(t, prompt, "--- 2024-06-02 ---")
}

func TestAnswerQuestionAppendsHistory(t *testing.T) {
	stub := &stubCompleter{response: "You wrote about gardening on June 5."}
	svc, entries := newTestService(t, stub)
	ctx := context.Background()

	_, err := entries.UpsertEntry(ctx, models.UpsertEntryParams{
		UserID:    1,
		Date:      day(5),
		Content:   "planted tomatoes",
		WordCount: 2,
	})
	require.NoError(t, err)

	prior := []Message{
		{Role: "user", Content: "Hi"},
		{Role: "assistant", Content: "Hello"},
	}
	answer, err := svc.AnswerQuestion(ctx, 1, "What did I plant?", prior)
	require.NoError(t, err)
	assert.Equal(t, "You wrote about gardening on June 5.", answer)

	require.Len(t, stub.lastReq.Messages, 3)
	assert.Equal(t, "What did I plant?", stub.lastReq.Messages[2].Content)
	assert.Contains(t, stub.lastReq.System, "JOURNAL ENTRIES:")
	assert.Contains(t, stub.lastReq.System, "2024-06-05")
}

func TestAnswerQuestionEmptyJournal(t *testing.T) {
	stub := &stubCompleter{response: "ok"}
	svc, _ := newTestService(t, stub)

	_, err := svc.AnswerQuestion(context.Background(), 1, "Anything?", nil)
	require.NoError(t, err)
	assert.Contains(t, stub.lastReq.System, "No journal entries found.")
}

func TestBuildChatSystemSnippets(t *testing.T) {
	today := day(30)
	long := strings.Repeat("a", 2000)

	entries := []HistoryEntry{
		{Date: day(29), Content: long, WordCount: 2000},              // recent, 800 cap
		{Date: today.AddDate(0, 0, -120), Content: long, WordCount: 2000}, // old, 150 cap
	}

	system := BuildChatSystem(entries, today)

	recentIdx := strings.Index(system, "2024-06-29")
	require.GreaterOrEqual(t, recentIdx, 0)
	assert.Contains(t, system, strings.Repeat("a", 800)+"…")
	assert.NotContains(t, system, strings.Repeat("a", 801))
}

func TestSummarizeKeepsShortEntries(t *testing.T) {
	short := strings.Repeat("b", 700)
	assert.Equal(t, short, summarize(short))

	long := strings.Repeat("b", 1000)
	got := summarize(long)
	assert.Contains(t, got, " ... ")
	assert.Len(t, got, 500+5+200)
}
