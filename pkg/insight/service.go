package insight

import (
	"context"
	"log/slog"
	"time"

	"github.com/andyirvine/journal-app/internal/entrystore"
	"github.com/andyirvine/journal-app/internal/logutil"
	"github.com/andyirvine/journal-app/pkg/models"
)

// Service generates and stores insights for journal entries.
type Service struct {
	completer Completer
	entries   entrystore.Store
	log       *slog.Logger
}

func NewService(completer Completer, entries entrystore.Store, logger *slog.Logger) *Service {
	return &Service{
		completer: completer,
		entries:   entries,
		log:       logger,
	}
}

// Enabled reports whether a completion backend is configured.
func (s *Service) Enabled() bool {
	return s.completer != nil
}

// NarrativeObservation generates a reflection on the entry for the given day
// and stores it. The entry must have at least MinObservationWords words.
func (s *Service) NarrativeObservation(ctx context.Context, userID int64, date time.Time) (*models.Insight, error) {
	entry, err := s.entries.GetEntry(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if entry.WordCount < MinObservationWords {
		return nil, models.NewValidationError("entry too short for an observation")
	}

	text, err := s.completer.Complete(ctx, CompletionRequest{
		Messages:  []Message{{Role: "user", Content: BuildNarrativePrompt(entry.Content)}},
		MaxTokens: narrativeMaxTokens,
	})
	if err != nil {
		return nil, logutil.LogAndWrapErr(s.log, "failed to generate observation", err)
	}

	return s.entries.CreateInsight(ctx, userID, date, models.InsightNarrative, text)
}

// ContextualInsight generates an insight that reads today's entry against
// the user's recent history and stores it.
func (s *Service) ContextualInsight(ctx context.Context, userID int64, date time.Time) (*models.Insight, error) {
	entry, err := s.entries.GetEntry(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if entry.WordCount < MinObservationWords {
		return nil, models.NewValidationError("entry too short for an insight")
	}

	all, err := s.entries.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	var history []HistoryEntry
	for _, e := range all {
		if e.Date.Equal(entry.Date) {
			continue
		}
		history = append(history, HistoryEntry{Date: e.Date, Content: e.Content, WordCount: e.WordCount})
	}
	if len(history) > contextualHistorySize {
		history = history[len(history)-contextualHistorySize:]
	}

	text, err := s.completer.Complete(ctx, CompletionRequest{
		Messages:  []Message{{Role: "user", Content: BuildContextualPrompt(entry.Content, history)}},
		MaxTokens: contextualMaxTokens,
	})
	if err != nil {
		return nil, logutil.LogAndWrapErr(s.log, "failed to generate insight", err)
	}

	return s.entries.CreateInsight(ctx, userID, date, models.InsightContextual, text)
}

// AnswerQuestion answers a free-form question about the user's journal,
// continuing the given chat history.
func (s *Service) AnswerQuestion(ctx context.Context, userID int64, question string, chatHistory []Message) (string, error) {
	if question == "" {
		return "", models.NewValidationError("question is empty")
	}

	all, err := s.entries.ListEntries(ctx, userID)
	if err != nil {
		return "", err
	}

	history := make([]HistoryEntry, 0, len(all))
	for _, e := range all {
		history = append(history, HistoryEntry{Date: e.Date, Content: e.Content, WordCount: e.WordCount})
	}

	messages := append(append([]Message{}, chatHistory...), Message{Role: "user", Content: question})

	answer, err := s.completer.Complete(ctx, CompletionRequest{
		System:    BuildChatSystem(history, time.Now()),
		Messages:  messages,
		MaxTokens: chatMaxTokens,
	})
	if err != nil {
		return "", logutil.LogAndWrapErr(s.log, "failed to answer journal question", err)
	}
	return answer, nil
}

// ListInsights returns stored insights for an entry date, oldest first.
func (s *Service) ListInsights(ctx context.Context, userID int64, date time.Time) ([]*models.Insight, error) {
	return s.entries.ListInsights(ctx, userID, date)
}
