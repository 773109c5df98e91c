// Package insight builds prompts from journal history and runs them through
// a pluggable text completion backend to produce observations about the
// user's writing.
package insight

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Completer produces a text completion. Implementations wrap whatever model
// backend the application is configured with.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// CompletionRequest carries a prompt to the completion backend.
type CompletionRequest struct {
	System    string
	Messages  []Message
	MaxTokens int
}

const (
	// MinObservationWords is the minimum word count of the day's entry
	// before observations are offered.
	MinObservationWords = 50

	// maxEntryRunes caps how much of a single entry goes into a prompt.
	maxEntryRunes = 8000

	// recentWindowDays is how far back full entry text is included in the
	// chat context. Older entries are reduced to a short snippet.
	recentWindowDays = 90

	recentSnippetRunes = 800
	oldSnippetRunes    = 150

	// contextualHistorySize is how many recent entries feed the
	// contextual insight prompt.
	contextualHistorySize = 7

	narrativeMaxTokens  = 256
	contextualMaxTokens = 400
	chatMaxTokens       = 600
)

// HistoryEntry is the slice of an entry the prompt builders need.
type HistoryEntry struct {
	Date      time.Time
	Content   string
	WordCount int
}

// BuildNarrativePrompt asks for a short reflection on a single entry.
func BuildNarrativePrompt(content string) string {
	return "You are a warm, non-judgmental journaling companion. " +
		"The user has shared their morning pages with you. " +
		"Write 3-4 sentences reflecting back what you notice in their writing, " +
		"themes, feelings, energy, or tensions, without giving advice, " +
		"without quoting them directly, and in second person. " +
		"Be gentle, curious, and affirming.\n\n" +
		"Journal entry:\n" + capRunes(content, maxEntryRunes)
}

// BuildContextualPrompt asks for patterns across recent history plus today's
// entry. History must be ordered oldest to newest.
func BuildContextualPrompt(current string, history []HistoryEntry) string {
	var b strings.Builder
	for _, entry := range history {
		fmt.Fprintf(&b, "\n--- %s ---\n%s\n", entry.Date.Format("2006-01-02"), summarize(entry.Content))
	}

	return "You are a warm, non-judgmental journaling companion. " +
		"Below is the user's recent journaling history (oldest to newest), " +
		"followed by today's entry. " +
		"Write 4-5 sentences noticing patterns, shifts in mood or focus, " +
		"or threads that run across their entries, without giving advice, " +
		"without quoting them directly, and in second person. " +
		"Be curious and gentle.\n\n" +
		"Recent history:" + b.String() + "\n" +
		"--- Today ---\n" + capRunes(current, maxEntryRunes)
}

// BuildChatSystem builds the system prompt for multi-turn chat over the
// user's journal. Entries within the recent window are included nearly in
// full, older ones as brief snippets.
func BuildChatSystem(entries []HistoryEntry, today time.Time) string {
	sorted := make([]HistoryEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	cutoff := today.AddDate(0, 0, -recentWindowDays)

	var parts []string
	for _, e := range sorted {
		limit := oldSnippetRunes
		if !e.Date.Before(cutoff) {
			limit = recentSnippetRunes
		}
		snippet := capRunes(e.Content, limit)
		if snippet != e.Content {
			snippet += "…"
		}
		parts = append(parts, fmt.Sprintf("--- %s (%d words) ---\n%s", e.Date.Format("2006-01-02"), e.WordCount, snippet))
	}

	journalContext := "No journal entries found."
	if len(parts) > 0 {
		journalContext = strings.Join(parts, "\n\n")
	}

	return "You are a warm, thoughtful journaling companion. " +
		"You have access to the user's personal journal entries below. " +
		"Answer their questions about their writing, patterns, emotions, themes, and experiences " +
		"based on what's in the entries. Be specific, reference dates and details when relevant. " +
		"If you can't find enough information to answer, say so honestly. " +
		"Never invent details that aren't in the entries.\n\n" +
		"JOURNAL ENTRIES:\n" + journalContext
}

// summarize shortens long entries for history context, keeping the opening
// and the ending of the entry.
func summarize(content string) string {
	runes := []rune(content)
	if len(runes) <= 700 {
		return content
	}
	return string(runes[:500]) + " ... " + string(runes[len(runes)-200:])
}

func capRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
