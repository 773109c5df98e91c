package models

import (
	"time"
)

type CreateUserParams struct {
	Email         string  `json:"email"`
	Password      *string `json:"password"`
	Name          string  `json:"name"`
	OauthProvider *string `json:"oauthProvider"`
	OauthID       *string `json:"oauthId"`
}

type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  *string   `json:"-"`
	Name          string    `json:"name"`
	OauthProvider *string   `json:"oauthProvider"`
	OauthID       *string   `json:"oauthId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	IsActive      bool      `json:"isActive"`
}

type UserOAuthParams struct {
	OauthProvider string
	OauthID       string
}

// Entry is one journal entry. A user has at most one entry per calendar day;
// the (UserID, Date) pair is unique in the store.
type Entry struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	Date           time.Time `json:"date"` // midnight UTC, no time component
	Content        string    `json:"content"`
	WordCount      int       `json:"wordCount"`
	SentimentScore *float64  `json:"sentimentScore"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type UpsertEntryParams struct {
	UserID         int64
	Date           time.Time
	Content        string
	WordCount      int
	SentimentScore *float64
}

// InsightType distinguishes the stored AI insight variants.
type InsightType string

const (
	InsightNarrative  InsightType = "narrative"
	InsightContextual InsightType = "contextual"
)

// Insight is a stored observation produced by the text-completion
// collaborator about one entry date.
type Insight struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"userId"`
	EntryDate time.Time   `json:"entryDate"`
	Type      InsightType `json:"type"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

// DateOnly normalizes t to midnight UTC so it can act as a calendar date key.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
