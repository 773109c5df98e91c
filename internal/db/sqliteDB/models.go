package sqliteDB

// Row structs mirror the sqlite schema one to one. Timestamps are stored as
// unix seconds and entry dates as "YYYY-MM-DD" strings; conversions.go turns
// rows into the portable models.
type User struct {
	ID            int64
	Email         string
	PasswordHash  *string
	Name          string
	OauthProvider *string
	OauthID       *string
	CreatedAt     int64
	UpdatedAt     int64
	IsActive      bool
}

type JournalEntry struct {
	ID             int64
	UserID         int64
	EntryDate      string
	Content        string
	WordCount      int64
	SentimentScore *float64
	CreatedAt      int64
	UpdatedAt      int64
}

type AiInsight struct {
	ID          int64
	UserID      int64
	EntryDate   string
	InsightType string
	Content     string
	CreatedAt   int64
}

type Session struct {
	ID        string
	UserID    int64
	CreatedAt int64
	ExpiresAt int64
	IpAddress *string
	UserAgent *string
}

type RevokedToken struct {
	ID                string
	UserID            int64
	RevokedAt         int64
	OriginalExpiresAt int64
}
