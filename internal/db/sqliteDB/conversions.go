package sqliteDB

import (
	"fmt"
	"time"

	"github.com/andyirvine/journal-app/pkg/models"
	"github.com/andyirvine/journal-app/pkg/models/passwd"
)

// dateLayout is how entry dates are stored in sqlite. Lexical order of the
// strings matches chronological order, which the range queries rely on.
const dateLayout = "2006-01-02"

func FormatDate(t time.Time) string {
	return models.DateOnly(t).Format(dateLayout)
}

func ParseStoredDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored date %q: %w", s, err)
	}
	return t, nil
}

func (u *User) ToUserModel() models.User {
	return models.User{
		ID:            u.ID,
		Email:         u.Email,
		PasswordHash:  u.PasswordHash,
		Name:          u.Name,
		OauthProvider: u.OauthProvider,
		OauthID:       u.OauthID,
		CreatedAt:     time.Unix(u.CreatedAt, 0),
		UpdatedAt:     time.Unix(u.UpdatedAt, 0),
		IsActive:      u.IsActive,
	}
}

func CreateUserParamsFromModel(args models.CreateUserParams, now time.Time) (CreateUserParams, error) {
	params := CreateUserParams{
		Email:         args.Email,
		Name:          args.Name,
		OauthProvider: args.OauthProvider,
		OauthID:       args.OauthID,
		CreatedAt:     now.Unix(),
		UpdatedAt:     now.Unix(),
	}

	// passwords can be nil when using Oauth
	if args.Password != nil {
		hashed, err := passwd.HashPassword(*args.Password)
		if err != nil {
			return params, err
		}
		params.PasswordHash = &hashed
	}
	return params, nil
}

func GetUserByOAuthParamsFromModel(args models.UserOAuthParams) GetUserByOAuthParams {
	var providerPtr, idPtr *string

	if args.OauthProvider != "" {
		providerPtr = &args.OauthProvider
	}
	if args.OauthID != "" {
		idPtr = &args.OauthID
	}

	return GetUserByOAuthParams{
		OauthProvider: providerPtr,
		OauthID:       idPtr,
	}
}

func (e *JournalEntry) ToEntryModel() (models.Entry, error) {
	date, err := ParseStoredDate(e.EntryDate)
	if err != nil {
		return models.Entry{}, err
	}
	return models.Entry{
		ID:             e.ID,
		UserID:         e.UserID,
		Date:           date,
		Content:        e.Content,
		WordCount:      int(e.WordCount),
		SentimentScore: e.SentimentScore,
		CreatedAt:      time.Unix(e.CreatedAt, 0),
		UpdatedAt:      time.Unix(e.UpdatedAt, 0),
	}, nil
}

func UpsertEntryParamsFromModel(args models.UpsertEntryParams, now time.Time) UpsertEntryParams {
	return UpsertEntryParams{
		UserID:         args.UserID,
		EntryDate:      FormatDate(args.Date),
		Content:        args.Content,
		WordCount:      int64(args.WordCount),
		SentimentScore: args.SentimentScore,
		CreatedAt:      now.Unix(),
		UpdatedAt:      now.Unix(),
	}
}

func (i *AiInsight) ToInsightModel() (models.Insight, error) {
	date, err := ParseStoredDate(i.EntryDate)
	if err != nil {
		return models.Insight{}, err
	}
	return models.Insight{
		ID:        i.ID,
		UserID:    i.UserID,
		EntryDate: date,
		Type:      models.InsightType(i.InsightType),
		Content:   i.Content,
		CreatedAt: time.Unix(i.CreatedAt, 0),
	}, nil
}

func CreateSessionParamsFromModel(args models.Session) CreateSessionParams {
	return CreateSessionParams{
		ID:        args.ID,
		UserID:    args.UserID,
		CreatedAt: args.CreatedAt.Unix(),
		ExpiresAt: args.ExpiresAt.Unix(),
		IpAddress: args.IpAddress,
		UserAgent: args.UserAgent,
	}
}

func (s *Session) ToSessionModel() models.Session {
	return models.Session{
		ID:        s.ID,
		UserID:    s.UserID,
		CreatedAt: time.Unix(s.CreatedAt, 0),
		ExpiresAt: time.Unix(s.ExpiresAt, 0),
		IpAddress: s.IpAddress,
		UserAgent: s.UserAgent,
	}
}
