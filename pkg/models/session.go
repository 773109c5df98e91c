package models

import (
	"time"
)

// Session represents the data stored for a single user session.
type Session struct {
	ID        string    // Unique identifier for the session
	UserID    int64     // ID of the user associated with this session, 0 for guests
	ExpiresAt time.Time // When the session becomes invalid
	CreatedAt time.Time // When the session was created
	IpAddress *string   // Optional ip address
	UserAgent *string   // Optional UserAgent
}
