package persistence

import (
	"encoding/json"
	"time"
)

// User represents a club account.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Player represents a roster entry. ID equals the owning account's user id.
type Player struct {
	ID        string
	FirstName string
	LastName  string
	PhotoURL  *string
	Teams     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TrainingSession represents a scheduled training stored as a document whose
// attendance field maps user ids to raw JSON values.
//
// Date uses YYYY-MM-DD and the times use HH:MM:SS; an empty string means the
// field was never set.
type TrainingSession struct {
	ID          string
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	Venue       string
	Team        string
	Attendance  map[string]json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AuthSession represents an issued login. The signed token only carries its ID,
// so revocation and expiry are enforced against this record.
type AuthSession struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
