package persistence

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// UserRepository exposes CRUD operations for accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// PlayerFilter narrows roster queries. An empty Team returns every player.
type PlayerFilter struct {
	Team string
}

// PlayerRepository exposes CRUD operations for roster entries.
type PlayerRepository interface {
	CreatePlayer(ctx context.Context, player Player) error
	UpdatePlayer(ctx context.Context, player Player) error
	GetPlayer(ctx context.Context, id string) (Player, error)
	ListPlayers(ctx context.Context, filter PlayerFilter) ([]Player, error)
	DeletePlayer(ctx context.Context, id string) error
}

// TrainingFilter narrows training queries. An empty Team returns every session.
type TrainingFilter struct {
	Team string
}

// TrainingRepository stores training sessions.
//
// UpdateTrainingSession replaces every field except Attendance, which is only
// ever changed one key at a time through MergeAttendance. ListTrainingSessions
// orders by date descending; sessions without a date come last.
type TrainingRepository interface {
	CreateTrainingSession(ctx context.Context, session TrainingSession) error
	UpdateTrainingSession(ctx context.Context, session TrainingSession) error
	GetTrainingSession(ctx context.Context, id string) (TrainingSession, error)
	ListTrainingSessions(ctx context.Context, filter TrainingFilter) ([]TrainingSession, error)
	DeleteTrainingSession(ctx context.Context, id string) error
	// MergeAttendance writes value at attendance.<userID> leaving every other
	// key of the map untouched. Keys rejected by ValidAttendanceKey and values
	// that are not valid JSON fail with ErrConstraintViolation.
	MergeAttendance(ctx context.Context, sessionID, userID string, value json.RawMessage, updatedAt time.Time) error
}

// ValidAttendanceKey reports whether userID can be used as an attendance map
// key. Keys must be non-empty and free of quotes and backslashes so they can
// be addressed as a JSON path.
func ValidAttendanceKey(userID string) bool {
	return userID != "" && !strings.ContainsAny(userID, `"\`)
}

// AuthSessionRepository stores login sessions.
type AuthSessionRepository interface {
	CreateAuthSession(ctx context.Context, session AuthSession) error
	GetAuthSession(ctx context.Context, id string) (AuthSession, error)
	RevokeAuthSession(ctx context.Context, id string, revokedAt time.Time) (AuthSession, error)
	DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error
}
