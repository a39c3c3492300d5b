package application

import (
	"time"

	"github.com/example/club-portal/internal/attendance"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// User represents a club account exposed by the application services.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserCredentials pairs an account with its stored password hash.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// UserInput captures caller provided account attributes.
type UserInput struct {
	Email       string `field:"email" validate:"required,email"`
	DisplayName string `field:"display_name" validate:"required,max=120"`
	Password    string `field:"password" validate:"required,min=8"`
	IsAdmin     bool
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// Player is a roster entry with bookkeeping timestamps.
type Player struct {
	attendance.Player
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlayerInput captures caller provided roster fields. Teams accepts the
// legacy "jugadoras-" prefixed identifiers as well.
type PlayerInput struct {
	FirstName string   `field:"first_name" validate:"required,max=80"`
	LastName  string   `field:"last_name" validate:"required,max=80"`
	PhotoURL  *string  `field:"photo_url" validate:"omitempty,max=2048"`
	Teams     []string `field:"teams" validate:"required,min=1"`
}

// CreatePlayerParams wraps the data required to add a roster entry for an
// existing account.
type CreatePlayerParams struct {
	Principal Principal
	UserID    string
	Input     PlayerInput
}

// UpdatePlayerParams wraps the data required to edit a roster entry.
type UpdatePlayerParams struct {
	Principal Principal
	PlayerID  string
	Input     PlayerInput
}

// TrainingSession is a training with bookkeeping timestamps.
type TrainingSession struct {
	attendance.Session
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TrainingInput captures caller provided training fields. Date uses
// YYYY-MM-DD and the times HH:MM or HH:MM:SS; empty means unset.
type TrainingInput struct {
	Title       string `field:"title" validate:"required,max=120"`
	Description string `field:"description" validate:"max=2000"`
	Date        string `field:"date"`
	StartTime   string `field:"start_time"`
	EndTime     string `field:"end_time"`
	Venue       string `field:"venue" validate:"max=200"`
	Team        string `field:"team" validate:"required"`
}

// CreateTrainingParams wraps the data required to schedule a training.
type CreateTrainingParams struct {
	Principal Principal
	Input     TrainingInput
}

// UpdateTrainingParams wraps the data required to edit a training.
type UpdateTrainingParams struct {
	Principal  Principal
	TrainingID string
	Input      TrainingInput
}

// ChangeAttendanceParams carries one press of the attendance button.
type ChangeAttendanceParams struct {
	Principal  Principal
	TrainingID string
	Action     attendance.Action
	Reason     string
}

// TrainingBoard is everything a member sees for one training: their own
// status, whether the button is still live, which action it offers and the
// partitioned roster.
type TrainingBoard struct {
	Training   TrainingSession
	MyStatus   attendance.Status
	Expired    bool
	NextAction attendance.Action
	Groups     attendance.Groups
	CanEdit    bool
}

// TeamSnapshot is the authoritative state of one team, published in full
// whenever any of its trainings or its roster changes.
type TeamSnapshot struct {
	Sequence  uint64
	Team      attendance.Team
	Trainings []TrainingSession
	Roster    []attendance.Player
}

// TeamBoards is a TeamSnapshot rendered for one principal.
type TeamBoards struct {
	Sequence uint64
	Team     attendance.Team
	Boards   []TrainingBoard
}

// PlayerSummary is a player's attendance record across their teams' trainings.
type PlayerSummary struct {
	Player  Player
	Summary attendance.Summary
}

// AuthSession represents an issued login.
type AuthSession struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string `field:"email" validate:"required,email"`
	Password string `field:"password" validate:"required"`
}

// AuthenticateResult captures the outcome of a successful login.
type AuthenticateResult struct {
	User    User
	Session AuthSession
	Token   string
}
