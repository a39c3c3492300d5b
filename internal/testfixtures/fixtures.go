package testfixtures

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/club-portal/internal/application"
	"github.com/example/club-portal/internal/attendance"
	"github.com/example/club-portal/internal/persistence"
)

var (
	userCounter        uint64
	playerCounter      uint64
	trainingCounter    uint64
	authSessionCounter uint64
)

var referenceTime = time.Date(2025, time.June, 1, 9, 0, 0, 0, ClubZone)

// ReferenceTime returns the canonical baseline timestamp used by fixtures:
// 09:00 club time on the day of the reference training.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic account that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@club.example", id),
		DisplayName:  fmt.Sprintf("Jugadora %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserDisplayName overrides the generated display name.
func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserAdmin sets the admin flag on the generated fixture.
func WithUserAdmin(isAdmin bool) UserOption {
	return func(f *UserFixture) {
		f.IsAdmin = isAdmin
	}
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Credentials returns the fixture as application.UserCredentials.
func (f UserFixture) Credentials() application.UserCredentials {
	return application.UserCredentials{
		User:         f.Application(),
		PasswordHash: f.PasswordHash,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, IsAdmin: f.IsAdmin}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		IsAdmin:      f.IsAdmin,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ---------------------------- Player fixtures ----------------------------

// PlayerFixture represents a deterministic roster entry.
type PlayerFixture struct {
	ID        string
	FirstName string
	LastName  string
	PhotoURL  *string
	Teams     []attendance.Team
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlayerOption configures the generated player fixture.
type PlayerOption func(*PlayerFixture)

// NewPlayerFixture returns a deterministic player on the ascenso team.
func NewPlayerFixture(opts ...PlayerOption) PlayerFixture {
	idx := atomic.AddUint64(&playerCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := PlayerFixture{
		ID:        fmt.Sprintf("player-%03d", idx),
		FirstName: fmt.Sprintf("Nombre %03d", idx),
		LastName:  fmt.Sprintf("Apellido %03d", idx),
		Teams:     []attendance.Team{attendance.TeamAscenso},
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithPlayerID overrides the generated player ID.
func WithPlayerID(id string) PlayerOption {
	return func(f *PlayerFixture) {
		f.ID = id
	}
}

// WithPlayerName overrides the generated names.
func WithPlayerName(first, last string) PlayerOption {
	return func(f *PlayerFixture) {
		f.FirstName = first
		f.LastName = last
	}
}

// WithPlayerPhoto sets the photo URL.
func WithPlayerPhoto(url string) PlayerOption {
	return func(f *PlayerFixture) {
		value := url
		f.PhotoURL = &value
	}
}

// WithPlayerTeams replaces the team list.
func WithPlayerTeams(teams ...attendance.Team) PlayerOption {
	return func(f *PlayerFixture) {
		f.Teams = append([]attendance.Team(nil), teams...)
	}
}

// Core returns the fixture as the attendance.Player used for partitioning.
func (f PlayerFixture) Core() attendance.Player {
	player := attendance.Player{
		ID:        f.ID,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Teams:     append([]attendance.Team(nil), f.Teams...),
	}
	if f.PhotoURL != nil {
		player.PhotoURL = *f.PhotoURL
	}
	return player
}

// Application returns the fixture as an application.Player value.
func (f PlayerFixture) Application() application.Player {
	return application.Player{Player: f.Core(), CreatedAt: f.CreatedAt, UpdatedAt: f.UpdatedAt}
}

// Persistence returns the fixture as a persistence.Player value.
func (f PlayerFixture) Persistence() persistence.Player {
	teams := make([]string, len(f.Teams))
	for i, team := range f.Teams {
		teams[i] = string(team)
	}
	var photo *string
	if f.PhotoURL != nil {
		value := *f.PhotoURL
		photo = &value
	}
	return persistence.Player{
		ID:        f.ID,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		PhotoURL:  photo,
		Teams:     teams,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// --------------------------- Training fixtures ---------------------------

// TrainingFixture represents a deterministic training session. Temporal
// fields use their stored string form; an empty string means unset.
type TrainingFixture struct {
	ID          string
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	Venue       string
	Team        attendance.Team
	Attendance  map[string]json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TrainingOption configures the generated training fixture.
type TrainingOption func(*TrainingFixture)

// NewTrainingFixture returns an ascenso training on the reference day from
// 16:00 to 18:00 with an empty attendance map.
func NewTrainingFixture(opts ...TrainingOption) TrainingFixture {
	idx := atomic.AddUint64(&trainingCounter, 1)
	created := referenceTime.Add(-time.Duration(idx) * time.Hour)
	fixture := TrainingFixture{
		ID:         fmt.Sprintf("training-%03d", idx),
		Title:      fmt.Sprintf("Entrenamiento %03d", idx),
		Date:       "2025-06-01",
		StartTime:  "16:00:00",
		EndTime:    "18:00:00",
		Venue:      "Gimnasio municipal",
		Team:       attendance.TeamAscenso,
		Attendance: map[string]json.RawMessage{},
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTrainingID overrides the generated training ID.
func WithTrainingID(id string) TrainingOption {
	return func(f *TrainingFixture) {
		f.ID = id
	}
}

// WithTrainingTitle overrides the generated title.
func WithTrainingTitle(title string) TrainingOption {
	return func(f *TrainingFixture) {
		f.Title = title
	}
}

// WithTrainingDate sets the calendar date, "" for none.
func WithTrainingDate(date string) TrainingOption {
	return func(f *TrainingFixture) {
		f.Date = date
	}
}

// WithTrainingTimes sets start and end times, "" for none.
func WithTrainingTimes(start, end string) TrainingOption {
	return func(f *TrainingFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithTrainingTeam sets the team.
func WithTrainingTeam(team attendance.Team) TrainingOption {
	return func(f *TrainingFixture) {
		f.Team = team
	}
}

// WithAttendance stores raw under userID.
func WithAttendance(userID, raw string) TrainingOption {
	return func(f *TrainingFixture) {
		if f.Attendance == nil {
			f.Attendance = map[string]json.RawMessage{}
		}
		f.Attendance[userID] = json.RawMessage(raw)
	}
}

// Persistence returns the fixture as a persistence.TrainingSession value.
func (f TrainingFixture) Persistence() persistence.TrainingSession {
	return persistence.TrainingSession{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Date:        f.Date,
		StartTime:   f.StartTime,
		EndTime:     f.EndTime,
		Venue:       f.Venue,
		Team:        string(f.Team),
		Attendance:  map[string]json.RawMessage(attendance.Map(f.Attendance).Clone()),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Application returns the fixture as an application.TrainingSession value.
// Unparsable temporal fields are left unset.
func (f TrainingFixture) Application() application.TrainingSession {
	session := attendance.Session{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Venue:       f.Venue,
		Team:        f.Team,
		Attendance:  attendance.Map(f.Attendance).Clone(),
	}
	if d, err := attendance.ParseDate(f.Date); err == nil {
		session.Date = &d
	}
	if t, err := attendance.ParseTimeOfDay(f.StartTime); err == nil {
		session.Start = &t
	}
	if t, err := attendance.ParseTimeOfDay(f.EndTime); err == nil {
		session.End = &t
	}
	return application.TrainingSession{Session: session, CreatedAt: f.CreatedAt, UpdatedAt: f.UpdatedAt}
}

// ------------------------- Auth session fixtures -------------------------

// AuthSessionFixture represents a deterministic login record.
type AuthSessionFixture struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthSessionOption configures the generated auth session fixture.
type AuthSessionOption func(*AuthSessionFixture)

// NewAuthSessionFixture returns a login valid for one day from ReferenceTime.
func NewAuthSessionFixture(opts ...AuthSessionOption) AuthSessionFixture {
	idx := atomic.AddUint64(&authSessionCounter, 1)
	fixture := AuthSessionFixture{
		ID:        fmt.Sprintf("auth-session-%03d", idx),
		UserID:    fmt.Sprintf("user-%03d", idx),
		ExpiresAt: referenceTime.Add(24 * time.Hour),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAuthSessionID overrides the session ID.
func WithAuthSessionID(id string) AuthSessionOption {
	return func(f *AuthSessionFixture) {
		f.ID = id
	}
}

// WithAuthSessionUserID sets the owning user.
func WithAuthSessionUserID(id string) AuthSessionOption {
	return func(f *AuthSessionFixture) {
		f.UserID = id
	}
}

// WithAuthSessionExpiresAt sets the expiration timestamp.
func WithAuthSessionExpiresAt(t time.Time) AuthSessionOption {
	return func(f *AuthSessionFixture) {
		f.ExpiresAt = t
	}
}

// WithAuthSessionRevokedAt marks the session as revoked.
func WithAuthSessionRevokedAt(t time.Time) AuthSessionOption {
	return func(f *AuthSessionFixture) {
		value := t
		f.RevokedAt = &value
	}
}

// Application returns the fixture as an application.AuthSession value.
func (f AuthSessionFixture) Application() application.AuthSession {
	return application.AuthSession{
		ID:        f.ID,
		UserID:    f.UserID,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: copyTime(f.RevokedAt),
	}
}

// Persistence returns the fixture as a persistence.AuthSession value.
func (f AuthSessionFixture) Persistence() persistence.AuthSession {
	return persistence.AuthSession{
		ID:        f.ID,
		UserID:    f.UserID,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: copyTime(f.RevokedAt),
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	value := *t
	return &value
}
