// Package memory provides a map-backed implementation of the persistence
// repositories. It backs tests and the CLUB_STORE=memory development mode.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/club-portal/internal/persistence"
)

// Store keeps every record in process memory. All values are deep copied on
// the way in and out so callers never share state with the store.
type Store struct {
	mu           sync.RWMutex
	users        map[string]persistence.User
	players      map[string]persistence.Player
	trainings    map[string]persistence.TrainingSession
	authSessions map[string]persistence.AuthSession
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]persistence.User),
		players:      make(map[string]persistence.Player),
		trainings:    make(map[string]persistence.TrainingSession),
		authSessions: make(map[string]persistence.AuthSession),
	}
}

// Close is a no-op kept for parity with the SQLite store.
func (s *Store) Close() error {
	return nil
}

// Ping always succeeds; the store has no connection to lose.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// --- UserRepository implementation ---

// CreateUser stores a new user.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("memory: user %s: %w", user.ID, persistence.ErrDuplicate)
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}

	user.Email = normalizeEmail(user.Email)
	s.users[user.ID] = user
	return nil
}

// UpdateUser updates an existing user.
func (s *Store) UpdateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueEmailLocked(user.ID, user.Email); err != nil {
		return err
	}

	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = existing.CreatedAt
	s.users[user.ID] = user
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a user by case-insensitive email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	normalized := normalizeEmail(email)
	for _, user := range s.users {
		if user.Email == normalized {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// ListUsers returns all users ordered by CreatedAt ascending.
func (s *Store) ListUsers(ctx context.Context) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]persistence.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// DeleteUser removes a user and every login session it owns.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.users, id)
	for sessionID, session := range s.authSessions {
		if session.UserID == id {
			delete(s.authSessions, sessionID)
		}
	}
	return nil
}

func (s *Store) ensureUniqueEmailLocked(id, email string) error {
	normalized := normalizeEmail(email)
	for existingID, user := range s.users {
		if existingID != id && user.Email == normalized {
			return fmt.Errorf("memory: email %s: %w", normalized, persistence.ErrDuplicate)
		}
	}
	return nil
}

// --- PlayerRepository implementation ---

// CreatePlayer stores a new roster entry.
func (s *Store) CreatePlayer(ctx context.Context, player persistence.Player) error {
	if player.ID == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[player.ID]; ok {
		return fmt.Errorf("memory: player %s: %w", player.ID, persistence.ErrDuplicate)
	}
	s.players[player.ID] = clonePlayer(player)
	return nil
}

// UpdatePlayer replaces an existing roster entry.
func (s *Store) UpdatePlayer(ctx context.Context, player persistence.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.players[player.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	player.CreatedAt = existing.CreatedAt
	s.players[player.ID] = clonePlayer(player)
	return nil
}

// GetPlayer retrieves a roster entry by ID.
func (s *Store) GetPlayer(ctx context.Context, id string) (persistence.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	player, ok := s.players[id]
	if !ok {
		return persistence.Player{}, persistence.ErrNotFound
	}
	return clonePlayer(player), nil
}

// ListPlayers returns roster entries ordered by last name, first name and ID.
func (s *Store) ListPlayers(ctx context.Context, filter persistence.PlayerFilter) ([]persistence.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]persistence.Player, 0, len(s.players))
	for _, player := range s.players {
		if filter.Team != "" && !slices.Contains(player.Teams, filter.Team) {
			continue
		}
		players = append(players, clonePlayer(player))
	}
	sort.Slice(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})
	return players, nil
}

// DeletePlayer removes a roster entry. Attendance entries already written by
// the player are kept on their sessions.
func (s *Store) DeletePlayer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.players, id)
	return nil
}

// --- TrainingRepository implementation ---

// CreateTrainingSession stores a new session. A nil attendance map is stored
// as an empty one.
func (s *Store) CreateTrainingSession(ctx context.Context, session persistence.TrainingSession) error {
	if session.ID == "" || session.Team == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trainings[session.ID]; ok {
		return fmt.Errorf("memory: training %s: %w", session.ID, persistence.ErrDuplicate)
	}
	s.trainings[session.ID] = cloneTraining(session)
	return nil
}

// UpdateTrainingSession replaces the session fields while keeping the stored
// attendance map.
func (s *Store) UpdateTrainingSession(ctx context.Context, session persistence.TrainingSession) error {
	if session.Team == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.trainings[session.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	updated := cloneTraining(session)
	updated.Attendance = existing.Attendance
	updated.CreatedAt = existing.CreatedAt
	s.trainings[session.ID] = updated
	return nil
}

// GetTrainingSession retrieves a session by ID.
func (s *Store) GetTrainingSession(ctx context.Context, id string) (persistence.TrainingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.trainings[id]
	if !ok {
		return persistence.TrainingSession{}, persistence.ErrNotFound
	}
	return cloneTraining(session), nil
}

// ListTrainingSessions returns sessions ordered by date descending.
func (s *Store) ListTrainingSessions(ctx context.Context, filter persistence.TrainingFilter) ([]persistence.TrainingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]persistence.TrainingSession, 0, len(s.trainings))
	for _, session := range s.trainings {
		if filter.Team != "" && session.Team != filter.Team {
			continue
		}
		sessions = append(sessions, cloneTraining(session))
	}
	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if (a.Date == "") != (b.Date == "") {
			return b.Date == ""
		}
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		return a.ID < b.ID
	})
	return sessions, nil
}

// DeleteTrainingSession removes a session.
func (s *Store) DeleteTrainingSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trainings[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.trainings, id)
	return nil
}

// MergeAttendance writes a single attendance entry.
func (s *Store) MergeAttendance(ctx context.Context, sessionID, userID string, value json.RawMessage, updatedAt time.Time) error {
	if !persistence.ValidAttendanceKey(userID) || !json.Valid(value) {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.trainings[sessionID]
	if !ok {
		return persistence.ErrNotFound
	}
	if session.Attendance == nil {
		session.Attendance = make(map[string]json.RawMessage)
	}
	session.Attendance[userID] = append(json.RawMessage(nil), value...)
	session.UpdatedAt = updatedAt
	s.trainings[sessionID] = session
	return nil
}

// --- AuthSessionRepository implementation ---

// CreateAuthSession stores a login session for an existing user.
func (s *Store) CreateAuthSession(ctx context.Context, session persistence.AuthSession) error {
	if session.ID == "" || session.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[session.UserID]; !ok {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.authSessions[session.ID]; ok {
		return fmt.Errorf("memory: auth session %s: %w", session.ID, persistence.ErrDuplicate)
	}
	s.authSessions[session.ID] = cloneAuthSession(session)
	return nil
}

// GetAuthSession retrieves a login session by ID.
func (s *Store) GetAuthSession(ctx context.Context, id string) (persistence.AuthSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.authSessions[id]
	if !ok {
		return persistence.AuthSession{}, persistence.ErrNotFound
	}
	return cloneAuthSession(session), nil
}

// RevokeAuthSession marks a login session as revoked.
func (s *Store) RevokeAuthSession(ctx context.Context, id string, revokedAt time.Time) (persistence.AuthSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.authSessions[id]
	if !ok {
		return persistence.AuthSession{}, persistence.ErrNotFound
	}
	revoked := revokedAt
	session.RevokedAt = &revoked
	session.UpdatedAt = revokedAt
	s.authSessions[id] = session
	return cloneAuthSession(session), nil
}

// DeleteExpiredAuthSessions removes sessions that expired at or before reference.
func (s *Store) DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.authSessions {
		if !session.ExpiresAt.After(reference) {
			delete(s.authSessions, id)
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func clonePlayer(player persistence.Player) persistence.Player {
	out := player
	if player.PhotoURL != nil {
		photo := *player.PhotoURL
		out.PhotoURL = &photo
	}
	out.Teams = append([]string(nil), player.Teams...)
	return out
}

func cloneTraining(session persistence.TrainingSession) persistence.TrainingSession {
	out := session
	out.Attendance = make(map[string]json.RawMessage, len(session.Attendance))
	for key, raw := range session.Attendance {
		out.Attendance[key] = append(json.RawMessage(nil), raw...)
	}
	return out
}

func cloneAuthSession(session persistence.AuthSession) persistence.AuthSession {
	out := session
	if session.RevokedAt != nil {
		revoked := *session.RevokedAt
		out.RevokedAt = &revoked
	}
	return out
}
