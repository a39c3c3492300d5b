package application

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/example/club-portal/internal/attendance"
)

type userRepoStub struct {
	mu     sync.Mutex
	users  map[string]UserCredentials
	err    error
	delErr error
}

func newUserRepoStub(users ...UserCredentials) *userRepoStub {
	stub := &userRepoStub{users: make(map[string]UserCredentials)}
	for _, u := range users {
		stub.users[u.User.ID] = u
	}
	return stub
}

func (s *userRepoStub) CreateUser(ctx context.Context, creds UserCredentials) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return User{}, s.err
	}
	for _, existing := range s.users {
		if existing.User.Email == creds.User.Email {
			return User{}, ErrAlreadyExists
		}
	}
	s.users[creds.User.ID] = creds
	return creds.User, nil
}

func (s *userRepoStub) GetUser(ctx context.Context, id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return User{}, s.err
	}
	creds, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return creds.User, nil
}

func (s *userRepoStub) GetUserByEmail(ctx context.Context, email string) (User, error) {
	creds, err := s.GetUserCredentialsByEmail(ctx, email)
	return creds.User, err
}

func (s *userRepoStub) GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return UserCredentials{}, s.err
	}
	for _, creds := range s.users {
		if creds.User.Email == email {
			return creds, nil
		}
	}
	return UserCredentials{}, ErrNotFound
}

func (s *userRepoStub) ListUsers(ctx context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []User
	for _, creds := range s.users {
		out = append(out, creds.User)
	}
	return out, nil
}

func (s *userRepoStub) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type authSessionRepoStub struct {
	sessions     map[string]AuthSession
	createErr    error
	prunedBefore time.Time
}

func newAuthSessionRepoStub() *authSessionRepoStub {
	return &authSessionRepoStub{sessions: make(map[string]AuthSession)}
}

func (s *authSessionRepoStub) CreateAuthSession(ctx context.Context, session AuthSession) (AuthSession, error) {
	if s.createErr != nil {
		return AuthSession{}, s.createErr
	}
	s.sessions[session.ID] = session
	return session, nil
}

func (s *authSessionRepoStub) GetAuthSession(ctx context.Context, id string) (AuthSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return AuthSession{}, ErrNotFound
	}
	return session, nil
}

func (s *authSessionRepoStub) RevokeAuthSession(ctx context.Context, id string, revokedAt time.Time) (AuthSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return AuthSession{}, ErrNotFound
	}
	session.RevokedAt = &revokedAt
	session.UpdatedAt = revokedAt
	s.sessions[id] = session
	return session, nil
}

func (s *authSessionRepoStub) DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error {
	s.prunedBefore = reference
	for id, session := range s.sessions {
		if !session.ExpiresAt.After(reference) {
			delete(s.sessions, id)
		}
	}
	return nil
}

type playerRepoStub struct {
	mu        sync.Mutex
	players   map[string]Player
	listCalls int
	err       error
}

func newPlayerRepoStub(players ...Player) *playerRepoStub {
	stub := &playerRepoStub{players: make(map[string]Player)}
	for _, p := range players {
		stub.players[p.ID] = p
	}
	return stub
}

func (s *playerRepoStub) CreatePlayer(ctx context.Context, player Player) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Player{}, s.err
	}
	if _, ok := s.players[player.ID]; ok {
		return Player{}, ErrAlreadyExists
	}
	s.players[player.ID] = player
	return player, nil
}

func (s *playerRepoStub) UpdatePlayer(ctx context.Context, player Player) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Player{}, s.err
	}
	if _, ok := s.players[player.ID]; !ok {
		return Player{}, ErrNotFound
	}
	s.players[player.ID] = player
	return player, nil
}

func (s *playerRepoStub) GetPlayer(ctx context.Context, id string) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return Player{}, ErrNotFound
	}
	return player, nil
}

func (s *playerRepoStub) ListPlayers(ctx context.Context, team attendance.Team) ([]Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	out := []Player{}
	for _, p := range s.players {
		if team == "" || p.OnTeam(team) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *playerRepoStub) DeletePlayer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[id]; !ok {
		return ErrNotFound
	}
	delete(s.players, id)
	return nil
}

// trainingRepoStub keeps trainings in memory and merges attendance per key,
// serving as both TrainingRepository and AttendanceWriter.
type trainingRepoStub struct {
	mu        sync.Mutex
	trainings map[string]TrainingSession
	err       error
}

func newTrainingRepoStub(trainings ...TrainingSession) *trainingRepoStub {
	stub := &trainingRepoStub{trainings: make(map[string]TrainingSession)}
	for _, t := range trainings {
		stub.trainings[t.ID] = t
	}
	return stub
}

func (s *trainingRepoStub) CreateTraining(ctx context.Context, training TrainingSession) (TrainingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return TrainingSession{}, s.err
	}
	training.Attendance = training.Attendance.Clone()
	s.trainings[training.ID] = training
	return training, nil
}

func (s *trainingRepoStub) UpdateTraining(ctx context.Context, training TrainingSession) (TrainingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.trainings[training.ID]
	if !ok {
		return TrainingSession{}, ErrNotFound
	}
	training.Attendance = existing.Attendance
	s.trainings[training.ID] = training
	return training, nil
}

func (s *trainingRepoStub) GetTraining(ctx context.Context, id string) (TrainingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	training, ok := s.trainings[id]
	if !ok {
		return TrainingSession{}, ErrNotFound
	}
	training.Attendance = training.Attendance.Clone()
	return training, nil
}

func (s *trainingRepoStub) ListTrainings(ctx context.Context, team attendance.Team) ([]TrainingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []TrainingSession{}
	for _, training := range s.trainings {
		if team == "" || training.Team == team {
			training.Attendance = training.Attendance.Clone()
			out = append(out, training)
		}
	}
	return out, nil
}

func (s *trainingRepoStub) DeleteTraining(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trainings[id]; !ok {
		return ErrNotFound
	}
	delete(s.trainings, id)
	return nil
}

func (s *trainingRepoStub) MergeAttendance(ctx context.Context, trainingID, userID string, value attendance.Value, at time.Time) error {
	raw, err := attendance.EncodeValue(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	training, ok := s.trainings[trainingID]
	if !ok {
		return ErrNotFound
	}
	if training.Attendance == nil {
		training.Attendance = attendance.Map{}
	}
	training.Attendance[userID] = raw
	training.UpdatedAt = at
	s.trainings[trainingID] = training
	return nil
}

type mergeCall struct {
	TrainingID string
	UserID     string
	Value      attendance.Value
}

// recordingWriter counts merge calls and optionally fails them.
type recordingWriter struct {
	mu    sync.Mutex
	next  AttendanceWriter
	calls []mergeCall
	err   error
}

func (w *recordingWriter) MergeAttendance(ctx context.Context, trainingID, userID string, value attendance.Value, at time.Time) error {
	w.mu.Lock()
	w.calls = append(w.calls, mergeCall{TrainingID: trainingID, UserID: userID, Value: value})
	err := w.err
	w.mu.Unlock()
	if err != nil {
		return err
	}
	if w.next == nil {
		return nil
	}
	return w.next.MergeAttendance(ctx, trainingID, userID, value, at)
}

func (w *recordingWriter) Calls() []mergeCall {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]mergeCall(nil), w.calls...)
}

type rosterStub struct {
	players []attendance.Player
	err     error
}

func (r *rosterStub) TeamRoster(ctx context.Context, team attendance.Team) ([]attendance.Player, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := []attendance.Player{}
	for _, p := range r.players {
		if p.OnTeam(team) {
			out = append(out, p)
		}
	}
	return out, nil
}

type hubStub struct {
	mu        sync.Mutex
	published []TeamSnapshot
}

func (h *hubStub) Publish(topic string, snapshot TeamSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.published = append(h.published, snapshot)
}

func (h *hubStub) Subscribe(topic string) (<-chan TeamSnapshot, func()) {
	ch := make(chan TeamSnapshot)
	return ch, func() {}
}

func (h *hubStub) Published() []TeamSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]TeamSnapshot(nil), h.published...)
}

type rosterListenerStub struct {
	teams [][]attendance.Team
}

func (l *rosterListenerStub) RosterChanged(ctx context.Context, teams []attendance.Team) {
	l.teams = append(l.teams, teams)
}

var errStoreDown = errors.New("store down")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}
