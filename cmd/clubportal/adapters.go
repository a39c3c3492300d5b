package main

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/example/club-portal/internal/application"
	"github.com/example/club-portal/internal/attendance"
	"github.com/example/club-portal/internal/persistence"
)

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, credentials application.UserCredentials) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(credentials)); err != nil {
		return application.User{}, err
	}
	return a.GetUser(ctx, credentials.User.ID)
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUserByEmail(ctx context.Context, email string) (application.User, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

func (a *userRepositoryAdapter) DeleteUser(ctx context.Context, id string) error {
	return a.repo.DeleteUser(ctx, id)
}

type credentialStoreAdapter struct {
	*userRepositoryAdapter
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{userRepositoryAdapter: newUserRepositoryAdapter(repo)}
}

func (a *credentialStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

type authSessionRepositoryAdapter struct {
	repo persistence.AuthSessionRepository
}

func newAuthSessionRepositoryAdapter(repo persistence.AuthSessionRepository) *authSessionRepositoryAdapter {
	return &authSessionRepositoryAdapter{repo: repo}
}

func (a *authSessionRepositoryAdapter) CreateAuthSession(ctx context.Context, session application.AuthSession) (application.AuthSession, error) {
	if err := a.repo.CreateAuthSession(ctx, toPersistenceAuthSession(session)); err != nil {
		return application.AuthSession{}, err
	}
	return a.GetAuthSession(ctx, session.ID)
}

func (a *authSessionRepositoryAdapter) GetAuthSession(ctx context.Context, id string) (application.AuthSession, error) {
	stored, err := a.repo.GetAuthSession(ctx, id)
	if err != nil {
		return application.AuthSession{}, err
	}
	return toApplicationAuthSession(stored), nil
}

func (a *authSessionRepositoryAdapter) RevokeAuthSession(ctx context.Context, id string, revokedAt time.Time) (application.AuthSession, error) {
	stored, err := a.repo.RevokeAuthSession(ctx, id, revokedAt)
	if err != nil {
		return application.AuthSession{}, err
	}
	return toApplicationAuthSession(stored), nil
}

func (a *authSessionRepositoryAdapter) DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredAuthSessions(ctx, reference)
}

type playerRepositoryAdapter struct {
	repo persistence.PlayerRepository
}

func newPlayerRepositoryAdapter(repo persistence.PlayerRepository) *playerRepositoryAdapter {
	return &playerRepositoryAdapter{repo: repo}
}

func (a *playerRepositoryAdapter) CreatePlayer(ctx context.Context, player application.Player) (application.Player, error) {
	if err := a.repo.CreatePlayer(ctx, toPersistencePlayer(player)); err != nil {
		return application.Player{}, err
	}
	return a.GetPlayer(ctx, player.ID)
}

func (a *playerRepositoryAdapter) UpdatePlayer(ctx context.Context, player application.Player) (application.Player, error) {
	if err := a.repo.UpdatePlayer(ctx, toPersistencePlayer(player)); err != nil {
		return application.Player{}, err
	}
	return a.GetPlayer(ctx, player.ID)
}

func (a *playerRepositoryAdapter) GetPlayer(ctx context.Context, id string) (application.Player, error) {
	stored, err := a.repo.GetPlayer(ctx, id)
	if err != nil {
		return application.Player{}, err
	}
	return toApplicationPlayer(stored), nil
}

func (a *playerRepositoryAdapter) ListPlayers(ctx context.Context, team attendance.Team) ([]application.Player, error) {
	models, err := a.repo.ListPlayers(ctx, persistence.PlayerFilter{Team: string(team)})
	if err != nil {
		return nil, err
	}
	players := make([]application.Player, 0, len(models))
	for _, model := range models {
		players = append(players, toApplicationPlayer(model))
	}
	return players, nil
}

func (a *playerRepositoryAdapter) DeletePlayer(ctx context.Context, id string) error {
	return a.repo.DeletePlayer(ctx, id)
}

// trainingRepositoryAdapter serves both the training repository and the
// attendance writer of the training service.
type trainingRepositoryAdapter struct {
	repo persistence.TrainingRepository
}

func newTrainingRepositoryAdapter(repo persistence.TrainingRepository) *trainingRepositoryAdapter {
	return &trainingRepositoryAdapter{repo: repo}
}

func (a *trainingRepositoryAdapter) CreateTraining(ctx context.Context, training application.TrainingSession) (application.TrainingSession, error) {
	if err := a.repo.CreateTrainingSession(ctx, toPersistenceTraining(training)); err != nil {
		return application.TrainingSession{}, err
	}
	return a.GetTraining(ctx, training.ID)
}

func (a *trainingRepositoryAdapter) UpdateTraining(ctx context.Context, training application.TrainingSession) (application.TrainingSession, error) {
	if err := a.repo.UpdateTrainingSession(ctx, toPersistenceTraining(training)); err != nil {
		return application.TrainingSession{}, err
	}
	return a.GetTraining(ctx, training.ID)
}

func (a *trainingRepositoryAdapter) GetTraining(ctx context.Context, id string) (application.TrainingSession, error) {
	stored, err := a.repo.GetTrainingSession(ctx, id)
	if err != nil {
		return application.TrainingSession{}, err
	}
	return toApplicationTraining(stored), nil
}

func (a *trainingRepositoryAdapter) ListTrainings(ctx context.Context, team attendance.Team) ([]application.TrainingSession, error) {
	models, err := a.repo.ListTrainingSessions(ctx, persistence.TrainingFilter{Team: string(team)})
	if err != nil {
		return nil, err
	}
	trainings := make([]application.TrainingSession, 0, len(models))
	for _, model := range models {
		trainings = append(trainings, toApplicationTraining(model))
	}
	return trainings, nil
}

func (a *trainingRepositoryAdapter) DeleteTraining(ctx context.Context, id string) error {
	return a.repo.DeleteTrainingSession(ctx, id)
}

func (a *trainingRepositoryAdapter) MergeAttendance(ctx context.Context, trainingID, userID string, value attendance.Value, at time.Time) error {
	raw, err := attendance.EncodeValue(value)
	if err != nil {
		return err
	}
	return a.repo.MergeAttendance(ctx, trainingID, userID, raw, at)
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:          model.ID,
		Email:       model.Email,
		DisplayName: model.DisplayName,
		IsAdmin:     model.IsAdmin,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceUser(credentials application.UserCredentials) persistence.User {
	user := credentials.User
	return persistence.User{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		PasswordHash: credentials.PasswordHash,
		IsAdmin:      user.IsAdmin,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationAuthSession(model persistence.AuthSession) application.AuthSession {
	return application.AuthSession{
		ID:        model.ID,
		UserID:    model.UserID,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceAuthSession(session application.AuthSession) persistence.AuthSession {
	return persistence.AuthSession{
		ID:        session.ID,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

// toApplicationPlayer drops team identifiers that are no longer recognized
// and folds legacy prefixed ones into their current form.
func toApplicationPlayer(model persistence.Player) application.Player {
	teams := make([]attendance.Team, 0, len(model.Teams))
	for _, raw := range model.Teams {
		if team, ok := attendance.ParseTeam(raw); ok {
			teams = append(teams, team)
		}
	}
	photo := ""
	if model.PhotoURL != nil {
		photo = *model.PhotoURL
	}
	return application.Player{
		Player: attendance.Player{
			ID:        model.ID,
			FirstName: model.FirstName,
			LastName:  model.LastName,
			PhotoURL:  photo,
			Teams:     teams,
		},
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistencePlayer(player application.Player) persistence.Player {
	teams := make([]string, 0, len(player.Teams))
	for _, team := range player.Teams {
		teams = append(teams, string(team))
	}
	var photo *string
	if url := strings.TrimSpace(player.PhotoURL); url != "" {
		photo = &url
	}
	return persistence.Player{
		ID:        player.ID,
		FirstName: player.FirstName,
		LastName:  player.LastName,
		PhotoURL:  photo,
		Teams:     teams,
		CreatedAt: player.CreatedAt,
		UpdatedAt: player.UpdatedAt,
	}
}

// toApplicationTraining treats unparsable temporal fields as unset, which
// keeps the session closed for attendance.
func toApplicationTraining(model persistence.TrainingSession) application.TrainingSession {
	team, ok := attendance.ParseTeam(model.Team)
	if !ok {
		team = attendance.Team(model.Team)
	}
	return application.TrainingSession{
		Session: attendance.Session{
			ID:          model.ID,
			Title:       model.Title,
			Description: model.Description,
			Date:        parseDate(model.Date),
			Start:       parseTimeOfDay(model.StartTime),
			End:         parseTimeOfDay(model.EndTime),
			Venue:       model.Venue,
			Team:        team,
			Attendance:  attendance.Map(model.Attendance).Clone(),
		},
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceTraining(training application.TrainingSession) persistence.TrainingSession {
	model := persistence.TrainingSession{
		ID:          training.ID,
		Title:       training.Title,
		Description: training.Description,
		Venue:       training.Venue,
		Team:        string(training.Team),
		Attendance:  map[string]json.RawMessage(training.Attendance.Clone()),
		CreatedAt:   training.CreatedAt,
		UpdatedAt:   training.UpdatedAt,
	}
	if training.Date != nil {
		model.Date = training.Date.String()
	}
	if training.Start != nil {
		model.StartTime = training.Start.String()
	}
	if training.End != nil {
		model.EndTime = training.End.String()
	}
	return model
}

func parseDate(value string) *attendance.Date {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	date, err := attendance.ParseDate(value)
	if err != nil {
		return nil
	}
	return &date
}

func parseTimeOfDay(value string) *attendance.TimeOfDay {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	t, err := attendance.ParseTimeOfDay(value)
	if err != nil {
		return nil
	}
	return &t
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
