package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/example/club-portal/internal/attendance"
)

const maxReasonLength = 500

// TrainingRepository captures the persistence operations needed by the training service.
type TrainingRepository interface {
	CreateTraining(ctx context.Context, training TrainingSession) (TrainingSession, error)
	UpdateTraining(ctx context.Context, training TrainingSession) (TrainingSession, error)
	GetTraining(ctx context.Context, id string) (TrainingSession, error)
	// ListTrainings returns the trainings of team, or all of them when team is empty.
	ListTrainings(ctx context.Context, team attendance.Team) ([]TrainingSession, error)
	DeleteTraining(ctx context.Context, id string) error
}

// AttendanceWriter stores one user's attendance value without touching the
// entries of other users.
type AttendanceWriter interface {
	MergeAttendance(ctx context.Context, trainingID, userID string, value attendance.Value, at time.Time) error
}

// RosterReader returns the players of a team in display order.
type RosterReader interface {
	TeamRoster(ctx context.Context, team attendance.Team) ([]attendance.Player, error)
}

// PlayerLookup resolves roster entries by id.
type PlayerLookup interface {
	GetPlayer(ctx context.Context, id string) (Player, error)
}

// SnapshotHub fans team snapshots out to live subscribers.
type SnapshotHub interface {
	Publish(topic string, snapshot TeamSnapshot)
	Subscribe(topic string) (<-chan TeamSnapshot, func())
}

// TrainingService schedules trainings and records attendance.
type TrainingService struct {
	trainings   TrainingRepository
	writer      AttendanceWriter
	roster      RosterReader
	players     PlayerLookup
	hub         SnapshotHub
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	// publishMu orders snapshot reads with their sequence numbers.
	publishMu sync.Mutex
	sequence  atomic.Uint64
}

// NewTrainingService constructs a training service with the provided dependencies.
func NewTrainingService(trainings TrainingRepository, writer AttendanceWriter, roster RosterReader, players PlayerLookup, hub SnapshotHub, idGenerator func() string, now func() time.Time) *TrainingService {
	return NewTrainingServiceWithLogger(trainings, writer, roster, players, hub, idGenerator, now, nil)
}

// NewTrainingServiceWithLogger constructs a training service with a specified logger.
func NewTrainingServiceWithLogger(trainings TrainingRepository, writer AttendanceWriter, roster RosterReader, players PlayerLookup, hub SnapshotHub, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TrainingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TrainingService{
		trainings:   trainings,
		writer:      writer,
		roster:      roster,
		players:     players,
		hub:         hub,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *TrainingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TrainingService", operation, attrs...)
}

// ListTrainings returns the boards of every training of team, newest date first.
func (s *TrainingService) ListTrainings(ctx context.Context, principal Principal, team string) (boards []TrainingBoard, err error) {
	if s == nil {
		err = fmt.Errorf("TrainingService is nil")
		return
	}
	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	parsed, vErr := parseTeamParam(team)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	logger := s.loggerWith(ctx, "ListTrainings",
		"principal_id", principal.UserID,
		"team", string(parsed),
	)

	snapshot, err := s.readSnapshot(ctx, parsed)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list trainings", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return renderBoards(principal, snapshot, s.now()).Boards, nil
}

// GetTraining returns the board of one training.
func (s *TrainingService) GetTraining(ctx context.Context, principal Principal, trainingID string) (TrainingBoard, error) {
	if s == nil {
		return TrainingBoard{}, fmt.Errorf("TrainingService is nil")
	}
	if principal.UserID == "" {
		return TrainingBoard{}, ErrUnauthorized
	}
	if s.trainings == nil {
		return TrainingBoard{}, ErrNotFound
	}

	training, err := s.trainings.GetTraining(ctx, strings.TrimSpace(trainingID))
	if err != nil {
		return TrainingBoard{}, mapTrainingRepoError(err)
	}
	roster, err := s.teamRoster(ctx, training.Team)
	if err != nil {
		return TrainingBoard{}, err
	}
	return buildBoard(principal, training, roster, s.now()), nil
}

// CreateTraining schedules a training with an empty attendance map. Administrators only.
func (s *TrainingService) CreateTraining(ctx context.Context, params CreateTrainingParams) (board TrainingBoard, err error) {
	if s == nil {
		err = fmt.Errorf("TrainingService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateTraining", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create training", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("training_id", board.Training.ID).InfoContext(ctx, "training created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.trainings == nil {
		err = fmt.Errorf("training repository not configured")
		return
	}

	session, vErr := parseTrainingInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	session.ID = s.idGenerator()
	session.Attendance = attendance.Map{}
	training := TrainingSession{Session: session, CreatedAt: now, UpdatedAt: now}

	training, err = s.trainings.CreateTraining(ctx, training)
	if err != nil {
		err = mapTrainingRepoError(err)
		return
	}

	board, err = s.boardAndPublish(ctx, params.Principal, training, now)
	return
}

// UpdateTraining edits the descriptive fields of a training. The attendance
// map is left as stored. Administrators only.
func (s *TrainingService) UpdateTraining(ctx context.Context, params UpdateTrainingParams) (board TrainingBoard, err error) {
	if s == nil {
		err = fmt.Errorf("TrainingService is nil")
		return
	}

	trainingID := strings.TrimSpace(params.TrainingID)
	logger := s.loggerWith(ctx, "UpdateTraining",
		"principal_id", params.Principal.UserID,
		"training_id", trainingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update training", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "training updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.trainings == nil {
		err = fmt.Errorf("training repository not configured")
		return
	}

	session, vErr := parseTrainingInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var existing TrainingSession
	existing, err = s.trainings.GetTraining(ctx, trainingID)
	if err != nil {
		err = mapTrainingRepoError(err)
		return
	}

	now := s.now()
	session.ID = existing.ID
	session.Attendance = existing.Attendance
	training := TrainingSession{Session: session, CreatedAt: existing.CreatedAt, UpdatedAt: now}

	training, err = s.trainings.UpdateTraining(ctx, training)
	if err != nil {
		err = mapTrainingRepoError(err)
		return
	}

	board, err = s.boardAndPublish(ctx, params.Principal, training, now)
	if err == nil && existing.Team != training.Team {
		s.publishTeam(ctx, existing.Team)
	}
	return
}

// DeleteTraining removes a training. Administrators only.
func (s *TrainingService) DeleteTraining(ctx context.Context, principal Principal, trainingID string) error {
	if s == nil {
		return fmt.Errorf("TrainingService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.trainings == nil {
		return fmt.Errorf("training repository not configured")
	}

	trainingID = strings.TrimSpace(trainingID)
	logger := s.loggerWith(ctx, "DeleteTraining",
		"principal_id", principal.UserID,
		"training_id", trainingID,
	)

	existing, err := s.trainings.GetTraining(ctx, trainingID)
	if err != nil {
		err = mapTrainingRepoError(err)
		logger.ErrorContext(ctx, "failed to delete training", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if err := s.trainings.DeleteTraining(ctx, trainingID); err != nil {
		err = mapTrainingRepoError(err)
		logger.ErrorContext(ctx, "failed to delete training", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "training deleted")
	s.publishTeam(ctx, existing.Team)
	return nil
}

// ChangeAttendance applies one press of the attendance button for the
// principal. Expired trainings are refused with ErrAttendanceClosed before
// anything is written, and only the principal's own entry is merged. The
// returned board is derived from the stored document read after the write.
func (s *TrainingService) ChangeAttendance(ctx context.Context, params ChangeAttendanceParams) (board TrainingBoard, err error) {
	if s == nil {
		err = fmt.Errorf("TrainingService is nil")
		return
	}

	trainingID := strings.TrimSpace(params.TrainingID)
	logger := s.loggerWith(ctx, "ChangeAttendance",
		"principal_id", params.Principal.UserID,
		"training_id", trainingID,
		"action", string(params.Action),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change attendance", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", board.MyStatus.String()).InfoContext(ctx, "attendance changed")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}
	if s.trainings == nil || s.writer == nil {
		err = fmt.Errorf("training repository not configured")
		return
	}

	vErr := &ValidationError{}
	action, ok := attendance.ParseAction(string(params.Action))
	if !ok {
		vErr.add("action", "action is invalid")
	}
	if utf8.RuneCountInString(params.Reason) > maxReasonLength {
		vErr.add("reason", "reason is too long")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var training TrainingSession
	training, err = s.trainings.GetTraining(ctx, trainingID)
	if err != nil {
		err = mapTrainingRepoError(err)
		return
	}

	now := s.now()
	if attendance.IsExpired(training.Session, now) {
		err = ErrAttendanceClosed
		return
	}

	var roster []attendance.Player
	roster, err = s.teamRoster(ctx, training.Team)
	if err != nil {
		return
	}
	if !onRoster(roster, params.Principal.UserID) {
		err = ErrUnauthorized
		return
	}

	current := attendance.Resolve(training.Session, params.Principal.UserID)
	var value attendance.Value
	value, err = attendance.Apply(current, action, params.Reason)
	if err != nil {
		if errors.Is(err, attendance.ErrInvalidTransition) {
			err = fmt.Errorf("%w: %s while %s", ErrInvalidTransition, action, current)
		}
		return
	}

	if err = s.writer.MergeAttendance(ctx, training.ID, params.Principal.UserID, value, now); err != nil {
		err = fmt.Errorf("record attendance: %w", mapTrainingRepoError(err))
		return
	}

	training, err = s.trainings.GetTraining(ctx, training.ID)
	if err != nil {
		err = mapTrainingRepoError(err)
		return
	}

	board = buildBoard(params.Principal, training, roster, now)
	s.publishTeam(ctx, training.Team)
	return
}

// SummarizePlayer counts a player's attendance across the trainings of their teams.
func (s *TrainingService) SummarizePlayer(ctx context.Context, principal Principal, playerID string) (summary PlayerSummary, err error) {
	if s == nil {
		err = fmt.Errorf("TrainingService is nil")
		return
	}
	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}
	if s.players == nil || s.trainings == nil {
		err = ErrNotFound
		return
	}

	var player Player
	player, err = s.players.GetPlayer(ctx, strings.TrimSpace(playerID))
	if err != nil {
		err = mapPlayerRepoError(err)
		return
	}

	var sessions []attendance.Session
	for _, team := range player.Teams {
		var trainings []TrainingSession
		trainings, err = s.trainings.ListTrainings(ctx, team)
		if err != nil {
			err = mapTrainingRepoError(err)
			s.loggerWith(ctx, "SummarizePlayer", "player_id", player.ID).
				ErrorContext(ctx, "failed to summarize player", "error", err, "error_kind", ErrorKind(err))
			return
		}
		for _, training := range trainings {
			sessions = append(sessions, training.Session)
		}
	}

	summary = PlayerSummary{Player: player, Summary: attendance.Summarize(player.Player, sessions)}
	return
}

// WatchTeam streams the boards of team to the principal. The first value is
// the current state; each later value replaces the previous one entirely.
// The channel is closed when ctx ends.
func (s *TrainingService) WatchTeam(ctx context.Context, principal Principal, team string) (<-chan TeamBoards, error) {
	if s == nil {
		return nil, fmt.Errorf("TrainingService is nil")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}
	parsed, vErr := parseTeamParam(team)
	if vErr.HasErrors() {
		return nil, vErr
	}
	if s.hub == nil {
		return nil, fmt.Errorf("snapshot hub not configured")
	}

	updates, unsubscribe := s.hub.Subscribe(teamTopic(parsed))

	initial, err := s.nextSnapshot(ctx, parsed)
	if err != nil {
		unsubscribe()
		return nil, err
	}

	logger := s.loggerWith(ctx, "WatchTeam", "principal_id", principal.UserID, "team", string(parsed))
	logger.DebugContext(ctx, "watch started", "sequence", initial.Sequence)

	out := make(chan TeamBoards, 1)
	go func() {
		defer close(out)
		defer unsubscribe()

		last := initial.Sequence
		if !sendBoards(ctx, out, renderBoards(principal, initial, s.now())) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				logger.DebugContext(ctx, "watch ended")
				return
			case snapshot, ok := <-updates:
				if !ok {
					return
				}
				if snapshot.Sequence <= last {
					continue
				}
				last = snapshot.Sequence
				if !sendBoards(ctx, out, renderBoards(principal, snapshot, s.now())) {
					return
				}
			}
		}
	}()
	return out, nil
}

// RosterChanged republishes the snapshots of teams after a roster write.
func (s *TrainingService) RosterChanged(ctx context.Context, teams []attendance.Team) {
	if s == nil {
		return
	}
	for _, team := range teams {
		s.publishTeam(ctx, team)
	}
}

func (s *TrainingService) boardAndPublish(ctx context.Context, principal Principal, training TrainingSession, now time.Time) (TrainingBoard, error) {
	roster, err := s.teamRoster(ctx, training.Team)
	if err != nil {
		return TrainingBoard{}, err
	}
	s.publishTeam(ctx, training.Team)
	return buildBoard(principal, training, roster, now), nil
}

// publishTeam sends a fresh snapshot of team to its subscribers. Failures
// are logged only; the triggering write already succeeded.
func (s *TrainingService) publishTeam(ctx context.Context, team attendance.Team) {
	if s.hub == nil || !team.Valid() {
		return
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	snapshot, err := s.readSnapshotLocked(ctx, team)
	if err != nil {
		s.loggerWith(ctx, "publishTeam", "team", string(team)).
			WarnContext(ctx, "failed to publish team snapshot", "error", err, "error_kind", ErrorKind(err))
		return
	}
	s.hub.Publish(teamTopic(team), snapshot)
}

// nextSnapshot reads the current state of team under the publish lock so its
// sequence number orders it against published snapshots.
func (s *TrainingService) nextSnapshot(ctx context.Context, team attendance.Team) (TeamSnapshot, error) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	return s.readSnapshotLocked(ctx, team)
}

func (s *TrainingService) readSnapshotLocked(ctx context.Context, team attendance.Team) (TeamSnapshot, error) {
	snapshot, err := s.readSnapshot(ctx, team)
	if err != nil {
		return TeamSnapshot{}, err
	}
	snapshot.Sequence = s.sequence.Add(1)
	return snapshot, nil
}

func (s *TrainingService) readSnapshot(ctx context.Context, team attendance.Team) (TeamSnapshot, error) {
	snapshot := TeamSnapshot{Team: team, Trainings: []TrainingSession{}, Roster: []attendance.Player{}}
	if s.trainings == nil {
		return snapshot, nil
	}

	trainings, err := s.trainings.ListTrainings(ctx, team)
	if err != nil {
		return TeamSnapshot{}, mapTrainingRepoError(err)
	}
	roster, err := s.teamRoster(ctx, team)
	if err != nil {
		return TeamSnapshot{}, err
	}

	sortTrainings(trainings)
	snapshot.Trainings = trainings
	snapshot.Roster = roster
	return snapshot, nil
}

func (s *TrainingService) teamRoster(ctx context.Context, team attendance.Team) ([]attendance.Player, error) {
	if s.roster == nil {
		return []attendance.Player{}, nil
	}
	roster, err := s.roster.TeamRoster(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return roster, nil
}

func sendBoards(ctx context.Context, out chan<- TeamBoards, boards TeamBoards) bool {
	select {
	case out <- boards:
		return true
	case <-ctx.Done():
		return false
	}
}

func renderBoards(principal Principal, snapshot TeamSnapshot, now time.Time) TeamBoards {
	boards := make([]TrainingBoard, len(snapshot.Trainings))
	for i, training := range snapshot.Trainings {
		boards[i] = buildBoard(principal, training, snapshot.Roster, now)
	}
	return TeamBoards{Sequence: snapshot.Sequence, Team: snapshot.Team, Boards: boards}
}

func buildBoard(principal Principal, training TrainingSession, roster []attendance.Player, now time.Time) TrainingBoard {
	status := attendance.Resolve(training.Session, principal.UserID)
	return TrainingBoard{
		Training:   training,
		MyStatus:   status,
		Expired:    attendance.IsExpired(training.Session, now),
		NextAction: attendance.NextAction(status),
		Groups:     attendance.Partition(roster, training.Session),
		CanEdit:    principal.IsAdmin,
	}
}

func onRoster(roster []attendance.Player, userID string) bool {
	for _, p := range roster {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// sortTrainings orders trainings by date, newest first, with undated ones
// last and the id as tie-breaker.
func sortTrainings(trainings []TrainingSession) {
	sort.SliceStable(trainings, func(i, j int) bool {
		a, b := trainings[i].Date, trainings[j].Date
		switch {
		case a == nil && b == nil:
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return b.Before(*a)
		}
		return trainings[i].ID < trainings[j].ID
	})
}

func teamTopic(team attendance.Team) string {
	return "team:" + string(team)
}

func parseTeamParam(value string) (attendance.Team, *ValidationError) {
	vErr := &ValidationError{}
	if strings.TrimSpace(value) == "" {
		vErr.add("team", "team is required")
		return "", vErr
	}
	team, ok := attendance.ParseTeam(value)
	if !ok {
		vErr.add("team", "team is invalid")
	}
	return team, vErr
}

// parseTrainingInput validates input and converts it to a session without
// id or attendance.
func parseTrainingInput(input TrainingInput) (attendance.Session, *ValidationError) {
	normalized := TrainingInput{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Date:        strings.TrimSpace(input.Date),
		StartTime:   strings.TrimSpace(input.StartTime),
		EndTime:     strings.TrimSpace(input.EndTime),
		Venue:       strings.TrimSpace(input.Venue),
		Team:        strings.TrimSpace(input.Team),
	}

	vErr := validateStruct(normalized)
	session := attendance.Session{
		Title:       normalized.Title,
		Description: normalized.Description,
		Venue:       normalized.Venue,
	}

	if normalized.Team != "" {
		team, ok := attendance.ParseTeam(normalized.Team)
		if !ok {
			vErr.add("team", "team is invalid")
		}
		session.Team = team
	}
	if normalized.Date != "" {
		date, err := attendance.ParseDate(normalized.Date)
		if err != nil {
			vErr.add("date", "date is invalid")
		} else {
			session.Date = &date
		}
	}
	if normalized.StartTime != "" {
		start, err := attendance.ParseTimeOfDay(normalized.StartTime)
		if err != nil {
			vErr.add("start_time", "start_time is invalid")
		} else {
			session.Start = &start
		}
	}
	if normalized.EndTime != "" {
		end, err := attendance.ParseTimeOfDay(normalized.EndTime)
		if err != nil {
			vErr.add("end_time", "end_time is invalid")
		} else {
			session.End = &end
		}
	}
	if session.Start != nil && session.End != nil && !session.Start.Before(*session.End) {
		vErr.add("end_time", "end_time is invalid")
	}
	return session, vErr
}
