package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/club-portal/internal/persistence"
)

const trainingColumns = `id, title, description, session_date, start_time, end_time, venue, team, attendance, created_at, updated_at`

// TrainingRepository implements persistence.TrainingRepository using SQLite.
// The attendance map lives in a JSON text column and is modified one key at a
// time with json_set so concurrent writers for different users never clobber
// each other.
type TrainingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewTrainingRepository creates a SQLite training repository.
func NewTrainingRepository(pool *ConnectionPool) *TrainingRepository {
	return &TrainingRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateTrainingSession inserts a session. A nil attendance map is stored as {}.
func (r *TrainingRepository) CreateTrainingSession(ctx context.Context, session persistence.TrainingSession) error {
	if session.ID == "" || session.Team == "" {
		return persistence.ErrConstraintViolation
	}
	attendance, err := encodeAttendance(session.Attendance)
	if err != nil {
		return err
	}

	_, err = r.helper.Exec(ctx, `
		INSERT INTO training_sessions (`+trainingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.Title,
		session.Description,
		nullableText(session.Date),
		nullableText(session.StartTime),
		nullableText(session.EndTime),
		session.Venue,
		session.Team,
		attendance,
		formatTimestamp(session.CreatedAt),
		formatTimestamp(session.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateTrainingSession replaces the descriptive fields of a session. The
// attendance column is never touched here.
func (r *TrainingRepository) UpdateTrainingSession(ctx context.Context, session persistence.TrainingSession) error {
	if session.Team == "" {
		return persistence.ErrConstraintViolation
	}

	result, err := r.helper.Exec(ctx, `
		UPDATE training_sessions
		SET title = ?, description = ?, session_date = ?, start_time = ?, end_time = ?,
		    venue = ?, team = ?, updated_at = ?
		WHERE id = ?`,
		session.Title,
		session.Description,
		nullableText(session.Date),
		nullableText(session.StartTime),
		nullableText(session.EndTime),
		session.Venue,
		session.Team,
		formatTimestamp(session.UpdatedAt),
		session.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return rowsAffectedOrNotFound(result)
}

// GetTrainingSession retrieves a session by ID.
func (r *TrainingRepository) GetTrainingSession(ctx context.Context, id string) (persistence.TrainingSession, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+trainingColumns+` FROM training_sessions WHERE id = ?`, id)
	return r.scanTraining(row)
}

// ListTrainingSessions returns sessions by date descending, undated ones last.
func (r *TrainingRepository) ListTrainingSessions(ctx context.Context, filter persistence.TrainingFilter) ([]persistence.TrainingSession, error) {
	query := `SELECT ` + trainingColumns + ` FROM training_sessions`
	var args []any
	if filter.Team != "" {
		query += ` WHERE team = ?`
		args = append(args, filter.Team)
	}
	query += ` ORDER BY (session_date IS NULL) ASC, session_date DESC, id ASC`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	sessions := []persistence.TrainingSession{}
	for rows.Next() {
		session, err := r.scanTraining(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return sessions, nil
}

// DeleteTrainingSession removes a session together with its attendance.
func (r *TrainingRepository) DeleteTrainingSession(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM training_sessions WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return rowsAffectedOrNotFound(result)
}

// MergeAttendance sets attendance.<userID> to value in a single statement.
// A stored attendance value that is not an object is replaced by a fresh one.
func (r *TrainingRepository) MergeAttendance(ctx context.Context, sessionID, userID string, value json.RawMessage, updatedAt time.Time) error {
	if !persistence.ValidAttendanceKey(userID) || !json.Valid(value) {
		return persistence.ErrConstraintViolation
	}

	result, err := r.helper.Exec(ctx, `
		UPDATE training_sessions
		SET attendance = json_set(
		        CASE WHEN json_type(attendance) = 'object' THEN attendance ELSE '{}' END,
		        ?, json(?)),
		    updated_at = ?
		WHERE id = ?`,
		`$."`+userID+`"`,
		string(value),
		formatTimestamp(updatedAt),
		sessionID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return rowsAffectedOrNotFound(result)
}

func (r *TrainingRepository) scanTraining(row rowScanner) (persistence.TrainingSession, error) {
	var (
		session                  persistence.TrainingSession
		date, startTime, endTime sql.NullString
		attendance               string
		createdAt, updatedAt     string
	)
	err := row.Scan(
		&session.ID,
		&session.Title,
		&session.Description,
		&date,
		&startTime,
		&endTime,
		&session.Venue,
		&session.Team,
		&attendance,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.TrainingSession{}, persistence.ErrNotFound
		}
		return persistence.TrainingSession{}, r.mapper.MapError(err)
	}

	session.Date = date.String
	session.StartTime = startTime.String
	session.EndTime = endTime.String
	session.Attendance = decodeAttendance(attendance)

	if session.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return persistence.TrainingSession{}, err
	}
	if session.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return persistence.TrainingSession{}, err
	}
	return session, nil
}

func encodeAttendance(attendance map[string]json.RawMessage) (string, error) {
	if attendance == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(attendance)
	if err != nil {
		return "", fmt.Errorf("%w: attendance: %v", persistence.ErrConstraintViolation, err)
	}
	return string(raw), nil
}

// decodeAttendance reads the attendance column. A document that is not an
// object yields an empty map so readers degrade to "no response".
func decodeAttendance(raw string) map[string]json.RawMessage {
	var attendance map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &attendance); err != nil || attendance == nil {
		return make(map[string]json.RawMessage)
	}
	return attendance
}
