package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/club-portal/internal/persistence"
)

const authSessionColumns = `id, user_id, expires_at, revoked_at, created_at, updated_at`

// AuthSessionRepository implements persistence.AuthSessionRepository using SQLite.
type AuthSessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAuthSessionRepository creates a SQLite login session repository.
func NewAuthSessionRepository(pool *ConnectionPool) *AuthSessionRepository {
	return &AuthSessionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateAuthSession stores a login session. The owning user must exist.
func (r *AuthSessionRepository) CreateAuthSession(ctx context.Context, session persistence.AuthSession) error {
	if session.ID == "" || session.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO auth_sessions (`+authSessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		formatTimestamp(session.ExpiresAt),
		nullableTimestamp(session.RevokedAt),
		formatTimestamp(session.CreatedAt),
		formatTimestamp(session.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// GetAuthSession retrieves a login session by ID.
func (r *AuthSessionRepository) GetAuthSession(ctx context.Context, id string) (persistence.AuthSession, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+authSessionColumns+` FROM auth_sessions WHERE id = ?`, id)
	return r.scanAuthSession(row)
}

// RevokeAuthSession marks a session revoked and returns the updated record.
func (r *AuthSessionRepository) RevokeAuthSession(ctx context.Context, id string, revokedAt time.Time) (persistence.AuthSession, error) {
	var revoked persistence.AuthSession
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := r.helper.ExecTx(ctx, tx, `
			UPDATE auth_sessions SET revoked_at = ?, updated_at = ? WHERE id = ?`,
			formatTimestamp(revokedAt),
			formatTimestamp(revokedAt),
			id,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if err := rowsAffectedOrNotFound(result); err != nil {
			return err
		}
		row := r.helper.QueryRowTx(ctx, tx, `SELECT `+authSessionColumns+` FROM auth_sessions WHERE id = ?`, id)
		revoked, err = r.scanAuthSession(row)
		return err
	})
	if err != nil {
		return persistence.AuthSession{}, err
	}
	return revoked, nil
}

// DeleteExpiredAuthSessions removes sessions that expired at or before reference.
func (r *AuthSessionRepository) DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error {
	_, err := r.helper.Exec(ctx, `DELETE FROM auth_sessions WHERE expires_at <= ?`, formatTimestamp(reference))
	return r.mapper.MapError(err)
}

func (r *AuthSessionRepository) scanAuthSession(row rowScanner) (persistence.AuthSession, error) {
	var (
		session                         persistence.AuthSession
		expiresAt, createdAt, updatedAt string
		revokedAt                       sql.NullString
	)
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&expiresAt,
		&revokedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.AuthSession{}, persistence.ErrNotFound
		}
		return persistence.AuthSession{}, r.mapper.MapError(err)
	}

	if session.ExpiresAt, err = parseTimestamp("expires_at", expiresAt); err != nil {
		return persistence.AuthSession{}, err
	}
	if revokedAt.Valid {
		t, err := parseTimestamp("revoked_at", revokedAt.String)
		if err != nil {
			return persistence.AuthSession{}, err
		}
		session.RevokedAt = &t
	}
	if session.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return persistence.AuthSession{}, err
	}
	if session.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return persistence.AuthSession{}, err
	}
	return session, nil
}
