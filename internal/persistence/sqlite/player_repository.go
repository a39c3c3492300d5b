package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/club-portal/internal/persistence"
)

const playerColumns = `id, first_name, last_name, photo_url, teams, created_at, updated_at`

// PlayerRepository implements persistence.PlayerRepository using SQLite.
// Team memberships are stored as a JSON array.
type PlayerRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewPlayerRepository creates a SQLite roster repository.
func NewPlayerRepository(pool *ConnectionPool) *PlayerRepository {
	return &PlayerRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreatePlayer inserts a roster entry.
func (r *PlayerRepository) CreatePlayer(ctx context.Context, player persistence.Player) error {
	if player.ID == "" {
		return persistence.ErrConstraintViolation
	}
	teams, err := encodeTeams(player.Teams)
	if err != nil {
		return err
	}

	_, err = r.helper.Exec(ctx, `
		INSERT INTO players (`+playerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		player.ID,
		player.FirstName,
		player.LastName,
		nullableTextPtr(player.PhotoURL),
		teams,
		formatTimestamp(player.CreatedAt),
		formatTimestamp(player.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdatePlayer replaces a roster entry, keeping its creation time.
func (r *PlayerRepository) UpdatePlayer(ctx context.Context, player persistence.Player) error {
	teams, err := encodeTeams(player.Teams)
	if err != nil {
		return err
	}

	result, err := r.helper.Exec(ctx, `
		UPDATE players
		SET first_name = ?, last_name = ?, photo_url = ?, teams = ?, updated_at = ?
		WHERE id = ?`,
		player.FirstName,
		player.LastName,
		nullableTextPtr(player.PhotoURL),
		teams,
		formatTimestamp(player.UpdatedAt),
		player.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return rowsAffectedOrNotFound(result)
}

// GetPlayer retrieves a roster entry by ID.
func (r *PlayerRepository) GetPlayer(ctx context.Context, id string) (persistence.Player, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	return r.scanPlayer(row)
}

// ListPlayers returns roster entries ordered by last name, first name and ID,
// optionally restricted to members of filter.Team.
func (r *PlayerRepository) ListPlayers(ctx context.Context, filter persistence.PlayerFilter) ([]persistence.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players`
	var args []any
	if filter.Team != "" {
		query += ` WHERE EXISTS (SELECT 1 FROM json_each(players.teams) WHERE json_each.value = ?)`
		args = append(args, filter.Team)
	}
	query += ` ORDER BY last_name ASC, first_name ASC, id ASC`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	players := []persistence.Player{}
	for rows.Next() {
		player, err := r.scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return players, nil
}

// DeletePlayer removes a roster entry. Attendance entries on sessions are kept.
func (r *PlayerRepository) DeletePlayer(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return rowsAffectedOrNotFound(result)
}

func (r *PlayerRepository) scanPlayer(row rowScanner) (persistence.Player, error) {
	var (
		player               persistence.Player
		photo                sql.NullString
		teams                string
		createdAt, updatedAt string
	)
	err := row.Scan(
		&player.ID,
		&player.FirstName,
		&player.LastName,
		&photo,
		&teams,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Player{}, persistence.ErrNotFound
		}
		return persistence.Player{}, r.mapper.MapError(err)
	}

	if photo.Valid {
		url := photo.String
		player.PhotoURL = &url
	}
	if err := json.Unmarshal([]byte(teams), &player.Teams); err != nil {
		return persistence.Player{}, fmt.Errorf("failed to decode teams of player %s: %w", player.ID, err)
	}
	if player.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return persistence.Player{}, err
	}
	if player.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return persistence.Player{}, err
	}
	return player, nil
}

func encodeTeams(teams []string) (string, error) {
	if teams == nil {
		teams = []string{}
	}
	raw, err := json.Marshal(teams)
	if err != nil {
		return "", fmt.Errorf("failed to encode teams: %w", err)
	}
	return string(raw), nil
}
