package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/example/club-portal/internal/attendance"
)

// PlayerRepository captures the persistence operations needed by the roster service.
type PlayerRepository interface {
	CreatePlayer(ctx context.Context, player Player) (Player, error)
	UpdatePlayer(ctx context.Context, player Player) (Player, error)
	GetPlayer(ctx context.Context, id string) (Player, error)
	// ListPlayers returns the players on team, or everyone when team is empty.
	ListPlayers(ctx context.Context, team attendance.Team) ([]Player, error)
	DeletePlayer(ctx context.Context, id string) error
}

// UserLookup resolves accounts by id.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (User, error)
}

// RosterChangeListener is notified after roster writes with the teams whose
// membership or names may have changed.
type RosterChangeListener interface {
	RosterChanged(ctx context.Context, teams []attendance.Team)
}

// RosterService manages the club roster. Entries share their id with the
// owning account.
type RosterService struct {
	players  PlayerRepository
	users    UserLookup
	cache    *rosterCache
	listener RosterChangeListener
	now      func() time.Time
	logger   *slog.Logger
}

// NewRosterService constructs a roster service with the provided dependencies.
func NewRosterService(players PlayerRepository, users UserLookup, cacheTTL time.Duration, now func() time.Time) *RosterService {
	return NewRosterServiceWithLogger(players, users, cacheTTL, now, nil)
}

// NewRosterServiceWithLogger constructs a roster service with a specified logger.
func NewRosterServiceWithLogger(players PlayerRepository, users UserLookup, cacheTTL time.Duration, now func() time.Time, logger *slog.Logger) *RosterService {
	if now == nil {
		now = time.Now
	}
	return &RosterService{
		players: players,
		users:   users,
		cache:   newRosterCache(cacheTTL, len(attendance.Teams())+1, now),
		now:     now,
		logger:  defaultLogger(logger),
	}
}

// SetChangeListener registers the component told about roster writes.
func (s *RosterService) SetChangeListener(listener RosterChangeListener) {
	if s != nil {
		s.listener = listener
	}
}

func (s *RosterService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RosterService", operation, attrs...)
}

// TeamRoster returns the players on team in display order, served from the
// roster cache when possible.
func (s *RosterService) TeamRoster(ctx context.Context, team attendance.Team) ([]attendance.Player, error) {
	if s == nil {
		return nil, fmt.Errorf("RosterService is nil")
	}
	if s.players == nil {
		return []attendance.Player{}, nil
	}
	return s.cache.Load(ctx, team, func(ctx context.Context) ([]attendance.Player, error) {
		players, err := s.players.ListPlayers(ctx, team)
		if err != nil {
			return nil, mapPlayerRepoError(err)
		}
		sortPlayers(players)
		out := make([]attendance.Player, len(players))
		for i, p := range players {
			out[i] = p.Player
		}
		return out, nil
	})
}

// ListPlayers returns the roster of team, or the whole club when team is
// empty, sorted by last name then first name using Spanish collation.
func (s *RosterService) ListPlayers(ctx context.Context, principal Principal, team string) (players []Player, err error) {
	if s == nil {
		err = fmt.Errorf("RosterService is nil")
		return
	}
	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	var filter attendance.Team
	if strings.TrimSpace(team) != "" {
		parsed, ok := attendance.ParseTeam(team)
		if !ok {
			vErr := &ValidationError{}
			vErr.add("team", "team is invalid")
			err = vErr
			return
		}
		filter = parsed
	}

	if s.players == nil {
		return []Player{}, nil
	}

	players, err = s.players.ListPlayers(ctx, filter)
	if err != nil {
		err = mapPlayerRepoError(err)
		s.loggerWith(ctx, "ListPlayers", "team", string(filter)).
			ErrorContext(ctx, "failed to list players", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	sortPlayers(players)
	return players, nil
}

// GetPlayer returns a single roster entry.
func (s *RosterService) GetPlayer(ctx context.Context, principal Principal, playerID string) (Player, error) {
	if s == nil {
		return Player{}, fmt.Errorf("RosterService is nil")
	}
	if principal.UserID == "" {
		return Player{}, ErrUnauthorized
	}
	if s.players == nil {
		return Player{}, ErrNotFound
	}
	player, err := s.players.GetPlayer(ctx, strings.TrimSpace(playerID))
	if err != nil {
		return Player{}, mapPlayerRepoError(err)
	}
	return player, nil
}

// CreatePlayer adds the roster entry of an existing account. Administrators only.
func (s *RosterService) CreatePlayer(ctx context.Context, params CreatePlayerParams) (player Player, err error) {
	if s == nil {
		err = fmt.Errorf("RosterService is nil")
		return
	}

	userID := strings.TrimSpace(params.UserID)
	logger := s.loggerWith(ctx, "CreatePlayer",
		"principal_id", params.Principal.UserID,
		"player_id", userID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create player", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "player created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.players == nil {
		err = fmt.Errorf("player repository not configured")
		return
	}

	input, teams, vErr := normalizePlayerInput(params.Input)
	if userID == "" {
		vErr.add("user_id", "user_id is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if s.users != nil {
		if _, lookupErr := s.users.GetUser(ctx, userID); lookupErr != nil {
			if errors.Is(mapUserRepoError(lookupErr), ErrNotFound) {
				vErr.add("user_id", "user_id is invalid")
				err = vErr
				return
			}
			err = lookupErr
			return
		}
	}

	now := s.now()
	player = Player{
		Player: attendance.Player{
			ID:        userID,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			PhotoURL:  photoURL(input.PhotoURL),
			Teams:     teams,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	player, err = s.players.CreatePlayer(ctx, player)
	if err != nil {
		err = mapPlayerRepoError(err)
		return
	}

	s.rosterChanged(ctx, teams)
	return
}

// UpdatePlayer edits a roster entry. Administrators may edit any entry;
// players may edit their own names and photo but not their teams.
func (s *RosterService) UpdatePlayer(ctx context.Context, params UpdatePlayerParams) (player Player, err error) {
	if s == nil {
		err = fmt.Errorf("RosterService is nil")
		return
	}

	playerID := strings.TrimSpace(params.PlayerID)
	logger := s.loggerWith(ctx, "UpdatePlayer",
		"principal_id", params.Principal.UserID,
		"player_id", playerID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update player", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "player updated")
	}()

	self := params.Principal.UserID != "" && params.Principal.UserID == playerID
	if !params.Principal.IsAdmin && !self {
		err = ErrUnauthorized
		return
	}
	if s.players == nil {
		err = fmt.Errorf("player repository not configured")
		return
	}

	var existing Player
	existing, err = s.players.GetPlayer(ctx, playerID)
	if err != nil {
		err = mapPlayerRepoError(err)
		return
	}

	input := params.Input
	if !params.Principal.IsAdmin {
		// Team membership is managed by administrators.
		input.Teams = teamStrings(existing.Teams)
	}

	var (
		normalized PlayerInput
		teams      []attendance.Team
		vErr       *ValidationError
	)
	normalized, teams, vErr = normalizePlayerInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	player = existing
	player.FirstName = normalized.FirstName
	player.LastName = normalized.LastName
	player.PhotoURL = photoURL(normalized.PhotoURL)
	player.Teams = teams
	player.UpdatedAt = s.now()

	player, err = s.players.UpdatePlayer(ctx, player)
	if err != nil {
		err = mapPlayerRepoError(err)
		return
	}

	s.rosterChanged(ctx, unionTeams(existing.Teams, teams))
	return
}

// DeletePlayer removes a roster entry. Administrators only. Attendance values
// already stored under the id are left in place and no longer partitioned.
func (s *RosterService) DeletePlayer(ctx context.Context, principal Principal, playerID string) error {
	if s == nil {
		return fmt.Errorf("RosterService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.players == nil {
		return fmt.Errorf("player repository not configured")
	}

	playerID = strings.TrimSpace(playerID)
	logger := s.loggerWith(ctx, "DeletePlayer",
		"principal_id", principal.UserID,
		"player_id", playerID,
	)

	existing, err := s.players.GetPlayer(ctx, playerID)
	if err != nil {
		err = mapPlayerRepoError(err)
		logger.ErrorContext(ctx, "failed to delete player", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if err := s.players.DeletePlayer(ctx, playerID); err != nil {
		err = mapPlayerRepoError(err)
		logger.ErrorContext(ctx, "failed to delete player", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	s.rosterChanged(ctx, existing.Teams)
	logger.InfoContext(ctx, "player deleted")
	return nil
}

func (s *RosterService) rosterChanged(ctx context.Context, teams []attendance.Team) {
	s.cache.Invalidate()
	if s.listener != nil && len(teams) > 0 {
		s.listener.RosterChanged(ctx, teams)
	}
}

func normalizePlayerInput(input PlayerInput) (PlayerInput, []attendance.Team, *ValidationError) {
	normalized := PlayerInput{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		PhotoURL:  normalizeOptionalString(input.PhotoURL),
	}

	var teams []attendance.Team
	invalidTeam := false
	for _, raw := range input.Teams {
		team, ok := attendance.ParseTeam(raw)
		if !ok {
			invalidTeam = true
			continue
		}
		teams = unionTeams(teams, []attendance.Team{team})
	}
	normalized.Teams = teamStrings(teams)

	vErr := &ValidationError{}
	if invalidTeam {
		vErr.add("teams", "teams is invalid")
	}
	vErr.merge(validateStruct(normalized))
	return normalized, teams, vErr
}

// sortPlayers orders players by last name then first name under Spanish
// collation, ignoring case, with the id as the final tie-breaker.
func sortPlayers(players []Player) {
	coll := collate.New(language.Spanish, collate.IgnoreCase)
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if c := coll.CompareString(a.LastName, b.LastName); c != 0 {
			return c < 0
		}
		if c := coll.CompareString(a.FirstName, b.FirstName); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

func unionTeams(a, b []attendance.Team) []attendance.Team {
	out := append([]attendance.Team(nil), a...)
	for _, team := range b {
		found := false
		for _, existing := range out {
			if existing == team {
				found = true
				break
			}
		}
		if !found {
			out = append(out, team)
		}
	}
	return out
}

func teamStrings(teams []attendance.Team) []string {
	out := make([]string, len(teams))
	for i, team := range teams {
		out[i] = string(team)
	}
	return out
}

func photoURL(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
