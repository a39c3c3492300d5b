package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/club-portal/internal/application"
)

type rosterService interface {
	ListPlayers(ctx context.Context, principal application.Principal, team string) ([]application.Player, error)
	GetPlayer(ctx context.Context, principal application.Principal, playerID string) (application.Player, error)
	CreatePlayer(ctx context.Context, params application.CreatePlayerParams) (application.Player, error)
	UpdatePlayer(ctx context.Context, params application.UpdatePlayerParams) (application.Player, error)
	DeletePlayer(ctx context.Context, principal application.Principal, playerID string) error
}

type attendanceSummarizer interface {
	SummarizePlayer(ctx context.Context, principal application.Principal, playerID string) (application.PlayerSummary, error)
}

type PlayerHandler struct {
	roster    rosterService
	summaries attendanceSummarizer
	responder responder
	logger    *slog.Logger
}

func NewPlayerHandler(roster rosterService, summaries attendanceSummarizer, logger *slog.Logger) *PlayerHandler {
	base := defaultLogger(logger)
	return &PlayerHandler{roster: roster, summaries: summaries, responder: newResponder(base), logger: base}
}

func (h *PlayerHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PlayerHandler", operation, attrs...)
}

func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.roster == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	team := strings.TrimSpace(r.URL.Query().Get("team"))
	logger := h.log(r.Context(), "List", "team", team)

	players, err := h.roster.ListPlayers(r.Context(), principal, team)
	if err != nil {
		logger.ErrorContext(r.Context(), "player list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(players)).InfoContext(r.Context(), "players listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listPlayersResponse{Players: toPlayerDTOs(players)})
}

func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.roster == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	playerID, ok := h.playerID(w, r)
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	player, err := h.roster.GetPlayer(r.Context(), principal, playerID)
	if err != nil {
		h.log(r.Context(), "Get", "player_id", playerID).ErrorContext(r.Context(), "player lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, playerResponse{Player: toPlayerDTO(player)})
}

func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.roster == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode player request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create", "player_id", req.UserID)

	player, err := h.roster.CreatePlayer(r.Context(), application.CreatePlayerParams{
		Principal: principal,
		UserID:    req.UserID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "player creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "player created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, playerResponse{Player: toPlayerDTO(player)})
}

func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.roster == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	playerID, ok := h.playerID(w, r)
	if !ok {
		return
	}

	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "player_id", playerID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode player update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Update", "player_id", playerID)

	player, err := h.roster.UpdatePlayer(r.Context(), application.UpdatePlayerParams{
		Principal: principal,
		PlayerID:  playerID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "player update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "player updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, playerResponse{Player: toPlayerDTO(player)})
}

func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.roster == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	playerID, ok := h.playerID(w, r)
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "player_id", playerID)
	if err := h.roster.DeletePlayer(r.Context(), principal, playerID); err != nil {
		logger.ErrorContext(r.Context(), "player delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "player deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Summary reports how often the player signed up for their teams' trainings.
func (h *PlayerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.summaries == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	playerID, ok := h.playerID(w, r)
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	summary, err := h.summaries.SummarizePlayer(r.Context(), principal, playerID)
	if err != nil {
		h.log(r.Context(), "Summary", "player_id", playerID).ErrorContext(r.Context(), "summary failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, summaryResponse{
		Player:     toPlayerDTO(summary.Player),
		Sessions:   summary.Summary.Sessions,
		SignedUp:   summary.Summary.SignedUp,
		Withdrawn:  summary.Summary.Withdrawn,
		NoResponse: summary.Summary.NoResponse,
		Percentage: summary.Summary.Percentage,
	})
}

func (h *PlayerHandler) playerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPlayerID)
		return "", false
	}
	return id, true
}

type playerRequest struct {
	UserID    string   `json:"user_id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	PhotoURL  *string  `json:"photo_url"`
	Teams     []string `json:"teams"`
}

func (r playerRequest) toInput() application.PlayerInput {
	return application.PlayerInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		PhotoURL:  r.PhotoURL,
		Teams:     r.Teams,
	}
}

type playerResponse struct {
	Player playerDTO `json:"player"`
}

type listPlayersResponse struct {
	Players []playerDTO `json:"players"`
}

type summaryResponse struct {
	Player     playerDTO `json:"player"`
	Sessions   int       `json:"sessions"`
	SignedUp   int       `json:"signed_up"`
	Withdrawn  int       `json:"withdrawn"`
	NoResponse int       `json:"no_response"`
	Percentage int       `json:"percentage"`
}

type playerDTO struct {
	ID        string   `json:"id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	PhotoURL  string   `json:"photo_url,omitempty"`
	Teams     []string `json:"teams"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func toPlayerDTO(player application.Player) playerDTO {
	teams := make([]string, 0, len(player.Teams))
	for _, team := range player.Teams {
		teams = append(teams, string(team))
	}
	return playerDTO{
		ID:        player.ID,
		FirstName: player.FirstName,
		LastName:  player.LastName,
		PhotoURL:  player.PhotoURL,
		Teams:     teams,
		CreatedAt: formatTimestamp(player.CreatedAt),
		UpdatedAt: formatTimestamp(player.UpdatedAt),
	}
}

func toPlayerDTOs(players []application.Player) []playerDTO {
	out := make([]playerDTO, 0, len(players))
	for _, player := range players {
		out = append(out, toPlayerDTO(player))
	}
	return out
}
