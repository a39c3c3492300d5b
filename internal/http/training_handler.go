package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/club-portal/internal/application"
	"github.com/example/club-portal/internal/attendance"
)

type trainingService interface {
	ListTrainings(ctx context.Context, principal application.Principal, team string) ([]application.TrainingBoard, error)
	GetTraining(ctx context.Context, principal application.Principal, trainingID string) (application.TrainingBoard, error)
	CreateTraining(ctx context.Context, params application.CreateTrainingParams) (application.TrainingBoard, error)
	UpdateTraining(ctx context.Context, params application.UpdateTrainingParams) (application.TrainingBoard, error)
	DeleteTraining(ctx context.Context, principal application.Principal, trainingID string) error
	ChangeAttendance(ctx context.Context, params application.ChangeAttendanceParams) (application.TrainingBoard, error)
	WatchTeam(ctx context.Context, principal application.Principal, team string) (<-chan application.TeamBoards, error)
}

type TrainingHandler struct {
	service   trainingService
	responder responder
	logger    *slog.Logger
}

func NewTrainingHandler(service trainingService, logger *slog.Logger) *TrainingHandler {
	base := defaultLogger(logger)
	return &TrainingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TrainingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TrainingHandler", operation, attrs...)
}

func (h *TrainingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	team := strings.TrimSpace(r.URL.Query().Get("team"))
	logger := h.log(r.Context(), "List", "team", team)

	boards, err := h.service.ListTrainings(r.Context(), principal, team)
	if err != nil {
		logger.ErrorContext(r.Context(), "training list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(boards)).InfoContext(r.Context(), "trainings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTrainingsResponse{Trainings: toBoardDTOs(boards)})
}

func (h *TrainingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	trainingID, ok := h.trainingID(w, r)
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	board, err := h.service.GetTraining(r.Context(), principal, trainingID)
	if err != nil {
		h.log(r.Context(), "Get", "training_id", trainingID).ErrorContext(r.Context(), "training lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, boardResponse{Training: toBoardDTO(board)})
}

func (h *TrainingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req trainingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode training request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create", "team", req.Team)

	board, err := h.service.CreateTraining(r.Context(), application.CreateTrainingParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "training creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("training_id", board.Training.ID).InfoContext(r.Context(), "training created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, boardResponse{Training: toBoardDTO(board)})
}

func (h *TrainingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	trainingID, ok := h.trainingID(w, r)
	if !ok {
		return
	}

	var req trainingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "training_id", trainingID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode training update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Update", "training_id", trainingID)

	board, err := h.service.UpdateTraining(r.Context(), application.UpdateTrainingParams{
		Principal:  principal,
		TrainingID: trainingID,
		Input:      req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "training update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "training updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, boardResponse{Training: toBoardDTO(board)})
}

func (h *TrainingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	trainingID, ok := h.trainingID(w, r)
	if !ok {
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "training_id", trainingID)
	if err := h.service.DeleteTraining(r.Context(), principal, trainingID); err != nil {
		logger.ErrorContext(r.Context(), "training delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "training deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ChangeAttendance handles one press of the attendance button.
func (h *TrainingHandler) ChangeAttendance(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	trainingID, ok := h.trainingID(w, r)
	if !ok {
		return
	}

	var req attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "ChangeAttendance", "training_id", trainingID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode attendance request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ChangeAttendance", "training_id", trainingID, "action", req.Action)

	board, err := h.service.ChangeAttendance(r.Context(), application.ChangeAttendanceParams{
		Principal:  principal,
		TrainingID: trainingID,
		Action:     attendance.Action(strings.TrimSpace(req.Action)),
		Reason:     req.Reason,
	})
	if err != nil {
		logger.InfoContext(r.Context(), "attendance change refused", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", board.MyStatus.String()).InfoContext(r.Context(), "attendance changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, boardResponse{Training: toBoardDTO(board)})
}

func (h *TrainingHandler) trainingID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTrainingID)
		return "", false
	}
	return id, true
}

type trainingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Venue       string `json:"venue"`
	Team        string `json:"team"`
}

func (r trainingRequest) toInput() application.TrainingInput {
	return application.TrainingInput{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Venue:       r.Venue,
		Team:        r.Team,
	}
}

type attendanceRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

type listTrainingsResponse struct {
	Trainings []boardDTO `json:"trainings"`
}

type boardResponse struct {
	Training boardDTO `json:"training"`
}

type trainingDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        *string `json:"date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Venue       string  `json:"venue"`
	Team        string  `json:"team"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type statusDTO struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type rosterEntryDTO struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PhotoURL  string `json:"photo_url,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type boardDTO struct {
	Training   trainingDTO      `json:"training"`
	MyStatus   statusDTO        `json:"my_status"`
	Expired    bool             `json:"expired"`
	NextAction string           `json:"next_action"`
	CanEdit    bool             `json:"can_edit"`
	SignedUp   []rosterEntryDTO `json:"signed_up"`
	Withdrawn  []rosterEntryDTO `json:"withdrawn"`
	NoResponse []rosterEntryDTO `json:"no_response"`
}

func toTrainingDTO(training application.TrainingSession) trainingDTO {
	dto := trainingDTO{
		ID:          training.ID,
		Title:       training.Title,
		Description: training.Description,
		Venue:       training.Venue,
		Team:        string(training.Team),
		CreatedAt:   formatTimestamp(training.CreatedAt),
		UpdatedAt:   formatTimestamp(training.UpdatedAt),
	}
	if training.Date != nil {
		date := training.Date.String()
		dto.Date = &date
	}
	if training.Start != nil {
		start := training.Start.String()
		dto.StartTime = &start
	}
	if training.End != nil {
		end := training.End.String()
		dto.EndTime = &end
	}
	return dto
}

func toBoardDTO(board application.TrainingBoard) boardDTO {
	session := board.Training.Session
	withdrawn := make([]rosterEntryDTO, 0, len(board.Groups.Withdrawn))
	for _, player := range board.Groups.Withdrawn {
		entry := toRosterEntryDTO(player)
		entry.Reason = attendance.Resolve(session, player.ID).Reason
		withdrawn = append(withdrawn, entry)
	}

	return boardDTO{
		Training:   toTrainingDTO(board.Training),
		MyStatus:   statusDTO{Status: board.MyStatus.String(), Reason: board.MyStatus.Reason},
		Expired:    board.Expired,
		NextAction: string(board.NextAction),
		CanEdit:    board.CanEdit,
		SignedUp:   toRosterEntryDTOs(board.Groups.SignedUp),
		Withdrawn:  withdrawn,
		NoResponse: toRosterEntryDTOs(board.Groups.NoResponse),
	}
}

func toBoardDTOs(boards []application.TrainingBoard) []boardDTO {
	out := make([]boardDTO, 0, len(boards))
	for _, board := range boards {
		out = append(out, toBoardDTO(board))
	}
	return out
}

func toRosterEntryDTO(player attendance.Player) rosterEntryDTO {
	return rosterEntryDTO{
		ID:        player.ID,
		FirstName: player.FirstName,
		LastName:  player.LastName,
		PhotoURL:  player.PhotoURL,
	}
}

func toRosterEntryDTOs(players []attendance.Player) []rosterEntryDTO {
	out := make([]rosterEntryDTO, 0, len(players))
	for _, player := range players {
		out = append(out, toRosterEntryDTO(player))
	}
	return out
}
