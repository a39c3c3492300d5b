package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sse"

	"github.com/example/club-portal/internal/application"
)

const snapshotEvent = "snapshot"

type teamBoardsDTO struct {
	Sequence  uint64     `json:"sequence"`
	Team      string     `json:"team"`
	Trainings []boardDTO `json:"trainings"`
}

// Stream serves the live boards of one team as Server-Sent Events. Every
// event carries the complete state; clients replace what they have.
func (h *TrainingHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	team := strings.TrimSpace(r.URL.Query().Get("team"))
	logger := h.log(ctx, "Stream", "team", team)

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, errStreamUnsupported)
		return
	}

	principal, _ := PrincipalFromContext(ctx)
	updates, err := h.service.WatchTeam(ctx, principal, team)
	if err != nil {
		logger.ErrorContext(ctx, "watch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	header := w.Header()
	header.Set("Content-Type", sse.ContentType)
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	logger.InfoContext(ctx, "stream opened")
	sent := 0
	for boards := range updates {
		event := sse.Event{
			Event: snapshotEvent,
			Id:    strconv.FormatUint(boards.Sequence, 10),
			Data: teamBoardsDTO{
				Sequence:  boards.Sequence,
				Team:      string(boards.Team),
				Trainings: toBoardDTOs(boards.Boards),
			},
		}
		if err := sse.Encode(w, event); err != nil {
			logger.InfoContext(ctx, "stream write failed", "error", err, "events_sent", sent)
			return
		}
		flusher.Flush()
		sent++
	}
	logger.InfoContext(ctx, "stream closed", "events_sent", sent)
}
