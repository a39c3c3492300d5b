package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/club-portal/internal/application"
)

var (
	errBadRequestBody      = errors.New("El formato de la solicitud no es válido.")
	errInvalidTrainingID   = errors.New("El identificador del entrenamiento no es válido.")
	errInvalidPlayerID     = errors.New("El identificador de la jugadora no es válido.")
	errInvalidUserID       = errors.New("El identificador de la cuenta no es válido.")
	errMissingSessionToken = errors.New("Debes iniciar sesión.")
	errStreamUnsupported   = errors.New("El servidor no admite transmisiones en vivo.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "No tienes permiso para realizar esta acción.",
		})
	case errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, application.ErrSessionExpired),
		errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_EXPIRED",
			Message:   "Tu sesión no es válida. Inicia sesión nuevamente.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "No se encontró el recurso solicitado."})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ALREADY_EXISTS",
			Message:   "Ya existe un registro con esos datos.",
		})
	case errors.Is(err, application.ErrAttendanceClosed):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ATTENDANCE_CLOSED",
			Message:   "El entrenamiento ya terminó; la asistencia está cerrada.",
		})
	case errors.Is(err, application.ErrInvalidTransition):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "INVALID_TRANSITION",
			Message:   "Tu asistencia cambió mientras tanto. Actualiza la página e inténtalo de nuevo.",
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Revisa los datos ingresados.",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Ocurrió un error interno en el servidor."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "La solicitud no es válida."
	case http.StatusUnauthorized:
		return "Debes iniciar sesión."
	case http.StatusForbidden:
		return "No tienes permiso para realizar esta acción."
	case http.StatusNotFound:
		return "No se encontró el recurso solicitado."
	case http.StatusConflict:
		return "La solicitud entra en conflicto con el estado actual."
	case http.StatusUnprocessableEntity:
		return "Revisa los datos ingresados."
	default:
		return "Ocurrió un error interno en el servidor."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

var validationMessages = map[string]string{
	"input is invalid":         "Los datos enviados no son válidos.",
	"id is invalid":            "No puedes eliminar tu propia cuenta.",
	"email is required":        "El correo electrónico es obligatorio.",
	"email is invalid":         "El correo electrónico no tiene un formato válido.",
	"display_name is required": "El nombre visible es obligatorio.",
	"display_name is too long": "El nombre visible es demasiado largo.",
	"password is required":     "La contraseña es obligatoria.",
	"password is too short":    "La contraseña debe tener al menos 8 caracteres.",
	"user_id is required":      "Debes indicar la cuenta de la jugadora.",
	"user_id is invalid":       "La cuenta indicada no existe.",
	"first_name is required":   "El nombre es obligatorio.",
	"first_name is too long":   "El nombre es demasiado largo.",
	"last_name is required":    "El apellido es obligatorio.",
	"last_name is too long":    "El apellido es demasiado largo.",
	"photo_url is too long":    "La URL de la foto es demasiado larga.",
	"teams is required":        "Debes indicar al menos un equipo.",
	"teams is invalid":         "Alguno de los equipos no existe.",
	"team is required":         "Debes indicar el equipo.",
	"team is invalid":          "El equipo indicado no existe.",
	"title is required":        "El título es obligatorio.",
	"title is too long":        "El título es demasiado largo.",
	"description is too long":  "La descripción es demasiado larga.",
	"venue is too long":        "El lugar es demasiado largo.",
	"date is invalid":          "La fecha debe tener el formato AAAA-MM-DD.",
	"start_time is invalid":    "La hora de inicio debe tener el formato HH:MM.",
	"end_time is invalid":      "La hora de término debe ser posterior a la de inicio y tener el formato HH:MM.",
	"action is invalid":        "La acción indicada no es válida.",
	"reason is too long":       "El motivo no puede superar los 500 caracteres.",
}

func translateValidationMessage(message string) string {
	if translated, ok := validationMessages[message]; ok {
		return translated
	}
	return message
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
