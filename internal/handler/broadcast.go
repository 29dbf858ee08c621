package handler

import (
	"errors"
	"net/http"

	"github.com/ticketmail/ticketmail/internal/model"
	"github.com/ticketmail/ticketmail/internal/service"
)

// SendBroadcast sends a newsletter to every recipient in the request.
func (h *Handler) SendBroadcast(w http.ResponseWriter, r *http.Request) {
	var req service.BroadcastRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	summary, err := h.broadcastSvc.SendBroadcast(r.Context(), req, deviceID(r))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, summary)
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, service.ErrTransportUnavailable):
		writeError(w, http.StatusInternalServerError, "transport_unavailable", "Failed to connect to email server")
	case errors.Is(err, service.ErrBroadcastFailed):
		// Every recipient failed; the summary still carries the detail.
		writeJSON(w, http.StatusInternalServerError, summary)
	default:
		h.log.Error().Err(err).Msg("broadcast failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to send broadcast")
	}
}

// ListBroadcastLogs returns past broadcasts, newest first.
func (h *Handler) ListBroadcastLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.broadcastSvc.ListLogs(r.Context(), deviceID(r))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list broadcast logs")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list broadcast logs")
		return
	}
	if logs == nil {
		logs = []*model.BroadcastLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}
