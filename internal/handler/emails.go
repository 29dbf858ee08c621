package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ticketmail/ticketmail/internal/model"
	"github.com/ticketmail/ticketmail/internal/repository"
	"github.com/ticketmail/ticketmail/internal/service"
)

// ListEmails returns stored emails, most recently edited first.
func (h *Handler) ListEmails(w http.ResponseWriter, r *http.Request) {
	emails, err := h.emailSvc.List(r.Context(), deviceID(r))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list emails")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list emails")
		return
	}
	if emails == nil {
		emails = []*model.Email{}
	}
	writeJSON(w, http.StatusOK, emails)
}

// CreateEmail stores an email and sends it to its recipient.
func (h *Handler) CreateEmail(w http.ResponseWriter, r *http.Request) {
	var req service.CreateEmailRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	rec, err := h.emailSvc.CreateAndSend(r.Context(), req, deviceID(r))
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, rec)
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, service.ErrTransportUnavailable):
		// The record was stored; only delivery failed.
		writeError(w, http.StatusInternalServerError, "send_failed", "Failed to send email")
	default:
		h.log.Error().Err(err).Msg("failed to create email")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to create email")
	}
}

// GetEmail returns one stored email.
func (h *Handler) GetEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := emailID(w, r)
	if !ok {
		return
	}
	rec, err := h.emailSvc.Get(r.Context(), id, deviceID(r))
	if err != nil {
		h.emailNotFoundOrError(w, err, "Failed to get email")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// UpdateEmail applies a partial update to a stored email.
func (h *Handler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := emailID(w, r)
	if !ok {
		return
	}
	var req service.UpdateEmailRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}
	rec, err := h.emailSvc.Update(r.Context(), id, deviceID(r), req)
	if err != nil {
		h.emailNotFoundOrError(w, err, "Failed to update email")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteEmail removes a stored email.
func (h *Handler) DeleteEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := emailID(w, r)
	if !ok {
		return
	}
	if err := h.emailSvc.Delete(r.Context(), id, deviceID(r)); err != nil {
		h.emailNotFoundOrError(w, err, "Failed to delete email")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Email was deleted"})
}

func emailID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Email not found")
		return 0, false
	}
	return id, true
}

func (h *Handler) emailNotFoundOrError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Email not found")
		return
	}
	h.log.Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, "internal_error", msg)
}
