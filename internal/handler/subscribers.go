package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ticketmail/ticketmail/internal/model"
	"github.com/ticketmail/ticketmail/internal/repository"
	"github.com/ticketmail/ticketmail/internal/service"
)

// ListSubscribers returns the active subscriber list.
func (h *Handler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriberSvc.ListActive(r.Context(), deviceID(r))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list subscribers")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list subscribers")
		return
	}
	if subs == nil {
		subs = []*model.Subscriber{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// CreateSubscriber adds a subscriber, or reactivates an inactive one.
// An already-active address comes back unchanged with 200.
func (h *Handler) CreateSubscriber(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}

	sub, created, err := h.subscriberSvc.Upsert(r.Context(), req.Email, deviceID(r))
	switch {
	case err == nil:
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, sub)
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		h.log.Error().Err(err).Msg("failed to upsert subscriber")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to process subscriber")
	}
}

// GetSubscriber returns one subscriber, addressed by numeric ID or by
// email address.
func (h *Handler) GetSubscriber(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("idOrEmail")

	var sub *model.Subscriber
	var err error
	if id, perr := strconv.ParseInt(key, 10, 64); perr == nil {
		sub, err = h.subscriberSvc.Get(r.Context(), id, deviceID(r))
	} else {
		sub, err = h.subscriberSvc.GetByEmail(r.Context(), key)
	}
	if err != nil {
		h.subscriberNotFoundOrError(w, err, "Failed to get subscriber")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// UpdateSubscriber applies a partial update to a subscriber.
func (h *Handler) UpdateSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("idOrEmail"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "Subscriber not found")
		return
	}
	var req service.UpdateSubscriberRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "Invalid request body")
		return
	}
	sub, err := h.subscriberSvc.Update(r.Context(), id, deviceID(r), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, sub)
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		h.subscriberNotFoundOrError(w, err, "Failed to update subscriber")
	}
}

// DeleteSubscriber soft-deletes a subscriber. A numeric key is resolved
// within the device scope; an email key works unscoped so the public
// unsubscribe link always lands.
func (h *Handler) DeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("idOrEmail")

	var err error
	if id, perr := strconv.ParseInt(key, 10, 64); perr == nil {
		_, err = h.subscriberSvc.Deactivate(r.Context(), id, deviceID(r))
	} else {
		_, err = h.subscriberSvc.Unsubscribe(r.Context(), key)
	}
	if err != nil {
		h.subscriberNotFoundOrError(w, err, "Failed to unsubscribe")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Subscriber unsubscribed"})
}

func (h *Handler) subscriberNotFoundOrError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Subscriber not found")
		return
	}
	h.log.Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, "internal_error", msg)
}
