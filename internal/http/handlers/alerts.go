package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pribylovaa/go-review-desk/internal/alerts"
	apierrors "github.com/pribylovaa/go-review-desk/internal/errors"
)

type alertsResponse struct {
	Alerts []alerts.Alert `json:"alerts"`
}

func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	list := h.Session.Alerts()
	if list == nil {
		list = []alerts.Alert{}
	}

	writeJSON(w, http.StatusOK, alertsResponse{Alerts: list})
}

func (h *Handlers) DismissAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	if err := h.Session.DismissAlert(id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) RetryAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	if err := h.Session.RetryAlert(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
