package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/pribylovaa/go-review-desk/internal/errors"
	"github.com/pribylovaa/go-review-desk/internal/feed"
	"github.com/pribylovaa/go-review-desk/internal/models"
)

type filterRequest struct {
	Filter string `json:"filter"`
}

type sentinelRequest struct {
	Visible   bool     `json:"visible"`
	ScrollTop *float64 `json:"scroll_top,omitempty"`
}

type loadResponse struct {
	Outcome string `json:"outcome"`
	Fired   *bool  `json:"fired,omitempty"`
}

func outcomeResponse(out feed.Outcome) loadResponse {
	return loadResponse{Outcome: out.String()}
}

func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Session.History())
}

func (h *Handlers) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeStrict(r, &req); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	filter, err := models.ParseFilter(req.Filter)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := h.Session.SetFilter(r.Context(), filter)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, outcomeResponse(out))
}

func (h *Handlers) LoadOlder(w http.ResponseWriter, r *http.Request) {
	out, err := h.Session.LoadOlder(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, outcomeResponse(out))
}

func (h *Handlers) ObserveSentinel(w http.ResponseWriter, r *http.Request) {
	var req sentinelRequest
	if err := decodeStrict(r, &req); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	fired, out, err := h.Session.ObserveSentinel(r.Context(), req.Visible, req.ScrollTop)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	resp := outcomeResponse(out)
	resp.Fired = &fired
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) Autofill(w http.ResponseWriter, r *http.Request) {
	ts, err := models.ParseTimestamp(chi.URLParam(r, "timestamp"))
	if err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	draft, err := h.Session.Autofill(r.Context(), ts)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	body, _ := draft.MarshalJSON()
	writeRaw(w, http.StatusOK, body)
}

func (h *Handlers) Confirm(w http.ResponseWriter, r *http.Request) {
	ts, err := models.ParseTimestamp(chi.URLParam(r, "timestamp"))
	if err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	if err := h.Session.Confirm(r.Context(), ts); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
