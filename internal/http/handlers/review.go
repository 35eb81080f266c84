package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/pribylovaa/go-review-desk/internal/errors"
	"github.com/pribylovaa/go-review-desk/internal/models"
)

type decisionRequest struct {
	Action string `json:"action"`
}

type decisionResponse struct {
	DecisionID   string        `json:"decision_id"`
	Filename     string        `json:"filename"`
	MessageIndex int           `json:"message_index"`
	Action       models.Action `json:"action"`
}

func newDecisionResponse(d models.Decision) decisionResponse {
	return decisionResponse{
		DecisionID:   d.ID.String(),
		Filename:     d.Filename,
		MessageIndex: d.MessageIndex,
		Action:       d.Action,
	}
}

func (h *Handlers) GetReview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Session.Review())
}

func (h *Handlers) Decide(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := decodeStrict(r, &req); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	action, err := models.ParseAction(req.Action)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	d, err := h.Session.Decide(r.Context(), action)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, newDecisionResponse(d))
}

func (h *Handlers) PressKey(w http.ResponseWriter, r *http.Request) {
	d, err := h.Session.Press(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, newDecisionResponse(d))
}

func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	var sync bool
	if v := r.URL.Query().Get("sync"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
			return
		}
		sync = b
	}

	st, err := h.Session.Stats(r.Context(), sync)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}
