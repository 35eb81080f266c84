package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/pribylovaa/go-review-desk/internal/errors"
	logctx "github.com/pribylovaa/go-review-desk/pkg/log"
)

func (h *Handlers) Media(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if filename == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	blob, err := h.Session.Media(r.Context(), filename)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeBlob(w, blob)
}

// Thumbnail отдаёт миниатюру предмета; при ошибке перенаправляет на заглушку.
func (h *Handlers) Thumbnail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	blob, err := h.Session.Thumbnail(r.Context(), id)
	if err != nil {
		fallback := h.Session.ThumbnailFallback()
		if fallback == "" {
			apierrors.WriteError(w, r, err)
			return
		}

		logctx.From(r.Context()).Debug("thumbnail_fallback",
			slog.String("id", id),
			slog.String("err", err.Error()),
		)
		http.Redirect(w, r, fallback, http.StatusFound)
		return
	}

	writeBlob(w, blob)
}
