package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/pribylovaa/go-review-desk/internal/clients"
	"github.com/pribylovaa/go-review-desk/internal/session"
)

// Handlers агрегирует зависимости хендлеров.
type Handlers struct {
	Session *session.Session
}

func New(s *session.Session) *Handlers {
	return &Handlers{Session: s}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeRaw отдаёт готовое JSON-тело как есть.
func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeBlob стримит медиа-файл бэкенда и закрывает его тело.
func writeBlob(w http.ResponseWriter, b clients.Blob) {
	defer b.Body.Close()

	if b.ContentType != "" {
		w.Header().Set("Content-Type", b.ContentType)
	}
	if b.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(b.Size, 10))
	}
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, b.Body)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}
