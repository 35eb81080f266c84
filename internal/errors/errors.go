// errors стандартизирует ответы об ошибках локального API review-desk.
// На вход он принимает доменную ошибку (или ошибку бэкенда),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - короткий стабильный код и безопасное message.
//
// Детали ответа бэкенда (detail) отдаются как message: оператору важно видеть,
// почему бэкенд отказал.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/go-review-desk/internal/alerts"
	"github.com/pribylovaa/go-review-desk/internal/clients"
	"github.com/pribylovaa/go-review-desk/internal/dispatch"
	"github.com/pribylovaa/go-review-desk/internal/models"
	"github.com/pribylovaa/go-review-desk/internal/session"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// ErrInvalidArgument — локальная ошибка разбора входных данных хендлером.
var ErrInvalidArgument = stderrors.New("invalid argument")

// APIError — единый формат для слоя отображения.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - программная ошибка вызова: 500/internal;
//   - отмена клиентом -> 499, дедлайн -> 504;
//   - ошибки разбора (действие, фильтр, клавиша, аргумент) -> 400;
//   - алерт или запись не найдены -> 404;
//   - нет элемента, устаревшая привязка, решение в полёте -> 409;
//   - ответ бэкенда вне 2xx или неразбираемое тело -> 502, бэкенд недоступен -> 503;
//   - прочее -> 500/internal.
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := classify(err)
	return status, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет статус и тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func classify(err error) (int, string, string) {
	if err == nil {
		return http.StatusInternalServerError, "internal", "internal error"
	}

	var se *clients.StatusError

	switch {
	case stderrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"

	case stderrors.Is(err, ErrInvalidArgument),
		stderrors.Is(err, models.ErrInvalidAction),
		stderrors.Is(err, models.ErrInvalidFilter):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case stderrors.Is(err, dispatch.ErrUnknownKey):
		return http.StatusBadRequest, "unknown_key", "unknown key"

	case stderrors.Is(err, alerts.ErrNotFound):
		return http.StatusNotFound, "not_found", "alert not found"
	case stderrors.Is(err, session.ErrNotInFeed):
		return http.StatusNotFound, "not_found", "record not found"

	case stderrors.Is(err, dispatch.ErrNoItem):
		return http.StatusConflict, "no_item", "no item displayed"
	case stderrors.Is(err, dispatch.ErrStaleBinding):
		return http.StatusConflict, "stale_binding", "item is no longer displayed"
	case stderrors.Is(err, dispatch.ErrBusy):
		return http.StatusConflict, "busy", "decision in flight"
	case stderrors.Is(err, dispatch.ErrNoDecision):
		return http.StatusConflict, "no_decision", "alert carries no decision"

	case stderrors.As(err, &se):
		msg := se.Detail
		if msg == "" {
			msg = http.StatusText(se.Code)
		}
		return http.StatusBadGateway, "upstream_status", msg
	case stderrors.Is(err, clients.ErrDecode):
		return http.StatusBadGateway, "bad_gateway", "undecodable backend response"
	case stderrors.Is(err, clients.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable", "backend unavailable"

	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
