package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/pribylovaa/go-review-desk/internal/clients/interceptors"
	apierrors "github.com/pribylovaa/go-review-desk/internal/errors"
	logctx "github.com/pribylovaa/go-review-desk/pkg/log"
)

// Recover перехватывает panic, конвертирует в 500/internal и пишет унифицированный ответ.
// Детали паники и стек уходят только в лог. http.ErrAbortHandler пробрасывается дальше:
// им net/http обрывает ответ намеренно.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logctx.From(r.Context()).
					LogAttrs(r.Context(), slog.LevelError, "http_panic",
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("request_id", interceptors.RequestIDFrom(r.Context())),
						slog.Any("reason", rec),
						slog.String("stack", string(debug.Stack())),
					)
				apierrors.WriteError(w, r, fmt.Errorf("panic: %v", rec))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
