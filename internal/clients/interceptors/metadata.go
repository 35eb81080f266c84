package interceptors

import (
	"context"
	"net/http"
)

type CtxKey string

const (
	CtxRequestID CtxKey = "request_id"
)

// RequestIDFrom возвращает request_id из контекста (или "").
func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(CtxRequestID).(string)
	return rid
}

// WithMetadata — добавляет в исходящий запрос заголовки:
//   - X-Request-Id (если есть в контексте и не выставлен явно),
//   - User-Agent (если передан параметром).
//
// Исходный запрос не мутируется: заголовки ставятся на клон.
func WithMetadata(userAgent string) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			rid := RequestIDFrom(r.Context())
			setRID := rid != "" && r.Header.Get("X-Request-Id") == ""
			setUA := userAgent != ""
			if !setRID && !setUA {
				return next.RoundTrip(r)
			}

			r = r.Clone(r.Context())
			if setRID {
				r.Header.Set("X-Request-Id", rid)
			}
			if setUA {
				r.Header.Set("User-Agent", userAgent)
			}

			return next.RoundTrip(r)
		})
	}
}
