package interceptors

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-review-desk/pkg/log"
)

// WithLogging — логирование исходящих вызовов к бэкенду.
// Поведение:
//   - берёт X-Request-Id из заголовка или контекста (или генерирует новый и добавляет);
//   - добавляет поля method/target, прокладывает обогащённый логгер в контекст (pkg/log);
//   - пишет одну финальную запись: msg="backend_call", status, dur
//     (Info для 2xx/3xx/4xx, Warn для 5xx и ошибок транспорта).
//
// Безопасность: не логирует тела запросов и ответов.
func WithLogging(base *slog.Logger) Interceptor {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			rid := r.Header.Get("X-Request-Id")
			if rid == "" {
				rid = RequestIDFrom(r.Context())
			}
			if rid == "" {
				rid = uuid.NewString()
			}
			r = r.Clone(r.Context())
			r.Header.Set("X-Request-Id", rid)

			l := base.With(
				slog.String("request_id", rid),
				slog.String("method", r.Method),
				slog.String("target", r.URL.Path),
			)
			r = r.WithContext(log.Into(r.Context(), l))

			resp, err := next.RoundTrip(r)
			if err != nil {
				l.Warn("backend_call",
					slog.String("err", err.Error()),
					slog.Duration("dur", time.Since(start)),
				)
				return nil, err
			}

			lvl := slog.LevelInfo
			if resp.StatusCode >= http.StatusInternalServerError {
				lvl = slog.LevelWarn
			}
			l.Log(r.Context(), lvl, "backend_call",
				slog.Int("status", resp.StatusCode),
				slog.Duration("dur", time.Since(start)),
			)

			return resp, nil
		})
	}
}
