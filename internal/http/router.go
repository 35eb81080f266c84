package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-review-desk/internal/http/handlers"
	"github.com/pribylovaa/go-review-desk/internal/http/middleware"
	"github.com/pribylovaa/go-review-desk/internal/session"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(s *session.Session, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),
		middleware.RequestID(), // до логирования: request_id попадает в логгер
		middleware.Logging(opts.Logger),
	)

	h := handlers.New(s)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, opts.Timeout)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, opts.Timeout)
	return root
}

// registerRoutes — единая точка регистрации всех эндпойнтов.
// Общий дедлайн навешивается только на JSON-эндпойнты: потоковая отдача медиа
// ограничена таймаутом клиента бэкенда.
func registerRoutes(r chi.Router, h *handlers.Handlers, timeout time.Duration) {
	// media
	r.Get("/media/{filename}", h.Media)
	r.Get("/thumbnails/{id}.png", h.Thumbnail)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))

		// review
		r.Get("/review", h.GetReview)
		r.Post("/review/decisions", h.Decide)
		r.Post("/review/keys/{key}", h.PressKey)
		r.Get("/review/stats", h.GetStats)

		// history
		r.Get("/history", h.GetHistory)
		r.Put("/history/filter", h.SetFilter)
		r.Post("/history/older", h.LoadOlder)
		r.Post("/history/sentinel", h.ObserveSentinel)
		r.Get("/history/{timestamp}/autofill", h.Autofill)
		r.Post("/history/{timestamp}/confirm", h.Confirm)

		// alerts
		r.Get("/alerts", h.ListAlerts)
		r.Delete("/alerts/{id}", h.DismissAlert)
		r.Post("/alerts/{id}/retry", h.RetryAlert)
	})
}
