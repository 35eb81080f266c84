// session — корень композиции review-desk: очередь, диспетчер решений, лента истории,
// доска алертов и фоновый опрос бэкенда.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-review-desk/internal/alerts"
	"github.com/pribylovaa/go-review-desk/internal/clients"
	"github.com/pribylovaa/go-review-desk/internal/config"
	"github.com/pribylovaa/go-review-desk/internal/dispatch"
	"github.com/pribylovaa/go-review-desk/internal/feed"
	"github.com/pribylovaa/go-review-desk/internal/metrics"
	"github.com/pribylovaa/go-review-desk/internal/models"
	"github.com/pribylovaa/go-review-desk/internal/queue"
	"github.com/pribylovaa/go-review-desk/pkg/log"
)

// ErrNotInFeed — запись с таким timestamp не загружена в ленту.
var ErrNotInFeed = errors.New("record is not in the feed")

// Backend — всё, что сессия использует у бэкенда.
type Backend interface {
	Next(ctx context.Context, exclude []string) (models.ReviewItem, bool, error)
	SubmitAction(ctx context.Context, d models.Decision) error
	Tag(ctx context.Context, d models.Decision) error
	Stats(ctx context.Context) (models.Stats, error)
	Messages(ctx context.Context, q models.HistoryQuery) (models.HistoryPage, error)
	Autofill(ctx context.Context, ts models.Timestamp) (models.TradeDraft, error)
	Confirm(ctx context.Context, ts models.Timestamp) error
	Media(ctx context.Context, filename string) (clients.Blob, error)
	Thumbnail(ctx context.Context, id string) (clients.Blob, error)
}

// Options — параметры сессии.
type Options struct {
	QueueCapacity        int
	PollInterval         time.Duration
	Endpoint             dispatch.Endpoint
	OnFailure            dispatch.Policy
	LockWhileDispatching bool
	PageSize             int
	MinRecords           int
	AlertsCapacity       int
	ViewportHeight       float64
	ThumbnailFallback    string
	Layout               feed.Layout
	Metrics              *metrics.Metrics
}

// OptionsFromConfig переносит значения конфигурации в Options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	const op = "internal/session/OptionsFromConfig"

	ep, err := dispatch.ParseEndpoint(cfg.Decision.Endpoint)
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", op, err)
	}
	policy, err := dispatch.ParsePolicy(cfg.Decision.OnFailure)
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", op, err)
	}

	return Options{
		QueueCapacity:        cfg.Queue.Capacity,
		PollInterval:         cfg.Queue.PollInterval,
		Endpoint:             ep,
		OnFailure:            policy,
		LockWhileDispatching: cfg.Decision.LockWhileDispatching,
		PageSize:             cfg.History.PageSize,
		MinRecords:           cfg.History.MinRecords,
		AlertsCapacity:       cfg.Alerts.Capacity,
		ThumbnailFallback:    cfg.Backend.ThumbnailFallback,
	}, nil
}

// Session связывает компоненты.
type Session struct {
	backend Backend
	opts    Options

	queue      *queue.Queue
	dispatcher *dispatch.Dispatcher
	keyboard   *dispatch.Keyboard
	feed       *feed.Feed
	sentinel   *feed.Sentinel
	alerts     *alerts.Board
	view       *historyView

	wg sync.WaitGroup
}

// New собирает сессию над бэкендом.
func New(b Backend, opts Options) (*Session, error) {
	const op = "internal/session/New"

	if opts.Layout == nil {
		opts.Layout = feed.DefaultLayout
	}
	if opts.ViewportHeight <= 0 {
		opts.ViewportHeight = 800
	}

	qo := queue.Options{Capacity: opts.QueueCapacity}
	do := dispatch.Options{LockWhileDispatching: opts.LockWhileDispatching, OnFailure: opts.OnFailure}
	fo := feed.Options{PageSize: opts.PageSize, MinRecords: opts.MinRecords}
	if opts.Metrics != nil {
		qo.Metrics = opts.Metrics
		do.Metrics = opts.Metrics
		fo.Metrics = opts.Metrics
	}

	q, err := queue.New(b, qo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	board := alerts.New(opts.AlertsCapacity)
	do.Alerts = board
	d := dispatch.New(q, dispatch.NewBackendSink(b, opts.Endpoint), b, do)

	kb := dispatch.NewKeyboard(d)
	kb.Attach(q)

	f := feed.New(b, fo)
	view := newHistoryView(opts.ViewportHeight, opts.Layout)
	f.OnChange(view.apply)

	return &Session{
		backend:    b,
		opts:       opts,
		queue:      q,
		dispatcher: d,
		keyboard:   kb,
		feed:       f,
		sentinel:   feed.NewSentinel(f),
		alerts:     board,
		view:       view,
	}, nil
}

// Start выполняет начальную синхронизацию и запускает фоновый опрос очереди.
// Ошибки начальной загрузки считаются транзиентными и только логируются.
func (s *Session) Start(ctx context.Context) {
	const op = "internal/session/Start"

	lg := log.From(ctx)

	if _, err := s.dispatcher.SyncStats(ctx); err != nil {
		lg.Warn("stats_sync_failed", slog.String("op", op), slog.String("err", err.Error()))
	}
	if err := s.queue.Pump(ctx); err != nil {
		lg.Warn("queue_pump_failed", slog.String("op", op), slog.String("err", err.Error()))
	}
	if _, err := s.feed.LoadInitial(ctx, models.FilterNone); err != nil {
		lg.Warn("history_initial_failed", slog.String("op", op), slog.String("err", err.Error()))
	}

	if s.opts.PollInterval > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.poll(ctx)
		}()
	}

	lg.Info("session_started",
		slog.String("op", op),
		slog.Int("buffered", s.queue.Len()),
		slog.Int("history", s.feed.Len()),
	)
}

// poll периодически дозаполняет очередь, пока она не полна.
// Это естественный повтор после транзиентных ошибок и после «Queue Empty».
func (s *Session) poll(ctx context.Context) {
	const op = "internal/session/poll"

	lg := log.From(ctx)
	lg.Info("queue_poll_start",
		slog.String("op", op),
		slog.Duration("interval", s.opts.PollInterval),
	)

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			lg.Info("queue_poll_stop", slog.String("op", op))
			return
		case <-ticker.C:
			if _, ok := s.queue.Current(); ok && s.queue.Len() >= s.queue.Capacity() {
				continue
			}
			if err := s.queue.Pump(ctx); err != nil && ctx.Err() == nil {
				lg.Warn("queue_poll_tick_error",
					slog.String("op", op),
					slog.String("err", err.Error()),
				)
			}
		}
	}
}

// Wait дожидается фонового опроса (после отмены контекста Start) и отправок решений.
func (s *Session) Wait() {
	s.wg.Wait()
	s.dispatcher.Wait()
}

// ReviewView — состояние экрана ревью.
type ReviewView struct {
	Current  *models.ReviewItem    `json:"current"`
	Trade    *models.TradeMetadata `json:"trade,omitempty"`
	Buffered int                   `json:"buffered"`
	Capacity int                   `json:"capacity"`
	State    string                `json:"state"`
	Pending  int                   `json:"pending"`
	Stats    *models.Stats         `json:"stats,omitempty"`
	Bound    string                `json:"bound,omitempty"`
	Alerts   int                   `json:"alerts"`
}

// Review возвращает состояние экрана ревью.
func (s *Session) Review() ReviewView {
	snap := s.queue.Snapshot()
	v := ReviewView{
		Current:  snap.Current,
		Buffered: len(snap.Buffered),
		Capacity: snap.Capacity,
		State:    s.dispatcher.State().String(),
		Pending:  s.dispatcher.Pending(),
		Bound:    s.keyboard.Bound(),
		Alerts:   s.alerts.Len(),
	}
	if snap.Current != nil {
		if tr, err := snap.Current.Trade(); err == nil {
			v.Trade = &tr
		}
	}
	if st, ok := s.dispatcher.Stats(); ok {
		v.Stats = &st
	}

	return v
}

// Decide — решение по отображаемому элементу.
func (s *Session) Decide(ctx context.Context, action models.Action) (models.Decision, error) {
	return s.dispatcher.Decide(ctx, action)
}

// Press — нажатие клавиши.
func (s *Session) Press(ctx context.Context, key string) (models.Decision, error) {
	return s.keyboard.Press(ctx, key)
}

// Stats возвращает счётчики; sync=true или отсутствие кэша — запрос к бэкенду.
func (s *Session) Stats(ctx context.Context, sync bool) (models.Stats, error) {
	if !sync {
		if st, ok := s.dispatcher.Stats(); ok {
			return st, nil
		}
	}

	return s.dispatcher.SyncStats(ctx)
}

// Media открывает скриншот сделки.
func (s *Session) Media(ctx context.Context, filename string) (clients.Blob, error) {
	return s.backend.Media(ctx, filename)
}

// Thumbnail открывает миниатюру предмета.
func (s *Session) Thumbnail(ctx context.Context, id string) (clients.Blob, error) {
	return s.backend.Thumbnail(ctx, id)
}

// ThumbnailFallback — адрес заглушки для миниатюр.
func (s *Session) ThumbnailFallback() string { return s.opts.ThumbnailFallback }

// HistoryView — состояние ленты для отображения (от старых к новым).
type HistoryView struct {
	Records      []models.HistoryRecord `json:"records"`
	HasMore      bool                   `json:"has_more"`
	Filter       models.Filter          `json:"filter"`
	Loading      bool                   `json:"loading"`
	SnapToBottom bool                   `json:"snap_to_bottom"`
	ScrollTop    float64                `json:"scroll_top"`
	ScrollHeight float64                `json:"scroll_height"`
}

// History возвращает ленту; флаг прокрутки вниз отдаётся один раз.
func (s *Session) History() HistoryView {
	st := s.feed.State()
	top, height := s.view.position()

	recs := make([]models.HistoryRecord, len(st.Records))
	for i, r := range st.Records {
		recs[len(st.Records)-1-i] = r
	}

	return HistoryView{
		Records:      recs,
		HasMore:      st.HasMore,
		Filter:       st.Filter,
		Loading:      st.Loading,
		SnapToBottom: s.feed.ConsumeSnap(),
		ScrollTop:    top,
		ScrollHeight: height,
	}
}

// SetFilter сбрасывает ленту под новый фильтр.
func (s *Session) SetFilter(ctx context.Context, filter models.Filter) (feed.Outcome, error) {
	s.sentinel.Reset()
	return s.feed.LoadInitial(ctx, filter)
}

// LoadOlder — явная загрузка более старой страницы.
// Пустая лента без курсора перезагружается первой страницей текущего фильтра.
func (s *Session) LoadOlder(ctx context.Context) (feed.Outcome, error) {
	out, err := s.feed.LoadOlder(ctx)
	if out == feed.OutcomeSkippedNoCursor {
		return s.feed.LoadInitial(ctx, s.feed.Filter())
	}

	return out, err
}

// ObserveSentinel передаёт видимость сентинела; scrollTop (если задан) —
// смещение прокрутки, о котором сообщил слой отображения.
func (s *Session) ObserveSentinel(ctx context.Context, visible bool, scrollTop *float64) (bool, feed.Outcome, error) {
	if scrollTop != nil {
		s.view.scrollTo(*scrollTop)
	}

	return s.sentinel.Observe(ctx, visible)
}

// Autofill запрашивает у бэкенда черновик сделки по записи истории.
func (s *Session) Autofill(ctx context.Context, ts models.Timestamp) (models.TradeDraft, error) {
	const op = "internal/session/Autofill"

	if _, ok := s.feed.Find(ts); !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNotInFeed)
	}

	draft, err := s.backend.Autofill(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return draft, nil
}

// Confirm подтверждает запись истории; ошибка выносится на доску алертов.
func (s *Session) Confirm(ctx context.Context, ts models.Timestamp) error {
	const op = "internal/session/Confirm"

	if _, ok := s.feed.Find(ts); !ok {
		return fmt.Errorf("%s: %w", op, ErrNotInFeed)
	}

	if err := s.backend.Confirm(ctx, ts); err != nil {
		a := s.alerts.PostConfirm(err.Error(), ts)
		log.From(ctx).Error("history_confirm_failed",
			slog.String("op", op),
			slog.String("timestamp", ts.String()),
			slog.String("alert_id", a.ID.String()),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("history_confirmed",
		slog.String("op", op),
		slog.String("timestamp", ts.String()),
	)

	return nil
}

// Alerts — список алертов.
func (s *Session) Alerts() []alerts.Alert { return s.alerts.List() }

// DismissAlert снимает алерт.
func (s *Session) DismissAlert(id uuid.UUID) error {
	const op = "internal/session/DismissAlert"

	if err := s.alerts.Dismiss(id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RetryAlert повторяет операцию, ставшую причиной алерта.
func (s *Session) RetryAlert(ctx context.Context, id uuid.UUID) error {
	const op = "internal/session/RetryAlert"

	a, err := s.alerts.Get(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch a.Kind {
	case alerts.KindConfirm:
		if a.Timestamp == nil {
			return fmt.Errorf("%s: %w", op, alerts.ErrNotFound)
		}
		if err := s.backend.Confirm(ctx, *a.Timestamp); err != nil {
			_, _ = s.alerts.Retried(id, err.Error())
			return fmt.Errorf("%s: %w", op, err)
		}
		_ = s.alerts.Dismiss(id)
		return nil
	default:
		if _, err := s.dispatcher.Retry(ctx, id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}
}
