// dispatch реализует диспетчер решений оператора.
//
// Основные идеи:
//   - оптимистичный UI: слот отображения освобождается сразу, следующий элемент
//     показывается без ожидания сети;
//   - решение отправляется асинхронно, после успеха пересинхронизируются счётчики;
//   - ошибка отправки не ретраится автоматически и выносится на доску алертов;
//     политика requeue дополнительно возвращает элемент в очередь;
//   - Retry — ручное восстановление с тем же ключом идемпотентности.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-review-desk/internal/alerts"
	"github.com/pribylovaa/go-review-desk/internal/models"
	"github.com/pribylovaa/go-review-desk/internal/queue"
	"github.com/pribylovaa/go-review-desk/pkg/log"
)

var (
	// ErrNoItem — нет отображаемого элемента.
	ErrNoItem = errors.New("no item displayed")
	// ErrBusy — решение ещё в полёте, ввод заблокирован.
	ErrBusy = errors.New("decision in flight")
	// ErrStaleBinding — элемент уже не отображается.
	ErrStaleBinding = errors.New("item is no longer displayed")
	// ErrNoDecision — алерт не несёт решения для повторной отправки.
	ErrNoDecision = errors.New("alert carries no decision")
	// ErrInvalidPolicy — неизвестная политика обработки ошибок.
	ErrInvalidPolicy = errors.New("invalid failure policy")
)

// DecisionSink — получатель решений (бэкенд).
type DecisionSink interface {
	Submit(ctx context.Context, d models.Decision) error
}

// StatsSource — источник агрегированных счётчиков.
type StatsSource interface {
	Stats(ctx context.Context) (models.Stats, error)
}

// Metrics — наблюдатель за отправкой решений.
type Metrics interface {
	ObserveDecision(action, result string, dur time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) ObserveDecision(string, string, time.Duration) {}

// Policy — реакция на ошибку отправки решения.
type Policy string

const (
	// PolicyAlert — только алерт оператору.
	PolicyAlert Policy = "alert"
	// PolicyRequeue — алерт и возврат элемента в голову очереди.
	PolicyRequeue Policy = "requeue"
)

// ParsePolicy разбирает политику; пустая строка -> PolicyAlert.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyAlert:
		return PolicyAlert, nil
	case PolicyRequeue:
		return PolicyRequeue, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// State — фаза цикла ревью.
type State int

const (
	StateIdle State = iota
	StateAwaitingDisplay
	StateReady
	StateDispatching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingDisplay:
		return "awaiting_display"
	case StateReady:
		return "ready"
	case StateDispatching:
		return "dispatching"
	default:
		return "unknown"
	}
}

// Options — параметры диспетчера.
type Options struct {
	LockWhileDispatching bool
	OnFailure            Policy
	Alerts               *alerts.Board
	Metrics              Metrics
}

// Dispatcher — диспетчер решений над очередью предзагрузки.
type Dispatcher struct {
	q     *queue.Queue
	sink  DecisionSink
	stats StatsSource
	opts  Options

	wg sync.WaitGroup

	mu        sync.Mutex
	pending   int
	last      models.Stats
	haveStats bool
}

// New создаёт диспетчер.
func New(q *queue.Queue, sink DecisionSink, stats StatsSource, opts Options) *Dispatcher {
	if opts.OnFailure == "" {
		opts.OnFailure = PolicyAlert
	}
	if opts.Alerts == nil {
		opts.Alerts = alerts.New(0)
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}

	return &Dispatcher{q: q, sink: sink, stats: stats, opts: opts}
}

// Alerts — доска алертов диспетчера.
func (d *Dispatcher) Alerts() *alerts.Board { return d.opts.Alerts }

// State выводит фазу из состояния очереди и отправок в полёте.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	pending := d.pending
	d.mu.Unlock()

	snap := d.q.Snapshot()
	switch {
	case pending > 0 && (d.opts.LockWhileDispatching || snap.Current == nil):
		return StateDispatching
	case snap.Current != nil:
		return StateReady
	case len(snap.Buffered) > 0 || snap.Fetching:
		return StateAwaitingDisplay
	default:
		return StateIdle
	}
}

// Pending — число решений в полёте.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pending
}

// Decide принимает решение по отображаемому элементу.
func (d *Dispatcher) Decide(ctx context.Context, action models.Action) (models.Decision, error) {
	const op = "internal/dispatch/Decide"

	cur, ok := d.q.Current()
	if !ok {
		return models.Decision{}, fmt.Errorf("%s: %w", op, ErrNoItem)
	}

	dec, err := d.decide(ctx, cur.Filename, action)
	if errors.Is(err, ErrStaleBinding) {
		return models.Decision{}, fmt.Errorf("%s: %w", op, ErrNoItem)
	}
	if err != nil {
		return models.Decision{}, fmt.Errorf("%s: %w", op, err)
	}

	return dec, nil
}

// DecideFor принимает решение по элементу filename, только если он всё ещё отображается.
func (d *Dispatcher) DecideFor(ctx context.Context, filename string, action models.Action) (models.Decision, error) {
	const op = "internal/dispatch/DecideFor"

	if filename == "" {
		return models.Decision{}, fmt.Errorf("%s: %w", op, ErrNoItem)
	}

	dec, err := d.decide(ctx, filename, action)
	if err != nil {
		return models.Decision{}, fmt.Errorf("%s: %w", op, err)
	}

	return dec, nil
}

func (d *Dispatcher) decide(ctx context.Context, filename string, action models.Action) (models.Decision, error) {
	d.mu.Lock()
	if d.opts.LockWhileDispatching && d.pending > 0 {
		d.mu.Unlock()
		return models.Decision{}, ErrBusy
	}

	item, ok := d.q.Take(filename)
	if !ok {
		d.mu.Unlock()
		return models.Decision{}, ErrStaleBinding
	}
	d.pending++
	d.wg.Add(2)
	d.mu.Unlock()

	dec := models.NewDecision(item, action)

	// Следующий элемент показывается сразу, без ожидания сети.
	d.q.ConsumeHead()

	bg := context.WithoutCancel(ctx)
	log.From(ctx).Info("decision_dispatched",
		slog.String("filename", dec.Filename),
		slog.String("action", string(dec.Action)),
		slog.String("decision_id", dec.ID.String()),
	)

	go d.submit(bg, dec)
	go d.pump(bg)

	return dec, nil
}

func (d *Dispatcher) submit(ctx context.Context, dec models.Decision) {
	const op = "internal/dispatch/submit"

	defer d.wg.Done()
	defer func() {
		d.mu.Lock()
		d.pending--
		d.mu.Unlock()
	}()

	start := time.Now()
	err := d.sink.Submit(ctx, dec)
	if err != nil {
		d.opts.Metrics.ObserveDecision(string(dec.Action), "failed", time.Since(start))
		d.fail(ctx, dec, err)
		return
	}
	d.opts.Metrics.ObserveDecision(string(dec.Action), "ok", time.Since(start))

	if _, err := d.SyncStats(ctx); err != nil {
		log.From(ctx).Warn("stats_sync_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}
}

func (d *Dispatcher) fail(ctx context.Context, dec models.Decision, err error) {
	const op = "internal/dispatch/fail"

	a := d.opts.Alerts.Post(alerts.KindDecision, err.Error(), &dec)

	requeued := false
	if d.opts.OnFailure == PolicyRequeue {
		requeued = d.q.Requeue(dec.Item())
		d.q.ConsumeHead()
	}

	log.From(ctx).Error("decision_submit_failed",
		slog.String("op", op),
		slog.String("filename", dec.Filename),
		slog.String("decision_id", dec.ID.String()),
		slog.String("alert_id", a.ID.String()),
		slog.Bool("requeued", requeued),
		slog.String("err", err.Error()),
	)
}

func (d *Dispatcher) pump(ctx context.Context) {
	const op = "internal/dispatch/pump"

	defer d.wg.Done()

	if err := d.q.Pump(ctx); err != nil {
		log.From(ctx).Warn("queue_pump_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}
}

// Retry повторно отправляет решение из алерта с тем же ключом идемпотентности.
// Успех снимает алерт и убирает из очереди возвращённую туда копию элемента.
func (d *Dispatcher) Retry(ctx context.Context, alertID uuid.UUID) (models.Decision, error) {
	const op = "internal/dispatch/Retry"

	a, err := d.opts.Alerts.Get(alertID)
	if err != nil {
		return models.Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	if a.Decision == nil {
		return models.Decision{}, fmt.Errorf("%s: %w", op, ErrNoDecision)
	}
	dec := *a.Decision

	start := time.Now()
	if err := d.sink.Submit(ctx, dec); err != nil {
		d.opts.Metrics.ObserveDecision(string(dec.Action), "failed", time.Since(start))
		_, _ = d.opts.Alerts.Retried(alertID, err.Error())
		return models.Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	d.opts.Metrics.ObserveDecision(string(dec.Action), "ok", time.Since(start))

	_ = d.opts.Alerts.Dismiss(alertID)
	if d.q.Discard(dec.Filename) {
		d.q.ConsumeHead()
	}

	log.From(ctx).Info("decision_retried",
		slog.String("op", op),
		slog.String("filename", dec.Filename),
		slog.String("decision_id", dec.ID.String()),
	)

	if _, err := d.SyncStats(ctx); err != nil {
		log.From(ctx).Warn("stats_sync_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}

	return dec, nil
}

// SyncStats перечитывает счётчики у бэкенда и запоминает их.
func (d *Dispatcher) SyncStats(ctx context.Context) (models.Stats, error) {
	const op = "internal/dispatch/SyncStats"

	st, err := d.stats.Stats(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}

	d.mu.Lock()
	d.last = st
	d.haveStats = true
	d.mu.Unlock()

	return st, nil
}

// Stats возвращает последние синхронизированные счётчики.
func (d *Dispatcher) Stats() (models.Stats, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.last, d.haveStats
}

// Wait дожидается завершения фоновых отправок и дозаполнений очереди.
func (d *Dispatcher) Wait() { d.wg.Wait() }
