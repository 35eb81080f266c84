// queue реализует буфер предзагрузки элементов на ревью.
//
// Особенности:
//   - не более одного запроса «следующий элемент» в полёте (single-flight);
//   - множество исключений = буфер ∪ отображаемый элемент на момент вызова;
//   - слот отображения — отдельная ячейка, элемент перемещается в неё из головы буфера.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/pribylovaa/go-review-desk/internal/models"
	"github.com/pribylovaa/go-review-desk/pkg/log"
)

const (
	DefaultCapacity = 3
	MaxCapacity     = 16
)

// ErrInvalidCapacity — ёмкость вне допустимого диапазона.
var ErrInvalidCapacity = errors.New("queue: capacity must be in [1, 16]")

// ItemSource — источник элементов (бэкенд).
// ok=false без ошибки означает, что элементов больше нет.
type ItemSource interface {
	Next(ctx context.Context, exclude []string) (item models.ReviewItem, ok bool, err error)
}

// Metrics — наблюдатель за работой очереди.
type Metrics interface {
	ObserveRefill(outcome string, dur time.Duration)
	SetBuffered(n int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveRefill(string, time.Duration) {}
func (nopMetrics) SetBuffered(int)                     {}

// Outcome — результат одного вызова Refill.
type Outcome int

const (
	OutcomeAppended Outcome = iota
	OutcomeExhausted
	OutcomeFailed
	OutcomeSkippedInFlight
	OutcomeSkippedFull
	// OutcomeSkippedDuplicate — пока запрос был в полёте, элемент с той же
	// идентичностью вернулся в очередь через Requeue.
	OutcomeSkippedDuplicate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAppended:
		return "appended"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkippedInFlight:
		return "skipped_in_flight"
	case OutcomeSkippedFull:
		return "skipped_full"
	case OutcomeSkippedDuplicate:
		return "skipped_duplicate"
	default:
		return "unknown"
	}
}

// Options — параметры очереди.
type Options struct {
	Capacity int
	Metrics  Metrics
}

// Snapshot — согласованный срез состояния очереди.
// Version монотонно растёт с каждой мутацией буфера или слота отображения.
type Snapshot struct {
	Current  *models.ReviewItem
	Buffered []models.ReviewItem
	Fetching bool
	Capacity int
	Version  uint64
}

// Queue — буфер предзагрузки со слотом отображения.
type Queue struct {
	src      ItemSource
	capacity int
	metrics  Metrics

	mu       sync.Mutex
	buffer   []models.ReviewItem
	current  *models.ReviewItem
	fetching bool
	version  uint64
	hooks    []func(Snapshot)
}

// New создаёт очередь. Capacity == 0 -> DefaultCapacity.
func New(src ItemSource, opts Options) (*Queue, error) {
	capacity := opts.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if capacity < 1 || capacity > MaxCapacity {
		return nil, ErrInvalidCapacity
	}

	m := opts.Metrics
	if m == nil {
		m = nopMetrics{}
	}

	return &Queue{src: src, capacity: capacity, metrics: m}, nil
}

// OnChange регистрирует обработчик изменений состояния.
// Обработчики вызываются вне блокировки в порядке регистрации.
func (q *Queue) OnChange(fn func(Snapshot)) {
	if fn == nil {
		return
	}

	q.mu.Lock()
	q.hooks = append(q.hooks, fn)
	q.mu.Unlock()
}

// Refill запрашивает один элемент у источника и добавляет его в хвост буфера.
//
// Контракт:
//  1. запрос уже в полёте -> OutcomeSkippedInFlight, сеть не трогается;
//  2. буфер полон -> OutcomeSkippedFull, сеть не трогается;
//  3. источник пуст -> OutcomeExhausted (не ошибка);
//  4. ошибка источника -> OutcomeFailed и обёрнутая ошибка, состояние не меняется.
//
// Флаг «в полёте» снимается при любом исходе.
func (q *Queue) Refill(ctx context.Context) (Outcome, error) {
	const op = "internal/queue/Refill"

	q.mu.Lock()
	if q.fetching {
		q.mu.Unlock()
		return OutcomeSkippedInFlight, nil
	}
	if len(q.buffer) >= q.capacity {
		q.mu.Unlock()
		return OutcomeSkippedFull, nil
	}
	q.fetching = true
	exclude := q.identitiesLocked()
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.fetching = false
		q.mu.Unlock()
	}()

	start := time.Now()
	outcome, err := q.fetch(ctx, exclude)
	q.metrics.ObserveRefill(outcome.String(), time.Since(start))

	if err != nil {
		log.From(ctx).Warn("queue_refill_failed",
			slog.String("op", op),
			slog.Int("excluded", len(exclude)),
			slog.String("err", err.Error()),
		)

		return outcome, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Debug("queue_refill",
		slog.String("op", op),
		slog.String("outcome", outcome.String()),
		slog.Int("excluded", len(exclude)),
	)

	return outcome, nil
}

func (q *Queue) fetch(ctx context.Context, exclude []string) (Outcome, error) {
	item, ok, err := q.src.Next(ctx, exclude)
	if err != nil {
		return OutcomeFailed, err
	}
	if !ok {
		return OutcomeExhausted, nil
	}

	q.mu.Lock()
	// Место мог занять Requeue, пока запрос был в полёте.
	if len(q.buffer) >= q.capacity {
		q.mu.Unlock()
		return OutcomeSkippedFull, nil
	}
	// Исключённую идентичность бэкенд вернул сам: такой дубль не скрываем.
	if q.holdsLocked(item.Filename) && !slices.Contains(exclude, item.Filename) {
		q.mu.Unlock()
		return OutcomeSkippedDuplicate, nil
	}
	q.buffer = append(q.buffer, item)
	q.version++
	snap := q.snapshotLocked()
	q.mu.Unlock()

	q.notify(snap)
	return OutcomeAppended, nil
}

// ConsumeHead перемещает голову буфера в пустой слот отображения.
// Возвращает отображаемый элемент и true, если перемещение произошло.
func (q *Queue) ConsumeHead() (models.ReviewItem, bool) {
	q.mu.Lock()
	if q.current != nil || len(q.buffer) == 0 {
		q.mu.Unlock()
		return models.ReviewItem{}, false
	}

	head := q.buffer[0]
	q.buffer[0] = models.ReviewItem{}
	q.buffer = q.buffer[1:]
	q.current = &head
	q.version++
	snap := q.snapshotLocked()
	q.mu.Unlock()

	q.notify(snap)
	return head, true
}

// Take освобождает слот отображения, если в нём элемент с данной идентичностью.
func (q *Queue) Take(filename string) (models.ReviewItem, bool) {
	q.mu.Lock()
	if q.current == nil || q.current.Filename != filename {
		q.mu.Unlock()
		return models.ReviewItem{}, false
	}

	item := *q.current
	q.current = nil
	q.version++
	snap := q.snapshotLocked()
	q.mu.Unlock()

	q.notify(snap)
	return item, true
}

// Requeue возвращает элемент в голову буфера, если его идентичность ещё не занята.
// При переполнении из хвоста вытесняется последний элемент: он не обработан и
// будет выдан бэкендом повторно.
func (q *Queue) Requeue(item models.ReviewItem) bool {
	q.mu.Lock()
	if q.holdsLocked(item.Filename) {
		q.mu.Unlock()
		return false
	}

	q.buffer = append([]models.ReviewItem{item}, q.buffer...)
	if len(q.buffer) > q.capacity {
		q.buffer = q.buffer[:q.capacity]
	}
	q.version++
	snap := q.snapshotLocked()
	q.mu.Unlock()

	q.notify(snap)
	return true
}

// Discard убирает элемент с данной идентичностью из буфера или слота отображения.
func (q *Queue) Discard(filename string) bool {
	q.mu.Lock()
	found := false
	if q.current != nil && q.current.Filename == filename {
		q.current = nil
		found = true
	}
	kept := q.buffer[:0]
	for _, it := range q.buffer {
		if it.Filename == filename {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	for i := len(kept); i < len(q.buffer); i++ {
		q.buffer[i] = models.ReviewItem{}
	}
	q.buffer = kept
	if !found {
		q.mu.Unlock()
		return false
	}
	q.version++
	snap := q.snapshotLocked()
	q.mu.Unlock()

	q.notify(snap)
	return true
}

// Pump заполняет слот отображения и последовательно дозаполняет буфер до ёмкости.
// Останавливается на первом исходе, отличном от OutcomeAppended.
func (q *Queue) Pump(ctx context.Context) error {
	q.ConsumeHead()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		outcome, err := q.Refill(ctx)
		q.ConsumeHead()
		if err != nil {
			return err
		}
		if outcome != OutcomeAppended {
			return nil
		}
	}
}

// Current возвращает отображаемый элемент.
func (q *Queue) Current() (models.ReviewItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current == nil {
		return models.ReviewItem{}, false
	}

	return *q.current, true
}

// Buffered возвращает копию буфера (голова первой).
func (q *Queue) Buffered() []models.ReviewItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	return append([]models.ReviewItem(nil), q.buffer...)
}

// Len — число элементов в буфере (без слота отображения).
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.buffer)
}

// Capacity — ёмкость буфера.
func (q *Queue) Capacity() int { return q.capacity }

// Fetching — есть ли запрос в полёте.
func (q *Queue) Fetching() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.fetching
}

// Snapshot возвращает согласованный срез состояния.
func (q *Queue) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.snapshotLocked()
}

func (q *Queue) identitiesLocked() []string {
	ids := make([]string, 0, len(q.buffer)+1)
	for _, it := range q.buffer {
		ids = append(ids, it.Filename)
	}
	if q.current != nil {
		ids = append(ids, q.current.Filename)
	}

	return ids
}

func (q *Queue) holdsLocked(filename string) bool {
	if q.current != nil && q.current.Filename == filename {
		return true
	}
	for _, it := range q.buffer {
		if it.Filename == filename {
			return true
		}
	}

	return false
}

func (q *Queue) snapshotLocked() Snapshot {
	s := Snapshot{
		Buffered: append([]models.ReviewItem(nil), q.buffer...),
		Fetching: q.fetching,
		Capacity: q.capacity,
		Version:  q.version,
	}
	if q.current != nil {
		cur := *q.current
		s.Current = &cur
	}

	return s
}

func (q *Queue) notify(s Snapshot) {
	q.metrics.SetBuffered(len(s.Buffered))

	q.mu.Lock()
	hooks := make([]func(Snapshot), len(q.hooks))
	copy(hooks, q.hooks)
	q.mu.Unlock()

	for _, fn := range hooks {
		fn(s)
	}
}
