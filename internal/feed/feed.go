// feed реализует ленту истории сообщений с обратной курсорной пагинацией.
//
// Особенности:
//   - канонический порядок записей — как отдаёт бэкенд (новые первыми);
//   - курсор — timestamp самой старой записи, страница строго старше курсора;
//   - смена фильтра сбрасывает ленту, ответы прежнего поколения отбрасываются;
//   - не более одной загрузки страницы в полёте.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pribylovaa/go-review-desk/internal/models"
	"github.com/pribylovaa/go-review-desk/pkg/log"
)

const (
	DefaultPageSize   = 50
	DefaultMinRecords = 10
)

// HistorySource — источник страниц истории (бэкенд).
type HistorySource interface {
	Messages(ctx context.Context, q models.HistoryQuery) (models.HistoryPage, error)
}

// Metrics — наблюдатель за загрузкой страниц.
type Metrics interface {
	ObservePage(kind, result string)
	SetRecords(n int)
}

type nopMetrics struct{}

func (nopMetrics) ObservePage(string, string) {}
func (nopMetrics) SetRecords(int)             {}

// Outcome — результат загрузки страницы.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	// OutcomeEmpty — пустая страница: достигнуто начало истории.
	OutcomeEmpty
	// OutcomeStale — ответ относится к сменённому фильтру и отброшен.
	OutcomeStale
	OutcomeFailed
	OutcomeSkippedInFlight
	OutcomeSkippedNoMore
	// OutcomeSkippedNoCursor — лента пуста, курсора нет; восстановление — LoadInitial.
	OutcomeSkippedNoCursor
	// OutcomeNotTriggered — сентинел не инициировал загрузку.
	OutcomeNotTriggered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeEmpty:
		return "empty"
	case OutcomeStale:
		return "stale"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkippedInFlight:
		return "skipped_in_flight"
	case OutcomeSkippedNoMore:
		return "skipped_no_more"
	case OutcomeSkippedNoCursor:
		return "skipped_no_cursor"
	case OutcomeNotTriggered:
		return "not_triggered"
	default:
		return "unknown"
	}
}

// ChangeKind — вид изменения ленты.
type ChangeKind int

const (
	// ChangeReset — лента заменена первой страницей (или очищена).
	ChangeReset ChangeKind = iota
	// ChangeOlder — в прошлое добавлены более старые записи.
	ChangeOlder
)

// Change — уведомление об изменении ленты.
// Added — добавленные записи в каноническом порядке (новые первыми).
// Seq строго растёт в порядке применения изменений к ленте.
type Change struct {
	Kind       ChangeKind
	Added      []models.HistoryRecord
	Generation uint64
	Seq        uint64
	Filter     models.Filter
}

// Options — параметры ленты. Нулевые значения заменяются значениями по умолчанию.
type Options struct {
	PageSize   int
	MinRecords int
	Metrics    Metrics
}

// State — согласованный срез ленты.
type State struct {
	Records    []models.HistoryRecord
	HasMore    bool
	Filter     models.Filter
	Loading    bool
	Generation uint64
}

// Feed — лента истории.
type Feed struct {
	src        HistorySource
	pageSize   int
	minRecords int
	metrics    Metrics

	mu         sync.Mutex
	records    []models.HistoryRecord
	hasMore    bool
	filter     models.Filter
	generation uint64
	seq        uint64
	loading    bool
	loadingGen uint64
	snap       bool
	hooks      []func(Change)
}

// New создаёт ленту с фильтром none и hasMore=true.
func New(src HistorySource, opts Options) *Feed {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MinRecords <= 0 {
		opts.MinRecords = DefaultMinRecords
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}

	return &Feed{
		src:        src,
		pageSize:   opts.PageSize,
		minRecords: opts.MinRecords,
		metrics:    opts.Metrics,
		hasMore:    true,
		filter:     models.FilterNone,
	}
}

// OnChange регистрирует обработчик изменений ленты.
// Обработчики вызываются вне блокировки в порядке регистрации.
func (f *Feed) OnChange(fn func(Change)) {
	if fn == nil {
		return
	}

	f.mu.Lock()
	f.hooks = append(f.hooks, fn)
	f.mu.Unlock()
}

// LoadInitial сбрасывает ленту под фильтр и загружает первую страницу без курсора.
// Когда страница применена, взводится одноразовый флаг прокрутки к последней записи.
func (f *Feed) LoadInitial(ctx context.Context, filter models.Filter) (Outcome, error) {
	const op = "internal/feed/LoadInitial"

	f.mu.Lock()
	f.generation++
	gen := f.generation
	f.filter = filter
	f.records = nil
	f.hasMore = true
	f.snap = false
	f.loading = true
	f.loadingGen = gen
	f.seq++
	resetSeq := f.seq
	f.mu.Unlock()

	f.metrics.SetRecords(0)
	f.notify(Change{Kind: ChangeReset, Generation: gen, Seq: resetSeq, Filter: filter})

	page, err := f.src.Messages(ctx, models.HistoryQuery{Limit: f.pageSize, Filter: filter})

	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		f.metrics.ObservePage("initial", OutcomeStale.String())
		log.From(ctx).Debug("history_page_stale",
			slog.String("op", op),
			slog.Uint64("generation", gen),
		)
		return OutcomeStale, nil
	}
	f.loading = false

	if err != nil {
		f.mu.Unlock()
		f.metrics.ObservePage("initial", OutcomeFailed.String())
		log.From(ctx).Warn("history_page_failed",
			slog.String("op", op),
			slog.String("filter", string(filter)),
			slog.String("err", err.Error()),
		)
		return OutcomeFailed, fmt.Errorf("%s: %w", op, err)
	}

	outcome := OutcomeApplied
	f.records = append([]models.HistoryRecord(nil), page.Records...)
	if len(f.records) == 0 {
		f.hasMore = false
		outcome = OutcomeEmpty
	}
	f.snap = true
	n := len(f.records)
	added := append([]models.HistoryRecord(nil), f.records...)
	f.seq++
	seq := f.seq
	f.mu.Unlock()

	f.metrics.ObservePage("initial", outcome.String())
	f.metrics.SetRecords(n)
	f.notify(Change{Kind: ChangeReset, Added: added, Generation: gen, Seq: seq, Filter: filter})

	log.From(ctx).Debug("history_page_loaded",
		slog.String("op", op),
		slog.String("filter", string(filter)),
		slog.Int("records", n),
	)

	return outcome, nil
}

// LoadOlder загружает страницу записей строго старше самой старой из имеющихся.
//
// Контракт:
//  1. загрузка уже в полёте -> OutcomeSkippedInFlight;
//  2. hasMore=false -> OutcomeSkippedNoMore;
//  3. пустая страница -> hasMore=false, OutcomeEmpty (не ошибка);
//  4. записи не строго старше курсора отбрасываются; если не осталось ни одной,
//     курсор не может продвинуться и hasMore=false;
//  5. ответ сменённого поколения -> OutcomeStale, лента не меняется.
func (f *Feed) LoadOlder(ctx context.Context) (Outcome, error) {
	const op = "internal/feed/LoadOlder"

	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return OutcomeSkippedInFlight, nil
	}
	if !f.hasMore {
		f.mu.Unlock()
		return OutcomeSkippedNoMore, nil
	}
	if len(f.records) == 0 {
		f.mu.Unlock()
		return OutcomeSkippedNoCursor, nil
	}
	gen := f.generation
	filter := f.filter
	cursor := f.records[len(f.records)-1].Timestamp
	f.loading = true
	f.loadingGen = gen
	f.mu.Unlock()

	page, err := f.src.Messages(ctx, models.HistoryQuery{Limit: f.pageSize, Before: cursor, Filter: filter})

	f.mu.Lock()
	if f.loading && f.loadingGen == gen {
		f.loading = false
	}
	if gen != f.generation {
		f.mu.Unlock()
		f.metrics.ObservePage("older", OutcomeStale.String())
		log.From(ctx).Debug("history_page_stale",
			slog.String("op", op),
			slog.Uint64("generation", gen),
		)
		return OutcomeStale, nil
	}

	if err != nil {
		f.mu.Unlock()
		f.metrics.ObservePage("older", OutcomeFailed.String())
		log.From(ctx).Warn("history_page_failed",
			slog.String("op", op),
			slog.String("before", cursor.String()),
			slog.String("err", err.Error()),
		)
		return OutcomeFailed, fmt.Errorf("%s: %w", op, err)
	}

	if len(page.Records) == 0 {
		f.hasMore = false
		f.mu.Unlock()
		f.metrics.ObservePage("older", OutcomeEmpty.String())
		log.From(ctx).Info("history_beginning_reached",
			slog.String("op", op),
			slog.String("filter", string(filter)),
		)
		return OutcomeEmpty, nil
	}

	added := make([]models.HistoryRecord, 0, len(page.Records))
	for _, r := range page.Records {
		if r.Timestamp >= cursor {
			continue
		}
		added = append(added, r)
	}
	if len(added) == 0 {
		f.hasMore = false
		f.mu.Unlock()
		f.metrics.ObservePage("older", OutcomeEmpty.String())
		log.From(ctx).Warn("history_cursor_stuck",
			slog.String("op", op),
			slog.String("before", cursor.String()),
			slog.Int("dropped", len(page.Records)),
		)
		return OutcomeEmpty, nil
	}

	f.records = append(f.records, added...)
	n := len(f.records)
	f.seq++
	seq := f.seq
	f.mu.Unlock()

	f.metrics.ObservePage("older", OutcomeApplied.String())
	f.metrics.SetRecords(n)
	f.notify(Change{Kind: ChangeOlder, Added: append([]models.HistoryRecord(nil), added...), Generation: gen, Seq: seq, Filter: filter})

	log.From(ctx).Debug("history_page_loaded",
		slog.String("op", op),
		slog.String("before", cursor.String()),
		slog.Int("added", len(added)),
		slog.Int("dropped", len(page.Records)-len(added)),
	)

	return OutcomeApplied, nil
}

// Records — записи в каноническом порядке (новые первыми).
func (f *Feed) Records() []models.HistoryRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]models.HistoryRecord(nil), f.records...)
}

// Chronological — записи от старых к новым (порядок отображения).
func (f *Feed) Chronological() []models.HistoryRecord {
	f.mu.Lock()
	defer f.mu.Unlock()

	return reversed(f.records)
}

// Find ищет запись по timestamp.
func (f *Feed) Find(ts models.Timestamp) (models.HistoryRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.records {
		if r.Timestamp == ts {
			return r, true
		}
	}

	return models.HistoryRecord{}, false
}

// State — согласованный срез ленты.
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	return State{
		Records:    append([]models.HistoryRecord(nil), f.records...),
		HasMore:    f.hasMore,
		Filter:     f.filter,
		Loading:    f.loading,
		Generation: f.generation,
	}
}

// Filter — текущий фильтр.
func (f *Feed) Filter() models.Filter {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.filter
}

// Len — число записей.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.records)
}

// MinRecords — минимум записей, после которого сентинел может грузить старые.
func (f *Feed) MinRecords() int { return f.minRecords }

// ConsumeSnap возвращает и сбрасывает одноразовый флаг прокрутки к последней записи.
func (f *Feed) ConsumeSnap() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.snap
	f.snap = false

	return s
}

// CanLoadOlder — нет загрузки в полёте, есть что грузить, записей не меньше минимума.
func (f *Feed) CanLoadOlder() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return !f.loading && f.hasMore && len(f.records) >= f.minRecords
}

func (f *Feed) notify(c Change) {
	f.mu.Lock()
	hooks := make([]func(Change), len(f.hooks))
	copy(hooks, f.hooks)
	f.mu.Unlock()

	for _, fn := range hooks {
		fn(c)
	}
}

func reversed(in []models.HistoryRecord) []models.HistoryRecord {
	out := make([]models.HistoryRecord, len(in))
	for i, r := range in {
		out[len(in)-1-i] = r
	}

	return out
}
