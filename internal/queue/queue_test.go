package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/go-review-desk/internal/models"
	"github.com/pribylovaa/go-review-desk/mocks"
	"github.com/stretchr/testify/require"
)

// Файл unit-тестов буфера предзагрузки.
//
// Покрываем:
//  - single-flight: не более одного запроса в полёте;
//  - множество исключений = буфер ∪ отображаемый элемент;
//  - полный буфер -> без сетевого вызова;
//  - пустой источник / ошибка источника -> состояние не меняется, флаг снят;
//  - ConsumeHead / Take / Requeue / Pump.

func item(name string) models.ReviewItem {
	return models.ReviewItem{Filename: name}
}

func newQueue(t *testing.T, src ItemSource, capacity int) *Queue {
	t.Helper()
	q, err := New(src, Options{Capacity: capacity})
	require.NoError(t, err)
	return q
}

func TestNew_Capacity(t *testing.T) {
	t.Parallel()

	q, err := New(nil, Options{})
	require.NoError(t, err)
	require.Equal(t, DefaultCapacity, q.Capacity())

	_, err = New(nil, Options{Capacity: -1})
	require.ErrorIs(t, err, ErrInvalidCapacity)
	_, err = New(nil, Options{Capacity: MaxCapacity + 1})
	require.ErrorIs(t, err, ErrInvalidCapacity)
}

// TestRefill_ThreeSequential_FillsBufferWithDistinctItems — три последовательных
// Refill наполняют пустой буфер ёмкости 3 тремя разными элементами.
func TestRefill_ThreeSequential_FillsBufferWithDistinctItems(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mocks.NewMockItemSource(ctrl)
	gomock.InOrder(
		src.EXPECT().Next(gomock.Any(), []string{}).Return(item("a"), true, nil),
		src.EXPECT().Next(gomock.Any(), []string{"a"}).Return(item("b"), true, nil),
		src.EXPECT().Next(gomock.Any(), []string{"a", "b"}).Return(item("c"), true, nil),
	)

	q := newQueue(t, src, 3)
	for i := 0; i < 3; i++ {
		out, err := q.Refill(context.Background())
		require.NoError(t, err)
		require.Equal(t, OutcomeAppended, out)
	}

	require.Equal(t, []models.ReviewItem{item("a"), item("b"), item("c")}, q.Buffered())

	// Полный буфер — сеть не трогается.
	out, err := q.Refill(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeSkippedFull, out)
}

// TestRefill_ExclusionIncludesDisplayed — в исключения попадает и отображаемый элемент.
func TestRefill_ExclusionIncludesDisplayed(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mocks.NewMockItemSource(ctrl)
	gomock.InOrder(
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("a"), true, nil),
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("b"), true, nil),
		src.EXPECT().Next(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, exclude []string) (models.ReviewItem, bool, error) {
				require.ElementsMatch(t, []string{"a", "b"}, exclude)
				return item("c"), true, nil
			}),
	)

	q := newQueue(t, src, 3)
	_, err := q.Refill(context.Background())
	require.NoError(t, err)

	got, ok := q.ConsumeHead()
	require.True(t, ok)
	require.Equal(t, "a", got.Filename)

	_, err = q.Refill(context.Background())
	require.NoError(t, err)
	_, err = q.Refill(context.Background())
	require.NoError(t, err)

	cur, ok := q.Current()
	require.True(t, ok)
	require.Equal(t, "a", cur.Filename)
	require.Equal(t, 2, q.Len())
}

// blockingSource — источник, удерживающий запрос до release.
type blockingSource struct {
	mu          sync.Mutex
	calls       int
	outstanding int
	maxOut      int
	started     chan struct{}
	release     chan struct{}
}

func newBlockingSource() *blockingSource {
	return &blockingSource{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (s *blockingSource) Next(ctx context.Context, _ []string) (models.ReviewItem, bool, error) {
	s.mu.Lock()
	s.calls++
	s.outstanding++
	if s.outstanding > s.maxOut {
		s.maxOut = s.outstanding
	}
	n := s.calls
	s.mu.Unlock()

	s.started <- struct{}{}
	<-s.release

	s.mu.Lock()
	s.outstanding--
	s.mu.Unlock()

	return item(fmt.Sprintf("item-%d", n)), true, nil
}

// TestRefill_SingleFlight — Refill во время незавершённого Refill — no-op без сетевого вызова.
func TestRefill_SingleFlight(t *testing.T) {
	t.Parallel()

	src := newBlockingSource()
	q := newQueue(t, src, 3)

	done := make(chan Outcome, 1)
	go func() {
		out, _ := q.Refill(context.Background())
		done <- out
	}()
	<-src.started
	require.True(t, q.Fetching())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := q.Refill(context.Background())
			require.NoError(t, err)
			require.Equal(t, OutcomeSkippedInFlight, out)
		}()
	}
	wg.Wait()

	close(src.release)
	require.Equal(t, OutcomeAppended, <-done)
	require.False(t, q.Fetching())

	src.mu.Lock()
	defer src.mu.Unlock()
	require.Equal(t, 1, src.calls)
	require.Equal(t, 1, src.maxOut)
}

// TestRefill_ConcurrentCallers_NeverOverlap — при конкурентных вызовах в полёте
// никогда не больше одного запроса.
func TestRefill_ConcurrentCallers_NeverOverlap(t *testing.T) {
	t.Parallel()

	src := newBlockingSource()
	close(src.release)
	q := newQueue(t, src, MaxCapacity)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = q.Refill(context.Background())
		}()
	}
	wg.Wait()

	src.mu.Lock()
	defer src.mu.Unlock()
	require.Equal(t, 1, src.maxOut)
	require.Equal(t, src.calls, q.Len())
}

// TestRefill_Exhausted_DoesNotGrow — пустой ответ: буфер не растёт, повторные вызовы тоже.
func TestRefill_Exhausted_DoesNotGrow(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mocks.NewMockItemSource(ctrl)
	src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(models.ReviewItem{}, false, nil).Times(3)
	src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("late"), true, nil)

	q := newQueue(t, src, 3)
	for i := 0; i < 3; i++ {
		out, err := q.Refill(context.Background())
		require.NoError(t, err)
		require.Equal(t, OutcomeExhausted, out)
		require.Equal(t, 0, q.Len())
		require.False(t, q.Fetching())
	}

	out, err := q.Refill(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeAppended, out)
	require.Equal(t, 1, q.Len())
}

// TestRefill_Failure_ReleasesFlagAndKeepsState — ошибка источника снимает флаг,
// буфер не меняется, следующий вызов снова идёт в сеть.
func TestRefill_Failure_ReleasesFlagAndKeepsState(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("connection reset")
	src := mocks.NewMockItemSource(ctrl)
	gomock.InOrder(
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(models.ReviewItem{}, false, boom),
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("a"), true, nil),
	)

	q := newQueue(t, src, 3)
	out, err := q.Refill(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, OutcomeFailed, out)
	require.False(t, q.Fetching())
	require.Equal(t, 0, q.Len())

	out, err = q.Refill(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeAppended, out)
}

// TestRefill_DuplicateFromBackend_IsKept — бэкенд, игнорирующий исключения,
// может вернуть дубль; клиент его не скрывает.
func TestRefill_DuplicateFromBackend_IsKept(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mocks.NewMockItemSource(ctrl)
	src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("a"), true, nil).Times(2)

	q := newQueue(t, src, 3)
	_, err := q.Refill(context.Background())
	require.NoError(t, err)
	_, err = q.Refill(context.Background())
	require.NoError(t, err)

	require.Equal(t, []models.ReviewItem{item("a"), item("a")}, q.Buffered())
}

// TestRefill_RequeueWhileInFlight_NoDuplicate — элемент, возвращённый через Requeue,
// пока запрос был в полёте, не попадает в буфер второй раз.
func TestRefill_RequeueWhileInFlight_NoDuplicate(t *testing.T) {
	t.Parallel()

	src := newBlockingSource()
	q := newQueue(t, src, 3)

	done := make(chan Outcome, 1)
	go func() {
		out, _ := q.Refill(context.Background())
		done <- out
	}()
	<-src.started

	// Исключения запроса пусты; бэкенд честно вернёт тот же элемент.
	require.True(t, q.Requeue(item("item-1")))
	close(src.release)

	require.Equal(t, OutcomeSkippedDuplicate, <-done)
	require.Equal(t, []models.ReviewItem{item("item-1")}, q.Buffered())
	require.False(t, q.Fetching())
	require.Equal(t, "skipped_duplicate", OutcomeSkippedDuplicate.String())
}

func TestConsumeHead(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mocks.NewMockItemSource(ctrl)
	gomock.InOrder(
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("a"), true, nil),
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("b"), true, nil),
	)

	q := newQueue(t, src, 3)

	_, ok := q.ConsumeHead()
	require.False(t, ok, "empty buffer")

	_, _ = q.Refill(context.Background())
	_, _ = q.Refill(context.Background())

	got, ok := q.ConsumeHead()
	require.True(t, ok)
	require.Equal(t, "a", got.Filename)

	_, ok = q.ConsumeHead()
	require.False(t, ok, "display slot occupied")
	require.Equal(t, []models.ReviewItem{item("b")}, q.Buffered())
}

func TestTake_OnlyMatchingIdentity(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mocks.NewMockItemSource(ctrl)
	src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("a"), true, nil)

	q := newQueue(t, src, 1)
	_, _ = q.Refill(context.Background())
	q.ConsumeHead()

	_, ok := q.Take("b")
	require.False(t, ok)

	got, ok := q.Take("a")
	require.True(t, ok)
	require.Equal(t, "a", got.Filename)

	_, ok = q.Current()
	require.False(t, ok)
}

func TestRequeue_DedupAndOverflow(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mocks.NewMockItemSource(ctrl)
	gomock.InOrder(
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("a"), true, nil),
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("b"), true, nil),
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("c"), true, nil),
	)

	q := newQueue(t, src, 2)
	_, _ = q.Refill(context.Background())
	q.ConsumeHead()
	_, _ = q.Refill(context.Background())
	_, _ = q.Refill(context.Background())

	require.False(t, q.Requeue(item("a")), "displayed identity")
	require.False(t, q.Requeue(item("b")), "buffered identity")

	require.True(t, q.Requeue(item("x")))
	require.Equal(t, []models.ReviewItem{item("x"), item("b")}, q.Buffered())
}

// TestRefill_RequeueWhileInFlight_DropsFetchedWhenFull — Requeue занял последнее
// место, пока запрос был в полёте: ответ не переполняет буфер.
func TestRefill_RequeueWhileInFlight_DropsFetchedWhenFull(t *testing.T) {
	t.Parallel()

	src := newBlockingSource()
	q := newQueue(t, src, 1)

	done := make(chan Outcome, 1)
	go func() {
		out, _ := q.Refill(context.Background())
		done <- out
	}()
	<-src.started

	require.True(t, q.Requeue(item("back")))
	close(src.release)

	require.Equal(t, OutcomeSkippedFull, <-done)
	require.Equal(t, []models.ReviewItem{item("back")}, q.Buffered())
}

func TestPump_FillsDisplayAndBuffer(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mocks.NewMockItemSource(ctrl)
	gomock.InOrder(
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("a"), true, nil),
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("b"), true, nil),
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("c"), true, nil),
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("d"), true, nil),
	)

	q := newQueue(t, src, 3)
	require.NoError(t, q.Pump(context.Background()))

	cur, ok := q.Current()
	require.True(t, ok)
	require.Equal(t, "a", cur.Filename)
	require.Equal(t, []models.ReviewItem{item("b"), item("c"), item("d")}, q.Buffered())
}

func TestPump_StopsOnExhaustedAndError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("boom")
	src := mocks.NewMockItemSource(ctrl)
	gomock.InOrder(
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("a"), true, nil),
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(models.ReviewItem{}, false, nil),
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(models.ReviewItem{}, false, boom),
	)

	q := newQueue(t, src, 3)
	require.NoError(t, q.Pump(context.Background()))
	_, ok := q.Current()
	require.True(t, ok)
	require.Equal(t, 0, q.Len())

	require.ErrorIs(t, q.Pump(context.Background()), boom)
}

func TestPump_CanceledContext(t *testing.T) {
	t.Parallel()

	q := newQueue(t, nil, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, q.Pump(ctx), context.Canceled)
}

func TestOnChange_VersionIsMonotonic(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mocks.NewMockItemSource(ctrl)
	src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("a"), true, nil)

	q := newQueue(t, src, 3)

	var versions []uint64
	var current []string
	q.OnChange(func(s Snapshot) {
		versions = append(versions, s.Version)
		if s.Current != nil {
			current = append(current, s.Current.Filename)
		} else {
			current = append(current, "")
		}
	})

	_, _ = q.Refill(context.Background())
	q.ConsumeHead()
	q.Take("a")

	require.Equal(t, []uint64{1, 2, 3}, versions)
	require.Equal(t, []string{"", "a", ""}, current)
}

type recMetrics struct {
	mu       sync.Mutex
	outcomes []string
	buffered []int
}

func (m *recMetrics) ObserveRefill(outcome string, _ time.Duration) {
	m.mu.Lock()
	m.outcomes = append(m.outcomes, outcome)
	m.mu.Unlock()
}

func (m *recMetrics) SetBuffered(n int) {
	m.mu.Lock()
	m.buffered = append(m.buffered, n)
	m.mu.Unlock()
}

func TestRefill_ReportsMetrics(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mocks.NewMockItemSource(ctrl)
	gomock.InOrder(
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(item("a"), true, nil),
		src.EXPECT().Next(gomock.Any(), gomock.Any()).Return(models.ReviewItem{}, false, nil),
	)

	m := &recMetrics{}
	q, err := New(src, Options{Capacity: 2, Metrics: m})
	require.NoError(t, err)

	_, _ = q.Refill(context.Background())
	_, _ = q.Refill(context.Background())

	require.Equal(t, []string{"appended", "exhausted"}, m.outcomes)
	require.Equal(t, []int{1}, m.buffered)
}

func TestDiscard_RemovesFromBufferAndDisplay(t *testing.T) {
	t.Parallel()

	q := newQueue(t, nil, 3)
	require.True(t, q.Requeue(item("c")))
	require.True(t, q.Requeue(item("b")))
	require.True(t, q.Requeue(item("a")))
	q.ConsumeHead()

	require.True(t, q.Discard("b"))
	require.Equal(t, []models.ReviewItem{item("c")}, q.Buffered())

	require.True(t, q.Discard("a"))
	_, ok := q.Current()
	require.False(t, ok)

	require.False(t, q.Discard("zzz"))
}
