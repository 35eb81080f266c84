package feed

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/go-review-desk/internal/models"
	"github.com/pribylovaa/go-review-desk/mocks"
	"github.com/stretchr/testify/require"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// TestSentinel_TriggersOnlyOnEnter — загрузка только при входе в видимую область.
func TestSentinel_TriggersOnlyOnEnter(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mocks.NewMockHistorySource(ctrl)
	gomock.InOrder(
		src.EXPECT().Messages(gomock.Any(), gomock.Any()).Return(page("p", 100, 20), nil),
		src.EXPECT().Messages(gomock.Any(), gomock.Any()).Return(page("p", 80, 20), nil),
		src.EXPECT().Messages(gomock.Any(), gomock.Any()).Return(page("p", 60, 20), nil),
	)

	f := New(src, Options{MinRecords: 10})
	_, _ = f.LoadInitial(context.Background(), models.FilterNone)
	s := NewSentinel(f)

	triggered, out, err := s.Observe(context.Background(), true)
	require.NoError(t, err)
	require.True(t, triggered)
	require.Equal(t, OutcomeApplied, out)

	// Остаётся видимым — повторной загрузки нет.
	triggered, out, _ = s.Observe(context.Background(), true)
	require.False(t, triggered)
	require.Equal(t, OutcomeNotTriggered, out)

	triggered, _, _ = s.Observe(context.Background(), false)
	require.False(t, triggered)

	triggered, out, err = s.Observe(context.Background(), true)
	require.NoError(t, err)
	require.True(t, triggered)
	require.Equal(t, OutcomeApplied, out)
	require.Equal(t, 60, f.Len())
}

// TestSentinel_MinRecordsGuard — сразу после короткой первой страницы загрузки нет.
func TestSentinel_MinRecordsGuard(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	src := mocks.NewMockHistorySource(ctrl)
	src.EXPECT().Messages(gomock.Any(), gomock.Any()).Return(page("p", 100, 9), nil)

	f := New(src, Options{MinRecords: 10})
	_, _ = f.LoadInitial(context.Background(), models.FilterNone)

	s := NewSentinel(f)
	triggered, out, err := s.Observe(context.Background(), true)
	require.NoError(t, err)
	require.False(t, triggered)
	require.Equal(t, OutcomeNotTriggered, out)
}

func TestSentinel_NoMoreAndInFlightGuards(t *testing.T) {
	t.Parallel()

	g := newGate()
	f := New(g, Options{MinRecords: 1})
	s := NewSentinel(f)

	go func() { _, _ = f.LoadInitial(context.Background(), models.FilterNone) }()
	call := <-g.calls

	// Первая страница в полёте.
	triggered, _, _ := s.Observe(context.Background(), true)
	require.False(t, triggered)

	call.reply <- page("p", 100, 5)
	require.Eventually(t, func() bool { return f.CanLoadOlder() }, timeout, tick)

	s.Reset()
	require.False(t, s.Visible())

	done := make(chan Outcome, 1)
	go func() {
		_, out, _ := s.Observe(context.Background(), true)
		done <- out
	}()
	(<-g.calls).reply <- models.HistoryPage{}
	require.Equal(t, OutcomeEmpty, <-done)

	s.Reset()
	triggered, _, _ = s.Observe(context.Background(), true)
	require.False(t, triggered, "beginning of history reached")
}
