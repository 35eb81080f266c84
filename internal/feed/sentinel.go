package feed

import (
	"context"
	"sync"
)

// Sentinel — детектор видимости над самой старой отображаемой записью.
// Загрузка старых записей инициируется только при входе в видимую область.
type Sentinel struct {
	feed *Feed

	mu      sync.Mutex
	visible bool
}

// NewSentinel создаёт сентинел над лентой.
func NewSentinel(f *Feed) *Sentinel {
	return &Sentinel{feed: f}
}

// Observe сообщает о видимости сентинела.
//
// LoadOlder вызывается, только если сентинел вошёл в видимую область, загрузка не в
// полёте, hasMore=true и в ленте не меньше MinRecords записей.
func (s *Sentinel) Observe(ctx context.Context, visible bool) (bool, Outcome, error) {
	s.mu.Lock()
	entered := visible && !s.visible
	s.visible = visible
	s.mu.Unlock()

	if !entered || !s.feed.CanLoadOlder() {
		return false, OutcomeNotTriggered, nil
	}

	out, err := s.feed.LoadOlder(ctx)
	return true, out, err
}

// Reset забывает последнюю видимость (после смены фильтра вид прокручен вниз).
func (s *Sentinel) Reset() {
	s.mu.Lock()
	s.visible = false
	s.mu.Unlock()
}

// Visible — последняя сообщённая видимость.
func (s *Sentinel) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.visible
}
