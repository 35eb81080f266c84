package session

import (
	"sync"

	"github.com/pribylovaa/go-review-desk/internal/feed"
	"github.com/pribylovaa/go-review-desk/internal/models"
)

// historyView — модель прокрутки ленты: строки от старых к новым.
//
// Уведомления ленты доставляются вне её блокировки и могут прийти не по порядку;
// изменения применяются строго по Seq, пришедшие раньше времени ждут в pending.
// Вид должен быть подписан до первой загрузки ленты.
type historyView struct {
	vp     *feed.ListViewport
	layout feed.Layout

	mu      sync.Mutex
	next    uint64
	pending map[uint64]feed.Change
}

func newHistoryView(height float64, layout feed.Layout) *historyView {
	return &historyView{
		vp:      feed.NewListViewport(height),
		layout:  layout,
		next:    1,
		pending: make(map[uint64]feed.Change),
	}
}

func (v *historyView) apply(c feed.Change) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if c.Seq < v.next {
		return
	}
	v.pending[c.Seq] = c

	for {
		nc, ok := v.pending[v.next]
		if !ok {
			return
		}
		delete(v.pending, v.next)
		v.next++
		v.applyLocked(nc)
	}
}

func (v *historyView) applyLocked(c feed.Change) {
	chrono := make([]models.HistoryRecord, len(c.Added))
	for i, r := range c.Added {
		chrono[len(c.Added)-1-i] = r
	}
	heights := v.layout.Heights(chrono)

	switch c.Kind {
	case feed.ChangeReset:
		v.vp.Reset(heights...)
		feed.SnapToBottom(v.vp)
	case feed.ChangeOlder:
		feed.PrependPreservingAnchor(v.vp, func() { v.vp.Prepend(heights...) })
	}
}

func (v *historyView) scrollTo(top float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.vp.SetScrollTop(top)
}

func (v *historyView) position() (top, height float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.vp.ScrollTop(), v.vp.ScrollHeight()
}
