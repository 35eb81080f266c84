package feed

import "sync"

// Viewport — контейнер с прокруткой.
type Viewport interface {
	ScrollTop() float64
	ScrollHeight() float64
	ClientHeight() float64
	SetScrollTop(top float64)
}

// Anchor — положение прокрутки до изменения содержимого над видимой областью.
type Anchor struct {
	top    float64
	height float64
}

// CaptureAnchor запоминает смещение и высоту содержимого.
func CaptureAnchor(v Viewport) Anchor {
	return Anchor{top: v.ScrollTop(), height: v.ScrollHeight()}
}

// Restore сдвигает смещение ровно на высоту, добавленную над видимой областью.
func (a Anchor) Restore(v Viewport) {
	v.SetScrollTop(a.top + (v.ScrollHeight() - a.height))
}

// PrependPreservingAnchor выполняет prepend так, что видимое содержимое не прыгает.
func PrependPreservingAnchor(v Viewport, prepend func()) {
	a := CaptureAnchor(v)
	prepend()
	a.Restore(v)
}

// SnapToBottom прокручивает к последней (самой новой) записи.
func SnapToBottom(v Viewport) {
	v.SetScrollTop(v.ScrollHeight() - v.ClientHeight())
}

// ListViewport — измеренный список строк в памяти: высоты строк сверху вниз.
type ListViewport struct {
	mu      sync.Mutex
	heights []float64
	total   float64
	top     float64
	client  float64
}

// NewListViewport создаёт пустой список с высотой видимой области client.
func NewListViewport(client float64) *ListViewport {
	if client < 0 {
		client = 0
	}

	return &ListViewport{client: client}
}

func (l *ListViewport) ScrollTop() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.top
}

func (l *ListViewport) ScrollHeight() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.total
}

func (l *ListViewport) ClientHeight() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.client
}

// SetScrollTop ставит смещение, ограничивая его диапазоном [0, ScrollHeight-ClientHeight].
func (l *ListViewport) SetScrollTop(top float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.top = l.clampLocked(top)
}

// SetClientHeight меняет высоту видимой области.
func (l *ListViewport) SetClientHeight(client float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if client < 0 {
		client = 0
	}
	l.client = client
	l.top = l.clampLocked(l.top)
}

// Prepend добавляет строки над существующими (порядок сверху вниз). Смещение не меняется.
func (l *ListViewport) Prepend(heights ...float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.heights = append(append([]float64(nil), heights...), l.heights...)
	for _, h := range heights {
		l.total += h
	}
}

// Append добавляет строки снизу.
func (l *ListViewport) Append(heights ...float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.heights = append(l.heights, heights...)
	for _, h := range heights {
		l.total += h
	}
}

// Reset заменяет строки и обнуляет смещение.
func (l *ListViewport) Reset(heights ...float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.heights = append([]float64(nil), heights...)
	l.total = 0
	for _, h := range heights {
		l.total += h
	}
	l.top = 0
}

// Rows — число строк.
func (l *ListViewport) Rows() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.heights)
}

// FirstVisible — индекс первой строки, видимой при текущем смещении (-1 для пустого списка).
func (l *ListViewport) FirstVisible() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var acc float64
	for i, h := range l.heights {
		if acc+h > l.top {
			return i
		}
		acc += h
	}

	return len(l.heights) - 1
}

func (l *ListViewport) clampLocked(top float64) float64 {
	maxTop := l.total - l.client
	if maxTop < 0 {
		maxTop = 0
	}
	if top > maxTop {
		return maxTop
	}
	if top < 0 {
		return 0
	}

	return top
}
