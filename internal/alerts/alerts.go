// alerts — доска ошибок, требующих внимания оператора
// (не доставленные решения, неудачные подтверждения истории).
package alerts

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-review-desk/internal/models"
)

const DefaultCapacity = 100

// ErrNotFound — алерт не найден (или уже снят).
var ErrNotFound = errors.New("alert not found")

// Kind — источник ошибки.
type Kind string

const (
	KindDecision Kind = "decision"
	KindConfirm  Kind = "confirm"
)

// Alert — одна ошибка на доске.
type Alert struct {
	ID        uuid.UUID         `json:"id"`
	Kind      Kind              `json:"kind"`
	Message   string            `json:"message"`
	Decision  *models.Decision  `json:"decision,omitempty"`
	Timestamp *models.Timestamp `json:"timestamp,omitempty"`
	Attempts  int               `json:"attempts"`
	CreatedAt time.Time         `json:"created_at"`
}

// Board — ограниченная доска алертов; при переполнении вытесняется самый старый.
type Board struct {
	capacity int

	mu    sync.Mutex
	items []Alert
}

// New создаёт доску. capacity <= 0 -> DefaultCapacity.
func New(capacity int) *Board {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Board{capacity: capacity}
}

// Post публикует ошибку по решению.
func (b *Board) Post(kind Kind, message string, d *models.Decision) Alert {
	a := Alert{
		ID:        uuid.New(),
		Kind:      kind,
		Message:   message,
		Attempts:  1,
		CreatedAt: time.Now().UTC(),
	}
	if d != nil {
		dc := *d
		a.Decision = &dc
	}

	b.push(a)
	return a
}

// PostConfirm публикует ошибку подтверждения записи истории.
func (b *Board) PostConfirm(message string, ts models.Timestamp) Alert {
	a := Alert{
		ID:        uuid.New(),
		Kind:      KindConfirm,
		Message:   message,
		Timestamp: &ts,
		Attempts:  1,
		CreatedAt: time.Now().UTC(),
	}

	b.push(a)
	return a
}

func (b *Board) push(a Alert) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, a)
	if over := len(b.items) - b.capacity; over > 0 {
		b.items = append([]Alert(nil), b.items[over:]...)
	}
}

// List возвращает алерты от старых к новым.
func (b *Board) List() []Alert {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Alert(nil), b.items...)
}

// Len — число алертов.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.items)
}

// Get возвращает алерт по ID.
func (b *Board) Get(id uuid.UUID) (Alert, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i := b.indexLocked(id); i >= 0 {
		return b.items[i], nil
	}

	return Alert{}, ErrNotFound
}

// Dismiss снимает алерт.
func (b *Board) Dismiss(id uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexLocked(id)
	if i < 0 {
		return ErrNotFound
	}
	b.items = append(b.items[:i], b.items[i+1:]...)

	return nil
}

// Retried фиксирует неудачную повторную попытку: обновляет сообщение и счётчик.
func (b *Board) Retried(id uuid.UUID, message string) (Alert, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexLocked(id)
	if i < 0 {
		return Alert{}, ErrNotFound
	}
	b.items[i].Attempts++
	b.items[i].Message = message

	return b.items[i], nil
}

func (b *Board) indexLocked(id uuid.UUID) int {
	for i := range b.items {
		if b.items[i].ID == id {
			return i
		}
	}

	return -1
}
