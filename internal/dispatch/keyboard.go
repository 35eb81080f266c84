package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pribylovaa/go-review-desk/internal/models"
	"github.com/pribylovaa/go-review-desk/internal/queue"
)

// ErrUnknownKey — клавиша не привязана к действию.
var ErrUnknownKey = errors.New("unknown key")

// KeyAction сопоставляет клавишу действию: a -> accept, d -> reject (без учёта регистра).
func KeyAction(key string) (models.Action, bool) {
	switch strings.ToLower(key) {
	case "a":
		return models.ActionAccept, true
	case "d":
		return models.ActionReject, true
	default:
		return "", false
	}
}

// Keyboard — привязка клавиш к отображаемому элементу.
// Привязка обновляется при каждой смене отображаемой идентичности, поэтому
// нажатие никогда не решает за уже вытесненный элемент.
type Keyboard struct {
	d *Dispatcher

	mu      sync.Mutex
	bound   string
	version uint64
}

// NewKeyboard создаёт привязку над диспетчером.
func NewKeyboard(d *Dispatcher) *Keyboard {
	return &Keyboard{d: d}
}

// Attach подписывает привязку на изменения очереди и сразу синхронизирует её.
func (k *Keyboard) Attach(q *queue.Queue) {
	q.OnChange(k.observe)
	k.observe(q.Snapshot())
}

func (k *Keyboard) observe(s queue.Snapshot) {
	k.mu.Lock()
	defer k.mu.Unlock()

	// Уведомления доставляются вне блокировки очереди и могут прийти не по порядку.
	if s.Version < k.version {
		return
	}
	k.version = s.Version

	k.bound = ""
	if s.Current != nil {
		k.bound = s.Current.Filename
	}
}

// Rebind явно привязывает клавиши к идентичности ("" — отвязать).
func (k *Keyboard) Rebind(filename string) {
	k.mu.Lock()
	k.bound = filename
	k.mu.Unlock()
}

// Bound — текущая привязка.
func (k *Keyboard) Bound() string {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.bound
}

// Press обрабатывает нажатие клавиши.
func (k *Keyboard) Press(ctx context.Context, key string) (models.Decision, error) {
	const op = "internal/dispatch/Press"

	action, ok := KeyAction(key)
	if !ok {
		return models.Decision{}, fmt.Errorf("%s: %w: %q", op, ErrUnknownKey, key)
	}

	filename := k.Bound()
	if filename == "" {
		return models.Decision{}, fmt.Errorf("%s: %w", op, ErrNoItem)
	}

	return k.d.DecideFor(ctx, filename, action)
}
