// models содержит доменные сущности review-desk.
// Эти типы используются очередью, диспетчером решений, лентой истории и транспортом.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidAction — действие не распознано.
var ErrInvalidAction = errors.New("invalid action")

// Action — решение оператора по сделке.
type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
)

// ParseAction разбирает действие без учёта регистра и пробелов по краям.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionAccept:
		return ActionAccept, nil
	case ActionReject:
		return ActionReject, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// ReviewItem — одна единица работы: скриншот сделки и её метаданные.
//
// Особенности:
//   - Filename — идентичность элемента (ключ дедупликации в очереди);
//   - Metadata хранится «как пришла» и отправляется обратно без изменений.
type ReviewItem struct {
	Filename     string          `json:"filename"`
	MessageIndex int             `json:"message_index"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

// ID возвращает идентичность элемента.
func (i ReviewItem) ID() string { return i.Filename }

// Trade декодирует метаданные в типизированное представление.
func (i ReviewItem) Trade() (TradeMetadata, error) {
	var t TradeMetadata
	if len(i.Metadata) == 0 {
		return t, nil
	}

	if err := json.Unmarshal(i.Metadata, &t); err != nil {
		return TradeMetadata{}, fmt.Errorf("models: decode trade metadata: %w", err)
	}

	return t, nil
}

// TradeMetadata — обе стороны сделки.
type TradeMetadata struct {
	Outgoing TradeSide `json:"outgoing"`
	Incoming TradeSide `json:"incoming"`
}

// TradeSide — предметы и денежная часть одной стороны.
type TradeSide struct {
	Items      []TradeItem `json:"items"`
	RobuxValue int64       `json:"robux_value"`
}

// TradeItem — предмет в слоте сделки.
type TradeItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Decision — решение оператора, отправляемое бэкенду.
//
// ID — UUIDv4, уходит заголовком Idempotency-Key: повторная отправка
// того же решения (Retry) может быть схлопнута бэкендом.
type Decision struct {
	ID           uuid.UUID       `json:"-"`
	Filename     string          `json:"filename"`
	MessageIndex int             `json:"message_index"`
	Action       Action          `json:"action"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"-"`
}

// NewDecision фиксирует решение по элементу в момент действия оператора.
func NewDecision(item ReviewItem, action Action) Decision {
	return Decision{
		ID:           uuid.New(),
		Filename:     item.Filename,
		MessageIndex: item.MessageIndex,
		Action:       action,
		Metadata:     item.Metadata,
		CreatedAt:    time.Now().UTC(),
	}
}

// Item восстанавливает элемент очереди из решения (для requeue).
func (d Decision) Item() ReviewItem {
	return ReviewItem{Filename: d.Filename, MessageIndex: d.MessageIndex, Metadata: d.Metadata}
}

// Stats — агрегированные счётчики бэкенда.
type Stats struct {
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
	Remaining int `json:"remaining"`
}

// Processed — сколько решений уже учтено бэкендом.
func (s Stats) Processed() int { return s.Accepted + s.Rejected }
