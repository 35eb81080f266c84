package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFilter — значение фильтра не распознано.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter — измерение фильтрации истории по флагу passed.
type Filter string

const (
	FilterNone  Filter = "none"
	FilterTrue  Filter = "true"
	FilterFalse Filter = "false"
)

// ParseFilter разбирает фильтр; пустая строка означает FilterNone.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterNone:
		return FilterNone, nil
	case FilterTrue:
		return FilterTrue, nil
	case FilterFalse:
		return FilterFalse, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
}

// Passed возвращает значение параметра passed и признак его наличия.
func (f Filter) Passed() (string, bool) {
	switch f {
	case FilterTrue, FilterFalse:
		return string(f), true
	default:
		return "", false
	}
}

// Timestamp — момент сообщения в секундах эпохи (может быть дробным).
// Одновременно курсор пагинации и уникальный ключ записи.
type Timestamp float64

// String — кратчайшее точное десятичное представление (для query/path).
func (t Timestamp) String() string {
	return strconv.FormatFloat(float64(t), 'f', -1, 64)
}

// ParseTimestamp разбирает строковое представление Timestamp.
func ParseTimestamp(s string) (Timestamp, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("models: parse timestamp %q: %w", s, err)
	}

	return Timestamp(v), nil
}

// HistoryRecord — сообщение истории.
//
// На проводе — кортеж [text, timestamp, [attachments...], passed].
type HistoryRecord struct {
	Text        string    `json:"text"`
	Timestamp   Timestamp `json:"timestamp"`
	Attachments []string  `json:"attachments"`
	Passed      bool      `json:"passed"`
}

// UnmarshalJSON декодирует запись из кортежа.
// Лишние элементы кортежа игнорируются, недостающие — ошибка.
func (r *HistoryRecord) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("models: history record is not a tuple: %w", err)
	}

	if len(raw) < 4 {
		return fmt.Errorf("models: history record tuple has %d elements, want 4", len(raw))
	}

	var rec HistoryRecord
	if err := json.Unmarshal(raw[0], &rec.Text); err != nil {
		return fmt.Errorf("models: history record text: %w", err)
	}
	if err := json.Unmarshal(raw[1], &rec.Timestamp); err != nil {
		return fmt.Errorf("models: history record timestamp: %w", err)
	}
	if err := json.Unmarshal(raw[2], &rec.Attachments); err != nil {
		return fmt.Errorf("models: history record attachments: %w", err)
	}
	if err := json.Unmarshal(raw[3], &rec.Passed); err != nil {
		return fmt.Errorf("models: history record passed: %w", err)
	}

	*r = rec
	return nil
}

// HistoryQuery — параметры запроса страницы истории.
//
// Особенности:
//   - Before == 0 -> первая (самая свежая) страница;
//   - Before > 0 -> записи строго старше Before.
type HistoryQuery struct {
	Limit  int
	Before Timestamp
	Filter Filter
}

// HistoryPage — страница истории в порядке «новые первыми».
type HistoryPage struct {
	Records []HistoryRecord
}

// Oldest возвращает самую старую запись страницы.
func (p HistoryPage) Oldest() (HistoryRecord, bool) {
	if len(p.Records) == 0 {
		return HistoryRecord{}, false
	}

	return p.Records[len(p.Records)-1], true
}

// TradeDraft — структурированный черновик сделки, распознанный бэкендом (autofill).
// Формат задаёт бэкенд, поэтому хранится как есть.
type TradeDraft json.RawMessage

// MarshalJSON отдаёт черновик без перекодирования.
func (d TradeDraft) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}

	return d, nil
}
