package feed

import (
	"strings"

	"github.com/pribylovaa/go-review-desk/internal/models"
)

// Layout — оценка высоты строки записи при отображении.
type Layout func(models.HistoryRecord) float64

const (
	rowPadding       = 24
	lineHeight       = 20
	attachmentHeight = 180
)

// DefaultLayout: отступы строки, по строке текста на перевод строки и полоса вложений.
func DefaultLayout(r models.HistoryRecord) float64 {
	h := float64(rowPadding + lineHeight*(1+strings.Count(r.Text, "\n")))
	if len(r.Attachments) > 0 {
		h += attachmentHeight
	}

	return h
}

// Heights раскладывает записи в высоты строк в том же порядке.
func (l Layout) Heights(recs []models.HistoryRecord) []float64 {
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = l(r)
	}

	return out
}
