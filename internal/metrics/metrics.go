// metrics — Prometheus-коллекторы очереди, диспетчера решений и ленты истории.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "review_desk"

// Metrics реализует наблюдателей queue.Metrics, dispatch.Metrics и feed.Metrics.
type Metrics struct {
	refills   *prometheus.HistogramVec
	buffered  prometheus.Gauge
	decisions *prometheus.HistogramVec
	pages     *prometheus.CounterVec
	records   prometheus.Gauge
}

// New создаёт коллекторы и регистрирует их в reg (nil -> prometheus.DefaultRegisterer).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		refills: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "refill_duration_seconds",
			Help:      "Duration of prefetch refill attempts by outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		buffered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "buffered_items",
			Help:      "Items waiting in the prefetch buffer.",
		}),
		decisions: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "submit_duration_seconds",
			Help:      "Duration of decision submissions by action and result.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action", "result"}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "pages_total",
			Help:      "History page fetches by kind and result.",
		}, []string{"kind", "result"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "records",
			Help:      "History records held by the feed.",
		}),
	}

	reg.MustRegister(m.refills, m.buffered, m.decisions, m.pages, m.records)

	return m
}

// ObserveRefill — исход и длительность одного Refill.
func (m *Metrics) ObserveRefill(outcome string, dur time.Duration) {
	m.refills.WithLabelValues(outcome).Observe(dur.Seconds())
}

// SetBuffered — текущая длина буфера.
func (m *Metrics) SetBuffered(n int) { m.buffered.Set(float64(n)) }

// ObserveDecision — результат отправки решения (ok / failed).
func (m *Metrics) ObserveDecision(action, result string, dur time.Duration) {
	m.decisions.WithLabelValues(action, result).Observe(dur.Seconds())
}

// ObservePage — результат загрузки страницы (initial / older; applied, empty, stale, failed).
func (m *Metrics) ObservePage(kind, result string) {
	m.pages.WithLabelValues(kind, result).Inc()
}

// SetRecords — число записей в ленте.
func (m *Metrics) SetRecords(n int) { m.records.Set(float64(n)) }
