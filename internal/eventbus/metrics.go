package eventbus

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsExporter переносит статистику шины в Prometheus и считает события по типам.
type MetricsExporter struct {
	bus      EventBus
	interval time.Duration
	sub      Subscription

	published prometheus.Counter
	consumed  prometheus.Counter
	dropped   prometheus.Counter
	inflight  prometheus.Gauge
	byType    *prometheus.CounterVec
}

// NewMetricsExporter создаёт экспортер и регистрирует метрики в reg
// (nil - глобальный регистр).
func NewMetricsExporter(bus EventBus, reg prometheus.Registerer) (*MetricsExporter, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	me := &MetricsExporter{
		bus:      bus,
		interval: time.Second,
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_published_total",
			Help:      "Общее число опубликованных сообщений.",
		}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_consumed_total",
			Help:      "Общее число доставленных сообщений подписчикам.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_dropped_total",
			Help:      "Сообщений, отброшенных из-за ограничения back-pressure.",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventbus",
			Name:      "messages_inflight",
			Help:      "Количество сообщений в очереди.",
		}),
		byType: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "events_total",
			Help:      "Доставленные события по типам.",
		}, []string{"type"}),
	}
	for _, c := range []prometheus.Collector{me.published, me.consumed, me.dropped, me.inflight, me.byType} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return me, nil
}

// Run обновляет метрики до отмены ctx. Блокирующий.
func (m *MetricsExporter) Run(ctx context.Context) error {
	sub, err := m.bus.Subscribe(ctx, Filter{}, func(_ context.Context, ev *Envelope) {
		m.byType.WithLabelValues(ev.EventType).Inc()
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Counter растет только на дельту с прошлого опроса
	var prev Stats
	for {
		select {
		case <-ticker.C:
			prev = m.collect(prev)
		case <-ctx.Done():
			m.collect(prev)
			return nil
		}
	}
}

func (m *MetricsExporter) collect(prev Stats) Stats {
	stats := m.bus.Metrics()
	if d := stats.Published - prev.Published; d > 0 {
		m.published.Add(float64(d))
	}
	if d := stats.Consumed - prev.Consumed; d > 0 {
		m.consumed.Add(float64(d))
	}
	if d := stats.Dropped - prev.Dropped; d > 0 {
		m.dropped.Add(float64(d))
	}
	m.inflight.Set(float64(stats.InFlight))
	return stats
}
