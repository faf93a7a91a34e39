package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SimMetrics Prometheus-метрики симуляции и отрисовки.
//
// Метрики:
// * tileworld_tick_duration_seconds - histogram
// * tileworld_draw_duration_seconds - histogram
// * tileworld_draw_runs - gauge, примитивов в последнем кадре
// * tileworld_draw_pool_size - gauge, объектов в пуле
// * tileworld_entities - gauge
// * tileworld_tile_contacts_total{face} - counter
type SimMetrics struct {
	tickDuration prometheus.Histogram
	drawDuration prometheus.Histogram
	drawRuns     prometheus.Gauge
	poolSize     prometheus.Gauge
	entities     prometheus.Gauge
	contacts     *prometheus.CounterVec
}

// NewSimMetrics создаёт метрики и регистрирует их в reg
// (prometheus.DefaultRegisterer, если reg == nil).
func NewSimMetrics(reg prometheus.Registerer) (*SimMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	buckets := []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1}
	m := &SimMetrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tileworld",
			Name:      "tick_duration_seconds",
			Help:      "Длительность шага физики.",
			Buckets:   buckets,
		}),
		drawDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tileworld",
			Name:      "draw_duration_seconds",
			Help:      "Длительность построения кадра.",
			Buckets:   buckets,
		}),
		drawRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tileworld",
			Name:      "draw_runs",
			Help:      "Число примитивов отрисовки в последнем кадре.",
		}),
		poolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tileworld",
			Name:      "draw_pool_size",
			Help:      "Число drawable-объектов в пуле тайлов.",
		}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tileworld",
			Name:      "entities",
			Help:      "Число сущностей в симуляции.",
		}),
		contacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tileworld",
			Name:      "tile_contacts_total",
			Help:      "Столкновения сущностей с тайлами по сторонам.",
		}, []string{"face"}),
	}

	for _, c := range []prometheus.Collector{m.tickDuration, m.drawDuration, m.drawRuns, m.poolSize, m.entities, m.contacts} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveTick записывает итог шага физики
func (m *SimMetrics) ObserveTick(d time.Duration, entities int, contacts map[string]int) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(d.Seconds())
	m.entities.Set(float64(entities))
	for face, n := range contacts {
		m.contacts.WithLabelValues(face).Add(float64(n))
	}
}

// ObserveDraw записывает итог кадра
func (m *SimMetrics) ObserveDraw(d time.Duration, runs, pool int) {
	if m == nil {
		return
	}
	m.drawDuration.Observe(d.Seconds())
	m.drawRuns.Set(float64(runs))
	m.poolSize.Set(float64(pool))
}
