package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PlacementMetrics содержит метрики оформления заказов.
type PlacementMetrics struct {
	// Счётчики исходов
	ordersPlaced prometheus.Counter
	ordersFailed *prometheus.CounterVec

	// Конкуренция за распределённый замок дефицитного товара
	lockContention prometheus.Counter

	// Гистограмма времени оформления
	placementDuration prometheus.Histogram

	// Gauge для запросов в полёте
	inFlight prometheus.Gauge
}

// NewPlacementMetrics создаёт новый экземпляр метрик оформления заказов.
func NewPlacementMetrics() *PlacementMetrics {
	return newPlacementMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newPlacementMetricsWithRegisterer(registerer prometheus.Registerer) *PlacementMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &PlacementMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderflow_orders_placed_total",
			Help: "Total number of orders placed successfully",
		}),
		ordersFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orderflow_orders_failed_total",
			Help: "Total number of failed order placements by reason",
		}, []string{"reason"}),
		lockContention: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderflow_lock_contention_total",
			Help: "Total number of placements rejected due to product lock contention",
		}),
		placementDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "orderflow_placement_duration_seconds",
			Help:    "Duration of order placement in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		inFlight: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "orderflow_placements_in_flight",
			Help: "Number of order placements currently in progress",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderPlaced увеличивает счётчик успешно оформленных заказов.
func (m *PlacementMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordOrderFailed увеличивает счётчик неудачных оформлений с указанием причины.
func (m *PlacementMetrics) RecordOrderFailed(reason string) {
	m.ordersFailed.WithLabelValues(reason).Inc()
}

// RecordLockContention увеличивает счётчик отказов из-за занятого замка.
func (m *PlacementMetrics) RecordLockContention() {
	m.lockContention.Inc()
}

// RecordPlacementDuration записывает время оформления заказа.
func (m *PlacementMetrics) RecordPlacementDuration(duration time.Duration) {
	m.placementDuration.Observe(duration.Seconds())
}

// RecordPlacementStarted увеличивает количество оформлений в полёте.
func (m *PlacementMetrics) RecordPlacementStarted() {
	m.inFlight.Inc()
}

// RecordPlacementFinished уменьшает количество оформлений в полёте.
func (m *PlacementMetrics) RecordPlacementFinished() {
	m.inFlight.Dec()
}
