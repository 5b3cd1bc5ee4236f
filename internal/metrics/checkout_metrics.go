package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics содержит метрики процесса оформления заказа.
type CheckoutMetrics struct {
	// Счётчики исходов
	checkoutStarted   prometheus.Counter
	checkoutCompleted prometheus.Counter
	checkoutFailed    prometheus.Counter
	cartClearFailed   prometheus.Counter
	persistGap        prometheus.Counter

	// Гистограммы времени выполнения
	checkoutDuration prometheus.Histogram
	phaseDuration    *prometheus.HistogramVec

	// Gauge для оформлений в полёте
	activeCheckouts prometheus.Gauge
}

// NewCheckoutMetrics создаёт метрики в default-регистре Prometheus.
func NewCheckoutMetrics() *CheckoutMetrics {
	return newCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		checkoutStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_checkout_started_total",
			Help: "Total number of checkout attempts started",
		}),
		checkoutCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_checkout_completed_total",
			Help: "Total number of checkouts completed successfully",
		}),
		checkoutFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_checkout_failed_total",
			Help: "Total number of checkouts aborted with an error",
		}),
		cartClearFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_checkout_cart_clear_failed_total",
			Help: "Total number of best-effort cart clear failures after a persisted order",
		}),
		persistGap: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_checkout_persist_gap_total",
			Help: "Ledger write failures after stock was already decremented (manual compensation required)",
		}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_checkout_duration_seconds",
			Help:    "Duration of the whole checkout workflow in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		phaseDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "storefront_checkout_phase_duration_seconds",
			Help:    "Duration of individual checkout phases in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"phase"}),
		activeCheckouts: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_checkout_active",
			Help: "Number of checkout workflows currently in flight",
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

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordStarted увеличивает счётчик запущенных оформлений.
func (m *CheckoutMetrics) RecordStarted() {
	m.checkoutStarted.Inc()
	m.activeCheckouts.Inc()
}

// RecordCompleted увеличивает счётчик успешных оформлений.
func (m *CheckoutMetrics) RecordCompleted() {
	m.checkoutCompleted.Inc()
}

// RecordFailed увеличивает счётчик прерванных оформлений.
func (m *CheckoutMetrics) RecordFailed() {
	m.checkoutFailed.Inc()
}

// RecordCartClearFailed фиксирует неуспех best-effort очистки корзины.
func (m *CheckoutMetrics) RecordCartClearFailed() {
	m.cartClearFailed.Inc()
}

// RecordPersistGap фиксирует окно "остаток списан, заказ не записан".
func (m *CheckoutMetrics) RecordPersistGap() {
	m.persistGap.Inc()
}

// RecordFinished уменьшает количество оформлений в полёте.
func (m *CheckoutMetrics) RecordFinished() {
	m.activeCheckouts.Dec()
}

// RecordDuration записывает общее время оформления.
func (m *CheckoutMetrics) RecordDuration(duration time.Duration) {
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordPhaseDuration записывает время одной фазы.
func (m *CheckoutMetrics) RecordPhaseDuration(phase string, duration time.Duration) {
	m.phaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}
