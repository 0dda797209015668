package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"evt/pkg/evt"
)

// RegistryObserver exports evt.Registry activity as Prometheus metrics.
type RegistryObserver struct {
	subscriptions   prometheus.Counter
	unsubscriptions *prometheus.CounterVec
	publishes       *prometheus.CounterVec
	deliveries      prometheus.Counter
	panics          prometheus.Counter
	purges          prometheus.Counter
	active          prometheus.Gauge
}

// NewRegistryObserver creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewRegistryObserver(reg prometheus.Registerer) (*RegistryObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &RegistryObserver{
		subscriptions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "evt",
			Subsystem: "registry",
			Name:      "subscriptions_total",
			Help:      "Total number of subscriptions created",
		}),
		unsubscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evt",
			Subsystem: "registry",
			Name:      "unsubscriptions_total",
			Help:      "Total number of subscriptions removed, by mode (id|event)",
		}, []string{"mode"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evt",
			Subsystem: "registry",
			Name:      "publishes_total",
			Help:      "Total publish calls on known events, by whether anyone was subscribed",
		}, []string{"fanout"}),
		deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "evt",
			Subsystem: "registry",
			Name:      "deliveries_total",
			Help:      "Total subscriber invocations that returned",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "evt",
			Subsystem: "registry",
			Name:      "panics_total",
			Help:      "Total recovered subscriber panics",
		}),
		purges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "evt",
			Subsystem: "registry",
			Name:      "purges_total",
			Help:      "Total purge calls",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "evt",
			Subsystem: "registry",
			Name:      "active_subscriptions",
			Help:      "Live subscriptions across all events",
		}),
	}
	for _, c := range []prometheus.Collector{o.subscriptions, o.unsubscriptions, o.publishes, o.deliveries, o.panics, o.purges, o.active} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *RegistryObserver) Subscribed(string, evt.ID) {
	o.subscriptions.Inc()
	o.active.Inc()
}

func (o *RegistryObserver) Unsubscribed(_ string, _ evt.ID, byEvent bool) {
	mode := "id"
	if byEvent {
		mode = "event"
	}
	o.unsubscriptions.WithLabelValues(mode).Inc()
	o.active.Dec()
}

func (o *RegistryObserver) Published(_ string, subscribers int) {
	if subscribers == 0 {
		o.publishes.WithLabelValues("empty").Inc()
		return
	}
	o.publishes.WithLabelValues("some").Inc()
}

func (o *RegistryObserver) Delivered(string, evt.ID) { o.deliveries.Inc() }

func (o *RegistryObserver) Panicked(*evt.PanicError) { o.panics.Inc() }

func (o *RegistryObserver) Purged(n int) {
	o.purges.Inc()
	o.active.Sub(float64(n))
}

var _ evt.Observer = (*RegistryObserver)(nil)
