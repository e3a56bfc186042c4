package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/garyjia/trip-expenses/internal/application/dispatcher"
	"github.com/garyjia/trip-expenses/internal/domain/event"
)

const namespace = "tripchat"

// Collector turns chat session events into Prometheus metrics
type Collector struct {
	sessionsActive  prometheus.Gauge
	eventsTotal     *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	extractions     *prometheus.CounterVec
	tripsSaved      *prometheus.CounterVec
	tripTotals      prometheus.Histogram
	saveFailures    prometheus.Counter
	draftsDiscarded prometheus.Counter
	httpDuration    *prometheus.HistogramVec
}

// NewCollector registers the collector's metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of open chat sessions",
		}),
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Chat session events by type",
		}, []string{"type"}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_rejections_total",
			Help:      "Rejected answers by wizard step",
		}, []string{"state"}),
		extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Free-text extractions by source and whether anything was found",
		}, []string{"source", "empty"}),
		tripsSaved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trips_saved_total",
			Help:      "Trips saved by trip type",
		}, []string{"trip_type"}),
		tripTotals: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trip_total_cost",
			Help:      "Total cost of saved trips",
			Buckets:   []float64{500, 1000, 2500, 5000, 10000, 25000, 50000},
		}),
		saveFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trip_save_failures_total",
			Help:      "Failed trip inserts",
		}),
		draftsDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drafts_discarded_total",
			Help:      "Drafts discarded at confirmation",
		}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Register subscribes the collector to every dispatcher event
func (c *Collector) Register(d dispatcher.Dispatcher) {
	d.SubscribeNamed(dispatcher.AllEvents, "metrics", c.Handle)
}

// Handle records one event
func (c *Collector) Handle(ctx context.Context, evt *event.Event) error {
	c.eventsTotal.WithLabelValues(evt.Type.String()).Inc()

	switch evt.Type {
	case event.TypeSessionStarted:
		c.sessionsActive.Inc()
	case event.TypeSessionClosed:
		c.sessionsActive.Dec()
	case event.TypeInputRejected:
		c.rejections.WithLabelValues(evt.GetPayloadString(event.KeyState)).Inc()
	case event.TypeExtractionCompleted:
		source := evt.GetPayloadString(event.KeySource)
		if source == "" {
			source = "unknown"
		}
		c.extractions.WithLabelValues(source, strconv.FormatBool(evt.GetPayloadBool(event.KeyEmpty))).Inc()
	case event.TypeTripSaved:
		c.tripsSaved.WithLabelValues(evt.GetPayloadString(event.KeyTripType)).Inc()
		c.tripTotals.Observe(evt.GetPayloadFloat(event.KeyTotal))
	case event.TypeTripSaveFailed:
		c.saveFailures.Inc()
	case event.TypeDraftDiscarded:
		c.draftsDiscarded.Inc()
	}
	return nil
}

// ObserveHTTP records the latency of one HTTP request
func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	c.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
