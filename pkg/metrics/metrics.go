// Package metrics exports router activity to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	r, _ := router.New(router.Config{
//	    Browser:   win,
//	    Observers: []router.Observer{metrics.New(metrics.WithRegistry(reg))},
//	})
//
// Metrics collected (namespace "navroute" by default):
//   - routes_defined_total: routes defined, by target kind
//   - dispatches_total: dispatches by route template and status
//   - dispatch_duration_seconds: target run time by route template
//   - dispatch_errors_total: failed dispatches by route template and error type
//   - unmatched_total: Process calls that matched no route
//   - redirects_total: stale fragment URLs migrated in history mode
//
// Route labels are templates such as "/users/:id", never concrete paths, so
// label cardinality is bounded by the route table.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/navroute/internal/errors"
	"github.com/vango-dev/navroute/pkg/router"
)

// Config configures the observer.
type Config struct {
	// Namespace is the metrics namespace (default: "navroute").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "navroute",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer records router activity. It implements router.Observer.
type Observer struct {
	routesDefined    *prometheus.CounterVec
	dispatchesTotal  *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	dispatchErrors   *prometheus.CounterVec
	unmatchedTotal   prometheus.Counter
	redirectsTotal   prometheus.Counter
}

var _ router.Observer = (*Observer)(nil)

// New registers the router metrics and returns an observer that updates
// them. Registering twice on the same registry panics, as with promauto.
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Observer{
		routesDefined: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes_defined_total",
			Help:        "Total number of routes defined",
			ConstLabels: config.ConstLabels,
		}, []string{"target"}),

		dispatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatches_total",
			Help:        "Total number of route dispatches",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Route target run time in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		dispatchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_errors_total",
			Help:        "Total number of failed dispatches",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "error_type"}),

		unmatchedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "unmatched_total",
			Help:        "Total number of paths that matched no route",
			ConstLabels: config.ConstLabels,
		}),

		redirectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirects_total",
			Help:        "Total number of fragment URLs redirected to clean paths",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// RouteDefined counts a definition by target kind.
func (o *Observer) RouteDefined(route *router.Route) {
	kind := "callback"
	if _, ok := route.EventName(); ok {
		kind = "event"
	}
	o.routesDefined.WithLabelValues(kind).Inc()
}

// Dispatched records the outcome and duration of a dispatch.
func (o *Observer) Dispatched(route *router.Route, _ router.Context, elapsed time.Duration, err error) {
	path := route.Path()
	status := "success"
	if err != nil {
		status = "error"
		o.dispatchErrors.WithLabelValues(path, errorType(err)).Inc()
	}
	o.dispatchesTotal.WithLabelValues(path, status).Inc()
	o.dispatchDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// Unmatched counts a miss. The path is not recorded.
func (o *Observer) Unmatched(string) {
	o.unmatchedTotal.Inc()
}

// Redirected counts a stale fragment redirect.
func (o *Observer) Redirected(string, string) {
	o.redirectsTotal.Inc()
}

// errorType is the router error code, or "target" for errors returned by a
// callback or publisher.
func errorType(err error) string {
	if code := errors.CodeOf(err); code != "" {
		return code
	}
	return "target"
}
