// Package tracing records router activity as OpenTelemetry spans.
//
// The router dispatches synchronously and reports each dispatch after the
// target returns, so spans are built with explicit start and end
// timestamps rather than wrapping the call.
//
//	r, _ := router.New(router.Config{
//	    Browser:   win,
//	    Observers: []router.Observer{tracing.New(tracing.WithTracerName("shop"))},
//	})
//
// The tracer comes from the global provider unless WithTracer is given.
// Configure the provider in main():
//
//	otel.SetTracerProvider(tp)
package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/navroute/internal/errors"
	"github.com/vango-dev/navroute/pkg/router"
)

const defaultTracerName = "navroute"

// Config configures the tracing observer.
type Config struct {
	// TracerName is the name of the tracer (default: "navroute").
	TracerName string

	// Tracer overrides the tracer taken from the global provider.
	Tracer trace.Tracer

	// IncludeParams adds each path parameter as a span attribute.
	// Parameters may carry identifiers, so this is off by default.
	IncludeParams bool

	// AttributeExtractor adds custom attributes to dispatch spans.
	AttributeExtractor func(route *router.Route, ctx router.Context) []attribute.KeyValue
}

// Option configures the tracing observer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer directly.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Config) {
		c.Tracer = tracer
	}
}

// WithIncludeParams enables path parameters as span attributes.
func WithIncludeParams(include bool) Option {
	return func(c *Config) {
		c.IncludeParams = include
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(*router.Route, router.Context) []attribute.KeyValue) Option {
	return func(c *Config) {
		c.AttributeExtractor = extractor
	}
}

// Observer turns router notifications into spans. It implements
// router.Observer.
type Observer struct {
	config Config
	tracer trace.Tracer
	now    func() time.Time
}

var _ router.Observer = (*Observer)(nil)

// New creates a tracing observer.
func New(opts ...Option) *Observer {
	config := Config{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = otel.Tracer(config.TracerName)
	}
	return &Observer{config: config, tracer: tracer, now: time.Now}
}

// RouteDefined records an instant span for the definition.
func (o *Observer) RouteDefined(route *router.Route) {
	o.instant("navroute define",
		attribute.String("navroute.route", route.Path()),
		attribute.String("navroute.target", route.Target().String()),
	)
}

// Dispatched records a span covering the target's run time.
func (o *Observer) Dispatched(route *router.Route, ctx router.Context, elapsed time.Duration, err error) {
	end := o.now()
	attrs := []attribute.KeyValue{
		attribute.String("navroute.route", route.Path()),
		attribute.String("navroute.target", route.Target().String()),
		attribute.Int("navroute.param_count", ctx.Len()),
	}
	if o.config.IncludeParams {
		for _, p := range ctx {
			attrs = append(attrs, attribute.String("navroute.param."+p.Name, p.Value))
		}
	}
	if o.config.AttributeExtractor != nil {
		attrs = append(attrs, o.config.AttributeExtractor(route, ctx)...)
	}

	_, span := o.tracer.Start(
		context.Background(),
		spanName(route.Path()),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(end.Add(-elapsed)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if code := errors.CodeOf(err); code != "" {
			span.SetAttributes(attribute.String("navroute.error_code", code))
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(end))
}

// Unmatched records an instant span for a miss.
func (o *Observer) Unmatched(path string) {
	o.instant("navroute unmatched", attribute.String("navroute.path", path))
}

// Redirected records an instant span for a stale fragment redirect.
func (o *Observer) Redirected(from, to string) {
	o.instant("navroute redirect",
		attribute.String("navroute.redirect.from", from),
		attribute.String("navroute.redirect.to", to),
	)
}

func (o *Observer) instant(name string, attrs ...attribute.KeyValue) {
	now := o.now()
	_, span := o.tracer.Start(
		context.Background(),
		name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(now),
	)
	span.End(trace.WithTimestamp(now))
}

// spanName creates a span name from a route template.
func spanName(path string) string {
	if path == "" {
		path = "/"
	}
	return "navroute " + path
}
