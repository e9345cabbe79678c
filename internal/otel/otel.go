package otel

import (
	"context"
	"sync"
	"time"

	eventbus "github.com/hanpama/fieldplan/internal/eventbus"
	events "github.com/hanpama/fieldplan/internal/events"
	reqid "github.com/hanpama/fieldplan/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	Subscribe(otel.Tracer("fieldplan"))
	return tp.Shutdown, nil
}

// Subscribe records spans for HTTP requests, schema compilations, and
// serializations with tracer. It returns a function removing the
// subscriptions.
func Subscribe(tracer trace.Tracer) (unsubscribe func()) {
	s := &subscriber{tracer: tracer}
	return s.register()
}

type subscriber struct {
	tracer         trace.Tracer
	httpSpans      sync.Map // rid -> trace.Span
	serializeSpans sync.Map // instance id -> trace.Span
}

// parent returns ctx with the HTTP span of its request attached, if any.
func (s *subscriber) parent(ctx context.Context) context.Context {
	rid, ok := reqid.FromContext(ctx)
	if !ok {
		return ctx
	}
	if v, ok := s.httpSpans.Load(rid); ok {
		return trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	return ctx
}

func (s *subscriber) register() func() {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPStart) {
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "http.request")
			span.SetAttributes(
				semconv.HTTPMethodKey.String(e.Request.Method),
				attribute.String("http.target", e.Request.URL.Path),
				attribute.String("fieldplan.schema", e.Schema),
			)
			s.httpSpans.Store(rid, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.httpSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
			span.End()
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.SchemaCompiled) {
			end := time.Now()
			_, span := s.tracer.Start(ctx, "fieldplan.compile", trace.WithTimestamp(end.Add(-e.Duration)))
			span.SetAttributes(
				attribute.String("fieldplan.schema", e.Schema),
				attribute.StringSlice("fieldplan.fields", e.Fields),
			)
			span.End(trace.WithTimestamp(end))
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.SerializeStart) {
			parent := s.parent(ctx)
			if v, ok := s.serializeSpans.Load(e.Parent); e.Parent != 0 && ok {
				parent = trace.ContextWithSpan(ctx, v.(trace.Span))
			}
			_, span := s.tracer.Start(parent, "fieldplan.serialize")
			span.SetAttributes(
				attribute.String("fieldplan.schema", e.Schema),
				attribute.Bool("fieldplan.many", e.Many),
			)
			s.serializeSpans.Store(e.ID, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.SerializeFinish) {
			v, ok := s.serializeSpans.LoadAndDelete(e.ID)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(attribute.Int("fieldplan.items", e.Items))
			if e.Err != nil {
				span.RecordError(e.Err)
				span.SetStatus(codes.Error, e.Err.Error())
			}
			span.End()
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
