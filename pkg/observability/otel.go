package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans created by this module.
const InstrumentationName = "github.com/matzehuels/extgraph"

// Attribute keys shared by spans and events.
const (
	AttrMode     = attribute.Key("extgraph.mode")
	AttrNodes    = attribute.Key("extgraph.nodes")
	AttrPlugins  = attribute.Key("extgraph.plugins")
	AttrSource   = attribute.Key("extgraph.source")
	AttrKeyType  = attribute.Key("extgraph.cache.key_type")
	AttrSize     = attribute.Key("extgraph.cache.size")
	AttrRemoved  = attribute.Key("extgraph.cache.removed")
	AttrDuration = attribute.Key("extgraph.duration_ms")
	AttrMethod   = attribute.Key("http.method")
	AttrPath     = attribute.Key("http.route")
	AttrStatus   = attribute.Key("http.status_code")
)

// Tracer returns the module tracer from the global tracer provider. Without a
// registered provider it is a no-op.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// StartSpan starts a span named name as a child of the span in ctx.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// TracingHooks records hook events on the span carried by the context.
// Events on contexts without a recording span are dropped.
type TracingHooks struct{}

// InstallTracing registers TracingHooks for every hook category.
func InstallTracing() {
	SetPipelineHooks(TracingHooks{})
	SetCacheHooks(TracingHooks{})
	SetHTTPHooks(TracingHooks{})
}

func event(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

func fail(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func ms(d time.Duration) attribute.KeyValue {
	return AttrDuration.Float64(float64(d) / float64(time.Millisecond))
}

func (TracingHooks) OnProcessStart(ctx context.Context, mode string) {
	event(ctx, "process.start", AttrMode.String(mode))
}

func (TracingHooks) OnProcessComplete(ctx context.Context, mode string, nodeCount int, d time.Duration) {
	event(ctx, "process.complete", AttrMode.String(mode), AttrNodes.Int(nodeCount), ms(d))
}

func (TracingHooks) OnLayoutStart(ctx context.Context, mode string, nodeCount int) {
	event(ctx, "layout.start", AttrMode.String(mode), AttrNodes.Int(nodeCount))
}

func (TracingHooks) OnLayoutComplete(ctx context.Context, mode string, d time.Duration, err error) {
	event(ctx, "layout.complete", AttrMode.String(mode), ms(d))
	fail(ctx, err)
}

func (TracingHooks) OnSnapshotLoad(ctx context.Context, source string, plugins int, err error) {
	event(ctx, "snapshot.load", AttrSource.String(source), AttrPlugins.Int(plugins))
	fail(ctx, err)
}

func (TracingHooks) OnCacheHit(ctx context.Context, keyType string) {
	event(ctx, "cache.hit", AttrKeyType.String(keyType))
}

func (TracingHooks) OnCacheMiss(ctx context.Context, keyType string) {
	event(ctx, "cache.miss", AttrKeyType.String(keyType))
}

func (TracingHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	event(ctx, "cache.set", AttrKeyType.String(keyType), AttrSize.Int(size))
}

func (TracingHooks) OnCacheClear(ctx context.Context, keyType string, removed int) {
	event(ctx, "cache.clear", AttrKeyType.String(keyType), AttrRemoved.Int(removed))
}

func (TracingHooks) OnRequest(ctx context.Context, method, path string) {
	event(ctx, "http.request", AttrMethod.String(method), AttrPath.String(path))
}

func (TracingHooks) OnResponse(ctx context.Context, method, path string, status int, d time.Duration) {
	event(ctx, "http.response", AttrMethod.String(method), AttrPath.String(path), AttrStatus.Int(status), ms(d))
}

func (TracingHooks) OnError(ctx context.Context, method, path string, err error) {
	event(ctx, "http.error", AttrMethod.String(method), AttrPath.String(path))
	fail(ctx, err)
}
