package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/muurk/kpowire/internal/protocol"
	"github.com/muurk/kpowire/internal/registry"
)

const defaultTracerName = "kpowire"

// Dispatcher wraps a registry and records a span and metrics for every
// encode and decode. It is safe for concurrent use when the registry is.
type Dispatcher struct {
	registry *registry.Registry
	metrics  *Metrics
	tracer   trace.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics records codec metrics into m. Without it only spans are
// produced.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithTracer sets the tracer. The default resolves "kpowire" from the global
// tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

// NewDispatcher wraps r.
func NewDispatcher(r *registry.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{registry: r}
	for _, opt := range opts {
		opt(d)
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer(defaultTracerName)
	}
	return d
}

// Registry returns the wrapped registry.
func (d *Dispatcher) Registry() *registry.Registry {
	return d.registry
}

// Decode decodes data with the wrapped registry.
func (d *Dispatcher) Decode(ctx context.Context, data []byte) (protocol.Message, error) {
	opcode, label := "none", "none"
	if len(data) > 0 {
		op := protocol.Opcode(data[0])
		opcode, label = op.String(), op.String()
		if !op.Known() {
			label = "unknown"
		}
	}

	_, span := d.tracer.Start(ctx, "kpowire.decode",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("kpowire.protocol", d.registry.Version().String()),
			attribute.String("kpowire.opcode", opcode),
			attribute.Int("kpowire.bytes", len(data)),
		),
	)
	defer span.End()

	start := time.Now()
	msg, err := d.registry.Decode(data)
	d.record(span, registry.Incoming, label, len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("kpowire.sequence_id", int(msg.Sequence())))
	return msg, nil
}

// Encode encodes msg with the wrapped registry.
func (d *Dispatcher) Encode(ctx context.Context, msg protocol.Message) ([]byte, error) {
	opcode := "none"
	attrs := []attribute.KeyValue{
		attribute.String("kpowire.protocol", d.registry.Version().String()),
	}
	if msg != nil {
		opcode = msg.Opcode().String()
		attrs = append(attrs,
			attribute.String("kpowire.opcode", opcode),
			attribute.Int("kpowire.sequence_id", int(msg.Sequence())),
		)
	}

	_, span := d.tracer.Start(ctx, "kpowire.encode",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	start := time.Now()
	data, err := d.registry.Encode(msg)
	d.record(span, registry.Outgoing, opcode, len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("kpowire.bytes", len(data)))
	return data, nil
}

func (d *Dispatcher) record(span trace.Span, dir registry.Direction, opcode string, size int, elapsed time.Duration, err error) {
	if err != nil {
		kind := protocol.KindOf(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("kpowire.error_kind", kind))
		if d.metrics != nil {
			d.metrics.failures.WithLabelValues(d.registry.Version().String(), opcode, dir.String(), kind).Inc()
		}
		return
	}

	span.SetStatus(codes.Ok, "")
	if d.metrics == nil {
		return
	}
	version := d.registry.Version().String()
	d.metrics.messages.WithLabelValues(version, opcode, dir.String()).Inc()
	d.metrics.duration.WithLabelValues(version, dir.String()).Observe(elapsed.Seconds())
	d.metrics.size.WithLabelValues(version, dir.String()).Observe(float64(size))
}
