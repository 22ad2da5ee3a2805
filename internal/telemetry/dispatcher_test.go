package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/muurk/kpowire/internal/protocol"
	"github.com/muurk/kpowire/internal/registry"
)

type recordedSpan struct {
	noop.Span
	name   string
	status codes.Code
	errs   int
}

func (s *recordedSpan) SetStatus(code codes.Code, _ string) { s.status = code }
func (s *recordedSpan) RecordError(error, ...trace.EventOption) { s.errs++ }

type recordingTracer struct {
	noop.Tracer
	mu    sync.Mutex
	spans []*recordedSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := &recordedSpan{name: name}
	t.spans = append(t.spans, s)
	return ctx, s
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *prometheus.Registry, *recordingTracer) {
	t.Helper()
	r, err := registry.New(protocol.V2)
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}
	reg := prometheus.NewRegistry()
	tracer := &recordingTracer{}
	d := NewDispatcher(r,
		WithMetrics(NewMetrics(WithRegistry(reg))),
		WithTracer(tracer),
	)
	return d, reg, tracer
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestDispatcherRoundTrip(t *testing.T) {
	d, _, tracer := newTestDispatcher(t)
	ctx := context.Background()

	data, err := d.Encode(ctx, &protocol.Ack{Header: protocol.Header{SequenceID: 0x05af}})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	msg, err := d.Decode(ctx, data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if msg.Opcode() != protocol.OpAck || msg.Sequence() != 0x05af {
		t.Errorf("Decode() = %s/%d", msg.Opcode(), msg.Sequence())
	}

	if got := counterValue(t, d.metrics.messages.WithLabelValues("v2", "ack", "outgoing")); got != 1 {
		t.Errorf("outgoing messages = %v, want 1", got)
	}
	if got := counterValue(t, d.metrics.messages.WithLabelValues("v2", "ack", "incoming")); got != 1 {
		t.Errorf("incoming messages = %v, want 1", got)
	}
	if got := histogramCount(t, d.metrics.duration.WithLabelValues("v2", "incoming")); got != 1 {
		t.Errorf("incoming duration samples = %d, want 1", got)
	}
	if got := histogramCount(t, d.metrics.size.WithLabelValues("v2", "outgoing")); got != 1 {
		t.Errorf("outgoing size samples = %d, want 1", got)
	}

	if len(tracer.spans) != 2 {
		t.Fatalf("%d spans, want 2", len(tracer.spans))
	}
	if tracer.spans[0].name != "kpowire.encode" || tracer.spans[1].name != "kpowire.decode" {
		t.Errorf("span names = %q, %q", tracer.spans[0].name, tracer.spans[1].name)
	}
	for _, s := range tracer.spans {
		if s.status != codes.Ok || s.errs != 0 {
			t.Errorf("%s: status %v, %d errors", s.name, s.status, s.errs)
		}
	}
}

func TestDispatcherDecodeFailure(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		opcode string
		kind   string
	}{
		{"empty", nil, "none", "ProtocolError"},
		{"unknown opcode", []byte{0x7f, 0x00, 0x01}, "unknown", "InvalidOpcode"},
		{"zero sequence", []byte{0x00, 0x00, 0x00}, "ack", "InvalidSequenceNumber"},
		{"truncated", []byte{0x00, 0x01}, "ack", "ProtocolError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, tracer := newTestDispatcher(t)
			if _, err := d.Decode(context.Background(), tt.data); err == nil {
				t.Fatal("Decode() succeeded")
			}
			got := counterValue(t, d.metrics.failures.WithLabelValues("v2", tt.opcode, "incoming", tt.kind))
			if got != 1 {
				t.Errorf("errors_total{opcode=%q,kind=%q} = %v, want 1", tt.opcode, tt.kind, got)
			}
			if s := tracer.spans[0]; s.status != codes.Error || s.errs != 1 {
				t.Errorf("span status %v, %d errors", s.status, s.errs)
			}
		})
	}
}

func TestDispatcherUnknownOpcodesShareLabel(t *testing.T) {
	d, reg, tracer := newTestDispatcher(t)
	inputs := [][]byte{{0x7f, 0x00, 0x01}, {0xee, 0x00, 0x01}, {0x20}}
	for _, data := range inputs {
		if _, err := d.Decode(context.Background(), data); err == nil {
			t.Fatalf("Decode(% x) succeeded", data)
		}
	}
	got := counterValue(t, d.metrics.failures.WithLabelValues("v2", "unknown", "incoming", "InvalidOpcode"))
	if got != float64(len(inputs)) {
		t.Errorf("errors_total{opcode=unknown} = %v, want %d", got, len(inputs))
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() == "kpowire_codec_errors_total" && len(f.GetMetric()) != 1 {
			t.Errorf("errors_total series = %d, want 1", len(f.GetMetric()))
		}
	}
	if len(tracer.spans) != len(inputs) {
		t.Errorf("spans = %d, want %d", len(tracer.spans), len(inputs))
	}
}

func TestDispatcherEncodeFailure(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	if _, err := d.Encode(context.Background(), &protocol.Ack{}); err == nil {
		t.Fatal("Encode() succeeded")
	}
	got := counterValue(t, d.metrics.failures.WithLabelValues("v2", "ack", "outgoing", "InvalidSequenceNumber"))
	if got != 1 {
		t.Errorf("errors_total = %v, want 1", got)
	}
	if _, err := d.Encode(context.Background(), nil); err == nil {
		t.Fatal("Encode(nil) succeeded")
	}
	got = counterValue(t, d.metrics.failures.WithLabelValues("v2", "none", "outgoing", "Unclassified"))
	if got != 1 {
		t.Errorf("errors_total{opcode=none} = %v, want 1", got)
	}
}

func TestDispatcherWithoutMetrics(t *testing.T) {
	r, err := registry.New(protocol.V1)
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}
	d := NewDispatcher(r)
	if d.Registry() != r {
		t.Error("Registry() returned a different registry")
	}
	if _, err := d.Decode(context.Background(), []byte{0x00, 0x00, 0x01}); err != nil {
		t.Errorf("Decode() error = %v", err)
	}
}

func TestMetricsRegistered(t *testing.T) {
	d, reg, _ := newTestDispatcher(t)
	if _, err := d.Decode(context.Background(), []byte{0x00, 0x00, 0x01}); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"kpowire_codec_messages_total",
		"kpowire_codec_duration_seconds",
		"kpowire_codec_message_bytes",
	} {
		if !names[want] {
			t.Errorf("%s not gathered", want)
		}
	}
}

func TestMetricsOptions(t *testing.T) {
	r, err := registry.New(protocol.V1)
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}
	reg := prometheus.NewRegistry()
	d := NewDispatcher(r, WithMetrics(NewMetrics(
		WithRegistry(reg),
		WithNamespace("plant"),
		WithConstLabels(prometheus.Labels{"site": "north"}),
		WithBuckets([]float64{0.001, 0.01}),
	)), WithTracer(noop.NewTracerProvider().Tracer("test")))

	if _, err := d.Decode(context.Background(), []byte{0x00, 0x00, 0x01}); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := 0
	for _, f := range families {
		switch f.GetName() {
		case "plant_codec_messages_total":
			found++
			var site string
			for _, l := range f.GetMetric()[0].GetLabel() {
				if l.GetName() == "site" {
					site = l.GetValue()
				}
			}
			if site != "north" {
				t.Errorf("site label = %q, want north", site)
			}
		case "plant_codec_duration_seconds":
			found++
			if n := len(f.GetMetric()[0].GetHistogram().GetBucket()); n != 2 {
				t.Errorf("duration buckets = %d, want 2", n)
			}
		}
	}
	if found != 2 {
		t.Errorf("found %d of 2 renamed families", found)
	}
}
