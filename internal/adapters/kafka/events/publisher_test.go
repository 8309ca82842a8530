package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/clinicflow/scheduling-api/internal/domain"
	"github.com/clinicflow/scheduling-api/internal/ports/out/events"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublisher_Publish(t *testing.T) {
	t.Parallel()

	fw := &fakeWriter{}
	p := &Publisher{w: fw, topicPrefix: "scheduling."}

	e := events.Event{
		ID:            "evt-1",
		Type:          events.TypeCreated,
		AppointmentID: "apt_12345678",
		OccurredAt:    time.Unix(100, 0).UTC(),
		Appointment:   domain.Appointment{ID: "apt_12345678", DoctorName: "Dr. A"},
	}
	if err := p.Publish(context.Background(), e); err != nil {
		t.Fatalf("Publish() err=%v", err)
	}
	if len(fw.msgs) != 1 {
		t.Fatalf("messages=%d, want 1", len(fw.msgs))
	}
	msg := fw.msgs[0]
	if msg.Topic != "scheduling.appointment.created" {
		t.Fatalf("topic=%q", msg.Topic)
	}
	if string(msg.Key) != "apt_12345678" {
		t.Fatalf("key=%q", msg.Key)
	}
	if header(msg, "event_id") != "evt-1" || header(msg, "event_type") != "appointment.created" {
		t.Fatalf("headers=%v", msg.Headers)
	}
	var decoded events.Event
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.AppointmentID != e.AppointmentID || decoded.Type != e.Type {
		t.Fatalf("payload=%+v", decoded)
	}
}

func TestPublisher_PublishWrapsWriterError(t *testing.T) {
	t.Parallel()

	boom := errors.New("broker down")
	p := &Publisher{w: &fakeWriter{err: boom}}
	err := p.Publish(context.Background(), events.Event{Type: events.TypeDeleted})
	if !errors.Is(err, boom) {
		t.Fatalf("Publish() err=%v, want wrapped %v", err, boom)
	}
}

func TestInjectTraceHeaders_AddsTraceparent(t *testing.T) {
	t.Parallel()

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	// Use an explicit propagator so the test does not depend on global state.
	carrier := &headerCarrier{}
	propagation.TraceContext{}.Inject(ctx, carrier)
	if carrier.Get("traceparent") == "" {
		t.Fatalf("traceparent header not set: %v", carrier.headers)
	}

	// Set overwrites instead of duplicating.
	carrier.Set("traceparent", "x")
	n := 0
	for _, k := range carrier.Keys() {
		if k == "traceparent" {
			n++
		}
	}
	if n != 1 || carrier.Get("traceparent") != "x" {
		t.Fatalf("headers=%v", carrier.headers)
	}
}

func TestSplitBrokers(t *testing.T) {
	t.Parallel()

	got := SplitBrokers(" a:9092, ,b:9092 ")
	if len(got) != 2 || got[0] != "a:9092" || got[1] != "b:9092" {
		t.Fatalf("SplitBrokers()=%v", got)
	}
	if _, err := NewPublisher(Config{}); err == nil {
		t.Fatalf("NewPublisher() expected error without brokers")
	}
}

func TestNewWriter_FlushesEachMessage(t *testing.T) {
	t.Parallel()

	w := newWriter([]string{"a:9092", "b:9092"})
	defer func() { _ = w.Close() }()

	if w.Async {
		t.Fatalf("Async=true, want synchronous writes")
	}
	if w.BatchSize != 1 {
		t.Fatalf("BatchSize=%d, want 1", w.BatchSize)
	}
	if w.BatchTimeout <= 0 || w.BatchTimeout > 10*time.Millisecond {
		t.Fatalf("BatchTimeout=%v, want a few milliseconds", w.BatchTimeout)
	}
	if w.Addr.String() != "a:9092,b:9092" {
		t.Fatalf("Addr=%q", w.Addr.String())
	}

	p, err := NewPublisher(Config{Brokers: "a:9092", TopicPrefix: "scheduling."})
	if err != nil {
		t.Fatalf("NewPublisher() err=%v", err)
	}
	defer func() { _ = p.Close() }()
	if kw, ok := p.w.(*kafka.Writer); !ok || kw.BatchSize != 1 {
		t.Fatalf("NewPublisher() writer=%#v", p.w)
	}
}
