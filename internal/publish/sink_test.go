package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"

	"github.com/bayleafwalker/modbinder/internal/mod"
	"github.com/bayleafwalker/modbinder/internal/resolver"
)

type published struct {
	subject string
	payload []byte
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, subject string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{subject: subject, payload: payload})
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func TestEventSink_PublishesJSONPerKind(t *testing.T) {
	pub := &fakePublisher{}
	base := &EventSink{Publisher: pub, Subject: "modbinder.events", Log: logr.Discard()}
	sink := base.ForInstance("default/pack")

	e := resolver.Event{
		Kind:    resolver.EventWarning,
		Reason:  resolver.ReasonDependencyUnresolved,
		Message: "didn't resolve dependency",
		From:    &mod.VersionRef{UID: "A", Tag: "1.0"},
		To:      "B",
	}
	sink.Emit(context.Background(), e)

	if len(pub.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(pub.sent))
	}
	if pub.sent[0].subject != "modbinder.events.warning" {
		t.Fatalf("unexpected subject %q", pub.sent[0].subject)
	}
	var got Message
	if err := json.Unmarshal(pub.sent[0].payload, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Message{Instance: "default/pack", Event: e}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if base.Instance != "" {
		t.Fatalf("ForInstance must not modify the base sink")
	}
}

func TestEventSink_RequestLevelEventOmitsFrom(t *testing.T) {
	pub := &fakePublisher{}
	sink := &EventSink{Publisher: pub, Subject: "modbinder.events", Instance: "default/pack", Log: logr.Discard()}

	sink.Emit(context.Background(), resolver.Event{
		Kind:    resolver.EventError,
		Reason:  resolver.ReasonVersionNotSelected,
		Message: "didn't select a version for waila",
		To:      "waila",
	})

	if len(pub.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(pub.sent))
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(pub.sent[0].payload, &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := raw["from"]; ok {
		t.Fatalf("expected no from field, got %s", pub.sent[0].payload)
	}
	if string(raw["to"]) != `"waila"` {
		t.Fatalf("unexpected to field %s", raw["to"])
	}
}

func TestEventSink_PublishErrorIsSwallowed(t *testing.T) {
	pub := &fakePublisher{err: errors.New("bus down")}
	sink := &EventSink{Publisher: pub, Subject: "x", Log: logr.Discard()}

	// Must not panic or block.
	sink.Emit(context.Background(), resolver.Event{Kind: resolver.EventInfo})
}

func TestNewNATSPublisher_UnreachableServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if _, err := NewNATSPublisher(ctx, "nats://127.0.0.1:1", "test"); err == nil {
		t.Fatalf("expected connect error")
	}
}
