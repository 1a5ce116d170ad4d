package resolver

import (
	"context"
	"strings"
	"testing"

	"github.com/go-logr/logr/funcr"
)

func TestMultiSink_PreservesOrder(t *testing.T) {
	var got []string
	a := EventSinkFunc(func(_ context.Context, e Event) { got = append(got, "a:"+e.Reason) })
	b := EventSinkFunc(func(_ context.Context, e Event) { got = append(got, "b:"+e.Reason) })
	sink := MultiSink{a, nil, b}

	sink.Emit(context.Background(), Event{Reason: "one"})
	sink.Emit(context.Background(), Event{Reason: "two"})

	want := "a:one b:one a:two b:two"
	if strings.Join(got, " ") != want {
		t.Fatalf("expected %q, got %q", want, strings.Join(got, " "))
	}
}

func TestLogSink_WritesEvents(t *testing.T) {
	var lines []string
	log := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 1})
	sink := LogSink{Log: log}
	aRef := ref("A", "1.0")

	sink.Emit(context.Background(), Event{Kind: EventInfo, Reason: ReasonDependencyResolved, Message: "resolved", From: &aRef, To: "B"})
	sink.Emit(context.Background(), Event{Kind: EventWarning, Reason: ReasonDependencyUnresolved, Message: "unresolved", To: "C"})
	sink.Emit(context.Background(), Event{Kind: EventError, Reason: ReasonVersionNotSelected, Message: "failed", To: "D"})

	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], `"from"="A@1.0"`) {
		t.Fatalf("expected from ref in %q", lines[0])
	}
	if !strings.Contains(lines[1], `"warning"=true`) {
		t.Fatalf("expected warning marker in %q", lines[1])
	}
	if !strings.Contains(lines[2], `"msg"="failed"`) {
		t.Fatalf("expected error message in %q", lines[2])
	}
}
