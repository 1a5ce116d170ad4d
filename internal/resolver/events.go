package resolver

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/bayleafwalker/modbinder/internal/mod"
)

type EventKind string

const (
	EventInfo    EventKind = "Info"
	EventWarning EventKind = "Warning"
	EventError   EventKind = "Error"
)

// Event reasons.
const (
	ReasonDependencyResolved   = "DependencyResolved"
	ReasonDependencyProvided   = "DependencyProvided"
	ReasonDependencyUnresolved = "DependencyUnresolved"
	ReasonVersionNotSelected   = "VersionNotSelected"
)

// Event is a progress report emitted while resolving. From is nil for
// request-level events.
type Event struct {
	Kind    EventKind       `json:"kind"`
	Reason  string          `json:"reason"`
	Message string          `json:"message"`
	From    *mod.VersionRef `json:"from,omitempty"`
	To      mod.PackageID   `json:"to,omitempty"`
}

// EventSink receives events synchronously, in emission order.
type EventSink interface {
	Emit(ctx context.Context, e Event)
}

type EventSinkFunc func(ctx context.Context, e Event)

func (f EventSinkFunc) Emit(ctx context.Context, e Event) { f(ctx, e) }

// MultiSink fans an event out to every sink in order.
type MultiSink []EventSink

func (m MultiSink) Emit(ctx context.Context, e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(ctx, e)
		}
	}
}

// LogSink writes events to a logr.Logger; errors go through Logger.Error.
type LogSink struct {
	Log logr.Logger
}

func (s LogSink) Emit(_ context.Context, e Event) {
	kv := []any{"reason", e.Reason}
	if e.From != nil {
		kv = append(kv, "from", e.From.String())
	}
	if e.To != "" {
		kv = append(kv, "to", e.To)
	}
	switch e.Kind {
	case EventError:
		s.Log.Error(nil, e.Message, kv...)
	case EventWarning:
		s.Log.Info(e.Message, append(kv, "warning", true)...)
	default:
		s.Log.V(1).Info(e.Message, kv...)
	}
}

type discardSink struct{}

func (discardSink) Emit(context.Context, Event) {}
