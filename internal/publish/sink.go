package publish

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-logr/logr"

	"github.com/bayleafwalker/modbinder/internal/resolver"
)

// Message is the payload published for each resolution event.
type Message struct {
	Instance string `json:"instance,omitempty"`
	resolver.Event
}

// EventSink publishes resolution events as JSON to Subject.<kind>, for
// example "modbinder.events.warning". Publish failures are logged and
// never interrupt resolution.
type EventSink struct {
	Publisher Publisher
	Subject   string
	// Instance names the ModInstance the events belong to.
	Instance string
	Log      logr.Logger
}

var _ resolver.EventSink = (*EventSink)(nil)

func (s *EventSink) Emit(ctx context.Context, e resolver.Event) {
	payload, err := json.Marshal(Message{Instance: s.Instance, Event: e})
	if err != nil {
		s.Log.Error(err, "encode event", "reason", e.Reason)
		return
	}
	subject := s.Subject + "." + strings.ToLower(string(e.Kind))
	if err := s.Publisher.Publish(ctx, subject, payload); err != nil {
		s.Log.Error(err, "publish event", "subject", subject, "reason", e.Reason)
	}
}

// ForInstance returns a copy of s tagged with instance.
func (s *EventSink) ForInstance(instance string) *EventSink {
	out := *s
	out.Instance = instance
	return &out
}
