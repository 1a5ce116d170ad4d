// Package publish forwards resolution events to a message bus.
package publish

import "context"

// Publisher is the minimal event-publishing seam.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
	Close() error
}
