package messaging

import "context"

// Broker publishes events for external consumers (push notifiers, audit
// pipelines). Implementations must be safe for concurrent use.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
