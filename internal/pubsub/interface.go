package pubsub

import "context"

// PubSubClient publishes domain events. Topics are named after the event type.
type PubSubClient interface {
	SendMessage(ctx context.Context, topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
	Close() error
}
