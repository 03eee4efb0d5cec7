package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

type disabledClient struct{}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventMatchAccepted EventType = "match-accepted"
	EventMatchRejected EventType = "match-rejected"
	EventMatchCreated  EventType = "match-created"
)

// MatchEvent is the payload published after a successful match mutation.
type MatchEvent struct {
	Type        EventType `msgpack:"type"`
	MatchID     string    `msgpack:"match_id"`
	PlayerID    string    `msgpack:"player_id"`
	ScheduledAt string    `msgpack:"scheduled_at,omitempty"`
	Location    string    `msgpack:"location,omitempty"`
	OccurredAt  time.Time `msgpack:"occurred_at"`
}
