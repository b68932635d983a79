package events

import "context"

// StreamAudit carries every persisted audit event to live dashboards.
const StreamAudit = "events:audit"

// Event types
const (
	EventAccessRecorded = "access_event"
	EventChangeRecorded = "change_event"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
	// Recent returns up to n of the latest events on stream, oldest first.
	Recent(ctx context.Context, stream string, n int) ([]Event, error)
}

// BacklogKey names the capped list holding a stream's latest events.
func BacklogKey(stream string) string {
	return stream + ":recent"
}
