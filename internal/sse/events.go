// Package sse implements Server-Sent Events for real-time card updates and event broadcasting.
package sse

import (
	"time"

	"github.com/linkcardapp/linkcard-server/internal/domain"
)

// SSE is server-to-client only. The editor pushes mutations over the
// regular HTTP API; the stream exists so other open sessions for the same
// user (a second tab, a preview window) see changes as they land.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventCardUpdated represents a draft document change for a user.
	// Sent only to the owning user's connections.
	EventCardUpdated EventType = "card.updated"
	// EventCardPublished represents a card being published to the directory.
	EventCardPublished EventType = "card.published"
	// EventCardUnpublished represents a card being removed from the directory.
	EventCardUnpublished EventType = "card.unpublished"

	// EventTemplatesReloaded represents the template registry picking up
	// changed template files.
	EventTemplatesReloaded EventType = "templates.reloaded"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"` // Event-specific data as JSON object
	Type      EventType `json:"type"`

	// When set, the event is only delivered to connections belonging to
	// this user. Empty string means broadcast to all.
	UserID string `json:"-"`
}

// CardUpdatedEventData is the data payload for card.updated events.
// Carries the full document so receiving sessions render without a refetch.
type CardUpdatedEventData struct {
	Card domain.CardData `json:"card"`
}

// CardPublishedEventData is the data payload for card.published events.
type CardPublishedEventData struct {
	UserID      string    `json:"userId"`
	Handle      string    `json:"handle"`
	PublishedAt time.Time `json:"publishedAt"`
}

// CardUnpublishedEventData is the data payload for card.unpublished events.
type CardUnpublishedEventData struct {
	UserID string `json:"userId"`
	Handle string `json:"handle"`
}

// TemplatesReloadedEventData is the data payload for templates.reloaded events.
type TemplatesReloadedEventData struct {
	Count      int       `json:"count"`
	ReloadedAt time.Time `json:"reloadedAt"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewCardUpdatedEvent creates a card.updated event targeted at the owning user.
func NewCardUpdatedEvent(userID string, card domain.CardData) Event {
	return Event{
		Type:      EventCardUpdated,
		Data:      CardUpdatedEventData{Card: card},
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// NewCardPublishedEvent creates a card.published event.
func NewCardPublishedEvent(userID, handle string, publishedAt time.Time) Event {
	return Event{
		Type: EventCardPublished,
		Data: CardPublishedEventData{
			UserID:      userID,
			Handle:      handle,
			PublishedAt: publishedAt,
		},
		Timestamp: time.Now(),
	}
}

// NewCardUnpublishedEvent creates a card.unpublished event.
func NewCardUnpublishedEvent(userID, handle string) Event {
	return Event{
		Type: EventCardUnpublished,
		Data: CardUnpublishedEventData{
			UserID: userID,
			Handle: handle,
		},
		Timestamp: time.Now(),
	}
}

// NewTemplatesReloadedEvent creates a templates.reloaded event.
func NewTemplatesReloadedEvent(count int) Event {
	return Event{
		Type: EventTemplatesReloaded,
		Data: TemplatesReloadedEventData{
			Count:      count,
			ReloadedAt: time.Now(),
		},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
