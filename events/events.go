// Package events defines the realtime event envelope and the publish capability
// the domain services use to announce match activity.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/campuscarry/campuscarry-api/models"
	"github.com/google/uuid"
)

// Name identifies the kind of event a client receives
type Name string

const (
	MatchCreated       Name = "match-created"
	MatchStatusUpdated Name = "match-status-updated"
	NewMessage         Name = "new-message"
)

// Event is a single broadcast on a match room
type Event struct {
	ID         uuid.UUID `json:"id"`
	Name       Name      `json:"event"`
	Room       string    `json:"room"`
	MatchID    uint      `json:"match_id"`
	Data       any       `json:"data"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event for the given match room
func New(name Name, matchID uint, data any) Event {
	return Event{
		ID:         uuid.New(),
		Name:       name,
		Room:       models.MatchRoom(matchID),
		MatchID:    matchID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// Encode renders the event as the JSON frame sent to every sink
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier publishes events. Implementations must not block on slow consumers;
// callers treat a returned error as informational only.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, event Event) error

func (f NotifierFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
