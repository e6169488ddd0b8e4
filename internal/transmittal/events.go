package transmittal

import (
	"context"
	"time"

	"github.com/vijay-1103/transmittal-craft/internal/models"
)

// EventType names a lifecycle change
type EventType string

const (
	EventCreated    EventType = "transmittal.created"
	EventUpdated    EventType = "transmittal.updated"
	EventDeleted    EventType = "transmittal.deleted"
	EventGenerated  EventType = "transmittal.generated"
	EventDuplicated EventType = "transmittal.duplicated"
	EventSent       EventType = "transmittal.sent"
	EventReceived   EventType = "transmittal.received"
)

// Event is published after every successful mutation
type Event struct {
	Type              EventType     `json:"type"`
	TransmittalID     string        `json:"transmittal_id"`
	Status            models.Status `json:"status"`
	TransmittalNumber *string       `json:"transmittal_number,omitempty"`
	SourceID          string        `json:"source_id,omitempty"`
	At                time.Time     `json:"at"`
}

// Publisher fans events out to listeners. Publish must not block.
type Publisher interface {
	Publish(event Event)
}

// Archiver keeps a copy of the printable transmittal once it is generated
type Archiver interface {
	Archive(ctx context.Context, t *models.Transmittal, pdf []byte) error
}
