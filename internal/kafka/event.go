package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/applane/internal/domain"
	"github.com/google/uuid"
)

// AuditEvent is the wire form of a domain.Event on the audit topic.
type AuditEvent struct {
	Type        string    `json:"type"`
	Time        time.Time `json:"time"`
	Description string    `json:"description"`
	Email       string    `json:"email,omitempty"`
	FlightID    string    `json:"flight_id,omitempty"`
	SeatClass   int       `json:"seat_class,omitempty"`
}

func NewAuditEvent(e domain.Event) AuditEvent {
	ev := AuditEvent{
		Type:        string(e.Type),
		Time:        e.Time,
		Description: e.Description,
		Email:       e.Email,
		SeatClass:   int(e.SeatClass),
	}
	if e.FlightID != uuid.Nil {
		ev.FlightID = e.FlightID.String()
	}
	return ev
}

// Key partitions events by passenger, falling back to the flight.
func (e AuditEvent) Key() string {
	if e.Email != "" {
		return e.Email
	}
	return e.FlightID
}

func DecodeAuditEvent(data []byte) (AuditEvent, error) {
	var ev AuditEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return AuditEvent{}, fmt.Errorf("decode audit event: %w", err)
	}
	if ev.Type == "" {
		return AuditEvent{}, fmt.Errorf("decode audit event: missing type")
	}
	return ev, nil
}
