// Package notification turns verified GitHub push deliveries into commit notification messages.
package notification

import (
	"log/slog"

	"github.com/chapel-lang/github-commit-emailer/internal/models"
	"github.com/google/go-github/v84/github"
)

// EventStatus represents the terminal state reached by a delivery.
type EventStatus string

const (
	// Received is the initial state of every delivery.
	Received EventStatus = "received"
	// Skipped marks a delivery that produces no email.
	Skipped EventStatus = "skipped"
	// Sent marks a delivery whose email was handed to the transport.
	Sent EventStatus = "sent"
	// Errored marks a delivery that failed.
	Errored EventStatus = "error"
)

// Bus carries a single delivery through the processing chain.
type Bus struct {
	Body       []byte
	Headers    map[string]string
	EventType  string
	DeliveryID string

	Payload *github.PushEvent
	Event   *PushEvent
	Message *Message

	EventStatus EventStatus
	SkipReason  string
	Response    models.Response
}

// NewBus returns a Bus in the Received state for req.
func NewBus(req models.Request) *Bus {
	return &Bus{
		Body:        req.Body,
		Headers:     req.Headers,
		EventStatus: Received,
	}
}

// Skip moves the bus to the Skipped state.
func (b *Bus) Skip(reason string) {
	b.EventStatus = Skipped
	b.SkipReason = reason
}

// Done reports whether the bus reached a terminal state.
func (b *Bus) Done() bool {
	return b.EventStatus != Received
}

// LogValue returns the structured attributes describing the delivery.
func (b *Bus) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 5)
	attrs = append(attrs, slog.String("status", string(b.EventStatus)))
	if b.EventType != "" {
		attrs = append(attrs, slog.String("eventType", b.EventType))
	}
	if b.SkipReason != "" {
		attrs = append(attrs, slog.String("skipReason", b.SkipReason))
	}
	if b.Event != nil {
		attrs = append(attrs,
			slog.String("repository", b.Event.Repository),
			slog.String("revision", b.Event.Revision))
	}
	return slog.GroupValue(attrs...)
}
