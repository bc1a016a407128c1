// Package mail assembles commit notification envelopes and hands them to an SMTP transport.
package mail

import (
	"context"
	"log/slog"
	"strings"
)

// Header is an additional message header. Order is preserved on the wire.
type Header struct {
	Name  string
	Value string
}

// Envelope is a fully addressed outbound message.
type Envelope struct {
	From    string
	To      string
	Cc      []string
	ReplyTo string
	Subject string
	Body    string
	Headers []Header
}

// Header returns the value of the first header named name.
func (e *Envelope) Header(name string) (string, bool) {
	for _, h := range e.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// LogValue omits the body.
func (e *Envelope) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("from", e.From),
		slog.String("to", e.To),
		slog.Any("cc", e.Cc),
		slog.String("subject", e.Subject))
}

// Transport delivers an envelope synchronously. Implementations must be safe for concurrent use
// and must release any connection they acquire before returning.
type Transport interface {
	Send(ctx context.Context, env *Envelope) error
}
