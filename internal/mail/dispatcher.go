package mail

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
	"github.com/chapel-lang/github-commit-emailer/internal/notification"
)

const (
	// HeaderApproved is the moderation bypass header understood by mailing list managers.
	HeaderApproved = "Approved"
	// HeaderSMTPAPI carries SendGrid delivery settings.
	HeaderSMTPAPI = "X-SMTPAPI"
	// CCSeparator splits the configured CC list.
	CCSeparator = ","
)

type smtpAPISettings struct {
	Filters struct {
		ClickTrack struct {
			Settings struct {
				Enable int `json:"enable"`
			} `json:"settings"`
		} `json:"clicktrack"`
	} `json:"filters"`
}

// ClickTrackingDisabled is the X-SMTPAPI value that stops SendGrid from rewriting links.
var ClickTrackingDisabled = func() string {
	var s smtpAPISettings
	b, _ := json.Marshal(s)
	return string(b)
}()

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRecipient sets the primary recipient.
func WithRecipient(recipient string) DispatcherOption {
	return func(d *Dispatcher) {
		d.recipient = strings.TrimSpace(recipient)
	}
}

// WithCC sets the carbon copy list from a comma separated value.
func WithCC(cc string) DispatcherOption {
	return func(d *Dispatcher) {
		d.cc = helpers.SplitList(cc, CCSeparator)
	}
}

// WithReplyTo sets the Reply-To header.
func WithReplyTo(replyTo string) DispatcherOption {
	return func(d *Dispatcher) {
		d.replyTo = strings.TrimSpace(replyTo)
	}
}

// WithApprovedHeader sets the Approved header value.
func WithApprovedHeader(approved string) DispatcherOption {
	return func(d *Dispatcher) {
		d.approved = approved
	}
}

// WithLogger sets the logger used by the dispatcher.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// Dispatcher addresses composed messages and sends them through a Transport.
type Dispatcher struct {
	recipient string
	cc        []string
	replyTo   string
	approved  string
	logger    *slog.Logger
}

// NewDispatcher returns a Dispatcher, or ErrNoRecipient when no recipient is configured.
func NewDispatcher(opts ...DispatcherOption) (*Dispatcher, error) {
	_inst := &Dispatcher{}
	for _, opt := range opts {
		opt(_inst)
	}
	_inst.logger = helpers.LoggerOrNoop(_inst.logger)
	if _inst.recipient == "" {
		return nil, ErrNoRecipient
	}
	return _inst, nil
}

// Envelope addresses msg.
func (d *Dispatcher) Envelope(msg *notification.Message) (*Envelope, error) {
	if msg == nil {
		return nil, notification.NewInternalErrorf("nil message")
	}
	if d.recipient == "" {
		return nil, ErrNoRecipient
	}
	if msg.Sender == "" {
		return nil, notification.ErrNoSender
	}

	env := &Envelope{
		From:    msg.Sender,
		To:      d.recipient,
		Cc:      d.cc,
		ReplyTo: d.replyTo,
		Subject: msg.Subject,
		Body:    msg.Body,
	}
	if d.approved != "" {
		env.Headers = append(env.Headers, Header{Name: HeaderApproved, Value: d.approved})
	}
	env.Headers = append(env.Headers, Header{Name: HeaderSMTPAPI, Value: ClickTrackingDisabled})
	return env, nil
}

// Dispatch addresses msg and makes exactly one delivery attempt through transport.
// Delivery failures are returned as *TransportError, unparseable addresses as ErrInvalidAddress.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *notification.Message, transport Transport) error {
	if transport == nil {
		return notification.NewInternalErrorf("nil mail transport")
	}
	env, err := d.Envelope(msg)
	if err != nil {
		return err
	}

	d.logger.Info("sending email", slog.Any("envelope", env))
	if err = transport.Send(ctx, env); err != nil {
		err = NewTransportError(err)
		d.logger.Error("failed to send email", slog.Any("error", err))
		return err
	}
	d.logger.Debug("email sent")
	return nil
}
