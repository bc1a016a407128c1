package mail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
	"github.com/pkg/errors"
	gomail "github.com/wneessen/go-mail"
)

// Defaults for the SendGrid SMTP relay.
const (
	DefaultSMTPHost    = "smtp.sendgrid.net"
	DefaultSMTPPort    = 587
	DefaultSMTPTimeout = 10 * time.Second
)

// SMTPOption configures an SMTPTransport.
type SMTPOption func(*SMTPTransport)

// WithPort sets the SMTP port.
func WithPort(port int) SMTPOption {
	return func(t *SMTPTransport) {
		t.port = port
	}
}

// WithCredentials enables SMTP PLAIN authentication.
func WithCredentials(username, password string) SMTPOption {
	return func(t *SMTPTransport) {
		t.username = username
		t.password = password
	}
}

// WithTLSPolicy sets the STARTTLS policy: "mandatory", "opportunistic" or "none".
func WithTLSPolicy(policy string) SMTPOption {
	return func(t *SMTPTransport) {
		t.tlsPolicy = policy
	}
}

// WithTimeout bounds dialing and every SMTP command.
func WithTimeout(timeout time.Duration) SMTPOption {
	return func(t *SMTPTransport) {
		t.timeout = timeout
	}
}

// WithSMTPLogger sets the logger used by the transport.
func WithSMTPLogger(logger *slog.Logger) SMTPOption {
	return func(t *SMTPTransport) {
		t.logger = logger
	}
}

// SMTPTransport sends envelopes through an SMTP relay. Every Send dials its own
// connection and closes it before returning, so one instance serves concurrent requests.
type SMTPTransport struct {
	host      string
	port      int
	username  string
	password  string
	tlsPolicy string
	timeout   time.Duration
	logger    *slog.Logger

	policy gomail.TLSPolicy
}

// NewSMTPTransport returns a transport for the relay at host.
func NewSMTPTransport(host string, opts ...SMTPOption) (*SMTPTransport, error) {
	_inst := &SMTPTransport{
		host:      host,
		port:      DefaultSMTPPort,
		tlsPolicy: "mandatory",
		timeout:   DefaultSMTPTimeout,
	}
	for _, opt := range opts {
		opt(_inst)
	}
	_inst.logger = helpers.LoggerOrNoop(_inst.logger)
	if strings.TrimSpace(_inst.host) == "" {
		return nil, errors.New("missing SMTP host")
	}
	policy, err := parseTLSPolicy(_inst.tlsPolicy)
	if err != nil {
		return nil, err
	}
	_inst.policy = policy
	return _inst, nil
}

func parseTLSPolicy(policy string) (gomail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", "mandatory":
		return gomail.TLSMandatory, nil
	case "opportunistic":
		return gomail.TLSOpportunistic, nil
	case "none":
		return gomail.NoTLS, nil
	default:
		return gomail.NoTLS, fmt.Errorf("unsupported SMTP TLS policy: %s", policy)
	}
}

// Send delivers env in a single SMTP session.
func (t *SMTPTransport) Send(ctx context.Context, env *Envelope) error {
	msg, err := NewMsg(env)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(t.port),
		gomail.WithTimeout(t.timeout),
		gomail.WithTLSPolicy(t.policy),
	}
	if t.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(t.username),
			gomail.WithPassword(t.password))
	}
	client, err := gomail.NewClient(t.host, opts...)
	if err != nil {
		return errors.Wrap(err, "failed to create SMTP client")
	}

	t.logger.Debug("dialing SMTP relay...", slog.String("host", t.host), slog.Int("port", t.port))
	return client.DialAndSendWithContext(ctx, msg)
}

// NewMsg converts env into a go-mail message. Unparseable addresses yield ErrInvalidAddress.
func NewMsg(env *Envelope) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(env.From); err != nil {
		return nil, errors.Wrapf(ErrInvalidAddress, "sender %q: %v", env.From, err)
	}
	if err := msg.To(env.To); err != nil {
		return nil, errors.Wrapf(ErrInvalidAddress, "recipient %q: %v", env.To, err)
	}
	if len(env.Cc) > 0 {
		if err := msg.Cc(env.Cc...); err != nil {
			return nil, errors.Wrapf(ErrInvalidAddress, "CC list: %v", err)
		}
	}
	if env.ReplyTo != "" {
		if err := msg.ReplyTo(env.ReplyTo); err != nil {
			return nil, errors.Wrapf(ErrInvalidAddress, "reply-to %q: %v", env.ReplyTo, err)
		}
	}
	msg.Subject(env.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, env.Body)
	for _, h := range env.Headers {
		msg.SetGenHeader(gomail.Header(h.Name), h.Value)
	}
	return msg, nil
}
