package notification

import (
	netmail "net/mail"
	"strings"

	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
	"github.com/pkg/errors"
)

const (
	// DefaultSubjectTag prefixes every subject line.
	DefaultSubjectTag = "[Chapel Merge]"
	// SubjectMaxLength is the maximum number of commit message characters kept in a subject.
	SubjectMaxLength = 50
)

// Message is the composed part of an outbound email.
type Message struct {
	Subject string
	Body    string
	Sender  string
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithSubjectTag sets the literal tag placed before every subject.
func WithSubjectTag(tag string) ComposerOption {
	return func(c *Composer) {
		c.subjectTag = tag
	}
}

// WithSendFromAuthor sends messages from the pusher instead of the fixed sender.
func WithSendFromAuthor(enabled bool) ComposerOption {
	return func(c *Composer) {
		c.sendFromAuthor = enabled
	}
}

// WithSender sets the fixed sender address.
func WithSender(sender string) ComposerOption {
	return func(c *Composer) {
		c.sender = strings.TrimSpace(sender)
	}
}

// Composer builds messages from push events. It holds no mutable state.
type Composer struct {
	subjectTag     string
	sendFromAuthor bool
	sender         string
}

// NewComposer returns a Composer, or ErrNoSender when no sender policy is usable.
func NewComposer(opts ...ComposerOption) (*Composer, error) {
	_inst := &Composer{subjectTag: DefaultSubjectTag}
	for _, opt := range opts {
		opt(_inst)
	}
	if !_inst.sendFromAuthor && _inst.sender == "" {
		return nil, ErrNoSender
	}
	return _inst, nil
}

// Compose builds the subject, body and sender for e.
func (c *Composer) Compose(e *PushEvent) (*Message, error) {
	if e == nil {
		return nil, NewInternalErrorf("nil push event")
	}
	sender, err := c.Sender(e)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	if err = body.Execute(&b, e); err != nil {
		return nil, errors.Wrap(err, "failed to render message body")
	}

	return &Message{
		Subject: c.Subject(e.Message),
		Body:    b.String(),
		Sender:  sender,
	}, nil
}

// Subject derives the subject line from a commit message. Merge commits carry the
// human summary on the third line, so that line is used whenever it exists.
func (c *Composer) Subject(message string) string {
	var source string
	switch lines := helpers.SplitLines(message); {
	case len(lines) >= 3:
		source = lines[2]
	case len(lines) > 0:
		source = lines[0]
	}
	return c.subjectTag + " " + helpers.Truncate(source, SubjectMaxLength)
}

// Sender returns the From address for e according to the sender policy.
// Author addresses are quoted as needed, so bot pushers such as "github-actions[bot]" stay parseable.
func (c *Composer) Sender(e *PushEvent) (string, error) {
	if c.sendFromAuthor {
		sender := (&netmail.Address{Name: e.PusherName, Address: e.PusherEmail}).String()
		if _, err := netmail.ParseAddress(sender); err != nil {
			return "", errors.Wrapf(ErrMalformedPayload, "invalid pusher address %q: %v", e.PusherEmail, err)
		}
		return sender, nil
	}
	if c.sender == "" {
		return "", ErrNoSender
	}
	return c.sender, nil
}
