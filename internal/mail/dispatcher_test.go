package mail_test

import (
	"context"
	"errors"
	"net"
	"net/textproto"
	"testing"

	"github.com/chapel-lang/github-commit-emailer/internal/mail"
	"github.com/chapel-lang/github-commit-emailer/internal/mail/mailtest"
	"github.com/chapel-lang/github-commit-emailer/internal/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testMessage = &notification.Message{
	Subject: "[Chapel Merge] Fix the bug",
	Body:    "Branch: refs/heads/main\n",
	Sender:  "Jo <jo@x.com>",
}

func TestNewDispatcher_RequiresRecipient(t *testing.T) {
	_, err := mail.NewDispatcher()
	assert.ErrorIs(t, err, mail.ErrNoRecipient)

	_, err = mail.NewDispatcher(mail.WithRecipient("   "))
	assert.ErrorIs(t, err, mail.ErrNoRecipient)
}

func TestDispatcher_Envelope(t *testing.T) {
	testCases := []struct {
		Name     string
		Options  []mail.DispatcherOption
		Expected *mail.Envelope
	}{
		{
			Name:    "recipient_only",
			Options: []mail.DispatcherOption{mail.WithRecipient("commits@lists.example.org")},
			Expected: &mail.Envelope{
				From:    "Jo <jo@x.com>",
				To:      "commits@lists.example.org",
				Subject: testMessage.Subject,
				Body:    testMessage.Body,
				Headers: []mail.Header{{Name: mail.HeaderSMTPAPI, Value: `{"filters":{"clicktrack":{"settings":{"enable":0}}}}`}},
			},
		},
		{
			Name: "all_options",
			Options: []mail.DispatcherOption{
				mail.WithRecipient("commits@lists.example.org"),
				mail.WithCC("a@x.com, b@x.com,,"),
				mail.WithReplyTo("dev@lists.example.org"),
				mail.WithApprovedHeader("s3cret"),
			},
			Expected: &mail.Envelope{
				From:    "Jo <jo@x.com>",
				To:      "commits@lists.example.org",
				Cc:      []string{"a@x.com", "b@x.com"},
				ReplyTo: "dev@lists.example.org",
				Subject: testMessage.Subject,
				Body:    testMessage.Body,
				Headers: []mail.Header{
					{Name: mail.HeaderApproved, Value: "s3cret"},
					{Name: mail.HeaderSMTPAPI, Value: mail.ClickTrackingDisabled},
				},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			d, err := mail.NewDispatcher(tc.Options...)
			require.NoError(t, err)

			env, err := d.Envelope(testMessage)
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, env)

			v, ok := env.Header("x-smtpapi")
			assert.True(t, ok)
			assert.Equal(t, mail.ClickTrackingDisabled, v)
		})
	}
}

func TestDispatcher_Envelope_RequiresSender(t *testing.T) {
	d, err := mail.NewDispatcher(mail.WithRecipient("commits@lists.example.org"))
	require.NoError(t, err)

	_, err = d.Envelope(&notification.Message{Subject: "s"})
	assert.ErrorIs(t, err, notification.ErrNoSender)
}

func TestDispatcher_Dispatch(t *testing.T) {
	d, err := mail.NewDispatcher(mail.WithRecipient("commits@lists.example.org"))
	require.NoError(t, err)

	transport := new(mailtest.Transport)
	transport.On("Send", mock.Anything, mock.AnythingOfType("*mail.Envelope")).Return(nil).Once()

	require.NoError(t, d.Dispatch(context.Background(), testMessage, transport))
	transport.AssertNumberOfCalls(t, "Send", 1)
	assert.Equal(t, "commits@lists.example.org", transport.Sent()[0].To)
}

func TestDispatcher_Dispatch_TransportError(t *testing.T) {
	testCases := []struct {
		Name     string
		Err      error
		Expected mail.Category
	}{
		{
			Name:     "connection_refused",
			Err:      &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
			Expected: mail.CategoryConnection,
		},
		{
			Name:     "dns",
			Err:      &net.DNSError{Err: "no such host", Name: "smtp.invalid"},
			Expected: mail.CategoryConnection,
		},
		{
			Name:     "deadline",
			Err:      context.DeadlineExceeded,
			Expected: mail.CategoryConnection,
		},
		{
			Name:     "bad_credentials",
			Err:      &textproto.Error{Code: 535, Msg: "Authentication failed: Bad username / password"},
			Expected: mail.CategoryCredentials,
		},
		{
			Name:     "rejected_recipient",
			Err:      &textproto.Error{Code: 550, Msg: "mailbox unavailable"},
			Expected: mail.CategoryProtocol,
		},
		{
			Name:     "unknown",
			Err:      errors.New("unexpected EOF"),
			Expected: mail.CategoryProtocol,
		},
	}

	d, err := mail.NewDispatcher(mail.WithRecipient("commits@lists.example.org"))
	require.NoError(t, err)

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			transport := new(mailtest.Transport)
			transport.On("Send", mock.Anything, mock.Anything).Return(tc.Err).Once()

			err := d.Dispatch(context.Background(), testMessage, transport)

			var transportErr *mail.TransportError
			require.ErrorAs(t, err, &transportErr)
			assert.Equal(t, tc.Expected, transportErr.Category)
			assert.ErrorIs(t, err, tc.Err)
			transport.AssertNumberOfCalls(t, "Send", 1)
		})
	}
}

func TestDispatcher_Dispatch_NilTransport(t *testing.T) {
	d, err := mail.NewDispatcher(mail.WithRecipient("commits@lists.example.org"))
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), testMessage, nil)
	var internalErr *notification.InternalError
	assert.ErrorAs(t, err, &internalErr)
}

func TestNewTransportError(t *testing.T) {
	assert.NoError(t, mail.NewTransportError(nil))

	first := mail.NewTransportError(&textproto.Error{Code: 535, Msg: "nope"})
	assert.Same(t, first, mail.NewTransportError(first))
	assert.Contains(t, first.Error(), "credentials")
}

func TestDispatcher_Dispatch_InvalidAddress(t *testing.T) {
	d, err := mail.NewDispatcher(mail.WithRecipient("commits@lists.example.org"))
	require.NoError(t, err)

	transport := new(mailtest.Transport)
	transport.On("Send", mock.Anything, mock.Anything).
		Return(errors.Join(mail.ErrInvalidAddress, errors.New("mail: missing '@' or angle-addr"))).Once()

	err = d.Dispatch(context.Background(), testMessage, transport)
	assert.ErrorIs(t, err, mail.ErrInvalidAddress)
	var transportErr *mail.TransportError
	assert.False(t, errors.As(err, &transportErr))
}

func TestDispatcher_Envelope_BotPusher(t *testing.T) {
	composer, err := notification.NewComposer(notification.WithSendFromAuthor(true))
	require.NoError(t, err)
	msg, err := composer.Compose(&notification.PushEvent{
		Ref:         "refs/heads/main",
		Revision:    "abcdef1",
		Message:     "Bump dependencies",
		PusherName:  "github-actions[bot]",
		PusherEmail: "41898282+github-actions[bot]@users.noreply.github.com",
		CompareURL:  "https://github.com/chapel-lang/chapel/compare/a...b",
	})
	require.NoError(t, err)

	d, err := mail.NewDispatcher(mail.WithRecipient("commits@lists.example.org"))
	require.NoError(t, err)
	env, err := d.Envelope(msg)
	require.NoError(t, err)

	gm, err := mail.NewMsg(env)
	require.NoError(t, err)
	from := gm.GetFromString()
	require.Len(t, from, 1)
	assert.Contains(t, from[0], "github-actions[bot]")
}
