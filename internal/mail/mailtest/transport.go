// Package mailtest provides a mock mail transport.
package mailtest

import (
	"context"

	"github.com/chapel-lang/github-commit-emailer/internal/mail"
	"github.com/stretchr/testify/mock"
)

// Transport is a mail.Transport recording every Send call.
type Transport struct {
	mock.Mock
}

// Send records env and returns the configured error.
func (t *Transport) Send(ctx context.Context, env *mail.Envelope) error {
	args := t.Called(ctx, env)
	return args.Error(0)
}

// Sent returns the envelopes passed to Send, in call order.
func (t *Transport) Sent() []*mail.Envelope {
	var envs []*mail.Envelope
	for _, call := range t.Calls {
		if call.Method == "Send" {
			envs = append(envs, call.Arguments.Get(1).(*mail.Envelope))
		}
	}
	return envs
}
