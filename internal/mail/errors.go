package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"

	gomail "github.com/wneessen/go-mail"
)

var (
	// ErrNoRecipient is returned when no primary recipient is configured.
	ErrNoRecipient = errors.New("no recipient configured")
	// ErrInvalidAddress is returned when an envelope address cannot be parsed. No SMTP session is opened.
	ErrInvalidAddress = errors.New("invalid mail address")
)

// Category classifies a transport failure.
type Category string

const (
	// CategoryConnection covers DNS, dial, timeout and TLS negotiation failures.
	CategoryConnection Category = "connection"
	// CategoryCredentials covers rejected SMTP authentication.
	CategoryCredentials Category = "credentials"
	// CategoryProtocol covers everything the server rejected after a successful login.
	CategoryProtocol Category = "protocol"
)

// TransportError is returned by Dispatch when the transport failed to deliver.
type TransportError struct {
	Category Category
	Cause    error
}

// NewTransportError wraps err with its Category. A nil err yields nil and
// ErrInvalidAddress is returned unchanged.
func NewTransportError(err error) error {
	if err == nil || errors.Is(err, ErrInvalidAddress) {
		return err
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr
	}
	return &TransportError{Category: categorize(err), Cause: err}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mail transport %s error: %v", e.Category, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// SMTP reply codes signalling an authentication problem.
var credentialCodes = map[int]struct{}{
	530: {}, // authentication required
	534: {}, // mechanism too weak
	535: {}, // credentials invalid
	538: {}, // encryption required for mechanism
}

func categorize(err error) Category {
	var (
		protoErr *textproto.Error
		sendErr  *gomail.SendError
		dnsErr   *net.DNSError
		opErr    *net.OpError
		netErr   net.Error
	)
	switch {
	case errors.As(err, &protoErr):
		if _, ok := credentialCodes[protoErr.Code]; ok {
			return CategoryCredentials
		}
		return CategoryProtocol
	case errors.As(err, &dnsErr), errors.As(err, &opErr), errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return CategoryConnection
	case errors.As(err, &sendErr):
		return CategoryProtocol
	default:
		return CategoryProtocol
	}
}
