package notification

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedPayload is returned when a push payload lacks fields required to build a message.
	ErrMalformedPayload = errors.New("malformed push payload")
	// ErrBranchDeleted is returned when a PushEvent is requested for a branch deletion.
	ErrBranchDeleted = errors.New("push deletes the branch")
	// ErrNoSender is returned when neither the pusher nor a fixed address can be used as sender.
	ErrNoSender = errors.New("no sender configured: set a sender address or enable sending from the author")
)

// InternalError reports misuse of the processing chain.
type InternalError struct {
	Cause error
}

func (m *InternalError) Error() string {
	return fmt.Sprintf("notification error: %v", m.Cause)
}

func (m *InternalError) Unwrap() error {
	return m.Cause
}

// NewInternalErrorf returns an *InternalError with a formatted cause.
func NewInternalErrorf(format string, args ...any) error {
	return &InternalError{Cause: errors.Errorf(format, args...)}
}
