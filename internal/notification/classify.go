package notification

import "github.com/google/go-github/v84/github"

// EventTypePush is the only event type that produces email.
const EventTypePush = "push"

// Skip reasons reported by Classify.
const (
	ReasonUnsupportedEvent = "unsupported-event"
	ReasonBranchDeleted    = "branch-deleted"
	ReasonEmptyPayload     = "empty-payload"
	// ReasonInvalidSignature is set by signature verification before classification runs.
	ReasonInvalidSignature = "invalid-signature"
)

// Action is the outcome of classifying a delivery.
type Action int

const (
	// Skip means no email is generated.
	Skip Action = iota
	// Process means the delivery continues to composition.
	Process
)

func (a Action) String() string {
	if a == Process {
		return "process"
	}
	return "skip"
}

// Decision is an Action together with the reason for skipping, if any.
type Decision struct {
	Action Action
	Reason string
}

// Classify decides whether a delivery of eventType carrying event should produce an email.
func Classify(eventType string, event *github.PushEvent) Decision {
	switch {
	case eventType != EventTypePush:
		return Decision{Action: Skip, Reason: ReasonUnsupportedEvent}
	case event == nil:
		return Decision{Action: Skip, Reason: ReasonEmptyPayload}
	case event.GetDeleted():
		return Decision{Action: Skip, Reason: ReasonBranchDeleted}
	default:
		return Decision{Action: Process}
	}
}
