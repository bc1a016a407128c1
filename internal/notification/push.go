package notification

import (
	"strings"

	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
	"github.com/google/go-github/v84/github"
	"github.com/pkg/errors"
)

// RevisionLength is the number of commit id characters kept in a revision.
const RevisionLength = 7

// PushEvent is the validated subset of a push payload used to build a message.
type PushEvent struct {
	Repository  string
	Ref         string
	Revision    string
	Message     string
	PusherName  string
	PusherEmail string
	Added       []string
	Removed     []string
	Modified    []string
	Deleted     bool
	CompareURL  string
}

// NewPushEvent validates e and extracts a PushEvent from it.
// Branch deletions are rejected with ErrBranchDeleted, missing fields with ErrMalformedPayload.
func NewPushEvent(e *github.PushEvent) (*PushEvent, error) {
	if e == nil {
		return nil, errors.Wrap(ErrMalformedPayload, "empty payload")
	}
	if e.GetDeleted() {
		return nil, ErrBranchDeleted
	}

	var missing []string
	require := func(name string, v *string) {
		if v == nil {
			missing = append(missing, name)
		}
	}
	require("ref", e.Ref)
	require("compare", e.Compare)
	if repo := e.GetRepo(); repo == nil {
		missing = append(missing, "repository")
	} else {
		require("repository.full_name", repo.FullName)
	}
	if pusher := e.GetPusher(); pusher == nil {
		missing = append(missing, "pusher")
	} else {
		require("pusher.name", pusher.Name)
		require("pusher.email", pusher.Email)
	}
	headCommit := e.GetHeadCommit()
	if headCommit == nil {
		missing = append(missing, "head_commit")
	} else {
		require("head_commit.id", headCommit.ID)
		require("head_commit.message", headCommit.Message)
	}
	if len(missing) > 0 {
		return nil, errors.Wrapf(ErrMalformedPayload, "missing %s", strings.Join(missing, ", "))
	}

	return &PushEvent{
		Repository:  e.GetRepo().GetFullName(),
		Ref:         e.GetRef(),
		Revision:    helpers.Truncate(headCommit.GetID(), RevisionLength),
		Message:     headCommit.GetMessage(),
		PusherName:  e.GetPusher().GetName(),
		PusherEmail: e.GetPusher().GetEmail(),
		Added:       headCommit.Added,
		Removed:     headCommit.Removed,
		Modified:    headCommit.Modified,
		CompareURL:  e.GetCompare(),
	}, nil
}
