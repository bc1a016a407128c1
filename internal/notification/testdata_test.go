package notification_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-github/v84/github"
	"github.com/stretchr/testify/require"
)

const mergePayload = `{
  "ref": "refs/heads/main",
  "deleted": false,
  "compare": "http://example/compare",
  "head_commit": {
    "id": "abcdef1234567",
    "message": "Merged pull request #1\n\nFix the bug",
    "added": ["a.txt"],
    "removed": [],
    "modified": ["b.txt"]
  },
  "pusher": {"name": "Jo", "email": "jo@x.com"},
  "repository": {"full_name": "org/repo"}
}`

func decodePush(t *testing.T, payload string) *github.PushEvent {
	t.Helper()
	var e github.PushEvent
	require.NoError(t, json.Unmarshal([]byte(payload), &e))
	return &e
}
