package helpers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
	"github.com/chapel-lang/github-commit-emailer/internal/models"
	"github.com/stretchr/testify/assert"
)

type expectedResponse struct {
	StatusCode int
	Body       string
	Header     string
}

func TestRespondHTTP(t *testing.T) {
	testCases := []struct {
		Name     string
		Response models.Response
		Expected expectedResponse
	}{
		{
			Name: "with_valid_response",
			Response: models.Response{
				StatusCode: http.StatusOK,
				Body:       "yep",
			},
			Expected: expectedResponse{
				StatusCode: http.StatusOK,
				Body:       "yep",
				Header:     "text/plain; charset=utf-8",
			},
		},
		{
			Name: "with_custom_header",
			Response: models.Response{
				StatusCode: http.StatusBadGateway,
				Body:       "error",
				Headers:    map[string]string{"Content-Type": "application/json"},
			},
			Expected: expectedResponse{
				StatusCode: http.StatusBadGateway,
				Body:       "error",
				Header:     "application/json",
			},
		},
		{
			Name:     "with_empty_response",
			Response: models.Response{},
			Expected: expectedResponse{
				StatusCode: http.StatusOK,
				Body:       "",
				Header:     "text/plain; charset=utf-8",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			rw := httptest.NewRecorder()

			helpers.RespondHTTP(tc.Response, rw)

			assert.Equal(t, tc.Expected.StatusCode, rw.Code)
			assert.Equal(t, tc.Expected.Header, rw.Header().Get("Content-Type"))
			assert.Equal(t, tc.Expected.Body, rw.Body.String())
		})
	}
}

func TestNormaliseHeaders(t *testing.T) {
	h := http.Header{}
	h.Add("X-GitHub-Event", "push")
	h.Add("X-GitHub-Event", "ping")
	h["X-Empty"] = []string{}

	assert.Equal(t, map[string]string{"x-github-event": "push"}, helpers.NormaliseHeaders(h))
	assert.Equal(t, map[string]string{"x-hub-signature": "sha1=00"},
		helpers.NormaliseHeaders(map[string]string{"X-Hub-Signature": "sha1=00"}))
}
