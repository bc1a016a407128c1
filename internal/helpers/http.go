package helpers

import (
	"net/http"
	"strings"

	"github.com/chapel-lang/github-commit-emailer/internal/models"
)

// NormaliseHeaders flattens h into a map with lower-cased keys, keeping the first value of each header.
func NormaliseHeaders[V string | []string](h map[string]V) map[string]string {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		switch vt := any(v).(type) {
		case string:
			headers[strings.ToLower(k)] = vt
		case []string:
			if len(vt) > 0 {
				headers[strings.ToLower(k)] = vt[0]
			}
		}
	}
	return headers
}

// RespondHTTP writes response as plain text. A zero status code is sent as 200.
func RespondHTTP(response models.Response, rw http.ResponseWriter) {
	for k, v := range response.Headers {
		rw.Header().Set(k, v)
	}
	if rw.Header().Get("Content-Type") == "" {
		rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	statusCode := response.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	rw.WriteHeader(statusCode)
	_, _ = rw.Write([]byte(response.Body))
}
