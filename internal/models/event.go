package models

import "time"

// Event represents an AWS EventBridge event relaying a webhook delivery.
type Event struct {
	ID         string      `json:"id"`
	Time       time.Time   `json:"time"`
	Region     string      `json:"region"`
	Source     string      `json:"source"`
	Account    string      `json:"account"`
	Version    string      `json:"version"`
	Detail     EventDetail `json:"detail"`
	DetailType string      `json:"detail-type"`
	Resources  []string    `json:"resources"`
}

// EventDetail carries the incoming webhook headers and body.
// Body must be the exact bytes GitHub signed; IsBase64Encoded marks a base64 transport encoding.
type EventDetail struct {
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded,omitempty"`
}
