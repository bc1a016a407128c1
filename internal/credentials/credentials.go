// Package credentials resolves the secrets the service needs from the environment or SSM.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chapel-lang/github-commit-emailer/internal/config"
	"github.com/pkg/errors"
)

// SecretGetter fetches a secret document by key.
type SecretGetter interface {
	GetSecret(ctx context.Context, key string) (string, error)
}

// Credentials is the JSON document stored in the secret store.
type Credentials struct {
	WebhookSecret      string `json:"webhook_secret,omitempty"`
	SMTPUsername       string `json:"smtp_username,omitempty"`
	SMTPPassword       string `json:"smtp_password,omitempty"`
	RollbarAccessToken string `json:"rollbar_access_token,omitempty"`
}

// Retrieve returns the credentials for source. The env source reads nothing beyond the
// already-bound configuration and returns empty credentials.
func Retrieve(ctx context.Context, source, key string, getter SecretGetter) (*Credentials, error) {
	switch strings.TrimSpace(strings.ToLower(source)) {
	case config.SecretsSourceEnv, "":
		return &Credentials{}, nil
	case config.SecretsSourceSSM:
		if getter == nil {
			return nil, errors.New("no secret store configured")
		}
		secret, err := getter.GetSecret(ctx, key)
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch credentials from SSM")
		}
		var c Credentials
		if err = json.Unmarshal([]byte(secret), &c); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal credentials")
		}
		return &c, nil
	default:
		return nil, fmt.Errorf("unsupported secrets source: %s", source)
	}
}

// Apply overlays the non-empty credentials onto the configuration.
func (c *Credentials) Apply() {
	if c.WebhookSecret != "" {
		config.GitHub.WebhookSecret = c.WebhookSecret
	}
	if c.SMTPUsername != "" {
		config.SMTP.Username = c.SMTPUsername
	}
	if c.SMTPPassword != "" {
		config.SMTP.Password = c.SMTPPassword
	}
	if c.RollbarAccessToken != "" {
		config.Reporting.AccessToken = c.RollbarAccessToken
	}
}
