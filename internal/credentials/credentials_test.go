package credentials_test

import (
	"context"
	"errors"
	"testing"

	"github.com/chapel-lang/github-commit-emailer/internal/config"
	"github.com/chapel-lang/github-commit-emailer/internal/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	values map[string]string
	err    error
}

func (f fakeGetter) GetSecret(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.values[key], nil
}

func TestRetrieve(t *testing.T) {
	getter := fakeGetter{values: map[string]string{
		"github-commit-emailer": `{"webhook_secret":"hook","smtp_username":"apikey","smtp_password":"pw","rollbar_access_token":"rb"}`,
		"broken":                `{"webhook_secret":`,
	}}

	testCases := []struct {
		Name        string
		Source      string
		Key         string
		Getter      credentials.SecretGetter
		Expected    *credentials.Credentials
		ExpectError bool
	}{
		{
			Name:     "env",
			Source:   config.SecretsSourceEnv,
			Getter:   getter,
			Expected: &credentials.Credentials{},
		},
		{
			Name:   "ssm",
			Source: "SSM",
			Key:    "github-commit-emailer",
			Getter: getter,
			Expected: &credentials.Credentials{
				WebhookSecret:      "hook",
				SMTPUsername:       "apikey",
				SMTPPassword:       "pw",
				RollbarAccessToken: "rb",
			},
		},
		{Name: "ssm_invalid_json", Source: config.SecretsSourceSSM, Key: "broken", Getter: getter, ExpectError: true},
		{Name: "ssm_fetch_error", Source: config.SecretsSourceSSM, Key: "x", Getter: fakeGetter{err: errors.New("denied")}, ExpectError: true},
		{Name: "ssm_without_getter", Source: config.SecretsSourceSSM, Key: "x", ExpectError: true},
		{Name: "unsupported", Source: "vault", Getter: getter, ExpectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			c, err := credentials.Retrieve(context.Background(), tc.Source, tc.Key, tc.Getter)
			if tc.ExpectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, c)
		})
	}
}

func TestCredentials_Apply(t *testing.T) {
	config.GitHub.WebhookSecret = "from-env"
	config.SMTP.Username = "env-user"
	config.SMTP.Password = ""
	config.Reporting.AccessToken = ""
	t.Cleanup(func() {
		config.GitHub.WebhookSecret = ""
		config.SMTP.Username = ""
		config.SMTP.Password = ""
	})

	(&credentials.Credentials{SMTPPassword: "pw"}).Apply()

	assert.Equal(t, "from-env", config.GitHub.WebhookSecret)
	assert.Equal(t, "env-user", config.SMTP.Username)
	assert.Equal(t, "pw", config.SMTP.Password)
	assert.Empty(t, config.Reporting.AccessToken)
}
