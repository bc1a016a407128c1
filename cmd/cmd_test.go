package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chapel-lang/github-commit-emailer/internal/config"
	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	require.NoError(t, config.LoadFromFile(path))
	require.NoError(t, config.SetDefaults())
}

func TestBindEnvMap(t *testing.T) {
	var (
		presence, plain, unset bool
		name                   string
		port, verbosity        int
		timeout                time.Duration
	)
	t.Setenv("TEST_PRESENCE", "")
	t.Setenv("TEST_PLAIN", "")
	t.Setenv("TEST_NAME", "from-env")
	t.Setenv("TEST_PORT", "2525")
	t.Setenv("TEST_TIMEOUT", "3s")

	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	viper.AutomaticEnv()
	bindEnvMap(cmd, map[*bool]boundEnvVar[bool]{
		&presence: {Name: "presence", Env: helpers.Ptr("TEST_PRESENCE"), Presence: true},
		&plain:    {Name: "plain", Env: helpers.Ptr("TEST_PLAIN")},
		&unset:    {Name: "unset", Env: helpers.Ptr("TEST_UNSET_BOOL"), Presence: true},
	})
	bindEnvMap(cmd, map[*string]boundEnvVar[string]{
		&name: {Name: "name", Env: helpers.Ptr("TEST_NAME")},
	})
	bindEnvMap(cmd, map[*int]boundEnvVar[int]{
		&port: {Name: "port", Env: helpers.Ptr("TEST_PORT")},
	})
	bindEnvMap(cmd, map[*int]boundEnvVar[int]{
		&verbosity: {Name: "verbosity", Short: helpers.Ptr("v"), Count: true},
	})
	bindEnvMap(cmd, map[*time.Duration]boundEnvVar[time.Duration]{
		&timeout: {Name: "timeout", Env: helpers.Ptr("TEST_TIMEOUT")},
	})

	assert.True(t, presence)
	assert.False(t, plain)
	assert.False(t, unset)
	assert.Equal(t, "from-env", name)
	assert.Equal(t, 2525, port)
	assert.Equal(t, 3*time.Second, timeout)

	cmd.SetArgs([]string{"--name", "from-flag", "-vv", "--port", "25"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "from-flag", name)
	assert.Equal(t, 2, verbosity)
	assert.Equal(t, 25, port)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "SMTP_TLS_POLICY", envName(boundEnvVar[string]{Name: "smtp-tls-policy"}))
	assert.Equal(t, "SENDGRID_USERNAME", envName(boundEnvVar[string]{Name: "smtp-username", Env: helpers.Ptr("SENDGRID_USERNAME")}))
}

func TestSetup(t *testing.T) {
	resetConfig(t)
	t.Cleanup(func() { resetConfig(t) })

	_, _, err := setup(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingSecret)

	config.GitHub.WebhookSecret = "key"
	config.Email.Sender = "commits@example.org"
	config.Email.Recipient = "list@example.org"
	config.Reporting.Testing = true

	rtm, cleanup, err := setup(context.Background())
	require.NoError(t, err)
	defer cleanup()

	routes := rtm.Routes()

	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMovedPermanently, rr.Code)
	assert.Equal(t, config.Service.Homepage, rr.Header().Get("Location"))

	rr = httptest.NewRecorder()
	routes.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")

	rr = httptest.NewRecorder()
	routes.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, config.Service.Path, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nope", rr.Body.String())
}

func TestNew_InvalidMode(t *testing.T) {
	resetConfig(t)
	t.Cleanup(func() { resetConfig(t) })

	cmd := New()
	cmd.SetArgs([]string{"--mode", "batch"})
	assert.ErrorContains(t, cmd.Execute(), "invalid mode: batch")
}

func TestNew_SecretFlagsHidden(t *testing.T) {
	resetConfig(t)
	t.Cleanup(func() { resetConfig(t) })
	t.Setenv("GITHUB_COMMIT_EMAILER_SECRET", "hunter2-webhook")

	cmd := New()
	for _, name := range []string{"github-webhook-secret", "smtp-password", "rollbar-access-token"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.True(t, flag.Hidden, name)
	}
	assert.NotContains(t, cmd.UsageString(), "hunter2-webhook")
}
