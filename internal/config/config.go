// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"go.yaml.in/yaml/v3"
)

// Runtime modes.
const (
	ModeService     = "service"
	ModeLambdaHTTP  = "lambda-http"
	ModeLambdaEvent = "lambda-event"
)

// Secret sources.
const (
	SecretsSourceEnv = "env"
	SecretsSourceSSM = "ssm"
)

var (
	// ErrMissingSecret is returned when no webhook secret is configured.
	ErrMissingSecret = errors.New("missing webhook secret")
	// ErrMissingSender is returned when neither a sender nor send-from-author is configured.
	ErrMissingSender = errors.New("missing email sender: set a sender or enable send-from-author")
	// ErrMissingRecipient is returned when no recipient is configured.
	ErrMissingRecipient = errors.New("missing email recipient")
	// ErrMissingReportingToken is returned when crash reporting is enabled without an access token.
	ErrMissingReportingToken = errors.New("missing rollbar access token")
)

var (
	// Global is a struct that contains the global configuration.
	Global global
	// GitHub is a struct that contains the configuration for webhook authentication.
	GitHub github
	// Secrets is a struct that contains the configuration for the secret store.
	Secrets secrets
	// Email is a struct that contains the configuration for message composition and addressing.
	Email email
	// SMTP is a struct that contains the configuration for the SMTP relay.
	SMTP smtp
	// Reporting is a struct that contains the configuration for crash reporting.
	Reporting reporting
	// Archive is a struct that contains the configuration for the payload archive.
	Archive archive
	// Service is a struct that contains the configuration for the service mode.
	Service service
	// Lambda is a struct that contains the configuration for the lambda mode.
	Lambda lambda
)

type global struct {
	// Mode is the runtime mode of the application.
	Mode string `yaml:"mode,omitempty" default:"service"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
}

type github struct {
	WebhookSecret string `yaml:"webhookSecret,omitempty"`
}

type secrets struct {
	// Source is either "env" or "ssm".
	Source string `yaml:"source,omitempty" default:"env"`
	// SSMKey names the parameter holding the JSON credentials document.
	SSMKey string `yaml:"ssmKey,omitempty" default:"github-commit-emailer"`
}

type email struct {
	// SendFromAuthor sends every message from the pusher.
	SendFromAuthor bool   `yaml:"sendFromAuthor,omitempty"`
	Sender         string `yaml:"sender,omitempty"`
	Recipient      string `yaml:"recipient,omitempty"`
	// RecipientCC is a comma separated list.
	RecipientCC    string `yaml:"recipientCC,omitempty"`
	ReplyTo        string `yaml:"replyTo,omitempty"`
	ApprovedHeader string `yaml:"approvedHeader,omitempty"`
	SubjectTag     string `yaml:"subjectTag,omitempty" default:"[Chapel Merge]"`
}

type smtp struct {
	Host      string        `yaml:"host,omitempty" default:"smtp.sendgrid.net"`
	Port      int           `yaml:"port,omitempty" default:"587"`
	Username  string        `yaml:"username,omitempty"`
	Password  string        `yaml:"password,omitempty"`
	TLSPolicy string        `yaml:"tlsPolicy,omitempty" default:"mandatory"`
	Timeout   time.Duration `yaml:"timeout,omitempty" default:"10s"`
}

type reporting struct {
	AccessToken string `yaml:"accessToken,omitempty"`
	Environment string `yaml:"environment,omitempty" default:"github-email-notifications"`
	// Testing disables crash reporting.
	Testing bool `yaml:"testing,omitempty"`
}

type archive struct {
	S3 struct {
		Enabled    bool   `yaml:"enabled,omitempty"`
		BucketName string `yaml:"bucketName,omitempty"`
	} `yaml:"s3,omitempty"`
}

type service struct {
	Path     string        `yaml:"path,omitempty" default:"/commit-email"`
	Addr     string        `yaml:"addr,omitempty"`
	Port     string        `yaml:"port,omitempty" default:"8080"`
	Timeout  time.Duration `yaml:"timeout,omitempty" default:"5s"`
	Homepage string        `yaml:"homepage,omitempty" default:"http://chapel-lang.org/"`
}

type lambda struct {
	PayloadType string `yaml:"payloadType,omitempty" default:"api-gateway-v2"`
}

// SetDefaults sets the default values for the configuration.
func SetDefaults() error {
	return errors.Join(
		defaults.Set(&Global),
		defaults.Set(&GitHub),
		defaults.Set(&Secrets),
		defaults.Set(&Email),
		defaults.Set(&SMTP),
		defaults.Set(&Reporting),
		defaults.Set(&Archive),
		defaults.Set(&Service),
		defaults.Set(&Lambda),
	)
}

// LoadFromFile loads the configuration from a file.
func LoadFromFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	type all struct {
		Global    global    `yaml:"global,omitempty"`
		GitHub    github    `yaml:"github,omitempty"`
		Secrets   secrets   `yaml:"secrets,omitempty"`
		Email     email     `yaml:"email,omitempty"`
		SMTP      smtp      `yaml:"smtp,omitempty"`
		Reporting reporting `yaml:"reporting,omitempty"`
		Archive   archive   `yaml:"archive,omitempty"`
		Service   service   `yaml:"service,omitempty"`
		Lambda    lambda    `yaml:"lambda,omitempty"`
	}
	var a all
	if err = yaml.Unmarshal(content, &a); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file %s: %w", path, err)
	}
	Global = a.Global
	GitHub = a.GitHub
	Secrets = a.Secrets
	Email = a.Email
	SMTP = a.SMTP
	Reporting = a.Reporting
	Archive = a.Archive
	Service = a.Service
	Lambda = a.Lambda

	return nil
}

// Validate reports every missing setting the service cannot run without.
// It is meant to be called once secrets have been resolved.
func Validate() error {
	var errs []error
	if GitHub.WebhookSecret == "" {
		errs = append(errs, ErrMissingSecret)
	}
	if !Email.SendFromAuthor && strings.TrimSpace(Email.Sender) == "" {
		errs = append(errs, ErrMissingSender)
	}
	if strings.TrimSpace(Email.Recipient) == "" {
		errs = append(errs, ErrMissingRecipient)
	}
	if !Reporting.Testing && Reporting.AccessToken == "" {
		errs = append(errs, ErrMissingReportingToken)
	}
	switch Secrets.Source {
	case SecretsSourceEnv, SecretsSourceSSM:
	default:
		errs = append(errs, fmt.Errorf("unsupported secrets source: %s", Secrets.Source))
	}
	if Archive.S3.Enabled && Archive.S3.BucketName == "" {
		errs = append(errs, errors.New("archive to S3 is enabled without a bucket name"))
	}
	return errors.Join(errs...)
}
