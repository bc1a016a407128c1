package cmd

import (
	"time"

	"github.com/chapel-lang/github-commit-emailer/internal/config"
	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&config.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'service', 'lambda-http' and 'lambda-event'",
		Short:       helpers.Ptr("m"),
	},
	&config.GitHub.WebhookSecret: {
		Name:        "github-webhook-secret",
		Description: "The secret shared with GitHub to sign webhook payloads",
		Env:         helpers.Ptr("GITHUB_COMMIT_EMAILER_SECRET"),
		Hidden:      true,
	},
	&config.Secrets.Source: {
		Name:        "secrets-source",
		Description: "Where secrets are read from. Supported values are 'env' and 'ssm'",
	},
	&config.Secrets.SSMKey: {
		Name:        "secrets-ssm-key",
		Description: "The SSM parameter holding the JSON credentials document",
	},
	&config.Email.Sender: {
		Name:        "email-sender",
		Description: "The fixed sender address, used unless sending from the author",
		Env:         helpers.Ptr("GITHUB_COMMIT_EMAILER_SENDER"),
	},
	&config.Email.Recipient: {
		Name:        "email-recipient",
		Description: "The recipient of every notification",
		Env:         helpers.Ptr("GITHUB_COMMIT_EMAILER_RECIPIENT"),
	},
	&config.Email.RecipientCC: {
		Name:        "email-recipient-cc",
		Description: "Comma separated carbon copy recipients",
		Env:         helpers.Ptr("GITHUB_COMMIT_EMAILER_RECIPIENT_CC"),
	},
	&config.Email.ReplyTo: {
		Name:        "email-reply-to",
		Description: "The Reply-To address",
		Env:         helpers.Ptr("GITHUB_COMMIT_EMAILER_REPLY_TO"),
	},
	&config.Email.ApprovedHeader: {
		Name:        "email-approved-header",
		Description: "The Approved header value letting notifications through a moderated list",
		Env:         helpers.Ptr("GITHUB_COMMIT_EMAILER_APPROVED_HEADER"),
		Hidden:      true,
	},
	&config.Email.SubjectTag: {
		Name:        "email-subject-tag",
		Description: "The tag placed before every subject",
	},
	&config.SMTP.Host: {
		Name:        "smtp-host",
		Description: "The SMTP relay host",
	},
	&config.SMTP.Username: {
		Name:        "smtp-username",
		Description: "The SMTP username",
		Env:         helpers.Ptr("SENDGRID_USERNAME"),
	},
	&config.SMTP.Password: {
		Name:        "smtp-password",
		Description: "The SMTP password",
		Env:         helpers.Ptr("SENDGRID_PASSWORD"),
		Hidden:      true,
	},
	&config.SMTP.TLSPolicy: {
		Name:        "smtp-tls-policy",
		Description: "The STARTTLS policy. Supported values are 'mandatory', 'opportunistic' and 'none'",
	},
	&config.Reporting.AccessToken: {
		Name:        "rollbar-access-token",
		Description: "The Rollbar server access token",
		Hidden:      true,
	},
	&config.Reporting.Environment: {
		Name:        "rollbar-environment",
		Description: "The Rollbar environment name",
		Env:         helpers.Ptr("GITHUB_COMMIT_EMAILER_ROLLBAR_ENV"),
	},
	&config.Archive.S3.BucketName: {
		Name:        "archive-s3-bucket",
		Description: "The S3 bucket receiving raw payloads",
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&config.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
	&config.Email.SendFromAuthor: {
		Name:        "email-send-from-author",
		Description: "Send notifications from the pusher. Enabled whenever the variable is set",
		Env:         helpers.Ptr("GITHUB_COMMIT_EMAILER_SEND_FROM_AUTHOR"),
		Presence:    true,
	},
	&config.Reporting.Testing: {
		Name:        "testing",
		Description: "Disable crash reporting",
	},
	&config.Archive.S3.Enabled: {
		Name:        "archive-s3",
		Description: "Archive raw payloads of composed deliveries to S3",
	},
}

var envMapInt = map[*int]boundEnvVar[int]{
	&config.SMTP.Port: {
		Name:        "smtp-port",
		Description: "The SMTP relay port",
	},
}

var envMapCount = map[*int]boundEnvVar[int]{
	&config.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
		Count:       true,
	},
}

var envMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.SMTP.Timeout: {
		Name:        "smtp-timeout",
		Description: "The timeout applied to dialing and every SMTP command",
	},
}
