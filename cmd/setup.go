package cmd

import (
	"context"
	"net/http"

	"github.com/chapel-lang/github-commit-emailer/internal/config"
	awsctl "github.com/chapel-lang/github-commit-emailer/internal/controllers/aws"
	"github.com/chapel-lang/github-commit-emailer/internal/credentials"
	"github.com/chapel-lang/github-commit-emailer/internal/handler"
	"github.com/chapel-lang/github-commit-emailer/internal/mail"
	"github.com/chapel-lang/github-commit-emailer/internal/metrics"
	"github.com/chapel-lang/github-commit-emailer/internal/notification"
	"github.com/chapel-lang/github-commit-emailer/internal/reporting"
	"github.com/chapel-lang/github-commit-emailer/internal/runtime"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// serverRoot is reported to Rollbar to link stack frames to the repository.
const serverRoot = "github.com/chapel-lang/github-commit-emailer"

// setup resolves secrets, validates the configuration and wires the runtime.
// The returned cleanup flushes the crash reporter.
func setup(ctx context.Context) (*runtime.Runtime, func(), error) {
	var awsController *awsctl.Controller
	awsControllerFor := func() (*awsctl.Controller, error) {
		if awsController != nil {
			return awsController, nil
		}
		var err error
		awsController, err = awsctl.NewController(ctx,
			awsctl.WithBucket(config.Archive.S3.BucketName),
			awsctl.WithLogger(logger.With("component", "aws-controller")))
		return awsController, err
	}

	var getter credentials.SecretGetter
	if config.Secrets.Source == config.SecretsSourceSSM {
		ctl, err := awsControllerFor()
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to create AWS controller")
		}
		getter = ctl
	}
	logger.Debug("retrieving credentials...", "source", config.Secrets.Source)
	creds, err := credentials.Retrieve(ctx, config.Secrets.Source, config.Secrets.SSMKey, getter)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to retrieve credentials")
	}
	creds.Apply()

	if err = config.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid configuration")
	}

	reporter := reporting.New(config.Reporting.AccessToken, config.Reporting.Environment, config.Reporting.Testing,
		reporting.WithServerRoot(serverRoot),
		reporting.WithLogger(logger.With("component", "reporting")))
	cleanup := func() {
		if err := reporter.Close(); err != nil {
			logger.Warn("failed to flush crash reporter", "error", err)
		}
	}

	hdl, metricsHandler, err := newHandler(reporter, awsControllerFor)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	logger.Debug("creating runtime...")
	rtm := runtime.NewRuntime(hdl,
		runtime.WithPath(config.Service.Path),
		runtime.WithHomepage(config.Service.Homepage),
		runtime.WithLambdaPayloadType(config.Lambda.PayloadType),
		runtime.WithReporter(reporter),
		runtime.WithMetricsHandler(metricsHandler),
		runtime.WithLogger(logger.With("component", "runtime")))
	return rtm, cleanup, nil
}

func newHandler(reporter reporting.Reporter, awsControllerFor func() (*awsctl.Controller, error)) (*handler.Handler, http.Handler, error) {
	composer, err := notification.NewComposer(
		notification.WithSubjectTag(config.Email.SubjectTag),
		notification.WithSendFromAuthor(config.Email.SendFromAuthor),
		notification.WithSender(config.Email.Sender))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create message composer")
	}

	dispatcher, err := mail.NewDispatcher(
		mail.WithRecipient(config.Email.Recipient),
		mail.WithCC(config.Email.RecipientCC),
		mail.WithReplyTo(config.Email.ReplyTo),
		mail.WithApprovedHeader(config.Email.ApprovedHeader),
		mail.WithLogger(logger.With("component", "mail-dispatcher")))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create mail dispatcher")
	}

	transport, err := mail.NewSMTPTransport(config.SMTP.Host,
		mail.WithPort(config.SMTP.Port),
		mail.WithCredentials(config.SMTP.Username, config.SMTP.Password),
		mail.WithTLSPolicy(config.SMTP.TLSPolicy),
		mail.WithTimeout(config.SMTP.Timeout),
		mail.WithSMTPLogger(logger.With("component", "smtp")))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create SMTP transport")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []handler.Option{
		handler.WithWebhookSecret(config.GitHub.WebhookSecret),
		handler.WithComposer(composer),
		handler.WithDispatcher(dispatcher),
		handler.WithTransport(transport),
		handler.WithReporter(reporter),
		handler.WithMetrics(metrics.New(reg)),
		handler.WithLogger(logger.With("component", "handler")),
	}
	if config.Archive.S3.Enabled {
		ctl, err := awsControllerFor()
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to create AWS controller")
		}
		opts = append(opts, handler.WithArchiver(ctl))
	}

	logger.Debug("creating handler...")
	hdl, err := handler.New(opts...)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create handler")
	}
	return hdl, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}
