package handler

import (
	"log/slog"

	"github.com/chapel-lang/github-commit-emailer/internal/handler/processor"
	"github.com/chapel-lang/github-commit-emailer/internal/mail"
	"github.com/chapel-lang/github-commit-emailer/internal/metrics"
	"github.com/chapel-lang/github-commit-emailer/internal/notification"
	"github.com/chapel-lang/github-commit-emailer/internal/reporting"
	"github.com/chapel-lang/github-commit-emailer/internal/validation"
)

// WithLogger sets the logger instance for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithWebhookSecret configures the handler with a webhook secret for request validation.
func WithWebhookSecret(secret string) Option {
	return func(h *Handler) {
		h.secret = validation.NewWebhookSecret(secret)
	}
}

// WithComposer sets the message composer.
func WithComposer(composer *notification.Composer) Option {
	return func(h *Handler) {
		h.composer = composer
	}
}

// WithDispatcher sets the mail dispatcher.
func WithDispatcher(dispatcher *mail.Dispatcher) Option {
	return func(h *Handler) {
		h.dispatcher = dispatcher
	}
}

// WithTransport sets the mail transport.
func WithTransport(transport mail.Transport) Option {
	return func(h *Handler) {
		h.transport = transport
	}
}

// WithArchiver enables archiving of composed deliveries.
func WithArchiver(archiver processor.Archiver) Option {
	return func(h *Handler) {
		h.archiver = archiver
	}
}

// WithReporter sets the crash reporter.
func WithReporter(reporter reporting.Reporter) Option {
	return func(h *Handler) {
		h.reporter = reporter
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}
