package processor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/chapel-lang/github-commit-emailer/internal/config"
	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
	"github.com/chapel-lang/github-commit-emailer/internal/notification"
	"github.com/chapel-lang/github-commit-emailer/internal/reporting"
	"github.com/chapel-lang/github-commit-emailer/internal/validation"
	"github.com/google/go-github/v84/github"
	"github.com/google/uuid"
)

type authValidatorProcessor struct {
	logger   *slog.Logger
	secret   validation.WebhookSecret
	reporter reporting.Reporter
}

// NewAuthValidatorProcessor returns a Processor that reads the delivery headers and verifies the payload signature.
// Deliveries failing verification are skipped; an unset secret is a configuration error.
func NewAuthValidatorProcessor(secret validation.WebhookSecret, reporter reporting.Reporter, opts ...Option) Processor {
	_inst := &authValidatorProcessor{secret: secret, reporter: reporter, logger: helpers.NewNoopLogger()}
	if _inst.reporter == nil {
		_inst.reporter = reporting.Noop{}
	}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *authValidatorProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("pre-processor:validator")
}

func (p *authValidatorProcessor) Process(_ context.Context, bus *notification.Bus) error {
	bus.EventType = bus.Headers[strings.ToLower(github.EventTypeHeader)]
	bus.DeliveryID = bus.Headers[strings.ToLower(github.DeliveryIDHeader)]
	if bus.DeliveryID == "" {
		bus.DeliveryID = uuid.NewString()
	}
	logger := p.logger.With(slog.String("event", bus.EventType), slog.String("deliveryID", bus.DeliveryID))

	if !p.secret.IsSet() {
		logger.Error("webhook secret is not configured")
		return config.ErrMissingSecret
	}
	if err := p.secret.ValidateSignature(bus.Body, bus.Headers); err != nil {
		logger.Warn("validating signature", slog.Any("error", err))
		helpers.OnceAMinute.Do(func() {
			p.reporter.Error(err, map[string]any{"deliveryID": bus.DeliveryID, "eventType": bus.EventType})
		})
		bus.Skip(notification.ReasonInvalidSignature)
		return nil
	}
	logger.Debug("request body is valid")
	return nil
}
