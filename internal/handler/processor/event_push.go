package processor

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
	"github.com/chapel-lang/github-commit-emailer/internal/notification"
	"github.com/pkg/errors"
)

type pushEventProcessor struct {
	logger   *slog.Logger
	composer *notification.Composer
}

// NewPushEventProcessor returns a Processor that classifies the delivery and composes the notification message.
func NewPushEventProcessor(composer *notification.Composer, opts ...Option) Processor {
	_inst := &pushEventProcessor{composer: composer, logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *pushEventProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("processor:push")
}

func (p *pushEventProcessor) Process(_ context.Context, bus *notification.Bus) error {
	if p.composer == nil {
		return notification.NewInternalErrorf("composer is nil")
	}

	if bus.EventType == notification.EventTypePush {
		// a JSON null leaves the payload nil and is classified as empty
		if err := json.Unmarshal(bus.Body, &bus.Payload); err != nil {
			p.logger.Warn("parsing webhook payload", slog.Any("error", err))
			return errors.Wrap(notification.ErrMalformedPayload, err.Error())
		}
	}

	decision := notification.Classify(bus.EventType, bus.Payload)
	if decision.Action == notification.Skip {
		p.logger.Info("skipping delivery", slog.String("event", bus.EventType), slog.String("reason", decision.Reason))
		bus.Skip(decision.Reason)
		return nil
	}

	event, err := notification.NewPushEvent(bus.Payload)
	if err != nil {
		p.logger.Warn("invalid push payload", slog.Any("error", err))
		return err
	}
	bus.Event = event

	if bus.Message, err = p.composer.Compose(event); err != nil {
		p.logger.Error("failed to compose message", slog.Any("error", err))
		return err
	}
	p.logger.Debug("composed message", slog.String("subject", bus.Message.Subject), slog.Any("delivery", bus))
	return nil
}
