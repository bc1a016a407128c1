package processor

import (
	"context"
	"log/slog"

	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
	"github.com/chapel-lang/github-commit-emailer/internal/notification"
	"github.com/chapel-lang/github-commit-emailer/internal/reporting"
)

// Archiver stores raw webhook payloads.
type Archiver interface {
	Archive(ctx context.Context, eventType, deliveryID string, body []byte) error
}

type s3UploaderPostProcessor struct {
	logger   *slog.Logger
	archiver Archiver
	reporter reporting.Reporter
}

// NewS3UploaderPostProcessor returns a Processor archiving the payload of every composed delivery.
// Archive failures are logged and reported but never stop the delivery.
func NewS3UploaderPostProcessor(archiver Archiver, reporter reporting.Reporter, opts ...Option) Processor {
	_inst := &s3UploaderPostProcessor{archiver: archiver, reporter: reporter, logger: helpers.NewNoopLogger()}
	if _inst.reporter == nil {
		_inst.reporter = reporting.Noop{}
	}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *s3UploaderPostProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("post-processor:s3")
}

func (p *s3UploaderPostProcessor) Process(ctx context.Context, bus *notification.Bus) error {
	if p.archiver == nil {
		p.logger.Debug("s3 upload is disabled")
		return nil
	}
	if err := p.archiver.Archive(ctx, bus.EventType, bus.DeliveryID, bus.Body); err != nil {
		p.logger.Warn("failed to store event in S3", slog.Any("error", err))
		p.reporter.Error(err, map[string]any{"deliveryID": bus.DeliveryID})
	}
	return nil
}
