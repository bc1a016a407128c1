package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
	"github.com/chapel-lang/github-commit-emailer/internal/mail"
	"github.com/chapel-lang/github-commit-emailer/internal/metrics"
	"github.com/chapel-lang/github-commit-emailer/internal/notification"
)

type mailDispatcherPostProcessor struct {
	logger     *slog.Logger
	dispatcher *mail.Dispatcher
	transport  mail.Transport
	metrics    *metrics.Metrics
}

// NewMailDispatcherPostProcessor returns a Processor handing the composed message to transport.
func NewMailDispatcherPostProcessor(dispatcher *mail.Dispatcher, transport mail.Transport, m *metrics.Metrics, opts ...Option) Processor {
	_inst := &mailDispatcherPostProcessor{dispatcher: dispatcher, transport: transport, metrics: m, logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *mailDispatcherPostProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.WithGroup("post-processor:mail")
}

func (p *mailDispatcherPostProcessor) Process(ctx context.Context, bus *notification.Bus) error {
	if p.dispatcher == nil {
		return notification.NewInternalErrorf("dispatcher is nil")
	}
	if bus.Message == nil {
		return notification.NewInternalErrorf("no message to dispatch")
	}

	begin := time.Now()
	err := p.dispatcher.Dispatch(ctx, bus.Message, p.transport)
	p.metrics.ObserveDispatch(begin, err)
	if err != nil {
		return err
	}
	bus.EventStatus = notification.Sent
	p.logger.Info("email sent", slog.Any("delivery", bus))
	return nil
}
