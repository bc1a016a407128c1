// Package handler turns webhook requests into commit notification emails.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/chapel-lang/github-commit-emailer/internal/handler/processor"
	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
	"github.com/chapel-lang/github-commit-emailer/internal/mail"
	"github.com/chapel-lang/github-commit-emailer/internal/metrics"
	"github.com/chapel-lang/github-commit-emailer/internal/models"
	"github.com/chapel-lang/github-commit-emailer/internal/notification"
	"github.com/chapel-lang/github-commit-emailer/internal/reporting"
	"github.com/chapel-lang/github-commit-emailer/internal/validation"
	"github.com/pkg/errors"
)

// Response bodies. They never carry error detail.
const (
	BodySent    = "yep"
	BodySkipped = "nope"
	BodyError   = "error"
)

// Option configures a Handler.
type Option func(*Handler)

// Handler runs every delivery through the processing chain. It is immutable after
// construction and safe for concurrent use.
type Handler struct {
	logger     *slog.Logger
	secret     validation.WebhookSecret
	composer   *notification.Composer
	dispatcher *mail.Dispatcher
	transport  mail.Transport
	archiver   processor.Archiver
	reporter   reporting.Reporter
	metrics    *metrics.Metrics

	processors []processor.Processor
}

// New returns a Handler. A composer, a dispatcher and a transport are required.
func New(opts ...Option) (*Handler, error) {
	_inst := &Handler{}
	for _, opt := range opts {
		opt(_inst)
	}
	_inst.logger = helpers.LoggerOrNoop(_inst.logger)
	if _inst.reporter == nil {
		_inst.reporter = reporting.Noop{}
	}

	switch {
	case _inst.composer == nil:
		return nil, errors.New("missing message composer")
	case _inst.dispatcher == nil:
		return nil, errors.New("missing mail dispatcher")
	case _inst.transport == nil:
		return nil, errors.New("missing mail transport")
	}

	processors := []processor.Processor{
		processor.NewAuthValidatorProcessor(_inst.secret, _inst.reporter),
		processor.NewPushEventProcessor(_inst.composer),
	}
	if _inst.archiver != nil {
		processors = append(processors, processor.NewS3UploaderPostProcessor(_inst.archiver, _inst.reporter))
	}
	processors = append(processors, processor.NewMailDispatcherPostProcessor(_inst.dispatcher, _inst.transport, _inst.metrics))
	for _, p := range processors {
		p.SetLogger(_inst.logger)
	}
	_inst.processors = processors

	return _inst, nil
}

// Process handles a single webhook request. Header keys must be lower-cased.
func (h *Handler) Process(ctx context.Context, req models.Request) models.Response {
	bus := notification.NewBus(req)
	err := processor.Process(ctx, bus, h.processors...)
	bus.Response = h.respond(bus, err)

	reason := bus.SkipReason
	if err != nil {
		reason = errorReason(err)
		logger := h.logger.With(slog.String("deliveryID", bus.DeliveryID), slog.String("event", bus.EventType))
		logger.Error("failed to process delivery", slog.Any("error", err), slog.Int("status", bus.Response.StatusCode))
		h.reporter.Error(err, map[string]any{
			"deliveryID": bus.DeliveryID,
			"eventType":  bus.EventType,
			"status":     bus.Response.StatusCode,
		})
	} else {
		h.logger.Info("processed delivery", slog.Any("delivery", bus))
	}
	h.metrics.ObserveDelivery(string(bus.EventStatus), reason)

	return bus.Response
}

func (h *Handler) respond(bus *notification.Bus, err error) models.Response {
	if err != nil {
		return models.Response{Body: BodyError, StatusCode: StatusCode(err)}
	}
	switch bus.EventStatus {
	case notification.Sent:
		return models.Response{Body: BodySent, StatusCode: http.StatusOK}
	case notification.Skipped:
		return models.Response{Body: BodySkipped, StatusCode: http.StatusOK}
	default:
		h.logger.Error("delivery did not reach a terminal state", slog.Any("delivery", bus))
		return models.Response{Body: BodyError, StatusCode: http.StatusInternalServerError}
	}
}
