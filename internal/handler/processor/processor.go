// Package processor provides a generic interface for processing deliveries using a list of processors.
package processor

import (
	"context"
	"log/slog"

	"github.com/chapel-lang/github-commit-emailer/internal/notification"
)

// Option is a function that applies an option to a Processor.
type Option = func(Processor)

// Processor is an interface that defines a method to process a delivery.
// Implementations are configured once and must be safe for concurrent use.
type Processor interface {
	SetLogger(logger *slog.Logger)
	Process(ctx context.Context, bus *notification.Bus) error
}

// WithLogger sets the logger of a Processor.
func WithLogger(logger *slog.Logger) Option {
	return func(p Processor) {
		p.SetLogger(logger)
	}
}

// Process runs processors in order until one fails or the bus reaches a terminal state.
func Process(ctx context.Context, bus *notification.Bus, processors ...Processor) error {
	for _, p := range processors {
		if bus.Done() {
			return nil
		}
		if err := p.Process(ctx, bus); err != nil {
			bus.EventStatus = notification.Errored
			return err
		}
	}
	return nil
}

func applyOpts(m Processor, opts ...Option) {
	for _, opt := range opts {
		opt(m)
	}
}
