// Package reporting forwards unexpected failures to Rollbar.
package reporting

import (
	"log/slog"
	"sync"

	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
	"github.com/rollbar/rollbar-go"
)

// Reporter receives failures worth a human's attention.
type Reporter interface {
	Error(err error, extras map[string]any)
	Critical(err error, extras map[string]any)
	Close() error
}

// Option configures a Rollbar reporter.
type Option func(*rollbarReporter)

// WithLogger sets the logger used by the reporter.
func WithLogger(logger *slog.Logger) Option {
	return func(r *rollbarReporter) {
		r.logger = logger
	}
}

// WithServerRoot sets the code root reported with stack traces.
func WithServerRoot(root string) Option {
	return func(r *rollbarReporter) {
		r.serverRoot = root
	}
}

// WithCodeVersion sets the code version reported with every item.
func WithCodeVersion(version string) Option {
	return func(r *rollbarReporter) {
		r.codeVersion = version
	}
}

type rollbarReporter struct {
	logger      *slog.Logger
	serverRoot  string
	codeVersion string
	client      *rollbar.Client
}

// New returns a Rollbar backed Reporter. When testing is set the returned Reporter
// discards everything.
func New(token, environment string, testing bool, opts ...Option) Reporter {
	_inst := &rollbarReporter{}
	for _, opt := range opts {
		opt(_inst)
	}
	_inst.logger = helpers.LoggerOrNoop(_inst.logger)
	if testing {
		_inst.logger.Warn("skipping rollbar init because testing flag is set")
		return Noop{}
	}
	_inst.client = rollbar.New(token, environment, _inst.codeVersion, "", _inst.serverRoot)
	_inst.logger.Debug("rollbar initialised", slog.String("environment", environment))
	return _inst
}

func (r *rollbarReporter) Error(err error, extras map[string]any) {
	r.client.ErrorWithExtras(rollbar.ERR, err, extras)
}

func (r *rollbarReporter) Critical(err error, extras map[string]any) {
	r.client.ErrorWithExtras(rollbar.CRIT, err, extras)
}

// Close flushes queued items.
func (r *rollbarReporter) Close() error {
	return r.client.Close()
}

// Noop discards every report.
type Noop struct{}

func (Noop) Error(error, map[string]any)    {}
func (Noop) Critical(error, map[string]any) {}
func (Noop) Close() error                   { return nil }

// Report is a single item captured by a Recorder.
type Report struct {
	Level  string
	Err    error
	Extras map[string]any
}

// Recorder keeps every report in memory.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func (r *Recorder) record(level string, err error, extras map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Level: level, Err: err, Extras: extras})
}

func (r *Recorder) Error(err error, extras map[string]any) {
	r.record(rollbar.ERR, err, extras)
}

func (r *Recorder) Critical(err error, extras map[string]any) {
	r.record(rollbar.CRIT, err, extras)
}

func (r *Recorder) Close() error { return nil }

// Reports returns a copy of the recorded reports.
func (r *Recorder) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Report(nil), r.reports...)
}
