// Package runtime exposes the handler over HTTP and AWS Lambda.
package runtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chapel-lang/github-commit-emailer/internal/handler"
	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
	"github.com/chapel-lang/github-commit-emailer/internal/models"
	"github.com/chapel-lang/github-commit-emailer/internal/reporting"
)

// Lambda payload types.
const (
	PayloadAPIGatewayV1 = "api-gateway-v1"
	PayloadAPIGatewayV2 = "api-gateway-v2"
	PayloadLambdaURL    = "lambda-url"
)

// Defaults for the served routes.
const (
	DefaultPath     = "/commit-email"
	DefaultHomepage = "http://chapel-lang.org/"
	MetricsPath     = "/metrics"
	// MaxBodyBytes matches the largest payload GitHub delivers.
	MaxBodyBytes = 25 << 20
)

// Processor handles a normalised webhook request.
type Processor interface {
	Process(ctx context.Context, req models.Request) models.Response
}

var _ Processor = (*handler.Handler)(nil)

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithPath sets the path accepting webhook deliveries.
func WithPath(path string) Option {
	return func(r *Runtime) {
		r.path = path
	}
}

// WithHomepage sets the redirect target of GET /.
func WithHomepage(homepage string) Option {
	return func(r *Runtime) {
		r.homepage = homepage
	}
}

// WithLambdaPayloadType sets the payload type expected by Lambda.
func WithLambdaPayloadType(payloadType string) Option {
	return func(r *Runtime) {
		r.payloadType = payloadType
	}
}

// WithReporter sets the crash reporter receiving recovered panics.
func WithReporter(reporter reporting.Reporter) Option {
	return func(r *Runtime) {
		r.reporter = reporter
	}
}

// WithMetricsHandler serves h on MetricsPath.
func WithMetricsHandler(h http.Handler) Option {
	return func(r *Runtime) {
		r.metrics = h
	}
}

// Runtime routes requests to the webhook processor.
type Runtime struct {
	processor   Processor
	logger      *slog.Logger
	reporter    reporting.Reporter
	metrics     http.Handler
	path        string
	homepage    string
	payloadType string
}

// NewRuntime creates a new runtime instance.
func NewRuntime(processor Processor, opts ...Option) *Runtime {
	_inst := &Runtime{
		processor:   processor,
		path:        DefaultPath,
		homepage:    DefaultHomepage,
		payloadType: PayloadAPIGatewayV2,
	}
	for _, opt := range opts {
		opt(_inst)
	}
	_inst.logger = helpers.LoggerOrNoop(_inst.logger)
	if _inst.reporter == nil {
		_inst.reporter = reporting.Noop{}
	}
	return _inst
}

// Routes returns the HTTP handler of the service mode.
func (r *Runtime) Routes() http.Handler {
	mux := http.NewServeMux()
	if r.metrics != nil {
		mux.Handle(MetricsPath, r.metrics)
	}
	mux.Handle("/", r)
	return r.recoverer(mux)
}

// ServeHTTP is the HTTP handler for the runtime.
func (r *Runtime) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	r.logger.Debug("received HTTP request...", slog.Any("requestor", req.RemoteAddr), slog.Any("method", req.Method), slog.Any("path", req.URL.Path))

	var body []byte
	if req.Method == http.MethodPost && req.URL.Path == r.path {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(resp, req.Body, MaxBodyBytes))
		if err != nil {
			r.logger.Error("failed to read request body", slog.Any("error", err))
			status := http.StatusBadRequest
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				status = http.StatusRequestEntityTooLarge
			}
			helpers.RespondHTTP(models.Response{Body: handler.BodyError, StatusCode: status}, resp)
			return
		}
	}

	result := r.route(req.Context(), req.Method, req.URL.Path, models.Request{
		Body:    body,
		Headers: helpers.NormaliseHeaders(req.Header),
	})
	helpers.RespondHTTP(result, resp)
}

func (r *Runtime) route(ctx context.Context, method, path string, req models.Request) models.Response {
	switch path {
	case r.path:
		if method != http.MethodPost {
			return methodNotAllowed(http.MethodPost)
		}
		return r.processor.Process(ctx, req)
	case "/":
		if method != http.MethodGet && method != http.MethodHead {
			return methodNotAllowed(http.MethodGet, http.MethodHead)
		}
		return models.Response{
			StatusCode: http.StatusMovedPermanently,
			Headers:    map[string]string{"Location": r.homepage},
		}
	default:
		return models.Response{StatusCode: http.StatusNotFound, Body: http.StatusText(http.StatusNotFound)}
	}
}

func methodNotAllowed(allowed ...string) models.Response {
	allow := allowed[0]
	for _, m := range allowed[1:] {
		allow += ", " + m
	}
	return models.Response{
		StatusCode: http.StatusMethodNotAllowed,
		Body:       http.StatusText(http.StatusMethodNotAllowed),
		Headers:    map[string]string{"Allow": allow},
	}
}

func (r *Runtime) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared as recovered value
				panic(rec)
			}
			r.panicked(rec, req.Method, req.URL.Path)
			helpers.RespondHTTP(models.Response{Body: handler.BodyError, StatusCode: http.StatusInternalServerError}, resp)
		}()
		next.ServeHTTP(resp, req)
	})
}

func (r *Runtime) panicked(rec any, method, path string) {
	err, ok := rec.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", rec)
	}
	r.logger.Error("recovered from panic", slog.Any("error", err), slog.String("method", method), slog.String("path", path))
	r.reporter.Critical(err, map[string]any{"method": method, "path": path})
}

// safeRoute routes a Lambda request, turning panics into a 500 response.
func (r *Runtime) safeRoute(ctx context.Context, method, path string, req models.Request) (resp models.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			r.panicked(rec, method, path)
			resp = models.Response{Body: handler.BodyError, StatusCode: http.StatusInternalServerError}
		}
	}()
	return r.route(ctx, method, path, req)
}

// Lambda is the Lambda handler for HTTP payloads. Processing failures are reported
// through the status code; an error is only returned for undecodable invocations.
func (r *Runtime) Lambda(ctx context.Context, payload json.RawMessage) (any, error) {
	r.logger.Info("received lambda request", slog.String("payloadType", r.payloadType))

	switch r.payloadType {
	case PayloadAPIGatewayV1:
		var req events.APIGatewayProxyRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", r.payloadType, err)
		}
		body, err := decodeBody(req.Body, req.IsBase64Encoded)
		if err != nil {
			return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest, Body: handler.BodyError}, nil
		}
		res := r.safeRoute(ctx, req.HTTPMethod, req.Path, models.Request{Body: body, Headers: helpers.NormaliseHeaders(req.Headers)})
		return events.APIGatewayProxyResponse{StatusCode: res.StatusCode, Body: res.Body, Headers: res.Headers}, nil
	case PayloadAPIGatewayV2:
		var req events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", r.payloadType, err)
		}
		body, err := decodeBody(req.Body, req.IsBase64Encoded)
		if err != nil {
			return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: handler.BodyError}, nil
		}
		res := r.safeRoute(ctx, req.RequestContext.HTTP.Method, req.RawPath, models.Request{Body: body, Headers: helpers.NormaliseHeaders(req.Headers)})
		return events.APIGatewayV2HTTPResponse{StatusCode: res.StatusCode, Body: res.Body, Headers: res.Headers}, nil
	case PayloadLambdaURL:
		var req events.LambdaFunctionURLRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", r.payloadType, err)
		}
		body, err := decodeBody(req.Body, req.IsBase64Encoded)
		if err != nil {
			return events.LambdaFunctionURLResponse{StatusCode: http.StatusBadRequest, Body: handler.BodyError}, nil
		}
		res := r.safeRoute(ctx, req.RequestContext.HTTP.Method, req.RawPath, models.Request{Body: body, Headers: helpers.NormaliseHeaders(req.Headers)})
		return events.LambdaFunctionURLResponse{StatusCode: res.StatusCode, Body: res.Body, Headers: res.Headers}, nil
	default:
		return nil, fmt.Errorf("unsupported lambda payload type: %s", r.payloadType)
	}
}

// LambdaForEvent is the Lambda handler for webhook deliveries relayed through EventBridge.
func (r *Runtime) LambdaForEvent(ctx context.Context, event models.Event) (models.Response, error) {
	r.logger.Info("received EventBridge event", slog.String("id", event.ID), slog.String("source", event.Source))

	body, err := decodeBody(event.Detail.Body, event.Detail.IsBase64Encoded)
	if err != nil {
		return models.Response{StatusCode: http.StatusBadRequest, Body: handler.BodyError}, nil
	}
	return r.safeRoute(ctx, http.MethodPost, r.path, models.Request{
		Body:    body,
		Headers: helpers.NormaliseHeaders(event.Detail.Headers),
	}), nil
}

// decodeBody returns the bytes GitHub signed.
func decodeBody(body string, isBase64 bool) ([]byte, error) {
	if !isBase64 {
		return []byte(body), nil
	}
	return base64.StdEncoding.DecodeString(body)
}
