// Package aws provides the Controller struct that wraps the AWS services backing the secret store and the payload archive.
package aws

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/smithy-go/logging"
	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
	"github.com/pkg/errors"
)

// SSMAPI is the subset of the SSM client used by the Controller.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// S3API is the subset of the S3 client used by the Controller.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Controller wraps SSM and S3 with logging support.
type Controller struct {
	logger *slog.Logger
	bucket string

	config    *aws.Config
	s3Client  S3API
	ssmClient SSMAPI
}

// Option defines a function type used to configure an instance of the Controller struct.
type Option func(*Controller)

// NewController initializes a Controller. The default AWS configuration is only loaded
// when a client has not been supplied through options.
func NewController(ctx context.Context, opts ...Option) (*Controller, error) {
	_inst := &Controller{}
	for _, opt := range opts {
		opt(_inst)
	}
	_inst.logger = helpers.LoggerOrNoop(_inst.logger).With("controller", "aws")

	if _inst.config == nil && (_inst.s3Client == nil || _inst.ssmClient == nil) {
		_inst.logger.Debug("loading default AWS configuration...")
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load AWS configuration")
		}
		cfg.Logger = newAWSLogger(_inst.logger)
		_inst.config = &cfg
	}

	if _inst.s3Client == nil {
		_inst.s3Client = s3.NewFromConfig(*_inst.config)
	}
	if _inst.ssmClient == nil {
		_inst.ssmClient = ssm.NewFromConfig(*_inst.config)
	}
	return _inst, nil
}

// GetSecret retrieves the decrypted value of the SSM parameter named key.
func (a *Controller) GetSecret(ctx context.Context, key string) (string, error) {
	a.logger.With("key", key).Debug("fetching SSM secret...")
	ssmResponse, err := a.ssmClient.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(key),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to load SSM parameter")
	}
	if ssmResponse.Parameter == nil {
		return "", fmt.Errorf("SSM parameter %s has no value", key)
	}
	return aws.ToString(ssmResponse.Parameter.Value), nil
}

// ArchiveKey returns the object key used to store a delivery.
func ArchiveKey(at time.Time, eventType, deliveryID string) string {
	return fmt.Sprintf("%s.%s.%s.json", at.UTC().Format(time.RFC3339Nano), eventType, deliveryID)
}

// Archive uploads a raw webhook payload to the configured bucket.
// It is a no-op when no bucket is configured.
func (a *Controller) Archive(ctx context.Context, eventType, deliveryID string, body []byte) error {
	if a.bucket == "" {
		return nil
	}
	key := ArchiveKey(time.Now(), eventType, deliveryID)
	a.logger.Debug("archiving payload...", slog.String("bucket", a.bucket), slog.String("key", key))
	_, err := a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrap(err, "failed to put object to S3")
	}
	return nil
}

type awsLogger struct {
	logger *slog.Logger
}

func newAWSLogger(logger *slog.Logger) *awsLogger {
	return &awsLogger{logger}
}

func (a *awsLogger) Logf(classification logging.Classification, format string, args ...any) {
	a.logger.Debug(fmt.Sprintf("[%v] %s", classification, fmt.Sprintf(format, args...)))
}
