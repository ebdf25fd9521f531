// Package s3 implements the storage.ObjectStorage contract on AWS S3.
// Clients come in two flavors: NewClient uses the ambient credential chain,
// NewSessionClient uses a caller-supplied temporary credential triplet and
// lives only as long as the request that carried it.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/el-feo/content-processing-sub001/config"
	"github.com/el-feo/content-processing-sub001/observability"
	"github.com/el-feo/content-processing-sub001/storage"
)

// Client implements the ObjectStorage interface for AWS S3
type Client struct {
	s3Client *s3.Client
	uploader *manager.Uploader
	logger   observability.Logger
	metrics  observability.Metrics
}

// NewClient creates an S3 client on the ambient credential chain
// (instance role, environment, shared config).
func NewClient(ctx context.Context, cfg *config.AWSConfig, logger observability.Logger, metrics observability.Metrics) (*Client, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}
	return newClient(awsCfg, cfg, logger, metrics), nil
}

// NewSessionClient creates an S3 client from a temporary credential triplet
// supplied by the caller. All three values are required; the session token
// is what scopes the credentials to the caller's grant.
func NewSessionClient(ctx context.Context, cfg *config.AWSConfig, accessKeyID, secretAccessKey, sessionToken string, logger observability.Logger, metrics observability.Metrics) (*Client, error) {
	if accessKeyID == "" || secretAccessKey == "" || sessionToken == "" {
		return nil, errors.New("session client requires access key, secret key and session token")
	}

	provider := credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, sessionToken)
	awsCfg, err := loadAWSConfig(ctx, cfg, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}
	return newClient(awsCfg, cfg, logger, metrics), nil
}

func newClient(awsCfg aws.Config, cfg *config.AWSConfig, logger observability.Logger, metrics observability.Metrics) *Client {
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &Client{
		s3Client: s3Client,
		uploader: manager.NewUploader(s3Client),
		logger:   logger,
		metrics:  metrics,
	}
}

// loadAWSConfig assembles the SDK configuration. SDK-internal retries are
// disabled: the fetch and publish stages own the retry budget and count
// attempts themselves.
func loadAWSConfig(ctx context.Context, cfg *config.AWSConfig, provider aws.CredentialsProvider) (aws.Config, error) {
	optFns := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRetryMaxAttempts(1),
	}

	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}
	if provider != nil {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(provider))
	}

	return awsconfig.LoadDefaultConfig(ctx, optFns...)
}

// Get retrieves an object from S3
func (c *Client) Get(ctx context.Context, bucket, key string) (io.ReadCloser, *storage.ObjectMetadata, error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordDuration("storage.s3.get", time.Since(start).Seconds())
	}()

	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	result, err := c.s3Client.GetObject(ctx, input)
	if err != nil {
		if classified := classifyError(err); classified != nil {
			c.logger.Debug(ctx, "object fetch refused", observability.Fields{
				"bucket": bucket,
				"key":    key,
				"reason": classified.Error(),
			})
			return nil, nil, classified
		}
		c.logger.Error(ctx, "failed to get object", err, observability.Fields{
			"bucket": bucket,
			"key":    key,
		})
		return nil, nil, fmt.Errorf("failed to get object: %w", err)
	}

	metadata := &storage.ObjectMetadata{
		ContentType:   aws.ToString(result.ContentType),
		ContentLength: aws.ToInt64(result.ContentLength),
		LastModified:  aws.ToTime(result.LastModified),
		ETag:          aws.ToString(result.ETag),
	}

	c.logger.Debug(ctx, "object retrieved successfully", observability.Fields{
		"bucket": bucket,
		"key":    key,
		"size":   metadata.ContentLength,
	})

	return result.Body, metadata, nil
}

// Put stores an object in S3 through the concurrent uploader.
func (c *Client) Put(ctx context.Context, bucket, key string, reader io.Reader, contentType string) error {
	start := time.Now()
	defer func() {
		c.metrics.RecordDuration("storage.s3.put", time.Since(start).Seconds())
	}()

	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	}

	_, err := c.uploader.Upload(ctx, input)
	if err != nil {
		if classified := classifyError(err); classified != nil {
			c.logger.Debug(ctx, "object store refused", observability.Fields{
				"bucket": bucket,
				"key":    key,
				"reason": classified.Error(),
			})
			return classified
		}
		c.logger.Error(ctx, "failed to put object", err, observability.Fields{
			"bucket": bucket,
			"key":    key,
		})
		return fmt.Errorf("failed to put object: %w", err)
	}

	c.logger.Debug(ctx, "object stored successfully", observability.Fields{
		"bucket": bucket,
		"key":    key,
	})

	return nil
}

// Exists checks if an object exists in S3
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	_, err := c.s3Client.HeadObject(ctx, input)
	if err != nil {
		if errors.Is(classifyError(err), storage.ErrObjectNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}

	return true, nil
}

// classifyError maps SDK failures onto the storage sentinels. Returns nil
// when the error is not one of the recognized classes.
func classifyError(err error) error {
	var nsk *s3types.NoSuchKey
	var nf *s3types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return storage.ErrObjectNotFound
	}

	// Unmodeled API errors (AccessDenied has no concrete type in the SDK)
	// still carry the HTTP response; match on its status code.
	var respErr interface{ HTTPStatusCode() int }
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusForbidden:
			return storage.ErrAccessDenied
		case http.StatusNotFound:
			return storage.ErrObjectNotFound
		}
	}

	return nil
}
