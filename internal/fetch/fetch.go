// Package fetch downloads the source PDF, either through a pre-signed URL
// or from a bucket with caller-supplied credentials.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/el-feo/content-processing-sub001/config"
	"github.com/el-feo/content-processing-sub001/internal/domain"
	"github.com/el-feo/content-processing-sub001/internal/request"
	"github.com/el-feo/content-processing-sub001/observability"
	"github.com/el-feo/content-processing-sub001/storage"
)

var pdfMagic = []byte("%PDF-")

// Document is the fetched source document. The declared content type is
// recorded for diagnostics but never trusted; the magic check decides.
type Document struct {
	Data        []byte
	ContentType string
}

// StorageFactory builds a per-request object-store client from the
// caller's temporary credentials.
type StorageFactory func(ctx context.Context, creds *request.Credentials) (storage.ObjectStorage, error)

// retry classes for failed attempts
const (
	classTimeout  = "timeout"
	classUpstream = "upstream"
)

// attemptError is a failed attempt the retry loop may try again.
type attemptError struct {
	class string
	err   error
}

func (e *attemptError) Error() string { return e.err.Error() }
func (e *attemptError) Unwrap() error { return e.err }

// Fetcher downloads source documents.
type Fetcher struct {
	cfg        *config.FetchConfig
	maxBytes   int64
	httpClient *http.Client
	newStorage StorageFactory
	logger     observability.Logger
	metrics    observability.Metrics
}

// NewFetcher creates a fetcher. maxBytes is the document size ceiling;
// storageFactory may be nil when bucket addressing is not in use.
func NewFetcher(cfg *config.FetchConfig, maxBytes int64, storageFactory StorageFactory, logger observability.Logger, metrics observability.Metrics) *Fetcher {
	return &Fetcher{
		cfg:        cfg,
		maxBytes:   maxBytes,
		httpClient: &http.Client{},
		newStorage: storageFactory,
		logger:     logger,
		metrics:    metrics,
	}
}

// Fetch downloads the source document and verifies it is a PDF.
func (f *Fetcher) Fetch(ctx context.Context, source request.Target, creds *request.Credentials) (*Document, error) {
	f.metrics.StartOperation("fetch")
	defer f.metrics.EndOperation("fetch")
	start := time.Now()
	defer func() {
		f.metrics.RecordDuration("fetch", time.Since(start).Seconds())
	}()

	var data []byte
	var contentType string
	var err error

	switch source.Mode {
	case request.ModeSignedURL:
		f.logger.Info(ctx, "fetching source document", observability.Fields{
			"mode": source.Mode.String(),
			"url":  request.ElideURL(source.URL),
		})
		data, contentType, err = f.withRetries(ctx, "Source download", func(attemptCtx context.Context) ([]byte, string, error) {
			return f.attemptHTTP(attemptCtx, source.URL)
		})
	case request.ModeBucketKey:
		f.logger.Info(ctx, "fetching source document", observability.Fields{
			"mode":   source.Mode.String(),
			"bucket": source.Bucket,
			"key":    source.Key,
		})
		data, contentType, err = f.fetchObject(ctx, source, creds)
	default:
		err = domain.NewError(domain.CodeValidationError, "source addressing mode is not set", nil)
	}

	if err != nil {
		f.metrics.RecordError("fetch", domain.MetricLabel(err))
		return nil, err
	}

	if !bytes.HasPrefix(data, pdfMagic) {
		detected := mimetype.Detect(data)
		f.metrics.RecordError("fetch", "invalid_format")
		f.logger.Warn(ctx, "source document is not a PDF", observability.Fields{
			"declared_type": contentType,
			"detected_type": detected.String(),
		})
		return nil, domain.NewError(domain.CodeInvalidFormat, "Source document is not a PDF",
			fmt.Errorf("detected content type %s", detected.String()))
	}

	f.metrics.RecordSuccess("fetch")
	f.metrics.RecordFileSize("pdf", int64(len(data)))
	f.logger.Info(ctx, "source document fetched", observability.Fields{
		"bytes": len(data),
	})

	return &Document{Data: data, ContentType: contentType}, nil
}

// withRetries runs one fetch attempt at a time with exponential backoff.
// Terminal failures (domain errors) end the loop immediately; timeout and
// upstream failures are retried until the attempt budget runs out.
func (f *Fetcher) withRetries(ctx context.Context, what string, attempt func(ctx context.Context) ([]byte, string, error)) ([]byte, string, error) {
	attempts := f.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastAttempt *attemptError

	for i := 1; i <= attempts; i++ {
		if i > 1 {
			backoff := f.cfg.BackoffBase << (i - 2)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, "", domain.NewError(domain.CodeTimeout,
					fmt.Sprintf("%s timed out", what), ctx.Err())
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
		data, contentType, err := attempt(attemptCtx)
		cancel()

		if err == nil {
			return data, contentType, nil
		}

		var retriable *attemptError
		if !errors.As(err, &retriable) {
			return nil, "", err
		}
		lastAttempt = retriable

		f.logger.Warn(ctx, "fetch attempt failed", observability.Fields{
			"attempt": i,
			"class":   retriable.class,
			"reason":  retriable.err.Error(),
		})
	}

	if lastAttempt.class == classTimeout {
		return nil, "", domain.NewError(domain.CodeTimeout,
			fmt.Sprintf("%s timed out after %d attempts", what, attempts), lastAttempt.err)
	}
	return nil, "", domain.NewError(domain.CodeUpstreamError,
		fmt.Sprintf("%s failed after %d attempts", what, attempts), lastAttempt.err)
}

// attemptHTTP performs one GET against the pre-signed URL.
func (f *Fetcher) attemptHTTP(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", domain.NewError(domain.CodeValidationError, "Source URL is not usable", request.ElideURLError(err))
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", classifyTransport(request.ElideURLError(err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusForbidden:
		return nil, "", domain.NewError(domain.CodeAccessDenied, "Access to the source document was denied", nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", domain.NewError(domain.CodeNotFound, "Source document not found", nil)
	case resp.StatusCode >= 500:
		return nil, "", &attemptError{class: classUpstream, err: fmt.Errorf("source returned status %d", resp.StatusCode)}
	default:
		return nil, "", domain.NewError(domain.CodeUpstreamError,
			fmt.Sprintf("Source returned unexpected status %d", resp.StatusCode), nil)
	}

	if resp.ContentLength > f.maxBytes {
		return nil, "", f.tooLarge(resp.ContentLength)
	}

	data, err := f.readLimited(resp.Body)
	if err != nil {
		return nil, "", err
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// fetchObject downloads from a bucket with the caller's credentials.
func (f *Fetcher) fetchObject(ctx context.Context, source request.Target, creds *request.Credentials) ([]byte, string, error) {
	if f.newStorage == nil {
		return nil, "", domain.NewError(domain.CodeInternalError, "Bucket addressing is not configured", nil)
	}

	store, err := f.newStorage(ctx, creds)
	if err != nil {
		return nil, "", domain.NewError(domain.CodeValidationError, "Could not use the supplied credentials", err)
	}

	return f.withRetries(ctx, "Source download", func(attemptCtx context.Context) ([]byte, string, error) {
		body, meta, err := store.Get(attemptCtx, source.Bucket, source.Key)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrObjectNotFound):
				return nil, "", domain.NewError(domain.CodeNotFound, "Source document not found", nil)
			case errors.Is(err, storage.ErrAccessDenied):
				return nil, "", domain.NewError(domain.CodeAccessDenied, "Access to the source document was denied", nil)
			default:
				return nil, "", classifyTransport(err)
			}
		}
		defer body.Close()

		if meta.ContentLength > f.maxBytes {
			return nil, "", f.tooLarge(meta.ContentLength)
		}

		data, err := f.readLimited(body)
		if err != nil {
			return nil, "", err
		}
		return data, meta.ContentType, nil
	})
}

// readLimited reads at most maxBytes, detecting overruns with one spare byte.
func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, classifyTransport(err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, f.tooLarge(int64(len(data)))
	}
	return data, nil
}

func (f *Fetcher) tooLarge(size int64) error {
	return domain.NewError(domain.CodeTooLarge,
		fmt.Sprintf("Source document exceeds the %d byte limit", f.maxBytes),
		fmt.Errorf("document is at least %d bytes", size))
}

// classifyTransport sorts a transport error into the timeout or upstream
// retry class.
func classifyTransport(err error) error {
	if isTimeout(err) {
		return &attemptError{class: classTimeout, err: err}
	}
	return &attemptError{class: classUpstream, err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
