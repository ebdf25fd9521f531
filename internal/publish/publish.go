// Package publish uploads rendered pages to the destination, either
// through a pre-signed URL or into a bucket with caller-supplied
// credentials.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/el-feo/content-processing-sub001/config"
	"github.com/el-feo/content-processing-sub001/internal/domain"
	"github.com/el-feo/content-processing-sub001/internal/render"
	"github.com/el-feo/content-processing-sub001/internal/request"
	"github.com/el-feo/content-processing-sub001/observability"
	"github.com/el-feo/content-processing-sub001/storage"
)

const pngContentType = "image/png"

// Result lists where each page landed, ordered by page number.
type Result struct {
	Locations []string
}

// StorageFactory builds a per-request object-store client from the
// caller's temporary credentials.
type StorageFactory func(ctx context.Context, creds *request.Credentials) (storage.ObjectStorage, error)

// attemptError is a failed upload attempt the retry loop may try again.
type attemptError struct {
	err error
}

func (e *attemptError) Error() string { return e.err.Error() }
func (e *attemptError) Unwrap() error { return e.err }

// Publisher uploads rendered pages. Uploads run on a bounded pool with
// per-page retries; the first terminal failure cancels the remaining
// work. Completed uploads are never rolled back.
type Publisher struct {
	cfg        *config.PublishConfig
	workers    int
	httpClient *http.Client
	newStorage StorageFactory
	logger     observability.Logger
	metrics    observability.Metrics
}

// NewPublisher creates a publisher. workers bounds upload concurrency;
// storageFactory may be nil when bucket addressing is not in use.
func NewPublisher(cfg *config.PublishConfig, workers int, storageFactory StorageFactory, logger observability.Logger, metrics observability.Metrics) *Publisher {
	if workers < 1 {
		workers = 1
	}
	return &Publisher{
		cfg:        cfg,
		workers:    workers,
		httpClient: &http.Client{},
		newStorage: storageFactory,
		logger:     logger,
		metrics:    metrics,
	}
}

// Publish uploads every page to the destination and returns the landing
// locations in page order.
func (p *Publisher) Publish(ctx context.Context, pages []render.Page, dest request.Target, creds *request.Credentials, uniqueID string) (*Result, error) {
	p.metrics.StartOperation("publish")
	defer p.metrics.EndOperation("publish")
	start := time.Now()
	defer func() {
		p.metrics.RecordDuration("publish", time.Since(start).Seconds())
	}()

	locations, err := p.publish(ctx, pages, dest, creds, uniqueID)
	if err != nil {
		p.metrics.RecordError("publish", domain.MetricLabel(err))
		return nil, err
	}

	p.metrics.RecordSuccess("publish")
	p.logger.Info(ctx, "pages published", observability.Fields{
		"pages":            len(locations),
		"mode":             dest.Mode.String(),
		"duration_seconds": time.Since(start).Seconds(),
	})
	return &Result{Locations: locations}, nil
}

func (p *Publisher) publish(ctx context.Context, pages []render.Page, dest request.Target, creds *request.Credentials, uniqueID string) ([]string, error) {
	if len(pages) == 0 {
		return []string{}, nil
	}

	switch dest.Mode {
	case request.ModeSignedURL:
		return p.uploadAll(ctx, pages, func(ctx context.Context, page render.Page) (string, error) {
			return p.uploadSigned(ctx, dest.URL, uniqueID, page)
		})
	case request.ModeBucketKey:
		if p.newStorage == nil {
			return nil, domain.NewError(domain.CodeInternalError, "Bucket addressing is not configured", nil)
		}
		store, err := p.newStorage(ctx, creds)
		if err != nil {
			return nil, domain.NewError(domain.CodeValidationError, "Could not use the supplied credentials", err)
		}
		return p.uploadAll(ctx, pages, func(ctx context.Context, page render.Page) (string, error) {
			return p.uploadObject(ctx, store, dest, page)
		})
	default:
		return nil, domain.NewError(domain.CodeValidationError, "destination addressing mode is not set", nil)
	}
}

// uploadAll fans pages out to the worker pool. Locations land in a
// pre-sized slice indexed by page, so ordering survives out-of-order
// completion. The first failure cancels the pool.
func (p *Publisher) uploadAll(ctx context.Context, pages []render.Page, upload func(ctx context.Context, page render.Page) (string, error)) ([]string, error) {
	workers := p.workers
	if workers > len(pages) {
		workers = len(pages)
	}

	poolCtx, cancelPool := context.WithCancel(ctx)
	defer cancelPool()

	locations := make([]string, len(pages))
	indexes := make(chan int)

	var (
		wg       sync.WaitGroup
		failOnce sync.Once
		firstErr error
	)
	fail := func(err error) {
		failOnce.Do(func() {
			firstErr = err
			cancelPool()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range indexes {
				if poolCtx.Err() != nil {
					return
				}
				location, err := upload(poolCtx, pages[index])
				if err != nil {
					fail(err)
					return
				}
				locations[index] = location
			}
		}()
	}

feed:
	for index := 0; index < len(pages); index++ {
		select {
		case indexes <- index:
		case <-poolCtx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewError(domain.CodePublishFailed, "Publishing was interrupted", err)
	}
	return locations, nil
}

// uploadSigned PUTs one page to the pre-signed destination with the page
// name appended to the signed path. The returned location omits the query
// string.
func (p *Publisher) uploadSigned(ctx context.Context, destURL, uniqueID string, page render.Page) (string, error) {
	putURL, location, err := signedPageURL(destURL, fmt.Sprintf("%s-%d.png", uniqueID, page.Number))
	if err != nil {
		return "", domain.NewError(domain.CodeValidationError, "Destination URL is not usable", err)
	}

	err = p.withRetries(ctx, page.Number, func(attemptCtx context.Context) error {
		return p.putHTTP(attemptCtx, putURL, page.PNG)
	})
	if err != nil {
		return "", err
	}
	return location, nil
}

// uploadObject stores one page under the destination prefix.
func (p *Publisher) uploadObject(ctx context.Context, store storage.ObjectStorage, dest request.Target, page render.Page) (string, error) {
	key := pageKey(dest.Key, page.Number)

	err := p.withRetries(ctx, page.Number, func(attemptCtx context.Context) error {
		err := store.Put(attemptCtx, dest.Bucket, key, bytes.NewReader(page.PNG), pngContentType)
		if err == nil {
			return nil
		}
		switch {
		case errors.Is(err, storage.ErrAccessDenied):
			return domain.NewError(domain.CodeAccessDenied, "Access to the destination was denied", nil)
		case errors.Is(err, storage.ErrObjectNotFound):
			return domain.NewError(domain.CodePublishFailed,
				fmt.Sprintf("Destination rejected the upload of page %d", page.Number), err)
		default:
			return &attemptError{err: err}
		}
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("s3://%s/%s", dest.Bucket, key), nil
}

// withRetries runs upload attempts for one page with exponential backoff
// and jitter. Terminal failures (domain errors) end the loop immediately.
func (p *Publisher) withRetries(ctx context.Context, pageNumber int, attempt func(ctx context.Context) error) error {
	attempts := p.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		if i > 1 {
			backoff := p.cfg.BackoffBase << (i - 2)
			backoff += rand.N(backoff/2 + 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return domain.NewError(domain.CodePublishFailed,
					fmt.Sprintf("Upload of page %d was interrupted", pageNumber), ctx.Err())
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		err := attempt(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}

		var retriable *attemptError
		if !errors.As(err, &retriable) {
			return err
		}
		lastErr = retriable.err

		p.logger.Warn(ctx, "upload attempt failed", observability.Fields{
			"page":    pageNumber,
			"attempt": i,
			"reason":  retriable.err.Error(),
		})
	}

	return domain.NewError(domain.CodePublishFailed,
		fmt.Sprintf("Upload of page %d failed after %d attempts", pageNumber, attempts), lastErr)
}

// putHTTP performs one PUT attempt. Timeouts, 5xx and throttling are
// retryable; access failures are terminal.
func (p *Publisher) putHTTP(ctx context.Context, putURL string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, putURL, bytes.NewReader(data))
	if err != nil {
		return domain.NewError(domain.CodeValidationError, "Destination URL is not usable", request.ElideURLError(err))
	}
	req.Header.Set("Content-Type", pngContentType)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &attemptError{err: request.ElideURLError(err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusForbidden:
		return domain.NewError(domain.CodeAccessDenied, "Access to the destination was denied", nil)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &attemptError{err: fmt.Errorf("destination returned status %d", resp.StatusCode)}
	default:
		return domain.NewError(domain.CodePublishFailed,
			fmt.Sprintf("Destination rejected the upload with status %d", resp.StatusCode), nil)
	}
}

// signedPageURL derives the per-page PUT URL by appending the page name
// to the signed path, keeping the signature query intact. The second
// return value is the location with the query stripped.
func signedPageURL(raw, name string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + name
	u.RawPath = ""

	location := url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}
	return u.String(), location.String(), nil
}

// pageKey builds the object key for a page under the destination prefix.
func pageKey(prefix string, number int) string {
	name := fmt.Sprintf("page-%d.png", number)
	if prefix == "" {
		return name
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + name
}
