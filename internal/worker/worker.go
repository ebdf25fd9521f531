// Package worker orchestrates a conversion request end to end: parse,
// validate, fetch, render, publish, notify. Stages run strictly in order
// and the first failure decides the response.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/el-feo/content-processing-sub001/handler"
	"github.com/el-feo/content-processing-sub001/internal/domain"
	"github.com/el-feo/content-processing-sub001/internal/fetch"
	"github.com/el-feo/content-processing-sub001/internal/publish"
	"github.com/el-feo/content-processing-sub001/internal/render"
	"github.com/el-feo/content-processing-sub001/internal/request"
	"github.com/el-feo/content-processing-sub001/internal/secrets"
	"github.com/el-feo/content-processing-sub001/observability"
)

// Fetcher downloads the source document.
type Fetcher interface {
	Fetch(ctx context.Context, source request.Target, creds *request.Credentials) (*fetch.Document, error)
}

// Renderer converts a PDF into page images.
type Renderer interface {
	Render(ctx context.Context, document []byte) (*render.Result, error)
}

// Publisher uploads rendered pages to the destination.
type Publisher interface {
	Publish(ctx context.Context, pages []render.Page, dest request.Target, creds *request.Credentials, uniqueID string) (*publish.Result, error)
}

// Notifier delivers the outcome to the caller's webhook. Delivery is best
// effort and never influences the response.
type Notifier interface {
	Notify(ctx context.Context, webhookURL string, payload any)
}

const (
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// ResultMetadata describes how the conversion was performed.
type ResultMetadata struct {
	PDFPageCount  int    `json:"pdf_page_count"`
	ConversionDPI int    `json:"conversion_dpi"`
	ImageFormat   string `json:"image_format"`
}

// ConversionResult is the success body returned to the caller.
type ConversionResult struct {
	Message        string         `json:"message"`
	Images         []string       `json:"images"`
	UniqueID       string         `json:"unique_id"`
	Status         string         `json:"status"`
	PagesConverted int            `json:"pages_converted"`
	Metadata       ResultMetadata `json:"metadata"`
}

// successNotification is the webhook payload for a completed conversion.
type successNotification struct {
	ConversionResult
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

// failureNotification is the webhook payload for a failed conversion.
type failureNotification struct {
	UniqueID string `json:"unique_id"`
	Status   string `json:"status"`
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
}

// ConvertWorker implements handler.Worker for PDF-to-image conversion.
type ConvertWorker struct {
	fetcher   Fetcher
	renderer  Renderer
	publisher Publisher
	notifier  Notifier
	secrets   secrets.Source
	validate  request.Options
	logger    observability.Logger
	metrics   observability.Metrics
}

// NewConvertWorker creates the conversion worker.
func NewConvertWorker(
	fetcher Fetcher,
	renderer Renderer,
	publisher Publisher,
	notifier Notifier,
	secretSource secrets.Source,
	validate request.Options,
	logger observability.Logger,
	metrics observability.Metrics,
) *ConvertWorker {
	return &ConvertWorker{
		fetcher:   fetcher,
		renderer:  renderer,
		publisher: publisher,
		notifier:  notifier,
		secrets:   secretSource,
		validate:  validate,
		logger:    logger,
		metrics:   metrics,
	}
}

// Name returns the worker identifier used in logs and health output.
func (w *ConvertWorker) Name() string {
	return "converter"
}

// Process runs one conversion. Stage failures are returned as error
// responses, not errors; the platform adapter maps codes to HTTP status.
func (w *ConvertWorker) Process(ctx context.Context, req handler.Request) (handler.Response, error) {
	w.metrics.StartOperation("convert")
	defer w.metrics.EndOperation("convert")
	start := time.Now()
	defer func() {
		w.metrics.RecordDuration("convert", time.Since(start).Seconds())
	}()

	w.logger.Info(ctx, "processing conversion request", observability.Fields{
		"request_id": req.ID,
		"source":     req.Source,
	})

	conv, err := request.Parse(req.Payload)
	if err != nil {
		return w.rejected(ctx, req.ID, err), nil
	}
	if err := conv.Validate(ctx, w.validate); err != nil {
		return w.rejected(ctx, req.ID, err), nil
	}

	log := w.logger.WithFields(observability.Fields{"unique_id": conv.UniqueID})

	doc, err := w.fetcher.Fetch(ctx, conv.Source, conv.Credentials)
	if err != nil {
		return w.failed(ctx, log, req.ID, conv, "fetch", err), nil
	}

	rendered, err := w.renderer.Render(ctx, doc.Data)
	if err != nil {
		return w.failed(ctx, log, req.ID, conv, "render", err), nil
	}

	published, err := w.publisher.Publish(ctx, rendered.Pages, conv.Destination, conv.Credentials, conv.UniqueID)
	if err != nil {
		return w.failed(ctx, log, req.ID, conv, "publish", err), nil
	}

	result := &ConversionResult{
		Message:        "PDF converted successfully",
		Images:         published.Locations,
		UniqueID:       conv.UniqueID,
		Status:         statusCompleted,
		PagesConverted: rendered.PageCount,
		Metadata: ResultMetadata{
			PDFPageCount:  rendered.PageCount,
			ConversionDPI: rendered.DPI,
			ImageFormat:   "png",
		},
	}

	if conv.Webhook != "" {
		notification := &successNotification{
			ConversionResult:      *result,
			ProcessingTimeSeconds: time.Since(start).Seconds(),
		}
		go w.notifier.Notify(context.WithoutCancel(ctx), conv.Webhook, notification)
	}

	resp, err := handler.NewSuccessResponse(req.ID, result)
	if err != nil {
		w.metrics.RecordError("convert", "response_error")
		log.Error(ctx, "building success response failed", err, observability.Fields{
			"request_id": req.ID,
		})
		return handler.NewErrorResponse(req.ID, domain.CodeInternalError, "Failed to build response", err.Error()), nil
	}

	w.metrics.RecordSuccess("convert")
	log.Info(ctx, "conversion completed", observability.Fields{
		"pages":            rendered.PageCount,
		"duration_seconds": time.Since(start).Seconds(),
	})

	return resp, nil
}

// Health reports whether the worker can authenticate requests. A secret
// source outage makes every request fail, so it fails the health check.
func (w *ConvertWorker) Health(ctx context.Context) error {
	if _, err := w.secrets.Get(ctx); err != nil {
		w.metrics.RecordError("health_check", "secret_source")
		return fmt.Errorf("secret source: %w", err)
	}
	w.metrics.RecordSuccess("health_check")
	return nil
}

// rejected builds the response for a request that failed parsing or
// validation. The webhook URL has not been vetted at this point, so no
// notification is dispatched.
func (w *ConvertWorker) rejected(ctx context.Context, requestID string, err error) handler.Response {
	domainErr := asDomainError(err)

	w.metrics.RecordError("convert", domain.MetricLabel(domainErr))
	w.logger.Warn(ctx, "conversion request rejected", observability.Fields{
		"request_id": requestID,
		"error_code": domainErr.Code,
		"reason":     domainErr.Message,
	})

	resp := handler.NewErrorResponse(requestID, domainErr.Code, domainErr.Message, domainErr.Error())
	resp.Error.Retryable = domainErr.Retryable
	return resp
}

// failed builds the response for a stage failure and dispatches the
// failure notification when a webhook was supplied.
func (w *ConvertWorker) failed(ctx context.Context, log observability.Logger, requestID string, conv *request.ConversionRequest, stage string, err error) handler.Response {
	domainErr := asDomainError(err)

	w.metrics.RecordError("convert", domain.MetricLabel(domainErr))
	if domainErr.Retryable {
		w.metrics.RecordError("convert_retryable", domainErr.Code)
	}
	log.Error(ctx, "conversion failed", domainErr, observability.Fields{
		"request_id": requestID,
		"stage":      stage,
		"error_code": domainErr.Code,
	})

	if conv.Webhook != "" {
		notification := &failureNotification{
			UniqueID: conv.UniqueID,
			Status:   statusFailed,
			Error:    domainErr.Message,
		}
		if domainErr.Err != nil {
			notification.Details = domainErr.Err.Error()
		}
		go w.notifier.Notify(context.WithoutCancel(ctx), conv.Webhook, notification)
	}

	resp := handler.NewErrorResponse(requestID, domainErr.Code, domainErr.Message, domainErr.Error())
	resp.Error.Retryable = domainErr.Retryable
	return resp
}

// asDomainError normalizes any stage error to a domain error. Anything
// without a code is an internal error.
func asDomainError(err error) *domain.DomainError {
	if domainErr, ok := domain.AsDomainError(err); ok {
		return domainErr
	}
	return domain.NewError(domain.CodeInternalError, "Conversion failed", err)
}
