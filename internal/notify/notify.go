// Package notify delivers webhook notifications. Delivery is best
// effort: failures are logged and counted, never surfaced to the caller.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/el-feo/content-processing-sub001/config"
	"github.com/el-feo/content-processing-sub001/internal/request"
	"github.com/el-feo/content-processing-sub001/observability"
)

// Notifier posts JSON payloads to webhook URLs.
type Notifier struct {
	cfg        *config.WebhookConfig
	httpClient *http.Client
	logger     observability.Logger
	metrics    observability.Metrics
}

func NewNotifier(cfg *config.WebhookConfig, logger observability.Logger, metrics observability.Metrics) *Notifier {
	return &Notifier{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
		metrics:    metrics,
	}
}

// Notify posts the payload to the webhook URL. A non-2xx response counts
// as a failed attempt. Exhausted retries are logged, never returned; an
// empty URL is a no-op.
func (n *Notifier) Notify(ctx context.Context, webhookURL string, payload any) {
	if webhookURL == "" {
		return
	}

	n.metrics.StartOperation("notify")
	defer n.metrics.EndOperation("notify")
	start := time.Now()
	defer func() {
		n.metrics.RecordDuration("notify", time.Since(start).Seconds())
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		n.metrics.RecordError("notify", "marshal_failed")
		n.logger.Error(ctx, "could not encode webhook payload", err, observability.Fields{
			"webhook": request.ElideURL(webhookURL),
		})
		return
	}

	attempts := n.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		if i > 1 {
			backoff := n.cfg.BackoffBase << (i - 2)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				n.metrics.RecordError("notify", "delivery_abandoned")
				n.logger.Warn(ctx, "webhook delivery abandoned", observability.Fields{
					"webhook": request.ElideURL(webhookURL),
					"reason":  ctx.Err().Error(),
				})
				return
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
		err := n.post(attemptCtx, webhookURL, body)
		cancel()

		if err == nil {
			n.metrics.RecordSuccess("notify")
			n.logger.Info(ctx, "webhook delivered", observability.Fields{
				"webhook":  request.ElideURL(webhookURL),
				"attempts": i,
			})
			return
		}
		lastErr = err

		n.logger.Warn(ctx, "webhook attempt failed", observability.Fields{
			"webhook": request.ElideURL(webhookURL),
			"attempt": i,
			"reason":  err.Error(),
		})
	}

	n.metrics.RecordError("notify", "delivery_failed")
	n.logger.Error(ctx, "webhook delivery failed", lastErr, observability.Fields{
		"webhook":  request.ElideURL(webhookURL),
		"attempts": attempts,
	})
}

func (n *Notifier) post(ctx context.Context, webhookURL string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return request.ElideURLError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
