package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/el-feo/content-processing-sub001/config"
	obmocks "github.com/el-feo/content-processing-sub001/observability/mocks"
)

func newTestNotifier() *Notifier {
	cfg := &config.WebhookConfig{
		Timeout:     2 * time.Second,
		MaxAttempts: 3,
		BackoffBase: time.Millisecond,
	}
	return NewNotifier(cfg, obmocks.NoopLogger{}, obmocks.NoopMetrics{})
}

func TestNotifier_Notify(t *testing.T) {
	t.Run("delivers the payload as JSON", func(t *testing.T) {
		var gotBody map[string]any
		var gotContentType string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotContentType = r.Header.Get("Content-Type")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		}))
		defer server.Close()

		notifier := newTestNotifier()
		notifier.Notify(context.Background(), server.URL, map[string]any{
			"unique_id": "job-1",
			"status":    "completed",
		})

		assert.Equal(t, "application/json", gotContentType)
		assert.Equal(t, "job-1", gotBody["unique_id"])
		assert.Equal(t, "completed", gotBody["status"])
	})

	t.Run("retries a failed delivery", func(t *testing.T) {
		var requests int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&requests, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
			}
		}))
		defer server.Close()

		notifier := newTestNotifier()
		notifier.Notify(context.Background(), server.URL, map[string]string{"unique_id": "job-2"})

		assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
	})

	t.Run("gives up after the attempt budget", func(t *testing.T) {
		var requests int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requests, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		notifier := newTestNotifier()
		notifier.Notify(context.Background(), server.URL, map[string]string{"unique_id": "job-3"})

		assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
	})

	t.Run("treats client errors as failed attempts", func(t *testing.T) {
		var requests int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requests, 1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		notifier := newTestNotifier()
		notifier.Notify(context.Background(), server.URL, map[string]string{"unique_id": "job-4"})

		assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
	})

	t.Run("is a no-op without a URL", func(t *testing.T) {
		notifier := newTestNotifier()
		notifier.Notify(context.Background(), "", map[string]string{"unique_id": "job-5"})
	})

	t.Run("survives an unreachable host", func(t *testing.T) {
		notifier := newTestNotifier()
		notifier.Notify(context.Background(), "http://127.0.0.1:1/hook", map[string]string{"unique_id": "job-6"})
	})

	t.Run("survives a payload that cannot be encoded", func(t *testing.T) {
		var requests int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requests, 1)
		}))
		defer server.Close()

		notifier := newTestNotifier()
		notifier.Notify(context.Background(), server.URL, make(chan int))

		assert.Equal(t, int32(0), atomic.LoadInt32(&requests))
	})

	t.Run("stops retrying when the context ends", func(t *testing.T) {
		var requests int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requests, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		cfg := &config.WebhookConfig{
			Timeout:     time.Second,
			MaxAttempts: 5,
			BackoffBase: 50 * time.Millisecond,
		}
		notifier := NewNotifier(cfg, obmocks.NoopLogger{}, obmocks.NoopMetrics{})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		notifier.Notify(ctx, server.URL, map[string]string{"unique_id": "job-7"})

		assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
	})
}
