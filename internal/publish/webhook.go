// Package publish delivers rendered reports: Slack payloads to an incoming
// webhook and rendered documents to an S3 bucket.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
)

const (
	defaultConnTimeoutSec = 10
	defaultRetryMax       = 3
	contentTypeJSON       = "application/json"
)

// Webhook posts JSON payloads to a Slack incoming webhook URL.
type Webhook struct {
	url    string
	client *retryablehttp.Client
}

type WebhookOption func(*Webhook)

// WithRetry sets the number of retries and the minimum/maximum wait between attempts.
func WithRetry(max int, waitMin, waitMax time.Duration) WebhookOption {
	return func(w *Webhook) {
		w.client.RetryMax = max
		w.client.RetryWaitMin = waitMin
		w.client.RetryWaitMax = waitMax
	}
}

// NewWebhook creates a webhook client retrying on connection errors and server errors.
func NewWebhook(url string, opts ...WebhookOption) *Webhook {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = defaultRetryMax
	retryClient.HTTPClient.Timeout = defaultConnTimeoutSec * time.Second
	retryLogger := log.New()
	retryLogger.SetLevel(log.WarnLevel)
	retryClient.Logger = retryLogger

	w := &Webhook{url: url, client: retryClient}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Post sends payload to the webhook. Any non 2xx response is an error.
func (w *Webhook) Post(ctx context.Context, payload []byte) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("couldn't create the request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	res, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("couldn't post to webhook: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("couldn't read response body: %w", err)
	}

	log.Debug("webhook response code: ", res.Status)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("invalid status code: %d: %s", res.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
