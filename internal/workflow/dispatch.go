package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultUserAgent = "Discordant-Chat-App/1.0"

// Dispatcher posts workflow payloads to the external engine. One attempt
// per request inside a hard deadline; every failure mode (non-2xx, network
// error, timeout) looks the same to the caller, which falls back locally.
type Dispatcher struct {
	endpoint  string
	userAgent string
	timeout   time.Duration
	client    *http.Client
}

type DispatcherOptions struct {
	Endpoint  string
	UserAgent string
	Timeout   time.Duration
	Client    *http.Client
}

func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Client == nil {
		opts.Client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Dispatcher{
		endpoint:  opts.Endpoint,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		client:    opts.Client,
	}
}

// Dispatch sends the payload and returns nil on any 2xx status. The body of
// a successful response is ignored: the workflow delivers its answer
// out-of-band by updating the processing message.
func (d *Dispatcher) Dispatch(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal workflow payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build workflow request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Workflow-Id", payload.Route.WorkflowID)
	req.Header.Set("X-Webhook-Path", payload.Route.WebhookPath)
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("workflow dispatch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("workflow returned HTTP %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}
