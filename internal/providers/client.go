// Package providers holds what the LLM adapters share: an authenticated JSON
// client with timeouts, tracing and metrics, the adapter interfaces, and the
// typed errors callers branch on.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/codementor-backend/internal/observability"
	"github.com/yungbote/codementor-backend/internal/platform/logger"
)

type AuthStyle int

const (
	// AuthBearer sends "Authorization: Bearer <key>".
	AuthBearer AuthStyle = iota
	// AuthAPIKeyHeader sends "x-api-key: <key>".
	AuthAPIKeyHeader
)

type ClientConfig struct {
	// ID is the provider token used in metrics and logs ("openai").
	ID string
	// Name is the vendor name used in error text ("OpenAI").
	Name string

	BaseURL   string
	APIKey    string
	APIKeyEnv string
	Auth      AuthStyle
	Headers   map[string]string

	// Timeout bounds one provider call, including reading the body.
	Timeout time.Duration
}

type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	log        *logger.Logger
	tracer     trace.Tracer
}

const defaultTimeout = 60 * time.Second

func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return NewClientWithHTTPClient(cfg, log, &http.Client{Transport: tr})
}

// NewClientWithHTTPClient is intended for tests; pass a client with a custom RoundTripper.
func NewClientWithHTTPClient(cfg ClientConfig, log *logger.Logger, httpClient *http.Client) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}
	if log == nil {
		log = logger.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		log:        log.With("provider", cfg.ID),
		tracer:     otel.Tracer("codementor/providers"),
	}
}

func (c *Client) ID() string   { return c.cfg.ID }
func (c *Client) Name() string { return c.cfg.Name }

func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

// CheckCredential fails with *CredentialError when no API key is configured.
func (c *Client) CheckCredential() error {
	if c.Configured() {
		return nil
	}
	return &CredentialError{Provider: c.cfg.Name, EnvVar: c.cfg.APIKeyEnv}
}

// PostJSON sends one authenticated JSON request and decodes a 2xx body into out.
// It never retries. op labels the call in spans and metrics ("chat", "feedback", "hint").
func (c *Client) PostJSON(ctx context.Context, op, path string, body, out any) (err error) {
	if err := c.CheckCredential(); err != nil {
		return err
	}

	ctx, span := c.tracer.Start(ctx, "provider."+c.cfg.ID+"."+op, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.provider", c.cfg.ID),
			attribute.String("llm.operation", op),
			attribute.String("http.route", path),
		))
	start := time.Now()
	status := 0
	defer func() {
		label := strconv.Itoa(status)
		if status == 0 {
			label = "error"
		}
		observability.Current().ObserveLLMRequest(c.cfg.ID, op, label, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return fmt.Errorf("%s: encode request: %w", c.cfg.Name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.cfg.Name, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("provider request failed", "op", op, "error", err)
		return fmt.Errorf("%s request failed: %w", c.cfg.Name, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode
	span.SetAttributes(attribute.Int("http.status_code", status))

	if status < 200 || status >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		c.log.Error("provider returned error status", "op", op, "status", status)
		c.log.Debug("provider error body", "op", op, "body", string(raw))
		return &HTTPError{Provider: c.cfg.Name, StatusCode: status, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.cfg.Name, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	switch c.cfg.Auth {
	case AuthAPIKeyHeader:
		req.Header.Set("x-api-key", c.cfg.APIKey)
	default:
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
}
