package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	// maxErrorBody bounds how much of a rejected response is kept.
	maxErrorBody = 4096
	// maxResponseBody bounds a success envelope. Completions are capped at a
	// few thousand tokens, so anything near this is not a real reply.
	maxResponseBody = 4 << 20
)

// Config configures a Client.
type Config struct {
	// APIKey is sent as a bearer token. Required.
	APIKey string

	// BaseURL is the API root; "/chat/completions" is appended.
	// Default: https://openrouter.ai/api/v1
	BaseURL string

	// Model is the model identifier.
	// Default: google/gemini-2.5-flash
	Model string

	// Temperature is the sampling temperature. Nil selects the default;
	// an explicit 0 is sent as 0.
	// Default: 0.8
	Temperature *float64

	// MaxTokens bounds the completion length.
	// Default: 1500
	MaxTokens int

	// Timeout bounds a single HTTP attempt.
	// Default: 30s
	Timeout time.Duration

	// SiteURL and SiteName are sent as OpenRouter attribution headers.
	// Default: http://localhost:3000, WorldView
	SiteURL  string
	SiteName string
}

// Defaults.
const (
	DefaultBaseURL     = "https://openrouter.ai/api/v1"
	DefaultModel       = "google/gemini-2.5-flash"
	DefaultTemperature = 0.8
	DefaultMaxTokens   = 1500
	DefaultTimeout     = 30 * time.Second
	DefaultSiteURL     = "http://localhost:3000"
	DefaultSiteName    = "WorldView"
)

// Client calls the chat-completions endpoint.
type Client struct {
	cfg    Config
	http   *http.Client
	tracer trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its Timeout is left untouched.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTracer sets the tracer used for upstream spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New creates a Client, applying defaults for unset fields.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == nil {
		cfg.Temperature = Float64(DefaultTemperature)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = DefaultSiteURL
	}
	if cfg.SiteName == "" {
		cfg.SiteName = DefaultSiteName
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		tracer: noop.NewTracerProvider().Tracer("upstream"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Float64 returns a pointer to v, for Config.Temperature.
func Float64(v float64) *float64 { return &v }

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.cfg.Model }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Call sends prompt as a single user message and returns the text of the
// first choice. Every failure is an *Error.
func (c *Client) Call(ctx context.Context, prompt string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "upstream.call",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("upstream.model", c.cfg.Model)),
	)
	defer span.End()

	text, err := c.call(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("upstream.error_kind", KindOf(err).String()))
		return "", err
	}
	span.SetStatus(codes.Ok, "")
	return text, nil
}

func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: *c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", c.cfg.SiteURL)
	req.Header.Set("X-Title", c.cfg.SiteName)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &Error{
			Kind:       KindProviderRejected,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: fmt.Errorf("read response: %w", err)}
	}
	if len(body) > maxResponseBody {
		return "", &Error{Kind: KindTransport, Err: fmt.Errorf("response exceeds %d bytes", maxResponseBody)}
	}
	return extract(body)
}

// extract pulls the first choice's content out of a success envelope.
func extract(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", &Error{Kind: KindTransport, Err: fmt.Errorf("response is not valid JSON")}
	}
	env := gjson.ParseBytes(body)

	if e := env.Get("error"); e.Exists() && e.Type != gjson.Null {
		msg := e.Get("message").String()
		if msg == "" {
			msg = e.Raw
		}
		return "", &Error{Kind: KindProviderError, Message: msg}
	}

	content := env.Get("choices.0.message.content")
	if content.Type != gjson.String || content.Str == "" {
		return "", &Error{Kind: KindEmptyContent}
	}
	return content.Str, nil
}
