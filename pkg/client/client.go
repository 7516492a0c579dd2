// Package client is the Go SDK for the Pup bridge.
//
// A Client issues one HTTP exchange per call, maps the JSON body onto the
// types in pkg/models, and reports every failure as *SDKError. Calls are
// never retried.
//
//	c, err := client.New("https://pup.example.com", client.WithAPIKey(key))
//	resp, err := c.Chat(ctx, "Tell me a joke")
package client

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AlbertoRoca-web/pup-sdk/pkg/models"
)

// Client talks to one bridge. It is safe for concurrent use.
type Client struct {
	cfg  Config
	http *resty.Client
	log  zerolog.Logger
}

// New creates a client for baseURL with default settings adjusted by opts.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := DefaultConfig(baseURL)
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a client from an explicit configuration.
func NewWithConfig(cfg Config) (*Client, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	rc := resty.New().
		SetTransport(newTransport(cfg)).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.ConnectTimeout+cfg.ReadTimeout).
		SetRetryCount(0).
		SetLogger(restyLogger{cfg.Logger}).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)
	if cfg.APIKey != "" {
		rc.SetAuthToken(cfg.APIKey)
	}

	return &Client{cfg: cfg, http: rc, log: cfg.Logger}, nil
}

// BaseURL returns the normalized bridge URL.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// Status fetches GET /api/v1/status.
func (c *Client) Status(ctx context.Context) (*models.StatusReport, error) {
	var out models.StatusReport
	if err := c.do(ctx, "status", resty.MethodGet, "/api/v1/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatOption adjusts a chat request.
type ChatOption func(*models.ChatRequest)

// WithReasoning asks the bridge to include the model's reasoning.
func WithReasoning() ChatOption {
	return func(r *models.ChatRequest) { r.IncludeReasoning = true }
}

// WithAutoExecute sets the auto_execute flag. The bridge accepts it but never
// executes anything.
func WithAutoExecute() ChatOption {
	return func(r *models.ChatRequest) { r.AutoExecute = true }
}

// WithContext attaches caller context entries to the request.
func WithContext(values map[string]string) ChatOption {
	return func(r *models.ChatRequest) {
		if len(values) == 0 {
			return
		}
		if r.Context == nil {
			r.Context = make(map[string]string, len(values))
		}
		for k, v := range values {
			r.Context[k] = v
		}
	}
}

// Chat sends message to Alberto.
func (c *Client) Chat(ctx context.Context, message string, opts ...ChatOption) (*models.ChatResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, invalidConfig("chat", "chat: message must not be blank")
	}
	req := models.ChatRequest{Message: message}
	for _, opt := range opts {
		opt(&req)
	}
	return c.Send(ctx, req)
}

// Send posts a prebuilt request to POST /api/v1/chat. Unlike Chat it does not
// reject a blank message; the bridge substitutes its own greeting.
func (c *Client) Send(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	var out models.ChatResponse
	if err := c.do(ctx, "chat", resty.MethodPost, "/api/v1/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health reports whether the bridge answers its status route and claims to
// be available. Any failure counts as unhealthy.
func (c *Client) Health(ctx context.Context) bool {
	status, err := c.Status(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("Health check failed")
		return false
	}
	return status.Available
}

// Capabilities returns the names of the bridge's enabled capabilities.
func (c *Client) Capabilities(ctx context.Context) ([]string, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return nil, err
	}
	return status.EnabledCapabilities(), nil
}

// ListAgents returns the personas the bridge answers as.
func (c *Client) ListAgents(ctx context.Context) ([]string, error) {
	var out models.AgentList
	if err := c.do(ctx, "agents", resty.MethodGet, "/api/v1/agents", nil, &out); err != nil {
		return nil, err
	}
	if out.Agents == nil {
		return []string{}, nil
	}
	return out.Agents, nil
}

// WaitUntilReady polls Health every interval until it succeeds or ctx ends.
func (c *Client) WaitUntilReady(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if c.Health(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return &SDKError{
				Op:      "wait",
				Message: "wait: bridge not ready: " + ctx.Err().Error(),
				Err:     ctx.Err(),
			}
		case <-ticker.C:
		}
	}
}

// do performs one exchange and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	requestID := uuid.NewString()
	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-Id", requestID)
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.log.Debug().Err(err).Str("op", op).Str("request_id", requestID).Msg("Bridge request failed")
		return transportError(op, err)
	}

	c.log.Debug().
		Str("op", op).
		Str("request_id", requestID).
		Int("status", resp.StatusCode()).
		Str("status_text", statusText(resp.StatusCode())).
		Dur("latency", time.Since(start)).
		Msg("Bridge responded")

	if !resp.IsSuccess() {
		return httpError(op, resp.StatusCode(), resp.Body())
	}

	raw := resp.Body()
	if len(strings.TrimSpace(string(raw))) == 0 {
		return invalidResponse(op, resp.StatusCode(), nil)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return invalidResponse(op, resp.StatusCode(), err)
	}
	return nil
}

// restyLogger routes resty's internal warnings into zerolog.
type restyLogger struct {
	l zerolog.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) { r.l.Error().Msgf(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.l.Warn().Msgf(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.l.Debug().Msgf(format, v...) }
