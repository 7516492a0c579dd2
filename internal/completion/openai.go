package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("pup-bridge/completion")

// OpenAIDriver talks to any OpenAI-compatible /chat/completions endpoint.
type OpenAIDriver struct {
	http      *resty.Client
	model     string
	maxTokens int
}

// OpenAIOption configures the driver.
type OpenAIOption func(*OpenAIDriver)

// WithModel sets the model name sent to the provider.
func WithModel(model string) OpenAIOption {
	return func(d *OpenAIDriver) {
		if model != "" {
			d.model = model
		}
	}
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) OpenAIOption {
	return func(d *OpenAIDriver) {
		if n > 0 {
			d.maxTokens = n
		}
	}
}

// WithTimeout bounds a single provider call.
func WithTimeout(timeout time.Duration) OpenAIOption {
	return func(d *OpenAIDriver) {
		if timeout > 0 {
			d.http.SetTimeout(timeout)
		}
	}
}

// NewOpenAIDriver creates a driver for the endpoint at baseURL
// (e.g. https://api.openai.com/v1).
func NewOpenAIDriver(baseURL string, opts ...OpenAIOption) *OpenAIDriver {
	d := &OpenAIDriver{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json").
			SetTimeout(60 * time.Second).
			SetRetryCount(0),
		model:     openai.GPT4oMini,
		maxTokens: 1024,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Model returns the configured model name.
func (d *OpenAIDriver) Model() string { return d.model }

// Complete sends one chat completion request.
func (d *OpenAIDriver) Complete(ctx context.Context, req Request) (*Result, error) {
	ctx, span := tracer.Start(ctx, "completion.chat")
	defer span.End()
	span.SetAttributes(attribute.String("gen_ai.request.model", d.model))

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Message})

	body := openai.ChatCompletionRequest{
		Model:     d.model,
		Messages:  messages,
		MaxTokens: d.maxTokens,
	}

	start := time.Now()
	resp, err := d.http.R().
		SetContext(ctx).
		SetAuthToken(req.Token).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, &TransportError{Err: err}
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode()))
	log.Debug().
		Int("status", resp.StatusCode()).
		Dur("latency", time.Since(start)).
		Str("model", d.model).
		Msg("Completion provider responded")

	if !resp.IsSuccess() {
		span.SetStatus(codes.Error, "upstream status")
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var out openai.ChatCompletionResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrNoContent, err)
	}
	if len(out.Choices) == 0 {
		return nil, ErrNoContent
	}

	msg := out.Choices[0].Message
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return nil, ErrNoContent
	}

	result := &Result{
		ID:      out.ID,
		Model:   out.Model,
		Content: content,
		Usage: Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
	}
	if result.Model == "" {
		result.Model = d.model
	}
	if req.IncludeReasoning {
		result.Reasoning = strings.TrimSpace(msg.ReasoningContent)
	}
	span.SetAttributes(attribute.Int("gen_ai.usage.total_tokens", result.Usage.TotalTokens))
	return result, nil
}
