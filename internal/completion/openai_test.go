package completion_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlbertoRoca-web/pup-sdk/internal/completion"
)

// providerStub mimics an OpenAI-compatible /chat/completions endpoint.
func providerStub(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var captured http.Request
	var capturedBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r.Clone(context.Background())
		_ = json.NewDecoder(r.Body).Decode(&capturedBody)
		captured.Header.Set("X-Decoded-Model", capturedBody["model"].(string))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestComplete_Success(t *testing.T) {
	srv, captured := providerStub(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "  Woof!  ", "reasoning_content": "thinking"}}],
		"usage": {"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5}
	}`)

	d := completion.NewOpenAIDriver(srv.URL+"/", completion.WithModel("gpt-4o-mini"))
	res, err := d.Complete(context.Background(), completion.Request{
		Token:            "sk-test",
		System:           "persona",
		Message:          "hello",
		IncludeReasoning: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Woof!", res.Content)
	assert.Equal(t, "thinking", res.Reasoning)
	assert.Equal(t, "chatcmpl-1", res.ID)
	assert.Equal(t, 5, res.Usage.TotalTokens)
	assert.Equal(t, "/chat/completions", captured.URL.Path)
	assert.Equal(t, "Bearer sk-test", captured.Header.Get("Authorization"))
	assert.Equal(t, "gpt-4o-mini", captured.Header.Get("X-Decoded-Model"))
}

func TestComplete_ReasoningOmittedUnlessRequested(t *testing.T) {
	srv, _ := providerStub(t, http.StatusOK, `{"choices":[{"message":{"content":"hi","reasoning_content":"secret"}}]}`)

	d := completion.NewOpenAIDriver(srv.URL)
	res, err := d.Complete(context.Background(), completion.Request{Token: "k", Message: "m"})
	require.NoError(t, err)
	assert.Empty(t, res.Reasoning)
	assert.Equal(t, d.Model(), res.Model)
}

func TestComplete_StatusError(t *testing.T) {
	srv, _ := providerStub(t, http.StatusUnauthorized, `{"error":{"message":"bad key"}}`)

	d := completion.NewOpenAIDriver(srv.URL)
	_, err := d.Complete(context.Background(), completion.Request{Token: "k", Message: "m"})

	var statusErr *completion.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "bad key")
}

func TestComplete_NoContent(t *testing.T) {
	bodies := map[string]string{
		"not json":      `<html>oops</html>`,
		"no choices":    `{"choices":[]}`,
		"empty content": `{"choices":[{"message":{"content":"   "}}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv, _ := providerStub(t, http.StatusOK, body)

			d := completion.NewOpenAIDriver(srv.URL)
			_, err := d.Complete(context.Background(), completion.Request{Token: "k", Message: "m"})
			assert.ErrorIs(t, err, completion.ErrNoContent)
		})
	}
}

func TestComplete_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	d := completion.NewOpenAIDriver(url, completion.WithTimeout(2*time.Second))
	_, err := d.Complete(context.Background(), completion.Request{Token: "k", Message: "m"})

	var transportErr *completion.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.NotNil(t, errors.Unwrap(err))
}
