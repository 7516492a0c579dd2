package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlbertoRoca-web/pup-sdk/pkg/client"
	"github.com/AlbertoRoca-web/pup-sdk/pkg/models"
)

func stubBridge(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL string, opts ...client.Option) *client.Client {
	t.Helper()
	c, err := client.New(baseURL, opts...)
	require.NoError(t, err)
	return c
}

func requireSDKError(t *testing.T, err error) *client.SDKError {
	t.Helper()
	var sdkErr *client.SDKError
	require.True(t, errors.As(err, &sdkErr), "want *SDKError, got %T: %v", err, err)
	return sdkErr
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		url  string
		opts []client.Option
	}{
		{"blank url", "   ", nil},
		{"relative url", "localhost:8080/api", nil},
		{"unsupported scheme", "ftp://example.com", nil},
		{"zero connect timeout", "http://localhost", []client.Option{client.WithTimeouts(0, time.Second)}},
		{"negative read timeout", "http://localhost", []client.Option{client.WithTimeouts(time.Second, -time.Second)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.New(tt.url, tt.opts...)
			sdkErr := requireSDKError(t, err)
			assert.ErrorIs(t, err, client.ErrInvalidConfig)
			assert.False(t, sdkErr.IsTransport())
			assert.False(t, sdkErr.IsHTTP())
		})
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := newClient(t, " https://pup.example.com/// ")
	assert.Equal(t, "https://pup.example.com", c.BaseURL())
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	srv := stubBridge(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"available":true,"version":"1","connected":true,"demo_mode":false,"capabilities":[]}`))
	})

	c := newClient(t, srv.URL, client.WithAPIKey("sk-123"), client.WithUserAgent("pup-test/1"))
	_, err := c.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "pup-test/1", got.Get("User-Agent"))
	assert.Equal(t, "Bearer sk-123", got.Get("Authorization"))
	_, err = uuid.Parse(got.Get("X-Request-Id"))
	assert.NoError(t, err)
}

func TestRequestHeaders_NoKeyNoAuthorization(t *testing.T) {
	var got http.Header
	srv := stubBridge(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"available":true}`))
	})

	c := newClient(t, srv.URL, client.WithAPIKey("   "))
	_, err := c.Status(context.Background())
	require.NoError(t, err)

	assert.Empty(t, got.Get("Authorization"))
	assert.Equal(t, client.DefaultUserAgent, got.Get("User-Agent"))
}

func TestStatus(t *testing.T) {
	srv := stubBridge(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/status", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"available": true, "version": "0.1.0", "connected": false, "demo_mode": true,
			"capabilities": [{"name":"chat","enabled":true},{"name":"reasoning","enabled":false}]
		}`))
	})

	c := newClient(t, srv.URL)
	status, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Available)
	assert.True(t, status.DemoMode)
	assert.Equal(t, "0.1.0", status.Version)

	caps, err := c.Capabilities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"chat"}, caps)
	assert.True(t, c.Health(context.Background()))
}

func TestChat_RequestBody(t *testing.T) {
	var got models.ChatRequest
	srv := stubBridge(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/chat", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"response":"Woof","reasoning":"because","execution_time":0.25}`))
	})

	c := newClient(t, srv.URL)
	resp, err := c.Chat(context.Background(), "Tell me a joke",
		client.WithReasoning(),
		client.WithAutoExecute(),
		client.WithContext(map[string]string{"repo": "pup"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "Tell me a joke", got.Message)
	assert.True(t, got.IncludeReasoning)
	assert.True(t, got.AutoExecute)
	assert.Equal(t, map[string]string{"repo": "pup"}, got.Context)

	assert.True(t, resp.Success)
	assert.Equal(t, "Woof", resp.Response)
	assert.Equal(t, "because", resp.Reasoning)
	assert.InDelta(t, 0.25, resp.ExecutionTime, 1e-9)
}

func TestChat_BlankMessageRejectedLocally(t *testing.T) {
	var hits atomic.Int32
	srv := stubBridge(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })

	c := newClient(t, srv.URL)
	_, err := c.Chat(context.Background(), "  ")
	assert.ErrorIs(t, err, client.ErrInvalidConfig)
	assert.Zero(t, hits.Load())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"boom"}`, "boom"},
		{"message field", `{"message":"bridge asleep"}`, "bridge asleep"},
		{"error preferred", `{"error":"boom","message":"ignored"}`, "boom"},
		{"chat failure", `{"success":false,"error":"Upstream error","details":"x"}`, "Upstream error"},
		{"raw text", "  service unavailable\n", "service unavailable"},
		{"empty body", "", "HTTP 503"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := stubBridge(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(tt.body))
			})

			c := newClient(t, srv.URL)
			_, err := c.Chat(context.Background(), "hi")

			sdkErr := requireSDKError(t, err)
			assert.Equal(t, tt.want, sdkErr.Error())
			assert.Equal(t, http.StatusServiceUnavailable, sdkErr.StatusCode)
			assert.Equal(t, "chat", sdkErr.Op)
			assert.True(t, sdkErr.IsHTTP())
			assert.False(t, sdkErr.IsTransport())
		})
	}
}

func TestInvalidResponseBody(t *testing.T) {
	for name, body := range map[string]string{"empty": "", "garbage": "<html>hi</html>"} {
		t.Run(name, func(t *testing.T) {
			srv := stubBridge(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			c := newClient(t, srv.URL)
			_, err := c.Status(context.Background())

			sdkErr := requireSDKError(t, err)
			assert.ErrorIs(t, err, client.ErrInvalidResponse)
			assert.Equal(t, http.StatusOK, sdkErr.StatusCode)
			assert.False(t, sdkErr.IsHTTP())
			assert.False(t, sdkErr.IsTransport())
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(t, url, client.WithTimeouts(time.Second, time.Second))
	_, err := c.Chat(context.Background(), "hi")

	sdkErr := requireSDKError(t, err)
	assert.True(t, sdkErr.IsTransport())
	assert.Zero(t, sdkErr.StatusCode)
	assert.NotNil(t, errors.Unwrap(sdkErr))
	assert.False(t, c.Health(context.Background()))
}

func TestReadTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := stubBridge(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	c := newClient(t, srv.URL, client.WithTimeouts(time.Second, 50*time.Millisecond))
	_, err := c.Status(context.Background())

	assert.True(t, requireSDKError(t, err).IsTransport())
}

func TestNoRetries(t *testing.T) {
	var hits atomic.Int32
	srv := stubBridge(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := newClient(t, srv.URL)
	_, err := c.Chat(context.Background(), "hi")
	require.Error(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestWaitUntilReady(t *testing.T) {
	var hits atomic.Int32
	srv := stubBridge(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"available":true}`))
	})

	c := newClient(t, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, c.WaitUntilReady(ctx, 10*time.Millisecond))
	assert.EqualValues(t, 3, hits.Load())
}

func TestWaitUntilReady_ContextDone(t *testing.T) {
	srv := stubBridge(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	c := newClient(t, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.WaitUntilReady(ctx, 10*time.Millisecond)
	requireSDKError(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListAgents(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"listed", `{"agents":["alberto","husky"]}`, []string{"alberto", "husky"}},
		{"missing field", `{}`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := stubBridge(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/v1/agents", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			})

			agents, err := newClient(t, srv.URL).ListAgents(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, agents)
		})
	}
}

func TestListAgents_HTTPError(t *testing.T) {
	srv := stubBridge(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	})

	_, err := newClient(t, srv.URL).ListAgents(context.Background())
	sdkErr := requireSDKError(t, err)
	assert.Equal(t, "agents", sdkErr.Op)
	assert.Equal(t, "Not found", sdkErr.Error())
}
