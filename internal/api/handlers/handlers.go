// Package handlers implements the HTTP handlers for the Pup bridge.
//
// The bridge is stateless: every handler reads its inputs from the request
// and the read-only dependencies below, and nothing survives the request.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AlbertoRoca-web/pup-sdk/internal/completion"
	"github.com/AlbertoRoca-web/pup-sdk/internal/config"
	"github.com/AlbertoRoca-web/pup-sdk/internal/credentials"
	"github.com/AlbertoRoca-web/pup-sdk/internal/metrics"
	"github.com/AlbertoRoca-web/pup-sdk/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	maxBodyBytes    = 1 << 20
	maxDetailsRunes = 1000
)

// Handlers holds all handler dependencies.
type Handlers struct {
	ServiceVersion string
	Policy         config.FailurePolicy
	Credentials    *credentials.Chain
	Completer      completion.Completer
	Metrics        *metrics.Metrics
}

// New creates a new Handlers instance.
func New(cfg *config.Config, chain *credentials.Chain, c completion.Completer, m *metrics.Metrics) *Handlers {
	return &Handlers{
		ServiceVersion: cfg.Version,
		Policy:         cfg.FailurePolicy,
		Credentials:    chain,
		Completer:      c,
		Metrics:        m,
	}
}

// ── Health & status ──────────────────────────────────────────

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Message: healthMessage})
}

func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"version": h.ServiceVersion,
		"service": "pup-bridge",
	})
}

// Status reports liveness and whether a provider credential is configured.
// demo_mode is recomputed on every call.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.statusReport())
}

// Capabilities lists the names of enabled capabilities.
func (h *Handlers) Capabilities(w http.ResponseWriter, r *http.Request) {
	report := h.statusReport()
	respondJSON(w, http.StatusOK, report.EnabledCapabilities())
}

func (h *Handlers) statusReport() *models.StatusReport {
	live := h.Credentials.Configured()

	message := "Connected to completion provider"
	if !live {
		message = "Running in demo mode: no completion API key configured"
	}

	return &models.StatusReport{
		Available: true,
		Version:   h.ServiceVersion,
		Connected: live,
		DemoMode:  !live,
		Message:   message,
		Capabilities: []models.Capability{
			{Name: models.CapabilityChat, Enabled: true, Description: "Chat with Alberto the code puppy"},
			{Name: models.CapabilityReasoning, Enabled: live, Description: "Return provider reasoning when include_reasoning is set"},
			{Name: models.CapabilityAutoExecute, Enabled: false, Description: "Command execution is not available through the bridge"},
		},
	}
}

// Agents lists the personas the bridge can answer as.
func (h *Handlers) Agents(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.AgentList{Agents: []string{AgentAlberto}})
}

// ── Chat ─────────────────────────────────────────────────────

// Chat answers one chat message, forwarding it to the completion provider
// when a credential resolves.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	elapsed := func() float64 { return time.Since(start).Seconds() }
	logger := requestLogger(r)

	req, err := decodeChatRequest(r)
	if err != nil {
		logger.Debug().Err(err).Msg("Rejecting malformed chat body")
		h.observeChat(metrics.OutcomeBadRequest)
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if !req.HasMessage() {
		message = FallbackPrompt
	}
	if req.AutoExecute {
		logger.Info().Msg("auto_execute requested; the bridge never executes commands")
	}

	cred, ok := h.Credentials.Resolve(r)
	if !ok {
		h.observeChat(metrics.OutcomeDemo)
		respondJSON(w, http.StatusOK, models.ChatResponse{
			Success:       true,
			Response:      DemoResponse,
			ExecutionTime: elapsed(),
		})
		return
	}

	upstreamStart := time.Now()
	result, err := h.Completer.Complete(r.Context(), completion.Request{
		Token:            cred.Token,
		System:           systemPrompt(req.Context),
		Message:          message,
		IncludeReasoning: req.IncludeReasoning,
	})
	if h.Metrics != nil {
		h.Metrics.ObserveUpstream(time.Since(upstreamStart))
	}

	if err != nil {
		h.handleUpstreamError(w, logger, err, cred.Source, elapsed)
		return
	}

	h.observeChat(metrics.OutcomeAnswered)
	logger.Info().
		Str("credential", cred.Source).
		Str("model", result.Model).
		Int("tokens", result.Usage.TotalTokens).
		Msg("Chat answered")

	respondJSON(w, http.StatusOK, models.ChatResponse{
		Success:       true,
		Response:      result.Content,
		Reasoning:     result.Reasoning,
		ExecutionTime: elapsed(),
	})
}

// handleUpstreamError applies the failure policy uniformly to every kind of
// upstream failure. Empty content is always a soft answer.
func (h *Handlers) handleUpstreamError(w http.ResponseWriter, logger *zerolog.Logger, err error, source string, elapsed func() float64) {
	if errors.Is(err, completion.ErrNoContent) {
		logger.Warn().Err(err).Str("credential", source).Msg("Completion returned no content")
		h.observeChat(metrics.OutcomeNoContent)
		respondJSON(w, http.StatusOK, models.ChatResponse{
			Success:       true,
			Response:      NoContentResponse,
			ExecutionTime: elapsed(),
		})
		return
	}

	// Only a provider's own response body is relayed. Transport errors carry
	// dial targets and stay in the log.
	var (
		statusErr *completion.StatusError
		errText   = "Upstream unreachable"
		details   string
		outcome   = metrics.OutcomeUnreachable
	)
	if errors.As(err, &statusErr) {
		errText = "Upstream error"
		details = truncate(statusErr.Body, maxDetailsRunes)
		outcome = metrics.OutcomeUpstreamErr
	}

	logger.Error().Err(err).Str("credential", source).Str("policy", string(h.Policy)).Msg("Completion failed")
	h.observeChat(outcome)

	if h.Policy == config.FailureSoften {
		respondJSON(w, http.StatusOK, models.ChatResponse{
			Success:       true,
			Response:      ApologyResponse,
			ExecutionTime: elapsed(),
		})
		return
	}

	respondJSON(w, http.StatusBadGateway, models.ChatFailure(errText, details))
}

func (h *Handlers) observeChat(outcome string) {
	if h.Metrics != nil {
		h.Metrics.ObserveChat(outcome)
	}
}

// decodeChatRequest accepts exactly one JSON object.
func decodeChatRequest(r *http.Request) (*models.ChatRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, errors.New("body is not a JSON object")
	}

	var req models.ChatRequest
	if err := json.Unmarshal([]byte(trimmed), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ── Fallbacks ────────────────────────────────────────────────

// NotFound answers unknown routes and methods.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "Not found")
}

// ── Helpers ──────────────────────────────────────────────────

// requestLogger returns the logger the middleware attached to r, or the
// global logger when the handler runs outside the router.
func requestLogger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorPayload{Error: message})
}
