// Package models defines the JSON wire contract shared by the Pup bridge
// and its client library.
//
// Field names are snake_case on the wire. Every type here is a value object
// that lives for exactly one HTTP exchange.
package models

import "strings"

// ── Chat ─────────────────────────────────────────────────────

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Message          string            `json:"message"`
	IncludeReasoning bool              `json:"include_reasoning,omitempty"`
	AutoExecute      bool              `json:"auto_execute,omitempty"`
	Context          map[string]string `json:"context,omitempty"`
}

// HasMessage reports whether the request carries a non-blank message.
func (r *ChatRequest) HasMessage() bool {
	return strings.TrimSpace(r.Message) != ""
}

// ChatResponse is the success body of POST /api/v1/chat.
//
// ExecutionTime is measured by the bridge in seconds, from receipt of the
// request until the response is ready.
type ChatResponse struct {
	Success       bool    `json:"success"`
	Response      string  `json:"response"`
	Reasoning     string  `json:"reasoning,omitempty"`
	ExecutionTime float64 `json:"execution_time"`
}

// ── Status ───────────────────────────────────────────────────

// Capability describes one feature the bridge advertises.
type Capability struct {
	Name        string `json:"name"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
}

// Well-known capability names.
const (
	CapabilityChat        = "chat"
	CapabilityReasoning   = "reasoning"
	CapabilityAutoExecute = "auto_execute"
)

// StatusReport is the body of GET /api/v1/status.
type StatusReport struct {
	Available    bool         `json:"available"`
	Version      string       `json:"version"`
	Connected    bool         `json:"connected"`
	DemoMode     bool         `json:"demo_mode"`
	Message      string       `json:"message,omitempty"`
	Capabilities []Capability `json:"capabilities"`
}

// EnabledCapabilities returns the names of enabled capabilities, in order.
func (s *StatusReport) EnabledCapabilities() []string {
	names := make([]string, 0, len(s.Capabilities))
	for _, c := range s.Capabilities {
		if c.Enabled {
			names = append(names, c.Name)
		}
	}
	return names
}

// AgentList is the body of GET /api/v1/agents.
type AgentList struct {
	Agents []string `json:"agents"`
}

// ── Health & errors ──────────────────────────────────────────

// HealthResponse is the body of GET /health and GET /.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorPayload is the failure body returned by the bridge.
//
// Either of Error or Message may be present, absent, or both. Success is
// only set on chat failures, where it is always false.
type ErrorPayload struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// Description returns the most specific human-readable text in the payload:
// Error first, then Message. Empty when neither is set.
func (p *ErrorPayload) Description() string {
	if s := strings.TrimSpace(p.Error); s != "" {
		return s
	}
	return strings.TrimSpace(p.Message)
}

// ChatFailure builds the {success:false, error, details} shape.
func ChatFailure(errText, details string) *ErrorPayload {
	f := false
	return &ErrorPayload{Success: &f, Error: errText, Details: details}
}
