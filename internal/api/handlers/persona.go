package handlers

import (
	"sort"
	"strings"
)

// Canned texts. Every soft answer stays in character so the chat surface
// never shows a broken bubble.
const (
	// FallbackPrompt replaces an empty or missing chat message.
	FallbackPrompt = "Hi Alberto! Please introduce yourself."

	// DemoResponse is returned when no provider credential resolves.
	DemoResponse = "🐕 Woof! Alberto is running in demo mode: no completion API key is configured, " +
		"so this is a canned answer. Set SYN_API_KEY or OPEN_API_KEY (or send an Authorization: Bearer header) " +
		"and I'll fetch real answers!"

	// NoContentResponse is returned when the provider answered without content.
	NoContentResponse = "🐕 Woof... I fetched an empty stick. The model returned no content, try asking again!"

	// ApologyResponse is returned for upstream failures under the soften policy.
	ApologyResponse = "🐕 Ruff day! I couldn't reach my brain just now. Please try again in a moment. 🐾"

	healthMessage = "Alberto bridge is running"

	// AgentAlberto is the only persona the bridge serves.
	AgentAlberto = "alberto"
)

const personaInstruction = "You are Alberto, a friendly and slightly sassy code puppy. " +
	"You help people with programming questions, explain concepts clearly, keep answers concise, " +
	"and sprinkle in the occasional dog pun or 🐾 emoji. You cannot run commands or touch files; " +
	"when asked to, explain what the user could run themselves."

// systemPrompt returns the persona instruction, followed by the caller's
// context entries in key order.
func systemPrompt(context map[string]string) string {
	if len(context) == 0 {
		return personaInstruction
	}

	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(personaInstruction)
	b.WriteString("\n\nContext provided by the caller:")
	for _, k := range keys {
		b.WriteString("\n- ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(context[k])
	}
	return b.String()
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
