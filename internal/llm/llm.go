// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides chat completion against the Gemini API and helpers
// for pulling structured JSON out of model output.
package llm

import "context"

// Message roles understood by Complete.
const (
	RoleSystem = "system"
	RoleHuman  = "human"
)

// Message is a single turn of a completion request.
type Message struct {
	Role    string
	Content string
}

// Completer produces one text completion for an ordered message list.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// System is shorthand for a system-role message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// Human is shorthand for a human-role message.
func Human(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}
