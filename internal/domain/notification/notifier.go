// Package notification defines the fire-and-forget delivery port and the
// messages the workflows send.
package notification

import "context"

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Notifier delivers best-effort. Implementations log failures and never
// report them to the caller.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// Nop drops every message.
type Nop struct{}

func (Nop) Notify(context.Context, Message) {}
