// Package transport holds the chat-delivery types shared by the notifier,
// the Telegram log sink and the Telegram adapter.
package transport

import "context"

// ChatTarget addresses a chat. Either ChatID or Username ("@channel") is set.
type ChatTarget struct {
	ChatID   int64
	Username string
	ThreadID int // forum topic, 0 for none
}

func (t ChatTarget) IsZero() bool { return t.ChatID == 0 && t.Username == "" }

// MessageRef identifies the first message a send produced.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

type SendOptions struct {
	DisablePreview bool
}

// Sender delivers plain text to a chat.
type Sender interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}
