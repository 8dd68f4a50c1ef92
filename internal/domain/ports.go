package domain

import "context"

// CompletionProvider is the local AI collaborator. It accepts a system
// prompt plus the user's message and returns completion text or an error.
type CompletionProvider interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Notifier delivers terminal system messages to whatever transport pushes
// them to clients. Delivery is best-effort; the message is already persisted
// by the time a notification goes out.
type Notifier interface {
	MessageCreated(ctx context.Context, message *Message) error
	MessageUpdated(ctx context.Context, message *Message) error
}
