package events

import (
	"context"

	"github.com/kendevco/discordant/internal/domain"
)

// NoopNotifier is used when no broker is configured; persisted messages are
// still served over the HTTP API, they just are not pushed.
type NoopNotifier struct{}

func (NoopNotifier) MessageCreated(context.Context, *domain.Message) error { return nil }
func (NoopNotifier) MessageUpdated(context.Context, *domain.Message) error { return nil }
