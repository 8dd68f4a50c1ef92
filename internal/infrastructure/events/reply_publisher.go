package events

import (
	"context"
	"encoding/json"

	"github.com/kendevco/discordant/internal/domain"
	"github.com/kendevco/discordant/internal/infrastructure/messaging"
)

// ReplyPublisher pushes system-message lifecycle events onto the broker so
// downstream delivery (SSE/WebSocket fan-out to chat clients) can pick them
// up. It satisfies domain.Notifier.
type ReplyPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewReplyPublisher(rabbitmq *messaging.RabbitMQ) *ReplyPublisher {
	return &ReplyPublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *ReplyPublisher) MessageCreated(ctx context.Context, message *domain.Message) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, messaging.KeyMessageCreated, body)
}

func (p *ReplyPublisher) MessageUpdated(ctx context.Context, message *domain.Message) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, messaging.KeyMessageUpdated, body)
}
