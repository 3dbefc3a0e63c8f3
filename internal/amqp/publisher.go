package amqp

import (
	"context"

	"github.com/google/uuid"

	"hustleledger/internal/core"
	"hustleledger/internal/notify"
)

// Publisher is a notify.Sink that forwards every request to the broker.
type Publisher struct {
	client *Client
}

var _ notify.Sink = (*Publisher)(nil)

func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Notify(ctx context.Context, severity core.Severity) error {
	return p.client.Publish(ctx, NewHapticMessage(core.NotificationHandle(uuid.NewString()), severity))
}

func (p *Publisher) Schedule(ctx context.Context, n core.Notification) (core.NotificationHandle, error) {
	h := core.NotificationHandle(uuid.NewString())
	if err := p.client.Publish(ctx, NewNotificationMessage(h, n)); err != nil {
		return "", err
	}
	return h, nil
}

func (p *Publisher) Cancel(ctx context.Context, h core.NotificationHandle) error {
	if h == "" {
		return nil
	}
	return p.client.Publish(ctx, NewCancelMessage(h))
}
