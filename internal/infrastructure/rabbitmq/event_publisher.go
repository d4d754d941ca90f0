package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/oksasatya/go-profile-service/internal/domain/event"
)

// JSONPublisher is satisfied by *helpers.RabbitQueue.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// EventPublisher puts account events on a queue as JSON.
type EventPublisher struct {
	pub     JSONPublisher
	timeout time.Duration
}

func NewEventPublisher(pub JSONPublisher) *EventPublisher {
	return &EventPublisher{pub: pub, timeout: 5 * time.Second}
}

func (p *EventPublisher) Publish(ctx context.Context, ev event.AccountEvent) error {
	c, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.pub.PublishJSON(c, ev); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}
