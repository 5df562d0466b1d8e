package ports

import (
	"context"

	"github.com/computerstore/storefront-api/internal/domains/orders/domain"
)

// EventPublisher delivers committed order events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event) error
}

// NoopEventPublisher is a safe default when no broker is configured.
var NoopEventPublisher EventPublisher = noopEventPublisher{}

type noopEventPublisher struct{}

func (noopEventPublisher) Publish(context.Context, ...domain.Event) error { return nil }
