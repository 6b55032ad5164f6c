package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/promptdeck/promptdeck/internal/model"
	"github.com/promptdeck/promptdeck/internal/repository"
)

// MembershipChangedTopic is the Kafka topic the outbox relay publishes to.
const MembershipChangedTopic = "membership.changed"

// ChangePublisher records membership changes for downstream consumers.
// Delivery is at-least-once; consumers must tolerate duplicates, same as we
// tolerate Stripe redelivery.
type ChangePublisher interface {
	Publish(ctx context.Context, change model.MembershipChange) error
}

// OutboxPublisher writes membership changes into the transactional outbox.
type OutboxPublisher struct {
	outbox repository.OutboxRepository
}

func NewOutboxPublisher(outbox repository.OutboxRepository) *OutboxPublisher {
	return &OutboxPublisher{outbox: outbox}
}

var _ ChangePublisher = (*OutboxPublisher)(nil)

func (p *OutboxPublisher) Publish(ctx context.Context, change model.MembershipChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal membership change: %w", err)
	}
	return p.outbox.Insert(ctx, nil, "customer", change.UserID, MembershipChangedTopic, payload)
}
