package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/promptdeck/promptdeck/internal/model"
)

// BillingEventsRepository writes and lists the webhook audit log in ClickHouse.
type BillingEventsRepository interface {
	Insert(ctx context.Context, e model.BillingEvent) error
	List(ctx context.Context, eventType string, outcome model.BillingEventOutcome, limit, offset int) ([]model.BillingEvent, error)
}

type billingEventsRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewBillingEventsRepository(ch *sqlx.DB) BillingEventsRepository {
	return &billingEventsRepository{ch: ch}
}

func (r *billingEventsRepository) Insert(ctx context.Context, e model.BillingEvent) error {
	const q = `
		INSERT INTO promptdeck.billing_events
		    (event_id, type, user_id, stripe_customer_id, subscription_id, outcome, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, now())
	`
	_, err := r.ch.ExecContext(ctx, q,
		e.EventID, e.Type, e.UserID, e.StripeCustomerID, e.SubscriptionID, e.Outcome.String(), e.Detail,
	)
	return err
}

func (r *billingEventsRepository) List(ctx context.Context, eventType string, outcome model.BillingEventOutcome, limit, offset int) ([]model.BillingEvent, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT event_id, type, user_id, stripe_customer_id, subscription_id, outcome, detail, created_at
		FROM promptdeck.billing_events
		WHERE 1 = 1
	`
	args := []any{}

	if eventType != "" {
		q += " AND type = ?"
		args = append(args, eventType)
	}
	if outcome != "" {
		q += " AND outcome = ?"
		args = append(args, outcome.String())
	}

	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []model.BillingEvent
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
