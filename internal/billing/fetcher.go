package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v83"
)

// Snapshot is the authoritative subscription state fetched from Stripe at
// reconciliation time.
type Snapshot struct {
	ID     string
	Status string
}

// SubscriptionFetcher retrieves current subscription details from Stripe.
type SubscriptionFetcher interface {
	FetchSubscription(ctx context.Context, subscriptionID string) (Snapshot, error)
}

// StripeFetcher implements SubscriptionFetcher on the Stripe API client.
type StripeFetcher struct {
	client *stripe.Client
}

func NewStripeFetcher(apiKey string) *StripeFetcher {
	return &StripeFetcher{client: stripe.NewClient(apiKey)}
}

var _ SubscriptionFetcher = (*StripeFetcher)(nil)

func (f *StripeFetcher) FetchSubscription(ctx context.Context, subscriptionID string) (Snapshot, error) {
	sub, err := f.client.V1Subscriptions.Retrieve(ctx, subscriptionID, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return Snapshot{ID: sub.ID, Status: string(sub.Status)}, nil
}
