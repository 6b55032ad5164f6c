package billing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/model"
	"github.com/promptdeck/promptdeck/internal/repository"
)

// CacheInvalidator drops a user's cached membership after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// Reconciler keeps customer rows in sync with Stripe. Both entry points
// follow the same shape: fetch authoritative state, map it to a tier, upsert
// the customer record. The two paths are keyed differently on purpose:
// checkout completion is the only event carrying the internal user id, so it
// is the sole creation point for the user->customer link; everything after
// that can only address the row by Stripe's customer id.
type Reconciler struct {
	customers repository.CustomersRepository
	fetcher   SubscriptionFetcher
	changes   ChangePublisher  // optional
	cache     CacheInvalidator // optional
	log       *zap.Logger
}

func NewReconciler(
	customers repository.CustomersRepository,
	fetcher SubscriptionFetcher,
	changes ChangePublisher,
	cache CacheInvalidator,
	log *zap.Logger,
) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		customers: customers,
		fetcher:   fetcher,
		changes:   changes,
		cache:     cache,
		log:       log,
	}
}

// OnSubscriptionChange handles customer.subscription.updated/deleted.
// Returns linked=false when no customer row matches the Stripe customer id;
// that is a logged anomaly, not an error. The event is still acknowledged,
// otherwise Stripe would redeliver forever for customers that were never
// linked (e.g. deletion arriving before checkout ever created the row).
func (r *Reconciler) OnSubscriptionChange(ctx context.Context, subscriptionID, stripeCustomerID string) (linked bool, err error) {
	if subscriptionID == "" || stripeCustomerID == "" {
		return false, fmt.Errorf("%w: subscription change missing identifiers", ErrMalformedEvent)
	}

	snap, err := r.fetcher.FetchSubscription(ctx, subscriptionID)
	if err != nil {
		return false, err
	}
	membership := MembershipFromSubscriptionStatus(snap.Status)

	cust, err := r.customers.UpdateByStripeCustomerID(ctx, stripeCustomerID, model.CustomerPatch{
		Membership:           membership,
		StripeSubscriptionID: snap.ID,
	})
	if err != nil {
		return false, fmt.Errorf("update customer by stripe id: %w", err)
	}
	if cust == nil {
		r.log.Warn("no customer row for stripe customer id",
			zap.String("stripe_customer_id", stripeCustomerID),
			zap.String("subscription_id", subscriptionID))
		return false, nil
	}

	r.afterWrite(ctx, cust.UserID, model.MembershipChange{
		UserID:         cust.UserID,
		Membership:     membership,
		SubscriptionID: snap.ID,
	})
	return true, nil
}

// OnCheckoutCompleted handles checkout.session.completed for subscription
// checkouts. Upsert keyed by the internal user id: update in place when the
// row exists (re-subscribe, new Stripe customer), create it otherwise.
// Missing identifiers here are a hard error: unlike an unlinked customer,
// a checkout without its ids is never normal, and a 5xx makes Stripe retry.
func (r *Reconciler) OnCheckoutCompleted(ctx context.Context, userID, stripeCustomerID, subscriptionID string) error {
	if userID == "" || stripeCustomerID == "" || subscriptionID == "" {
		return fmt.Errorf("%w: checkout session missing identifiers", ErrMalformedEvent)
	}

	snap, err := r.fetcher.FetchSubscription(ctx, subscriptionID)
	if err != nil {
		return err
	}
	membership := MembershipFromSubscriptionStatus(snap.Status)

	existing, err := r.customers.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get customer by user id: %w", err)
	}

	change := model.MembershipChange{
		UserID:         userID,
		Membership:     membership,
		SubscriptionID: snap.ID,
	}

	if existing != nil {
		change.PrevMembership = existing.Membership
		updated, err := r.customers.UpdateByUserID(ctx, userID, model.CustomerPatch{
			Membership:           membership,
			StripeCustomerID:     stripeCustomerID,
			StripeSubscriptionID: snap.ID,
		})
		if err != nil {
			return fmt.Errorf("update customer by user id: %w", err)
		}
		if updated == nil {
			// Rows are never deleted, so a vanished row is a storage problem.
			return fmt.Errorf("customer row disappeared during checkout upsert: user %s", userID)
		}
	} else {
		custID := stripeCustomerID
		subID := snap.ID
		if err := r.customers.Create(ctx, model.Customer{
			UserID:               userID,
			Membership:           membership,
			StripeCustomerID:     &custID,
			StripeSubscriptionID: &subID,
		}); err != nil {
			return fmt.Errorf("create customer: %w", err)
		}
	}

	r.afterWrite(ctx, userID, change)
	return nil
}

// afterWrite publishes the change and drops the cached membership.
// Best effort: the customer row is already durable, and the outbox relay as
// well as cache TTL expiry cover a missed publish.
func (r *Reconciler) afterWrite(ctx context.Context, userID string, change model.MembershipChange) {
	if r.changes != nil {
		if err := r.changes.Publish(ctx, change); err != nil {
			r.log.Warn("publish membership change failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
	if r.cache != nil {
		r.cache.Invalidate(ctx, userID)
	}
}
