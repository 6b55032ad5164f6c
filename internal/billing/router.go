package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/model"
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Disposition summarizes how a verified event was handled, for metrics and
// the audit log.
type Disposition struct {
	Outcome          model.BillingEventOutcome
	UserID           string
	StripeCustomerID string
	SubscriptionID   string
	Detail           string
}

// Router dispatches verified events by type. Exactly three types are acted
// on; everything else is acknowledged and ignored, since Stripe expects all
// delivered events to be acknowledged, not just the ones we care about.
type Router struct {
	rec *Reconciler
	log *zap.Logger
}

func NewRouter(rec *Reconciler, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{rec: rec, log: log}
}

// Route handles one verified event end to end. A non-nil error means the
// caller should answer 5xx so Stripe redelivers.
func (r *Router) Route(ctx context.Context, event stripe.Event) (Disposition, error) {
	switch string(event.Type) {
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		return r.routeSubscriptionChange(ctx, event)
	case EventCheckoutCompleted:
		return r.routeCheckoutCompleted(ctx, event)
	default:
		r.log.Debug("ignoring irrelevant stripe event", zap.String("type", string(event.Type)))
		return Disposition{Outcome: model.OutcomeIgnored, Detail: "irrelevant event type"}, nil
	}
}

func (r *Router) routeSubscriptionChange(ctx context.Context, event stripe.Event) (Disposition, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return Disposition{Outcome: model.OutcomeFailed, Detail: "undecodable subscription"},
			fmt.Errorf("%w: decode subscription: %v", ErrMalformedEvent, err)
	}

	custID := ""
	if sub.Customer != nil {
		custID = sub.Customer.ID
	}
	d := Disposition{StripeCustomerID: custID, SubscriptionID: sub.ID}

	if sub.ID == "" || custID == "" {
		d.Outcome = model.OutcomeFailed
		d.Detail = "missing subscription or customer id"
		return d, fmt.Errorf("%w: %s on %s", ErrMalformedEvent, d.Detail, event.Type)
	}

	linked, err := r.rec.OnSubscriptionChange(ctx, sub.ID, custID)
	if err != nil {
		d.Outcome = model.OutcomeFailed
		d.Detail = err.Error()
		return d, err
	}
	if !linked {
		d.Outcome = model.OutcomeAnomaly
		d.Detail = "no customer row for stripe customer id"
		return d, nil
	}
	d.Outcome = model.OutcomeProcessed
	return d, nil
}

func (r *Router) routeCheckoutCompleted(ctx context.Context, event stripe.Event) (Disposition, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return Disposition{Outcome: model.OutcomeFailed, Detail: "undecodable checkout session"},
			fmt.Errorf("%w: decode checkout session: %v", ErrMalformedEvent, err)
	}

	// Only recurring-subscription checkouts matter; one-off purchases are
	// acknowledged and dropped.
	if session.Mode != stripe.CheckoutSessionModeSubscription {
		r.log.Debug("ignoring non-subscription checkout", zap.String("session_id", session.ID))
		return Disposition{Outcome: model.OutcomeIgnored, Detail: "checkout not in subscription mode"}, nil
	}

	userID := session.ClientReferenceID
	custID := ""
	if session.Customer != nil {
		custID = session.Customer.ID
	}
	subID := ""
	if session.Subscription != nil {
		subID = session.Subscription.ID
	}

	d := Disposition{UserID: userID, StripeCustomerID: custID, SubscriptionID: subID}

	if userID == "" || custID == "" || subID == "" {
		d.Outcome = model.OutcomeFailed
		d.Detail = "missing user, customer or subscription id"
		return d, fmt.Errorf("%w: %s on checkout session %s", ErrMalformedEvent, d.Detail, session.ID)
	}

	if err := r.rec.OnCheckoutCompleted(ctx, userID, custID, subID); err != nil {
		d.Outcome = model.OutcomeFailed
		d.Detail = err.Error()
		return d, err
	}
	d.Outcome = model.OutcomeProcessed
	return d, nil
}
