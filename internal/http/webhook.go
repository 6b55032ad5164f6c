package http

import (
	"errors"
	"io"
	"net/http"

	echo "github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/billing"
	"github.com/promptdeck/promptdeck/internal/logger"
	"github.com/promptdeck/promptdeck/internal/metrics"
	"github.com/promptdeck/promptdeck/internal/model"
	"github.com/promptdeck/promptdeck/internal/repository"
)

const webhookBodyLimit = 1 << 20 // 1MiB

// stripeWebhookHandler is the inbound event endpoint. Signature verification
// is the authentication for this route; it is mounted outside the JWT group.
//
// Response contract: 200 {"received": true} acknowledges the event,
// including ignored types, non-subscription checkouts and unlinked-customer
// anomalies. 400 means the signature or configuration is bad (retrying
// won't help). 500 means processing failed and Stripe should redeliver.
func stripeWebhookHandler(
	verifier *billing.Verifier,
	router *billing.Router,
	audit repository.BillingEventsRepository,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		body, err := io.ReadAll(http.MaxBytesReader(c.Response(), req.Body, webhookBodyLimit))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable payload"})
		}

		event, err := verifier.Verify(body, req.Header.Get("Stripe-Signature"))
		if err != nil {
			if errors.Is(err, billing.ErrNotConfigured) {
				logger.L().Error("webhook verification misconfigured", zap.Error(err))
			} else {
				logger.L().Warn("webhook signature verification failed", zap.Error(err))
			}
			// Intentionally vague either way; no internal detail leaves here.
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "webhook verification failed"})
		}

		disp, routeErr := router.Route(req.Context(), event)

		metrics.WebhookEventsTotal.WithLabelValues(string(event.Type), disp.Outcome.String()).Inc()

		if audit != nil {
			// Best effort: the audit log never fails the request.
			if err := audit.Insert(req.Context(), model.BillingEvent{
				EventID:          event.ID,
				Type:             string(event.Type),
				UserID:           disp.UserID,
				StripeCustomerID: disp.StripeCustomerID,
				SubscriptionID:   disp.SubscriptionID,
				Outcome:          disp.Outcome,
				Detail:           disp.Detail,
			}); err != nil {
				logger.L().Warn("billing event audit insert failed",
					zap.String("event_id", event.ID), zap.Error(err))
			}
		}

		if routeErr != nil {
			logger.L().Error("webhook processing failed",
				zap.String("event_id", event.ID),
				zap.String("type", string(event.Type)),
				zap.Error(routeErr))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "webhook handler failed"})
		}

		return c.JSON(http.StatusOK, map[string]bool{"received": true})
	}
}
