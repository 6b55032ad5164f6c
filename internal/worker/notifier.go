package worker

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/dispatcher"
	"github.com/promptdeck/promptdeck/internal/kafka"
	"github.com/promptdeck/promptdeck/internal/metrics"
	"github.com/promptdeck/promptdeck/internal/model"
)

// Notifier consumes membership-change events from Kafka and fans them out
// to the configured notification sinks.
type Notifier struct {
	consumer *kafka.Consumer
	disp     *dispatcher.Dispatcher
	log      *zap.Logger
}

func NewNotifier(consumer *kafka.Consumer, disp *dispatcher.Dispatcher, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}

	return &Notifier{consumer: consumer, disp: disp, log: log}
}

// Run blocks until ctx is cancelled. Messages that fail to decode are
// committed and dropped; delivery failures are committed too, the audit
// trail lives in the metrics and logs.
func (n *Notifier) Run(ctx context.Context) error {
	for {
		msg, err := n.consumer.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}

			return err
		}

		n.handle(ctx, msg)

		if err := n.consumer.Commit(ctx, msg); err != nil {
			n.log.Warn("commit failed", zap.Error(err))
		}
	}
}

func (n *Notifier) handle(ctx context.Context, msg kafka.Message) {
	var change model.MembershipChange
	if err := json.Unmarshal(msg.Value, &change); err != nil {
		n.log.Warn("undecodable membership change",
			zap.Int64("offset", msg.Offset),
			zap.Error(err))

		return
	}

	if change.UserID == "" {
		n.log.Warn("membership change without user id", zap.Int64("offset", msg.Offset))

		return
	}

	sink, err := n.disp.Notify(ctx, msg.Value)
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(orUnknown(sink), "failed").Inc()
		n.log.Warn("notification delivery failed",
			zap.String("user_id", change.UserID),
			zap.String("membership", string(change.Membership)),
			zap.Error(err))

		return
	}

	metrics.NotificationsTotal.WithLabelValues(sink, "delivered").Inc()
	n.log.Info("notification delivered",
		zap.String("sink", sink),
		zap.String("user_id", change.UserID),
		zap.String("membership", string(change.Membership)))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}
