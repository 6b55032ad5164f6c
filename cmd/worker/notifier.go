package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/billing"
	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/dispatcher"
	"github.com/promptdeck/promptdeck/internal/kafka"
	"github.com/promptdeck/promptdeck/internal/logger"
	"github.com/promptdeck/promptdeck/internal/metrics"
	"github.com/promptdeck/promptdeck/internal/worker"
)

var notifierCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Run membership-change notifier",
	RunE:  runNotifier,
}

func runNotifier(cmd *cobra.Command, args []string) error {
	// 1) load config
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Log.Level)
	metrics.MustRegister(prometheus.DefaultRegisterer)

	// 2) sinks → dispatcher
	var sinks []dispatcher.Sink
	for _, sc := range cfg.Notifier.Sinks {
		if !sc.Enabled || strings.TrimSpace(sc.BaseURL) == "" {
			continue
		}
		sinks = append(sinks,
			dispatcher.NewHTTPSink(
				sc.Name,
				strings.TrimRight(sc.BaseURL, "/"),
				sc.Path,
				sc.TimeoutMs,
				sc.Breaker.FailThreshold,
				sc.Breaker.OpenForMs,
			),
		)
	}
	if len(sinks) == 0 {
		return fmt.Errorf("no sinks enabled in config")
	}
	disp := dispatcher.NewDispatcher(sinks, cfg.Notifier.MaxAttempts)

	// 3) kafka consumer
	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = "promptdeck-notifier"
	}

	consumer := kafka.NewConsumerFromConfig(kafka.Config{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          billing.MembershipChangedTopic,
		GroupID:        groupID,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
	})
	defer consumer.Close()

	w := worker.NewNotifier(consumer, disp, logger.L())

	// 4) graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf(">> notifier started topic=%s group=%s sinks=%d",
		billing.MembershipChangedTopic, groupID, len(sinks))

	return w.Run(ctx)
}
