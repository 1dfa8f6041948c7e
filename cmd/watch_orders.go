package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zylpheon/TheZylpheonAdmin/services"
)

var watchOrdersCmd = &cobra.Command{
	Use:   "watch-orders",
	Short: "Follow the order event topic and log a running tally",
	Long: `watch-orders joins the configured consumer group on the order event topic,
logs every event and prints the running tally (orders placed, revenue, orders
per status) on exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		tally := services.NewOrderEventTally()
		consumer, err := services.NewOrderEventConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, tally, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := consumer.Close(); err != nil {
				log.Warn("failed to close kafka consumer", zap.Error(err))
			}
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Info("consuming order events", zap.String("topic", cfg.Kafka.Topic), zap.String("group", cfg.Kafka.GroupID))
		err = consumer.Run(ctx)

		snap := tally.Snapshot()
		log.Info("order event tally",
			zap.Int("placed", snap.Placed),
			zap.String("revenue", snap.Revenue.String()),
			zap.Any("by_status", snap.ByStatus),
		)
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchOrdersCmd)
}
