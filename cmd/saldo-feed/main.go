// Command saldo-feed tails the transaction change feed. It consumes the
// events the interactive client publishes after each committed write and
// logs them, one line per change.
package main

import (
	"os"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/cli"
	applog "saldo/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to tail the change feed")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func() {
		if err := client.Close(); err != nil {
			logger.Error("AMQP close failed", "error", err)
		}
	})

	feedLogger := logger.WithComponent(applog.ComponentAMQP)
	err = client.ConsumeTransactionEvents(ctx, func(msg *amqp.TransactionEventMessage) error {
		desc := ""
		if msg.Description != nil {
			desc = *msg.Description
		}
		feedLogger.Info("Transaction event",
			applog.FieldOperation, msg.Action,
			applog.FieldTransactionID, msg.ID,
			applog.FieldUserID, msg.UserID,
			applog.FieldTxDate, msg.Date,
			applog.FieldAmountCents, msg.AmountCents,
			applog.FieldTxType, msg.Type,
			"description", desc)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		logger.Error("Consuming change feed failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
