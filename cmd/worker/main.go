package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/DamasoSilva/Platzgo-sub000/internal/config"
	dbpkg "github.com/DamasoSilva/Platzgo-sub000/internal/db"
	"github.com/DamasoSilva/Platzgo-sub000/internal/kafka"
	"github.com/DamasoSilva/Platzgo-sub000/internal/logging"
	"github.com/DamasoSilva/Platzgo-sub000/internal/mailqueue"
)

// worker publica o outbox de e-mails no Kafka.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, log.WithField("component", "kafka"))
	defer producer.Close()

	relay := mailqueue.NewRelay(
		mailqueue.NewQueue(db),
		producer,
		mailqueue.RelayConfig{
			Topic:       cfg.EmailTopic,
			Interval:    cfg.OutboxPollInterval,
			MaxAttempts: cfg.OutboxMaxAttempts,
		},
		log.WithField("component", "email-relay"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()
	log.WithField("topic", cfg.EmailTopic).Info("email relay started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	cancel()
	<-done
	log.Info("worker stopped")
}
