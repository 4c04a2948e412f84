package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ledgerline/payment-engine/internal/config"
	"github.com/ledgerline/payment-engine/internal/engine"
	"github.com/ledgerline/payment-engine/internal/kafka/consumer"
	"github.com/ledgerline/payment-engine/internal/kafka/producer"
	"github.com/ledgerline/payment-engine/internal/metrics"
	"github.com/ledgerline/payment-engine/internal/outbox"
	eventrepo "github.com/ledgerline/payment-engine/internal/repo/event"
	paymentrepo "github.com/ledgerline/payment-engine/internal/repo/payment"
	"github.com/ledgerline/payment-engine/internal/service"
	"github.com/ledgerline/payment-engine/internal/webhook"
	"github.com/ledgerline/payment-engine/pkg/db/postgres"
	"github.com/sirupsen/logrus"
)

// ChargeRequest is the collaborator-facing trigger message: an upstream system
// asks the engine to process an already-created payment.
type ChargeRequest struct {
	Reference string `json:"reference"`
	OwnerID   string `json:"owner_id"`
}

func init() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using environment variables")
	}
}

func main() {
	cfg := config.Load()

	dbCfg := postgres.NewPostgresConfig("payments")
	db, err := postgres.NewDBConn(dbCfg)
	if err != nil {
		logrus.Fatalf("unable to connect to db: %v", err)
	}
	defer db.Close()

	eventRepo := eventrepo.NewEventRepo(db)
	store := paymentrepo.NewPaymentRepo(db, eventRepo)

	notifier := webhook.NewNotifier(cfg.WebhookTimeout)
	eng := engine.New(cfg.Engine, store, notifier)
	svc := service.NewPaymentService(store, eng)

	metrics.StartMetricsServer(cfg.MetricsAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !cfg.Kafka.Enabled {
		logrus.Info("kafka disabled, nothing to consume")
		<-ctx.Done()
		return
	}

	kp, err := producer.NewKafkaProducer(cfg.Kafka.BootstrapServers, cfg.Kafka.EventsTopic)
	if err != nil {
		logrus.Fatalf("unable to create producer: %v", err)
	}
	defer kp.Close()

	relay := outbox.NewRelay(eventRepo, kp, cfg.OutboxInterval)
	go relay.Run()
	defer relay.Stop()

	handler := func(ctx context.Context, body []byte) error {
		var req ChargeRequest
		if err := json.Unmarshal(body, &req); err != nil {
			// Poison message, never redeliverable.
			logrus.Warnf("invalid charge request: %v", err)
			return nil
		}
		p, err := svc.Process(ctx, req.Reference, req.OwnerID, engine.TriggerAuto)
		if err != nil {
			logrus.WithField("REF", req.Reference).Warnf("charge request rejected: %v", err)
			return nil
		}
		logrus.WithFields(logrus.Fields{
			"REF":    p.Reference,
			"STATUS": p.Status,
		}).Info("CHARGE:HANDLED")
		return nil
	}

	kc, err := consumer.NewKafkaConsumer(cfg.Kafka.BootstrapServers, cfg.Kafka.ConsumerGroup, cfg.Kafka.RequestsTopic, handler)
	if err != nil {
		logrus.Fatalf("unable to create consumer: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"TOPIC":   cfg.Kafka.RequestsTopic,
		"METRICS": cfg.MetricsAddr,
	}).Info("payment-server running")

	if err := kc.Run(ctx); err != nil && err != context.Canceled {
		logrus.Fatalf("consumer stopped: %v", err)
	}
}
