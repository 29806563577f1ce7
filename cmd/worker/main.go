package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/applane/config"
	"github.com/Domenick1991/applane/internal/email"
	"github.com/Domenick1991/applane/internal/kafka"
	kafkaGo "github.com/segmentio/kafka-go"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if !cfg.Kafka.Enabled() {
		log.Fatalf("kafka brokers and audit topic must be configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var producer *kafka.Producer
	if cfg.Kafka.NotificationsTopic != "" {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()

		checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := producer.CheckConnection(checkCtx)
		cancel()
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.AuditTopic)
	defer consumer.Close()

	n := &notifier{
		sender:         email.NewSender(),
		topic:          cfg.Kafka.NotificationsTopic,
		publishTimeout: time.Duration(cfg.Worker.PublishTimeoutSeconds) * time.Second,
		retries:        cfg.Worker.PublishRetries,
	}
	if producer != nil {
		n.publisher = producer
	}

	log.Printf("worker consuming %s", cfg.Kafka.AuditTopic)
	err = consumer.ConsumeAudit(ctx, n.handle, func(msg kafkaGo.Message, err error) {
		log.Printf("decode event error at offset %d: %v", msg.Offset, err)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("consumer stopped: %v", err)
	}
	log.Printf("worker stopped")
}
