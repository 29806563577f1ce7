package main

import (
	"context"
	"log"
	"time"

	"github.com/Domenick1991/applane/internal/email"
	"github.com/Domenick1991/applane/internal/kafka"
)

type Sender interface {
	Send(ctx context.Context, event kafka.AuditEvent) error
}

// Forwarder republishes notified events; Producer implements it.
type Forwarder interface {
	PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error
}

// notifier emails passengers about audit events and, when a notifications
// topic is configured, forwards the events it notified about.
type notifier struct {
	sender         Sender
	publisher      Forwarder
	topic          string
	publishTimeout time.Duration
	retries        int
}

func (n *notifier) handle(ctx context.Context, event kafka.AuditEvent) error {
	if !email.Notifies(event.Type) {
		return nil
	}
	if err := n.sender.Send(ctx, event); err != nil {
		return err
	}
	if n.publisher == nil || n.topic == "" {
		return nil
	}

	pubCtx, cancel := context.WithTimeout(ctx, n.publishTimeout)
	defer cancel()
	if err := n.publisher.PublishWithRetry(pubCtx, n.topic, event.Key(), event, n.retries); err != nil {
		log.Printf("WARNING: failed to forward %s notification: %v", event.Type, err)
	}
	return nil
}
