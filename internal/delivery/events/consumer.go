package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/minhvt/product_catalog/internal/config"
	"github.com/minhvt/product_catalog/internal/pkg/logger"
)

// Invalidator clears a cache wholesale.
type Invalidator interface {
	Clear(ctx context.Context)
}

// Consumer handles consuming catalog events from NATS
type Consumer struct {
	nc     *nats.Conn
	logger *logger.Logger
	sub    *nats.Subscription
}

// NewConsumer creates a new NATS consumer
func NewConsumer(cfg *config.Config, log *logger.Logger) (*Consumer, error) {
	nc, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Infof("Connected to NATS at %s", cfg.NATS.URL)

	return &Consumer{
		nc:     nc,
		logger: log,
	}, nil
}

// Subscribe subscribes to a NATS subject and processes messages
func (c *Consumer) Subscribe(subject string, handler func(data []byte) error) error {
	sub, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		c.logger.Debugf("Received message on subject %s", msg.Subject)

		if err := handler(msg.Data); err != nil {
			c.logger.Errorf(err, "Failed to handle message on subject %s", msg.Subject)
		}
	})

	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	c.sub = sub
	c.logger.Infof("Subscribed to NATS subject: %s", subject)
	return nil
}

// Close closes the NATS connection
func (c *Consumer) Close() {
	if c.sub != nil {
		if err := c.sub.Unsubscribe(); err != nil {
			c.logger.Warnf("Failed to unsubscribe from NATS: %v", err)
		}
	}
	if c.nc != nil {
		c.nc.Close()
		c.logger.Info("NATS consumer connection closed")
	}
}

// InvalidationHandler clears the given caches on every received catalog
// mutation event, so instances observe each other's writes. Invalidation is
// wholesale; the event payload only feeds the log line.
func InvalidationHandler(log *logger.Logger, caches ...Invalidator) func(data []byte) error {
	return func(data []byte) error {
		var event struct {
			EventType string `json:"event_type"`
		}
		if err := json.Unmarshal(data, &event); err != nil {
			log.Error("Failed to unmarshal catalog event", err)
			return err
		}

		ctx := context.Background()
		for _, cache := range caches {
			cache.Clear(ctx)
		}

		log.Debugf("Caches invalidated after %s event", event.EventType)
		return nil
	}
}
