// Package redis publishes schedule events on Redis pub/sub channels
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/wrale/wrale-scheduler/internal/wschedd/events"
)

// Publisher sends each event to its device's channel
type Publisher struct {
	client *redis.Client
	prefix string
}

// NewPublisher creates a publisher using channels under prefix
func NewPublisher(client *redis.Client, prefix string) *Publisher {
	return &Publisher{client: client, prefix: prefix}
}

// Channel returns the pub/sub channel for a device
func (p *Publisher) Channel(deviceID int64) string {
	return strings.ReplaceAll(events.Topic(p.prefix, deviceID), "/", ":")
}

// Publish sends event as JSON
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if err := p.client.Publish(ctx, p.Channel(event.DeviceID), payload).Err(); err != nil {
		return fmt.Errorf("publishing to redis: %w", err)
	}
	return nil
}
