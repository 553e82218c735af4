package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"weatheralert/internal/metrics"
	"weatheralert/internal/models"

	"github.com/go-redis/redis/v8"
)

// RunEvent describes one notifier run: what was fetched and what, if anything, was sent.
type RunEvent struct {
	Location  string                 `json:"location"`
	Latitude  float64                `json:"latitude"`
	Longitude float64                `json:"longitude"`
	Units     string                 `json:"units"`
	RunAt     time.Time              `json:"run_at"`
	Readings  []models.HourlyReading `json:"readings"`
	Alert     models.AggregateAlert  `json:"alert"`
	Message   string                 `json:"message,omitempty"`
}

// Publisher appends run events to a Redis stream.
type Publisher struct {
	client redis.Cmdable
	stream string
}

func NewPublisher(client redis.Cmdable, stream string) *Publisher {
	return &Publisher{client: client, stream: stream}
}

// Publish serializes the event into the stream entry's "data" field
func (p *Publisher) Publish(ctx context.Context, event RunEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize run event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	metrics.RecordEventPublished(err)
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}

	log.Printf("Published run event for %s to %s", event.Location, p.stream)
	return nil
}

// Decode extracts a RunEvent from a stream entry's values.
func Decode(values map[string]interface{}) (RunEvent, error) {
	var event RunEvent

	raw, ok := values["data"].(string)
	if !ok {
		return event, fmt.Errorf("stream entry has no data field")
	}
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal run event: %w", err)
	}
	return event, nil
}

// Handler processes one decoded event. Returning an error leaves the entry unacknowledged.
type Handler func(ctx context.Context, event RunEvent) error

// Consumer reads run events through a consumer group.
type Consumer struct {
	client   redis.Cmdable
	stream   string
	group    string
	consumer string

	retryDelay time.Duration
}

// DefaultRetryDelay is the pause after a failed stream read.
const DefaultRetryDelay = 2 * time.Second

func NewConsumer(client redis.Cmdable, stream, group, consumer string) *Consumer {
	return &Consumer{client: client, stream: stream, group: group, consumer: consumer, retryDelay: DefaultRetryDelay}
}

// EnsureGroup creates the consumer group (and the stream) if needed.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s: %w", c.group, err)
	}
	return nil
}

// Run reads until ctx is canceled. Malformed entries are acknowledged and skipped.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: c.consumer,
			Streams:  []string{c.stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if ctx.Err() != nil {
			return nil
		}

		if err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("Error reading from Redis: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}

		for _, s := range streams {
			for _, m := range s.Messages {
				if ctx.Err() != nil {
					return nil
				}
				c.process(ctx, m, handle)
			}
		}
	}
}

func (c *Consumer) process(ctx context.Context, m redis.XMessage, handle Handler) {
	event, err := Decode(m.Values)
	if err != nil {
		log.Printf("Dropping entry %s: %v", m.ID, err)
		c.client.XAck(ctx, c.stream, c.group, m.ID)
		return
	}

	if err := handle(ctx, event); err != nil {
		log.Printf("Failed to handle entry %s for %s: %v", m.ID, event.Location, err)
		return
	}

	c.client.XAck(ctx, c.stream, c.group, m.ID)
}
