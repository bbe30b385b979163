package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
)

const entityEventsQueue = "entity_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// EntityEvent is the message published whenever an entity is created,
// updated or deleted. Consumers can use it to invalidate caches, rebuild
// search indexes and so on.
type EntityEvent struct {
	ID         string    `json:"id"`
	Entity     string    `json:"entity"` // "product", "recipe" or "user"
	Action     string    `json:"action"` // "created", "updated" or "deleted"
	EntityID   uint      `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewClient creates a new RabbitMQ client. It connects to RabbitMQ, opens a
// channel and declares the entity events queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		entityEventsQueue, // name
		true,              // durable (persists messages across broker restarts)
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s queue: %w", entityEventsQueue, err)
	}

	log.Printf("RabbitMQ client connected and %s queue declared.", entityEventsQueue)

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// Publish sends a message body to the entity events queue.
func (c *Client) Publish(body []byte) error {
	return c.channel.Publish(
		"",                // default exchange
		entityEventsQueue, // routing key is the queue name
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}

// PublishEntityEvent builds and publishes an EntityEvent for the given
// entity and action.
func (c *Client) PublishEntityEvent(entity, action string, entityID uint) error {
	event := EntityEvent{
		ID:         uuid.New().String(),
		Entity:     entity,
		Action:     action,
		EntityID:   entityID,
		OccurredAt: time.Now(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal entity event: %w", err)
	}
	if err := c.Publish(body); err != nil {
		return fmt.Errorf("failed to publish entity event: %w", err)
	}
	return nil
}

// ConsumeEntityEvents starts consuming entity events, invoking handler for
// each delivery. Deliveries are acked when the handler returns nil and
// requeued otherwise. Blocks until the channel is closed.
func (c *Client) ConsumeEntityEvents(handler func(msg amqp.Delivery) error) error {
	msgs, err := c.channel.Consume(
		entityEventsQueue, // queue
		"",                // consumer tag
		false,             // auto-ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for msg := range msgs {
		if err := handler(msg); err != nil {
			log.Printf("Failed to handle entity event (tag %d): %v", msg.DeliveryTag, err)
			if nackErr := msg.Nack(false, true); nackErr != nil {
				log.Printf("Failed to nack message: %v", nackErr)
			}
			continue
		}
		if ackErr := msg.Ack(false); ackErr != nil {
			log.Printf("Failed to ack message: %v", ackErr)
		}
	}
	return nil
}
