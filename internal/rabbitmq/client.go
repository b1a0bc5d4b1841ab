package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/UserDirectory/internal/config"
	"github.com/GoArmGo/UserDirectory/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

// channel — часть amqp.Channel, которой пользуется клиент
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Client представляет собой клиент RabbitMQ
type Client struct {
	conn      *amqp.Connection
	channel   channel
	queueName string
	logger    *slog.Logger
}

// NewClient подключается к RabbitMQ и объявляет очередь событий
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	logger.Info("connected to RabbitMQ")

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Идемпотентно: очередь создаётся, только если её ещё нет
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}
	logger.Info("queue declared", "queue", q.Name, "messages", q.Messages)

	return &Client{conn: conn, channel: ch, queueName: q.Name, logger: logger}, nil
}

// Close закрывает канал и соединение RabbitMQ
func (c *Client) Close() error {
	var firstErr error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error("error closing RabbitMQ channel", "error", err)
			firstErr = err
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("error closing RabbitMQ connection", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// PublishUserEvent публикует событие в очередь.
// Реализует ports.UserEventPublisher.
func (c *Client) PublishUserEvent(ctx context.Context, event payloads.UserEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal user event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",          // exchange
		c.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Type:         event.Type,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish user event: %w", err)
	}
	c.logger.Debug("user event published", "queue", c.queueName, "type", event.Type, "user_id", event.UserID)
	return nil
}

// StartConsumingUserEvents начинает потребление событий из очереди.
// Реализует ports.UserEventConsumer.
func (c *Client) StartConsumingUserEvents(ctx context.Context, handler func(context.Context, payloads.UserEvent) error) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack: подтверждаем вручную
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered, waiting for messages", "queue", c.queueName)

	go c.consume(ctx, msgs, handler)
	return nil
}

func (c *Client) consume(ctx context.Context, msgs <-chan amqp.Delivery, handler func(context.Context, payloads.UserEvent) error) {
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Info("RabbitMQ delivery channel closed, stopping consumer")
				return
			}
			c.handleDelivery(ctx, msg, handler)
		case <-ctx.Done():
			c.logger.Info("context cancelled, stopping RabbitMQ consumer")
			return
		}
	}
}

func (c *Client) handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(context.Context, payloads.UserEvent) error) {
	var event payloads.UserEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.logger.Error("error unmarshalling message", "error", err, "body", string(msg.Body))
		// битое сообщение не возвращаем в очередь, иначе зациклимся
		if err := msg.Nack(false, false); err != nil {
			c.logger.Error("error NACKing message after unmarshal failure", "error", err)
		}
		return
	}

	if err := handler(ctx, event); err != nil {
		c.logger.Error("error processing message", "error", err, "type", event.Type, "user_id", event.UserID)
		if err := msg.Nack(false, true); err != nil {
			c.logger.Error("error NACKing message after processing failure", "error", err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.Error("error ACKing message", "error", err)
	}
}
