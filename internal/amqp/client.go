package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/MrJamesThe3rd/fintrack/internal/alert"
)

const publishTimeout = 5 * time.Second

// publisher is the part of *amqp091.Channel the client uses.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Client publishes budget alerts to a topic exchange. Routing keys are
// "budget.near-budget" and "budget.over-budget".
type Client struct {
	conn         *amqp091.Connection
	channel      publisher
	exchangeName string
	now          func() time.Time
}

func NewClient(url, exchangeName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()

		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Client{conn: conn, channel: channel, exchangeName: exchangeName, now: time.Now}, nil
}

// Notify publishes one persistent message per alert. It implements alert.Notifier.
func (c *Client) Notify(ctx context.Context, alerts []alert.Alert) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	raisedAt := c.now().UTC()

	for _, a := range alerts {
		body, err := newBudgetAlertMessage(a, raisedAt).toJSON()
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}

		key := routingKey(a.Severity)

		err = c.channel.PublishWithContext(
			ctx,
			c.exchangeName, // exchange
			key,            // routing key
			false,          // mandatory
			false,          // immediate
			amqp091.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp091.Persistent,
				Timestamp:    raisedAt,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish budget alert: %w", err)
		}

		slog.InfoContext(ctx, "Published budget alert",
			"budget_id", a.BudgetID,
			"severity", a.Severity,
			"exchange", c.exchangeName,
			"routing_key", key)
	}

	return nil
}

func routingKey(s alert.Severity) string {
	return "budget." + string(s)
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}

	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}
