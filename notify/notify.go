// Package notify hands finalized scorecards to the mail relay through
// a RabbitMQ queue.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("notifier not configured")

// Attachment is a file carried by a message.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
}

// Message is one outgoing mail.
type Message struct {
	From        string       `json:"from"`
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Validate checks the envelope.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return errors.New("message has no recipients")
	}
	for _, to := range m.To {
		if !strings.Contains(to, "@") {
			return fmt.Errorf("invalid recipient %q", to)
		}
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("message has no subject")
	}
	return nil
}

// Notifier dispatches messages.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Disabled is used when no broker is configured.
type Disabled struct{}

func (Disabled) Notify(context.Context, Message) error { return ErrNotConfigured }

// Publisher writes messages as persistent JSON to a durable queue. Each
// call opens its own connection.
type Publisher struct {
	url    string
	queue  string
	logger *zap.Logger
	now    func() time.Time
}

// NewPublisher returns Disabled for an empty url.
func NewPublisher(url, queue string, logger *zap.Logger) Notifier {
	if strings.TrimSpace(url) == "" {
		return Disabled{}
	}
	return &Publisher{url: url, queue: queue, logger: logger, now: time.Now}
}

func (p *Publisher) Notify(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn("rabbitmq dial failed", zap.Error(err))
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("rabbitmq channel open failed", zap.Error(err))
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.logger.Warn("rabbitmq queue declare failed", zap.String("queue", p.queue), zap.Error(err))
		return fmt.Errorf("declare queue: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.logger.Warn("rabbitmq publish failed", zap.String("queue", p.queue), zap.Error(err))
		return fmt.Errorf("publish: %w", err)
	}
	p.logger.Debug("message queued", zap.String("queue", p.queue), zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
