package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Neruaka/jana-distribution/internal/queue"
)

// MailQueue is the durable queue carrying outbound notification messages.
const MailQueue = "mail.outbound"

// mailPublisher is what the auth and order services need from the mail
// pipeline.  Tests plug a recording fake; production uses *Mailer.
type mailPublisher interface {
	PublishMail(ctx context.Context, msg queue.MailMessage) error
}

// Mailer publishes notification messages to RabbitMQ.  The connection is
// opened lazily and re-opened after failures, so a broker outage at boot
// does not take the API down.  A nil *Mailer is a no-op: callers can
// wire it only when AMQP_URL is configured.
type Mailer struct {
	URL string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewMailer(url string) *Mailer {
	if url == "" {
		return nil
	}
	return &Mailer{URL: url}
}

// channel returns a live channel with the mail queue declared, dialing
// the broker if needed.  Caller must hold mu.
func (m *Mailer) channel() (*amqp.Channel, error) {
	if m.ch != nil && !m.ch.IsClosed() {
		return m.ch, nil
	}
	if m.conn == nil || m.conn.IsClosed() {
		conn, err := amqp.Dial(m.URL)
		if err != nil {
			return nil, err
		}
		m.conn = conn
	}
	ch, err := m.conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(MailQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, err
	}
	m.ch = ch
	return ch, nil
}

// PublishMail enqueues one message as persistent JSON.  Errors are
// returned for the caller to log; delivery is best effort and never
// blocks the business transaction that triggered it.
func (m *Mailer) PublishMail(ctx context.Context, msg queue.MailMessage) error {
	if m == nil {
		return nil
	}
	if msg.QueuedAt == "" {
		msg.QueuedAt = time.Now().UTC().Format(time.RFC3339)
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	ch, err := m.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", MailQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		// Drop the channel so the next publish redials.
		_ = m.ch.Close()
		m.ch = nil
	}
	return err
}

// Close shuts the AMQP connection down.
func (m *Mailer) Close() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ch != nil {
		_ = m.ch.Close()
	}
	if m.conn != nil {
		_ = m.conn.Close()
	}
}

// fireMail publishes without failing the caller: a broker problem is
// logged and swallowed.
func fireMail(ctx context.Context, pub mailPublisher, msg queue.MailMessage) {
	if pub == nil {
		return
	}
	if err := pub.PublishMail(ctx, msg); err != nil {
		log.Printf("WARN: mail publish failed (kind=%s to=%s): %v", msg.Kind, msg.To, err)
	}
}
