package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MailConsumer drains the outbound mail queue.  Real SMTP delivery sits
// behind Deliver; the default writes rendered notifications to a log
// file, which is enough for development and keeps the queue moving.
type MailConsumer struct {
	URL       string
	QueueName string
	LogPath   string

	// Deliver handles one message.  A non-nil error nacks the message
	// without requeue (poison messages must not loop forever).
	Deliver func(msg MailMessage) error
}

// NewMailConsumer builds a consumer writing deliveries to logPath.
func NewMailConsumer(url, queueName, logPath string) *MailConsumer {
	c := &MailConsumer{URL: url, QueueName: queueName, LogPath: logPath}
	c.Deliver = c.writeToLog
	return c
}

// Start consumes until ctx is cancelled, redialing with a capped backoff
// whenever the broker connection drops.  Intended to run as a goroutine
// next to the HTTP server.
func (c *MailConsumer) Start(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		err := c.consumeOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Printf("WARN: mail consumer: %v (retrying in %s)", err, backoff)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// consumeOnce holds one connection for as long as it stays healthy.
func (c *MailConsumer) consumeOnce(ctx context.Context) error {
	conn, err := amqp.Dial(c.URL)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	// One unacked message at a time keeps delivery ordered per consumer.
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}
	deliveries, err := ch.Consume(c.QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	log.Printf("mail consumer connected, queue=%s", c.QueueName)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handle(d)
		}
	}
}

func (c *MailConsumer) handle(d amqp.Delivery) {
	var msg MailMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		log.Printf("WARN: mail consumer: dropping malformed message: %v", err)
		_ = d.Nack(false, false)
		return
	}
	if err := c.Deliver(msg); err != nil {
		log.Printf("WARN: mail consumer: delivery failed (kind=%s to=%s): %v", msg.Kind, msg.To, err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

// writeToLog appends one rendered notification line per message.
func (c *MailConsumer) writeToLog(msg MailMessage) error {
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(c.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%s kind=%s to=%s %s\n",
		time.Now().UTC().Format(time.RFC3339), msg.Kind, msg.To, renderSubject(msg))
	return err
}

// renderSubject builds the one-line subject for each message kind.
func renderSubject(msg MailMessage) string {
	switch msg.Kind {
	case MailOrderPlaced:
		return fmt.Sprintf("Confirmation de commande %s (%.2f €)", msg.OrderNumber, msg.TotalTTC)
	case MailOrderStatus:
		return fmt.Sprintf("Commande %s: statut %s", msg.OrderNumber, msg.Status)
	case MailPasswordReset:
		return "Réinitialisation de votre mot de passe"
	}
	return "Notification"
}
