// Package queue defines message payloads exchanged over the message broker.
package queue

// Mail message kinds.
const (
	MailOrderPlaced   = "order_placed"
	MailOrderStatus   = "order_status"
	MailPasswordReset = "password_reset"
)

// MailMessage is published for every outbound notification.  The consumer
// renders it without querying the primary database, so the payload carries
// everything the template needs.  Delivery is fire-and-forget: a publish
// failure is logged by the caller and never blocks the request.
type MailMessage struct {
	Kind        string  `json:"kind"`
	To          string  `json:"to"`
	Name        string  `json:"name"`
	OrderNumber string  `json:"order_number,omitempty"`
	Status      string  `json:"status,omitempty"`
	TotalTTC    float64 `json:"total_ttc,omitempty"`
	ResetToken  string  `json:"reset_token,omitempty"`
	QueuedAt    string  `json:"queued_at"`
}
