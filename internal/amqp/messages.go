package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformed marks a message body that can never be processed.
var ErrMalformed = errors.New("malformed message")

// PaymentEventKind says what happened to a payment.
type PaymentEventKind string

const (
	PaymentCreated  PaymentEventKind = "created"
	PaymentUpdated  PaymentEventKind = "updated"
	PaymentApproved PaymentEventKind = "approved"
)

// PaymentEvent is a lightweight notification: the worker loads the payment
// itself so a stale event never overwrites newer data.
type PaymentEvent struct {
	PaymentID int64            `json:"payment_id"`
	TenantID  int64            `json:"tenant_id"`
	Kind      PaymentEventKind `json:"kind"`
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
}

func NewPaymentEvent(paymentID, tenantID int64, kind PaymentEventKind, status string) *PaymentEvent {
	return &PaymentEvent{
		PaymentID: paymentID,
		TenantID:  tenantID,
		Kind:      kind,
		Status:    status,
		Timestamp: time.Now(),
	}
}

func (m *PaymentEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PaymentEventFromJSON(data []byte) (*PaymentEvent, error) {
	var msg PaymentEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if msg.PaymentID <= 0 {
		return nil, fmt.Errorf("%w: missing payment_id", ErrMalformed)
	}
	return &msg, nil
}

// RentReminder asks the notification side to remind a tenant that rent for
// DueMonth is due.
type RentReminder struct {
	TenantID   int64     `json:"tenant_id"`
	TenantName string    `json:"tenant_name"`
	Contact    string    `json:"contact"`
	DueMonth   string    `json:"due_month"`
	AmountDue  int64     `json:"amount_due_paise"`
	Timestamp  time.Time `json:"timestamp"`
}

func (m *RentReminder) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RentReminderFromJSON(data []byte) (*RentReminder, error) {
	var msg RentReminder
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &msg, nil
}

// PublishPaymentEvent publishes ev on the client's queue.
func (c *Client) PublishPaymentEvent(ctx context.Context, ev *PaymentEvent) error {
	body, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal payment event: %w", err)
	}
	return c.publish(ctx, body, "payment."+string(ev.Kind))
}

// PublishRentReminder publishes r on the client's queue.
func (c *Client) PublishRentReminder(ctx context.Context, r *RentReminder) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	body, err := r.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal rent reminder: %w", err)
	}
	return c.publish(ctx, body, "rent.reminder")
}

// ConsumePaymentEvents blocks, handing each event to handler until ctx is
// cancelled. Handler errors requeue the event.
func (c *Client) ConsumePaymentEvents(ctx context.Context, handler func(context.Context, *PaymentEvent) error) error {
	return c.consume(ctx, func(body []byte) error {
		ev, err := PaymentEventFromJSON(body)
		if err != nil {
			return err
		}
		return handler(ctx, ev)
	})
}
