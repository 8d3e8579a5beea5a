// Package adapters connects services to the message broker.
package adapters

import (
	"context"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/log"
	"rentledger/internal/services"
)

// PaymentEventPublisher is the part of amqp.Client used for payment events.
type PaymentEventPublisher interface {
	PublishPaymentEvent(ctx context.Context, ev *amqp.PaymentEvent) error
}

// RentReminderPublisher is the part of amqp.Client used for reminders.
type RentReminderPublisher interface {
	PublishRentReminder(ctx context.Context, r *amqp.RentReminder) error
}

// PaymentNotifier turns payment writes into broker events.
type PaymentNotifier struct {
	publisher PaymentEventPublisher
}

var _ services.PaymentNotifier = (*PaymentNotifier)(nil)

func NewPaymentNotifier(publisher PaymentEventPublisher) *PaymentNotifier {
	return &PaymentNotifier{publisher: publisher}
}

func (n *PaymentNotifier) NotifyPayment(ctx context.Context, p core.RentPayment, kind amqp.PaymentEventKind) error {
	return n.publisher.PublishPaymentEvent(ctx, amqp.NewPaymentEvent(p.ID, p.TenantID, kind, string(p.Status)))
}

// ReminderPublisher forwards rent reminders to the reminder queue.
type ReminderPublisher struct {
	publisher RentReminderPublisher
}

var _ services.ReminderPublisher = (*ReminderPublisher)(nil)

func NewReminderPublisher(publisher RentReminderPublisher) *ReminderPublisher {
	return &ReminderPublisher{publisher: publisher}
}

func (p *ReminderPublisher) PublishReminder(ctx context.Context, r *amqp.RentReminder) error {
	return p.publisher.PublishRentReminder(ctx, r)
}

// LogReminderPublisher only logs reminders, for setups without a broker.
type LogReminderPublisher struct {
	logger *log.Logger
}

func NewLogReminderPublisher(logger *log.Logger) *LogReminderPublisher {
	if logger == nil {
		logger = log.Default().WithComponent(log.ComponentReminder)
	}
	return &LogReminderPublisher{logger: logger}
}

func (p *LogReminderPublisher) PublishReminder(ctx context.Context, r *amqp.RentReminder) error {
	p.logger.InfoContext(ctx, "Rent due",
		log.FieldTenantID, r.TenantID,
		log.FieldMonth, r.DueMonth,
		log.FieldAmountPaise, r.AmountDue,
		"tenant_name", r.TenantName)
	return nil
}
