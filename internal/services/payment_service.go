package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/log"
	"rentledger/internal/store"
)

// PaymentNotifier announces payment writes to other processes.
type PaymentNotifier interface {
	NotifyPayment(ctx context.Context, p core.RentPayment, kind amqp.PaymentEventKind) error
}

// Invalidator drops cached ledger views after a write.
type Invalidator interface {
	InvalidateTenant(tenantID int64)
	InvalidateAllTenants()
	InvalidateTotals()
}

// Charges are the amounts a tenant fills in when submitting a payment. The
// base rent always comes from the tenant record.
type Charges struct {
	Electricity  core.Money
	LateFine     core.Money
	ExtraAmount  core.Money
	MeterReading float64
	Remark       string
}

// PaymentService orchestrates rent payment writes across the store, the
// event broker and cached ledger views.
type PaymentService struct {
	store       store.Store
	notifier    PaymentNotifier
	invalidator Invalidator
	logger      *log.StructuredLogger
	now         func() time.Time
}

// NewPaymentService wires the service. notifier and invalidator may be nil.
func NewPaymentService(st store.Store, notifier PaymentNotifier, invalidator Invalidator) *PaymentService {
	return &PaymentService{
		store:       st,
		notifier:    notifier,
		invalidator: invalidator,
		logger:      log.NewStructuredLogger(log.Default().WithComponent(log.ComponentPayment)),
		now:         time.Now,
	}
}

func (s *PaymentService) today() core.Date {
	y, m, d := s.now().Date()
	return core.NewDate(y, int(m), d)
}

// SubmitPayment records a tenant's own payment. It is Pending until an admin
// approves it, covers the month after the tenant's newest payment of any
// status, and charges the tenant's agreed rent.
func (s *PaymentService) SubmitPayment(ctx context.Context, tenantID int64, c Charges) (core.RentPayment, error) {
	tenant, err := s.store.GetTenant(ctx, tenantID)
	if err != nil {
		return core.RentPayment{}, fmt.Errorf("load tenant: %w", err)
	}
	history, err := s.store.ListPaymentsByTenant(ctx, tenantID)
	if err != nil {
		return core.RentPayment{}, fmt.Errorf("load payment history: %w", err)
	}

	month := core.NextSubmissionMonth(history, core.MonthLabelFor(s.now()))
	p := core.RentPayment{
		TenantID:     tenant.ID,
		Amount:       tenant.FinalRent,
		Electricity:  c.Electricity,
		LateFine:     c.LateFine,
		ExtraAmount:  c.ExtraAmount,
		MeterReading: c.MeterReading,
		Remark:       c.Remark,
		PaymentDate:  s.today(),
		Month:        month.String(),
		Status:       core.StatusPending,
	}
	return s.create(ctx, p)
}

// RecordPayment stores a payment entered by an admin. Status defaults to
// Approved and the payment date to today.
func (s *PaymentService) RecordPayment(ctx context.Context, p core.RentPayment) (core.RentPayment, error) {
	if p.Status == "" {
		p.Status = core.StatusApproved
	}
	if p.PaymentDate.IsEmpty() {
		p.PaymentDate = s.today()
	}
	if _, err := s.store.GetTenant(ctx, p.TenantID); err != nil {
		return core.RentPayment{}, fmt.Errorf("load tenant: %w", err)
	}
	return s.create(ctx, p)
}

func (s *PaymentService) create(ctx context.Context, p core.RentPayment) (core.RentPayment, error) {
	p.ID = 0
	if err := p.Validate(); err != nil {
		return core.RentPayment{}, invalid(err)
	}
	saved, err := s.store.CreatePayment(ctx, p)
	if err != nil {
		return core.RentPayment{}, fmt.Errorf("save payment: %w", err)
	}
	kind := amqp.PaymentCreated
	if saved.IsApproved() {
		kind = amqp.PaymentApproved
	}
	s.after(ctx, log.OpCreate, saved, kind)
	return saved, nil
}

// UpdatePayment replaces an existing payment. The owning tenant cannot change.
func (s *PaymentService) UpdatePayment(ctx context.Context, p core.RentPayment) (core.RentPayment, error) {
	current, err := s.store.GetPayment(ctx, p.ID)
	if err != nil {
		return core.RentPayment{}, fmt.Errorf("load payment: %w", err)
	}
	p.TenantID = current.TenantID
	if p.Status == "" {
		p.Status = current.Status
	}
	if p.PaymentDate.IsEmpty() {
		p.PaymentDate = current.PaymentDate
	}
	if err := p.Validate(); err != nil {
		return core.RentPayment{}, invalid(err)
	}

	saved, err := s.store.UpdatePayment(ctx, p)
	if err != nil {
		return core.RentPayment{}, fmt.Errorf("update payment: %w", err)
	}
	kind := amqp.PaymentUpdated
	if saved.IsApproved() && !current.IsApproved() {
		kind = amqp.PaymentApproved
	}
	s.after(ctx, log.OpUpdate, saved, kind)
	return saved, nil
}

// ApprovePayment marks a Pending payment Approved. Approving an approved
// payment is a no-op.
func (s *PaymentService) ApprovePayment(ctx context.Context, id int64) (core.RentPayment, error) {
	p, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return core.RentPayment{}, fmt.Errorf("load payment: %w", err)
	}
	if p.IsApproved() {
		return p, nil
	}
	p.Status = core.StatusApproved
	if p.PaymentDate.IsEmpty() {
		p.PaymentDate = s.today()
	}

	saved, err := s.store.UpdatePayment(ctx, p)
	if err != nil {
		return core.RentPayment{}, fmt.Errorf("approve payment: %w", err)
	}
	s.after(ctx, log.OpApprove, saved, amqp.PaymentApproved)
	return saved, nil
}

// GetPayment loads one payment with its tenant, for receipts.
func (s *PaymentService) GetPayment(ctx context.Context, id int64) (core.RentPayment, core.Tenant, error) {
	p, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return core.RentPayment{}, core.Tenant{}, fmt.Errorf("load payment: %w", err)
	}
	t, err := s.store.GetTenant(ctx, p.TenantID)
	if err != nil {
		return core.RentPayment{}, core.Tenant{}, fmt.Errorf("load tenant: %w", err)
	}
	return p, t, nil
}

// Receipt builds the printable receipt for a payment. A missing asset leaves
// the asset name blank.
func (s *PaymentService) Receipt(ctx context.Context, id int64) (core.Receipt, core.Tenant, error) {
	p, t, err := s.GetPayment(ctx, id)
	if err != nil {
		return core.Receipt{}, core.Tenant{}, err
	}
	var asset *core.Asset
	a, err := s.store.GetAsset(ctx, t.AssetID)
	switch {
	case err == nil:
		asset = &a
	case !errors.Is(err, store.ErrNotFound):
		return core.Receipt{}, core.Tenant{}, fmt.Errorf("load asset: %w", err)
	}
	return core.NewReceipt(p, t, asset), t, nil
}

func (s *PaymentService) after(ctx context.Context, op string, p core.RentPayment, kind amqp.PaymentEventKind) {
	s.logger.LogPaymentRecorded(ctx, op, p)
	if s.invalidator != nil {
		s.invalidator.InvalidateTenant(p.TenantID)
		s.invalidator.InvalidateTotals()
	}
	s.notify(ctx, p, kind)
}

// notify publishes the event. The payment is already stored, so failures are
// logged and never surface to the caller.
func (s *PaymentService) notify(ctx context.Context, p core.RentPayment, kind amqp.PaymentEventKind) {
	if s.notifier == nil {
		slog.DebugContext(ctx, "AMQP not configured, skipping payment event", "payment_id", p.ID, "kind", kind)
		return
	}
	if err := s.notifier.NotifyPayment(ctx, p, kind); err != nil {
		slog.ErrorContext(ctx, "Failed to publish payment event",
			"component", log.ComponentPayment,
			"payment_id", p.ID,
			"kind", kind,
			"error", err)
	}
}
