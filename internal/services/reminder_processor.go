package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rentledger/internal/amqp"
	"rentledger/internal/core"
	"rentledger/internal/log"
	"rentledger/internal/store"
)

// ReminderPublisher delivers a rent reminder to whatever notifies the tenant.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, r *amqp.RentReminder) error
}

// ReminderProcessor periodically reminds tenants whose rent is due. Each
// tenant is reminded at most once per due month.
type ReminderProcessor struct {
	store     store.Store
	publisher ReminderPublisher
	policy    ReminderPolicy
	interval  time.Duration
	logger    *log.Logger
	now       func() time.Time

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	stopOnce *sync.Once
	doneCh   chan struct{}
}

func NewReminderProcessor(st store.Store, publisher ReminderPublisher, policy ReminderPolicy, interval time.Duration) *ReminderProcessor {
	if policy == nil {
		policy = OnDuePolicy{}
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReminderProcessor{
		store:     st,
		publisher: publisher,
		policy:    policy,
		interval:  interval,
		logger:    log.Default().WithComponent(log.ComponentReminder),
		now:       time.Now,
	}
}

// DueMonth is the first month a tenant has not paid for. Tenants without
// approved payments owe from their lease start, or from onboarding.
func DueMonth(t core.Tenant, s core.Summary) (core.MonthLabel, error) {
	if s.MonthLabelErr != nil {
		return core.MonthLabel{}, s.MonthLabelErr
	}
	if s.NextDueMonth != nil {
		return *s.NextDueMonth, nil
	}
	if !t.LeaseStart.IsEmpty() {
		return core.MonthLabelFor(t.LeaseStart.Time), nil
	}
	if !t.CreatedAt.IsZero() {
		return core.MonthLabelFor(t.CreatedAt), nil
	}
	return core.MonthLabel{}, errors.New("tenant has no lease start")
}

// ProcessDueReminders sends every reminder due at now and returns how many
// were published. A failing tenant is logged and skipped.
func (p *ReminderProcessor) ProcessDueReminders(ctx context.Context, now time.Time) (int, error) {
	tenants, err := p.store.ListTenants(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tenants: %w", err)
	}

	sent := 0
	for _, t := range tenants {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		ok, err := p.remind(ctx, t, now)
		if err != nil {
			p.logger.WarnContext(ctx, "Skipping rent reminder",
				log.FieldTenantID, t.ID,
				log.FieldError, err)
			continue
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

func (p *ReminderProcessor) remind(ctx context.Context, t core.Tenant, now time.Time) (bool, error) {
	payments, err := p.store.ListPaymentsByTenant(ctx, t.ID)
	if err != nil {
		return false, fmt.Errorf("list payments: %w", err)
	}
	due, err := DueMonth(t, core.ComputeTenantSummary(payments))
	if err != nil {
		return false, err
	}
	if !p.policy.IsDue(due, now) {
		return false, nil
	}

	last, err := p.store.LastReminded(ctx, t.ID)
	if err != nil {
		return false, fmt.Errorf("read reminder log: %w", err)
	}
	if last == due.String() {
		return false, nil
	}

	r := &amqp.RentReminder{
		TenantID:   t.ID,
		TenantName: t.Name,
		Contact:    t.Contact,
		DueMonth:   due.String(),
		AmountDue:  t.FinalRent.Paise,
		Timestamp:  now.UTC(),
	}
	if err := p.publisher.PublishReminder(ctx, r); err != nil {
		return false, fmt.Errorf("publish reminder: %w", err)
	}
	if err := p.store.MarkReminded(ctx, t.ID, due.String(), now); err != nil {
		return false, fmt.Errorf("record reminder: %w", err)
	}

	p.logger.InfoContext(ctx, "Rent reminder sent",
		log.FieldOperation, log.OpRemind,
		log.FieldTenantID, t.ID,
		log.FieldMonth, due.String())
	return true, nil
}

// Start runs ProcessDueReminders immediately and then every interval.
func (p *ReminderProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("reminder processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.stopOnce = &sync.Once{}
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Reminder processor started", "interval", p.interval)
	return nil
}

// Stop signals the loop and waits for the current pass to finish. After a
// timeout the processor still counts as running and Stop may be called again.
func (p *ReminderProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, once, doneCh := p.stopCh, p.stopOnce, p.doneCh
	p.mu.Unlock()

	once.Do(func() { close(stopCh) })

	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "Reminder processor stopped")
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Reminder processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *ReminderProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ReminderProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *ReminderProcessor) tick(ctx context.Context) {
	n, err := p.ProcessDueReminders(ctx, p.now())
	if err != nil {
		p.logger.ErrorContext(ctx, "Reminder pass failed", log.FieldError, err)
		return
	}
	if n > 0 {
		p.logger.InfoContext(ctx, "Reminder pass complete", "sent", n)
	}
}
