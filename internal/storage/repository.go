package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rentledger/internal/core"
	"rentledger/internal/log"
	"rentledger/internal/store"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer keeps sqlite from returning SQLITE_BUSY under load
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable, for readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func wrapNotFound(err error, kind string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", kind, id, store.ErrNotFound)
	}
	return fmt.Errorf("get %s %v: %w", kind, id, err)
}

func parseDate(s string) core.Date {
	if s == "" {
		return core.Date{}
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Tenants

const tenantColumns = `id, user_id, name, contact, gender, address, final_rent, deposit,
	lease_start, lease_end, asset_id, aadhaar_verified, created_at`

func scanTenant(row rowScanner) (core.Tenant, error) {
	var (
		t                               core.Tenant
		finalRent, deposit              int64
		leaseStart, leaseEnd, createdAt string
		verified                        int
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Contact, &t.Gender, &t.Address,
		&finalRent, &deposit, &leaseStart, &leaseEnd, &t.AssetID, &verified, &createdAt)
	if err != nil {
		return core.Tenant{}, err
	}
	t.FinalRent = core.Money{Paise: finalRent}
	t.Deposit = core.Money{Paise: deposit}
	t.LeaseStart = parseDate(leaseStart)
	t.LeaseEnd = parseDate(leaseEnd)
	t.AadhaarVerified = verified != 0
	t.CreatedAt = parseTime(createdAt)
	return t, nil
}

// OnboardTenant implements store.TenantStore in a single transaction.
func (r *SQLiteRepository) OnboardTenant(ctx context.Context, t core.Tenant, coTenants []core.CoTenant) (core.Tenant, []core.CoTenant, error) {
	if err := t.Validate(); err != nil {
		return core.Tenant{}, nil, err
	}
	for _, c := range coTenants {
		if err := c.ValidateDetails(); err != nil {
			return core.Tenant{}, nil, err
		}
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Tenant{}, nil, fmt.Errorf("begin onboarding: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE assets SET status = ? WHERE id = ?`, string(core.AssetNotAvailable), t.AssetID)
	if err != nil {
		return core.Tenant{}, nil, fmt.Errorf("mark asset unavailable: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Tenant{}, nil, fmt.Errorf("asset %d: %w", t.AssetID, store.ErrNotFound)
	}

	res, err = tx.ExecContext(ctx, `INSERT INTO tenants (user_id, name, contact, gender, address,
		final_rent, deposit, lease_start, lease_end, asset_id, aadhaar_verified, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Name, t.Contact, t.Gender, t.Address, t.FinalRent.Paise, t.Deposit.Paise,
		t.LeaseStart.ISO(), t.LeaseEnd.ISO(), t.AssetID, boolToInt(t.AadhaarVerified), formatTime(t.CreatedAt))
	if err != nil {
		return core.Tenant{}, nil, fmt.Errorf("insert tenant: %w", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return core.Tenant{}, nil, fmt.Errorf("tenant id: %w", err)
	}

	out := make([]core.CoTenant, 0, len(coTenants))
	for _, c := range coTenants {
		c.TenantID = t.ID
		c.Verified = false
		res, err := tx.ExecContext(ctx, `INSERT INTO co_tenants (tenant_id, name, relation_type, contact, gender, verified)
			VALUES (?, ?, ?, ?, ?, 0)`, c.TenantID, c.Name, c.RelationType, c.Contact, c.Gender)
		if err != nil {
			return core.Tenant{}, nil, fmt.Errorf("insert co-tenant: %w", err)
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return core.Tenant{}, nil, fmt.Errorf("co-tenant id: %w", err)
		}
		out = append(out, c)
	}

	if err := tx.Commit(); err != nil {
		return core.Tenant{}, nil, fmt.Errorf("commit onboarding: %w", err)
	}

	slog.InfoContext(ctx, "Tenant onboarded",
		log.FieldComponent, log.ComponentStorage,
		"tenant_id", t.ID,
		"asset_id", t.AssetID,
		"co_tenants", len(out))
	return t, out, nil
}

func (r *SQLiteRepository) GetTenant(ctx context.Context, id int64) (core.Tenant, error) {
	t, err := scanTenant(r.db.QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id))
	if err != nil {
		return core.Tenant{}, wrapNotFound(err, "tenant", id)
	}
	return t, nil
}

func (r *SQLiteRepository) GetTenantByUserID(ctx context.Context, userID string) (core.Tenant, error) {
	if userID == "" {
		return core.Tenant{}, fmt.Errorf("tenant for empty user: %w", store.ErrNotFound)
	}
	t, err := scanTenant(r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE user_id = ? ORDER BY id LIMIT 1`, userID))
	if err != nil {
		return core.Tenant{}, wrapNotFound(err, "tenant for user", userID)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTenants(ctx context.Context) ([]core.Tenant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var out []core.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Co-tenants

func scanCoTenant(row rowScanner) (core.CoTenant, error) {
	var (
		c        core.CoTenant
		verified int
	)
	if err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.RelationType, &c.Contact, &c.Gender, &verified); err != nil {
		return core.CoTenant{}, err
	}
	c.Verified = verified != 0
	return c, nil
}

func (r *SQLiteRepository) AddCoTenant(ctx context.Context, c core.CoTenant) (core.CoTenant, error) {
	if err := c.Validate(); err != nil {
		return core.CoTenant{}, err
	}
	if _, err := r.GetTenant(ctx, c.TenantID); err != nil {
		return core.CoTenant{}, err
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO co_tenants (tenant_id, name, relation_type, contact, gender, verified)
		VALUES (?, ?, ?, ?, ?, 0)`, c.TenantID, c.Name, c.RelationType, c.Contact, c.Gender)
	if err != nil {
		return core.CoTenant{}, fmt.Errorf("insert co-tenant: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return core.CoTenant{}, fmt.Errorf("co-tenant id: %w", err)
	}
	c.Verified = false
	return c, nil
}

func (r *SQLiteRepository) ListCoTenants(ctx context.Context, tenantID int64) ([]core.CoTenant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, tenant_id, name, relation_type, contact, gender, verified
		FROM co_tenants WHERE tenant_id = ? ORDER BY id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list co-tenants: %w", err)
	}
	defer rows.Close()

	var out []core.CoTenant
	for rows.Next() {
		c, err := scanCoTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan co-tenant: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) VerifyCoTenant(ctx context.Context, id int64) (core.CoTenant, error) {
	c, err := scanCoTenant(r.db.QueryRowContext(ctx, `UPDATE co_tenants SET verified = 1 WHERE id = ?
		RETURNING id, tenant_id, name, relation_type, contact, gender, verified`, id))
	if err != nil {
		return core.CoTenant{}, wrapNotFound(err, "co-tenant", id)
	}
	return c, nil
}

// Assets

const assetColumns = `id, name, description, default_rent, status, meter_reading, reading_updated`

func scanAsset(row rowScanner) (core.Asset, error) {
	var (
		a          core.Asset
		rent       int64
		status     string
		readingUpd string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Description, &rent, &status, &a.MeterReading, &readingUpd); err != nil {
		return core.Asset{}, err
	}
	a.DefaultRent = core.Money{Paise: rent}
	a.Status = core.AssetStatus(status)
	a.ReadingUpdated = parseTime(readingUpd)
	return a, nil
}

func (r *SQLiteRepository) CreateAsset(ctx context.Context, a core.Asset) (core.Asset, error) {
	if a.Status == "" {
		a.Status = core.AssetAvailable
	}
	if err := a.Validate(); err != nil {
		return core.Asset{}, err
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO assets (name, description, default_rent, status, meter_reading, reading_updated)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.Name, a.Description, a.DefaultRent.Paise, string(a.Status), a.MeterReading, formatTime(a.ReadingUpdated))
	if err != nil {
		return core.Asset{}, fmt.Errorf("insert asset: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return core.Asset{}, fmt.Errorf("asset id: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) GetAsset(ctx context.Context, id int64) (core.Asset, error) {
	a, err := scanAsset(r.db.QueryRowContext(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = ?`, id))
	if err != nil {
		return core.Asset{}, wrapNotFound(err, "asset", id)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAssets(ctx context.Context) ([]core.Asset, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var out []core.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateMeterReading(ctx context.Context, id int64, reading float64, at time.Time) (core.Asset, error) {
	if reading < 0 {
		return core.Asset{}, core.ErrNegativeReading
	}
	a, err := scanAsset(r.db.QueryRowContext(ctx, `UPDATE assets SET meter_reading = ?, reading_updated = ?
		WHERE id = ? RETURNING `+assetColumns, reading, formatTime(at), id))
	if err != nil {
		return core.Asset{}, wrapNotFound(err, "asset", id)
	}
	slog.InfoContext(ctx, "Meter reading updated", "asset_id", id, "reading", reading)
	return a, nil
}

// Payments

const paymentColumns = `id, tenant_id, amount, electricity, late_fine, extra_amount,
	meter_reading, remark, payment_date, month, status`

func scanPayment(row rowScanner) (core.RentPayment, error) {
	var (
		p                                core.RentPayment
		amount, electricity, fine, extra int64
		paymentDate, status              string
	)
	err := row.Scan(&p.ID, &p.TenantID, &amount, &electricity, &fine, &extra,
		&p.MeterReading, &p.Remark, &paymentDate, &p.Month, &status)
	if err != nil {
		return core.RentPayment{}, err
	}
	p.Amount = core.Money{Paise: amount}
	p.Electricity = core.Money{Paise: electricity}
	p.LateFine = core.Money{Paise: fine}
	p.ExtraAmount = core.Money{Paise: extra}
	p.PaymentDate = parseDate(paymentDate)
	p.Status = core.PaymentStatus(status)
	return p, nil
}

func (r *SQLiteRepository) CreatePayment(ctx context.Context, p core.RentPayment) (core.RentPayment, error) {
	if err := p.Validate(); err != nil {
		return core.RentPayment{}, err
	}
	if _, err := r.GetTenant(ctx, p.TenantID); err != nil {
		return core.RentPayment{}, err
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO rent_payments (tenant_id, amount, electricity, late_fine,
		extra_amount, meter_reading, remark, payment_date, month, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.TenantID, p.Amount.Paise, p.Electricity.Paise, p.LateFine.Paise, p.ExtraAmount.Paise,
		p.MeterReading, p.Remark, p.PaymentDate.ISO(), p.Month, string(p.Status))
	if err != nil {
		return core.RentPayment{}, fmt.Errorf("insert payment: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return core.RentPayment{}, fmt.Errorf("payment id: %w", err)
	}

	slog.InfoContext(ctx, "Payment saved to SQLite",
		"id", p.ID,
		"tenant_id", p.TenantID,
		"month", p.Month,
		"status", p.Status,
		"amount_paise", p.Amount.Paise)
	return p, nil
}

func (r *SQLiteRepository) GetPayment(ctx context.Context, id int64) (core.RentPayment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM rent_payments WHERE id = ?`, id))
	if err != nil {
		return core.RentPayment{}, wrapNotFound(err, "payment", id)
	}
	return p, nil
}

func (r *SQLiteRepository) UpdatePayment(ctx context.Context, p core.RentPayment) (core.RentPayment, error) {
	if err := p.Validate(); err != nil {
		return core.RentPayment{}, err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE rent_payments SET amount = ?, electricity = ?, late_fine = ?,
		extra_amount = ?, meter_reading = ?, remark = ?, payment_date = ?, month = ?, status = ?
		WHERE id = ?`,
		p.Amount.Paise, p.Electricity.Paise, p.LateFine.Paise, p.ExtraAmount.Paise,
		p.MeterReading, p.Remark, p.PaymentDate.ISO(), p.Month, string(p.Status), p.ID)
	if err != nil {
		return core.RentPayment{}, fmt.Errorf("update payment %d: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.RentPayment{}, fmt.Errorf("payment %d: %w", p.ID, store.ErrNotFound)
	}
	return r.GetPayment(ctx, p.ID)
}

func (r *SQLiteRepository) queryPayments(ctx context.Context, query string, args ...any) ([]core.RentPayment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.RentPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListPaymentsByTenant returns payments in insertion order.
func (r *SQLiteRepository) ListPaymentsByTenant(ctx context.Context, tenantID int64) ([]core.RentPayment, error) {
	out, err := r.queryPayments(ctx, `SELECT `+paymentColumns+` FROM rent_payments WHERE tenant_id = ? ORDER BY id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list payments for tenant %d: %w", tenantID, err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListPaymentsByYear(ctx context.Context, year int) ([]core.RentPayment, error) {
	from := fmt.Sprintf("%04d-01-01", year)
	to := fmt.Sprintf("%04d-01-01", year+1)
	out, err := r.queryPayments(ctx, `SELECT `+paymentColumns+` FROM rent_payments
		WHERE payment_date >= ? AND payment_date < ? ORDER BY id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list payments for %d: %w", year, err)
	}
	return out, nil
}

// Reminders

func (r *SQLiteRepository) LastReminded(ctx context.Context, tenantID int64) (string, error) {
	var month string
	err := r.db.QueryRowContext(ctx, `SELECT month FROM rent_reminders WHERE tenant_id = ?`, tenantID).Scan(&month)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last reminder for tenant %d: %w", tenantID, err)
	}
	return month, nil
}

func (r *SQLiteRepository) MarkReminded(ctx context.Context, tenantID int64, month string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO rent_reminders (tenant_id, month, reminded_at) VALUES (?, ?, ?)
		ON CONFLICT(tenant_id) DO UPDATE SET month = excluded.month, reminded_at = excluded.reminded_at`,
		tenantID, month, formatTime(at))
	if err != nil {
		return fmt.Errorf("mark reminder for tenant %d: %w", tenantID, err)
	}
	return nil
}
