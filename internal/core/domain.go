package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusApproved PaymentStatus = "Approved"
	StatusPending  PaymentStatus = "Pending"

	AssetAvailable    AssetStatus = "Available"
	AssetNotAvailable AssetStatus = "Not Available"
)

type (
	PaymentStatus string
	AssetStatus   string

	Date struct {
		time.Time
	}

	// Money is an amount in paise (1/100 rupee).
	Money struct {
		Paise int64
	}

	Asset struct {
		ID             int64
		Name           string
		Description    string
		DefaultRent    Money
		Status         AssetStatus
		MeterReading   float64
		ReadingUpdated time.Time
	}

	Tenant struct {
		ID              int64
		UserID          string // subject of the identity provider token
		Name            string
		Contact         string
		Gender          string
		Address         string
		FinalRent       Money
		Deposit         Money
		LeaseStart      Date
		LeaseEnd        Date
		AssetID         int64
		AadhaarVerified bool
		CreatedAt       time.Time
	}

	CoTenant struct {
		ID           int64
		TenantID     int64
		Name         string
		RelationType string
		Contact      string
		Gender       string
		Verified     bool
	}

	RentPayment struct {
		ID           int64
		TenantID     int64
		Amount       Money // base rent for the period
		Electricity  Money
		LateFine     Money
		ExtraAmount  Money
		MeterReading float64 // 0 means not recorded
		Remark       string
		PaymentDate  Date
		Month        string // "<MonthName> <Year>", see ParseMonthLabel
		Status       PaymentStatus
	}
)

var (
	ErrInvalidDay      = errors.New("invalid day")
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidStatus   = errors.New("invalid payment status")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyContact    = errors.New("empty contact")
	ErrMissingTenant   = errors.New("missing tenant")
	ErrMissingAsset    = errors.New("missing asset")
	ErrNegativeReading = errors.New("negative meter reading")
	ErrLeaseOutOfOrder = errors.New("lease end must not be before lease start")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// ISO returns the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// Validate rejects negative amounts. Zero is a legitimate charge (no electricity, no fine).
func (m Money) Validate() error {
	if m.Paise < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Paise: m.Paise + o.Paise}
}

func (m Money) IsZero() bool {
	return m.Paise == 0
}

func (s PaymentStatus) IsValid() bool {
	return s == StatusApproved || s == StatusPending
}

func (s AssetStatus) IsValid() bool {
	return s == AssetAvailable || s == AssetNotAvailable
}

func (a Asset) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return errors.New("asset name too long (max 100 characters)")
	}
	if err := a.DefaultRent.Validate(); err != nil {
		return err
	}
	if a.Status != "" && !a.Status.IsValid() {
		return errors.New("invalid asset status")
	}
	if a.MeterReading < 0 {
		return ErrNegativeReading
	}
	return nil
}

func (t Tenant) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(t.Contact) == "" {
		return ErrEmptyContact
	}
	if t.AssetID <= 0 {
		return ErrMissingAsset
	}
	if err := t.FinalRent.Validate(); err != nil {
		return err
	}
	if t.FinalRent.IsZero() {
		return ErrInvalidAmount
	}
	if err := t.Deposit.Validate(); err != nil {
		return err
	}
	if !t.LeaseStart.IsEmpty() && !t.LeaseEnd.IsEmpty() && t.LeaseEnd.Before(t.LeaseStart.Time) {
		return ErrLeaseOutOfOrder
	}
	return nil
}

func (c CoTenant) Validate() error {
	if c.TenantID <= 0 {
		return ErrMissingTenant
	}
	return c.ValidateDetails()
}

// ValidateDetails checks everything but the owning tenant, for co-tenants
// submitted together with a tenant that has no ID yet.
func (c CoTenant) ValidateDetails() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.RelationType) == "" {
		return errors.New("empty relation type")
	}
	if strings.TrimSpace(c.Contact) == "" {
		return ErrEmptyContact
	}
	return nil
}

// Validate checks a payment before it is stored. The month label must project,
// otherwise the record would later break due-month computation.
func (p RentPayment) Validate() error {
	if p.TenantID <= 0 {
		return ErrMissingTenant
	}
	for _, m := range []Money{p.Amount, p.Electricity, p.LateFine, p.ExtraAmount} {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	if p.MeterReading < 0 {
		return ErrNegativeReading
	}
	if !p.Status.IsValid() {
		return ErrInvalidStatus
	}
	if _, err := ParseMonthLabel(p.Month); err != nil {
		return err
	}
	if len(p.Remark) > 500 {
		return errors.New("remark too long (max 500 characters)")
	}
	return nil
}

// IsApproved reports whether the payment counts towards ledger aggregates.
func (p RentPayment) IsApproved() bool {
	return p.Status == StatusApproved
}

