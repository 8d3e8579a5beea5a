package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-09-05 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ISO() != "2024-09-05" {
		t.Fatalf("ISO() = %q", d.ISO())
	}
	if _, err := ParseDate("05/09/2024"); err == nil {
		t.Fatalf("expected error for non-ISO date")
	}
	if (Date{}).ISO() != "" {
		t.Fatalf("zero date should render empty")
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Paise: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Paise: 0}).Validate(); err != nil {
		t.Fatalf("zero is a valid charge, got %v", err)
	}
	if err := (Money{Paise: -1}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTenantValidate(t *testing.T) {
	good := Tenant{
		Name:       "Asha Rao",
		Contact:    "9876543210",
		FinalRent:  Money{Paise: 450000},
		AssetID:    1,
		LeaseStart: NewDate(2024, 1, 1),
		LeaseEnd:   NewDate(2024, 12, 31),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(*Tenant)
		want error
	}{
		{"empty name", func(t *Tenant) { t.Name = " " }, ErrEmptyName},
		{"empty contact", func(t *Tenant) { t.Contact = "" }, ErrEmptyContact},
		{"no asset", func(t *Tenant) { t.AssetID = 0 }, ErrMissingAsset},
		{"zero rent", func(t *Tenant) { t.FinalRent = Money{} }, ErrInvalidAmount},
		{"negative deposit", func(t *Tenant) { t.Deposit = Money{Paise: -5} }, ErrInvalidAmount},
		{"lease reversed", func(t *Tenant) { t.LeaseEnd = NewDate(2023, 1, 1) }, ErrLeaseOutOfOrder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bad := good
			tc.mut(&bad)
			if err := bad.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCoTenantValidate(t *testing.T) {
	good := CoTenant{TenantID: 3, Name: "Ravi", RelationType: "Brother", Contact: "99999"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []CoTenant{
		{Name: "Ravi", RelationType: "Brother", Contact: "1"},
		{TenantID: 3, RelationType: "Brother", Contact: "1"},
		{TenantID: 3, Name: "Ravi", Contact: "1"},
		{TenantID: 3, Name: "Ravi", RelationType: "Brother"},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestRentPaymentValidate(t *testing.T) {
	good := RentPayment{
		TenantID:    1,
		Amount:      Money{Paise: 450000},
		PaymentDate: NewDate(2024, 9, 5),
		Month:       "September 2024",
		Status:      StatusPending,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []RentPayment{
		func() RentPayment { p := good; p.TenantID = 0; return p }(),
		func() RentPayment { p := good; p.LateFine = Money{Paise: -1}; return p }(),
		func() RentPayment { p := good; p.MeterReading = -3; return p }(),
		func() RentPayment { p := good; p.Status = "Rejected"; return p }(),
		func() RentPayment { p := good; p.Month = "Sept 2024"; return p }(),
		func() RentPayment { p := good; p.Remark = strings.Repeat("x", 501); return p }(),
	}
	for i, p := range bads {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestAssetValidate(t *testing.T) {
	if err := (Asset{Name: "Room 101", Status: AssetAvailable}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Asset{Name: ""}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Asset{Name: "A", Status: "Occupied"}).Validate(); err == nil {
		t.Fatalf("expected invalid status error")
	}
	if err := (Asset{Name: "A", MeterReading: -1}).Validate(); !errors.Is(err, ErrNegativeReading) {
		t.Fatalf("expected ErrNegativeReading, got %v", err)
	}
}
