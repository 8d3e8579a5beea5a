// Package storetest holds behaviour checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentledger/internal/core"
	"rentledger/internal/store"
)

// Run exercises s, which must be empty.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	asset, err := s.CreateAsset(ctx, core.Asset{Name: "Room 101", DefaultRent: core.Money{Paise: 450000}})
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
	if asset.ID == 0 || asset.Status != core.AssetAvailable {
		t.Fatalf("unexpected asset: %+v", asset)
	}

	if _, err := s.GetAsset(ctx, asset.ID+1000); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing asset, got %v", err)
	}

	tenant, cos, err := s.OnboardTenant(ctx, core.Tenant{
		UserID:     "user-1",
		Name:       "Asha Rao",
		Contact:    "9876543210",
		FinalRent:  core.Money{Paise: 450000},
		Deposit:    core.Money{Paise: 900000},
		LeaseStart: core.NewDate(2024, 1, 1),
		AssetID:    asset.ID,
	}, []core.CoTenant{{Name: "Ravi Rao", RelationType: "Brother", Contact: "9000000000"}})
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}
	if tenant.ID == 0 || len(cos) != 1 || cos[0].TenantID != tenant.ID || cos[0].Verified {
		t.Fatalf("unexpected onboarding result: %+v %+v", tenant, cos)
	}

	got, err := s.GetAsset(ctx, asset.ID)
	if err != nil || got.Status != core.AssetNotAvailable {
		t.Fatalf("asset should be Not Available after onboarding: %+v err=%v", got, err)
	}

	if _, _, err := s.OnboardTenant(ctx, core.Tenant{
		Name: "Bad", Contact: "1", FinalRent: core.Money{Paise: 1}, AssetID: asset.ID,
	}, []core.CoTenant{{Name: ""}}); err == nil {
		t.Fatalf("expected invalid co-tenant to fail onboarding")
	}
	if all, _ := s.ListTenants(ctx); len(all) != 1 {
		t.Fatalf("failed onboarding must not leave a tenant behind, have %d", len(all))
	}

	byUser, err := s.GetTenantByUserID(ctx, "user-1")
	if err != nil || byUser.ID != tenant.ID {
		t.Fatalf("by user id: %+v err=%v", byUser, err)
	}
	if byUser.LeaseStart.ISO() != "2024-01-01" || byUser.Deposit.Paise != 900000 {
		t.Fatalf("tenant fields not persisted: %+v", byUser)
	}
	if _, err := s.GetTenantByUserID(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	extra, err := s.AddCoTenant(ctx, core.CoTenant{TenantID: tenant.ID, Name: "Meera", RelationType: "Sister", Contact: "1"})
	if err != nil {
		t.Fatalf("add co-tenant: %v", err)
	}
	verified, err := s.VerifyCoTenant(ctx, extra.ID)
	if err != nil || !verified.Verified {
		t.Fatalf("verify: %+v err=%v", verified, err)
	}
	list, err := s.ListCoTenants(ctx, tenant.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("list co-tenants: %v err=%v", list, err)
	}

	p1, err := s.CreatePayment(ctx, core.RentPayment{
		TenantID:     tenant.ID,
		Amount:       core.Money{Paise: 450000},
		Electricity:  core.Money{Paise: 12000},
		MeterReading: 450.5,
		PaymentDate:  core.NewDate(2024, 9, 5),
		Month:        "September 2024",
		Status:       core.StatusApproved,
		Remark:       "paid in cash",
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	p2, err := s.CreatePayment(ctx, core.RentPayment{
		TenantID:    tenant.ID,
		Amount:      core.Money{Paise: 450000},
		PaymentDate: core.NewDate(2025, 1, 3),
		Month:       "January 2025",
		Status:      core.StatusPending,
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if _, err := s.CreatePayment(ctx, core.RentPayment{TenantID: tenant.ID, Month: "Sept 2024", Status: core.StatusPending}); err == nil {
		t.Fatalf("expected unparseable month to be rejected")
	}

	p2.Status = core.StatusApproved
	p2.LateFine = core.Money{Paise: 5000}
	if _, err := s.UpdatePayment(ctx, p2); err != nil {
		t.Fatalf("update payment: %v", err)
	}
	back, err := s.GetPayment(ctx, p2.ID)
	if err != nil || back.Status != core.StatusApproved || back.LateFine.Paise != 5000 {
		t.Fatalf("updated payment not persisted: %+v err=%v", back, err)
	}
	if _, err := s.UpdatePayment(ctx, core.RentPayment{ID: 99999, TenantID: tenant.ID, Month: "May 2024", Status: core.StatusPending}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing payment, got %v", err)
	}

	byTenant, err := s.ListPaymentsByTenant(ctx, tenant.ID)
	if err != nil || len(byTenant) != 2 || byTenant[0].ID != p1.ID {
		t.Fatalf("payments by tenant: %+v err=%v", byTenant, err)
	}
	if byTenant[0].MeterReading != 450.5 || byTenant[0].Remark != "paid in cash" || byTenant[0].PaymentDate.ISO() != "2024-09-05" {
		t.Fatalf("payment fields not persisted: %+v", byTenant[0])
	}

	in2024, err := s.ListPaymentsByYear(ctx, 2024)
	if err != nil || len(in2024) != 1 || in2024[0].ID != p1.ID {
		t.Fatalf("payments by year: %+v err=%v", in2024, err)
	}

	at := time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)
	updated, err := s.UpdateMeterReading(ctx, asset.ID, 512, at)
	if err != nil || updated.MeterReading != 512 || !updated.ReadingUpdated.Equal(at) {
		t.Fatalf("meter update: %+v err=%v", updated, err)
	}

	month, err := s.LastReminded(ctx, tenant.ID)
	if err != nil || month != "" {
		t.Fatalf("expected no reminder yet, got %q err=%v", month, err)
	}
	if err := s.MarkReminded(ctx, tenant.ID, "October 2024", at); err != nil {
		t.Fatalf("mark reminded: %v", err)
	}
	if err := s.MarkReminded(ctx, tenant.ID, "November 2024", at.AddDate(0, 1, 0)); err != nil {
		t.Fatalf("mark reminded: %v", err)
	}
	month, _ = s.LastReminded(ctx, tenant.ID)
	if month != "November 2024" {
		t.Fatalf("LastReminded = %q", month)
	}
}
