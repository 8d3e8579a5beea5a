// Package store defines the persistence ports used by the services. The
// sqlite repository and the in-memory store both implement Store.
package store

import (
	"context"
	"errors"
	"time"

	"rentledger/internal/core"
)

// ErrNotFound is returned (wrapped) when a record does not exist.
var ErrNotFound = errors.New("not found")

type (
	TenantStore interface {
		// OnboardTenant stores the tenant with its co-tenants and marks the
		// tenant's asset Not Available, all or nothing.
		OnboardTenant(ctx context.Context, t core.Tenant, coTenants []core.CoTenant) (core.Tenant, []core.CoTenant, error)
		GetTenant(ctx context.Context, id int64) (core.Tenant, error)
		GetTenantByUserID(ctx context.Context, userID string) (core.Tenant, error)
		ListTenants(ctx context.Context) ([]core.Tenant, error)
	}

	CoTenantStore interface {
		AddCoTenant(ctx context.Context, c core.CoTenant) (core.CoTenant, error)
		ListCoTenants(ctx context.Context, tenantID int64) ([]core.CoTenant, error)
		VerifyCoTenant(ctx context.Context, id int64) (core.CoTenant, error)
	}

	AssetStore interface {
		CreateAsset(ctx context.Context, a core.Asset) (core.Asset, error)
		GetAsset(ctx context.Context, id int64) (core.Asset, error)
		ListAssets(ctx context.Context) ([]core.Asset, error)
		// UpdateMeterReading sets the reading and ReadingUpdated to at.
		UpdateMeterReading(ctx context.Context, id int64, reading float64, at time.Time) (core.Asset, error)
	}

	PaymentStore interface {
		CreatePayment(ctx context.Context, p core.RentPayment) (core.RentPayment, error)
		GetPayment(ctx context.Context, id int64) (core.RentPayment, error)
		UpdatePayment(ctx context.Context, p core.RentPayment) (core.RentPayment, error)
		ListPaymentsByTenant(ctx context.Context, tenantID int64) ([]core.RentPayment, error)
		// ListPaymentsByYear returns every payment, of any status, dated in year.
		ListPaymentsByYear(ctx context.Context, year int) ([]core.RentPayment, error)
	}

	// ReminderLog remembers the last due month each tenant was reminded about.
	ReminderLog interface {
		LastReminded(ctx context.Context, tenantID int64) (month string, err error)
		MarkReminded(ctx context.Context, tenantID int64, month string, at time.Time) error
	}

	Store interface {
		TenantStore
		CoTenantStore
		AssetStore
		PaymentStore
		ReminderLog
	}
)
