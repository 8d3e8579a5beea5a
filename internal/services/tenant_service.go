package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentledger/internal/core"
	"rentledger/internal/store"
)

// PropertyService manages tenants, co-tenants and assets.
type PropertyService struct {
	store       store.Store
	invalidator Invalidator
	now         func() time.Time
}

func NewPropertyService(st store.Store, invalidator Invalidator) *PropertyService {
	return &PropertyService{store: st, invalidator: invalidator, now: time.Now}
}

func (s *PropertyService) invalidate(tenantID int64) {
	if s.invalidator == nil {
		return
	}
	if tenantID > 0 {
		s.invalidator.InvalidateTenant(tenantID)
	}
	s.invalidator.InvalidateTotals()
}

// OnboardTenant registers a tenant on an available asset together with any
// co-tenants. Co-tenants start unverified.
func (s *PropertyService) OnboardTenant(ctx context.Context, t core.Tenant, coTenants []core.CoTenant) (core.Tenant, []core.CoTenant, error) {
	t.ID = 0
	t.Name = strings.TrimSpace(t.Name)
	if t.AssetID <= 0 {
		return core.Tenant{}, nil, invalid(core.ErrMissingAsset)
	}
	asset, err := s.store.GetAsset(ctx, t.AssetID)
	if err != nil {
		return core.Tenant{}, nil, fmt.Errorf("load asset: %w", err)
	}
	if t.FinalRent.IsZero() {
		t.FinalRent = asset.DefaultRent
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}

	if err := t.Validate(); err != nil {
		return core.Tenant{}, nil, invalid(err)
	}
	for i := range coTenants {
		coTenants[i].Verified = false
		if err := coTenants[i].ValidateDetails(); err != nil {
			return core.Tenant{}, nil, invalid(fmt.Errorf("co-tenant %d: %w", i+1, err))
		}
	}
	if asset.Status != core.AssetAvailable {
		return core.Tenant{}, nil, fmt.Errorf("%w: asset %q is not available", ErrConflict, asset.Name)
	}
	if t.UserID != "" {
		_, err := s.store.GetTenantByUserID(ctx, t.UserID)
		switch {
		case err == nil:
			return core.Tenant{}, nil, fmt.Errorf("%w: user %s already has a tenant record", ErrConflict, t.UserID)
		case !errors.Is(err, store.ErrNotFound):
			return core.Tenant{}, nil, fmt.Errorf("check existing tenant: %w", err)
		}
	}

	tenant, cts, err := s.store.OnboardTenant(ctx, t, coTenants)
	if err != nil {
		return core.Tenant{}, nil, fmt.Errorf("onboard tenant: %w", err)
	}
	s.invalidate(tenant.ID)
	return tenant, cts, nil
}

func (s *PropertyService) ListTenants(ctx context.Context) ([]core.Tenant, error) {
	return s.store.ListTenants(ctx)
}

func (s *PropertyService) TenantForUser(ctx context.Context, userID string) (core.Tenant, error) {
	return s.store.GetTenantByUserID(ctx, userID)
}

// AddCoTenant attaches an unverified co-tenant to an existing tenant.
func (s *PropertyService) AddCoTenant(ctx context.Context, tenantID int64, c core.CoTenant) (core.CoTenant, error) {
	c.ID = 0
	c.TenantID = tenantID
	c.Verified = false
	if err := c.Validate(); err != nil {
		return core.CoTenant{}, invalid(err)
	}
	if _, err := s.store.GetTenant(ctx, tenantID); err != nil {
		return core.CoTenant{}, fmt.Errorf("load tenant: %w", err)
	}
	saved, err := s.store.AddCoTenant(ctx, c)
	if err != nil {
		return core.CoTenant{}, fmt.Errorf("add co-tenant: %w", err)
	}
	s.invalidate(tenantID)
	return saved, nil
}

func (s *PropertyService) VerifyCoTenant(ctx context.Context, id int64) (core.CoTenant, error) {
	c, err := s.store.VerifyCoTenant(ctx, id)
	if err != nil {
		return core.CoTenant{}, fmt.Errorf("verify co-tenant: %w", err)
	}
	s.invalidate(c.TenantID)
	return c, nil
}

// CreateAsset adds a unit. New assets are Available unless stated otherwise.
func (s *PropertyService) CreateAsset(ctx context.Context, a core.Asset) (core.Asset, error) {
	a.ID = 0
	a.Name = strings.TrimSpace(a.Name)
	if a.Status == "" {
		a.Status = core.AssetAvailable
	}
	if err := a.Validate(); err != nil {
		return core.Asset{}, invalid(err)
	}
	saved, err := s.store.CreateAsset(ctx, a)
	if err != nil {
		return core.Asset{}, fmt.Errorf("create asset: %w", err)
	}
	s.invalidate(0)
	return saved, nil
}

func (s *PropertyService) ListAssets(ctx context.Context) ([]core.Asset, error) {
	return s.store.ListAssets(ctx)
}

// UpdateMeterReading records a manual reading taken now.
func (s *PropertyService) UpdateMeterReading(ctx context.Context, assetID int64, reading float64) (core.Asset, error) {
	if reading < 0 {
		return core.Asset{}, invalid(core.ErrNegativeReading)
	}
	a, err := s.store.UpdateMeterReading(ctx, assetID, reading, s.now())
	if err != nil {
		return core.Asset{}, fmt.Errorf("update meter reading: %w", err)
	}
	// dashboards embed the asset
	if s.invalidator != nil {
		s.invalidator.InvalidateAllTenants()
	}
	return a, nil
}
