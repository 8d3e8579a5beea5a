package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"rentledger/internal/cache"
	"rentledger/internal/core"
	"rentledger/internal/store"
)

// TenantDashboard is everything shown on a tenant's ledger page.
type TenantDashboard struct {
	Tenant    core.Tenant
	Asset     *core.Asset // nil when the asset no longer exists
	CoTenants []core.CoTenant
	Payments  []core.RentPayment // newest first by payment date
	Summary   core.Summary
}

// AdminDashboard is the landlord's overview for one year.
type AdminDashboard struct {
	Totals          core.YearTotals
	TenantCount     int
	AssetCount      int
	AssetsAvailable int
}

const dashboardCacheSize = 256

// LedgerService serves read-only ledger views, caching them for a short TTL.
type LedgerService struct {
	store      store.Store
	dashboards *cache.LRUCache[TenantDashboard]
	totals     *cache.LRUCache[AdminDashboard]
	now        func() time.Time
}

var _ Invalidator = (*LedgerService)(nil)

// NewLedgerService returns a service caching views for ttl. A zero ttl
// disables caching.
func NewLedgerService(st store.Store, ttl time.Duration) *LedgerService {
	return &LedgerService{
		store:      st,
		dashboards: cache.NewLRUCache[TenantDashboard](dashboardCacheSize, ttl),
		totals:     cache.NewLRUCache[AdminDashboard](16, ttl),
		now:        time.Now,
	}
}

// Caches exposes the caches for periodic expiry sweeps.
func (s *LedgerService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.dashboards, s.totals}
}

func tenantKey(id int64) string { return "tenant:" + strconv.FormatInt(id, 10) }

func (s *LedgerService) InvalidateTenant(tenantID int64) {
	s.dashboards.Delete(tenantKey(tenantID))
}

func (s *LedgerService) InvalidateAllTenants() {
	s.dashboards.DeletePrefix("tenant:")
}

func (s *LedgerService) InvalidateTotals() {
	s.totals.DeletePrefix("totals:")
}

// TenantDashboard loads the tenant's asset, co-tenants and payments
// concurrently and derives the ledger summary.
func (s *LedgerService) TenantDashboard(ctx context.Context, tenantID int64) (TenantDashboard, error) {
	if d, ok := s.dashboards.Get(tenantKey(tenantID)); ok {
		return d, nil
	}

	tenant, err := s.store.GetTenant(ctx, tenantID)
	if err != nil {
		return TenantDashboard{}, fmt.Errorf("load tenant: %w", err)
	}
	d, err := s.build(ctx, tenant)
	if err != nil {
		return TenantDashboard{}, err
	}
	s.dashboards.Set(tenantKey(tenantID), d)
	return d, nil
}

// DashboardForUser resolves the tenant record of an authenticated user.
func (s *LedgerService) DashboardForUser(ctx context.Context, userID string) (TenantDashboard, error) {
	tenant, err := s.store.GetTenantByUserID(ctx, userID)
	if err != nil {
		return TenantDashboard{}, fmt.Errorf("load tenant for user: %w", err)
	}
	return s.TenantDashboard(ctx, tenant.ID)
}

func (s *LedgerService) build(ctx context.Context, tenant core.Tenant) (TenantDashboard, error) {
	d := TenantDashboard{Tenant: tenant}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.store.GetAsset(gctx, tenant.AssetID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load asset: %w", err)
		}
		d.Asset = &a
		return nil
	})
	g.Go(func() error {
		cts, err := s.store.ListCoTenants(gctx, tenant.ID)
		if err != nil {
			return fmt.Errorf("load co-tenants: %w", err)
		}
		d.CoTenants = cts
		return nil
	})
	g.Go(func() error {
		ps, err := s.store.ListPaymentsByTenant(gctx, tenant.ID)
		if err != nil {
			return fmt.Errorf("load payments: %w", err)
		}
		d.Payments = ps
		return nil
	})
	if err := g.Wait(); err != nil {
		return TenantDashboard{}, err
	}

	d.Summary = core.ComputeTenantSummary(d.Payments)
	core.SortByPaymentDateDesc(d.Payments)
	return d, nil
}

// AdminTotals sums approved payments for year across all tenants; year 0
// means the current year.
func (s *LedgerService) AdminTotals(ctx context.Context, year int) (AdminDashboard, error) {
	if year == 0 {
		year = s.now().Year()
	}
	key := "totals:" + strconv.Itoa(year)
	if d, ok := s.totals.Get(key); ok {
		return d, nil
	}

	var (
		d        AdminDashboard
		payments []core.RentPayment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payments, err = s.store.ListPaymentsByYear(gctx, year)
		if err != nil {
			return fmt.Errorf("load payments for %d: %w", year, err)
		}
		return nil
	})
	g.Go(func() error {
		tenants, err := s.store.ListTenants(gctx)
		if err != nil {
			return fmt.Errorf("load tenants: %w", err)
		}
		d.TenantCount = len(tenants)
		return nil
	})
	g.Go(func() error {
		assets, err := s.store.ListAssets(gctx)
		if err != nil {
			return fmt.Errorf("load assets: %w", err)
		}
		d.AssetCount = len(assets)
		for _, a := range assets {
			if a.Status == core.AssetAvailable {
				d.AssetsAvailable++
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return AdminDashboard{}, err
	}

	d.Totals = core.ComputeAdminTotals(payments, year)
	s.totals.Set(key, d)
	return d, nil
}
