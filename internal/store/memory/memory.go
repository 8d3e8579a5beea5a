// Package memory is an in-process Store used for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rentledger/internal/core"
	"rentledger/internal/store"
)

type reminder struct {
	month string
	at    time.Time
}

type Store struct {
	mu        sync.Mutex
	nextID    int64
	tenants   map[int64]core.Tenant
	coTenants map[int64]core.CoTenant
	assets    map[int64]core.Asset
	payments  map[int64]core.RentPayment
	reminders map[int64]reminder
	now       func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		tenants:   map[int64]core.Tenant{},
		coTenants: map[int64]core.CoTenant{},
		assets:    map[int64]core.Asset{},
		payments:  map[int64]core.RentPayment{},
		reminders: map[int64]reminder{},
		now:       time.Now,
	}
}

// NewWithSeed returns a store holding one available demo asset, enough to
// onboard a tenant in a fresh development setup.
func NewWithSeed() *Store {
	s := New()
	_, _ = s.CreateAsset(context.Background(), core.Asset{
		Name:        "Room 101",
		Description: "Ground floor, single occupancy",
		DefaultRent: core.Money{Paise: 450000},
		Status:      core.AssetAvailable,
	})
	return s
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, store.ErrNotFound)
}

func (s *Store) OnboardTenant(_ context.Context, t core.Tenant, coTenants []core.CoTenant) (core.Tenant, []core.CoTenant, error) {
	if err := t.Validate(); err != nil {
		return core.Tenant{}, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[t.AssetID]
	if !ok {
		return core.Tenant{}, nil, notFound("asset", t.AssetID)
	}
	// validate every co-tenant before touching state
	for _, c := range coTenants {
		if err := c.ValidateDetails(); err != nil {
			return core.Tenant{}, nil, err
		}
	}

	t.ID = s.id()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}
	s.tenants[t.ID] = t

	out := make([]core.CoTenant, 0, len(coTenants))
	for _, c := range coTenants {
		c.ID = s.id()
		c.TenantID = t.ID
		s.coTenants[c.ID] = c
		out = append(out, c)
	}

	a.Status = core.AssetNotAvailable
	s.assets[a.ID] = a
	return t, out, nil
}

func (s *Store) GetTenant(_ context.Context, id int64) (core.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok {
		return core.Tenant{}, notFound("tenant", id)
	}
	return t, nil
}

func (s *Store) GetTenantByUserID(_ context.Context, userID string) (core.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sortedKeys(s.tenants) {
		if t := s.tenants[id]; userID != "" && t.UserID == userID {
			return t, nil
		}
	}
	return core.Tenant{}, fmt.Errorf("tenant for user %q: %w", userID, store.ErrNotFound)
}

func (s *Store) ListTenants(_ context.Context) ([]core.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Tenant, 0, len(s.tenants))
	for _, id := range sortedKeys(s.tenants) {
		out = append(out, s.tenants[id])
	}
	return out, nil
}

func (s *Store) AddCoTenant(_ context.Context, c core.CoTenant) (core.CoTenant, error) {
	if err := c.Validate(); err != nil {
		return core.CoTenant{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[c.TenantID]; !ok {
		return core.CoTenant{}, notFound("tenant", c.TenantID)
	}
	c.ID = s.id()
	c.Verified = false
	s.coTenants[c.ID] = c
	return c, nil
}

func (s *Store) ListCoTenants(_ context.Context, tenantID int64) ([]core.CoTenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.CoTenant
	for _, id := range sortedKeys(s.coTenants) {
		if c := s.coTenants[id]; c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) VerifyCoTenant(_ context.Context, id int64) (core.CoTenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coTenants[id]
	if !ok {
		return core.CoTenant{}, notFound("co-tenant", id)
	}
	c.Verified = true
	s.coTenants[id] = c
	return c, nil
}

func (s *Store) CreateAsset(_ context.Context, a core.Asset) (core.Asset, error) {
	if a.Status == "" {
		a.Status = core.AssetAvailable
	}
	if err := a.Validate(); err != nil {
		return core.Asset{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.assets[a.ID] = a
	return a, nil
}

func (s *Store) GetAsset(_ context.Context, id int64) (core.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return core.Asset{}, notFound("asset", id)
	}
	return a, nil
}

func (s *Store) ListAssets(_ context.Context) ([]core.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Asset, 0, len(s.assets))
	for _, id := range sortedKeys(s.assets) {
		out = append(out, s.assets[id])
	}
	return out, nil
}

func (s *Store) UpdateMeterReading(_ context.Context, id int64, reading float64, at time.Time) (core.Asset, error) {
	if reading < 0 {
		return core.Asset{}, core.ErrNegativeReading
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return core.Asset{}, notFound("asset", id)
	}
	a.MeterReading = reading
	a.ReadingUpdated = at.UTC()
	s.assets[id] = a
	return a, nil
}

func (s *Store) CreatePayment(_ context.Context, p core.RentPayment) (core.RentPayment, error) {
	if err := p.Validate(); err != nil {
		return core.RentPayment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[p.TenantID]; !ok {
		return core.RentPayment{}, notFound("tenant", p.TenantID)
	}
	p.ID = s.id()
	s.payments[p.ID] = p
	return p, nil
}

func (s *Store) GetPayment(_ context.Context, id int64) (core.RentPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return core.RentPayment{}, notFound("payment", id)
	}
	return p, nil
}

func (s *Store) UpdatePayment(_ context.Context, p core.RentPayment) (core.RentPayment, error) {
	if err := p.Validate(); err != nil {
		return core.RentPayment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.ID]; !ok {
		return core.RentPayment{}, notFound("payment", p.ID)
	}
	s.payments[p.ID] = p
	return p, nil
}

// ListPaymentsByTenant returns payments in insertion order.
func (s *Store) ListPaymentsByTenant(_ context.Context, tenantID int64) ([]core.RentPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.RentPayment
	for _, id := range sortedKeys(s.payments) {
		if p := s.payments[id]; p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) ListPaymentsByYear(_ context.Context, year int) ([]core.RentPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.RentPayment
	for _, id := range sortedKeys(s.payments) {
		if p := s.payments[id]; !p.PaymentDate.IsEmpty() && p.PaymentDate.Year() == year {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) LastReminded(_ context.Context, tenantID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminders[tenantID].month, nil
}

func (s *Store) MarkReminded(_ context.Context, tenantID int64, month string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders[tenantID] = reminder{month: month, at: at}
	return nil
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
