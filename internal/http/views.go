package http

import (
	"time"

	"rentledger/internal/core"
	"rentledger/internal/services"
)

// moneyView carries both the exact paise and the display string.
type moneyView struct {
	Paise   int64  `json:"paise"`
	Display string `json:"display"`
}

func money(m core.Money) moneyView {
	return moneyView{Paise: m.Paise, Display: core.FormatRupees(m)}
}

type paymentView struct {
	ID           int64     `json:"id"`
	TenantID     int64     `json:"tenant_id"`
	Amount       moneyView `json:"amount"`
	Electricity  moneyView `json:"electricity"`
	LateFine     moneyView `json:"late_fine"`
	ExtraAmount  moneyView `json:"extra_amount"`
	Total        moneyView `json:"total"`
	MeterReading float64   `json:"meter_reading,omitempty"`
	Remark       string    `json:"remark,omitempty"`
	PaymentDate  string    `json:"payment_date,omitempty"`
	Month        string    `json:"month"`
	Status       string    `json:"status"`
}

func newPaymentView(p core.RentPayment) paymentView {
	return paymentView{
		ID:           p.ID,
		TenantID:     p.TenantID,
		Amount:       money(p.Amount),
		Electricity:  money(p.Electricity),
		LateFine:     money(p.LateFine),
		ExtraAmount:  money(p.ExtraAmount),
		Total:        money(core.GrandTotal(p)),
		MeterReading: p.MeterReading,
		Remark:       p.Remark,
		PaymentDate:  p.PaymentDate.ISO(),
		Month:        p.Month,
		Status:       string(p.Status),
	}
}

func newPaymentViews(ps []core.RentPayment) []paymentView {
	out := make([]paymentView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newPaymentView(p))
	}
	return out
}

type coTenantView struct {
	ID           int64  `json:"id"`
	TenantID     int64  `json:"tenant_id"`
	Name         string `json:"name"`
	RelationType string `json:"relation_type"`
	Contact      string `json:"contact"`
	Gender       string `json:"gender,omitempty"`
	Verified     bool   `json:"verified"`
}

func newCoTenantView(c core.CoTenant) coTenantView {
	return coTenantView{
		ID:           c.ID,
		TenantID:     c.TenantID,
		Name:         c.Name,
		RelationType: c.RelationType,
		Contact:      c.Contact,
		Gender:       c.Gender,
		Verified:     c.Verified,
	}
}

func newCoTenantViews(cs []core.CoTenant) []coTenantView {
	out := make([]coTenantView, 0, len(cs))
	for _, c := range cs {
		out = append(out, newCoTenantView(c))
	}
	return out
}

type tenantView struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"user_id,omitempty"`
	Name            string    `json:"name"`
	Contact         string    `json:"contact"`
	Gender          string    `json:"gender,omitempty"`
	Address         string    `json:"address,omitempty"`
	FinalRent       moneyView `json:"final_rent"`
	Deposit         moneyView `json:"deposit"`
	LeaseStart      string    `json:"lease_start,omitempty"`
	LeaseEnd        string    `json:"lease_end,omitempty"`
	AssetID         int64     `json:"asset_id"`
	AadhaarVerified bool      `json:"aadhaar_verified"`
	CreatedAt       time.Time `json:"created_at"`
}

func newTenantView(t core.Tenant) tenantView {
	return tenantView{
		ID:              t.ID,
		UserID:          t.UserID,
		Name:            t.Name,
		Contact:         t.Contact,
		Gender:          t.Gender,
		Address:         t.Address,
		FinalRent:       money(t.FinalRent),
		Deposit:         money(t.Deposit),
		LeaseStart:      t.LeaseStart.ISO(),
		LeaseEnd:        t.LeaseEnd.ISO(),
		AssetID:         t.AssetID,
		AadhaarVerified: t.AadhaarVerified,
		CreatedAt:       t.CreatedAt,
	}
}

type assetView struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	DefaultRent    moneyView  `json:"default_rent"`
	Status         string     `json:"status"`
	MeterReading   float64    `json:"meter_reading"`
	ReadingUpdated *time.Time `json:"reading_updated,omitempty"`
}

func newAssetView(a core.Asset) assetView {
	v := assetView{
		ID:           a.ID,
		Name:         a.Name,
		Description:  a.Description,
		DefaultRent:  money(a.DefaultRent),
		Status:       string(a.Status),
		MeterReading: a.MeterReading,
	}
	if !a.ReadingUpdated.IsZero() {
		ts := a.ReadingUpdated
		v.ReadingUpdated = &ts
	}
	return v
}

func monthString(m *core.MonthLabel) string {
	if m == nil {
		return ""
	}
	return m.String()
}

type summaryView struct {
	HasPayments          bool      `json:"has_payments"`
	TotalRentPaid        moneyView `json:"total_rent_paid"`
	TotalElectricityPaid moneyView `json:"total_electricity_paid"`
	LatestMeterReading   *float64  `json:"latest_meter_reading"`
	LastPaidMonth        string    `json:"last_paid_month,omitempty"`
	NextDueMonth         string    `json:"next_due_month,omitempty"`
	DueMonthAfterNext    string    `json:"due_month_after_next,omitempty"`
	MonthLabelError      string    `json:"month_label_error,omitempty"`
}

func newSummaryView(s core.Summary) summaryView {
	v := summaryView{
		HasPayments:          s.HasPayments,
		TotalRentPaid:        money(s.TotalRentPaid),
		TotalElectricityPaid: money(s.TotalElectricityPaid),
		LatestMeterReading:   s.LatestMeterReading,
		LastPaidMonth:        monthString(s.LastPaidMonth),
		NextDueMonth:         monthString(s.NextDueMonth),
		DueMonthAfterNext:    monthString(s.DueMonthAfterNext),
	}
	if s.MonthLabelErr != nil {
		v.MonthLabelError = s.MonthLabelErr.Error()
	}
	return v
}

type dashboardView struct {
	Tenant    tenantView     `json:"tenant"`
	Asset     *assetView     `json:"asset"`
	CoTenants []coTenantView `json:"co_tenants"`
	Payments  []paymentView  `json:"payments"`
	Summary   summaryView    `json:"summary"`
}

func newDashboardView(d services.TenantDashboard) dashboardView {
	v := dashboardView{
		Tenant:    newTenantView(d.Tenant),
		CoTenants: newCoTenantViews(d.CoTenants),
		Payments:  newPaymentViews(d.Payments),
		Summary:   newSummaryView(d.Summary),
	}
	if d.Asset != nil {
		a := newAssetView(*d.Asset)
		v.Asset = &a
	}
	return v
}

type totalsView struct {
	Year                 int       `json:"year"`
	TotalRentPaid        moneyView `json:"total_rent_paid"`
	TotalElectricityPaid moneyView `json:"total_electricity_paid"`
	ApprovedCount        int       `json:"approved_count"`
	TenantCount          int       `json:"tenant_count"`
	AssetCount           int       `json:"asset_count"`
	AssetsAvailable      int       `json:"assets_available"`
}

func newTotalsView(d services.AdminDashboard) totalsView {
	return totalsView{
		Year:                 d.Totals.Year,
		TotalRentPaid:        money(d.Totals.TotalRentPaid),
		TotalElectricityPaid: money(d.Totals.TotalElectricityPaid),
		ApprovedCount:        d.Totals.ApprovedCount,
		TenantCount:          d.TenantCount,
		AssetCount:           d.AssetCount,
		AssetsAvailable:      d.AssetsAvailable,
	}
}
