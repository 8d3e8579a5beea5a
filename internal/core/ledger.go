package core

import (
	"sort"
)

// ComputeTenantSummary derives the ledger summary for one tenant from its
// payment history, given in any order. Only approved payments count.
//
// "Latest" means maximum PaymentDate. Payments are stable-sorted by
// PaymentDate descending, so among equal dates the earliest in input order wins.
func ComputeTenantSummary(payments []RentPayment) Summary {
	approved := approvedByDateDesc(payments)

	var s Summary
	if len(approved) == 0 {
		return s
	}
	s.HasPayments = true

	for _, p := range approved {
		s.TotalRentPaid = s.TotalRentPaid.Add(p.Amount)
		s.TotalElectricityPaid = s.TotalElectricityPaid.Add(p.Electricity)
	}

	// zero means the reading was not recorded
	for _, p := range approved {
		if p.MeterReading != 0 {
			r := p.MeterReading
			s.LatestMeterReading = &r
			break
		}
	}

	last, err := ParseMonthLabel(approved[0].Month)
	if err != nil {
		s.MonthLabelErr = err
		return s
	}
	next := last.AddMonths(1)
	after := last.AddMonths(2)
	s.LastPaidMonth = &last
	s.NextDueMonth = &next
	s.DueMonthAfterNext = &after
	return s
}

// ComputeAdminTotals sums approved payments across all tenants whose
// PaymentDate falls in the given calendar year.
func ComputeAdminTotals(payments []RentPayment, year int) YearTotals {
	t := YearTotals{Year: year}
	for _, p := range payments {
		if !p.IsApproved() || p.PaymentDate.IsEmpty() || p.PaymentDate.Year() != year {
			continue
		}
		t.TotalRentPaid = t.TotalRentPaid.Add(p.Amount)
		t.TotalElectricityPaid = t.TotalElectricityPaid.Add(p.Electricity)
		t.ApprovedCount++
	}
	return t
}

// GrandTotal is the full amount charged for one payment. Missing components
// are zero values after coercion, so the result is always defined.
func GrandTotal(p RentPayment) Money {
	return p.Amount.Add(p.Electricity).Add(p.LateFine).Add(p.ExtraAmount)
}

// SortByPaymentDateDesc orders payments newest first, keeping input order for
// equal dates. The slice is sorted in place.
func SortByPaymentDateDesc(payments []RentPayment) {
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].PaymentDate.After(payments[j].PaymentDate.Time)
	})
}

// NextSubmissionMonth is the month a tenant's next self-service payment covers:
// one month after the newest payment of any status, or the month of now when
// there is no usable history.
func NextSubmissionMonth(payments []RentPayment, now MonthLabel) MonthLabel {
	if len(payments) == 0 {
		return now
	}
	sorted := append([]RentPayment(nil), payments...)
	SortByPaymentDateDesc(sorted)
	last, err := ParseMonthLabel(sorted[0].Month)
	if err != nil {
		return now
	}
	return last.AddMonths(1)
}

func approvedByDateDesc(payments []RentPayment) []RentPayment {
	out := make([]RentPayment, 0, len(payments))
	for _, p := range payments {
		if p.IsApproved() {
			out = append(out, p)
		}
	}
	SortByPaymentDateDesc(out)
	return out
}
