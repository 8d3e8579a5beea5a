package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pay(id int64, date Date, month string, status PaymentStatus, amount, electricity int64, reading float64) RentPayment {
	return RentPayment{
		ID:           id,
		TenantID:     1,
		Amount:       Money{Paise: amount},
		Electricity:  Money{Paise: electricity},
		MeterReading: reading,
		PaymentDate:  date,
		Month:        month,
		Status:       status,
	}
}

func TestComputeTenantSummary_ProjectsNextTwoMonths(t *testing.T) {
	s := ComputeTenantSummary([]RentPayment{
		pay(1, NewDate(2024, 9, 5), "September 2024", StatusApproved, 450000, 0, 0),
	})

	require.True(t, s.HasPayments)
	require.NoError(t, s.MonthLabelErr)
	require.NotNil(t, s.NextDueMonth)
	require.NotNil(t, s.DueMonthAfterNext)
	assert.Equal(t, "September 2024", s.LastPaidMonth.String())
	assert.Equal(t, "October 2024", s.NextDueMonth.String())
	assert.Equal(t, "November 2024", s.DueMonthAfterNext.String())
}

func TestComputeTenantSummary_DecemberRollsOver(t *testing.T) {
	s := ComputeTenantSummary([]RentPayment{
		pay(1, NewDate(2025, 12, 3), "December 2025", StatusApproved, 100, 0, 0),
	})
	require.NotNil(t, s.NextDueMonth)
	assert.Equal(t, "January 2026", s.NextDueMonth.String())
	assert.Equal(t, "February 2026", s.DueMonthAfterNext.String())

	s = ComputeTenantSummary([]RentPayment{
		pay(1, NewDate(2025, 11, 3), "November 2025", StatusApproved, 100, 0, 0),
	})
	assert.Equal(t, "December 2025", s.NextDueMonth.String())
	assert.Equal(t, "January 2026", s.DueMonthAfterNext.String())
}

func TestComputeTenantSummary_NoHistory(t *testing.T) {
	for name, in := range map[string][]RentPayment{
		"nil":          nil,
		"only pending": {pay(1, NewDate(2024, 9, 5), "September 2024", StatusPending, 450000, 2000, 120)},
	} {
		t.Run(name, func(t *testing.T) {
			s := ComputeTenantSummary(in)
			assert.False(t, s.HasPayments)
			assert.True(t, s.TotalRentPaid.IsZero())
			assert.True(t, s.TotalElectricityPaid.IsZero())
			assert.Nil(t, s.LatestMeterReading)
			assert.Nil(t, s.LastPaidMonth)
			assert.Nil(t, s.NextDueMonth)
			assert.Nil(t, s.DueMonthAfterNext)
			assert.NoError(t, s.MonthLabelErr)
		})
	}
}

func TestComputeTenantSummary_NoHistoryDiffersFromCurrentMonthPaid(t *testing.T) {
	empty := ComputeTenantSummary(nil)
	paid := ComputeTenantSummary([]RentPayment{
		pay(1, NewDate(2024, 9, 5), "September 2024", StatusApproved, 0, 0, 0),
	})
	assert.False(t, empty.HasPayments)
	assert.True(t, paid.HasPayments)
	assert.Equal(t, empty.TotalRentPaid, paid.TotalRentPaid)
	assert.NotNil(t, paid.NextDueMonth)
}

func TestComputeTenantSummary_ZeroReadingIgnored(t *testing.T) {
	s := ComputeTenantSummary([]RentPayment{
		pay(1, NewDate(2024, 8, 5), "August 2024", StatusApproved, 100, 0, 450),
		pay(2, NewDate(2024, 9, 5), "September 2024", StatusApproved, 100, 0, 0),
	})
	require.NotNil(t, s.LatestMeterReading)
	assert.Equal(t, 450.0, *s.LatestMeterReading)

	s = ComputeTenantSummary([]RentPayment{
		pay(1, NewDate(2024, 9, 5), "September 2024", StatusApproved, 100, 0, 0),
	})
	assert.Nil(t, s.LatestMeterReading)
}

func TestComputeTenantSummary_LatestReadingByDateNotInsertion(t *testing.T) {
	s := ComputeTenantSummary([]RentPayment{
		pay(3, NewDate(2024, 10, 5), "October 2024", StatusApproved, 100, 0, 530),
		pay(1, NewDate(2024, 8, 5), "August 2024", StatusApproved, 100, 0, 410),
		pay(2, NewDate(2024, 9, 5), "September 2024", StatusApproved, 100, 0, 470),
		pay(4, NewDate(2024, 11, 5), "November 2024", StatusPending, 100, 0, 600),
	})
	require.NotNil(t, s.LatestMeterReading)
	assert.Equal(t, 530.0, *s.LatestMeterReading)
	assert.Equal(t, "November 2024", s.NextDueMonth.String())
}

// Equal payment dates resolve to the earliest record in input order.
func TestComputeTenantSummary_TieBreakFirstInInputOrder(t *testing.T) {
	same := NewDate(2024, 9, 5)
	s := ComputeTenantSummary([]RentPayment{
		pay(1, NewDate(2024, 8, 1), "August 2024", StatusApproved, 100, 0, 300),
		pay(2, same, "September 2024", StatusApproved, 100, 0, 410),
		pay(3, same, "October 2024", StatusApproved, 100, 0, 420),
	})
	require.NotNil(t, s.LatestMeterReading)
	assert.Equal(t, 410.0, *s.LatestMeterReading)
	assert.Equal(t, "October 2024", s.NextDueMonth.String())
}

func TestComputeTenantSummary_DuplicateMonthLabels(t *testing.T) {
	s := ComputeTenantSummary([]RentPayment{
		pay(1, NewDate(2024, 9, 2), "September 2024", StatusApproved, 200000, 1000, 0),
		pay(2, NewDate(2024, 9, 20), "September 2024", StatusApproved, 250000, 500, 0),
	})
	assert.Equal(t, int64(450000), s.TotalRentPaid.Paise)
	assert.Equal(t, int64(1500), s.TotalElectricityPaid.Paise)
	assert.Equal(t, "October 2024", s.NextDueMonth.String())
}

func TestComputeTenantSummary_AbbreviatedLabelDegrades(t *testing.T) {
	s := ComputeTenantSummary([]RentPayment{
		pay(1, NewDate(2024, 8, 5), "August 2024", StatusApproved, 450000, 3000, 400),
		pay(2, NewDate(2024, 9, 5), "Sept 2024", StatusApproved, 450000, 2000, 0),
	})
	assert.True(t, s.HasPayments)
	assert.ErrorIs(t, s.MonthLabelErr, ErrUnparseableMonthLabel)
	assert.Nil(t, s.LastPaidMonth)
	assert.Nil(t, s.NextDueMonth)
	assert.Nil(t, s.DueMonthAfterNext)
	assert.Equal(t, int64(900000), s.TotalRentPaid.Paise)
	assert.Equal(t, int64(5000), s.TotalElectricityPaid.Paise)
	require.NotNil(t, s.LatestMeterReading)
	assert.Equal(t, 400.0, *s.LatestMeterReading)
}

func TestComputeTenantSummary_PendingExcluded(t *testing.T) {
	s := ComputeTenantSummary([]RentPayment{
		pay(1, NewDate(2024, 8, 5), "August 2024", StatusApproved, 450000, 1000, 0),
		pay(2, NewDate(2024, 9, 5), "September 2024", StatusPending, 450000, 1000, 999),
	})
	assert.Equal(t, int64(450000), s.TotalRentPaid.Paise)
	assert.Equal(t, int64(1000), s.TotalElectricityPaid.Paise)
	assert.Nil(t, s.LatestMeterReading)
	assert.Equal(t, "September 2024", s.NextDueMonth.String())
}

func TestComputeTenantSummary_PermutationInvariant(t *testing.T) {
	base := []RentPayment{
		pay(1, NewDate(2024, 1, 5), "January 2024", StatusApproved, 450000, 1200, 100),
		pay(2, NewDate(2024, 2, 5), "February 2024", StatusApproved, 450000, 1350, 150),
		pay(3, NewDate(2024, 3, 5), "March 2024", StatusPending, 450000, 999, 0),
		pay(4, NewDate(2024, 4, 5), "April 2024", StatusApproved, 475000, 1410, 0),
		pay(5, NewDate(2024, 5, 5), "May 2024", StatusApproved, 475000, 1000, 260),
	}
	want := ComputeTenantSummary(base)
	assert.Equal(t, int64(1850000), want.TotalRentPaid.Paise)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]RentPayment(nil), base...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := ComputeTenantSummary(shuffled)
		assert.Equal(t, want.TotalRentPaid, got.TotalRentPaid)
		assert.Equal(t, want.TotalElectricityPaid, got.TotalElectricityPaid)
		assert.Equal(t, *want.LatestMeterReading, *got.LatestMeterReading)
		assert.Equal(t, want.NextDueMonth.String(), got.NextDueMonth.String())
	}
}

func TestComputeTenantSummary_DoesNotReorderInput(t *testing.T) {
	in := []RentPayment{
		pay(1, NewDate(2024, 1, 5), "January 2024", StatusApproved, 1, 0, 0),
		pay(2, NewDate(2024, 2, 5), "February 2024", StatusApproved, 1, 0, 0),
	}
	_ = ComputeTenantSummary(in)
	assert.Equal(t, int64(1), in[0].ID)
}

func TestComputeAdminTotals(t *testing.T) {
	payments := []RentPayment{
		pay(1, NewDate(2024, 1, 5), "January 2024", StatusApproved, 450000, 1000, 0),
		{ID: 2, TenantID: 2, Amount: Money{Paise: 300000}, Electricity: Money{Paise: 500}, PaymentDate: NewDate(2024, 6, 1), Month: "June 2024", Status: StatusApproved},
		pay(3, NewDate(2024, 7, 5), "July 2024", StatusPending, 999999, 9999, 0),
		pay(4, NewDate(2023, 12, 31), "December 2023", StatusApproved, 111100, 100, 0),
		{ID: 5, TenantID: 3, Amount: Money{Paise: 50}, Month: "March 2024", Status: StatusApproved}, // no date
	}

	got := ComputeAdminTotals(payments, 2024)
	assert.Equal(t, 2024, got.Year)
	assert.Equal(t, int64(750000), got.TotalRentPaid.Paise)
	assert.Equal(t, int64(1500), got.TotalElectricityPaid.Paise)
	assert.Equal(t, 2, got.ApprovedCount)

	prev := ComputeAdminTotals(payments, 2023)
	assert.Equal(t, int64(111100), prev.TotalRentPaid.Paise)

	none := ComputeAdminTotals(payments, 2030)
	assert.True(t, none.TotalRentPaid.IsZero())
	assert.Zero(t, none.ApprovedCount)
}

func TestGrandTotal(t *testing.T) {
	full := RentPayment{
		Amount:      Money{Paise: 450000},
		Electricity: Money{Paise: 12000},
		LateFine:    Money{Paise: 5000},
		ExtraAmount: Money{Paise: 2500},
	}
	assert.Equal(t, int64(469500), GrandTotal(full).Paise)

	// fine and extra missing from the payload
	partial := RentPayment{
		Amount:      CoerceAmount("4500"),
		Electricity: CoerceAmount(120.0),
		LateFine:    CoerceAmount(nil),
		ExtraAmount: CoerceAmount("null"),
	}
	assert.Equal(t, int64(462000), GrandTotal(partial).Paise)
	assert.True(t, GrandTotal(RentPayment{}).IsZero())
}

func TestNextSubmissionMonth(t *testing.T) {
	now := MonthLabel{Year: 2024, Month: 10}

	assert.Equal(t, now, NextSubmissionMonth(nil, now))

	got := NextSubmissionMonth([]RentPayment{
		pay(1, NewDate(2024, 8, 5), "August 2024", StatusApproved, 1, 0, 0),
		pay(2, NewDate(2024, 9, 5), "September 2024", StatusPending, 1, 0, 0),
	}, now)
	assert.Equal(t, "October 2024", got.String())

	got = NextSubmissionMonth([]RentPayment{
		pay(1, NewDate(2024, 12, 5), "December 2024", StatusPending, 1, 0, 0),
	}, now)
	assert.Equal(t, "January 2025", got.String())

	got = NextSubmissionMonth([]RentPayment{
		pay(1, NewDate(2024, 9, 5), "Sept 2024", StatusApproved, 1, 0, 0),
	}, now)
	assert.Equal(t, now, got)
}
