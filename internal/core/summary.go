package core

// Summary is the derived ledger for one tenant. It is never persisted.
type Summary struct {
	HasPayments          bool // at least one approved payment
	TotalRentPaid        Money
	TotalElectricityPaid Money

	// Nil when no approved payment carries a reading.
	LatestMeterReading *float64

	// Nil when there is no approved payment or its month label does not parse.
	LastPaidMonth     *MonthLabel
	NextDueMonth      *MonthLabel
	DueMonthAfterNext *MonthLabel

	// Set when the last approved payment's month label could not be parsed.
	MonthLabelErr error
}

// YearTotals is the admin-wide aggregate for one operating year.
type YearTotals struct {
	Year                 int
	TotalRentPaid        Money
	TotalElectricityPaid Money
	ApprovedCount        int
}
