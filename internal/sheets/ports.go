// Package sheets defines the spreadsheet export ports. Approved rent payments
// are mirrored into one sheet per year for the landlord's bookkeeping.
package sheets

import (
	"context"

	"rentledger/internal/core"
)

// PaymentRow is one exported payment with the names the sheet displays.
type PaymentRow struct {
	Payment    core.RentPayment
	TenantName string
	AssetName  string
}

// Ports for outbound adapters.
type (
	// PaymentExporter keeps at most one row per payment ID across all yearly
	// sheets. ExportPayment replaces any earlier row for the same payment,
	// including one left in another year's sheet after a date change.
	// RemovePayment clears the payment's row wherever it is; a payment that
	// was never exported is not an error.
	PaymentExporter interface {
		ExportPayment(ctx context.Context, row PaymentRow) (rowRef string, err error)
		RemovePayment(ctx context.Context, paymentID int64) error
	}

	// YearTotalsReader reads the exported rows back as admin totals.
	YearTotalsReader interface {
		ReadYearTotals(ctx context.Context, year int) (core.YearTotals, error)
	}

	Exporter interface {
		PaymentExporter
		YearTotalsReader
	}
)
