// Package memory is an in-process sheets.Exporter used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"rentledger/internal/core"
	"rentledger/internal/sheets"
)

type Exporter struct {
	mu   sync.Mutex
	rows map[int][]sheets.PaymentRow // by payment year
}

var _ sheets.Exporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{rows: map[int][]sheets.PaymentRow{}}
}

// ExportPayment stores the row and returns a synthetic reference.
func (e *Exporter) ExportPayment(_ context.Context, row sheets.PaymentRow) (string, error) {
	if row.Payment.ID <= 0 {
		return "", errors.New("payment has no ID")
	}
	if row.Payment.PaymentDate.IsEmpty() {
		return "", errors.New("payment has no payment date")
	}
	year := row.Payment.PaymentDate.Year()

	e.mu.Lock()
	defer e.mu.Unlock()
	for y := range e.rows {
		if y != year {
			e.drop(y, row.Payment.ID)
		}
	}
	rows := e.rows[year]
	for i := range rows {
		if rows[i].Payment.ID == row.Payment.ID {
			rows[i] = row
			return fmt.Sprintf("mem:%d:%d", year, i+1), nil
		}
	}
	e.rows[year] = append(rows, row)
	return fmt.Sprintf("mem:%d:%d", year, len(e.rows[year])), nil
}

// RemovePayment drops the payment from every year.
func (e *Exporter) RemovePayment(_ context.Context, paymentID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for y := range e.rows {
		e.drop(y, paymentID)
	}
	return nil
}

func (e *Exporter) drop(year int, id int64) {
	rows := e.rows[year]
	for i := range rows {
		if rows[i].Payment.ID == id {
			e.rows[year] = append(rows[:i], rows[i+1:]...)
			return
		}
	}
}

func (e *Exporter) ReadYearTotals(_ context.Context, year int) (core.YearTotals, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	payments := make([]core.RentPayment, 0, len(e.rows[year]))
	for _, r := range e.rows[year] {
		payments = append(payments, r.Payment)
	}
	return core.ComputeAdminTotals(payments, year), nil
}

// Rows returns the exported rows for year ordered by payment ID.
func (e *Exporter) Rows(year int) []sheets.PaymentRow {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := append([]sheets.PaymentRow(nil), e.rows[year]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Payment.ID < out[j].Payment.ID })
	return out
}
