package google

import (
	"fmt"
	"strconv"
	"strings"

	"rentledger/internal/core"
	"rentledger/internal/sheets"
)

// Column layout of a yearly rent sheet, A through M.
var headerRow = []string{
	"Payment ID", "Payment Date", "Month", "Tenant", "Asset",
	"Rent", "Electricity", "Late Fine", "Extra", "Total",
	"Meter Reading", "Status", "Remark",
}

const (
	lastColumn = "M"

	colID          = 0
	colRent        = 5
	colElectricity = 6
	colStatus      = 11
)

// paymentRowValues renders one sheet row. Amounts are written in rupees so
// the sheet's own formulas work on them.
func paymentRowValues(row sheets.PaymentRow) []any {
	p := row.Payment
	var reading any = ""
	if p.MeterReading != 0 {
		reading = p.MeterReading
	}
	return []any{
		p.ID,
		p.PaymentDate.ISO(),
		textCell(p.Month),
		textCell(row.TenantName),
		textCell(row.AssetName),
		p.Amount.Rupees(),
		p.Electricity.Rupees(),
		p.LateFine.Rupees(),
		p.ExtraAmount.Rupees(),
		core.GrandTotal(p).Rupees(),
		reading,
		string(p.Status),
		textCell(p.Remark),
	}
}

// textCell keeps user text from being evaluated as a formula under
// USER_ENTERED input.
func textCell(s string) string {
	s = strings.TrimSpace(s)
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}

// findPaymentRow returns the 1-based row holding payment id, or 0.
func findPaymentRow(values [][]any, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[colID])) == want {
			return i + 1
		}
	}
	return 0
}

// parseYearTotals sums the approved rows of one yearly sheet. Cells are
// coerced like any other loosely typed input, so blank or garbled amounts
// count as zero.
func parseYearTotals(values [][]any, year int) core.YearTotals {
	t := core.YearTotals{Year: year}
	for _, raw := range values {
		row := toStrings(raw)
		if safeGet(row, colStatus) != string(core.StatusApproved) {
			continue
		}
		t.TotalRentPaid = t.TotalRentPaid.Add(core.CoerceAmount(cell(raw, colRent)))
		t.TotalElectricityPaid = t.TotalElectricityPaid.Add(core.CoerceAmount(cell(raw, colElectricity)))
		t.ApprovedCount++
	}
	return t
}

func cell(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
