package google

import (
	"testing"

	"rentledger/internal/core"
	"rentledger/internal/sheets"
)

// Values as returned with UNFORMATTED_VALUE for a 2024 sheet.
func TestParseYearTotals(t *testing.T) {
	values := [][]any{
		{"Payment ID", "Payment Date", "Month", "Tenant", "Asset", "Rent", "Electricity", "Late Fine", "Extra", "Total", "Meter Reading", "Status", "Remark"},
		{1.0, 45356.0, "March 2024", "Asha", "Room 101", 4500.0, 320.5, 0.0, 0.0, 4820.5, 1234.0, "Approved", ""},
		{2.0, 45387.0, "April 2024", "Asha", "Room 101", 4500.0, 280.0, 0.0, 0.0, 4780.0, "", "Pending", ""},
		{3.0, 45390.0, "April 2024", "Ravi", "Room 102", "5000", "", 0.0, 0.0, 5000.0, "", "Approved"},
		{},
	}

	got := parseYearTotals(values, 2024)

	if got.Year != 2024 {
		t.Errorf("year = %d", got.Year)
	}
	if got.TotalRentPaid.Paise != 950000 {
		t.Errorf("rent = %d, want 950000", got.TotalRentPaid.Paise)
	}
	if got.TotalElectricityPaid.Paise != 32050 {
		t.Errorf("electricity = %d, want 32050", got.TotalElectricityPaid.Paise)
	}
	if got.ApprovedCount != 2 {
		t.Errorf("approved = %d, want 2", got.ApprovedCount)
	}
}

func TestParseYearTotals_EmptySheet(t *testing.T) {
	got := parseYearTotals(nil, 2023)
	if got != (core.YearTotals{Year: 2023}) {
		t.Errorf("got %+v", got)
	}
}

func TestFindPaymentRow(t *testing.T) {
	values := [][]any{{"Payment ID"}, {"7"}, {}, {"12"}}

	tests := []struct {
		id   int64
		want int
	}{
		{7, 2},
		{12, 4},
		{1, 0},
	}
	for _, tt := range tests {
		if got := findPaymentRow(values, tt.id); got != tt.want {
			t.Errorf("findPaymentRow(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestPaymentRowValues(t *testing.T) {
	row := sheets.PaymentRow{
		Payment: core.RentPayment{
			ID:          9,
			Amount:      core.Money{Paise: 450000},
			Electricity: core.Money{Paise: 32050},
			LateFine:    core.Money{Paise: 10000},
			PaymentDate: core.NewDate(2024, 3, 5),
			Month:       "March 2024",
			Status:      core.StatusApproved,
			Remark:      "=HYPERLINK(\"x\")",
		},
		TenantName: "Asha",
		AssetName:  "Room 101",
	}

	got := paymentRowValues(row)

	if len(got) != len(headerRow) {
		t.Fatalf("row has %d cells, header has %d", len(got), len(headerRow))
	}
	if got[1] != "2024-03-05" {
		t.Errorf("date = %v", got[1])
	}
	if got[9] != 4920.5 {
		t.Errorf("total = %v, want 4920.5", got[9])
	}
	if got[10] != "" {
		t.Errorf("unrecorded reading should be blank, got %v", got[10])
	}
	if got[12] != "'=HYPERLINK(\"x\")" {
		t.Errorf("remark not escaped: %v", got[12])
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Rents", 2024, "2024 Rents"},
		{"  Rents  ", 2025, "2025 Rents"},
		{"2023 Rents", 2024, "2023 Rents"},
		{"", 2024, ""},
		{"Rent 2024", 2024, "2024 Rent 2024"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
				t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
			}
		})
	}
}
