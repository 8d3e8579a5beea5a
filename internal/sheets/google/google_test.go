package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"rentledger/internal/core"
	"rentledger/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets serves the subset of the Sheets v4 API the client uses, keeping
// each sheet as a grid of rows.
type fakeSheets struct {
	mu      sync.Mutex
	grids   map[string][][]any
	creates int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.grids[rq.AddSheet.Properties.Title] = nil
				f.creates++
			}
		}
		writeJSON(w, map[string]any{})

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		rng := strings.TrimSuffix(path[strings.Index(path, "/values/")+len("/values/"):], ":clear")
		sheet, cells, _ := strings.Cut(rng, "!")
		if n := startRow(cells); n > 0 && n <= len(f.grids[sheet]) {
			f.grids[sheet][n-1] = []any{}
		}
		writeJSON(w, map[string]any{"clearedRange": rng})

	case strings.Contains(path, "/values/"):
		rng := path[strings.Index(path, "/values/")+len("/values/"):]
		sheet, cells, _ := strings.Cut(rng, "!")
		if _, ok := f.grids[sheet]; !ok {
			http.Error(w, `{"error":{"code":400,"message":"Unable to parse range"}}`, http.StatusBadRequest)
			return
		}
		if r.Method == http.MethodPut {
			var vr gsheet.ValueRange
			json.NewDecoder(r.Body).Decode(&vr)
			start := startRow(cells)
			grid := f.grids[sheet]
			for len(grid) < start {
				grid = append(grid, []any{})
			}
			grid[start-1] = vr.Values[0]
			f.grids[sheet] = grid
			writeJSON(w, map[string]any{"updatedRange": rng})
			return
		}
		writeJSON(w, map[string]any{"range": rng, "values": f.grids[sheet]})

	case r.Method == http.MethodGet:
		var list []map[string]any
		for title := range f.grids {
			list = append(list, map[string]any{"properties": map[string]any{"title": title}})
		}
		writeJSON(w, map[string]any{"sheets": list})

	default:
		http.NotFound(w, r)
	}
}

// startRow extracts 5 from "A5:M5".
func startRow(cells string) int {
	first, _, _ := strings.Cut(cells, ":")
	n, _ := strconv.Atoi(strings.TrimLeft(first, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	return NewWithService(svc, "spreadsheet-1", "Rents")
}

func approvedRow(id int64, rent int64) sheets.PaymentRow {
	return sheets.PaymentRow{
		Payment: core.RentPayment{
			ID:          id,
			TenantID:    1,
			Amount:      core.Money{Paise: rent},
			Electricity: core.Money{Paise: 10000},
			PaymentDate: core.NewDate(2024, 3, 5),
			Month:       "March 2024",
			Status:      core.StatusApproved,
		},
		TenantName: "Asha",
		AssetName:  "Room 101",
	}
}

func TestExportPayment_CreatesYearlySheet(t *testing.T) {
	fake := &fakeSheets{grids: map[string][][]any{}}
	c := newTestClient(t, fake)
	ctx := context.Background()

	ref, err := c.ExportPayment(ctx, approvedRow(1, 450000))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if ref != "2024 Rents!A2:M2" {
		t.Errorf("ref = %q", ref)
	}
	if fake.creates != 1 {
		t.Errorf("creates = %d, want 1", fake.creates)
	}
	grid := fake.grids["2024 Rents"]
	if len(grid) != 2 || grid[0][0] != "Payment ID" {
		t.Fatalf("grid = %v", grid)
	}

	if _, err := c.ExportPayment(ctx, approvedRow(2, 300000)); err != nil {
		t.Fatalf("second export: %v", err)
	}
	if fake.creates != 1 {
		t.Errorf("sheet created again")
	}
}

func TestExportPayment_ReplaysOverwriteRow(t *testing.T) {
	fake := &fakeSheets{grids: map[string][][]any{}}
	c := newTestClient(t, fake)
	ctx := context.Background()

	c.ExportPayment(ctx, approvedRow(1, 450000))
	c.ExportPayment(ctx, approvedRow(2, 300000))
	ref, err := c.ExportPayment(ctx, approvedRow(1, 460000))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if ref != "2024 Rents!A2:M2" {
		t.Errorf("replay ref = %q, want row 2", ref)
	}
	if n := len(fake.grids["2024 Rents"]); n != 3 {
		t.Errorf("rows = %d, want header + 2", n)
	}

	totals, err := c.ReadYearTotals(ctx, 2024)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.TotalRentPaid.Paise != 760000 || totals.ApprovedCount != 2 {
		t.Errorf("totals = %+v", totals)
	}
}

func TestExportPayment_DateMoveClearsOldYear(t *testing.T) {
	fake := &fakeSheets{grids: map[string][][]any{}}
	c := newTestClient(t, fake)
	ctx := context.Background()

	if _, err := c.ExportPayment(ctx, approvedRow(1, 450000)); err != nil {
		t.Fatalf("export: %v", err)
	}
	moved := approvedRow(1, 450000)
	moved.Payment.PaymentDate = core.NewDate(2025, 1, 5)
	ref, err := c.ExportPayment(ctx, moved)
	if err != nil {
		t.Fatalf("export moved: %v", err)
	}
	if ref != "2025 Rents!A2:M2" {
		t.Errorf("ref = %q", ref)
	}

	for _, tc := range []struct {
		year  int
		count int
	}{
		{2024, 0},
		{2025, 1},
	} {
		totals, err := c.ReadYearTotals(ctx, tc.year)
		if err != nil {
			t.Fatalf("totals %d: %v", tc.year, err)
		}
		if totals.ApprovedCount != tc.count {
			t.Errorf("%d approved rows = %d, want %d", tc.year, totals.ApprovedCount, tc.count)
		}
	}
}

func TestRemovePayment(t *testing.T) {
	fake := &fakeSheets{grids: map[string][][]any{}}
	c := newTestClient(t, fake)
	ctx := context.Background()

	c.ExportPayment(ctx, approvedRow(1, 450000))
	c.ExportPayment(ctx, approvedRow(2, 300000))

	if err := c.RemovePayment(ctx, 1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := c.RemovePayment(ctx, 99); err != nil {
		t.Fatalf("remove unknown: %v", err)
	}
	if row := fake.grids["2024 Rents"][1]; len(row) != 0 {
		t.Errorf("row 2 = %v, want cleared", row)
	}

	totals, err := c.ReadYearTotals(ctx, 2024)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.TotalRentPaid.Paise != 300000 || totals.ApprovedCount != 1 {
		t.Errorf("totals = %+v", totals)
	}

	ref, err := c.ExportPayment(ctx, approvedRow(3, 100000))
	if err != nil {
		t.Fatalf("export after remove: %v", err)
	}
	if ref != "2024 Rents!A4:M4" {
		t.Errorf("ref = %q, want appended after cleared row", ref)
	}
}

func TestIsYearlySheet(t *testing.T) {
	tests := []struct {
		base, title string
		want        bool
	}{
		{"Rents", "2024 Rents", true},
		{"Rents", "2024 Other", false},
		{"Rents", "Rents", false},
		{"Rents", "abcd Rents", false},
		{"2023 Rents", "2023 Rents", true},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := isYearlySheet(tt.base, tt.title); got != tt.want {
				t.Errorf("isYearlySheet(%q, %q) = %v, want %v", tt.base, tt.title, got, tt.want)
			}
		})
	}
}

func TestReadYearTotals_MissingSheet(t *testing.T) {
	c := newTestClient(t, &fakeSheets{grids: map[string][][]any{}})

	got, err := c.ReadYearTotals(context.Background(), 2019)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if got != (core.YearTotals{Year: 2019}) {
		t.Errorf("got %+v", got)
	}
}

func TestExportPayment_RejectsUndatedPayment(t *testing.T) {
	c := newTestClient(t, &fakeSheets{grids: map[string][][]any{}})
	row := approvedRow(1, 1)
	row.Payment.PaymentDate = core.Date{}

	if _, err := c.ExportPayment(context.Background(), row); err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_MissingConfig(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, Config{}); err == nil || !strings.Contains(err.Error(), "missing spreadsheet ID") {
		t.Errorf("expected missing spreadsheet ID, got %v", err)
	}
	if _, err := New(ctx, Config{SpreadsheetID: "x"}); err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("expected missing credentials, got %v", err)
	}
	if _, err := New(ctx, Config{SpreadsheetID: "x", CredentialsFile: "/non/existent.json"}); err == nil {
		t.Error("expected error for unreadable credentials file")
	}
}

func TestClient_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "x", known: map[string]bool{}}
	if _, err := c.ExportPayment(context.Background(), approvedRow(1, 1)); err == nil {
		t.Error("expected error with nil service")
	}
	if _, err := c.ReadYearTotals(context.Background(), 2024); err == nil {
		t.Error("expected error with nil service")
	}
	if err := c.RemovePayment(context.Background(), 1); err == nil {
		t.Error("expected error with nil service")
	}
}
