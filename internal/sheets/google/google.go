package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"rentledger/internal/core"
	"rentledger/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"rentledger/internal/log"
)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	SheetBase       string // yearly sheets are named "<year> <SheetBase>"
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string

	mu    sync.Mutex
	known map[string]bool // sheets confirmed to exist
}

var _ sheets.Exporter = (*Client)(nil)

// New creates a client authenticated with a service account. The account must
// have edit access to the spreadsheet.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetBase), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetBase string) *Client {
	if strings.TrimSpace(sheetBase) == "" {
		sheetBase = "Rents"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(spreadsheetID),
		sheetBase:     strings.TrimSpace(sheetBase),
		known:         map[string]bool{},
	}
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	var err error

	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		credentialsJSON, err = os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// SheetName is the yearly sheet payments dated in year are written to.
func (c *Client) SheetName(year int) string {
	return yearPrefixedName(c.sheetBase, year)
}

// ExportPayment writes the row into the sheet of the payment's year. A payment
// that was exported before is overwritten in place, so replayed events never
// duplicate rows. A row left in another year's sheet is cleared.
func (c *Client) ExportPayment(ctx context.Context, row sheets.PaymentRow) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	p := row.Payment
	if p.ID <= 0 {
		return "", errors.New("payment has no ID")
	}
	if p.PaymentDate.IsEmpty() {
		return "", fmt.Errorf("payment %d has no payment date", p.ID)
	}

	sheet := c.SheetName(p.PaymentDate.Year())
	if err := c.ensureSheet(ctx, sheet); err != nil {
		return "", err
	}

	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read payment ids from %s: %w", sheet, err)
	}

	rowNum := findPaymentRow(resp.Values, p.ID)
	if rowNum == 0 {
		rowNum = len(resp.Values) + 1
	}

	ref := fmt.Sprintf("%s!A%d:%s%d", sheet, rowNum, lastColumn, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{paymentRowValues(row)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, ref, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write %s: %w", ref, err)
	}
	if err := c.clearPayment(ctx, p.ID, sheet); err != nil {
		return "", err
	}
	return ref, nil
}

// RemovePayment clears the payment's row from every yearly sheet.
func (c *Client) RemovePayment(ctx context.Context, paymentID int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	return c.clearPayment(ctx, paymentID, "")
}

// clearPayment blanks the row holding id in each yearly sheet except keep.
// Cleared rows stay in place so later row references remain valid.
func (c *Client) clearPayment(ctx context.Context, id int64, keep string) error {
	yearly, err := c.yearlySheets(ctx)
	if err != nil {
		return err
	}
	for _, sheet := range yearly {
		if sheet == keep {
			continue
		}
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, sheet+"!A:A").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("read payment ids from %s: %w", sheet, err)
		}
		rowNum := findPaymentRow(resp.Values, id)
		if rowNum == 0 {
			continue
		}
		rng := fmt.Sprintf("%s!A%d:%s%d", sheet, rowNum, lastColumn, rowNum)
		if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
			return fmt.Errorf("clear %s: %w", rng, err)
		}
		slog.InfoContext(ctx, "Cleared payment row", log.FieldComponent, log.ComponentSheets,
			log.FieldPaymentID, id, log.FieldSheetsRef, rng)
	}
	return nil
}

// yearlySheets lists the spreadsheet's sheets named after sheetBase.
func (c *Client) yearlySheets(ctx context.Context) ([]string, error) {
	titles, err := c.sheetTitles(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, title := range titles {
		if isYearlySheet(c.sheetBase, title) {
			out = append(out, title)
		}
	}
	return out, nil
}

// ReadYearTotals sums the approved rows of the year's sheet. A year that was
// never exported reports zero totals.
func (c *Client) ReadYearTotals(ctx context.Context, year int) (core.YearTotals, error) {
	if c.svc == nil {
		return core.YearTotals{}, errors.New("sheets service not initialized")
	}
	sheet := c.SheetName(year)
	exists, err := c.sheetExists(ctx, sheet)
	if err != nil {
		return core.YearTotals{}, err
	}
	if !exists {
		return core.YearTotals{Year: year}, nil
	}

	rng := fmt.Sprintf("%s!A:%s", sheet, lastColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return core.YearTotals{}, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseYearTotals(resp.Values, year), nil
}

// ensureSheet creates the yearly sheet with its header row when missing.
func (c *Client) ensureSheet(ctx context.Context, name string) error {
	exists, err := c.sheetExists(ctx, name)
	if err != nil || exists {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: name},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	header := make([]any, len(headerRow))
	for i, h := range headerRow {
		header[i] = h
	}
	rng := fmt.Sprintf("%s!A1:%s1", name, lastColumn)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{header}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", name, err)
	}

	slog.InfoContext(ctx, "Created yearly rent sheet", log.FieldComponent, log.ComponentSheets, "sheet", name)
	c.mu.Lock()
	c.known[name] = true
	c.mu.Unlock()
	return nil
}

func (c *Client) sheetExists(ctx context.Context, name string) (bool, error) {
	c.mu.Lock()
	ok := c.known[name]
	c.mu.Unlock()
	if ok {
		return true, nil
	}

	if _, err := c.sheetTitles(ctx); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.known[name], nil
}

func (c *Client) sheetTitles(ctx context.Context) ([]string, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	titles := make([]string, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			c.known[s.Properties.Title] = true
			titles = append(titles, s.Properties.Title)
		}
	}
	return titles, nil
}

// isYearlySheet reports whether title is yearPrefixedName(base, y) for some year.
func isYearlySheet(base, title string) bool {
	if len(title) < 5 || title[4] != ' ' {
		return false
	}
	y, err := strconv.Atoi(title[:4])
	if err != nil || y <= 1900 || y >= 3000 {
		return false
	}
	return yearPrefixedName(base, y) == title
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
