package main

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rentledger/internal/config"
	"rentledger/internal/core"
	"rentledger/internal/services"
	"rentledger/internal/sheets"
	gsheet "rentledger/internal/sheets/google"
	appweb "rentledger/web"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func summaryCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <tenant-id>",
		Short: "Print a tenant's ledger summary and payment history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			repo, err := openRepository(*dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			d, err := services.NewLedgerService(repo, 0).TenantDashboard(cmd.Context(), id)
			if err != nil {
				return err
			}
			printDashboard(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

func printDashboard(out io.Writer, d services.TenantDashboard) {
	s := d.Summary
	fmt.Fprintf(out, "Tenant:            %s (#%d)\n", d.Tenant.Name, d.Tenant.ID)
	if d.Asset != nil {
		fmt.Fprintf(out, "Asset:             %s\n", d.Asset.Name)
	}
	fmt.Fprintf(out, "Rent paid:         %s\n", core.FormatRupees(s.TotalRentPaid))
	fmt.Fprintf(out, "Electricity paid:  %s\n", core.FormatRupees(s.TotalElectricityPaid))
	if s.LatestMeterReading != nil {
		fmt.Fprintf(out, "Meter reading:     %g\n", *s.LatestMeterReading)
	}
	switch {
	case s.MonthLabelErr != nil:
		fmt.Fprintf(out, "Last paid month:   unreadable (%v)\n", s.MonthLabelErr)
	case s.LastPaidMonth != nil:
		fmt.Fprintf(out, "Last paid month:   %s\n", s.LastPaidMonth)
		fmt.Fprintf(out, "Next due:          %s, then %s\n", s.NextDueMonth, s.DueMonthAfterNext)
	default:
		fmt.Fprintln(out, "Last paid month:   none")
	}

	if len(d.Payments) == 0 {
		return
	}
	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tMONTH\tTOTAL\tSTATUS")
	for _, p := range d.Payments {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.PaymentDate.ISO(), p.Month, core.FormatRupees(core.GrandTotal(p)), p.Status)
	}
	tw.Flush()
}

func totalsCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Print approved rent and electricity totals for a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")
			repo, err := openRepository(*dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			d, err := services.NewLedgerService(repo, 0).AdminTotals(cmd.Context(), year)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Year:              %d\n", d.Totals.Year)
			fmt.Fprintf(out, "Rent paid:         %s\n", core.FormatRupees(d.Totals.TotalRentPaid))
			fmt.Fprintf(out, "Electricity paid:  %s\n", core.FormatRupees(d.Totals.TotalElectricityPaid))
			fmt.Fprintf(out, "Approved payments: %d\n", d.Totals.ApprovedCount)
			fmt.Fprintf(out, "Tenants:           %d\n", d.TenantCount)
			fmt.Fprintf(out, "Assets available:  %d of %d\n", d.AssetsAvailable, d.AssetCount)

			if check, _ := cmd.Flags().GetBool("check-sheets"); check {
				return compareWithSheets(cmd, d.Totals)
			}
			return nil
		},
	}
	cmd.Flags().Int("year", 0, "operating year (default current year)")
	cmd.Flags().Bool("check-sheets", false, "compare with the totals exported to Google Sheets")
	return cmd
}

// compareWithSheets reads the year's exported rows back and reports drift
// between the sheet and the database.
func compareWithSheets(cmd *cobra.Command, want core.YearTotals) error {
	cfg := config.Load()
	if !cfg.SheetsEnabled() {
		return errors.New("GOOGLE_SPREADSHEET_ID is not set")
	}
	client, err := gsheet.New(cmd.Context(), gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetBase:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return err
	}
	return reportDrift(cmd, client, want)
}

func reportDrift(cmd *cobra.Command, reader sheets.YearTotalsReader, want core.YearTotals) error {
	got, err := reader.ReadYearTotals(cmd.Context(), want.Year)
	if err != nil {
		return fmt.Errorf("read sheet totals: %w", err)
	}
	out := cmd.OutOrStdout()
	if got == want {
		fmt.Fprintln(out, "Sheet totals match.")
		return nil
	}
	fmt.Fprintf(out, "Sheet totals differ: rent %s, electricity %s, %d approved rows\n",
		core.FormatRupees(got.TotalRentPaid), core.FormatRupees(got.TotalElectricityPaid), got.ApprovedCount)
	return errors.New("sheet is out of date, restart rentledger-worker to reconcile")
}

func receiptCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt <payment-id>",
		Short: "Render a payment receipt as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			repo, err := openRepository(*dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			receipt, _, err := services.NewPaymentService(repo, nil, nil).Receipt(cmd.Context(), id)
			if err != nil {
				return err
			}
			tmpl, err := template.New("").Funcs(template.FuncMap{"rupees": core.FormatRupees}).
				ParseFS(appweb.TemplatesFS, "templates/receipt.html")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if path, _ := cmd.Flags().GetString("out"); path != "" {
				if path == "auto" {
					path = receipt.Filename
				}
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
				fmt.Fprintf(cmd.ErrOrStderr(), "writing %s\n", path)
			}
			return tmpl.ExecuteTemplate(out, "receipt.html", struct{ Receipt core.Receipt }{receipt})
		},
	}
	cmd.Flags().String("out", "", `write to this file instead of stdout ("auto" uses the receipt's file name)`)
	return cmd
}
