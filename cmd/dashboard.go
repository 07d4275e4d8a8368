package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gstinvoice/internal/dashboard"
	"gstinvoice/internal/invoice"
	"gstinvoice/internal/render"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show sales, GST collected, pending payments and recent invoices",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

// dashboardOutput is the --json shape of the dashboard.
type dashboardOutput struct {
	Stats   dashboard.Stats        `json:"stats"`
	Monthly []dashboard.MonthSales `json:"monthly"`
	Recent  []recentInvoice        `json:"recent"`
}

type recentInvoice struct {
	ID            string  `json:"id"`
	InvoiceNumber string  `json:"invoiceNumber"`
	Date          string  `json:"date"`
	Buyer         string  `json:"buyer"`
	TotalAmount   float64 `json:"totalAmount"`
	Status        string  `json:"status"`
}

func init() {
	rootCmd.AddCommand(dashboardCmd)

	dashboardCmd.Flags().Bool("json", false, "Print as JSON")
	dashboardCmd.Flags().IntP("recent", "n", 5, "Number of recent invoices to show")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	n, _ := cmd.Flags().GetInt("recent")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		invoices, err := svc.Invoices(ctx)
		if err != nil {
			return err
		}

		stats := dashboard.Compute(invoices)
		monthly := dashboard.Monthly(invoices)
		recent := dashboard.Recent(invoices, n)

		if asJSON {
			out := dashboardOutput{Stats: stats, Monthly: monthly, Recent: make([]recentInvoice, 0, len(recent))}
			for _, inv := range recent {
				out.Recent = append(out.Recent, recentInvoice{
					ID:            inv.ID,
					InvoiceNumber: inv.InvoiceNumber,
					Date:          inv.Date,
					Buyer:         inv.Buyer.Name,
					TotalAmount:   inv.TotalAmount,
					Status:        string(inv.Status),
				})
			}
			return writeJSON(cmd, out)
		}

		w := newTable(cmd)
		fmt.Fprintf(w, "Total Sales:\t₹%s\n", render.Money(stats.TotalSales))
		fmt.Fprintf(w, "GST Collected:\t₹%s\n", render.Money(stats.TotalGST))
		fmt.Fprintf(w, "Pending:\t₹%s (%d unpaid)\n", render.Money(stats.PendingValue), stats.PendingCount)
		fmt.Fprintf(w, "Invoices:\t%d\n", stats.InvoiceCount)
		if err := w.Flush(); err != nil {
			return err
		}

		if len(monthly) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "\nMonthly sales")
			w = newTable(cmd)
			for _, m := range monthly {
				fmt.Fprintf(w, "  %s\t₹%s\n", m.Month, render.Money(m.Sales))
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}

		if len(recent) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "\nRecent invoices")
			return printInvoiceTable(cmd.OutOrStdout(), recent)
		}
		return nil
	})
}
