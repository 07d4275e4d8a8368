package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"gstinvoice/internal/export"
	"gstinvoice/internal/invoice"
	"gstinvoice/internal/logger"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the invoice register to an Excel workbook",
	Long: `Write every invoice as one row of an .xlsx workbook: number, dates, type,
buyer, buyer GSTIN, taxable value, CGST, SGST, IGST, total and status,
followed by a totals row.`,
	Example: `  gstinvoice export -o register.xlsx`,
	Args:    cobra.NoArgs,
	RunE:    runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "invoices.xlsx", "Output file path (- for stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")
	output, _ := cmd.Flags().GetString("output")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		invoices, err := svc.Invoices(ctx)
		if err != nil {
			return err
		}

		log.Info().Int("invoices", len(invoices)).Str("output", output).Msg("Exporting invoice register")
		return writeOutput(cmd, output, func(w io.Writer) error {
			return export.Write(w, invoices)
		}, log)
	})
}
