package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"gstinvoice/internal/calc"
	"gstinvoice/internal/dashboard"
	"gstinvoice/internal/invoice"
	"gstinvoice/internal/logger"
	"gstinvoice/internal/render"
	"gstinvoice/pkg/models"
)

var invoiceCmd = &cobra.Command{
	Use:     "invoice",
	Aliases: []string{"invoices", "inv"},
	Short:   "Create, list and print invoices",
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create and save a new invoice",
	Long: `Create an invoice for an existing client (--client) or for a new client
entered inline (--new-client-name and friends). The new client is saved to
the client list together with the invoice.

Items come from the catalog (--product id[:qty]) or are entered inline
(--item). Both flags repeat. Inline item fields:

  name      item description (required)
  hsn       HSN or SAC code
  qty       quantity (default 1)
  price     unit price
  discount  discount in percent
  tax       GST rate in percent (default 18; ignored for NON_GST and BILL)

Totals, CGST/SGST or IGST and the amount in words are computed on save.
The buyer is inter-state when the first two characters of the buyer and
seller GSTINs differ.`,
	Example: `  # GST invoice for a saved client with one catalog product and one custom line
  gstinvoice invoice create --client 0190... --product 0191...:2 \
    --item "name=Installation,price=500,tax=18,hsn=9987"

  # Bill of supply for a walk-in customer
  gstinvoice invoice create --type BILL --new-client-name "Walk-in" \
    --item "name=Rice 5kg,qty=3,price=320"

  # Show the totals without saving
  gstinvoice invoice create --client 0190... --item "name=Desk,price=4500" --dry-run`,
	Args: cobra.NoArgs,
	RunE: runInvoiceCreate,
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices, newest first",
	Args:  cobra.NoArgs,
	RunE:  runInvoiceList,
}

var invoiceShowCmd = &cobra.Command{
	Use:   "show <invoice-id|number>",
	Short: "Show one invoice with its items and totals",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceShow,
}

var invoiceStatusCmd = &cobra.Command{
	Use:       "status <invoice-id|number> <Draft|Paid|Unpaid>",
	Short:     "Change the payment status of an invoice",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(models.StatusDraft), string(models.StatusPaid), string(models.StatusUnpaid)},
	RunE:      runInvoiceStatus,
}

var invoiceDeleteCmd = &cobra.Command{
	Use:   "delete <invoice-id|number>",
	Short: "Delete an invoice; its number is not reused",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceDelete,
}

var invoicePrintCmd = &cobra.Command{
	Use:   "print <invoice-id|number>",
	Short: "Write the printable A4 page of an invoice as HTML",
	Long: `Write the print layout of an invoice as a self-contained HTML page. Open
it in a browser and use Print (or Save as PDF).`,
	Example: `  gstinvoice invoice print INV-0007 -o INV-0007.html`,
	Args:    cobra.ExactArgs(1),
	RunE:    runInvoicePrint,
}

var invoiceRecalcCmd = &cobra.Command{
	Use:   "recalc <invoice-id|number>...",
	Short: "Recompute the stored totals of invoices from their items",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInvoiceRecalc,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceCreateCmd, invoiceListCmd, invoiceShowCmd,
		invoiceStatusCmd, invoiceDeleteCmd, invoicePrintCmd, invoiceRecalcCmd)

	f := invoiceCreateCmd.Flags()
	f.StringP("type", "t", string(models.InvoiceTypeGST), "Invoice type: GST, NON_GST or BILL")
	f.String("date", "", "Invoice date YYYY-MM-DD (default: today)")
	f.String("due", "", "Due date YYYY-MM-DD (default: the invoice date)")
	f.String("status", "", "Initial status: Draft, Paid or Unpaid (default Unpaid)")
	f.StringP("client", "c", "", "Existing client id")
	addClientFlags(invoiceCreateCmd, "new-client-")
	f.StringArrayP("item", "i", nil, `Inline item "name=..,qty=..,price=..,discount=..,tax=..,hsn=.."`)
	f.StringArrayP("product", "p", nil, "Catalog product id[:qty]")
	f.Bool("dry-run", false, "Print the computed totals without saving")
	f.Bool("json", false, "Print the saved invoice as JSON")
	invoiceCreateCmd.MarkFlagsMutuallyExclusive("client", "new-client-name")

	invoiceListCmd.Flags().Bool("json", false, "Print as JSON")
	invoiceListCmd.Flags().IntP("limit", "n", 0, "Show at most n invoices (0 for all)")
	invoiceShowCmd.Flags().Bool("json", false, "Print as JSON")
	invoiceDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	invoicePrintCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
}

func runInvoiceCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")
	f := cmd.Flags()

	typeFlag, _ := f.GetString("type")
	invoiceType, err := models.ParseInvoiceType(typeFlag)
	if err != nil {
		return err
	}

	itemSpecs, _ := f.GetStringArray("item")
	productSpecs, _ := f.GetStringArray("product")
	dryRun, _ := f.GetBool("dry-run")
	asJSON, _ := f.GetBool("json")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		d := svc.NewDraft(invoiceType)
		if err := applyDraftFlags(cmd, d); err != nil {
			return err
		}

		for _, spec := range productSpecs {
			id, qty, err := parseProductSpec(spec)
			if err != nil {
				return err
			}
			p, err := svc.Product(ctx, id)
			if err != nil {
				return handleInvoiceError(err, log)
			}
			if err := d.Update(d.AddItem(), invoice.SelectProduct(p), invoice.SetQuantity(qty)); err != nil {
				return err
			}
		}
		for _, spec := range itemSpecs {
			updates, err := parseItemSpec(spec)
			if err != nil {
				return err
			}
			if err := d.Update(d.AddItem(), updates...); err != nil {
				return err
			}
		}

		log.Debug().
			Str("type", string(d.Type)).
			Str("date", d.Date).
			Int("items", len(d.Items)).
			Bool("dry_run", dryRun).
			Msg("Draft assembled")

		if dryRun {
			summary, err := svc.Preview(ctx, d)
			if err != nil {
				return handleInvoiceError(err, log)
			}
			next, err := svc.NextNumber(ctx)
			if err != nil {
				return handleInvoiceError(err, log)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Would be saved as %s (not saved)\n", next)
			return printSummary(cmd.OutOrStdout(), d.Type, summary)
		}

		inv, err := svc.Create(ctx, d)
		if err != nil {
			return handleInvoiceError(err, log)
		}
		if asJSON {
			return writeJSON(cmd, inv)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s saved for %s: ₹%s (%s)\n",
			inv.InvoiceNumber, inv.Buyer.Name, render.Money(inv.TotalAmount), inv.Status)
		return nil
	})
}

// applyDraftFlags copies dates, status and buyer flags onto d.
func applyDraftFlags(cmd *cobra.Command, d *invoice.Draft) error {
	f := cmd.Flags()

	if date, _ := f.GetString("date"); date != "" {
		d.Date = date
		d.DueDate = date
	}
	if due, _ := f.GetString("due"); due != "" {
		d.DueDate = due
	}
	if s, _ := f.GetString("status"); s != "" {
		status, err := models.ParseInvoiceStatus(s)
		if err != nil {
			return err
		}
		d.Status = status
	}

	if id, _ := f.GetString("client"); id != "" {
		d.Buyer = invoice.ExistingClient{ID: id}
	} else if f.Changed("new-client-name") {
		var c models.Client
		clientFromFlags(cmd, "new-client-", &c)
		d.Buyer = invoice.NewClient{Client: c}
	}
	return nil
}

func printSummary(w io.Writer, t models.InvoiceType, s calc.Summary) error {
	tw := tabwriterFor(w)
	fmt.Fprintf(tw, "Subtotal:\t₹%s\n", render.Money(s.TotalBeforeTax))
	if t.ChargesTax() {
		fmt.Fprintf(tw, "Total Tax:\t₹%s\n", render.Money(s.TotalTax))
		if s.IsInterState {
			fmt.Fprintf(tw, "  IGST:\t₹%s\n", render.Money(s.IGST))
		} else {
			fmt.Fprintf(tw, "  CGST:\t₹%s\n", render.Money(s.CGST))
			fmt.Fprintf(tw, "  SGST:\t₹%s\n", render.Money(s.SGST))
		}
	}
	fmt.Fprintf(tw, "Grand Total:\t₹%s\n", render.Money(s.TotalAmount))
	fmt.Fprintf(tw, "\t%s\n", s.AmountInWords)
	return tw.Flush()
}

func runInvoiceList(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	limit, _ := cmd.Flags().GetInt("limit")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		invoices, err := svc.Invoices(ctx)
		if err != nil {
			return err
		}
		if limit <= 0 {
			limit = len(invoices)
		}
		invoices = dashboard.Recent(invoices, limit)

		if asJSON {
			return writeJSON(cmd, invoices)
		}
		if len(invoices) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No invoices yet. Create one with: gstinvoice invoice create")
			return nil
		}
		return printInvoiceTable(cmd.OutOrStdout(), invoices)
	})
}

func printInvoiceTable(w io.Writer, invoices []models.Invoice) error {
	tw := tabwriterFor(w)
	fmt.Fprintln(tw, "NUMBER\tDATE\tTYPE\tCLIENT\tAMOUNT\tSTATUS\tID")
	for _, inv := range invoices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			inv.InvoiceNumber, inv.Date, inv.Type, inv.Buyer.Name,
			render.Money(inv.TotalAmount), inv.Status, inv.ID)
	}
	return tw.Flush()
}

func runInvoiceShow(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")
	asJSON, _ := cmd.Flags().GetBool("json")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		inv, err := findInvoice(ctx, svc, args[0])
		if err != nil {
			return handleInvoiceError(err, log)
		}
		if asJSON {
			return writeJSON(cmd, inv)
		}

		out := cmd.OutOrStdout()
		tw := tabwriterFor(out)
		fmt.Fprintf(tw, "%s\t%s\n", inv.Type.Label(), inv.InvoiceNumber)
		fmt.Fprintf(tw, "Date:\t%s (due %s)\n", inv.Date, inv.DueDate)
		fmt.Fprintf(tw, "Status:\t%s\n", inv.Status)
		fmt.Fprintf(tw, "Seller:\t%s %s\n", inv.Seller.Name, inv.Seller.GSTIN)
		fmt.Fprintf(tw, "Buyer:\t%s %s\n", inv.Buyer.Name, inv.Buyer.GSTIN)
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "#\tITEM\tHSN/SAC\tQTY\tRATE\tDISC\tTAX\tAMOUNT")
		for i, item := range inv.Items {
			line := calc.Line(item)
			fmt.Fprintf(tw, "%d\t%s\t%s\t%g\t%s\t%s\t%s\t%s\n",
				i+1, item.Name, item.HSNSAC, item.Quantity, render.Money(item.Price),
				render.Percent(item.Discount), render.Percent(item.TaxRate), render.Money(line.LineTotal))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)

		return printSummary(out, inv.Type, calc.Summary{
			InvoiceTotals: calc.InvoiceTotals{TotalBeforeTax: inv.TotalBeforeTax, TotalTax: inv.TotalTax, TotalAmount: inv.TotalAmount},
			TaxSplit:      calc.TaxSplit{CGST: inv.CGST, SGST: inv.SGST, IGST: inv.IGST},
			IsInterState:  inv.IsInterState,
			AmountInWords: inv.AmountInWords,
		})
	})
}

func runInvoiceStatus(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	status, err := models.ParseInvoiceStatus(args[1])
	if err != nil {
		return err
	}

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		inv, err := findInvoice(ctx, svc, args[0])
		if err != nil {
			return handleInvoiceError(err, log)
		}
		inv, err = svc.SetStatus(ctx, inv.ID, status)
		if err != nil {
			return handleInvoiceError(err, log)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s marked %s.\n", inv.InvoiceNumber, inv.Status)
		return nil
	})
}

func runInvoiceDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")
	yes, _ := cmd.Flags().GetBool("yes")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		inv, err := findInvoice(ctx, svc, args[0])
		if err != nil {
			return handleInvoiceError(err, log)
		}
		if !confirm(cmd, fmt.Sprintf("Delete invoice %s?", inv.InvoiceNumber), yes) {
			return errors.New("aborted")
		}
		if err := svc.Delete(ctx, inv.ID); err != nil {
			return handleInvoiceError(err, log)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s deleted.\n", inv.InvoiceNumber)
		return nil
	})
}

func runInvoicePrint(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")
	output, _ := cmd.Flags().GetString("output")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		inv, err := findInvoice(ctx, svc, args[0])
		if err != nil {
			return handleInvoiceError(err, log)
		}
		return writeOutput(cmd, output, func(w io.Writer) error {
			return render.HTML(w, inv)
		}, log)
	})
}

func runInvoiceRecalc(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		for _, ref := range args {
			inv, err := findInvoice(ctx, svc, ref)
			if err != nil {
				return handleInvoiceError(err, log)
			}
			inv, changed, err := svc.Recompute(ctx, inv.ID)
			if err != nil {
				return handleInvoiceError(err, log)
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s updated: ₹%s\n", inv.InvoiceNumber, render.Money(inv.TotalAmount))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s unchanged.\n", inv.InvoiceNumber)
			}
		}
		return nil
	})
}

// findInvoice resolves ref as an invoice id, falling back to a
// case-insensitive invoice number match.
func findInvoice(ctx context.Context, svc *invoice.Service, ref string) (models.Invoice, error) {
	inv, err := svc.Get(ctx, ref)
	if !errors.Is(err, invoice.ErrInvoiceNotFound) {
		return inv, err
	}

	invoices, listErr := svc.Invoices(ctx)
	if listErr != nil {
		return models.Invoice{}, listErr
	}
	for _, candidate := range invoices {
		if strings.EqualFold(candidate.InvoiceNumber, ref) {
			return candidate, nil
		}
	}
	return models.Invoice{}, err
}

// handleInvoiceError provides user-friendly error messages for invoice failures
func handleInvoiceError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Invoice operation failed")

	var verrs invoice.ValidationErrors
	var verr *invoice.ValidationError

	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("operation was canceled")
	case errors.As(err, &verrs):
		lines := make([]string, len(verrs))
		for i, e := range verrs {
			lines[i] = fmt.Sprintf("  %s: %s", e.Field, e.Message)
		}
		return fmt.Errorf("not saved, please fix:\n%s", strings.Join(lines, "\n"))
	case errors.As(err, &verr):
		return fmt.Errorf("invalid %s: %s", verr.Field, verr.Message)
	case errors.Is(err, invoice.ErrInvoiceNotFound):
		return fmt.Errorf("invoice not found. Run 'gstinvoice invoice list' to see ids and numbers")
	case errors.Is(err, invoice.ErrClientNotFound):
		return fmt.Errorf("client not found. Run 'gstinvoice client list' to see client ids")
	case errors.Is(err, invoice.ErrProductNotFound):
		return fmt.Errorf("product not found. Run 'gstinvoice product list' to see product ids")
	case errors.Is(err, invoice.ErrNoBuyer):
		return fmt.Errorf("no buyer selected. Pass --client <id> or --new-client-name")
	default:
		return fmt.Errorf("invoice operation failed: %w", err)
	}
}
