package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"gstinvoice/internal/export"
	"gstinvoice/internal/invoice"
	"gstinvoice/internal/logger"
	"gstinvoice/internal/render"
	"gstinvoice/pkg/models"
)

var productCmd = &cobra.Command{
	Use:     "product",
	Aliases: []string{"products"},
	Short:   "Manage the product catalog",
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Args:  cobra.NoArgs,
	RunE:  runProductList,
}

var productAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add a product",
	Example: `  gstinvoice product add --name "USB Cable" --hsn 8544 --cost 40 --price 75 --tax 18`,
	Args:    cobra.NoArgs,
	RunE:    runProductAdd,
}

var productEditCmd = &cobra.Command{
	Use:   "edit <product-id>",
	Short: "Change fields of a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductEdit,
}

var productDeleteCmd = &cobra.Command{
	Use:   "delete <product-id>",
	Short: "Delete a product; issued invoices keep their copy",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductDelete,
}

var productImportCmd = &cobra.Command{
	Use:   "import <catalog.xlsx>",
	Short: "Add products from an Excel sheet",
	Long: `Read products from the first sheet of an Excel workbook and add each one
to the catalog. The first row is a heading row; columns are:

  Name | HSN/SAC | Cost Price | Selling Price | Tax % | Stock

An empty Tax % means 18%. Rows that fail to parse are reported and skipped.
Use --template to write an empty workbook with the heading row.`,
	Example: `  gstinvoice product import --template -o catalog.xlsx
  gstinvoice product import catalog.xlsx`,
	Args: cobra.RangeArgs(0, 1),
	RunE: runProductImport,
}

func init() {
	rootCmd.AddCommand(productCmd)
	productCmd.AddCommand(productListCmd, productAddCmd, productEditCmd, productDeleteCmd, productImportCmd)

	productListCmd.Flags().Bool("json", false, "Print as JSON")
	for _, c := range []*cobra.Command{productAddCmd, productEditCmd} {
		f := c.Flags()
		f.String("name", "", "Product name")
		f.String("hsn", "", "HSN or SAC code")
		f.Float64("cost", 0, "Cost price")
		f.Float64("price", 0, "Selling price")
		f.Float64("tax", models.DefaultTaxRate, "GST rate in percent: 0, 5, 12, 18 or 28")
		f.String("stock", "", "Stock on hand (empty to clear)")
	}
	productAddCmd.MarkFlagRequired("name")
	productDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	productImportCmd.Flags().Bool("template", false, "Write an empty catalog workbook instead of importing")
	productImportCmd.Flags().StringP("output", "o", "", "Template output file (default: stdout)")
}

// productFromFlags applies the set product flags to p.
func productFromFlags(cmd *cobra.Command, p *models.Product) error {
	f := cmd.Flags()
	stringFlags(cmd, map[string]*string{"name": &p.Name, "hsn": &p.HSNSAC})
	if f.Changed("cost") {
		p.CostPrice, _ = f.GetFloat64("cost")
	}
	if f.Changed("price") {
		p.SellingPrice, _ = f.GetFloat64("price")
	}
	if f.Changed("tax") || p.ID == "" {
		p.TaxRate, _ = f.GetFloat64("tax")
	}
	if f.Changed("stock") {
		s, _ := f.GetString("stock")
		if s == "" {
			p.Stock = nil
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid --stock %q: must be a whole number", s)
		}
		p.Stock = &n
	}
	return nil
}

func runProductList(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		products, err := svc.Products(ctx)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd, products)
		}
		if len(products) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No products yet. Add one with: gstinvoice product add --name ...")
			return nil
		}

		w := newTable(cmd)
		fmt.Fprintln(w, "ID\tNAME\tHSN/SAC\tPRICE\tTAX\tSTOCK")
		for _, p := range products {
			stock := "-"
			if p.Stock != nil {
				stock = strconv.Itoa(*p.Stock)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				p.ID, p.Name, p.HSNSAC, render.Money(p.SellingPrice), render.Percent(p.TaxRate), stock)
		}
		return w.Flush()
	})
}

func runProductAdd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("product")

	var p models.Product
	if err := productFromFlags(cmd, &p); err != nil {
		return err
	}

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		saved, err := svc.SaveProduct(ctx, p)
		if err != nil {
			return handleInvoiceError(err, log)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Product %s saved (%s).\n", saved.Name, saved.ID)
		return nil
	})
}

func runProductEdit(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("product")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		p, err := svc.Product(ctx, args[0])
		if err != nil {
			return handleInvoiceError(err, log)
		}
		if err := productFromFlags(cmd, &p); err != nil {
			return err
		}
		if _, err := svc.SaveProduct(ctx, p); err != nil {
			return handleInvoiceError(err, log)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Product %s updated.\n", p.Name)
		return nil
	})
}

func runProductDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("product")
	yes, _ := cmd.Flags().GetBool("yes")

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		p, err := svc.Product(ctx, args[0])
		if err != nil {
			return handleInvoiceError(err, log)
		}
		if !confirm(cmd, fmt.Sprintf("Delete product %s?", p.Name), yes) {
			return errors.New("aborted")
		}
		if err := svc.DeleteProduct(ctx, p.ID); err != nil {
			return handleInvoiceError(err, log)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Product %s deleted.\n", p.Name)
		return nil
	})
}

func runProductImport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("product")

	if tmpl, _ := cmd.Flags().GetBool("template"); tmpl {
		output, _ := cmd.Flags().GetString("output")
		return writeOutput(cmd, output, func(w io.Writer) error {
			return export.ProductTemplate(w)
		}, log)
	}
	if len(args) != 1 {
		return errors.New("import needs a workbook path (or --template)")
	}

	f, err := os.Open(args[0])
	if err != nil {
		log.Error().Err(err).Str("file", args[0]).Msg("Failed to open catalog workbook")
		return fmt.Errorf("failed to open catalog workbook: %w", err)
	}
	defer f.Close()

	products, skipped, err := export.NewProductReader().Read(f)
	if err != nil {
		return err
	}

	return withService(cmd, func(ctx context.Context, svc *invoice.Service) error {
		added := 0
		for _, p := range products {
			if _, err := svc.SaveProduct(ctx, p); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", p.Name, err)
				continue
			}
			added++
		}
		for _, s := range skipped {
			fmt.Fprintf(cmd.ErrOrStderr(), "row %d skipped: %s\n", s.Row, s.Reason)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d products.\n", added, len(products)+len(skipped))
		return nil
	})
}
