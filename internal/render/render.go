// Package render produces the printable invoice page. The page is plain
// HTML sized for A4; turning it into a PDF is left to the browser's print
// dialog.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"gstinvoice/internal/calc"
	"gstinvoice/pkg/models"
)

//go:embed templates/*.html
var templates embed.FS

var printer = message.NewPrinter(language.MustParse("en-IN"))

var invoiceTemplate = template.Must(
	template.New("invoice.html").
		Funcs(template.FuncMap{"money": Money, "percent": Percent}).
		ParseFS(templates, "templates/invoice.html"),
)

// Money formats an amount with Indian digit grouping (12,34,567.00).
func Money(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// Percent formats a rate without trailing zeros, e.g. 18 or 2.5.
func Percent(v float64) string {
	return fmt.Sprintf("%g%%", v)
}

type line struct {
	models.InvoiceItem
	calc.LineAmounts
	No int
}

type page struct {
	models.Invoice
	Title    string
	ShowTax  bool
	Lines    []line
	Discount bool
}

func newPage(inv models.Invoice) page {
	p := page{
		Invoice: inv,
		Title:   inv.Type.Label(),
		ShowTax: inv.Type.ChargesTax(),
	}
	for i, item := range inv.Items {
		amounts := calc.Line(item)
		if !p.ShowTax {
			amounts.LineTotal = amounts.TaxableValue
		}
		if item.Discount != 0 {
			p.Discount = true
		}
		p.Lines = append(p.Lines, line{InvoiceItem: item, LineAmounts: amounts, No: i + 1})
	}
	return p
}

// HTML writes the print layout of inv to w.
func HTML(w io.Writer, inv models.Invoice) error {
	if err := invoiceTemplate.Execute(w, newPage(inv)); err != nil {
		return fmt.Errorf("render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return nil
}
