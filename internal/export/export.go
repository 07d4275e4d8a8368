// Package export writes the invoice register as an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"gstinvoice/pkg/models"
)

const SheetName = "Invoices"

var Headings = []string{
	"Invoice No", "Date", "Due Date", "Type", "Buyer", "Buyer GSTIN",
	"Taxable", "CGST", "SGST", "IGST", "Total", "Status",
}

// money columns, 1-based: G..K
const firstMoneyCol, lastMoneyCol = 7, 11

func row(inv models.Invoice) []interface{} {
	return []interface{}{
		inv.InvoiceNumber,
		inv.Date,
		inv.DueDate,
		string(inv.Type),
		inv.Buyer.Name,
		inv.Buyer.GSTIN,
		inv.TotalBeforeTax,
		inv.CGST,
		inv.SGST,
		inv.IGST,
		inv.TotalAmount,
		string(inv.Status),
	}
}

// Register builds the workbook: a heading row, one row per invoice and a
// totals row summing the money columns.
func Register(invoices []models.Invoice) (*excelize.File, error) {
	const op = "export.Register"

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: header style: %w", op, err)
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: amount style: %w", op, err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &Headings); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: headings: %w", op, err)
	}

	sums := make([]decimal.Decimal, lastMoneyCol-firstMoneyCol+1)
	for i, inv := range invoices {
		values := row(inv)
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: invoice %s: %w", op, inv.InvoiceNumber, err)
		}
		for c := range sums {
			sums[c] = sums[c].Add(decimal.NewFromFloat(values[firstMoneyCol-1+c].(float64)))
		}
	}

	totalRow := len(invoices) + 2
	totals := make([]interface{}, lastMoneyCol)
	totals[0] = "Total"
	for c, s := range sums {
		totals[firstMoneyCol-1+c] = s.Round(2).InexactFloat64()
	}
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	if err := f.SetSheetRow(SheetName, cell, &totals); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: totals: %w", op, err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(Headings))
	from, _ := excelize.CoordinatesToCellName(firstMoneyCol, 2)
	to, _ := excelize.CoordinatesToCellName(lastMoneyCol, totalRow)
	styles := []struct {
		from, to string
		id       int
	}{
		{"A1", lastCol + "1", bold},
		{fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow), bold},
		{from, to, amount},
	}
	for _, s := range styles {
		if err := f.SetCellStyle(SheetName, s.from, s.to, s.id); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: style: %w", op, err)
		}
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, 14); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: width: %w", op, err)
	}
	if err := f.SetColWidth(SheetName, "E", "E", 28); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: width: %w", op, err)
	}

	return f, nil
}

// Write streams the register workbook for invoices to w.
func Write(w io.Writer, invoices []models.Invoice) error {
	f, err := Register(invoices)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export.Write: %w", err)
	}
	return nil
}
