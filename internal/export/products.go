package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"gstinvoice/internal/logger"
	"gstinvoice/pkg/models"
)

// ProductColumns is the heading row expected by ProductReader and written by
// ProductTemplate.
var ProductColumns = []string{"Name", "HSN/SAC", "Cost Price", "Selling Price", "Tax %", "Stock"}

// SkippedRow records a sheet row that could not be turned into a product.
type SkippedRow struct {
	Row    int
	Reason string
}

// ProductReader reads a product catalog from the first sheet of a workbook.
type ProductReader struct {
	log zerolog.Logger
}

// NewProductReader creates a catalog reader.
func NewProductReader() *ProductReader {
	return &ProductReader{log: logger.WithComponent("product-import")}
}

// Read parses every data row of the workbook in r. Rows that fail to parse
// are reported in the skipped list and do not abort the import.
func (pr *ProductReader) Read(r io.Reader) ([]models.Product, []SkippedRow, error) {
	const op = "ProductReader.Read"

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to open workbook: %w", op, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to read sheet %q: %w", op, sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s: sheet %q is empty", op, sheet)
	}

	pr.log.Info().Str("sheet", sheet).Int("rows", len(rows)-1).Msg("Reading product catalog")

	var (
		products []models.Product
		skipped  []SkippedRow
	)
	for i, row := range rows[1:] {
		rowNum := i + 2 // header row plus 1-based numbering

		if getString(row, 0) == "" {
			continue
		}

		p, err := pr.parseProductRow(row, rowNum)
		if err != nil {
			pr.log.Warn().
				Err(err).
				Int("row", rowNum).
				Msg("Failed to parse product row, skipping")
			skipped = append(skipped, SkippedRow{Row: rowNum, Reason: err.Error()})
			continue
		}
		products = append(products, p)
	}

	pr.log.Info().
		Int("parsed_products", len(products)).
		Int("skipped_rows", len(skipped)).
		Str("sheet", sheet).
		Msg("Product catalog read")

	return products, skipped, nil
}

func (pr *ProductReader) parseProductRow(row []string, rowNum int) (models.Product, error) {
	cost, err := parseAmount(getString(row, 2))
	if err != nil {
		return models.Product{}, fmt.Errorf("invalid cost price in row %d: %w", rowNum, err)
	}
	price, err := parseAmount(getString(row, 3))
	if err != nil {
		return models.Product{}, fmt.Errorf("invalid selling price in row %d: %w", rowNum, err)
	}

	rate := float64(models.DefaultTaxRate)
	if s := strings.TrimSuffix(getString(row, 4), "%"); s != "" {
		rate, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return models.Product{}, fmt.Errorf("invalid tax rate %q in row %d", getString(row, 4), rowNum)
		}
	}
	if !models.ValidTaxRate(rate) {
		return models.Product{}, fmt.Errorf("tax rate %g%% in row %d is not a GST slab", rate, rowNum)
	}

	p := models.Product{
		Name:         getString(row, 0),
		HSNSAC:       getString(row, 1),
		CostPrice:    cost,
		SellingPrice: price,
		TaxRate:      rate,
	}

	if s := getString(row, 5); s != "" {
		stock, err := strconv.Atoi(s)
		if err != nil {
			return models.Product{}, fmt.Errorf("invalid stock %q in row %d", s, rowNum)
		}
		p.Stock = &stock
	}

	return p, nil
}

// ProductTemplate writes an empty catalog workbook with the expected
// heading row.
func ProductTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Products"); err != nil {
		return fmt.Errorf("export.ProductTemplate: %w", err)
	}
	if err := f.SetSheetRow("Products", "A1", &ProductColumns); err != nil {
		return fmt.Errorf("export.ProductTemplate: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export.ProductTemplate: %w", err)
	}
	return nil
}

// parseAmount accepts plain and Indian-grouped amounts with an optional
// rupee prefix: "1234.5", "1,23,456.00", "₹ 99", "Rs. 10".
func parseAmount(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}

	cleaned := strings.TrimSpace(s)
	for _, prefix := range []string{"₹", "Rs.", "Rs", "INR"} {
		cleaned = strings.TrimPrefix(cleaned, prefix)
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse amount: %s", s)
	}
	if amount < 0 {
		return 0, fmt.Errorf("negative amount: %s", s)
	}
	return amount, nil
}

// getString safely extracts a trimmed cell from a row
func getString(row []string, index int) string {
	if index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}
