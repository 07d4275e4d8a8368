// Package calc computes invoice line amounts, totals and the GST split.
//
// Every function here is pure and total: inputs are not range-checked and
// no errors are returned. Validating quantities, prices and rates belongs to
// the caller that assembles the invoice.
package calc

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gstinvoice/pkg/models"
)

// LineAmounts is the breakdown of a single invoice item.
type LineAmounts struct {
	Amount         float64 // quantity * price
	DiscountAmount float64
	TaxableValue   float64
	TaxAmount      float64
	LineTotal      float64
}

// InvoiceTotals are the sums over all items of an invoice.
type InvoiceTotals struct {
	TotalBeforeTax float64
	TotalTax       float64
	TotalAmount    float64
}

// TaxSplit divides the total tax into its GST components. At most one of
// (CGST+SGST) and IGST is non-zero.
type TaxSplit struct {
	CGST float64
	SGST float64
	IGST float64
}

// Summary is every derived financial field persisted on an invoice.
type Summary struct {
	InvoiceTotals
	TaxSplit
	IsInterState  bool
	AmountInWords string
}

// Line computes the amounts for one item.
func Line(item models.InvoiceItem) LineAmounts {
	amount := item.Quantity * item.Price
	discountAmount := amount * (item.Discount / 100)
	taxableValue := amount - discountAmount
	taxAmount := taxableValue * (item.TaxRate / 100)

	return LineAmounts{
		Amount:         amount,
		DiscountAmount: discountAmount,
		TaxableValue:   taxableValue,
		TaxAmount:      taxAmount,
		LineTotal:      taxableValue + taxAmount,
	}
}

// Totals sums taxable value and tax independently across items. An empty
// list yields all zeros.
func Totals(items []models.InvoiceItem) InvoiceTotals {
	var t InvoiceTotals
	for _, item := range items {
		line := Line(item)
		t.TotalBeforeTax += line.TaxableValue
		t.TotalTax += line.TaxAmount
	}
	t.TotalAmount = t.TotalBeforeTax + t.TotalTax
	return t
}

// IsInterState compares the two-character state code prefix of both GSTINs.
// When either party has no GSTIN the supply is treated as intra-state.
func IsInterState(sellerGSTIN, buyerGSTIN string) bool {
	seller := strings.TrimSpace(sellerGSTIN)
	buyer := strings.TrimSpace(buyerGSTIN)
	if seller == "" || buyer == "" {
		return false
	}
	return stateCode(seller) != stateCode(buyer)
}

func stateCode(gstin string) string {
	if len(gstin) < 2 {
		return gstin
	}
	return strings.ToUpper(gstin[:2])
}

// Split divides totalTax for a GST invoice: IGST in full when inter-state,
// otherwise CGST and SGST in equal halves. Other invoice types carry no GST
// components and get an all-zero split.
func Split(invoiceType models.InvoiceType, totalTax float64, interState bool) TaxSplit {
	if !invoiceType.ChargesTax() {
		return TaxSplit{}
	}
	if interState {
		return TaxSplit{IGST: totalTax}
	}
	half := totalTax / 2
	return TaxSplit{CGST: half, SGST: half}
}

// AmountInWords renders the grand total as "Rupees <n> Only", rounding half
// away from zero to whole rupees.
func AmountInWords(total float64) string {
	return fmt.Sprintf("Rupees %s Only", decimal.NewFromFloat(total).Round(0).String())
}

// Summarize derives the financial summary of an invoice from its type,
// parties and items.
func Summarize(invoiceType models.InvoiceType, seller models.BusinessProfile, buyer models.Client, items []models.InvoiceItem) Summary {
	totals := Totals(items)
	interState := IsInterState(seller.GSTIN, buyer.GSTIN)

	return Summary{
		InvoiceTotals: totals,
		TaxSplit:      Split(invoiceType, totals.TotalTax, interState),
		IsInterState:  interState,
		AmountInWords: AmountInWords(totals.TotalAmount),
	}
}

// Apply copies the summary onto inv.
func (s Summary) Apply(inv *models.Invoice) {
	inv.TotalBeforeTax = s.TotalBeforeTax
	inv.TotalTax = s.TotalTax
	inv.TotalAmount = s.TotalAmount
	inv.CGST = s.CGST
	inv.SGST = s.SGST
	inv.IGST = s.IGST
	inv.IsInterState = s.IsInterState
	inv.AmountInWords = s.AmountInWords
}
