package models

import (
	"fmt"
	"strings"
)

// InvoiceType selects how tax is charged on an invoice.
type InvoiceType string

const (
	InvoiceTypeGST    InvoiceType = "GST"
	InvoiceTypeNonGST InvoiceType = "NON_GST"
	InvoiceTypeBill   InvoiceType = "BILL" // Retail/wholesale bill of supply
)

// Valid reports whether t is one of the known invoice types.
func (t InvoiceType) Valid() bool {
	switch t {
	case InvoiceTypeGST, InvoiceTypeNonGST, InvoiceTypeBill:
		return true
	}
	return false
}

// Label returns the printed document title for the invoice type.
func (t InvoiceType) Label() string {
	switch t {
	case InvoiceTypeGST:
		return "Tax Invoice"
	case InvoiceTypeNonGST:
		return "Invoice"
	case InvoiceTypeBill:
		return "Bill of Supply"
	}
	return string(t)
}

// ChargesTax reports whether line items may carry a non-zero tax rate.
func (t InvoiceType) ChargesTax() bool {
	return t == InvoiceTypeGST
}

// ParseInvoiceType accepts the canonical names case-insensitively, with
// "-" treated as "_" (so "non-gst" parses).
func ParseInvoiceType(s string) (InvoiceType, error) {
	t := InvoiceType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !t.Valid() {
		return "", fmt.Errorf("unknown invoice type %q (want GST, NON_GST or BILL)", s)
	}
	return t, nil
}

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	StatusDraft  InvoiceStatus = "Draft"
	StatusPaid   InvoiceStatus = "Paid"
	StatusUnpaid InvoiceStatus = "Unpaid"
)

// ParseInvoiceStatus matches a status name case-insensitively.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	for _, st := range []InvoiceStatus{StatusDraft, StatusPaid, StatusUnpaid} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown invoice status %q (want Draft, Paid or Unpaid)", s)
}

// InvoiceItem is one line on an invoice. Once the invoice is saved the item
// is a frozen snapshot; catalog edits do not reach it.
type InvoiceItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId,omitempty"`
	Name      string  `json:"name" validate:"required"`
	HSNSAC    string  `json:"hsnSac"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Discount  float64 `json:"discount" validate:"gte=0,lte=100"` // Percentage
	TaxRate   float64 `json:"taxRate" validate:"taxrate"`        // Percentage
}

type Invoice struct {
	// Core identifiers
	ID            string      `json:"id"`
	InvoiceNumber string      `json:"invoiceNumber"` // INV-0001, assigned once at creation
	Date          string      `json:"date"`          // YYYY-MM-DD
	DueDate       string      `json:"dueDate"`       // YYYY-MM-DD
	Type          InvoiceType `json:"type"`

	// Parties, copied in full so the invoice survives later edits or deletes
	Seller BusinessProfile `json:"seller"`
	Buyer  Client          `json:"buyer"`

	Items []InvoiceItem `json:"items"`

	// Totals
	TotalBeforeTax float64 `json:"totalBeforeTax"`
	TotalTax       float64 `json:"totalTax"`
	TotalAmount    float64 `json:"totalAmount"`
	CGST           float64 `json:"cgst"`
	SGST           float64 `json:"sgst"`
	IGST           float64 `json:"igst"`

	IsInterState  bool          `json:"isInterState"` // IGST instead of CGST/SGST
	Status        InvoiceStatus `json:"status"`
	AmountInWords string        `json:"amountInWords"`
}
