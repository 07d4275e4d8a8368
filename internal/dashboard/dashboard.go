// Package dashboard aggregates the invoice collection into headline figures.
package dashboard

import (
	"time"

	"gstinvoice/pkg/models"
)

// Stats are the headline figures over every invoice.
type Stats struct {
	TotalSales   float64 `json:"totalSales"`
	TotalGST     float64 `json:"totalGst"`
	PendingCount int     `json:"pendingInvoices"`
	PendingValue float64 `json:"pendingAmount"`
	InvoiceCount int     `json:"totalInvoices"`
}

// MonthSales is the sales total for one calendar month.
type MonthSales struct {
	Month string  `json:"name"` // Jan 2024
	Sales float64 `json:"sales"`
}

// Compute returns the headline figures. Only Unpaid invoices count as
// pending; drafts are neither pending nor excluded from sales.
func Compute(invoices []models.Invoice) Stats {
	s := Stats{InvoiceCount: len(invoices)}
	for _, inv := range invoices {
		s.TotalSales += inv.TotalAmount
		s.TotalGST += inv.TotalTax
		if inv.Status == models.StatusUnpaid {
			s.PendingCount++
			s.PendingValue += inv.TotalAmount
		}
	}
	return s
}

// Monthly groups sales by the month of the invoice date, in the order the
// months first appear. Invoices with an unparseable date are skipped.
func Monthly(invoices []models.Invoice) []MonthSales {
	var out []MonthSales
	index := make(map[string]int)

	for _, inv := range invoices {
		d, err := time.Parse("2006-01-02", inv.Date)
		if err != nil {
			continue
		}
		key := d.Format("Jan 2006")
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, MonthSales{Month: key})
		}
		out[i].Sales += inv.TotalAmount
	}
	return out
}

// Recent returns up to n invoices, newest first.
func Recent(invoices []models.Invoice, n int) []models.Invoice {
	if n > len(invoices) {
		n = len(invoices)
	}
	if n < 0 {
		n = 0
	}
	out := make([]models.Invoice, 0, n)
	for i := len(invoices) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, invoices[i])
	}
	return out
}
