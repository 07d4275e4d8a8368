package repository

import (
	"context"
	"fmt"
)

// FormatInvoiceNumber renders n as INV-0001.
func FormatInvoiceNumber(n int) string {
	return fmt.Sprintf("INV-%04d", n)
}

// NextInvoiceNumber previews the number the next invoice will receive
// without reserving it.
func (r *Repository) NextInvoiceNumber(ctx context.Context) (string, error) {
	n, err := r.nextSequence(ctx)
	if err != nil {
		return "", err
	}
	return FormatInvoiceNumber(n), nil
}

// ReserveInvoiceNumber advances the persisted high-water mark and returns
// the new number. Numbers are never reissued, even after deletions.
func (r *Repository) ReserveInvoiceNumber(ctx context.Context) (string, error) {
	var n int
	err := r.mutate(ctx, KeyInvoiceSeq, func() error {
		var err error
		if n, err = r.nextSequence(ctx); err != nil {
			return err
		}
		return r.write(ctx, KeyInvoiceSeq, n)
	})
	if err != nil {
		return "", err
	}

	r.log.Debug().Int("last_no", n).Msg("Invoice number reserved")
	return FormatInvoiceNumber(n), nil
}

// nextSequence continues from the larger of the stored counter and the
// invoice count, so data written before the counter existed keeps its
// numbering.
func (r *Repository) nextSequence(ctx context.Context) (int, error) {
	var last int
	if _, err := r.read(ctx, KeyInvoiceSeq, &last); err != nil {
		return 0, err
	}

	invoices, err := r.Invoices(ctx)
	if err != nil {
		return 0, err
	}
	if len(invoices) > last {
		last = len(invoices)
	}
	return last + 1, nil
}
