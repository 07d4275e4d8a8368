// Package invoice assembles, saves and maintains invoices and the client
// and product records they draw from.
//
// An invoice is composed as a Draft: a type, dates, a BuyerRef and a list
// of items edited through typed ItemUpdate commands. Service.Create
// validates the draft, resolves the buyer, snapshots the seller profile,
// derives every total with package calc and stores the result under a
// newly reserved invoice number.
//
// Saving a NewClient buyer and saving the invoice are two independent
// writes. If the second fails the client remains saved.
package invoice

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"gstinvoice/internal/calc"
	"gstinvoice/internal/logger"
	"gstinvoice/internal/repository"
	"gstinvoice/pkg/models"
)

// DateLayout is the persisted form of invoice dates.
const DateLayout = "2006-01-02"

// Repository is the persistence the service needs.
type Repository interface {
	Profile(ctx context.Context) (models.BusinessProfile, error)
	SaveProfile(ctx context.Context, p models.BusinessProfile) error

	Clients(ctx context.Context) ([]models.Client, error)
	Client(ctx context.Context, id string) (models.Client, error)
	SaveClient(ctx context.Context, c models.Client) error
	DeleteClient(ctx context.Context, id string) error

	Products(ctx context.Context) ([]models.Product, error)
	Product(ctx context.Context, id string) (models.Product, error)
	SaveProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id string) error

	Invoices(ctx context.Context) ([]models.Invoice, error)
	Invoice(ctx context.Context, id string) (models.Invoice, error)
	SaveInvoice(ctx context.Context, inv models.Invoice) error
	DeleteInvoice(ctx context.Context, id string) error
	NextInvoiceNumber(ctx context.Context) (string, error)
	ReserveInvoiceNumber(ctx context.Context) (string, error)
}

// Service implements the invoice save action and record maintenance.
type Service struct {
	repo Repository
	now  func() time.Time
	log  zerolog.Logger
}

// NewService returns a Service over repo.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
		log:  logger.WithComponent("invoice"),
	}
}

// Today is the current date in DateLayout.
func (s *Service) Today() string {
	return s.now().Format(DateLayout)
}

// NewDraft starts a draft dated today.
func (s *Service) NewDraft(t models.InvoiceType) *Draft {
	return NewDraft(t, s.Today())
}

// Preview computes the summary the draft would be saved with, without
// writing anything. A NewClient buyer is used as entered.
func (s *Service) Preview(ctx context.Context, d *Draft) (calc.Summary, error) {
	const op = "Preview"

	profile, err := s.repo.Profile(ctx)
	if err != nil {
		return calc.Summary{}, wrap(op, "", err)
	}

	var buyer models.Client
	switch ref := d.Buyer.(type) {
	case ExistingClient:
		buyer, err = s.lookupClient(ctx, ref.ID)
		if err != nil {
			return calc.Summary{}, wrap(op, ref.ID, err)
		}
	case NewClient:
		buyer = ref.Client
	}

	return calc.Summarize(d.Type, profile, buyer, normalizeItems(d.Type, d.Items)), nil
}

// NextNumber previews the number the next saved invoice will receive.
func (s *Service) NextNumber(ctx context.Context) (string, error) {
	n, err := s.repo.NextInvoiceNumber(ctx)
	return n, wrap("NextNumber", "", err)
}

// Create validates d and saves it as a new invoice.
func (s *Service) Create(ctx context.Context, d *Draft) (models.Invoice, error) {
	const op = "Create"

	items := normalizeItems(d.Type, d.Items)
	if err := validateDraft(d, items); err != nil {
		return models.Invoice{}, wrap(op, "", err)
	}

	buyer, err := s.resolveBuyer(ctx, d.Buyer)
	if err != nil {
		return models.Invoice{}, wrap(op, "", err)
	}

	profile, err := s.repo.Profile(ctx)
	if err != nil {
		return models.Invoice{}, wrap(op, "", err)
	}

	number, err := s.repo.ReserveInvoiceNumber(ctx)
	if err != nil {
		return models.Invoice{}, wrap(op, "", err)
	}

	status := d.Status
	if status == "" {
		status = models.StatusUnpaid
	}

	inv := models.Invoice{
		ID:            newID(),
		InvoiceNumber: number,
		Date:          d.Date,
		DueDate:       d.DueDate,
		Type:          d.Type,
		Seller:        profile,
		Buyer:         buyer,
		Items:         items,
		Status:        status,
	}
	calc.Summarize(inv.Type, inv.Seller, inv.Buyer, inv.Items).Apply(&inv)

	if err := s.repo.SaveInvoice(ctx, inv); err != nil {
		return models.Invoice{}, wrap(op, inv.ID, err)
	}

	s.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.InvoiceNumber).
		Str("type", string(inv.Type)).
		Str("buyer", inv.Buyer.Name).
		Int("items", len(inv.Items)).
		Float64("total", inv.TotalAmount).
		Bool("inter_state", inv.IsInterState).
		Msg("Invoice created")

	return inv, nil
}

// resolveBuyer turns a BuyerRef into the client copied onto the invoice,
// saving a NewClient first.
func (s *Service) resolveBuyer(ctx context.Context, ref BuyerRef) (models.Client, error) {
	switch ref := ref.(type) {
	case ExistingClient:
		return s.lookupClient(ctx, ref.ID)
	case NewClient:
		c := ref.Client
		c.ID = ""
		return s.SaveClient(ctx, c)
	default:
		return models.Client{}, ErrNoBuyer
	}
}

func (s *Service) lookupClient(ctx context.Context, id string) (models.Client, error) {
	c, err := s.repo.Client(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Client{}, ErrClientNotFound
	}
	return c, err
}

// normalizeItems returns a copy of items with tax rates cleared for invoice
// types that carry no GST.
func normalizeItems(t models.InvoiceType, items []models.InvoiceItem) []models.InvoiceItem {
	out := make([]models.InvoiceItem, len(items))
	copy(out, items)
	if !t.ChargesTax() {
		for i := range out {
			out[i].TaxRate = 0
		}
	}
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = newID()
		}
	}
	return out
}

// Invoices returns every saved invoice in creation order.
func (s *Service) Invoices(ctx context.Context) ([]models.Invoice, error) {
	invoices, err := s.repo.Invoices(ctx)
	if err != nil {
		return nil, wrap("Invoices", "", err)
	}
	return invoices, nil
}

// Get returns the invoice with id.
func (s *Service) Get(ctx context.Context, id string) (models.Invoice, error) {
	inv, err := s.repo.Invoice(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Invoice{}, wrap("Get", id, ErrInvoiceNotFound)
	}
	if err != nil {
		return models.Invoice{}, wrap("Get", id, err)
	}
	return inv, nil
}

// SetStatus changes the payment status of an invoice. Nothing else on the
// record is touched.
func (s *Service) SetStatus(ctx context.Context, id string, status models.InvoiceStatus) (models.Invoice, error) {
	const op = "SetStatus"

	if _, err := models.ParseInvoiceStatus(string(status)); err != nil {
		return models.Invoice{}, wrap(op, id, NewValidationError("status", status, "must be one of Draft, Paid, Unpaid"))
	}

	inv, err := s.Get(ctx, id)
	if err != nil {
		return models.Invoice{}, err
	}

	previous := inv.Status
	inv.Status = status
	if err := s.repo.SaveInvoice(ctx, inv); err != nil {
		return models.Invoice{}, wrap(op, id, err)
	}

	s.log.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Str("from", string(previous)).
		Str("to", string(status)).
		Msg("Invoice status changed")

	return inv, nil
}

// Delete removes an invoice. Its number is not reused.
func (s *Service) Delete(ctx context.Context, id string) error {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return wrap("Delete", id, err)
	}

	s.log.Info().Str("invoice_number", inv.InvoiceNumber).Msg("Invoice deleted")
	return nil
}

// Recalculate re-derives every computed field of inv from its items and
// embedded parties. Item rates are cleared for types that carry no GST.
func Recalculate(inv models.Invoice) models.Invoice {
	inv.Items = normalizeItems(inv.Type, inv.Items)
	calc.Summarize(inv.Type, inv.Seller, inv.Buyer, inv.Items).Apply(&inv)
	return inv
}

// Recompute re-derives the stored totals of invoice id and saves them when
// they or the normalized items changed. It reports whether the record was rewritten.
func (s *Service) Recompute(ctx context.Context, id string) (models.Invoice, bool, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return models.Invoice{}, false, err
	}

	fixed := Recalculate(inv)
	if summaryOf(fixed) == summaryOf(inv) && slices.Equal(fixed.Items, inv.Items) {
		return inv, false, nil
	}
	if err := s.repo.SaveInvoice(ctx, fixed); err != nil {
		return models.Invoice{}, false, wrap("Recompute", id, err)
	}

	s.log.Info().
		Str("invoice_number", fixed.InvoiceNumber).
		Float64("old_total", inv.TotalAmount).
		Float64("new_total", fixed.TotalAmount).
		Msg("Invoice totals recomputed")
	return fixed, true, nil
}

func summaryOf(inv models.Invoice) calc.Summary {
	return calc.Summary{
		InvoiceTotals: calc.InvoiceTotals{TotalBeforeTax: inv.TotalBeforeTax, TotalTax: inv.TotalTax, TotalAmount: inv.TotalAmount},
		TaxSplit:      calc.TaxSplit{CGST: inv.CGST, SGST: inv.SGST, IGST: inv.IGST},
		IsInterState:  inv.IsInterState,
		AmountInWords: inv.AmountInWords,
	}
}
