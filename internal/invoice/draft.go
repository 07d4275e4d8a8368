package invoice

import (
	"github.com/google/uuid"

	"gstinvoice/pkg/models"
)

// newID returns a time-ordered unique id for new records.
var newID = func() string {
	return uuid.Must(uuid.NewV7()).String()
}

// BuyerRef identifies the buyer of a draft: either an existing client or a
// client entered with the invoice. It is resolved to a concrete Client
// before the invoice is assembled.
type BuyerRef interface {
	isBuyerRef()
}

// ExistingClient refers to a saved client by id.
type ExistingClient struct {
	ID string
}

// NewClient carries a client that is saved together with the invoice.
type NewClient struct {
	Client models.Client
}

func (ExistingClient) isBuyerRef() {}
func (NewClient) isBuyerRef()      {}

// Draft is an invoice being composed.
type Draft struct {
	Type    models.InvoiceType
	Date    string // YYYY-MM-DD
	DueDate string // YYYY-MM-DD
	Buyer   BuyerRef
	Items   []models.InvoiceItem

	// Status of the saved invoice; empty means Unpaid.
	Status models.InvoiceStatus
}

// NewDraft starts an empty draft with both dates set to date.
func NewDraft(t models.InvoiceType, date string) *Draft {
	return &Draft{
		Type:    t,
		Date:    date,
		DueDate: date,
	}
}

// AddItem appends a blank line and returns its id. New lines default to
// quantity 1 and the standard GST rate, or 0% when the type carries no tax.
func (d *Draft) AddItem() string {
	item := models.InvoiceItem{
		ID:       newID(),
		Quantity: 1,
		TaxRate:  defaultRate(d.Type),
	}
	d.Items = append(d.Items, item)
	return item.ID
}

// RemoveItem drops the item with id.
func (d *Draft) RemoveItem(id string) error {
	for i := range d.Items {
		if d.Items[i].ID == id {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

// Update applies updates to the item with id, in order.
func (d *Draft) Update(id string, updates ...ItemUpdate) error {
	for i := range d.Items {
		if d.Items[i].ID != id {
			continue
		}
		for _, u := range updates {
			u.apply(&d.Items[i], d.Type)
		}
		return nil
	}
	return ErrItemNotFound
}

func defaultRate(t models.InvoiceType) float64 {
	if !t.ChargesTax() {
		return 0
	}
	return models.DefaultTaxRate
}

// ItemUpdate is a typed change to one field of a draft item.
type ItemUpdate interface {
	apply(item *models.InvoiceItem, t models.InvoiceType)
}

type (
	SetName     string
	SetHSNSAC   string
	SetQuantity float64
	SetPrice    float64
	SetDiscount float64 // Percentage
	SetTaxRate  float64 // Percentage
)

func (u SetName) apply(item *models.InvoiceItem, _ models.InvoiceType)     { item.Name = string(u) }
func (u SetHSNSAC) apply(item *models.InvoiceItem, _ models.InvoiceType)   { item.HSNSAC = string(u) }
func (u SetQuantity) apply(item *models.InvoiceItem, _ models.InvoiceType) { item.Quantity = float64(u) }
func (u SetPrice) apply(item *models.InvoiceItem, _ models.InvoiceType)    { item.Price = float64(u) }
func (u SetDiscount) apply(item *models.InvoiceItem, _ models.InvoiceType) { item.Discount = float64(u) }
func (u SetTaxRate) apply(item *models.InvoiceItem, _ models.InvoiceType)  { item.TaxRate = float64(u) }

type selectProduct struct {
	product models.Product
}

// SelectProduct fills an item from a catalog product. The copy is a
// snapshot; later catalog edits do not reach the item.
func SelectProduct(p models.Product) ItemUpdate {
	return selectProduct{product: p}
}

func (u selectProduct) apply(item *models.InvoiceItem, t models.InvoiceType) {
	item.ProductID = u.product.ID
	item.Name = u.product.Name
	item.HSNSAC = u.product.HSNSAC
	item.Price = u.product.SellingPrice
	item.TaxRate = u.product.TaxRate
	if !t.ChargesTax() {
		item.TaxRate = 0
	}
}
