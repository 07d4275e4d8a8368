package repository

import (
	"context"

	"gstinvoice/pkg/models"
)

func (r *Repository) clients() collection[models.Client] {
	return collection[models.Client]{repo: r, key: KeyClients, id: func(c models.Client) string { return c.ID }}
}

func (r *Repository) products() collection[models.Product] {
	return collection[models.Product]{repo: r, key: KeyProducts, id: func(p models.Product) string { return p.ID }}
}

func (r *Repository) invoices() collection[models.Invoice] {
	return collection[models.Invoice]{repo: r, key: KeyInvoices, id: func(i models.Invoice) string { return i.ID }}
}

// Clients returns every client in insertion order.
func (r *Repository) Clients(ctx context.Context) ([]models.Client, error) {
	return r.clients().all(ctx)
}

// Client looks up one client by id.
func (r *Repository) Client(ctx context.Context, id string) (models.Client, error) {
	return r.clients().get(ctx, id)
}

// SaveClient inserts c or replaces the client with the same id.
func (r *Repository) SaveClient(ctx context.Context, c models.Client) error {
	return r.clients().upsert(ctx, c)
}

// DeleteClient removes the client with id. Invoices keep their own copy.
func (r *Repository) DeleteClient(ctx context.Context, id string) error {
	return r.clients().remove(ctx, id)
}

// Products returns the catalog in insertion order.
func (r *Repository) Products(ctx context.Context) ([]models.Product, error) {
	return r.products().all(ctx)
}

func (r *Repository) Product(ctx context.Context, id string) (models.Product, error) {
	return r.products().get(ctx, id)
}

func (r *Repository) SaveProduct(ctx context.Context, p models.Product) error {
	return r.products().upsert(ctx, p)
}

func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	return r.products().remove(ctx, id)
}

// Invoices returns every invoice in creation order.
func (r *Repository) Invoices(ctx context.Context) ([]models.Invoice, error) {
	return r.invoices().all(ctx)
}

func (r *Repository) Invoice(ctx context.Context, id string) (models.Invoice, error) {
	return r.invoices().get(ctx, id)
}

func (r *Repository) SaveInvoice(ctx context.Context, inv models.Invoice) error {
	return r.invoices().upsert(ctx, inv)
}

func (r *Repository) DeleteInvoice(ctx context.Context, id string) error {
	return r.invoices().remove(ctx, id)
}
