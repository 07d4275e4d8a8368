package invoice

import (
	"context"
	"errors"
	"strings"

	"gstinvoice/internal/repository"
	"gstinvoice/pkg/models"
)

// SaveClient validates c and upserts it, assigning an id to a new client.
func (s *Service) SaveClient(ctx context.Context, c models.Client) (models.Client, error) {
	const op = "SaveClient"

	c.GSTIN = strings.ToUpper(strings.TrimSpace(c.GSTIN))
	if err := validateRecord(c); err != nil {
		return models.Client{}, wrap(op, c.ID, err)
	}

	created := c.ID == ""
	if created {
		c.ID = newID()
	}
	if err := s.repo.SaveClient(ctx, c); err != nil {
		return models.Client{}, wrap(op, c.ID, err)
	}

	s.log.Info().
		Str("client_id", c.ID).
		Str("name", c.Name).
		Bool("created", created).
		Msg("Client saved")
	return c, nil
}

// DeleteClient removes a client. Invoices already issued keep their copy.
func (s *Service) DeleteClient(ctx context.Context, id string) error {
	const op = "DeleteClient"

	if _, err := s.lookupClient(ctx, id); err != nil {
		return wrap(op, id, err)
	}
	if err := s.repo.DeleteClient(ctx, id); err != nil {
		return wrap(op, id, err)
	}

	s.log.Info().Str("client_id", id).Msg("Client deleted")
	return nil
}

// SaveProduct validates p and upserts it, assigning an id to a new product.
func (s *Service) SaveProduct(ctx context.Context, p models.Product) (models.Product, error) {
	const op = "SaveProduct"

	if err := validateRecord(p); err != nil {
		return models.Product{}, wrap(op, p.ID, err)
	}

	created := p.ID == ""
	if created {
		p.ID = newID()
	}
	if err := s.repo.SaveProduct(ctx, p); err != nil {
		return models.Product{}, wrap(op, p.ID, err)
	}

	s.log.Info().
		Str("product_id", p.ID).
		Str("name", p.Name).
		Float64("tax_rate", p.TaxRate).
		Bool("created", created).
		Msg("Product saved")
	return p, nil
}

// Product returns the catalog entry with id.
func (s *Service) Product(ctx context.Context, id string) (models.Product, error) {
	p, err := s.repo.Product(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Product{}, wrap("Product", id, ErrProductNotFound)
	}
	if err != nil {
		return models.Product{}, wrap("Product", id, err)
	}
	return p, nil
}

// DeleteProduct removes a catalog entry. Invoice items keep their snapshot.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	const op = "DeleteProduct"

	if _, err := s.Product(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return wrap(op, id, err)
	}

	s.log.Info().Str("product_id", id).Msg("Product deleted")
	return nil
}

// Profile returns the current business profile.
func (s *Service) Profile(ctx context.Context) (models.BusinessProfile, error) {
	p, err := s.repo.Profile(ctx)
	return p, wrap("Profile", "", err)
}

// SaveProfile validates and replaces the business profile. Invoices already
// issued keep the seller copy they were created with.
func (s *Service) SaveProfile(ctx context.Context, p models.BusinessProfile) error {
	const op = "SaveProfile"

	p.GSTIN = strings.ToUpper(strings.TrimSpace(p.GSTIN))
	if err := validateRecord(p); err != nil {
		return wrap(op, "", err)
	}
	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return wrap(op, "", err)
	}

	s.log.Info().Str("name", p.Name).Bool("gst_registered", p.GSTIN != "").Msg("Business profile saved")
	return nil
}

// Clients returns the client list.
func (s *Service) Clients(ctx context.Context) ([]models.Client, error) {
	clients, err := s.repo.Clients(ctx)
	if err != nil {
		return nil, wrap("Clients", "", err)
	}
	return clients, nil
}

// Client returns the client with id.
func (s *Service) Client(ctx context.Context, id string) (models.Client, error) {
	c, err := s.lookupClient(ctx, id)
	if err != nil {
		return models.Client{}, wrap("Client", id, err)
	}
	return c, nil
}

// Products returns the product catalog.
func (s *Service) Products(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.Products(ctx)
	if err != nil {
		return nil, wrap("Products", "", err)
	}
	return products, nil
}
