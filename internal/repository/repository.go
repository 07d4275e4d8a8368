// Package repository persists the business profile, clients, products and
// invoices as four independent JSON values in a storage.Store.
//
// Reads never fail on bad data: a missing or malformed value degrades to the
// default profile or an empty collection. Only store I/O errors are
// returned. Writes replace a whole collection; there is no atomicity across
// collections.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"gstinvoice/internal/logger"
	"gstinvoice/internal/storage"
	"gstinvoice/pkg/models"
)

// Fixed store keys.
const (
	KeyProfile    = "gst_app_profile"
	KeyClients    = "gst_app_clients"
	KeyProducts   = "gst_app_products"
	KeyInvoices   = "gst_app_invoices"
	KeyInvoiceSeq = "gst_app_invoice_seq"
)

// ErrNotFound is returned by single-record lookups.
var ErrNotFound = errors.New("record not found")

// Repository is the persistence adapter over a Store.
type Repository struct {
	store storage.Store
	log   zerolog.Logger

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// New returns a Repository backed by store.
func New(store storage.Store) *Repository {
	return &Repository{
		store: store,
		log:   logger.WithComponent("repository"),
	}
}

// mutate runs fn under the in-process lock and, when the store is shared
// between processes, the store's lock on key.
func (r *Repository) mutate(ctx context.Context, key string, fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if locker, ok := r.store.(storage.Locker); ok {
		unlock, err := locker.Lock(ctx, key)
		if err != nil {
			return err
		}
		defer unlock()
	}
	return fn()
}

// Profile returns the saved business profile or models.DefaultProfile.
func (r *Repository) Profile(ctx context.Context) (models.BusinessProfile, error) {
	var p models.BusinessProfile
	found, err := r.read(ctx, KeyProfile, &p)
	if err != nil {
		return models.BusinessProfile{}, err
	}
	if !found || p == (models.BusinessProfile{}) {
		return models.DefaultProfile(), nil
	}
	return p, nil
}

// SaveProfile replaces the business profile.
func (r *Repository) SaveProfile(ctx context.Context, p models.BusinessProfile) error {
	return r.write(ctx, KeyProfile, p)
}

// read decodes the value under key into dst. It reports false, with no
// error, when the key is absent or its value does not decode.
func (r *Repository) read(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		r.log.Warn().
			Err(err).
			Str("key", key).
			Int("bytes", len(data)).
			Msg("Stored value is malformed, using default")
		return false, nil
	}
	return true, nil
}

func (r *Repository) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
