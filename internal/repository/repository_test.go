package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstinvoice/internal/storage"
	"gstinvoice/pkg/models"
)

func newTestRepo(t *testing.T) (*Repository, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	return New(store), store
}

func TestProfileDefaultsAndReplace(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	p, err := repo.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProfile(), p)

	saved := models.BusinessProfile{Name: "Acme Traders", GSTIN: "27AAAAA0000A1Z5", Terms: "Net 30"}
	require.NoError(t, repo.SaveProfile(ctx, saved))

	p, err = repo.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, p)
}

func TestMalformedValuesDegradeSilently(t *testing.T) {
	ctx := context.Background()
	repo, store := newTestRepo(t)

	for _, key := range []string{KeyProfile, KeyClients, KeyProducts, KeyInvoices, KeyInvoiceSeq} {
		require.NoError(t, store.Set(ctx, key, []byte("{not json")))
	}

	p, err := repo.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProfile(), p)

	clients, err := repo.Clients(ctx)
	require.NoError(t, err)
	assert.Empty(t, clients)

	products, err := repo.Products(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	invoices, err := repo.Invoices(ctx)
	require.NoError(t, err)
	assert.Empty(t, invoices)

	next, err := repo.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", next)
}

func TestNullCollectionReadsEmpty(t *testing.T) {
	ctx := context.Background()
	repo, store := newTestRepo(t)
	require.NoError(t, store.Set(ctx, KeyClients, []byte("null")))

	clients, err := repo.Clients(ctx)
	require.NoError(t, err)
	assert.NotNil(t, clients)
	assert.Empty(t, clients)
}

func TestEmptyProfileReadsDefault(t *testing.T) {
	ctx := context.Background()
	repo, store := newTestRepo(t)

	for _, raw := range []string{"null", "{}"} {
		require.NoError(t, store.Set(ctx, KeyProfile, []byte(raw)))
		p, err := repo.Profile(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultProfile(), p, raw)
	}
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	c := models.Client{
		ID:      "1717171717171",
		Name:    "Blue Mart",
		Address: "4 Market Rd",
		Phone:   "9000000000",
		Email:   "buy@bluemart.in",
		GSTIN:   "29BBBBB1111B2Z6",
	}
	require.NoError(t, repo.SaveClient(ctx, c))

	clients, err := repo.Clients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, c, clients[0])

	got, err := repo.Client(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestUpsertReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	require.NoError(t, repo.SaveClient(ctx, models.Client{ID: "a", Name: "A"}))
	require.NoError(t, repo.SaveClient(ctx, models.Client{ID: "b", Name: "B"}))
	require.NoError(t, repo.SaveClient(ctx, models.Client{ID: "c", Name: "C"}))
	require.NoError(t, repo.SaveClient(ctx, models.Client{ID: "b", Name: "B2"}))

	clients, err := repo.Clients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 3)
	assert.Equal(t, []string{"A", "B2", "C"}, []string{clients[0].Name, clients[1].Name, clients[2].Name})
}

func TestDeleteRemovesOnlyMatchingRecord(t *testing.T) {
	ctx := context.Background()

	for _, target := range []string{"a", "b", "c"} {
		t.Run(target, func(t *testing.T) {
			repo, _ := newTestRepo(t)
			all := []models.Client{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}}
			for _, c := range all {
				require.NoError(t, repo.SaveClient(ctx, c))
			}

			require.NoError(t, repo.DeleteClient(ctx, target))

			var want []models.Client
			for _, c := range all {
				if c.ID != target {
					want = append(want, c)
				}
			}
			got, err := repo.Clients(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			_, err = repo.Client(ctx, target)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestDeleteUnknownIDLeavesCollection(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)
	require.NoError(t, repo.SaveProduct(ctx, models.Product{ID: "p1", Name: "Widget", TaxRate: 18}))

	require.NoError(t, repo.DeleteProduct(ctx, "nope"))

	products, err := repo.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestProductAndInvoiceCollectionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	stock := 5
	require.NoError(t, repo.SaveProduct(ctx, models.Product{ID: "x", Name: "Widget", SellingPrice: 100, TaxRate: 18, Stock: &stock}))
	require.NoError(t, repo.SaveInvoice(ctx, models.Invoice{ID: "x", InvoiceNumber: "INV-0001", Type: models.InvoiceTypeGST}))

	p, err := repo.Product(ctx, "x")
	require.NoError(t, err)
	require.NotNil(t, p.Stock)
	assert.Equal(t, 5, *p.Stock)

	inv, err := repo.Invoice(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", inv.InvoiceNumber)

	require.NoError(t, repo.DeleteInvoice(ctx, "x"))
	_, err = repo.Product(ctx, "x")
	assert.NoError(t, err)
}
