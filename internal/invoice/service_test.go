package invoice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstinvoice/internal/repository"
	"gstinvoice/internal/storage"
	"gstinvoice/pkg/models"
)

const epsilon = 1e-9

func newTestService(t *testing.T) (*Service, *repository.Repository) {
	t.Helper()
	repo := repository.New(storage.NewMemory())
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC) }
	return svc, repo
}

func seedProfile(t *testing.T, repo *repository.Repository, gstin string) {
	t.Helper()
	require.NoError(t, repo.SaveProfile(context.Background(), models.BusinessProfile{
		Name:  "Acme Traders",
		GSTIN: gstin,
		Terms: "Net 30",
	}))
}

func widgetDraft(svc *Service, buyer BuyerRef) *Draft {
	d := svc.NewDraft(models.InvoiceTypeGST)
	d.Buyer = buyer
	id := d.AddItem()
	_ = d.Update(id, SetName("Widget"), SetQuantity(2), SetPrice(100), SetDiscount(10), SetTaxRate(18))
	return d
}

func TestCreateIntraStateInvoice(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	seedProfile(t, repo, "27AAAAA0000A1Z5")

	client, err := svc.SaveClient(ctx, models.Client{Name: "Blue Mart", GSTIN: "27BBBBB1111B2Z6"})
	require.NoError(t, err)

	inv, err := svc.Create(ctx, widgetDraft(svc, ExistingClient{ID: client.ID}))
	require.NoError(t, err)

	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, "INV-0001", inv.InvoiceNumber)
	assert.Equal(t, "2024-04-15", inv.Date)
	assert.Equal(t, "2024-04-15", inv.DueDate)
	assert.Equal(t, models.StatusUnpaid, inv.Status)
	assert.Equal(t, "Acme Traders", inv.Seller.Name)
	assert.Equal(t, client, inv.Buyer)

	assert.InDelta(t, 180, inv.TotalBeforeTax, epsilon)
	assert.InDelta(t, 32.4, inv.TotalTax, epsilon)
	assert.InDelta(t, 212.4, inv.TotalAmount, epsilon)
	assert.False(t, inv.IsInterState)
	assert.InDelta(t, 16.2, inv.CGST, epsilon)
	assert.InDelta(t, 16.2, inv.SGST, epsilon)
	assert.Zero(t, inv.IGST)
	assert.Equal(t, "Rupees 212 Only", inv.AmountInWords)

	stored, err := repo.Invoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv, stored)
}

func TestCreateInterStateInvoice(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	seedProfile(t, repo, "27AAAAA0000A1Z5")

	inv, err := svc.Create(ctx, widgetDraft(svc, NewClient{Client: models.Client{Name: "Far Away Ltd", GSTIN: "29bbbbb1111b2z6"}}))
	require.NoError(t, err)

	assert.True(t, inv.IsInterState)
	assert.Zero(t, inv.CGST)
	assert.Zero(t, inv.SGST)
	assert.InDelta(t, inv.TotalTax, inv.IGST, epsilon)
	assert.Equal(t, "29BBBBB1111B2Z6", inv.Buyer.GSTIN)
}

func TestCreateSavesNewClientFirst(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	inv, err := svc.Create(ctx, widgetDraft(svc, NewClient{Client: models.Client{Name: "Walk-in", Phone: "9000000000"}}))
	require.NoError(t, err)

	clients, err := repo.Clients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.NotEmpty(t, clients[0].ID)
	assert.Equal(t, clients[0], inv.Buyer)
}

func TestCreateNewClientNeverReplacesSavedClient(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	existing, err := svc.SaveClient(ctx, models.Client{Name: "Blue Mart"})
	require.NoError(t, err)

	inv, err := svc.Create(ctx, widgetDraft(svc, NewClient{Client: models.Client{ID: existing.ID, Name: "Walk-in"}}))
	require.NoError(t, err)
	assert.NotEqual(t, existing.ID, inv.Buyer.ID)

	clients, err := repo.Clients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, existing, clients[0])
	assert.Equal(t, "Walk-in", clients[1].Name)
}

func TestCreateNonGSTClearsTax(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	seedProfile(t, repo, "27AAAAA0000A1Z5")

	for _, typ := range []models.InvoiceType{models.InvoiceTypeNonGST, models.InvoiceTypeBill} {
		t.Run(string(typ), func(t *testing.T) {
			d := widgetDraft(svc, NewClient{Client: models.Client{Name: "Cash"}})
			d.Type = typ

			inv, err := svc.Create(ctx, d)
			require.NoError(t, err)

			assert.Zero(t, inv.Items[0].TaxRate)
			assert.Zero(t, inv.TotalTax)
			assert.Zero(t, inv.CGST)
			assert.Zero(t, inv.SGST)
			assert.Zero(t, inv.IGST)
			assert.InDelta(t, 180, inv.TotalAmount, epsilon)

			// The draft itself is left untouched.
			assert.Equal(t, 18.0, d.Items[0].TaxRate)
		})
	}
}

func TestCreateRejectsIncompleteDraft(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	t.Run("no buyer and no items", func(t *testing.T) {
		_, err := svc.Create(ctx, svc.NewDraft(models.InvoiceTypeGST))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)

		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		fields := make([]string, 0, len(verrs))
		for _, e := range verrs {
			fields = append(fields, e.Field)
		}
		assert.ElementsMatch(t, []string{"buyer", "items"}, fields)
	})

	t.Run("new client is not saved when draft is invalid", func(t *testing.T) {
		d := svc.NewDraft(models.InvoiceTypeGST)
		d.Buyer = NewClient{Client: models.Client{Name: "Ghost"}}
		_, err := svc.Create(ctx, d)
		require.ErrorIs(t, err, ErrValidation)

		clients, err := repo.Clients(ctx)
		require.NoError(t, err)
		assert.Empty(t, clients)
	})

	t.Run("bad tax rate", func(t *testing.T) {
		d := widgetDraft(svc, NewClient{Client: models.Client{Name: "X"}})
		d.Items[0].TaxRate = 7
		_, err := svc.Create(ctx, d)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "items[0].taxRate", verr.Field)
	})

	t.Run("due before date", func(t *testing.T) {
		d := widgetDraft(svc, NewClient{Client: models.Client{Name: "X"}})
		d.DueDate = "2024-04-01"
		_, err := svc.Create(ctx, d)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "dueDate", verr.Field)
	})

	t.Run("malformed date", func(t *testing.T) {
		d := widgetDraft(svc, NewClient{Client: models.Client{Name: "X"}})
		d.Date = "15/04/2024"
		_, err := svc.Create(ctx, d)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown client", func(t *testing.T) {
		_, err := svc.Create(ctx, widgetDraft(svc, ExistingClient{ID: "nobody"}))
		assert.ErrorIs(t, err, ErrClientNotFound)
	})

	invoices, err := repo.Invoices(ctx)
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestInvoiceKeepsSnapshotsAfterSourceEdits(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	client, err := svc.SaveClient(ctx, models.Client{Name: "Blue Mart"})
	require.NoError(t, err)
	product, err := svc.SaveProduct(ctx, models.Product{Name: "Cable", SellingPrice: 250, TaxRate: 18})
	require.NoError(t, err)

	d := svc.NewDraft(models.InvoiceTypeGST)
	d.Buyer = ExistingClient{ID: client.ID}
	require.NoError(t, d.Update(d.AddItem(), SelectProduct(product)))
	inv, err := svc.Create(ctx, d)
	require.NoError(t, err)

	product.SellingPrice = 300
	_, err = svc.SaveProduct(ctx, product)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteClient(ctx, client.ID))
	require.NoError(t, svc.SaveProfile(ctx, models.BusinessProfile{Name: "Renamed Co"}))

	stored, err := repo.Invoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, stored.Items[0].Price)
	assert.Equal(t, "Blue Mart", stored.Buyer.Name)
	assert.Equal(t, models.DefaultProfile().Name, stored.Seller.Name)
}

func TestInvoiceNumbersSurviveDeletion(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	first, err := svc.Create(ctx, widgetDraft(svc, NewClient{Client: models.Client{Name: "A"}}))
	require.NoError(t, err)
	second, err := svc.Create(ctx, widgetDraft(svc, NewClient{Client: models.Client{Name: "B"}}))
	require.NoError(t, err)
	assert.Equal(t, "INV-0002", second.InvoiceNumber)

	require.NoError(t, svc.Delete(ctx, second.ID))

	third, err := svc.Create(ctx, widgetDraft(svc, NewClient{Client: models.Client{Name: "C"}}))
	require.NoError(t, err)
	assert.Equal(t, "INV-0003", third.InvoiceNumber)
	assert.NotEqual(t, first.InvoiceNumber, third.InvoiceNumber)
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	inv, err := svc.Create(ctx, widgetDraft(svc, NewClient{Client: models.Client{Name: "A"}}))
	require.NoError(t, err)

	paid, err := svc.SetStatus(ctx, inv.ID, models.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.Status)
	assert.Equal(t, inv.TotalAmount, paid.TotalAmount)

	got, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.Status)

	_, err = svc.SetStatus(ctx, inv.ID, "Refunded")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetStatus(ctx, "missing", models.StatusPaid)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestDeleteUnknownInvoice(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)

	var invErr *InvoiceError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "Get", invErr.Op)
	assert.Equal(t, "missing", invErr.ID)
}

func TestPreviewDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	seedProfile(t, repo, "27AAAAA0000A1Z5")

	s, err := svc.Preview(ctx, widgetDraft(svc, NewClient{Client: models.Client{Name: "X", GSTIN: "29BBBBB1111B2Z6"}}))
	require.NoError(t, err)
	assert.True(t, s.IsInterState)
	assert.InDelta(t, 212.4, s.TotalAmount, epsilon)

	clients, err := repo.Clients(ctx)
	require.NoError(t, err)
	assert.Empty(t, clients)

	next, err := repo.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", next)
}

func TestRecalculate(t *testing.T) {
	inv := models.Invoice{
		Type:   models.InvoiceTypeGST,
		Seller: models.BusinessProfile{GSTIN: "27AAAAA0000A1Z5"},
		Buyer:  models.Client{GSTIN: "29BBBBB1111B2Z6"},
		Items:  []models.InvoiceItem{{Quantity: 2, Price: 100, Discount: 10, TaxRate: 18}},
	}

	got := Recalculate(inv)
	assert.True(t, got.IsInterState)
	assert.InDelta(t, 32.4, got.IGST, epsilon)
	assert.Zero(t, inv.TotalAmount)
}

func TestRecompute(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	inv, err := svc.Create(ctx, widgetDraft(svc, NewClient{Client: models.Client{Name: "Blue Mart"}}))
	require.NoError(t, err)

	_, changed, err := svc.Recompute(ctx, inv.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	stale := inv
	stale.TotalAmount = 1
	stale.AmountInWords = ""
	require.NoError(t, repo.SaveInvoice(ctx, stale))

	fixed, changed, err := svc.Recompute(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.InDelta(t, inv.TotalAmount, fixed.TotalAmount, epsilon)

	stored, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.AmountInWords, stored.AmountInWords)

	bill := inv
	bill.Type = models.InvoiceTypeBill
	bill.Items = []models.InvoiceItem{{ID: "i1", Name: "Rice", Quantity: 1, Price: 100, TaxRate: 18}}
	bill.TotalBeforeTax, bill.TotalTax, bill.TotalAmount = 100, 0, 100
	bill.CGST, bill.SGST, bill.IGST = 0, 0, 0
	bill.IsInterState = false
	bill.AmountInWords = Recalculate(bill).AmountInWords
	require.NoError(t, repo.SaveInvoice(ctx, bill))

	cleared, changed, err := svc.Recompute(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Zero(t, cleared.Items[0].TaxRate)

	_, _, err = svc.Recompute(ctx, "missing")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestNextNumberDoesNotReserve(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for i := 0; i < 2; i++ {
		n, err := svc.NextNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, "INV-0001", n)
	}

	inv, err := svc.Create(ctx, widgetDraft(svc, NewClient{Client: models.Client{Name: "A"}}))
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", inv.InvoiceNumber)

	n, err := svc.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-0002", n)
}

func TestRecalculateClearsTaxOnUntaxedTypes(t *testing.T) {
	for _, typ := range []models.InvoiceType{models.InvoiceTypeBill, models.InvoiceTypeNonGST} {
		t.Run(string(typ), func(t *testing.T) {
			inv := models.Invoice{
				Type:   typ,
				Seller: models.BusinessProfile{GSTIN: "27AAAAA0000A1Z5"},
				Items:  []models.InvoiceItem{{ID: "i1", Quantity: 1, Price: 100, TaxRate: 18}},
			}

			got := Recalculate(inv)
			assert.Zero(t, got.Items[0].TaxRate)
			assert.Equal(t, "i1", got.Items[0].ID)
			assert.Zero(t, got.TotalTax)
			assert.InDelta(t, got.TotalTax, got.CGST+got.SGST+got.IGST, epsilon)
			assert.InDelta(t, 100, got.TotalAmount, epsilon)
			assert.Equal(t, 18.0, inv.Items[0].TaxRate)
		})
	}
}

// failingInvoiceRepo fails every invoice write.
type failingInvoiceRepo struct {
	*repository.Repository
}

func (failingInvoiceRepo) SaveInvoice(context.Context, models.Invoice) error {
	return errors.New("disk full")
}

func TestNewClientSurvivesFailedInvoiceWrite(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(storage.NewMemory())
	svc := NewService(failingInvoiceRepo{repo})

	_, err := svc.Create(ctx, widgetDraft(svc, NewClient{Client: models.Client{Name: "Orphan"}}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	clients, err := repo.Clients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Orphan", clients[0].Name)
}
