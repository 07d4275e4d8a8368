package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstinvoice/internal/invoice"
	"gstinvoice/pkg/models"
)

func TestParseItemSpec(t *testing.T) {
	updates, err := parseItemSpec("name=Widget, qty=2, price=100, discount=10%, tax=18, hsn=8471")
	require.NoError(t, err)

	d := invoice.NewDraft(models.InvoiceTypeGST, "2024-04-01")
	id := d.AddItem()
	require.NoError(t, d.Update(id, updates...))

	item := d.Items[0]
	assert.Equal(t, "Widget", item.Name)
	assert.Equal(t, "8471", item.HSNSAC)
	assert.InDelta(t, 2, item.Quantity, 1e-9)
	assert.InDelta(t, 100, item.Price, 1e-9)
	assert.InDelta(t, 10, item.Discount, 1e-9)
	assert.InDelta(t, 18, item.TaxRate, 1e-9)
}

func TestParseItemSpecErrors(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want string
	}{
		{"no name", "qty=2,price=10", "name is required"},
		{"empty name", "name=", "name is empty"},
		{"bad number", "name=A,qty=two", "qty must be a number"},
		{"unknown field", "name=A,colour=red", "unknown field"},
		{"missing equals", "name=A,price", "not key=value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseItemSpec(tt.spec)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseProductSpec(t *testing.T) {
	id, qty, err := parseProductSpec("p-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", id)
	assert.InDelta(t, 1, qty, 1e-9)

	id, qty, err = parseProductSpec("p-2:3.5")
	require.NoError(t, err)
	assert.Equal(t, "p-2", id)
	assert.InDelta(t, 3.5, qty, 1e-9)

	_, _, err = parseProductSpec(":2")
	assert.Error(t, err)

	_, _, err = parseProductSpec("p-3:x")
	assert.Error(t, err)
}
