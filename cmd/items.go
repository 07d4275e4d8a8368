package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"gstinvoice/internal/invoice"
)

// parseItemSpec turns "name=Widget,qty=2,price=100,discount=10,tax=18,hsn=8471"
// into draft item updates. Only name is required.
func parseItemSpec(spec string) ([]invoice.ItemUpdate, error) {
	var (
		updates []invoice.ItemUpdate
		hasName bool
	)

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("item %q: %q is not key=value", spec, part)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "name":
			if value == "" {
				return nil, fmt.Errorf("item %q: name is empty", spec)
			}
			hasName = true
			updates = append(updates, invoice.SetName(value))
		case "hsn", "sac", "hsnsac":
			updates = append(updates, invoice.SetHSNSAC(value))
		case "qty", "quantity", "price", "rate", "discount", "disc", "tax", "gst":
			n, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
			if err != nil {
				return nil, fmt.Errorf("item %q: %s must be a number, got %q", spec, key, value)
			}
			updates = append(updates, numericUpdate(key, n))
		default:
			return nil, fmt.Errorf("item %q: unknown field %q (want name, hsn, qty, price, discount, tax)", spec, key)
		}
	}

	if !hasName {
		return nil, fmt.Errorf("item %q: name is required", spec)
	}
	return updates, nil
}

func numericUpdate(key string, n float64) invoice.ItemUpdate {
	switch key {
	case "qty", "quantity":
		return invoice.SetQuantity(n)
	case "price", "rate":
		return invoice.SetPrice(n)
	case "discount", "disc":
		return invoice.SetDiscount(n)
	default:
		return invoice.SetTaxRate(n)
	}
}

// parseProductSpec splits "product-id[:qty]".
func parseProductSpec(spec string) (id string, qty float64, err error) {
	id, q, hasQty := strings.Cut(strings.TrimSpace(spec), ":")
	if id == "" {
		return "", 0, fmt.Errorf("product %q: id is empty", spec)
	}
	if !hasQty {
		return id, 1, nil
	}
	qty, err = strconv.ParseFloat(strings.TrimSpace(q), 64)
	if err != nil {
		return "", 0, fmt.Errorf("product %q: quantity must be a number", spec)
	}
	return id, qty, nil
}
