package service

import (
	"strings"
	"testing"

	"github.com/Neruaka/jana-distribution/internal/model"
)

func TestCanTransitionTable(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{model.StatusPending, model.StatusPaid, true},
		{model.StatusPending, model.StatusCancelled, true},
		{model.StatusPending, model.StatusShipped, false},
		{model.StatusPaid, model.StatusPreparing, true},
		{model.StatusPaid, model.StatusCancelled, true},
		{model.StatusPaid, model.StatusDelivered, false},
		{model.StatusPreparing, model.StatusShipped, true},
		{model.StatusPreparing, model.StatusCancelled, true},
		{model.StatusShipped, model.StatusDelivered, true},
		{model.StatusShipped, model.StatusCancelled, false},
		{model.StatusShipped, model.StatusPending, false},
		{model.StatusDelivered, model.StatusPending, false},
		{model.StatusDelivered, model.StatusCancelled, false},
		{model.StatusCancelled, model.StatusPending, false},
		{model.StatusCancelled, model.StatusPaid, false},
	}
	for _, tc := range tests {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTransitionErrorNamesAllowedTargets(t *testing.T) {
	err := transitionError(model.StatusShipped, model.StatusPending)
	if err.Status != 400 {
		t.Fatalf("status = %d, want 400", err.Status)
	}
	if !strings.Contains(err.Message, model.StatusShipped) || !strings.Contains(err.Message, model.StatusPending) {
		t.Fatalf("message should name the attempted transition: %q", err.Message)
	}
	if !strings.Contains(err.Message, model.StatusDelivered) {
		t.Fatalf("message should name the allowed target %s: %q", model.StatusDelivered, err.Message)
	}
}

func TestTransitionErrorTerminalStatus(t *testing.T) {
	err := transitionError(model.StatusDelivered, model.StatusPending)
	if !strings.Contains(err.Message, "final") {
		t.Fatalf("terminal status message should say the status is final: %q", err.Message)
	}
}

func TestComputeTotalsFreezesCartLines(t *testing.T) {
	items := []model.CartItem{
		{ProductID: 7, ProductName: "Huile d'olive 5L", Quantity: 2, Price: 10, PromoPrice: promo(8), TaxRate: 20},
	}
	decorateItems(items)
	lines, totals := computeTotals(items, 5.90, 0)
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	l := lines[0]
	if l.ProductID == nil || *l.ProductID != 7 {
		t.Fatalf("line productId = %v, want 7", l.ProductID)
	}
	if l.UnitPriceHT != 8.00 || l.LineTotalHT != 16.00 || l.LineTVA != 3.20 || l.LineTotalTTC != 19.20 {
		t.Fatalf("captured line amounts wrong: %+v", l)
	}
	if totals.SubtotalHT != 16.00 || totals.TotalTVA != 3.20 {
		t.Fatalf("totals = %+v", totals)
	}
	if totals.ShippingFee != 5.90 {
		t.Fatalf("shippingFee = %v, want 5.90", totals.ShippingFee)
	}
	if totals.TotalTTC != 25.10 {
		t.Fatalf("totalTTC = %v, want 25.10", totals.TotalTTC)
	}
}

func TestComputeTotalsFreeShippingThreshold(t *testing.T) {
	items := []model.CartItem{
		{ProductID: 1, ProductName: "Riz 25kg", Quantity: 10, Price: 10, TaxRate: 0},
	}
	decorateItems(items)

	// Goods total 100.00, threshold 80: shipping waived.
	_, totals := computeTotals(items, 5.90, 80)
	if totals.ShippingFee != 0 {
		t.Fatalf("shippingFee = %v, want 0 above the threshold", totals.ShippingFee)
	}
	if totals.TotalTTC != 100.00 {
		t.Fatalf("totalTTC = %v, want 100.00", totals.TotalTTC)
	}

	// Threshold 150: fee applies.
	_, totals = computeTotals(items, 5.90, 150)
	if totals.ShippingFee != 5.90 {
		t.Fatalf("shippingFee = %v, want 5.90 below the threshold", totals.ShippingFee)
	}

	// Threshold 0 means no free shipping at all.
	_, totals = computeTotals(items, 5.90, 0)
	if totals.ShippingFee != 5.90 {
		t.Fatalf("shippingFee = %v, want 5.90 with no threshold", totals.ShippingFee)
	}
}

func TestValidateAddress(t *testing.T) {
	valid := model.Address{
		Name: "Benali", Surname: "Yasmine", Street: "12 rue des Halles",
		PostalCode: "75001", City: "Paris",
	}
	if err := validateAddress("shippingAddress", valid); err != nil {
		t.Fatalf("valid address rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*model.Address)
		field  string
	}{
		{"missing name", func(a *model.Address) { a.Name = "" }, "shippingAddress.name"},
		{"missing street", func(a *model.Address) { a.Street = "" }, "shippingAddress.street"},
		{"missing city", func(a *model.Address) { a.City = "" }, "shippingAddress.city"},
		{"short postal code", func(a *model.Address) { a.PostalCode = "7500" }, "shippingAddress.postalCode"},
		{"alpha postal code", func(a *model.Address) { a.PostalCode = "7500A" }, "shippingAddress.postalCode"},
		{"long postal code", func(a *model.Address) { a.PostalCode = "750011" }, "shippingAddress.postalCode"},
	}
	for _, tc := range tests {
		a := valid
		tc.mutate(&a)
		err := validateAddress("shippingAddress", a)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		found := false
		for _, f := range err.Fields {
			if f.Field == tc.field {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: field %s not reported in %+v", tc.name, tc.field, err.Fields)
		}
	}
}

func TestValidPaymentMode(t *testing.T) {
	for _, mode := range []string{model.PaymentTransfer, model.PaymentCard, model.PaymentCheque} {
		if !validPaymentMode(mode) {
			t.Errorf("%s should be accepted", mode)
		}
	}
	for _, mode := range []string{"", "PAYPAL", "virement"} {
		if validPaymentMode(mode) {
			t.Errorf("%q should be rejected", mode)
		}
	}
}
