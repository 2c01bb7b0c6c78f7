package service

import (
	"testing"

	"github.com/Neruaka/jana-distribution/internal/model"
)

func promo(v float64) *float64 { return &v }

func TestDecorateItemsAppliesPromoPrice(t *testing.T) {
	items := []model.CartItem{{
		Quantity:   2,
		Price:      10.00,
		PromoPrice: promo(8.00),
		TaxRate:    20,
	}}
	decorateItems(items)
	it := items[0]
	if it.EffectivePrice != 8.00 {
		t.Fatalf("effectivePrice = %v, want 8.00", it.EffectivePrice)
	}
	if it.Subtotal != 16.00 {
		t.Fatalf("subtotal = %v, want 16.00", it.Subtotal)
	}
	if it.TVAAmount != 3.20 {
		t.Fatalf("tvaAmount = %v, want 3.20", it.TVAAmount)
	}
	if it.Total != 19.20 {
		t.Fatalf("total = %v, want 19.20", it.Total)
	}
}

func TestDecorateItemsIgnoresInvalidPromo(t *testing.T) {
	tests := []struct {
		name  string
		promo *float64
		want  float64
	}{
		{"no promo", nil, 10},
		{"promo zero", promo(0), 10},
		{"promo above price", promo(12), 10},
		{"promo equal price", promo(10), 10},
		{"promo below price", promo(7.5), 7.5},
	}
	for _, tc := range tests {
		items := []model.CartItem{{Quantity: 1, Price: 10, PromoPrice: tc.promo}}
		decorateItems(items)
		if items[0].EffectivePrice != tc.want {
			t.Errorf("%s: effectivePrice = %v, want %v", tc.name, items[0].EffectivePrice, tc.want)
		}
	}
}

func TestComputeSummary(t *testing.T) {
	items := []model.CartItem{
		{Quantity: 2, Price: 10, PromoPrice: promo(8), TaxRate: 20},
		{Quantity: 3, Price: 4.50, TaxRate: 5.5},
	}
	decorateItems(items)
	s := computeSummary(items)
	if s.ItemCount != 2 {
		t.Fatalf("itemCount = %d, want 2", s.ItemCount)
	}
	if s.TotalQuantity != 5 {
		t.Fatalf("totalQuantity = %d, want 5", s.TotalQuantity)
	}
	// 16.00 + 13.50
	if s.SubtotalHT != 29.50 {
		t.Fatalf("subtotalHT = %v, want 29.50", s.SubtotalHT)
	}
	// 3.20 + 0.74 (13.50 * 5.5% = 0.7425 rounded per line)
	if s.TotalTVA != 3.94 {
		t.Fatalf("totalTVA = %v, want 3.94", s.TotalTVA)
	}
	if s.TotalTTC != 33.44 {
		t.Fatalf("totalTTC = %v, want 33.44", s.TotalTTC)
	}
}

func TestComputeSummaryEmptyCart(t *testing.T) {
	s := computeSummary(nil)
	if s.ItemCount != 0 || s.TotalQuantity != 0 || s.TotalTTC != 0 {
		t.Fatalf("empty cart summary not zero: %+v", s)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{1.234, 1.23},
		{1.236, 1.24},
		{16.0, 16.0},
		{0.1 + 0.2, 0.30},
	}
	for _, tc := range tests {
		if got := round2(tc.in); got != tc.want {
			t.Errorf("round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValidateItemsFlagsInactiveProduct(t *testing.T) {
	items := []model.CartItem{{ProductID: 1, ProductName: "Huile d'olive", IsActive: false, StockQuantity: 10, Quantity: 1}}
	decorateItems(items)
	errs, warns := validateItems(items, computeSummary(items), 0)
	if len(errs) != 1 || len(warns) != 0 {
		t.Fatalf("errors=%d warnings=%d, want 1/0", len(errs), len(warns))
	}
	if errs[0].ProductID != 1 {
		t.Fatalf("error productId = %d, want 1", errs[0].ProductID)
	}
}

func TestValidateItemsFlagsOutOfStock(t *testing.T) {
	items := []model.CartItem{{ProductID: 2, ProductName: "Semoule", IsActive: true, StockQuantity: 0, Quantity: 3}}
	errs, warns := validateItems(items, model.CartSummary{}, 0)
	if len(errs) != 1 || len(warns) != 0 {
		t.Fatalf("errors=%d warnings=%d, want 1/0", len(errs), len(warns))
	}
	if errs[0].Available != 0 || errs[0].Requested != 3 {
		t.Fatalf("issue = %+v, want requested=3 available=0", errs[0])
	}
}

func TestValidateItemsWarnsOnPartialStock(t *testing.T) {
	items := []model.CartItem{{ProductID: 3, ProductName: "Dattes", IsActive: true, StockQuantity: 2, Quantity: 5}}
	errs, warns := validateItems(items, model.CartSummary{}, 0)
	if len(errs) != 0 || len(warns) != 1 {
		t.Fatalf("errors=%d warnings=%d, want 0/1", len(errs), len(warns))
	}
	if warns[0].Available != 2 || warns[0].Requested != 5 {
		t.Fatalf("warning = %+v, want requested=5 available=2", warns[0])
	}
}

func TestValidateItemsMinimumOrderAmount(t *testing.T) {
	items := []model.CartItem{{ProductID: 4, ProductName: "Riz", IsActive: true, StockQuantity: 10, Quantity: 1, Price: 5, TaxRate: 5.5}}
	decorateItems(items)
	summary := computeSummary(items)

	errs, _ := validateItems(items, summary, 50)
	if len(errs) != 1 {
		t.Fatalf("errors = %d, want 1 (below minimum)", len(errs))
	}
	if errs[0].Amount != 50 {
		t.Fatalf("amount = %v, want 50", errs[0].Amount)
	}

	errs, _ = validateItems(items, summary, 0)
	if len(errs) != 0 {
		t.Fatalf("errors = %d, want 0 (no minimum configured)", len(errs))
	}
}
