package service

import (
	"testing"

	"github.com/Neruaka/jana-distribution/internal/model"
)

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Huile d'olive extra vierge", "huile-d-olive-extra-vierge"},
		{"Thé à la menthe", "the-a-la-menthe"},
		{"Épices & Condiments", "epices-condiments"},
		{"  Semoule fine  ", "semoule-fine"},
		{"Bœuf séché", "boeuf-seche"},
		{"100% pur jus", "100-pur-jus"},
	}
	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestProductInputRejectsPromoAbovePrice(t *testing.T) {
	in := ProductInput{Reference: "REF-1", Name: "Riz", Price: 10, PromoPrice: promo(12)}
	var p model.Product
	if err := in.apply(&p); err == nil {
		t.Fatal("promo above price accepted")
	}
	in.PromoPrice = promo(10)
	if err := in.apply(&p); err == nil {
		t.Fatal("promo equal to price accepted")
	}
	in.PromoPrice = promo(8)
	if err := in.apply(&p); err != nil {
		t.Fatalf("valid promo rejected: %v", err)
	}
}

func TestProductInputDerivesSlug(t *testing.T) {
	in := ProductInput{Reference: "REF-2", Name: "Thé à la menthe", Price: 5}
	var p model.Product
	if err := in.apply(&p); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.Slug != "the-a-la-menthe" {
		t.Fatalf("slug = %q", p.Slug)
	}
	if !p.IsActive {
		t.Fatal("isActive should default to true")
	}

	in.Slug = "custom-slug"
	if err := in.apply(&p); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.Slug != "custom-slug" {
		t.Fatalf("explicit slug overridden: %q", p.Slug)
	}
}
