package services

import (
	"testing"

	"github.com/joaquinmenendez/demo-api-meli/models"
)

func sampleRows() []models.Row {
	return []models.Row{
		{"site_id": "MLA", "address_state_name": "Capital Federal", ColPriceUSD: 0.5, ColDiscount: 1, ColDescuentoUSD: 0.05, "BRAND": "Acme", "MODEL": "X1", "currency_id": "ARS"},
		{"site_id": "MLA", "address_state_name": "Capital Federal", ColPriceUSD: 0.2, ColDiscount: 0, ColDescuentoUSD: 0.0, "currency_id": "ARS"},
		{"site_id": "MLC", "address_state_name": "Santiago", ColPriceUSD: 1.5, ColDiscount: 1, ColDescuentoUSD: 0.3, "BRAND": "Acme", "MODEL": "X9", "currency_id": "CLP"},
		{"site_id": "MLU", "address_state_name": nil, ColPriceUSD: 0.8, ColDiscount: 0, ColDescuentoUSD: 0.0, "currency_id": "UYU"},
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleRows())
	if r.TotalListings != 4 {
		t.Errorf("TotalListings: got %d, want 4", r.TotalListings)
	}
	if r.DiscountedCount != 2 {
		t.Errorf("DiscountedCount: got %d, want 2", r.DiscountedCount)
	}
}

func TestInsightPriceStats(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleRows())
	if r.AveragePriceUSD != 0.75 {
		t.Errorf("AveragePriceUSD: got %.2f, want 0.75", r.AveragePriceUSD)
	}
	if r.MinPriceUSD != 0.2 {
		t.Errorf("MinPriceUSD: got %.2f, want 0.2", r.MinPriceUSD)
	}
	if r.MaxPriceUSD != 1.5 {
		t.Errorf("MaxPriceUSD: got %.2f, want 1.5", r.MaxPriceUSD)
	}
}

func TestInsightBiggestDiscount(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleRows())
	if r.BiggestDiscount == nil {
		t.Fatal("BiggestDiscount should not be nil")
	}
	if r.BiggestDiscount["MODEL"] != "X9" {
		t.Errorf("BiggestDiscount model: got %v, want X9", r.BiggestDiscount["MODEL"])
	}
	if len(r.TopDiscounts) != 2 {
		t.Errorf("TopDiscounts len: got %d, want 2", len(r.TopDiscounts))
	}
}

func TestInsightGrouping(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleRows())
	if r.ListingsBySite["MLA"] != 2 {
		t.Errorf("MLA count: got %d, want 2", r.ListingsBySite["MLA"])
	}
	if r.ListingsByState["Capital Federal"] != 2 {
		t.Errorf("Capital Federal count: got %d, want 2", r.ListingsByState["Capital Federal"])
	}
	if _, ok := r.ListingsByState[""]; ok {
		t.Error("rows without a state must not be grouped under an empty key")
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(nil)
	if r.TotalListings != 0 {
		t.Errorf("expected 0 total listings for empty input")
	}
}
