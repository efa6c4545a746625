package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joaquinmenendez/demo-api-meli/models"
	"github.com/joaquinmenendez/demo-api-meli/utils"
)

// InsightService computes and prints discount analytics over the
// enriched listing rows.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(rows []models.Row) *models.DiscountReport {
	report := &models.DiscountReport{
		ListingsBySite:  make(map[string]int),
		ListingsByState: make(map[string]int),
	}

	if len(rows) == 0 {
		return report
	}

	report.TotalListings = len(rows)

	var priced []models.Row
	var discounted []models.Row

	for _, r := range rows {
		if site := stringOrEmpty(r["site_id"]); site != "" {
			report.ListingsBySite[site]++
		}
		if state := stringOrEmpty(r["address_state_name"]); state != "" {
			report.ListingsByState[state]++
		}
		if numberOrZero(r[ColPriceUSD]) > 0 {
			priced = append(priced, r)
		}
		if numberOrZero(r[ColDiscount]) == 1 {
			report.DiscountedCount++
			discounted = append(discounted, r)
		}
	}

	// USD price stats (only rows with a positive converted price)
	if len(priced) > 0 {
		report.MinPriceUSD = numberOrZero(priced[0][ColPriceUSD])
		report.MaxPriceUSD = report.MinPriceUSD
		var total float64
		for _, r := range priced {
			p := numberOrZero(r[ColPriceUSD])
			total += p
			if p < report.MinPriceUSD {
				report.MinPriceUSD = p
			}
			if p > report.MaxPriceUSD {
				report.MaxPriceUSD = p
			}
		}
		report.AveragePriceUSD = round2(total / float64(len(priced)))
		report.MinPriceUSD = round2(report.MinPriceUSD)
		report.MaxPriceUSD = round2(report.MaxPriceUSD)
	}

	// Top 5 by USD discount amount
	sort.Slice(discounted, func(i, j int) bool {
		return numberOrZero(discounted[i][ColDescuentoUSD]) > numberOrZero(discounted[j][ColDescuentoUSD])
	})
	if len(discounted) > 0 {
		report.BiggestDiscount = discounted[0]
	}
	if len(discounted) > 5 {
		report.TopDiscounts = discounted[:5]
	} else {
		report.TopDiscounts = discounted
	}

	return report
}

func (s *InsightService) Print(r *models.DiscountReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 MELI DISCOUNT INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total listings collected : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Printf("  Discounted listings      : \033[1m%d\033[0m\n", r.DiscountedCount)
	fmt.Println()

	// Price Stats
	fmt.Printf("\033[1;33m  Price Statistics (USD)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.AveragePriceUSD > 0 {
		fmt.Printf("  Average price : \033[1;32m$%.2f\033[0m\n", r.AveragePriceUSD)
		fmt.Printf("  Minimum price : \033[1;32m$%.2f\033[0m\n", r.MinPriceUSD)
		fmt.Printf("  Maximum price : \033[1;32m$%.2f\033[0m\n", r.MaxPriceUSD)
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	// Biggest Discount
	if r.BiggestDiscount != nil {
		fmt.Printf("\033[1;33m  Biggest Discount\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s %s (%s)\n",
			stringOrEmpty(r.BiggestDiscount["BRAND"]),
			stringOrEmpty(r.BiggestDiscount["MODEL"]),
			stringOrEmpty(r.BiggestDiscount["site_id"]))
		fmt.Printf("  Discount : \033[1;31m$%.2f USD\033[0m (%.2f %s)\n",
			numberOrZero(r.BiggestDiscount[ColDescuentoUSD]),
			numberOrZero(r.BiggestDiscount[ColDescuentoPrecio]),
			stringOrEmpty(r.BiggestDiscount["currency_id"]))
		fmt.Println()
	}

	// Top 5 discounts
	fmt.Printf("\033[1;33m  Top 5 Discounts (USD)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopDiscounts) == 0 {
		fmt.Printf("  No discounted listings found\n")
	} else {
		for i, row := range r.TopDiscounts {
			label := strings.TrimSpace(stringOrEmpty(row["BRAND"]) + " " + stringOrEmpty(row["MODEL"]))
			if label == "" {
				label = stringOrEmpty(row["site_id"])
			}
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m$%.2f\033[0m\n",
				i+1, truncate(label, 38), numberOrZero(row[ColDescuentoUSD]))
		}
	}
	fmt.Println()

	// Listings by site / state
	fmt.Printf("\033[1;33m  Listings by Site\033[0m\n")
	fmt.Printf("  %s\n", thin)
	printCountBars(r.ListingsBySite)
	fmt.Println()

	fmt.Printf("\033[1;33m  Listings by State\033[0m\n")
	fmt.Printf("  %s\n", thin)
	printCountBars(r.ListingsByState)

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func printCountBars(counts map[string]int) {
	if len(counts) == 0 {
		fmt.Printf("  No data\n")
		return
	}
	type keyCount struct {
		key   string
		count int
	}
	var entries []keyCount
	for k, c := range counts {
		entries = append(entries, keyCount{k, c})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})
	for _, e := range entries {
		bar := strings.Repeat("█", min(e.count, 40))
		fmt.Printf("  %-30s %s (%d)\n", truncate(e.key, 28), bar, e.count)
	}
}

func stringOrEmpty(v any) string {
	s, _ := v.(string)
	return s
}

func numberOrZero(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
