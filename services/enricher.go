package services

import (
	"fmt"

	"github.com/joaquinmenendez/demo-api-meli/models"
	"github.com/joaquinmenendez/demo-api-meli/utils"
)

// Derived column names. The Spanish ones are kept as-is: downstream
// notebooks already depend on them.
const (
	ColPriceUSD        = "price_USD"
	ColDiscount        = "discount"
	ColDescuentoPrecio = "descuento_precio"
	ColDescuentoUSD    = "descuento_USD"
)

// Enricher derives USD-normalized price and discount columns from the
// flat table and a rate snapshot.
type Enricher struct {
	logger *utils.Logger
}

// NewEnricher creates an Enricher with the given logger.
func NewEnricher(logger *utils.Logger) *Enricher {
	return &Enricher{logger: logger}
}

// Enrich adds price_USD, discount, descuento_precio and descuento_USD
// to every row, in that derivation order. A currency_id with no entry
// in the rate map (other than USD itself) fails the whole call; the
// snapshot must cover every currency present in the table.
//
// Enrich is pure over the table and the rate map: re-running it
// recomputes the same derived values.
func (e *Enricher) Enrich(table *models.Table, rates models.RateMap) error {
	for i, row := range table.Rows {
		price, err := asNumber(row["price"])
		if err != nil {
			return fmt.Errorf("enrich: row %d: price: %w", i, err)
		}
		currency, ok := row["currency_id"].(string)
		if !ok {
			return fmt.Errorf("enrich: row %d: currency_id is not a string", i)
		}

		var rate float64
		if currency != "USD" {
			rate, ok = rates[currency]
			if !ok {
				return fmt.Errorf("enrich: row %d: no USD rate for currency %q", i, currency)
			}
		}

		priceUSD := price
		if currency != "USD" {
			priceUSD = price / rate
		}
		row[ColPriceUSD] = priceUSD

		// No original_price means the listing was never discounted.
		discount := 1
		if row["original_price"] == nil {
			discount = 0
		}
		row[ColDiscount] = discount

		descuentoPrecio := 0.0
		if discount == 1 {
			original, err := asNumber(row["original_price"])
			if err != nil {
				return fmt.Errorf("enrich: row %d: original_price: %w", i, err)
			}
			descuentoPrecio = original - price
		}
		row[ColDescuentoPrecio] = descuentoPrecio

		descuentoUSD := descuentoPrecio
		if currency != "USD" {
			descuentoUSD = descuentoPrecio / rate
		}
		row[ColDescuentoUSD] = descuentoUSD
	}

	table.AddColumn(ColPriceUSD)
	table.AddColumn(ColDiscount)
	table.AddColumn(ColDescuentoPrecio)
	table.AddColumn(ColDescuentoUSD)

	e.logger.Info("[enrich] Derived discount metrics for %d rows", len(table.Rows))
	return nil
}

func asNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case nil:
		return 0, fmt.Errorf("value is null")
	default:
		return 0, fmt.Errorf("value %v is not numeric", v)
	}
}
