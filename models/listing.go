package models

import "strings"

// FieldSelector addresses one column of the flat listing table. A single
// segment is a strict top-level lookup on the raw record; two or more
// segments form a tolerant nested path, dot-joined for the query and
// underscore-joined for the resulting column name.
type FieldSelector []string

// Column returns the table column name for this selector.
func (f FieldSelector) Column() string { return strings.Join(f, "_") }

// Path returns the dot-joined query path for this selector.
func (f FieldSelector) Path() string { return strings.Join(f, ".") }

// Nested reports whether this selector requires a tolerant nested lookup.
func (f FieldSelector) Nested() bool { return len(f) > 1 }

// Row is one flattened listing: column name → extracted value. Values are
// plain decoded JSON scalars (string, float64, bool) or nil when the
// source record carried nothing at that path.
type Row map[string]any

// Table is an ordered, column-homogeneous set of listing rows. Every row
// carries exactly the columns in Columns; missing values are nil, never
// omitted keys.
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether name is already part of the table schema.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends name to the schema if not yet present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// RateMap maps a 3-letter currency code to its conversion rate against
// USD, as returned by the exchange-rate snapshot. Populated once at
// startup and treated as read-only for the process lifetime.
type RateMap map[string]float64

// DiscountReport holds the computed analytics over the enriched table.
type DiscountReport struct {
	TotalListings   int
	DiscountedCount int
	AveragePriceUSD float64
	MinPriceUSD     float64
	MaxPriceUSD     float64
	BiggestDiscount Row
	TopDiscounts    []Row
	ListingsBySite  map[string]int
	ListingsByState map[string]int
}
