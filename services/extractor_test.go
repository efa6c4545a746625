package services

import (
	"encoding/json"
	"testing"

	"github.com/joaquinmenendez/demo-api-meli/models"
	"github.com/joaquinmenendez/demo-api-meli/utils"
)

const sampleRecord = `{
	"site_id": "MLA",
	"price": 100,
	"currency_id": "ARS",
	"available_quantity": 5,
	"sold_quantity": 2,
	"buying_mode": "buy_it_now",
	"listing_type_id": "gold_special",
	"condition": "new",
	"accepts_mercadopago": true,
	"original_price": 150,
	"seller": {"seller_reputation": {"level_id": "5_green"}},
	"shipping": {"free_shipping": true},
	"address": {"state_name": "Capital Federal"},
	"attributes": [
		{"id": "BRAND", "value_name": "Acme"},
		{"id": "LINE", "value_name": "Galaxy"}
	]
}`

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func TestExtractRowDefaults(t *testing.T) {
	e := NewExtractor(newTestLogger())

	row, err := e.ExtractRow(json.RawMessage(sampleRecord), nil, nil)
	if err != nil {
		t.Fatalf("ExtractRow: %v", err)
	}

	tests := []struct {
		column string
		want   any
	}{
		{"site_id", "MLA"},
		{"price", float64(100)},
		{"currency_id", "ARS"},
		{"original_price", float64(150)},
		{"accepts_mercadopago", true},
		{"seller_seller_reputation_level_id", "5_green"},
		{"shipping_free_shipping", true},
		{"address_state_name", "Capital Federal"},
		{"BRAND", "Acme"},
		{"MODEL", nil},
	}

	for _, tt := range tests {
		if got := row[tt.column]; got != tt.want {
			t.Errorf("row[%q] = %v; want %v", tt.column, got, tt.want)
		}
	}
}

func TestExtractRowMissingDirectFieldFails(t *testing.T) {
	e := NewExtractor(newTestLogger())
	record := json.RawMessage(`{"price": 100}`)

	if _, err := e.ExtractRow(record, []models.FieldSelector{{"site_id"}}, []string{}); err == nil {
		t.Error("expected error for missing direct field, got nil")
	}
}

func TestExtractRowNullDirectFieldIsPresent(t *testing.T) {
	e := NewExtractor(newTestLogger())
	record := json.RawMessage(`{"original_price": null}`)

	row, err := e.ExtractRow(record, []models.FieldSelector{{"original_price"}}, []string{})
	if err != nil {
		t.Fatalf("ExtractRow: %v", err)
	}
	if row["original_price"] != nil {
		t.Errorf("original_price: got %v, want nil", row["original_price"])
	}
}

func TestExtractRowMissingNestedPathIsNil(t *testing.T) {
	e := NewExtractor(newTestLogger())
	// No seller object at all — the nested query must tolerate it.
	record := json.RawMessage(`{"price": 100}`)

	fields := []models.FieldSelector{{"seller", "seller_reputation", "level_id"}}
	row, err := e.ExtractRow(record, fields, []string{})
	if err != nil {
		t.Fatalf("ExtractRow: %v", err)
	}
	if row["seller_seller_reputation_level_id"] != nil {
		t.Errorf("nested lookup on missing path: got %v, want nil",
			row["seller_seller_reputation_level_id"])
	}
}

func TestExtractRowAttributeNoMatchIsNil(t *testing.T) {
	e := NewExtractor(newTestLogger())
	record := json.RawMessage(`{"attributes": [{"id": "BRAND", "value_name": "Acme"}]}`)

	row, err := e.ExtractRow(record, []models.FieldSelector{}, []string{"MODEL"})
	if err != nil {
		t.Fatalf("ExtractRow: %v", err)
	}
	if row["MODEL"] != nil {
		t.Errorf("attribute query without match: got %v, want nil", row["MODEL"])
	}
}

func TestAssembleRowCountAndColumns(t *testing.T) {
	e := NewExtractor(newTestLogger())
	records := []json.RawMessage{
		json.RawMessage(sampleRecord),
		json.RawMessage(sampleRecord),
		json.RawMessage(sampleRecord),
	}

	table, err := e.Assemble(records, nil, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if len(table.Rows) != len(records) {
		t.Errorf("row count: got %d, want %d", len(table.Rows), len(records))
	}
	// 13 default fields + 2 default attributes
	if len(table.Columns) != 15 {
		t.Errorf("column count: got %d, want 15", len(table.Columns))
	}
	for i, row := range table.Rows {
		if len(row) != len(table.Columns) {
			t.Errorf("row %d has %d cells, want %d", i, len(row), len(table.Columns))
		}
		for _, col := range table.Columns {
			if _, ok := row[col]; !ok {
				t.Errorf("row %d is missing column %q", i, col)
			}
		}
	}
}

func TestAssembleRecordErrorNamesIndex(t *testing.T) {
	e := NewExtractor(newTestLogger())
	records := []json.RawMessage{
		json.RawMessage(sampleRecord),
		json.RawMessage(`{"price": 100}`),
	}

	if _, err := e.Assemble(records, nil, nil); err == nil {
		t.Error("expected error for record missing direct fields, got nil")
	}
}

func TestAssembleEmptyInput(t *testing.T) {
	e := NewExtractor(newTestLogger())

	table, err := e.Assemble(nil, nil, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(table.Rows) != 0 {
		t.Errorf("expected zero rows, got %d", len(table.Rows))
	}
	if len(table.Columns) == 0 {
		t.Error("empty table should still carry the column set")
	}
}
