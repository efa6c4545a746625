package services

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/joaquinmenendez/demo-api-meli/models"
	"github.com/joaquinmenendez/demo-api-meli/utils"
)

// DefaultFields returns the search-result fields worth keeping for
// price analysis. Single-segment selectors are strict top-level
// lookups; multi-segment selectors are tolerant nested paths.
func DefaultFields() []models.FieldSelector {
	return []models.FieldSelector{
		{"site_id"},
		{"price"},
		{"currency_id"},
		{"available_quantity"},
		{"sold_quantity"},
		{"buying_mode"},
		{"listing_type_id"},
		{"condition"},
		{"accepts_mercadopago"},
		{"original_price"},
		{"seller", "seller_reputation", "level_id"},
		{"shipping", "free_shipping"},
		{"address", "state_name"},
	}
}

// DefaultAttributes returns the attribute ids looked up in each
// listing's variable-length attribute list.
func DefaultAttributes() []string {
	return []string{"BRAND", "MODEL"}
}

// Extractor flattens raw listing records into table rows.
type Extractor struct {
	logger *utils.Logger
}

// NewExtractor creates an Extractor with the given logger.
func NewExtractor(logger *utils.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractRow flattens one raw listing into a Row covering every field
// selector and attribute id. Nil fields/attributes select the defaults.
//
// A top-level field absent from the record (a null value still counts
// as present) fails the whole record. Nested paths and attribute
// lookups are tolerant: anything missing becomes nil.
func (e *Extractor) ExtractRow(record json.RawMessage, fields []models.FieldSelector, attributes []string) (models.Row, error) {
	if fields == nil {
		fields = DefaultFields()
	}
	if attributes == nil {
		attributes = DefaultAttributes()
	}

	row := make(models.Row, len(fields)+len(attributes))

	for _, f := range fields {
		if f.Nested() {
			row[f.Column()] = gjson.GetBytes(record, f.Path()).Value()
			continue
		}
		res := gjson.GetBytes(record, f.Path())
		if !res.Exists() {
			return nil, fmt.Errorf("extract: field %q missing from record", f.Column())
		}
		row[f.Column()] = res.Value()
	}

	for _, id := range attributes {
		row[id] = queryAttribute(record, id)
	}

	return row, nil
}

// queryAttribute scans the record's attribute list for the first entry
// whose id matches and projects its display value. No match yields nil.
func queryAttribute(record json.RawMessage, attributeID string) any {
	query := fmt.Sprintf(`attributes.#(id==%q).value_name`, attributeID)
	return gjson.GetBytes(record, query).Value()
}

// Assemble flattens every record, in input order, into one
// column-homogeneous table. An empty record sequence yields a valid
// zero-row table that still carries the column set.
func (e *Extractor) Assemble(records []json.RawMessage, fields []models.FieldSelector, attributes []string) (*models.Table, error) {
	if fields == nil {
		fields = DefaultFields()
	}
	if attributes == nil {
		attributes = DefaultAttributes()
	}

	columns := make([]string, 0, len(fields)+len(attributes))
	for _, f := range fields {
		columns = append(columns, f.Column())
	}
	columns = append(columns, attributes...)

	table := &models.Table{
		Columns: columns,
		Rows:    make([]models.Row, 0, len(records)),
	}

	for i, record := range records {
		row, err := e.ExtractRow(record, fields, attributes)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		table.Rows = append(table.Rows, row)
	}

	e.logger.Info("[extract] Assembled %d rows × %d columns", len(table.Rows), len(table.Columns))
	return table, nil
}
