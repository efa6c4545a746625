package storage

import "github.com/joaquinmenendez/demo-api-meli/models"

// TableWriter is the interface any flat-table sink must satisfy.
type TableWriter interface {
	WriteTable(table *models.Table) error
	Close() error
}

// ListingStore is the interface for persisting and reading back
// enriched listing rows.
type ListingStore interface {
	Write(runID string, table *models.Table) error
	FetchAll() ([]models.Row, error)
	Close() error
}
