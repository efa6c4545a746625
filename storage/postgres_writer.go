package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/joaquinmenendez/demo-api-meli/models"
	"github.com/joaquinmenendez/demo-api-meli/utils"
)

// rowColumns maps the listings table columns (run_id excluded) to the
// flat-table keys they are filled from.
var rowColumns = [][2]string{
	{"site_id", "site_id"},
	{"price", "price"},
	{"currency_id", "currency_id"},
	{"available_quantity", "available_quantity"},
	{"sold_quantity", "sold_quantity"},
	{"buying_mode", "buying_mode"},
	{"listing_type_id", "listing_type_id"},
	{"condition", "condition"},
	{"accepts_mercadopago", "accepts_mercadopago"},
	{"original_price", "original_price"},
	{"seller_reputation", "seller_seller_reputation_level_id"},
	{"free_shipping", "shipping_free_shipping"},
	{"state_name", "address_state_name"},
	{"brand", "BRAND"},
	{"model", "MODEL"},
	{"price_usd", "price_USD"},
	{"discount", "discount"},
	{"descuento_precio", "descuento_precio"},
	{"descuento_usd", "descuento_USD"},
}

// PostgresWriter persists enriched listing rows to PostgreSQL.
type PostgresWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter. The initial
// ping is retried with back-off to ride out a container still starting.
func NewPostgresWriter(dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres ping", db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db, logger: logger}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id                  SERIAL PRIMARY KEY,
			run_id              VARCHAR(36)   NOT NULL,
			site_id             VARCHAR(10)   NOT NULL,
			price               NUMERIC(14,2) NOT NULL DEFAULT 0,
			currency_id         VARCHAR(3)    NOT NULL DEFAULT '',
			available_quantity  NUMERIC(12),
			sold_quantity       NUMERIC(12),
			buying_mode         VARCHAR(30),
			listing_type_id     VARCHAR(30),
			condition           VARCHAR(30),
			accepts_mercadopago BOOLEAN,
			original_price      NUMERIC(14,2),
			seller_reputation   VARCHAR(30),
			free_shipping       BOOLEAN,
			state_name          TEXT,
			brand               TEXT,
			model               TEXT,
			price_usd           NUMERIC(14,4),
			discount            NUMERIC(1),
			descuento_precio    NUMERIC(14,2),
			descuento_usd       NUMERIC(14,4),
			created_at          TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_run_id    ON listings(run_id);
		CREATE INDEX IF NOT EXISTS idx_listings_site_id   ON listings(site_id);
		CREATE INDEX IF NOT EXISTS idx_listings_price_usd ON listings(price_usd);
		CREATE INDEX IF NOT EXISTS idx_listings_discount  ON listings(discount);
	`)
	return err
}

// Clear deletes all stored listings.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM listings")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts every enriched row tagged with runID, clearing
// old data first.
func (pw *PostgresWriter) Write(runID string, table *models.Table) error {
	if len(table.Rows) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(table.Rows); i += batchSize {
		end := i + batchSize
		if end > len(table.Rows) {
			end = len(table.Rows)
		}
		if err := pw.insertBatch(runID, table.Rows[i:end]); err != nil {
			return err
		}
	}

	pw.logger.Info("[postgres] Stored %d listings (run %s)", len(table.Rows), runID)
	return nil
}

func (pw *PostgresWriter) insertBatch(runID string, batch []models.Row) error {
	width := 1 + len(rowColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*width)

	for idx, row := range batch {
		base := idx * width
		placeholders := make([]string, width)
		for p := range placeholders {
			placeholders[p] = fmt.Sprintf("$%d", base+p+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		valueArgs = append(valueArgs, runID)
		for _, col := range rowColumns {
			valueArgs = append(valueArgs, row[col[1]])
		}
	}

	cols := make([]string, 0, width)
	cols = append(cols, "run_id")
	for _, col := range rowColumns {
		cols = append(cols, col[0])
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (%s)
		VALUES %s
	`, strings.Join(cols, ", "), strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

// FetchAll retrieves all stored listings as flat-table rows — used by
// the insight service.
func (pw *PostgresWriter) FetchAll() ([]models.Row, error) {
	dbCols := make([]string, 0, len(rowColumns))
	for _, col := range rowColumns {
		dbCols = append(dbCols, col[0])
	}

	rows, err := pw.db.Query(fmt.Sprintf(`
		SELECT %s
		FROM listings
		ORDER BY id
	`, strings.Join(dbCols, ", ")))
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var out []models.Row
	for rows.Next() {
		var (
			siteID, currencyID                           string
			price                                        float64
			availableQty, soldQty                        sql.NullFloat64
			buyingMode, listingType, condition           sql.NullString
			acceptsMP, freeShipping                      sql.NullBool
			originalPrice, priceUSD, descPrecio, descUSD sql.NullFloat64
			sellerReputation, stateName, brand, model    sql.NullString
			discount                                     sql.NullInt64
		)
		if err := rows.Scan(
			&siteID, &price, &currencyID, &availableQty, &soldQty,
			&buyingMode, &listingType, &condition, &acceptsMP,
			&originalPrice, &sellerReputation, &freeShipping, &stateName,
			&brand, &model, &priceUSD, &discount, &descPrecio, &descUSD,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}

		row := models.Row{
			"site_id":                           siteID,
			"price":                             price,
			"currency_id":                       currencyID,
			"available_quantity":                nullFloat(availableQty),
			"sold_quantity":                     nullFloat(soldQty),
			"buying_mode":                       nullString(buyingMode),
			"listing_type_id":                   nullString(listingType),
			"condition":                         nullString(condition),
			"accepts_mercadopago":               nullBool(acceptsMP),
			"original_price":                    nullFloat(originalPrice),
			"seller_seller_reputation_level_id": nullString(sellerReputation),
			"shipping_free_shipping":            nullBool(freeShipping),
			"address_state_name":                nullString(stateName),
			"BRAND":                             nullString(brand),
			"MODEL":                             nullString(model),
			"price_USD":                         nullFloat(priceUSD),
			"descuento_precio":                  nullFloat(descPrecio),
			"descuento_USD":                     nullFloat(descUSD),
		}
		if discount.Valid {
			row["discount"] = int(discount.Int64)
		} else {
			row["discount"] = nil
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

func nullFloat(v sql.NullFloat64) any {
	if v.Valid {
		return v.Float64
	}
	return nil
}

func nullString(v sql.NullString) any {
	if v.Valid {
		return v.String
	}
	return nil
}

func nullBool(v sql.NullBool) any {
	if v.Valid {
		return v.Bool
	}
	return nil
}
