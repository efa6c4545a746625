package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/joaquinmenendez/demo-api-meli/config"
	"github.com/joaquinmenendez/demo-api-meli/scraper/meli"
	"github.com/joaquinmenendez/demo-api-meli/scraper/rates"
	"github.com/joaquinmenendez/demo-api-meli/services"
	"github.com/joaquinmenendez/demo-api-meli/storage"
	"github.com/joaquinmenendez/demo-api-meli/utils"
)

func main() {
	logger := utils.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}

	runID := uuid.New().String()

	logger.Info("=== MELI Listing Collector starting === run %s", runID)
	logger.Info("Config — sites: %s | category: %s | pages/site: %d",
		strings.Join(cfg.Sites, ","), cfg.Category, cfg.PageLimit)

	// Rate snapshot first: enrichment is impossible without it.
	rateMap, err := rates.NewClient(cfg.ExchangeRateAPIKey, logger).Fetch()
	if err != nil {
		logger.Error("Failed to fetch exchange-rate snapshot: %v", err)
		os.Exit(1)
	}

	scraper := meli.New(logger)
	records := scraper.Search(cfg.Sites, cfg.Category, cfg.PageLimit)
	if len(records) == 0 {
		logger.Error("No listings were collected. Exiting.")
		os.Exit(1)
	}
	logger.Info("Collected %d raw listings — flattening...", len(records))

	extractor := services.NewExtractor(logger)
	table, err := extractor.Assemble(records, nil, nil)
	if err != nil {
		logger.Error("Flattening failed: %v", err)
		os.Exit(1)
	}

	enricher := services.NewEnricher(logger)
	if err := enricher.Enrich(table, rateMap); err != nil {
		logger.Error("Enrichment failed: %v", err)
		os.Exit(1)
	}

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	if err := csvWriter.WriteTable(table); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("Enriched table saved to %s", cfg.CSVOutputPath)
	}

	reportRows := table.Rows

	if cfg.SkipPostgres {
		logger.Info("Skipping PostgreSQL write (SKIP_POSTGRES=true)")
	} else {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN(), logger)
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure Docker is running: docker compose up -d")
			os.Exit(1)
		}
		defer pgWriter.Close()

		if err := pgWriter.Write(runID, table); err != nil {
			logger.Error("PostgreSQL write failed: %v", err)
		} else {
			logger.Info("Enriched listings stored in PostgreSQL (table: listings)")
		}

		if dbRows, err := pgWriter.FetchAll(); err != nil {
			logger.Error("Failed to fetch listings from DB for insights: %v", err)
		} else {
			reportRows = dbRows
		}
	}

	insightSvc := services.NewInsightService(logger)
	report := insightSvc.Generate(reportRows)
	insightSvc.Print(report)

	fmt.Printf("  Done. Enriched table → %s | %d rows (run %s)\n\n",
		cfg.CSVOutputPath, len(table.Rows), runID)
}
