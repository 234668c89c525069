// Command enrich backfills company descriptions by fetching each company's
// website and extracting a summary. Companies with a description are left
// untouched.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/dealscope/comps-api/internal/database"
	"github.com/dealscope/comps-api/internal/enrich"
	"github.com/dealscope/comps-api/internal/logger"
	"github.com/dealscope/comps-api/internal/repository"
	"github.com/dealscope/comps-api/pkg/config"
)

func main() {
	batchSize := flag.Int("batch", 100, "maximum companies to enrich in one run")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.New()

	appLogger, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	repo := repository.NewCompanyRepository(db)
	extractor := enrich.NewExtractor(15 * time.Second)

	ctx := context.Background()
	companies, err := repo.ListMissingDescription(ctx, *batchSize)
	if err != nil {
		appLogger.Fatal("Failed to list companies", err)
	}
	appLogger.Info("Enriching companies", "count", len(companies))

	enriched := 0
	for _, company := range companies {
		description, err := extractor.FetchDescription(ctx, *company.Website)
		if err != nil {
			appLogger.Warn("Skipping company", "id", company.ID, "error", err)
			continue
		}
		if err := repo.UpdateDescription(ctx, company.ID, description); err != nil {
			appLogger.Error("Failed to store description", err, "id", company.ID)
			continue
		}
		enriched++
	}

	appLogger.Info("Enrichment run complete", "enriched", enriched, "total", len(companies))
}
