package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/handycook/foodscan/config"
	httpDelivery "github.com/handycook/foodscan/internal/delivery/http"
	"github.com/handycook/foodscan/internal/domain"
	"github.com/handycook/foodscan/internal/infrastructure/cache"
	"github.com/handycook/foodscan/internal/infrastructure/llm"
	"github.com/handycook/foodscan/internal/infrastructure/store"
	"github.com/handycook/foodscan/internal/infrastructure/usda"
	"github.com/handycook/foodscan/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting FoodScan API v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Store: %s", cfg.Store.Path)

	ctx := context.Background()

	// Initialize infrastructure dependencies
	sqliteStore, err := store.New(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open word store: %v", err)
	}
	defer sqliteStore.Close()

	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	usdaClient := usda.NewClient(cfg.USDA.APIKey, cfg.USDA.BaseURL, cfg.USDA.PageSize)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		usdaClient.SetDebug(true)
		log.Printf("USDA client debug mode enabled")
	}

	if cfg.USDA.APIKey != "" {
		log.Printf("USDA API configured: %s (key: %s...)", cfg.USDA.BaseURL, cfg.USDA.APIKey[:8])
	} else {
		log.Printf("WARNING: USDA API key NOT CONFIGURED - classification requests will fail!")
	}

	var corrector domain.Corrector
	if cfg.LLM.APIKey != "" {
		gemini, err := llm.NewGeminiCorrector(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			log.Fatalf("Failed to create LLM corrector: %v", err)
		}
		corrector = gemini
		log.Printf("OCR correction model: %s", cfg.LLM.Model)
	} else {
		corrector = llm.Disabled{}
		log.Printf("WARNING: LLM API key NOT CONFIGURED - OCR correction runs on the keyword fallback only")
	}

	// Initialize usecase layer
	classifyService := usecase.NewClassifyService(
		memoryCache,
		sqliteStore,
		usdaClient,
		usecase.ClassifyServiceConfig{
			CacheTTL:       cfg.Cache.TTL,
			MatchThreshold: cfg.Matching.MatchThreshold,
			MinWordLength:  cfg.Matching.MinWordLength,
		},
	)

	log.Printf("Matching: threshold=%.2f, min word length=%d",
		cfg.Matching.MatchThreshold, cfg.Matching.MinWordLength)

	// Seed the store with the baseline generic and non-food vocabulary
	if err := classifyService.SeedWords(ctx); err != nil {
		log.Fatalf("Failed to seed word store: %v", err)
	}

	ocrService := usecase.NewOCRService(sqliteStore, corrector)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(classifyService, ocrService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
