package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/handycook/foodscan/config"
	"github.com/handycook/foodscan/internal/domain"
	"github.com/handycook/foodscan/internal/scanner"
)

func main() {
	force := flag.Bool("force-sync", false, "refresh the word lists even when the local store is fresh")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] frame.json [frame.json ...]\n\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Replays captured vision responses through the scanner pipeline.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	frames := flag.Args()
	if len(frames) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	client := scanner.NewClient(scanner.ClientOpts{
		BaseURL: cfg.Scanner.APIBaseURL,
		Debug:   cfg.Server.Environment == "development",
	})
	service := scanner.NewService(client, scanner.NewWordStore(), scanner.ServiceConfig{
		SyncTTL:  cfg.Scanner.SyncTTL,
		BatchMax: cfg.Scanner.ClassifyBatchMax,
	})

	if err := service.Sync(ctx, *force); err != nil {
		log.Fatalf("Failed to sync word lists from %s: %v", cfg.Scanner.APIBaseURL, err)
	}
	food, nonFood, generic := service.Store().Counts()
	log.Printf("[Scanner] Word lists synced: %d food, %d non-food, %d generic", food, nonFood, generic)

	parser := scanner.NewParser(service.Store(), client, cfg.Scanner.MinConfidence)
	session := scanner.NewSession()

	for _, path := range frames {
		response, err := loadFrame(path)
		if err != nil {
			log.Fatalf("Failed to load frame %s: %v", path, err)
		}

		detections := parser.Parse(ctx, response)
		session.AddAll(detections)
		log.Printf("[Scanner] Frame %s: %d detections", path, len(detections))

		// Settle what this frame left pending before the next one
		if unknown := parser.TakeUnknownWords(); len(unknown) > 0 {
			session.ResolvePending(service.ClassifyUnknownWords(ctx, unknown))
		}
	}

	session.Stop()

	finalizeCtx, cancel := context.WithTimeout(ctx, cfg.Scanner.FinalizeTimeout)
	defer cancel()

	items := session.Finalize(finalizeCtx, service)
	printItems(items)
}

// loadFrame reads one captured vision response from disk.
func loadFrame(path string) (*domain.VisionResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var response domain.VisionResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("parsing vision response: %w", err)
	}
	return &response, nil
}

func printItems(items []domain.DetectedItem) {
	if len(items) == 0 {
		fmt.Println("No food items detected.")
		return
	}

	fmt.Printf("%-30s %-16s %-8s %-6s %s\n", "ITEM", "CATEGORY", "SOURCE", "SEEN", "CONFIDENCE")
	for _, item := range items {
		label := item.Label
		if item.IsPending {
			label += " (unverified)"
		}
		fmt.Printf("%-30s %-16s %-8s %-6d %.2f\n",
			label, item.Category, item.Source, item.Count, item.Confidence)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stderr)
}
