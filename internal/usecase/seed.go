package usecase

import "github.com/handycook/foodscan/internal/domain"

// genericSeedWords are label descriptors that appear next to food words
// but never name a food on their own. They get their own bucket in the
// word lists so scanner clients can drop them without a round trip.
// USDA classification cannot produce these; they only come from seeding.
var genericSeedWords = []string{
	"organic", "natural", "fresh", "premium", "original",
	"classic", "traditional", "homestyle", "artisan", "gourmet",
	"free", "gluten", "vegan", "vegetarian", "keto",
	"lite", "light", "diet", "reduced", "unsweetened",
	"sweetened", "salted", "unsalted", "whole", "extra",
	"large", "small", "medium", "family", "value",
	"brand", "quality", "select", "choice", "grade",
}

// nonFoodSeedWords are common packaging and label words that would
// otherwise each burn a USDA query on first sight.
var nonFoodSeedWords = []string{
	"ingredients", "nutrition", "facts", "serving", "calories",
	"keep", "refrigerated", "best", "before", "expiry",
	"net", "weight", "contains", "allergens", "distributed",
	"product", "packaging", "recyclable", "barcode", "price",
}

// seedRecords builds the word records for the built-in seed lists.
func seedRecords() []domain.WordRecord {
	records := make([]domain.WordRecord, 0, len(genericSeedWords)+len(nonFoodSeedWords))

	for _, word := range genericSeedWords {
		records = append(records, domain.WordRecord{
			Word:       word,
			IsFood:     false,
			IsGeneric:  true,
			Source:     domain.SourceSeed,
			Confidence: 1.0,
		})
	}

	for _, word := range nonFoodSeedWords {
		records = append(records, domain.WordRecord{
			Word:       word,
			IsFood:     false,
			Source:     domain.SourceSeed,
			Confidence: 1.0,
		})
	}

	return records
}
